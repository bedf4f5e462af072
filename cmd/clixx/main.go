package main

import "clixx-go/cmd/clixx/cmd"

func main() {
	cmd.Execute()
}
