//go:build rp2040 || rp2350

package dock

import (
	"clixx-go/buses"
	"clixx-go/pinctl"
	"clixx-go/table"
)

// Probes lists the single on-chip backend.
func Probes(c HostConfig) []Probe {
	pins := pinctl.NewRP2()
	return []Probe{{
		Name:  "pico",
		Probe: pins.Probe,
		New: func() (Dock, error) {
			return NewGPIO(c.tableOr(table.Pico), pins,
				append(c.options("pico"), WithBuses(buses.NewRP2(buses.DefaultRP2Plan)))...), nil
		},
	}}
}
