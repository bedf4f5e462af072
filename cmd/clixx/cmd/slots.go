package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "List the configured slots",
	Args:  cobra.NoArgs,
	RunE:  runSlots,
}

func init() {
	rootCmd.AddCommand(slotsCmd)
}

func runSlots(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	d, err := openDock(ctx)
	if err != nil {
		return err
	}
	defer closeDock(d)

	ids, err := d.Available()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-4s %-8s %-6s %4s %4s %4s  %s\n", "SLOT", "IFACE", "SIZE", "IN", "AUX", "OUT", "BUS")
	for _, id := range ids {
		s, err := d.Slot(id)
		if err != nil {
			return err
		}
		desc := s.Descriptor()
		fmt.Fprintf(out, "%-4s %-8s %-6s %4s %4s %4s  %s\n",
			id, desc.Interface, desc.Size, desc.Input, desc.Aux, desc.Output, desc.Bus)
	}
	return nil
}
