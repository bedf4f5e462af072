package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"clixx-go/dock"
	"clixx-go/errcode"
	"clixx-go/slot"
	"clixx-go/tabs/aht20"
	"clixx-go/types"
)

var aht20Cmd = &cobra.Command{
	Use:   "aht20 <slot>",
	Short: "Read temperature and humidity from an AHT20 Tab",
	Args:  cobra.ExactArgs(1),
	RunE:  runAHT20,
}

func init() {
	rootCmd.AddCommand(aht20Cmd)
}

func runAHT20(cmd *cobra.Command, args []string) error {
	return withSlot(args[0], func(ctx context.Context, d dock.Dock, id types.SlotID) error {
		s, err := d.Slot(id)
		if err != nil {
			return err
		}
		tw, ok := s.(*slot.TwoWire)
		if !ok {
			return errcode.New(errcode.NotSupported, "aht20", id.String()+" is not a two-wire slot")
		}
		dev := aht20.New(tw, aht20.Config{})
		if err := dev.Configure(ctx); err != nil {
			return err
		}
		sample, err := dev.Read(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%.1f C  %.1f %%RH\n", sample.Celsius(), sample.RelHumidity())
		return nil
	})
}
