package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"clixx-go/dock"
	"clixx-go/slot"
	"clixx-go/types"
)

var (
	ioAddr     uint16
	ioLength   int
	ioInterval time.Duration
	ioCount    int
)

var readCmd = &cobra.Command{
	Use:   "read <slot>",
	Short: "Read one value, or --len bytes, from a slot",
	Args:  cobra.ExactArgs(1),
	RunE:  runRead,
}

var writeCmd = &cobra.Command{
	Use:   "write <slot> <value|hex>",
	Short: "Write one value, or hex bytes with --bytes, to a slot",
	Args:  cobra.ExactArgs(2),
	RunE:  runWrite,
}

var watchCmd = &cobra.Command{
	Use:   "watch <slot>",
	Short: "Sample a slot repeatedly and print each change",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

var writeBytes bool

func init() {
	rootCmd.AddCommand(readCmd, writeCmd, watchCmd)

	for _, c := range []*cobra.Command{readCmd, writeCmd} {
		c.Flags().Uint16Var(&ioAddr, "addr", 0, "two-wire target address")
	}
	readCmd.Flags().IntVarP(&ioLength, "len", "n", 0, "read n bytes instead of one value")
	writeCmd.Flags().BoolVar(&writeBytes, "bytes", false, "treat the value as hex bytes")

	watchCmd.Flags().DurationVarP(&ioInterval, "interval", "i", 500*time.Millisecond, "sample interval")
	watchCmd.Flags().IntVar(&ioCount, "count", 0, "stop after n samples (0 = until interrupted)")
}

func bindAddress(s slot.Slot) error {
	if tw, ok := s.(*slot.TwoWire); ok && ioAddr != 0 {
		return tw.SetAddress(ioAddr)
	}
	return nil
}

func runRead(cmd *cobra.Command, args []string) error {
	return withSlot(args[0], func(ctx context.Context, d dock.Dock, id types.SlotID) error {
		s, err := d.Slot(id)
		if err != nil {
			return err
		}
		if err := bindAddress(s); err != nil {
			return err
		}
		if ioLength > 0 {
			buf := make([]byte, ioLength)
			n, err := s.ReadData(ctx, buf, 0, ioLength)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(buf[:n]))
			return nil
		}
		v, err := s.Read(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), uint16(v))
		return nil
	})
}

func runWrite(cmd *cobra.Command, args []string) error {
	return withSlot(args[0], func(ctx context.Context, d dock.Dock, id types.SlotID) error {
		s, err := d.Slot(id)
		if err != nil {
			return err
		}
		if err := bindAddress(s); err != nil {
			return err
		}
		if writeBytes {
			b, err := hex.DecodeString(args[1])
			if err != nil {
				return fmt.Errorf("parse bytes: %w", err)
			}
			_, err = s.WriteData(ctx, b, 0, len(b))
			return err
		}
		v, err := strconv.ParseUint(args[1], 0, 16)
		if err != nil {
			return fmt.Errorf("parse value: %w", err)
		}
		return s.Write(ctx, types.Value(v))
	})
}

func runWatch(cmd *cobra.Command, args []string) error {
	return withSlot(args[0], func(ctx context.Context, d dock.Dock, id types.SlotID) error {
		s, err := d.Slot(id)
		if err != nil {
			return err
		}
		tick := time.NewTicker(ioInterval)
		defer tick.Stop()
		var last types.Value
		for n := 0; ioCount == 0 || n < ioCount; n++ {
			v, err := s.Read(ctx)
			if err != nil {
				return err
			}
			if n == 0 || v != last {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %d\n", time.Now().Format(time.RFC3339), id, v)
				last = v
			}
			select {
			case <-ctx.Done():
				return nil
			case <-tick.C:
			}
		}
		return nil
	})
}
