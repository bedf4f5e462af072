package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"clixx-go/dock"
	"clixx-go/errcode"
	"clixx-go/internal/config"
	"clixx-go/internal/logging"
	"clixx-go/types"
)

var (
	// Global flags
	verbose    bool
	configPath string
	backend    string
	tablePath  string

	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "clixx",
	Short: "Drive Clixx Tabs plugged into a Dock",
	Long: `clixx selects a Dock backend, configures its slots and reads or
writes the Tabs plugged into them.

Examples:
  clixx slots                          # List slots of the detected Dock
  clixx --backend sim write D0 1       # Drive D0 high on the simulator
  clixx read D0                        # Sample D0
  clixx watch D1 --interval 200ms      # Print D1 whenever it changes
  clixx aht20 T0                       # Read an AHT20 Tab on T0`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.New("clixx", verbose)
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML configuration file")
	rootCmd.PersistentFlags().StringVarP(&backend, "backend", "b", "", "backend to use (raspberry, raspberry-gpiocdev, smartdock, pico, sim)")
	rootCmd.PersistentFlags().StringVarP(&tablePath, "table", "t", "", "TOML slot wiring file")
}

// openDock resolves the configuration, selects a backend and configures
// the Dock. The caller must Teardown.
func openDock(ctx context.Context) (dock.Dock, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return nil, err
		}
	}
	if backend != "" {
		cfg.Backend = backend
	}
	if tablePath != "" {
		cfg.Table = tablePath
	}
	host, err := cfg.Host()
	if err != nil {
		return nil, err
	}
	host.Logger = logger

	var d dock.Dock
	if cfg.Backend == "" {
		d, _, err = dock.Default(host)
	} else {
		p, ok := dock.Named(append(dock.Probes(host), dock.SimProbe(host)), cfg.Backend)
		if !ok {
			return nil, errcode.New(errcode.NoBackend, "select", "unknown backend "+cfg.Backend)
		}
		d, _, err = dock.Select([]dock.Probe{p}, logger)
	}
	if err != nil {
		return nil, err
	}
	if err := d.Setup(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// withSlot runs fn against one configured slot.
func withSlot(idText string, fn func(ctx context.Context, d dock.Dock, id types.SlotID) error) error {
	id, err := types.ParseSlotID(idText)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	d, err := openDock(ctx)
	if err != nil {
		return err
	}
	defer closeDock(d)
	return fn(ctx, d, id)
}

// closeDock tears d down, logging a failure instead of masking the result.
func closeDock(d dock.Dock) {
	if err := d.Teardown(); err != nil {
		logger.Warn().Err(err).Msg("teardown")
	}
}
