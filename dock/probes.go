package dock

import (
	"time"

	"github.com/rs/zerolog"

	"clixx-go/table"
)

// HostConfig tunes the built-in probes. Zero values select defaults.
type HostConfig struct {
	// Table overrides the platform catalogue.
	Table   *table.Table
	Timeout time.Duration
	Logger  zerolog.Logger

	// Chip is the GPIO character device for the gpiocdev backend.
	Chip string
	// Bus id -> host device name, per bus kind.
	I2C    map[string]string
	SPI    map[string]string
	Serial map[string]string
	SPIHz  int64
	Baud   int

	// SmartPort is the SmartDock's serial device; empty picks the first port
	// the host lists.
	SmartPort string
}

func (c HostConfig) options(name string) []Option {
	return []Option{WithName(name), WithTimeout(c.Timeout), WithLogger(c.Logger)}
}

func (c HostConfig) tableOr(fallback func() *table.Table) *table.Table {
	if c.Table != nil {
		return c.Table
	}
	return fallback()
}

// SimProbe is the simulated backend. It always succeeds, so it is not part of
// the default probe list and is only chosen by name.
func SimProbe(c HostConfig) Probe {
	return Probe{
		Name: "sim",
		New: func() (Dock, error) {
			return Simulated(c.tableOr(table.Raspberry), c.options("sim")...), nil
		},
	}
}
