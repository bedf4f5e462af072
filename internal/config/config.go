// Package config loads the clixx TOML configuration file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"clixx-go/dock"
	"clixx-go/internal/busowner"
	"clixx-go/table"
)

// Config is the resolved configuration. Zero-valued optional fields mean
// "use the backend default".
type Config struct {
	// Backend forces a probe by name ("raspberry", "sim", ...); empty runs
	// the default selection.
	Backend string
	Timeout time.Duration
	// Table is a TOML wiring file replacing the built-in catalogue.
	Table string
	Chip  string

	Serial SerialConfig
	I2C    map[string]string
	SPI    SPIConfig
}

type SerialConfig struct {
	Port  string // SmartDock device
	Baud  int
	Ports map[string]string // bus id -> device path
}

type SPIConfig struct {
	Ports map[string]string // bus id -> periph name
	Hz    int64
}

func Default() Config {
	return Config{
		Timeout: busowner.DefaultTimeout,
		Serial:  SerialConfig{Baud: 9600},
		SPI:     SPIConfig{Hz: 1_000_000},
	}
}

type fileConfig struct {
	Backend string `toml:"backend"`
	Timeout string `toml:"timeout"`
	Table   string `toml:"table"`
	Chip    string `toml:"chip"`
	Serial  struct {
		Port  string            `toml:"port"`
		Baud  int               `toml:"baud"`
		Ports map[string]string `toml:"ports"`
	} `toml:"serial"`
	I2C struct {
		Buses map[string]string `toml:"buses"`
	} `toml:"i2c"`
	SPI struct {
		Ports map[string]string `toml:"ports"`
		Hz    int64             `toml:"hz"`
	} `toml:"spi"`
}

// Load overlays the keys present in path onto Default.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undec := meta.Undecoded(); len(undec) > 0 {
		return Config{}, fmt.Errorf("load config: unknown key %q", undec[0].String())
	}

	if meta.IsDefined("backend") {
		cfg.Backend = strings.TrimSpace(raw.Backend)
	}
	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("timeout must be positive, got %s", d)
		}
		cfg.Timeout = d
	}
	if meta.IsDefined("table") {
		cfg.Table = strings.TrimSpace(raw.Table)
	}
	if meta.IsDefined("chip") {
		cfg.Chip = strings.TrimSpace(raw.Chip)
	}
	if meta.IsDefined("serial", "port") {
		cfg.Serial.Port = strings.TrimSpace(raw.Serial.Port)
	}
	if meta.IsDefined("serial", "baud") {
		if raw.Serial.Baud <= 0 {
			return Config{}, fmt.Errorf("serial.baud must be positive, got %d", raw.Serial.Baud)
		}
		cfg.Serial.Baud = raw.Serial.Baud
	}
	if meta.IsDefined("serial", "ports") {
		cfg.Serial.Ports = raw.Serial.Ports
	}
	if meta.IsDefined("i2c", "buses") {
		cfg.I2C = raw.I2C.Buses
	}
	if meta.IsDefined("spi", "ports") {
		cfg.SPI.Ports = raw.SPI.Ports
	}
	if meta.IsDefined("spi", "hz") {
		cfg.SPI.Hz = raw.SPI.Hz
	}
	return cfg, nil
}

// Host converts the configuration into probe settings, loading the wiring
// table if one is named.
func (c Config) Host() (dock.HostConfig, error) {
	h := dock.HostConfig{
		Timeout:   c.Timeout,
		Chip:      c.Chip,
		I2C:       c.I2C,
		SPI:       c.SPI.Ports,
		Serial:    c.Serial.Ports,
		SPIHz:     c.SPI.Hz,
		Baud:      c.Serial.Baud,
		SmartPort: c.Serial.Port,
	}
	if c.Table != "" {
		tbl, err := table.LoadFile(c.Table)
		if err != nil {
			return dock.HostConfig{}, fmt.Errorf("load table %s: %w", c.Table, err)
		}
		h.Table = tbl
	}
	return h, nil
}
