package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"clixx-go/types"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadOverlaysDefaults(t *testing.T) {
	p := write(t, "clixx.toml", `
backend = "sim"
timeout = "100ms"

[serial]
port = "/dev/ttyUSB0"

[i2c.buses]
i2c1 = "/dev/i2c-1"
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend != "sim" || cfg.Timeout != 100*time.Millisecond {
		t.Fatalf("scalars: %+v", cfg)
	}
	if cfg.Serial.Port != "/dev/ttyUSB0" || cfg.Serial.Baud != 9600 {
		t.Fatalf("serial: %+v", cfg.Serial)
	}
	if cfg.SPI.Hz != 1_000_000 {
		t.Fatalf("spi default lost: %+v", cfg.SPI)
	}
	if cfg.I2C["i2c1"] != "/dev/i2c-1" {
		t.Fatalf("i2c: %+v", cfg.I2C)
	}
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]string{
		"bad duration":  `timeout = "soon"`,
		"zero timeout":  `timeout = "0s"`,
		"negative baud": "[serial]\nbaud = -1",
		"unknown key":   `colour = "blue"`,
		"syntax":        `backend = `,
	}
	for name, body := range cases {
		if _, err := Load(write(t, "c.toml", body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("missing file: expected error")
	}
}

func TestHostLoadsTable(t *testing.T) {
	tp := write(t, "slots.toml", "[[slot]]\nid = \"D3\"\ninput = 5\noutput = 6\n")
	cfg := Default()
	cfg.Table = tp
	h, err := cfg.Host()
	if err != nil {
		t.Fatal(err)
	}
	if h.Table == nil || h.Table.Len() != 1 {
		t.Fatalf("table not loaded: %+v", h.Table)
	}
	if _, ok := h.Table.Lookup(types.Digital3); !ok {
		t.Fatal("D3 missing")
	}
	if h.Timeout != cfg.Timeout || h.Baud != 9600 {
		t.Fatalf("host config: %+v", h)
	}

	cfg.Table = filepath.Join(t.TempDir(), "nope.toml")
	if _, err := cfg.Host(); err == nil {
		t.Fatal("expected error for missing table")
	}
}
