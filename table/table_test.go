package table

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"clixx-go/errcode"
	"clixx-go/types"
)

func TestRaspberryCatalogue(t *testing.T) {
	tb := Raspberry()
	if tb.Len() != 15 {
		t.Fatalf("expected 15 slots, got %d", tb.Len())
	}
	d, ok := tb.Lookup(types.Digital0)
	if !ok {
		t.Fatal("D0 missing")
	}
	if d.Input != types.P(22) || d.Output != types.P(18) || d.Aux.Wired() {
		t.Fatalf("D0 wiring wrong: %+v", d)
	}
	if _, ok := tb.Lookup(types.Analog0); ok {
		t.Fatal("raspberry has no analog slots")
	}
	if !slices.Equal(tb.Buses(), []string{BusI2C1, BusSPI0, BusUART0}) {
		t.Fatalf("buses: %v", tb.Buses())
	}
}

func TestIDsAreSortedCopies(t *testing.T) {
	tb := Raspberry()
	ids := tb.IDs()
	if !slices.IsSortedFunc(ids, types.SlotID.Compare) {
		t.Fatalf("ids not sorted: %v", ids)
	}
	ids[0] = types.ID(types.Analog, 9)
	if tb.IDs()[0] == ids[0] {
		t.Fatal("IDs must return a copy")
	}
	if ds := tb.Descriptors(); len(ds) != tb.Len() || ds[0].ID != tb.IDs()[0] {
		t.Fatal("descriptors out of id order")
	}
}

func TestValidationRejects(t *testing.T) {
	cases := map[string][]types.Descriptor{
		"duplicate": {
			{ID: types.Digital0, Interface: types.Digital, Size: types.SingleTab, Input: types.P(1)},
			{ID: types.Digital0, Interface: types.Digital, Size: types.SingleTab, Input: types.P(2)},
		},
		"tag mismatch": {
			{ID: types.Digital0, Interface: types.Analog, Size: types.SingleTab, Input: types.P(1)},
		},
		"no size": {
			{ID: types.Digital0, Interface: types.Digital, Input: types.P(1)},
		},
		"digital unwired": {
			{ID: types.Digital0, Interface: types.Digital, Size: types.SingleTab},
		},
		"twowire without bus or enable": {
			{ID: types.TwoWire0, Interface: types.TwoWire, Size: types.SingleTab},
		},
		"direction conflict": {
			{ID: types.Digital0, Interface: types.Digital, Size: types.SingleTab, Input: types.P(5)},
			{ID: types.Digital1, Interface: types.Digital, Size: types.SingleTab, Output: types.P(5)},
		},
		"address on digital": {
			{ID: types.Digital0, Interface: types.Digital, Size: types.SingleTab, Input: types.P(1), Address: 0x20},
		},
		"address too wide": {
			{ID: types.TwoWire0, Interface: types.TwoWire, Size: types.SingleTab, Bus: "i2c0", Address: 0x80},
		},
	}
	for name, descs := range cases {
		_, err := New(descs...)
		if !errors.Is(err, errcode.InvalidTable) {
			t.Fatalf("%s: expected invalid_table, got %v", name, err)
		}
	}
}

func TestValidationAccepts(t *testing.T) {
	_, err := New(
		types.Descriptor{ID: types.TwoWire0, Interface: types.TwoWire, Size: types.SingleTab, Aux: types.P(0)},
		types.Descriptor{ID: types.Digital0, Interface: types.Digital, Size: types.SingleTab, Output: types.P(0)},
	)
	if err != nil {
		t.Fatalf("enable pin 0 should satisfy a two-wire slot: %v", err)
	}
}

const wiring = `
[[slot]]
id = "D0"
input = 22
output = 18

[[slot]]
id = "d1"
size = "twin"
input = 0
aux = 16
output = 18

[[slot]]
id = "T0"
bus = "i2c1"
address = 0x38
`

func TestDecode(t *testing.T) {
	tb, err := Decode(strings.NewReader(wiring))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	d1, ok := tb.Lookup(types.Digital1)
	if !ok {
		t.Fatal("D1 missing")
	}
	if d1.Size != types.TwinTab || d1.Input != types.P(0) || d1.Aux != types.P(16) {
		t.Fatalf("D1 decoded wrong: %+v", d1)
	}
	t0, _ := tb.Lookup(types.TwoWire0)
	if t0.Interface != types.TwoWire || t0.Bus != "i2c1" || t0.Address != 0x38 {
		t.Fatalf("T0 decoded wrong: %+v", t0)
	}
	d0, _ := tb.Lookup(types.Digital0)
	if d0.Aux.Wired() || d0.Size != types.SingleTab {
		t.Fatalf("D0 defaults wrong: %+v", d0)
	}
}

func TestLoadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "slots.toml")
	if err := os.WriteFile(p, []byte(wiring), 0o644); err != nil {
		t.Fatal(err)
	}
	tb, err := LoadFile(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tb.Len() != 3 {
		t.Fatalf("expected 3 slots, got %d", tb.Len())
	}
}

func TestDecodeRejectsPinOutOfRange(t *testing.T) {
	cases := map[string]string{
		"wraps onto 22": "[[slot]]\nid = \"D0\"\ninput = 65558\noutput = 18\n",
		"negative":      "[[slot]]\nid = \"D0\"\ninput = -1\noutput = 18\n",
		"aux too large": "[[slot]]\nid = \"D1\"\nsize = \"twin\"\ninput = 11\naux = 70000\noutput = 13\n",
	}
	for name, src := range cases {
		_, err := Decode(strings.NewReader(src))
		if !errors.Is(err, errcode.InvalidTable) {
			t.Fatalf("%s: want invalid_table, got %v", name, err)
		}
	}
}

func TestDecodeBadID(t *testing.T) {
	if _, err := Decode(strings.NewReader("[[slot]]\nid = \"Q1\"\n")); err == nil {
		t.Fatal("expected error for unknown tag")
	}
}
