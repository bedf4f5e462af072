package types

import (
	"fmt"
	"strings"
)

// ------------------------
// Interfaces & sizes
// ------------------------

// Interface is the electrical protocol a slot speaks. The value doubles as
// the tag letter of the slot's identifier.
type Interface byte

const (
	Analog  Interface = 'A'
	Digital Interface = 'D'
	RS232   Interface = 'R'
	SPI     Interface = 'S'
	TwoWire Interface = 'T'
)

func (i Interface) String() string {
	switch i {
	case Analog:
		return "analog"
	case Digital:
		return "digital"
	case RS232:
		return "serial"
	case SPI:
		return "spi"
	case TwoWire:
		return "twowire"
	default:
		return fmt.Sprintf("interface(%d)", byte(i))
	}
}

// Valid reports whether i is one of the known interface kinds.
func (i Interface) Valid() bool {
	switch i {
	case Analog, Digital, RS232, SPI, TwoWire:
		return true
	}
	return false
}

// ParseInterface accepts the long name ("digital") or the tag letter ("D").
func ParseInterface(s string) (Interface, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", "analog":
		return Analog, nil
	case "d", "digital":
		return Digital, nil
	case "r", "rs232", "serial":
		return RS232, nil
	case "s", "spi":
		return SPI, nil
	case "t", "twowire", "i2c":
		return TwoWire, nil
	}
	return 0, fmt.Errorf("unknown interface %q", s)
}

// Size is the physical form factor of a slot.
type Size uint8

const (
	SingleTab Size = iota + 1
	TwinTab
)

func (s Size) String() string {
	switch s {
	case SingleTab:
		return "single"
	case TwinTab:
		return "twin"
	default:
		return "unknown"
	}
}

func ParseSize(s string) (Size, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "st", "single":
		return SingleTab, nil
	case "tt", "twin":
		return TwinTab, nil
	}
	return 0, fmt.Errorf("unknown size %q", s)
}

// ------------------------
// Slot identifiers
// ------------------------

// SlotID names one connector: interface tag plus an index 0..9.
// The zero value is not a valid id.
type SlotID struct {
	Kind  Interface
	Index uint8
}

// MaxIndex is the highest index in a slot catalogue.
const MaxIndex = 9

func ID(kind Interface, index uint8) SlotID { return SlotID{Kind: kind, Index: index} }

func (id SlotID) String() string {
	return string([]byte{byte(id.Kind), '0' + id.Index})
}

func (id SlotID) Valid() bool { return id.Kind.Valid() && id.Index <= MaxIndex }

// Less orders ids by tag letter then index, which equals the order of
// their textual form.
func (id SlotID) Less(o SlotID) bool {
	if id.Kind != o.Kind {
		return id.Kind < o.Kind
	}
	return id.Index < o.Index
}

// Compare returns -1, 0 or +1; suitable for slices.SortFunc.
func (id SlotID) Compare(o SlotID) int {
	switch {
	case id.Less(o):
		return -1
	case o.Less(id):
		return 1
	}
	return 0
}

// ParseSlotID parses "D0".."R9" (case-insensitive).
func ParseSlotID(s string) (SlotID, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 2 || s[1] < '0' || s[1] > '9' {
		return SlotID{}, fmt.Errorf("invalid slot id %q", s)
	}
	id := SlotID{Kind: Interface(s[0]), Index: s[1] - '0'}
	if !id.Kind.Valid() {
		return SlotID{}, fmt.Errorf("invalid slot id %q", s)
	}
	return id, nil
}

// Catalogue constants.
var (
	Digital0 = ID(Digital, 0)
	Digital1 = ID(Digital, 1)
	Digital2 = ID(Digital, 2)
	Digital3 = ID(Digital, 3)
	Analog0  = ID(Analog, 0)
	Analog1  = ID(Analog, 1)
	TwoWire0 = ID(TwoWire, 0)
	TwoWire1 = ID(TwoWire, 1)
	SPI0     = ID(SPI, 0)
	SPI1     = ID(SPI, 1)
	RS232_0  = ID(RS232, 0)
	RS232_1  = ID(RS232, 1)
)

// ------------------------
// Values
// ------------------------

// Value is one scalar unit moved through a slot: a logic level for digital
// slots, an ADC/DAC magnitude for analog slots, one byte for serial and SPI.
type Value uint16

const (
	Low  Value = 0
	High Value = 1
)

// Level converts a logic level to a Value.
func Level(b bool) Value {
	if b {
		return High
	}
	return Low
}

func (v Value) Bool() bool { return v != 0 }
func (v Value) Byte() byte { return byte(v) }
