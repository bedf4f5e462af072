package types

import "strconv"

// Pin is a physical pin number with an explicit "not wired" state.
// Physical pin 0 is a legal pin and is distinct from NoPin.
type Pin struct {
	n     uint16
	wired bool
}

// NoPin marks a descriptor field as not wired.
var NoPin = Pin{}

// P returns a wired pin.
func P(n int) Pin { return Pin{n: uint16(n), wired: true} }

func (p Pin) Wired() bool { return p.wired }

// Number returns the physical number; only meaningful when Wired.
func (p Pin) Number() int { return int(p.n) }

func (p Pin) String() string {
	if !p.wired {
		return "-"
	}
	return strconv.Itoa(int(p.n))
}

// Direction is a pin direction seen from the host.
type Direction uint8

const (
	In Direction = iota
	Out
)

func (d Direction) String() string {
	if d == Out {
		return "out"
	}
	return "in"
}

// Descriptor is one immutable row of a slot table. Input, Aux and Output are
// named from the peripheral's perspective: the host drives Input and samples
// Output and Aux.
type Descriptor struct {
	ID        SlotID
	Interface Interface
	Size      Size
	Input     Pin
	Aux       Pin
	Output    Pin

	// Bus names the physical bus behind a bus-oriented slot (e.g. "i2c1").
	// Several slots may alias one bus.
	Bus string
	// Address is the default two-wire target (0 = none bound).
	Address uint16
}

// Pins returns the wired pins with their host-side direction.
func (d Descriptor) Pins() []PinUse {
	var out []PinUse
	if d.Input.Wired() {
		out = append(out, PinUse{Pin: d.Input.Number(), Dir: Out})
	}
	if d.Aux.Wired() {
		out = append(out, PinUse{Pin: d.Aux.Number(), Dir: In})
	}
	if d.Output.Wired() {
		out = append(out, PinUse{Pin: d.Output.Number(), Dir: In})
	}
	return out
}

// PinUse pairs a physical pin with the direction the host configures it in.
type PinUse struct {
	Pin int
	Dir Direction
}
