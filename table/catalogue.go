package table

import "clixx-go/types"

// Bus names used by the built-in catalogues.
const (
	BusI2C0  = "i2c0"
	BusI2C1  = "i2c1"
	BusSPI0  = "spi0"
	BusUART0 = "uart0"
)

func digital(idx uint8, size types.Size, in, aux, out types.Pin) types.Descriptor {
	return types.Descriptor{
		ID: types.ID(types.Digital, idx), Interface: types.Digital, Size: size,
		Input: in, Aux: aux, Output: out,
	}
}

func onBus(kind types.Interface, idx uint8, bus string) types.Descriptor {
	return types.Descriptor{ID: types.ID(kind, idx), Interface: kind, Size: types.SingleTab, Bus: bus}
}

// Raspberry is the Raspberry Pi carrier, using physical header numbering.
// All ten two-wire slots share the Pi's user I2C bus. The D1 and D2 inputs
// sit on GPIO17 and GPIO20 (headers 11 and 38).
func Raspberry() *Table {
	descs := []types.Descriptor{
		digital(0, types.SingleTab, types.P(22), types.NoPin, types.P(18)),
		digital(1, types.TwinTab, types.P(11), types.P(16), types.P(18)),
		digital(2, types.TwinTab, types.P(38), types.P(19), types.P(16)),
		onBus(types.SPI, 0, BusSPI0),
		onBus(types.RS232, 0, BusUART0),
	}
	for i := uint8(0); i <= types.MaxIndex; i++ {
		descs = append(descs, onBus(types.TwoWire, i, BusI2C1))
	}
	return MustNew(descs...)
}

// Pico is an RP2040 carrier using GPIO (GP) numbering.
func Pico() *Table {
	return MustNew(
		digital(0, types.SingleTab, types.P(2), types.NoPin, types.P(3)),
		digital(1, types.SingleTab, types.P(6), types.NoPin, types.P(7)),
		onBus(types.TwoWire, 0, BusI2C0),
		onBus(types.TwoWire, 1, BusI2C0),
		onBus(types.RS232, 0, BusUART0),
	)
}
