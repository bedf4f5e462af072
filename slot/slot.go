// Package slot implements live Slots: one bound connector per descriptor,
// with a uniform read/write contract over digital, analog, stream (SPI and
// serial) and two-wire electronics.
//
// Every transfer runs on the bus owner shared by all slots wired to the same
// physical bus, so at most one transfer is in flight per bus. Operations that
// a slot's interface does not define fail with errcode.NotSupported.
package slot

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"

	"tinygo.org/x/drivers"

	"clixx-go/buses"
	"clixx-go/errcode"
	"clixx-go/internal/busowner"
	"clixx-go/pinctl"
	"clixx-go/types"
)

// Slot is one bound connector on a configured Dock.
type Slot interface {
	Descriptor() types.Descriptor
	ID() types.SlotID
	Interface() types.Interface
	Size() types.Size

	// Read returns one interface-appropriate unit: a logic level, an ADC
	// magnitude, or one received byte.
	Read(ctx context.Context) (types.Value, error)
	// Write drives one unit to the slot.
	Write(ctx context.Context, v types.Value) error
	// ReadData fills buf[offset:offset+length] and returns the count read.
	ReadData(ctx context.Context, buf []byte, offset, length int) (int, error)
	// WriteData sends buf[offset:offset+length] and returns the count written.
	WriteData(ctx context.Context, buf []byte, offset, length int) (int, error)
}

// Backend carries the collaborators a slot binds to. Only the fields the
// descriptor's interface needs are consulted.
type Backend struct {
	Pins pinctl.Controller
	// Owner serialises the slot's bus: the pin controller for digital and
	// analog slots, the named bus otherwise.
	Owner *busowner.Owner

	I2C  drivers.I2C
	SPI  drivers.SPI
	Port buses.Port
}

// New builds the slot variant for desc.Interface.
func New(desc types.Descriptor, b Backend) (Slot, error) {
	op := "slot " + desc.ID.String()
	if b.Owner == nil {
		return nil, errcode.New(errcode.NotConfigured, op, "no bus owner")
	}
	switch desc.Interface {
	case types.Digital:
		if b.Pins == nil {
			return nil, errcode.New(errcode.NotSupported, op, "no pin controller")
		}
		return &Digital{base: base{desc: desc}, pins: b.Pins, owner: b.Owner}, nil
	case types.Analog:
		if b.Pins == nil {
			return nil, errcode.New(errcode.NotSupported, op, "no pin controller")
		}
		return newAnalog(desc, b.Pins, b.Owner), nil
	case types.SPI:
		if b.SPI == nil {
			return nil, errcode.New(errcode.UnknownBus, op, "no spi bus "+desc.Bus)
		}
		return &SPI{base: base{desc: desc}, bus: b.SPI, owner: b.Owner}, nil
	case types.RS232:
		if b.Port == nil {
			return nil, errcode.New(errcode.UnknownBus, op, "no serial port "+desc.Bus)
		}
		return &Serial{base: base{desc: desc}, port: b.Port, owner: b.Owner}, nil
	case types.TwoWire:
		if b.I2C == nil {
			return nil, errcode.New(errcode.UnknownBus, op, "no i2c bus "+desc.Bus)
		}
		t := &TwoWire{base: base{desc: desc}, bus: b.I2C, owner: b.Owner}
		t.addr.Store(uint32(desc.Address))
		return t, nil
	}
	return nil, errcode.New(errcode.InvalidTable, op, "unknown interface "+desc.Interface.String())
}

// Release marks s released. Later operations fail with errcode.SlotReleased.
func Release(s Slot) {
	if r, ok := s.(interface{ release() }); ok {
		r.release()
	}
}

// ----------------------------- shared base -----------------------------------

// base holds the descriptor and the released flag. Its I/O methods fail with
// not_supported; variants override the ones their interface defines.
type base struct {
	desc     types.Descriptor
	released atomic.Bool
}

func (b *base) Descriptor() types.Descriptor { return b.desc }
func (b *base) ID() types.SlotID             { return b.desc.ID }
func (b *base) Interface() types.Interface   { return b.desc.Interface }
func (b *base) Size() types.Size             { return b.desc.Size }

func (b *base) release() { b.released.Store(true) }

func (b *base) Read(context.Context) (types.Value, error) {
	return 0, b.unsupported("read")
}

func (b *base) Write(context.Context, types.Value) error {
	return b.unsupported("write")
}

func (b *base) ReadData(context.Context, []byte, int, int) (int, error) {
	return 0, b.unsupported("read_data")
}

func (b *base) WriteData(context.Context, []byte, int, int) (int, error) {
	return 0, b.unsupported("write_data")
}

func (b *base) op(name string) string { return name + " " + b.desc.ID.String() }

func (b *base) unsupported(name string) error {
	return errcode.New(errcode.NotSupported, b.op(name), b.desc.Interface.String()+" slot")
}

// live fails once the owning Dock has torn the slot down.
func (b *base) live(name string) error {
	if b.released.Load() {
		return &errcode.E{C: errcode.SlotReleased, Op: b.op(name)}
	}
	return nil
}

// window validates a bulk-transfer range before anything touches the bus.
func (b *base) window(name string, buf []byte, offset, length int) error {
	if offset < 0 || length < 0 || offset > len(buf) || length > len(buf)-offset {
		return errcode.New(errcode.OutOfRange, b.op(name), "buffer range outside buffer")
	}
	return nil
}

// byteOf narrows v for byte-oriented slots.
func (b *base) byteOf(name string, v types.Value) (byte, error) {
	if v > 0xff {
		return 0, errcode.New(errcode.OutOfRange, b.op(name), "value "+strconv.Itoa(int(v))+" exceeds one byte")
	}
	return v.Byte(), nil
}

// ioErr classifies a failure from a bus or pin collaborator. Timeouts,
// cancellation and release pass through; everything else is hw_io.
func (b *base) ioErr(name string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	switch errcode.Of(err) {
	case errcode.Timeout, errcode.SlotReleased:
		return err
	}
	return &errcode.E{C: errcode.HardwareIO, Op: b.op(name), Err: err}
}
