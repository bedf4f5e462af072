package slot

import (
	"context"
	"sync/atomic"

	"tinygo.org/x/drivers"

	"clixx-go/errcode"
	"clixx-go/internal/busowner"
)

// TwoWire is an addressed I²C slot. Scalar Read and Write are not defined;
// bulk transfers go to the bound target address. TwoWire satisfies
// drivers.I2C, so Tab drivers can use the slot as their bus.
type TwoWire struct {
	base
	bus   drivers.I2C
	owner *busowner.Owner
	addr  atomic.Uint32
}

// SetAddress binds the 7-bit target address used by ReadData and WriteData.
func (t *TwoWire) SetAddress(addr uint16) error {
	if addr == 0 || addr > 0x7f {
		return errcode.New(errcode.OutOfRange, t.op("set_address"), "address must be 0x01..0x7f")
	}
	t.addr.Store(uint32(addr))
	return nil
}

// Address returns the bound target, or 0 when none is bound.
func (t *TwoWire) Address() uint16 { return uint16(t.addr.Load()) }

func (t *TwoWire) target(name string) (uint16, error) {
	a := t.Address()
	if a == 0 {
		return 0, errcode.New(errcode.NoAddress, t.op(name), "no target address bound")
	}
	return a, nil
}

func (t *TwoWire) ReadData(ctx context.Context, buf []byte, offset, length int) (int, error) {
	if err := t.live("read_data"); err != nil {
		return 0, err
	}
	if err := t.window("read_data", buf, offset, length); err != nil {
		return 0, err
	}
	addr, err := t.target("read_data")
	if err != nil {
		return 0, err
	}
	r := make([]byte, length)
	if err := t.owner.Do(ctx, func() error { return t.bus.Tx(addr, nil, r) }); err != nil {
		return 0, t.ioErr("read_data", err)
	}
	return copy(buf[offset:], r), nil
}

func (t *TwoWire) WriteData(ctx context.Context, buf []byte, offset, length int) (int, error) {
	if err := t.live("write_data"); err != nil {
		return 0, err
	}
	if err := t.window("write_data", buf, offset, length); err != nil {
		return 0, err
	}
	addr, err := t.target("write_data")
	if err != nil {
		return 0, err
	}
	w := append([]byte(nil), buf[offset:offset+length]...)
	if err := t.owner.Do(ctx, func() error { return t.bus.Tx(addr, w, nil) }); err != nil {
		return 0, t.ioErr("write_data", err)
	}
	return length, nil
}

// Tx performs a write-then-read transaction with addr on the slot's bus,
// bounded by the bus owner timeout.
func (t *TwoWire) Tx(addr uint16, w, r []byte) error {
	return t.TxContext(context.Background(), addr, w, r)
}

// TxContext is Tx bounded additionally by ctx.
func (t *TwoWire) TxContext(ctx context.Context, addr uint16, w, r []byte) error {
	if err := t.live("tx"); err != nil {
		return err
	}
	wb := append([]byte(nil), w...)
	var rb []byte
	if len(r) > 0 {
		rb = make([]byte, len(r))
	}
	if err := t.owner.Do(ctx, func() error { return t.bus.Tx(addr, wb, rb) }); err != nil {
		return t.ioErr("tx", err)
	}
	copy(r, rb)
	return nil
}

var _ drivers.I2C = (*TwoWire)(nil)
