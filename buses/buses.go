// Package buses supplies the shared physical buses (I²C, SPI, UART) that
// bus-oriented slots attach to. Bus contracts follow tinygo.org/x/drivers so
// that Tab drivers written against it run unchanged.
package buses

import (
	"io"
	"time"

	"tinygo.org/x/drivers"

	"clixx-go/errcode"
)

// Port is a byte-stream transport for RS232 slots. Read returns 0, nil when
// the read timeout elapses with no data.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// Provider resolves bus ids named in a slot table. Repeated calls with the
// same id return the same bus until Close, which the owning Dock calls at
// teardown.
type Provider interface {
	I2C(id string) (drivers.I2C, error)
	SPI(id string) (drivers.SPI, error)
	Serial(id string) (Port, error)
	Close() error
}

// unavailable explains why bus id has no handle: the error configuring it
// returned, or unknown_bus when it was never planned.
func unavailable(failed map[string]error, id string) error {
	if err, ok := failed[id]; ok {
		return errcode.Wrap(errcode.HardwareInit, "configure "+id, err)
	}
	return errcode.New(errcode.UnknownBus, "bus", id)
}
