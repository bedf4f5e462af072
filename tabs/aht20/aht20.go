// Package aht20 drives the AHT20 temperature/humidity Tab through a two-wire
// slot. Measurement is two-phase:
//
//	d.Trigger(ctx)            // start a conversion
//	err := d.Collect(ctx, &s) // ErrNotReady while the sensor is busy
//
// Read performs trigger plus bounded polling. Conversions are fixed-point:
// tenths of °C and tenths of %RH.
package aht20

import (
	"context"
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// Address is the sensor's fixed I²C address.
const Address = 0x38

const (
	cmdTrigger    = 0xAC
	cmdInitialize = 0xBE
	cmdSoftReset  = 0xBA
	cmdStatus     = 0x71

	statusBusy       = 0x80
	statusCalibrated = 0x08
)

var (
	ErrNotReady = errors.New("aht20: not ready")
	ErrTimeout  = errors.New("aht20: timeout")
)

// Config holds timing knobs. Zero fields take defaults.
type Config struct {
	PollInterval   time.Duration // default 15 ms
	CollectTimeout time.Duration // default 250 ms
}

// ctxBus is implemented by two-wire slots; plain drivers.I2C buses fall back
// to Tx.
type ctxBus interface {
	TxContext(ctx context.Context, addr uint16, w, r []byte) error
}

// Device is one AHT20 on a two-wire bus.
type Device struct {
	bus  drivers.I2C
	cfg  Config
	buf  [7]byte
	last Sample
}

// New wraps bus. It does not touch the device.
func New(bus drivers.I2C, cfg Config) *Device {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 15 * time.Millisecond
	}
	if cfg.CollectTimeout <= 0 {
		cfg.CollectTimeout = 250 * time.Millisecond
	}
	return &Device{bus: bus, cfg: cfg}
}

func (d *Device) tx(ctx context.Context, w, r []byte) error {
	if b, ok := d.bus.(ctxBus); ok {
		return b.TxContext(ctx, Address, w, r)
	}
	return d.bus.Tx(Address, w, r)
}

// Configure calibrates the sensor unless it reports calibration already.
func (d *Device) Configure(ctx context.Context) error {
	st, err := d.Status(ctx)
	if err == nil && st&statusCalibrated != 0 {
		return nil
	}
	if err := d.tx(ctx, []byte{cmdInitialize, 0x08, 0x00}, nil); err != nil {
		return err
	}
	time.Sleep(10 * time.Millisecond)
	return nil
}

// Reset issues a soft reset; allow ~20 ms before further use.
func (d *Device) Reset(ctx context.Context) error {
	return d.tx(ctx, []byte{cmdSoftReset}, nil)
}

func (d *Device) Status(ctx context.Context) (byte, error) {
	var st [1]byte
	if err := d.tx(ctx, []byte{cmdStatus}, st[:]); err != nil {
		return 0, err
	}
	return st[0], nil
}

// Trigger starts a conversion (~80 ms).
func (d *Device) Trigger(ctx context.Context) error {
	return d.tx(ctx, []byte{cmdTrigger, 0x33, 0x00}, nil)
}

// Collect fetches a finished conversion into out.
func (d *Device) Collect(ctx context.Context, out *Sample) error {
	data := d.buf[:]
	if err := d.tx(ctx, nil, data); err != nil {
		return err
	}
	if data[0]&statusCalibrated == 0 || data[0]&statusBusy != 0 {
		return ErrNotReady
	}
	s := Sample{
		RawHumidity: uint32(data[1])<<12 | uint32(data[2])<<4 | uint32(data[3])>>4,
		RawTemp:     uint32(data[3]&0x0F)<<16 | uint32(data[4])<<8 | uint32(data[5]),
	}
	d.last = s
	if out != nil {
		*out = s
	}
	return nil
}

// Read triggers a conversion and polls until it completes, the collect
// timeout passes, or ctx ends.
func (d *Device) Read(ctx context.Context) (Sample, error) {
	if err := d.Trigger(ctx); err != nil {
		return Sample{}, err
	}
	deadline := time.Now().Add(d.cfg.CollectTimeout)
	for {
		var s Sample
		err := d.Collect(ctx, &s)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, ErrNotReady) {
			return Sample{}, err
		}
		if time.Now().After(deadline) {
			return Sample{}, ErrTimeout
		}
		select {
		case <-ctx.Done():
			return Sample{}, ctx.Err()
		case <-time.After(d.cfg.PollInterval):
		}
	}
}

// Last returns the most recent collected sample.
func (d *Device) Last() Sample { return d.last }

// Sample holds raw 20-bit readings.
type Sample struct {
	RawHumidity uint32
	RawTemp     uint32
}

func (s Sample) DeciRelHumidity() int32 {
	return int32(int64(s.RawHumidity) * 1000 / 0x100000)
}

func (s Sample) DeciCelsius() int32 {
	return int32(int64(s.RawTemp)*2000/0x100000) - 500
}

func (s Sample) Celsius() float32     { return float32(s.RawTemp)*200/0x100000 - 50 }
func (s Sample) RelHumidity() float32 { return float32(s.RawHumidity) * 100 / 0x100000 }
