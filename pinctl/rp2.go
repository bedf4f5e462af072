//go:build rp2040 || rp2350

package pinctl

import (
	"machine"

	"clixx-go/errcode"
	"clixx-go/types"
)

// RP2 drives RP2040 GPIOs directly. Pin numbers are GP numbers.
type RP2 struct {
	claims Claims
	adc    map[int]machine.ADC
}

func NewRP2() *RP2 { return &RP2{adc: make(map[int]machine.ADC)} }

func (r *RP2) Claims() *Claims { return &r.claims }

func (r *RP2) Init() error {
	machine.InitADC()
	return nil
}

// Probe always succeeds on an RP2 build.
func (r *RP2) Probe() error { return nil }

func inRange(n int) bool { return n >= 0 && n <= 29 }

func (r *RP2) SetDirection(pin int, dir types.Direction) error {
	if !inRange(pin) {
		return errcode.UnknownPin
	}
	p := machine.Pin(pin)
	if dir == types.Out {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.Low()
		return nil
	}
	p.Configure(machine.PinConfig{Mode: machine.PinInput})
	return nil
}

func (r *RP2) Read(pin int) (bool, error) {
	if !inRange(pin) {
		return false, errcode.UnknownPin
	}
	return machine.Pin(pin).Get(), nil
}

func (r *RP2) Write(pin int, level bool) error {
	if !inRange(pin) {
		return errcode.UnknownPin
	}
	machine.Pin(pin).Set(level)
	return nil
}

// ReadAnalog samples GP26..GP29. The ADC is configured on first use.
func (r *RP2) ReadAnalog(pin int) (uint16, error) {
	if pin < 26 || pin > 29 {
		return 0, errcode.NotSupported
	}
	a, ok := r.adc[pin]
	if !ok {
		a = machine.ADC{Pin: machine.Pin(pin)}
		a.Configure(machine.ADCConfig{})
		r.adc[pin] = a
	}
	return a.Get(), nil
}

// Resolution reports the width of values returned by ReadAnalog; machine.ADC
// scales samples to 16 bits.
func (r *RP2) Resolution() uint8 { return 16 }

var (
	_ Controller   = (*RP2)(nil)
	_ AnalogReader = (*RP2)(nil)
)
