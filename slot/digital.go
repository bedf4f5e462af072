package slot

import (
	"context"

	"clixx-go/errcode"
	"clixx-go/internal/busowner"
	"clixx-go/pinctl"
	"clixx-go/types"
)

// Digital drives the Input pin and samples the Output pin. Twin-tab slots
// also expose the Aux pin through ReadAux.
type Digital struct {
	base
	pins  pinctl.Controller
	owner *busowner.Owner
}

func (d *Digital) Read(ctx context.Context) (types.Value, error) {
	lvl, err := d.sample(ctx, "read", d.desc.Output)
	return types.Level(lvl), err
}

// ReadAux samples the auxiliary pin of a twin-tab slot.
func (d *Digital) ReadAux(ctx context.Context) (bool, error) {
	return d.sample(ctx, "read_aux", d.desc.Aux)
}

func (d *Digital) Write(ctx context.Context, v types.Value) error {
	if err := d.live("write"); err != nil {
		return err
	}
	if !d.desc.Input.Wired() {
		return errcode.New(errcode.NotSupported, d.op("write"), "input pin not wired")
	}
	pin := d.desc.Input.Number()
	err := d.owner.Do(ctx, func() error { return d.pins.Write(pin, v.Bool()) })
	return d.ioErr("write", err)
}

func (d *Digital) sample(ctx context.Context, name string, p types.Pin) (bool, error) {
	if err := d.live(name); err != nil {
		return false, err
	}
	if !p.Wired() {
		return false, errcode.New(errcode.NotSupported, d.op(name), "pin not wired")
	}
	var lvl bool
	err := d.owner.Do(ctx, func() error {
		var err error
		lvl, err = d.pins.Read(p.Number())
		return err
	})
	if err != nil {
		return false, d.ioErr(name, err)
	}
	return lvl, nil
}

// Analog samples the Output pin through the controller's ADC and drives the
// Input pin through its DAC, when the controller has them.
type Analog struct {
	base
	adc   pinctl.AnalogReader
	dac   pinctl.AnalogWriter
	owner *busowner.Owner
}

func newAnalog(desc types.Descriptor, pins pinctl.Controller, owner *busowner.Owner) *Analog {
	a := &Analog{base: base{desc: desc}, owner: owner}
	a.adc, _ = pins.(pinctl.AnalogReader)
	a.dac, _ = pins.(pinctl.AnalogWriter)
	return a
}

// Resolution reports the ADC width in bits, or 0 without an ADC.
func (a *Analog) Resolution() uint8 {
	if a.adc == nil {
		return 0
	}
	return a.adc.Resolution()
}

func (a *Analog) Read(ctx context.Context) (types.Value, error) {
	if err := a.live("read"); err != nil {
		return 0, err
	}
	if a.adc == nil || !a.desc.Output.Wired() {
		return 0, a.unsupported("read")
	}
	pin := a.desc.Output.Number()
	var v uint16
	err := a.owner.Do(ctx, func() error {
		var err error
		v, err = a.adc.ReadAnalog(pin)
		return err
	})
	if err != nil {
		return 0, a.ioErr("read", err)
	}
	return types.Value(v), nil
}

func (a *Analog) Write(ctx context.Context, v types.Value) error {
	if err := a.live("write"); err != nil {
		return err
	}
	if a.dac == nil || !a.desc.Input.Wired() {
		return a.unsupported("write")
	}
	pin := a.desc.Input.Number()
	return a.ioErr("write", a.owner.Do(ctx, func() error { return a.dac.WriteAnalog(pin, uint16(v)) }))
}
