//go:build !rp2040 && !rp2350

package pinctl

import (
	"fmt"
	"strconv"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"clixx-go/errcode"
	"clixx-go/types"
)

// Periph drives Raspberry Pi header pins through periph.io. Pin numbers are
// physical header positions, as in the Raspberry catalogue.
type Periph struct {
	mu     sync.Mutex
	claims Claims
	ready  bool
	pins   map[int]gpio.PinIO
}

func NewPeriph() *Periph { return &Periph{pins: make(map[int]gpio.PinIO)} }

func (p *Periph) Claims() *Claims { return &p.claims }

func (p *Periph) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ready {
		return nil
	}
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph host init: %w", err)
	}
	p.ready = true
	return nil
}

// Probe reports whether periph can see BCM GPIO lines on this host.
func (p *Periph) Probe() error {
	if err := p.Init(); err != nil {
		return err
	}
	if gpioreg.ByName("GPIO25") == nil {
		return &errcode.E{C: errcode.NoBackend, Op: "periph", Msg: "no BCM GPIO registered"}
	}
	return nil
}

// caller holds lock
func (p *Periph) lookup(physical int) (gpio.PinIO, error) {
	if io, ok := p.pins[physical]; ok {
		return io, nil
	}
	bcm, ok := PhysicalToBCM(physical)
	if !ok {
		return nil, &errcode.E{C: errcode.UnknownPin, Op: "periph", Msg: "header pin " + strconv.Itoa(physical) + " is not a GPIO"}
	}
	io := gpioreg.ByName("GPIO" + strconv.Itoa(bcm))
	if io == nil {
		return nil, &errcode.E{C: errcode.UnknownPin, Op: "periph", Msg: "GPIO" + strconv.Itoa(bcm) + " not registered"}
	}
	p.pins[physical] = io
	return io, nil
}

func (p *Periph) SetDirection(pin int, dir types.Direction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	io, err := p.lookup(pin)
	if err != nil {
		return err
	}
	if dir == types.Out {
		return io.Out(gpio.Low)
	}
	return io.In(gpio.PullNoChange, gpio.NoEdge)
}

func (p *Periph) Read(pin int) (bool, error) {
	p.mu.Lock()
	io, err := p.lookup(pin)
	p.mu.Unlock()
	if err != nil {
		return false, err
	}
	return io.Read() == gpio.High, nil
}

func (p *Periph) Write(pin int, level bool) error {
	p.mu.Lock()
	io, err := p.lookup(pin)
	p.mu.Unlock()
	if err != nil {
		return err
	}
	return io.Out(gpio.Level(level))
}

var _ Controller = (*Periph)(nil)
