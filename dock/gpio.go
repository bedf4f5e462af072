package dock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"clixx-go/buses"
	"clixx-go/errcode"
	"clixx-go/internal/busowner"
	"clixx-go/pinctl"
	"clixx-go/slot"
	"clixx-go/table"
	"clixx-go/types"
)

// pinBus names the bus owner that serialises pin-controller access.
const pinBus = "pins"

// defaultBus is used for bus-oriented rows that name no bus.
var defaultBus = map[types.Interface]string{
	types.TwoWire: table.BusI2C1,
	types.SPI:     table.BusSPI0,
	types.RS232:   table.BusUART0,
}

// GPIO is a Dock whose slots are wired straight to host pins and buses.
type GPIO struct {
	name    string
	owner   string // claim identity, unique per instance
	tbl     *table.Table
	ctrl    pinctl.Controller
	buses   buses.Provider
	timeout time.Duration
	log     zerolog.Logger

	life sync.Mutex // serialises Setup and Teardown

	mu    sync.RWMutex
	state *session // nil while Uninitialized
}

// session is everything one Setup built; it is published and retired whole.
type session struct {
	slots  map[types.SlotID]slot.Slot
	ids    []types.SlotID
	owners []*busowner.Owner
}

// Option configures a GPIO Dock.
type Option func(*GPIO)

// WithBuses supplies the provider for two-wire, SPI and serial slots.
func WithBuses(p buses.Provider) Option { return func(d *GPIO) { d.buses = p } }

// WithLogger sets the logger; the default discards.
func WithLogger(l zerolog.Logger) Option { return func(d *GPIO) { d.log = l } }

// WithTimeout bounds each bus transfer (enqueue and completion).
func WithTimeout(t time.Duration) Option { return func(d *GPIO) { d.timeout = t } }

// WithName names the Dock in logs and errors.
func WithName(name string) Option { return func(d *GPIO) { d.name = name } }

// NewGPIO returns an unconfigured Dock over tbl and ctrl.
func NewGPIO(tbl *table.Table, ctrl pinctl.Controller, opts ...Option) *GPIO {
	d := &GPIO{
		name:    "gpio",
		tbl:     tbl,
		ctrl:    ctrl,
		timeout: busowner.DefaultTimeout,
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(d)
	}
	if d.timeout <= 0 {
		d.timeout = busowner.DefaultTimeout
	}
	d.owner = fmt.Sprintf("%s@%p", d.name, d)
	d.log = d.log.With().Str("dock", d.name).Logger()
	return d
}

// Name is the Dock's display name.
func (d *GPIO) Name() string { return d.name }

// Table returns the wiring the Dock was built with.
func (d *GPIO) Table() *table.Table { return d.tbl }

func (d *GPIO) Setup(ctx context.Context) error {
	d.life.Lock()
	defer d.life.Unlock()

	if d.configured() {
		return errcode.New(errcode.AlreadyConfigured, "setup", d.name)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.ctrl.Init(); err != nil {
		return errcode.Wrap(errcode.HardwareInit, "setup "+d.name, err)
	}

	s, err := d.build(ctx)
	if err != nil {
		d.log.Error().Err(err).Msg("setup failed")
		return err
	}

	d.mu.Lock()
	d.state = s
	d.mu.Unlock()

	d.log.Info().Int("slots", len(s.ids)).Msg("dock configured")
	return nil
}

// build claims and configures pins, then creates one slot per row. On any
// failure it undoes everything it did.
func (d *GPIO) build(ctx context.Context) (_ *session, err error) {
	descs := d.tbl.Descriptors()
	s := &session{slots: make(map[types.SlotID]slot.Slot, len(descs))}

	var pins []int
	for _, desc := range descs {
		for _, u := range desc.Pins() {
			if !slices.Contains(pins, u.Pin) {
				pins = append(pins, u.Pin)
			}
		}
	}
	if err := d.ctrl.Claims().ClaimAll(d.owner, pins); err != nil {
		return nil, errcode.Wrap(errcode.HardwareInit, "setup "+d.name, err)
	}
	opened := false
	defer func() {
		if err == nil {
			return
		}
		for _, o := range s.owners {
			o.Stop()
		}
		if opened && d.buses != nil {
			if cerr := d.buses.Close(); cerr != nil {
				d.log.Warn().Err(cerr).Msg("closing buses after failed setup")
			}
		}
		d.ctrl.Claims().ReleaseAll(d.owner)
	}()

	for _, desc := range descs {
		for _, u := range desc.Pins() {
			if err := d.ctrl.SetDirection(u.Pin, u.Dir); err != nil {
				return nil, &errcode.E{
					C:   errcode.HardwareInit,
					Op:  "setup " + desc.ID.String(),
					Msg: "pin " + types.P(u.Pin).String() + " " + u.Dir.String(),
					Err: err,
				}
			}
		}
	}

	owners := make(map[string]*busowner.Owner)
	owner := func(bus string) *busowner.Owner {
		o, ok := owners[bus]
		if !ok {
			o = busowner.New(d.name+"/"+bus, d.timeout)
			owners[bus] = o
			s.owners = append(s.owners, o)
		}
		return o
	}

	for _, desc := range descs {
		if err := ctx.Err(); err != nil {
			return nil, errcode.Wrap(errcode.HardwareInit, "setup "+d.name, err)
		}
		b := slot.Backend{Pins: d.ctrl}
		switch desc.Interface {
		case types.Digital, types.Analog:
			b.Owner = owner(pinBus)
		default:
			bus := desc.Bus
			if bus == "" {
				bus = defaultBus[desc.Interface]
			}
			b.Owner = owner(bus)
			opened = true
			if err := d.attach(&b, desc.Interface, bus); err != nil {
				return nil, errcode.Wrap(errcode.HardwareInit, "setup "+desc.ID.String(), err)
			}
		}
		sl, err := slot.New(desc, b)
		if err != nil {
			return nil, errcode.Wrap(errcode.HardwareInit, "setup "+desc.ID.String(), err)
		}
		s.slots[desc.ID] = sl
		s.ids = append(s.ids, desc.ID)
		d.log.Debug().
			Str("slot", desc.ID.String()).
			Str("interface", desc.Interface.String()).
			Str("size", desc.Size.String()).
			Str("in", desc.Input.String()).
			Str("aux", desc.Aux.String()).
			Str("out", desc.Output.String()).
			Str("bus", desc.Bus).
			Msg("slot ready")
	}
	// descriptors arrive in id order already
	return s, nil
}

// attach resolves the bus handle a bus-oriented slot needs.
func (d *GPIO) attach(b *slot.Backend, kind types.Interface, bus string) error {
	if d.buses == nil {
		return errcode.New(errcode.UnknownBus, bus, "no bus provider")
	}
	var err error
	switch kind {
	case types.TwoWire:
		b.I2C, err = d.buses.I2C(bus)
	case types.SPI:
		b.SPI, err = d.buses.SPI(bus)
	case types.RS232:
		b.Port, err = d.buses.Serial(bus)
		if err == nil {
			// Keep one read inside a single transfer budget.
			err = b.Port.SetReadTimeout(d.timeout / 2)
		}
	}
	return err
}

func (d *GPIO) configured() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state != nil
}

func (d *GPIO) Teardown() error {
	d.life.Lock()
	defer d.life.Unlock()

	d.mu.Lock()
	s := d.state
	d.state = nil
	d.mu.Unlock()
	if s == nil {
		return nil
	}

	for _, sl := range s.slots {
		slot.Release(sl)
	}
	for _, o := range s.owners {
		o.Stop()
	}
	var errs []error
	if d.buses != nil {
		errs = append(errs, d.buses.Close())
	}
	claims := d.ctrl.Claims()
	claims.ReleaseAll(d.owner)
	if c, ok := d.ctrl.(io.Closer); ok && claims.Len() == 0 {
		errs = append(errs, c.Close())
	}
	if err := errors.Join(errs...); err != nil {
		d.log.Warn().Err(err).Msg("teardown")
		return errcode.Wrap(errcode.HardwareIO, "teardown "+d.name, err)
	}
	d.log.Info().Msg("dock torn down")
	return nil
}

func (d *GPIO) Slot(id types.SlotID) (slot.Slot, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.state == nil {
		return nil, errcode.New(errcode.NotConfigured, "slot "+id.String(), d.name)
	}
	s, ok := d.state.slots[id]
	if !ok {
		return nil, errcode.New(errcode.UnknownSlot, "slot "+id.String(), d.name)
	}
	return s, nil
}

func (d *GPIO) Available() ([]types.SlotID, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.state == nil {
		return nil, errcode.New(errcode.NotConfigured, "available", d.name)
	}
	return slices.Clone(d.state.ids), nil
}

// Simulated returns a GPIO Dock over in-memory pins and buses. Each digital
// and analog row has its Input jumpered to its Output, so written values read
// back.
func Simulated(tbl *table.Table, opts ...Option) *GPIO {
	sim := pinctl.NewSim()
	for _, desc := range tbl.Descriptors() {
		if desc.Interface != types.Digital && desc.Interface != types.Analog {
			continue
		}
		if desc.Input.Wired() && desc.Output.Wired() {
			sim.Jumper(desc.Input.Number(), desc.Output.Number())
		}
	}
	opts = append([]Option{WithBuses(buses.NewSim()), WithName("sim")}, opts...)
	return NewGPIO(tbl, sim, opts...)
}

var _ Dock = (*GPIO)(nil)
