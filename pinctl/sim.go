package pinctl

import (
	"fmt"
	"sync"

	"clixx-go/types"
)

// Sim is an in-memory Controller for host-side tests and the simulated Dock.
// Jumpers connect a host output to a host input so that driving one is
// observed on the other, which models a loopback Tab.
type Sim struct {
	mu      sync.RWMutex
	claims  Claims
	inits   int
	pins    map[int]*simPin
	jumpers map[int][]int // driven pin -> pins that follow it

	// FailInit and FailPin inject faults for tests.
	FailInit error
	FailPin  map[int]error

	resolution uint8
}

type simPin struct {
	dir    types.Direction
	level  bool
	analog uint16
}

// SimOption configures a Sim.
type SimOption func(*Sim)

// WithJumper wires pin from to pin to.
func WithJumper(from, to int) SimOption {
	return func(s *Sim) { s.jumpers[from] = append(s.jumpers[from], to) }
}

// WithADC sets the reported ADC resolution (default 10 bits).
func WithADC(bits uint8) SimOption { return func(s *Sim) { s.resolution = bits } }

func NewSim(opts ...SimOption) *Sim {
	s := &Sim{
		pins:       make(map[int]*simPin),
		jumpers:    make(map[int][]int),
		FailPin:    make(map[int]error),
		resolution: 10,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Jumper wires from to to after construction.
func (s *Sim) Jumper(from, to int) {
	s.mu.Lock()
	s.jumpers[from] = append(s.jumpers[from], to)
	s.mu.Unlock()
}

func (s *Sim) Claims() *Claims { return &s.claims }

func (s *Sim) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailInit != nil {
		return s.FailInit
	}
	s.inits++
	return nil
}

func (s *Sim) SetDirection(pin int, dir types.Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailPin[pin]; err != nil {
		return err
	}
	p := s.pin(pin)
	p.dir = dir
	if dir == types.Out {
		p.level = false
	}
	return nil
}

func (s *Sim) Read(pin int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.FailPin[pin]; err != nil {
		return false, err
	}
	p, ok := s.pins[pin]
	if !ok {
		return false, fmt.Errorf("sim: pin %d not configured", pin)
	}
	return p.level, nil
}

func (s *Sim) Write(pin int, level bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailPin[pin]; err != nil {
		return err
	}
	p, ok := s.pins[pin]
	if !ok || p.dir != types.Out {
		return fmt.Errorf("sim: pin %d not configured as output", pin)
	}
	p.level = level
	for _, to := range s.jumpers[pin] {
		s.pin(to).level = level
	}
	return nil
}

func (s *Sim) ReadAnalog(pin int) (uint16, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pins[pin]
	if !ok {
		return 0, fmt.Errorf("sim: pin %d not configured", pin)
	}
	return p.analog, nil
}

func (s *Sim) WriteAnalog(pin int, v uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pins[pin]
	if !ok || p.dir != types.Out {
		return fmt.Errorf("sim: pin %d not configured as output", pin)
	}
	p.analog = v
	for _, to := range s.jumpers[pin] {
		s.pin(to).analog = v
	}
	return nil
}

func (s *Sim) Resolution() uint8 { return s.resolution }

// Level is a test hook returning the current level and direction of pin.
func (s *Sim) Level(pin int) (level bool, dir types.Direction, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pins[pin]
	if !ok {
		return false, 0, false
	}
	return p.level, p.dir, true
}

// Drive is a test hook that sets a pin's level as if a peripheral drove it.
func (s *Sim) Drive(pin int, level bool) {
	s.mu.Lock()
	s.pin(pin).level = level
	s.mu.Unlock()
}

// InitCount reports how many times Init succeeded.
func (s *Sim) InitCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inits
}

// caller holds lock
func (s *Sim) pin(n int) *simPin {
	p, ok := s.pins[n]
	if !ok {
		p = &simPin{}
		s.pins[n] = p
	}
	return p
}

var (
	_ Controller   = (*Sim)(nil)
	_ AnalogReader = (*Sim)(nil)
	_ AnalogWriter = (*Sim)(nil)
)
