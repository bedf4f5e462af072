package buses

import (
	"fmt"
	"sync"
	"time"

	"tinygo.org/x/drivers"
)

// ----------------------------- I²C (sim) -------------------------------------

// I2CDevice answers transactions addressed to it on a SimI2C bus.
type I2CDevice interface {
	Tx(w, r []byte) error
}

// SimI2C implements drivers.I2C over a set of simulated targets. Transactions
// to an address with no target fail like a NACK.
type SimI2C struct {
	mu      sync.Mutex
	devices map[uint16]I2CDevice
	LastTx  struct {
		Addr uint16
		W    []byte
		Rn   int
	}
	Txs int
}

func NewSimI2C() *SimI2C { return &SimI2C{devices: make(map[uint16]I2CDevice)} }

// Attach places dev at addr.
func (b *SimI2C) Attach(addr uint16, dev I2CDevice) {
	b.mu.Lock()
	b.devices[addr] = dev
	b.mu.Unlock()
}

func (b *SimI2C) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.LastTx.Addr = addr
	b.LastTx.W = append([]byte(nil), w...)
	b.LastTx.Rn = len(r)
	b.Txs++
	dev, ok := b.devices[addr]
	if !ok {
		return fmt.Errorf("i2c: no ack from 0x%02x", addr)
	}
	return dev.Tx(w, r)
}

// Registers is a simple register-file target: a write sets the register
// pointer from w[0] and stores any following bytes; a read returns bytes from
// the pointer onwards. The pointer auto-increments.
type Registers struct {
	mu  sync.Mutex
	Mem [256]byte
	ptr byte
}

func (d *Registers) Tx(w, r []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(w) > 0 {
		d.ptr = w[0]
		for _, b := range w[1:] {
			d.Mem[d.ptr] = b
			d.ptr++
		}
	}
	for i := range r {
		r[i] = d.Mem[d.ptr]
		d.ptr++
	}
	return nil
}

// ----------------------------- SPI (sim) -------------------------------------

// SimSPI is an SPI bus with MOSI jumpered to MISO.
type SimSPI struct {
	mu  sync.Mutex
	Out []byte // every byte clocked out, in order
}

func (s *SimSPI) Tx(w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Out = append(s.Out, w...)
	for i := range r {
		if i < len(w) {
			r[i] = w[i]
		} else {
			r[i] = 0
		}
	}
	return nil
}

func (s *SimSPI) Transfer(b byte) (byte, error) {
	var r [1]byte
	err := s.Tx([]byte{b}, r[:])
	return r[0], err
}

// ----------------------------- Serial (sim) ----------------------------------

// SimPort is a serial port with TX looped back to RX.
type SimPort struct {
	mu      sync.Mutex
	buf     []byte
	avail   chan struct{}
	timeout time.Duration
	closed  bool
}

func NewSimPort() *SimPort {
	return &SimPort{avail: make(chan struct{}, 1), timeout: 50 * time.Millisecond}
}

func (p *SimPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, fmt.Errorf("serial: port closed")
	}
	p.buf = append(p.buf, b...)
	select {
	case p.avail <- struct{}{}:
	default:
	}
	return len(b), nil
}

// Feed queues bytes as if the peripheral sent them.
func (p *SimPort) Feed(b []byte) { _, _ = p.Write(b) }

func (p *SimPort) Read(b []byte) (int, error) {
	deadline := time.NewTimer(p.readTimeout())
	defer deadline.Stop()
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return 0, fmt.Errorf("serial: port closed")
		}
		if len(p.buf) > 0 {
			n := copy(b, p.buf)
			p.buf = p.buf[n:]
			p.mu.Unlock()
			return n, nil
		}
		p.mu.Unlock()
		select {
		case <-p.avail:
		case <-deadline.C:
			return 0, nil
		}
	}
}

func (p *SimPort) readTimeout() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timeout
}

func (p *SimPort) SetReadTimeout(t time.Duration) error {
	p.mu.Lock()
	p.timeout = t
	p.mu.Unlock()
	return nil
}

func (p *SimPort) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// ----------------------------- Provider (sim) --------------------------------

// Sim hands out simulated buses, creating each id on first use.
type Sim struct {
	mu    sync.Mutex
	i2c   map[string]*SimI2C
	spi   map[string]*SimSPI
	ports map[string]*SimPort
}

func NewSim() *Sim {
	return &Sim{
		i2c:   make(map[string]*SimI2C),
		spi:   make(map[string]*SimSPI),
		ports: make(map[string]*SimPort),
	}
}

func (s *Sim) I2C(id string) (drivers.I2C, error) { return s.I2CBus(id), nil }
func (s *Sim) SPI(id string) (drivers.SPI, error) { return s.SPIBus(id), nil }
func (s *Sim) Serial(id string) (Port, error)     { return s.Port(id), nil }

// I2CBus returns the concrete simulated bus for id, for attaching targets.
func (s *Sim) I2CBus(id string) *SimI2C {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.i2c[id]
	if !ok {
		b = NewSimI2C()
		s.i2c[id] = b
	}
	return b
}

func (s *Sim) SPIBus(id string) *SimSPI {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.spi[id]
	if !ok {
		b = &SimSPI{}
		s.spi[id] = b
	}
	return b
}

func (s *Sim) Port(id string) *SimPort {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.ports[id]
	if !ok || p.isClosed() {
		p = NewSimPort()
		s.ports[id] = p
	}
	return p
}

// Close closes the simulated ports. I²C targets and SPI captures survive so
// tests can inspect them after teardown.
func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.ports {
		_ = p.Close()
	}
	return nil
}

func (p *SimPort) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

var (
	_ drivers.I2C = (*SimI2C)(nil)
	_ drivers.SPI = (*SimSPI)(nil)
	_ Port        = (*SimPort)(nil)
	_ Provider    = (*Sim)(nil)
)
