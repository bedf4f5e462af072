//go:build !rp2040 && !rp2350

package buses

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.bug.st/serial"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"

	"clixx-go/errcode"
)

// HostConfig names the host devices behind table bus ids.
type HostConfig struct {
	// I2C maps a bus id to a periph i2creg name ("i2c1" -> "I2C1" by default).
	I2C map[string]string
	// SPI maps a bus id to a periph spireg name ("spi0" -> "SPI0.0" by default).
	SPI   map[string]string
	SPIHz int64
	// Serial maps a bus id to a device path ("uart0" -> "/dev/serial0").
	Serial map[string]string
	Baud   int
}

// Host opens real buses through periph.io and go.bug.st/serial.
type Host struct {
	cfg HostConfig

	mu    sync.Mutex
	ready bool
	i2c   map[string]i2c.BusCloser
	spi   map[string]*hostSPI
	ports map[string]serial.Port
}

func NewHost(cfg HostConfig) *Host {
	if cfg.SPIHz <= 0 {
		cfg.SPIHz = 1_000_000
	}
	if cfg.Baud <= 0 {
		cfg.Baud = 9600
	}
	return &Host{
		cfg:   cfg,
		i2c:   make(map[string]i2c.BusCloser),
		spi:   make(map[string]*hostSPI),
		ports: make(map[string]serial.Port),
	}
}

// caller holds lock
func (h *Host) init() error {
	if h.ready {
		return nil
	}
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph host init: %w", err)
	}
	h.ready = true
	return nil
}

func (h *Host) I2C(id string) (drivers.I2C, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if b, ok := h.i2c[id]; ok {
		return b, nil
	}
	if err := h.init(); err != nil {
		return nil, err
	}
	name := h.cfg.I2C[id]
	if name == "" {
		name = strings.ToUpper(id)
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, &errcode.E{C: errcode.UnknownBus, Op: "i2c " + id, Err: err}
	}
	h.i2c[id] = b
	return b, nil
}

func (h *Host) SPI(id string) (drivers.SPI, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.spi[id]; ok {
		return s, nil
	}
	if err := h.init(); err != nil {
		return nil, err
	}
	name := h.cfg.SPI[id]
	if name == "" {
		name = strings.ToUpper(id) + ".0"
	}
	p, err := spireg.Open(name)
	if err != nil {
		return nil, &errcode.E{C: errcode.UnknownBus, Op: "spi " + id, Err: err}
	}
	c, err := p.Connect(physic.Frequency(h.cfg.SPIHz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		_ = p.Close()
		return nil, &errcode.E{C: errcode.HardwareInit, Op: "spi " + id, Err: err}
	}
	s := &hostSPI{port: p, conn: c}
	h.spi[id] = s
	return s, nil
}

func (h *Host) Serial(id string) (Port, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if p, ok := h.ports[id]; ok {
		return p, nil
	}
	path := h.cfg.Serial[id]
	if path == "" {
		path = "/dev/serial0"
	}
	p, err := serial.Open(path, &serial.Mode{BaudRate: h.cfg.Baud})
	if err != nil {
		return nil, &errcode.E{C: errcode.UnknownBus, Op: "serial " + id, Err: err}
	}
	h.ports[id] = p
	return p, nil
}

// Close releases every bus opened so far; later calls reopen them.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	var errs []error
	for id, b := range h.i2c {
		errs = append(errs, b.Close())
		delete(h.i2c, id)
	}
	for id, s := range h.spi {
		errs = append(errs, s.port.Close())
		delete(h.spi, id)
	}
	for id, p := range h.ports {
		errs = append(errs, p.Close())
		delete(h.ports, id)
	}
	return errors.Join(errs...)
}

// hostSPI adapts a periph SPI connection to drivers.SPI.
type hostSPI struct {
	port spi.PortCloser
	conn spi.Conn
}

// Tx pads to equal lengths: periph requires them for full duplex.
func (s *hostSPI) Tx(w, r []byte) error {
	if len(r) == 0 || len(w) == len(r) {
		return s.conn.Tx(w, r)
	}
	n := max(len(w), len(r))
	wb := make([]byte, n)
	copy(wb, w)
	rb := make([]byte, n)
	if err := s.conn.Tx(wb, rb); err != nil {
		return err
	}
	copy(r, rb)
	return nil
}

func (s *hostSPI) Transfer(b byte) (byte, error) {
	var r [1]byte
	err := s.conn.Tx([]byte{b}, r[:])
	return r[0], err
}

// SerialPorts lists serial devices present on the host.
func SerialPorts() ([]string, error) { return serial.GetPortsList() }

var _ Provider = (*Host)(nil)
