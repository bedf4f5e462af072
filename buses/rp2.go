//go:build rp2040 || rp2350

package buses

import (
	"context"
	"errors"
	"sync"
	"time"

	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers"

	"clixx-go/errcode"
)

// RP2Plan specifies wiring and operating parameters for the RP2 buses.
type RP2Plan struct {
	I2C  []I2CPlan
	UART []UARTPlan
}

type I2CPlan struct {
	ID  string // e.g. "i2c0"
	SDA int    // GPIO number
	SCL int    // GPIO number
	Hz  uint32 // bus frequency
}

type UARTPlan struct {
	ID   string // e.g. "uart0"
	TX   int    // GPIO number
	RX   int    // GPIO number
	Baud uint32
}

// DefaultRP2Plan matches the Pico catalogue.
var DefaultRP2Plan = RP2Plan{
	I2C:  []I2CPlan{{ID: "i2c0", SDA: 12, SCL: 13, Hz: 400_000}},
	UART: []UARTPlan{{ID: "uart0", TX: 0, RX: 1, Baud: 115200}},
}

// RP2 configures on-chip controllers from a plan.
type RP2 struct {
	mu     sync.Mutex
	i2c    map[string]*machine.I2C
	ports  map[string]*rp2Port
	failed map[string]error // bus id -> configure error
}

func NewRP2(plan RP2Plan) *RP2 {
	r := &RP2{
		i2c:    make(map[string]*machine.I2C),
		ports:  make(map[string]*rp2Port),
		failed: make(map[string]error),
	}
	for _, p := range plan.I2C {
		var hw *machine.I2C
		switch p.ID {
		case "i2c0":
			hw = machine.I2C0
		case "i2c1":
			hw = machine.I2C1
		default:
			continue
		}
		sda := machine.Pin(p.SDA)
		scl := machine.Pin(p.SCL)
		sda.Configure(machine.PinConfig{Mode: machine.PinI2C})
		scl.Configure(machine.PinConfig{Mode: machine.PinI2C})
		if err := hw.Configure(machine.I2CConfig{SCL: scl, SDA: sda, Frequency: p.Hz}); err != nil {
			r.failed[p.ID] = err
			continue
		}
		r.i2c[p.ID] = hw
	}
	for _, u := range plan.UART {
		var hw *uartx.UART
		switch u.ID {
		case "uart0":
			hw = uartx.UART0
		case "uart1":
			hw = uartx.UART1
		default:
			continue
		}
		// Defaults inside uartx apply if zero.
		err := hw.Configure(uartx.UARTConfig{
			BaudRate: u.Baud,
			TX:       machine.Pin(u.TX),
			RX:       machine.Pin(u.RX),
		})
		if err != nil {
			r.failed[u.ID] = err
			continue
		}
		r.ports[u.ID] = &rp2Port{u: hw, timeout: 100 * time.Millisecond}
	}
	return r
}

func (r *RP2) I2C(id string) (drivers.I2C, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	hw := r.i2c[id]
	if hw == nil {
		return nil, unavailable(r.failed, id)
	}
	return hw, nil
}

func (r *RP2) SPI(id string) (drivers.SPI, error) { return nil, errcode.UnknownBus }

func (r *RP2) Serial(id string) (Port, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.ports[id]
	if p == nil {
		return nil, unavailable(r.failed, id)
	}
	return p, nil
}


// Close is a no-op: on-chip controllers stay configured for the process.
func (r *RP2) Close() error { return nil }

// rp2Port adapts uartx to Port.
type rp2Port struct {
	u       *uartx.UART
	timeout time.Duration
}

func (p *rp2Port) Write(b []byte) (int, error) { return p.u.Write(b) }

func (p *rp2Port) Read(b []byte) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	n, err := p.u.RecvSomeContext(ctx, b)
	if errors.Is(err, context.DeadlineExceeded) {
		return n, nil
	}
	return n, err
}

func (p *rp2Port) SetReadTimeout(t time.Duration) error {
	p.timeout = t
	return nil
}

func (p *rp2Port) Close() error { return nil }

var _ Provider = (*RP2)(nil)
