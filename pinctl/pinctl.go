// Package pinctl is the pin-control layer beneath a Dock: initialise the
// GPIO subsystem, set pin directions, read and drive levels.
package pinctl

import (
	"sync"

	"clixx-go/errcode"
	"clixx-go/types"
)

// Controller is the pin-control collaborator consumed by a GPIO Dock.
// Pin numbers follow the numbering scheme of the slot table in use.
type Controller interface {
	// Init brings up the pin-control subsystem. It must be safe to call
	// more than once.
	Init() error
	SetDirection(pin int, dir types.Direction) error
	Read(pin int) (bool, error)
	Write(pin int, level bool) error
	// Claims returns the ownership ledger for this controller's pins.
	Claims() *Claims
}

// AnalogReader is implemented by controllers with an ADC.
type AnalogReader interface {
	ReadAnalog(pin int) (uint16, error)
	// Resolution is the ADC width in bits.
	Resolution() uint8
}

// AnalogWriter is implemented by controllers with a DAC.
type AnalogWriter interface {
	WriteAnalog(pin int, v uint16) error
}

// Claims records which owner holds each pin of one controller. A Dock claims
// every pin it configures, so two Docks over the same controller cannot both
// be configured.
type Claims struct {
	mu     sync.Mutex
	owners map[int]string // pin -> owner
}

// ClaimAll claims every pin for owner, or none. Re-claiming a pin the owner
// already holds is allowed.
func (c *Claims) ClaimAll(owner string, pins []int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.owners == nil {
		c.owners = make(map[int]string)
	}
	for _, p := range pins {
		if o, taken := c.owners[p]; taken && o != owner {
			return &errcode.E{C: errcode.PinInUse, Op: "claim", Msg: "pin " + types.P(p).String() + " held by " + o}
		}
	}
	for _, p := range pins {
		c.owners[p] = owner
	}
	return nil
}

// ReleaseAll drops every claim held by owner.
func (c *Claims) ReleaseAll(owner string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for p, o := range c.owners {
		if o == owner {
			delete(c.owners, p)
		}
	}
}

// Owner reports the current owner of pin, if any.
func (c *Claims) Owner(pin int) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	o, ok := c.owners[pin]
	return o, ok
}

// Len reports how many pins are claimed.
func (c *Claims) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.owners)
}
