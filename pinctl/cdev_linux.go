//go:build linux && !rp2040 && !rp2350

package pinctl

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/warthog618/go-gpiocdev"

	"clixx-go/errcode"
	"clixx-go/types"
)

// Cdev drives header pins through the Linux GPIO character device. Pin
// numbers are physical header positions; they are translated to line
// offsets on Chip (gpiochip0 on a Raspberry Pi, where offset == BCM).
type Cdev struct {
	Chip     string
	Consumer string

	mu     sync.Mutex
	claims Claims
	chip   *gpiocdev.Chip
	lines  map[int]*gpiocdev.Line
}

func NewCdev(chip string) *Cdev {
	if chip == "" {
		chip = "gpiochip0"
	}
	return &Cdev{Chip: chip, Consumer: "clixx", lines: make(map[int]*gpiocdev.Line)}
}

func (c *Cdev) Claims() *Claims { return &c.claims }

// Probe reports whether the configured chip is present.
func (c *Cdev) Probe() error { return gpiocdev.IsChip(c.Chip) }

func (c *Cdev) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.chip != nil {
		return nil
	}
	chip, err := gpiocdev.NewChip(c.Chip, gpiocdev.WithConsumer(c.Consumer))
	if err != nil {
		return fmt.Errorf("open %s: %w", c.Chip, err)
	}
	c.chip = chip
	return nil
}

func offsetOf(physical int) (int, error) {
	bcm, ok := PhysicalToBCM(physical)
	if !ok {
		return 0, &errcode.E{C: errcode.UnknownPin, Op: "cdev", Msg: "header pin " + strconv.Itoa(physical) + " is not a GPIO"}
	}
	return bcm, nil
}

func (c *Cdev) SetDirection(pin int, dir types.Direction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.chip == nil {
		return fmt.Errorf("cdev: %s not initialised", c.Chip)
	}
	if l, ok := c.lines[pin]; ok {
		if dir == types.Out {
			return l.Reconfigure(gpiocdev.AsOutput(0))
		}
		return l.Reconfigure(gpiocdev.AsInput)
	}
	off, err := offsetOf(pin)
	if err != nil {
		return err
	}
	var l *gpiocdev.Line
	if dir == types.Out {
		l, err = c.chip.RequestLine(off, gpiocdev.AsOutput(0))
	} else {
		l, err = c.chip.RequestLine(off, gpiocdev.AsInput)
	}
	if err != nil {
		return err
	}
	c.lines[pin] = l
	return nil
}

func (c *Cdev) line(pin int) (*gpiocdev.Line, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.lines[pin]
	if !ok {
		return nil, fmt.Errorf("cdev: pin %d not requested", pin)
	}
	return l, nil
}

func (c *Cdev) Read(pin int) (bool, error) {
	l, err := c.line(pin)
	if err != nil {
		return false, err
	}
	v, err := l.Value()
	return v != 0, err
}

func (c *Cdev) Write(pin int, level bool) error {
	l, err := c.line(pin)
	if err != nil {
		return err
	}
	v := 0
	if level {
		v = 1
	}
	return l.SetValue(v)
}

// Close releases every requested line and the chip.
func (c *Cdev) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for n, l := range c.lines {
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", n, err))
		}
		delete(c.lines, n)
	}
	if c.chip != nil {
		errs = append(errs, c.chip.Close())
		c.chip = nil
	}
	return errors.Join(errs...)
}

var _ Controller = (*Cdev)(nil)
