//go:build !linux && !rp2040 && !rp2350

package pinctl

import (
	"clixx-go/errcode"
	"clixx-go/types"
)

// Cdev is only available on Linux.
type Cdev struct {
	Chip   string
	claims Claims
}

func NewCdev(chip string) *Cdev { return &Cdev{Chip: chip} }

var errNoCdev = &errcode.E{C: errcode.NotSupported, Op: "cdev", Msg: "GPIO character device requires linux"}

func (c *Cdev) Claims() *Claims                         { return &c.claims }
func (c *Cdev) Probe() error                            { return errNoCdev }
func (c *Cdev) Init() error                             { return errNoCdev }
func (c *Cdev) SetDirection(int, types.Direction) error { return errNoCdev }
func (c *Cdev) Read(int) (bool, error)                  { return false, errNoCdev }
func (c *Cdev) Write(int, bool) error                   { return errNoCdev }
func (c *Cdev) Close() error                            { return nil }

var _ Controller = (*Cdev)(nil)
