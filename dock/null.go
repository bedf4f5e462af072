package dock

import (
	"context"

	"clixx-go/errcode"
	"clixx-go/slot"
	"clixx-go/types"
)

// Null is the Dock with no hardware behind it. Every operation except
// Teardown fails with errcode.NotImplemented.
type Null struct{}

func (Null) Setup(context.Context) error { return errcode.New(errcode.NotImplemented, "setup", "null dock") }
func (Null) Teardown() error             { return nil }

func (Null) Slot(types.SlotID) (slot.Slot, error) {
	return nil, errcode.New(errcode.NotImplemented, "slot", "null dock")
}

func (Null) Available() ([]types.SlotID, error) {
	return nil, errcode.New(errcode.NotImplemented, "available", "null dock")
}

// Smart is the RS232 SmartDock. It records where the carrier is attached;
// the protocol spoken to it is not implemented, so it behaves as Null.
type Smart struct {
	Null
	Port string
	Baud int
}

// NewSmart returns a SmartDock for port. baud <= 0 selects 115200.
func NewSmart(port string, baud int) *Smart {
	if baud <= 0 {
		baud = 115200
	}
	return &Smart{Port: port, Baud: baud}
}

func (s *Smart) Setup(context.Context) error {
	return errcode.New(errcode.NotImplemented, "setup", "smartdock on "+s.Port)
}

var (
	_ Dock = Null{}
	_ Dock = (*Smart)(nil)
)
