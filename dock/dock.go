// Package dock implements Docks: carrier boards that own a catalogue of
// Slots and manage their shared lifecycle.
//
// A Dock starts Uninitialized. Setup configures every wired pin, builds one
// Slot per table row and moves the Dock to Configured in a single step;
// Teardown releases everything and returns it to Uninitialized.
package dock

import (
	"context"

	"clixx-go/slot"
	"clixx-go/types"
)

// Dock is the contract every carrier implementation satisfies.
type Dock interface {
	// Setup configures the Dock. Calling it on a configured Dock fails with
	// errcode.AlreadyConfigured and changes nothing.
	Setup(ctx context.Context) error
	// Teardown releases every slot. It is a no-op on an unconfigured Dock.
	Teardown() error
	// Slot returns the live slot for id.
	Slot(id types.SlotID) (slot.Slot, error)
	// Available lists configured slot ids in ascending order.
	Available() ([]types.SlotID, error)
}
