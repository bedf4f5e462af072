// Package led drives a single-LED Tab on a digital slot.
package led

import (
	"context"
	"sync"

	"clixx-go/slot"
	"clixx-go/types"
)

// LED remembers the last level written so Toggle needs no read-back.
type LED struct {
	s  slot.Slot
	mu sync.Mutex
	on bool
}

func New(s slot.Slot) *LED { return &LED{s: s} }

func (l *LED) On(ctx context.Context) error  { return l.Set(ctx, true) }
func (l *LED) Off(ctx context.Context) error { return l.Set(ctx, false) }

func (l *LED) Set(ctx context.Context, on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.s.Write(ctx, types.Level(on)); err != nil {
		return err
	}
	l.on = on
	return nil
}

// Toggle inverts the LED and returns the new state.
func (l *LED) Toggle(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	next := !l.on
	if err := l.s.Write(ctx, types.Level(next)); err != nil {
		return l.on, err
	}
	l.on = next
	return next, nil
}

func (l *LED) IsOn() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}
