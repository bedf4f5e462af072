// Package busowner serialises access to one physical bus behind a single
// worker goroutine.
package busowner

import (
	"context"
	"sync"
	"time"

	"clixx-go/errcode"
)

// DefaultTimeout bounds enqueue and completion when no timeout is set.
const DefaultTimeout = 250 * time.Millisecond

// request posted to the worker
type request struct {
	fn   func() error
	done chan error // buffered(1); worker replies best-effort
}

// Owner hosts the worker for one bus. Every slot aliasing the bus shares the
// same Owner, so at most one transfer is in flight per bus.
type Owner struct {
	name    string
	timeout time.Duration
	reqs    chan request
	quit    chan struct{}
	stopped sync.Once
}

// New starts a worker for the named bus. timeout <= 0 selects DefaultTimeout.
func New(name string, timeout time.Duration) *Owner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	o := &Owner{
		name:    name,
		timeout: timeout,
		reqs:    make(chan request, 16),
		quit:    make(chan struct{}),
	}
	go o.loop()
	return o
}

func (o *Owner) Name() string { return o.name }

func (o *Owner) loop() {
	for {
		select {
		case req := <-o.reqs:
			err := req.fn()
			// best-effort reply; do not block the worker
			select {
			case req.done <- err:
			default:
			}
		case <-o.quit:
			return
		}
	}
}

// Do runs fn on the bus worker. Both the enqueue and the wait for completion
// are bounded by the owner timeout and by ctx; expiry yields errcode.Timeout.
// A wedged fn keeps the worker busy, so later calls time out as well.
func (o *Owner) Do(ctx context.Context, fn func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	req := request{fn: fn, done: make(chan error, 1)}

	// Bounded enqueue
	enq := time.NewTimer(o.timeout)
	defer enq.Stop()
	select {
	case o.reqs <- req:
	case <-enq.C:
		return o.timeoutErr("enqueue")
	case <-ctx.Done():
		return o.ctxErr(ctx)
	case <-o.quit:
		return errcode.SlotReleased
	}

	// Completion
	done := time.NewTimer(o.timeout)
	defer done.Stop()
	select {
	case err := <-req.done:
		return err
	case <-done.C:
		return o.timeoutErr("complete")
	case <-ctx.Done():
		return o.ctxErr(ctx)
	case <-o.quit:
		return errcode.SlotReleased
	}
}

// Stop ends the worker. Pending and later Do calls fail. Safe to call twice.
func (o *Owner) Stop() { o.stopped.Do(func() { close(o.quit) }) }

func (o *Owner) timeoutErr(phase string) error {
	return &errcode.E{C: errcode.Timeout, Op: o.name, Msg: phase + " after " + o.timeout.String()}
}

func (o *Owner) ctxErr(ctx context.Context) error {
	if ctx.Err() == context.DeadlineExceeded {
		return &errcode.E{C: errcode.Timeout, Op: o.name, Err: ctx.Err()}
	}
	return ctx.Err()
}
