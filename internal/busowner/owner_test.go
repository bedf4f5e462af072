package busowner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"clixx-go/errcode"
)

func TestDoSerialises(t *testing.T) {
	o := New("i2c1", time.Second)
	defer o.Stop()

	var inflight, maxSeen int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := o.Do(context.Background(), func() error {
				n := atomic.AddInt32(&inflight, 1)
				for {
					m := atomic.LoadInt32(&maxSeen)
					if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inflight, -1)
				return nil
			})
			if err != nil {
				t.Errorf("do: %v", err)
			}
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Fatalf("expected at most one transfer in flight, saw %d", maxSeen)
	}
}

func TestDoReturnsResult(t *testing.T) {
	o := New("spi0", 0)
	defer o.Stop()
	boom := errors.New("nack")
	if err := o.Do(context.Background(), func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
}

func TestDoTimesOutOnWedgedBus(t *testing.T) {
	o := New("i2c1", 20*time.Millisecond)
	defer o.Stop()
	release := make(chan struct{})
	defer close(release)

	err := o.Do(context.Background(), func() error { <-release; return nil })
	if !errors.Is(err, errcode.Timeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	// The worker is still wedged; the next call must not block forever.
	start := time.Now()
	err = o.Do(context.Background(), func() error { return nil })
	if !errors.Is(err, errcode.Timeout) {
		t.Fatalf("expected timeout behind wedged transfer, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("call behind wedged transfer blocked too long")
	}
}

func TestDoHonoursContextDeadline(t *testing.T) {
	o := New("uart0", time.Second)
	defer o.Stop()
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := o.Do(ctx, func() error { <-release; return nil })
	if errcode.Of(err) != errcode.Timeout {
		t.Fatalf("expected timeout code, got %v", err)
	}
}

func TestDoAfterStop(t *testing.T) {
	o := New("gpio", time.Second)
	o.Stop()
	o.Stop()
	if err := o.Do(context.Background(), func() error { return nil }); err == nil {
		t.Fatal("expected error after stop")
	}
}
