package aht20

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"clixx-go/buses"
	"clixx-go/dock"
	"clixx-go/errcode"
	"clixx-go/pinctl"
	"clixx-go/slot"
	"clixx-go/table"
	"clixx-go/types"
)

// fakeSensor answers like an AHT20: one busy poll after each trigger, then a
// fixed 25.0 °C / 50.0 %RH reading.
type fakeSensor struct {
	mu         sync.Mutex
	calibrated bool
	busyPolls  int
	triggers   int
}

func (f *fakeSensor) Tx(w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(w) > 0 {
		switch w[0] {
		case cmdInitialize:
			f.calibrated = true
		case cmdTrigger:
			f.triggers++
			f.busyPolls = 1
		case cmdStatus:
			if len(r) > 0 {
				r[0] = f.status()
			}
		}
		return nil
	}
	if len(r) == 7 {
		st := f.status()
		if f.busyPolls > 0 {
			f.busyPolls--
			st |= statusBusy
		}
		h, t := uint32(0x80000), uint32(0x60000)
		copy(r, []byte{st, byte(h >> 12), byte(h >> 4), byte(h<<4) | byte(t>>16), byte(t >> 8), byte(t), 0})
	}
	return nil
}

func (f *fakeSensor) status() byte {
	if f.calibrated {
		return statusCalibrated
	}
	return 0
}

func TestReadOverTwoWireSlot(t *testing.T) {
	ctx := context.Background()
	bs := buses.NewSim()
	sensor := &fakeSensor{}
	bs.I2CBus(table.BusI2C0).Attach(Address, sensor)

	d := dock.NewGPIO(table.Pico(), pinctl.NewSim(), dock.WithBuses(bs))
	if err := d.Setup(ctx); err != nil {
		t.Fatal(err)
	}
	defer d.Teardown()
	s, err := d.Slot(types.TwoWire0)
	if err != nil {
		t.Fatal(err)
	}

	dev := New(s.(*slot.TwoWire), Config{PollInterval: time.Millisecond})
	if err := dev.Configure(ctx); err != nil {
		t.Fatal(err)
	}
	if !sensor.calibrated {
		t.Fatal("configure did not calibrate")
	}
	sample, err := dev.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if sample.DeciCelsius() != 250 || sample.DeciRelHumidity() != 500 {
		t.Fatalf("got %d deci-C, %d deci-RH", sample.DeciCelsius(), sample.DeciRelHumidity())
	}
	if dev.Last() != sample {
		t.Fatal("last sample not cached")
	}
}

func TestCollectNotReady(t *testing.T) {
	bus := buses.NewSimI2C()
	sensor := &fakeSensor{calibrated: true}
	bus.Attach(Address, sensor)
	dev := New(bus, Config{})
	ctx := context.Background()
	if err := dev.Trigger(ctx); err != nil {
		t.Fatal(err)
	}
	if err := dev.Collect(ctx, nil); !errors.Is(err, ErrNotReady) {
		t.Fatalf("first collect: %v", err)
	}
	if err := dev.Collect(ctx, nil); err != nil {
		t.Fatalf("second collect: %v", err)
	}
}

func TestReadAfterTeardown(t *testing.T) {
	ctx := context.Background()
	bs := buses.NewSim()
	bs.I2CBus(table.BusI2C0).Attach(Address, &fakeSensor{calibrated: true})
	d := dock.NewGPIO(table.Pico(), pinctl.NewSim(), dock.WithBuses(bs))
	if err := d.Setup(ctx); err != nil {
		t.Fatal(err)
	}
	s, _ := d.Slot(types.TwoWire1)
	dev := New(s.(*slot.TwoWire), Config{})
	_ = d.Teardown()
	if _, err := dev.Read(ctx); !errors.Is(err, errcode.SlotReleased) {
		t.Fatalf("want slot_released, got %v", err)
	}
}
