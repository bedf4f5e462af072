package dock

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"clixx-go/buses"
	"clixx-go/errcode"
	"clixx-go/pinctl"
	"clixx-go/slot"
	"clixx-go/table"
	"clixx-go/types"
)

func TestSingleDigitalLoopback(t *testing.T) {
	ctx := context.Background()
	tbl := table.MustNew(types.Descriptor{
		ID: types.Digital0, Interface: types.Digital, Size: types.SingleTab,
		Input: types.P(22), Output: types.P(18),
	})
	d := NewGPIO(tbl, pinctl.NewSim(pinctl.WithJumper(22, 18)))
	if err := d.Setup(ctx); err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer d.Teardown()

	ids, err := d.Available()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(ids, []types.SlotID{types.Digital0}) {
		t.Fatalf("available = %v", ids)
	}
	s, err := d.Slot(types.Digital0)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Write(ctx, types.High); err != nil {
		t.Fatal(err)
	}
	v, err := s.Read(ctx)
	if err != nil || !v.Bool() {
		t.Fatalf("read after write(true): %v %v", v, err)
	}
	if err := s.Write(ctx, types.Low); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.Read(ctx); v.Bool() {
		t.Fatal("read after write(false) returned true")
	}
}

func TestEveryTableSlotResolves(t *testing.T) {
	tbl := table.Raspberry()
	d := Simulated(tbl)
	if err := d.Setup(context.Background()); err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer d.Teardown()

	for _, id := range tbl.IDs() {
		s, err := d.Slot(id)
		if err != nil {
			t.Fatalf("slot %v: %v", id, err)
		}
		desc, _ := tbl.Lookup(id)
		if s.Interface() != desc.Interface || s.ID() != id {
			t.Fatalf("slot %v: interface %v, want %v", id, s.Interface(), desc.Interface)
		}
	}

	a1, _ := d.Available()
	a2, _ := d.Available()
	if !slices.Equal(a1, tbl.IDs()) || !slices.Equal(a1, a2) {
		t.Fatalf("available %v / %v, table %v", a1, a2, tbl.IDs())
	}
	if !slices.IsSortedFunc(a1, types.SlotID.Compare) {
		t.Fatalf("available not sorted: %v", a1)
	}
	// the result is a copy
	a1[0] = types.ID(types.SPI, 9)
	if a3, _ := d.Available(); a3[0] == a1[0] {
		t.Fatal("available exposes internal state")
	}
}

func TestSlotAbsent(t *testing.T) {
	d := Simulated(table.Raspberry())
	if _, err := d.Slot(types.Analog0); !errors.Is(err, errcode.NotConfigured) {
		t.Fatalf("before setup: %v", err)
	}
	if _, err := d.Slot(types.Digital0); !errors.Is(err, errcode.NotConfigured) {
		t.Fatalf("before setup, table id: %v", err)
	}
	if _, err := d.Available(); !errors.Is(err, errcode.NotConfigured) {
		t.Fatalf("available before setup: %v", err)
	}
	if err := d.Setup(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer d.Teardown()
	if _, err := d.Slot(types.Analog0); !errors.Is(err, errcode.UnknownSlot) {
		t.Fatalf("after setup: %v", err)
	}
}

func TestTeardown(t *testing.T) {
	ctx := context.Background()
	d := Simulated(table.Raspberry())
	if err := d.Teardown(); err != nil {
		t.Fatalf("teardown before setup: %v", err)
	}
	if err := d.Setup(ctx); err != nil {
		t.Fatal(err)
	}
	s, _ := d.Slot(types.Digital0)

	if err := d.Teardown(); err != nil {
		t.Fatalf("teardown: %v", err)
	}
	if err := d.Teardown(); err != nil {
		t.Fatalf("second teardown: %v", err)
	}
	if _, err := d.Slot(types.Digital0); !errors.Is(err, errcode.NotConfigured) {
		t.Fatalf("slot after teardown: %v", err)
	}
	if _, err := s.Read(ctx); !errors.Is(err, errcode.SlotReleased) {
		t.Fatalf("stale slot read: %v", err)
	}

	// the cycle can repeat
	if err := d.Setup(ctx); err != nil {
		t.Fatalf("setup after teardown: %v", err)
	}
	_ = d.Teardown()
}

func TestSetupTwice(t *testing.T) {
	d := Simulated(table.Raspberry())
	if err := d.Setup(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer d.Teardown()
	if err := d.Setup(context.Background()); !errors.Is(err, errcode.AlreadyConfigured) {
		t.Fatalf("second setup: %v", err)
	}
	if ids, err := d.Available(); err != nil || len(ids) != 15 {
		t.Fatalf("dock disturbed by second setup: %v %v", ids, err)
	}
}

func TestSetupPinDirections(t *testing.T) {
	sim := pinctl.NewSim()
	d := NewGPIO(table.Raspberry(), sim, WithBuses(buses.NewSim()))
	if err := d.Setup(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer d.Teardown()
	want := map[int]types.Direction{22: types.Out, 11: types.Out, 38: types.Out, 18: types.In, 16: types.In, 19: types.In}
	for pin, dir := range want {
		_, got, ok := sim.Level(pin)
		if !ok || got != dir {
			t.Fatalf("pin %d: dir %v (configured %v), want %v", pin, got, ok, dir)
		}
	}
	if sim.InitCount() != 1 {
		t.Fatalf("init called %d times", sim.InitCount())
	}
}

func TestSetupFailureLeavesNothing(t *testing.T) {
	sim := pinctl.NewSim()
	sim.FailPin[19] = errors.New("line busy")
	d := NewGPIO(table.Raspberry(), sim, WithBuses(buses.NewSim()))

	err := d.Setup(context.Background())
	if errcode.Of(err) != errcode.HardwareInit {
		t.Fatalf("want hw_init, got %v", err)
	}
	if _, err := d.Available(); !errors.Is(err, errcode.NotConfigured) {
		t.Fatalf("dock configured after failed setup: %v", err)
	}
	if n := sim.Claims().Len(); n != 0 {
		t.Fatalf("%d pins still claimed", n)
	}

	delete(sim.FailPin, 19)
	if err := d.Setup(context.Background()); err != nil {
		t.Fatalf("setup after fault cleared: %v", err)
	}
	_ = d.Teardown()
}

func TestSetupInitFailure(t *testing.T) {
	sim := pinctl.NewSim()
	sim.FailInit = errors.New("no gpiomem")
	d := NewGPIO(table.Pico(), sim, WithBuses(buses.NewSim()))
	if err := d.Setup(context.Background()); errcode.Of(err) != errcode.HardwareInit {
		t.Fatalf("want hw_init, got %v", err)
	}
}

func TestSetupWithoutBuses(t *testing.T) {
	sim := pinctl.NewSim()
	d := NewGPIO(table.Raspberry(), sim)
	err := d.Setup(context.Background())
	if errcode.Of(err) != errcode.HardwareInit || !errors.Is(err, errcode.UnknownBus) {
		t.Fatalf("want hw_init wrapping unknown_bus, got %v", err)
	}
	if n := sim.Claims().Len(); n != 0 {
		t.Fatalf("%d pins still claimed", n)
	}
}

func TestSetupCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := Simulated(table.Raspberry())
	if err := d.Setup(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("want canceled, got %v", err)
	}
}

func TestPinsAreExclusive(t *testing.T) {
	ctx := context.Background()
	sim := pinctl.NewSim()
	a := NewGPIO(table.Raspberry(), sim, WithBuses(buses.NewSim()))
	b := NewGPIO(table.Raspberry(), sim, WithBuses(buses.NewSim()))

	if err := a.Setup(ctx); err != nil {
		t.Fatal(err)
	}
	err := b.Setup(ctx)
	if !errors.Is(err, errcode.PinInUse) || errcode.Of(err) != errcode.HardwareInit {
		t.Fatalf("second dock on same pins: want hw_init wrapping pin_in_use, got %v", err)
	}
	if err := a.Teardown(); err != nil {
		t.Fatal(err)
	}
	if err := b.Setup(ctx); err != nil {
		t.Fatalf("after release: %v", err)
	}
	_ = b.Teardown()
}

func TestTwoWireSlotsShareBus(t *testing.T) {
	ctx := context.Background()
	bs := buses.NewSim()
	regs := &buses.Registers{}
	regs.Mem[0] = 0x42
	bs.I2CBus(table.BusI2C1).Attach(0x38, regs)

	d := NewGPIO(table.Raspberry(), pinctl.NewSim(), WithBuses(bs))
	if err := d.Setup(ctx); err != nil {
		t.Fatal(err)
	}
	defer d.Teardown()

	var wg sync.WaitGroup
	errs := make(chan error, types.MaxIndex+1)
	for i := uint8(0); i <= types.MaxIndex; i++ {
		s, err := d.Slot(types.ID(types.TwoWire, i))
		if err != nil {
			t.Fatal(err)
		}
		tw := s.(*slot.TwoWire)
		if err := tw.SetAddress(0x38); err != nil {
			t.Fatal(err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := make([]byte, 1)
			if err := tw.Tx(0x38, []byte{0}, r); err != nil {
				errs <- err
				return
			}
			if r[0] != 0x42 {
				errs <- errors.New("wrong register value")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
	if bs.I2CBus(table.BusI2C1).Txs != types.MaxIndex+1 {
		t.Fatalf("txs = %d", bs.I2CBus(table.BusI2C1).Txs)
	}
}

func TestSerialSlotClosedAtTeardown(t *testing.T) {
	ctx := context.Background()
	bs := buses.NewSim()
	d := NewGPIO(table.Raspberry(), pinctl.NewSim(), WithBuses(bs))
	if err := d.Setup(ctx); err != nil {
		t.Fatal(err)
	}
	s, _ := d.Slot(types.RS232_0)
	if err := s.Write(ctx, 'A'); err != nil {
		t.Fatal(err)
	}
	if v, err := s.Read(ctx); err != nil || v.Byte() != 'A' {
		t.Fatalf("serial loopback: %v %v", v, err)
	}
	port := bs.Port(table.BusUART0)
	_ = d.Teardown()
	if _, err := port.Write([]byte("x")); err == nil {
		t.Fatal("port still open after teardown")
	}
}

func TestSetupLogs(t *testing.T) {
	var buf bytes.Buffer
	d := Simulated(table.Pico(), WithLogger(zerolog.New(&buf)), WithName("bench"))
	if err := d.Setup(context.Background()); err != nil {
		t.Fatal(err)
	}
	_ = d.Teardown()
	out := buf.String()
	for _, want := range []string{`"dock":"bench"`, "dock configured", "dock torn down"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log missing %q:\n%s", want, out)
		}
	}
}

func TestNullAndSmart(t *testing.T) {
	for _, d := range []Dock{Null{}, NewSmart("/dev/ttyUSB0", 0)} {
		if err := d.Setup(context.Background()); !errors.Is(err, errcode.NotImplemented) {
			t.Fatalf("%T setup: %v", d, err)
		}
		if _, err := d.Slot(types.Digital0); !errors.Is(err, errcode.NotImplemented) {
			t.Fatalf("%T slot: %v", d, err)
		}
		if _, err := d.Available(); !errors.Is(err, errcode.NotImplemented) {
			t.Fatalf("%T available: %v", d, err)
		}
		if err := d.Teardown(); err != nil {
			t.Fatalf("%T teardown: %v", d, err)
		}
	}
	if s := NewSmart("/dev/ttyUSB0", 0); s.Baud != 115200 {
		t.Fatalf("default baud %d", s.Baud)
	}
}
