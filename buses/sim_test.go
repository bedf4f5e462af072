package buses

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"clixx-go/errcode"
)

func TestSimI2CRegisters(t *testing.T) {
	b := NewSimI2C()
	regs := &Registers{}
	b.Attach(0x20, regs)

	if err := b.Tx(0x20, []byte{0x10, 0xAA, 0xBB}, nil); err != nil {
		t.Fatal(err)
	}
	r := make([]byte, 2)
	if err := b.Tx(0x20, []byte{0x10}, r); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(r, []byte{0xAA, 0xBB}) {
		t.Fatalf("register read: % x", r)
	}
	if b.LastTx.Addr != 0x20 || b.LastTx.Rn != 2 || b.Txs != 2 {
		t.Fatalf("last tx not recorded: %+v txs=%d", b.LastTx, b.Txs)
	}
	if err := b.Tx(0x21, nil, r); err == nil {
		t.Fatal("expected nack for empty address")
	}
}

func TestSimSPILoopback(t *testing.T) {
	s := &SimSPI{}
	r := make([]byte, 3)
	if err := s.Tx([]byte{1, 2}, r); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(r, []byte{1, 2, 0}) {
		t.Fatalf("loopback: % x", r)
	}
	if b, _ := s.Transfer(0x5a); b != 0x5a {
		t.Fatalf("transfer: %x", b)
	}
}

func TestSimPortLoopbackAndTimeout(t *testing.T) {
	p := NewSimPort()
	_ = p.SetReadTimeout(10 * time.Millisecond)
	if _, err := p.Write([]byte("hi")); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 8)
	n, err := p.Read(buf)
	if err != nil || string(buf[:n]) != "hi" {
		t.Fatalf("read: %q %v", buf[:n], err)
	}
	n, err = p.Read(buf)
	if n != 0 || err != nil {
		t.Fatalf("timeout read should be 0, nil; got %d %v", n, err)
	}
	_ = p.Close()
	if _, err := p.Write([]byte("x")); err == nil {
		t.Fatal("write after close should fail")
	}
}

func TestSimProviderSharesBuses(t *testing.T) {
	s := NewSim()
	a, _ := s.I2C("i2c1")
	b, _ := s.I2C("i2c1")
	if a != b {
		t.Fatal("same id should resolve to the same bus")
	}
	p1 := s.Port("uart0")
	_ = s.Close()
	if p2 := s.Port("uart0"); p2 == p1 {
		t.Fatal("closed port should be replaced on next use")
	}
}

func TestUnavailableBus(t *testing.T) {
	failed := map[string]error{"uart1": errors.New("baud rate not supported")}

	err := unavailable(failed, "uart1")
	if errcode.Of(err) != errcode.HardwareInit {
		t.Fatalf("failed configure: want hw_init, got %v", err)
	}
	if !bytes.Contains([]byte(err.Error()), []byte("baud rate not supported")) {
		t.Fatalf("configure cause lost: %v", err)
	}
	if err := unavailable(failed, "uart0"); !errors.Is(err, errcode.UnknownBus) {
		t.Fatalf("unplanned bus: want unknown_bus, got %v", err)
	}
}
