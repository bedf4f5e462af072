package slot

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"sync"

	"tinygo.org/x/drivers"

	"clixx-go/buses"
	"clixx-go/errcode"
	"clixx-go/internal/busowner"
	"clixx-go/types"
)

// Transfers copy through private buffers so a transfer abandoned on timeout
// never touches the caller's memory after return.

// SPI moves bytes over a full-duplex SPI bus. Read clocks out a zero byte
// and returns the byte clocked in.
type SPI struct {
	base
	bus   drivers.SPI
	owner *busowner.Owner
}

func (s *SPI) Read(ctx context.Context) (types.Value, error) {
	if err := s.live("read"); err != nil {
		return 0, err
	}
	var b byte
	err := s.owner.Do(ctx, func() error {
		var err error
		b, err = s.bus.Transfer(0)
		return err
	})
	if err != nil {
		return 0, s.ioErr("read", err)
	}
	return types.Value(b), nil
}

func (s *SPI) Write(ctx context.Context, v types.Value) error {
	if err := s.live("write"); err != nil {
		return err
	}
	c, err := s.byteOf("write", v)
	if err != nil {
		return err
	}
	err = s.owner.Do(ctx, func() error {
		_, err := s.bus.Transfer(c)
		return err
	})
	return s.ioErr("write", err)
}

func (s *SPI) ReadData(ctx context.Context, buf []byte, offset, length int) (int, error) {
	if err := s.live("read_data"); err != nil {
		return 0, err
	}
	if err := s.window("read_data", buf, offset, length); err != nil {
		return 0, err
	}
	r := make([]byte, length)
	if err := s.owner.Do(ctx, func() error { return s.bus.Tx(nil, r) }); err != nil {
		return 0, s.ioErr("read_data", err)
	}
	return copy(buf[offset:], r), nil
}

func (s *SPI) WriteData(ctx context.Context, buf []byte, offset, length int) (int, error) {
	if err := s.live("write_data"); err != nil {
		return 0, err
	}
	if err := s.window("write_data", buf, offset, length); err != nil {
		return 0, err
	}
	w := append([]byte(nil), buf[offset:offset+length]...)
	if err := s.owner.Do(ctx, func() error { return s.bus.Tx(w, nil) }); err != nil {
		return 0, s.ioErr("write_data", err)
	}
	return length, nil
}

// Serial moves bytes over an RS232 port. A read that sees no data within the
// port's read timeout fails with errcode.Timeout; ReadData returns as soon as
// some bytes have arrived, so the count may be short.
//
// Received bytes land in pending first and are handed out only once the
// transfer completed. Bytes from a transfer the caller gave up on, and the
// unterminated head of a line, stay there for the next read.
type Serial struct {
	base
	port  buses.Port
	owner *busowner.Owner

	mu      sync.Mutex
	pending []byte
}

// maxPending bounds bytes buffered while waiting for a line terminator.
const maxPending = 4096

// fill performs one port read on the bus owner and appends what arrived to
// pending.
func (s *Serial) fill(ctx context.Context) error {
	return s.owner.Do(ctx, func() error {
		var b [64]byte
		n, err := s.port.Read(b[:])
		if n > 0 {
			s.mu.Lock()
			s.pending = append(s.pending, b[:n]...)
			s.mu.Unlock()
		}
		return err
	})
}

// take moves up to len(dst) pending bytes into dst.
func (s *Serial) take(dst []byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := copy(dst, s.pending)
	s.pending = s.pending[n:]
	return n
}

func (s *Serial) buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// receive returns pending bytes, reading the port once if none are buffered.
func (s *Serial) receive(ctx context.Context, name string, dst []byte) (int, error) {
	if s.buffered() == 0 {
		if err := s.fill(ctx); err != nil {
			return 0, s.ioErr(name, err)
		}
	}
	n := s.take(dst)
	if n == 0 {
		return 0, errcode.New(errcode.Timeout, s.op(name), "no data")
	}
	return n, nil
}

func (s *Serial) Read(ctx context.Context) (types.Value, error) {
	if err := s.live("read"); err != nil {
		return 0, err
	}
	var b [1]byte
	if _, err := s.receive(ctx, "read", b[:]); err != nil {
		return 0, err
	}
	return types.Value(b[0]), nil
}

func (s *Serial) Write(ctx context.Context, v types.Value) error {
	if err := s.live("write"); err != nil {
		return err
	}
	c, err := s.byteOf("write", v)
	if err != nil {
		return err
	}
	b := []byte{c}
	return s.ioErr("write", s.owner.Do(ctx, func() error {
		_, err := s.port.Write(b)
		return err
	}))
}

func (s *Serial) ReadData(ctx context.Context, buf []byte, offset, length int) (int, error) {
	if err := s.live("read_data"); err != nil {
		return 0, err
	}
	if err := s.window("read_data", buf, offset, length); err != nil {
		return 0, err
	}
	if length == 0 {
		return 0, nil
	}
	return s.receive(ctx, "read_data", buf[offset:offset+length])
}

func (s *Serial) WriteData(ctx context.Context, buf []byte, offset, length int) (int, error) {
	if err := s.live("write_data"); err != nil {
		return 0, err
	}
	if err := s.window("write_data", buf, offset, length); err != nil {
		return 0, err
	}
	w := append([]byte(nil), buf[offset:offset+length]...)
	var n int
	err := s.owner.Do(ctx, func() error {
		var err error
		n, err = s.port.Write(w)
		return err
	})
	if err != nil {
		return 0, s.ioErr("write_data", err)
	}
	return n, nil
}

// ReadLine reads up to and excluding the next '\n'. A trailing '\r' is
// dropped. On timeout the bytes already received are kept for the next call.
func (s *Serial) ReadLine(ctx context.Context) (string, error) {
	if err := s.live("read_line"); err != nil {
		return "", err
	}
	for {
		if line, ok := s.line(); ok {
			return strings.TrimSuffix(line, "\r"), nil
		}
		if s.buffered() >= maxPending {
			return "", errcode.New(errcode.OutOfRange, s.op("read_line"), "line longer than "+strconv.Itoa(maxPending)+" bytes")
		}
		before := s.buffered()
		if err := s.fill(ctx); err != nil {
			return "", s.ioErr("read_line", err)
		}
		if s.buffered() == before {
			return "", errcode.New(errcode.Timeout, s.op("read_line"), "no line terminator")
		}
	}
}

// line removes and returns the first complete line in pending.
func (s *Serial) line() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := bytes.IndexByte(s.pending, '\n')
	if i < 0 {
		return "", false
	}
	line := string(s.pending[:i])
	s.pending = s.pending[i+1:]
	return line, true
}

// WriteLine writes line followed by '\n'.
func (s *Serial) WriteLine(ctx context.Context, line string) error {
	b := []byte(line + "\n")
	_, err := s.WriteData(ctx, b, 0, len(b))
	return err
}
