package errcode

import "errors"

// Code is a stable, caller-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	// Capability
	NotImplemented Code = "not_implemented"
	NotSupported   Code = "not_supported"
	OutOfRange     Code = "out_of_range"

	// Dock lifecycle
	AlreadyConfigured Code = "already_configured"
	NotConfigured     Code = "not_configured"
	UnknownSlot       Code = "unknown_slot"
	SlotReleased      Code = "slot_released"
	NoBackend         Code = "no_backend"

	// Wiring
	InvalidTable Code = "invalid_table"
	PinInUse     Code = "pin_in_use"
	UnknownPin   Code = "unknown_pin"
	UnknownBus   Code = "unknown_bus"
	NoAddress    Code = "no_address"

	// Hardware
	HardwareInit Code = "hw_init"
	HardwareIO   Code = "hw_io"
	Timeout      Code = "timeout"

	Error Code = "error" // generic fallback
)

// E keeps context and a cause next to a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is(err, errcode.X) match a wrapped code.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// Wrap attaches a code and operation to a cause. A nil cause yields nil.
func Wrap(c Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: c, Op: op, Err: err}
}

// New builds an *E without a cause.
func New(c Code, op, msg string) error {
	return &E{C: c, Op: op, Msg: msg}
}

// Of extracts the outermost Code from an error chain, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	type coder interface{ Code() Code }
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch x := e.(type) {
		case Code:
			return x
		case coder:
			return x.Code()
		}
	}
	return Error
}
