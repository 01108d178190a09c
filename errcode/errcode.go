package errcode

// Code is a stable error identifier shared by the relay firmware and the host bridge.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK    Code = "ok"
	Error Code = "error" // generic fallback

	// Board bring-up
	PeripheralsTaken Code = "peripherals_taken"
	UnknownPin       Code = "unknown_pin"
	PinInUse         Code = "pin_in_use"
	NotAnalog        Code = "not_analog"

	// Wire protocol (host side)
	UnknownKey    Code = "unknown_key"
	MalformedLine Code = "malformed_line"
	InvalidValue  Code = "invalid_value"

	// Links
	Timeout  Code = "timeout"
	LinkDown Code = "link_down"
)

// E keeps context and a cause alongside a Code.
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
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is(err, errcode.X) match a wrapped *E by code.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// Wrap builds an *E; err may be nil.
func Wrap(c Code, op, msg string, err error) *E {
	return &E{C: c, Op: op, Msg: msg, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
