package errcode

// Code is a stable error identifier shared across the firmware.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK   Code = "ok"
	Busy Code = "busy"

	// Storage engine.
	WriteFailed Code = "write_failed"
	ReadFailed  Code = "read_failed"
	BadRecord   Code = "bad_record"
	BadHeader   Code = "bad_header"

	// Request surface.
	BadRequest Code = "bad_request"
	NotFound   Code = "not_found"

	// Collaborators.
	ClockSkew   Code = "clock_skew"
	ClockFailed Code = "clock_failed"
	InputFailed Code = "input_failed"
	NetDown     Code = "net_down"

	Error Code = "error" // generic fallback
)

// E keeps context and a cause alongside a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

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

// Wrap attaches a code and operation to a driver error.
// A nil err returns nil so call sites can wrap unconditionally.
func Wrap(c Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: c, Op: op, Err: err}
}
