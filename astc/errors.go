package astc

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// ErrorCode is a codec API error code, returned from Context operations and wrapped inside Error.
type ErrorCode uint32

const (
	// Success indicates the call completed normally.
	Success ErrorCode = 0

	// ErrOutOfMem indicates an allocation failed.
	ErrOutOfMem ErrorCode = 1

	// ErrBadCPUFloat indicates the host float environment is unsuitable (flush-to-zero, etc).
	//
	// Not expected to be returned by this pure-Go implementation.
	ErrBadCPUFloat ErrorCode = 2

	// ErrBadParam indicates an invalid argument was passed to a codec function.
	ErrBadParam ErrorCode = 3

	// ErrBadBlockSize indicates the requested block dimensions are not a legal ASTC block size.
	ErrBadBlockSize ErrorCode = 4

	// ErrBadProfile indicates an unrecognized or unsupported color profile.
	ErrBadProfile ErrorCode = 5

	// ErrBadQuality indicates a quality/quality-preset value outside the supported range.
	ErrBadQuality ErrorCode = 6

	// ErrBadSwizzle indicates an invalid component swizzle.
	ErrBadSwizzle ErrorCode = 7

	// ErrBadFlags indicates an invalid or unsupported combination of Flags.
	ErrBadFlags ErrorCode = 8

	// ErrBadContext indicates the Context is not in a state that permits the requested call.
	ErrBadContext ErrorCode = 9

	// ErrNotImplemented indicates the requested combination of inputs is not supported by this
	// build (for example, a native acceleration path that was not compiled in).
	ErrNotImplemented ErrorCode = 10

	// ErrBadDecodeMode indicates a decode was requested with a DataType incompatible with the
	// block's stored profile.
	ErrBadDecodeMode ErrorCode = 11

	// ErrDTraceFailure indicates a diagnostic-trace failure; only returned by debug builds.
	ErrDTraceFailure ErrorCode = 12
)

// ErrorString returns a short symbolic name for an error code, suitable for logging.
//
// Unknown codes return "".
func ErrorString(code ErrorCode) string {
	switch code {
	case Success:
		return "success"
	case ErrOutOfMem:
		return "out of memory"
	case ErrBadCPUFloat:
		return "unsupported floating-point environment"
	case ErrBadParam:
		return "bad parameter"
	case ErrBadBlockSize:
		return "bad block size"
	case ErrBadProfile:
		return "bad profile"
	case ErrBadQuality:
		return "bad quality"
	case ErrBadFlags:
		return "bad flags"
	case ErrBadSwizzle:
		return "bad swizzle"
	case ErrBadContext:
		return "bad context state"
	case ErrNotImplemented:
		return "not implemented"
	case ErrBadDecodeMode:
		return "bad decode mode"
	case ErrDTraceFailure:
		return "diagnostic trace failure"
	default:
		return ""
	}
}

// Error is a typed error carrying a codec ErrorCode alongside an optional human-readable message.
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg != "" {
		return e.Msg
	}
	if s := ErrorString(e.Code); s != "" {
		return "astc: " + s
	}
	return "astc: error"
}

// ErrorCodeOf unwraps err to its ErrorCode, or Success for a nil error.
//
// Non-*Error errors map to ErrBadParam as a conservative fallback.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrBadParam
}

func newError(code ErrorCode, msg string) error {
	return pkgerrors.WithStack(&Error{Code: code, Msg: msg})
}
