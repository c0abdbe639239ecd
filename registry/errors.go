package registry

import "fmt"

// ErrKind classifies errors so callers (and the dispatcher) can branch on
// intent rather than text, and map directly to a CoAP-style status byte.
type ErrKind int

const (
	ErrKindBadRequest        ErrKind = iota // malformed request, value out of range
	ErrKindNotFound                         // unknown endpoint
	ErrKindUnauthorized                     // role bits insufficient
	ErrKindForbidden                        // structurally disallowed regardless of role
	ErrKindMethodNotAllowed                 // method not valid for this object type
	ErrKindUnsupportedFormat                // value decode failed / type mismatch
	ErrKindConflict                         // conflicting request; no handler raises it (re-adding a subset member returns Changed)
	ErrKindTooLarge                         // response would overflow the output buffer
	ErrKindRequestTooLarge                  // request exceeds token capacity
	ErrKindInternal                         // invariant violation, should not happen
)

// Error is a typed error with an optional underlying cause, mirroring the
// kind+message+cause shape used for registry-level errors throughout this
// codebase.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, ErrNotFound) to match any *Error with the same Kind,
// not just the exact sentinel value.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for the common cases; handlers may also construct *Error directly
// with Wrap/Newf for a request-specific message.
var (
	ErrNotFound          = &Error{Kind: ErrKindNotFound, Msg: "object not found"}
	ErrBadRequest        = &Error{Kind: ErrKindBadRequest, Msg: "bad request"}
	ErrUnauthorized      = &Error{Kind: ErrKindUnauthorized, Msg: "unauthorized"}
	ErrForbidden         = &Error{Kind: ErrKindForbidden, Msg: "forbidden"}
	ErrMethodNotAllowed  = &Error{Kind: ErrKindMethodNotAllowed, Msg: "method not allowed"}
	ErrUnsupportedFormat = &Error{Kind: ErrKindUnsupportedFormat, Msg: "unsupported format"}
	ErrConflict          = &Error{Kind: ErrKindConflict, Msg: "conflict"}
	ErrTooLarge          = &Error{Kind: ErrKindTooLarge, Msg: "response too large"}
	ErrRequestTooLarge   = &Error{Kind: ErrKindRequestTooLarge, Msg: "request too large"}
	ErrInternal          = &Error{Kind: ErrKindInternal, Msg: "internal error"}
)

// Newf builds an *Error of the given kind with a formatted message.
func Newf(kind ErrKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind around an existing cause.
func Wrap(kind ErrKind, cause error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}
