package server

import "github.com/thingset-io/thingset-core/registry"

// Status is a CoAP-style response status byte.
type Status byte

const (
	StatusCreated Status = 0x81
	StatusDeleted Status = 0x82
	StatusValid   Status = 0x83
	StatusChanged Status = 0x84
	StatusContent Status = 0x85

	StatusBadRequest        Status = 0xA0
	StatusUnauthorized      Status = 0xA1
	StatusForbidden         Status = 0xA3
	StatusNotFound          Status = 0xA4
	StatusMethodNotAllowed  Status = 0xA5
	StatusConflict          Status = 0xA9
	StatusRequestTooLarge   Status = 0xAD
	StatusUnsupportedFormat Status = 0xAF

	StatusInternal       Status = 0xC0
	StatusNotImplemented Status = 0xC1

	StatusResponseTooLarge Status = 0xE1
)

// text is the human-readable word the text codec prints after the status
// (":<hex status> <human message>.", omitted under compact mode).
func (s Status) text() string {
	switch s {
	case StatusCreated:
		return "Created"
	case StatusDeleted:
		return "Deleted"
	case StatusValid:
		return "Valid"
	case StatusChanged:
		return "Changed"
	case StatusContent:
		return "Content"
	case StatusBadRequest:
		return "Bad Request"
	case StatusUnauthorized:
		return "Unauthorized"
	case StatusForbidden:
		return "Forbidden"
	case StatusNotFound:
		return "Not Found"
	case StatusMethodNotAllowed:
		return "Method Not Allowed"
	case StatusConflict:
		return "Conflict"
	case StatusRequestTooLarge:
		return "Request Too Large"
	case StatusUnsupportedFormat:
		return "Unsupported Format"
	case StatusInternal:
		return "Internal Server Error"
	case StatusNotImplemented:
		return "Not Implemented"
	case StatusResponseTooLarge:
		return "Response Too Large"
	default:
		return "Unknown"
	}
}

// statusFor maps an error into its wire status byte. A nil error maps to
// Content; an untyped error becomes Internal Server Error.
func statusFor(err error) Status {
	if err == nil {
		return StatusContent
	}
	var e *registry.Error
	if !asRegistryError(err, &e) {
		return StatusInternal
	}
	switch e.Kind {
	case registry.ErrKindBadRequest:
		return StatusBadRequest
	case registry.ErrKindNotFound:
		return StatusNotFound
	case registry.ErrKindUnauthorized:
		return StatusUnauthorized
	case registry.ErrKindForbidden:
		return StatusForbidden
	case registry.ErrKindMethodNotAllowed:
		return StatusMethodNotAllowed
	case registry.ErrKindUnsupportedFormat:
		return StatusUnsupportedFormat
	case registry.ErrKindConflict:
		return StatusConflict
	case registry.ErrKindTooLarge:
		return StatusResponseTooLarge
	case registry.ErrKindRequestTooLarge:
		return StatusRequestTooLarge
	default:
		return StatusInternal
	}
}

func asRegistryError(err error, out **registry.Error) bool {
	for err != nil {
		if e, ok := err.(*registry.Error); ok {
			*out = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
