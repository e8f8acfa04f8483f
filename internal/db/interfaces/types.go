package interfaces

import (
	"errors"
	"fmt"
)

// Kind classifies storage failures. Backends map their native errors into
// one of these before returning.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindPermissionDenied
	KindDuplicate
	KindSchemaMissing
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindPermissionDenied:
		return "permission_denied"
	case KindDuplicate:
		return "duplicate"
	case KindSchemaMissing:
		return "schema_missing"
	default:
		return "unknown"
	}
}

// DefaultMessage is the human readable cause shown to API callers.
func (k Kind) DefaultMessage() string {
	switch k {
	case KindNotFound:
		return "record not found"
	case KindPermissionDenied:
		return "you are not allowed to perform this operation"
	case KindDuplicate:
		return "a post with this title already exists"
	case KindSchemaMissing:
		return "database table not found"
	default:
		return "storage operation failed"
	}
}

// Error is the only error type stores return for backend failures.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	// Code, Detail and Hint carry the backend's own diagnostics when present.
	Code   string
	Detail string
	Hint   string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.DefaultMessage()
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(kind Kind, op string) *Error {
	return &Error{Kind: kind, Op: op}
}

// KindOf returns the kind of a store error, or KindUnknown for anything else.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
