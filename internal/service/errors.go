package service

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Kind is the machine-checkable classification of a domain error
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindOutOfStock
	KindInsufficientStock
	KindInvalidTransition
	KindEmptyCart
	KindVerificationFailed
	KindConflict
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindOutOfStock:
		return "out_of_stock"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindEmptyCart:
		return "empty_cart"
	case KindVerificationFailed:
		return "verification_failed"
	case KindConflict:
		return "conflict"
	case KindInvalid:
		return "invalid"
	default:
		return "internal"
	}
}

// Error is a domain error carrying a stable kind and a human-readable
// message
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds a domain error with a formatted message
func E(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the kind from an error chain; unclassified errors
// report KindInternal
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// mapDBError translates database failures surfacing at the
// orchestrator boundary into taxonomy errors. Unique violations and
// deadlock or serialization aborts both mean the caller lost a race
// with a concurrent write. Already-classified errors pass through
// untouched.
func mapDBError(err error) error {
	if err == nil || KindOf(err) != KindInternal {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return Wrap(KindConflict, err, "write conflicts with existing data")
		case "40001", "40P01":
			return Wrap(KindConflict, err, "transaction aborted by concurrent activity")
		}
	}
	return err
}
