package usermanager

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the account does not exist in the local store.
	ErrNotFound = errors.New("user not found")

	// ErrUnsupported indicates the platform has no local account store.
	ErrUnsupported = errors.New("local user accounts are not supported on this platform")
)

// Kind classifies a failure of an account operation.
type Kind int

const (
	KindOperationFailure Kind = iota
	KindNotFound
	KindLookupFailure
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindLookupFailure:
		return "lookup failure"
	case KindUnsupported:
		return "unsupported"
	default:
		return "operation failure"
	}
}

// Error is returned by every Manager operation. It carries the account the
// operation was processing.
type Error struct {
	Op       string
	UserName string
	Kind     Kind
	Err      error
}

func (e *Error) Error() string {
	if e.UserName == "" {
		return fmt.Sprintf("failed to %s users: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("failed to %s user '%s': %v", e.Op, e.UserName, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op, userName string, err error) *Error {
	kind := KindOperationFailure
	switch {
	case errors.Is(err, ErrNotFound):
		kind = KindNotFound
	case errors.Is(err, ErrUnsupported):
		kind = KindUnsupported
	}
	return &Error{Op: op, UserName: userName, Kind: kind, Err: err}
}

// KindOf reports the Kind of err, or KindOperationFailure when err is not an
// *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindOperationFailure
}

var errClosed = errors.New("account directory is closed")
