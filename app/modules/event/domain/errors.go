package eventdomain

import (
	"errors"
	"fmt"

	authdomain "github.com/Black-And-White-Club/curling-club/app/modules/auth/domain"
)

var (
	// ErrUnauthenticated is returned when an operation needs a signed-in user.
	ErrUnauthenticated = authdomain.ErrUnauthenticated

	// ErrNotFound is matched by every missing-record error below.
	ErrNotFound       = errors.New("not found")
	ErrEventNotFound  = fmt.Errorf("event %w", ErrNotFound)
	ErrDriverNotFound = fmt.Errorf("driver %w", ErrNotFound)
	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)

	// ErrCapacityExceeded is returned when an event has no spots left.
	ErrCapacityExceeded = errors.New("event is full")
	// ErrDriverFull is returned when the chosen driver has no seats left.
	ErrDriverFull = fmt.Errorf("driver has no seats left: %w", ErrCapacityExceeded)

	ErrAlreadyRegistered = errors.New("already registered for this event")
	ErrNotRegistered     = errors.New("not registered for this event")
	ErrInvalidSelection  = errors.New("invalid transport selection")
	ErrInvalidFilter     = errors.New("invalid event filter")

	// ErrBackendUnavailable is matched by every infrastructure failure.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// BackendError wraps an infrastructure failure so it matches
// ErrBackendUnavailable while keeping the cause.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrBackendUnavailable, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

func (e *BackendError) Is(target error) bool { return target == ErrBackendUnavailable }

// Unavailable wraps err as a BackendError. A nil err stays nil.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Op: op, Err: err}
}

// Kind groups errors by how a caller should react.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthenticated
	KindNotFound
	KindConflict
	KindInvalid
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalid:
		return "invalid"
	case KindUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// Classify maps err onto a Kind.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrCapacityExceeded),
		errors.Is(err, ErrAlreadyRegistered),
		errors.Is(err, ErrNotRegistered):
		return KindConflict
	case errors.Is(err, ErrInvalidSelection), errors.Is(err, ErrInvalidFilter):
		return KindInvalid
	case errors.Is(err, ErrBackendUnavailable):
		return KindUnavailable
	}
	return KindUnknown
}
