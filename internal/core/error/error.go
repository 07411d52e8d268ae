package errx

import (
	"errors"
	"fmt"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a Redis key miss.
	RedisNotFoundMessage = "redis key not found"
	// PostgresErrorMessage describes PostgreSQL related failures.
	PostgresErrorMessage = "postgres operation failed"
)

// Protocol sentinels. These indicate driver bugs or routing failures and are
// the only conditions the engine surfaces as hard errors; every business-level
// failure is converted to an in-band message on the conversation state.
var (
	// ErrNoPendingApproval is returned when Resume is called for a thread that
	// has no suspended computation, or after the decision was already consumed.
	ErrNoPendingApproval = errors.New("no pending approval for thread")

	// ErrApprovalPending is returned when Invoke is called for a thread that is
	// suspended on an approval gate; the driver should route to Resume instead.
	ErrApprovalPending = errors.New("approval pending: respond to the outstanding prompt")

	// ErrUnknownScenario is returned when the classifier produces a label the
	// router has no workflow for.
	ErrUnknownScenario = errors.New("unknown scenario label")

	// ErrThreadNotFound is returned when no conversation state exists for a
	// thread identifier.
	ErrThreadNotFound = errors.New("thread not found")

	// ErrDuplicateBusinessNumber is returned by the registration repository
	// when the business-number unique constraint is violated.
	ErrDuplicateBusinessNumber = errors.New("business number already registered")

	// ErrRegistrationNotFound is returned when no registration matches a lookup key.
	ErrRegistrationNotFound = errors.New("registration not found")
)

// Error wraps an underlying error with an HTTP-ish status and safe message.
type Error struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error with the provided information.
func New(err error, status int, message string) *Error {
	return &Error{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// Is reports whether the target matches the underlying error or the Error itself.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to Error or the wrapped error in a chain.
func (e *Error) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**Error); ok {
		*t = e
		return true
	}
	return false
}
