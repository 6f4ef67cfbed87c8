package state

import (
	"errors"
	"fmt"
)

// Error kinds. Every expected failure in the engine unwraps to one of these,
// so callers can branch with errors.Is while showing the narration as-is.
var (
	ErrCapacity      = errors.New("capacity exceeded")
	ErrNotFound      = errors.New("not found")
	ErrInvalidType   = errors.New("invalid item type")
	ErrInvalidAction = errors.New("invalid action")
	ErrPermission    = errors.New("permission denied")
)

// NarratedError is an expected, recoverable failure. Msg is player-facing.
type NarratedError struct {
	Kind error
	Msg  string
}

func (e *NarratedError) Error() string {
	return e.Msg
}

func (e *NarratedError) Unwrap() error {
	return e.Kind
}

// Errorf returns a NarratedError of the given kind.
func Errorf(kind error, format string, args ...any) error {
	return &NarratedError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
