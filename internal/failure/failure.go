// Package failure classifies errors produced by background work so the UI
// can present them without knowing which collaborator raised them.
package failure

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Reason is the user-facing class of a failure.
type Reason int

const (
	Network Reason = iota
	Decode
	NotFound
	PersistenceUnavailable
	Stale
)

func (r Reason) String() string {
	switch r {
	case Network:
		return "network error"
	case Decode:
		return "malformed response"
	case NotFound:
		return "not found"
	case PersistenceUnavailable:
		return "history unavailable"
	case Stale:
		return "stale result"
	default:
		return "unknown"
	}
}

// Sentinels collaborators wrap so Classify can recognise them.
var (
	ErrNotFound    = errors.New("resource not found")
	ErrDecode      = errors.New("decode response")
	ErrUnavailable = errors.New("persistence unavailable")
)

// Error is a classified failure. Op names the operation that failed.
type Error struct {
	Reason Reason
	Op     string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Reason, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a classified error directly.
func New(reason Reason, op string, err error) *Error {
	return &Error{Reason: reason, Op: op, Err: err}
}

// Classify maps an arbitrary error onto the taxonomy. A nil error yields nil.
// Anything that matches no specific class is a transport failure.
func Classify(op string, err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		if classified.Op == "" {
			return &Error{Reason: classified.Reason, Op: op, Err: classified.Err}
		}
		return classified
	}

	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.Is(err, ErrNotFound):
		return New(NotFound, op, err)
	case errors.Is(err, ErrUnavailable):
		return New(PersistenceUnavailable, op, err)
	case errors.Is(err, ErrDecode), errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return New(Decode, op, err)
	}

	return New(Network, op, err)
}

// Is reports whether err carries the given reason.
func Is(err error, reason Reason) bool {
	var classified *Error
	return errors.As(err, &classified) && classified.Reason == reason
}
