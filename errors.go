package moola

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when editing an expense that does not exist.
var ErrNotFound = errors.New("expense not found")

// Reason classifies a rejected expense input.
type Reason string

const (
	InvalidAmount    Reason = "invalid amount"
	InvalidDate      Reason = "invalid date"
	InvalidFrequency Reason = "invalid frequency"
)

// ValidationError reports an expense input that was rejected.
//
// The ledger is left untouched when one is returned.
type ValidationError struct {
	Reason Reason
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsInvalid reports whether err is a ValidationError for reason r.
func IsInvalid(err error, r Reason) bool {
	var v *ValidationError
	return errors.As(err, &v) && v.Reason == r
}

// PersistenceError reports a failure to read or write the store.
type PersistenceError struct {
	Op  string // "get", "set" or "remove"
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("cannot %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
