package league

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError rejects input before the store is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// StoreError wraps a failed store call.
type StoreError struct {
	Op    string
	Table string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// InconsistentStateError reports a multi-step operation that stopped after
// some of its steps were applied. Completed steps are not rolled back.
type InconsistentStateError struct {
	Op        string
	Step      string
	Completed []string
	Err       error
}

func (e *InconsistentStateError) Error() string {
	return fmt.Sprintf("%s: step %q failed after [%s]: %v", e.Op, e.Step, strings.Join(e.Completed, ", "), e.Err)
}

func (e *InconsistentStateError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsStore(err error) bool {
	var target *StoreError
	return errors.As(err, &target)
}

func IsInconsistent(err error) bool {
	var target *InconsistentStateError
	return errors.As(err, &target)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func notFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}
