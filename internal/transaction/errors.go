package transaction

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no row matches both the id and the session.
	// A row owned by another session is reported the same way.
	ErrNotFound = errors.New("wrong session id or transaction not found")

	ErrSessionRequired = errors.New("session required")
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when caller input is malformed or incomplete.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Field == "" {
			msgs = append(msgs, f.Message)
			continue
		}

		msgs = append(msgs, f.Field+": "+f.Message)
	}

	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}

	return e
}

// StoreError wraps a failure reported by the repository.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
