package booking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gdg-garage/retreat-booking-api/internal/models"
)

var (
	ErrNotFound          = errors.New("booking not found")
	ErrValidation        = errors.New("validation error")
	ErrInvalidRange      = errors.New("end date must be after start date")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrConflict          = errors.New("booking was modified concurrently")
)

// FieldError is one problem with one input field. Field is the JSON path
// of the offending value, e.g. "program.endDate".
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
	Value  any    `json:"value,omitempty"`
}

// ValidationError carries every field problem found in an input.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Has reports whether field is among the reported problems.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

type TransitionError struct {
	From models.Status
	To   models.Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("booking cannot move from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrIllegalTransition
}
