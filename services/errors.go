package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a read or update names an absent record.
	ErrNotFound = errors.New("record not found")
	// ErrUnknownField is returned when a filter or join names a field the
	// collection does not declare.
	ErrUnknownField = errors.New("unknown field")
	// ErrNoImage is returned when an item has no uploaded image.
	ErrNoImage = errors.New("item has no image")

	ErrMissingRequiredField = errors.New("missing required field")
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrInvalidEnumValue     = errors.New("invalid enum value")
	ErrDanglingReference    = errors.New("dangling reference")
	ErrInvariantViolation   = errors.New("invariant violation")
)

// ValidationKind classifies a rejected write.
type ValidationKind string

const (
	MissingRequiredField ValidationKind = "MissingRequiredField"
	TypeMismatch         ValidationKind = "TypeMismatch"
	InvalidEnumValue     ValidationKind = "InvalidEnumValue"
	DanglingReference    ValidationKind = "DanglingReference"
	InvariantViolation   ValidationKind = "InvariantViolation"
)

func (k ValidationKind) sentinel() error {
	switch k {
	case MissingRequiredField:
		return ErrMissingRequiredField
	case TypeMismatch:
		return ErrTypeMismatch
	case InvalidEnumValue:
		return ErrInvalidEnumValue
	case DanglingReference:
		return ErrDanglingReference
	}
	return ErrInvariantViolation
}

// ValidationError describes why a write was rejected. It matches the
// sentinel of its kind with errors.Is.
type ValidationError struct {
	Kind       ValidationKind
	Collection string
	Field      string
	Reason     string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Collection, e.Reason)
	}
	return fmt.Sprintf("%s: %s.%s: %s", e.Kind, e.Collection, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind.sentinel()
}

func invalid(kind ValidationKind, collection, field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Kind:       kind,
		Collection: collection,
		Field:      field,
		Reason:     fmt.Sprintf(format, args...),
	}
}
