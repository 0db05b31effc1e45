package builder

import (
	"errors"
	"fmt"
)

var (
	// ErrMandatoryField matches every *MandatoryFieldError.
	ErrMandatoryField = errors.New("mandatory field not set")
	// ErrNotNull matches every *NotNullError.
	ErrNotNull = errors.New("not-null constraint violated")
)

// MandatoryFieldError is returned by Build when a field the target
// constructor requires was never assigned.
type MandatoryFieldError struct {
	Type  string
	Field string
}

func (e *MandatoryFieldError) Error() string {
	return fmt.Sprintf("%s: mandatory field %q not set", e.Type, e.Field)
}

func (e *MandatoryFieldError) Is(target error) bool { return target == ErrMandatoryField }

// NotNullError is returned by Build when a field carrying a not-null
// constraint was explicitly set to nil.
type NotNullError struct {
	Type  string
	Field string
}

func (e *NotNullError) Error() string {
	return fmt.Sprintf("%s: field %q was set to nil but is annotated not-null", e.Type, e.Field)
}

func (e *NotNullError) Is(target error) bool { return target == ErrNotNull }
