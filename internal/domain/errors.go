package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Domain validation errors
const (
	ErrCodeInvalidTransition    = "INVALID_TRANSITION"
	ErrCodeValidation           = "VALIDATION"
	ErrCodeMissingRequiredField = "MISSING_REQUIRED_FIELD"
	ErrCodeAmountMismatch       = "AMOUNT_MISMATCH"
)

// ErrInvalidTransition is the sentinel matched by errors.Is for any
// rejected state machine transition.
var ErrInvalidTransition = errors.New("invalid status transition")

func NewInvalidTransitionError(from, to Status) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
		Err:     ErrInvalidTransition,
	}
}

func NewValidationError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: "invalid request",
		Err:     err,
	}
}

func NewMissingRequiredFieldError(field string) *DomainError {
	return &DomainError{
		Code:    ErrCodeMissingRequiredField,
		Message: fmt.Sprintf("%s is required", field),
	}
}

func NewAmountMismatchError(expected, got int64) *DomainError {
	return &DomainError{
		Code:    ErrCodeAmountMismatch,
		Message: fmt.Sprintf("line item totals sum to %d, session amount is %d", got, expected),
	}
}

// IsDomainError unwraps err into a *DomainError when possible.
func IsDomainError(err error) (*DomainError, bool) {
	var domErr *DomainError
	ok := errors.As(err, &domErr)
	return domErr, ok
}
