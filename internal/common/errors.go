// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Database errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Write-path errors.
	ErrValidation        = errors.New("validation failed")
	ErrAccountInUse      = errors.New("account still has transactions")
	ErrSystemCategory    = errors.New("system categories cannot be modified")
	ErrCategoryInUse     = errors.New("category still has transactions")
	ErrTypeMismatch      = errors.New("category type does not match transaction type")
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsValidation reports whether the error is a recoverable validation
// failure, i.e. nothing was persisted and the caller can correct the input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrTypeMismatch) ||
		errors.Is(err, ErrNonPositiveAmount)
}

// IsConflict reports whether the error is a user-correctable uniqueness
// conflict, such as a duplicate category name or budget limit.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateEntry)
}
