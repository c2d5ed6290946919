// Package storage provides the data persistence layer for the tally application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joshsymonds/tally/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidOwner     = errors.New("owner id must be positive")
	ErrInvalidID        = errors.New("id must be positive")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidDateRange = errors.New("start date must be before end date")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateOwner ensures an owner id refers to a real user.
func validateOwner(ownerID int64) error {
	if ownerID <= 0 {
		return ErrInvalidOwner
	}
	return nil
}

// validateID ensures an entity id is positive.
func validateID(id int64, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidID, paramName)
	}
	return nil
}

// validateTransactionType ensures the type enum holds a known value.
func validateTransactionType(t model.TransactionType) error {
	if !t.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, t)
	}
	return nil
}
