package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/baharkarakas/roamr-backend/internal/validate"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrDenied           = errors.New("permission denied")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError carries field-level causes. Nothing is written when one is returned.
type ValidationError struct {
	Entity string
	Fields validate.Errs
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Entity + ": " + e.Fields.Error()
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(entity, field, msg string) *ValidationError {
	return &ValidationError{Entity: entity, Fields: validate.Errs{{Field: field, Msg: msg}}}
}

// NotFoundf wraps ErrNotFound with the missing entity and id.
func NotFoundf(entity, id string) error {
	return fmt.Errorf("%s %q: %w", entity, id, ErrNotFound)
}

// StoreErr wraps a driver error as ErrStoreUnavailable.
func StoreErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}

// CascadeError reports reviews that could not be confirmed deleted after their
// listing was removed. Re-running the cascade with Pending is safe.
type CascadeError struct {
	ListingID string
	Pending   []string
	Err       error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("cascade for listing %s left %d review(s) pending [%s]: %v",
		e.ListingID, len(e.Pending), strings.Join(e.Pending, ","), e.Err)
}

func (e *CascadeError) Unwrap() error { return e.Err }

func (e *CascadeError) Is(target error) bool { return target == ErrStoreUnavailable }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
