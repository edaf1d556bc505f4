package errors

import (
	"errors"
	"fmt"
	"strings"

	"autoboard/contexts/marketplace/listing-service/domain/entities"
)

var (
	ErrValidation              = errors.New("invalid listing input")
	ErrUnauthorized            = errors.New("caller is not authorized")
	ErrListingNotFound         = errors.New("listing not found")
	ErrNotificationNotFound    = errors.New("notification not found")
	ErrProfileNotFound         = errors.New("profile not found")
	ErrQuotaExceeded           = errors.New("active listing quota exceeded")
	ErrVerificationExpired     = errors.New("verification code expired")
	ErrNoCodeIssued            = errors.New("no verification code issued")
	ErrAlreadyVerified         = errors.New("listing email already verified")
	ErrTooManyAttempts         = errors.New("too many verification attempts")
	ErrContentNotAllowed       = errors.New("listing content not allowed")
	ErrInvalidStatusTransition = errors.New("invalid listing status transition")
	ErrVersionConflict         = errors.New("listing was modified concurrently")
	ErrPersistence             = errors.New("listing store unavailable")
)

// FieldError attributes a validation failure to one input field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Add(field string, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		parts = append(parts, field.Error())
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// FieldMap returns field -> message, keeping the first message per field.
func (e *ValidationError) FieldMap() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, field := range e.Fields {
		if _, exists := out[field.Field]; !exists {
			out[field.Field] = field.Message
		}
	}
	return out
}

type QuotaExceededError struct {
	Snapshot entities.QuotaSnapshot
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s: %d of %d active listings in use", ErrQuotaExceeded.Error(), e.Snapshot.CurrentCount, e.Snapshot.MaxLimit)
}

func (e *QuotaExceededError) Unwrap() error { return ErrQuotaExceeded }

type ContentRejectedError struct {
	Reasons []string
}

func (e *ContentRejectedError) Error() string {
	if len(e.Reasons) == 0 {
		return ErrContentNotAllowed.Error()
	}
	return ErrContentNotAllowed.Error() + ": " + strings.Join(e.Reasons, ", ")
}

func (e *ContentRejectedError) Unwrap() error { return ErrContentNotAllowed }

// Persistence marks a store failure while keeping the original cause in the chain.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
