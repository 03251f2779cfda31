package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCaption is returned when the vision service found nothing to describe
	ErrNoCaption = errors.New("no caption found")

	// ErrNoTranslation is returned when the translation service returned no entries
	ErrNoTranslation = errors.New("no translation returned")
)

// ServiceError reports that a remote call itself failed (network, auth, quota,
// malformed request). Message carries the provider's own diagnostic text.
type ServiceError struct {
	Service    string
	Op         string
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s failed (status %d): %s", e.Service, e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Service, e.Op, msg)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Diagnostic returns the most specific text available for end users
func (e *ServiceError) Diagnostic() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Error()
}

// ValidationError reports user input that cannot be accepted
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewUnsupportedLanguageError builds the validation error for a code missing from the catalog
func NewUnsupportedLanguageError(code string) *ValidationError {
	return &ValidationError{
		Field:   "language_code",
		Value:   code,
		Message: fmt.Sprintf("%s is not a supported language.", code),
	}
}

// IsServiceError reports whether err wraps a ServiceError
func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}

// IsValidationError reports whether err wraps a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
