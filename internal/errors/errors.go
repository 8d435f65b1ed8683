// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrLexiconInvalid        = errors.New("invalid keyword lexicon")
	ErrUnknownEmotion        = errors.New("unknown emotion type")
	ErrInvalidTrade          = errors.New("invalid trade")
	ErrTradeNotFound         = errors.New("trade not found")
	ErrTradeAlreadyClosed    = errors.New("trade already closed")
	ErrAlertNotFound         = errors.New("alert not found")
	ErrClassifierUnavailable = errors.New("sentiment classifier unavailable")
	ErrMarketDataUnavailable = errors.New("market data unavailable")
	ErrConfigInvalid         = errors.New("invalid configuration")
	ErrDataNotFound          = errors.New("data not found")
	ErrDatabaseError         = errors.New("database error")
	ErrTimeout               = errors.New("operation timed out")
)

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// LexiconError reports a malformed keyword table. It always matches
// ErrLexiconInvalid.
type LexiconError struct {
	Language string
	Category string
	Reason   string
}

func (e *LexiconError) Error() string {
	if e.Category != "" {
		return fmt.Sprintf("lexicon error [%s/%s]: %s", e.Language, e.Category, e.Reason)
	}
	return fmt.Sprintf("lexicon error [%s]: %s", e.Language, e.Reason)
}

func (e *LexiconError) Unwrap() error {
	return ErrLexiconInvalid
}

// NewLexiconError creates a new LexiconError.
func NewLexiconError(language, category, reason string) *LexiconError {
	return &LexiconError{
		Language: language,
		Category: category,
		Reason:   reason,
	}
}

// CollaboratorError represents a failure of an external data provider.
type CollaboratorError struct {
	Collaborator string
	Operation    string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("collaborator error [%s] %s: %v", e.Collaborator, e.Operation, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// NewCollaboratorError creates a new CollaboratorError.
func NewCollaboratorError(collaborator, operation string, err error) *CollaboratorError {
	return &CollaboratorError{
		Collaborator: collaborator,
		Operation:    operation,
		Err:          err,
	}
}

// DataError represents a data-related error.
type DataError struct {
	DataType string
	Key      string
	Message  string
	Err      error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s] %s: %s: %v", e.DataType, e.Key, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s] %s: %s", e.DataType, e.Key, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(dataType, key, message string, err error) *DataError {
	return &DataError{
		DataType: dataType,
		Key:      key,
		Message:  message,
		Err:      err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
