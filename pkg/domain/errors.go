package domain

import (
	"errors"
	"net/http"
)

// Code is a machine-readable error kind.
type Code string

const (
	CodeUnknown Code = "UNKNOWN"

	// Lookup errors
	CodeCharacterNotFound    Code = "CHARACTER_NOT_FOUND"
	CodeCyberwareNotFound    Code = "CYBERWARE_NOT_FOUND"
	CodeSaveNotFound         Code = "SAVE_NOT_FOUND"
	CodeInstallationNotFound Code = "INSTALLATION_NOT_FOUND"

	// Installation preconditions
	CodeInsufficientFunds    Code = "INSUFFICIENT_FUNDS"
	CodeInsufficientHumanity Code = "INSUFFICIENT_HUMANITY"

	// Request shape
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeProtectedField  Code = "PROTECTED_FIELD"

	// Commit failures
	CodeConcurrencyConflict Code = "CONCURRENCY_CONFLICT"
	CodeRuleViolation       Code = "RULE_VIOLATION"
	CodeStorageFailure      Code = "STORAGE_FAILURE"

	// Malformed catalog data.
	CodeConfigurationError Code = "CONFIGURATION_ERROR"
)

// HTTPStatus maps a code to the status an HTTP caller should see.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeCharacterNotFound, CodeCyberwareNotFound, CodeSaveNotFound, CodeInstallationNotFound:
		return http.StatusNotFound
	case CodeInsufficientFunds, CodeInsufficientHumanity, CodeInvalidArgument, CodeProtectedField:
		return http.StatusBadRequest
	case CodeConcurrencyConflict, CodeRuleViolation:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is the structured error returned by engine and store operations.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil && e.Message == "" {
		return e.Cause.Error()
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// NewError creates an error with a code and message.
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// ErrorWithMetadata creates an error carrying key/value context.
func ErrorWithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

// WrapError creates an error that wraps an underlying cause.
func WrapError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf extracts the code from err, or CodeUnknown when err carries none.
// Rule violations map to CodeRuleViolation.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	var rv RuleViolationError
	if errors.As(err, &rv) {
		return CodeRuleViolation
	}
	return CodeUnknown
}

// Sentinels for errors.Is checks.
var (
	ErrCharacterNotFound    = NewError(CodeCharacterNotFound, "character not found")
	ErrCyberwareNotFound    = NewError(CodeCyberwareNotFound, "cyberware not found")
	ErrSaveNotFound         = NewError(CodeSaveNotFound, "save not found")
	ErrInstallationNotFound = NewError(CodeInstallationNotFound, "installation not found")
	ErrInsufficientFunds    = NewError(CodeInsufficientFunds, "insufficient funds")
	ErrInsufficientHumanity = NewError(CodeInsufficientHumanity, "insufficient humanity")
	ErrInvalidArgument      = NewError(CodeInvalidArgument, "invalid argument")
	ErrProtectedField       = NewError(CodeProtectedField, "protected field")
	ErrConcurrencyConflict  = NewError(CodeConcurrencyConflict, "concurrency conflict")
	ErrStorageFailure       = NewError(CodeStorageFailure, "storage failure")
	ErrConfiguration        = NewError(CodeConfigurationError, "configuration error")
)
