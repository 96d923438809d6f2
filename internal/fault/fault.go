// Package fault defines the typed error taxonomy shared by the pipeline and
// its components. Every failure surfaced to a caller carries a machine code,
// a human-readable message, the phase it happened in, and whether the
// failure is transient.
package fault

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error classification.
type Code string

const (
	InvalidInput          Code = "INVALID_INPUT"
	InvalidText           Code = "INVALID_TEXT"
	OracleKeyMissing      Code = "ORACLE_KEY_MISSING"
	OracleAPIError        Code = "ORACLE_API_ERROR"
	OracleResponseInvalid Code = "ORACLE_RESPONSE_INVALID"
	JSONParseError        Code = "JSON_PARSE_ERROR"
	StorageError          Code = "STORAGE_ERROR"
	Unknown               Code = "UNKNOWN_ERROR"
)

// Error is the typed pipeline error.
type Error struct {
	Code        Code   `json:"code"`
	Message     string `json:"message"`
	Phase       string `json:"phase,omitempty"`
	Recoverable bool   `json:"recoverable"`
	Err         error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Phase != "" {
		return fmt.Sprintf("%s (%s): %s", e.Code, e.Phase, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a non-recoverable error with the given code.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a non-recoverable error carrying an underlying cause.
func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// Transient marks an error as retryable.
func Transient(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Recoverable: true, Err: err}
}

// WithPhase returns a copy tagged with the pipeline phase it surfaced from.
func (e *Error) WithPhase(phase string) *Error {
	c := *e
	c.Phase = phase
	return &c
}

// From coerces any error into an *Error, wrapping unclassified failures as
// UNKNOWN_ERROR.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}
	return &Error{Code: Unknown, Message: err.Error(), Err: err}
}

// IsRecoverable reports whether err is classified as transient. Untyped
// errors are never recoverable.
func IsRecoverable(err error) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Recoverable
}
