package types

import (
	"errors"
	"fmt"
)

// Code classifies an Error.
type Code string

const (
	CodeInvalidAlias          Code = "INVALID_ALIAS"
	CodeEncoding              Code = "ENCODING"
	CodeMalformedPacket       Code = "MALFORMED_PACKET"
	CodeTruncatedPacket       Code = "TRUNCATED_PACKET"
	CodePrimaryIdentityExists Code = "PRIMARY_IDENTITY_EXISTS"
	CodeNoPrimaryIdentity     Code = "NO_PRIMARY_IDENTITY"
	CodeStorage               Code = "STORAGE"
	CodeRetryable             Code = "RETRYABLE"
	CodeRateLimited           Code = "RATE_LIMITED"
)

// Error is the single error type of the core. Two Errors match under
// errors.Is when their codes are equal, so callers compare against the
// sentinels below regardless of message or cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New returns an Error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap returns an Error with the given cause.
func Wrap(code Code, message string, cause error) error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

var (
	ErrInvalidAlias          = New(CodeInvalidAlias, "invalid alias")
	ErrEncoding              = New(CodeEncoding, "packet encoding failed")
	ErrMalformedPacket       = New(CodeMalformedPacket, "malformed packet")
	ErrTruncatedPacket       = New(CodeTruncatedPacket, "truncated packet")
	ErrPrimaryIdentityExists = New(CodePrimaryIdentityExists, "primary identity already exists")
	ErrNoPrimaryIdentity     = New(CodeNoPrimaryIdentity, "no primary identity")
	ErrStorage               = New(CodeStorage, "storage failure")
	ErrRetryable             = New(CodeRetryable, "temporary failure, retry")
	ErrRateLimited           = New(CodeRateLimited, "sender rate limited")
)

// StorageError wraps a backing-store failure for operation op.
func StorageError(op string, cause error) error {
	if cause == nil {
		return nil
	}
	var e *Error
	if errors.As(cause, &e) && e.Code == CodeStorage {
		return cause
	}
	return Wrap(CodeStorage, op, cause)
}
