package executor

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes invocation failures.
type ErrorCode string

const (
	// ErrCodeConstructorNotFound: no handler can construct the requested type.
	ErrCodeConstructorNotFound ErrorCode = "CONSTRUCTOR_NOT_FOUND"

	// ErrCodeMethodNotFound: no handler matches the requested method.
	ErrCodeMethodNotFound ErrorCode = "METHOD_NOT_FOUND"

	// ErrCodeFieldAccess: no readable field or getter matches.
	ErrCodeFieldAccess ErrorCode = "FIELD_ACCESS"

	// ErrCodeFieldMutation: no writable field or setter matches.
	ErrCodeFieldMutation ErrorCode = "FIELD_MUTATION"

	// ErrCodeGenericResolution: ambiguous type matching, argument
	// conversion failure, or introspection unavailable. Another backend
	// may succeed.
	ErrCodeGenericResolution ErrorCode = "GENERIC_RESOLUTION"

	// ErrCodeUnsupported: a handler reported success without a value.
	ErrCodeUnsupported ErrorCode = "UNSUPPORTED_OPERATION"
)

// InvocationError is the typed failure shared by all backends.
//
// Errors returned by invoked code and index-range failures are never
// wrapped in an InvocationError; they reach the caller unchanged.
type InvocationError struct {
	// Code identifies the failure category.
	Code ErrorCode

	// Type is the qualified name of the target type.
	Type string

	// Member is the constructor, method or field name.
	Member string

	// Backend names the executor that raised the error.
	Backend Backend

	// Message is a human-readable cause description.
	Message string

	// Cause is the underlying failure, if any.
	Cause error
}

// Error implements the error interface.
func (e *InvocationError) Error() string {
	target := e.Type
	if e.Member != "" {
		target += "." + e.Member
	}
	msg := fmt.Sprintf("%s: %s", e.Code, target)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Backend != "" {
		msg += fmt.Sprintf(" (backend=%s)", e.Backend)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *InvocationError) Unwrap() error { return e.Cause }

// NotFound reports whether the error belongs to the not-found family.
func (e *InvocationError) NotFound() bool {
	switch e.Code {
	case ErrCodeConstructorNotFound, ErrCodeMethodNotFound, ErrCodeFieldAccess, ErrCodeFieldMutation:
		return true
	}
	return false
}

// CodeOf returns the ErrorCode of err, or "" if err is not an InvocationError.
func CodeOf(err error) ErrorCode {
	var ie *InvocationError
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ""
}

func hasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// IsNotFound reports whether err is any of the not-found family.
func IsNotFound(err error) bool {
	var ie *InvocationError
	return errors.As(err, &ie) && ie.NotFound()
}

// IsConstructorNotFound reports whether err is a constructor-not-found error.
func IsConstructorNotFound(err error) bool { return hasCode(err, ErrCodeConstructorNotFound) }

// IsMethodNotFound reports whether err is a method-not-found error.
func IsMethodNotFound(err error) bool { return hasCode(err, ErrCodeMethodNotFound) }

// IsFieldAccess reports whether err is a field access error.
func IsFieldAccess(err error) bool { return hasCode(err, ErrCodeFieldAccess) }

// IsFieldMutation reports whether err is a field mutation error.
func IsFieldMutation(err error) bool { return hasCode(err, ErrCodeFieldMutation) }

// IsGenericResolution reports whether err is a generic resolution error.
func IsGenericResolution(err error) bool { return hasCode(err, ErrCodeGenericResolution) }

// IsUnsupported reports whether err is an unsupported-operation error.
func IsUnsupported(err error) bool { return hasCode(err, ErrCodeUnsupported) }

// NewConstructorNotFound creates a constructor-not-found error.
func NewConstructorNotFound(b Backend, typeName, ctor string) *InvocationError {
	return &InvocationError{Code: ErrCodeConstructorNotFound, Type: typeName, Member: ctor, Backend: b}
}

// NewMethodNotFound creates a method-not-found error.
func NewMethodNotFound(b Backend, typeName, method string) *InvocationError {
	return &InvocationError{Code: ErrCodeMethodNotFound, Type: typeName, Member: method, Backend: b}
}

// NewFieldAccess creates a field access error.
func NewFieldAccess(b Backend, typeName, field string) *InvocationError {
	return &InvocationError{Code: ErrCodeFieldAccess, Type: typeName, Member: field, Backend: b}
}

// NewFieldMutation creates a field mutation error.
func NewFieldMutation(b Backend, typeName, field string) *InvocationError {
	return &InvocationError{Code: ErrCodeFieldMutation, Type: typeName, Member: field, Backend: b}
}

// NewGenericResolution creates a generic resolution error with a diagnostic cause.
func NewGenericResolution(b Backend, typeName, member string, cause error) *InvocationError {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &InvocationError{Code: ErrCodeGenericResolution, Type: typeName, Member: member, Backend: b, Message: msg, Cause: cause}
}

// NewUnsupported creates an unsupported-operation error.
func NewUnsupported(b Backend, typeName, member, message string) *InvocationError {
	return &InvocationError{Code: ErrCodeUnsupported, Type: typeName, Member: member, Backend: b, Message: message}
}

// withMessage sets a message and returns e.
func (e *InvocationError) withMessage(format string, a ...any) *InvocationError {
	e.Message = fmt.Sprintf(format, a...)
	return e
}
