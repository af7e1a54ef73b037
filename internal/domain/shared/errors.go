package shared

import (
	"errors"

	"github.com/samber/oops"
)

// Domain error codes
const (
	ErrCodeInvalidInput  = 1001
	ErrCodeNotFound      = 1002
	ErrCodeAlreadyExists = 1003

	// Assist boundary errors (2000-2999).
	// These mirror what the platform collaborators can report: every one of
	// them is recoverable and must surface as a paired visual + spoken notice,
	// never as a fatal failure.
	ErrCodePermissionDenied    = 2001
	ErrCodeDeviceUnavailable   = 2002
	ErrCodeNoMatch             = 2003
	ErrCodeProviderUnavailable = 2004
	ErrCodeUnsupported         = 2005
)

// NewDomainError creates a new domain error using oops
func NewDomainError(code int, message string) error {
	return oops.
		Code(codeToString(code)).
		In("domain").
		With("error_code", code).
		Errorf(message)
}

// NewDomainErrorf creates a new domain error with formatted message
func NewDomainErrorf(code int, format string, args ...interface{}) error {
	return oops.
		Code(codeToString(code)).
		In("domain").
		With("error_code", code).
		Errorf(format, args...)
}

// WrapDomainError wraps an existing error with domain context
func WrapDomainError(err error, code int, message string) error {
	return oops.
		Code(codeToString(code)).
		In("domain").
		With("error_code", code).
		Wrapf(err, message)
}

// ErrorCode extracts the assist error code from an error, or 0 if it carries none
func ErrorCode(err error) int {
	var oopsErr oops.OopsError
	if errors.As(err, &oopsErr) {
		if code, ok := oopsErr.Context()["error_code"].(int); ok {
			return code
		}
	}
	return 0
}

// codeToString converts int error code to string
func codeToString(code int) string {
	switch code {
	case ErrCodeInvalidInput:
		return "INVALID_INPUT"
	case ErrCodeNotFound:
		return "NOT_FOUND"
	case ErrCodeAlreadyExists:
		return "ALREADY_EXISTS"
	case ErrCodePermissionDenied:
		return "PERMISSION_DENIED"
	case ErrCodeDeviceUnavailable:
		return "DEVICE_UNAVAILABLE"
	case ErrCodeNoMatch:
		return "NO_MATCH"
	case ErrCodeProviderUnavailable:
		return "PROVIDER_UNAVAILABLE"
	case ErrCodeUnsupported:
		return "UNSUPPORTED"
	default:
		return "UNKNOWN_ERROR"
	}
}

// Common domain error builders
func ErrInvalidInput(msg string) error {
	return NewDomainError(ErrCodeInvalidInput, msg)
}

func ErrNotFound(resource string) error {
	return NewDomainErrorf(ErrCodeNotFound, "%s not found", resource)
}

func ErrAlreadyExists(resource string) error {
	return NewDomainErrorf(ErrCodeAlreadyExists, "%s already exists", resource)
}

func ErrProviderUnavailable(provider string, err error) error {
	return WrapDomainError(err, ErrCodeProviderUnavailable, provider+" is unavailable")
}

func ErrUnsupported(capability string) error {
	return NewDomainErrorf(ErrCodeUnsupported, "%s is not supported on this device", capability)
}
