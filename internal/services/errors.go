package services

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindRateLimit    ErrorKind = "rate_limit"
	KindDependency   ErrorKind = "dependency"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
)

// Stable error codes rendered to clients.
const (
	CodeValidation          = "VALIDATION_FAILED"
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyRegistered   = "ALREADY_REGISTERED"
	CodeDuplicateIdentifier = "DUPLICATE_IDENTIFIER"
	CodeAlreadyApproved     = "ALREADY_APPROVED"
	CodeInvalidState        = "INVALID_STATE"
	CodeRateLimited         = "RATE_LIMITED"
	CodeDispatchFailed      = "DISPATCH_FAILED"
	CodeOTPNotFound         = "OTP_NOT_FOUND"
	CodeAlreadyVerified     = "ALREADY_VERIFIED"
	CodeOTPExpired          = "OTP_EXPIRED"
	CodeAttemptsExhausted   = "ATTEMPTS_EXHAUSTED"
	CodeInvalidCode         = "INVALID_CODE"
	CodeEmailNotVerified    = "EMAIL_NOT_VERIFIED"
	CodeUploadFailed        = "UPLOAD_FAILED"
	CodeStorageFailed       = "STORAGE_FAILED"
	CodeConcurrentUpdate    = "CONCURRENT_UPDATE"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeAccountBlocked      = "ACCOUNT_BLOCKED"
	CodeInvalidToken        = "INVALID_TOKEN"
)

// ServiceError is returned by every service operation that fails for a
// reason the caller can act on. Meta carries retry_after_seconds and
// remaining_attempts where relevant.
type ServiceError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Meta    map[string]any
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Is matches on Code so errors.Is(err, ErrAlreadyApproved) works regardless
// of message or meta.
func (e *ServiceError) Is(target error) bool {
	var t *ServiceError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

func newError(kind ErrorKind, code, message string) *ServiceError {
	return &ServiceError{Kind: kind, Code: code, Message: message}
}

func validationError(message string) *ServiceError {
	return newError(KindValidation, CodeValidation, message)
}

func dependencyError(code, message string, err error) *ServiceError {
	return &ServiceError{Kind: KindDependency, Code: code, Message: message, Err: err}
}

func (e *ServiceError) withMeta(key string, value any) *ServiceError {
	if e.Meta == nil {
		e.Meta = map[string]any{}
	}
	e.Meta[key] = value
	return e
}

// Sentinels for errors.Is.
var (
	ErrAlreadyRegistered   = &ServiceError{Code: CodeAlreadyRegistered}
	ErrDuplicateIdentifier = &ServiceError{Code: CodeDuplicateIdentifier}
	ErrAlreadyApproved     = &ServiceError{Code: CodeAlreadyApproved}
	ErrInvalidState        = &ServiceError{Code: CodeInvalidState}
	ErrRateLimited         = &ServiceError{Code: CodeRateLimited}
	ErrDispatchFailed      = &ServiceError{Code: CodeDispatchFailed}
	ErrOTPNotFound         = &ServiceError{Code: CodeOTPNotFound}
	ErrAlreadyVerified     = &ServiceError{Code: CodeAlreadyVerified}
	ErrOTPExpired          = &ServiceError{Code: CodeOTPExpired}
	ErrAttemptsExhausted   = &ServiceError{Code: CodeAttemptsExhausted}
	ErrInvalidCode         = &ServiceError{Code: CodeInvalidCode}
	ErrEmailNotVerified    = &ServiceError{Code: CodeEmailNotVerified}
	ErrNotFound            = &ServiceError{Code: CodeNotFound}
	ErrValidation          = &ServiceError{Code: CodeValidation}
	ErrUploadFailed        = &ServiceError{Code: CodeUploadFailed}
	ErrStorageFailed       = &ServiceError{Code: CodeStorageFailed}
	ErrConcurrentUpdate    = &ServiceError{Code: CodeConcurrentUpdate}
	ErrInvalidCredentials  = &ServiceError{Code: CodeInvalidCredentials}
	ErrAccountBlocked      = &ServiceError{Code: CodeAccountBlocked}
	ErrInvalidToken        = &ServiceError{Code: CodeInvalidToken}
)

// AsServiceError extracts the ServiceError from err, if any.
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
