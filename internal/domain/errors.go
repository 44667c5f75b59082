// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the semantic category of an error
type ErrorType int

const (
	ErrorTypeValidation  ErrorType = iota // Input validation errors
	ErrorTypeNotFound                     // Resource not found errors, local or remote
	ErrorTypeConflict                     // Resource conflict errors
	ErrorTypeInternal                     // Internal errors
	ErrorTypeUnavailable                  // Dependency unavailable errors

	ErrorTypeCredential        // Zoom credentials missing or rejected
	ErrorTypeInsufficientScope // Zoom app lacks one of the required scopes
	ErrorTypeConnection        // Network-layer failure talking to Zoom
	ErrorTypeRetryExhausted    // Zoom kept rate limiting past the retry budget
	ErrorTypeBadRequest        // Zoom rejected the payload (HTTP 400)
	ErrorTypeQuotaExhausted    // Zoom account quota used up until RetryAfter
	ErrorTypeInvalidRecurrence // Recurring meeting produced no occurrences
	ErrorTypeRemote            // Any other Zoom error response
)

var errorTypeNames = map[ErrorType]string{
	ErrorTypeValidation:        "validation",
	ErrorTypeNotFound:          "not_found",
	ErrorTypeConflict:          "conflict",
	ErrorTypeInternal:          "internal",
	ErrorTypeUnavailable:       "unavailable",
	ErrorTypeCredential:        "credential",
	ErrorTypeInsufficientScope: "insufficient_scope",
	ErrorTypeConnection:        "connection",
	ErrorTypeRetryExhausted:    "retry_exhausted",
	ErrorTypeBadRequest:        "bad_request",
	ErrorTypeQuotaExhausted:    "quota_exhausted",
	ErrorTypeInvalidRecurrence: "invalid_recurrence",
	ErrorTypeRemote:            "remote",
}

func (t ErrorType) String() string {
	if name, ok := errorTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("error_type(%d)", int(t))
}

// Zoom provider error codes the sync core branches on.
const (
	ProviderCodeUserNotFound    = 1001
	ProviderCodeInvalidUser     = 1120
	ProviderCodeMeetingNotFound = 3001
)

// DomainError represents an error with semantic type information
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error // underlying error for wrapping

	// Populated for errors that originate from a Zoom response.
	HTTPStatus   int
	ProviderCode int
	// Populated for ErrorTypeQuotaExhausted.
	RetryAfter time.Time
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// GetErrorType returns the semantic type of an error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ErrorTypeInternal // default fallback
}

// GetProviderCode returns the Zoom error code carried by err, or 0.
func GetProviderCode(err error) int {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.ProviderCode
	}
	return 0
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return err != nil && GetErrorType(err) == ErrorTypeNotFound
}

// IsQuotaExhausted reports whether err signals the account-wide quota cooldown.
func IsQuotaExhausted(err error) bool {
	return err != nil && GetErrorType(err) == ErrorTypeQuotaExhausted
}

// IsMeetingGone reports whether err means the remote meeting (or its host) no longer exists.
func IsMeetingGone(err error) bool {
	if err == nil {
		return false
	}
	switch GetProviderCode(err) {
	case ProviderCodeMeetingNotFound, ProviderCodeUserNotFound, ProviderCodeInvalidUser:
		return true
	}
	return false
}

// IsFatal reports whether err is a configuration problem that should abort a whole job.
func IsFatal(err error) bool {
	switch GetErrorType(err) {
	case ErrorTypeCredential, ErrorTypeInsufficientScope, ErrorTypeQuotaExhausted:
		return true
	}
	return false
}

// Error constructors for different types
func NewValidationError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeValidation, Message: message, Err: errors.Join(err...)}
}

func NewNotFoundError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeNotFound, Message: message, Err: errors.Join(err...)}
}

func NewConflictError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeConflict, Message: message, Err: errors.Join(err...)}
}

func NewInternalError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeInternal, Message: message, Err: errors.Join(err...)}
}

func NewUnavailableError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeUnavailable, Message: message, Err: errors.Join(err...)}
}

func NewCredentialError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeCredential, Message: message, Err: errors.Join(err...)}
}

func NewInsufficientScopeError(missing []string) *DomainError {
	return &DomainError{
		Type:    ErrorTypeInsufficientScope,
		Message: fmt.Sprintf("zoom app is missing required scopes: %v", missing),
	}
}

func NewConnectionError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeConnection, Message: message, Err: errors.Join(err...)}
}

func NewRetryExhaustedError(message string, status, code int) *DomainError {
	return &DomainError{Type: ErrorTypeRetryExhausted, Message: message, HTTPStatus: status, ProviderCode: code}
}

func NewRemoteNotFoundError(message string, code int) *DomainError {
	return &DomainError{Type: ErrorTypeNotFound, Message: message, HTTPStatus: 404, ProviderCode: code}
}

func NewBadRequestError(message string, code int) *DomainError {
	return &DomainError{Type: ErrorTypeBadRequest, Message: message, HTTPStatus: 400, ProviderCode: code}
}

func NewQuotaExhaustedError(message string, code int, retryAfter time.Time) *DomainError {
	return &DomainError{
		Type:         ErrorTypeQuotaExhausted,
		Message:      message,
		HTTPStatus:   429,
		ProviderCode: code,
		RetryAfter:   retryAfter,
	}
}

func NewInvalidRecurrenceError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeInvalidRecurrence, Message: message, Err: errors.Join(err...)}
}

func NewRemoteError(message string, status, code int) *DomainError {
	return &DomainError{Type: ErrorTypeRemote, Message: message, HTTPStatus: status, ProviderCode: code}
}
