// Package errors provides application-level error types and utilities.
// Besides the generic HTTP-ish kinds it carries the sync-pipeline taxonomy:
// missing credentials, upstream auth rejection, upstream unavailability,
// credential decryption failures and payload transform failures.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation_error"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeInternal     ErrorType = "internal_error"
	ErrorTypeBadRequest   ErrorType = "bad_request"

	ErrorTypeCredentialsMissing  ErrorType = "credentials_missing"
	ErrorTypeUpstreamAuth        ErrorType = "upstream_auth_rejected"
	ErrorTypeUpstreamUnavailable ErrorType = "upstream_unavailable"
	ErrorTypeDecryption          ErrorType = "decryption_error"
	ErrorTypeTransform           ErrorType = "transform_error"
)

// AppError represents an application error with additional context
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details string    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func newError(t ErrorType, code int, message string, details ...string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{
		Type:    t,
		Message: message,
		Code:    code,
		Details: detail,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...string) *AppError {
	return newError(ErrorTypeValidation, http.StatusBadRequest, message, details...)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, details ...string) *AppError {
	return newError(ErrorTypeNotFound, http.StatusNotFound, message, details...)
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string, details ...string) *AppError {
	return newError(ErrorTypeUnauthorized, http.StatusUnauthorized, message, details...)
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(message string, details ...string) *AppError {
	return newError(ErrorTypeForbidden, http.StatusForbidden, message, details...)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, details ...string) *AppError {
	return newError(ErrorTypeInternal, http.StatusInternalServerError, message, details...)
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string, details ...string) *AppError {
	return newError(ErrorTypeBadRequest, http.StatusBadRequest, message, details...)
}

// NewCredentialsMissingError signals a company without usable external-API
// credentials. Callers skip the company rather than failing the batch.
func NewCredentialsMissingError(message string, details ...string) *AppError {
	return newError(ErrorTypeCredentialsMissing, http.StatusBadRequest, message, details...)
}

// NewUpstreamAuthError signals that the external API rejected our credentials.
func NewUpstreamAuthError(message string, details ...string) *AppError {
	return newError(ErrorTypeUpstreamAuth, http.StatusUnauthorized, message, details...)
}

// NewUpstreamUnavailableError signals a timeout or network failure talking to
// the external API. Eligible for retry on the next scheduled cycle.
func NewUpstreamUnavailableError(message string, details ...string) *AppError {
	return newError(ErrorTypeUpstreamUnavailable, http.StatusBadGateway, message, details...)
}

// NewDecryptionError signals that a stored credential could not be decrypted.
// This indicates a configuration problem and is logged loudly by callers.
func NewDecryptionError(message string, details ...string) *AppError {
	return newError(ErrorTypeDecryption, http.StatusInternalServerError, message, details...)
}

// NewTransformError signals a malformed external payload. The offending
// ticket is skipped; sync continues.
func NewTransformError(message string, details ...string) *AppError {
	return newError(ErrorTypeTransform, http.StatusUnprocessableEntity, message, details...)
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func isType(err error, t ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == t
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return isType(err, ErrorTypeValidation)
}

// IsCredentialsMissingError checks for the credentials-missing kind.
func IsCredentialsMissingError(err error) bool {
	return isType(err, ErrorTypeCredentialsMissing)
}

// IsUpstreamAuthError checks whether the external API rejected authentication.
func IsUpstreamAuthError(err error) bool {
	return isType(err, ErrorTypeUpstreamAuth)
}

// IsUpstreamUnavailableError checks for timeouts/network failures upstream.
func IsUpstreamUnavailableError(err error) bool {
	return isType(err, ErrorTypeUpstreamUnavailable)
}

// IsDecryptionError checks for credential decryption failures.
func IsDecryptionError(err error) bool {
	return isType(err, ErrorTypeDecryption)
}

// IsTransformError checks for malformed-payload failures.
func IsTransformError(err error) bool {
	return isType(err, ErrorTypeTransform)
}
