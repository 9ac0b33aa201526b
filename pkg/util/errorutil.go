package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// Error codes used across the orchestration layer.
const (
	CodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	CodeTokenInvalid         = "TOKEN_INVALID"
	CodeTokenReuse           = "TOKEN_REUSE"
	CodeCatalogWriteFailed   = "CATALOG_WRITE_FAILED"
	CodeProcessorWriteFailed = "PROCESSOR_WRITE_FAILED"
	CodeLinkWriteFailed      = "LINK_WRITE_FAILED"
	CodeInvalidQuantity      = "INVALID_QUANTITY"
	CodeStoreUnavailable     = "STORE_UNAVAILABLE"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

// NewAuthenticationFailed returns the uniform bad-credentials rejection. The
// message never varies by cause so callers cannot probe for known emails.
func NewAuthenticationFailed() error {
	return NewDomainError(CodeAuthenticationFailed, "provided login credentials are incorrect or don't exist", http.StatusUnauthorized, nil)
}

func NewInvalidQuantity(message string) error {
	return NewDomainError(CodeInvalidQuantity, message, http.StatusBadRequest, nil)
}

func NewStoreUnavailable(store string, err error) error {
	return &DomainError{
		Code:       CodeStoreUnavailable,
		Message:    fmt.Sprintf("%s store unavailable", store),
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
