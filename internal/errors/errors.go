package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Sentinel errors used across the application. Gateway sentinels mirror the
// closed error taxonomy of the payment processor client: every remote call
// fails with exactly one of them.
var (
	ErrNotFound                = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists           = new(ErrCodeAlreadyExists, "resource already exists")
	ErrVersionConflict         = new(ErrCodeVersionConflict, "version conflict")
	ErrValidation              = new(ErrCodeValidation, "validation error")
	ErrInvalidOperation        = new(ErrCodeInvalidOperation, "invalid operation")
	ErrMultilocationIneligible = new(ErrCodeMultilocationIneligible, "tier not available for multi-location businesses")
	ErrGatewayNotConfigured    = new(ErrCodeGatewayNotConfigured, "payment gateway not configured for business")
	ErrGatewayDeclined         = new(ErrCodeGatewayDeclined, "payment gateway declined the request")
	ErrGatewayTransient        = new(ErrCodeGatewayTransient, "payment gateway temporarily unavailable")
	ErrGatewayAuth             = new(ErrCodeGatewayAuth, "payment gateway authentication failed")
	ErrHTTPClient              = new(ErrCodeHTTPClient, "http client error")
	ErrDatabase                = new(ErrCodeDatabase, "database error")
	ErrInternal                = new(ErrCodeInternal, "internal error")
	ErrSystem                  = new(ErrCodeSystemError, "system error")

	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrNotFound:                http.StatusNotFound,
		ErrAlreadyExists:           http.StatusConflict,
		ErrVersionConflict:         http.StatusConflict,
		ErrValidation:              http.StatusUnprocessableEntity,
		ErrInvalidOperation:        http.StatusBadRequest,
		ErrMultilocationIneligible: http.StatusUnprocessableEntity,
		ErrGatewayNotConfigured:    http.StatusUnprocessableEntity,
		ErrGatewayDeclined:         http.StatusUnprocessableEntity,
		ErrGatewayTransient:        http.StatusServiceUnavailable,
		ErrGatewayAuth:             http.StatusInternalServerError,
		ErrHTTPClient:              http.StatusInternalServerError,
		ErrDatabase:                http.StatusInternalServerError,
		ErrInternal:                http.StatusInternalServerError,
		ErrSystem:                  http.StatusInternalServerError,
	}
)

const (
	ErrCodeNotFound                = "not_found"
	ErrCodeAlreadyExists           = "already_exists"
	ErrCodeVersionConflict         = "version_conflict"
	ErrCodeValidation              = "validation_error"
	ErrCodeInvalidOperation        = "invalid_operation"
	ErrCodeMultilocationIneligible = "multilocation_ineligible"
	ErrCodeGatewayNotConfigured    = "gateway_not_configured"
	ErrCodeGatewayDeclined         = "gateway_declined"
	ErrCodeGatewayTransient        = "gateway_transient"
	ErrCodeGatewayAuth             = "gateway_auth_failed"
	ErrCodeHTTPClient              = "http_client_error"
	ErrCodeDatabase                = "database_error"
	ErrCodeInternal                = "internal_error"
	ErrCodeSystemError             = "system_error"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsVersionConflict checks if an error is a version conflict error
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}

// IsMultilocationIneligible checks if an error is a multilocation eligibility rejection
func IsMultilocationIneligible(err error) bool {
	return errors.Is(err, ErrMultilocationIneligible)
}

// IsGatewayDeclined checks if an error is a gateway decline (card error or
// invalid request rejected by the processor)
func IsGatewayDeclined(err error) bool {
	return errors.Is(err, ErrGatewayDeclined)
}

// IsGatewayTransient checks if an error is a retryable gateway failure
// (rate limited or network unavailable)
func IsGatewayTransient(err error) bool {
	return errors.Is(err, ErrGatewayTransient)
}

// IsGatewayAuth checks if an error is a gateway credential failure
func IsGatewayAuth(err error) bool {
	return errors.Is(err, ErrGatewayAuth)
}

// IsGatewayNotConfigured checks if an error indicates a business without a
// gateway customer record
func IsGatewayNotConfigured(err error) bool {
	return errors.Is(err, ErrGatewayNotConfigured)
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}
