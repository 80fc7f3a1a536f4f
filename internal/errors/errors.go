// Package errors defines the service error taxonomy shared by the domain
// services and the HTTP surface. Every error that crosses the API boundary
// carries a stable machine-readable code and an HTTP status.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Code identifies an error category.
type Code string

const (
	CodeInvalidReferrer      Code = "INVALID_REFERRER"
	CodeDuplicateTransaction Code = "DUPLICATE_TRANSACTION"
	CodeDuplicateSettlement  Code = "DUPLICATE_SETTLEMENT"
	CodeInsufficientBalance  Code = "INSUFFICIENT_BALANCE"
	CodeNotFound             Code = "NOT_FOUND"
	CodeInvalidInput         Code = "INVALID_INPUT"
	CodeUnauthorized         Code = "UNAUTHORIZED"
	CodeInvalidToken         Code = "INVALID_TOKEN"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"
	CodeSubscriptionRequired Code = "SUBSCRIPTION_REQUIRED"
	CodeUpstreamUnavailable  Code = "UPSTREAM_UNAVAILABLE"
	CodeInternal             Code = "INTERNAL_ERROR"
)

// ServiceError is the canonical error type returned by domain services.
type ServiceError struct {
	Code       Code
	Message    string
	HTTPStatus int
	Details    map[string]interface{}
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// WithDetails returns a copy of the error carrying an extra detail field.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	clone := *e
	clone.Details = make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		clone.Details[k] = v
	}
	clone.Details[key] = value
	return &clone
}

// GetServiceError unwraps err to a *ServiceError, or returns nil.
func GetServiceError(err error) *ServiceError {
	var se *ServiceError
	if stderrors.As(err, &se) {
		return se
	}
	return nil
}

// InvalidReferrer reports an enrollment against an unknown or unusable
// referrer.
func InvalidReferrer(referrerID string) *ServiceError {
	return &ServiceError{
		Code:       CodeInvalidReferrer,
		Message:    fmt.Sprintf("referrer %s does not exist", referrerID),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]interface{}{"referrer_id": referrerID},
	}
}

// DuplicateTransaction reports an idempotency-key collision. Callers treat it
// as already-applied and recover silently.
func DuplicateTransaction(key string) *ServiceError {
	return &ServiceError{
		Code:       CodeDuplicateTransaction,
		Message:    fmt.Sprintf("transaction %s already applied", key),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]interface{}{"transaction_key": key},
	}
}

// DuplicateSettlement reports a settlement that produced no new transactions
// because the billing period was already settled.
func DuplicateSettlement(memberID, period string) *ServiceError {
	return &ServiceError{
		Code:       CodeDuplicateSettlement,
		Message:    fmt.Sprintf("period %s already settled for member %s", period, memberID),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]interface{}{"member_id": memberID, "period": period},
	}
}

// InsufficientBalance reports a withdrawal exceeding the available balance.
func InsufficientBalance(available, requested float64) *ServiceError {
	return &ServiceError{
		Code:       CodeInsufficientBalance,
		Message:    "available balance is lower than the requested amount",
		HTTPStatus: http.StatusPaymentRequired,
		Details:    map[string]interface{}{"available": available, "requested": requested},
	}
}

// NotFound reports a missing resource.
func NotFound(resource, id string) *ServiceError {
	return &ServiceError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s %s not found", resource, id),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]interface{}{"resource": resource, "id": id},
	}
}

// InvalidInput reports a malformed or incomplete request.
func InvalidInput(message string) *ServiceError {
	return &ServiceError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Unauthorized reports a missing or rejected credential.
func Unauthorized(message string) *ServiceError {
	if message == "" {
		message = "authentication required"
	}
	return &ServiceError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// InvalidToken reports a JWT that failed validation.
func InvalidToken(err error) *ServiceError {
	return &ServiceError{
		Code:       CodeInvalidToken,
		Message:    "token validation failed",
		HTTPStatus: http.StatusUnauthorized,
		Err:        err,
	}
}

// RateLimitExceeded reports that the caller exhausted its request budget.
func RateLimitExceeded(limit int, window string) *ServiceError {
	return &ServiceError{
		Code:       CodeRateLimitExceeded,
		Message:    "rate limit exceeded",
		HTTPStatus: http.StatusTooManyRequests,
		Details:    map[string]interface{}{"limit": limit, "window": window},
	}
}

// SubscriptionRequired rejects access to features gated behind an active
// premium subscription.
func SubscriptionRequired(memberID string) *ServiceError {
	return &ServiceError{
		Code:       CodeSubscriptionRequired,
		Message:    "active subscription required",
		HTTPStatus: http.StatusForbidden,
		Details:    map[string]interface{}{"member_id": memberID},
	}
}

// UpstreamUnavailable reports a failed call to an external provider.
func UpstreamUnavailable(provider string, err error) *ServiceError {
	return &ServiceError{
		Code:       CodeUpstreamUnavailable,
		Message:    fmt.Sprintf("%s is unavailable", provider),
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// Internal reports an unexpected failure.
func Internal(message string, err error) *ServiceError {
	return &ServiceError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
