package apperrors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the application error carried from services to the HTTP boundary.
type AppError struct {
	Code     ErrorCode   `json:"code"`
	Domain   string      `json:"domain"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	Err      error       `json:"-"`
	HTTPCode int         `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s:%s] %s (%v)", e.Domain, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Domain, e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, domain, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Domain:   domain,
		Message:  message,
		HTTPCode: httpCode,
	}
}

// Wrap attaches a cause to a new AppError.
func Wrap(err error, code ErrorCode, domain, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Domain:   domain,
		Message:  message,
		Err:      err,
		HTTPCode: httpCode,
	}
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// MarshalJSON hides the wrapped cause and HTTP code from API clients.
func (e *AppError) MarshalJSON() ([]byte, error) {
	type alias struct {
		Code    ErrorCode   `json:"code"`
		Domain  string      `json:"domain"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}
	return json.Marshal(&alias{
		Code:    e.Code,
		Domain:  e.Domain,
		Message: e.Message,
		Details: e.Details,
	})
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// --- Common factories ---

func InternalError(err error) *AppError {
	return Wrap(err, CodeInternalError, "system", "Internal server error", http.StatusInternalServerError)
}

// DatabaseError marks a transaction failure not attributable to a known
// constraint. Retryable by the caller.
func DatabaseError(err error) *AppError {
	return Wrap(err, CodeDatabaseError, "storage", "Transaction failed, please retry", http.StatusInternalServerError)
}

func ValidationError(details interface{}) *AppError {
	return New(CodeValidationFailed, "validation", "Validation failed", http.StatusBadRequest).WithDetails(details)
}

func NewBadRequestError(message string) *AppError {
	return New(CodeValidationFailed, "request", message, http.StatusBadRequest)
}

func NewNotFoundError(domain, message string) *AppError {
	return New(CodeNotFound, domain, message, http.StatusNotFound)
}

func NewUnauthorizedError(message string) *AppError {
	return New(CodeUnauthorized, "auth", message, http.StatusUnauthorized)
}

func NewForbiddenError(message string) *AppError {
	return New(CodeForbidden, "auth", message, http.StatusForbidden)
}

// --- Payment reconciliation factories ---

// NewSignatureMismatchError rejects a request whose recomputed signature does
// not match the supplied one. Deliberately carries no hint about whether the
// referenced order exists.
func NewSignatureMismatchError() *AppError {
	return New(CodeSignatureMismatch, "payment", "Invalid signature", http.StatusUnauthorized)
}

// NewNotCompletedError reports a payment that exists but has not reached a
// successful terminal state. The caller should poll and retry later.
func NewNotCompletedError(status string) *AppError {
	return New(CodeNotCompleted, "payment", "Payment is not completed", http.StatusConflict).
		WithDetails(map[string]string{"status": status})
}

// NewAlreadyRegisteredError is a terminal success-adjacent outcome: the
// payment was already converted into an account. Callers should redirect to
// sign-in, not retry.
func NewAlreadyRegisteredError(email string) *AppError {
	return New(CodeAlreadyRegistered, "registration", "Registration already completed for this payment", http.StatusConflict).
		WithDetails(map[string]string{"email": email})
}

func NewGatewayUnavailableError(err error) *AppError {
	return Wrap(err, CodeGatewayUnavailable, "gateway", "Payment gateway is unavailable", http.StatusBadGateway)
}
