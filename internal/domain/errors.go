package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is a machine-readable error classification.
type ErrorCode string

const (
	// Validation errors (VALIDATION_*)
	ErrorCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrorCodeInvalidDocument    ErrorCode = "VALIDATION_INVALID_DOCUMENT"
	ErrorCodeInvalidCard        ErrorCode = "VALIDATION_INVALID_CARD"
	ErrorCodeInvalidTransaction ErrorCode = "VALIDATION_INVALID_TRANSACTION_ID"
	ErrorCodeInvalidAmount      ErrorCode = "VALIDATION_INVALID_AMOUNT"

	// Rate limiting (RATE_*)
	ErrorCodeRateLimited ErrorCode = "RATE_LIMIT_EXCEEDED"

	// Payment lifecycle errors (PAYMENT_*)
	ErrorCodePaymentNotFound      ErrorCode = "PAYMENT_NOT_FOUND"
	ErrorCodeDuplicateTransaction ErrorCode = "PAYMENT_DUPLICATE_TRANSACTION"
	ErrorCodeInvalidTransition    ErrorCode = "PAYMENT_INVALID_TRANSITION"
	ErrorCodeRefundExceedsAmount  ErrorCode = "PAYMENT_REFUND_EXCEEDS_AMOUNT"

	// Gateway errors (GATEWAY_*)
	ErrorCodeGatewayError   ErrorCode = "GATEWAY_ERROR"
	ErrorCodeGatewayTimeout ErrorCode = "GATEWAY_TIMEOUT"

	// Event publishing (EVENT_*)
	ErrorCodePublishFailed ErrorCode = "EVENT_PUBLISH_FAILED"

	// Internal errors (INTERNAL_*)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrorCodeStoreError    ErrorCode = "INTERNAL_STORE_ERROR"
)

// DomainError is a structured error carrying a code and optional detail
// fields for logging. Its message is safe for server-side logs only;
// user-facing messages come from the response shapes, never from here.
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap supports errors.Is/As chains.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail attaches a detail field and returns the error for chaining.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error.
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// WrapError wraps an underlying error with a domain error code.
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// GetErrorCode extracts the code from an error chain, or "" if none.
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsDomainError checks whether err carries the given code.
func IsDomainError(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code
}

// IsNotFound reports whether err represents a missing payment.
func IsNotFound(err error) bool {
	return GetErrorCode(err) == ErrorCodePaymentNotFound
}

// IsDuplicate reports whether err represents a transaction-id collision.
func IsDuplicate(err error) bool {
	return GetErrorCode(err) == ErrorCodeDuplicateTransaction
}

// IsValidationError reports whether err is an input validation failure.
func IsValidationError(err error) bool {
	switch GetErrorCode(err) {
	case ErrorCodeValidationFailed, ErrorCodeInvalidDocument,
		ErrorCodeInvalidCard, ErrorCodeInvalidTransaction,
		ErrorCodeInvalidAmount:
		return true
	}
	return false
}

// IsStoreError reports whether err is a persistence failure that must
// not leak internals to callers.
func IsStoreError(err error) bool {
	return GetErrorCode(err) == ErrorCodeStoreError
}

var (
	ErrPaymentNotFound      = NewDomainError(ErrorCodePaymentNotFound, "payment not found")
	ErrDuplicateTransaction = NewDomainError(ErrorCodeDuplicateTransaction, "duplicate transaction ID")
	ErrInvalidTransition    = NewDomainError(ErrorCodeInvalidTransition, "invalid status transition")
	ErrRateLimited          = NewDomainError(ErrorCodeRateLimited, "rate limit exceeded")
	ErrRefundExceedsAmount  = NewDomainError(ErrorCodeRefundExceedsAmount, "refund amount cannot exceed processed amount")
	ErrGatewayError         = NewDomainError(ErrorCodeGatewayError, "payment gateway error")
	ErrGatewayTimeout       = NewDomainError(ErrorCodeGatewayTimeout, "payment gateway timeout")
	ErrStoreFailure         = NewDomainError(ErrorCodeStoreError, "payment store error")
	ErrInternal             = NewDomainError(ErrorCodeInternalError, "internal error")
)
