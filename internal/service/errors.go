package service

import (
	"errors"
	"fmt"
)

// ServiceError represents a business logic error with a code
type ServiceError struct {
	Err     error
	Message string
	Code    string
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeInvalidRequest         = "invalid_request"
	ErrCodeInvalidAmount          = "invalid_amount"
	ErrCodeInvalidTransactionType = "invalid_transaction_type"
	ErrCodeCapExceeded            = "cap_exceeded"
	ErrCodeInsufficientFunds      = "insufficient_funds"
	ErrCodeAccountNotFound        = "account_not_found"
	ErrCodeSameAccount            = "same_account"
	ErrCodeAccountInactive        = "account_inactive"
	ErrCodeProductNotFound        = "product_not_found"
	ErrCodeForbidden              = "forbidden"
	ErrCodeNotFound               = "not_found"
	ErrCodeAlreadySettled         = "already_settled"
	ErrCodeInternalError          = "internal_error"
)

func newError(code, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message}
}

func internalError(message string, err error) *ServiceError {
	return &ServiceError{Code: ErrCodeInternalError, Message: message, Err: err}
}

// ErrorCode returns the code of the ServiceError in err's chain, or
// ErrCodeInternalError when there is none.
func ErrorCode(err error) string {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Code
	}
	return ErrCodeInternalError
}
