// Package api holds the HTTP contract of the ledger: the embedded OpenAPI
// document, its request and response types, and the strict server wiring that
// binds them to net/http.
package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ErrorCode is the machine readable code carried by every error response
type ErrorCode string

// Defines values for ErrorCode.
const (
	ErrorCodeInvalidRequest         ErrorCode = "invalid_request"
	ErrorCodeInvalidAmount          ErrorCode = "invalid_amount"
	ErrorCodeInvalidTransactionType ErrorCode = "invalid_transaction_type"
	ErrorCodeCapExceeded            ErrorCode = "cap_exceeded"
	ErrorCodeInsufficientFunds      ErrorCode = "insufficient_funds"
	ErrorCodeAccountNotFound        ErrorCode = "account_not_found"
	ErrorCodeSameAccount            ErrorCode = "same_account"
	ErrorCodeAccountInactive        ErrorCode = "account_inactive"
	ErrorCodeProductNotFound        ErrorCode = "product_not_found"
	ErrorCodeUnauthorized           ErrorCode = "unauthorized"
	ErrorCodeForbidden              ErrorCode = "forbidden"
	ErrorCodeNotFound               ErrorCode = "not_found"
	ErrorCodeAlreadySettled         ErrorCode = "already_settled"
	ErrorCodeInternalError          ErrorCode = "internal_error"
)

// HealthStatus defines model for HealthResponse.Status.
type HealthStatus string

// Defines values for HealthStatus.
const (
	Healthy   HealthStatus = "healthy"
	Unhealthy HealthStatus = "unhealthy"
)

// Error defines model for Error.
type Error struct {
	Error   ErrorCode `json:"error"`
	Message string    `json:"message"`
}

// HealthResponse defines model for HealthResponse.
type HealthResponse struct {
	Status HealthStatus `json:"status"`
}

// Account defines model for Account. Money fields are decimal strings.
type Account struct {
	CreatedAt      time.Time          `json:"created_at"`
	ExpiresAt      *time.Time         `json:"expires_at,omitempty"`
	AccountNumber  string             `json:"account_number"`
	Product        string             `json:"product"`
	Balance        string             `json:"balance"`
	MaximumBalance string             `json:"maximum_balance"`
	Status         string             `json:"status"`
	Id             openapi_types.UUID `json:"id"`
	OwnerId        openapi_types.UUID `json:"owner_id"`
}

// AccountList defines model for AccountList.
type AccountList struct {
	Accounts []Account `json:"accounts"`
}

// OpenAccountRequest defines model for OpenAccountRequest.
type OpenAccountRequest struct {
	ExpirationMonths *int                `json:"expiration_months,omitempty"`
	OwnerId          *openapi_types.UUID `json:"owner_id,omitempty"`
	ProductName      string              `json:"product_name"`
}

// TransactionRequest defines model for TransactionRequest.
type TransactionRequest struct {
	ReceiverAccountNumber *string            `json:"receiver_account_number,omitempty"`
	Type                  string             `json:"type"`
	Amount                string             `json:"amount"`
	SenderAccountId       openapi_types.UUID `json:"sender_account_id"`
}

// Transaction defines model for Transaction.
type Transaction struct {
	CreatedAt         time.Time           `json:"created_at"`
	SettledAt         *time.Time          `json:"settled_at,omitempty"`
	ReceiverAccountId *openapi_types.UUID `json:"receiver_account_id,omitempty"`
	FailureReason     *string             `json:"failure_reason,omitempty"`
	Reference         string              `json:"reference"`
	Type              string              `json:"type"`
	Amount            string              `json:"amount"`
	Status            string              `json:"status"`
	SenderAccountId   openapi_types.UUID  `json:"sender_account_id"`
}

// TransactionList defines model for TransactionList.
type TransactionList struct {
	Transactions []Transaction `json:"transactions"`
}

// ListAccountTransactionsParams defines parameters for ListAccountTransactions.
type ListAccountTransactionsParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}

// OpenAccountJSONRequestBody defines body for OpenAccount for application/json ContentType.
type OpenAccountJSONRequestBody = OpenAccountRequest

// RequestTransactionJSONRequestBody defines body for RequestTransaction for application/json ContentType.
type RequestTransactionJSONRequestBody = TransactionRequest
