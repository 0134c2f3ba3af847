package service

import (
	"context"

	"github.com/benx421/ledger/internal/auth"
	"github.com/benx421/ledger/internal/models"
	"github.com/google/uuid"
)

// HealthChecker validates system health.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// TransactionRequester validates and records pending transactions
type TransactionRequester interface {
	RequestTransaction(ctx context.Context, principal auth.Principal, req TransactionRequest) (*models.Transaction, error)
}

// TransactionReader reads recorded transactions
type TransactionReader interface {
	GetTransaction(ctx context.Context, principal auth.Principal, reference string) (*models.Transaction, error)
	ListAccountTransactions(ctx context.Context, principal auth.Principal, accountID uuid.UUID, limit int) ([]*models.Transaction, error)
}

// Settler applies pending transactions to account balances
type Settler interface {
	Settle(ctx context.Context, principal auth.Principal, reference string) (*models.Transaction, error)
}

// AccountManager handles account lifecycle operations
type AccountManager interface {
	OpenAccount(ctx context.Context, principal auth.Principal, req OpenAccountRequest) (*models.Account, error)
	GetAccount(ctx context.Context, principal auth.Principal, accountNumber string) (*models.Account, error)
	ListAccounts(ctx context.Context, principal auth.Principal) ([]*models.Account, error)
	DeactivateAccount(ctx context.Context, principal auth.Principal, accountID uuid.UUID) error
}

// Ensure concrete types implement interfaces
var (
	_ TransactionRequester = (*TransactionService)(nil)
	_ TransactionReader    = (*TransactionService)(nil)
	_ Settler              = (*SettlementService)(nil)
	_ AccountManager       = (*AccountService)(nil)
)
