package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/benx421/ledger/internal/auth"
	"github.com/benx421/ledger/internal/models"
	"github.com/benx421/ledger/internal/repository"
	"github.com/benx421/ledger/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var admin = auth.Principal{ID: uuid.New(), Role: auth.RoleAdmin}

// ledger bundles the services over one store.
type ledger struct {
	uow          repository.UnitOfWork
	transactions *TransactionService
	settlement   *SettlementService
	accounts     *AccountService
}

func newLedger(t *testing.T, uow repository.UnitOfWork) *ledger {
	t.Helper()
	if uow == nil {
		uow = memory.NewStore()
	}
	logger := testLogger()
	return &ledger{
		uow:          uow,
		transactions: NewTransactionService(uow, nil, logger),
		settlement:   NewSettlementService(uow, nil, RetryPolicy{MaxRetries: 3, InitialInterval: time.Millisecond}, logger),
		accounts:     NewAccountService(uow, logger),
	}
}

// openAccount creates an account holding balance on a product capped at maxBalance.
func (l *ledger) openAccount(t *testing.T, owner uuid.UUID, balance, maxBalance int64) *models.Account {
	t.Helper()
	ctx := context.Background()
	repos := l.uow.Repositories()

	product := &models.Product{Name: "Product " + uuid.NewString(), MaximumAmountCents: maxBalance}
	require.NoError(t, repos.Products.Create(ctx, product))

	number, err := GenerateAccountNumber()
	require.NoError(t, err)

	account := &models.Account{
		AccountNumber: number,
		OwnerID:       owner,
		BalanceCents:  balance,
		Product:       *product,
	}
	require.NoError(t, repos.Accounts.Create(ctx, account))
	return account
}

func (l *ledger) balance(t *testing.T, accountID uuid.UUID) int64 {
	t.Helper()
	account, err := l.uow.Repositories().Accounts.FindByID(context.Background(), accountID)
	require.NoError(t, err)
	return account.BalanceCents
}

func (l *ledger) request(t *testing.T, principal auth.Principal, req TransactionRequest) *models.Transaction {
	t.Helper()
	txn, err := l.transactions.RequestTransaction(context.Background(), principal, req)
	require.NoError(t, err)
	require.Equal(t, models.TransactionStatusPending, txn.Status)
	return txn
}

func userPrincipal(id uuid.UUID) auth.Principal {
	return auth.Principal{ID: id, Role: auth.RoleUser}
}

// stubUnitOfWork runs fn directly against fixed repositories.
type stubUnitOfWork struct {
	repos repository.Repositories
}

func (s *stubUnitOfWork) Do(_ context.Context, fn func(repos repository.Repositories) error) error {
	return fn(s.repos)
}

func (s *stubUnitOfWork) Repositories() repository.Repositories {
	return s.repos
}

func reposOf(
	accounts repository.AccountRepository,
	transactions repository.TransactionRepository,
	products repository.ProductRepository,
) repository.Repositories {
	return repository.Repositories{Accounts: accounts, Transactions: transactions, Products: products}
}
