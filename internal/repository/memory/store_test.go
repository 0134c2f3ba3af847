package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/benx421/ledger/internal/models"
	"github.com/benx421/ledger/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAccount(t *testing.T, store *Store, balance int64) *models.Account {
	t.Helper()
	ctx := context.Background()
	repos := store.Repositories()

	product := &models.Product{Name: "Current Account " + uuid.NewString(), MaximumAmountCents: 50000}
	require.NoError(t, repos.Products.Create(ctx, product))

	account := &models.Account{
		AccountNumber: uuid.NewString(),
		OwnerID:       uuid.New(),
		BalanceCents:  balance,
		Product:       models.Product{ID: product.ID},
	}
	require.NoError(t, repos.Accounts.Create(ctx, account))
	return account
}

func TestStore_DoCommitsOnSuccess(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	account := seedAccount(t, store, 1000)

	err := store.Do(ctx, func(repos repository.Repositories) error {
		return repos.Accounts.AdjustBalance(ctx, account.ID, 250, uuid.New())
	})
	require.NoError(t, err)

	got, err := store.Repositories().Accounts.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1250), got.BalanceCents)
	assert.NotNil(t, got.LastModifiedBy)
}

func TestStore_DoDiscardsOnError(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	account := seedAccount(t, store, 1000)
	boom := errors.New("boom")

	err := store.Do(ctx, func(repos repository.Repositories) error {
		if err := repos.Accounts.AdjustBalance(ctx, account.ID, -400, uuid.New()); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.Repositories().Accounts.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.BalanceCents, "rolled back unit must not leak writes")
}

func TestStore_AdjustBalanceRejectsNegative(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	account := seedAccount(t, store, 100)

	err := store.Repositories().Accounts.AdjustBalance(ctx, account.ID, -101, uuid.New())
	assert.Error(t, err)
}

func TestStore_InactiveAccountsAreHidden(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	account := seedAccount(t, store, 0)
	repos := store.Repositories()

	require.NoError(t, repos.Accounts.UpdateStatus(ctx, account.ID, models.AccountStatusDeactivated, uuid.New()))

	_, err := repos.Accounts.FindByID(ctx, account.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = repos.Accounts.FindByAccountNumber(ctx, account.AccountNumber)
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = repos.Accounts.UpdateStatus(ctx, account.ID, models.AccountStatusActive, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound, "deactivation is one way")
}

func TestStore_TransactionLifecycle(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	account := seedAccount(t, store, 0)
	repos := store.Repositories()

	txn := &models.Transaction{
		Reference:       "01JTESTREFERENCE0000000001",
		Type:            models.TransactionTypeSaving,
		SenderAccountID: account.ID,
		AmountCents:     10,
		Status:          models.TransactionStatusPending,
	}
	require.NoError(t, repos.Transactions.Create(ctx, txn))
	assert.ErrorIs(t, repos.Transactions.Create(ctx, &models.Transaction{Reference: txn.Reference}), models.ErrDuplicateTransaction)

	txn.Status = models.TransactionStatusCompleted
	require.NoError(t, repos.Transactions.MarkSettled(ctx, txn))
	assert.ErrorIs(t, repos.Transactions.MarkSettled(ctx, txn), models.ErrNotFound, "only pending rows can be settled")

	got, err := repos.Transactions.FindByReference(ctx, txn.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, got.Status)

	listed, err := repos.Transactions.ListByAccount(ctx, account.ID, 10)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestStore_ProductBySlug(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	repos := store.Repositories()

	require.NoError(t, repos.Products.Create(ctx, &models.Product{Name: "Student Account", MaximumAmountCents: 5000000}))
	assert.Error(t, repos.Products.Create(ctx, &models.Product{Name: "Student Account"}))

	product, err := repos.Products.FindBySlug(ctx, "student-account")
	require.NoError(t, err)
	assert.Equal(t, int64(5000000), product.MaximumAmountCents)
}
