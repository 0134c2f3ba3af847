package service

import (
	"context"
	"sync"
	"testing"

	"github.com/benx421/ledger/internal/db/dbtest"
	"github.com/benx421/ledger/internal/models"
	"github.com/benx421/ledger/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postgresLedger(t *testing.T) *ledger {
	t.Helper()
	database := dbtest.StartPostgres(t)
	dbtest.Reset(t, database)
	return newLedger(t, repository.NewUnitOfWork(database))
}

// seedAccount opens an account on a seeded product with an initial balance.
func (l *ledger) seedAccount(t *testing.T, owner uuid.UUID, balance int64) *models.Account {
	t.Helper()
	ctx := context.Background()
	repos := l.uow.Repositories()

	product, err := repos.Products.FindBySlug(ctx, "current-account")
	require.NoError(t, err)

	number, err := GenerateAccountNumber()
	require.NoError(t, err)

	account := &models.Account{
		AccountNumber: number,
		OwnerID:       owner,
		BalanceCents:  balance,
		Status:        models.AccountStatusActive,
		Product:       *product,
	}
	require.NoError(t, repos.Accounts.Create(ctx, account))
	return account
}

func settleAll(t *testing.T, l *ledger, refs []string) map[models.TransactionStatus]int {
	t.Helper()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		counts = make(map[models.TransactionStatus]int)
	)
	for _, ref := range refs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			settled, err := l.settlement.Settle(context.Background(), admin, ref)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			counts[settled.Status]++
			mu.Unlock()
		}()
	}
	wg.Wait()
	return counts
}

func TestPostgres_ConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	l := postgresLedger(t)
	owner := uuid.New()
	account := l.seedAccount(t, owner, 1000)

	refs := make([]string, 20)
	for i := range refs {
		refs[i] = l.request(t, userPrincipal(owner), TransactionRequest{
			Type: models.TransactionTypeWithdrawal, SenderAccountID: account.ID, AmountCents: 100,
		}).Reference
	}

	counts := settleAll(t, l, refs)

	assert.Equal(t, 10, counts[models.TransactionStatusCompleted])
	assert.Equal(t, 10, counts[models.TransactionStatusFailed])
	assert.Equal(t, int64(0), l.balance(t, account.ID))
}

func TestPostgres_OpposingTransfersDoNotDeadlock(t *testing.T) {
	l := postgresLedger(t)
	alice, bob := uuid.New(), uuid.New()
	a := l.seedAccount(t, alice, 5000)
	b := l.seedAccount(t, bob, 5000)

	var refs []string
	for range 10 {
		refs = append(refs,
			l.request(t, userPrincipal(alice), TransactionRequest{
				Type: models.TransactionTypeTransfer, SenderAccountID: a.ID, ReceiverAccountNumber: b.AccountNumber, AmountCents: 100,
			}).Reference,
			l.request(t, userPrincipal(bob), TransactionRequest{
				Type: models.TransactionTypeTransfer, SenderAccountID: b.ID, ReceiverAccountNumber: a.AccountNumber, AmountCents: 50,
			}).Reference,
		)
	}

	counts := settleAll(t, l, refs)

	assert.Equal(t, 20, counts[models.TransactionStatusCompleted])
	assert.Equal(t, int64(4500), l.balance(t, a.ID))
	assert.Equal(t, int64(5500), l.balance(t, b.ID))
}

func TestPostgres_DoubleSettlementAppliesOnce(t *testing.T) {
	l := postgresLedger(t)
	owner := uuid.New()
	account := l.seedAccount(t, owner, 0)

	ref := l.request(t, userPrincipal(owner), TransactionRequest{
		Type: models.TransactionTypeSaving, SenderAccountID: account.ID, AmountCents: 700,
	}).Reference

	var wg sync.WaitGroup
	errs := make([]error, 6)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = l.settlement.Settle(context.Background(), admin, ref)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, ErrCodeAlreadySettled, ErrorCode(err))
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(700), l.balance(t, account.ID))
}
