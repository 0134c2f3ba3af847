// Package memory provides an in-process implementation of the repository
// interfaces. A unit of work holds the store lock for its whole duration and
// publishes its writes only when it succeeds.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/benx421/ledger/internal/models"
	"github.com/benx421/ledger/internal/repository"
	"github.com/google/uuid"
)

var errNegativeBalance = errors.New("balance must not be negative")

type state struct {
	accounts     map[uuid.UUID]models.Account
	transactions map[uuid.UUID]models.Transaction
	products     map[uuid.UUID]models.Product
}

func newState() *state {
	return &state{
		accounts:     make(map[uuid.UUID]models.Account),
		transactions: make(map[uuid.UUID]models.Transaction),
		products:     make(map[uuid.UUID]models.Product),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	return c
}

// Store is a repository.UnitOfWork kept in memory
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{state: newState()}
}

var _ repository.UnitOfWork = (*Store)(nil)

// Do runs fn against a staged copy of the store and commits it if fn succeeds
func (s *Store) Do(ctx context.Context, fn func(repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.state.clone()
	if err := fn(s.repositories(staged)); err != nil {
		return err
	}

	s.state = staged
	return nil
}

// Repositories returns stores whose operations each take the lock on their own
func (s *Store) Repositories() repository.Repositories {
	return s.repositories(nil)
}

func (s *Store) repositories(staged *state) repository.Repositories {
	v := &view{store: s, staged: staged}
	return repository.Repositories{
		Accounts:     &accountRepository{view: v},
		Transactions: &transactionRepository{view: v},
		Products:     &productRepository{view: v},
	}
}

// view resolves which state an operation reads and writes: the staged copy
// inside Do, or the committed state under the lock otherwise.
type view struct {
	store  *Store
	staged *state
}

func (v *view) with(fn func(st *state) error) error {
	if v.staged != nil {
		return fn(v.staged)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.state)
}

type accountRepository struct {
	view *view
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	return r.view.with(func(st *state) error {
		for _, existing := range st.accounts {
			if existing.AccountNumber == account.AccountNumber {
				return models.ErrDuplicateAccountNumber
			}
		}
		product, ok := st.products[account.Product.ID]
		if !ok {
			return fmt.Errorf("failed to create account: product %s: %w", account.Product.ID, models.ErrNotFound)
		}

		if account.ID == uuid.Nil {
			account.ID = uuid.New()
		}
		if account.Status == "" {
			account.Status = models.AccountStatusActive
		}
		now := time.Now()
		if account.CreatedOn.IsZero() {
			account.CreatedOn = now
		}
		account.LastModifiedOn = now
		account.Product = product

		st.accounts[account.ID] = *account
		return nil
	})
}

func (r *accountRepository) find(match func(models.Account) bool) (*models.Account, error) {
	var found *models.Account
	err := r.view.with(func(st *state) error {
		for _, account := range st.accounts {
			if account.IsActive() && match(account) {
				found = withProduct(st, account)
				return nil
			}
		}
		return fmt.Errorf("account not found: %w", models.ErrNotFound)
	})
	return found, err
}

func withProduct(st *state, account models.Account) *models.Account {
	if product, ok := st.products[account.Product.ID]; ok {
		account.Product = product
	}
	return &account
}

func (r *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return r.find(func(a models.Account) bool { return a.ID == id })
}

func (r *accountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return r.FindByID(ctx, id)
}

func (r *accountRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	return r.find(func(a models.Account) bool { return a.AccountNumber == accountNumber })
}

func (r *accountRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Account, error) {
	var accounts []*models.Account
	err := r.view.with(func(st *state) error {
		for _, account := range st.accounts {
			if account.IsActive() && account.OwnerID == ownerID {
				accounts = append(accounts, withProduct(st, account))
			}
		}
		return nil
	})
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedOn.Before(accounts[j].CreatedOn)
	})
	return accounts, err
}

func (r *accountRepository) AdjustBalance(ctx context.Context, accountID uuid.UUID, delta int64, actorID uuid.UUID) error {
	return r.view.with(func(st *state) error {
		account, ok := st.accounts[accountID]
		if !ok || !account.IsActive() {
			return fmt.Errorf("account not found: %w", models.ErrNotFound)
		}
		if account.BalanceCents+delta < 0 {
			return fmt.Errorf("failed to adjust account balance: %w", errNegativeBalance)
		}

		account.BalanceCents += delta
		account.LastModifiedBy = &actorID
		account.LastModifiedOn = time.Now()
		st.accounts[accountID] = account
		return nil
	})
}

func (r *accountRepository) UpdateStatus(ctx context.Context, accountID uuid.UUID, status models.AccountStatus, actorID uuid.UUID) error {
	return r.view.with(func(st *state) error {
		account, ok := st.accounts[accountID]
		if !ok || !account.IsActive() {
			return fmt.Errorf("account not found: %w", models.ErrNotFound)
		}

		account.Status = status
		account.LastModifiedBy = &actorID
		account.LastModifiedOn = time.Now()
		st.accounts[accountID] = account
		return nil
	})
}

type transactionRepository struct {
	view *view
}

func (r *transactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	return r.view.with(func(st *state) error {
		for _, existing := range st.transactions {
			if existing.Reference == txn.Reference {
				return models.ErrDuplicateTransaction
			}
		}

		if txn.ID == uuid.Nil {
			txn.ID = uuid.New()
		}
		if txn.CreatedAt.IsZero() {
			txn.CreatedAt = time.Now()
		}
		if txn.LastModifiedOn.IsZero() {
			txn.LastModifiedOn = txn.CreatedAt
		}

		st.transactions[txn.ID] = *txn
		return nil
	})
}

func (r *transactionRepository) find(match func(models.Transaction) bool) (*models.Transaction, error) {
	var found *models.Transaction
	err := r.view.with(func(st *state) error {
		for _, txn := range st.transactions {
			if match(txn) {
				found = &txn
				return nil
			}
		}
		return fmt.Errorf("transaction not found: %w", models.ErrNotFound)
	})
	return found, err
}

func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return r.find(func(t models.Transaction) bool { return t.ID == id })
}

func (r *transactionRepository) FindByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	return r.find(func(t models.Transaction) bool { return t.Reference == reference })
}

func (r *transactionRepository) FindByReferenceForUpdate(ctx context.Context, reference string) (*models.Transaction, error) {
	return r.FindByReference(ctx, reference)
}

func (r *transactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.Transaction, error) {
	var txns []*models.Transaction
	err := r.view.with(func(st *state) error {
		for _, txn := range st.transactions {
			if txn.SenderAccountID == accountID || (txn.ReceiverAccountID != nil && *txn.ReceiverAccountID == accountID) {
				txns = append(txns, &txn)
			}
		}
		return nil
	})
	sort.Slice(txns, func(i, j int) bool {
		return txns[i].CreatedAt.After(txns[j].CreatedAt)
	})
	if limit > 0 && len(txns) > limit {
		txns = txns[:limit]
	}
	return txns, err
}

func (r *transactionRepository) MarkSettled(ctx context.Context, txn *models.Transaction) error {
	return r.view.with(func(st *state) error {
		current, ok := st.transactions[txn.ID]
		if !ok || !current.IsPending() {
			return fmt.Errorf("pending transaction not found: %w", models.ErrNotFound)
		}

		current.Status = txn.Status
		current.FailureReason = txn.FailureReason
		current.LastModifiedBy = txn.LastModifiedBy
		current.LastModifiedOn = txn.LastModifiedOn
		current.SettledAt = txn.SettledAt
		st.transactions[txn.ID] = current
		return nil
	})
}

type productRepository struct {
	view *view
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	if product.Slug == "" {
		product.Slug = models.Slugify(product.Name)
	}
	return r.view.with(func(st *state) error {
		for _, existing := range st.products {
			if existing.Slug == product.Slug || existing.Name == product.Name {
				return fmt.Errorf("failed to create product: %q already exists", product.Name)
			}
		}
		if product.ID == uuid.Nil {
			product.ID = uuid.New()
		}
		if product.CreatedAt.IsZero() {
			product.CreatedAt = time.Now()
		}
		st.products[product.ID] = *product
		return nil
	})
}

func (r *productRepository) find(match func(models.Product) bool) (*models.Product, error) {
	var found *models.Product
	err := r.view.with(func(st *state) error {
		for _, product := range st.products {
			if match(product) {
				found = &product
				return nil
			}
		}
		return fmt.Errorf("product not found: %w", models.ErrNotFound)
	})
	return found, err
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return r.find(func(p models.Product) bool { return p.ID == id })
}

func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return r.find(func(p models.Product) bool { return p.Slug == slug })
}
