package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/benx421/ledger/internal/auth"
	"github.com/benx421/ledger/internal/models"
	"github.com/benx421/ledger/internal/repository"
	"github.com/google/uuid"
)

const accountNumberAttempts = 3

// OpenAccountRequest opens an account on the product named ProductName.
// OwnerID defaults to the principal; only admins may open for someone else.
type OpenAccountRequest struct {
	OwnerID          *uuid.UUID
	ProductName      string
	ExpirationMonths int
}

// AccountService handles account lifecycle operations
type AccountService struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(uow repository.UnitOfWork, logger *slog.Logger) *AccountService {
	return &AccountService{
		uow:    uow,
		logger: logger,
	}
}

// OpenAccount creates an empty active account on the requested product
func (s *AccountService) OpenAccount(ctx context.Context, principal auth.Principal, req OpenAccountRequest) (*models.Account, error) {
	ownerID := principal.ID
	if req.OwnerID != nil && *req.OwnerID != principal.ID {
		if !principal.IsAdmin() {
			return nil, newError(ErrCodeForbidden, "only administrators may open accounts for other users")
		}
		ownerID = *req.OwnerID
	}

	if req.ExpirationMonths < 0 {
		return nil, newError(ErrCodeInvalidRequest, "expiration_months cannot be negative")
	}

	repos := s.uow.Repositories()

	product, err := repos.Products.FindBySlug(ctx, models.Slugify(req.ProductName))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, newError(ErrCodeProductNotFound, "product not found")
		}
		return nil, internalError("failed to load product", err)
	}

	account := &models.Account{
		OwnerID:        ownerID,
		Product:        *product,
		Status:         models.AccountStatusActive,
		LastModifiedBy: &principal.ID,
	}
	if req.ExpirationMonths > 0 {
		expiresAt := time.Now().AddDate(0, req.ExpirationMonths, 0)
		account.ExpiresAt = &expiresAt
	}

	for attempt := 1; ; attempt++ {
		account.AccountNumber, err = GenerateAccountNumber()
		if err != nil {
			return nil, internalError("failed to generate account number", err)
		}

		err = repos.Accounts.Create(ctx, account)
		if err == nil {
			break
		}
		if !errors.Is(err, models.ErrDuplicateAccountNumber) || attempt == accountNumberAttempts {
			return nil, internalError("failed to create account", err)
		}
	}

	s.logger.InfoContext(ctx, "account opened",
		"account_id", account.ID,
		"owner_id", account.OwnerID,
		"product", product.Slug,
		"actor_id", principal.ID,
	)

	return account, nil
}

// GetAccount returns an active account to its owner or an admin
func (s *AccountService) GetAccount(ctx context.Context, principal auth.Principal, accountNumber string) (*models.Account, error) {
	account, err := s.uow.Repositories().Accounts.FindByAccountNumber(ctx, accountNumber)
	if err != nil {
		return nil, accountLookupError(err)
	}

	if !auth.CanAccess(principal, account) {
		return nil, newError(ErrCodeForbidden, "not allowed to view this account")
	}

	return account, nil
}

// ListAccounts returns the principal's active accounts
func (s *AccountService) ListAccounts(ctx context.Context, principal auth.Principal) ([]*models.Account, error) {
	accounts, err := s.uow.Repositories().Accounts.ListByOwner(ctx, principal.ID)
	if err != nil {
		return nil, internalError("failed to list accounts", err)
	}
	return accounts, nil
}

// DeactivateAccount moves an active account to deactivated. The transition is
// one way and leaves any remaining balance in place.
func (s *AccountService) DeactivateAccount(ctx context.Context, principal auth.Principal, accountID uuid.UUID) error {
	err := s.uow.Do(ctx, func(repos repository.Repositories) error {
		return s.performDeactivation(ctx, repos.Accounts, principal, accountID)
	})
	if err != nil {
		return asServiceError(err, "failed to deactivate account")
	}

	s.logger.InfoContext(ctx, "account deactivated",
		"account_id", accountID,
		"actor_id", principal.ID,
	)

	return nil
}

// performDeactivation contains the core deactivation logic
func (s *AccountService) performDeactivation(
	ctx context.Context,
	accounts repository.AccountRepository,
	principal auth.Principal,
	accountID uuid.UUID,
) error {
	account, err := accounts.FindByIDForUpdate(ctx, accountID)
	if err != nil {
		return accountLookupError(err)
	}

	if !auth.CanAccess(principal, account) {
		return newError(ErrCodeForbidden, "not allowed to deactivate this account")
	}

	if account.BalanceCents != 0 {
		s.logger.WarnContext(ctx, "deactivating account with non-zero balance",
			"account_id", account.ID,
			"balance_cents", account.BalanceCents,
		)
	}

	if err := accounts.UpdateStatus(ctx, account.ID, models.AccountStatusDeactivated, principal.ID); err != nil {
		return internalError("failed to update account status", err)
	}

	return nil
}
