package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/benx421/ledger/internal/auth"
	"github.com/benx421/ledger/internal/events"
	"github.com/benx421/ledger/internal/models"
	"github.com/benx421/ledger/internal/repository"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Page sizes for transaction listings
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// TransactionRequest is a proposed money movement. ReceiverAccountNumber is
// only read for transfers.
type TransactionRequest struct {
	Type                  models.TransactionType
	ReceiverAccountNumber string
	AmountCents           int64
	SenderAccountID       uuid.UUID
}

// TransactionService records transaction requests and serves transaction reads
type TransactionService struct {
	uow       repository.UnitOfWork
	publisher events.Publisher
	logger    *slog.Logger
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(uow repository.UnitOfWork, publisher events.Publisher, logger *slog.Logger) *TransactionService {
	return &TransactionService{
		uow:       uow,
		publisher: publisher,
		logger:    logger,
	}
}

// RequestTransaction validates req against the sender's current state and
// records it as pending. Balances are not touched until settlement.
func (s *TransactionService) RequestTransaction(ctx context.Context, principal auth.Principal, req TransactionRequest) (*models.Transaction, error) {
	if !req.Type.Valid() {
		transactionRequestsTotal.WithLabelValues(string(req.Type), ErrCodeInvalidTransactionType).Inc()
		return nil, newError(ErrCodeInvalidTransactionType, "transaction type must be saving, withdrawal or transfer")
	}

	var txn *models.Transaction
	err := s.uow.Do(ctx, func(repos repository.Repositories) error {
		var err error
		txn, err = s.performRequest(ctx, repos, principal, req)
		return err
	})
	if err != nil {
		transactionRequestsTotal.WithLabelValues(string(req.Type), ErrorCode(err)).Inc()
		return nil, asServiceError(err, "failed to record transaction")
	}

	transactionRequestsTotal.WithLabelValues(string(req.Type), "accepted").Inc()
	s.logger.InfoContext(ctx, "transaction requested",
		"reference", txn.Reference,
		"type", txn.Type,
		"amount_cents", txn.AmountCents,
		"actor_id", principal.ID,
	)
	publishTransaction(ctx, s.publisher, s.logger, txn)

	return txn, nil
}

// performRequest contains the core request validation logic
func (s *TransactionService) performRequest(
	ctx context.Context,
	repos repository.Repositories,
	principal auth.Principal,
	req TransactionRequest,
) (*models.Transaction, error) {
	sender, err := repos.Accounts.FindByID(ctx, req.SenderAccountID)
	if err != nil {
		return nil, accountLookupError(err)
	}

	if !auth.CanAccess(principal, sender) {
		return nil, newError(ErrCodeForbidden, "not allowed to operate on this account")
	}

	txn := &models.Transaction{
		Reference:       ulid.Make().String(),
		Type:            req.Type,
		SenderAccountID: sender.ID,
		AmountCents:     req.AmountCents,
		Status:          models.TransactionStatusPending,
		CreatedBy:       principal.ID,
		LastModifiedBy:  principal.ID,
	}

	switch req.Type {
	case models.TransactionTypeSaving:
		if err := ValidateSaving(sender, req.AmountCents); err != nil {
			return nil, err
		}
	case models.TransactionTypeWithdrawal:
		if err := ValidateWithdrawal(sender, req.AmountCents); err != nil {
			return nil, err
		}
	case models.TransactionTypeTransfer:
		receiver, err := s.validateTransfer(ctx, repos.Accounts, sender, req.ReceiverAccountNumber, req.AmountCents)
		if err != nil {
			return nil, err
		}
		txn.ReceiverAccountID = &receiver.ID
	}

	now := time.Now()
	txn.CreatedAt = now
	txn.LastModifiedOn = now

	if err := repos.Transactions.Create(ctx, txn); err != nil {
		return nil, internalError("failed to create transaction", err)
	}

	return txn, nil
}

// validateTransfer checks the sender's funds and resolves the receiver by
// account number.
func (s *TransactionService) validateTransfer(
	ctx context.Context,
	accounts repository.AccountRepository,
	sender *models.Account,
	receiverAccountNumber string,
	amount int64,
) (*models.Account, error) {
	if err := ValidateTransfer(sender, amount); err != nil {
		return nil, err
	}

	if err := ValidateLuhn(receiverAccountNumber); err != nil {
		return nil, &ServiceError{Code: ErrCodeAccountNotFound, Message: "receiver account not found", Err: err}
	}

	receiver, err := accounts.FindByAccountNumber(ctx, receiverAccountNumber)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, newError(ErrCodeAccountNotFound, "receiver account not found")
		}
		return nil, internalError("failed to load receiver account", err)
	}

	if receiver.ID == sender.ID {
		return nil, newError(ErrCodeSameAccount, "cannot transfer to the sending account")
	}

	return receiver, nil
}

// GetTransaction returns a transaction to an admin or to the owner of one of its accounts
func (s *TransactionService) GetTransaction(ctx context.Context, principal auth.Principal, reference string) (*models.Transaction, error) {
	repos := s.uow.Repositories()

	txn, err := repos.Transactions.FindByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, newError(ErrCodeNotFound, "transaction not found")
		}
		return nil, internalError("failed to load transaction", err)
	}

	if principal.IsAdmin() {
		return txn, nil
	}

	for _, accountID := range txn.AccountIDs() {
		account, err := repos.Accounts.FindByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				continue
			}
			return nil, internalError("failed to load account", err)
		}
		if auth.CanAccess(principal, account) {
			return txn, nil
		}
	}

	return nil, newError(ErrCodeForbidden, "not allowed to view this transaction")
}

// ListAccountTransactions returns the newest transactions touching accountID
func (s *TransactionService) ListAccountTransactions(ctx context.Context, principal auth.Principal, accountID uuid.UUID, limit int) ([]*models.Transaction, error) {
	repos := s.uow.Repositories()

	account, err := repos.Accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, accountLookupError(err)
	}

	if !auth.CanAccess(principal, account) {
		return nil, newError(ErrCodeForbidden, "not allowed to view this account")
	}

	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	txns, err := repos.Transactions.ListByAccount(ctx, account.ID, limit)
	if err != nil {
		return nil, internalError("failed to list transactions", err)
	}

	return txns, nil
}

func accountLookupError(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return newError(ErrCodeAccountNotFound, "account not found")
	}
	return internalError("failed to load account", err)
}

// asServiceError passes ServiceErrors through and wraps anything else as internal.
func asServiceError(err error, message string) error {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return internalError(message, err)
}
