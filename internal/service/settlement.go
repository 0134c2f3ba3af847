package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/benx421/ledger/internal/auth"
	"github.com/benx421/ledger/internal/events"
	"github.com/benx421/ledger/internal/models"
	"github.com/benx421/ledger/internal/repository"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// RetryPolicy bounds how often a settlement is re-run after a transient storage fault
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
}

// settlementParties are the locked, current account rows a transaction touches.
// Receiver is nil for savings and withdrawals.
type settlementParties struct {
	Sender   *models.Account
	Receiver *models.Account
}

// settleFunc applies one transaction type to its parties. It returns a failure
// reason when the transaction must fail, or an error on storage faults.
type settleFunc func(
	ctx context.Context,
	accounts repository.AccountRepository,
	txn *models.Transaction,
	parties settlementParties,
	actorID uuid.UUID,
) (models.FailureReason, error)

var settlers = map[models.TransactionType]settleFunc{
	models.TransactionTypeSaving:     settleSaving,
	models.TransactionTypeWithdrawal: settleWithdrawal,
	models.TransactionTypeTransfer:   settleTransfer,
}

// SettlementService moves pending transactions to Completed or Failed
type SettlementService struct {
	uow       repository.UnitOfWork
	publisher events.Publisher
	logger    *slog.Logger
	retry     RetryPolicy
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(uow repository.UnitOfWork, publisher events.Publisher, retry RetryPolicy, logger *slog.Logger) *SettlementService {
	return &SettlementService{
		uow:       uow,
		publisher: publisher,
		logger:    logger,
		retry:     retry,
	}
}

// Settle re-validates the pending transaction named by reference against the
// current account state and applies it in one atomic step. Cap and funds
// violations are returned as a Failed transaction with a nil error.
func (s *SettlementService) Settle(ctx context.Context, principal auth.Principal, reference string) (*models.Transaction, error) {
	if !principal.IsAdmin() {
		settlementErrorsTotal.WithLabelValues(ErrCodeForbidden).Inc()
		return nil, newError(ErrCodeForbidden, "only administrators may settle transactions")
	}

	start := time.Now()
	defer func() {
		settlementDuration.Observe(time.Since(start).Seconds())
	}()

	// A transient fault can surface after the commit went through, in which
	// case the next attempt finds the transaction already terminal.
	faulted := false
	attempt := func() (*models.Transaction, error) {
		var settled *models.Transaction
		err := s.uow.Do(ctx, func(repos repository.Repositories) error {
			var err error
			settled, err = s.performSettlement(ctx, repos, principal.ID, reference)
			return err
		})
		if err != nil {
			if repository.IsTransient(err) {
				faulted = true
				return nil, err
			}
			if faulted && ErrorCode(err) == ErrCodeAlreadySettled {
				return s.loadSettled(ctx, reference)
			}
			return nil, backoff.Permanent(err)
		}
		return settled, nil
	}

	notify := func(err error, wait time.Duration) {
		settlementRetriesTotal.Inc()
		s.logger.WarnContext(ctx, "retrying settlement after transient fault",
			"reference", reference,
			"wait", wait,
			"error", err,
		)
	}

	txn, err := backoff.RetryNotifyWithData(attempt, s.backOff(ctx), notify)
	if err != nil {
		svcErr := asServiceError(err, "failed to settle transaction")
		settlementErrorsTotal.WithLabelValues(ErrorCode(svcErr)).Inc()
		return nil, svcErr
	}

	settlementsTotal.WithLabelValues(string(txn.Type), string(txn.Status), string(txn.FailureReason)).Inc()
	s.logger.InfoContext(ctx, "transaction settled",
		"reference", txn.Reference,
		"type", txn.Type,
		"status", txn.Status,
		"failure_reason", txn.FailureReason,
		"actor_id", principal.ID,
	)
	publishTransaction(ctx, s.publisher, s.logger, txn)

	return txn, nil
}

// loadSettled reads back a transaction settled by an earlier attempt whose
// outcome was lost to a storage fault.
func (s *SettlementService) loadSettled(ctx context.Context, reference string) (*models.Transaction, error) {
	txn, err := s.uow.Repositories().Transactions.FindByReference(ctx, reference)
	if err != nil {
		if repository.IsTransient(err) {
			return nil, err
		}
		return nil, backoff.Permanent(internalError("failed to load settled transaction", err))
	}
	s.logger.WarnContext(ctx, "settlement committed before transient fault",
		"reference", reference,
		"status", txn.Status,
	)
	return txn, nil
}

func (s *SettlementService) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if s.retry.InitialInterval > 0 {
		exp.InitialInterval = s.retry.InitialInterval
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(max(s.retry.MaxRetries, 0))), ctx)
}

// performSettlement contains the core settlement logic. It must run inside a
// unit of work: the transaction row is locked first, then every account row in
// ascending id order, so settlements sharing an account serialize without
// deadlocking.
func (s *SettlementService) performSettlement(
	ctx context.Context,
	repos repository.Repositories,
	actorID uuid.UUID,
	reference string,
) (*models.Transaction, error) {
	txn, err := repos.Transactions.FindByReferenceForUpdate(ctx, reference)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, newError(ErrCodeNotFound, "transaction not found")
		}
		return nil, internalError("failed to load transaction", err)
	}

	if !txn.IsPending() {
		return nil, newError(ErrCodeAlreadySettled, "transaction has already been settled")
	}

	settle, ok := settlers[txn.Type]
	if !ok {
		return nil, newError(ErrCodeInvalidTransactionType, "unknown transaction type")
	}

	parties, inactive, err := lockParties(ctx, repos.Accounts, txn)
	if err != nil {
		return nil, err
	}

	reason := models.FailureReasonAccountInactive
	if !inactive {
		reason, err = settle(ctx, repos.Accounts, txn, parties, actorID)
		if err != nil {
			return nil, internalError("failed to apply transaction", err)
		}
	}

	now := time.Now()
	txn.Status = models.TransactionStatusCompleted
	if reason != models.FailureReasonNone {
		txn.Status = models.TransactionStatusFailed
	}
	txn.FailureReason = reason
	txn.LastModifiedBy = actorID
	txn.LastModifiedOn = now
	txn.SettledAt = &now

	if err := repos.Transactions.MarkSettled(ctx, txn); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, newError(ErrCodeAlreadySettled, "transaction has already been settled")
		}
		return nil, internalError("failed to update transaction", err)
	}

	return txn, nil
}

// lockParties reloads and locks the accounts of txn. inactive reports that one
// of them is no longer active.
func lockParties(ctx context.Context, accounts repository.AccountRepository, txn *models.Transaction) (settlementParties, bool, error) {
	ids := txn.AccountIDs()
	order := slices.Clone(ids)
	slices.SortFunc(order, func(a, b uuid.UUID) int {
		return slices.Compare(a[:], b[:])
	})

	locked := make(map[uuid.UUID]*models.Account, len(order))
	inactive := false
	for _, id := range order {
		account, err := accounts.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				inactive = true
				continue
			}
			return settlementParties{}, false, internalError("failed to lock account", err)
		}
		locked[id] = account
	}

	parties := settlementParties{Sender: locked[txn.SenderAccountID]}
	if txn.ReceiverAccountID != nil {
		parties.Receiver = locked[*txn.ReceiverAccountID]
	}

	return parties, inactive, nil
}

func settleSaving(
	ctx context.Context,
	accounts repository.AccountRepository,
	txn *models.Transaction,
	parties settlementParties,
	actorID uuid.UUID,
) (models.FailureReason, error) {
	if !parties.Sender.CanCredit(txn.AmountCents) {
		return models.FailureReasonCapExceeded, nil
	}
	return models.FailureReasonNone, accounts.AdjustBalance(ctx, parties.Sender.ID, txn.AmountCents, actorID)
}

func settleWithdrawal(
	ctx context.Context,
	accounts repository.AccountRepository,
	txn *models.Transaction,
	parties settlementParties,
	actorID uuid.UUID,
) (models.FailureReason, error) {
	if !parties.Sender.CanDebit(txn.AmountCents) {
		return models.FailureReasonInsufficientFunds, nil
	}
	return models.FailureReasonNone, accounts.AdjustBalance(ctx, parties.Sender.ID, -txn.AmountCents, actorID)
}

func settleTransfer(
	ctx context.Context,
	accounts repository.AccountRepository,
	txn *models.Transaction,
	parties settlementParties,
	actorID uuid.UUID,
) (models.FailureReason, error) {
	if parties.Receiver == nil {
		return models.FailureReasonNone, fmt.Errorf("transfer %s has no receiver", txn.Reference)
	}
	if !parties.Sender.CanDebit(txn.AmountCents) {
		return models.FailureReasonInsufficientFunds, nil
	}
	if !parties.Receiver.CanCredit(txn.AmountCents) {
		return models.FailureReasonCapExceeded, nil
	}

	if err := accounts.AdjustBalance(ctx, parties.Sender.ID, -txn.AmountCents, actorID); err != nil {
		return models.FailureReasonNone, err
	}
	return models.FailureReasonNone, accounts.AdjustBalance(ctx, parties.Receiver.ID, txn.AmountCents, actorID)
}
