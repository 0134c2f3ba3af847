package handlers

import (
	"context"

	"github.com/benx421/ledger/internal/api"
	"github.com/benx421/ledger/internal/models"
	"github.com/benx421/ledger/internal/money"
	"github.com/benx421/ledger/internal/service"
)

// RequestTransaction handles POST /api/v1/transactions
func (h *Handler) RequestTransaction(
	ctx context.Context,
	request api.RequestTransactionRequestObject,
) (api.RequestTransactionResponseObject, error) {
	caller, err := principal(ctx)
	if err != nil {
		return h.errorResponse(ctx, "request_transaction", err), nil
	}

	amount, err := money.ParseAmount(request.Body.Amount)
	if err != nil {
		return badRequest(api.ErrorCodeInvalidAmount, err.Error()), nil
	}

	req := service.TransactionRequest{
		Type:            models.TransactionType(request.Body.Type),
		SenderAccountID: request.Body.SenderAccountId,
		AmountCents:     amount,
	}
	if request.Body.ReceiverAccountNumber != nil {
		req.ReceiverAccountNumber = *request.Body.ReceiverAccountNumber
	}

	txn, err := h.requester.RequestTransaction(ctx, caller, req)
	if err != nil {
		return h.errorResponse(ctx, "request_transaction", err), nil
	}

	return api.RequestTransaction201JSONResponse(toAPITransaction(txn)), nil
}

// GetTransaction handles GET /api/v1/transactions/{reference}
func (h *Handler) GetTransaction(
	ctx context.Context,
	request api.GetTransactionRequestObject,
) (api.GetTransactionResponseObject, error) {
	caller, err := principal(ctx)
	if err != nil {
		return h.errorResponse(ctx, "get_transaction", err), nil
	}

	txn, err := h.reader.GetTransaction(ctx, caller, request.Reference)
	if err != nil {
		return h.errorResponse(ctx, "get_transaction", err), nil
	}

	return api.GetTransaction200JSONResponse(toAPITransaction(txn)), nil
}

// ListAccountTransactions handles GET /api/v1/accounts/{accountId}/transactions
func (h *Handler) ListAccountTransactions(
	ctx context.Context,
	request api.ListAccountTransactionsRequestObject,
) (api.ListAccountTransactionsResponseObject, error) {
	caller, err := principal(ctx)
	if err != nil {
		return h.errorResponse(ctx, "list_transactions", err), nil
	}

	limit := 0
	if request.Params.Limit != nil {
		limit = *request.Params.Limit
	}

	txns, err := h.reader.ListAccountTransactions(ctx, caller, request.AccountId, limit)
	if err != nil {
		return h.errorResponse(ctx, "list_transactions", err), nil
	}

	out := api.TransactionList{Transactions: make([]api.Transaction, 0, len(txns))}
	for _, txn := range txns {
		out.Transactions = append(out.Transactions, toAPITransaction(txn))
	}

	return api.ListAccountTransactions200JSONResponse(out), nil
}

// SettleTransaction handles POST /api/v1/transactions/{reference}/settle.
// A settlement that ends FAILED is still a 200: the transaction reached a
// terminal state and carries its failure reason.
func (h *Handler) SettleTransaction(
	ctx context.Context,
	request api.SettleTransactionRequestObject,
) (api.SettleTransactionResponseObject, error) {
	caller, err := principal(ctx)
	if err != nil {
		return h.errorResponse(ctx, "settle_transaction", err), nil
	}

	txn, err := h.settler.Settle(ctx, caller, request.Reference)
	if err != nil {
		return h.errorResponse(ctx, "settle_transaction", err), nil
	}

	return api.SettleTransaction200JSONResponse(toAPITransaction(txn)), nil
}
