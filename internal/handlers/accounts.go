package handlers

import (
	"context"

	"github.com/benx421/ledger/internal/api"
	"github.com/benx421/ledger/internal/service"
)

// OpenAccount handles POST /api/v1/accounts
func (h *Handler) OpenAccount(
	ctx context.Context,
	request api.OpenAccountRequestObject,
) (api.OpenAccountResponseObject, error) {
	caller, err := principal(ctx)
	if err != nil {
		return h.errorResponse(ctx, "open_account", err), nil
	}

	req := service.OpenAccountRequest{
		OwnerID:     request.Body.OwnerId,
		ProductName: request.Body.ProductName,
	}
	if request.Body.ExpirationMonths != nil {
		req.ExpirationMonths = *request.Body.ExpirationMonths
	}

	account, err := h.accounts.OpenAccount(ctx, caller, req)
	if err != nil {
		return h.errorResponse(ctx, "open_account", err), nil
	}

	return api.OpenAccount201JSONResponse(toAPIAccount(account)), nil
}

// ListAccounts handles GET /api/v1/accounts
func (h *Handler) ListAccounts(
	ctx context.Context,
	_ api.ListAccountsRequestObject,
) (api.ListAccountsResponseObject, error) {
	caller, err := principal(ctx)
	if err != nil {
		return h.errorResponse(ctx, "list_accounts", err), nil
	}

	accounts, err := h.accounts.ListAccounts(ctx, caller)
	if err != nil {
		return h.errorResponse(ctx, "list_accounts", err), nil
	}

	out := api.AccountList{Accounts: make([]api.Account, 0, len(accounts))}
	for _, account := range accounts {
		out.Accounts = append(out.Accounts, toAPIAccount(account))
	}

	return api.ListAccounts200JSONResponse(out), nil
}

// GetAccount handles GET /api/v1/accounts/{accountNumber}
func (h *Handler) GetAccount(
	ctx context.Context,
	request api.GetAccountRequestObject,
) (api.GetAccountResponseObject, error) {
	caller, err := principal(ctx)
	if err != nil {
		return h.errorResponse(ctx, "get_account", err), nil
	}

	account, err := h.accounts.GetAccount(ctx, caller, request.AccountNumber)
	if err != nil {
		return h.errorResponse(ctx, "get_account", err), nil
	}

	return api.GetAccount200JSONResponse(toAPIAccount(account)), nil
}

// DeactivateAccount handles POST /api/v1/accounts/{accountId}/deactivate
func (h *Handler) DeactivateAccount(
	ctx context.Context,
	request api.DeactivateAccountRequestObject,
) (api.DeactivateAccountResponseObject, error) {
	caller, err := principal(ctx)
	if err != nil {
		return h.errorResponse(ctx, "deactivate_account", err), nil
	}

	if err := h.accounts.DeactivateAccount(ctx, caller, request.AccountId); err != nil {
		return h.errorResponse(ctx, "deactivate_account", err), nil
	}

	return api.DeactivateAccount204Response{}, nil
}
