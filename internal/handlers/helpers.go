package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/benx421/ledger/internal/api"
	"github.com/benx421/ledger/internal/auth"
	"github.com/benx421/ledger/internal/models"
	"github.com/benx421/ledger/internal/money"
	"github.com/benx421/ledger/internal/service"
)

var errUnauthenticated = errors.New("request carries no authenticated principal")

// principal returns the caller placed in ctx by the authentication middleware.
func principal(ctx context.Context) (auth.Principal, error) {
	p, ok := auth.FromContext(ctx)
	if !ok {
		return auth.Principal{}, errUnauthenticated
	}
	return p, nil
}

func mapServiceErrorToCode(code string) api.ErrorCode {
	switch code {
	case service.ErrCodeInvalidRequest:
		return api.ErrorCodeInvalidRequest
	case service.ErrCodeInvalidAmount:
		return api.ErrorCodeInvalidAmount
	case service.ErrCodeInvalidTransactionType:
		return api.ErrorCodeInvalidTransactionType
	case service.ErrCodeCapExceeded:
		return api.ErrorCodeCapExceeded
	case service.ErrCodeInsufficientFunds:
		return api.ErrorCodeInsufficientFunds
	case service.ErrCodeAccountNotFound:
		return api.ErrorCodeAccountNotFound
	case service.ErrCodeSameAccount:
		return api.ErrorCodeSameAccount
	case service.ErrCodeAccountInactive:
		return api.ErrorCodeAccountInactive
	case service.ErrCodeProductNotFound:
		return api.ErrorCodeProductNotFound
	case service.ErrCodeForbidden:
		return api.ErrorCodeForbidden
	case service.ErrCodeNotFound:
		return api.ErrorCodeNotFound
	case service.ErrCodeAlreadySettled:
		return api.ErrorCodeAlreadySettled
	default:
		return api.ErrorCodeInternalError
	}
}

func statusForCode(code string) int {
	switch code {
	case service.ErrCodeInvalidRequest, service.ErrCodeInvalidAmount,
		service.ErrCodeInvalidTransactionType, service.ErrCodeSameAccount:
		return http.StatusBadRequest
	case service.ErrCodeCapExceeded, service.ErrCodeAccountInactive:
		return http.StatusUnprocessableEntity
	case service.ErrCodeInsufficientFunds:
		return http.StatusPaymentRequired
	case service.ErrCodeForbidden:
		return http.StatusForbidden
	case service.ErrCodeAccountNotFound, service.ErrCodeProductNotFound, service.ErrCodeNotFound:
		return http.StatusNotFound
	case service.ErrCodeAlreadySettled:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func extractServiceError(err error) *service.ServiceError {
	var svcErr *service.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return nil
}

// errorResponse maps err to the shared error body. Internal details never
// reach the client; they are logged instead.
func (h *Handler) errorResponse(ctx context.Context, operation string, err error) api.ErrorJSONResponse {
	if errors.Is(err, errUnauthenticated) {
		return api.ErrorJSONResponse{
			StatusCode: http.StatusUnauthorized,
			Body:       api.Error{Error: api.ErrorCodeUnauthorized, Message: "authentication required"},
		}
	}

	svcErr := extractServiceError(err)
	if svcErr == nil || svcErr.Code == service.ErrCodeInternalError {
		h.logger.ErrorContext(ctx, "unexpected error", "operation", operation, "error", err)
		return api.ErrorJSONResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       api.Error{Error: api.ErrorCodeInternalError, Message: "internal error"},
		}
	}

	return api.ErrorJSONResponse{
		StatusCode: statusForCode(svcErr.Code),
		Body:       api.Error{Error: mapServiceErrorToCode(svcErr.Code), Message: svcErr.Message},
	}
}

func badRequest(code api.ErrorCode, message string) api.ErrorJSONResponse {
	return api.ErrorJSONResponse{
		StatusCode: http.StatusBadRequest,
		Body:       api.Error{Error: code, Message: message},
	}
}

func toAPIAccount(account *models.Account) api.Account {
	return api.Account{
		Id:             account.ID,
		AccountNumber:  account.AccountNumber,
		OwnerId:        account.OwnerID,
		Product:        account.Product.Name,
		Balance:        money.Format(account.BalanceCents),
		MaximumBalance: money.Format(account.Product.MaximumAmountCents),
		Status:         string(account.Status),
		ExpiresAt:      account.ExpiresAt,
		CreatedAt:      account.CreatedOn,
	}
}

func toAPITransaction(txn *models.Transaction) api.Transaction {
	out := api.Transaction{
		Reference:         txn.Reference,
		Type:              string(txn.Type),
		Amount:            money.Format(txn.AmountCents),
		SenderAccountId:   txn.SenderAccountID,
		ReceiverAccountId: txn.ReceiverAccountID,
		Status:            string(txn.Status),
		CreatedAt:         txn.CreatedAt,
		SettledAt:         txn.SettledAt,
	}
	if txn.FailureReason != models.FailureReasonNone {
		reason := string(txn.FailureReason)
		out.FailureReason = &reason
	}
	return out
}
