package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

type GetHealthRequestObject struct{}

type GetHealthResponseObject interface {
	VisitGetHealthResponse(w http.ResponseWriter) error
}

type GetHealth200JSONResponse HealthResponse

func (response GetHealth200JSONResponse) VisitGetHealthResponse(w http.ResponseWriter) error {
	return writeJSON(w, http.StatusOK, response)
}

type GetHealth503JSONResponse HealthResponse

func (response GetHealth503JSONResponse) VisitGetHealthResponse(w http.ResponseWriter) error {
	return writeJSON(w, http.StatusServiceUnavailable, response)
}

type ListAccountsRequestObject struct{}

type ListAccountsResponseObject interface {
	VisitListAccountsResponse(w http.ResponseWriter) error
}

type ListAccounts200JSONResponse AccountList

func (response ListAccounts200JSONResponse) VisitListAccountsResponse(w http.ResponseWriter) error {
	return writeJSON(w, http.StatusOK, response)
}

type OpenAccountRequestObject struct {
	Body *OpenAccountJSONRequestBody
}

type OpenAccountResponseObject interface {
	VisitOpenAccountResponse(w http.ResponseWriter) error
}

type OpenAccount201JSONResponse Account

func (response OpenAccount201JSONResponse) VisitOpenAccountResponse(w http.ResponseWriter) error {
	return writeJSON(w, http.StatusCreated, response)
}

type GetAccountRequestObject struct {
	AccountNumber string `json:"accountNumber"`
}

type GetAccountResponseObject interface {
	VisitGetAccountResponse(w http.ResponseWriter) error
}

type GetAccount200JSONResponse Account

func (response GetAccount200JSONResponse) VisitGetAccountResponse(w http.ResponseWriter) error {
	return writeJSON(w, http.StatusOK, response)
}

type DeactivateAccountRequestObject struct {
	AccountId openapi_types.UUID `json:"accountId"`
}

type DeactivateAccountResponseObject interface {
	VisitDeactivateAccountResponse(w http.ResponseWriter) error
}

type DeactivateAccount204Response struct{}

func (response DeactivateAccount204Response) VisitDeactivateAccountResponse(w http.ResponseWriter) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}

type ListAccountTransactionsRequestObject struct {
	AccountId openapi_types.UUID `json:"accountId"`
	Params    ListAccountTransactionsParams
}

type ListAccountTransactionsResponseObject interface {
	VisitListAccountTransactionsResponse(w http.ResponseWriter) error
}

type ListAccountTransactions200JSONResponse TransactionList

func (response ListAccountTransactions200JSONResponse) VisitListAccountTransactionsResponse(w http.ResponseWriter) error {
	return writeJSON(w, http.StatusOK, response)
}

type RequestTransactionRequestObject struct {
	Body *RequestTransactionJSONRequestBody
}

type RequestTransactionResponseObject interface {
	VisitRequestTransactionResponse(w http.ResponseWriter) error
}

type RequestTransaction201JSONResponse Transaction

func (response RequestTransaction201JSONResponse) VisitRequestTransactionResponse(w http.ResponseWriter) error {
	return writeJSON(w, http.StatusCreated, response)
}

type GetTransactionRequestObject struct {
	Reference string `json:"reference"`
}

type GetTransactionResponseObject interface {
	VisitGetTransactionResponse(w http.ResponseWriter) error
}

type GetTransaction200JSONResponse Transaction

func (response GetTransaction200JSONResponse) VisitGetTransactionResponse(w http.ResponseWriter) error {
	return writeJSON(w, http.StatusOK, response)
}

type SettleTransactionRequestObject struct {
	Reference string `json:"reference"`
}

type SettleTransactionResponseObject interface {
	VisitSettleTransactionResponse(w http.ResponseWriter) error
}

type SettleTransaction200JSONResponse Transaction

func (response SettleTransaction200JSONResponse) VisitSettleTransactionResponse(w http.ResponseWriter) error {
	return writeJSON(w, http.StatusOK, response)
}

// ErrorJSONResponse is the error response shared by every operation.
type ErrorJSONResponse struct {
	Body       Error
	StatusCode int
}

func (response ErrorJSONResponse) visit(w http.ResponseWriter) error {
	return writeJSON(w, response.StatusCode, response.Body)
}

func (response ErrorJSONResponse) VisitListAccountsResponse(w http.ResponseWriter) error {
	return response.visit(w)
}

func (response ErrorJSONResponse) VisitOpenAccountResponse(w http.ResponseWriter) error {
	return response.visit(w)
}

func (response ErrorJSONResponse) VisitGetAccountResponse(w http.ResponseWriter) error {
	return response.visit(w)
}

func (response ErrorJSONResponse) VisitDeactivateAccountResponse(w http.ResponseWriter) error {
	return response.visit(w)
}

func (response ErrorJSONResponse) VisitListAccountTransactionsResponse(w http.ResponseWriter) error {
	return response.visit(w)
}

func (response ErrorJSONResponse) VisitRequestTransactionResponse(w http.ResponseWriter) error {
	return response.visit(w)
}

func (response ErrorJSONResponse) VisitGetTransactionResponse(w http.ResponseWriter) error {
	return response.visit(w)
}

func (response ErrorJSONResponse) VisitSettleTransactionResponse(w http.ResponseWriter) error {
	return response.visit(w)
}

func writeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}

// StrictServerInterface represents all server handlers.
type StrictServerInterface interface {
	GetHealth(ctx context.Context, request GetHealthRequestObject) (GetHealthResponseObject, error)
	ListAccounts(ctx context.Context, request ListAccountsRequestObject) (ListAccountsResponseObject, error)
	OpenAccount(ctx context.Context, request OpenAccountRequestObject) (OpenAccountResponseObject, error)
	GetAccount(ctx context.Context, request GetAccountRequestObject) (GetAccountResponseObject, error)
	DeactivateAccount(ctx context.Context, request DeactivateAccountRequestObject) (DeactivateAccountResponseObject, error)
	ListAccountTransactions(ctx context.Context, request ListAccountTransactionsRequestObject) (ListAccountTransactionsResponseObject, error)
	RequestTransaction(ctx context.Context, request RequestTransactionRequestObject) (RequestTransactionResponseObject, error)
	GetTransaction(ctx context.Context, request GetTransactionRequestObject) (GetTransactionResponseObject, error)
	SettleTransaction(ctx context.Context, request SettleTransactionRequestObject) (SettleTransactionResponseObject, error)
}

// StrictHTTPServerOptions customizes how decode and handler errors are reported.
type StrictHTTPServerOptions struct {
	RequestErrorHandlerFunc  func(w http.ResponseWriter, r *http.Request, err error)
	ResponseErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// NewStrictHandler adapts ssi to ServerInterface with default error handling.
func NewStrictHandler(ssi StrictServerInterface) ServerInterface {
	return NewStrictHandlerWithOptions(ssi, StrictHTTPServerOptions{
		RequestErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
			WriteError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, err.Error())
		},
		ResponseErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, _ error) {
			WriteError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
		},
	})
}

// NewStrictHandlerWithOptions adapts ssi to ServerInterface.
func NewStrictHandlerWithOptions(ssi StrictServerInterface, options StrictHTTPServerOptions) ServerInterface {
	return &strictHandler{ssi: ssi, options: options}
}

type strictHandler struct {
	ssi     StrictServerInterface
	options StrictHTTPServerOptions
}

func (sh *strictHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	response, err := sh.ssi.GetHealth(r.Context(), GetHealthRequestObject{})
	sh.finish(w, r, err, response, func() error { return response.VisitGetHealthResponse(w) })
}

func (sh *strictHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	response, err := sh.ssi.ListAccounts(r.Context(), ListAccountsRequestObject{})
	sh.finish(w, r, err, response, func() error { return response.VisitListAccountsResponse(w) })
}

func (sh *strictHandler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	var body OpenAccountJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		sh.options.RequestErrorHandlerFunc(w, r, fmt.Errorf("can't decode JSON body: %w", err))
		return
	}

	response, err := sh.ssi.OpenAccount(r.Context(), OpenAccountRequestObject{Body: &body})
	sh.finish(w, r, err, response, func() error { return response.VisitOpenAccountResponse(w) })
}

func (sh *strictHandler) GetAccount(w http.ResponseWriter, r *http.Request, accountNumber string) {
	response, err := sh.ssi.GetAccount(r.Context(), GetAccountRequestObject{AccountNumber: accountNumber})
	sh.finish(w, r, err, response, func() error { return response.VisitGetAccountResponse(w) })
}

func (sh *strictHandler) DeactivateAccount(w http.ResponseWriter, r *http.Request, accountId openapi_types.UUID) {
	response, err := sh.ssi.DeactivateAccount(r.Context(), DeactivateAccountRequestObject{AccountId: accountId})
	sh.finish(w, r, err, response, func() error { return response.VisitDeactivateAccountResponse(w) })
}

func (sh *strictHandler) ListAccountTransactions(w http.ResponseWriter, r *http.Request, accountId openapi_types.UUID, params ListAccountTransactionsParams) {
	response, err := sh.ssi.ListAccountTransactions(r.Context(), ListAccountTransactionsRequestObject{
		AccountId: accountId,
		Params:    params,
	})
	sh.finish(w, r, err, response, func() error { return response.VisitListAccountTransactionsResponse(w) })
}

func (sh *strictHandler) RequestTransaction(w http.ResponseWriter, r *http.Request) {
	var body RequestTransactionJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		sh.options.RequestErrorHandlerFunc(w, r, fmt.Errorf("can't decode JSON body: %w", err))
		return
	}

	response, err := sh.ssi.RequestTransaction(r.Context(), RequestTransactionRequestObject{Body: &body})
	sh.finish(w, r, err, response, func() error { return response.VisitRequestTransactionResponse(w) })
}

func (sh *strictHandler) GetTransaction(w http.ResponseWriter, r *http.Request, reference string) {
	response, err := sh.ssi.GetTransaction(r.Context(), GetTransactionRequestObject{Reference: reference})
	sh.finish(w, r, err, response, func() error { return response.VisitGetTransactionResponse(w) })
}

func (sh *strictHandler) SettleTransaction(w http.ResponseWriter, r *http.Request, reference string) {
	response, err := sh.ssi.SettleTransaction(r.Context(), SettleTransactionRequestObject{Reference: reference})
	sh.finish(w, r, err, response, func() error { return response.VisitSettleTransactionResponse(w) })
}

func (sh *strictHandler) finish(w http.ResponseWriter, r *http.Request, err error, response any, visit func() error) {
	if err != nil {
		sh.options.ResponseErrorHandlerFunc(w, r, err)
		return
	}
	if response == nil {
		sh.options.ResponseErrorHandlerFunc(w, r, fmt.Errorf("unexpected response type: %T", response))
		return
	}
	if err := visit(); err != nil {
		sh.options.ResponseErrorHandlerFunc(w, r, err)
	}
}
