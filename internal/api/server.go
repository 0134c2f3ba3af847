package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /health)
	GetHealth(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/accounts)
	ListAccounts(w http.ResponseWriter, r *http.Request)
	// (POST /api/v1/accounts)
	OpenAccount(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/accounts/{accountNumber})
	GetAccount(w http.ResponseWriter, r *http.Request, accountNumber string)
	// (POST /api/v1/accounts/{accountId}/deactivate)
	DeactivateAccount(w http.ResponseWriter, r *http.Request, accountId openapi_types.UUID)
	// (GET /api/v1/accounts/{accountId}/transactions)
	ListAccountTransactions(w http.ResponseWriter, r *http.Request, accountId openapi_types.UUID, params ListAccountTransactionsParams)
	// (POST /api/v1/transactions)
	RequestTransaction(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/transactions/{reference})
	GetTransaction(w http.ResponseWriter, r *http.Request, reference string)
	// (POST /api/v1/transactions/{reference}/settle)
	SettleTransaction(w http.ResponseWriter, r *http.Request, reference string)
}

// InvalidParamFormatError is reported when a path or query parameter cannot be bound.
type InvalidParamFormatError struct {
	Err       error
	ParamName string
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// WriteError writes an Error body with the given status.
func WriteError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // Nothing useful to do if write fails
	json.NewEncoder(w).Encode(Error{Error: code, Message: message})
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	WriteError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, err.Error())
}

// ServerInterfaceWrapper converts requests into typed handler calls.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *ServerInterfaceWrapper) GetHealth(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetHealth(w, r)
}

func (siw *ServerInterfaceWrapper) ListAccounts(w http.ResponseWriter, r *http.Request) {
	siw.Handler.ListAccounts(w, r)
}

func (siw *ServerInterfaceWrapper) OpenAccount(w http.ResponseWriter, r *http.Request) {
	siw.Handler.OpenAccount(w, r)
}

func (siw *ServerInterfaceWrapper) GetAccount(w http.ResponseWriter, r *http.Request) {
	var accountNumber string
	if !siw.bindPath(w, r, "accountNumber", &accountNumber) {
		return
	}
	siw.Handler.GetAccount(w, r, accountNumber)
}

func (siw *ServerInterfaceWrapper) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	var accountId openapi_types.UUID
	if !siw.bindPath(w, r, "accountId", &accountId) {
		return
	}
	siw.Handler.DeactivateAccount(w, r, accountId)
}

func (siw *ServerInterfaceWrapper) ListAccountTransactions(w http.ResponseWriter, r *http.Request) {
	var accountId openapi_types.UUID
	if !siw.bindPath(w, r, "accountId", &accountId) {
		return
	}

	var params ListAccountTransactionsParams
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}

	siw.Handler.ListAccountTransactions(w, r, accountId, params)
}

func (siw *ServerInterfaceWrapper) RequestTransaction(w http.ResponseWriter, r *http.Request) {
	siw.Handler.RequestTransaction(w, r)
}

func (siw *ServerInterfaceWrapper) GetTransaction(w http.ResponseWriter, r *http.Request) {
	var reference string
	if !siw.bindPath(w, r, "reference", &reference) {
		return
	}
	siw.Handler.GetTransaction(w, r, reference)
}

func (siw *ServerInterfaceWrapper) SettleTransaction(w http.ResponseWriter, r *http.Request) {
	var reference string
	if !siw.bindPath(w, r, "reference", &reference) {
		return
	}
	siw.Handler.SettleTransaction(w, r, reference)
}

func (siw *ServerInterfaceWrapper) bindPath(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, r.PathValue(name), dest, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}

// HandlerFromMux registers every operation of si on m.
func HandlerFromMux(si ServerInterface, m *http.ServeMux) http.Handler {
	wrapper := ServerInterfaceWrapper{
		Handler:          si,
		ErrorHandlerFunc: defaultErrorHandler,
	}

	m.HandleFunc("GET /health", wrapper.GetHealth)
	m.HandleFunc("GET /api/v1/accounts", wrapper.ListAccounts)
	m.HandleFunc("POST /api/v1/accounts", wrapper.OpenAccount)
	m.HandleFunc("GET /api/v1/accounts/{accountNumber}", wrapper.GetAccount)
	m.HandleFunc("POST /api/v1/accounts/{accountId}/deactivate", wrapper.DeactivateAccount)
	m.HandleFunc("GET /api/v1/accounts/{accountId}/transactions", wrapper.ListAccountTransactions)
	m.HandleFunc("POST /api/v1/transactions", wrapper.RequestTransaction)
	m.HandleFunc("GET /api/v1/transactions/{reference}", wrapper.GetTransaction)
	m.HandleFunc("POST /api/v1/transactions/{reference}/settle", wrapper.SettleTransaction)

	return m
}
