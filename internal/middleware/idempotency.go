// Package middleware provides HTTP middleware components for the ledger API.
package middleware

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/benx421/ledger/internal/api"
	"github.com/benx421/ledger/internal/auth"
	"github.com/benx421/ledger/internal/models"
	"github.com/benx421/ledger/internal/repository"
	"golang.org/x/sync/singleflight"
)

const idempotencyKeyHeader = "Idempotency-Key"

// idempotentRoutes defines which routes require idempotency handling.
// Segments in braces match any single path segment.
//
// Only mutating operations (POST) need idempotency
var idempotentRoutes = []string{
	"/api/v1/accounts",
	"/api/v1/accounts/{accountId}/deactivate",
	"/api/v1/transactions",
	"/api/v1/transactions/{reference}/settle",
}

// maxIdempotencyKeyLength bounds the client key so the caller-scoped key
// fits the idempotency_keys.key column.
const maxIdempotencyKeyLength = 255

// bufferedResponse holds a handler's response until every request sharing
// its key has been answered.
type bufferedResponse struct {
	header     http.Header
	body       bytes.Buffer
	statusCode int
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{
		header:     make(http.Header),
		statusCode: http.StatusOK, // Default if WriteHeader not called
	}
}

func (br *bufferedResponse) Header() http.Header {
	return br.header
}

func (br *bufferedResponse) WriteHeader(code int) {
	br.statusCode = code
}

func (br *bufferedResponse) Write(b []byte) (int, error) {
	return br.body.Write(b)
}

type idempotentResult struct {
	header     http.Header
	body       []byte
	statusCode int
	replayed   bool
}

func replayOf(cached *models.IdempotencyKey) *idempotentResult {
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return &idempotentResult{
		header:     header,
		body:       []byte(cached.ResponseBody),
		statusCode: cached.ResponseStatus,
		replayed:   true,
	}
}

func (res *idempotentResult) writeTo(w http.ResponseWriter, replayed bool) {
	for name, values := range res.header {
		w.Header()[name] = values
	}
	if replayed {
		w.Header().Set("X-Idempotent-Replayed", "true")
	}
	w.WriteHeader(res.statusCode)
	//nolint:errcheck // Best effort response writing
	w.Write(res.body)
}

// Idempotency creates middleware that handles idempotent request caching.
// Requests sharing a key and path run the handler at most once per process:
// concurrent duplicates wait for the in-flight request and receive its
// response.
func Idempotency(repo repository.IdempotencyRepository, logger *slog.Logger) func(http.Handler) http.Handler {
	var inflight singleflight.Group

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requiresIdempotency(r) {
				next.ServeHTTP(w, r)
				return
			}

			clientKey := r.Header.Get(idempotencyKeyHeader)
			if len(clientKey) > maxIdempotencyKeyLength {
				api.WriteError(w, http.StatusBadRequest, api.ErrorCodeInvalidRequest,
					fmt.Sprintf("%s must be at most %d characters", idempotencyKeyHeader, maxIdempotencyKeyLength))
				return
			}

			ctx := r.Context()
			idempotencyKey := scopedKey(ctx, clientKey)
			if idempotencyKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			requestPath := normalizeRequestPath(r.URL.Path)

			executed := false
			v, _, _ := inflight.Do(idempotencyKey+" "+requestPath, func() (any, error) {
				cached, err := repo.Get(ctx, idempotencyKey, requestPath)
				if err != nil {
					logger.ErrorContext(ctx, "failed to check idempotency cache", "error", err)
				} else if cached != nil {
					logger.DebugContext(ctx, "returning cached idempotent response",
						"key", idempotencyKey,
						"path", requestPath,
						"status", cached.ResponseStatus,
					)
					return replayOf(cached), nil
				}

				executed = true
				buffered := newBufferedResponse()
				next.ServeHTTP(buffered, r)

				if shouldCacheResponse(buffered.statusCode) {
					idemKey := &models.IdempotencyKey{
						Key:            idempotencyKey,
						RequestPath:    requestPath,
						ResponseStatus: buffered.statusCode,
						ResponseBody:   buffered.body.String(),
						CreatedAt:      time.Now(),
					}

					if err := repo.Store(ctx, idemKey); err != nil {
						logger.ErrorContext(ctx, "failed to store idempotency key",
							"error", err,
							"key", idempotencyKey,
						)
					}
				}

				return &idempotentResult{
					header:     buffered.header,
					body:       buffered.body.Bytes(),
					statusCode: buffered.statusCode,
				}, nil
			})

			res := v.(*idempotentResult)
			res.writeTo(w, res.replayed || !executed)
		})
	}
}

func requiresIdempotency(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}

	path := normalizeRequestPath(r.URL.Path)
	for _, route := range idempotentRoutes {
		if matchRoute(route, path) {
			return true
		}
	}
	return false
}

func matchRoute(route, path string) bool {
	want := strings.Split(route, "/")
	got := strings.Split(path, "/")
	if len(want) != len(got) {
		return false
	}
	for i, segment := range want {
		if strings.HasPrefix(segment, "{") {
			if got[i] == "" {
				return false
			}
			continue
		}
		if segment != got[i] {
			return false
		}
	}
	return true
}

// scopedKey prefixes the client key with the caller id so two principals
// never replay each other's responses.
func scopedKey(ctx context.Context, key string) string {
	if key == "" {
		return ""
	}
	if p, ok := auth.FromContext(ctx); ok {
		return p.ID.String() + ":" + key
	}
	return key
}

func normalizeRequestPath(urlPath string) string {
	return strings.TrimSuffix(urlPath, "/")
}

func shouldCacheResponse(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
