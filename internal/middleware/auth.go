package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/benx421/ledger/internal/api"
	"github.com/benx421/ledger/internal/auth"
)

const protectedPrefix = "/api/"

// TokenParser turns a bearer token into the principal it was issued for
type TokenParser interface {
	Parse(token string) (auth.Principal, error)
}

// Authenticate requires a valid bearer token on every API route and stores the
// resulting principal in the request context. Health, docs and metrics stay open.
func Authenticate(tokens TokenParser, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, protectedPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				api.WriteError(w, http.StatusUnauthorized, api.ErrorCodeUnauthorized, "missing bearer token")
				return
			}

			principal, err := tokens.Parse(token)
			if err != nil {
				logger.DebugContext(r.Context(), "rejected bearer token", "error", err)
				api.WriteError(w, http.StatusUnauthorized, api.ErrorCodeUnauthorized, "invalid bearer token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
