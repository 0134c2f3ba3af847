package auth

import (
	"context"
	"testing"
	"time"

	"github.com/benx421/ledger/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanAccess(t *testing.T) {
	owner := uuid.New()
	account := &models.Account{ID: uuid.New(), OwnerID: owner}

	tests := []struct {
		name      string
		principal Principal
		account   *models.Account
		want      bool
	}{
		{"owner", Principal{ID: owner, Role: RoleUser}, account, true},
		{"admin", Principal{ID: uuid.New(), Role: RoleAdmin}, account, true},
		{"other user", Principal{ID: uuid.New(), Role: RoleUser}, account, false},
		{"unknown role", Principal{ID: uuid.New(), Role: "auditor"}, account, false},
		{"nil account", Principal{ID: owner, Role: RoleAdmin}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccess(tt.principal, tt.account))
		})
	}
}

func TestPrincipalContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	p := Principal{ID: uuid.New(), Role: RoleAdmin}
	got, ok := FromContext(WithPrincipal(context.Background(), p))
	require.True(t, ok)
	assert.Equal(t, p, got)
}

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret", "ledger", time.Hour)
	p := Principal{ID: uuid.New(), Role: RoleUser}

	token, err := m.Issue(p)
	require.NoError(t, err)

	got, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager("secret", "ledger", time.Hour)
	p := Principal{ID: uuid.New(), Role: RoleAdmin}

	otherKey, err := NewTokenManager("other", "ledger", time.Hour).Issue(p)
	require.NoError(t, err)

	otherIssuer, err := NewTokenManager("secret", "someone-else", time.Hour).Issue(p)
	require.NoError(t, err)

	expired, err := NewTokenManager("secret", "ledger", -time.Minute).Issue(p)
	require.NoError(t, err)

	badRole, err := NewTokenManager("secret", "ledger", time.Hour).Issue(Principal{ID: p.ID, Role: "root"})
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": p.ID.String(), "role": "admin", "iss": "ledger",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":      "not-a-token",
		"wrong key":    otherKey,
		"wrong issuer": otherIssuer,
		"expired":      expired,
		"unknown role": badRole,
		"alg none":     noneAlg,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := m.Parse(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
