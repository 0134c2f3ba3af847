package mocks

import (
	"context"

	"github.com/benx421/ledger/internal/auth"
	"github.com/benx421/ledger/internal/models"
	"github.com/benx421/ledger/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAccountManager is a mock of service.AccountManager
type MockAccountManager struct {
	mock.Mock
}

// NewMockAccountManager creates a mock that asserts its expectations on cleanup
func NewMockAccountManager(t cleanupT) *MockAccountManager {
	m := &MockAccountManager{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAccountManager) OpenAccount(ctx context.Context, principal auth.Principal, req service.OpenAccountRequest) (*models.Account, error) {
	ret := m.Called(ctx, principal, req)
	return accountOrNil(ret.Get(0)), ret.Error(1)
}

func (m *MockAccountManager) GetAccount(ctx context.Context, principal auth.Principal, accountNumber string) (*models.Account, error) {
	ret := m.Called(ctx, principal, accountNumber)
	return accountOrNil(ret.Get(0)), ret.Error(1)
}

func (m *MockAccountManager) ListAccounts(ctx context.Context, principal auth.Principal) ([]*models.Account, error) {
	ret := m.Called(ctx, principal)
	var accounts []*models.Account
	if v := ret.Get(0); v != nil {
		accounts = v.([]*models.Account)
	}
	return accounts, ret.Error(1)
}

func (m *MockAccountManager) DeactivateAccount(ctx context.Context, principal auth.Principal, accountID uuid.UUID) error {
	ret := m.Called(ctx, principal, accountID)
	return ret.Error(0)
}

// MockHealthChecker is a mock of service.HealthChecker
type MockHealthChecker struct {
	mock.Mock
}

// NewMockHealthChecker creates a mock that asserts its expectations on cleanup
func NewMockHealthChecker(t cleanupT) *MockHealthChecker {
	m := &MockHealthChecker{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockHealthChecker) PingContext(ctx context.Context) error {
	ret := m.Called(ctx)
	return ret.Error(0)
}

func accountOrNil(v any) *models.Account {
	if v == nil {
		return nil
	}
	return v.(*models.Account)
}
