// Package mocks provides testify mocks of the repository interfaces.
package mocks

import (
	"context"

	"github.com/benx421/ledger/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock of repository.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

// NewMockAccountRepository creates a mock that asserts its expectations on cleanup
func NewMockAccountRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAccountRepository {
	m := &MockAccountRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	ret := m.Called(ctx, account)
	return ret.Error(0)
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	ret := m.Called(ctx, id)
	return accountOrNil(ret.Get(0)), ret.Error(1)
}

func (m *MockAccountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	ret := m.Called(ctx, id)
	return accountOrNil(ret.Get(0)), ret.Error(1)
}

func (m *MockAccountRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	ret := m.Called(ctx, accountNumber)
	return accountOrNil(ret.Get(0)), ret.Error(1)
}

func (m *MockAccountRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Account, error) {
	ret := m.Called(ctx, ownerID)
	var accounts []*models.Account
	if v := ret.Get(0); v != nil {
		accounts = v.([]*models.Account)
	}
	return accounts, ret.Error(1)
}

func (m *MockAccountRepository) AdjustBalance(ctx context.Context, accountID uuid.UUID, delta int64, actorID uuid.UUID) error {
	ret := m.Called(ctx, accountID, delta, actorID)
	return ret.Error(0)
}

func (m *MockAccountRepository) UpdateStatus(ctx context.Context, accountID uuid.UUID, status models.AccountStatus, actorID uuid.UUID) error {
	ret := m.Called(ctx, accountID, status, actorID)
	return ret.Error(0)
}

func accountOrNil(v any) *models.Account {
	if v == nil {
		return nil
	}
	return v.(*models.Account)
}
