package mocks

import (
	"context"

	"github.com/benx421/ledger/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockIdempotencyRepository is a mock of repository.IdempotencyRepository
type MockIdempotencyRepository struct {
	mock.Mock
}

// NewMockIdempotencyRepository creates a mock that asserts its expectations on cleanup
func NewMockIdempotencyRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockIdempotencyRepository {
	m := &MockIdempotencyRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockIdempotencyRepository) Get(ctx context.Context, key, requestPath string) (*models.IdempotencyKey, error) {
	ret := m.Called(ctx, key, requestPath)
	var idemKey *models.IdempotencyKey
	if v := ret.Get(0); v != nil {
		idemKey = v.(*models.IdempotencyKey)
	}
	return idemKey, ret.Error(1)
}

func (m *MockIdempotencyRepository) Store(ctx context.Context, idemKey *models.IdempotencyKey) error {
	ret := m.Called(ctx, idemKey)
	return ret.Error(0)
}
