package mocks

import (
	"context"

	"github.com/benx421/ledger/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock of repository.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

// NewMockProductRepository creates a mock that asserts its expectations on cleanup
func NewMockProductRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockProductRepository {
	m := &MockProductRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	ret := m.Called(ctx, product)
	return ret.Error(0)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	ret := m.Called(ctx, id)
	return productOrNil(ret.Get(0)), ret.Error(1)
}

func (m *MockProductRepository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	ret := m.Called(ctx, slug)
	return productOrNil(ret.Get(0)), ret.Error(1)
}

func productOrNil(v any) *models.Product {
	if v == nil {
		return nil
	}
	return v.(*models.Product)
}
