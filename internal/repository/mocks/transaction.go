package mocks

import (
	"context"

	"github.com/benx421/ledger/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockTransactionRepository is a mock of repository.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

// NewMockTransactionRepository creates a mock that asserts its expectations on cleanup
func NewMockTransactionRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTransactionRepository {
	m := &MockTransactionRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	ret := m.Called(ctx, txn)
	return ret.Error(0)
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	ret := m.Called(ctx, id)
	return transactionOrNil(ret.Get(0)), ret.Error(1)
}

func (m *MockTransactionRepository) FindByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	ret := m.Called(ctx, reference)
	return transactionOrNil(ret.Get(0)), ret.Error(1)
}

func (m *MockTransactionRepository) FindByReferenceForUpdate(ctx context.Context, reference string) (*models.Transaction, error) {
	ret := m.Called(ctx, reference)
	return transactionOrNil(ret.Get(0)), ret.Error(1)
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.Transaction, error) {
	ret := m.Called(ctx, accountID, limit)
	var txns []*models.Transaction
	if v := ret.Get(0); v != nil {
		txns = v.([]*models.Transaction)
	}
	return txns, ret.Error(1)
}

func (m *MockTransactionRepository) MarkSettled(ctx context.Context, txn *models.Transaction) error {
	ret := m.Called(ctx, txn)
	return ret.Error(0)
}

func transactionOrNil(v any) *models.Transaction {
	if v == nil {
		return nil
	}
	return v.(*models.Transaction)
}
