// Package mocks provides testify mocks of the service interfaces.
package mocks

import (
	"context"

	"github.com/benx421/ledger/internal/auth"
	"github.com/benx421/ledger/internal/models"
	"github.com/benx421/ledger/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type cleanupT interface {
	mock.TestingT
	Cleanup(func())
}

// MockTransactionRequester is a mock of service.TransactionRequester
type MockTransactionRequester struct {
	mock.Mock
}

// NewMockTransactionRequester creates a mock that asserts its expectations on cleanup
func NewMockTransactionRequester(t cleanupT) *MockTransactionRequester {
	m := &MockTransactionRequester{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTransactionRequester) RequestTransaction(ctx context.Context, principal auth.Principal, req service.TransactionRequest) (*models.Transaction, error) {
	ret := m.Called(ctx, principal, req)
	return transactionOrNil(ret.Get(0)), ret.Error(1)
}

// MockTransactionReader is a mock of service.TransactionReader
type MockTransactionReader struct {
	mock.Mock
}

// NewMockTransactionReader creates a mock that asserts its expectations on cleanup
func NewMockTransactionReader(t cleanupT) *MockTransactionReader {
	m := &MockTransactionReader{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTransactionReader) GetTransaction(ctx context.Context, principal auth.Principal, reference string) (*models.Transaction, error) {
	ret := m.Called(ctx, principal, reference)
	return transactionOrNil(ret.Get(0)), ret.Error(1)
}

func (m *MockTransactionReader) ListAccountTransactions(ctx context.Context, principal auth.Principal, accountID uuid.UUID, limit int) ([]*models.Transaction, error) {
	ret := m.Called(ctx, principal, accountID, limit)
	var txns []*models.Transaction
	if v := ret.Get(0); v != nil {
		txns = v.([]*models.Transaction)
	}
	return txns, ret.Error(1)
}

// MockSettler is a mock of service.Settler
type MockSettler struct {
	mock.Mock
}

// NewMockSettler creates a mock that asserts its expectations on cleanup
func NewMockSettler(t cleanupT) *MockSettler {
	m := &MockSettler{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSettler) Settle(ctx context.Context, principal auth.Principal, reference string) (*models.Transaction, error) {
	ret := m.Called(ctx, principal, reference)
	return transactionOrNil(ret.Get(0)), ret.Error(1)
}

func transactionOrNil(v any) *models.Transaction {
	if v == nil {
		return nil
	}
	return v.(*models.Transaction)
}
