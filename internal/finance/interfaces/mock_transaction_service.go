package interfaces

import (
	"time"

	"github.com/expensio/expensio/internal/finance/application"
	"github.com/expensio/expensio/internal/finance/domain"
)

// MockTransactionService lets handler tests script each operation.
type MockTransactionService struct {
	CreateFn       func(caller application.Caller, req application.TransactionRequest) (*domain.Transaction, error)
	UpdateFn       func(caller application.Caller, transactionID string, req application.TransactionRequest) (*domain.Transaction, error)
	DeleteFn       func(caller application.Caller, transactionID string) error
	ListFn         func(caller application.Caller) ([]domain.Transaction, error)
	ListInRangeFn  func(caller application.Caller, startDate, endDate time.Time) ([]domain.Transaction, error)
	MonthlyTotalFn func(caller application.Caller, referenceDate time.Time) (float64, error)
}

func (m *MockTransactionService) CreateTransaction(caller application.Caller, req application.TransactionRequest) (*domain.Transaction, error) {
	return m.CreateFn(caller, req)
}

func (m *MockTransactionService) UpdateTransaction(caller application.Caller, transactionID string, req application.TransactionRequest) (*domain.Transaction, error) {
	return m.UpdateFn(caller, transactionID, req)
}

func (m *MockTransactionService) DeleteTransaction(caller application.Caller, transactionID string) error {
	return m.DeleteFn(caller, transactionID)
}

func (m *MockTransactionService) GetUserTransactions(caller application.Caller) ([]domain.Transaction, error) {
	return m.ListFn(caller)
}

func (m *MockTransactionService) GetTransactionsInDateRange(caller application.Caller, startDate, endDate time.Time) ([]domain.Transaction, error) {
	return m.ListInRangeFn(caller, startDate, endDate)
}

func (m *MockTransactionService) GetMonthlyTotal(caller application.Caller, referenceDate time.Time) (float64, error) {
	return m.MonthlyTotalFn(caller, referenceDate)
}
