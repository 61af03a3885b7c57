package infrastructure

import (
	"time"

	"github.com/expensio/expensio/internal/finance/domain"
)

// MockTransactionRepository is an in-memory repository used by service tests.
type MockTransactionRepository struct {
	Transactions []domain.Transaction
	SaveErr      error
}

func (m *MockTransactionRepository) Save(transaction *domain.Transaction) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	now := time.Now()
	transaction.CreatedAt = now
	transaction.UpdatedAt = now
	m.Transactions = append(m.Transactions, *transaction)
	return nil
}

func (m *MockTransactionRepository) FindByUser(userID string) ([]domain.Transaction, error) {
	var owned []domain.Transaction
	for _, transaction := range m.Transactions {
		if transaction.UserID == userID {
			owned = append(owned, transaction)
		}
	}
	// date descending, matching the SQL ordering
	for i := 0; i < len(owned); i++ {
		for j := i + 1; j < len(owned); j++ {
			if owned[j].Date.After(owned[i].Date) {
				owned[i], owned[j] = owned[j], owned[i]
			}
		}
	}
	return owned, nil
}

func (m *MockTransactionRepository) FindInDateRange(userID string, startDate, endDate time.Time) ([]domain.Transaction, error) {
	var filtered []domain.Transaction
	for _, transaction := range m.Transactions {
		if transaction.UserID != userID {
			continue
		}
		if !transaction.Date.Before(startDate) && !transaction.Date.After(endDate) {
			filtered = append(filtered, transaction)
		}
	}
	return filtered, nil
}

func (m *MockTransactionRepository) Update(transaction domain.Transaction) (int64, error) {
	for i, existing := range m.Transactions {
		if existing.ID == transaction.ID && existing.UserID == transaction.UserID {
			transaction.CreatedAt = existing.CreatedAt
			transaction.UpdatedAt = time.Now()
			m.Transactions[i] = transaction
			return 1, nil
		}
	}
	return 0, nil
}

func (m *MockTransactionRepository) Delete(transactionID, userID string) (int64, error) {
	for i, existing := range m.Transactions {
		if existing.ID == transactionID && existing.UserID == userID {
			m.Transactions = append(m.Transactions[:i], m.Transactions[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (m *MockTransactionRepository) SumInDateRange(userID string, startDate, endDate time.Time) (float64, error) {
	filtered, _ := m.FindInDateRange(userID, startDate, endDate)
	var total float64
	for _, transaction := range filtered {
		total += transaction.Amount
	}
	return total, nil
}

// MockListCache records invalidations so tests can assert the cache hook
// fires on every mutation.
type MockListCache struct {
	Entries       map[string][]domain.Transaction
	Invalidations []string
}

func NewMockListCache() *MockListCache {
	return &MockListCache{Entries: make(map[string][]domain.Transaction)}
}

func (m *MockListCache) Get(userID string) ([]domain.Transaction, bool) {
	transactions, ok := m.Entries[userID]
	return transactions, ok
}

func (m *MockListCache) Set(userID string, transactions []domain.Transaction) {
	m.Entries[userID] = transactions
}

func (m *MockListCache) InvalidateUser(userID string) {
	delete(m.Entries, userID)
	m.Invalidations = append(m.Invalidations, userID)
}
