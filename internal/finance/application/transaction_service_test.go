package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/expensio/expensio/internal/finance/domain"
	financeErrors "github.com/expensio/expensio/internal/finance/errors"
	"github.com/expensio/expensio/internal/finance/infrastructure"
	"github.com/expensio/expensio/internal/logger"
)

type mockUserProvisioner struct {
	EnsuredIDs []string
}

func (m *mockUserProvisioner) EnsureUser(id, email, name string) error {
	m.EnsuredIDs = append(m.EnsuredIDs, id)
	return nil
}

func newTestService(repo *infrastructure.MockTransactionRepository) (*TransactionService, *infrastructure.MockListCache, *mockUserProvisioner) {
	cache := infrastructure.NewMockListCache()
	users := &mockUserProvisioner{}
	service := NewTransactionService(repo, users, cache, logger.NewWithWriter(nil))
	return service, cache, users
}

func testCaller() Caller {
	return Caller{ID: "user-1", Email: "user@example.com", Name: "Test User"}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestCreateTransaction_ThenListIncludesNormalizedFields(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{}
	service, _, users := newTestService(repo)

	created, err := service.CreateTransaction(testCaller(), TransactionRequest{
		Name:       "  Starbucks Coffee  ",
		AmountText: "4.50",
		Category:   "Food",
		Date:       date(2024, time.November, 3),
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Starbucks Coffee", created.Name)
	assert.Equal(t, 4.5, created.Amount)
	assert.Equal(t, domain.CategoryFood, created.Category)
	assert.Contains(t, users.EnsuredIDs, "user-1")

	listed, err := service.GetUserTransactions(testCaller())
	assert.NoError(t, err)
	assert.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
	assert.Equal(t, "Starbucks Coffee", listed[0].Name)
	assert.Equal(t, 4.5, listed[0].Amount)
}

func TestCreateTransaction_InvalidAmountPersistsNothing(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{}
	service, _, _ := newTestService(repo)

	for _, amountText := range []string{"-100", "0", "abc", "", "NaN"} {
		_, err := service.CreateTransaction(testCaller(), TransactionRequest{
			Name:       "Rent",
			AmountText: amountText,
			Category:   "Shopping",
			Date:       date(2024, time.November, 4),
		})
		assert.Error(t, err, "amount %q", amountText)
		assert.True(t, financeErrors.IsValidationError(err))
	}
	assert.Empty(t, repo.Transactions)
}

func TestCreateTransaction_UnknownCategoryPersistsNothing(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{}
	service, _, _ := newTestService(repo)

	_, err := service.CreateTransaction(testCaller(), TransactionRequest{
		Name:       "Casino",
		AmountText: "20",
		Category:   "Gambling",
		Date:       date(2024, time.November, 4),
	})
	assert.Error(t, err)
	assert.True(t, financeErrors.IsValidationError(err))
	assert.Contains(t, err.Error(), "Gambling")
	assert.Empty(t, repo.Transactions)
}

func TestCreateTransaction_NoCallerIdentity(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{}
	service, _, _ := newTestService(repo)

	_, err := service.CreateTransaction(Caller{}, TransactionRequest{
		Name:       "Coffee",
		AmountText: "3",
		Category:   "Food",
		Date:       date(2024, time.November, 3),
	})
	assert.ErrorIs(t, err, financeErrors.ErrUnauthorized)
	assert.Empty(t, repo.Transactions)
}

func TestUpdateTransaction_OtherUsersRowUntouched(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{
		Transactions: []domain.Transaction{
			{ID: "tx-1", UserID: "someone-else", Name: "Their lunch", Amount: 12, Category: domain.CategoryFood, Date: date(2024, time.November, 1)},
		},
	}
	service, _, _ := newTestService(repo)

	_, err := service.UpdateTransaction(testCaller(), "tx-1", TransactionRequest{
		Name:       "Hijacked",
		AmountText: "1",
		Category:   "Other",
		Date:       date(2024, time.November, 2),
	})
	assert.Error(t, err)
	assert.True(t, financeErrors.IsNotFoundError(err))
	assert.Equal(t, "Their lunch", repo.Transactions[0].Name)
}

func TestDeleteTransaction_OtherUsersRowUntouched(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{
		Transactions: []domain.Transaction{
			{ID: "tx-1", UserID: "someone-else", Name: "Their lunch", Amount: 12, Category: domain.CategoryFood, Date: date(2024, time.November, 1)},
		},
	}
	service, _, _ := newTestService(repo)

	err := service.DeleteTransaction(testCaller(), "tx-1")
	assert.Error(t, err)
	assert.True(t, financeErrors.IsNotFoundError(err))
	assert.Len(t, repo.Transactions, 1)
}

func TestMutationsInvalidateListCache(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{}
	service, cache, _ := newTestService(repo)

	created, err := service.CreateTransaction(testCaller(), TransactionRequest{
		Name: "Coffee", AmountText: "3", Category: "Food", Date: date(2024, time.November, 3),
	})
	assert.NoError(t, err)

	_, err = service.UpdateTransaction(testCaller(), created.ID, TransactionRequest{
		Name: "Coffee", AmountText: "3.50", Category: "Food", Date: date(2024, time.November, 3),
	})
	assert.NoError(t, err)

	assert.NoError(t, service.DeleteTransaction(testCaller(), created.ID))
	assert.Equal(t, []string{"user-1", "user-1", "user-1"}, cache.Invalidations)
}

func TestGetMonthlyTotal_EmptyMonthIsZero(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{}
	service, _, _ := newTestService(repo)

	total, err := service.GetMonthlyTotal(testCaller(), date(2024, time.February, 15))
	assert.NoError(t, err)
	assert.Equal(t, float64(0), total)
}

func TestGetMonthlyTotal_SumsOnlyReferenceMonth(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{
		Transactions: []domain.Transaction{
			{ID: "a", UserID: "user-1", Amount: 4.5, Category: domain.CategoryFood, Date: date(2024, time.November, 3)},
			{ID: "b", UserID: "user-1", Amount: 10, Category: domain.CategoryFood, Date: date(2024, time.November, 30)},
			{ID: "c", UserID: "user-1", Amount: 99, Category: domain.CategoryFood, Date: date(2024, time.October, 31)},
			{ID: "d", UserID: "user-1", Amount: 99, Category: domain.CategoryFood, Date: date(2024, time.December, 1)},
			{ID: "e", UserID: "other", Amount: 50, Category: domain.CategoryFood, Date: date(2024, time.November, 10)},
		},
	}
	service, _, _ := newTestService(repo)

	total, err := service.GetMonthlyTotal(testCaller(), date(2024, time.November, 1))
	assert.NoError(t, err)
	assert.Equal(t, 14.5, total)
}

func TestGetTransactionsInDateRange_SingleDayIgnoresTimeOfDay(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{
		Transactions: []domain.Transaction{
			{ID: "morning", UserID: "user-1", Amount: 1, Category: domain.CategoryFood,
				Date: time.Date(2024, time.November, 3, 0, 15, 0, 0, time.UTC)},
			{ID: "night", UserID: "user-1", Amount: 2, Category: domain.CategoryFood,
				Date: time.Date(2024, time.November, 3, 23, 45, 0, 0, time.UTC)},
			{ID: "next-day", UserID: "user-1", Amount: 3, Category: domain.CategoryFood,
				Date: time.Date(2024, time.November, 4, 0, 0, 1, 0, time.UTC)},
		},
	}
	service, _, _ := newTestService(repo)

	day := time.Date(2024, time.November, 3, 13, 0, 0, 0, time.UTC)
	transactions, err := service.GetTransactionsInDateRange(testCaller(), day, day)
	assert.NoError(t, err)
	assert.Len(t, transactions, 2)
	ids := []string{transactions[0].ID, transactions[1].ID}
	assert.Contains(t, ids, "morning")
	assert.Contains(t, ids, "night")
}

// Scenario from the reporting walkthrough: one valid create, one rejected,
// monthly total reflects only the persisted row.
func TestCreateScenario_MonthlyTotalAfterRejectedCreate(t *testing.T) {
	repo := &infrastructure.MockTransactionRepository{}
	service, _, _ := newTestService(repo)

	created, err := service.CreateTransaction(testCaller(), TransactionRequest{
		Name: "Starbucks Coffee", AmountText: "4.50", Category: "Food", Date: date(2024, time.November, 3),
	})
	assert.NoError(t, err)
	assert.Equal(t, 4.5, created.Amount)

	_, err = service.CreateTransaction(testCaller(), TransactionRequest{
		Name: "Rent", AmountText: "-100", Category: "Shopping", Date: date(2024, time.November, 4),
	})
	assert.Error(t, err)
	assert.True(t, financeErrors.IsValidationError(err))
	assert.Len(t, repo.Transactions, 1)

	total, err := service.GetMonthlyTotal(testCaller(), date(2024, time.November, 1))
	assert.NoError(t, err)
	assert.Equal(t, 4.5, total)
}
