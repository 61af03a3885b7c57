package domain

import (
	"math"
	"strconv"
	"strings"
	"time"

	financeErrors "github.com/expensio/expensio/internal/finance/errors"
)

type TransactionRepository interface {
	Save(transaction *Transaction) error
	FindByUser(userID string) ([]Transaction, error)
	FindInDateRange(userID string, startDate, endDate time.Time) ([]Transaction, error)
	Update(transaction Transaction) (int64, error)
	Delete(transactionID, userID string) (int64, error)
	SumInDateRange(userID string, startDate, endDate time.Time) (float64, error)
}

type Transaction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	Category  Category  `json:"category"`
	Date      time.Time `json:"date"` // calendar date of the expense, not the record time
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return financeErrors.ErrEmptyName
	}
	if t.Amount <= 0 || math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
		return financeErrors.ErrInvalidAmount
	}
	if !IsValidCategory(string(t.Category)) {
		return financeErrors.NewValidationErrorf("Invalid category: %q", t.Category)
	}
	if t.Date.IsZero() {
		return financeErrors.NewValidationError("Date must be provided")
	}
	return nil
}

func (t *Transaction) RoundToTwoDecimalPlaces() {
	t.Amount = math.Round(t.Amount*100) / 100
}

// ParseAmount converts user-entered amount text to a positive decimal.
// Both dot and comma decimal separators are accepted.
func ParseAmount(amountText string) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(amountText), ",", ".")
	if s == "" {
		return 0, financeErrors.ErrInvalidAmount
	}
	amount, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, financeErrors.ErrInvalidAmount
	}
	if amount <= 0 {
		return 0, financeErrors.ErrInvalidAmount
	}
	return amount, nil
}
