package domain

import (
	"testing"
	"time"

	financeErrors "github.com/expensio/expensio/internal/finance/errors"
	"github.com/stretchr/testify/assert"
)

func validTransaction() Transaction {
	return Transaction{
		ID:       "tx-1",
		UserID:   "user-1",
		Name:     "Starbucks Coffee",
		Amount:   4.5,
		Category: CategoryFood,
		Date:     time.Date(2024, time.November, 3, 0, 0, 0, 0, time.UTC),
	}
}

func TestValidate_OK(t *testing.T) {
	tx := validTransaction()
	assert.NoError(t, tx.Validate())
}

func TestValidate_EmptyName(t *testing.T) {
	tx := validTransaction()
	tx.Name = "   "
	err := tx.Validate()
	assert.Error(t, err)
	assert.True(t, financeErrors.IsValidationError(err))
}

func TestValidate_NonPositiveAmount(t *testing.T) {
	for _, amount := range []float64{0, -100} {
		tx := validTransaction()
		tx.Amount = amount
		err := tx.Validate()
		assert.Error(t, err)
		assert.True(t, financeErrors.IsValidationError(err))
	}
}

func TestValidate_UnknownCategory(t *testing.T) {
	tx := validTransaction()
	tx.Category = "Gambling"
	err := tx.Validate()
	assert.Error(t, err)
	assert.True(t, financeErrors.IsValidationError(err))
	assert.Contains(t, err.Error(), "Gambling")
}

func TestIsValidCategory(t *testing.T) {
	for _, c := range AllCategories {
		assert.True(t, IsValidCategory(string(c)))
	}
	assert.False(t, IsValidCategory("food"))
	assert.False(t, IsValidCategory(""))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"4.50", 4.5, false},
		{"4,50", 4.5, false},
		{" 100 ", 100, false},
		{"0", 0, true},
		{"-100", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tc := range tests {
		got, err := ParseAmount(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
			assert.True(t, financeErrors.IsValidationError(err))
		} else {
			assert.NoError(t, err, "input %q", tc.in)
			assert.Equal(t, tc.want, got)
		}
	}
}
