package application

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/expensio/expensio/internal/finance/domain"
	financeErrors "github.com/expensio/expensio/internal/finance/errors"
)

// Caller is the authenticated identity resolved by the auth middleware.
// Profile fields travel with it so the user row can be lazily upserted.
type Caller struct {
	ID    string
	Email string
	Name  string
}

// UserProvisioner upserts the user row the first time a not-yet-seen
// identity invokes any transaction operation.
type UserProvisioner interface {
	EnsureUser(id, email, name string) error
}

// ListCache caches per-user transaction lists. Mutations invalidate the
// caller's entry so the next read reflects the change. Cache failures are
// never allowed to fail the operation.
type ListCache interface {
	Get(userID string) ([]domain.Transaction, bool)
	Set(userID string, transactions []domain.Transaction)
	InvalidateUser(userID string)
}

type TransactionRequest struct {
	Name       string
	AmountText string
	Category   string
	Date       time.Time
}

type TransactionService struct {
	repo   domain.TransactionRepository
	users  UserProvisioner
	cache  ListCache
	logger zerolog.Logger
}

func NewTransactionService(repo domain.TransactionRepository, users UserProvisioner, cache ListCache, logger zerolog.Logger) *TransactionService {
	return &TransactionService{repo: repo, users: users, cache: cache, logger: logger}
}

// resolveCaller enforces the identity requirement shared by every operation
// and lazily provisions the user row.
func (s *TransactionService) resolveCaller(caller Caller) error {
	if caller.ID == "" {
		return financeErrors.ErrUnauthorized
	}
	if err := s.users.EnsureUser(caller.ID, caller.Email, caller.Name); err != nil {
		return err
	}
	return nil
}

func (s *TransactionService) buildTransaction(caller Caller, req TransactionRequest) (*domain.Transaction, error) {
	amount, err := domain.ParseAmount(req.AmountText)
	if err != nil {
		return nil, err
	}
	if !domain.IsValidCategory(req.Category) {
		return nil, financeErrors.NewValidationErrorf("Invalid category: %q", req.Category)
	}

	transaction := &domain.Transaction{
		UserID:   caller.ID,
		Name:     strings.TrimSpace(req.Name),
		Amount:   amount,
		Category: domain.Category(req.Category),
		Date:     req.Date,
	}
	transaction.RoundToTwoDecimalPlaces()
	if err := transaction.Validate(); err != nil {
		return nil, err
	}
	return transaction, nil
}

func (s *TransactionService) CreateTransaction(caller Caller, req TransactionRequest) (*domain.Transaction, error) {
	if err := s.resolveCaller(caller); err != nil {
		return nil, err
	}
	transaction, err := s.buildTransaction(caller, req)
	if err != nil {
		return nil, err
	}
	transaction.ID = uuid.NewString()

	if err := s.repo.Save(transaction); err != nil {
		return nil, err
	}
	s.cache.InvalidateUser(caller.ID)
	s.logger.Info().Str("transaction_id", transaction.ID).Str("category", string(transaction.Category)).Msg("transaction created")
	return transaction, nil
}

func (s *TransactionService) UpdateTransaction(caller Caller, transactionID string, req TransactionRequest) (*domain.Transaction, error) {
	if err := s.resolveCaller(caller); err != nil {
		return nil, err
	}
	transaction, err := s.buildTransaction(caller, req)
	if err != nil {
		return nil, err
	}
	transaction.ID = transactionID

	affected, err := s.repo.Update(*transaction)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, financeErrors.NewNotFoundError("Transaction not found")
	}
	s.cache.InvalidateUser(caller.ID)
	return transaction, nil
}

func (s *TransactionService) DeleteTransaction(caller Caller, transactionID string) error {
	if err := s.resolveCaller(caller); err != nil {
		return err
	}
	affected, err := s.repo.Delete(transactionID, caller.ID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return financeErrors.NewNotFoundError("Transaction not found")
	}
	s.cache.InvalidateUser(caller.ID)
	return nil
}

// GetUserTransactions returns all transactions owned by the caller, newest
// expense date first. Reads go through the list cache.
func (s *TransactionService) GetUserTransactions(caller Caller) ([]domain.Transaction, error) {
	if err := s.resolveCaller(caller); err != nil {
		return nil, err
	}
	if cached, ok := s.cache.Get(caller.ID); ok {
		return cached, nil
	}
	transactions, err := s.repo.FindByUser(caller.ID)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	s.cache.Set(caller.ID, transactions)
	return transactions, nil
}

// GetTransactionsInDateRange normalizes the range to whole calendar days
// (start at 00:00:00, end at 23:59:59.999) before the inclusive query.
func (s *TransactionService) GetTransactionsInDateRange(caller Caller, startDate, endDate time.Time) ([]domain.Transaction, error) {
	if err := s.resolveCaller(caller); err != nil {
		return nil, err
	}
	start, end := NormalizeDayRange(startDate, endDate)
	transactions, err := s.repo.FindInDateRange(caller.ID, start, end)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	return transactions, nil
}

// GetMonthlyTotal sums the caller's expenses over the calendar month
// containing referenceDate. A month with no transactions yields 0.
func (s *TransactionService) GetMonthlyTotal(caller Caller, referenceDate time.Time) (float64, error) {
	if err := s.resolveCaller(caller); err != nil {
		return 0, err
	}
	if referenceDate.IsZero() {
		referenceDate = time.Now()
	}
	monthStart := time.Date(referenceDate.Year(), referenceDate.Month(), 1, 0, 0, 0, 0, referenceDate.Location())
	monthEnd := monthStart.AddDate(0, 1, -1)
	start, end := NormalizeDayRange(monthStart, monthEnd)
	return s.repo.SumInDateRange(caller.ID, start, end)
}

// NormalizeDayRange widens a range to full calendar days so that stored
// time-of-day components never exclude a transaction on a boundary date.
func NormalizeDayRange(startDate, endDate time.Time) (time.Time, time.Time) {
	start := time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, startDate.Location())
	end := time.Date(endDate.Year(), endDate.Month(), endDate.Day(), 23, 59, 59, 999000000, endDate.Location())
	return start, end
}

