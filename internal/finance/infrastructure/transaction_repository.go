package infrastructure

import (
	"database/sql"
	"time"

	"github.com/expensio/expensio/internal/finance/domain"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Save(transaction *domain.Transaction) error {
	return r.db.QueryRow(
		`INSERT INTO transactions (id, user_id, name, amount, category, date)
         VALUES ($1, $2, $3, $4, $5, $6)
         RETURNING created_at, updated_at`,
		transaction.ID, transaction.UserID, transaction.Name, transaction.Amount,
		transaction.Category, transaction.Date,
	).Scan(&transaction.CreatedAt, &transaction.UpdatedAt)
}

func (r *TransactionRepository) FindByUser(userID string) ([]domain.Transaction, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, name, amount, category, date, created_at, updated_at
         FROM transactions
         WHERE user_id = $1
         ORDER BY date DESC, created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *TransactionRepository) FindInDateRange(userID string, startDate, endDate time.Time) ([]domain.Transaction, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, name, amount, category, date, created_at, updated_at
         FROM transactions
         WHERE user_id = $1 AND date BETWEEN $2 AND $3
         ORDER BY date DESC, created_at DESC`, userID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// Update matches both id and owner; zero rows affected means the target is
// missing or belongs to somebody else.
func (r *TransactionRepository) Update(transaction domain.Transaction) (int64, error) {
	result, err := r.db.Exec(
		`UPDATE transactions
         SET name = $1, amount = $2, category = $3, date = $4, updated_at = NOW()
         WHERE id = $5 AND user_id = $6`,
		transaction.Name, transaction.Amount, transaction.Category, transaction.Date,
		transaction.ID, transaction.UserID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *TransactionRepository) Delete(transactionID, userID string) (int64, error) {
	result, err := r.db.Exec(
		`DELETE FROM transactions WHERE id = $1 AND user_id = $2`,
		transactionID, userID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *TransactionRepository) SumInDateRange(userID string, startDate, endDate time.Time) (float64, error) {
	var total float64
	err := r.db.QueryRow(
		`SELECT COALESCE(SUM(amount), 0)
         FROM transactions
         WHERE user_id = $1 AND date BETWEEN $2 AND $3`,
		userID, startDate, endDate,
	).Scan(&total)
	return total, err
}

func scanTransactions(rows *sql.Rows) ([]domain.Transaction, error) {
	var transactions []domain.Transaction
	for rows.Next() {
		var transaction domain.Transaction
		if err := rows.Scan(&transaction.ID, &transaction.UserID, &transaction.Name,
			&transaction.Amount, &transaction.Category, &transaction.Date,
			&transaction.CreatedAt, &transaction.UpdatedAt); err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	return transactions, rows.Err()
}
