package infrastructure

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/expensio/expensio/internal/database"
	"github.com/expensio/expensio/internal/finance/domain"
)

func setupPostgres(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("expensio_test"),
		postgres.WithUsername("expensio"),
		postgres.WithPassword("expensio"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", connStr)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, database.NewDBServiceWithDB(db, zerolog.Nop()).Migrate())
	return db
}

func insertTestUser(t *testing.T, db *sql.DB) string {
	t.Helper()
	userID := uuid.NewString()
	_, err := db.Exec(
		`INSERT INTO users (id, email, name) VALUES ($1, $2, $3)`,
		userID, userID+"@example.com", "Test User",
	)
	require.NoError(t, err)
	return userID
}

func saveTestTransaction(t *testing.T, repo *TransactionRepository, userID, name string, amount float64, date time.Time) domain.Transaction {
	t.Helper()
	tx := domain.Transaction{
		ID:       uuid.NewString(),
		UserID:   userID,
		Name:     name,
		Amount:   amount,
		Category: domain.CategoryFood,
		Date:     date,
	}
	require.NoError(t, repo.Save(&tx))
	return tx
}

func TestTransactionRepository_SaveAndFind(t *testing.T) {
	db := setupPostgres(t)
	repo := NewTransactionRepository(db)
	userID := insertTestUser(t, db)

	date := time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC)
	saved := saveTestTransaction(t, repo, userID, "Starbucks Coffee", 4.50, date)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.False(t, saved.UpdatedAt.IsZero())

	found, err := repo.FindByUser(userID)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, saved.ID, found[0].ID)
	assert.Equal(t, "Starbucks Coffee", found[0].Name)
	assert.InDelta(t, 4.50, found[0].Amount, 0.001)
	assert.Equal(t, domain.CategoryFood, found[0].Category)
}

func TestTransactionRepository_FindInDateRange(t *testing.T) {
	db := setupPostgres(t)
	repo := NewTransactionRepository(db)
	userID := insertTestUser(t, db)

	inside := time.Date(2025, 11, 5, 12, 0, 0, 0, time.UTC)
	outside := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	kept := saveTestTransaction(t, repo, userID, "Lunch", 12, inside)
	saveTestTransaction(t, repo, userID, "December Lunch", 15, outside)

	start := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 11, 30, 23, 59, 59, 0, time.UTC)
	found, err := repo.FindInDateRange(userID, start, end)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, kept.ID, found[0].ID)

	total, err := repo.SumInDateRange(userID, start, end)
	require.NoError(t, err)
	assert.InDelta(t, 12, total, 0.001)
}

func TestTransactionRepository_UpdateAndDeleteAreScoped(t *testing.T) {
	db := setupPostgres(t)
	repo := NewTransactionRepository(db)
	owner := insertTestUser(t, db)
	stranger := insertTestUser(t, db)

	date := time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC)
	tx := saveTestTransaction(t, repo, owner, "Gym", 30, date)

	// another user cannot touch the row
	foreign := tx
	foreign.UserID = stranger
	foreign.Name = "Hijacked"
	rows, err := repo.Update(foreign)
	require.NoError(t, err)
	assert.Zero(t, rows)

	rows, err = repo.Delete(tx.ID, stranger)
	require.NoError(t, err)
	assert.Zero(t, rows)

	tx.Name = "Gym Membership"
	tx.Amount = 35
	rows, err = repo.Update(tx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	found, err := repo.FindByUser(owner)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Gym Membership", found[0].Name)
	assert.InDelta(t, 35, found[0].Amount, 0.001)

	rows, err = repo.Delete(tx.ID, owner)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	found, err = repo.FindByUser(owner)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestTransactionRepository_CategoryConstraint(t *testing.T) {
	db := setupPostgres(t)
	repo := NewTransactionRepository(db)
	userID := insertTestUser(t, db)

	tx := domain.Transaction{
		ID:       uuid.NewString(),
		UserID:   userID,
		Name:     "Mystery",
		Amount:   10,
		Category: domain.Category("Gambling"),
		Date:     time.Now().UTC(),
	}
	assert.Error(t, repo.Save(&tx))
}
