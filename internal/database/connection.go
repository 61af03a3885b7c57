package database

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

const (
	maxOpenConns    = 50
	maxIdleConns    = 25
	connMaxLifetime = 5 * time.Minute
)

// DBService owns the Postgres connection pool shared by the repositories.
type DBService struct {
	DB     *sql.DB
	logger zerolog.Logger
}

// NewDBService opens a pooled connection using DB_CONNECTION_STRING and
// verifies it with a ping.
func NewDBService(logger zerolog.Logger) (*DBService, error) {
	connStr := os.Getenv("DB_CONNECTION_STRING")
	if connStr == "" {
		return nil, fmt.Errorf("missing DB_CONNECTION_STRING in environment variables")
	}

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("could not open db connection: %v", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to the database: %v", err)
	}

	return &DBService{DB: db, logger: logger}, nil
}

// NewDBServiceWithDB wraps an already open connection, used by tests that
// provision their own database.
func NewDBServiceWithDB(db *sql.DB, logger zerolog.Logger) *DBService {
	return &DBService{DB: db, logger: logger}
}

// Health pings the database and reports its status for the readiness probe.
func (s *DBService) Health() map[string]string {
	stats := make(map[string]string)

	if err := s.DB.Ping(); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"
	return stats
}

func (s *DBService) Close() error {
	s.logger.Info().Msg("closing database connection")
	return s.DB.Close()
}
