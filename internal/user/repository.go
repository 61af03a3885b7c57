package user

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

type Repository interface {
	createUser(user *User) error
	getUserByID(id string) (*User, error)
	getUserByEmail(email string) (*User, error)
	upsertUser(id, email, name string) error
	updateCurrency(userID, currency string) error
	getCredentials(email string) (*Credentials, error)
	updateHashToken(userID, hashToken string) error
	setTwoFactorSecret(userID, secret string) error
	enableTwoFactor(userID string) error
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// set at registration, never serialized
	passwordHash string
	hashToken    string
}

// Credentials are the auth-only columns of the users table; they never
// leave the auth flow.
type Credentials struct {
	UserID           string
	Email            string
	PasswordHash     string
	HashToken        string
	TwoFactorEnabled bool
	TwoFactorSecret  string
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) Repository {
	return &userRepository{db: db}
}

func (r *userRepository) createUser(user *User) error {
	err := r.db.QueryRow(`
		INSERT INTO users (id, email, name, currency, password_hash, hash_token)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, user.ID, user.Email, user.Name, user.Currency, user.passwordHash, user.hashToken).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("could not create user: %v", err)
	}
	return nil
}

func (r *userRepository) getUserByID(id string) (*User, error) {
	var user User
	err := r.db.QueryRow(`
		SELECT id, email, name, currency, created_at, updated_at
		FROM users WHERE id = $1
	`, id).Scan(&user.ID, &user.Email, &user.Name, &user.Currency, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not find user: %v", err)
	}
	return &user, nil
}

func (r *userRepository) getUserByEmail(email string) (*User, error) {
	var user User
	err := r.db.QueryRow(`
		SELECT id, email, name, currency, created_at, updated_at
		FROM users WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &user.Name, &user.Currency, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not find user: %v", err)
	}
	return &user, nil
}

// upsertUser lazily creates the user row the first time an id is seen and
// refreshes the profile fields from the auth claims on every hit.
func (r *userRepository) upsertUser(id, email, name string) error {
	_, err := r.db.Exec(`
		INSERT INTO users (id, email, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email, name = EXCLUDED.name, updated_at = NOW()
	`, id, email, name)
	if err != nil {
		return fmt.Errorf("could not upsert user: %v", err)
	}
	return nil
}

func (r *userRepository) updateCurrency(userID, currency string) error {
	result, err := r.db.Exec(`
		UPDATE users SET currency = $1, updated_at = NOW() WHERE id = $2
	`, currency, userID)
	if err != nil {
		return fmt.Errorf("could not update currency: %v", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) getCredentials(email string) (*Credentials, error) {
	var credentials Credentials
	var secret sql.NullString
	err := r.db.QueryRow(`
		SELECT id, email, password_hash, hash_token, two_factor_enabled, two_factor_secret
		FROM users WHERE email = $1
	`, email).Scan(&credentials.UserID, &credentials.Email, &credentials.PasswordHash,
		&credentials.HashToken, &credentials.TwoFactorEnabled, &secret)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not find user credentials: %v", err)
	}
	credentials.TwoFactorSecret = secret.String
	return &credentials, nil
}

func (r *userRepository) updateHashToken(userID, hashToken string) error {
	_, err := r.db.Exec(`
		UPDATE users SET hash_token = $1, updated_at = NOW() WHERE id = $2
	`, hashToken, userID)
	if err != nil {
		return fmt.Errorf("could not update hash token: %v", err)
	}
	return nil
}

func (r *userRepository) setTwoFactorSecret(userID, secret string) error {
	_, err := r.db.Exec(`
		UPDATE users SET two_factor_secret = $1, updated_at = NOW() WHERE id = $2
	`, secret, userID)
	if err != nil {
		return fmt.Errorf("could not store two-factor secret: %v", err)
	}
	return nil
}

func (r *userRepository) enableTwoFactor(userID string) error {
	_, err := r.db.Exec(`
		UPDATE users SET two_factor_enabled = TRUE, updated_at = NOW() WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("could not enable two-factor: %v", err)
	}
	return nil
}
