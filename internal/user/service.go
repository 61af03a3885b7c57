package user

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxEmailLength  = 254
	minEmailLength  = 3
	minPasswordLen  = 8
	bcryptCost      = 12
	DefaultCurrency = "USD"
)

var (
	ErrInvalidEmail       = errors.New("email address is not valid")
	ErrEmailLength        = fmt.Errorf("email address must be between %d and %d characters", minEmailLength, maxEmailLength)
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters", minPasswordLen)
	ErrInvalidCurrency    = errors.New("currency must be a three-letter ISO code")
	ErrInternalError      = errors.New("internal server error")
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

type Service interface {
	Register(email, name, password string) (*User, error)
	GetUserByID(userID string) (*User, error)
	EnsureUser(id, email, name string) error
	UpdateCurrency(userID, currency string) error

	// credential operations consumed by the auth service
	GetCredentials(email string) (*Credentials, error)
	RotateHashToken(userID string) (string, error)
	SetTwoFactorSecret(userID, secret string) error
	EnableTwoFactor(userID string) error
}

type service struct {
	repo Repository
}

func NewUserService(repo Repository) Service {
	return &service{repo: repo}
}

func validateEmail(email string) error {
	if len(email) < minEmailLength || len(email) > maxEmailLength {
		return ErrEmailLength
	}
	if err := checkmail.ValidateFormat(email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hashed), err
}

func newHashToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", ErrInternalError
	}
	return hex.EncodeToString(tokenBytes), nil
}

func (s *service) Register(email, name, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLen {
		return nil, ErrPasswordTooShort
	}
	if _, err := s.repo.getUserByEmail(email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, ErrInternalError
	}
	hashToken, err := newHashToken()
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		Currency:     DefaultCurrency,
		passwordHash: passwordHash,
		hashToken:    hashToken,
	}
	if err := s.repo.createUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) GetUserByID(userID string) (*User, error) {
	return s.repo.getUserByID(userID)
}

// EnsureUser upserts the row for an authenticated identity so transaction
// operations can assume the owning user exists.
func (s *service) EnsureUser(id, email, name string) error {
	if id == "" {
		return ErrUserNotFound
	}
	return s.repo.upsertUser(id, email, name)
}

func (s *service) UpdateCurrency(userID, currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if !currencyPattern.MatchString(currency) {
		return ErrInvalidCurrency
	}
	return s.repo.updateCurrency(userID, currency)
}

func (s *service) GetCredentials(email string) (*Credentials, error) {
	return s.repo.getCredentials(strings.ToLower(strings.TrimSpace(email)))
}

// RotateHashToken issues a fresh random token that refresh JWTs are bound
// to, invalidating any previously issued refresh token.
func (s *service) RotateHashToken(userID string) (string, error) {
	hashToken, err := newHashToken()
	if err != nil {
		return "", err
	}
	if err := s.repo.updateHashToken(userID, hashToken); err != nil {
		return "", err
	}
	return hashToken, nil
}

func (s *service) SetTwoFactorSecret(userID, secret string) error {
	return s.repo.setTwoFactorSecret(userID, secret)
}

func (s *service) EnableTwoFactor(userID string) error {
	return s.repo.enableTwoFactor(userID)
}
