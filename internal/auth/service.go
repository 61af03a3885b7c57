package auth

import (
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/expensio/expensio/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidTwoFactor   = errors.New("invalid two-factor code")
	ErrTwoFactorNotSetUp  = errors.New("two-factor authentication is not set up")
	ErrUserNotFound       = errors.New("user not found")
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"-"`
}

// LoginResult either carries tokens directly or a short-lived session token
// the client exchanges together with a two-factor code.
type LoginResult struct {
	RequiresTwoFactor bool
	SessionToken      string
	Tokens            *TokenPair
	User              *user.User
}

type Service interface {
	Login(email, password string) (*LoginResult, error)
	VerifyTwoFactor(sessionToken, code string) (*TokenPair, *user.User, error)
	RefreshAccessToken(refreshToken string) (string, error)
	Logout(userID string) error
	BeginTwoFactorSetup(userID string) (string, error)
	ConfirmTwoFactorSetup(userID, code string) error
	Middleware() *Middleware
}

type service struct {
	userService    user.Service
	sessionManager SessionManagerInterface
	jwtManager     JWTManagerInterface
	authenticator  AuthenticatorInterface
	logger         zerolog.Logger
}

func NewAuthService(
	userService user.Service,
	sessionManager SessionManagerInterface,
	jwtManager JWTManagerInterface,
	authenticator AuthenticatorInterface,
	logger zerolog.Logger,
) Service {
	return &service{
		userService:    userService,
		sessionManager: sessionManager,
		jwtManager:     jwtManager,
		authenticator:  authenticator,
		logger:         logger,
	}
}

func (s *service) Login(email, password string) (*LoginResult, error) {
	credentials, err := s.userService.GetCredentials(email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(credentials.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	if credentials.TwoFactorEnabled {
		sessionToken, err := s.sessionManager.GenerateSessionToken(credentials.UserID, defaultSessionTokenDuration)
		if err != nil {
			return nil, err
		}
		return &LoginResult{RequiresTwoFactor: true, SessionToken: sessionToken}, nil
	}

	tokens, profile, err := s.issueTokens(credentials.UserID, credentials.HashToken)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", credentials.UserID).Msg("user logged in")
	return &LoginResult{Tokens: tokens, User: profile}, nil
}

func (s *service) VerifyTwoFactor(sessionToken, code string) (*TokenPair, *user.User, error) {
	userID, err := s.sessionManager.VerifySessionToken(sessionToken)
	if err != nil {
		return nil, nil, err
	}

	profile, err := s.userService.GetUserByID(userID)
	if err != nil {
		return nil, nil, ErrUserNotFound
	}
	credentials, err := s.userService.GetCredentials(profile.Email)
	if err != nil {
		return nil, nil, ErrUserNotFound
	}
	if credentials.TwoFactorSecret == "" || !s.authenticator.VerifyCode(credentials.TwoFactorSecret, code) {
		return nil, nil, ErrInvalidTwoFactor
	}

	s.sessionManager.DeleteSessionToken(sessionToken)

	tokens, profile, err := s.issueTokens(userID, credentials.HashToken)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info().Str("user_id", userID).Msg("user logged in with two-factor")
	return tokens, profile, nil
}

func (s *service) issueTokens(userID, hashToken string) (*TokenPair, *user.User, error) {
	profile, err := s.userService.GetUserByID(userID)
	if err != nil {
		return nil, nil, ErrUserNotFound
	}

	accessToken, err := s.jwtManager.GenerateAccessJWT(profile.ID, profile.Email, profile.Name, defaultJWTDuration)
	if err != nil {
		return nil, nil, err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshJWT(profile.ID, hashToken, defaultJWTRefreshDuration)
	if err != nil {
		return nil, nil, err
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, profile, nil
}

func (s *service) RefreshAccessToken(refreshToken string) (string, error) {
	userID, err := s.jwtManager.ExtractUserIDFromRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}
	profile, err := s.userService.GetUserByID(userID)
	if err != nil {
		return "", ErrUserNotFound
	}
	credentials, err := s.userService.GetCredentials(profile.Email)
	if err != nil {
		return "", ErrUserNotFound
	}
	if err := s.jwtManager.ValidateRefreshToken(refreshToken, credentials.HashToken); err != nil {
		return "", ErrInvalidJWTRefreshToken
	}
	return s.jwtManager.GenerateAccessJWT(profile.ID, profile.Email, profile.Name, defaultJWTDuration)
}

// Logout rotates the hash token, invalidating every refresh token issued
// for the user so far.
func (s *service) Logout(userID string) error {
	_, err := s.userService.RotateHashToken(userID)
	return err
}

func (s *service) BeginTwoFactorSetup(userID string) (string, error) {
	profile, err := s.userService.GetUserByID(userID)
	if err != nil {
		return "", ErrUserNotFound
	}
	otpURI, secretKey, err := s.authenticator.GenerateSecret(profile.Email)
	if err != nil {
		return "", err
	}
	if err := s.userService.SetTwoFactorSecret(userID, secretKey); err != nil {
		return "", err
	}
	return otpURI, nil
}

func (s *service) ConfirmTwoFactorSetup(userID, code string) error {
	profile, err := s.userService.GetUserByID(userID)
	if err != nil {
		return ErrUserNotFound
	}
	credentials, err := s.userService.GetCredentials(profile.Email)
	if err != nil {
		return ErrUserNotFound
	}
	if credentials.TwoFactorSecret == "" {
		return ErrTwoFactorNotSetUp
	}
	if !s.authenticator.VerifyCode(credentials.TwoFactorSecret, code) {
		return ErrInvalidTwoFactor
	}
	return s.userService.EnableTwoFactor(userID)
}

func (s *service) Middleware() *Middleware {
	return &Middleware{jwtManager: s.jwtManager}
}
