package auth

import (
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

type AuthenticatorInterface interface {
	GenerateSecret(accountName string) (otpURI, secretKey string, err error)
	VerifyCode(secret, code string) bool
}

// Authenticator wraps TOTP generation/validation. SHA1 keeps Google
// Authenticator compatibility.
type Authenticator struct{}

func (g Authenticator) GenerateSecret(accountName string) (string, string, error) {
	secret, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "Expensio",
		AccountName: accountName,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", ErrInternalError
	}
	return secret.URL(), secret.Secret(), nil
}

func (g Authenticator) VerifyCode(secret, code string) bool {
	return totp.Validate(code, secret)
}
