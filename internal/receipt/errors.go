package receipt

import (
	"errors"
	"strings"
)

// ProviderError is an upstream extraction failure translated to a
// user-facing message.
type ProviderError struct {
	Message string
	Cause   error
}

func (e *ProviderError) Error() string {
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

func IsProviderError(err error) bool {
	var providerError *ProviderError
	return errors.As(err, &providerError)
}

// providerErrorTable maps known provider failure substrings to user-facing
// messages. The table is checked in order; extend it here rather than at
// call sites. Unmatched errors surface the raw message.
var providerErrorTable = []struct {
	substr  string
	message string
}{
	{"api key", "The receipt service rejected the configured API key."},
	{"api_key", "The receipt service rejected the configured API key."},
	{"unauthenticated", "The receipt service rejected the configured API key."},
	{"quota", "The receipt service quota is exhausted. Try again later."},
	{"rate limit", "Too many receipt scans right now. Try again in a moment."},
	{"resource_exhausted", "Too many receipt scans right now. Try again in a moment."},
	{"permission", "The receipt service denied access for this project."},
	{"invalid argument", "The receipt image was rejected by the extraction service."},
	{"invalid_argument", "The receipt image was rejected by the extraction service."},
	{"unavailable", "The receipt service is temporarily unavailable. Try again later."},
	{"overloaded", "The receipt service is temporarily unavailable. Try again later."},
}

// classifyProviderError wraps an upstream error with the matching
// user-facing message, falling back to the raw message.
func classifyProviderError(err error) error {
	message := err.Error()
	lowered := strings.ToLower(message)
	for _, entry := range providerErrorTable {
		if strings.Contains(lowered, entry.substr) {
			return &ProviderError{Message: entry.message, Cause: err}
		}
	}
	return &ProviderError{Message: message, Cause: err}
}
