package discord

import (
	"roundbot/internal/domain"
	"roundbot/internal/ports/output"
)

// TranslateDomainError maps a domain error code to a user-facing message.
func TranslateDomainError(t output.T, locale, code string) string {
	if code == "" {
		return t.T(locale, "error.unknown", nil)
	}
	key := "error." + code
	if msg := t.T(locale, key, nil); msg != key {
		return msg
	}
	return t.T(locale, "error.unknown", nil)
}

// DomainErrorMessage is a convenience helper that extracts the domain error code
// and immediately resolves it to a user-facing message.
func DomainErrorMessage(t output.T, locale string, err error) string {
	if err == nil {
		return ""
	}
	return TranslateDomainError(t, locale, domain.Code(err))
}
