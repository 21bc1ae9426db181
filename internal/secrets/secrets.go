// Package secrets keeps the account password in the OS keychain so it
// doesn't have to live in .env files or shell history.
package secrets

import (
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const service = "linkedin-scraper"

// Password looks the account's password up in the OS keychain.
func Password(account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", fmt.Errorf("account is required for keychain lookup")
	}
	pw, err := keyring.Get(service, account)
	if err != nil {
		return "", fmt.Errorf("keychain get for %s: %w", account, err)
	}
	return pw, nil
}

// SavePassword stores the password under the account, replacing any
// previous entry.
func SavePassword(account, password string) error {
	if strings.TrimSpace(account) == "" {
		return fmt.Errorf("account is required to save a password")
	}
	if password == "" {
		return fmt.Errorf("refusing to save an empty password")
	}
	if err := keyring.Set(service, account, password); err != nil {
		return fmt.Errorf("keychain set for %s: %w", account, err)
	}
	return nil
}
