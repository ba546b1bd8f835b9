// Package keyring provides access to the system keychain for storing the
// session token and account email.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const serviceName = "voiceover"

// ErrNotFound is returned when the entry does not exist in the keychain.
var ErrNotFound = errors.New("keychain entry not found")

// Entry names a value stored in the keychain.
type Entry string

// DisplayName returns a human-readable name for the entry.
func (e Entry) DisplayName() string {
	switch e {
	case "voiceover_token":
		return "session token"
	case "voiceover_email":
		return "account email"
	default:
		return string(e)
	}
}

// Get retrieves a value from the system keychain.
func Get(entry Entry) (string, error) {
	value, err := keyring.Get(serviceName, string(entry))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}

	if err != nil {
		return "", fmt.Errorf("failed to get %s from keychain: %w", entry.DisplayName(), err)
	}

	return value, nil
}

// Set stores a value in the system keychain.
func Set(entry Entry, value string) error {
	if err := keyring.Set(serviceName, string(entry), value); err != nil {
		return fmt.Errorf("failed to set %s in keychain: %w", entry.DisplayName(), err)
	}

	return nil
}

// Delete removes a value from the system keychain. Missing entries are ignored.
func Delete(entry Entry) error {
	err := keyring.Delete(serviceName, string(entry))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete %s from keychain: %w", entry.DisplayName(), err)
	}

	return nil
}

// IsSet checks if an entry exists in the keychain.
func IsSet(entry Entry) bool {
	_, err := keyring.Get(serviceName, string(entry))

	return err == nil
}
