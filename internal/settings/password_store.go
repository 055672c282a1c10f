package settings

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const serviceName = "lazyexplorer"

// ErrPasswordNotFound is returned when the keyring has no entry
var ErrPasswordNotFound = errors.New("password not found")

// PasswordStore keeps connection passwords in the OS keyring,
// keyed by connection id
type PasswordStore struct {
	service string
}

// NewPasswordStore creates a store under the application service name
func NewPasswordStore() *PasswordStore {
	return &PasswordStore{service: serviceName}
}

// Save stores a password. Empty passwords remove the entry instead.
func (ps *PasswordStore) Save(id, password string) error {
	if password == "" {
		return ps.Delete(id)
	}
	if err := keyring.Set(ps.service, id, password); err != nil {
		return fmt.Errorf("failed to save password to keyring: %w", err)
	}
	return nil
}

// Get retrieves a password from the keyring
func (ps *PasswordStore) Get(id string) (string, error) {
	password, err := keyring.Get(ps.service, id)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrPasswordNotFound
		}
		return "", fmt.Errorf("failed to read password from keyring: %w", err)
	}
	return password, nil
}

// Delete removes a password from the keyring
func (ps *PasswordStore) Delete(id string) error {
	err := keyring.Delete(ps.service, id)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete password from keyring: %w", err)
	}
	return nil
}
