// Package keyring keeps the PostgreSQL connection string in the OS keyring.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/streakly/internal/constants"
)

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Credentials addresses one keyring entry.
type Credentials struct {
	Service string
	User    string
}

// Default is the entry holding the database connection string.
var Default = Credentials{Service: constants.AppName, User: constants.DefaultKeyringUser}

// Get returns ErrNotFound if nothing is stored.
func (c Credentials) Get() (string, error) {
	secret, err := keyring.Get(c.Service, c.User)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

func (c Credentials) Set(secret string) error {
	if secret == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := keyring.Set(c.Service, c.User, secret); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

func (c Credentials) Delete() error {
	if err := keyring.Delete(c.Service, c.User); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// Available is a best-effort probe: a read that fails with anything other
// than "not found" means there is no usable keyring.
func (c Credentials) Available() bool {
	_, err := keyring.Get(c.Service, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// GetConnectionString retrieves the database connection string from the OS keyring.
func GetConnectionString() (string, error) {
	return Default.Get()
}

// SetConnectionString stores the database connection string in the OS keyring.
func SetConnectionString(connStr string) error {
	return Default.Set(connStr)
}

// DeleteConnectionString removes the database connection string from the OS keyring.
func DeleteConnectionString() error {
	return Default.Delete()
}

func IsAvailable() bool {
	return Default.Available()
}
