package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/zalando/go-keyring"

	"github.com/florianilch/seedrbot/internal/tokencipher"
)

// KeyringStore keeps one entry per user in OS-native secure credential
// storage (macOS Keychain, Windows Credential Manager, Linux Secret
// Service). The keyring account name is the decimal user id.
//
// A cleared credential is stored as an empty entry so that unlink remains
// distinct from Delete, matching FileStore semantics.
type KeyringStore struct {
	service string
	cipher  tokencipher.Cipher
}

// Compile-time check to ensure KeyringStore implements Store
var _ Store = (*KeyringStore)(nil)

// NewKeyringStore creates a KeyringStore under the given service name.
func NewKeyringStore(service string, cipher tokencipher.Cipher) (*KeyringStore, error) {
	if service == "" {
		return nil, fmt.Errorf("service cannot be empty")
	}
	if cipher == nil {
		return nil, fmt.Errorf("missing cipher")
	}

	return &KeyringStore{
		service: service,
		cipher:  cipher,
	}, nil
}

// Get returns the decrypted token for a user, or ErrNotLinked.
func (k *KeyringStore) Get(ctx context.Context, userID int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stored, err := keyring.Get(k.service, k.user(userID))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotLinked
		}
		return "", fmt.Errorf("reading keyring entry: %w", err)
	}
	if stored == "" {
		return "", ErrNotLinked
	}

	token, err := k.cipher.Decrypt(stored)
	if err != nil {
		return "", fmt.Errorf("stored token for user %d unreadable: %w", userID, err)
	}
	return token, nil
}

// Put stores a token for a user, overwriting any existing entry. An empty
// token clears the credential while keeping the entry.
func (k *KeyringStore) Put(ctx context.Context, userID int64, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := ""
	if token != "" {
		var err error
		stored, err = k.cipher.Encrypt(token)
		if err != nil {
			return fmt.Errorf("encrypting token: %w", err)
		}
	}

	return keyring.Set(k.service, k.user(userID), stored)
}

// Delete removes the user's entry and reports whether one existed.
func (k *KeyringStore) Delete(ctx context.Context, userID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if err := keyring.Delete(k.service, k.user(userID)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("deleting keyring entry: %w", err)
	}
	return true, nil
}

func (k *KeyringStore) user(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
