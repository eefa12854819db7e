package tokenstore

import (
	"context"
	"errors"
)

// ErrNotLinked reports that a user has no stored token: either no entry
// exists or the entry was cleared by an unlink.
var ErrNotLinked = errors.New("no token stored for user")

// Store reads and writes per-user tokens in persistent storage.
type Store interface {
	// Get returns the decrypted token for a user. Returns ErrNotLinked when
	// no usable token exists. A stored token that cannot be decrypted is
	// returned as an error matching tokencipher.ErrDecrypt; it is the
	// caller's policy whether to treat that as absent.
	Get(ctx context.Context, userID int64) (string, error)

	// Put stores a token for a user, overwriting any previous value. An
	// empty token clears the credential (unlink) while keeping the entry.
	Put(ctx context.Context, userID int64, token string) error

	// Delete removes the user's entry entirely and reports whether one
	// existed.
	Delete(ctx context.Context, userID int64) (bool, error)
}
