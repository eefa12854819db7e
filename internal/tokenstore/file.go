package tokenstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/florianilch/seedrbot/internal/tokencipher"
)

// tmpSuffix is appended to the canonical path for the scratch file used by
// the atomic-rename write protocol.
const tmpSuffix = ".tmp"

// record is one user's entry in the backing document. An empty Token marks
// an explicitly unlinked account.
type record struct {
	Token       string `json:"token"`
	LastUpdated int64  `json:"last_updated"`
}

// FileStore keeps all user tokens in a single JSON document keyed by the
// decimal user id. Every write rewrites the whole document through a temp
// file and atomic rename, so readers never observe a partial document and a
// crash mid-write leaves the previous document intact.
//
// A process-wide mutex serializes the read-modify-write sequence between
// concurrent handlers. Writers in other processes are not coordinated: the
// document is last-writer-wins across processes, which is acceptable for
// the intended single-process, low-write-rate deployment.
type FileStore struct {
	filePath string
	cipher   tokencipher.Cipher

	mu sync.Mutex

	now func() time.Time
}

// Compile-time check to ensure FileStore implements Store
var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore for the given path, creating parent
// directories with 0700 permissions if they don't exist.
func NewFileStore(filePath string, cipher tokencipher.Cipher) (*FileStore, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}
	if cipher == nil {
		return nil, fmt.Errorf("missing cipher")
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	return &FileStore{
		filePath: filePath,
		cipher:   cipher,
		now:      time.Now,
	}, nil
}

// Get returns the decrypted token for a user, or ErrNotLinked.
func (f *FileStore) Get(ctx context.Context, userID int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.mu.Lock()
	doc := f.load(ctx)
	f.mu.Unlock()

	rec, ok := doc[userKey(userID)]
	if !ok || rec.Token == "" {
		return "", ErrNotLinked
	}

	token, err := f.cipher.Decrypt(rec.Token)
	if err != nil {
		return "", fmt.Errorf("stored token for user %d unreadable: %w", userID, err)
	}
	return token, nil
}

// Put stores a token for a user. An empty token clears the credential while
// keeping the entry, so the unlink remains visible in the document.
func (f *FileStore) Put(ctx context.Context, userID int64, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := ""
	if token != "" {
		var err error
		stored, err = f.cipher.Encrypt(token)
		if err != nil {
			return fmt.Errorf("encrypting token: %w", err)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	doc := f.load(ctx)
	doc[userKey(userID)] = record{
		Token:       stored,
		LastUpdated: f.now().Unix(),
	}
	return f.save(doc)
}

// Delete removes the user's entry entirely and reports whether one existed.
func (f *FileStore) Delete(ctx context.Context, userID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	doc := f.load(ctx)
	key := userKey(userID)
	if _, ok := doc[key]; !ok {
		return false, nil
	}

	delete(doc, key)
	if err := f.save(doc); err != nil {
		return false, err
	}
	return true, nil
}

// load reads the backing document. A missing or malformed file reads as an
// empty document: first run and a corrupted file are indistinguishable and
// both resolve to "no credentials yet".
func (f *FileStore) load(ctx context.Context) map[string]record {
	data, err := os.ReadFile(f.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.WarnContext(ctx, "token document unreadable, starting empty", "path", f.filePath, "error", err)
		}
		return map[string]record{}
	}

	doc := map[string]record{}
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.WarnContext(ctx, "token document malformed, starting empty", "path", f.filePath, "error", err)
		return map[string]record{}
	}
	return doc
}

// save serializes the full document to the sibling temp path and atomically
// renames it over the canonical path.
func (f *FileStore) save(doc map[string]record) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing token document: %w", err)
	}

	tmpPath := f.filePath + tmpSuffix
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("writing temp document: %w", err)
	}

	if err := os.Rename(tmpPath, f.filePath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing token document: %w", err)
	}
	return nil
}

func userKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
