package tokencipher

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// AEAD encrypts tokens with ChaCha20-Poly1305. The key is supplied as
// standard base64 of exactly 32 bytes. Output is base64(nonce || sealed),
// with a fresh random nonce per call.
type AEAD struct {
	aead cipher.AEAD
}

// Compile-time check to ensure AEAD implements Cipher
var _ Cipher = (*AEAD)(nil)

// NewAEAD creates an AEAD cipher from a base64-encoded 32-byte key.
func NewAEAD(key string) (*AEAD, error) {
	raw, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("encryption key is not valid base64: %w", err)
	}
	if len(raw) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("encryption key must decode to %d bytes, got %d", chacha20poly1305.KeySize, len(raw))
	}

	aead, err := chacha20poly1305.New(raw)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	return &AEAD{aead: aead}, nil
}

// Encrypt seals the plaintext under a fresh random nonce.
func (a *AEAD) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, a.aead.NonceSize(), a.aead.NonceSize()+len(plaintext)+a.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	sealed := a.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens base64(nonce || sealed). Any malformed or tampered input,
// or a ciphertext produced under a different key, wraps ErrDecrypt.
func (a *AEAD) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: invalid base64: %v", ErrDecrypt, err)
	}
	if len(raw) < a.aead.NonceSize() {
		return "", fmt.Errorf("%w: ciphertext shorter than nonce", ErrDecrypt)
	}

	nonce, sealed := raw[:a.aead.NonceSize()], raw[a.aead.NonceSize():]
	plaintext, err := a.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	return string(plaintext), nil
}
