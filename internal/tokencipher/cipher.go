package tokencipher

import "errors"

// ErrDecrypt marks ciphertext that cannot be decrypted: malformed encoding,
// truncated input, a failed authentication tag, or a rotated key. Callers
// match it with errors.Is to distinguish corruption from an absent token.
var ErrDecrypt = errors.New("token decryption failed")

// Cipher transforms opaque token strings. Implementations must be safe for
// concurrent use and free of side effects.
type Cipher interface {
	// Encrypt returns the storable form of a plaintext token.
	Encrypt(plaintext string) (string, error)

	// Decrypt reverses Encrypt. Failures wrap ErrDecrypt.
	Decrypt(ciphertext string) (string, error)
}

// New selects a Cipher from the configured key. An empty key selects the
// plaintext Passthrough; anything else must be a valid AEAD key.
func New(key string) (Cipher, error) {
	if key == "" {
		return Passthrough{}, nil
	}
	return NewAEAD(key)
}

// Passthrough is the identity Cipher used when no encryption key is
// configured. The credential store then holds tokens in plaintext.
type Passthrough struct{}

// Compile-time check to ensure Passthrough implements Cipher
var _ Cipher = Passthrough{}

// Encrypt returns the plaintext unchanged.
func (Passthrough) Encrypt(plaintext string) (string, error) {
	return plaintext, nil
}

// Decrypt returns the ciphertext unchanged.
func (Passthrough) Decrypt(ciphertext string) (string, error) {
	return ciphertext, nil
}
