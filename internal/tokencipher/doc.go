// Package tokencipher encrypts and decrypts stored provider tokens.
//
// Two implementations exist with different security tradeoffs:
//   - AEAD: ChaCha20-Poly1305 authenticated encryption with a configured key
//   - Passthrough: identity transform when no key is configured
//
// Passthrough mode stores tokens in plaintext. It is a deliberate fallback
// for deployments without key management, not an error condition.
package tokencipher
