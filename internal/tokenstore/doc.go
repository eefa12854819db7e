// Package tokenstore persists per-user Seedr access tokens.
//
// Two storage backends with different security and deployment tradeoffs:
//   - File: a single JSON document on the local filesystem, written with
//     temp-file + atomic rename and secure permissions
//   - Keyring: OS-native credential storage (macOS Keychain, Windows
//     Credential Manager, Linux Secret Service), one entry per user
//
// Tokens pass through a tokencipher.Cipher on the way in and out, so the
// backing storage only ever sees the encrypted form (or plaintext when the
// deployment runs without an encryption key).
//
// Clearing a token (Put with an empty string) records an explicit
// "unlinked" marker and is distinct from Delete, which removes the user's
// entry entirely.
package tokenstore
