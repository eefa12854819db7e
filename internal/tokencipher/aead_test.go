package tokencipher

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func testKey(t *testing.T) string {
	t.Helper()
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("generating key: %v", err)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func TestAEADRoundTrip(t *testing.T) {
	cipher, err := NewAEAD(testKey(t))
	if err != nil {
		t.Fatalf("NewAEAD failed: %v", err)
	}

	tokens := []string{
		"",
		"T",
		"ya29.a0AfB_byC-short-token",
		strings.Repeat("long-token-segment/", 100),
		"token with spaces and \x00 binary \xff bytes",
	}

	for _, token := range tokens {
		ct, err := cipher.Encrypt(token)
		if err != nil {
			t.Fatalf("Encrypt(%q) failed: %v", token, err)
		}
		if ct == token && token != "" {
			t.Errorf("Encrypt(%q) returned plaintext unchanged", token)
		}

		pt, err := cipher.Decrypt(ct)
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}
		if pt != token {
			t.Errorf("round trip mismatch: got %q, want %q", pt, token)
		}
	}
}

func TestAEADRandomizedNonce(t *testing.T) {
	cipher, err := NewAEAD(testKey(t))
	if err != nil {
		t.Fatalf("NewAEAD failed: %v", err)
	}

	a, _ := cipher.Encrypt("same-token")
	b, _ := cipher.Encrypt("same-token")
	if a == b {
		t.Error("two encryptions of the same token produced identical ciphertext")
	}
}

func TestAEADDecryptFailures(t *testing.T) {
	key := testKey(t)
	cipher, err := NewAEAD(key)
	if err != nil {
		t.Fatalf("NewAEAD failed: %v", err)
	}

	valid, err := cipher.Encrypt("secret")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	// Flip one byte of the sealed payload
	raw, _ := base64.StdEncoding.DecodeString(valid)
	raw[len(raw)-1] ^= 0x01
	tampered := base64.StdEncoding.EncodeToString(raw)

	other, err := NewAEAD(testKey(t))
	if err != nil {
		t.Fatalf("NewAEAD failed: %v", err)
	}

	tests := []struct {
		name   string
		cipher Cipher
		input  string
	}{
		{name: "not base64", cipher: cipher, input: "%%% not base64 %%%"},
		{name: "too short", cipher: cipher, input: base64.StdEncoding.EncodeToString([]byte("abc"))},
		{name: "tampered tag", cipher: cipher, input: tampered},
		{name: "wrong key", cipher: other, input: valid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cipher.Decrypt(tt.input)
			if err == nil {
				t.Fatal("expected error, got none")
			}
			if !errors.Is(err, ErrDecrypt) {
				t.Errorf("error does not match ErrDecrypt: %v", err)
			}
		})
	}
}

func TestNewAEADRejectsBadKeys(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{name: "not base64", key: "!!!"},
		{name: "too short", key: base64.StdEncoding.EncodeToString([]byte("short"))},
		{name: "too long", key: base64.StdEncoding.EncodeToString(make([]byte, 64))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewAEAD(tt.key); err == nil {
				t.Error("expected error, got none")
			}
		})
	}
}

func TestPassthrough(t *testing.T) {
	cipher, err := New("")
	if err != nil {
		t.Fatalf("New with empty key failed: %v", err)
	}

	for _, token := range []string{"", "plain-token", "unicode-ключ"} {
		ct, err := cipher.Encrypt(token)
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}
		if ct != token {
			t.Errorf("Encrypt(%q) = %q, want identity", token, ct)
		}

		pt, err := cipher.Decrypt(token)
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}
		if pt != token {
			t.Errorf("Decrypt(%q) = %q, want identity", token, pt)
		}
	}
}

func TestNewSelectsAEAD(t *testing.T) {
	cipher, err := New(testKey(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := cipher.(*AEAD); !ok {
		t.Errorf("New with key returned %T, want *AEAD", cipher)
	}
}
