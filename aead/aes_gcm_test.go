package aead

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func newTestCipher(t *testing.T) *Cipher {
	t.Helper()
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("Failed to generate test key: %v", err)
	}
	c, err := New(key)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		keySize int
		wantErr bool
	}{
		{"valid 256-bit key", 32, false},
		{"invalid 128-bit key", 16, true},
		{"empty key", 0, true},
		{"oversized key", 64, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(make([]byte, tt.keySize))
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSealOpen(t *testing.T) {
	c := newTestCipher(t)

	tests := []struct {
		name      string
		plaintext []byte
		aad       []byte
	}{
		{"empty plaintext", []byte{}, nil},
		{"small plaintext", []byte("hello"), nil},
		{"with AAD", []byte("secret data"), []byte("policy aad")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := c.Seal(tt.plaintext, tt.aad)
			if err != nil {
				t.Fatalf("Seal() error = %v", err)
			}
			if len(sealed) != NonceSize+len(tt.plaintext)+TagSize {
				t.Errorf("sealed length = %d", len(sealed))
			}
			opened, err := c.Open(sealed, tt.aad)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if !bytes.Equal(opened, tt.plaintext) {
				t.Errorf("Open() = %q, want %q", opened, tt.plaintext)
			}
		})
	}
}

func TestOpenRejectsWrongAAD(t *testing.T) {
	c := newTestCipher(t)
	sealed, err := c.Seal([]byte("data"), []byte("aad-1"))
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if _, err := c.Open(sealed, []byte("aad-2")); err == nil {
		t.Error("Open() with different AAD should fail")
	}
	if _, err := c.Open(sealed[:NonceSize+TagSize-1], []byte("aad-1")); err == nil {
		t.Error("Open() of truncated input should fail")
	}
}

func TestSealWithNonceIsDeterministic(t *testing.T) {
	c := newTestCipher(t)
	nonce := make([]byte, NonceSize)

	a, err := c.SealWithNonce([]byte("x"), nil, nonce)
	if err != nil {
		t.Fatalf("SealWithNonce() error = %v", err)
	}
	b, _ := c.SealWithNonce([]byte("x"), nil, nonce)
	if !bytes.Equal(a, b) {
		t.Error("same nonce should give same ciphertext")
	}
	if _, err := c.SealWithNonce([]byte("x"), nil, nonce[:8]); err == nil {
		t.Error("short nonce should be rejected")
	}
}
