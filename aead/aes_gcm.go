// Package aead seals payloads with AES-256-GCM, binding each ciphertext to
// associated data such as an access policy's AAD.
package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
)

const (
	// NonceSize is the 96-bit GCM nonce prepended to every sealed payload
	NonceSize = 12
	// TagSize is the 128-bit GCM authentication tag
	TagSize = 16
	// KeySize is the AES-256 key size
	KeySize = 32
)

// Cipher wraps an AES-GCM instance.
type Cipher struct {
	gcm cipher.AEAD
}

// New creates a cipher from a 256-bit key.
func New(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid key size: expected %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM mode: %w", err)
	}
	return &Cipher{gcm: gcm}, nil
}

// Seal encrypts plaintext under a fresh random nonce and returns
// nonce || ciphertext || tag.
func (c *Cipher) Seal(plaintext, aad []byte) ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return c.SealWithNonce(plaintext, aad, nonce)
}

// SealWithNonce is Seal with a caller supplied nonce. Reusing a nonce under
// the same key breaks GCM; it exists for known-answer tests.
func (c *Cipher) SealWithNonce(plaintext, aad, nonce []byte) ([]byte, error) {
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("invalid nonce size: expected %d bytes, got %d", NonceSize, len(nonce))
	}
	out := make([]byte, NonceSize, NonceSize+len(plaintext)+TagSize)
	copy(out, nonce)
	return c.gcm.Seal(out, nonce, plaintext, aad), nil
}

// Open authenticates and decrypts a payload produced by Seal.
func (c *Cipher) Open(sealed, aad []byte) ([]byte, error) {
	if len(sealed) < NonceSize+TagSize {
		return nil, fmt.Errorf("invalid ciphertext length: minimum %d bytes required", NonceSize+TagSize)
	}
	plaintext, err := c.gcm.Open(nil, sealed[:NonceSize], sealed[NonceSize:], aad)
	if err != nil {
		return nil, fmt.Errorf("decryption and authentication failed: %w", err)
	}
	return plaintext, nil
}
