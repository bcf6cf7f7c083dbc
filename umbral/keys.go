// Package umbral holds the secp256k1 primitives the key fragment protocol is
// built on: key pairs, signatures, key fragments and capsule based
// asymmetric encryption. Fragment generation and re-encryption live outside
// this module; here key fragments are opaque fixed-size values.
package umbral

import (
	"bytes"
	"encoding/hex"

	"cosmossdk.io/errors"
	"github.com/btcsuite/btcd/btcec/v2"
)

const (
	// SecretKeySize is the length of a serialized secret scalar
	SecretKeySize = 32
	// PublicKeySize is the length of a compressed secp256k1 point
	PublicKeySize = 33
)

// SecretKey is a secp256k1 secret scalar.
type SecretKey struct {
	key *btcec.PrivateKey
}

// GenerateSecretKey draws a fresh secret key from crypto/rand.
func GenerateSecretKey() (*SecretKey, error) {
	k, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, errors.Wrap(ErrInvalidKey, err.Error())
	}
	return &SecretKey{key: k}, nil
}

// SecretKeyFromBytes parses a 32 byte big-endian scalar in [1, N-1].
func SecretKeyFromBytes(b []byte) (*SecretKey, error) {
	if len(b) != SecretKeySize {
		return nil, errors.Wrapf(ErrInvalidKey, "secret key must be %d bytes, got %d", SecretKeySize, len(b))
	}
	var scalar btcec.ModNScalar
	if overflow := scalar.SetByteSlice(b); overflow || scalar.IsZero() {
		return nil, errors.Wrap(ErrInvalidKey, "secret scalar out of range")
	}
	k, _ := btcec.PrivKeyFromBytes(b)
	return &SecretKey{key: k}, nil
}

// Bytes exports the secret scalar. Callers own the returned slice and should
// wipe it when done.
func (sk *SecretKey) Bytes() []byte {
	return sk.key.Serialize()
}

// PublicKey derives the matching public key.
func (sk *SecretKey) PublicKey() PublicKey {
	return newPublicKey(sk.key.PubKey())
}

// Zeroize overwrites the secret scalar in memory.
func (sk *SecretKey) Zeroize() {
	sk.key.Zero()
}

// PublicKey is a secp256k1 point. Its canonical encoding is the 33 byte
// compressed form, fixed at construction so encoding never fails.
type PublicKey struct {
	key        *btcec.PublicKey
	compressed [PublicKeySize]byte
}

func newPublicKey(k *btcec.PublicKey) PublicKey {
	pk := PublicKey{key: k}
	copy(pk.compressed[:], k.SerializeCompressed())
	return pk
}

// PublicKeyFromBytes parses a compressed or uncompressed secp256k1 point.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	k, err := btcec.ParsePubKey(b)
	if err != nil {
		return PublicKey{}, errors.Wrap(ErrInvalidKey, err.Error())
	}
	return newPublicKey(k), nil
}

// Bytes returns the compressed encoding.
func (pk PublicKey) Bytes() []byte {
	out := make([]byte, PublicKeySize)
	copy(out, pk.compressed[:])
	return out
}

// Equal compares the canonical encodings.
func (pk PublicKey) Equal(other PublicKey) bool {
	return bytes.Equal(pk.compressed[:], other.compressed[:])
}

// IsZero reports whether pk was never initialised.
func (pk PublicKey) IsZero() bool {
	return pk.key == nil
}

func (pk PublicKey) String() string {
	return hex.EncodeToString(pk.compressed[:])
}
