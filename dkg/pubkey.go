// Package dkg provides the public key produced by a distributed key
// generation ceremony: a BLS12-381 G1 point.
package dkg

import (
	"bytes"
	"encoding/hex"
	"math/big"

	"cosmossdk.io/errors"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// PublicKeySize is the length of the compressed G1 encoding.
const PublicKeySize = bls12381.SizeOfG1AffineCompressed

// Codespace is the error codespace of this package.
const Codespace = "dkg"

var ErrInvalidPublicKey = errors.Register(Codespace, 2, "invalid DKG public key")

// PublicKey is a DKG public key. Its canonical encoding is the 48 byte
// compressed point, which cannot fail once the key is constructed.
type PublicKey struct {
	point bls12381.G1Affine
}

// RandomPublicKey returns the key of a random secret, for tests and demos.
func RandomPublicKey() (PublicKey, error) {
	var secret fr.Element
	if _, err := secret.SetRandom(); err != nil {
		return PublicKey{}, errors.Wrap(ErrInvalidPublicKey, err.Error())
	}
	_, _, g1, _ := bls12381.Generators()

	var pk PublicKey
	pk.point.ScalarMultiplication(&g1, secret.BigInt(new(big.Int)))
	return pk, nil
}

// PublicKeyFromBytes parses a compressed G1 point, checking that it lies on
// the curve and in the prime order subgroup.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	if len(b) != PublicKeySize {
		return PublicKey{}, errors.Wrapf(ErrInvalidPublicKey, "expected %d bytes, got %d", PublicKeySize, len(b))
	}
	var pk PublicKey
	if _, err := pk.point.SetBytes(b); err != nil {
		return PublicKey{}, errors.Wrap(ErrInvalidPublicKey, err.Error())
	}
	return pk, nil
}

// Bytes returns the canonical compressed encoding.
func (pk PublicKey) Bytes() []byte {
	b := pk.point.Bytes()
	return b[:]
}

// Equal compares canonical encodings, so keys with different internal
// coordinates for the same point are equal.
func (pk PublicKey) Equal(other PublicKey) bool {
	return bytes.Equal(pk.Bytes(), other.Bytes())
}

func (pk PublicKey) String() string {
	return hex.EncodeToString(pk.Bytes())
}
