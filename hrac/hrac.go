// Package hrac implements the policy identifier binding a set of key
// fragments to one access policy.
package hrac

import (
	"encoding/hex"

	"cosmossdk.io/errors"
	"golang.org/x/crypto/sha3"

	"github.com/sonr-io/prekit/umbral"
)

// Size is the length of a policy identifier.
const Size = 16

// Codespace is the error codespace of this package.
const Codespace = "hrac"

var ErrInvalidHRAC = errors.Register(Codespace, 2, "invalid policy identifier")

// HRAC is a fixed-size policy identifier.
type HRAC [Size]byte

// New derives the identifier of the policy a publisher grants to a recipient
// under label: the first 16 bytes of Keccak-256(publisher || recipient || label).
func New(publisher, recipient umbral.PublicKey, label []byte) HRAC {
	h := sha3.NewLegacyKeccak256()
	h.Write(publisher.Bytes())
	h.Write(recipient.Bytes())
	h.Write(label)

	var id HRAC
	copy(id[:], h.Sum(nil))
	return id
}

// FromBytes parses a 16 byte identifier.
func FromBytes(b []byte) (HRAC, error) {
	var id HRAC
	if len(b) != Size {
		return id, errors.Wrapf(ErrInvalidHRAC, "expected %d bytes, got %d", Size, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// Bytes returns the identifier as a slice.
func (h HRAC) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, h[:])
	return out
}

func (h HRAC) String() string {
	return hex.EncodeToString(h[:])
}
