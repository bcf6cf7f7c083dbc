package accesscontrol

import (
	"cosmossdk.io/errors"

	"github.com/sonr-io/prekit/aead"
)

// SealPayload encrypts plaintext under a 256-bit symmetric key with the
// policy AAD as associated data, so the ciphertext only opens against the
// same public key and conditions.
func SealPayload(key, plaintext []byte, policy AccessControlPolicy) ([]byte, error) {
	if !policy.authData.HasConditions() {
		return nil, ErrNoConditions
	}
	c, err := aead.New(key)
	if err != nil {
		return nil, errors.Wrap(err, "seal payload")
	}
	return c.Seal(plaintext, policy.AAD())
}

// OpenPayload reverses SealPayload.
func OpenPayload(key, sealed []byte, policy AccessControlPolicy) ([]byte, error) {
	if !policy.authData.HasConditions() {
		return nil, ErrNoConditions
	}
	c, err := aead.New(key)
	if err != nil {
		return nil, errors.Wrap(err, "open payload")
	}
	return c.Open(sealed, policy.AAD())
}
