package umbral

import (
	"bytes"

	"cosmossdk.io/errors"
	"github.com/btcsuite/btcd/btcec/v2"
	ecies "github.com/ecies/go/v2"
)

const (
	// CapsuleSize is the length of a serialized capsule
	CapsuleSize = PublicKeySize

	uncompressedPointSize = 65
)

// Capsule carries the ephemeral public key of one encryption. Without it the
// ciphertext cannot be opened even with the right secret key.
type Capsule struct {
	point *btcec.PublicKey
}

// CapsuleFromBytes parses a compressed ephemeral point.
func CapsuleFromBytes(b []byte) (Capsule, error) {
	if len(b) != CapsuleSize {
		return Capsule{}, errors.Wrapf(ErrInvalidCapsule, "expected %d bytes, got %d", CapsuleSize, len(b))
	}
	p, err := btcec.ParsePubKey(b)
	if err != nil {
		return Capsule{}, errors.Wrap(ErrInvalidCapsule, err.Error())
	}
	return Capsule{point: p}, nil
}

// Bytes returns the compressed capsule encoding.
func (c Capsule) Bytes() []byte {
	if c.point == nil {
		return make([]byte, CapsuleSize)
	}
	return c.point.SerializeCompressed()
}

// Equal compares the compressed encodings.
func (c Capsule) Equal(other Capsule) bool {
	return bytes.Equal(c.Bytes(), other.Bytes())
}

// Encrypt seals plaintext for the holder of the secret key matching pk.
func Encrypt(pk PublicKey, plaintext []byte) (Capsule, []byte, error) {
	if pk.IsZero() {
		return Capsule{}, nil, errors.Wrap(ErrEncryption, "recipient key is not initialised")
	}
	recipient, err := ecies.NewPublicKeyFromBytes(pk.Bytes())
	if err != nil {
		return Capsule{}, nil, errors.Wrap(ErrEncryption, err.Error())
	}
	sealed, err := ecies.Encrypt(recipient, plaintext)
	if err != nil {
		return Capsule{}, nil, errors.Wrap(ErrEncryption, err.Error())
	}

	// sealed is ephemeral point || nonce || tag || ciphertext
	if len(sealed) < uncompressedPointSize || sealed[0] != 0x04 {
		return Capsule{}, nil, errors.Wrap(ErrEncryption, "unexpected sealed message layout")
	}
	ephemeral, err := btcec.ParsePubKey(sealed[:uncompressedPointSize])
	if err != nil {
		return Capsule{}, nil, errors.Wrap(ErrEncryption, err.Error())
	}

	ciphertext := make([]byte, len(sealed)-uncompressedPointSize)
	copy(ciphertext, sealed[uncompressedPointSize:])
	return Capsule{point: ephemeral}, ciphertext, nil
}

// DecryptOriginal opens a ciphertext produced by Encrypt.
func DecryptOriginal(sk *SecretKey, capsule Capsule, ciphertext []byte) ([]byte, error) {
	if capsule.point == nil {
		return nil, errors.Wrap(ErrInvalidCapsule, "capsule is not initialised")
	}

	msg := make([]byte, 0, uncompressedPointSize+len(ciphertext))
	msg = append(msg, capsule.point.SerializeUncompressed()...)
	msg = append(msg, ciphertext...)

	secret := sk.Bytes()
	defer clear(secret)

	plaintext, err := ecies.Decrypt(ecies.NewPrivateKeyFromBytes(secret), msg)
	if err != nil {
		return nil, errors.Wrap(ErrDecryption, err.Error())
	}
	return plaintext, nil
}
