package keyfrag

import (
	"bytes"
	"fmt"

	"cosmossdk.io/errors"
	"github.com/tinylib/msgp/msgp"

	"github.com/sonr-io/prekit/umbral"
	"github.com/sonr-io/prekit/versioning"
)

var encryptedCodec = versioning.NewCodec("EKFr", versioning.Version{Major: 1, Minor: 0},
	versioning.DecoderTable[EncryptedKeyFrag]{
		0: decodeEncryptedKeyFragV0,
	})

// EncryptedKeyFrag is an AuthorizedKeyFrag sealed for a single node.
type EncryptedKeyFrag struct {
	capsule    umbral.Capsule
	ciphertext []byte
}

// NewEncryptedKeyFrag encrypts akf to the recipient node. The only error is
// umbral.ErrEncryption, raised when the primitive rejects the key.
func NewEncryptedKeyFrag(recipient umbral.PublicKey, akf AuthorizedKeyFrag) (EncryptedKeyFrag, error) {
	plaintext, err := akf.standardBytes()
	if err != nil {
		return EncryptedKeyFrag{}, errors.Wrap(umbral.ErrEncryption, err.Error())
	}
	capsule, ciphertext, err := umbral.Encrypt(recipient, plaintext)
	if err != nil {
		return EncryptedKeyFrag{}, err
	}
	return EncryptedKeyFrag{capsule: capsule, ciphertext: ciphertext}, nil
}

// Decrypt opens the fragment with the node's secret key. It reports false
// when the key does not match. Bytes that decrypt but do not parse mean the
// sender broke the protocol, and Decrypt panics.
func (e EncryptedKeyFrag) Decrypt(sk *umbral.SecretKey) (AuthorizedKeyFrag, bool) {
	plaintext, err := umbral.DecryptOriginal(sk, e.capsule, e.ciphertext)
	if err != nil {
		return AuthorizedKeyFrag{}, false
	}
	akf, err := authorizedKeyFragFromStandardBytes(plaintext)
	if err != nil {
		panic(fmt.Sprintf("keyfrag: decrypted authorized key fragment is malformed: %v", err))
	}
	return akf, true
}

// Capsule returns the capsule the ciphertext was sealed with.
func (e EncryptedKeyFrag) Capsule() umbral.Capsule {
	return e.capsule
}

// Equal compares capsule and ciphertext bytes.
func (e EncryptedKeyFrag) Equal(other EncryptedKeyFrag) bool {
	return e.capsule.Equal(other.capsule) && bytes.Equal(e.ciphertext, other.ciphertext)
}

// Bytes returns the versioned envelope.
func (e EncryptedKeyFrag) Bytes() []byte {
	b := msgp.AppendMapHeader(nil, 2)
	b = msgp.AppendString(b, "capsule")
	b = msgp.AppendBytes(b, e.capsule.Bytes())
	b = msgp.AppendString(b, "ciphertext")
	b = versioning.AppendBase64(b, e.ciphertext)
	return encryptedCodec.Encode(b)
}

// EncryptedKeyFragFromBytes decodes a versioned envelope.
func EncryptedKeyFragFromBytes(b []byte) (EncryptedKeyFrag, error) {
	return encryptedCodec.Decode(b)
}

func decodeEncryptedKeyFragV0(payload []byte) (EncryptedKeyFrag, error) {
	var (
		e                   EncryptedKeyFrag
		seenCapsule, seenCT bool
	)
	err := versioning.ReadTopLevelMap(payload, func(key string, b []byte) ([]byte, error) {
		switch key {
		case "capsule":
			raw, rest, err := versioning.ReadFixedBytes(b, umbral.CapsuleSize)
			if err != nil {
				return nil, err
			}
			if e.capsule, err = umbral.CapsuleFromBytes(raw); err != nil {
				return nil, err
			}
			seenCapsule = true
			return rest, nil
		case "ciphertext":
			var (
				rest []byte
				err  error
			)
			e.ciphertext, rest, err = versioning.ReadBase64(b)
			seenCT = true
			return rest, err
		default:
			return versioning.SkipField(key, b)
		}
	})
	if err != nil {
		return EncryptedKeyFrag{}, err
	}
	if !seenCapsule || !seenCT {
		return EncryptedKeyFrag{}, fmt.Errorf("missing capsule or ciphertext field")
	}
	return e, nil
}
