// Package accesscontrol defines the policy objects that gate decryption of
// threshold-encrypted data: the authenticated data an encryptor binds its
// ciphertext to, and the access control policy pairing it with a proof of
// authorization.
package accesscontrol

import (
	"bytes"
	"fmt"

	"cosmossdk.io/errors"
	"github.com/tinylib/msgp/msgp"

	"github.com/sonr-io/prekit/conditions"
	"github.com/sonr-io/prekit/dkg"
	"github.com/sonr-io/prekit/versioning"
)

// Codespace is the error codespace of this package.
const Codespace = "accesscontrol"

var ErrNoConditions = errors.Register(Codespace, 2, "authenticated data carries no conditions")

var authDataCodec = versioning.NewCodec("AuDa", versioning.Version{Major: 1, Minor: 0},
	versioning.DecoderTable[AuthenticatedData]{
		0: decodeAuthenticatedDataV0,
	})

// AuthenticatedData ties a DKG public key to the conditions under which data
// encrypted to it may be decrypted.
type AuthenticatedData struct {
	publicKey  dkg.PublicKey
	conditions *conditions.Conditions
}

// NewAuthenticatedData copies its inputs; c may be nil.
func NewAuthenticatedData(pk dkg.PublicKey, c *conditions.Conditions) AuthenticatedData {
	ad := AuthenticatedData{publicKey: pk}
	if c != nil {
		cc := *c
		ad.conditions = &cc
	}
	return ad
}

// PublicKey returns the DKG public key.
func (ad AuthenticatedData) PublicKey() dkg.PublicKey {
	return ad.publicKey
}

// Conditions returns the conditions and whether any are set.
func (ad AuthenticatedData) Conditions() (conditions.Conditions, bool) {
	if ad.conditions == nil {
		return conditions.Conditions{}, false
	}
	return *ad.conditions, true
}

// HasConditions reports whether AAD can be derived.
func (ad AuthenticatedData) HasConditions() bool {
	return ad.conditions != nil
}

// AAD returns the public key encoding followed by the conditions encoding.
// Calling it on data without conditions is a programming error and panics.
func (ad AuthenticatedData) AAD() []byte {
	if ad.conditions == nil {
		panic("accesscontrol: AAD derived from authenticated data without conditions")
	}
	pk := ad.publicKey.Bytes()
	cond := ad.conditions.Bytes()

	out := make([]byte, 0, len(pk)+len(cond))
	out = append(out, pk...)
	return append(out, cond...)
}

// Equal compares the canonical key encodings and the conditions.
func (ad AuthenticatedData) Equal(other AuthenticatedData) bool {
	if !bytes.Equal(ad.publicKey.Bytes(), other.publicKey.Bytes()) {
		return false
	}
	if ad.conditions == nil || other.conditions == nil {
		return ad.conditions == nil && other.conditions == nil
	}
	return ad.conditions.Equal(*other.conditions)
}

// Bytes returns the versioned envelope.
func (ad AuthenticatedData) Bytes() []byte {
	return authDataCodec.Encode(ad.appendMsg(nil))
}

// AuthenticatedDataFromBytes decodes a versioned envelope.
func AuthenticatedDataFromBytes(b []byte) (AuthenticatedData, error) {
	return authDataCodec.Decode(b)
}

func (ad AuthenticatedData) appendMsg(b []byte) []byte {
	b = msgp.AppendMapHeader(b, 2)
	b = msgp.AppendString(b, "public_key")
	b = msgp.AppendBytes(b, ad.publicKey.Bytes())
	b = msgp.AppendString(b, "conditions")
	if ad.conditions == nil {
		return msgp.AppendNil(b)
	}
	return msgp.AppendString(b, ad.conditions.String())
}

func readAuthenticatedData(b []byte) (AuthenticatedData, []byte, error) {
	var (
		ad      AuthenticatedData
		seenKey bool
	)
	rest, err := versioning.ReadMap(b, func(key string, b []byte) ([]byte, error) {
		switch key {
		case "public_key":
			raw, rest, err := versioning.ReadFixedBytes(b, dkg.PublicKeySize)
			if err != nil {
				return nil, err
			}
			if ad.publicKey, err = dkg.PublicKeyFromBytes(raw); err != nil {
				return nil, err
			}
			seenKey = true
			return rest, nil
		case "conditions":
			if msgp.IsNil(b) {
				return msgp.ReadNilBytes(b)
			}
			expr, rest, err := msgp.ReadStringBytes(b)
			if err != nil {
				return nil, err
			}
			c := conditions.New(expr)
			ad.conditions = &c
			return rest, nil
		default:
			return versioning.SkipField(key, b)
		}
	})
	if err != nil {
		return AuthenticatedData{}, nil, err
	}
	if !seenKey {
		return AuthenticatedData{}, nil, fmt.Errorf("missing field %q", "public_key")
	}
	return ad, rest, nil
}

func decodeAuthenticatedDataV0(payload []byte) (AuthenticatedData, error) {
	ad, rest, err := readAuthenticatedData(payload)
	if err != nil {
		return AuthenticatedData{}, err
	}
	if len(rest) != 0 {
		return AuthenticatedData{}, fmt.Errorf("%d trailing bytes after payload", len(rest))
	}
	return ad, nil
}
