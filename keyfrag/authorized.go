// Package keyfrag binds re-encryption key fragments to a policy and seals
// them for the node that will hold them.
//
// A publisher signs each fragment together with the policy identifier
// (AuthorizedKeyFrag), then encrypts the signed bundle to one node's public
// key (EncryptedKeyFrag). The node decrypts the bundle and checks the
// signature against the identifier it derives itself before using the
// fragment.
package keyfrag

import (
	"fmt"

	"github.com/tinylib/msgp/msgp"

	"github.com/sonr-io/prekit/hrac"
	"github.com/sonr-io/prekit/umbral"
	"github.com/sonr-io/prekit/versioning"
)

var authorizedCodec = versioning.NewCodec("AKFr", versioning.Version{Major: 1, Minor: 0},
	versioning.DecoderTable[AuthorizedKeyFrag]{
		0: decodeAuthorizedKeyFragV0,
	})

// AuthorizedKeyFrag is a key fragment signed together with the identifier of
// the policy it belongs to. The fragment inside is always unverified.
type AuthorizedKeyFrag struct {
	signature umbral.Signature
	kfrag     umbral.KeyFrag
}

// standardAuthorizedKeyFrag is the headerless layout sealed inside an
// EncryptedKeyFrag.
type standardAuthorizedKeyFrag struct {
	Signature []byte
	KFrag     []byte
}

func signedMessage(id hrac.HRAC, kfrag umbral.KeyFrag) []byte {
	msg := make([]byte, 0, hrac.Size+umbral.KeyFragSize)
	msg = append(msg, id[:]...)
	return append(msg, kfrag.Bytes()...)
}

// NewAuthorizedKeyFrag signs id || kfrag with the publisher's signer.
func NewAuthorizedKeyFrag(signer *umbral.Signer, id hrac.HRAC, verified umbral.KeyFrag) AuthorizedKeyFrag {
	kfrag := verified.Unverify()
	return AuthorizedKeyFrag{
		signature: signer.Sign(signedMessage(id, kfrag)),
		kfrag:     kfrag,
	}
}

// Verify checks the signature against the identifier the caller derived and
// the publisher's verifying key. On success the fragment is returned marked
// verified; any mismatch yields false.
func (a AuthorizedKeyFrag) Verify(id hrac.HRAC, publisher umbral.PublicKey) (umbral.KeyFrag, bool) {
	if !a.signature.Verify(publisher, signedMessage(id, a.kfrag)) {
		return umbral.KeyFrag{}, false
	}
	return a.kfrag.ForceVerify(), true
}

// Signature returns the publisher's signature.
func (a AuthorizedKeyFrag) Signature() umbral.Signature {
	return a.signature
}

// KeyFrag returns the unverified fragment without checking the signature.
func (a AuthorizedKeyFrag) KeyFrag() umbral.KeyFrag {
	return a.kfrag
}

// Equal compares signature and fragment.
func (a AuthorizedKeyFrag) Equal(other AuthorizedKeyFrag) bool {
	return a.signature.Equal(other.signature) && a.kfrag.Equal(other.kfrag)
}

// Bytes returns the versioned envelope.
func (a AuthorizedKeyFrag) Bytes() []byte {
	b := msgp.AppendMapHeader(nil, 2)
	b = msgp.AppendString(b, "signature")
	b = msgp.AppendBytes(b, a.signature.Bytes())
	b = msgp.AppendString(b, "kfrag")
	b = msgp.AppendBytes(b, a.kfrag.Bytes())
	return authorizedCodec.Encode(b)
}

// AuthorizedKeyFragFromBytes decodes a versioned envelope. The fragment comes
// back unverified; only Verify can vouch for it.
func AuthorizedKeyFragFromBytes(b []byte) (AuthorizedKeyFrag, error) {
	return authorizedCodec.Decode(b)
}

func decodeAuthorizedKeyFragV0(payload []byte) (AuthorizedKeyFrag, error) {
	var (
		a                 AuthorizedKeyFrag
		seenSig, seenFrag bool
	)
	err := versioning.ReadTopLevelMap(payload, func(key string, b []byte) ([]byte, error) {
		switch key {
		case "signature":
			raw, rest, err := versioning.ReadFixedBytes(b, umbral.SignatureSize)
			if err != nil {
				return nil, err
			}
			if a.signature, err = umbral.SignatureFromBytes(raw); err != nil {
				return nil, err
			}
			seenSig = true
			return rest, nil
		case "kfrag":
			raw, rest, err := versioning.ReadFixedBytes(b, umbral.KeyFragSize)
			if err != nil {
				return nil, err
			}
			if a.kfrag, err = umbral.KeyFragFromBytes(raw); err != nil {
				return nil, err
			}
			seenFrag = true
			return rest, nil
		default:
			return versioning.SkipField(key, b)
		}
	})
	if err != nil {
		return AuthorizedKeyFrag{}, err
	}
	if !seenSig || !seenFrag {
		return AuthorizedKeyFrag{}, fmt.Errorf("missing signature or kfrag field")
	}
	return a, nil
}

func (a AuthorizedKeyFrag) standardBytes() ([]byte, error) {
	return versioning.StandardMarshal(&standardAuthorizedKeyFrag{
		Signature: a.signature.Bytes(),
		KFrag:     a.kfrag.Bytes(),
	})
}

func authorizedKeyFragFromStandardBytes(data []byte) (AuthorizedKeyFrag, error) {
	var s standardAuthorizedKeyFrag
	if err := versioning.StandardUnmarshal(data, &s); err != nil {
		return AuthorizedKeyFrag{}, err
	}
	sig, err := umbral.SignatureFromBytes(s.Signature)
	if err != nil {
		return AuthorizedKeyFrag{}, err
	}
	kfrag, err := umbral.KeyFragFromBytes(s.KFrag)
	if err != nil {
		return AuthorizedKeyFrag{}, err
	}
	return AuthorizedKeyFrag{signature: sig, kfrag: kfrag}, nil
}
