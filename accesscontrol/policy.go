package accesscontrol

import (
	"bytes"
	"fmt"

	"github.com/tinylib/msgp/msgp"

	"github.com/sonr-io/prekit/conditions"
	"github.com/sonr-io/prekit/dkg"
	"github.com/sonr-io/prekit/versioning"
)

var policyCodec = versioning.NewCodec("ACPo", versioning.Version{Major: 1, Minor: 0},
	versioning.DecoderTable[AccessControlPolicy]{
		0: decodeAccessControlPolicyV0,
	})

// AccessControlPolicy pairs authenticated data with an opaque proof that the
// policy was authorized. The proof is carried, not checked.
type AccessControlPolicy struct {
	authData      AuthenticatedData
	authorization []byte
}

// NewAccessControlPolicy copies both inputs.
func NewAccessControlPolicy(authData AuthenticatedData, authorization []byte) AccessControlPolicy {
	return AccessControlPolicy{
		authData:      NewAuthenticatedData(authData.publicKey, authData.conditions),
		authorization: bytes.Clone(authorization),
	}
}

// AAD is the AAD of the embedded authenticated data; the authorization never
// takes part in it.
func (p AccessControlPolicy) AAD() []byte {
	return p.authData.AAD()
}

// AuthData returns a copy of the embedded authenticated data.
func (p AccessControlPolicy) AuthData() AuthenticatedData {
	return NewAuthenticatedData(p.authData.publicKey, p.authData.conditions)
}

// PublicKey returns the DKG public key of the embedded authenticated data.
func (p AccessControlPolicy) PublicKey() dkg.PublicKey {
	return p.authData.PublicKey()
}

// Conditions returns a copy of the conditions and whether any are set.
func (p AccessControlPolicy) Conditions() (conditions.Conditions, bool) {
	return p.authData.Conditions()
}

// Authorization returns a copy of the authorization proof.
func (p AccessControlPolicy) Authorization() []byte {
	return bytes.Clone(p.authorization)
}

// Equal compares the authenticated data and the authorization bytes.
func (p AccessControlPolicy) Equal(other AccessControlPolicy) bool {
	return p.authData.Equal(other.authData) && bytes.Equal(p.authorization, other.authorization)
}

// Bytes returns the versioned envelope.
func (p AccessControlPolicy) Bytes() []byte {
	b := msgp.AppendMapHeader(nil, 2)
	b = msgp.AppendString(b, "auth_data")
	b = p.authData.appendMsg(b)
	b = msgp.AppendString(b, "authorization")
	b = versioning.AppendBase64(b, p.authorization)
	return policyCodec.Encode(b)
}

// AccessControlPolicyFromBytes decodes a versioned envelope.
func AccessControlPolicyFromBytes(b []byte) (AccessControlPolicy, error) {
	return policyCodec.Decode(b)
}

func decodeAccessControlPolicyV0(payload []byte) (AccessControlPolicy, error) {
	var (
		p                 AccessControlPolicy
		seenData, seenAuz bool
	)
	err := versioning.ReadTopLevelMap(payload, func(key string, b []byte) ([]byte, error) {
		var err error
		switch key {
		case "auth_data":
			seenData = true
			p.authData, b, err = readAuthenticatedData(b)
		case "authorization":
			seenAuz = true
			p.authorization, b, err = versioning.ReadBase64(b)
		default:
			return versioning.SkipField(key, b)
		}
		return b, err
	})
	if err != nil {
		return AccessControlPolicy{}, err
	}
	if !seenData || !seenAuz {
		return AccessControlPolicy{}, fmt.Errorf("missing auth_data or authorization field")
	}
	return p, nil
}
