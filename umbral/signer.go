package umbral

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"

	"cosmossdk.io/errors"
	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"lukechampine.com/blake3"

	"github.com/sonr-io/prekit/ecdsa"
)

// SignatureSize is the length of the r || s signature encoding.
const SignatureSize = 64

// Signer signs messages with a secret key.
type Signer struct {
	sk *SecretKey
}

// NewSigner wraps sk for signing.
func NewSigner(sk *SecretKey) *Signer {
	return &Signer{sk: sk}
}

// VerifyingKey returns the public key that verifies this signer's signatures.
func (s *Signer) VerifyingKey() PublicKey {
	return s.sk.PublicKey()
}

// Sign produces a deterministic (RFC 6979) ECDSA signature over the BLAKE3
// digest of message.
func (s *Signer) Sign(message []byte) Signature {
	digest := blake3.Sum256(message)
	compact := btcecdsa.SignCompact(s.sk.key, digest[:], true)

	// compact is recovery byte || r || s
	r := new(big.Int).SetBytes(compact[1:33])
	sv := new(big.Int).SetBytes(compact[33:65])
	rs, err := ecdsa.Marshal(r, sv, btcec.S256())
	if err != nil {
		panic(fmt.Sprintf("umbral: signer produced invalid signature: %v", err))
	}

	var sig Signature
	copy(sig.rs[:], rs)
	return sig
}

// Signature is a canonical low-s ECDSA signature.
type Signature struct {
	rs [SignatureSize]byte
}

// SignatureFromBytes parses r || s, rejecting malleable encodings.
func SignatureFromBytes(b []byte) (Signature, error) {
	if _, _, err := ecdsa.Unmarshal(b, btcec.S256()); err != nil {
		return Signature{}, errors.Wrap(ErrInvalidSignature, err.Error())
	}
	var sig Signature
	copy(sig.rs[:], b)
	return sig, nil
}

// Bytes returns the r || s encoding.
func (sig Signature) Bytes() []byte {
	out := make([]byte, SignatureSize)
	copy(out, sig.rs[:])
	return out
}

// Verify checks sig over message against pk.
func (sig Signature) Verify(pk PublicKey, message []byte) bool {
	if pk.IsZero() {
		return false
	}
	var r, s btcec.ModNScalar
	if r.SetByteSlice(sig.rs[:32]) || s.SetByteSlice(sig.rs[32:]) {
		return false
	}
	digest := blake3.Sum256(message)
	return btcecdsa.NewSignature(&r, &s).Verify(digest[:], pk.key)
}

// Equal compares the r || s encodings.
func (sig Signature) Equal(other Signature) bool {
	return bytes.Equal(sig.rs[:], other.rs[:])
}

func (sig Signature) String() string {
	return hex.EncodeToString(sig.rs[:])
}
