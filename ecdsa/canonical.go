// Package ecdsa provides the canonical fixed-size encoding of ECDSA signatures
// used on the wire: r || s, each left padded to the curve byte size, with s
// restricted to the lower half of the group order.
package ecdsa

import (
	"crypto/elliptic"
	"fmt"
	"math/big"
)

// Canonicalize ensures an ECDSA signature is in canonical form. Both (r, s)
// and (r, N-s) verify, so only s <= N/2 is accepted on the wire.
func Canonicalize(r, s *big.Int, curve elliptic.Curve) (*big.Int, *big.Int, error) {
	if r == nil || s == nil {
		return nil, nil, fmt.Errorf("r and s cannot be nil")
	}
	if curve == nil {
		return nil, nil, fmt.Errorf("curve cannot be nil")
	}

	N := curve.Params().N
	if r.Sign() <= 0 || r.Cmp(N) >= 0 {
		return nil, nil, fmt.Errorf("r is not in valid range [1, N-1]")
	}
	if s.Sign() <= 0 || s.Cmp(N) >= 0 {
		return nil, nil, fmt.Errorf("s is not in valid range [1, N-1]")
	}

	rCopy := new(big.Int).Set(r)
	sCopy := new(big.Int).Set(s)
	if sCopy.Cmp(halfOrder(N)) > 0 {
		sCopy.Sub(N, sCopy)
	}
	return rCopy, sCopy, nil
}

// IsCanonical checks r in [1, N-1] and s in [1, N/2].
func IsCanonical(r, s *big.Int, curve elliptic.Curve) bool {
	if r == nil || s == nil || curve == nil {
		return false
	}
	N := curve.Params().N
	if r.Sign() <= 0 || r.Cmp(N) >= 0 {
		return false
	}
	return s.Sign() > 0 && s.Cmp(halfOrder(N)) <= 0
}

// Marshal converts a signature to r || s in canonical form.
func Marshal(r, s *big.Int, curve elliptic.Curve) ([]byte, error) {
	rCanon, sCanon, err := Canonicalize(r, s, curve)
	if err != nil {
		return nil, err
	}

	n := byteSize(curve)
	sig := make([]byte, 2*n)
	rCanon.FillBytes(sig[:n])
	sCanon.FillBytes(sig[n:])
	return sig, nil
}

// Unmarshal parses r || s and rejects malleable (high-s) signatures outright
// instead of normalising them.
func Unmarshal(sig []byte, curve elliptic.Curve) (*big.Int, *big.Int, error) {
	n := byteSize(curve)
	if len(sig) != 2*n {
		return nil, nil, fmt.Errorf("invalid signature length: expected %d, got %d", 2*n, len(sig))
	}

	r := new(big.Int).SetBytes(sig[:n])
	s := new(big.Int).SetBytes(sig[n:])
	if !IsCanonical(r, s, curve) {
		return nil, nil, fmt.Errorf("signature is not in canonical form")
	}
	return r, s, nil
}

func byteSize(curve elliptic.Curve) int {
	return (curve.Params().BitSize + 7) / 8
}

func halfOrder(N *big.Int) *big.Int {
	return new(big.Int).Rsh(N, 1)
}
