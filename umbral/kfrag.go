package umbral

import (
	"bytes"

	"cosmossdk.io/errors"
)

const (
	// KeyFragSize is the length of a serialized key fragment
	KeyFragSize = 260
	// KeyFragIDSize is the length of the fragment identifier prefix
	KeyFragIDSize = 32
)

// KeyFragStatus records whether a fragment's origin has been established.
// Verified and unverified fragments share one byte layout; the wire never
// carries the status.
type KeyFragStatus uint8

const (
	Unverified KeyFragStatus = iota
	Verified
)

func (s KeyFragStatus) String() string {
	if s == Verified {
		return "verified"
	}
	return "unverified"
}

// KeyFrag is one share of a split re-encryption key.
type KeyFrag struct {
	data   [KeyFragSize]byte
	status KeyFragStatus
}

// KeyFragFromBytes parses a fragment received from an untrusted source.
func KeyFragFromBytes(b []byte) (KeyFrag, error) {
	if len(b) != KeyFragSize {
		return KeyFrag{}, errors.Wrapf(ErrInvalidKeyFrag, "expected %d bytes, got %d", KeyFragSize, len(b))
	}
	var k KeyFrag
	copy(k.data[:], b)
	return k, nil
}

// KeyFragFromVerifiedBytes parses a fragment whose origin the caller has
// already established, e.g. one it generated itself.
func KeyFragFromVerifiedBytes(b []byte) (KeyFrag, error) {
	k, err := KeyFragFromBytes(b)
	if err != nil {
		return KeyFrag{}, err
	}
	return k.ForceVerify(), nil
}

// Bytes returns the fragment encoding.
func (k KeyFrag) Bytes() []byte {
	out := make([]byte, KeyFragSize)
	copy(out, k.data[:])
	return out
}

// ID returns the fragment identifier.
func (k KeyFrag) ID() [KeyFragIDSize]byte {
	var id [KeyFragIDSize]byte
	copy(id[:], k.data[:KeyFragIDSize])
	return id
}

// Status reports whether the fragment is trusted.
func (k KeyFrag) Status() KeyFragStatus {
	return k.status
}

// IsVerified is Status() == Verified.
func (k KeyFrag) IsVerified() bool {
	return k.status == Verified
}

// Unverify drops the verified status.
func (k KeyFrag) Unverify() KeyFrag {
	k.status = Unverified
	return k
}

// ForceVerify marks the fragment verified. Only call it after trust was
// established some other way, such as a signature binding it to a policy.
func (k KeyFrag) ForceVerify() KeyFrag {
	k.status = Verified
	return k
}

// Equal compares both the bytes and the status.
func (k KeyFrag) Equal(other KeyFrag) bool {
	return k.status == other.status && bytes.Equal(k.data[:], other.data[:])
}
