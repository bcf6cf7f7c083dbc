package umbral

import (
	"cosmossdk.io/errors"
)

// Codespace is the error codespace for the re-encryption primitives.
const Codespace = "umbral"

var (
	ErrInvalidKey       = errors.Register(Codespace, 2, "invalid key")
	ErrInvalidSignature = errors.Register(Codespace, 3, "invalid signature encoding")
	ErrInvalidKeyFrag   = errors.Register(Codespace, 4, "invalid key fragment encoding")
	ErrInvalidCapsule   = errors.Register(Codespace, 5, "invalid capsule")
	ErrEncryption       = errors.Register(Codespace, 6, "encryption failed")
	ErrDecryption       = errors.Register(Codespace, 7, "decryption failed")
)
