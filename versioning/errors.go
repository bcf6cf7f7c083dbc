package versioning

import (
	"cosmossdk.io/errors"
)

// Codespace is the error codespace for protocol object decoding.
const Codespace = "versioning"

// Envelope decoding errors
var (
	ErrFormat          = errors.Register(Codespace, 2, "malformed protocol object header")
	ErrBrandMismatch   = errors.Register(Codespace, 3, "protocol object brand mismatch")
	ErrVersion         = errors.Register(Codespace, 4, "unsupported protocol object version")
	ErrDeserialization = errors.Register(Codespace, 5, "protocol object payload deserialization failed")
)
