// Package secure keeps secret key material in buffers that are wiped when
// released, or by the garbage collector if the caller forgets to.
package secure

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"runtime"
	"sync"
)

// Buffer holds secret bytes until Clear is called.
type Buffer struct {
	data    []byte
	mu      sync.RWMutex
	cleared bool
}

// FromBytes copies data into a new buffer. The caller still owns data and
// should wipe it with Zeroize.
func FromBytes(data []byte) *Buffer {
	if len(data) == 0 {
		return &Buffer{}
	}
	b := &Buffer{data: make([]byte, len(data))}
	copy(b.data, data)

	runtime.SetFinalizer(b, (*Buffer).Clear)
	return b
}

// FromHex decodes hex text, typically a key file, into a buffer. Surrounding
// whitespace is ignored and the intermediate decoding is wiped.
func FromHex(text []byte) (*Buffer, error) {
	trimmed := bytes.TrimSpace(text)
	raw := make([]byte, hex.DecodedLen(len(trimmed)))
	defer Zeroize(raw)

	n, err := hex.Decode(raw, trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid hex secret: %w", err)
	}
	return FromBytes(raw[:n]), nil
}

// Use calls fn with the secret without copying it. fn must not retain the
// slice.
func (b *Buffer) Use(fn func(secret []byte) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.cleared {
		return fmt.Errorf("secure buffer has been cleared")
	}
	return fn(b.data)
}

// Len returns the number of secret bytes held.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

// Clear wipes the secret. It is safe to call more than once.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cleared {
		return
	}
	Zeroize(b.data)
	b.data = nil
	b.cleared = true
	runtime.SetFinalizer(b, nil)
}

// Zeroize overwrites data with zeros.
func Zeroize(data []byte) {
	for i := range data {
		data[i] = 0
	}
	// keep the writes from being elided
	runtime.KeepAlive(data)
}
