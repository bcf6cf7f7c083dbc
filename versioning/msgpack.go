package versioning

import (
	"encoding/base64"
	"fmt"

	"github.com/tinylib/msgp/msgp"
)

// FieldFunc consumes the value of one map field from b and returns the bytes
// following it.
type FieldFunc func(key string, b []byte) ([]byte, error)

// ReadMap walks a MessagePack map, calling field for every key. Keys field
// does not recognise must be passed to SkipField by the caller. A key that
// appears twice is an error. The returned slice holds the bytes after the
// map.
func ReadMap(b []byte, field FieldFunc) ([]byte, error) {
	n, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, n)
	for i := uint32(0); i < n; i++ {
		var raw []byte
		raw, b, err = msgp.ReadMapKeyZC(b)
		if err != nil {
			return nil, err
		}
		key := string(raw)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate field %q", key)
		}
		seen[key] = struct{}{}

		b, err = field(key, b)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
	}
	return b, nil
}

// ReadTopLevelMap is ReadMap for a complete payload: trailing bytes after the
// map are an error.
func ReadTopLevelMap(b []byte, field FieldFunc) error {
	rest, err := ReadMap(b, field)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return fmt.Errorf("%d trailing bytes after payload", len(rest))
	}
	return nil
}

// MaxSkipDepth bounds how deeply nested an unknown field may be.
const MaxSkipDepth = 64

// SkipField discards a value the reader does not know about, so fields added
// by newer minor versions do not break older layouts. Containers are walked
// iteratively and nesting beyond MaxSkipDepth is rejected.
func SkipField(_ string, b []byte) ([]byte, error) {
	// pending[i] counts the values still to skip at nesting level i
	pending := []uint64{1}
	for len(pending) > 0 {
		top := len(pending) - 1
		if pending[top] == 0 {
			pending = pending[:top]
			continue
		}
		pending[top]--

		var (
			n   uint32
			err error
		)
		switch msgp.NextType(b) {
		case msgp.MapType:
			n, b, err = msgp.ReadMapHeaderBytes(b)
			if err != nil {
				return nil, err
			}
			pending = append(pending, 2*uint64(n))
		case msgp.ArrayType:
			n, b, err = msgp.ReadArrayHeaderBytes(b)
			if err != nil {
				return nil, err
			}
			pending = append(pending, uint64(n))
		default:
			if b, err = msgp.Skip(b); err != nil {
				return nil, err
			}
		}
		if len(pending) > MaxSkipDepth+1 {
			return nil, fmt.Errorf("unknown field nested deeper than %d levels", MaxSkipDepth)
		}
	}
	return b, nil
}

// ReadFixedBytes reads a bin value that must be exactly size bytes long.
func ReadFixedBytes(b []byte, size int) ([]byte, []byte, error) {
	v, rest, err := msgp.ReadBytesBytes(b, nil)
	if err != nil {
		return nil, nil, err
	}
	if len(v) != size {
		return nil, nil, fmt.Errorf("expected %d bytes, got %d", size, len(v))
	}
	return v, rest, nil
}

// AppendBase64 writes data as a base64 string value.
func AppendBase64(b []byte, data []byte) []byte {
	return msgp.AppendString(b, base64.StdEncoding.EncodeToString(data))
}

// ReadBase64 reads a base64 string value written by AppendBase64.
func ReadBase64(b []byte) ([]byte, []byte, error) {
	s, rest, err := msgp.ReadStringBytes(b)
	if err != nil {
		return nil, nil, err
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid base64: %w", err)
	}
	return data, rest, nil
}
