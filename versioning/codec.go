// Package versioning implements the versioned envelope every protocol object
// travels in.
//
// An envelope is a fixed 8 byte header followed by the MessagePack encoded
// payload of the object:
//
//	brand (4 ASCII bytes) || major (uint16 BE) || minor (uint16 BE) || payload
//
// Decoding rejects foreign brands and unknown major versions outright. Older
// minor versions of the same major stay readable through a per-type table
// mapping each minor version to its decoder.
package versioning

import (
	"encoding/binary"
	"fmt"
	"sort"
	"sync"

	"cosmossdk.io/errors"
)

const (
	// BrandSize is the length of the type tag leading every envelope
	BrandSize = 4
	// HeaderSize is the length of brand plus the two version fields
	HeaderSize = BrandSize + 2 + 2
)

// Brand identifies the type of a protocol object on the wire.
type Brand [BrandSize]byte

// String returns the brand as ASCII text.
func (b Brand) String() string {
	return string(b[:])
}

// ParseBrand validates that s is exactly four printable ASCII characters.
func ParseBrand(s string) (Brand, error) {
	var b Brand
	if len(s) != BrandSize {
		return b, fmt.Errorf("brand %q must be exactly %d bytes", s, BrandSize)
	}
	for i := 0; i < BrandSize; i++ {
		if s[i] < 0x21 || s[i] > 0x7e {
			return b, fmt.Errorf("brand %q contains non-printable or non-ASCII byte at %d", s, i)
		}
		b[i] = s[i]
	}
	return b, nil
}

// Version is the (major, minor) pair of a protocol object schema.
type Version struct {
	Major uint16
	Minor uint16
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Header is the decoded fixed prefix of an envelope.
type Header struct {
	Brand   Brand
	Version Version
}

// ParseHeader splits buf into its header and payload without checking the
// brand or version against any codec.
func ParseHeader(buf []byte) (Header, []byte, error) {
	if len(buf) < HeaderSize {
		return Header{}, nil, errors.Wrapf(ErrFormat,
			"need at least %d bytes, got %d", HeaderSize, len(buf))
	}
	var h Header
	copy(h.Brand[:], buf[:BrandSize])
	h.Version.Major = binary.BigEndian.Uint16(buf[4:6])
	h.Version.Minor = binary.BigEndian.Uint16(buf[6:8])
	return h, buf[HeaderSize:], nil
}

// DecodeFunc decodes the MessagePack payload of one minor version of a type.
type DecodeFunc[T any] func(payload []byte) (T, error)

// DecoderTable maps a minor version to the decoder for that layout.
type DecoderTable[T any] map[uint16]DecodeFunc[T]

// Codec frames payloads of one protocol object type.
type Codec[T any] struct {
	brand    Brand
	version  Version
	decoders DecoderTable[T]
}

var (
	registryMu sync.Mutex
	registry   = map[Brand]Version{}
)

// NewCodec creates the codec of a protocol object type and registers its
// brand. It panics when the brand is malformed or already taken, or when the
// table has no decoder for the current minor version; codecs are meant to be
// created once in package scope.
func NewCodec[T any](brand string, version Version, decoders DecoderTable[T]) *Codec[T] {
	b, err := ParseBrand(brand)
	if err != nil {
		panic(err)
	}
	if _, ok := decoders[version.Minor]; !ok {
		panic(fmt.Sprintf("versioning: brand %s has no decoder for current minor version %d", b, version.Minor))
	}
	for minor := range decoders {
		if minor > version.Minor {
			panic(fmt.Sprintf("versioning: brand %s registers decoder for future minor version %d", b, minor))
		}
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, taken := registry[b]; taken {
		panic(fmt.Sprintf("versioning: brand %s registered twice", b))
	}
	registry[b] = version

	table := make(DecoderTable[T], len(decoders))
	for minor, fn := range decoders {
		table[minor] = fn
	}
	return &Codec[T]{brand: b, version: version, decoders: table}
}

// Registered returns every brand known to the running binary with its
// current version, ordered by brand.
func Registered() []Header {
	registryMu.Lock()
	defer registryMu.Unlock()

	out := make([]Header, 0, len(registry))
	for b, v := range registry {
		out = append(out, Header{Brand: b, Version: v})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Brand.String() < out[j].Brand.String()
	})
	return out
}

// Lookup reports the current version registered for a brand.
func Lookup(b Brand) (Version, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	v, ok := registry[b]
	return v, ok
}

// Brand returns the type tag of this codec.
func (c *Codec[T]) Brand() Brand {
	return c.brand
}

// Version returns the version this codec writes.
func (c *Codec[T]) Version() Version {
	return c.version
}

// Encode prefixes an already encoded payload with the current header.
func (c *Codec[T]) Encode(payload []byte) []byte {
	out := make([]byte, HeaderSize, HeaderSize+len(payload))
	copy(out, c.brand[:])
	binary.BigEndian.PutUint16(out[4:6], c.version.Major)
	binary.BigEndian.PutUint16(out[6:8], c.version.Minor)
	return append(out, payload...)
}

// Decode validates the header of buf and hands the payload to the decoder
// registered for its minor version.
func (c *Codec[T]) Decode(buf []byte) (T, error) {
	var zero T

	h, payload, err := ParseHeader(buf)
	if err != nil {
		return zero, err
	}
	if h.Brand != c.brand {
		return zero, errors.Wrapf(ErrBrandMismatch, "expected %q, got %q", c.brand, h.Brand)
	}
	if h.Version.Major != c.version.Major {
		return zero, errors.Wrapf(ErrVersion,
			"%s: major version %d, supported %d", c.brand, h.Version.Major, c.version.Major)
	}
	if h.Version.Minor > c.version.Minor {
		return zero, errors.Wrapf(ErrVersion,
			"%s: minor version %d is newer than supported %s", c.brand, h.Version.Minor, c.version)
	}
	decode, ok := c.decoders[h.Version.Minor]
	if !ok {
		return zero, errors.Wrapf(ErrVersion,
			"%s: minor version %d is not readable", c.brand, h.Version.Minor)
	}

	v, err := decode(payload)
	if err != nil {
		// both the taxonomy error and the decoder's cause stay matchable
		return zero, fmt.Errorf("%w: %s %s: %w", ErrDeserialization, c.brand, h.Version, err)
	}
	return v, nil
}
