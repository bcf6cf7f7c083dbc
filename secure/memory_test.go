package secure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroize(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"nil", nil},
		{"empty", []byte{}},
		{"key sized", []byte("0123456789abcdef0123456789abcdef")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Zeroize(tt.data)
			for i, v := range tt.data {
				require.Zerof(t, v, "byte %d not zeroed", i)
			}
		})
	}
}

func TestBufferLifecycle(t *testing.T) {
	src := []byte{1, 2, 3, 4}
	b := FromBytes(src)
	assert.Equal(t, 4, b.Len())

	// the buffer owns a copy
	src[0] = 9
	err := b.Use(func(secret []byte) error {
		assert.Equal(t, []byte{1, 2, 3, 4}, secret)
		return nil
	})
	require.NoError(t, err)

	b.Clear()
	b.Clear()
	assert.Equal(t, 0, b.Len())
	assert.Error(t, b.Use(func([]byte) error { return nil }))
}

func TestFromHex(t *testing.T) {
	b, err := FromHex([]byte("  0a0b0c\n"))
	require.NoError(t, err)
	defer b.Clear()

	err = b.Use(func(secret []byte) error {
		assert.Equal(t, []byte{0x0a, 0x0b, 0x0c}, secret)
		return nil
	})
	require.NoError(t, err)

	_, err = FromHex([]byte("zz"))
	assert.Error(t, err)
}

func TestEmptyBuffer(t *testing.T) {
	b := FromBytes(nil)
	assert.Equal(t, 0, b.Len())
	b.Clear()
}
