package versioning

import (
	"bytes"
	"fmt"

	"git.sr.ht/~sircmpwn/go-bare"
)

// StandardMarshal encodes v without an envelope header. It is used for values
// that never travel on their own, such as the plaintext sealed inside an
// encrypted key fragment.
func StandardMarshal(v any) ([]byte, error) {
	return bare.Marshal(v)
}

// StandardUnmarshal is the inverse of StandardMarshal. data must hold exactly
// one value.
func StandardUnmarshal(data []byte, v any) error {
	r := bytes.NewReader(data)
	if err := bare.UnmarshalBareReader(bare.NewReader(r), v); err != nil {
		return err
	}
	if r.Len() != 0 {
		return fmt.Errorf("%d trailing bytes after value", r.Len())
	}
	return nil
}
