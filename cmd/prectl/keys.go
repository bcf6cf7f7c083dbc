package main

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	mb "github.com/multiformats/go-multibase"
	"github.com/pkg/errors"

	"github.com/sonr-io/prekit/secure"
	"github.com/sonr-io/prekit/umbral"
)

const (
	secretKeyFile = "secret.key"
	publicKeyFile = "public.key"
)

// encodePublicKey renders a public key as base58btc multibase text.
func encodePublicKey(pk umbral.PublicKey) (string, error) {
	return mb.Encode(mb.Base58BTC, pk.Bytes())
}

// parsePublicKey accepts multibase text or the path of a file holding it.
func parsePublicKey(value string) (umbral.PublicKey, error) {
	text := value
	if data, err := os.ReadFile(value); err == nil {
		text = string(data)
	}
	_, raw, err := mb.Decode(strings.TrimSpace(text))
	if err != nil {
		return umbral.PublicKey{}, errors.Wrapf(err, "public key %q is not multibase", value)
	}
	return umbral.PublicKeyFromBytes(raw)
}

// readSecretKey loads a hex secret key file through a wiped buffer.
func readSecretKey(path string) (*umbral.SecretKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read secret key %s", path)
	}
	defer secure.Zeroize(data)

	buf, err := secure.FromHex(data)
	if err != nil {
		return nil, errors.Wrapf(err, "secret key %s", path)
	}
	defer buf.Clear()

	var sk *umbral.SecretKey
	if err := buf.Use(func(secret []byte) error {
		var err error
		sk, err = umbral.SecretKeyFromBytes(secret)
		return err
	}); err != nil {
		return nil, errors.Wrapf(err, "secret key %s", path)
	}
	return sk, nil
}

// writeKeyPair stores sk as hex (owner-only) and its public key as multibase
// in dir.
func writeKeyPair(dir string, sk *umbral.SecretKey) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", errors.Wrapf(err, "failed to create %s", dir)
	}

	secret := sk.Bytes()
	defer secure.Zeroize(secret)
	encoded := []byte(hex.EncodeToString(secret))
	defer secure.Zeroize(encoded)

	if err := os.WriteFile(filepath.Join(dir, secretKeyFile), encoded, 0o600); err != nil {
		return "", errors.Wrap(err, "failed to write secret key")
	}

	pub, err := encodePublicKey(sk.PublicKey())
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, publicKeyFile), []byte(pub+"\n"), 0o644); err != nil {
		return "", errors.Wrap(err, "failed to write public key")
	}
	return pub, nil
}
