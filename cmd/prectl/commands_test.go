package main

import (
	"bytes"
	"encoding/base64"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonr-io/prekit/accesscontrol"
	"github.com/sonr-io/prekit/keyfrag"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--level=disabled"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func keygen(t *testing.T, dir string) string {
	t.Helper()
	out, err := run(t, "keygen", "--out", dir)
	require.NoError(t, err)
	return strings.TrimSpace(out)
}

func TestKeygen(t *testing.T) {
	dir := t.TempDir()
	pub := keygen(t, dir)
	assert.True(t, strings.HasPrefix(pub, "z"), "base58btc multibase prefix")

	pk, err := parsePublicKey(filepath.Join(dir, publicKeyFile))
	require.NoError(t, err)
	fromText, err := parsePublicKey(pub)
	require.NoError(t, err)
	assert.True(t, pk.Equal(fromText))

	sk, err := readSecretKey(filepath.Join(dir, secretKeyFile))
	require.NoError(t, err)
	assert.True(t, sk.PublicKey().Equal(pk))
}

func TestGrantOpenInspect(t *testing.T) {
	publisher, bob, ursula, other := t.TempDir(), t.TempDir(), t.TempDir(), t.TempDir()
	keygen(t, publisher)
	keygen(t, bob)
	keygen(t, ursula)
	keygen(t, other)

	pubFile := func(dir string) string { return filepath.Join(dir, publicKeyFile) }
	secFile := func(dir string) string { return filepath.Join(dir, secretKeyFile) }

	out, err := run(t, "grant",
		"--signer", secFile(publisher),
		"--recipient", pubFile(ursula),
		"--recipient", pubFile(other),
		"--bob", pubFile(bob),
		"--label", "health-records",
	)
	require.NoError(t, err)
	lines := strings.Fields(out)
	require.Len(t, lines, 2)

	raw, err := base64.StdEncoding.DecodeString(lines[0])
	require.NoError(t, err)
	_, err = keyfrag.EncryptedKeyFragFromBytes(raw)
	require.NoError(t, err)

	t.Run("open", func(t *testing.T) {
		out, err := run(t, "open", lines[0],
			"--secret", secFile(ursula),
			"--publisher", pubFile(publisher),
			"--bob", pubFile(bob),
			"--label", "health-records",
		)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "verified"))
	})

	t.Run("open with wrong label", func(t *testing.T) {
		_, err := run(t, "open", lines[0],
			"--secret", secFile(ursula),
			"--publisher", pubFile(publisher),
			"--bob", pubFile(bob),
			"--label", "other",
		)
		require.Error(t, err)
	})

	t.Run("open with another node's key", func(t *testing.T) {
		_, err := run(t, "open", lines[1],
			"--secret", secFile(ursula),
			"--publisher", pubFile(publisher),
			"--bob", pubFile(bob),
			"--label", "health-records",
		)
		require.Error(t, err)
	})

	t.Run("inspect", func(t *testing.T) {
		out, err := run(t, "inspect", lines[0])
		require.NoError(t, err)
		assert.Contains(t, out, "brand:       EKFr")
		assert.Contains(t, out, "version:     1.0")
		assert.Contains(t, out, "status:      ok")
		assert.Contains(t, out, "fingerprint: Qm")
	})
}

func TestGrantValidation(t *testing.T) {
	dir := t.TempDir()
	keygen(t, dir)
	pub := filepath.Join(dir, publicKeyFile)

	_, err := run(t, "grant", "--signer", filepath.Join(dir, secretKeyFile), "--bob", pub, "--label", "l")
	require.Error(t, err)

	_, err = run(t, "grant", "--signer", filepath.Join(dir, secretKeyFile),
		"--recipient", pub, "--kfrag", "random", "--kfrag", "random", "--bob", pub, "--label", "l")
	require.Error(t, err)

	_, err = run(t, "grant", "--signer", filepath.Join(dir, secretKeyFile),
		"--recipient", pub, "--kfrag", "abcd", "--bob", pub, "--label", "l")
	require.Error(t, err)
}

func TestPolicyCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "policy.toml", "dkg = \"random\"\nconditions = \"abcd\"\nauthorization = \"YXV0aA==\"\n")

	out, err := run(t, "policy", "--file", path)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(out))
	require.NoError(t, err)
	policy, err := accesscontrol.AccessControlPolicyFromBytes(raw)
	require.NoError(t, err)
	assert.True(t, bytes.HasSuffix(policy.AAD(), []byte("abcd")))

	out, err = run(t, "inspect", strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Contains(t, out, "brand:       ACPo")
}

func TestInspectUnknownBrand(t *testing.T) {
	envelope := base64.StdEncoding.EncodeToString([]byte("Zzzz\x00\x01\x00\x00\x80"))
	out, err := run(t, "inspect", envelope)
	require.NoError(t, err)
	assert.Contains(t, out, "unknown brand")

	_, err = run(t, "inspect", base64.StdEncoding.EncodeToString([]byte("abc")))
	require.Error(t, err)

	_, err = run(t, "inspect", "not base64!")
	require.Error(t, err)
}

func TestBrands(t *testing.T) {
	out, err := run(t, "brands")
	require.NoError(t, err)
	assert.Equal(t, "ACPo 1.0\nAKFr 1.0\nAuDa 1.0\nEKFr 1.0\n", out)
}
