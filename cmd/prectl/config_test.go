package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		content   string
		wantLevel string
		wantHome  string
		wantErr   bool
	}{
		{"full", "level = \"debug\"\nhome = \"/var/lib/prectl\"\n", "debug", "/var/lib/prectl", false},
		{"level only", "level = \"warn\"\n", "warn", defaultHome(), false},
		{"empty", "", defaultLevel, defaultHome(), false},
		{"unknown level", "level = \"loud\"\n", "", "", true},
		{"malformed", "level = \n", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, strings.ReplaceAll(tt.name, " ", "_")+".toml", tt.content)

			cfg, err := LoadConfig(path, true)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, cfg.Level)
			assert.Equal(t, tt.wantHome, cfg.Home)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")

	cfg, err := LoadConfig(path, false)
	require.NoError(t, err)
	assert.Equal(t, defaultLevel, cfg.Level)

	_, err = LoadConfig(path, true)
	require.Error(t, err)
}

func TestConfigLogLevel(t *testing.T) {
	lvl, err := Config{Level: "warn"}.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, lvl)

	_, err = Config{Level: "nope"}.LogLevel()
	require.Error(t, err)
}

func TestLoadPolicy(t *testing.T) {
	dir := t.TempDir()

	t.Run("with conditions", func(t *testing.T) {
		path := writeFile(t, dir, "with.toml", "dkg = \"random\"\nconditions = \"abcd\"\nauthorization = \"YXV0aA==\"\n")
		policy, err := LoadPolicy(path)
		require.NoError(t, err)

		c, ok := policy.Conditions()
		require.True(t, ok)
		assert.Equal(t, "abcd", c.String())
		assert.Equal(t, []byte("auth"), policy.Authorization())
		assert.Equal(t, append(policy.PublicKey().Bytes(), "abcd"...), policy.AAD())
	})

	t.Run("explicit key without conditions", func(t *testing.T) {
		first, err := LoadPolicy(writeFile(t, dir, "first.toml", "dkg = \"random\"\nauthorization = \"AA==\"\n"))
		require.NoError(t, err)
		_, ok := first.Conditions()
		assert.False(t, ok)

		content := "dkg = \"" + first.PublicKey().String() + "\"\nauthorization = \"AA==\"\n"
		second, err := LoadPolicy(writeFile(t, dir, "second.toml", content))
		require.NoError(t, err)
		assert.True(t, second.PublicKey().Equal(first.PublicKey()))
	})

	invalid := []struct {
		name    string
		content string
	}{
		{"missing dkg", "authorization = \"AA==\"\n"},
		{"bad dkg", "dkg = \"0102\"\nauthorization = \"AA==\"\n"},
		{"bad authorization", "dkg = \"random\"\nauthorization = \"***\"\n"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPolicy(writeFile(t, dir, "invalid.toml", tt.content))
			require.Error(t, err)
		})
	}

	_, err := LoadPolicy(filepath.Join(dir, "absent.toml"))
	require.Error(t, err)
}
