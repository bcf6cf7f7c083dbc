package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	z "github.com/Oudwins/zog"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	defaultDirName    = ".prectl"
	defaultConfigName = "config.toml"
	defaultLevel      = "info"
)

// Config holds the settings read from the prectl config file.
type Config struct {
	// Level is the minimum log level
	Level string
	// Home is the directory key files are read from and written to
	Home string
}

var logLevels = []string{"trace", "debug", "info", "warn", "error", "disabled"}

var configSchema = z.Struct(z.Shape{
	"level": z.String().Optional().OneOf(logLevels, z.Message("level must be one of trace, debug, info, warn, error, disabled")),
	"home":  z.String().Optional(),
})

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultDirName
	}
	return filepath.Join(home, defaultDirName)
}

// DefaultConfigPath is the config file used when --config is not given.
func DefaultConfigPath() string {
	return filepath.Join(defaultHome(), defaultConfigName)
}

// LoadConfig reads and validates the config at path. A missing file yields
// the defaults unless the caller asked for that file explicitly.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := Config{Level: defaultLevel, Home: defaultHome()}

	raw := map[string]any{}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return Config{}, errors.Wrapf(err, "failed to read config %s", path)
	}

	var parsed Config
	if errs := configSchema.Parse(raw, &parsed); errs != nil {
		return Config{}, fmt.Errorf("invalid config %s: %v", path, errs)
	}
	if parsed.Level != "" {
		cfg.Level = parsed.Level
	}
	if parsed.Home != "" {
		cfg.Home = parsed.Home
	}
	return cfg, nil
}

// LogLevel converts the configured level for the logger.
func (c Config) LogLevel() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "invalid log level %q", c.Level)
	}
	return lvl, nil
}
