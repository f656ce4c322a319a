// Package config loads Agent Board's optional startup configuration file,
// <data-dir>/config.toml. Unlike the Document Store (which tolerates
// corruption at any time because it holds live application state), config is
// read once at boot: a missing file means defaults, a malformed file is a
// startup error.
//
// Grounded on the teacher's internal/infra/config.Loader (TOML file loading
// via pelletier/go-toml/v2, default-then-override merge shape), trimmed from
// the teacher's multi-section worker/complete/diff/tasks schema down to the
// handful of fields SPEC_FULL.md's ambient configuration section names.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultPort is the preferred HTTP Gateway port (spec.md §4.F).
const DefaultPort = 17872

const FileName = "config.toml"

// Config is Agent Board's startup configuration.
type Config struct {
	// Port is the preferred HTTP Gateway listen port. Zero means DefaultPort.
	Port int `toml:"port"`

	// DataDir overrides the default application data directory.
	DataDir string `toml:"data_dir"`

	// Debug enables verbose request/event tracing (also settable via
	// AGENT_BOARD_DEBUG=1; either source enables it).
	Debug bool `toml:"debug"`

	// LogAllow lists additional request-log path prefixes the Gateway
	// silences, on top of its built-in suppression list.
	LogAllow []string `toml:"log_allow"`
}

// Default returns the zero-value configuration with its documented defaults
// applied.
func Default() *Config {
	return &Config{Port: DefaultPort}
}

// Load reads <dataDir>/config.toml. A missing file yields Default(); a
// present but malformed file is a startup error.
func Load(dataDir string) (*Config, error) {
	path := filepath.Join(dataDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	return cfg, nil
}
