package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const configFileName = "irforge.toml"

// dialectEnv selects the writer version when neither a flag nor the
// config file names one.
const dialectEnv = "IRFORGE_DIALECT"

type projectConfig struct {
	Output   outputConfig   `toml:"output"`
	Generate generateConfig `toml:"generate"`
}

type outputConfig struct {
	Dir     string `toml:"dir"`
	Dialect string `toml:"dialect"`
}

type generateConfig struct {
	Suites []string `toml:"suites"`
	Jobs   int      `toml:"jobs"`
	Cache  *bool    `toml:"cache"`
}

// loadedConfig is a config file together with where it was found.
// Relative paths inside it are resolved against Root.
type loadedConfig struct {
	Path   string
	Root   string
	Config projectConfig
}

func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// loadConfig reads explicit when given, otherwise the nearest
// irforge.toml above the working directory. A missing file is not an
// error; nil is returned.
func loadConfig(explicit string) (*loadedConfig, error) {
	path := explicit
	if path == "" {
		found, ok, err := findConfig(".")
		if err != nil || !ok {
			return nil, err
		}
		path = found
	}
	cfg, err := decodeConfig(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &loadedConfig{Path: abs, Root: filepath.Dir(abs), Config: cfg}, nil
}

func decodeConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("output") {
		return projectConfig{}, fmt.Errorf("%s: missing [output] section", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return projectConfig{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if cfg.Generate.Jobs < 0 {
		return projectConfig{}, fmt.Errorf("%s: [generate] jobs must not be negative", path)
	}
	return cfg, nil
}
