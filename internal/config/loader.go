package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tacogips/cpre/internal/expr"
	"github.com/tacogips/cpre/internal/logger"
)

// Loader defines the interface for loading configuration files.
type Loader interface {
	// Load loads configuration from the specified file path.
	Load(path string) (*Config, error)
	// LoadOrDefault loads configuration or returns defaults if file doesn't exist.
	LoadOrDefault(path string) (*Config, error)
	// Validate validates the configuration.
	Validate(config *Config) error
}

// FileLoader implements the Loader interface for file-based configuration loading.
// The decoder is chosen by file extension: .json or .hcl.
type FileLoader struct{}

// NewLoader creates a new FileLoader instance.
func NewLoader() Loader {
	return &FileLoader{}
}

// Load loads configuration from the specified file path.
// Attributes absent from the file keep their default values.
func (l *FileLoader) Load(path string) (*Config, error) {
	logger.Debug("[config] loading %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewConfigErrorWithCause(ConfigNotFound, path, "configuration file not found", err)
		}
		return nil, NewConfigErrorWithCause(ConfigInvalid, path, "failed to read configuration file", err)
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = decodeJSON(path, data, cfg)
	case ".hcl":
		err = decodeHCL(path, data, cfg)
	default:
		err = NewConfigError(ConfigUnsupportedFormat, path,
			fmt.Sprintf("unsupported configuration format %q (expected .json or .hcl)", filepath.Ext(path)))
	}
	if err != nil {
		return nil, err
	}

	mergeConfig(cfg, DefaultConfig())
	logger.DebugJSON("config", cfg)
	return cfg, nil
}

// LoadOrDefault loads configuration or returns defaults if file doesn't exist.
func (l *FileLoader) LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	cfg, err := l.Load(path)
	if err != nil {
		if cfgErr, ok := err.(*ConfigError); ok && cfgErr.Type == ConfigNotFound {
			logger.Debug("[config] %s not found, using defaults", path)
			return DefaultConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration.
func (l *FileLoader) Validate(config *Config) error {
	return Validate(config)
}

// decodeJSON decodes data onto cfg. The "globals" object is converted separately
// so integers and floats keep their kind.
func decodeJSON(path string, data []byte, cfg *Config) error {
	if err := json.Unmarshal(data, cfg); err != nil {
		return NewConfigErrorWithCause(ConfigInvalid, path, "invalid JSON syntax", err)
	}

	var raw struct {
		Globals map[string]interface{} `json:"globals"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return NewConfigErrorWithCause(ConfigInvalid, path, "invalid globals object", err)
	}
	if raw.Globals == nil {
		return nil
	}

	names := make([]string, 0, len(raw.Globals))
	for name := range raw.Globals {
		names = append(names, name)
	}
	sort.Strings(names)

	globals := make(map[string]expr.Value, len(raw.Globals))
	for _, name := range names {
		v, err := valueFromJSON(raw.Globals[name])
		if err != nil {
			return &ConfigError{Type: ConfigInvalid, File: path, Field: "globals." + name,
				Message: "unsupported global value", Cause: err}
		}
		globals[name] = v
	}
	cfg.Globals = globals
	return nil
}

// mergeConfig replaces zero values that have no meaning with their defaults.
func mergeConfig(cfg, defaults *Config) {
	if len(cfg.Sources) == 0 {
		cfg.Sources = defaults.Sources
	}
	if cfg.Destination == "" {
		cfg.Destination = defaults.Destination
	}
	if cfg.EncodingIn == "" {
		cfg.EncodingIn = defaults.EncodingIn
	}
	if cfg.EncodingOut == "" {
		cfg.EncodingOut = defaults.EncodingOut
	}
	if cfg.MaxIncludeDepth == 0 {
		cfg.MaxIncludeDepth = defaults.MaxIncludeDepth
	}
	if cfg.Workers == 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.Globals == nil {
		cfg.Globals = defaults.Globals
	}
}

// ExpandPath expands ~ to home directory and evaluates relative paths.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		if len(path) == 1 {
			return homeDir, nil
		}
		if path[1] == filepath.Separator {
			return filepath.Join(homeDir, path[2:]), nil
		}
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	return absPath, nil
}
