package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tacogips/cpre/internal/charset"
	"github.com/tacogips/cpre/internal/preprocessor"
)

// Validate validates the configuration and returns the first problem found.
func Validate(config *Config) error {
	if config == nil {
		return NewConfigError(ConfigValidationFailed, "", "configuration cannot be nil")
	}

	if len(config.Sources) == 0 {
		return NewConfigErrorWithField(ConfigValidationFailed, "", "sources", "at least one source directory is required")
	}
	for i, src := range config.Sources {
		if strings.TrimSpace(src) == "" {
			return NewConfigErrorWithField(ConfigValidationFailed, "", fmt.Sprintf("sources[%d]", i), "source directory cannot be empty")
		}
	}
	if strings.TrimSpace(config.Destination) == "" {
		return NewConfigErrorWithField(ConfigValidationFailed, "", "destination", "destination directory is required")
	}
	if err := validateDestination(config); err != nil {
		return err
	}

	if _, err := charset.Lookup(config.EncodingIn); err != nil {
		return &ConfigError{Type: ConfigValidationFailed, Field: "encoding_in", Message: "unknown charset", Cause: err}
	}
	if _, err := charset.Lookup(config.EncodingOut); err != nil {
		return &ConfigError{Type: ConfigValidationFailed, Field: "encoding_out", Message: "unknown charset", Cause: err}
	}

	if config.MaxIncludeDepth < 1 {
		return NewConfigErrorWithField(ConfigValidationFailed, "", "max_include_depth", "max include depth must be at least 1")
	}
	if config.Workers < 1 {
		return NewConfigErrorWithField(ConfigValidationFailed, "", "workers", "workers must be at least 1")
	}

	if err := validateExtensions(config); err != nil {
		return err
	}
	for i, pattern := range config.IgnorePatterns {
		if _, err := filepath.Match(strings.TrimSuffix(pattern, "/"), ""); err != nil {
			return &ConfigError{Type: ConfigValidationFailed, Field: fmt.Sprintf("ignore_patterns[%d]", i),
				Message: fmt.Sprintf("invalid glob pattern %q", pattern), Cause: err}
		}
	}

	for name := range config.Globals {
		if !preprocessor.IsVariableName(name) {
			return NewConfigErrorWithField(ConfigValidationFailed, "", "globals."+name, "invalid variable name")
		}
	}
	return nil
}

// validateDestination rejects a destination that is one of the sources.
func validateDestination(config *Config) error {
	dest, err := filepath.Abs(config.Destination)
	if err != nil {
		return &ConfigError{Type: ConfigValidationFailed, Field: "destination", Message: "cannot resolve path", Cause: err}
	}
	for _, src := range config.Sources {
		abs, err := filepath.Abs(src)
		if err != nil {
			continue
		}
		if abs == dest {
			return NewConfigErrorWithField(ConfigValidationFailed, "", "destination",
				fmt.Sprintf("destination cannot be the source directory %s", src))
		}
	}
	return nil
}

// validateExtensions rejects an extension listed as both processed and excluded.
func validateExtensions(config *Config) error {
	process := make(map[string]bool, len(config.ProcessExtensions))
	for _, ext := range config.ProcessExtensions {
		process[normalizeExtension(ext)] = true
	}
	for _, ext := range config.ExcludedExtensions {
		if process[normalizeExtension(ext)] {
			return NewConfigErrorWithField(ConfigValidationFailed, "", "excluded_extensions",
				fmt.Sprintf("extension %q is also listed in process_extensions", ext))
		}
	}
	return nil
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
