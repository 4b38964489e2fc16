package config

import (
	"os"
	"path/filepath"

	"github.com/tacogips/cpre/internal/charset"
	"github.com/tacogips/cpre/internal/expr"
)

// Configuration file names searched in the working directory, in order.
const (
	HCLConfigFile  = "cpre.hcl"
	JSONConfigFile = "cpre.json"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Sources:                     []string{"."},
		Destination:                 "preprocessed",
		EncodingIn:                  charset.Default,
		EncodingOut:                 charset.Default,
		ContentStableWrite:          true,
		StripComments:               false,
		PreserveFileAttributes:      false,
		AllowWhitespaceBeforePrefix: false,
		ProcessExtensions:           DefaultProcessExtensions(),
		ExcludedExtensions:          DefaultExcludedExtensions(),
		IgnorePatterns:              DefaultIgnorePatterns(),
		CopyExcluded:                false,
		MaxIncludeDepth:             10,
		Workers:                     1,
		Globals:                     map[string]expr.Value{},
	}
}

// DefaultProcessExtensions returns the extensions preprocessed by default.
func DefaultProcessExtensions() []string {
	return []string{"java", "txt", "htm", "html", "c", "cpp", "h", "go", "js", "ts", "kt", "cs"}
}

// DefaultExcludedExtensions returns the extensions skipped by default.
func DefaultExcludedExtensions() []string {
	return []string{"xml"}
}

// DefaultIgnorePatterns returns the default ignore patterns.
func DefaultIgnorePatterns() []string {
	return []string{
		".git/",
		".svn/",
		".DS_Store",
		"Thumbs.db",
		"*.swp",
		"*~",
	}
}

// FindConfigFile returns the first configuration file present in dir, or "".
func FindConfigFile(dir string) string {
	for _, name := range []string{HCLConfigFile, JSONConfigFile} {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
