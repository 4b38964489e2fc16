package discover

import (
	"path/filepath"
	"strings"

	"github.com/tacogips/cpre/internal/logger"
)

// ShouldIgnore checks if a path relative to its source root matches any ignore pattern.
func ShouldIgnore(relPath string, ignorePatterns []string) bool {
	for _, pattern := range ignorePatterns {
		if MatchesPattern(relPath, pattern) {
			logger.Debug("[discover] Ignoring %s (matched pattern: %s)", relPath, pattern)
			return true
		}
	}
	return false
}

// MatchesPattern checks if a path matches a glob pattern.
// A pattern without a separator is also tried against the base name,
// and a pattern ending in "/" matches a directory and everything below it.
func MatchesPattern(path, pattern string) bool {
	path = filepath.ToSlash(path)
	pattern = filepath.ToSlash(pattern)

	if dir := strings.TrimSuffix(pattern, "/"); dir != pattern {
		if path == dir || strings.HasPrefix(path, dir+"/") {
			return true
		}
		pattern = dir
	}

	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}

	if !strings.Contains(pattern, "/") {
		matched, err := filepath.Match(pattern, filepath.Base(path))
		if err == nil && matched {
			return true
		}
	}

	return false
}

// Extension returns the lower-cased extension of name without the dot.
func Extension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || ext == name {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// extensionSet normalizes extensions such as ".JAVA" or "java" into a lookup set.
func extensionSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			set[e] = true
		}
	}
	return set
}
