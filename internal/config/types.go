package config

import "github.com/tacogips/cpre/internal/expr"

// Config represents the settings of one preprocessing run.
type Config struct {
	// Sources are the source root directories.
	Sources []string `json:"sources"`
	// Destination is the destination root directory.
	Destination string `json:"destination"`
	// EncodingIn is the charset used to read source files.
	EncodingIn string `json:"encoding_in"`
	// EncodingOut is the charset used to write destination files.
	EncodingOut string `json:"encoding_out"`
	// ContentStableWrite skips writing destinations whose content did not change.
	ContentStableWrite bool `json:"content_stable_write"`
	// StripComments removes comments from preprocessed output.
	StripComments bool `json:"strip_comments"`
	// PreserveFileAttributes copies mode and modification time from sources.
	PreserveFileAttributes bool `json:"preserve_file_attributes"`
	// AllowWhitespaceBeforePrefix accepts "// #keyword" directives.
	AllowWhitespaceBeforePrefix bool `json:"allow_whitespace_before_prefix"`
	// ProcessExtensions are the extensions of files that are preprocessed.
	ProcessExtensions []string `json:"process_extensions"`
	// ExcludedExtensions are the extensions of files that are skipped.
	ExcludedExtensions []string `json:"excluded_extensions"`
	// IgnorePatterns are glob patterns of paths that are skipped.
	IgnorePatterns []string `json:"ignore_patterns"`
	// CopyExcluded copies files removed by //#excludeif instead of skipping them.
	CopyExcluded bool `json:"copy_excluded"`
	// MaxIncludeDepth bounds //#include and evalfile nesting.
	MaxIncludeDepth int `json:"max_include_depth"`
	// Workers is the number of main passes run concurrently.
	Workers int `json:"workers"`
	// Globals seed the global variable table. Decoded from the "globals" object or block.
	Globals map[string]expr.Value `json:"-"`
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Sources = append([]string(nil), c.Sources...)
	out.ProcessExtensions = append([]string(nil), c.ProcessExtensions...)
	out.ExcludedExtensions = append([]string(nil), c.ExcludedExtensions...)
	out.IgnorePatterns = append([]string(nil), c.IgnorePatterns...)
	out.Globals = make(map[string]expr.Value, len(c.Globals))
	for k, v := range c.Globals {
		out.Globals[k] = v
	}
	return &out
}
