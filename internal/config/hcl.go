package config

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/tacogips/cpre/internal/expr"
	"github.com/tacogips/cpre/internal/logger"
)

// hclConfigFile is the top-level structure of an HCL configuration file.
// Pointer fields distinguish an absent attribute from its zero value.
type hclConfigFile struct {
	Sources                     []string         `hcl:"sources,optional"`
	Destination                 *string          `hcl:"destination,optional"`
	EncodingIn                  *string          `hcl:"encoding_in,optional"`
	EncodingOut                 *string          `hcl:"encoding_out,optional"`
	ContentStableWrite          *bool            `hcl:"content_stable_write,optional"`
	StripComments               *bool            `hcl:"strip_comments,optional"`
	PreserveFileAttributes      *bool            `hcl:"preserve_file_attributes,optional"`
	AllowWhitespaceBeforePrefix *bool            `hcl:"allow_whitespace_before_prefix,optional"`
	ProcessExtensions           []string         `hcl:"process_extensions,optional"`
	ExcludedExtensions          []string         `hcl:"excluded_extensions,optional"`
	IgnorePatterns              []string         `hcl:"ignore_patterns,optional"`
	CopyExcluded                *bool            `hcl:"copy_excluded,optional"`
	MaxIncludeDepth             *int             `hcl:"max_include_depth,optional"`
	Workers                     *int             `hcl:"workers,optional"`
	Globals                     *hclGlobalsBlock `hcl:"globals,block"`
}

// hclGlobalsBlock keeps the body of the globals block for attribute-by-attribute decoding.
type hclGlobalsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// decodeHCL parses src and applies every attribute it sets onto cfg.
func decodeHCL(path string, src []byte, cfg *Config) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return NewConfigErrorWithCause(ConfigInvalid, path, "invalid HCL syntax", diags)
	}

	var parsed hclConfigFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return NewConfigErrorWithCause(ConfigInvalid, path, "failed to decode HCL configuration", diags)
	}

	if parsed.Sources != nil {
		cfg.Sources = parsed.Sources
	}
	setString(&cfg.Destination, parsed.Destination)
	setString(&cfg.EncodingIn, parsed.EncodingIn)
	setString(&cfg.EncodingOut, parsed.EncodingOut)
	setBool(&cfg.ContentStableWrite, parsed.ContentStableWrite)
	setBool(&cfg.StripComments, parsed.StripComments)
	setBool(&cfg.PreserveFileAttributes, parsed.PreserveFileAttributes)
	setBool(&cfg.AllowWhitespaceBeforePrefix, parsed.AllowWhitespaceBeforePrefix)
	if parsed.ProcessExtensions != nil {
		cfg.ProcessExtensions = parsed.ProcessExtensions
	}
	if parsed.ExcludedExtensions != nil {
		cfg.ExcludedExtensions = parsed.ExcludedExtensions
	}
	if parsed.IgnorePatterns != nil {
		cfg.IgnorePatterns = parsed.IgnorePatterns
	}
	setBool(&cfg.CopyExcluded, parsed.CopyExcluded)
	setInt(&cfg.MaxIncludeDepth, parsed.MaxIncludeDepth)
	setInt(&cfg.Workers, parsed.Workers)

	if parsed.Globals != nil {
		globals, err := decodeHCLGlobals(path, parsed.Globals.Body)
		if err != nil {
			return err
		}
		cfg.Globals = globals
	}
	return nil
}

// decodeHCLGlobals evaluates every attribute of the globals block without a variable context.
func decodeHCLGlobals(path string, body hcl.Body) (map[string]expr.Value, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, NewConfigErrorWithCause(ConfigInvalid, path, "globals block must only contain attributes", diags)
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	globals := make(map[string]expr.Value, len(attrs))
	for _, name := range names {
		val, diags := attrs[name].Expr.Value(nil)
		if diags.HasErrors() {
			return nil, &ConfigError{Type: ConfigInvalid, File: path, Field: "globals." + name,
				Message: "cannot evaluate global", Cause: diags}
		}
		v, err := valueFromCty(val)
		if err != nil {
			return nil, &ConfigError{Type: ConfigInvalid, File: path, Field: "globals." + name,
				Message: "unsupported global value", Cause: err}
		}
		logger.Debug("[config] global %s = %#v", name, v)
		globals[name] = v
	}
	return globals, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
