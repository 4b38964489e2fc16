package cli

import (
	"github.com/spf13/pflag"

	"github.com/tacogips/cpre/internal/app"
)

// Common flag names and descriptions
const (
	// Flag names
	FlagConfig          = "config"
	FlagSource          = "source"
	FlagDestination     = "destination"
	FlagDefine          = "define"
	FlagStripComments   = "strip-comments"
	FlagNoStableWrite   = "no-stable-write"
	FlagKeepAttributes  = "keep-attributes"
	FlagAllowWhitespace = "allow-whitespace"
	FlagCopyExcluded    = "copy-excluded"
	FlagInEncoding      = "in-encoding"
	FlagOutEncoding     = "out-encoding"
	FlagWorkers         = "workers"
	FlagDryRun          = "dry-run"
	FlagVerbose         = "verbose"
	FlagNoColor         = "no-color"
	FlagQuiet           = "quiet"
	FlagDebug           = "debug"

	// Flag descriptions
	DescConfig          = "Path to config file (default: cpre.hcl or cpre.json in the working directory)"
	DescSource          = "Source directory (repeatable)"
	DescDestination     = "Destination directory"
	DescDefine          = "Define a global variable as name or name=expression (repeatable)"
	DescStripComments   = "Remove comments from the output"
	DescNoStableWrite   = "Rewrite destinations even when their content is unchanged"
	DescKeepAttributes  = "Copy file permissions and modification times to destinations"
	DescAllowWhitespace = "Recognize directives written as // #directive"
	DescCopyExcluded    = "Copy files removed by //#excludeif instead of skipping them"
	DescInEncoding      = "Charset of source files"
	DescOutEncoding     = "Charset of destination files"
	DescWorkers         = "Number of files rendered concurrently"
	DescDryRun          = "Show differences without writing"
	DescVerbose         = "Verbose output"
	DescNoColor         = "Disable colored output"
	DescQuiet           = "Suppress output"
	DescDebug           = "Enable debug logging"
)

// overridesFromFlags collects the process flags the user set explicitly.
// Flags left at their defaults do not override the configuration file.
func overridesFromFlags(flags *pflag.FlagSet, o processOptions) app.Overrides {
	var overrides app.Overrides
	if flags.Changed(FlagSource) {
		overrides.Sources = o.sources
	}
	if flags.Changed(FlagDestination) {
		overrides.Destination = o.destination
	}
	if flags.Changed(FlagInEncoding) {
		overrides.EncodingIn = o.inEncoding
	}
	if flags.Changed(FlagOutEncoding) {
		overrides.EncodingOut = o.outEncoding
	}
	if flags.Changed(FlagStripComments) {
		overrides.StripComments = boolPtr(o.stripComments)
	}
	if flags.Changed(FlagNoStableWrite) {
		overrides.ContentStableWrite = boolPtr(!o.noStableWrite)
	}
	if flags.Changed(FlagKeepAttributes) {
		overrides.PreserveFileAttributes = boolPtr(o.keepAttributes)
	}
	if flags.Changed(FlagAllowWhitespace) {
		overrides.AllowWhitespaceBeforePrefix = boolPtr(o.allowWhitespace)
	}
	if flags.Changed(FlagCopyExcluded) {
		overrides.CopyExcluded = boolPtr(o.copyExcluded)
	}
	if flags.Changed(FlagWorkers) {
		overrides.Workers = o.workers
	}
	return overrides
}

func boolPtr(b bool) *bool {
	return &b
}
