package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tacogips/cpre/internal/app"
	"github.com/tacogips/cpre/internal/logger"
)

// processOptions holds the process command flags.
type processOptions struct {
	config          string
	sources         []string
	destination     string
	defines         []string
	stripComments   bool
	noStableWrite   bool
	keepAttributes  bool
	allowWhitespace bool
	copyExcluded    bool
	inEncoding      string
	outEncoding     string
	workers         int
	dryRun          bool
	verbose         bool
}

func newProcessCmd() *cobra.Command {
	var o processOptions

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Preprocess the source directories",
		Long: `Preprocess every source directory into the destination directory.

Settings come from the configuration file (cpre.hcl or cpre.json in the
working directory, or the file given with --config). Flags given on the
command line override the file; -D definitions are evaluated after the
configured globals and can reference them.

Files with a processed extension run through the preprocessor. Other files
are copied unchanged. Destinations whose content would not change are left
untouched unless --no-stable-write is given.

Examples:
  cpre process
  cpre process -s src/main/java -d target/java -D debug -D "level=3"
  cpre process --config build/cpre.hcl --workers 4
  cpre process --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, o)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&o.config, FlagConfig, "c", "", DescConfig)
	flags.StringArrayVarP(&o.sources, FlagSource, "s", nil, DescSource)
	flags.StringVarP(&o.destination, FlagDestination, "d", "", DescDestination)
	flags.StringArrayVarP(&o.defines, FlagDefine, "D", nil, DescDefine)
	flags.BoolVar(&o.stripComments, FlagStripComments, false, DescStripComments)
	flags.BoolVar(&o.noStableWrite, FlagNoStableWrite, false, DescNoStableWrite)
	flags.BoolVar(&o.keepAttributes, FlagKeepAttributes, false, DescKeepAttributes)
	flags.BoolVar(&o.allowWhitespace, FlagAllowWhitespace, false, DescAllowWhitespace)
	flags.BoolVar(&o.copyExcluded, FlagCopyExcluded, false, DescCopyExcluded)
	flags.StringVar(&o.inEncoding, FlagInEncoding, "", DescInEncoding)
	flags.StringVar(&o.outEncoding, FlagOutEncoding, "", DescOutEncoding)
	flags.IntVarP(&o.workers, FlagWorkers, "w", 1, DescWorkers)
	flags.BoolVarP(&o.dryRun, FlagDryRun, "n", false, DescDryRun)
	flags.BoolVarP(&o.verbose, FlagVerbose, "v", false, DescVerbose)

	return cmd
}

func runProcess(cmd *cobra.Command, o processOptions) error {
	if cmd.Flags().Changed(FlagWorkers) && o.workers < 1 {
		return fmt.Errorf("--%s must be at least 1, got %d", FlagWorkers, o.workers)
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	opts := app.ProcessOptions{
		ConfigPath:  o.config,
		Overrides:   overridesFromFlags(cmd.Flags(), o),
		Definitions: o.defines,
		DryRun:      o.dryRun,
		Log:         logger.NewConsoleWriters(out, errOut, globalQuiet),
	}

	if o.dryRun {
		printInfo(out, "Dry run: no files will be written")
	}

	result, err := app.Process(cmd.Context(), opts)
	if err != nil {
		return err
	}

	printFileResults(out, errOut, result, o.verbose)
	printSummary(out, result)

	return result.Err()
}

// printFileResults prints per-file lines. Failures are always printed; other files only when verbose.
// Dry-run diffs are printed for every changed file.
func printFileResults(out, errOut io.Writer, result *app.ProcessResult, verbose bool) {
	wd, _ := os.Getwd()
	for _, f := range result.Files {
		rel := displayPath(wd, f.File.SourcePath)
		switch f.Status {
		case app.StatusFailed:
			printErrorMsg(errOut, fmt.Sprintf("%s: %v", rel, f.Err))
		case app.StatusChanged:
			if verbose {
				printProgress(out, fmt.Sprintf("%s would change", rel))
			}
			if f.Diff != "" {
				printDiff(out, f.Diff)
			}
		default:
			if verbose {
				printVerbose(out, true, fmt.Sprintf("%-9s %s", f.Status, rel))
			}
		}
	}
}

// displayPath returns path relative to wd when it lies inside wd.
func displayPath(wd, path string) string {
	if wd == "" {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
