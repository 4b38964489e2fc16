package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/tacogips/cpre/internal/logger"
	"github.com/tacogips/cpre/internal/version"
)

// Alias version variables for compatibility
var (
	Version   = version.Version
	GitCommit = version.GitCommit
	BuildDate = version.BuildDate
)

// Global flags
var (
	globalNoColor bool
	globalQuiet   bool
	globalDebug   bool
)

// newRootCmd builds the command tree. A fresh tree resets every flag to its default.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cpre",
		Short: "Comment-directive source preprocessor",
		Long: `cpre preprocesses source trees using directives hidden in line comments.

Directives such as //#if, //#define and //#include control which lines reach
the destination tree, and /*$expression$*/ macros are replaced by the value
of the expression. Files are processed in two passes: a global pass that
collects //#global and //#_if directives, then a main pass that renders
the output.

Use "cpre process" to preprocess the configured source directories,
"cpre eval" to try an expression and "cpre directives" to list what is available.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Set debug mode
			logger.SetDebug(globalDebug)
			logger.SetNoColor(globalNoColor)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVar(&globalNoColor, FlagNoColor, false, DescNoColor)
	rootCmd.PersistentFlags().BoolVarP(&globalQuiet, FlagQuiet, "q", false, DescQuiet)
	rootCmd.PersistentFlags().BoolVar(&globalDebug, FlagDebug, false, DescDebug)

	// Add subcommands
	rootCmd.AddCommand(newProcessCmd())
	rootCmd.AddCommand(newEvalCmd())
	rootCmd.AddCommand(newDirectivesCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command. It is called by main.main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		stop()
		os.Exit(1)
	}
}

// printError prints an error message to stderr
func printError(w io.Writer, err error) {
	if globalQuiet {
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
