package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/mitchellh/go-wordwrap"
	"github.com/spf13/cobra"

	"github.com/tacogips/cpre/internal/expr"
	"github.com/tacogips/cpre/internal/preprocessor"
)

// referenceWidth is the column at which reference text is wrapped.
const referenceWidth = 80

func newDirectivesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "directives",
		Short: "List directives and expression functions",
		Long: `List every directive keyword with its argument, the passes it runs in
and a short description, followed by the functions available in expressions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pre, err := preprocessor.New(preprocessor.Options{}, nil, nil)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			printHeader(out, "Directives")
			for _, d := range pre.Directives().Directives() {
				writeReference(out, d.Usage(), fmt.Sprintf("[%s] %s", d.Phases, d.Reference))
			}

			printHeader(out, "Functions")
			registry := pre.Evaluator().Registry()
			for _, name := range registry.Names() {
				fn, _ := registry.Lookup(name)
				writeReference(out, functionUsage(fn), fn.Reference)
			}
			return nil
		},
	}
}

// writeReference prints usage on its own line followed by the indented, wrapped description.
func writeReference(w io.Writer, usage, reference string) {
	fmt.Fprintln(w, usage)
	wrapped := wordwrap.WrapString(reference, referenceWidth-4)
	for _, line := range strings.Split(wrapped, "\n") {
		fmt.Fprintf(w, "    %s\n", line)
	}
}

// functionUsage renders every signature of fn, e.g. "abs(int) int | abs(float) float".
func functionUsage(fn *expr.Function) string {
	var sigs []string
	for _, sig := range fn.Signatures {
		kinds := make([]string, len(sig))
		for i, k := range sig {
			kinds[i] = k.String()
		}
		sigs = append(sigs, fmt.Sprintf("%s(%s)", fn.Name, strings.Join(kinds, ", ")))
	}
	if len(sigs) == 0 {
		sigs = append(sigs, fn.Name+"()")
	}
	return strings.Join(sigs, " | ") + " " + fn.Result.String()
}
