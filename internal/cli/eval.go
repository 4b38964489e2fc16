package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tacogips/cpre/internal/app"
)

func newEvalCmd() *cobra.Command {
	var (
		configPath string
		defines    []string
	)

	cmd := &cobra.Command{
		Use:   "eval EXPRESSION",
		Short: "Evaluate an expression",
		Long: `Evaluate an expression against the configured globals and print its value and type.

Arguments are joined with spaces, so the expression does not need quoting
unless it contains shell metacharacters.

Examples:
  cpre eval 1 + 2
  cpre eval -D version='"1.4"' 'version + "-SNAPSHOT"'
  cpre eval 'contains(split("a,b", ","), "b")'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := app.Evaluate(app.EvalOptions{
				ConfigPath:  configPath,
				Definitions: defines,
				Expression:  strings.Join(args, " "),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%#v (%s)\n", value, value.Kind())
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, FlagConfig, "c", "", DescConfig)
	cmd.Flags().StringArrayVarP(&defines, FlagDefine, "D", nil, DescDefine)

	return cmd
}
