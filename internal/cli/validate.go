package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	BuildOptions
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <declarations-dir>",
		Short: "Check property declarations without writing output",
		Long: `Check property declarations for consistency without writing output.

Runs the full compilation and reports every violation: duplicate names,
unknown references, inverse mismatches, self-inverses, sub-property
cycles, contradictory flags and unresolved expected types.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	opts.BuildOptions.addFlags(cmd)

	return cmd
}

func runValidate(opts *ValidateOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	_, res, err := compileDir(dir, &opts.BuildOptions, formatter, opts.Logger(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Advisories: res.Advisories})
	}

	fmt.Fprintf(formatter.Writer, "✓ All %d properties valid\n", res.Graph.Len())
	if len(res.Advisories) > 0 {
		fmt.Fprintln(formatter.Writer)
		writeAdvisories(formatter, res.Advisories)
	}
	return nil
}
