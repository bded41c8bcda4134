package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ai4bd/brick/internal/compiler"
	"github.com/ai4bd/brick/internal/ir"
)

// BuildOptions holds the flags shared by commands that compile a
// declarations directory.
type BuildOptions struct {
	Types string // extra type list file, optional
}

func (o *BuildOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Types, "types", "", "YAML file listing additional type IDs for expected domain/range")
}

// ValidationResult is the JSON payload for a compilation that ran the
// consistency checks.
type ValidationResult struct {
	Valid      bool                       `json:"valid"`
	Errors     []compiler.ValidationError `json:"errors,omitempty"`
	Advisories []compiler.Advisory        `json:"advisories,omitempty"`
}

// compileDir loads dir and compiles it. On failure the errors have already
// been written through formatter and the returned error is an *ExitError:
// code 2 when the directory or a file cannot be used, code 1 when the
// declarations are inconsistent.
func compileDir(dir string, build *BuildOptions, formatter *OutputFormatter, logger *slog.Logger) (*LoadResult, *compiler.Result, error) {
	load, loadErrs := LoadDeclarations(dir, LoadModeCollectAll)
	if load == nil && len(loadErrs) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrs[0], &loadErr) {
			return nil, nil, commandError(formatter, loadErr.Code, loadErr.Message)
		}
		return nil, nil, commandError(formatter, ErrCodeGeneric, loadErrs[0].Error())
	}

	formatter.VerboseLog("Found %d CUE file(s) and %d YAML file(s) in %s", len(load.CUEFiles), len(load.YAMLFiles), dir)

	if len(loadErrs) > 0 {
		return load, nil, outputLoadErrors(formatter, loadErrs)
	}

	ns := ir.NewTypeSet(load.Types...)
	if build != nil && build.Types != "" {
		extra, err := LoadTypes(build.Types)
		if err != nil {
			var loadErr *LoadError
			if errors.As(err, &loadErr) {
				return load, nil, commandError(formatter, loadErr.Code, loadErr.Message)
			}
			return load, nil, commandError(formatter, ErrCodeGeneric, err.Error())
		}
		for _, t := range extra {
			ns.Add(t)
		}
		formatter.VerboseLog("Loaded %d type(s) from %s", len(extra), build.Types)
	}

	for _, d := range load.Declarations {
		formatter.VerboseLog("Compiling property: %s", d.Name)
	}

	res, err := compiler.Compile(load.Declarations, ns, compiler.WithLogger(logger))
	if err != nil {
		var errs compiler.Errors
		if errors.As(err, &errs) {
			return load, nil, outputValidationErrors(formatter, errs)
		}
		return load, nil, commandError(formatter, ErrCodeGeneric, err.Error())
	}

	return load, res, nil
}

// outputLoadErrors reports declaration files that failed to decode.
func outputLoadErrors(formatter *OutputFormatter, errs []error) error {
	cliErrors := make([]CLIError, len(errs))
	for i, err := range errs {
		cliErrors[i] = toCLIError(err)
	}

	if formatter.Format == "json" {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors,
		}); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("loading failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Loading failed")
	fmt.Fprintln(formatter.Writer)

	for i, err := range errs {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			switch {
			case loadErr.Pos.IsValid():
				fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
					loadErr.Pos.Filename(),
					loadErr.Pos.Line(),
					loadErr.Pos.Column())
			case loadErr.Source != "":
				fmt.Fprintln(formatter.Writer, loadErr.Source)
			}
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", cliErrors[i].Code, cliErrors[i].Message)
	}

	return NewExitError(ExitCommandError, fmt.Sprintf("loading failed with %d error(s)", len(errs)))
}

func toCLIError(err error) CLIError {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return CLIError{Code: loadErr.Code, Message: loadErr.Message}
	}
	return CLIError{Code: ErrCodeGeneric, Message: err.Error()}
}

// outputValidationErrors reports every consistency violation.
func outputValidationErrors(formatter *OutputFormatter, errs compiler.Errors) error {
	if formatter.Format == "json" {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, e := range errs {
		if e.Source != "" {
			fmt.Fprintln(formatter.Writer, e.Source)
		}
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n\n", e.Code, e.Kind, e.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}

// writeAdvisories prints advisories in text mode.
func writeAdvisories(formatter *OutputFormatter, advisories []compiler.Advisory) {
	if len(advisories) == 0 {
		return
	}
	fmt.Fprintln(formatter.Writer, "Advisories:")
	for _, a := range advisories {
		fmt.Fprintf(formatter.Writer, "  %s\n", a)
	}
	fmt.Fprintln(formatter.Writer)
}
