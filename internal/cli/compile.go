package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ai4bd/brick/internal/compiler"
	"github.com/ai4bd/brick/internal/graph"
	"github.com/ai4bd/brick/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	BuildOptions
	Output   string // graph document output path
	Database string // snapshot archive path
}

// CompileSummary is the result of a successful compile.
type CompileSummary struct {
	Properties   int                 `json:"properties"`
	Edges        int                 `json:"edges"`
	InversePairs int                 `json:"inversePairs"`
	Hash         string              `json:"hash"`
	Advisories   []compiler.Advisory `json:"advisories,omitempty"`
	Output       string              `json:"output,omitempty"`
	Compilation  *store.Compilation  `json:"compilation,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <declarations-dir>",
		Short: "Compile property declarations to a graph document",
		Long: `Compile property declarations to a checked property graph.

The compiler loads every .cue and .yaml file in the directory, resolves
references, back-fills one-sided inverses, and checks every invariant.
Any violation fails the whole batch.

Examples:
  brickc compile ./properties
  brickc compile ./properties -o graph.json
  brickc compile ./properties --db brick.db --types types.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the graph document (JSON) to this path")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the compilation in this snapshot archive")
	opts.BuildOptions.addFlags(cmd)

	return cmd
}

func runCompile(opts *CompileOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := opts.Logger(cmd.ErrOrStderr())

	_, res, err := compileDir(dir, &opts.BuildOptions, formatter, logger)
	if err != nil {
		return err
	}
	g := res.Graph

	summary := &CompileSummary{
		Properties:   g.Len(),
		Edges:        len(g.Edges()),
		InversePairs: len(g.InversePairs()) / 2,
		Hash:         g.Hash(),
		Advisories:   res.Advisories,
	}

	if opts.Output != "" {
		if err := writeDocument(g.Document(), opts.Output); err != nil {
			return commandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
		summary.Output = opts.Output
	}

	if opts.Database != "" {
		c, err := recordCompilation(cmd, opts.Database, dir, res)
		if err != nil {
			return commandError(formatter, ErrCodeDatabase, err.Error())
		}
		summary.Compilation = &c
		logger.Debug("recorded compilation", "id", c.ID, "seq", c.Seq, "db", opts.Database)
	}

	return outputCompileSuccess(formatter, summary)
}

func recordCompilation(cmd *cobra.Command, path, source string, res *compiler.Result) (store.Compilation, error) {
	s, err := store.Open(path)
	if err != nil {
		return store.Compilation{}, err
	}
	defer s.Close()

	advisories := make([]string, len(res.Advisories))
	for i, a := range res.Advisories {
		advisories[i] = a.String()
	}
	return s.RecordCompilation(cmd.Context(), res.Graph, source, advisories)
}

func outputCompileSuccess(formatter *OutputFormatter, summary *CompileSummary) error {
	if formatter.Format == "json" {
		return formatter.Success(summary)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d propert%s (%d edge(s), %d inverse pair(s))\n",
		summary.Properties, plural(summary.Properties, "y", "ies"), summary.Edges, summary.InversePairs)
	fmt.Fprintf(w, "  hash: %s\n\n", summary.Hash)

	writeAdvisories(formatter, summary.Advisories)

	if summary.Output != "" {
		fmt.Fprintf(w, "Wrote graph document to %s\n", summary.Output)
	}
	if c := summary.Compilation; c != nil {
		fmt.Fprintf(w, "Recorded compilation %s (seq %d)\n", c.ID, c.Seq)
	}
	return nil
}

// writeDocument writes doc as indented JSON.
func writeDocument(doc *graph.Document, filename string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling graph document: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
