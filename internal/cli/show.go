package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ai4bd/brick/internal/graph"
	"github.com/ai4bd/brick/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	BuildOptions
	Database string // read the latest snapshot instead of compiling
}

// PropertyView is one property with its hierarchy and inherited types.
type PropertyView struct {
	graph.Property
	SuperProperties  []string `json:"superProperties,omitempty"`
	AllSubProperties []string `json:"allSubProperties,omitempty"`
	ResolvedDomain   []string `json:"resolvedDomain,omitempty"`
	ResolvedRange    []string `json:"resolvedRange,omitempty"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show [declarations-dir] <property>",
		Short: "Show one property of a compiled graph",
		Long: `Show one property: its flags, inverse, position in the sub-property
hierarchy, and expected domain/range including types inherited from
super-properties.

The graph is compiled from a declarations directory, or read from the
latest snapshot in an archive with --db.

Examples:
  brickc show ./properties feeds
  brickc show --db brick.db isFedBy`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "read the latest snapshot from this archive")
	opts.BuildOptions.addFlags(cmd)

	return cmd
}

func runShow(opts *ShowOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	var (
		g    *graph.Graph
		name string
	)
	switch {
	case opts.Database != "" && len(args) == 1:
		name = args[0]
		s, err := store.Open(opts.Database)
		if err != nil {
			return commandError(formatter, ErrCodeDatabase, err.Error())
		}
		defer s.Close()
		g, _, err = s.LatestSnapshot(cmd.Context())
		if errors.Is(err, store.ErrNotFound) {
			return commandError(formatter, ErrCodeNotFound, fmt.Sprintf("no compilations recorded in %s", opts.Database))
		}
		if err != nil {
			return commandError(formatter, ErrCodeDatabase, err.Error())
		}
	case opts.Database == "" && len(args) == 2:
		name = args[1]
		_, res, err := compileDir(args[0], &opts.BuildOptions, formatter, opts.Logger(cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
		g = res.Graph
	default:
		return commandError(formatter, ErrCodeGeneric, "expected <declarations-dir> <property>, or --db with <property>")
	}

	view, err := describe(g, name)
	if err != nil {
		return commandError(formatter, ErrCodeNotFound, err.Error())
	}

	if formatter.Format == "json" {
		return formatter.Success(view)
	}
	writePropertyView(formatter.Writer, view)
	return nil
}

// describe gathers the query results for name.
func describe(g *graph.Graph, name string) (*PropertyView, error) {
	p, err := g.Lookup(name)
	if err != nil {
		return nil, err
	}
	view := &PropertyView{Property: p}

	if view.SuperProperties, err = g.SuperProperties(name); err != nil {
		return nil, err
	}
	if view.AllSubProperties, err = g.AllSubProperties(name); err != nil {
		return nil, err
	}
	domain, err := g.ExpectedDomain(name)
	if err != nil {
		return nil, err
	}
	rng, err := g.ExpectedRange(name)
	if err != nil {
		return nil, err
	}
	view.ResolvedDomain = typeNames(domain)
	view.ResolvedRange = typeNames(rng)
	return view, nil
}

func typeNames(refs []graph.TypeRef) []string {
	var out []string
	for _, r := range refs {
		out = append(out, string(r))
	}
	return out
}

func writePropertyView(w io.Writer, v *PropertyView) {
	row := func(label, value string) {
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(w, "  %-16s %s\n", label+":", value)
	}
	list := func(ss []string) string { return strings.Join(ss, ", ") }

	fmt.Fprintln(w, v.Name)
	if v.Definition != "" {
		fmt.Fprintf(w, "  %s\n", v.Definition)
	}
	fmt.Fprintln(w)

	row("flags", list(v.Flags.Names()))
	inverse := v.InverseOf
	if v.InverseBackfilled {
		inverse += " (back-filled)"
	}
	row("inverseOf", inverse)
	row("subPropertyOf", v.SubPropertyOf)
	row("ancestors", list(v.SuperProperties))
	row("subProperties", list(v.SubProperties))
	row("descendants", list(v.AllSubProperties))
	row("expectedDomain", list(v.ResolvedDomain))
	row("expectedRange", list(v.ResolvedRange))
	if len(v.Domain) > 0 || len(v.Range) > 0 {
		row("domain", list(v.Domain))
		row("range", list(v.Range))
	}
	for _, a := range v.Associations {
		row("association", fmt.Sprintf("%s → %s (%s)", a.Predicate, a.Target, a.Kind))
	}
	keys := make([]string, 0, len(v.Annotations))
	for k := range v.Annotations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		row(k, list(v.Annotations[k]))
	}
	if v.Source != "" {
		row("source", v.Source)
	}
}
