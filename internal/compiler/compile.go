package compiler

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ai4bd/brick/internal/graph"
	"github.com/ai4bd/brick/internal/ir"
)

// Result is a successful compilation.
type Result struct {
	Graph      *graph.Graph
	Advisories []Advisory
}

type options struct {
	logger *slog.Logger
}

// Option configures Compile.
type Option func(*options)

// WithLogger sets the logger for compilation progress. The default
// discards all output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Compile validates, resolves, expands and checks a batch of declarations
// against the external type namespace.
//
// Compilation is all-or-nothing: on any violation it returns a nil Result
// and an Errors value holding every violation in the batch, sorted by
// property name. Advisories never cause failure.
func Compile(decls []ir.PropertyDecl, ns ir.Namespace, opts ...Option) (*Result, error) {
	o := &options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(o)
	}
	log := o.logger

	log.Debug("compiling property declarations", "declarations", len(decls))

	errs := ValidateDecls(decls)

	res := resolve(decls, ns)
	errs = append(errs, res.errs...)
	log.Debug("resolved symbols", "properties", len(res.symbols.names), "unresolved", len(res.unresolved))

	exp := expand(res)
	for _, a := range exp.advisories {
		log.Debug("back-filled inverse", "property", a.Properties[0], "inverseOf", a.Properties[1])
	}

	checkErrs, advisories := check(exp.nodes, res.unresolved)
	errs = append(errs, checkErrs...)
	advisories = append(exp.advisories, advisories...)

	if len(errs) > 0 {
		sortErrors(errs)
		log.Warn("property compilation failed", "errors", len(errs))
		return nil, Errors(errs)
	}

	g, err := graph.New(exp.nodes)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	sortAdvisories(advisories)
	log.Info("compiled property graph",
		"properties", g.Len(),
		"advisories", len(advisories),
		"hash", g.Hash())

	return &Result{Graph: g, Advisories: advisories}, nil
}
