package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ai4bd/brick/internal/compiler"
	"github.com/ai4bd/brick/internal/ir"
	"github.com/ai4bd/brick/internal/store"
)

// Option configures Run.
type Option func(*Harness)

// WithLogger routes compiler and harness logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// Harness executes scenarios. Each run gets a fresh in-memory archive.
type Harness struct {
	logger *slog.Logger
}

// Run compiles the scenario's declarations and evaluates its assertions.
//
// Execution flow:
//  1. Compile the declarations against the scenario's types
//  2. Compare the outcome with valid
//  3. Round-trip a compiled graph through an in-memory archive
//  4. Evaluate assertions
//
// The returned error is for harness failures only; a scenario that does
// not hold yields a Result with Pass false.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(h)
	}

	result := NewResult()
	ns := ir.NewTypeSet(scenario.Types...)

	res, err := compiler.Compile(scenario.Properties, ns, compiler.WithLogger(h.logger))
	var violations compiler.Errors
	switch {
	case errors.As(err, &violations):
		result.Violations = violations
	case err != nil:
		return nil, fmt.Errorf("compiling %s: %w", scenario.Name, err)
	default:
		result.Graph = res.Graph
		result.Hash = res.Graph.Hash()
		result.Advisories = res.Advisories
	}

	wantValid := *scenario.Valid
	switch {
	case wantValid && result.Graph == nil:
		result.AddError(fmt.Sprintf("expected declarations to compile, got %d violation(s)", len(violations)))
		for _, v := range violations {
			result.AddError("  " + v.Error())
		}
	case !wantValid && result.Graph != nil:
		result.AddError("expected compilation to fail, but it succeeded")
	}

	if result.Graph != nil {
		if err := h.roundTrip(result); err != nil {
			return nil, fmt.Errorf("archiving %s: %w", scenario.Name, err)
		}
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"violations", len(result.Violations),
		"advisories", len(result.Advisories),
	)
	return result, nil
}

// roundTrip writes the graph to a fresh archive and reads it back.
// A hash mismatch is recorded as a scenario failure.
func (h *Harness) roundTrip(result *Result) error {
	st, err := store.Open(":memory:")
	if err != nil {
		return fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	if _, err := st.WriteSnapshot(ctx, result.Graph); err != nil {
		return err
	}
	back, err := st.ReadSnapshot(ctx, result.Hash)
	if err != nil {
		result.AddError(fmt.Sprintf("archived graph did not read back: %v", err))
		return nil
	}
	if back.Hash() != result.Hash {
		result.AddError(fmt.Sprintf("archived graph hash %s, want %s", back.Hash(), result.Hash))
	}
	return nil
}
