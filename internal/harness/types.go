package harness

import (
	"github.com/ai4bd/brick/internal/compiler"
	"github.com/ai4bd/brick/internal/graph"
)

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when the outcome matched valid and every assertion held.
	Pass bool `json:"pass"`

	// Errors lists failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Hash is the graph hash, empty when compilation failed.
	Hash string `json:"hash,omitempty"`

	Graph      *graph.Graph        `json:"-"`
	Violations compiler.Errors     `json:"violations,omitempty"`
	Advisories []compiler.Advisory `json:"advisories,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true}
}

// AddError adds a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// EdgeStrings returns the graph edges as "subject predicate object".
func (r *Result) EdgeStrings() []string {
	if r.Graph == nil {
		return []string{}
	}
	edges := r.Graph.Edges()
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = e.String()
	}
	return out
}
