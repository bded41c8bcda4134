package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ai4bd/brick/internal/compiler"
	"github.com/ai4bd/brick/internal/graph"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("Assertion failed: %s\n  Expected: %s\n  Actual: %s", e.Type, e.Expected, e.Actual)
}

// EvaluateAssertions checks every assertion and returns the failure
// messages in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertError:
		return assertError(result.Violations, a)
	case AssertErrorCount:
		if len(result.Violations) != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d violation(s)", a.Count),
				Actual:   fmt.Sprintf("%d violation(s)", len(result.Violations)),
			}
		}
		return nil
	case AssertAdvisory:
		return assertAdvisory(result.Advisories, a)
	}

	g := result.Graph
	if g == nil {
		return &AssertionError{Type: a.Type, Expected: "a compiled graph", Actual: "compilation failed"}
	}

	switch a.Type {
	case AssertEdge:
		return assertEdge(g, a)
	case AssertEdgeCount:
		if n := len(g.Edges()); n != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d edge(s)", a.Count),
				Actual:   fmt.Sprintf("%d edge(s)", n),
			}
		}
		return nil
	case AssertInverse:
		return assertInverse(g, a)
	case AssertAncestors:
		return assertNames(a, func() ([]string, error) { return g.SuperProperties(a.Property) })
	case AssertDescendants:
		return assertNames(a, func() ([]string, error) { return g.AllSubProperties(a.Property) })
	case AssertExpectedDomain:
		return assertNames(a, func() ([]string, error) { return typeNames(g.ExpectedDomain(a.Property)) })
	case AssertExpectedRange:
		return assertNames(a, func() ([]string, error) { return typeNames(g.ExpectedRange(a.Property)) })
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

func assertEdge(g *graph.Graph, a Assertion) error {
	want := a.Subject + " " + a.Predicate + " " + a.Object
	for _, e := range g.Edges() {
		if e.String() == want {
			return nil
		}
	}
	return &AssertionError{Type: a.Type, Expected: want, Actual: "edge not found"}
}

func assertInverse(g *graph.Graph, a Assertion) error {
	p, err := g.Lookup(a.Property)
	if err != nil {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%s inverseOf %q", a.Property, a.Value), Actual: err.Error()}
	}
	if p.InverseOf != a.Value {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s inverseOf %q", a.Property, a.Value),
			Actual:   fmt.Sprintf("%s inverseOf %q", a.Property, p.InverseOf),
		}
	}
	return nil
}

func assertNames(a Assertion, query func() ([]string, error)) error {
	got, err := query()
	if err != nil {
		return &AssertionError{Type: a.Type, Expected: formatList(a.Values), Actual: err.Error()}
	}
	if !slices.Equal(got, []string(a.Values)) {
		return &AssertionError{Type: a.Type, Expected: formatList(a.Values), Actual: formatList(got)}
	}
	return nil
}

func assertError(violations compiler.Errors, a Assertion) error {
	for _, v := range violations {
		if string(v.Kind) != a.Kind {
			continue
		}
		if containsAll(v.Properties, a.Properties) {
			return nil
		}
	}

	actual := make([]string, len(violations))
	for i, v := range violations {
		actual[i] = fmt.Sprintf("%s%v", v.Kind, v.Properties)
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s involving %s", a.Kind, formatList(a.Properties)),
		Actual:   formatList(actual),
	}
}

func assertAdvisory(advisories []compiler.Advisory, a Assertion) error {
	for _, adv := range advisories {
		if string(adv.Kind) == a.Kind && slices.Contains(adv.Properties, a.Property) {
			return nil
		}
	}

	actual := make([]string, len(advisories))
	for i, adv := range advisories {
		actual[i] = fmt.Sprintf("%s%v", adv.Kind, adv.Properties)
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s for %s", a.Kind, a.Property),
		Actual:   formatList(actual),
	}
}

func containsAll(have, want []string) bool {
	for _, w := range want {
		if !slices.Contains(have, w) {
			return false
		}
	}
	return true
}

func typeNames(refs []graph.TypeRef, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = string(r)
	}
	return out, nil
}

func formatList(ss []string) string {
	return "[" + strings.Join(ss, ", ") + "]"
}
