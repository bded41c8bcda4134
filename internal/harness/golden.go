package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/ai4bd/brick/internal/ir"
)

// Snapshot renders the observable outcome of a scenario as canonical
// JSON: edges, violations and advisories. The graph hash is left out so
// snapshots stay readable when the encoding version changes.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	violations := make([]string, len(result.Violations))
	for i, v := range result.Violations {
		violations[i] = v.Error()
	}
	advisories := make([]string, len(result.Advisories))
	for i, a := range result.Advisories {
		advisories[i] = a.String()
	}

	return ir.MarshalCanonical(map[string]any{
		"scenario_name": scenario.Name,
		"edges":         result.EdgeStrings(),
		"errors":        violations,
		"advisories":    advisories,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenario, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
