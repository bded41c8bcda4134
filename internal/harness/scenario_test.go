package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/point_hierarchy.yaml")
	require.NoError(t, err)

	assert.Equal(t, "point_hierarchy", scenario.Name)
	require.NotNil(t, scenario.Valid)
	assert.True(t, *scenario.Valid)
	assert.Equal(t, []string{"Equipment", "Point", "Location"}, []string(scenario.Types))
	require.Len(t, scenario.Properties, 4)
	assert.Equal(t, "point_hierarchy.yaml:6:5", scenario.Properties[0].Source)
	require.Len(t, scenario.Properties[3].Subproperties, 1)
	assert.Equal(t, "isLocationOf", scenario.Properties[3].Subproperties[0].Name)
	assert.Len(t, scenario.Assertions, 7)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenarioUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: typo
description: misspelled key
valid: true
properties:
  a: {}
assertion:
  - type: edge_count
`), 0644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenarioValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: "description: d\nvalid: true\nproperties: {a: {}}\nassertions: [{type: edge_count}]\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: n\nvalid: true\nproperties: {a: {}}\nassertions: [{type: edge_count}]\n",
			want: "description is required",
		},
		{
			name: "missing valid",
			yaml: "name: n\ndescription: d\nproperties: {a: {}}\nassertions: [{type: edge_count}]\n",
			want: "valid is required",
		},
		{
			name: "no properties",
			yaml: "name: n\ndescription: d\nvalid: true\nassertions: [{type: edge_count}]\n",
			want: "properties must be non-empty",
		},
		{
			name: "no assertions",
			yaml: "name: n\ndescription: d\nvalid: true\nproperties: {a: {}}\n",
			want: "assertions list is required",
		},
		{
			name: "assertion without type",
			yaml: "name: n\ndescription: d\nvalid: true\nproperties: {a: {}}\nassertions: [{count: 1}]\n",
			want: "assertions[0]: type is required",
		},
		{
			name: "unknown assertion type",
			yaml: "name: n\ndescription: d\nvalid: true\nproperties: {a: {}}\nassertions: [{type: trace_order}]\n",
			want: `unknown assertion type "trace_order"`,
		},
		{
			name: "incomplete edge",
			yaml: "name: n\ndescription: d\nvalid: true\nproperties: {a: {}}\nassertions: [{type: edge, subject: a}]\n",
			want: "subject, predicate and object are required",
		},
		{
			name: "inverse without property",
			yaml: "name: n\ndescription: d\nvalid: true\nproperties: {a: {}}\nassertions: [{type: inverse, value: b}]\n",
			want: "property is required for inverse",
		},
		{
			name: "error without kind",
			yaml: "name: n\ndescription: d\nvalid: false\nproperties: {a: {}}\nassertions: [{type: error}]\n",
			want: "kind is required for error",
		},
		{
			name: "advisory without property",
			yaml: "name: n\ndescription: d\nvalid: true\nproperties: {a: {}}\nassertions: [{type: advisory, kind: OneSidedInverse}]\n",
			want: "kind and property are required for advisory",
		},
		{
			name: "negative count",
			yaml: "name: n\ndescription: d\nvalid: true\nproperties: {a: {}}\nassertions: [{type: error_count, count: -1}]\n",
			want: "count must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml), "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
