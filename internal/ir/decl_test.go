package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestPropertyList_YAMLMappingKeepsOrder(t *testing.T) {
	src := `
properties:
  isFedBy:
    flags: [Asymmetric, Irreflexive]
    inverseOf: feeds
  feeds:
    flags: [Asymmetric, Irreflexive]
    inverseOf: isFedBy
    definition: The subject is upstream of the object
    subproperties:
      feedsAir:
        definition: Passes air
        substance: Air
        relatedProperties: [regulates, measures]
      feedsWater:
`
	var doc struct {
		Properties PropertyList `yaml:"properties"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	require.Len(t, doc.Properties, 2)

	assert.Equal(t, "isFedBy", doc.Properties[0].Name)
	assert.Equal(t, "3:3", doc.Properties[0].Source)

	feeds := doc.Properties[1]
	assert.Equal(t, "feeds", feeds.Name)
	assert.Equal(t, StringList{"Asymmetric", "Irreflexive"}, feeds.Flags)
	assert.Equal(t, "isFedBy", feeds.InverseOf)
	require.Len(t, feeds.Subproperties, 2)
	assert.Equal(t, "feedsAir", feeds.Subproperties[0].Name)
	assert.Equal(t, "Air", feeds.Subproperties[0].Substance)
	assert.Equal(t, StringList{"regulates", "measures"}, feeds.Subproperties[0].RelatedProperties)
	assert.Equal(t, "feedsWater", feeds.Subproperties[1].Name)
}

func TestPropertyList_YAMLSequence(t *testing.T) {
	src := `
- name: hasPoint
  expectedRange: Point
- name: isPointOf
  expectedDomain: [Point]
`
	var list PropertyList
	require.NoError(t, yaml.Unmarshal([]byte(src), &list))
	require.Len(t, list, 2)
	assert.Equal(t, StringList{"Point"}, list[0].ExpectedRange)
	assert.Equal(t, StringList{"Point"}, list[1].ExpectedDomain)
	assert.Equal(t, "4:3", list[1].Source)
}

func TestPropertyList_YAMLConflictingName(t *testing.T) {
	src := `
hasPart:
  name: isPartOf
`
	var list PropertyList
	err := yaml.Unmarshal([]byte(src), &list)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conflicting name")
}

func TestPropertyList_WithSourceFile(t *testing.T) {
	list := PropertyList{{
		Name:          "feeds",
		Source:        "2:1",
		Subproperties: PropertyList{{Name: "feedsAir", Source: "5:5"}, {Name: "feedsWater"}},
	}}

	out := list.WithSourceFile("props.yaml")
	assert.Equal(t, "props.yaml:2:1", out[0].Source)
	assert.Equal(t, "props.yaml:5:5", out[0].Subproperties[0].Source)
	assert.Empty(t, out[0].Subproperties[1].Source)
	assert.Equal(t, "2:1", list[0].Source, "input must not be modified")
}

func TestStringList_JSON(t *testing.T) {
	var l StringList
	require.NoError(t, json.Unmarshal([]byte(`"Point"`), &l))
	assert.Equal(t, StringList{"Point"}, l)

	require.NoError(t, json.Unmarshal([]byte(`["Point","Equipment"]`), &l))
	assert.Equal(t, StringList{"Point", "Equipment"}, l)

	require.NoError(t, json.Unmarshal([]byte(`null`), &l))
	assert.Nil(t, l)

	assert.Error(t, json.Unmarshal([]byte(`42`), &l))
}

func TestStringList_YAMLRejectsMapping(t *testing.T) {
	var doc struct {
		Types StringList `yaml:"types"`
	}
	err := yaml.Unmarshal([]byte("types:\n  a: b\n"), &doc)
	assert.Error(t, err)
}

func TestNormalizeName(t *testing.T) {
	// "e" + combining acute accent composes to U+00E9 under NFC.
	assert.Equal(t, "caf\u00e9", NormalizeName("  cafe\u0301 "))
}

func TestTypeSet(t *testing.T) {
	ts := NewTypeSet("Point", "Location", "cafe\u0301")

	assert.True(t, ts.Contains("Point"))
	assert.True(t, ts.Contains(" Location"))
	assert.True(t, ts.Contains("caf\u00e9"))
	assert.False(t, ts.Contains("Equipment"))
	assert.Equal(t, []string{"Location", "Point", "caf\u00e9"}, ts.IDs())
}
