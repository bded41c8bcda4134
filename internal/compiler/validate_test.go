package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai4bd/brick/internal/ir"
)

func TestValidateDeclsValid(t *testing.T) {
	decls := []ir.PropertyDecl{
		{Name: "feeds", Flags: ir.StringList{"Asymmetric", "owl:IrreflexiveProperty"}, InverseOf: "isFedBy"},
		{Name: "isFedBy", Flags: ir.StringList{"asymmetric"}},
	}

	assert.Empty(t, ValidateDecls(decls))
}

func TestValidateDeclsEmptyName(t *testing.T) {
	decls := []ir.PropertyDecl{
		{Name: "  ", Source: "props.yaml:3:1"},
	}

	errs := ValidateDecls(decls)
	require.Len(t, errs, 1)
	assert.Equal(t, KindEmptyName, errs[0].Kind)
	assert.Equal(t, ErrEmptyName, errs[0].Code)
	assert.Equal(t, "properties[0].name", errs[0].Field)
	assert.Equal(t, "props.yaml:3:1", errs[0].Source)
}

func TestValidateDeclsInvalidFlag(t *testing.T) {
	decls := []ir.PropertyDecl{
		{Name: "hasPart", Flags: ir.StringList{"Asymmetric", "Reflexive", "Weird"}},
	}

	errs := ValidateDecls(decls)
	require.Len(t, errs, 2)
	for _, e := range errs {
		assert.Equal(t, KindInvalidFlag, e.Kind)
		assert.Equal(t, []string{"hasPart"}, e.Properties)
		assert.Equal(t, "hasPart.flags", e.Field)
	}
	assert.Contains(t, errs[0].Message, `"Reflexive"`)
	assert.Contains(t, errs[1].Message, `"Weird"`)
}

func TestValidateDeclsNestedInvalidAssociation(t *testing.T) {
	decls := []ir.PropertyDecl{
		{
			Name: "feeds",
			Subproperties: ir.PropertyList{
				{Name: "feedsAir", Associations: []ir.Association{{Predicate: "seeAlso"}}},
			},
		},
	}

	errs := ValidateDecls(decls)
	require.Len(t, errs, 1)
	assert.Equal(t, KindInvalidAssociation, errs[0].Kind)
	assert.Equal(t, ErrInvalidAssociation, errs[0].Code)
	assert.Equal(t, "feedsAir.associations[0]", errs[0].Field)
	assert.Equal(t, []string{"feedsAir"}, errs[0].Properties)
}

func TestValidateDeclsReservedAnnotation(t *testing.T) {
	decls := []ir.PropertyDecl{
		{
			Name:        "feedsHotAir",
			Substance:   "Air",
			Annotations: map[string]ir.StringList{"temperature": {"hot"}},
		},
		{
			Name:   "feeds",
			Source: "props.yaml:9:3",
			Subproperties: ir.PropertyList{
				{Name: "feedsAir", Annotations: map[string]ir.StringList{
					"substance":         {"Water"},
					"relatedProperties": {"regulates"},
				}},
			},
		},
	}

	errs := ValidateDecls(decls)
	require.Len(t, errs, 2)
	for _, e := range errs {
		assert.Equal(t, KindReservedAnnotation, e.Kind)
		assert.Equal(t, ErrReservedAnnotation, e.Code)
		assert.Equal(t, []string{"feedsAir"}, e.Properties)
	}
	assert.Equal(t, "feedsAir.annotations.substance", errs[0].Field)
	assert.Equal(t, "feedsAir.annotations.relatedProperties", errs[1].Field)
}
