package ir

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// PropertyDecl is the raw, authored declaration of one property.
// References are plain names; they are resolved by the compiler.
type PropertyDecl struct {
	Name          string     `json:"name" yaml:"name"`
	Flags         StringList `json:"flags,omitempty" yaml:"flags,omitempty"`
	InverseOf     string     `json:"inverseOf,omitempty" yaml:"inverseOf,omitempty"`
	SubPropertyOf string     `json:"subPropertyOf,omitempty" yaml:"subPropertyOf,omitempty"`
	Definition    string     `json:"definition,omitempty" yaml:"definition,omitempty"`

	// Advisory type hints, validated downstream but never used for inference.
	ExpectedDomain StringList `json:"expectedDomain,omitempty" yaml:"expectedDomain,omitempty"`
	ExpectedRange  StringList `json:"expectedRange,omitempty" yaml:"expectedRange,omitempty"`

	// Strict rdfs:domain / rdfs:range.
	Domain StringList `json:"domain,omitempty" yaml:"domain,omitempty"`
	Range  StringList `json:"range,omitempty" yaml:"range,omitempty"`

	// Only meaningful on nested sub-property declarations.
	Substance         string     `json:"substance,omitempty" yaml:"substance,omitempty"`
	RelatedProperties StringList `json:"relatedProperties,omitempty" yaml:"relatedProperties,omitempty"`

	Subproperties PropertyList          `json:"subproperties,omitempty" yaml:"subproperties,omitempty"`
	Associations  []Association         `json:"associations,omitempty" yaml:"associations,omitempty"`
	Annotations   map[string]StringList `json:"annotations,omitempty" yaml:"annotations,omitempty"`

	// Source is the "file:line:col" of the declaration, when known.
	Source string `json:"-" yaml:"-"`
}

// Association is an extra directed edge from a property to another entity.
type Association struct {
	Predicate string `json:"predicate" yaml:"predicate"`
	Target    string `json:"target" yaml:"target"`
}

// NormalizeName trims and NFC normalizes an identifier.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// StringList is a list of strings that also accepts a single scalar.
type StringList []string

// UnmarshalYAML accepts a scalar, a sequence, or null.
func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*l = nil
			return nil
		}
		*l = StringList{value.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("line %d: expected string or list of strings", value.Line)
	}
}

// UnmarshalJSON accepts a string, an array of strings, or null.
func (l *StringList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*l = StringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*l = many
	return nil
}

// PropertyList is an ordered list of declarations. In YAML it may be written
// as a mapping from name to body (authoring order is kept) or as a sequence
// of bodies carrying a name field.
type PropertyList []PropertyDecl

// UnmarshalYAML decodes a mapping or a sequence, recording source lines.
func (l *PropertyList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		out := make(PropertyList, 0, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			key, body := value.Content[i], value.Content[i+1]
			var decl PropertyDecl
			if err := body.Decode(&decl); err != nil {
				return fmt.Errorf("property %q: %w", key.Value, err)
			}
			if decl.Name != "" && decl.Name != key.Value {
				return fmt.Errorf("line %d: property %q has conflicting name field %q", key.Line, key.Value, decl.Name)
			}
			decl.Name = key.Value
			decl.Source = fmt.Sprintf("%d:%d", key.Line, key.Column)
			out = append(out, decl)
		}
		*l = out
		return nil
	case yaml.SequenceNode:
		out := make(PropertyList, 0, len(value.Content))
		for _, item := range value.Content {
			var decl PropertyDecl
			if err := item.Decode(&decl); err != nil {
				return err
			}
			decl.Source = fmt.Sprintf("%d:%d", item.Line, item.Column)
			out = append(out, decl)
		}
		*l = out
		return nil
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*l = nil
			return nil
		}
	}
	return fmt.Errorf("line %d: expected mapping or list of property declarations", value.Line)
}

// WithSourceFile prefixes every Source in the tree with file, so that
// "3:5" becomes "props.yaml:3:5".
func (l PropertyList) WithSourceFile(file string) PropertyList {
	if l == nil {
		return nil
	}
	out := make(PropertyList, len(l))
	for i, d := range l {
		if d.Source != "" {
			d.Source = file + ":" + d.Source
		}
		d.Subproperties = d.Subproperties.WithSourceFile(file)
		out[i] = d
	}
	return out
}
