package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ai4bd/brick/internal/ir"
)

// Scenario is one conformance case.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Types are the type identifiers known to the namespace.
	Types ir.StringList `yaml:"types,omitempty"`

	// Valid states whether the declarations should compile.
	Valid *bool `yaml:"valid"`

	Properties ir.PropertyList `yaml:"properties"`

	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates the compiled graph or the reported violations.
type Assertion struct {
	Type string `yaml:"type"`

	// Property is the subject of inverse, ancestors, descendants,
	// expected_domain, expected_range and advisory.
	Property string `yaml:"property,omitempty"`

	// Subject, Predicate and Object identify an edge.
	Subject   string `yaml:"subject,omitempty"`
	Predicate string `yaml:"predicate,omitempty"`
	Object    string `yaml:"object,omitempty"`

	// Kind is an error kind or advisory kind.
	Kind string `yaml:"kind,omitempty"`

	// Properties are the names an error must involve (subset match).
	Properties ir.StringList `yaml:"properties,omitempty"`

	// Value is the expected inverse.
	Value string `yaml:"value,omitempty"`

	// Values is the expected name or type list, in order.
	Values ir.StringList `yaml:"values,omitempty"`

	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertEdge           = "edge"
	AssertEdgeCount      = "edge_count"
	AssertInverse        = "inverse"
	AssertAncestors      = "ancestors"
	AssertDescendants    = "descendants"
	AssertExpectedDomain = "expected_domain"
	AssertExpectedRange  = "expected_range"
	AssertError          = "error"
	AssertErrorCount     = "error_count"
	AssertAdvisory       = "advisory"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos fail loudly. Declaration sources are prefixed with the
// file's base name.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Base(path))
}

// ParseScenario parses scenario YAML. file labels declaration sources.
func ParseScenario(data []byte, file string) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if file != "" {
		scenario.Properties = scenario.Properties.WithSourceFile(file)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Valid == nil {
		return fmt.Errorf("valid is required")
	}
	if len(s.Properties) == 0 {
		return fmt.Errorf("properties must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertEdge:
		if a.Subject == "" || a.Predicate == "" || a.Object == "" {
			return fmt.Errorf("assertions[%d]: subject, predicate and object are required for edge", index)
		}
	case AssertEdgeCount, AssertErrorCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertInverse, AssertAncestors, AssertDescendants, AssertExpectedDomain, AssertExpectedRange:
		if a.Property == "" {
			return fmt.Errorf("assertions[%d]: property is required for %s", index, a.Type)
		}
	case AssertError:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for error", index)
		}
	case AssertAdvisory:
		if a.Kind == "" || a.Property == "" {
			return fmt.Errorf("assertions[%d]: kind and property are required for advisory", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
