package ir

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Flag is one OWL property characteristic.
type Flag uint8

// The closed flag enumeration. Order is the canonical output order.
const (
	FlagAsymmetric Flag = 1 << iota
	FlagFunctional
	FlagIrreflexive
	FlagSymmetric
	FlagTransitive
)

var allFlags = []Flag{FlagAsymmetric, FlagFunctional, FlagIrreflexive, FlagSymmetric, FlagTransitive}

var flagNames = map[Flag]string{
	FlagAsymmetric:  "Asymmetric",
	FlagFunctional:  "Functional",
	FlagIrreflexive: "Irreflexive",
	FlagSymmetric:   "Symmetric",
	FlagTransitive:  "Transitive",
}

// String returns the short flag name, e.g. "Asymmetric".
func (f Flag) String() string {
	if name, ok := flagNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Flag(%d)", uint8(f))
}

// ParseFlag parses a flag spelling. Accepted forms, case-insensitive:
// "Asymmetric", "AsymmetricProperty" and "owl:AsymmetricProperty".
func ParseFlag(s string) (Flag, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.TrimPrefix(key, "owl:")
	key = strings.TrimSuffix(key, "property")
	for _, f := range allFlags {
		if strings.ToLower(flagNames[f]) == key {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown property flag %q", s)
}

// FlagSet is a set of flags.
type FlagSet uint8

// ParseFlags parses every spelling and returns the set plus the spellings
// that were not recognized.
func ParseFlags(raw []string) (FlagSet, []string) {
	var (
		set     FlagSet
		unknown []string
	)
	for _, s := range raw {
		f, err := ParseFlag(s)
		if err != nil {
			unknown = append(unknown, s)
			continue
		}
		set = set.With(f)
	}
	return set, unknown
}

// Has reports whether f is in the set.
func (s FlagSet) Has(f Flag) bool { return s&FlagSet(f) != 0 }

// With returns the set with f added.
func (s FlagSet) With(f Flag) FlagSet { return s | FlagSet(f) }

// Flags returns the members in canonical order.
func (s FlagSet) Flags() []Flag {
	var out []Flag
	for _, f := range allFlags {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Names returns the member names in canonical order.
func (s FlagSet) Names() []string {
	flags := s.Flags()
	names := make([]string, len(flags))
	for i, f := range flags {
		names[i] = f.String()
	}
	return names
}

func (s FlagSet) String() string {
	return strings.Join(s.Names(), "|")
}

// MarshalJSON encodes the set as a list of flag names.
func (s FlagSet) MarshalJSON() ([]byte, error) {
	names := s.Names()
	if names == nil {
		names = []string{}
	}
	return json.Marshal(names)
}

// UnmarshalJSON decodes a list of flag names. Unknown names are an error.
func (s *FlagSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	set, unknown := ParseFlags(names)
	if len(unknown) > 0 {
		return fmt.Errorf("unknown property flags %v", unknown)
	}
	*s = set
	return nil
}
