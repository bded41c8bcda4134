package ir

import "sort"

// Namespace is the external set of type identifiers that expected domain
// and range references resolve against. It is opaque to the compiler.
type Namespace interface {
	Contains(id string) bool
}

// TypeSet is a map-backed Namespace.
type TypeSet map[string]struct{}

// NewTypeSet builds a TypeSet from identifiers. Identifiers are NFC
// normalized so they compare equal to normalized references.
func NewTypeSet(ids ...string) TypeSet {
	ts := make(TypeSet, len(ids))
	for _, id := range ids {
		ts.Add(id)
	}
	return ts
}

// Add inserts an identifier.
func (ts TypeSet) Add(id string) {
	ts[NormalizeName(id)] = struct{}{}
}

// Contains reports whether id is declared.
func (ts TypeSet) Contains(id string) bool {
	_, ok := ts[NormalizeName(id)]
	return ok
}

// IDs returns the identifiers in sorted order.
func (ts TypeSet) IDs() []string {
	ids := make([]string, 0, len(ts))
	for id := range ts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
