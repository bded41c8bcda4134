package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a property name is not in the graph.
	ErrNotFound = errors.New("property not found")

	// ErrNoInverse is returned by Inverse when the property has none.
	ErrNoInverse = errors.New("property has no inverse")
)

func (g *Graph) resolve(name string) (PropertyID, error) {
	id, ok := g.byName[name]
	if !ok {
		return NoProperty, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return id, nil
}

// Lookup returns the property named name.
func (g *Graph) Lookup(name string) (Property, error) {
	id, err := g.resolve(name)
	if err != nil {
		return Property{}, err
	}
	return g.property(id), nil
}

// Inverse returns the inverse of the property named name.
func (g *Graph) Inverse(name string) (Property, error) {
	id, err := g.resolve(name)
	if err != nil {
		return Property{}, err
	}
	inv := g.nodes[id].Inverse
	if inv == NoProperty {
		return Property{}, fmt.Errorf("%w: %q", ErrNoInverse, name)
	}
	return g.property(inv), nil
}

// SubProperties returns the direct sub-properties of name, sorted.
func (g *Graph) SubProperties(name string) ([]string, error) {
	id, err := g.resolve(name)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, c := range g.nodes[id].Children {
		out = append(out, g.nodes[c].Name)
	}
	return out, nil
}

// AllSubProperties returns the transitive sub-properties of name in
// breadth-first order; each level is sorted by name.
func (g *Graph) AllSubProperties(name string) ([]string, error) {
	id, err := g.resolve(name)
	if err != nil {
		return nil, err
	}
	var out []string
	queue := append([]PropertyID(nil), g.nodes[id].Children...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		out = append(out, g.nodes[cur].Name)
		queue = append(queue, g.nodes[cur].Children...)
	}
	return out, nil
}

// SuperProperties returns the chain of ancestors of name, nearest first.
func (g *Graph) SuperProperties(name string) ([]string, error) {
	id, err := g.resolve(name)
	if err != nil {
		return nil, err
	}
	var out []string
	for cur := g.nodes[id].Parent; cur != NoProperty; cur = g.nodes[cur].Parent {
		out = append(out, g.nodes[cur].Name)
	}
	return out, nil
}

// ExpectedDomain returns the resolved expected-domain set of name: its own
// declared types followed by those inherited from super-properties,
// nearest first, without duplicates.
func (g *Graph) ExpectedDomain(name string) ([]TypeRef, error) {
	return g.inheritedTypes(name, func(n *Node) []TypeRef { return n.ExpectedDomain })
}

// ExpectedRange is ExpectedDomain for the object side.
func (g *Graph) ExpectedRange(name string) ([]TypeRef, error) {
	return g.inheritedTypes(name, func(n *Node) []TypeRef { return n.ExpectedRange })
}

func (g *Graph) inheritedTypes(name string, pick func(*Node) []TypeRef) ([]TypeRef, error) {
	id, err := g.resolve(name)
	if err != nil {
		return nil, err
	}
	var out []TypeRef
	seen := make(map[TypeRef]bool)
	for cur := id; cur != NoProperty; cur = g.nodes[cur].Parent {
		for _, t := range pick(&g.nodes[cur]) {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out, nil
}
