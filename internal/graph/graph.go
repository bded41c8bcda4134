package graph

import (
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/ai4bd/brick/internal/ir"
)

// PropertyID is a handle to a property within one Graph.
type PropertyID int32

// NoProperty marks an absent property reference.
const NoProperty PropertyID = -1

// TypeRef identifies a type in the external namespace.
type TypeRef string

// Ref is a resolved reference to either a property or an external type.
type Ref struct {
	Property PropertyID
	Type     TypeRef
}

// PropertyRef returns a Ref to a property.
func PropertyRef(id PropertyID) Ref { return Ref{Property: id} }

// TypeRefOf returns a Ref to an external type.
func TypeRefOf(t TypeRef) Ref { return Ref{Property: NoProperty, Type: t} }

// IsProperty reports whether the reference targets a property.
func (r Ref) IsProperty() bool { return r.Property != NoProperty }

// Association is a typed extra edge from a property to another entity.
type Association struct {
	Predicate string
	Target    Ref
}

// Node is one property in the expanded graph.
type Node struct {
	ID                PropertyID
	Name              string
	Flags             ir.FlagSet
	Definition        string
	Inverse           PropertyID
	InverseBackfilled bool
	Parent            PropertyID
	ExpectedDomain    []TypeRef
	ExpectedRange     []TypeRef
	Domain            []TypeRef
	Range             []TypeRef
	Associations      []Association
	Annotations       map[string][]string
	Source            string

	// Children is derived by New; any input value is ignored.
	Children []PropertyID
}

// Graph is an immutable, validated property graph.
type Graph struct {
	nodes  []Node
	byName map[string]PropertyID
	hash   string
}

// New builds a Graph from nodes whose IDs equal their index. It checks
// structural integrity only (handles in range, unique names, no parent
// cycles); semantic validation belongs to the compiler.
func New(nodes []Node) (*Graph, error) {
	g := &Graph{
		nodes:  make([]Node, len(nodes)),
		byName: make(map[string]PropertyID, len(nodes)),
	}

	for i, n := range nodes {
		if n.ID != PropertyID(i) {
			return nil, fmt.Errorf("node %q: id %d does not match index %d", n.Name, n.ID, i)
		}
		if n.Name == "" {
			return nil, fmt.Errorf("node %d: empty name", i)
		}
		if _, dup := g.byName[n.Name]; dup {
			return nil, fmt.Errorf("node %q: duplicate name", n.Name)
		}
		g.byName[n.Name] = n.ID
		g.nodes[i] = cloneNode(n)
		g.nodes[i].Children = nil
	}

	for i, n := range g.nodes {
		if !g.valid(n.Inverse) {
			return nil, fmt.Errorf("node %q: inverse handle %d out of range", n.Name, n.Inverse)
		}
		if !g.valid(n.Parent) {
			return nil, fmt.Errorf("node %q: parent handle %d out of range", n.Name, n.Parent)
		}
		for _, a := range n.Associations {
			if a.Target.IsProperty() && !g.valid(a.Target.Property) {
				return nil, fmt.Errorf("node %q: association target %d out of range", n.Name, a.Target.Property)
			}
		}
		if n.Parent != NoProperty {
			g.nodes[n.Parent].Children = append(g.nodes[n.Parent].Children, PropertyID(i))
		}
	}

	for i := range g.nodes {
		children := g.nodes[i].Children
		sort.Slice(children, func(a, b int) bool {
			return g.nodes[children[a]].Name < g.nodes[children[b]].Name
		})
		if err := g.checkParentChain(PropertyID(i)); err != nil {
			return nil, err
		}
	}

	hash, err := ir.CanonicalHash(ir.DomainGraph, g.canonical())
	if err != nil {
		return nil, fmt.Errorf("hash graph: %w", err)
	}
	g.hash = hash

	return g, nil
}

func (g *Graph) valid(id PropertyID) bool {
	return id == NoProperty || (id >= 0 && int(id) < len(g.nodes))
}

// checkParentChain walks up from id and fails if the walk revisits a node.
func (g *Graph) checkParentChain(id PropertyID) error {
	seen := make(map[PropertyID]bool)
	for cur := id; cur != NoProperty; cur = g.nodes[cur].Parent {
		if seen[cur] {
			return fmt.Errorf("node %q: sub-property chain contains a cycle", g.nodes[id].Name)
		}
		seen[cur] = true
	}
	return nil
}

func cloneNode(n Node) Node {
	n.ExpectedDomain = slices.Clone(n.ExpectedDomain)
	n.ExpectedRange = slices.Clone(n.ExpectedRange)
	n.Domain = slices.Clone(n.Domain)
	n.Range = slices.Clone(n.Range)
	n.Associations = slices.Clone(n.Associations)
	n.Children = slices.Clone(n.Children)
	if n.Annotations != nil {
		ann := make(map[string][]string, len(n.Annotations))
		for k, v := range n.Annotations {
			ann[k] = slices.Clone(v)
		}
		n.Annotations = ann
	}
	return n
}

// Len returns the number of properties.
func (g *Graph) Len() int { return len(g.nodes) }

// Hash returns the content hash of the graph. Structurally equal graphs
// have equal hashes regardless of handle order; source positions do not
// participate.
func (g *Graph) Hash() string { return g.hash }

// ID returns the handle for name.
func (g *Graph) ID(name string) (PropertyID, bool) {
	id, ok := g.byName[name]
	return id, ok
}

// Node returns a copy of the node for id. It panics if id is out of range,
// like a slice index.
func (g *Graph) Node(id PropertyID) Node {
	return cloneNode(g.nodes[id])
}

// Names returns all property names in sorted order.
func (g *Graph) Names() []string {
	order := g.nameOrder()
	names := make([]string, len(order))
	for i, id := range order {
		names[i] = g.nodes[id].Name
	}
	return names
}

// nameOrder returns every handle sorted by property name. Handles are
// whatever order New received; anything content-addressed walks this.
func (g *Graph) nameOrder() []PropertyID {
	order := make([]PropertyID, len(g.nodes))
	for i := range order {
		order[i] = PropertyID(i)
	}
	sort.Slice(order, func(a, b int) bool {
		return g.nodes[order[a]].Name < g.nodes[order[b]].Name
	})
	return order
}

// InversePairs maps every property with an inverse to that inverse's name.
// Both directions are present.
func (g *Graph) InversePairs() map[string]string {
	pairs := make(map[string]string)
	for _, n := range g.nodes {
		if n.Inverse != NoProperty {
			pairs[n.Name] = g.nodes[n.Inverse].Name
		}
	}
	return pairs
}

func (g *Graph) name(id PropertyID) string {
	if id == NoProperty {
		return ""
	}
	return g.nodes[id].Name
}

func typeStrings(refs []TypeRef) []string {
	if len(refs) == 0 {
		return nil
	}
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = string(r)
	}
	return out
}

func sortedKeys(m map[string][]string) []string {
	return slices.Sorted(maps.Keys(m))
}
