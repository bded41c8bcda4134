package graph

import (
	"fmt"
	"slices"
	"sort"

	"github.com/ai4bd/brick/internal/ir"
)

// Target kinds for association targets in the document form.
const (
	TargetProperty = "property"
	TargetType     = "type"
)

// Property is the name-based view of one node. It is what the query facade
// hands out and what the JSON document stores.
type Property struct {
	Name              string              `json:"name"`
	Flags             ir.FlagSet          `json:"flags"`
	Definition        string              `json:"definition,omitempty"`
	InverseOf         string              `json:"inverseOf,omitempty"`
	InverseBackfilled bool                `json:"inverseBackfilled,omitempty"`
	SubPropertyOf     string              `json:"subPropertyOf,omitempty"`
	SubProperties     []string            `json:"subProperties,omitempty"`
	ExpectedDomain    []string            `json:"expectedDomain,omitempty"`
	ExpectedRange     []string            `json:"expectedRange,omitempty"`
	Domain            []string            `json:"domain,omitempty"`
	Range             []string            `json:"range,omitempty"`
	Associations      []AssociationTarget `json:"associations,omitempty"`
	Annotations       map[string][]string `json:"annotations,omitempty"`
	Source            string              `json:"source,omitempty"`
}

// AssociationTarget is an association with its target by name.
type AssociationTarget struct {
	Predicate string `json:"predicate"`
	Target    string `json:"target"`
	Kind      string `json:"kind"`
}

// Document is the serializable form of a Graph.
type Document struct {
	IRVersion  string     `json:"irVersion"`
	Hash       string     `json:"hash"`
	Properties []Property `json:"properties"`
}

// property renders node id by name.
func (g *Graph) property(id PropertyID) Property {
	n := g.nodes[id]
	p := Property{
		Name:              n.Name,
		Flags:             n.Flags,
		Definition:        n.Definition,
		InverseOf:         g.name(n.Inverse),
		InverseBackfilled: n.InverseBackfilled,
		SubPropertyOf:     g.name(n.Parent),
		ExpectedDomain:    typeStrings(n.ExpectedDomain),
		ExpectedRange:     typeStrings(n.ExpectedRange),
		Domain:            typeStrings(n.Domain),
		Range:             typeStrings(n.Range),
		Source:            n.Source,
	}
	for _, c := range n.Children {
		p.SubProperties = append(p.SubProperties, g.nodes[c].Name)
	}
	for _, a := range n.Associations {
		at := AssociationTarget{Predicate: a.Predicate, Target: string(a.Target.Type), Kind: TargetType}
		if a.Target.IsProperty() {
			at.Target = g.nodes[a.Target.Property].Name
			at.Kind = TargetProperty
		}
		p.Associations = append(p.Associations, at)
	}
	if len(n.Annotations) > 0 {
		p.Annotations = make(map[string][]string, len(n.Annotations))
		for k, v := range n.Annotations {
			p.Annotations[k] = slices.Clone(v)
		}
	}
	return p
}

// Document returns the serializable form of the graph, properties in
// name order.
func (g *Graph) Document() *Document {
	doc := &Document{
		IRVersion:  ir.IRVersion,
		Hash:       g.hash,
		Properties: make([]Property, len(g.nodes)),
	}
	for i, id := range g.nameOrder() {
		doc.Properties[i] = g.property(id)
	}
	return doc
}

// canonical builds the hashed representation. Derived fields (children)
// and source positions are left out so the hash reflects structure only.
func (g *Graph) canonical() map[string]any {
	props := make([]any, len(g.nodes))
	for i, id := range g.nameOrder() {
		p := g.property(id)
		assoc := make([]any, len(p.Associations))
		for j, a := range p.Associations {
			assoc[j] = map[string]any{"predicate": a.Predicate, "target": a.Target, "kind": a.Kind}
		}
		ann := make(map[string]any, len(p.Annotations))
		for _, k := range sortedKeys(p.Annotations) {
			ann[k] = p.Annotations[k]
		}
		props[i] = map[string]any{
			"name":              p.Name,
			"flags":             p.Flags.Names(),
			"definition":        p.Definition,
			"inverseOf":         p.InverseOf,
			"inverseBackfilled": p.InverseBackfilled,
			"subPropertyOf":     p.SubPropertyOf,
			"expectedDomain":    p.ExpectedDomain,
			"expectedRange":     p.ExpectedRange,
			"domain":            p.Domain,
			"range":             p.Range,
			"associations":      assoc,
			"annotations":       ann,
		}
	}
	return map[string]any{
		"irVersion":  ir.IRVersion,
		"properties": props,
	}
}

// FromDocument rebuilds a Graph from its serialized form. If the document
// carries a hash, the rebuilt graph must match it.
func FromDocument(doc *Document) (*Graph, error) {
	if doc.IRVersion != ir.IRVersion {
		return nil, fmt.Errorf("unsupported graph document version %q (want %q)", doc.IRVersion, ir.IRVersion)
	}

	props := slices.Clone(doc.Properties)
	sort.Slice(props, func(i, j int) bool { return props[i].Name < props[j].Name })

	ids := make(map[string]PropertyID, len(props))
	for i, p := range props {
		ids[p.Name] = PropertyID(i)
	}
	lookup := func(owner, name string) (PropertyID, error) {
		if name == "" {
			return NoProperty, nil
		}
		id, ok := ids[name]
		if !ok {
			return NoProperty, fmt.Errorf("property %q references unknown property %q", owner, name)
		}
		return id, nil
	}

	nodes := make([]Node, len(props))
	for i, p := range props {
		inv, err := lookup(p.Name, p.InverseOf)
		if err != nil {
			return nil, err
		}
		parent, err := lookup(p.Name, p.SubPropertyOf)
		if err != nil {
			return nil, err
		}
		n := Node{
			ID:                PropertyID(i),
			Name:              p.Name,
			Flags:             p.Flags,
			Definition:        p.Definition,
			Inverse:           inv,
			InverseBackfilled: p.InverseBackfilled,
			Parent:            parent,
			ExpectedDomain:    typeRefs(p.ExpectedDomain),
			ExpectedRange:     typeRefs(p.ExpectedRange),
			Domain:            typeRefs(p.Domain),
			Range:             typeRefs(p.Range),
			Annotations:       p.Annotations,
			Source:            p.Source,
		}
		for _, a := range p.Associations {
			switch a.Kind {
			case TargetProperty:
				id, err := lookup(p.Name, a.Target)
				if err != nil {
					return nil, err
				}
				n.Associations = append(n.Associations, Association{Predicate: a.Predicate, Target: PropertyRef(id)})
			case TargetType:
				n.Associations = append(n.Associations, Association{Predicate: a.Predicate, Target: TypeRefOf(TypeRef(a.Target))})
			default:
				return nil, fmt.Errorf("property %q: unknown association target kind %q", p.Name, a.Kind)
			}
		}
		nodes[i] = n
	}

	g, err := New(nodes)
	if err != nil {
		return nil, err
	}
	if doc.Hash != "" && doc.Hash != g.hash {
		return nil, fmt.Errorf("graph document hash mismatch: document %s, rebuilt %s", doc.Hash, g.hash)
	}
	return g, nil
}

func typeRefs(ss []string) []TypeRef {
	if len(ss) == 0 {
		return nil
	}
	out := make([]TypeRef, len(ss))
	for i, s := range ss {
		out[i] = TypeRef(s)
	}
	return out
}
