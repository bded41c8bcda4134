package graph

import "sort"

// EdgeKind is the kind of a directed edge in the expanded graph.
type EdgeKind string

const (
	EdgeInverseOf      EdgeKind = "inverseOf"
	EdgeSubPropertyOf  EdgeKind = "subPropertyOf"
	EdgeExpectedDomain EdgeKind = "expectedDomain"
	EdgeExpectedRange  EdgeKind = "expectedRange"
	EdgeDomain         EdgeKind = "domain"
	EdgeRange          EdgeKind = "range"
	EdgeAssociation    EdgeKind = "association"
)

// Edge is one directed edge. Predicate equals the kind name except for
// associations, where it is the declared predicate.
type Edge struct {
	Kind      EdgeKind `json:"kind"`
	Subject   string   `json:"subject"`
	Predicate string   `json:"predicate"`
	Object    string   `json:"object"`
}

func (e Edge) String() string {
	return e.Subject + " " + e.Predicate + " " + e.Object
}

// Edges returns every edge of the graph sorted by subject, kind, predicate
// and object. Inverse edges appear in both directions.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	add := func(kind EdgeKind, subject, predicate, object string) {
		edges = append(edges, Edge{Kind: kind, Subject: subject, Predicate: predicate, Object: object})
	}

	for _, n := range g.nodes {
		if n.Inverse != NoProperty {
			add(EdgeInverseOf, n.Name, string(EdgeInverseOf), g.nodes[n.Inverse].Name)
		}
		if n.Parent != NoProperty {
			add(EdgeSubPropertyOf, n.Name, string(EdgeSubPropertyOf), g.nodes[n.Parent].Name)
		}
		for _, t := range n.ExpectedDomain {
			add(EdgeExpectedDomain, n.Name, string(EdgeExpectedDomain), string(t))
		}
		for _, t := range n.ExpectedRange {
			add(EdgeExpectedRange, n.Name, string(EdgeExpectedRange), string(t))
		}
		for _, t := range n.Domain {
			add(EdgeDomain, n.Name, string(EdgeDomain), string(t))
		}
		for _, t := range n.Range {
			add(EdgeRange, n.Name, string(EdgeRange), string(t))
		}
		for _, a := range n.Associations {
			object := string(a.Target.Type)
			if a.Target.IsProperty() {
				object = g.nodes[a.Target.Property].Name
			}
			add(EdgeAssociation, n.Name, a.Predicate, object)
		}
	}

	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Predicate != b.Predicate {
			return a.Predicate < b.Predicate
		}
		return a.Object < b.Object
	})
	return edges
}
