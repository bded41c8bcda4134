package compiler

import (
	"fmt"

	"github.com/ai4bd/brick/internal/graph"
)

// Annotation keys carried from nested sub-property declarations. The
// compiler does not interpret them. Declarations may not use them as
// free-form annotation keys.
const (
	AnnotationSubstance         = "substance"
	AnnotationRelatedProperties = "relatedProperties"
)

// expansion is the flat, not yet validated graph.
type expansion struct {
	nodes      []graph.Node
	advisories []Advisory
}

// expand turns resolved declarations into one node per property and makes
// every inverse relationship bidirectional. The result depends only on the
// set of declarations, not on their order.
func expand(res *resolution) *expansion {
	exp := &expansion{nodes: make([]graph.Node, len(res.decls))}

	for i, rd := range res.decls {
		d := rd.flat.decl
		n := graph.Node{
			ID:             rd.id,
			Name:           rd.flat.name,
			Flags:          rd.flags,
			Definition:     d.Definition,
			Inverse:        rd.inverse,
			Parent:         rd.parent,
			ExpectedDomain: rd.expectedDomain,
			ExpectedRange:  rd.expectedRange,
			Domain:         rd.domain,
			Range:          rd.rangeTypes,
			Associations:   rd.associations,
			Source:         d.Source,
		}

		ann := make(map[string][]string)
		for k, v := range d.Annotations {
			ann[k] = append([]string(nil), v...)
		}
		if d.Substance != "" {
			ann[AnnotationSubstance] = []string{d.Substance}
		}
		if len(d.RelatedProperties) > 0 {
			ann[AnnotationRelatedProperties] = append([]string(nil), d.RelatedProperties...)
		}
		if len(ann) > 0 {
			n.Annotations = ann
		}

		exp.nodes[i] = n
	}

	// Back-fill reciprocal inverses. A target claimed by exactly one
	// property and declaring no inverse of its own gets the reciprocal.
	claims := make(map[graph.PropertyID][]graph.PropertyID)
	for _, n := range exp.nodes {
		if n.Inverse != graph.NoProperty && n.Inverse != n.ID {
			claims[n.Inverse] = append(claims[n.Inverse], n.ID)
		}
	}
	for i := range exp.nodes {
		target := &exp.nodes[i]
		claimants := claims[target.ID]
		if target.Inverse != graph.NoProperty || len(claimants) != 1 {
			continue
		}
		source := exp.nodes[claimants[0]]
		target.Inverse = source.ID
		target.InverseBackfilled = true
		exp.advisories = append(exp.advisories, Advisory{
			Kind:       AdvisoryOneSidedInverse,
			Code:       WarnOneSidedInverse,
			Properties: []string{target.Name, source.Name},
			Message: fmt.Sprintf("%q declares inverseOf %q but %q declares no inverse; back-filled %q inverseOf %q",
				source.Name, target.Name, target.Name, target.Name, source.Name),
		})
	}

	return exp
}
