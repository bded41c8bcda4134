package compiler

import (
	"fmt"
	"strings"

	"github.com/ai4bd/brick/internal/graph"
	"github.com/ai4bd/brick/internal/ir"
)

// check runs every invariant over the expanded nodes and returns all
// violations plus non-fatal advisories. It never stops at the first error.
func check(nodes []graph.Node, unresolved []unresolvedRef) ([]ValidationError, []Advisory) {
	var (
		errs       []ValidationError
		advisories []Advisory
	)

	errs = append(errs, checkUnresolved(unresolved)...)
	invErrs, invAdv := checkInverses(nodes)
	errs = append(errs, invErrs...)
	advisories = append(advisories, invAdv...)
	errs = append(errs, checkFlags(nodes)...)
	errs = append(errs, checkCycles(nodes)...)

	return errs, advisories
}

// checkUnresolved surfaces references the resolver could not bind. Dangling
// expected types are errors, not warnings: downstream validators treat them
// as authoritative.
func checkUnresolved(refs []unresolvedRef) []ValidationError {
	var errs []ValidationError
	for _, r := range refs {
		kind := KindUnknownReference
		what := "property"
		switch r.kind {
		case refType:
			kind = KindUnresolvedExpectedType
			what = "type"
		case refPropertyOrType:
			what = "property or type"
		}

		msg := fmt.Sprintf("%s of %q references unknown %s %q", r.field, r.owner, what, r.target)
		if r.suggestion != "" {
			msg += fmt.Sprintf(" (did you mean %q?)", r.suggestion)
		}
		e := newError(kind, r.owner+"."+r.field, msg, r.owner, r.target)
		e.Source = r.source
		errs = append(errs, e)
	}
	return errs
}

// checkInverses verifies that every inverse points back and that no
// property is its own inverse.
func checkInverses(nodes []graph.Node) ([]ValidationError, []Advisory) {
	var (
		errs       []ValidationError
		advisories []Advisory
	)

	for _, p := range nodes {
		if p.Inverse == graph.NoProperty {
			continue
		}

		// E204: never self-inverse
		if p.Inverse == p.ID {
			e := newError(KindSelfInverse, p.Name+".inverseOf",
				fmt.Sprintf("%q declares itself as its own inverse", p.Name), p.Name)
			e.Source = p.Source
			errs = append(errs, e)
			continue
		}

		q := nodes[p.Inverse]

		// E203: the inverse must point back
		if q.Inverse != p.ID {
			var msg string
			props := []string{p.Name, q.Name}
			switch {
			case q.Inverse == graph.NoProperty:
				msg = fmt.Sprintf("%q declares inverseOf %q, but %q is claimed as inverse by more than one property", p.Name, q.Name, q.Name)
			case q.Inverse == q.ID:
				msg = fmt.Sprintf("%q declares inverseOf %q, but %q declares itself as its inverse", p.Name, q.Name, q.Name)
			default:
				r := nodes[q.Inverse]
				props = append(props, r.Name)
				msg = fmt.Sprintf("%q declares inverseOf %q, but %q declares inverseOf %q", p.Name, q.Name, q.Name, r.Name)
			}
			e := newError(KindInverseMismatch, p.Name+".inverseOf", msg, props...)
			e.Source = p.Source
			errs = append(errs, e)
			continue
		}

		// Report each mutual pair once.
		if p.ID < q.ID && inverseFlagsDisagree(p.Flags, q.Flags) {
			advisories = append(advisories, Advisory{
				Kind:       AdvisoryInverseFlagMismatch,
				Code:       WarnInverseFlagMismatch,
				Properties: []string{p.Name, q.Name},
				Message: fmt.Sprintf("inverse pair %q (%s) and %q (%s) disagree on Symmetric/Asymmetric",
					p.Name, p.Flags, q.Name, q.Flags),
			})
		}
	}

	return errs, advisories
}

// inverseFlagsDisagree reports whether two inverses differ on a
// characteristic that inversion preserves.
func inverseFlagsDisagree(a, b ir.FlagSet) bool {
	return a.Has(ir.FlagSymmetric) != b.Has(ir.FlagSymmetric) ||
		a.Has(ir.FlagAsymmetric) != b.Has(ir.FlagAsymmetric)
}

// checkFlags rejects contradictory flag sets. Irreflexive is compatible with
// both Symmetric and Asymmetric.
func checkFlags(nodes []graph.Node) []ValidationError {
	var errs []ValidationError
	for _, n := range nodes {
		// E206
		if n.Flags.Has(ir.FlagAsymmetric) && n.Flags.Has(ir.FlagSymmetric) {
			e := newError(KindInvalidFlagCombination, n.Name+".flags",
				fmt.Sprintf("%q is declared both Asymmetric and Symmetric", n.Name), n.Name)
			e.Source = n.Source
			errs = append(errs, e)
		}
	}
	return errs
}

// Visit states for the sub-property DFS.
const (
	unvisited = iota
	inProgress
	done
)

// checkCycles runs a depth-first traversal over sub-property-of edges.
// Reaching a node that is still in progress closes a cycle; each cycle is
// reported once, rotated to start at its smallest name.
func checkCycles(nodes []graph.Node) []ValidationError {
	var (
		errs  []ValidationError
		state = make([]int, len(nodes))
		stack []graph.PropertyID
	)

	var visit func(id graph.PropertyID)
	visit = func(id graph.PropertyID) {
		state[id] = inProgress
		stack = append(stack, id)

		if next := nodes[id].Parent; next != graph.NoProperty {
			switch state[next] {
			case unvisited:
				visit(next)
			case inProgress:
				errs = append(errs, cycleError(nodes, cycleFrom(stack, next)))
			}
		}

		stack = stack[:len(stack)-1]
		state[id] = done
	}

	for i := range nodes {
		if state[i] == unvisited {
			visit(graph.PropertyID(i))
		}
	}
	return errs
}

// cycleFrom returns the members of the cycle closed at start, in stack order.
func cycleFrom(stack []graph.PropertyID, start graph.PropertyID) []graph.PropertyID {
	for i, id := range stack {
		if id == start {
			return append([]graph.PropertyID(nil), stack[i:]...)
		}
	}
	return nil
}

// cycleError builds the CycleDetected error. Handles follow sorted-name
// order, so rotating to the smallest handle starts at the smallest name.
func cycleError(nodes []graph.Node, members []graph.PropertyID) ValidationError {
	minAt := 0
	for i, id := range members {
		if id < members[minAt] {
			minAt = i
		}
	}
	rotated := append(append([]graph.PropertyID(nil), members[minAt:]...), members[:minAt]...)

	names := make([]string, len(rotated))
	for i, id := range rotated {
		names[i] = nodes[id].Name
	}
	path := strings.Join(append(append([]string(nil), names...), names[0]), " → ")

	e := newError(KindCycleDetected, names[0]+".subPropertyOf",
		fmt.Sprintf("sub-property cycle detected: %s", path), names...)
	e.Source = nodes[rotated[0]].Source
	return e
}
