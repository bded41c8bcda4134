package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/ai4bd/brick/internal/graph"
	"github.com/ai4bd/brick/internal/ir"
)

// flatDecl is one declaration after nested blocks are lifted into the
// shared namespace.
type flatDecl struct {
	decl   *ir.PropertyDecl
	name   string
	parent string // declaring parent for nested blocks, "" at top level
}

// flatten lists every declaration depth-first, parents before children.
func flatten(decls []ir.PropertyDecl) []flatDecl {
	var out []flatDecl
	var walk func(ds []ir.PropertyDecl, parent string)
	walk = func(ds []ir.PropertyDecl, parent string) {
		for i := range ds {
			d := &ds[i]
			name := ir.NormalizeName(d.Name)
			out = append(out, flatDecl{decl: d, name: name, parent: parent})
			walk(d.Subproperties, name)
		}
	}
	walk(decls, "")
	return out
}

// refKind says which namespace a reference must resolve in.
type refKind int

const (
	refProperty refKind = iota
	refType
	refPropertyOrType
)

// unresolvedRef is a reference the resolver could not bind. The checker
// turns each one into a terminal error.
type unresolvedRef struct {
	owner      string
	field      string
	target     string
	kind       refKind
	suggestion string
	source     string
}

// resolvedDecl is a declaration whose references are bound to handles.
type resolvedDecl struct {
	id             graph.PropertyID
	flat           flatDecl
	flags          ir.FlagSet
	inverse        graph.PropertyID
	parent         graph.PropertyID
	expectedDomain []graph.TypeRef
	expectedRange  []graph.TypeRef
	domain         []graph.TypeRef
	rangeTypes     []graph.TypeRef
	associations   []graph.Association
}

// symbolTable maps property names to handles. Handles follow sorted-name
// order so they are independent of declaration order.
type symbolTable struct {
	ids   map[string]graph.PropertyID
	names []string
}

func (st *symbolTable) lookup(name string) (graph.PropertyID, bool) {
	id, ok := st.ids[name]
	return id, ok
}

// resolution is the resolver's output.
type resolution struct {
	symbols    *symbolTable
	decls      []resolvedDecl // indexed by handle
	errs       []ValidationError
	unresolved []unresolvedRef
}

// resolve flattens declarations, detects duplicates and binds every
// symbolic reference. It has no side effects.
func resolve(decls []ir.PropertyDecl, ns ir.Namespace) *resolution {
	if ns == nil {
		ns = ir.TypeSet{}
	}
	res := &resolution{}

	// First pass: claim names. The first declaration of a name wins.
	flat := flatten(decls)
	first := make(map[string]flatDecl)
	sources := make(map[string][]string)
	var dupOrder []string
	for _, fd := range flat {
		if fd.name == "" {
			continue // reported by ValidateDecls
		}
		if _, seen := first[fd.name]; seen {
			if len(sources[fd.name]) == 1 {
				dupOrder = append(dupOrder, fd.name)
			}
			sources[fd.name] = append(sources[fd.name], fd.decl.Source)
			continue
		}
		first[fd.name] = fd
		sources[fd.name] = []string{fd.decl.Source}
	}

	// E201: one error per duplicated name
	for _, name := range dupOrder {
		e := newError(KindDuplicateDeclaration, name,
			fmt.Sprintf("property %q is declared %d times%s", name, len(sources[name]), describeSources(sources[name])),
			name)
		e.Source = sources[name][1]
		res.errs = append(res.errs, e)
	}

	names := make([]string, 0, len(first))
	for name := range first {
		names = append(names, name)
	}
	sort.Strings(names)

	st := &symbolTable{ids: make(map[string]graph.PropertyID, len(names)), names: names}
	for i, name := range names {
		st.ids[name] = graph.PropertyID(i)
	}
	res.symbols = st

	// Second pass: bind references now that every name is known, so
	// forward references resolve the same as backward ones.
	typeIDs := namespaceIDs(ns)
	res.decls = make([]resolvedDecl, len(names))
	for i, name := range names {
		fd := first[name]
		d := fd.decl
		rd := resolvedDecl{
			id:      graph.PropertyID(i),
			flat:    fd,
			inverse: graph.NoProperty,
			parent:  graph.NoProperty,
		}
		rd.flags, _ = ir.ParseFlags(d.Flags)

		unresolved := func(field, target string, kind refKind, candidates []string) {
			res.unresolved = append(res.unresolved, unresolvedRef{
				owner:      name,
				field:      field,
				target:     target,
				kind:       kind,
				suggestion: suggest(target, candidates),
				source:     d.Source,
			})
		}

		if inv := ir.NormalizeName(d.InverseOf); inv != "" {
			if id, ok := st.lookup(inv); ok {
				rd.inverse = id
			} else {
				unresolved("inverseOf", inv, refProperty, names)
			}
		}

		explicit := ir.NormalizeName(d.SubPropertyOf)
		switch {
		case fd.parent != "" && explicit != "" && explicit != fd.parent:
			// E212: nested blocks already fix the parent
			e := newError(KindConflictingParent, name+".subPropertyOf",
				fmt.Sprintf("%q is nested under %q but declares subPropertyOf %q; a property has at most one direct parent", name, fd.parent, explicit),
				name, fd.parent, explicit)
			e.Source = d.Source
			res.errs = append(res.errs, e)
			rd.parent = st.ids[fd.parent]
		case fd.parent != "":
			if id, ok := st.lookup(fd.parent); ok {
				rd.parent = id
			}
		case explicit != "":
			if id, ok := st.lookup(explicit); ok {
				rd.parent = id
			} else {
				unresolved("subPropertyOf", explicit, refProperty, names)
			}
		}

		bindTypes := func(field string, refs ir.StringList) []graph.TypeRef {
			var out []graph.TypeRef
			for _, r := range refs {
				t := ir.NormalizeName(r)
				if ns.Contains(t) {
					out = append(out, graph.TypeRef(t))
					continue
				}
				unresolved(field, t, refType, typeIDs)
			}
			return out
		}
		rd.expectedDomain = bindTypes("expectedDomain", d.ExpectedDomain)
		rd.expectedRange = bindTypes("expectedRange", d.ExpectedRange)
		rd.domain = bindTypes("domain", d.Domain)
		rd.rangeTypes = bindTypes("range", d.Range)

		for _, a := range d.Associations {
			pred, target := ir.NormalizeName(a.Predicate), ir.NormalizeName(a.Target)
			if pred == "" || target == "" {
				continue // reported by ValidateDecls
			}
			if id, ok := st.lookup(target); ok {
				rd.associations = append(rd.associations, graph.Association{Predicate: pred, Target: graph.PropertyRef(id)})
				continue
			}
			if ns.Contains(target) {
				rd.associations = append(rd.associations, graph.Association{Predicate: pred, Target: graph.TypeRefOf(graph.TypeRef(target))})
				continue
			}
			unresolved("associations."+pred, target, refPropertyOrType, append(append([]string(nil), names...), typeIDs...))
		}

		res.decls[i] = rd
	}

	return res
}

func describeSources(sources []string) string {
	var known []string
	for _, s := range sources {
		if s != "" {
			known = append(known, s)
		}
	}
	if len(known) == 0 {
		return ""
	}
	return " (at " + strings.Join(known, ", ") + ")"
}

// namespaceIDs lists the namespace members when the namespace can
// enumerate them; it is only used for suggestions.
func namespaceIDs(ns ir.Namespace) []string {
	if lister, ok := ns.(interface{ IDs() []string }); ok {
		return lister.IDs()
	}
	return nil
}

// suggest returns the candidate closest to target by edit distance, or ""
// when nothing is close enough to be a plausible typo.
func suggest(target string, candidates []string) string {
	best, bestDist := "", -1
	for _, c := range candidates {
		if c == target {
			continue
		}
		d := levenshtein.Distance(strings.ToLower(target), strings.ToLower(c), nil)
		if bestDist < 0 || d < bestDist || (d == bestDist && c < best) {
			best, bestDist = c, d
		}
	}
	if bestDist < 0 || bestDist > max(1, len(target)/3) {
		return ""
	}
	return best
}
