package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/ast"

	"github.com/ai4bd/brick/internal/ir"
)

// knownFields are the labels a property body may use.
var knownFields = map[string]bool{
	"flags":             true,
	"inverseOf":         true,
	"subPropertyOf":     true,
	"definition":        true,
	"expectedDomain":    true,
	"expectedRange":     true,
	"domain":            true,
	"range":             true,
	"substance":         true,
	"relatedProperties": true,
	"subproperties":     true,
	"associations":      true,
	"annotations":       true,
}

// CompileProperties decodes every declaration under the top-level
// `property` struct of root, in authoring order. All decoding errors are
// collected rather than stopping at the first.
//
//	property: feeds: {
//		flags: ["Asymmetric", "Irreflexive"]
//		inverseOf: "isFedBy"
//		subproperties: feedsAir: substance: "Air"
//	}
func CompileProperties(root cue.Value) ([]ir.PropertyDecl, []error) {
	propsVal := root.LookupPath(cue.ParsePath("property"))
	if !propsVal.Exists() {
		return nil, nil
	}

	iter, err := propsVal.Fields()
	if err != nil {
		return nil, []error{formatCUEError(err)}
	}

	var (
		decls []ir.PropertyDecl
		errs  []error
	)
	for iter.Next() {
		decl, err := CompileProperty(iter.Value())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		decls = append(decls, *decl)
	}
	return decls, errs
}

// RepeatedDeclarations reports property labels written more than once in
// the syntax of a CUE package. CUE unifies repeated labels into a single
// value, so the decoded package cannot show them. Every occurrence after
// the first comes back as a bare declaration carrying its own source; the
// resolver reports these as duplicates. Subproperties are scanned too.
func RepeatedDeclarations(files []*ast.File) []ir.PropertyDecl {
	seen := make(map[string]bool)
	var repeats []ir.PropertyDecl

	var visit func(path string, s *ast.StructLit)
	visit = func(path string, s *ast.StructLit) {
		for _, elt := range s.Elts {
			field, ok := elt.(*ast.Field)
			if !ok {
				continue
			}
			name, _, err := ast.LabelName(field.Label)
			if err != nil {
				continue
			}
			key := path + "." + name
			if seen[key] {
				repeats = append(repeats, ir.PropertyDecl{Name: name, Source: formatPos(field.Pos())})
			}
			seen[key] = true

			body, ok := field.Value.(*ast.StructLit)
			if !ok {
				continue
			}
			for _, sub := range subpropertyBlocks(body) {
				visit(key, sub)
			}
		}
	}

	for _, f := range files {
		for _, d := range f.Decls {
			field, ok := d.(*ast.Field)
			if !ok {
				continue
			}
			if name, _, err := ast.LabelName(field.Label); err != nil || name != "property" {
				continue
			}
			if s, ok := field.Value.(*ast.StructLit); ok {
				visit("property", s)
			}
		}
	}
	return repeats
}

// subpropertyBlocks returns the struct values of every `subproperties`
// field written directly in body.
func subpropertyBlocks(body *ast.StructLit) []*ast.StructLit {
	var blocks []*ast.StructLit
	for _, elt := range body.Elts {
		field, ok := elt.(*ast.Field)
		if !ok {
			continue
		}
		if name, _, err := ast.LabelName(field.Label); err != nil || name != "subproperties" {
			continue
		}
		if s, ok := field.Value.(*ast.StructLit); ok {
			blocks = append(blocks, s)
		}
	}
	return blocks
}

// CompileTypes decodes the top-level `types` list of root: the external
// type namespace that expected domain and range references resolve
// against. A missing list yields an empty namespace.
func CompileTypes(root cue.Value) ([]string, error) {
	typesVal := root.LookupPath(cue.ParsePath("types"))
	if !typesVal.Exists() {
		return nil, nil
	}
	list, err := stringList(typesVal, "types")
	if err != nil {
		return nil, err
	}
	return list, nil
}

// CompileProperty parses a CUE value into a PropertyDecl. The property
// name is taken from the struct label.
//
// The CUE value should be the property struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`property: hasPoint: { inverseOf: "isPointOf" }`)
//	decl, err := CompileProperty(v.LookupPath(cue.ParsePath("property.hasPoint")))
func CompileProperty(v cue.Value) (*ir.PropertyDecl, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	decl := &ir.PropertyDecl{Source: formatPos(v.Pos())}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		decl.Name = strings.Trim(labels[len(labels)-1].String(), `"`)
	}

	if v.IncompleteKind() != cue.StructKind {
		return nil, &CompileError{
			Field:   "property." + decl.Name,
			Message: "property declaration must be a struct",
			Pos:     v.Pos(),
		}
	}

	// Reject unknown fields so typos do not silently drop data.
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		if !knownFields[iter.Label()] {
			return nil, &CompileError{
				Field:   fmt.Sprintf("property.%s.%s", decl.Name, iter.Label()),
				Message: fmt.Sprintf("unknown field %q", iter.Label()),
				Pos:     iter.Value().Pos(),
			}
		}
	}

	scalars := []struct {
		field string
		dst   *string
	}{
		{"inverseOf", &decl.InverseOf},
		{"subPropertyOf", &decl.SubPropertyOf},
		{"definition", &decl.Definition},
		{"substance", &decl.Substance},
	}
	for _, s := range scalars {
		if *s.dst, err = optString(v, s.field); err != nil {
			return nil, err
		}
	}

	lists := []struct {
		field string
		dst   *ir.StringList
	}{
		{"flags", &decl.Flags},
		{"expectedDomain", &decl.ExpectedDomain},
		{"expectedRange", &decl.ExpectedRange},
		{"domain", &decl.Domain},
		{"range", &decl.Range},
		{"relatedProperties", &decl.RelatedProperties},
	}
	for _, l := range lists {
		if *l.dst, err = optStringList(v, l.field); err != nil {
			return nil, err
		}
	}

	if decl.Subproperties, err = parseSubproperties(v); err != nil {
		return nil, err
	}
	if decl.Associations, err = parseAssociations(v); err != nil {
		return nil, err
	}
	if decl.Annotations, err = parseAnnotations(v); err != nil {
		return nil, err
	}

	return decl, nil
}

// parseSubproperties decodes the nested `subproperties` struct in order.
func parseSubproperties(v cue.Value) (ir.PropertyList, error) {
	subVal := v.LookupPath(cue.ParsePath("subproperties"))
	if !subVal.Exists() {
		return nil, nil
	}

	iter, err := subVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var subs ir.PropertyList
	for iter.Next() {
		sub, err := CompileProperty(iter.Value())
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, nil
}

// parseAssociations decodes `associations: [{predicate: "...", target: "..."}]`.
func parseAssociations(v cue.Value) ([]ir.Association, error) {
	assocVal := v.LookupPath(cue.ParsePath("associations"))
	if !assocVal.Exists() {
		return nil, nil
	}

	iter, err := assocVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []ir.Association
	for iter.Next() {
		item := iter.Value()
		predicate, err := optString(item, "predicate")
		if err != nil {
			return nil, err
		}
		target, err := optString(item, "target")
		if err != nil {
			return nil, err
		}
		out = append(out, ir.Association{Predicate: predicate, Target: target})
	}
	return out, nil
}

// parseAnnotations decodes the free-form `annotations` struct. Each value
// is a string or a list of strings.
func parseAnnotations(v cue.Value) (map[string]ir.StringList, error) {
	annVal := v.LookupPath(cue.ParsePath("annotations"))
	if !annVal.Exists() {
		return nil, nil
	}

	iter, err := annVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	out := make(map[string]ir.StringList)
	for iter.Next() {
		list, err := stringList(iter.Value(), "annotations."+iter.Label())
		if err != nil {
			return nil, err
		}
		out[iter.Label()] = list
	}
	return out, nil
}

// optString returns the string at field, or "" if absent.
func optString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", &CompileError{
			Field:   field,
			Message: "must be a string",
			Pos:     fv.Pos(),
		}
	}
	return s, nil
}

// optStringList returns the string or list of strings at field, or nil.
func optStringList(v cue.Value, field string) (ir.StringList, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, nil
	}
	return stringList(fv, field)
}

func stringList(v cue.Value, field string) (ir.StringList, error) {
	if s, err := v.String(); err == nil {
		return ir.StringList{s}, nil
	}

	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Field:   field,
			Message: "must be a string or list of strings",
			Pos:     v.Pos(),
		}
	}

	var out ir.StringList
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   field,
				Message: "list elements must be strings",
				Pos:     iter.Value().Pos(),
			}
		}
		out = append(out, s)
	}
	return out, nil
}
