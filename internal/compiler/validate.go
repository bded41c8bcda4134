package compiler

import (
	"fmt"
	"strings"

	"github.com/ai4bd/brick/internal/ir"
)

// ValidateDecls checks the structural shape of raw declarations, including
// nested sub-property blocks. Returns all errors found (does not fail-fast).
// Cross-declaration checks belong to the resolver and the checker.
func ValidateDecls(decls []ir.PropertyDecl) []ValidationError {
	var errs []ValidationError
	for i := range decls {
		errs = append(errs, validateDecl(&decls[i], fmt.Sprintf("properties[%d]", i))...)
	}
	return errs
}

func validateDecl(d *ir.PropertyDecl, path string) []ValidationError {
	var errs []ValidationError

	name := ir.NormalizeName(d.Name)
	if name == "" {
		e := newError(KindEmptyName, path+".name", "property name is required and must be non-empty")
		e.Source = d.Source
		errs = append(errs, e)
	} else {
		path = name
	}

	// E210: every flag must belong to the closed enumeration
	_, unknown := ir.ParseFlags(d.Flags)
	for _, f := range unknown {
		e := newError(KindInvalidFlag, path+".flags",
			fmt.Sprintf("unknown flag %q on %q, must be one of Asymmetric, Functional, Irreflexive, Symmetric, Transitive", f, name),
			name)
		e.Source = d.Source
		errs = append(errs, e)
	}

	// E213: associations need both ends
	for j, a := range d.Associations {
		if strings.TrimSpace(a.Predicate) == "" || strings.TrimSpace(a.Target) == "" {
			e := newError(KindInvalidAssociation, fmt.Sprintf("%s.associations[%d]", path, j),
				fmt.Sprintf("association on %q requires non-empty predicate and target", name),
				name)
			e.Source = d.Source
			errs = append(errs, e)
		}
	}

	// E214: the typed fields own these annotation keys
	for _, key := range []string{AnnotationSubstance, AnnotationRelatedProperties} {
		if _, ok := d.Annotations[key]; ok {
			e := newError(KindReservedAnnotation, fmt.Sprintf("%s.annotations.%s", path, key),
				fmt.Sprintf("annotation %q on %q is reserved, use the %s field instead", key, name, key),
				name)
			e.Source = d.Source
			errs = append(errs, e)
		}
	}

	for j := range d.Subproperties {
		errs = append(errs, validateDecl(&d.Subproperties[j], fmt.Sprintf("%s.subproperties[%d]", path, j))...)
	}

	return errs
}
