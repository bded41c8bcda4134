package compiler

import (
	"fmt"
	"sort"
	"strings"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// ErrorKind classifies a validation error.
type ErrorKind string

// Error kinds. All are load-time errors; a Graph is only produced when
// none are present.
const (
	KindDuplicateDeclaration   ErrorKind = "DuplicateDeclaration"
	KindUnknownReference       ErrorKind = "UnknownReference"
	KindInverseMismatch        ErrorKind = "InverseMismatch"
	KindSelfInverse            ErrorKind = "SelfInverse"
	KindCycleDetected          ErrorKind = "CycleDetected"
	KindInvalidFlagCombination ErrorKind = "InvalidFlagCombination"
	KindUnresolvedExpectedType ErrorKind = "UnresolvedExpectedType"
	KindInvalidFlag            ErrorKind = "InvalidFlag"
	KindEmptyName              ErrorKind = "EmptyName"
	KindConflictingParent      ErrorKind = "ConflictingParent"
	KindInvalidAssociation     ErrorKind = "InvalidAssociation"
	KindReservedAnnotation     ErrorKind = "ReservedAnnotation"
)

// Validation error codes (E200-E299)
const (
	ErrDuplicateDeclaration   = "E201"
	ErrUnknownReference       = "E202"
	ErrInverseMismatch        = "E203"
	ErrSelfInverse            = "E204"
	ErrCycleDetected          = "E205"
	ErrInvalidFlagCombination = "E206"
	ErrUnresolvedExpectedType = "E207"

	// Structural declaration errors (E210-E219)
	ErrInvalidFlag        = "E210"
	ErrEmptyName          = "E211"
	ErrConflictingParent  = "E212"
	ErrInvalidAssociation = "E213"
	ErrReservedAnnotation = "E214"
)

var kindCodes = map[ErrorKind]string{
	KindDuplicateDeclaration:   ErrDuplicateDeclaration,
	KindUnknownReference:       ErrUnknownReference,
	KindInverseMismatch:        ErrInverseMismatch,
	KindSelfInverse:            ErrSelfInverse,
	KindCycleDetected:          ErrCycleDetected,
	KindInvalidFlagCombination: ErrInvalidFlagCombination,
	KindUnresolvedExpectedType: ErrUnresolvedExpectedType,
	KindInvalidFlag:            ErrInvalidFlag,
	KindEmptyName:              ErrEmptyName,
	KindConflictingParent:      ErrConflictingParent,
	KindInvalidAssociation:     ErrInvalidAssociation,
	KindReservedAnnotation:     ErrReservedAnnotation,
}

// Code returns the stable error code for the kind.
func (k ErrorKind) Code() string {
	return kindCodes[k]
}

// ValidationError is one violation found while compiling declarations.
// Properties lists the offending property names, primary first.
type ValidationError struct {
	Kind       ErrorKind `json:"kind"`
	Code       string    `json:"code"`
	Properties []string  `json:"properties"`
	Field      string    `json:"field,omitempty"`
	Message    string    `json:"message"`
	Source     string    `json:"source,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("[%s] %s: %s: %s", e.Code, e.Source, e.Kind, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Kind, e.Message)
}

func newError(kind ErrorKind, field, message string, properties ...string) ValidationError {
	return ValidationError{
		Kind:       kind,
		Code:       kind.Code(),
		Properties: properties,
		Field:      field,
		Message:    message,
	}
}

// Errors is the aggregated result of a failed compilation.
type Errors []ValidationError

// Error implements the error interface.
func (es Errors) Error() string {
	if len(es) == 1 {
		return es[0].Error()
	}
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d compilation errors:\n  %s", len(es), strings.Join(msgs, "\n  "))
}

// Has reports whether any error is of kind.
func (es Errors) Has(kind ErrorKind) bool {
	return len(es.OfKind(kind)) > 0
}

// OfKind returns the errors of kind.
func (es Errors) OfKind(kind ErrorKind) Errors {
	var out Errors
	for _, e := range es {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// sortErrors orders errors by primary property, then kind, then message,
// so the same declaration set always reports in the same order.
func sortErrors(es []ValidationError) {
	sort.SliceStable(es, func(i, j int) bool {
		pi, pj := primary(es[i].Properties), primary(es[j].Properties)
		if pi != pj {
			return pi < pj
		}
		if es[i].Kind != es[j].Kind {
			return es[i].Kind < es[j].Kind
		}
		return es[i].Message < es[j].Message
	})
}

func primary(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

// AdvisoryKind classifies a non-fatal finding.
type AdvisoryKind string

const (
	// AdvisoryOneSidedInverse: an inverse was declared on one side only and
	// the reciprocal was back-filled.
	AdvisoryOneSidedInverse AdvisoryKind = "OneSidedInverse"

	// AdvisoryInverseFlagMismatch: an inverse pair disagrees on Symmetric
	// or Asymmetric, which the inverse of a relation always preserves.
	AdvisoryInverseFlagMismatch AdvisoryKind = "InverseFlagMismatch"
)

// Advisory codes (W300-W399)
const (
	WarnOneSidedInverse     = "W301"
	WarnInverseFlagMismatch = "W302"
)

// Advisory is a non-fatal finding. Advisories never block compilation.
type Advisory struct {
	Kind       AdvisoryKind `json:"kind"`
	Code       string       `json:"code"`
	Properties []string     `json:"properties"`
	Message    string       `json:"message"`
}

func (a Advisory) String() string {
	return fmt.Sprintf("[%s] %s: %s", a.Code, a.Kind, a.Message)
}

func sortAdvisories(as []Advisory) {
	sort.SliceStable(as, func(i, j int) bool {
		pi, pj := primary(as[i].Properties), primary(as[j].Properties)
		if pi != pj {
			return pi < pj
		}
		return as[i].Kind < as[j].Kind
	})
}

// CompileError represents a declaration decoding error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}

func formatPos(pos token.Pos) string {
	if !pos.IsValid() {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", pos.Filename(), pos.Line(), pos.Column())
}
