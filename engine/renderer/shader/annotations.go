// annotations.go defines the annotation types and parser for Oxy WGSL vertex layout
// annotations. Annotations are single-line WGSL comments prefixed with @oxy: that refine
// how a vertex input struct is laid out in its buffer: the struct's step mode, a field's
// exact wire format, or the element type the buffer stores for a field.
//
// An annotation applies to the struct or field declared on the same line (trailing form)
// or directly below it (stacked form, any number of consecutive annotation lines).
// Annotations inside block comments are ignored; any other annotation that reaches no
// vertex input struct or field is an error.
package shader

import (
	"maps"
	"slices"
	"strings"

	"github.com/Carmen-Shannon/oxy-layout/engine/layout"
)

// annotationPrefix is the marker that identifies an Oxy annotation within a WGSL comment line.
// Every annotation must appear in a "//" comment followed by this prefix.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// AnnotationTypeStep sets the step mode of the struct below it.
	//
	// Syntax: //@oxy:step <vertex|instance>
	//
	// Example: //@oxy:step instance
	AnnotationTypeStep AnnotationType = "step"

	// AnnotationTypeFormat forces the wire format of a field, bypassing inference from
	// the WGSL type. No arity check is done on the forced format.
	//
	// Syntax: //@oxy:format <format>
	//
	// Example: //@oxy:format Unorm8x4
	AnnotationTypeFormat AnnotationType = "format"

	// AnnotationTypeElement declares the element type stored in the buffer for a field,
	// keeping the component count of the WGSL type. With norm, the normalized format
	// family is used, so a vec4f fed from four bytes becomes Unorm8x4.
	//
	// Syntax: //@oxy:element <u8|i8|u16|i16|u32|i32|f32|f64> [norm]
	//
	// Example: //@oxy:element u8 norm
	AnnotationTypeElement AnnotationType = "element"
)

// normArg is the optional trailing argument of an element annotation.
const normArg = "norm"

// Annotation represents a single parsed @oxy: annotation from a WGSL shader source line.
// Only the field matching Type is set.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the raw annotation arguments after the type.
	Args []string

	// Line is the 1-based line number in the WGSL source where this annotation was found.
	Line int

	// StepMode is set for step annotations.
	StepMode layout.StepMode

	// Format is set for format annotations.
	Format layout.Format

	// Element is set for element annotations.
	Element layout.ElementKind

	// Normalize is set for element annotations carrying the norm argument.
	Normalize bool
}

// parseAnnotation attempts to parse a single line of WGSL source as an @oxy: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix. Returns
// a populated Annotation for valid annotations, or a *layout.Error for malformed ones.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a *layout.Error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	_, comment, ok := strings.Cut(line, "//")
	if !ok {
		return nil, nil
	}
	_, after, ok := strings.Cut(strings.TrimSpace(comment), annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, annotationError(lineNum, "", "empty @oxy annotation")
	}

	a := &Annotation{
		Type: AnnotationType(args[0]),
		Args: args[1:],
		Line: lineNum,
	}

	switch a.Type {
	case AnnotationTypeStep:
		if len(a.Args) != 1 {
			return nil, annotationError(lineNum, after, "@oxy step annotation requires exactly one argument (vertex or instance)")
		}
		mode, err := layout.ParseStepMode(a.Args[0])
		if err != nil {
			return nil, layout.NewFieldError(layout.KindInvalidStepMode, -1, "", lineNum, a.Args[0],
				"unknown step mode %q in @oxy step annotation", a.Args[0])
		}
		a.StepMode = mode
	case AnnotationTypeFormat:
		if len(a.Args) != 1 {
			return nil, annotationError(lineNum, after, "@oxy format annotation requires exactly one argument")
		}
		format, ok := layout.ParseFormat(a.Args[0])
		if !ok {
			return nil, annotationError(lineNum, a.Args[0], "unknown format %q in @oxy format annotation", a.Args[0])
		}
		a.Format = format
	case AnnotationTypeElement:
		if len(a.Args) < 1 || len(a.Args) > 2 {
			return nil, annotationError(lineNum, after, "@oxy element annotation requires an element type and an optional norm")
		}
		kind, ok := layout.ParseElementKind(a.Args[0])
		if !ok {
			return nil, annotationError(lineNum, a.Args[0], "unknown element type %q in @oxy element annotation", a.Args[0])
		}
		a.Element = kind
		if len(a.Args) == 2 {
			if a.Args[1] != normArg {
				return nil, annotationError(lineNum, a.Args[1], "unexpected argument %q in @oxy element annotation", a.Args[1])
			}
			a.Normalize = true
		}
	default:
		return nil, annotationError(lineNum, args[0], "unknown @oxy annotation type %q", args[0])
	}

	return a, nil
}

// annotationError builds a record-level conflicting_override error for a malformed annotation.
func annotationError(lineNum int, value any, format string, args ...any) error {
	return layout.NewFieldError(layout.KindConflictingOverride, -1, "", lineNum, value, format, args...)
}

// collectAnnotations parses every line of the source outside block comments. It returns
// the annotations keyed by line number and the set of lines that hold nothing but a line
// comment, which is what lets stacked annotations chain upward from a declaration.
//
// Parameters:
//   - source: the raw WGSL source, comments intact
//
// Returns:
//   - map[int]*Annotation: annotations keyed by 1-based line number
//   - map[int]bool: lines whose trimmed text starts with "//"
//   - error: the first malformed annotation
func collectAnnotations(source string) (map[int]*Annotation, map[int]bool, error) {
	annotations := make(map[int]*Annotation)
	commentOnly := make(map[int]bool)

	lineNum := 0
	for line := range strings.SplitSeq(stripBlockComments(source), "\n") {
		lineNum++
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			commentOnly[lineNum] = true
		}
		a, err := parseAnnotation(line, lineNum)
		if err != nil {
			return nil, nil, err
		}
		if a != nil {
			annotations[lineNum] = a
		}
	}
	return annotations, commentOnly, nil
}

// unattachedAnnotations reports every annotation whose line is not in attached, in line order.
//
// Parameters:
//   - annotations: all annotations keyed by line number
//   - attached: lines of annotations consumed by a vertex input struct or field
//
// Returns:
//   - []error: one conflicting_override *layout.Error per unattached annotation
func unattachedAnnotations(annotations map[int]*Annotation, attached map[int]bool) []error {
	var errs []error
	for _, line := range slices.Sorted(maps.Keys(annotations)) {
		if attached[line] {
			continue
		}
		a := annotations[line]
		errs = append(errs, annotationError(line, a.Args,
			"@oxy %s annotation is not attached to a vertex input struct or field", a.Type))
	}
	return errs
}

// annotationsFor returns the annotations that apply to a declaration on the given line:
// a trailing annotation on the same line, then every annotation on the consecutive
// comment-only lines directly above it, nearest first.
func annotationsFor(line int, annotations map[int]*Annotation, commentOnly map[int]bool) []*Annotation {
	var out []*Annotation
	if a, ok := annotations[line]; ok && !commentOnly[line] {
		out = append(out, a)
	}
	for l := line - 1; l > 0 && commentOnly[l]; l-- {
		if a, ok := annotations[l]; ok {
			out = append(out, a)
		}
	}
	return out
}
