package shader

import (
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-layout/common"
	"github.com/Carmen-Shannon/oxy-layout/engine/layout"
)

// lookupVertexType resolves a WGSL type name (whitespace removed) to the element kind
// and component count a vertex buffer supplies for it. When the type is a scalar or
// vector of a component type no vertex format carries (f16, bool), the component
// count is still returned alongside layout.KindUnsupportedElementKind so an element
// annotation can substitute the buffer's element type.
//
// Parameters:
//   - typeName: the WGSL type, e.g. "vec3<f32>" or "vec4h"
//
// Returns:
//   - vertexTypeInfo: the element kind and component count
//   - layout.ErrorKind: empty on success, otherwise the kind of failure
func lookupVertexType(typeName string) (vertexTypeInfo, layout.ErrorKind) {
	if info, ok := wgslVertexTypeMap[typeName]; ok {
		return info, ""
	}

	scalar, n := splitVectorType(typeName)
	switch {
	case n == 0:
		return vertexTypeInfo{}, layout.KindUnsupportedFieldShape
	case scalar == "f16" || scalar == "bool":
		return vertexTypeInfo{length: n}, layout.KindUnsupportedElementKind
	default:
		return vertexTypeInfo{}, layout.KindUnsupportedFieldShape
	}
}

// splitVectorType splits a WGSL scalar or vector type into its component type and count.
// For "vec3<f16>" returns ("f16", 3), for "vec2h" returns ("f16", 2), for "bool" returns
// ("bool", 1). Returns a zero count for anything that is not a scalar or vector.
//
// Parameters:
//   - typeName: the WGSL type string to split
//
// Returns:
//   - scalar: the component type name
//   - n: the component count, or 0
func splitVectorType(typeName string) (scalar string, n int) {
	switch typeName {
	case "f32", "i32", "u32", "f16", "bool":
		return typeName, 1
	}

	base, param := splitTypeParams(typeName)
	if len(base) < 4 || !strings.HasPrefix(base, "vec") {
		return "", 0
	}
	count, err := strconv.Atoi(base[3:4])
	if err != nil || count < 2 || count > 4 {
		return "", 0
	}

	switch suffix := base[4:]; {
	case suffix == "" && param != "":
		return param, count
	case suffix == "f" && param == "":
		return "f32", count
	case suffix == "i" && param == "":
		return "i32", count
	case suffix == "u" && param == "":
		return "u32", count
	case suffix == "h" && param == "":
		return "f16", count
	}
	return "", 0
}

// buildRecord converts a parsed vertex input struct and its annotations into a Record.
// Struct-level annotations may only set the step mode; field-level annotations may only
// set the format or the element type.
//
// Parameters:
//   - ps: the parsed struct with annotations attached
//
// Returns:
//   - Record: the record description
//   - error: a *layout.Error for the first invalid annotation or field type
func buildRecord(ps parsedStruct) (Record, error) {
	rec := Record{
		Name:       ps.name,
		StepMode:   layout.StepModeVertex,
		Fields:     make([]layout.FieldSpec, 0, len(ps.fields)),
		Line:       ps.line,
		FieldLines: make([]int, 0, len(ps.fields)),
	}

	var step *Annotation
	for _, a := range ps.annotations {
		switch {
		case a.Type == AnnotationTypeStep:
			if step != nil {
				return Record{}, layout.NewFieldError(layout.KindConflictingOverride, -1, "", a.Line, a.Args,
					"repeated @oxy step annotation on struct %s (first on line %d)", ps.name, step.Line)
			}
			step = a
			rec.StepMode = a.StepMode
		case a.Line != ps.line || !hasFieldOnLine(ps, ps.line):
			// trailing field annotations on a one-line struct are left to the field
			return Record{}, layout.NewFieldError(layout.KindConflictingOverride, -1, "", a.Line, a.Args,
				"@oxy %s annotation applies to fields, not struct %s", a.Type, ps.name)
		}
	}

	for i, f := range ps.fields {
		spec, err := buildFieldSpec(i, f, ps.line)
		if err != nil {
			return Record{}, err
		}
		rec.Fields = append(rec.Fields, spec)
		rec.FieldLines = append(rec.FieldLines, f.line)
	}

	return rec, nil
}

// hasFieldOnLine reports whether any field of ps starts on the given line.
func hasFieldOnLine(ps parsedStruct, line int) bool {
	for _, f := range ps.fields {
		if f.line == line {
			return true
		}
	}
	return false
}

// buildFieldSpec converts one parsed field into a layout.FieldSpec. @location(N) becomes
// the slot override, a format annotation the format override, and an element annotation
// replaces the element kind inferred from the WGSL type.
//
// Parameters:
//   - index: the field's position in the struct
//   - f: the parsed field with annotations attached
//   - structLine: the line of the enclosing struct keyword
//
// Returns:
//   - layout.FieldSpec: the field description
//   - error: a *layout.Error describing why the field cannot be described
func buildFieldSpec(index int, f parsedField, structLine int) (layout.FieldSpec, error) {
	spec := layout.FieldSpec{Name: f.name, ArrayLength: 1}
	if f.location >= 0 {
		spec.SlotOverride = common.Ptr(uint32(f.location))
	}

	var format, element *Annotation
	for _, a := range f.annotations {
		switch a.Type {
		case AnnotationTypeFormat, AnnotationTypeElement:
			prev := &format
			if a.Type == AnnotationTypeElement {
				prev = &element
			}
			if *prev != nil {
				return layout.FieldSpec{}, layout.NewFieldError(layout.KindConflictingOverride, index, f.name, a.Line, a.Args,
					"repeated @oxy %s annotation (first on line %d)", a.Type, (*prev).Line)
			}
			*prev = a
		case AnnotationTypeStep:
			if a.Line != structLine {
				return layout.FieldSpec{}, layout.NewFieldError(layout.KindConflictingOverride, index, f.name, a.Line, a.Args,
					"@oxy step annotation applies to structs, not fields")
			}
		}
	}
	if format != nil && element != nil && element.Normalize {
		return layout.FieldSpec{}, layout.NewFieldError(layout.KindConflictingOverride, index, f.name, element.Line, element.Args,
			"norm cannot be combined with an @oxy format annotation")
	}

	info, failure := lookupVertexType(f.typeName)
	if element != nil && info.length > 0 {
		info.kind = element.Element
		spec.Normalize = element.Normalize
		failure = ""
	}
	if format != nil {
		spec.FormatOverride = common.Ptr(format.Format)
		spec.Kind = info.kind
		spec.ArrayLength = max(info.length, 1)
		return spec, nil
	}

	switch failure {
	case "":
	case layout.KindUnsupportedElementKind:
		return layout.FieldSpec{}, layout.NewFieldError(failure, index, f.name, f.line, f.typeName,
			"Type '%s' is not allowed", f.typeName)
	default:
		return layout.FieldSpec{}, layout.NewFieldError(failure, index, f.name, f.line, f.typeName,
			"Type '%s' is not allowed in a vertex layout", f.typeName)
	}

	spec.Kind = info.kind
	spec.ArrayLength = info.length
	return spec, nil
}

// splitTypeParams splits a WGSL parameterized type into its base name and parameter string.
// For "vec3<f32>" returns ("vec3", "f32").
// For "vec3f" (no params) returns ("vec3f", "").
//
// Parameters:
//   - typeName: the WGSL type string to split
//
// Returns:
//   - base: the type name before the first angle bracket
//   - params: the content between angle brackets, or empty if none
func splitTypeParams(typeName string) (base string, params string) {
	before, after, ok := strings.Cut(typeName, "<")
	if !ok {
		return typeName, ""
	}
	base = before
	params = strings.TrimSuffix(after, ">")
	params = strings.TrimSpace(params)
	return base, params
}

// stripComments removes both single-line (//) and block (/* */) comments from WGSL source.
// Block comments may be nested per the WGSL specification. Line breaks are kept so byte
// offsets in the result map to the same source lines.
//
// Parameters:
//   - source: raw WGSL source string
//
// Returns:
//   - string: source with all comments removed
func stripComments(source string) string {
	return stripLineComments(stripBlockComments(source))
}

// stripLineComments removes single-line // comments from WGSL source so they
// do not interfere with struct and field parsing
//
// Parameters:
//   - source: raw WGSL source string
//
// Returns:
//   - string: source with line comments removed
func stripLineComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	first := true
	for line := range strings.SplitSeq(source, "\n") {
		if !first {
			sb.WriteByte('\n')
		}
		first = false
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		sb.WriteString(line)
	}
	return sb.String()
}

// stripBlockComments removes block comments (/* ... */) from WGSL source,
// handling nested block comments per the WGSL specification. Line breaks inside
// a comment are kept.
//
// Parameters:
//   - source: raw WGSL source string
//
// Returns:
//   - string: source with block comments removed
func stripBlockComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	i := 0
	for i < len(source) {
		if i+1 < len(source) {
			if source[i] == '/' && source[i+1] == '*' {
				depth++
				i += 2
				continue
			}
			if source[i] == '*' && source[i+1] == '/' && depth > 0 {
				depth--
				i += 2
				continue
			}
		}
		if depth == 0 || source[i] == '\n' {
			sb.WriteByte(source[i])
		}
		i++
	}
	return sb.String()
}

// isVertexInputStruct returns true if the struct is a pure vertex input, meaning
// it has at least one @location field and zero @builtin fields. This distinguishes
// vertex input structs from vertex output structs which mix @location with @builtin(position).
//
// Parameters:
//   - ps: the parsed struct to check
//
// Returns:
//   - bool: true if this is a vertex input struct
func isVertexInputStruct(ps parsedStruct) bool {
	hasLocation := false
	for _, f := range ps.fields {
		if f.isBuiltin {
			return false
		}
		if f.location >= 0 {
			hasLocation = true
		}
	}
	return hasLocation
}

// splitAtTopLevelCommas splits a string at commas that are not nested inside angle brackets
// or parentheses. This correctly handles WGSL types like array<f32, 4> and attributes like
// @interpolate(flat, either) where the comma is not a field separator.
//
// Parameters:
//   - s: the string to split (typically the body of a WGSL struct)
//
// Returns:
//   - []string: substrings between top-level commas
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(':
			depth++
		case '>', ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
