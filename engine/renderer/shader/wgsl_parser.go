package shader

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-layout/engine/layout"
)

// wgslVertexTypeMap maps WGSL vertex input type names to the element kind and component
// count a buffer must supply for them
var wgslVertexTypeMap = map[string]vertexTypeInfo{
	"f32":       {layout.ElementFloat32, 1},
	"vec2f":     {layout.ElementFloat32, 2},
	"vec2<f32>": {layout.ElementFloat32, 2},
	"vec3f":     {layout.ElementFloat32, 3},
	"vec3<f32>": {layout.ElementFloat32, 3},
	"vec4f":     {layout.ElementFloat32, 4},
	"vec4<f32>": {layout.ElementFloat32, 4},
	"i32":       {layout.ElementSint32, 1},
	"vec2i":     {layout.ElementSint32, 2},
	"vec2<i32>": {layout.ElementSint32, 2},
	"vec3i":     {layout.ElementSint32, 3},
	"vec3<i32>": {layout.ElementSint32, 3},
	"vec4i":     {layout.ElementSint32, 4},
	"vec4<i32>": {layout.ElementSint32, 4},
	"u32":       {layout.ElementUint32, 1},
	"vec2u":     {layout.ElementUint32, 2},
	"vec2<u32>": {layout.ElementUint32, 2},
	"vec3u":     {layout.ElementUint32, 3},
	"vec3<u32>": {layout.ElementUint32, 3},
	"vec4u":     {layout.ElementUint32, 4},
	"vec4<u32>": {layout.ElementUint32, 4},
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`\bstruct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\(\s*(\d+)\s*\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\s*\w+\s*\)`)

	// fieldRegex matches a struct field: optional attributes, name, colon, type.
	// The type capture (.+) is greedy to handle parameterized types like array<T, N>.
	fieldRegex = regexp.MustCompile(`^(?:@\w+(?:\([^)]*\))?\s*)*(\w+)\s*:\s*(.+)`)

	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)
)

// ParseRecords extracts every vertex input struct from WGSL source as a Record.
// A vertex input struct has at least one @location field and no @builtin fields, which
// separates it from vertex output structs that carry @builtin(position). @oxy: annotations
// refine the records as described in annotations.go.
//
// A malformed annotation fails the whole source. A struct whose fields cannot be described
// is left out and its error joined into the returned error; the other records are still
// returned. An annotation that attaches to no vertex input struct or field, e.g. one above
// a function or separated from its struct by a blank line, is joined in as a
// conflicting_override error.
//
// Parameters:
//   - source: the raw WGSL source code string
//
// Returns:
//   - []Record: the vertex input records in declaration order
//   - error: nil, a *layout.Error, or a join of per-struct errors
func ParseRecords(source string) ([]Record, error) {
	annotations, commentOnly, err := collectAnnotations(source)
	if err != nil {
		return nil, err
	}

	structs := parseStructBlocks(stripComments(source))
	records := make([]Record, 0, len(structs))
	attached := make(map[int]bool, len(annotations))
	var errs []error

	for _, ps := range structs {
		if !isVertexInputStruct(ps) {
			continue
		}
		ps.annotations = annotationsFor(ps.line, annotations, commentOnly)
		markAttached(attached, ps.annotations)
		for i := range ps.fields {
			ps.fields[i].annotations = annotationsFor(ps.fields[i].line, annotations, commentOnly)
			markAttached(attached, ps.fields[i].annotations)
		}

		rec, err := buildRecord(ps)
		if err != nil {
			errs = append(errs, fmt.Errorf("struct %s: %w", ps.name, err))
			continue
		}
		records = append(records, rec)
	}
	errs = append(errs, unattachedAnnotations(annotations, attached)...)

	return records, errors.Join(errs...)
}

func markAttached(attached map[int]bool, annotations []*Annotation) {
	for _, a := range annotations {
		attached[a.Line] = true
	}
}

// parseEntryPoint extracts the @vertex entry point function name from WGSL source.
// Returns an empty string if the source has no vertex entry point.
//
// Parameters:
//   - source: the raw WGSL source code string
//
// Returns:
//   - string: the entry point function name, or empty string if not found
func parseEntryPoint(source string) string {
	if match := vertexEntryRegex.FindStringSubmatch(stripComments(source)); match != nil {
		return match[1]
	}
	return ""
}

// parseStructBlocks finds all struct { ... } blocks in the cleaned WGSL source
// and parses their fields including @location and @builtin attributes
//
// Parameters:
//   - source: WGSL source with comments already stripped and line breaks preserved
//
// Returns:
//   - []parsedStruct: all struct blocks found in the source
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatchIndex(source, -1)
	structs := make([]parsedStruct, 0, len(matches))

	for _, m := range matches {
		structs = append(structs, parsedStruct{
			name:   source[m[2]:m[3]],
			line:   lineAt(source, m[0]),
			fields: parseStructFields(source[m[4]:m[5]], lineAt(source, m[4])),
		})
	}

	return structs
}

// parseStructFields parses the body of a struct block into individual fields,
// extracting @location and @builtin attributes along with the field name, type and line
//
// Parameters:
//   - body: the content between { and } of a struct declaration
//   - firstLine: the 1-based source line the body starts on
//
// Returns:
//   - []parsedField: all fields found in the struct body
func parseStructFields(body string, firstLine int) []parsedField {
	parts := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(parts))

	offset := 0
	for _, part := range parts {
		start := offset
		offset += len(part) + 1

		line := strings.TrimSpace(part)
		if line == "" {
			continue
		}

		field := parsedField{location: -1}
		lead := strings.Index(part, line)
		field.line = firstLine + strings.Count(body[:start+lead], "\n")

		if builtinRegex.MatchString(line) {
			field.isBuiltin = true
		}

		if locMatch := locationRegex.FindStringSubmatch(line); locMatch != nil {
			if loc, err := strconv.Atoi(locMatch[1]); err == nil {
				field.location = loc
			}
		}

		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}
		field.name = fm[1]
		field.typeName = strings.Join(strings.Fields(fm[2]), "")

		fields = append(fields, field)
	}

	return fields
}

// lineAt returns the 1-based line number of the byte at offset.
func lineAt(source string, offset int) int {
	return 1 + strings.Count(source[:offset], "\n")
}
