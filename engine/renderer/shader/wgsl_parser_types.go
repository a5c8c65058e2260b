package shader

import "github.com/Carmen-Shannon/oxy-layout/engine/layout"

// vertexTypeInfo holds the element kind and component count a WGSL vertex input type maps to
type vertexTypeInfo struct {
	kind   layout.ElementKind
	length int
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name        string
	typeName    string
	location    int
	isBuiltin   bool
	line        int
	annotations []*Annotation
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name        string
	line        int
	fields      []parsedField
	annotations []*Annotation
}

// Record is one vertex input struct described as a layout.FieldSpec list. It is the
// WGSL front-end's output and the resolver's input.
type Record struct {
	// Name is the WGSL struct name.
	Name string

	// StepMode comes from an //@oxy:step annotation above the struct, Vertex otherwise.
	StepMode layout.StepMode

	// Fields are in declaration order. @location(N) becomes the field's SlotOverride.
	Fields []layout.FieldSpec

	// Line is the 1-based source line of the struct keyword.
	Line int

	// FieldLines holds the 1-based source line of each field, parallel to Fields.
	FieldLines []int
}
