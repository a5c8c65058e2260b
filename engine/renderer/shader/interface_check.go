package shader

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-layout/engine/layout"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/wgsl"
)

var (
	// ErrEntryPointNotFound is returned when the source has no matching @vertex function.
	ErrEntryPointNotFound = errors.New("vertex entry point not found")

	// ErrMissingInput is returned for a shader input no layout attribute feeds.
	ErrMissingInput = errors.New("shader input has no vertex attribute")

	// ErrInputMismatch is returned for a shader input whose attribute format cannot feed it.
	ErrInputMismatch = errors.New("vertex attribute format does not match shader input")

	// ErrDuplicateLocation is returned when two attributes across the layouts share a location.
	ErrDuplicateLocation = errors.New("shader location bound more than once")
)

// ShaderInput is one @location input of a vertex entry point.
type ShaderInput struct {
	// Name is the parameter or struct member name.
	Name string

	// Location is the @location index.
	Location uint32

	// Type is the WGSL type as written, e.g. "vec3<f32>".
	Type string

	// Class is the scalar class of the type's components.
	Class layout.ScalarClass

	// Components is the component count, 1 for scalars.
	Components int
}

// VertexInputs parses WGSL source with naga and returns the @location inputs of a vertex
// entry point, both direct parameters and members of struct-typed parameters, sorted by
// location. Builtin inputs are skipped.
//
// Parameters:
//   - source: the WGSL source code
//   - entryPoint: the @vertex function name, or empty for the first @vertex function
//
// Returns:
//   - []ShaderInput: the located inputs
//   - error: a naga parse error, ErrEntryPointNotFound, or an unsupported input type
func VertexInputs(source, entryPoint string) ([]ShaderInput, error) {
	module, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("shader: %w", err)
	}

	fn := findVertexFunction(module, entryPoint)
	if fn == nil {
		if entryPoint == "" {
			return nil, ErrEntryPointNotFound
		}
		return nil, fmt.Errorf("%w: %s", ErrEntryPointNotFound, entryPoint)
	}

	structs := make(map[string]*wgsl.StructDecl, len(module.Structs))
	for _, s := range module.Structs {
		structs[s.Name] = s
	}

	var inputs []ShaderInput
	for _, p := range fn.Params {
		if loc, ok := locationOf(p.Attributes); ok {
			in, err := newShaderInput(p.Name, loc, p.Type)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, in)
			continue
		}

		named, ok := p.Type.(*wgsl.NamedType)
		if !ok {
			continue
		}
		decl, ok := structs[named.Name]
		if !ok {
			continue
		}
		for _, m := range decl.Members {
			loc, ok := locationOf(m.Attributes)
			if !ok {
				continue
			}
			in, err := newShaderInput(m.Name, loc, m.Type)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, in)
		}
	}

	slices.SortFunc(inputs, func(a, b ShaderInput) int {
		return int(a.Location) - int(b.Location)
	})
	return inputs, nil
}

// CheckLayout verifies that the given layouts feed every @location input of a vertex entry
// point. Each input needs exactly one attribute at its location whose format has the
// input's scalar class (float, sint or uint) and at least as many components. Attributes
// the shader does not read are allowed.
//
// Parameters:
//   - source: the WGSL source code
//   - entryPoint: the @vertex function name, or empty for the first @vertex function
//   - layouts: the vertex buffer layouts bound to the pipeline
//
// Returns:
//   - error: nil, a VertexInputs error, or a join of ErrMissingInput, ErrInputMismatch
//     and ErrDuplicateLocation errors
func CheckLayout(source, entryPoint string, layouts ...layout.ResolvedLayout) error {
	inputs, err := VertexInputs(source, entryPoint)
	if err != nil {
		return err
	}

	var errs []error
	bound := make(map[uint32]layout.Format)
	for i, l := range layouts {
		for _, a := range l.Attributes {
			if _, dup := bound[a.ShaderLocation]; dup {
				errs = append(errs, fmt.Errorf("layout %d: location %d: %w", i, a.ShaderLocation, ErrDuplicateLocation))
				continue
			}
			bound[a.ShaderLocation] = a.Format
		}
	}

	for _, in := range inputs {
		format, ok := bound[in.Location]
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("%s (location %d, %s): %w", in.Name, in.Location, in.Type, ErrMissingInput))
		case format.ScalarClass() != in.Class:
			errs = append(errs, fmt.Errorf("%s (location %d, %s): %s is %s, shader reads %s: %w",
				in.Name, in.Location, in.Type, format, format.ScalarClass(), in.Class, ErrInputMismatch))
		case format.Components() < in.Components:
			errs = append(errs, fmt.Errorf("%s (location %d, %s): %s has %d components, shader reads %d: %w",
				in.Name, in.Location, in.Type, format, format.Components(), in.Components, ErrInputMismatch))
		}
	}

	return errors.Join(errs...)
}

// findVertexFunction returns the @vertex function with the given name, or the first
// @vertex function when name is empty.
func findVertexFunction(module *wgsl.Module, name string) *wgsl.FunctionDecl {
	for _, fn := range module.Functions {
		if !slices.ContainsFunc(fn.Attributes, func(a wgsl.Attribute) bool { return a.Name == "vertex" }) {
			continue
		}
		if name == "" || fn.Name == name {
			return fn
		}
	}
	return nil
}

// locationOf returns the index of a @location attribute.
func locationOf(attrs []wgsl.Attribute) (uint32, bool) {
	for _, a := range attrs {
		if a.Name != "location" || len(a.Args) != 1 {
			continue
		}
		lit, ok := a.Args[0].(*wgsl.Literal)
		if !ok {
			return 0, false
		}
		v, err := strconv.ParseUint(strings.TrimRight(lit.Value, "ui"), 0, 32)
		if err != nil {
			return 0, false
		}
		return uint32(v), true
	}
	return 0, false
}

// newShaderInput describes a located input from its naga type.
func newShaderInput(name string, location uint32, t wgsl.Type) (ShaderInput, error) {
	typeName := typeString(t)
	in := ShaderInput{Name: name, Location: location, Type: typeName}

	scalar, n := splitVectorType(typeName)
	switch scalar {
	case "f32", "f16":
		in.Class = layout.ScalarFloat
	case "i32":
		in.Class = layout.ScalarSint
	case "u32":
		in.Class = layout.ScalarUint
	default:
		return ShaderInput{}, fmt.Errorf("shader: input %s (location %d) has type %s, which is not a vertex input type", name, location, typeName)
	}
	in.Components = n
	return in, nil
}

// typeString renders a naga type in WGSL syntax without whitespace.
func typeString(t wgsl.Type) string {
	switch tt := t.(type) {
	case *wgsl.NamedType:
		if len(tt.TypeParams) == 0 {
			return tt.Name
		}
		params := make([]string, 0, len(tt.TypeParams))
		for _, p := range tt.TypeParams {
			params = append(params, typeString(p))
		}
		return tt.Name + "<" + strings.Join(params, ",") + ">"
	case *wgsl.ArrayType:
		return "array<" + typeString(tt.Element) + ">"
	default:
		return fmt.Sprintf("%T", t)
	}
}
