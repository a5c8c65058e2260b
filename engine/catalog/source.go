package catalog

import "github.com/Carmen-Shannon/oxy-layout/engine/layout"

// Source produces one resolved layout. shader.Record implements it, and Fields and
// SourceFunc adapt plain field lists and struct types.
type Source interface {
	Resolve() (layout.ResolvedLayout, error)
}

// Fields is a Source over an explicit field list.
type Fields struct {
	StepMode layout.StepMode
	Specs    []layout.FieldSpec
}

func (f Fields) Resolve() (layout.ResolvedLayout, error) {
	return layout.Resolve(f.StepMode, f.Specs)
}

// SourceFunc adapts a function to Source, e.g. layout.Of[Vertex] wrapped in a closure.
type SourceFunc func() (layout.ResolvedLayout, error)

func (f SourceFunc) Resolve() (layout.ResolvedLayout, error) {
	return f()
}

// Struct returns a Source resolving the Go struct type T through its layout tags.
//
// Parameters:
//   - opts: options passed to layout.Of
//
// Returns:
//   - Source: a source that resolves T on every call
func Struct[T any](opts ...layout.StructOption) Source {
	return SourceFunc(func() (layout.ResolvedLayout, error) {
		return layout.Of[T](opts...)
	})
}
