package layout

// FieldSpec describes one record field in declaration order. It is produced
// by a front-end and consumed once by Resolve.
type FieldSpec struct {
	// Name is used for diagnostics only.
	Name string

	// Kind is the scalar type of the field or of each array element.
	Kind ElementKind

	// ArrayLength is 1 for a scalar field and N for a [N]T field.
	ArrayLength int

	// Normalize requests the normalized variant of the inferred format.
	// Ignored when FormatOverride is set.
	Normalize bool

	// FormatOverride, when non-nil, replaces inference entirely. No arity
	// validation is done on it.
	FormatOverride *Format

	// SlotOverride, when non-nil, sets this field's shader location and
	// restarts automatic numbering after it.
	SlotOverride *uint32
}

// Scalar returns a FieldSpec for a single value of kind k.
func Scalar(name string, k ElementKind) FieldSpec {
	return FieldSpec{Name: name, Kind: k, ArrayLength: 1}
}

// Array returns a FieldSpec for a [n]k field.
func Array(name string, k ElementKind, n int) FieldSpec {
	return FieldSpec{Name: name, Kind: k, ArrayLength: n}
}

// Norm returns a copy of f with normalization requested.
func (f FieldSpec) Norm() FieldSpec {
	f.Normalize = true
	return f
}

// As returns a copy of f with an explicit format override.
func (f FieldSpec) As(format Format) FieldSpec {
	f.FormatOverride = &format
	return f
}

// At returns a copy of f with an explicit shader location.
func (f FieldSpec) At(location uint32) FieldSpec {
	f.SlotOverride = &location
	return f
}
