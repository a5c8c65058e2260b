package layout

import (
	"math"

	"go.uber.org/zap"
)

// slotCounter hands out shader locations. An explicit location is used as-is
// and automatic numbering resumes right after it. Once location MaxUint32 is
// taken no automatic location is left.
type slotCounter struct {
	next      uint32
	exhausted bool
}

func (c *slotCounter) assign(override *uint32) (uint32, bool) {
	slot := c.next
	if override != nil {
		slot = *override
	} else if c.exhausted {
		return 0, false
	}
	c.next = slot + 1
	c.exhausted = slot == math.MaxUint32
	return slot, true
}

// Resolve compiles an ordered field list into a packed vertex buffer layout.
//
// Fields are processed in declaration order. Each field gets its format (the
// override if present, otherwise inferred from kind, array length and the
// normalize flag), the running byte offset, and the next shader location.
// The stride is the sum of all attribute sizes. The first invalid field aborts
// resolution; no partial layout is returned.
//
// Resolve has no shared state and is safe to call from multiple goroutines.
//
// Parameters:
//   - step: the record's step mode
//   - fields: the record's fields in declaration order
//
// Returns:
//   - ResolvedLayout: the resolved layout
//   - error: a *Error describing the first invalid field or the step mode
func Resolve(step StepMode, fields []FieldSpec) (ResolvedLayout, error) {
	if !step.Valid() {
		return ResolvedLayout{}, newError(KindInvalidStepMode).
			value(step).
			detail("unknown step mode %s", step).
			build()
	}

	attrs := make([]ResolvedAttribute, 0, len(fields))
	var (
		offset uint64
		slots  slotCounter
	)
	for i, f := range fields {
		format, err := resolveFormat(i, f)
		if err != nil {
			return ResolvedLayout{}, err
		}
		slot, ok := slots.assign(f.SlotOverride)
		if !ok {
			return ResolvedLayout{}, newError(KindConflictingOverride).
				field(i, f.Name).
				value(uint64(math.MaxUint32) + 1).
				detail("no shader location left after %d", uint32(math.MaxUint32)).
				build()
		}
		attrs = append(attrs, ResolvedAttribute{
			Format:         format,
			Offset:         offset,
			ShaderLocation: slot,
		})
		offset += format.Size()
	}

	Logger().Debug("resolved vertex layout",
		zap.Stringer("step_mode", step),
		zap.Uint64("stride", offset),
		zap.Int("attributes", len(attrs)),
	)

	return ResolvedLayout{
		StepMode:    step,
		ArrayStride: offset,
		Attributes:  attrs,
	}, nil
}

// resolveFormat determines the wire format of field i.
func resolveFormat(i int, f FieldSpec) (Format, error) {
	if f.FormatOverride != nil {
		if !f.FormatOverride.Valid() {
			return FormatInvalid, newError(KindConflictingOverride).
				field(i, f.Name).
				value(*f.FormatOverride).
				detail("override %s is not a recognized format", *f.FormatOverride).
				build()
		}
		return *f.FormatOverride, nil
	}
	return InferFormat(i, f)
}

// InferFormat derives the canonical format for a field from its element kind,
// array length and normalize flag, ignoring any override. The index is only
// used to label errors.
//
// Parameters:
//   - i: the field's declaration index
//   - f: the field to infer a format for
//
// Returns:
//   - Format: the inferred format
//   - error: unsupported_element_kind, invalid_normalization or invalid_arity
func InferFormat(i int, f FieldSpec) (Format, error) {
	if !f.Kind.Valid() {
		return FormatInvalid, newError(KindUnsupportedElementKind).
			field(i, f.Name).
			value(f.Kind).
			detail("Type '%s' is not allowed", f.Kind).
			build()
	}
	if f.Normalize && !f.Kind.Normalizable() {
		return FormatInvalid, newError(KindInvalidNormalization).
			field(i, f.Name).
			value(f.Kind).
			detail("Type '%s' cannot be normalized", f.Kind).
			build()
	}

	fam := f.Kind.family(f.Normalize)
	if !fam.AllowsArity(f.ArrayLength) {
		return FormatInvalid, newError(KindInvalidArity).
			field(i, f.Name).
			value(f.ArrayLength).
			detail("Type '%s' cannot be used %d times", f.Kind, f.ArrayLength).
			build()
	}

	format, _ := fam.Vector(f.ArrayLength)
	return format, nil
}
