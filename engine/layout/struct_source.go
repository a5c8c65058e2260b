package layout

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-layout/common"
	"go.uber.org/zap"
)

// TagKey is the struct tag key read by FieldsOf.
//
// A tag is a comma-separated list of items:
//   - norm: request the normalized variant of the inferred format
//   - slot=N: set the field's shader location to N
//   - a format name such as Float64 or unorm8x4: override the inferred format
//
// The tag "-" drops the field from the layout.
const TagKey = "layout"

// StructOption configures how FieldsOf and Of read a Go struct.
type StructOption func(*structConfig)

type structConfig struct {
	stepMode      *StepMode
	strictPacking bool
}

// WithStepMode forces the record's step mode, overriding a StepModer implementation.
//
// Parameters:
//   - m: the step mode to use
//
// Returns:
//   - StructOption: a function that sets the step mode
func WithStepMode(m StepMode) StructOption {
	return func(c *structConfig) {
		c.stepMode = common.Ptr(m)
	}
}

// WithStrictPacking makes Of fail when the Go struct's size differs from the
// resolved stride. Without it the mismatch is only logged.
//
// Returns:
//   - StructOption: a function that enables the packing check
func WithStrictPacking() StructOption {
	return func(c *structConfig) {
		c.strictPacking = true
	}
}

var stepModerType = reflect.TypeFor[StepModer]()

// goElementKinds maps the reflect kinds that have a vertex element kind.
var goElementKinds = map[reflect.Kind]ElementKind{
	reflect.Uint8:   ElementUint8,
	reflect.Int8:    ElementSint8,
	reflect.Uint16:  ElementUint16,
	reflect.Int16:   ElementSint16,
	reflect.Uint32:  ElementUint32,
	reflect.Int32:   ElementSint32,
	reflect.Float32: ElementFloat32,
	reflect.Float64: ElementFloat64,
}

// Of resolves the layout of the struct type T.
//
// Parameters:
//   - opts: functional options applied while reading T
//
// Returns:
//   - ResolvedLayout: the resolved layout of T
//   - error: a *Error if T cannot be described or resolved
func Of[T any](opts ...StructOption) (ResolvedLayout, error) {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	cfg := newStructConfig(opts)

	step, fields, err := fieldsOf(t, cfg)
	if err != nil {
		return ResolvedLayout{}, err
	}
	l, err := Resolve(step, fields)
	if err != nil {
		return ResolvedLayout{}, err
	}

	if err := l.VerifyStride(uint64(t.Size())); err != nil {
		if cfg.strictPacking {
			return ResolvedLayout{}, err
		}
		Logger().Warn("struct size differs from resolved stride",
			zap.Stringer("type", t),
			zap.Uintptr("size", t.Size()),
			zap.Uint64("stride", l.ArrayStride),
		)
	}
	return l, nil
}

// FieldsOf reads a struct type into a step mode and an ordered field list,
// ready for Resolve. t may be a struct or a pointer to a struct.
//
// Parameters:
//   - t: the struct type to read
//   - opts: functional options applied while reading t
//
// Returns:
//   - StepMode: the record's step mode
//   - []FieldSpec: one entry per laid-out field, in declaration order
//   - error: a *Error for unsupported shapes or malformed tags
func FieldsOf(t reflect.Type, opts ...StructOption) (StepMode, []FieldSpec, error) {
	return fieldsOf(t, newStructConfig(opts))
}

func newStructConfig(opts []StructOption) *structConfig {
	cfg := &structConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func fieldsOf(t reflect.Type, cfg *structConfig) (StepMode, []FieldSpec, error) {
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return StepModeVertex, nil, newError(KindUnsupportedFieldShape).
			value(t).
			detail("only structs can describe a vertex layout, got %v", t).
			build()
	}

	step := StepModeVertex
	if reflect.PointerTo(t).Implements(stepModerType) {
		step = reflect.New(t).Interface().(StepModer).VertexStepMode()
	}
	if cfg.stepMode != nil {
		step = *cfg.stepMode
	}

	fields := make([]FieldSpec, 0, t.NumField())
	for i := range t.NumField() {
		sf := t.Field(i)
		tag, hasTag := sf.Tag.Lookup(TagKey)
		if hasTag && strings.TrimSpace(tag) == "-" {
			continue
		}

		index := len(fields)
		spec := FieldSpec{Name: sf.Name}
		if err := parseFieldTag(index, sf.Name, tag, &spec); err != nil {
			return step, nil, err
		}
		if spec.FormatOverride == nil {
			if err := describeFieldType(index, sf.Name, sf.Type, &spec); err != nil {
				return step, nil, err
			}
		}
		fields = append(fields, spec)
	}
	return step, fields, nil
}

// parseFieldTag applies the items of a layout tag to spec.
func parseFieldTag(index int, name, tag string, spec *FieldSpec) error {
	if strings.TrimSpace(tag) == "" {
		return nil
	}
	conflict := func(format string, args ...any) error {
		return newError(KindConflictingOverride).field(index, name).value(tag).detail(format, args...).build()
	}

	for item := range strings.SplitSeq(tag, ",") {
		item = strings.TrimSpace(item)
		switch {
		case item == "":
			return conflict("empty item in layout tag %q", tag)
		case item == "norm":
			if spec.Normalize {
				return conflict("norm given twice")
			}
			spec.Normalize = true
		case strings.HasPrefix(item, "slot="):
			if spec.SlotOverride != nil {
				return conflict("slot given twice")
			}
			n, err := strconv.ParseUint(strings.TrimPrefix(item, "slot="), 10, 32)
			if err != nil {
				return newError(KindConflictingOverride).field(index, name).value(item).cause(err).
					detail("invalid slot %q", item).build()
			}
			spec.SlotOverride = common.Ptr(uint32(n))
		default:
			format, ok := ParseFormat(item)
			if !ok {
				return conflict("%q is not a recognized format", item)
			}
			if spec.FormatOverride != nil {
				return conflict("format given twice (%s and %s)", *spec.FormatOverride, format)
			}
			spec.FormatOverride = common.Ptr(format)
		}
	}

	if spec.Normalize && spec.FormatOverride != nil {
		return conflict("norm cannot be combined with the format override %s", *spec.FormatOverride)
	}
	return nil
}

// describeFieldType reduces a Go field type to an element kind and array length.
func describeFieldType(index int, name string, t reflect.Type, spec *FieldSpec) error {
	spec.ArrayLength = 1
	elem := t
	if t.Kind() == reflect.Array {
		spec.ArrayLength = t.Len()
		elem = t.Elem()
	}

	if k, ok := goElementKinds[elem.Kind()]; ok {
		spec.Kind = k
		return nil
	}

	switch elem.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint64, reflect.Uintptr,
		reflect.Complex64, reflect.Complex128:
		return newError(KindUnsupportedElementKind).field(index, name).value(elem).
			detail("Type '%s' is not allowed", elem).build()
	}
	return newError(KindUnsupportedFieldShape).field(index, name).value(t).
		detail("Type '%s' is not allowed in a vertex layout", t).build()
}
