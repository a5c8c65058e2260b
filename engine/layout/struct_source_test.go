package layout

import (
	"errors"
	"reflect"
	"testing"
)

type workedVertex struct {
	A [2]uint8   `layout:"norm"`
	B [2]float32 `layout:"Float64"`
	C [2]uint16
	D float64
}

type packedVertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32 `layout:"slot=5"`
	Color    [4]uint8   `layout:"norm"`
}

type particleInstance struct {
	Offset [3]float32
	Scale  float32
}

func (particleInstance) VertexStepMode() StepMode { return StepModeInstance }

type skippedField struct {
	Position [4]float32
	debugID  uint64 `layout:"-"`
}

type namedFloat float32

type namedElem struct {
	V [2]namedFloat
}

func TestOf_WorkedExample(t *testing.T) {
	l, err := Of[workedVertex]()
	if err != nil {
		t.Fatal(err)
	}
	want := []ResolvedAttribute{
		{Format: FormatUnorm8x2, Offset: 0, ShaderLocation: 0},
		{Format: FormatFloat64, Offset: 2, ShaderLocation: 1},
		{Format: FormatUint16x2, Offset: 10, ShaderLocation: 2},
		{Format: FormatFloat64, Offset: 14, ShaderLocation: 3},
	}
	if !equalSlices(l.Attributes, want) || l.ArrayStride != 22 || l.StepMode != StepModeVertex {
		t.Errorf("got %+v", l)
	}
}

func TestOf_StrictPacking(t *testing.T) {
	// workedVertex has Go padding before B and D, so its size is not 22.
	if _, err := Of[workedVertex](WithStrictPacking()); !errors.Is(err, ErrUnsupportedFieldShape) {
		t.Errorf("strict packing on padded struct: err = %v", err)
	}

	l, err := Of[packedVertex](WithStrictPacking())
	if err != nil {
		t.Fatal(err)
	}
	if l.ArrayStride != uint64(reflect.TypeFor[packedVertex]().Size()) {
		t.Errorf("stride %d does not match struct size", l.ArrayStride)
	}
	if got := locations(l); !equalSlices(got, []uint32{0, 1, 5, 6}) {
		t.Errorf("locations = %v", got)
	}
	if l.Attributes[3].Format != FormatUnorm8x4 {
		t.Errorf("color format = %s", l.Attributes[3].Format)
	}
}

func TestOf_PointerMeasuresStruct(t *testing.T) {
	l, err := Of[*packedVertex](WithStrictPacking())
	if err != nil {
		t.Fatalf("Of[*packedVertex]: %v", err)
	}
	if l.ArrayStride != uint64(reflect.TypeFor[packedVertex]().Size()) {
		t.Errorf("stride %d does not match struct size", l.ArrayStride)
	}
}

func TestFieldsOf_StepMode(t *testing.T) {
	step, fields, err := FieldsOf(reflect.TypeFor[particleInstance]())
	if err != nil {
		t.Fatal(err)
	}
	if step != StepModeInstance {
		t.Errorf("step = %s, want Instance", step)
	}
	if len(fields) != 2 || fields[0].ArrayLength != 3 || fields[1].Kind != ElementFloat32 {
		t.Errorf("fields = %+v", fields)
	}

	step, _, err = FieldsOf(reflect.TypeFor[*particleInstance](), WithStepMode(StepModeVertex))
	if err != nil {
		t.Fatal(err)
	}
	if step != StepModeVertex {
		t.Errorf("WithStepMode did not override: %s", step)
	}
}

func TestFieldsOf_SkipAndNamedTypes(t *testing.T) {
	_, fields, err := FieldsOf(reflect.TypeFor[skippedField]())
	if err != nil {
		t.Fatal(err)
	}
	if len(fields) != 1 || fields[0].Name != "Position" {
		t.Errorf("fields = %+v", fields)
	}

	_, fields, err = FieldsOf(reflect.TypeFor[namedElem]())
	if err != nil {
		t.Fatal(err)
	}
	if fields[0].Kind != ElementFloat32 || fields[0].ArrayLength != 2 {
		t.Errorf("named element = %+v", fields[0])
	}
}

func TestFieldsOf_Errors(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		kind *Error
	}{
		{"not a struct", reflect.TypeFor[[]float32](), ErrUnsupportedFieldShape},
		{"slice field", reflect.TypeFor[struct{ A []float32 }](), ErrUnsupportedFieldShape},
		{"nested struct", reflect.TypeFor[struct{ A struct{ X float32 } }](), ErrUnsupportedFieldShape},
		{"pointer field", reflect.TypeFor[struct{ A *float32 }](), ErrUnsupportedFieldShape},
		{"nested array", reflect.TypeFor[struct{ A [2][2]float32 }](), ErrUnsupportedFieldShape},
		{"int64", reflect.TypeFor[struct{ A int64 }](), ErrUnsupportedElementKind},
		{"bool array", reflect.TypeFor[struct{ A [4]bool }](), ErrUnsupportedElementKind},
		{"two formats", reflect.TypeFor[struct {
			A float32 `layout:"Float32,Uint32"`
		}](), ErrConflictingOverride},
		{"unknown format", reflect.TypeFor[struct {
			A float32 `layout:"Float128"`
		}](), ErrConflictingOverride},
		{"norm with format", reflect.TypeFor[struct {
			A [2]uint8 `layout:"norm,Unorm8x2"`
		}](), ErrConflictingOverride},
		{"bad slot", reflect.TypeFor[struct {
			A float32 `layout:"slot=-1"`
		}](), ErrConflictingOverride},
		{"two slots", reflect.TypeFor[struct {
			A float32 `layout:"slot=1,slot=2"`
		}](), ErrConflictingOverride},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := FieldsOf(tt.typ)
			if !errors.Is(err, tt.kind) {
				t.Errorf("err = %v, want kind %s", err, tt.kind.Kind)
			}
		})
	}
}

func TestOf_OverrideSkipsShape(t *testing.T) {
	type handle struct {
		ID   struct{ Lo, Hi uint32 } `layout:"Uint32x2"`
		Rest [2]float32
	}
	l, err := Of[handle](WithStrictPacking())
	if err != nil {
		t.Fatal(err)
	}
	if l.Attributes[0].Format != FormatUint32x2 || l.Attributes[1].Offset != 8 {
		t.Errorf("got %+v", l)
	}
}

func TestOf_ResolverErrorsSurface(t *testing.T) {
	type bad struct {
		A float32
		B [3]int16 `layout:"norm"`
	}
	_, err := Of[bad]()
	var lerr *Error
	if !errors.As(err, &lerr) {
		t.Fatalf("err = %v", err)
	}
	if lerr.Kind != KindInvalidArity || lerr.Field != 1 || lerr.Name != "B" {
		t.Errorf("got %+v", lerr)
	}
}
