package shader

import (
	"errors"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-layout/engine/layout"
)

const meshShader = `// mesh.wgsl
struct VertexInput {
    @location(0) position: vec3<f32>,
    //@oxy:element u8 norm
    @location(1) color: vec4f,
    @location(4) uv: vec2f, /* trailing block */
    @location(5) material: u32,
}

/* a vertex output
   struct spanning lines */
struct VertexOutput {
    @builtin(position) clip: vec4f,
    @location(0) color: vec4f,
}

//@oxy:step instance
struct InstanceInput {
    @location(6) offset: vec3f,
    @location(7) weights: vec2<u32>, //@oxy:format Uint16x4
}

@vertex
fn vs_main(in: VertexInput, inst: InstanceInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip = vec4f(in.position + inst.offset, 1.0);
    out.color = in.color;
    return out;
}
`

func mustParse(t *testing.T, source string) []Record {
	t.Helper()
	records, err := ParseRecords(source)
	if err != nil {
		t.Fatalf("ParseRecords: %v", err)
	}
	return records
}

func TestParseRecords_MeshShader(t *testing.T) {
	records := mustParse(t, meshShader)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 (VertexOutput must be skipped)", len(records))
	}

	vi := records[0]
	if vi.Name != "VertexInput" || vi.StepMode != layout.StepModeVertex || vi.Line != 2 {
		t.Errorf("VertexInput = %s step %s line %d", vi.Name, vi.StepMode, vi.Line)
	}
	wantLines := []int{3, 5, 6, 7}
	for i, l := range wantLines {
		if vi.FieldLines[i] != l {
			t.Errorf("field %d line = %d, want %d", i, vi.FieldLines[i], l)
		}
	}

	color := vi.Fields[1]
	if color.Kind != layout.ElementUint8 || color.ArrayLength != 4 || !color.Normalize {
		t.Errorf("color = %+v, want normalized [4]u8", color)
	}
	if color.SlotOverride == nil || *color.SlotOverride != 1 {
		t.Errorf("color slot = %v, want 1", color.SlotOverride)
	}

	l, err := vi.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	wantFormats := []layout.Format{layout.FormatFloat32x3, layout.FormatUnorm8x4, layout.FormatFloat32x2, layout.FormatUint32}
	wantOffsets := []uint64{0, 12, 16, 24}
	wantLocations := []uint32{0, 1, 4, 5}
	for i, a := range l.Attributes {
		if a.Format != wantFormats[i] || a.Offset != wantOffsets[i] || a.ShaderLocation != wantLocations[i] {
			t.Errorf("attribute %d = %+v", i, a)
		}
	}
	if l.ArrayStride != 28 {
		t.Errorf("ArrayStride = %d, want 28", l.ArrayStride)
	}

	inst := records[1]
	if inst.StepMode != layout.StepModeInstance {
		t.Errorf("InstanceInput step = %s, want Instance", inst.StepMode)
	}
	weights := inst.Fields[1]
	if weights.FormatOverride == nil || *weights.FormatOverride != layout.FormatUint16x4 {
		t.Errorf("weights override = %v, want Uint16x4", weights.FormatOverride)
	}
}

func TestParseRecords_AutoSlots(t *testing.T) {
	records := mustParse(t, `
struct Packed {
    @location(3) a: f32,
    b: vec2<i32>,
    c: u32,
}`)
	l, err := records[0].Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []uint32{3, 4, 5}
	for i, a := range l.Attributes {
		if a.ShaderLocation != want[i] {
			t.Errorf("attribute %d location = %d, want %d", i, a.ShaderLocation, want[i])
		}
	}
}

func TestParseRecords_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		kind   error
		line   int
	}{
		{
			name:   "unknown step mode",
			source: "//@oxy:step strip\nstruct V { @location(0) a: f32 }",
			kind:   layout.ErrInvalidStepMode,
			line:   1,
		},
		{
			name:   "unknown annotation",
			source: "struct V {\n  //@oxy:packed\n  @location(0) a: f32,\n}",
			kind:   layout.ErrConflictingOverride,
			line:   2,
		},
		{
			name:   "unknown format",
			source: "struct V {\n  @location(0) a: f32, //@oxy:format Float16x2\n}",
			kind:   layout.ErrConflictingOverride,
			line:   2,
		},
		{
			name:   "repeated element",
			source: "struct V {\n  //@oxy:element u8\n  //@oxy:element u16\n  @location(0) a: vec2f,\n}",
			kind:   layout.ErrConflictingOverride,
			line:   2,
		},
		{
			name:   "norm with format",
			source: "struct V {\n  //@oxy:format Unorm8x4\n  //@oxy:element u8 norm\n  @location(0) a: vec4f,\n}",
			kind:   layout.ErrConflictingOverride,
			line:   3,
		},
		{
			name:   "format on struct",
			source: "//@oxy:format Float32\nstruct V {\n  @location(0) a: f32,\n}",
			kind:   layout.ErrConflictingOverride,
			line:   1,
		},
		{
			name:   "step on field",
			source: "struct V {\n  //@oxy:step instance\n  @location(0) a: f32,\n}",
			kind:   layout.ErrConflictingOverride,
			line:   2,
		},
		{
			name:   "repeated step",
			source: "//@oxy:step instance\n//@oxy:step vertex\nstruct V { @location(0) a: f32 }",
			kind:   layout.ErrConflictingOverride,
			line:   1,
		},
		{
			name:   "half precision",
			source: "struct V {\n  @location(0) a: f32,\n  @location(1) b: vec2h,\n}",
			kind:   layout.ErrUnsupportedElementKind,
			line:   3,
		},
		{
			name:   "matrix",
			source: "struct V {\n  @location(0) m: mat4x4<f32>,\n}",
			kind:   layout.ErrUnsupportedFieldShape,
			line:   2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecords(tt.source)
			if !errors.Is(err, tt.kind) {
				t.Fatalf("err = %v, want %v", err, tt.kind)
			}
			var lerr *layout.Error
			if !errors.As(err, &lerr) {
				t.Fatalf("err = %T, want *layout.Error", err)
			}
			if lerr.Line != tt.line {
				t.Errorf("Line = %d, want %d (%v)", lerr.Line, tt.line, err)
			}
		})
	}
}

func TestParseRecords_ElementRescuesHalf(t *testing.T) {
	records := mustParse(t, `
struct V {
    //@oxy:element u16 norm
    @location(0) n: vec4h,
}`)
	l, err := records[0].Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if l.Attributes[0].Format != layout.FormatUnorm16x4 {
		t.Errorf("format = %s, want Unorm16x4", l.Attributes[0].Format)
	}
}

func TestParseRecords_BadStructKeepsOthers(t *testing.T) {
	records, err := ParseRecords(`
struct Good { @location(0) a: f32 }
struct Bad { @location(1) m: mat2x2<f32> }
`)
	if !errors.Is(err, layout.ErrUnsupportedFieldShape) {
		t.Fatalf("err = %v, want unsupported_field_shape", err)
	}
	if !strings.Contains(err.Error(), "struct Bad") {
		t.Errorf("error %q does not name the struct", err)
	}
	if len(records) != 1 || records[0].Name != "Good" {
		t.Errorf("records = %+v, want only Good", records)
	}
}

func TestParseRecords_IgnoresAnnotationsInBlockComments(t *testing.T) {
	records := mustParse(t, `/* disabled:
//@oxy:format Float64 */
struct V {
    /*
    //@oxy:element u8 norm
    */
    @location(0) a: vec4f,
}`)
	if f := records[0].Fields[0]; f.Kind != layout.ElementFloat32 || f.FormatOverride != nil {
		t.Errorf("field = %+v, want plain vec4f", f)
	}
}

func TestParseRecords_UnattachedAnnotations(t *testing.T) {
	tests := []struct {
		name   string
		source string
		line   int
	}{
		{
			name:   "blank line before struct",
			source: "//@oxy:step instance\n\nstruct V {\n  @location(0) a: f32,\n}",
			line:   1,
		},
		{
			name:   "above vertex output struct",
			source: "struct V { @location(0) a: f32 }\n//@oxy:step instance\nstruct Out {\n  @builtin(position) p: vec4f,\n}",
			line:   2,
		},
		{
			name:   "above function",
			source: "struct V { @location(0) a: f32 }\n//@oxy:format Float32\nfn helper() {}",
			line:   2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := ParseRecords(tt.source)
			if !errors.Is(err, layout.ErrConflictingOverride) {
				t.Fatalf("err = %v, want conflicting_override", err)
			}
			var lerr *layout.Error
			if !errors.As(err, &lerr) || lerr.Line != tt.line {
				t.Errorf("error = %+v, want line %d", lerr, tt.line)
			}
			if len(records) != 1 || records[0].Name != "V" {
				t.Errorf("records = %+v, want V", records)
			}
		})
	}
}

func TestRecord_ResolveAddsLine(t *testing.T) {
	records := mustParse(t, "struct V {\n  @location(0) a: f32,\n  //@oxy:element u8\n  @location(1) b: vec3f,\n}")
	_, err := records[0].Resolve()
	if !errors.Is(err, layout.ErrInvalidArity) {
		t.Fatalf("err = %v, want invalid_arity", err)
	}
	var lerr *layout.Error
	if !errors.As(err, &lerr) || lerr.Line != 4 || lerr.Field != 1 {
		t.Errorf("error = %+v, want field 1 on line 4", lerr)
	}
}

func TestSplitVectorType(t *testing.T) {
	tests := []struct {
		in     string
		scalar string
		n      int
	}{
		{"f32", "f32", 1},
		{"vec3<f32>", "f32", 3},
		{"vec2i", "i32", 2},
		{"vec4u", "u32", 4},
		{"vec4h", "f16", 4},
		{"vec3<bool>", "bool", 3},
		{"vec5f", "", 0},
		{"mat2x2<f32>", "", 0},
		{"array<f32,4>", "", 0},
	}
	for _, tt := range tests {
		scalar, n := splitVectorType(tt.in)
		if scalar != tt.scalar || n != tt.n {
			t.Errorf("splitVectorType(%q) = (%q, %d), want (%q, %d)", tt.in, scalar, n, tt.scalar, tt.n)
		}
	}
}

func TestStripComments_KeepsLines(t *testing.T) {
	src := "a /* one\ntwo /* nested */\nthree */ b\nc // tail\nd"
	got := stripComments(src)
	if strings.Count(got, "\n") != strings.Count(src, "\n") {
		t.Errorf("line count changed: %q", got)
	}
	if strings.Contains(got, "one") || strings.Contains(got, "tail") {
		t.Errorf("comments survived: %q", got)
	}
	if !strings.Contains(got, " b") || !strings.HasSuffix(got, "d") {
		t.Errorf("code lost: %q", got)
	}
}

func TestSplitAtTopLevelCommas(t *testing.T) {
	got := splitAtTopLevelCommas("@location(0) @interpolate(flat, either) a: u32, b: array<f32, 4>, c: f32")
	if len(got) != 3 {
		t.Fatalf("got %d parts: %q", len(got), got)
	}
}
