package pipeline

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-layout/engine/layout"
	"github.com/Carmen-Shannon/oxy-layout/engine/layout/backend"
	"github.com/Carmen-Shannon/oxy-layout/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

const spriteShader = `
struct SpriteVertex {
    @location(0) position: vec2f,
    //@oxy:element u16 norm
    @location(1) uv: vec2f,
}

struct VertexOutput {
    @builtin(position) clip: vec4f,
}

@vertex
fn vs_sprite(in: SpriteVertex, @location(2) tint: vec4f) -> VertexOutput {
    var out: VertexOutput;
    out.clip = vec4f(in.position, 0.0, 1.0) * tint;
    return out;
}
`

type tintInstance struct {
	Tint [4]uint8 `layout:"norm,slot=2"`
}

func (tintInstance) VertexStepMode() layout.StepMode {
	return layout.StepModeInstance
}

func mustShader(t *testing.T, source string) shader.Shader {
	t.Helper()
	s, err := shader.NewShader("sprite", source)
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}
	return s
}

func tintLayout(t *testing.T) layout.ResolvedLayout {
	t.Helper()
	l, err := layout.Of[tintInstance]()
	if err != nil {
		t.Fatalf("Of: %v", err)
	}
	return l
}

func TestPipeline_Descriptor(t *testing.T) {
	p := NewPipeline("sprite", mustShader(t, spriteShader),
		WithLayouts(tintLayout(t)),
		WithCullMode(wgpu.CullModeBack),
		WithDepthTestEnabled(false),
	)

	desc, err := p.Descriptor(nil, nil)
	if err != nil {
		t.Fatalf("Descriptor: %v", err)
	}
	if desc.Label != "sprite Render Pipeline" || desc.Vertex.EntryPoint != "vs_sprite" {
		t.Errorf("label %q entry %q", desc.Label, desc.Vertex.EntryPoint)
	}
	if len(desc.Vertex.Buffers) != 2 {
		t.Fatalf("got %d buffers, want 2", len(desc.Vertex.Buffers))
	}

	mesh := desc.Vertex.Buffers[0]
	if mesh.ArrayStride != 12 || mesh.StepMode != wgpu.VertexStepModeVertex {
		t.Errorf("mesh buffer = %+v", mesh)
	}
	if mesh.Attributes[1].Format != wgpu.VertexFormatUnorm16x2 || mesh.Attributes[1].Offset != 8 {
		t.Errorf("uv attribute = %+v", mesh.Attributes[1])
	}

	inst := desc.Vertex.Buffers[1]
	if inst.ArrayStride != 4 || inst.StepMode != wgpu.VertexStepModeInstance || inst.Attributes[0].ShaderLocation != 2 {
		t.Errorf("instance buffer = %+v", inst)
	}

	if desc.Primitive.CullMode != wgpu.CullModeBack || desc.Primitive.Topology != wgpu.PrimitiveTopologyTriangleList {
		t.Errorf("primitive = %+v", desc.Primitive)
	}
	if desc.DepthStencil.DepthCompare != wgpu.CompareFunctionAlways {
		t.Errorf("depth compare = %v, want always with depth test off", desc.DepthStencil.DepthCompare)
	}
	if desc.Fragment != nil {
		t.Error("fragment stage should be nil without WithFragment")
	}
}

func TestPipeline_InputCheck(t *testing.T) {
	s := mustShader(t, spriteShader)

	// Without the tint buffer, location 2 is unfed.
	_, err := NewPipeline("sprite", s).VertexState(nil)
	if !errors.Is(err, shader.ErrMissingInput) {
		t.Fatalf("err = %v, want ErrMissingInput", err)
	}

	if _, err := NewPipeline("sprite", s, WithInputCheck(false)).VertexState(nil); err != nil {
		t.Errorf("VertexState with check disabled: %v", err)
	}
}

func TestPipeline_EntryPoint(t *testing.T) {
	s := mustShader(t, spriteShader)
	if got := NewPipeline("a", s).EntryPoint(); got != "vs_sprite" {
		t.Errorf("EntryPoint = %q, want vs_sprite", got)
	}
	p := NewPipeline("b", s, WithEntryPoint("vs_other"), WithLayouts(tintLayout(t)))
	if got := p.EntryPoint(); got != "vs_other" {
		t.Errorf("EntryPoint = %q, want vs_other", got)
	}
	if _, err := p.VertexState(nil); !errors.Is(err, shader.ErrEntryPointNotFound) {
		t.Errorf("err = %v, want ErrEntryPointNotFound", err)
	}
}

func TestPipeline_BackendRejectsFormat(t *testing.T) {
	s := mustShader(t, `
struct P {
    //@oxy:element f64
    @location(0) position: vec3f,
}
@vertex
fn vs_main(in: P) -> @builtin(position) vec4f {
    return vec4f(in.position, 1.0);
}
`)
	_, err := NewPipeline("f64", s).Descriptor(nil, nil)
	if !errors.Is(err, backend.ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestPipeline_NoVertexBuffers(t *testing.T) {
	s := mustShader(t, "@vertex\nfn vs_main() -> @builtin(position) vec4f {\n    return vec4f();\n}\n")
	if _, err := NewPipeline("empty", s).Layouts(); !errors.Is(err, ErrNoVertexBuffers) {
		t.Errorf("err = %v, want ErrNoVertexBuffers", err)
	}
}

func TestNewPipeline_NilShaderPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil shader")
		}
	}()
	NewPipeline("nil", nil)
}
