package shader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-layout/engine/layout"
	"github.com/Carmen-Shannon/oxy-layout/engine/layout/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestNewShader(t *testing.T) {
	s, err := NewShader("mesh", meshShader)
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}
	if s.Key() != "mesh" || s.EntryPoint() != "vs_main" || s.Source() != meshShader {
		t.Errorf("key %q entry %q", s.Key(), s.EntryPoint())
	}
	if s.Module().Label != "mesh" || s.Module().WGSLDescriptor.Code != meshShader {
		t.Error("module descriptor does not carry the source")
	}
	if _, ok := s.Record("VertexOutput"); ok {
		t.Error("VertexOutput should not be a record")
	}
	inst, ok := s.Record("InstanceInput")
	if !ok || inst.StepMode != layout.StepModeInstance {
		t.Errorf("InstanceInput = %+v, %v", inst, ok)
	}

	layouts, err := s.VertexLayouts()
	if err != nil {
		t.Fatalf("VertexLayouts: %v", err)
	}
	if len(layouts) != 2 || layouts[0].ArrayStride != 28 || layouts[1].ArrayStride != 20 {
		t.Errorf("layouts = %+v", layouts)
	}
}

func TestNewShader_ParseError(t *testing.T) {
	_, err := NewShader("bad", "//@oxy:step sideways\nstruct V { @location(0) a: f32 }")
	if !errors.Is(err, layout.ErrInvalidStepMode) {
		t.Fatalf("err = %v, want invalid_step_mode", err)
	}
}

func TestNewShader_EmptyKeyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for empty key")
		}
	}()
	_, _ = NewShader("", meshShader)
}

func TestNewShaderFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.wgsl")
	if err := os.WriteFile(path, []byte(meshShader), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := NewShaderFromPath(path)
	if err != nil {
		t.Fatalf("NewShaderFromPath: %v", err)
	}
	if s.Key() != path || len(s.Records()) != 2 {
		t.Errorf("key %q, %d records", s.Key(), len(s.Records()))
	}

	if _, err := NewShaderFromPath(filepath.Join(t.TempDir(), "missing.wgsl")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestBuildVertexLayouts(t *testing.T) {
	s, err := NewShader("mesh", meshShader)
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}
	buffers, err := BuildVertexLayouts(s, backend.NewWGPUBackend())
	if err != nil {
		t.Fatalf("BuildVertexLayouts: %v", err)
	}
	if len(buffers) != 2 {
		t.Fatalf("got %d buffers, want 2", len(buffers))
	}
	if buffers[0].StepMode != wgpu.VertexStepModeVertex || buffers[1].StepMode != wgpu.VertexStepModeInstance {
		t.Errorf("step modes = %v, %v", buffers[0].StepMode, buffers[1].StepMode)
	}
	if buffers[0].Attributes[1].Format != wgpu.VertexFormatUnorm8x4 {
		t.Errorf("color format = %v, want Unorm8x4", buffers[0].Attributes[1].Format)
	}
}

func TestBuildVertexLayouts_UnsupportedFormat(t *testing.T) {
	s, err := NewShader("double", "struct V {\n  //@oxy:element f64\n  @location(0) p: vec3f,\n}")
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}
	if _, err := BuildVertexLayouts(s, backend.NewWGPUBackend()); !errors.Is(err, backend.ErrUnsupportedFormat) {
		t.Errorf("wgpu err = %v, want ErrUnsupportedFormat", err)
	}
	inputs, err := BuildVertexLayouts(s, backend.NewVulkanBackend(0))
	if err != nil {
		t.Fatalf("vulkan: %v", err)
	}
	if inputs[0].Binding.Stride != 24 {
		t.Errorf("vulkan stride = %d, want 24", inputs[0].Binding.Stride)
	}
}
