package backend

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-layout/engine/layout"
	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuVertexFormatMap maps resolved formats to WebGPU vertex formats. WebGPU has
// no 64-bit float formats and no single-component 8/16-bit formats.
var wgpuVertexFormatMap = map[layout.Format]wgpu.VertexFormat{
	layout.FormatUint8x2:   wgpu.VertexFormatUint8x2,
	layout.FormatUint8x4:   wgpu.VertexFormatUint8x4,
	layout.FormatSint8x2:   wgpu.VertexFormatSint8x2,
	layout.FormatSint8x4:   wgpu.VertexFormatSint8x4,
	layout.FormatUnorm8x2:  wgpu.VertexFormatUnorm8x2,
	layout.FormatUnorm8x4:  wgpu.VertexFormatUnorm8x4,
	layout.FormatSnorm8x2:  wgpu.VertexFormatSnorm8x2,
	layout.FormatSnorm8x4:  wgpu.VertexFormatSnorm8x4,
	layout.FormatUint16x2:  wgpu.VertexFormatUint16x2,
	layout.FormatUint16x4:  wgpu.VertexFormatUint16x4,
	layout.FormatSint16x2:  wgpu.VertexFormatSint16x2,
	layout.FormatSint16x4:  wgpu.VertexFormatSint16x4,
	layout.FormatUnorm16x2: wgpu.VertexFormatUnorm16x2,
	layout.FormatUnorm16x4: wgpu.VertexFormatUnorm16x4,
	layout.FormatSnorm16x2: wgpu.VertexFormatSnorm16x2,
	layout.FormatSnorm16x4: wgpu.VertexFormatSnorm16x4,
	layout.FormatUint32:    wgpu.VertexFormatUint32,
	layout.FormatUint32x2:  wgpu.VertexFormatUint32x2,
	layout.FormatUint32x3:  wgpu.VertexFormatUint32x3,
	layout.FormatUint32x4:  wgpu.VertexFormatUint32x4,
	layout.FormatSint32:    wgpu.VertexFormatSint32,
	layout.FormatSint32x2:  wgpu.VertexFormatSint32x2,
	layout.FormatSint32x3:  wgpu.VertexFormatSint32x3,
	layout.FormatSint32x4:  wgpu.VertexFormatSint32x4,
	layout.FormatFloat32:   wgpu.VertexFormatFloat32,
	layout.FormatFloat32x2: wgpu.VertexFormatFloat32x2,
	layout.FormatFloat32x3: wgpu.VertexFormatFloat32x3,
	layout.FormatFloat32x4: wgpu.VertexFormatFloat32x4,
}

// wgpuBackend is the implementation of Backend for github.com/cogentcore/webgpu.
type wgpuBackend struct{}

var _ Backend[wgpu.VertexBufferLayout] = &wgpuBackend{}

// NewWGPUBackend creates a Backend producing wgpu.VertexBufferLayout values,
// ready to be placed in a wgpu.VertexState's Buffers slice.
//
// Returns:
//   - Backend[wgpu.VertexBufferLayout]: the WebGPU backend
func NewWGPUBackend() Backend[wgpu.VertexBufferLayout] {
	return &wgpuBackend{}
}

func (b *wgpuBackend) Name() string {
	return "wgpu"
}

func (b *wgpuBackend) Build(l layout.ResolvedLayout) (wgpu.VertexBufferLayout, error) {
	if err := supports(wgpuVertexFormatMap, l); err != nil {
		return wgpu.VertexBufferLayout{}, fmt.Errorf("%s: %w", b.Name(), err)
	}

	attrs := make([]wgpu.VertexAttribute, 0, len(l.Attributes))
	for _, a := range l.Attributes {
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         wgpuVertexFormatMap[a.Format],
			Offset:         a.Offset,
			ShaderLocation: a.ShaderLocation,
		})
	}

	stepMode := wgpu.VertexStepModeVertex
	if l.StepMode == layout.StepModeInstance {
		stepMode = wgpu.VertexStepModeInstance
	}

	return wgpu.VertexBufferLayout{
		ArrayStride: l.ArrayStride,
		StepMode:    stepMode,
		Attributes:  attrs,
	}, nil
}
