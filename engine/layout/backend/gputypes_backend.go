package backend

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-layout/engine/layout"
	"github.com/gogpu/gputypes"
)

// gputypesVertexFormatMap maps resolved formats to gogpu vertex formats, which
// follow the WebGPU format set.
var gputypesVertexFormatMap = map[layout.Format]gputypes.VertexFormat{
	layout.FormatUint8x2:   gputypes.VertexFormatUint8x2,
	layout.FormatUint8x4:   gputypes.VertexFormatUint8x4,
	layout.FormatSint8x2:   gputypes.VertexFormatSint8x2,
	layout.FormatSint8x4:   gputypes.VertexFormatSint8x4,
	layout.FormatUnorm8x2:  gputypes.VertexFormatUnorm8x2,
	layout.FormatUnorm8x4:  gputypes.VertexFormatUnorm8x4,
	layout.FormatSnorm8x2:  gputypes.VertexFormatSnorm8x2,
	layout.FormatSnorm8x4:  gputypes.VertexFormatSnorm8x4,
	layout.FormatUint16x2:  gputypes.VertexFormatUint16x2,
	layout.FormatUint16x4:  gputypes.VertexFormatUint16x4,
	layout.FormatSint16x2:  gputypes.VertexFormatSint16x2,
	layout.FormatSint16x4:  gputypes.VertexFormatSint16x4,
	layout.FormatUnorm16x2: gputypes.VertexFormatUnorm16x2,
	layout.FormatUnorm16x4: gputypes.VertexFormatUnorm16x4,
	layout.FormatSnorm16x2: gputypes.VertexFormatSnorm16x2,
	layout.FormatSnorm16x4: gputypes.VertexFormatSnorm16x4,
	layout.FormatUint32:    gputypes.VertexFormatUint32,
	layout.FormatUint32x2:  gputypes.VertexFormatUint32x2,
	layout.FormatUint32x3:  gputypes.VertexFormatUint32x3,
	layout.FormatUint32x4:  gputypes.VertexFormatUint32x4,
	layout.FormatSint32:    gputypes.VertexFormatSint32,
	layout.FormatSint32x2:  gputypes.VertexFormatSint32x2,
	layout.FormatSint32x3:  gputypes.VertexFormatSint32x3,
	layout.FormatSint32x4:  gputypes.VertexFormatSint32x4,
	layout.FormatFloat32:   gputypes.VertexFormatFloat32,
	layout.FormatFloat32x2: gputypes.VertexFormatFloat32x2,
	layout.FormatFloat32x3: gputypes.VertexFormatFloat32x3,
	layout.FormatFloat32x4: gputypes.VertexFormatFloat32x4,
}

// gputypesBackend is the implementation of Backend for github.com/gogpu/gputypes.
type gputypesBackend struct{}

var _ Backend[gputypes.VertexBufferLayout] = &gputypesBackend{}

// NewGPUTypesBackend creates a Backend producing gputypes.VertexBufferLayout
// values for the gogpu stack.
//
// Returns:
//   - Backend[gputypes.VertexBufferLayout]: the gogpu backend
func NewGPUTypesBackend() Backend[gputypes.VertexBufferLayout] {
	return &gputypesBackend{}
}

func (b *gputypesBackend) Name() string {
	return "gputypes"
}

func (b *gputypesBackend) Build(l layout.ResolvedLayout) (gputypes.VertexBufferLayout, error) {
	if err := supports(gputypesVertexFormatMap, l); err != nil {
		return gputypes.VertexBufferLayout{}, fmt.Errorf("%s: %w", b.Name(), err)
	}

	attrs := make([]gputypes.VertexAttribute, 0, len(l.Attributes))
	for _, a := range l.Attributes {
		attrs = append(attrs, gputypes.VertexAttribute{
			Format:         gputypesVertexFormatMap[a.Format],
			Offset:         a.Offset,
			ShaderLocation: a.ShaderLocation,
		})
	}

	stepMode := gputypes.VertexStepModeVertex
	if l.StepMode == layout.StepModeInstance {
		stepMode = gputypes.VertexStepModeInstance
	}

	return gputypes.VertexBufferLayout{
		ArrayStride: l.ArrayStride,
		StepMode:    stepMode,
		Attributes:  attrs,
	}, nil
}
