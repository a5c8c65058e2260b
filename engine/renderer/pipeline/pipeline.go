// Package pipeline assembles WebGPU render pipeline descriptors from a parsed vertex shader
// and the vertex buffer layouts resolved for it.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-layout/common"
	"github.com/Carmen-Shannon/oxy-layout/engine/layout"
	"github.com/Carmen-Shannon/oxy-layout/engine/layout/backend"
	"github.com/Carmen-Shannon/oxy-layout/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNoVertexBuffers is returned when a pipeline has neither shader records nor extra layouts.
var ErrNoVertexBuffers = errors.New("pipeline has no vertex buffers")

// pipeline is the implementation of the Pipeline interface.
// It holds the vertex shader, the buffer layouts that feed it and the fixed-function state
// used when the descriptor is built.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used as the descriptor label
	pipelineKey string

	vertexShader shader.Shader
	entryPoint   string

	// extraLayouts are appended after the shader's own records, in buffer slot order
	extraLayouts []layout.ResolvedLayout
	checkInputs  bool

	// The following properties configure the fixed-function state and can be set with the builder options.

	depthTestEnabled    bool
	depthWriteEnabled   bool
	depthBias           int32
	depthBiasSlopeScale float32
	depthFormat         wgpu.TextureFormat
	cullMode            wgpu.CullMode
	topology            wgpu.PrimitiveTopology
	frontFace           wgpu.FrontFace
	sampleCount         uint32
	fragment            *wgpu.FragmentState
}

// Pipeline defines the interface for a render pipeline description. It binds a vertex shader
// to the vertex buffer layouts resolved from its records (plus any extra layouts) and turns
// them into a wgpu.RenderPipelineDescriptor.
type Pipeline interface {
	// PipelineKey returns the unique identifier for this pipeline.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// Shader returns the vertex shader of this pipeline.
	//
	// Returns:
	//   - shader.Shader: the vertex shader
	Shader() shader.Shader

	// EntryPoint returns the vertex entry point, the shader's first @vertex function
	// unless overridden with WithEntryPoint.
	//
	// Returns:
	//   - string: the entry point name
	EntryPoint() string

	// Layouts resolves the vertex buffer layouts in slot order: one per shader record,
	// followed by the extra layouts.
	//
	// Returns:
	//   - []layout.ResolvedLayout: the layouts
	//   - error: the first record resolution error, or ErrNoVertexBuffers
	Layouts() ([]layout.ResolvedLayout, error)

	// VertexState builds the vertex stage of the pipeline. When input checking is enabled the
	// layouts are verified against the entry point's @location inputs first.
	//
	// Parameters:
	//   - module: the compiled shader module, created by the caller from Shader().Module()
	//
	// Returns:
	//   - wgpu.VertexState: the vertex stage
	//   - error: a Layouts, interface check or backend error
	VertexState(module *wgpu.ShaderModule) (wgpu.VertexState, error)

	// Descriptor builds the full render pipeline descriptor.
	//
	// Parameters:
	//   - module: the compiled shader module, created by the caller from Shader().Module()
	//   - pipelineLayout: the pipeline layout, or nil for an auto layout
	//
	// Returns:
	//   - *wgpu.RenderPipelineDescriptor: the descriptor, ready for Device.CreateRenderPipeline
	//   - error: a VertexState error
	Descriptor(module *wgpu.ShaderModule, pipelineLayout *wgpu.PipelineLayout) (*wgpu.RenderPipelineDescriptor, error)

	// DepthTestEnabled returns whether depth testing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth testing is enabled
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth writing is enabled
	DepthWriteEnabled() bool

	// CullMode returns the cull mode for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology
	Topology() wgpu.PrimitiveTopology
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a new Pipeline for the given vertex shader with the provided options.
//
// Parameters:
//   - pipelineKey: the unique identifier for this pipeline
//   - vertexShader: the parsed vertex shader
//   - opts: functional options to configure the pipeline
//
// Returns:
//   - Pipeline: the newly created pipeline
func NewPipeline(pipelineKey string, vertexShader shader.Shader, opts ...PipelineBuilderOption) Pipeline {
	if vertexShader == nil {
		panic("pipeline: NewPipeline requires a vertex shader")
	}
	p := &pipeline{
		pipelineKey:       pipelineKey,
		vertexShader:      vertexShader,
		checkInputs:       true,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		depthFormat:       wgpu.TextureFormatDepth24Plus,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		sampleCount:       1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader() shader.Shader {
	return p.vertexShader
}

func (p *pipeline) EntryPoint() string {
	return common.Coalesce(p.entryPoint, p.vertexShader.EntryPoint())
}

func (p *pipeline) Layouts() ([]layout.ResolvedLayout, error) {
	records := p.vertexShader.Records()
	layouts := make([]layout.ResolvedLayout, 0, len(records)+len(p.extraLayouts))
	for _, r := range records {
		l, err := r.Resolve()
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: %w", p.pipelineKey, err)
		}
		layouts = append(layouts, l)
	}
	layouts = append(layouts, p.extraLayouts...)
	if len(layouts) == 0 {
		return nil, fmt.Errorf("pipeline %s: %w", p.pipelineKey, ErrNoVertexBuffers)
	}
	return layouts, nil
}

func (p *pipeline) VertexState(module *wgpu.ShaderModule) (wgpu.VertexState, error) {
	layouts, err := p.Layouts()
	if err != nil {
		return wgpu.VertexState{}, err
	}

	entryPoint := p.EntryPoint()
	if p.checkInputs {
		if err := shader.CheckLayout(p.vertexShader.Source(), entryPoint, layouts...); err != nil {
			return wgpu.VertexState{}, fmt.Errorf("pipeline %s: %w", p.pipelineKey, err)
		}
	}

	b := backend.NewWGPUBackend()
	buffers := make([]wgpu.VertexBufferLayout, 0, len(layouts))
	for i, l := range layouts {
		buf, err := b.Build(l)
		if err != nil {
			return wgpu.VertexState{}, fmt.Errorf("pipeline %s: buffer %d: %w", p.pipelineKey, i, err)
		}
		buffers = append(buffers, buf)
	}

	return wgpu.VertexState{
		Module:     module,
		EntryPoint: entryPoint,
		Buffers:    buffers,
	}, nil
}

func (p *pipeline) Descriptor(module *wgpu.ShaderModule, pipelineLayout *wgpu.PipelineLayout) (*wgpu.RenderPipelineDescriptor, error) {
	vertex, err := p.VertexState(module)
	if err != nil {
		return nil, err
	}

	depthCompare := wgpu.CompareFunctionLess
	if !p.depthTestEnabled {
		depthCompare = wgpu.CompareFunctionAlways
	}

	return &wgpu.RenderPipelineDescriptor{
		Label:    p.pipelineKey + " Render Pipeline",
		Layout:   pipelineLayout,
		Vertex:   vertex,
		Fragment: p.fragment,
		Primitive: wgpu.PrimitiveState{
			Topology:  p.topology,
			FrontFace: p.frontFace,
			CullMode:  p.cullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: p.sampleCount,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:              p.depthFormat,
			DepthWriteEnabled:   p.depthWriteEnabled,
			DepthCompare:        depthCompare,
			DepthBias:           p.depthBias,
			DepthBiasSlopeScale: p.depthBiasSlopeScale,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	}, nil
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}
