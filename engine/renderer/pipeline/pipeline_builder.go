package pipeline

import (
	"github.com/Carmen-Shannon/oxy-layout/engine/layout"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithEntryPoint sets the vertex entry point, overriding the shader's first @vertex function.
//
// Parameters:
//   - name: the @vertex function name
//
// Returns:
//   - PipelineBuilderOption: a function that sets the entry point for this pipeline
func WithEntryPoint(name string) PipelineBuilderOption {
	return func(p *pipeline) {
		p.entryPoint = name
	}
}

// WithLayouts appends vertex buffer layouts after the shader's own records, e.g. layouts
// resolved from Go structs or taken from a catalog.
//
// Parameters:
//   - layouts: the extra layouts, in buffer slot order
//
// Returns:
//   - PipelineBuilderOption: a function that appends the layouts to this pipeline
func WithLayouts(layouts ...layout.ResolvedLayout) PipelineBuilderOption {
	return func(p *pipeline) {
		p.extraLayouts = append(p.extraLayouts, layouts...)
	}
}

// WithInputCheck sets whether the layouts are checked against the entry point's inputs.
// Enabled by default.
//
// Parameters:
//   - enabled: a boolean indicating whether the interface check runs
//
// Returns:
//   - PipelineBuilderOption: a function that sets the input check state for this pipeline
func WithInputCheck(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.checkInputs = enabled
	}
}

// WithDepthTestEnabled sets whether depth testing is enabled for this pipeline.
//
// Parameters:
//   - enabled: a boolean indicating whether depth testing should be enabled
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth test enabled state for this pipeline
func WithDepthTestEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthTestEnabled = enabled
	}
}

// WithDepthWriteEnabled sets whether depth writing is enabled for this pipeline.
//
// Parameters:
//   - enabled: a boolean indicating whether depth writing should be enabled
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth write enabled state for this pipeline
func WithDepthWriteEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthWriteEnabled = enabled
	}
}

// WithDepthBias sets the depth bias parameters for this pipeline.
//
// Parameters:
//   - bias: the constant depth bias to apply
//   - slopeScale: the slope scale depth bias to apply
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth bias parameters for this pipeline
func WithDepthBias(bias int32, slopeScale float32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthBias = bias
		p.depthBiasSlopeScale = slopeScale
	}
}

// WithDepthFormat sets the depth attachment format. Defaults to wgpu.TextureFormatDepth24Plus.
func WithDepthFormat(format wgpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthFormat = format
	}
}

// WithCullMode sets the cull mode for this pipeline.
//
// Parameters:
//   - mode: the cull mode to use for this pipeline (e.g., wgpu.CullModeNone, wgpu.CullModeFront, wgpu.CullModeBack)
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode for this pipeline
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithTopology sets the primitive topology for this pipeline.
//
// Parameters:
//   - topology: the primitive topology to use for this pipeline
//
// Returns:
//   - PipelineBuilderOption: a function that sets the primitive topology for this pipeline
func WithTopology(topology wgpu.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}

// WithFrontFace sets the front face winding order for this pipeline.
func WithFrontFace(frontFace wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = frontFace
	}
}

// WithSampleCount sets the multisample count.
func WithSampleCount(count uint32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.sampleCount = count
	}
}

// WithFragment sets the fragment stage. Without it the descriptor is depth-only.
//
// Parameters:
//   - fragment: the fragment state
//
// Returns:
//   - PipelineBuilderOption: a function that sets the fragment stage for this pipeline
func WithFragment(fragment *wgpu.FragmentState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.fragment = fragment
	}
}
