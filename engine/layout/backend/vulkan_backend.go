package backend

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-layout/engine/layout"
	vk "github.com/goki/vulkan"
)

// vulkanFormatMap maps resolved formats to Vulkan formats. Vulkan covers every
// resolved format, including single 8/16-bit components and 64-bit floats.
var vulkanFormatMap = map[layout.Format]vk.Format{
	layout.FormatUint8:     vk.FormatR8Uint,
	layout.FormatUint8x2:   vk.FormatR8g8Uint,
	layout.FormatUint8x4:   vk.FormatR8g8b8a8Uint,
	layout.FormatSint8:     vk.FormatR8Sint,
	layout.FormatSint8x2:   vk.FormatR8g8Sint,
	layout.FormatSint8x4:   vk.FormatR8g8b8a8Sint,
	layout.FormatUnorm8:    vk.FormatR8Unorm,
	layout.FormatUnorm8x2:  vk.FormatR8g8Unorm,
	layout.FormatUnorm8x4:  vk.FormatR8g8b8a8Unorm,
	layout.FormatSnorm8:    vk.FormatR8Snorm,
	layout.FormatSnorm8x2:  vk.FormatR8g8Snorm,
	layout.FormatSnorm8x4:  vk.FormatR8g8b8a8Snorm,
	layout.FormatUint16:    vk.FormatR16Uint,
	layout.FormatUint16x2:  vk.FormatR16g16Uint,
	layout.FormatUint16x4:  vk.FormatR16g16b16a16Uint,
	layout.FormatSint16:    vk.FormatR16Sint,
	layout.FormatSint16x2:  vk.FormatR16g16Sint,
	layout.FormatSint16x4:  vk.FormatR16g16b16a16Sint,
	layout.FormatUnorm16:   vk.FormatR16Unorm,
	layout.FormatUnorm16x2: vk.FormatR16g16Unorm,
	layout.FormatUnorm16x4: vk.FormatR16g16b16a16Unorm,
	layout.FormatSnorm16:   vk.FormatR16Snorm,
	layout.FormatSnorm16x2: vk.FormatR16g16Snorm,
	layout.FormatSnorm16x4: vk.FormatR16g16b16a16Snorm,
	layout.FormatUint32:    vk.FormatR32Uint,
	layout.FormatUint32x2:  vk.FormatR32g32Uint,
	layout.FormatUint32x3:  vk.FormatR32g32b32Uint,
	layout.FormatUint32x4:  vk.FormatR32g32b32a32Uint,
	layout.FormatSint32:    vk.FormatR32Sint,
	layout.FormatSint32x2:  vk.FormatR32g32Sint,
	layout.FormatSint32x3:  vk.FormatR32g32b32Sint,
	layout.FormatSint32x4:  vk.FormatR32g32b32a32Sint,
	layout.FormatFloat32:   vk.FormatR32Sfloat,
	layout.FormatFloat32x2: vk.FormatR32g32Sfloat,
	layout.FormatFloat32x3: vk.FormatR32g32b32Sfloat,
	layout.FormatFloat32x4: vk.FormatR32g32b32a32Sfloat,
	layout.FormatFloat64:   vk.FormatR64Sfloat,
	layout.FormatFloat64x2: vk.FormatR64g64Sfloat,
	layout.FormatFloat64x3: vk.FormatR64g64b64Sfloat,
	layout.FormatFloat64x4: vk.FormatR64g64b64a64Sfloat,
}

// VulkanVertexInput is the Vulkan description of one vertex buffer binding.
type VulkanVertexInput struct {
	Binding    vk.VertexInputBindingDescription
	Attributes []vk.VertexInputAttributeDescription
}

// vulkanBackend is the implementation of Backend for github.com/goki/vulkan.
type vulkanBackend struct {
	binding uint32
}

var _ Backend[VulkanVertexInput] = &vulkanBackend{}

// NewVulkanBackend creates a Backend producing Vulkan vertex input descriptions
// for the given buffer binding index.
//
// Parameters:
//   - binding: the vertex buffer binding index the descriptions refer to
//
// Returns:
//   - Backend[VulkanVertexInput]: the Vulkan backend
func NewVulkanBackend(binding uint32) Backend[VulkanVertexInput] {
	return &vulkanBackend{binding: binding}
}

func (b *vulkanBackend) Name() string {
	return "vulkan"
}

func (b *vulkanBackend) Build(l layout.ResolvedLayout) (VulkanVertexInput, error) {
	if err := supports(vulkanFormatMap, l); err != nil {
		return VulkanVertexInput{}, fmt.Errorf("%s: %w", b.Name(), err)
	}
	if l.ArrayStride > math.MaxUint32 {
		return VulkanVertexInput{}, fmt.Errorf("%s: stride %d does not fit in 32 bits", b.Name(), l.ArrayStride)
	}

	inputRate := vk.VertexInputRateVertex
	if l.StepMode == layout.StepModeInstance {
		inputRate = vk.VertexInputRateInstance
	}

	attrs := make([]vk.VertexInputAttributeDescription, 0, len(l.Attributes))
	for _, a := range l.Attributes {
		attrs = append(attrs, vk.VertexInputAttributeDescription{
			Location: a.ShaderLocation,
			Binding:  b.binding,
			Format:   vulkanFormatMap[a.Format],
			Offset:   uint32(a.Offset),
		})
	}

	return VulkanVertexInput{
		Binding: vk.VertexInputBindingDescription{
			Binding:   b.binding,
			Stride:    uint32(l.ArrayStride),
			InputRate: inputRate,
		},
		Attributes: attrs,
	}, nil
}
