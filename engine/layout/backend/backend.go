// Package backend renders a resolved vertex layout into the descriptor types
// of a graphics API. Each backend is stateless and safe for concurrent use.
package backend

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-layout/engine/layout"
)

// ErrUnsupportedFormat is returned when the target API has no equivalent of a
// resolved format, e.g. Float64 on WebGPU.
var ErrUnsupportedFormat = errors.New("format not supported by backend")

// Backend converts a layout.ResolvedLayout into the API-specific type T.
type Backend[T any] interface {
	// Name returns the backend's short name, used in error messages and CLI output.
	//
	// Returns:
	//   - string: the backend name (e.g. "wgpu", "vulkan")
	Name() string

	// Build converts the resolved layout.
	//
	// Parameters:
	//   - l: the resolved layout to convert
	//
	// Returns:
	//   - T: the API descriptor
	//   - error: wraps ErrUnsupportedFormat when an attribute cannot be expressed
	Build(l layout.ResolvedLayout) (T, error)
}

// supports checks that every attribute of l can be expressed by a backend
// whose format table is formats.
func supports[F any](formats map[layout.Format]F, l layout.ResolvedLayout) error {
	for i, a := range l.Attributes {
		if _, ok := formats[a.Format]; !ok {
			return unsupported(i, a)
		}
	}
	return nil
}

func unsupported(index int, a layout.ResolvedAttribute) error {
	return fmt.Errorf("attribute %d (location %d): %s: %w", index, a.ShaderLocation, a.Format, ErrUnsupportedFormat)
}
