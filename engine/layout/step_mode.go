package layout

import (
	"fmt"
	"strings"
)

// StepMode selects whether the buffer pointer advances once per vertex or once
// per instance. The zero value is StepModeVertex.
type StepMode uint8

const (
	// StepModeVertex advances the record once per vertex. This is the default.
	StepModeVertex StepMode = iota

	// StepModeInstance advances the record once per drawn instance.
	StepModeInstance
)

// StepModer is implemented by record types that step per instance, or that
// want to state their step mode explicitly.
type StepModer interface {
	VertexStepMode() StepMode
}

// ParseStepMode turns an optional step mode selection into a StepMode. An
// empty selection means per-vertex. Matching ignores case and surrounding
// whitespace, so "Instance", "instance" and " INSTANCE " all select per-instance
// stepping; front-ends that need the exact spellings Vertex and Instance must
// check them before calling.
//
// Parameters:
//   - s: "", "vertex" or "instance"
//
// Returns:
//   - StepMode: the selected mode
//   - error: an invalid_step_mode *Error for any other value
func ParseStepMode(s string) (StepMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "vertex":
		return StepModeVertex, nil
	case "instance":
		return StepModeInstance, nil
	}
	return StepModeVertex, newError(KindInvalidStepMode).
		noField().
		value(s).
		detail("step mode %q is neither Vertex nor Instance", s).
		build()
}

// Valid reports whether m is one of the two known step modes.
func (m StepMode) Valid() bool {
	return m == StepModeVertex || m == StepModeInstance
}

func (m StepMode) String() string {
	switch m {
	case StepModeVertex:
		return "Vertex"
	case StepModeInstance:
		return "Instance"
	}
	return fmt.Sprintf("StepMode(%d)", uint8(m))
}
