package layout

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// ResolvedAttribute is one attribute of a resolved layout.
type ResolvedAttribute struct {
	// Format is the attribute's wire format.
	Format Format
	// Offset is the byte offset of the attribute from the start of the record.
	Offset uint64
	// ShaderLocation is the input location visible to the vertex stage.
	ShaderLocation uint32
}

// ResolvedLayout is the output of Resolve: a fully packed record description.
type ResolvedLayout struct {
	// StepMode is chosen once for the whole record.
	StepMode StepMode
	// ArrayStride is the sum of all attribute sizes.
	ArrayStride uint64
	// Attributes are in field declaration order.
	Attributes []ResolvedAttribute
}

// Attribute returns the first attribute bound to the given shader location.
//
// Parameters:
//   - location: the shader location to look up
//
// Returns:
//   - ResolvedAttribute: the attribute, or the zero value
//   - bool: false if no attribute uses that location
func (l ResolvedLayout) Attribute(location uint32) (ResolvedAttribute, bool) {
	for _, a := range l.Attributes {
		if a.ShaderLocation == location {
			return a, true
		}
	}
	return ResolvedAttribute{}, false
}

// VerifyStride asserts that an externally measured record size matches the
// resolved stride. The resolved stride stays authoritative; a mismatch means
// the record has padding or the description does not match the record.
//
// Parameters:
//   - measured: the record size measured by the caller, e.g. unsafe.Sizeof
//
// Returns:
//   - error: an unsupported_field_shape *Error on mismatch, nil otherwise
func (l ResolvedLayout) VerifyStride(measured uint64) error {
	if measured == l.ArrayStride {
		return nil
	}
	return newError(KindUnsupportedFieldShape).
		value(measured).
		detail("record measures %d bytes but its attributes pack into %d; the record is not tightly packed", measured, l.ArrayStride).
		build()
}

func (l ResolvedLayout) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "stride %d, step %s\n", l.ArrayStride, l.StepMode)
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "location\toffset\tformat\tsize")
	for _, a := range l.Attributes {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\n", a.ShaderLocation, a.Offset, a.Format, a.Format.Size())
	}
	tw.Flush()
	return sb.String()
}
