package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrorKind categorizes a layout description error.
type ErrorKind string

const (
	// KindUnsupportedElementKind: the field's base type is not a supported scalar.
	KindUnsupportedElementKind ErrorKind = "unsupported_element_kind"
	// KindInvalidNormalization: normalization was requested for a kind without a normalized variant.
	KindInvalidNormalization ErrorKind = "invalid_normalization"
	// KindInvalidArity: the family/array-length combination is not in the arity table.
	KindInvalidArity ErrorKind = "invalid_arity"
	// KindConflictingOverride: override annotations are malformed, unknown or repeated.
	KindConflictingOverride ErrorKind = "conflicting_override"
	// KindInvalidStepMode: the step mode selection is not Vertex or Instance.
	KindInvalidStepMode ErrorKind = "invalid_step_mode"
	// KindUnsupportedFieldShape: a front-end could not reduce a field to (element kind, array length).
	KindUnsupportedFieldShape ErrorKind = "unsupported_field_shape"
)

// Sentinels for errors.Is. Is matches on Kind only.
var (
	ErrUnsupportedElementKind = &Error{Kind: KindUnsupportedElementKind}
	ErrInvalidNormalization   = &Error{Kind: KindInvalidNormalization}
	ErrInvalidArity           = &Error{Kind: KindInvalidArity}
	ErrConflictingOverride    = &Error{Kind: KindConflictingOverride}
	ErrInvalidStepMode        = &Error{Kind: KindInvalidStepMode}
	ErrUnsupportedFieldShape  = &Error{Kind: KindUnsupportedFieldShape}
)

// Error is the structured error returned by Resolve and the front-ends. It
// names the offending field and value so callers can point at the exact
// declaration.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind
	// Field is the zero-based declaration index, or -1 for record-level errors.
	Field int
	// Name is the field name when known.
	Name string
	// Line is the 1-based source line for front-ends that have one, else 0.
	Line int
	// Value is the offending input (element kind, array length, tag text, ...).
	Value any
	// Detail is the human-readable message.
	Detail string
	// Cause is an underlying error, if any.
	Cause error
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString("[layout] ")
	b.WriteString(string(e.Kind))

	if e.Field >= 0 {
		b.WriteString(" at field ")
		b.WriteString(strconv.Itoa(e.Field))
		if e.Name != "" {
			b.WriteString(" (")
			b.WriteString(e.Name)
			b.WriteByte(')')
		}
	}
	if e.Line > 0 {
		b.WriteString(" on line ")
		b.WriteString(strconv.Itoa(e.Line))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// errorBuilder assembles an *Error field by field.
type errorBuilder struct {
	err Error
}

func newError(kind ErrorKind) *errorBuilder {
	return &errorBuilder{err: Error{Kind: kind, Field: -1}}
}

func (b *errorBuilder) field(index int, name string) *errorBuilder {
	b.err.Field = index
	b.err.Name = name
	return b
}

func (b *errorBuilder) noField() *errorBuilder {
	b.err.Field = -1
	b.err.Name = ""
	return b
}

func (b *errorBuilder) line(n int) *errorBuilder {
	b.err.Line = n
	return b
}

func (b *errorBuilder) value(v any) *errorBuilder {
	b.err.Value = v
	return b
}

func (b *errorBuilder) cause(err error) *errorBuilder {
	b.err.Cause = err
	return b
}

func (b *errorBuilder) detail(msg string, args ...any) *errorBuilder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

func (b *errorBuilder) build() *Error {
	return &b.err
}

// NewFieldError builds an *Error for front-ends outside this package that need
// to report a field they could not describe, such as an unsupported shape or
// a malformed override annotation.
//
// Parameters:
//   - kind: the error category
//   - index: the zero-based field index, or -1 for record-level errors
//   - name: the field name, may be empty
//   - line: the 1-based source line, or 0 when there is none
//   - value: the offending value
//   - format: the detail message format, followed by its arguments
//
// Returns:
//   - *Error: the constructed error
func NewFieldError(kind ErrorKind, index int, name string, line int, value any, format string, args ...any) *Error {
	return newError(kind).field(index, name).line(line).value(value).detail(format, args...).build()
}
