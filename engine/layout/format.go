// Package layout resolves an ordered list of record field descriptions into a
// packed GPU vertex buffer layout: one wire format, byte offset and shader
// location per field, plus the record stride and step mode.
//
// The resolver is a pure function. Front-ends (Go struct tags, WGSL source)
// produce []FieldSpec; backends render the ResolvedLayout for a graphics API.
package layout

import (
	"fmt"
	"strings"
)

// Format is a vertex attribute wire format. Each format has a fixed component
// type and component count, and therefore a fixed byte size.
type Format uint8

const (
	FormatInvalid Format = iota

	FormatUint8
	FormatUint8x2
	FormatUint8x4
	FormatSint8
	FormatSint8x2
	FormatSint8x4
	FormatUnorm8
	FormatUnorm8x2
	FormatUnorm8x4
	FormatSnorm8
	FormatSnorm8x2
	FormatSnorm8x4

	FormatUint16
	FormatUint16x2
	FormatUint16x4
	FormatSint16
	FormatSint16x2
	FormatSint16x4
	FormatUnorm16
	FormatUnorm16x2
	FormatUnorm16x4
	FormatSnorm16
	FormatSnorm16x2
	FormatSnorm16x4

	FormatUint32
	FormatUint32x2
	FormatUint32x3
	FormatUint32x4
	FormatSint32
	FormatSint32x2
	FormatSint32x3
	FormatSint32x4
	FormatFloat32
	FormatFloat32x2
	FormatFloat32x3
	FormatFloat32x4

	FormatFloat64
	FormatFloat64x2
	FormatFloat64x3
	FormatFloat64x4

	formatCount
)

// Family is the component type shared by every arity of a format, e.g. Unorm8
// for Unorm8, Unorm8x2 and Unorm8x4.
type Family uint8

const (
	FamilyInvalid Family = iota
	FamilyUint8
	FamilySint8
	FamilyUnorm8
	FamilySnorm8
	FamilyUint16
	FamilySint16
	FamilyUnorm16
	FamilySnorm16
	FamilyUint32
	FamilySint32
	FamilyFloat32
	FamilyFloat64
)

// ScalarClass is how a shader sees the components of a format once fetched.
// Normalized integer formats are read as floats.
type ScalarClass uint8

const (
	ScalarFloat ScalarClass = iota
	ScalarSint
	ScalarUint
)

// familyInfo holds the per-family facts the resolver and backends need.
type familyInfo struct {
	name           string
	componentBytes uint64
	class          ScalarClass
	// arities lists the component counts inference may produce for this family.
	arities [5]bool
	// vectors maps a component count to its format; index 1 is the bare scalar.
	vectors [5]Format
}

var (
	aritiesNarrow = [5]bool{2: true, 4: true}
	aritiesWide   = [5]bool{1: true, 2: true, 3: true, 4: true}
)

// familyTable is the arity legality table. 8-bit and 16-bit families only
// come in pairs and quads; 32-bit and 64-bit families allow 1 through 4.
var familyTable = [...]familyInfo{
	FamilyUint8:   {"Uint8", 1, ScalarUint, aritiesNarrow, [5]Format{1: FormatUint8, 2: FormatUint8x2, 4: FormatUint8x4}},
	FamilySint8:   {"Sint8", 1, ScalarSint, aritiesNarrow, [5]Format{1: FormatSint8, 2: FormatSint8x2, 4: FormatSint8x4}},
	FamilyUnorm8:  {"Unorm8", 1, ScalarFloat, aritiesNarrow, [5]Format{1: FormatUnorm8, 2: FormatUnorm8x2, 4: FormatUnorm8x4}},
	FamilySnorm8:  {"Snorm8", 1, ScalarFloat, aritiesNarrow, [5]Format{1: FormatSnorm8, 2: FormatSnorm8x2, 4: FormatSnorm8x4}},
	FamilyUint16:  {"Uint16", 2, ScalarUint, aritiesNarrow, [5]Format{1: FormatUint16, 2: FormatUint16x2, 4: FormatUint16x4}},
	FamilySint16:  {"Sint16", 2, ScalarSint, aritiesNarrow, [5]Format{1: FormatSint16, 2: FormatSint16x2, 4: FormatSint16x4}},
	FamilyUnorm16: {"Unorm16", 2, ScalarFloat, aritiesNarrow, [5]Format{1: FormatUnorm16, 2: FormatUnorm16x2, 4: FormatUnorm16x4}},
	FamilySnorm16: {"Snorm16", 2, ScalarFloat, aritiesNarrow, [5]Format{1: FormatSnorm16, 2: FormatSnorm16x2, 4: FormatSnorm16x4}},
	FamilyUint32:  {"Uint32", 4, ScalarUint, aritiesWide, [5]Format{1: FormatUint32, 2: FormatUint32x2, 3: FormatUint32x3, 4: FormatUint32x4}},
	FamilySint32:  {"Sint32", 4, ScalarSint, aritiesWide, [5]Format{1: FormatSint32, 2: FormatSint32x2, 3: FormatSint32x3, 4: FormatSint32x4}},
	FamilyFloat32: {"Float32", 4, ScalarFloat, aritiesWide, [5]Format{1: FormatFloat32, 2: FormatFloat32x2, 3: FormatFloat32x3, 4: FormatFloat32x4}},
	FamilyFloat64: {"Float64", 8, ScalarFloat, aritiesWide, [5]Format{1: FormatFloat64, 2: FormatFloat64x2, 3: FormatFloat64x3, 4: FormatFloat64x4}},
}

// formatInfo is the reverse index of familyTable, built once at init.
type formatInfo struct {
	name       string
	family     Family
	components int
}

var (
	formatTable  [formatCount]formatInfo
	formatByName = make(map[string]Format, formatCount)
)

func init() {
	for fam := FamilyUint8; fam <= FamilyFloat64; fam++ {
		info := familyTable[fam]
		for n, f := range info.vectors {
			if f == FormatInvalid {
				continue
			}
			name := info.name
			if n > 1 {
				name = fmt.Sprintf("%sx%d", info.name, n)
			}
			formatTable[f] = formatInfo{name: name, family: fam, components: n}
			formatByName[strings.ToLower(name)] = f
		}
	}
}

// ParseFormat looks up a format by name. Matching is case-insensitive so both
// "Unorm8x2" and "unorm8x2" resolve.
//
// Parameters:
//   - name: the format name
//
// Returns:
//   - Format: the matching format
//   - bool: false if no format has that name
func ParseFormat(name string) (Format, bool) {
	f, ok := formatByName[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// Formats returns every valid format in declaration order.
func Formats() []Format {
	out := make([]Format, 0, formatCount-1)
	for f := FormatInvalid + 1; f < formatCount; f++ {
		out = append(out, f)
	}
	return out
}

// Valid reports whether f is one of the enumerated formats.
func (f Format) Valid() bool {
	return f > FormatInvalid && f < formatCount
}

func (f Format) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
	return formatTable[f].name
}

// Family returns the component family of the format.
func (f Format) Family() Family {
	if !f.Valid() {
		return FamilyInvalid
	}
	return formatTable[f].family
}

// Components returns the number of components (the arity) of the format.
func (f Format) Components() int {
	if !f.Valid() {
		return 0
	}
	return formatTable[f].components
}

// Size returns the byte size of one attribute of this format:
// bytes-per-component times component count.
func (f Format) Size() uint64 {
	if !f.Valid() {
		return 0
	}
	return familyTable[formatTable[f].family].componentBytes * uint64(formatTable[f].components)
}

// Normalized reports whether integer components are mapped to [0,1] or [-1,1].
func (f Format) Normalized() bool {
	switch f.Family() {
	case FamilyUnorm8, FamilySnorm8, FamilyUnorm16, FamilySnorm16:
		return true
	}
	return false
}

// ScalarClass returns how a shader reads the components of the format.
func (f Format) ScalarClass() ScalarClass {
	return familyTable[f.Family()].class
}

func (fam Family) String() string {
	if fam == FamilyInvalid || int(fam) >= len(familyTable) {
		return fmt.Sprintf("Family(%d)", uint8(fam))
	}
	return familyTable[fam].name
}

// AllowsArity reports whether inference may produce a format of this family
// with n components.
func (fam Family) AllowsArity(n int) bool {
	if fam == FamilyInvalid || int(fam) >= len(familyTable) || n < 0 || n >= len(familyTable[fam].arities) {
		return false
	}
	return familyTable[fam].arities[n]
}

// Vector returns the format of this family with n components.
//
// Returns:
//   - Format: the format, or FormatInvalid
//   - bool: false if the family has no format of that arity
func (fam Family) Vector(n int) (Format, bool) {
	if fam == FamilyInvalid || int(fam) >= len(familyTable) || n < 1 || n >= len(familyTable[fam].vectors) {
		return FormatInvalid, false
	}
	f := familyTable[fam].vectors[n]
	return f, f != FormatInvalid
}

func (c ScalarClass) String() string {
	switch c {
	case ScalarFloat:
		return "float"
	case ScalarSint:
		return "sint"
	case ScalarUint:
		return "uint"
	}
	return fmt.Sprintf("ScalarClass(%d)", uint8(c))
}
