package layout

import (
	"fmt"
	"strings"
)

// ElementKind is the scalar type of a record field, or of each element of a
// fixed-size array field.
type ElementKind uint8

const (
	ElementInvalid ElementKind = iota
	ElementUint8
	ElementSint8
	ElementUint16
	ElementSint16
	ElementUint32
	ElementSint32
	ElementFloat32
	ElementFloat64
)

// elementInfo ties an element kind to its spellings and its format families.
// norm is FamilyInvalid for kinds that have no normalized variant.
type elementInfo struct {
	short  string
	goName string
	raw    Family
	norm   Family
}

var elementTable = [...]elementInfo{
	ElementUint8:   {"u8", "uint8", FamilyUint8, FamilyUnorm8},
	ElementSint8:   {"i8", "int8", FamilySint8, FamilySnorm8},
	ElementUint16:  {"u16", "uint16", FamilyUint16, FamilyUnorm16},
	ElementSint16:  {"i16", "int16", FamilySint16, FamilySnorm16},
	ElementUint32:  {"u32", "uint32", FamilyUint32, FamilyInvalid},
	ElementSint32:  {"i32", "int32", FamilySint32, FamilyInvalid},
	ElementFloat32: {"f32", "float32", FamilyFloat32, FamilyInvalid},
	ElementFloat64: {"f64", "float64", FamilyFloat64, FamilyInvalid},
}

// ParseElementKind accepts either the short spelling ("u8", "f32") or the Go
// spelling ("uint8", "float32").
//
// Parameters:
//   - name: the element type name
//
// Returns:
//   - ElementKind: the matching kind
//   - bool: false if the name is not a supported scalar type
func ParseElementKind(name string) (ElementKind, bool) {
	name = strings.TrimSpace(name)
	for k := ElementUint8; k <= ElementFloat64; k++ {
		if elementTable[k].short == name || elementTable[k].goName == name {
			return k, true
		}
	}
	return ElementInvalid, false
}

// Valid reports whether k is one of the supported scalar kinds.
func (k ElementKind) Valid() bool {
	return k > ElementInvalid && int(k) < len(elementTable)
}

func (k ElementKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("ElementKind(%d)", uint8(k))
	}
	return elementTable[k].short
}

// GoName returns the Go spelling of the kind, e.g. "uint16".
func (k ElementKind) GoName() string {
	if !k.Valid() {
		return k.String()
	}
	return elementTable[k].goName
}

// Normalizable reports whether the kind has a normalized format family.
// Only the 8-bit and 16-bit integer kinds do.
func (k ElementKind) Normalizable() bool {
	return k.Valid() && elementTable[k].norm != FamilyInvalid
}

// family returns the raw or normalized format family for k.
func (k ElementKind) family(normalize bool) Family {
	if !k.Valid() {
		return FamilyInvalid
	}
	if normalize {
		return elementTable[k].norm
	}
	return elementTable[k].raw
}
