package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of IR types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindLabel
	KindMetadata
	KindInt
	KindVarInt
	KindFloat
	KindPointer
	KindArray
	KindVector
	KindStruct
	KindFunc
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindLabel:
		return "label"
	case KindMetadata:
		return "metadata"
	case KindInt:
		return "int"
	case KindVarInt:
		return "varint"
	case KindFloat:
		return "float"
	case KindPointer:
		return "pointer"
	case KindArray:
		return "array"
	case KindVector:
		return "vector"
	case KindStruct:
		return "struct"
	case KindFunc:
		return "func"
	case KindOpaque:
		return "opaque"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Float widths. X86FP80 is the 80-bit x87 extended format.
const (
	WidthHalf    uint32 = 16
	WidthFloat   uint32 = 32
	WidthDouble  uint32 = 64
	WidthX86FP80 uint32 = 80
	WidthFP128   uint32 = 128
)

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind    Kind
	Elem    TypeID // pointee or element type
	Count   uint64 // array/vector length
	Bits    uint32 // integer or float width
	Payload uint32 // slot in struct/fn side tables
}

// Descriptor helpers ---------------------------------------------------------

// MakeInt describes an integer of the given bit width. Widths other than
// 1, 8, 16, 32 and 64 become variable-width integers.
func MakeInt(bits uint32) Type {
	switch bits {
	case 1, 8, 16, 32, 64:
		return Type{Kind: KindInt, Bits: bits}
	default:
		return Type{Kind: KindVarInt, Bits: bits}
	}
}

// MakeFloat describes a floating-point type of the given width.
func MakeFloat(bits uint32) Type {
	return Type{Kind: KindFloat, Bits: bits}
}

// MakePointer describes a pointer to elem.
func MakePointer(elem TypeID) Type {
	return Type{Kind: KindPointer, Elem: elem}
}

// MakeArray describes [count x elem].
func MakeArray(elem TypeID, count uint64) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}

// MakeVector describes <count x elem>.
func MakeVector(elem TypeID, count uint64) Type {
	return Type{Kind: KindVector, Elem: elem, Count: count}
}

// IsInteger reports integer kinds of any width.
func (t Type) IsInteger() bool {
	return t.Kind == KindInt || t.Kind == KindVarInt
}

// IsFloat reports floating-point kinds.
func (t Type) IsFloat() bool {
	return t.Kind == KindFloat
}

// IsAggregate reports array, vector and struct kinds.
func (t Type) IsAggregate() bool {
	return t.Kind == KindArray || t.Kind == KindVector || t.Kind == KindStruct
}
