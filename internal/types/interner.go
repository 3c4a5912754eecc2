package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid  TypeID
	Void     TypeID
	Label    TypeID
	Metadata TypeID
	I1       TypeID
	I8       TypeID
	I16      TypeID
	I32      TypeID
	I64      TypeID
	Half     TypeID
	Float    TypeID
	Double   TypeID
	X86FP80  TypeID
	FP128    TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Named structs and opaque types are identified by name alone so that their
// bodies can be filled in after references to them exist.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	named    map[string]TypeID
	builtins Builtins
	structs  []StructInfo
	fns      []FnInfo
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[typeKey]TypeID, 64),
		named: make(map[string]TypeID, 8),
	}
	in.structs = append(in.structs, StructInfo{}) // reserve 0 as invalid sentinel
	in.fns = append(in.fns, FnInfo{})
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Void = in.Intern(Type{Kind: KindVoid})
	in.builtins.Label = in.Intern(Type{Kind: KindLabel})
	in.builtins.Metadata = in.Intern(Type{Kind: KindMetadata})
	in.builtins.I1 = in.Intern(MakeInt(1))
	in.builtins.I8 = in.Intern(MakeInt(8))
	in.builtins.I16 = in.Intern(MakeInt(16))
	in.builtins.I32 = in.Intern(MakeInt(32))
	in.builtins.I64 = in.Intern(MakeInt(64))
	in.builtins.Half = in.Intern(MakeFloat(WidthHalf))
	in.builtins.Float = in.Intern(MakeFloat(WidthFloat))
	in.builtins.Double = in.Intern(MakeFloat(WidthDouble))
	in.builtins.X86FP80 = in.Intern(MakeFloat(WidthX86FP80))
	in.builtins.FP128 = in.Intern(MakeFloat(WidthFP128))
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
// Struct and function descriptors must go through Struct/NamedStruct/Func.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	key := typeKey(t)
	in.index[key] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if in == nil || id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Int returns the integer type of the given width.
func (in *Interner) Int(bits uint32) TypeID {
	return in.Intern(MakeInt(bits))
}

// Float returns the floating-point type of the given width.
func (in *Interner) Float(bits uint32) TypeID {
	return in.Intern(MakeFloat(bits))
}

// Pointer returns elem*.
func (in *Interner) Pointer(elem TypeID) TypeID {
	return in.Intern(MakePointer(elem))
}

// Array returns [n x elem].
func (in *Interner) Array(elem TypeID, n uint64) TypeID {
	return in.Intern(MakeArray(elem, n))
}

// Vector returns <n x elem>.
func (in *Interner) Vector(elem TypeID, n uint64) TypeID {
	return in.Intern(MakeVector(elem, n))
}

// Elem returns the pointee of a pointer or the element of an array/vector.
func (in *Interner) Elem(id TypeID) (TypeID, bool) {
	tt, ok := in.Lookup(id)
	if !ok {
		return NoTypeID, false
	}
	switch tt.Kind {
	case KindPointer, KindArray, KindVector:
		return tt.Elem, true
	default:
		return NoTypeID, false
	}
}

// Is reports whether id resolves to the given kind.
func (in *Interner) Is(id TypeID, kind Kind) bool {
	tt, ok := in.Lookup(id)
	return ok && tt.Kind == kind
}

// Scalar returns the element type for vectors and the type itself otherwise.
func (in *Interner) Scalar(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if ok && tt.Kind == KindVector {
		return tt.Elem
	}
	return id
}

// Count returns the length of an array or vector type.
func (in *Interner) Count(id TypeID) uint64 {
	tt, ok := in.Lookup(id)
	if !ok || (tt.Kind != KindArray && tt.Kind != KindVector) {
		return 0
	}
	return tt.Count
}

type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Count   uint64
	Bits    uint32
	Payload uint32
}
