package types

import (
	"errors"
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// ErrNameTaken is returned when a named type is redeclared with another kind.
var ErrNameTaken = errors.New("type name already declared")

// StructInfo stores the body of a structure or opaque type.
type StructInfo struct {
	Name    string   // empty for literal structs
	Fields  []TypeID // nil until a named struct gets its body
	Packed  bool
	HasBody bool
}

// Struct returns a literal (anonymous) structure type. Literal structs are
// structural: equal field lists yield the same TypeID.
func (in *Interner) Struct(packed bool, fields ...TypeID) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindStruct || int(tt.Payload) >= len(in.structs) {
			continue
		}
		info := in.structs[tt.Payload]
		if info.Name == "" && info.Packed == packed && slices.Equal(info.Fields, fields) {
			return id
		}
	}
	slot := in.appendStructInfo(StructInfo{Fields: slices.Clone(fields), Packed: packed, HasBody: true})
	return in.internRaw(Type{Kind: KindStruct, Payload: slot})
}

// NamedStruct returns the named structure %name, creating it without a body
// on first use. Named structs are nominal, so recursive references are legal.
func (in *Interner) NamedStruct(name string) (TypeID, error) {
	if id, ok := in.named[name]; ok {
		if !in.Is(id, KindStruct) {
			return NoTypeID, fmt.Errorf("%w: %q", ErrNameTaken, name)
		}
		return id, nil
	}
	slot := in.appendStructInfo(StructInfo{Name: name})
	id := in.internRaw(Type{Kind: KindStruct, Payload: slot})
	in.named[name] = id
	return id, nil
}

// Opaque returns the named opaque type %name.
func (in *Interner) Opaque(name string) (TypeID, error) {
	if id, ok := in.named[name]; ok {
		if !in.Is(id, KindOpaque) {
			return NoTypeID, fmt.Errorf("%w: %q", ErrNameTaken, name)
		}
		return id, nil
	}
	slot := in.appendStructInfo(StructInfo{Name: name})
	id := in.internRaw(Type{Kind: KindOpaque, Payload: slot})
	in.named[name] = id
	return id, nil
}

// SetBody assigns the field list of a named struct.
func (in *Interner) SetBody(id TypeID, packed bool, fields ...TypeID) error {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindStruct || int(tt.Payload) >= len(in.structs) {
		return fmt.Errorf("type#%d is not a struct", id)
	}
	info := &in.structs[tt.Payload]
	if info.Name == "" {
		return fmt.Errorf("type#%d is a literal struct", id)
	}
	info.Fields = slices.Clone(fields)
	info.Packed = packed
	info.HasBody = true
	return nil
}

// StructInfo retrieves struct or opaque metadata by TypeID.
func (in *Interner) StructInfo(id TypeID) (*StructInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || (tt.Kind != KindStruct && tt.Kind != KindOpaque) {
		return nil, false
	}
	if int(tt.Payload) >= len(in.structs) {
		return nil, false
	}
	return &in.structs[tt.Payload], true
}

// TypeName returns the name of a named struct or opaque type.
func (in *Interner) TypeName(id TypeID) string {
	if info, ok := in.StructInfo(id); ok {
		return info.Name
	}
	return ""
}

// LookupNamed finds a named struct or opaque type.
func (in *Interner) LookupNamed(name string) (TypeID, bool) {
	id, ok := in.named[name]
	return id, ok
}

func (in *Interner) appendStructInfo(info StructInfo) uint32 {
	in.structs = append(in.structs, info)
	slot, err := safecast.Conv[uint32](len(in.structs) - 1)
	if err != nil {
		panic(fmt.Errorf("struct info overflow: %w", err))
	}
	return slot
}
