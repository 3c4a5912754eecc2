package types

import (
	"strconv"
	"strings"

	lltypes "github.com/llir/llvm/ir/types"
)

// Format renders a type in textual IR syntax. Named structs and opaque
// types are rendered by reference (%name); use FormatBody for their bodies.
func (in *Interner) Format(id TypeID) string {
	var sb strings.Builder
	in.writeType(&sb, id)
	return sb.String()
}

// FormatBody renders the definition of a named struct or opaque type,
// e.g. "{ i32, i8* }" or "opaque".
func (in *Interner) FormatBody(id TypeID) string {
	info, ok := in.StructInfo(id)
	if !ok || !info.HasBody || in.Is(id, KindOpaque) {
		return "opaque"
	}
	var sb strings.Builder
	in.writeFields(&sb, info.Fields, info.Packed)
	return sb.String()
}

// FormatSignature renders a function type's parameter list, e.g. "(i8*, ...)".
func (in *Interner) FormatSignature(fn TypeID) string {
	var sb strings.Builder
	in.writeParams(&sb, fn)
	return sb.String()
}

func (in *Interner) writeType(sb *strings.Builder, id TypeID) {
	tt, ok := in.Lookup(id)
	if !ok {
		sb.WriteString("<invalid>")
		return
	}
	switch tt.Kind {
	case KindVoid:
		sb.WriteString("void")
	case KindLabel:
		sb.WriteString("label")
	case KindMetadata:
		sb.WriteString("metadata")
	case KindInt, KindVarInt:
		sb.WriteByte('i')
		sb.WriteString(strconv.FormatUint(uint64(tt.Bits), 10))
	case KindFloat:
		sb.WriteString(floatName(tt.Bits))
	case KindPointer:
		in.writeType(sb, tt.Elem)
		sb.WriteByte('*')
	case KindArray:
		sb.WriteByte('[')
		sb.WriteString(strconv.FormatUint(tt.Count, 10))
		sb.WriteString(" x ")
		in.writeType(sb, tt.Elem)
		sb.WriteByte(']')
	case KindVector:
		sb.WriteByte('<')
		sb.WriteString(strconv.FormatUint(tt.Count, 10))
		sb.WriteString(" x ")
		in.writeType(sb, tt.Elem)
		sb.WriteByte('>')
	case KindStruct, KindOpaque:
		info, _ := in.StructInfo(id)
		if info != nil && info.Name != "" {
			sb.WriteString(typeName(info.Name))
			return
		}
		if info == nil {
			sb.WriteString("{}")
			return
		}
		in.writeFields(sb, info.Fields, info.Packed)
	case KindFunc:
		info, _ := in.FnInfo(id)
		if info == nil {
			sb.WriteString("<invalid>")
			return
		}
		in.writeType(sb, info.Result)
		sb.WriteByte(' ')
		in.writeParams(sb, id)
	default:
		sb.WriteString("<invalid>")
	}
}

func (in *Interner) writeFields(sb *strings.Builder, fields []TypeID, packed bool) {
	if packed {
		sb.WriteByte('<')
	}
	sb.WriteString("{ ")
	for i, f := range fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		in.writeType(sb, f)
	}
	sb.WriteString(" }")
	if packed {
		sb.WriteByte('>')
	}
}

func (in *Interner) writeParams(sb *strings.Builder, fn TypeID) {
	info, ok := in.FnInfo(fn)
	sb.WriteByte('(')
	if ok {
		for i, p := range info.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			in.writeType(sb, p)
		}
		if info.Variadic {
			if len(info.Params) != 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("...")
		}
	}
	sb.WriteByte(')')
}

func floatName(bits uint32) string {
	switch bits {
	case WidthHalf:
		return "half"
	case WidthFloat:
		return "float"
	case WidthDouble:
		return "double"
	case WidthX86FP80:
		return "x86_fp80"
	case WidthFP128:
		return "fp128"
	default:
		return "f" + strconv.FormatUint(uint64(bits), 10)
	}
}

// typeName spells %name, quoting names that are not bare identifiers.
func typeName(name string) string {
	return (&lltypes.StructType{TypeName: name}).String()
}
