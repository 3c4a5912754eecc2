package irwriter

import (
	"strconv"
	"strings"

	"irforge/internal/ir"
	"irforge/internal/numeric"
	"irforge/internal/types"
)

// value renders an operand without its type.
func (e *Emitter) value(id ir.ValueID) string {
	sym, ok := e.mod.Symbol(id)
	if !ok {
		return "<badref>"
	}
	switch sym.Kind {
	case ir.SymConst:
		return e.constant(sym.Const)
	case ir.SymFunc, ir.SymGlobal, ir.SymAlias:
		return globalName(sym.Name)
	default:
		if sym.Name == "" {
			return "<badref>"
		}
		return localName(sym.Name)
	}
}

// typed renders "T v".
func (e *Emitter) typed(id ir.ValueID) string {
	return e.types.Format(e.mod.TypeOf(id)) + " " + e.value(id)
}

func (e *Emitter) typedList(ids []ir.ValueID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = e.typed(id)
	}
	return strings.Join(parts, ", ")
}

func (e *Emitter) constant(c *ir.Constant) string {
	if c == nil {
		return "<badref>"
	}
	switch c.Kind {
	case ir.ConstInt:
		if e.isBool(c.Type) {
			return strconv.FormatBool(c.Int != 0)
		}
		return strconv.FormatInt(c.Int, 10)
	case ir.ConstBigInt:
		if c.Big == nil {
			return "0"
		}
		if e.isBool(c.Type) {
			return strconv.FormatBool(c.Big.Sign() != 0)
		}
		return c.Big.String()
	case ir.ConstFloat:
		return numeric.FormatFloat(uint32(c.Bits))
	case ir.ConstDouble:
		return numeric.FormatDouble(c.Bits)
	case ir.ConstFP80:
		return c.FP80.String()
	case ir.ConstString:
		return numeric.EscapeString(c.Bytes, e.types.Count(c.Type))
	case ir.ConstArray:
		return "[" + e.typedList(c.Elems) + "]"
	case ir.ConstVector:
		return "<" + e.typedList(c.Elems) + ">"
	case ir.ConstStruct:
		body := "{ " + e.typedList(c.Elems) + " }"
		if len(c.Elems) == 0 {
			body = "{}"
		}
		if info, ok := e.types.StructInfo(c.Type); ok && info.Packed {
			return "<" + body + ">"
		}
		return body
	case ir.ConstNull:
		return e.null(c)
	case ir.ConstUndef:
		return "undef"
	case ir.ConstCast:
		if len(c.Operands) != 1 {
			return "<badref>"
		}
		return c.Cast.String() + " (" + e.typed(c.Operands[0]) + " to " + e.types.Format(c.Type) + ")"
	case ir.ConstBinary:
		return c.Binary.String() + " (" + e.typedList(c.Operands) + ")"
	case ir.ConstCompare:
		return c.Pred.Opcode() + " " + c.Pred.String() + " (" + e.typedList(c.Operands) + ")"
	case ir.ConstGEP:
		return e.constGEP(c)
	case ir.ConstInlineAsm:
		return inlineAsm(c.Asm)
	case ir.ConstBlockAddress:
		return e.blockAddress(c)
	default:
		return "undef ; TODO: constant kind " + strconv.Itoa(int(c.Kind))
	}
}

func (e *Emitter) isBool(t types.TypeID) bool {
	return t == e.types.Builtins().I1
}

func (e *Emitter) null(c *ir.Constant) string {
	if c.IsAggregateZero(e.types) {
		return "zeroinitializer"
	}
	tt, ok := e.types.Lookup(c.Type)
	if !ok {
		return "<badref>"
	}
	switch {
	case c.Type == e.types.Builtins().I1:
		return "false"
	case tt.IsInteger():
		return "0"
	case tt.Kind == types.KindFloat && tt.Bits == types.WidthX86FP80:
		return numeric.FP80{}.String()
	case tt.IsFloat():
		return numeric.FormatDouble(0)
	default:
		return "null"
	}
}

func (e *Emitter) constGEP(c *ir.Constant) string {
	if len(c.Operands) == 0 {
		return "<badref>"
	}
	var sb strings.Builder
	sb.WriteString("getelementptr ")
	if c.Inbounds {
		sb.WriteString("inbounds ")
	}
	sb.WriteByte('(')
	if e.d.ExplicitPointee {
		sb.WriteString(e.types.Format(c.SrcElem))
		sb.WriteString(", ")
	}
	sb.WriteString(e.typedList(c.Operands))
	sb.WriteByte(')')
	return sb.String()
}

func inlineAsm(a ir.InlineAsm) string {
	var sb strings.Builder
	sb.WriteString("asm ")
	if a.SideEffect {
		sb.WriteString("sideeffect ")
	}
	if a.AlignStack {
		sb.WriteString("alignstack ")
	}
	sb.WriteString(`"` + numeric.EscapeBytes([]byte(a.Asm)) + `", `)
	sb.WriteString(`"` + numeric.EscapeBytes([]byte(a.Constraints)) + `"`)
	return sb.String()
}

func (e *Emitter) blockAddress(c *ir.Constant) string {
	sym, ok := e.mod.Symbol(c.Func)
	if !ok || sym.Func == nil {
		return "<badref>"
	}
	fe := &funcEmitter{emitter: e, f: sym.Func}
	return "blockaddress(" + globalName(sym.Func.Name) + ", " + localName(fe.blockName(c.Block)) + ")"
}
