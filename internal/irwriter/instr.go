package irwriter

import (
	"strconv"
	"strings"

	"irforge/internal/ir"
)

// instr renders one instruction without indentation. Multi-line
// instructions (switch) carry their own line breaks.
func (fe *funcEmitter) instr(in *ir.Instr) string {
	e := fe.emitter
	var sb strings.Builder
	if in.HasResult() {
		sb.WriteString(e.value(in.Result))
		sb.WriteString(" = ")
	}
	sb.WriteString(fe.body(in))
	if e.d.Metadata {
		for _, a := range in.MD {
			sb.WriteString(", !" + a.Kind + " " + e.md.ref(a.Node))
		}
	}
	return sb.String()
}

func (fe *funcEmitter) body(in *ir.Instr) string {
	e := fe.emitter
	t := e.types.Format
	switch in.Kind {
	case ir.InstrAlloca:
		return fe.alloca(&in.Alloca)
	case ir.InstrLoad:
		return fe.load(in)
	case ir.InstrStore:
		return fe.store(&in.Store)
	case ir.InstrBinary:
		return in.Binary.Op.String() + binaryFlags(in.Binary.Flags) + " " +
			e.typed(in.Binary.LHS) + ", " + e.value(in.Binary.RHS)
	case ir.InstrCmp:
		return in.Cmp.Pred.Opcode() + " " + in.Cmp.Pred.String() + " " +
			e.typed(in.Cmp.LHS) + ", " + e.value(in.Cmp.RHS)
	case ir.InstrCast:
		return in.Cast.Op.String() + " " + e.typed(in.Cast.Value) + " to " + t(in.Type)
	case ir.InstrCall:
		return fe.call(in)
	case ir.InstrGEP:
		return fe.gep(&in.GEP)
	case ir.InstrBr:
		return "br " + fe.label(in.Br.Target)
	case ir.InstrCondBr:
		return "br " + e.typed(in.CondBr.Cond) + ", " + fe.label(in.CondBr.Then) + ", " + fe.label(in.CondBr.Else)
	case ir.InstrSwitch:
		cases := make([]string, len(in.Switch.Cases))
		for i, c := range in.Switch.Cases {
			cases[i] = e.typed(c.Value) + ", " + fe.label(c.Target)
		}
		return fe.switchText(in.Switch.Cond, in.Switch.Default, cases)
	case ir.InstrSwitchOld:
		ct := t(e.mod.TypeOf(in.SwitchOld.Cond))
		cases := make([]string, len(in.SwitchOld.Cases))
		for i, c := range in.SwitchOld.Cases {
			cases[i] = ct + " " + strconv.FormatInt(c.Value, 10) + ", " + fe.label(c.Target)
		}
		return fe.switchText(in.SwitchOld.Cond, in.SwitchOld.Default, cases)
	case ir.InstrIndirectBr:
		labels := make([]string, len(in.IndirectBr.Targets))
		for i, b := range in.IndirectBr.Targets {
			labels[i] = fe.label(b)
		}
		return "indirectbr " + e.typed(in.IndirectBr.Addr) + ", [" + strings.Join(labels, ", ") + "]"
	case ir.InstrPhi:
		incoming := make([]string, len(in.Phi.Incoming))
		for i, inc := range in.Phi.Incoming {
			incoming[i] = "[ " + e.value(inc.Value) + ", " + localName(fe.blockName(inc.Block)) + " ]"
		}
		return "phi " + t(in.Type) + " " + strings.Join(incoming, ", ")
	case ir.InstrSelect:
		return "select " + e.typedList([]ir.ValueID{in.Select.Cond, in.Select.True, in.Select.False})
	case ir.InstrExtractElement:
		return "extractelement " + e.typedList([]ir.ValueID{in.ExtractElement.Vector, in.ExtractElement.Index})
	case ir.InstrInsertElement:
		x := in.InsertElement
		return "insertelement " + e.typedList([]ir.ValueID{x.Vector, x.Value, x.Index})
	case ir.InstrExtractValue:
		return "extractvalue " + e.typed(in.ExtractValue.Agg) + indexList(in.ExtractValue.Indices)
	case ir.InstrInsertValue:
		return "insertvalue " + e.typed(in.InsertValue.Agg) + ", " + e.typed(in.InsertValue.Value) + indexList(in.InsertValue.Indices)
	case ir.InstrShuffleVector:
		x := in.ShuffleVector
		return "shufflevector " + e.typedList([]ir.ValueID{x.V1, x.V2, x.Mask})
	case ir.InstrRet:
		if !in.Ret.HasValue {
			return "ret void"
		}
		return "ret " + e.typed(in.Ret.Value)
	case ir.InstrUnreachable:
		return "unreachable"
	default:
		return "; TODO: instruction kind " + strconv.Itoa(int(in.Kind))
	}
}

func binaryFlags(f ir.BinaryFlags) string {
	var sb strings.Builder
	if f&ir.FlagNUW != 0 {
		sb.WriteString(" nuw")
	}
	if f&ir.FlagNSW != 0 {
		sb.WriteString(" nsw")
	}
	if f&ir.FlagExact != 0 {
		sb.WriteString(" exact")
	}
	return sb.String()
}

func indexList(indices []uint32) string {
	var sb strings.Builder
	for _, i := range indices {
		sb.WriteString(", ")
		sb.WriteString(strconv.FormatUint(uint64(i), 10))
	}
	return sb.String()
}

func (fe *funcEmitter) alloca(a *ir.AllocaInstr) string {
	e := fe.emitter
	s := "alloca " + e.types.Format(a.Elem)
	if !e.isOne(a.Count) {
		s += ", " + e.typed(a.Count)
	}
	return s + alignSuffix(a.Align)
}

// isOne reports the implicit element count of alloca.
func (e *Emitter) isOne(id ir.ValueID) bool {
	if id == ir.NoValueID {
		return true
	}
	sym, ok := e.mod.Symbol(id)
	if !ok || sym.Const == nil {
		return false
	}
	v, ok := sym.Const.IntValue()
	return ok && v.IsInt64() && v.Int64() == 1
}

// atomicTail renders the " singlethread ordering" part of atomic memory
// operations.
func atomicTail(o ir.MemOrder) string {
	if !o.Atomic {
		return ""
	}
	s := ""
	if o.SingleThread {
		s += " singlethread"
	}
	return s + " " + o.Ordering.String()
}

func (fe *funcEmitter) load(in *ir.Instr) string {
	e := fe.emitter
	l := in.Load
	var sb strings.Builder
	sb.WriteString("load")
	if l.Atomic {
		sb.WriteString(" atomic")
	}
	if l.Volatile {
		sb.WriteString(" volatile")
	}
	sb.WriteByte(' ')
	if e.d.ExplicitPointee {
		sb.WriteString(e.types.Format(in.Type))
		sb.WriteString(", ")
	}
	sb.WriteString(e.typed(l.Ptr))
	sb.WriteString(atomicTail(l.MemOrder))
	sb.WriteString(alignSuffix(l.Align))
	return sb.String()
}

func (fe *funcEmitter) store(s *ir.StoreInstr) string {
	e := fe.emitter
	var sb strings.Builder
	sb.WriteString("store ")
	if s.Atomic {
		sb.WriteString("atomic ")
	}
	if s.Volatile {
		sb.WriteString("volatile ")
	}
	sb.WriteString(e.typed(s.Value))
	sb.WriteString(", ")
	sb.WriteString(e.typed(s.Ptr))
	sb.WriteString(atomicTail(s.MemOrder))
	sb.WriteString(alignSuffix(s.Align))
	return sb.String()
}

func (fe *funcEmitter) gep(g *ir.GEPInstr) string {
	e := fe.emitter
	var sb strings.Builder
	sb.WriteString("getelementptr ")
	if g.Inbounds {
		sb.WriteString("inbounds ")
	}
	if e.d.ExplicitPointee {
		sb.WriteString(e.types.Format(g.SrcElem))
		sb.WriteString(", ")
	}
	sb.WriteString(e.typed(g.Base))
	for _, idx := range g.Indices {
		sb.WriteString(", ")
		sb.WriteString(e.typed(idx))
	}
	return sb.String()
}

// call prints the callee signature only when the return type alone does
// not determine it: variadic callees and callees returning a function
// pointer.
func (fe *funcEmitter) call(in *ir.Instr) string {
	e := fe.emitter
	c := in.Call
	info, _ := e.types.FnInfo(c.FnType)
	var sb strings.Builder
	sb.WriteString("call ")
	if info != nil && (info.Variadic || e.types.ReturnsFuncPointer(c.FnType)) {
		sb.WriteString(e.types.Format(c.FnType))
		if e.d.CallPointerType {
			sb.WriteByte('*')
		}
	} else {
		result := in.Type
		if info != nil {
			result = info.Result
		}
		sb.WriteString(e.types.Format(result))
	}
	sb.WriteByte(' ')
	sb.WriteString(e.value(c.Callee))
	sb.WriteByte('(')
	sb.WriteString(e.typedList(c.Args))
	sb.WriteByte(')')
	return sb.String()
}

func (fe *funcEmitter) switchText(cond ir.ValueID, def ir.BlockID, cases []string) string {
	var sb strings.Builder
	sb.WriteString("switch ")
	sb.WriteString(fe.emitter.typed(cond))
	sb.WriteString(", ")
	sb.WriteString(fe.label(def))
	sb.WriteString(" [")
	for _, c := range cases {
		sb.WriteString("\n    ")
		sb.WriteString(c)
	}
	sb.WriteString("\n  ]")
	return sb.String()
}
