package ir

import (
	"github.com/llir/llvm/ir/enum"

	"irforge/internal/types"
)

// InstrKind enumerates instruction kinds.
type InstrKind uint8

const (
	InstrAlloca InstrKind = iota
	InstrLoad
	InstrStore
	InstrBinary
	InstrCmp
	InstrCast
	InstrCall
	InstrGEP
	InstrBr
	InstrCondBr
	InstrSwitch
	InstrSwitchOld
	InstrIndirectBr
	InstrPhi
	InstrSelect
	InstrExtractElement
	InstrInsertElement
	InstrExtractValue
	InstrInsertValue
	InstrShuffleVector
	InstrRet
	InstrUnreachable
)

// Instr is one instruction. Only the payload matching Kind is meaningful.
type Instr struct {
	Kind   InstrKind
	Result ValueID      // NoValueID for instructions without a value
	Type   types.TypeID // result type; void for stores and terminators

	Alloca         AllocaInstr
	Load           LoadInstr
	Store          StoreInstr
	Binary         BinaryInstr
	Cmp            CmpInstr
	Cast           CastInstr
	Call           CallInstr
	GEP            GEPInstr
	Br             BrInstr
	CondBr         CondBrInstr
	Switch         SwitchInstr
	SwitchOld      SwitchOldInstr
	IndirectBr     IndirectBrInstr
	Phi            PhiInstr
	Select         SelectInstr
	ExtractElement ExtractElementInstr
	InsertElement  InsertElementInstr
	ExtractValue   ExtractValueInstr
	InsertValue    InsertValueInstr
	ShuffleVector  ShuffleVectorInstr
	Ret            RetInstr

	MD []MDAttachment
}

type AllocaInstr struct {
	Elem  types.TypeID
	Count ValueID
	Align uint8 // log2(align)+1, 0 = unspecified
}

// MemOrder carries the atomic and volatile modifiers of loads and stores.
type MemOrder struct {
	Volatile     bool
	Atomic       bool
	Ordering     enum.AtomicOrdering
	SingleThread bool
}

type LoadInstr struct {
	Ptr   ValueID
	Align uint8
	MemOrder
}

type StoreInstr struct {
	Ptr   ValueID
	Value ValueID
	Align uint8
	MemOrder
}

type BinaryInstr struct {
	Op    BinaryOp
	Flags BinaryFlags
	LHS   ValueID
	RHS   ValueID
}

type CmpInstr struct {
	Pred CmpPred
	LHS  ValueID
	RHS  ValueID
}

type CastInstr struct {
	Op    CastOp
	Value ValueID
}

type CallInstr struct {
	Callee ValueID
	FnType types.TypeID
	Args   []ValueID
}

type GEPInstr struct {
	Base     ValueID
	SrcElem  types.TypeID
	Indices  []ValueID
	Inbounds bool
}

type BrInstr struct {
	Target BlockID
}

type CondBrInstr struct {
	Cond ValueID
	Then BlockID
	Else BlockID
}

type SwitchCase struct {
	Value  ValueID
	Target BlockID
}

type SwitchInstr struct {
	Cond    ValueID
	Default BlockID
	Cases   []SwitchCase
}

// SwitchOldCase is a case of the legacy encoding that stores raw integers.
type SwitchOldCase struct {
	Value  int64
	Target BlockID
}

type SwitchOldInstr struct {
	Cond    ValueID
	Default BlockID
	Cases   []SwitchOldCase
}

type IndirectBrInstr struct {
	Addr    ValueID
	Targets []BlockID
}

type PhiIncoming struct {
	Value ValueID
	Block BlockID
}

type PhiInstr struct {
	Incoming []PhiIncoming
}

type SelectInstr struct {
	Cond  ValueID
	True  ValueID
	False ValueID
}

type ExtractElementInstr struct {
	Vector ValueID
	Index  ValueID
}

type InsertElementInstr struct {
	Vector ValueID
	Value  ValueID
	Index  ValueID
}

type ExtractValueInstr struct {
	Agg     ValueID
	Indices []uint32
}

type InsertValueInstr struct {
	Agg     ValueID
	Value   ValueID
	Indices []uint32
}

type ShuffleVectorInstr struct {
	V1   ValueID
	V2   ValueID
	Mask ValueID
}

type RetInstr struct {
	HasValue bool
	Value    ValueID
}

// IsTerminator reports instructions that end a block.
func (k InstrKind) IsTerminator() bool {
	switch k {
	case InstrBr, InstrCondBr, InstrSwitch, InstrSwitchOld, InstrIndirectBr, InstrRet, InstrUnreachable:
		return true
	default:
		return false
	}
}

// HasResult reports whether the instruction defines a value.
func (in *Instr) HasResult() bool {
	return in.Result != NoValueID
}

// Successors lists every block index referenced by the instruction.
func (in *Instr) Successors() []BlockID {
	switch in.Kind {
	case InstrBr:
		return []BlockID{in.Br.Target}
	case InstrCondBr:
		return []BlockID{in.CondBr.Then, in.CondBr.Else}
	case InstrSwitch:
		out := []BlockID{in.Switch.Default}
		for _, c := range in.Switch.Cases {
			out = append(out, c.Target)
		}
		return out
	case InstrSwitchOld:
		out := []BlockID{in.SwitchOld.Default}
		for _, c := range in.SwitchOld.Cases {
			out = append(out, c.Target)
		}
		return out
	case InstrIndirectBr:
		return append([]BlockID(nil), in.IndirectBr.Targets...)
	case InstrPhi:
		out := make([]BlockID, 0, len(in.Phi.Incoming))
		for _, inc := range in.Phi.Incoming {
			out = append(out, inc.Block)
		}
		return out
	default:
		return nil
	}
}

// remapBlocks rewrites every stored block index through f.
func (in *Instr) remapBlocks(f func(BlockID) BlockID) {
	switch in.Kind {
	case InstrBr:
		in.Br.Target = f(in.Br.Target)
	case InstrCondBr:
		in.CondBr.Then = f(in.CondBr.Then)
		in.CondBr.Else = f(in.CondBr.Else)
	case InstrSwitch:
		in.Switch.Default = f(in.Switch.Default)
		for i := range in.Switch.Cases {
			in.Switch.Cases[i].Target = f(in.Switch.Cases[i].Target)
		}
	case InstrSwitchOld:
		in.SwitchOld.Default = f(in.SwitchOld.Default)
		for i := range in.SwitchOld.Cases {
			in.SwitchOld.Cases[i].Target = f(in.SwitchOld.Cases[i].Target)
		}
	case InstrIndirectBr:
		for i := range in.IndirectBr.Targets {
			in.IndirectBr.Targets[i] = f(in.IndirectBr.Targets[i])
		}
	case InstrPhi:
		for i := range in.Phi.Incoming {
			in.Phi.Incoming[i].Block = f(in.Phi.Incoming[i].Block)
		}
	}
}

// Operands lists the value operands in textual order.
func (in *Instr) Operands() []ValueID {
	switch in.Kind {
	case InstrAlloca:
		return []ValueID{in.Alloca.Count}
	case InstrLoad:
		return []ValueID{in.Load.Ptr}
	case InstrStore:
		return []ValueID{in.Store.Value, in.Store.Ptr}
	case InstrBinary:
		return []ValueID{in.Binary.LHS, in.Binary.RHS}
	case InstrCmp:
		return []ValueID{in.Cmp.LHS, in.Cmp.RHS}
	case InstrCast:
		return []ValueID{in.Cast.Value}
	case InstrCall:
		return append([]ValueID{in.Call.Callee}, in.Call.Args...)
	case InstrGEP:
		return append([]ValueID{in.GEP.Base}, in.GEP.Indices...)
	case InstrCondBr:
		return []ValueID{in.CondBr.Cond}
	case InstrSwitch:
		out := []ValueID{in.Switch.Cond}
		for _, c := range in.Switch.Cases {
			out = append(out, c.Value)
		}
		return out
	case InstrSwitchOld:
		return []ValueID{in.SwitchOld.Cond}
	case InstrIndirectBr:
		return []ValueID{in.IndirectBr.Addr}
	case InstrPhi:
		out := make([]ValueID, 0, len(in.Phi.Incoming))
		for _, inc := range in.Phi.Incoming {
			out = append(out, inc.Value)
		}
		return out
	case InstrSelect:
		return []ValueID{in.Select.Cond, in.Select.True, in.Select.False}
	case InstrExtractElement:
		return []ValueID{in.ExtractElement.Vector, in.ExtractElement.Index}
	case InstrInsertElement:
		return []ValueID{in.InsertElement.Vector, in.InsertElement.Value, in.InsertElement.Index}
	case InstrExtractValue:
		return []ValueID{in.ExtractValue.Agg}
	case InstrInsertValue:
		return []ValueID{in.InsertValue.Agg, in.InsertValue.Value}
	case InstrShuffleVector:
		return []ValueID{in.ShuffleVector.V1, in.ShuffleVector.V2, in.ShuffleVector.Mask}
	case InstrRet:
		if in.Ret.HasValue {
			return []ValueID{in.Ret.Value}
		}
	}
	return nil
}
