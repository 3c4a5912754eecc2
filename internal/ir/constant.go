package ir

import (
	"math/big"

	"irforge/internal/numeric"
	"irforge/internal/types"
)

// ConstKind enumerates constant payloads.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstBigInt
	ConstFloat
	ConstDouble
	ConstFP80
	ConstString
	ConstArray
	ConstStruct
	ConstVector
	ConstNull
	ConstUndef
	ConstCast
	ConstBinary
	ConstCompare
	ConstGEP
	ConstInlineAsm
	ConstBlockAddress
)

// Constant is an immutable typed literal. Aggregate elements and
// expression operands refer to other registered symbols.
type Constant struct {
	Kind ConstKind
	Type types.TypeID

	Int  int64
	Big  *big.Int
	Bits uint64 // ConstFloat keeps single bits in the low word
	FP80 numeric.FP80

	Bytes []byte
	Elems []ValueID

	Cast     CastOp
	Binary   BinaryOp
	Pred     CmpPred
	Operands []ValueID
	Inbounds bool
	SrcElem  types.TypeID // pointee of a GEP base

	Asm InlineAsm

	Func  ValueID
	Block BlockID
}

// InlineAsm describes an inline assembly callee.
type InlineAsm struct {
	Asm         string
	Constraints string
	SideEffect  bool
	AlignStack  bool
}

// IsAggregateZero reports a null constant of aggregate type; these print as
// zeroinitializer.
func (c *Constant) IsAggregateZero(in *types.Interner) bool {
	if c == nil || c.Kind != ConstNull {
		return false
	}
	tt, ok := in.Lookup(c.Type)
	return ok && tt.IsAggregate()
}

// IntValue returns integer constants as a big.Int.
func (c *Constant) IntValue() (*big.Int, bool) {
	switch {
	case c == nil:
		return nil, false
	case c.Kind == ConstInt:
		return big.NewInt(c.Int), true
	case c.Kind == ConstBigInt && c.Big != nil:
		return new(big.Int).Set(c.Big), true
	default:
		return nil, false
	}
}
