package ir

import (
	"fmt"

	"github.com/llir/llvm/ir/enum"
)

// BinaryOp enumerates binary operators, integer first.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpUDiv
	OpSDiv
	OpURem
	OpSRem
	OpShl
	OpLShr
	OpAShr
	OpAnd
	OpOr
	OpXor
	OpFAdd
	OpFSub
	OpFMul
	OpFDiv
	OpFRem
)

var binaryNames = [...]string{
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpUDiv: "udiv", OpSDiv: "sdiv",
	OpURem: "urem", OpSRem: "srem", OpShl: "shl", OpLShr: "lshr", OpAShr: "ashr",
	OpAnd: "and", OpOr: "or", OpXor: "xor",
	OpFAdd: "fadd", OpFSub: "fsub", OpFMul: "fmul", OpFDiv: "fdiv", OpFRem: "frem",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryNames) {
		return binaryNames[op]
	}
	return fmt.Sprintf("BinaryOp(%d)", op)
}

// IsFloat reports fadd..frem.
func (op BinaryOp) IsFloat() bool {
	return op >= OpFAdd && op <= OpFRem
}

// Float maps an integer operator to its floating counterpart where one
// exists (add/sub/mul, sdiv/udiv to fdiv, srem/urem to frem).
func (op BinaryOp) Float() (BinaryOp, bool) {
	switch op {
	case OpAdd:
		return OpFAdd, true
	case OpSub:
		return OpFSub, true
	case OpMul:
		return OpFMul, true
	case OpUDiv, OpSDiv:
		return OpFDiv, true
	case OpURem, OpSRem:
		return OpFRem, true
	}
	if op.IsFloat() {
		return op, true
	}
	return op, false
}

// BinaryFlags are the optional wrap/exact modifiers.
type BinaryFlags uint8

const (
	FlagNUW BinaryFlags = 1 << iota
	FlagNSW
	FlagExact
)

// CastOp enumerates conversion operators.
type CastOp uint8

const (
	CastTrunc CastOp = iota
	CastZExt
	CastSExt
	CastFPToUI
	CastFPToSI
	CastUIToFP
	CastSIToFP
	CastFPTrunc
	CastFPExt
	CastPtrToInt
	CastIntToPtr
	CastBitcast
	CastAddrSpaceCast
)

var castNames = [...]string{
	CastTrunc: "trunc", CastZExt: "zext", CastSExt: "sext",
	CastFPToUI: "fptoui", CastFPToSI: "fptosi", CastUIToFP: "uitofp", CastSIToFP: "sitofp",
	CastFPTrunc: "fptrunc", CastFPExt: "fpext",
	CastPtrToInt: "ptrtoint", CastIntToPtr: "inttoptr",
	CastBitcast: "bitcast", CastAddrSpaceCast: "addrspacecast",
}

func (op CastOp) String() string {
	if int(op) < len(castNames) {
		return castNames[op]
	}
	return fmt.Sprintf("CastOp(%d)", op)
}

// CmpPred is a comparison predicate; float predicates come first.
type CmpPred uint8

const (
	FCmpFalse CmpPred = iota
	FCmpOEQ
	FCmpOGT
	FCmpOGE
	FCmpOLT
	FCmpOLE
	FCmpONE
	FCmpORD
	FCmpUNO
	FCmpUEQ
	FCmpUGT
	FCmpUGE
	FCmpULT
	FCmpULE
	FCmpUNE
	FCmpTrue
	ICmpEQ
	ICmpNE
	ICmpUGT
	ICmpUGE
	ICmpULT
	ICmpULE
	ICmpSGT
	ICmpSGE
	ICmpSLT
	ICmpSLE
)

var fpreds = [...]enum.FPred{
	FCmpFalse: enum.FPredFalse, FCmpOEQ: enum.FPredOEQ, FCmpOGT: enum.FPredOGT,
	FCmpOGE: enum.FPredOGE, FCmpOLT: enum.FPredOLT, FCmpOLE: enum.FPredOLE,
	FCmpONE: enum.FPredONE, FCmpORD: enum.FPredORD, FCmpUNO: enum.FPredUNO,
	FCmpUEQ: enum.FPredUEQ, FCmpUGT: enum.FPredUGT, FCmpUGE: enum.FPredUGE,
	FCmpULT: enum.FPredULT, FCmpULE: enum.FPredULE, FCmpUNE: enum.FPredUNE,
	FCmpTrue: enum.FPredTrue,
}

var ipreds = [...]enum.IPred{
	ICmpEQ - ICmpEQ: enum.IPredEQ, ICmpNE - ICmpEQ: enum.IPredNE,
	ICmpUGT - ICmpEQ: enum.IPredUGT, ICmpUGE - ICmpEQ: enum.IPredUGE,
	ICmpULT - ICmpEQ: enum.IPredULT, ICmpULE - ICmpEQ: enum.IPredULE,
	ICmpSGT - ICmpEQ: enum.IPredSGT, ICmpSGE - ICmpEQ: enum.IPredSGE,
	ICmpSLT - ICmpEQ: enum.IPredSLT, ICmpSLE - ICmpEQ: enum.IPredSLE,
}

// IsFloat reports fcmp predicates.
func (p CmpPred) IsFloat() bool {
	return p <= FCmpTrue
}

// Opcode returns "icmp" or "fcmp".
func (p CmpPred) Opcode() string {
	if p.IsFloat() {
		return "fcmp"
	}
	return "icmp"
}

func (p CmpPred) String() string {
	switch {
	case p.IsFloat():
		return fpreds[p].String()
	case p <= ICmpSLE:
		return ipreds[p-ICmpEQ].String()
	default:
		return fmt.Sprintf("CmpPred(%d)", p)
	}
}

// IsNotEqual reports ne, one and une.
func (p CmpPred) IsNotEqual() bool {
	return p == ICmpNE || p == FCmpONE || p == FCmpUNE
}
