package fixtures

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"irforge/internal/ir"
	"irforge/internal/irbuilder"
	"irforge/internal/numeric"
	"irforge/internal/oracle"
)

// i1Ops are the operators exercised on booleans; shifts on i1 only ever
// shift by zero and are left out.
func i1Ops() []ir.BinaryOp {
	var ops []ir.BinaryOp
	for _, op := range oracle.IntegerOps() {
		switch op {
		case ir.OpShl, ir.OpLShr, ir.OpAShr:
			continue
		}
		ops = append(ops, op)
	}
	return ops
}

type boolPair struct{ lhs, rhs, want bool }

// definedBoolPairs lists the operand combinations with a defined result.
func definedBoolPairs(op ir.BinaryOp) []boolPair {
	var out []boolPair
	for _, lhs := range []bool{false, true} {
		for _, rhs := range []bool{false, true} {
			want, err := oracle.EvalBool(op, lhs, rhs)
			if err != nil {
				continue
			}
			out = append(out, boolPair{lhs, rhs, want})
		}
	}
	return out
}

func binaryI1Cases() []Case {
	var cases []Case
	for _, op := range i1Ops() {
		for _, p := range definedBoolPairs(op) {
			cases = append(cases,
				Case{
					File:  fmt.Sprintf("test_i1_%s_(%t-%t).ll", op, p.lhs, p.rhs),
					Build: lazy(func(g *gen) { binaryI1(g, op, p) }),
				},
				Case{
					File:  fmt.Sprintf("test_i1_asm_%s_(%t-%t).ll", op, p.lhs, p.rhs),
					Build: lazy(func(g *gen) { binaryI1Asm(g, op, p) }),
				})
		}
		cases = append(cases, Case{
			File:  fmt.Sprintf("test_i1_vector_%s.ll", op),
			Build: lazy(func(g *gen) { binaryI1Vector(g, op) }),
		})
	}
	return cases
}

func binaryI1(g *gen, op ir.BinaryOp, p boolPair) {
	main := g.mainI1()
	res := g.v(main.b.BinOp(op, g.mb.I1(p.lhs), g.mb.I1(p.rhs)))
	bad := g.v(main.s.Cmp(ir.ICmpNE, val(res), irbuilder.Bool(p.want)))
	g.ok(main.b.Ret(bad))
	main.b.ExitFunction()
}

// binaryI1Asm computes the operator with byte-sized x86 instructions and
// keeps bit 0 of the result.
func binaryI1Asm(g *gen, op ir.BinaryOp, p boolPair) {
	i1 := g.t.I1
	text, err := i1AsmText(op)
	g.ok(err)
	asm := g.mb.InlineAsm(g.fn(i1, i1, i1), ir.InlineAsm{
		Asm:         text,
		Constraints: "=r,r,r,~{eax},~{dirflag},~{fpsr},~{flags}",
		SideEffect:  true,
	})
	main := g.mainI1()
	res := g.v(main.s.Call(asm, irbuilder.Bool(p.lhs), irbuilder.Bool(p.rhs)))
	bad := g.v(main.s.Cmp(ir.ICmpNE, val(res), irbuilder.Bool(p.want)))
	g.ok(main.b.Ret(bad))
	main.b.ExitFunction()
}

func i1AsmText(op ir.BinaryOp) (string, error) {
	var sb strings.Builder
	sb.WriteString("movb $2, %al;")
	switch op {
	case ir.OpAdd:
		sb.WriteString("addb $1, %al;")
	case ir.OpSub:
		sb.WriteString("subb $1, %al;")
	case ir.OpMul:
		sb.WriteString("mulb $1;")
	case ir.OpUDiv:
		sb.WriteString("movzbw $1, %ax;divb $2;")
	case ir.OpSDiv:
		sb.WriteString("movsbw $1, %ax;idivb $2;")
	case ir.OpURem:
		sb.WriteString("movzbw $1, %ax;divb $2;movb %ah, %al;")
	case ir.OpSRem:
		sb.WriteString("movsbw $1, %ax;idivb $2;movb %ah, %al;")
	case ir.OpAnd:
		sb.WriteString("andb $1, %al;")
	case ir.OpOr:
		sb.WriteString("orb $1, %al;")
	case ir.OpXor:
		sb.WriteString("xorb $1, %al;")
	default:
		return "", fmt.Errorf("no i1 assembly for %s", op)
	}
	sb.WriteString("andb $$1, %al;movb %al, $0;")
	return sb.String(), nil
}

// binaryI1Vector applies the operator lane-wise to every defined
// combination at once.
func binaryI1Vector(g *gen, op ir.BinaryOp) {
	pairs := definedBoolPairs(op)
	vt := g.in.Vector(g.t.I1, uint64(len(pairs)))
	lhs := make([]irbuilder.Operand, len(pairs))
	rhs := make([]irbuilder.Operand, len(pairs))
	want := make([]irbuilder.Operand, len(pairs))
	for i, p := range pairs {
		lhs[i], rhs[i], want[i] = irbuilder.Bool(p.lhs), irbuilder.Bool(p.rhs), irbuilder.Bool(p.want)
	}

	main := g.mainI1()
	s := main.s
	a := g.v(s.FillVector(g.v(s.Alloca(vt)), lhs...))
	b := g.v(s.FillVector(g.v(s.Alloca(vt)), rhs...))
	w := g.v(s.FillVector(g.v(s.Alloca(vt)), want...))
	res := g.v(main.b.BinOp(op, a, b))
	bad := g.v(s.CompareVector(ir.ICmpNE, res, w))
	g.ok(main.b.Ret(bad))
	main.b.ExitFunction()
}

// Seeds for the two lanes of the vector operator programs.
const (
	vectorSeed1a = 111191111
	vectorSeed1b = 792606555396976
	vectorSeed2a = 200560490131
	vectorSeed2b = 1442968193
)

// vectorLane picks operands for one lane from two seeds: shift amounts are
// reduced below the width, and a right operand that makes the operation
// undefined is bumped by two until it no longer does.
func vectorLane(op ir.BinaryOp, bits uint32, seedA, seedB int64) (lhs, rhs, want int64, err error) {
	lhs = numeric.WrapInt64(seedA, bits)
	rhs = numeric.WrapInt64(seedB, bits)
	switch op {
	case ir.OpShl, ir.OpLShr, ir.OpAShr:
		rhs = int64(uint64(rhs) % uint64(bits))
	}
	for range 64 {
		want, err = oracle.EvalInt64(op, bits, lhs, rhs)
		if !errors.Is(err, oracle.ErrUndefined) {
			return lhs, rhs, want, err
		}
		rhs = numeric.WrapInt64(rhs+2, bits)
	}
	return 0, 0, 0, fmt.Errorf("%s i%d: no defined operands near seed %d", op, bits, seedB)
}

func binaryVectorCases() []Case {
	var cases []Case
	for _, bits := range []uint32{8, 16, 32, 64} {
		for _, op := range oracle.IntegerOps() {
			cases = append(cases, Case{
				File:  fmt.Sprintf("test_vector_i%d_%s.ll", bits, op),
				Build: lazy(func(g *gen) { binaryVector(g, op, bits) }),
			})
		}
	}
	return cases
}

// binaryVector applies the operator to a two-lane vector and compares the
// result with the oracle.
func binaryVector(g *gen, op ir.BinaryOp, bits uint32) {
	a0, b0, w0, err := vectorLane(op, bits, vectorSeed1a, vectorSeed1b)
	g.ok(err)
	a1, b1, w1, err := vectorLane(op, bits, vectorSeed2a, vectorSeed2b)
	g.ok(err)

	vt := g.in.Vector(g.in.Int(bits), 2)
	main := g.mainI1()
	s := main.s
	lhs := g.v(s.FillVector(g.v(s.Alloca(vt)), num(a0), num(a1)))
	rhs := g.v(s.FillVector(g.v(s.Alloca(vt)), num(b0), num(b1)))
	want := g.v(s.FillVector(g.v(s.Alloca(vt)), num(w0), num(w1)))
	res := g.v(main.b.BinOp(op, lhs, rhs))
	bad := g.v(s.CompareVector(ir.ICmpNE, res, want))
	g.ok(main.b.Ret(bad))
	main.b.ExitFunction()
}

// integerOperands are the scalar operand pairs each operator is checked
// with, before wrapping to the width under test.
var integerOperands = [][2]int64{
	{7, 3},
	{-7, 3},
	{7, -3},
	{-1, 1},
	{0x5A, 2},
	{1 << 62, 5},
	{-1 << 63, -1},
}

func integerBinaryCases() []Case {
	var cases []Case
	for _, bits := range []uint32{8, 12, 16, 32, 48, 64} {
		for _, op := range oracle.IntegerOps() {
			cases = append(cases, Case{
				File:  fmt.Sprintf("test_i%d_%s.ll", bits, op),
				Build: lazy(func(g *gen) { integerBinary(g, op, bits) }),
			})
		}
	}
	return cases
}

// integerBinary applies the operator to constant pairs and ors together
// the mismatches against the oracle. Pairs without a defined result are
// skipped.
func integerBinary(g *gen, op ir.BinaryOp, bits uint32) {
	typ := g.in.Int(bits)
	main := g.mainI1()
	b, s := main.b, main.s
	acc := g.mb.I1(false)
	for _, pair := range integerOperands {
		lhs, rhs := big.NewInt(pair[0]), big.NewInt(pair[1])
		want, err := oracle.Eval(op, bits, lhs, rhs)
		if errors.Is(err, oracle.ErrUndefined) {
			continue
		}
		g.ok(err)
		res := g.v(b.BinOp(op, g.mb.BigInt(typ, lhs), g.mb.BigInt(typ, rhs)))
		bad := g.v(s.Cmp(ir.ICmpNE, val(res), irbuilder.Big(want)))
		acc = g.v(b.BinOp(ir.OpOr, acc, bad))
	}
	g.ok(b.Ret(acc))
	b.ExitFunction()
}
