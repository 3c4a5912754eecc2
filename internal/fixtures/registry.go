// Package fixtures holds the programs that generate the .ll test corpus.
// Each Suite enumerates its cases up front; a case builds its module only
// when asked, so callers can list, filter and build cases in parallel.
package fixtures

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"irforge/internal/ir"
)

// ErrUnknownSuite is returned by Select for names no suite answers to.
var ErrUnknownSuite = errors.New("unknown suite")

// Case is one output file of a suite.
type Case struct {
	File  string // file name inside the suite directory
	Build func() (*ir.Module, error)
}

// Suite is a family of generated programs sharing an output directory.
type Suite struct {
	Name    string
	Dir     string
	Summary string
	cases   func() []Case
}

// Cases enumerates the suite without building anything.
func (s Suite) Cases() []Case {
	if s.cases == nil {
		return nil
	}
	return s.cases()
}

var registry = []Suite{
	{Name: "fibonacci", Dir: "fibonacci", Summary: "recursive calls and conditional branches", cases: fibonacciCases},
	{Name: "phi", Dir: "phi", Summary: "switch dispatch joined by a phi node", cases: phiCases},
	{Name: "vararg", Dir: "vararg", Summary: "x86-64 va_start/va_arg/va_end lowering", cases: varargCases},
	{Name: "float-compare", Dir: "FloatCompareOperator", Summary: "fcmp predicates on float, double and x86_fp80", cases: floatCompareCases},
	{Name: "vector-loop", Dir: "performance/vector", Summary: "vector accumulation loop", cases: vectorLoopCases},
	{Name: "vector-bitcast", Dir: "castVector", Summary: "bitcasts between vectors and scalars of equal size", cases: vectorBitcastCases},
	{Name: "binary-i1", Dir: "binaryI1", Summary: "i1 binary operators: scalar, inline assembly and vector", cases: binaryI1Cases},
	{Name: "binary-vector", Dir: "vector", Summary: "integer binary operators on two-lane vectors", cases: binaryVectorCases},
	{Name: "var-icasts", Dir: "VarICasts", Summary: "zext/sext between odd integer widths", cases: varICastCases},
	{Name: "integer-asm-casts", Dir: "IAssemblyCasts", Summary: "zext/sext checked against inline assembly", cases: asmCastCases},
	{Name: "polymorphic-call", Dir: "polymorphic", Summary: "indirect calls through a function pointer table", cases: polymorphicCases},
	{Name: "integer-binary-ops", Dir: "integerBinary", Summary: "scalar integer operators checked against the oracle", cases: integerBinaryCases},
}

// All returns every suite in registration order.
func All() []Suite {
	return slices.Clone(registry)
}

// Lookup finds a suite by name or directory. Names are compared after NFC
// normalization and case folding.
func Lookup(name string) (Suite, bool) {
	key := normalize(name)
	for _, s := range registry {
		if normalize(s.Name) == key || normalize(s.Dir) == key {
			return s, true
		}
	}
	return Suite{}, false
}

// Select resolves names to suites, keeping registry order and dropping
// duplicates. No names, or the single name "all", selects everything.
func Select(names []string) ([]Suite, error) {
	if len(names) == 0 || (len(names) == 1 && normalize(names[0]) == "all") {
		return All(), nil
	}
	want := make(map[string]bool, len(names))
	var unknown []string
	for _, n := range names {
		s, ok := Lookup(n)
		if !ok {
			unknown = append(unknown, n)
			continue
		}
		want[s.Name] = true
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSuite, strings.Join(unknown, ", "))
	}
	out := make([]Suite, 0, len(want))
	for _, s := range registry {
		if want[s.Name] {
			out = append(out, s)
		}
	}
	return out, nil
}

func normalize(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}
