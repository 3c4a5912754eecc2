package layout

import (
	"fortio.org/safecast"

	"irforge/internal/types"
)

// TypeLayout is the ABI layout of a type for a specific Target.
type TypeLayout struct {
	Size  int
	Align int

	// Struct-only:
	FieldOffsets []int
	FieldAligns  []int
}

// LayoutEngine computes memory layout for types.
type LayoutEngine struct {
	Target Target
	Types  *types.Interner

	spec  Spec
	cache *cache
}

// New creates a new LayoutEngine for the specified target. A malformed
// datalayout string falls back to the x86-64 layout.
func New(target Target, typesIn *types.Interner) *LayoutEngine {
	spec, err := ParseSpec(target.DataLayout)
	if err != nil {
		spec, _ = ParseSpec(X86_64DataLayout)
	}
	return &LayoutEngine{
		Target: target,
		Types:  typesIn,
		spec:   spec,
		cache:  newCache(),
	}
}

type layoutState struct {
	stack []types.TypeID
	index map[types.TypeID]int
}

func newLayoutState() *layoutState {
	return &layoutState{
		index: make(map[types.TypeID]int, 32),
	}
}

// LayoutOf computes and caches the layout of a type.
func (e *LayoutEngine) LayoutOf(t types.TypeID) (TypeLayout, error) {
	if e == nil {
		return TypeLayout{Size: 0, Align: 1}, nil
	}
	if e.cache == nil {
		e.cache = newCache()
	}
	layout, err := e.layoutOf(t, newLayoutState())
	if err != nil {
		return layout, err.named(e.Types)
	}
	return layout, nil
}

func (e *LayoutEngine) layoutOf(t types.TypeID, state *layoutState) (TypeLayout, *LayoutError) {
	if cached, ok := e.cache.get(t); ok {
		return cached.Layout, cached.Err
	}
	if start, ok := state.index[t]; ok {
		cycle := append([]types.TypeID(nil), state.stack[start:]...)
		cycle = append(cycle, t)
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrRecursiveUnsized, Type: t, Cycle: cycle}
	}
	state.index[t] = len(state.stack)
	state.stack = append(state.stack, t)
	layout, err := e.computeLayout(t, state)
	state.stack = state.stack[:len(state.stack)-1]
	delete(state.index, t)

	if layout.Align <= 0 {
		layout.Align = 1
	}
	e.cache.put(t, cacheEntry{Layout: layout, Err: err})
	return layout, err
}

// SizeOf returns the allocation size in bytes (a multiple of AlignOf).
func (e *LayoutEngine) SizeOf(t types.TypeID) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Size, err
}

// AlignOf returns the ABI alignment in bytes.
func (e *LayoutEngine) AlignOf(t types.TypeID) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Align, err
}

// AlignExponent returns the encoded alignment log2(align)+1 used by
// instructions and globals; 0 means unspecified.
func (e *LayoutEngine) AlignExponent(t types.TypeID) (uint8, error) {
	align, err := e.AlignOf(t)
	if err != nil {
		return 0, err
	}
	return EncodeAlign(align), nil
}

// FieldOffset returns the byte offset of a struct field.
func (e *LayoutEngine) FieldOffset(structType types.TypeID, fieldIndex int) (int, error) {
	l, err := e.LayoutOf(structType)
	if err != nil {
		return 0, err
	}
	if fieldIndex < 0 || fieldIndex >= len(l.FieldOffsets) {
		return 0, nil
	}
	return l.FieldOffsets[fieldIndex], nil
}

// Invalidate drops cached layouts after a named struct body changed.
func (e *LayoutEngine) Invalidate() {
	if e != nil {
		e.cache.invalidate()
	}
}

// EncodeAlign converts a byte alignment into log2(align)+1.
func EncodeAlign(align int) uint8 {
	if align <= 0 {
		return 0
	}
	var exp uint8 = 1
	for a := align; a > 1; a >>= 1 {
		exp++
	}
	return exp
}

// DecodeAlign reverses EncodeAlign; 0 yields 0.
func DecodeAlign(exp uint8) int {
	if exp == 0 {
		return 0
	}
	return 1 << (exp - 1)
}

func bitsToBytes(bits uint32) int {
	n, err := safecast.Conv[int]((bits + 7) / 8)
	if err != nil {
		return 0
	}
	return n
}
