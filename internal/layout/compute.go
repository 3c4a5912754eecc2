package layout

import (
	"fortio.org/safecast"

	"irforge/internal/types"
)

func (e *LayoutEngine) computeLayout(t types.TypeID, state *layoutState) (TypeLayout, *LayoutError) {
	if e.Types == nil {
		return TypeLayout{Size: 0, Align: 1}, nil
	}
	tt, ok := e.Types.Lookup(t)
	if !ok {
		return TypeLayout{Size: 0, Align: 1}, nil
	}

	switch tt.Kind {
	case types.KindVoid, types.KindLabel, types.KindMetadata, types.KindFunc:
		return TypeLayout{Size: 0, Align: 1}, nil
	case types.KindInt, types.KindVarInt:
		align := bitsToBytes(e.spec.intAlign(tt.Bits))
		return TypeLayout{Size: roundUp(bitsToBytes(tt.Bits), align), Align: align}, nil
	case types.KindFloat:
		return e.floatLayout(tt.Bits), nil
	case types.KindPointer:
		return e.ptrLayout(), nil
	case types.KindArray:
		return e.arrayLayout(t, tt, state)
	case types.KindVector:
		return e.vectorLayout(t, tt, state)
	case types.KindStruct:
		info, ok := e.Types.StructInfo(t)
		if !ok {
			return TypeLayout{Size: 0, Align: 1}, nil
		}
		if !info.HasBody {
			return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrUnsized, Type: t}
		}
		return e.structLayout(info.Fields, info.Packed, state)
	case types.KindOpaque:
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrUnsized, Type: t}
	default:
		return TypeLayout{Size: 0, Align: 1}, nil
	}
}

func (e *LayoutEngine) ptrLayout() TypeLayout {
	size := e.Target.PtrSize
	align := e.Target.PtrAlign
	if size <= 0 {
		size = bitsToBytes(e.spec.PtrBits)
	}
	if align <= 0 {
		align = bitsToBytes(e.spec.PtrABI)
	}
	return TypeLayout{Size: size, Align: align}
}

func (e *LayoutEngine) floatLayout(bits uint32) TypeLayout {
	align := bitsToBytes(e.spec.floatAlign(bits))
	if align <= 0 {
		align = 1
	}
	// x86_fp80 stores 10 bytes but allocates a full aligned slot.
	return TypeLayout{Size: roundUp(bitsToBytes(bits), align), Align: align}
}

func (e *LayoutEngine) arrayLayout(t types.TypeID, tt types.Type, state *layoutState) (TypeLayout, *LayoutError) {
	elem, err := e.layoutOf(tt.Elem, state)
	if err != nil {
		return TypeLayout{Size: 0, Align: 1}, err
	}
	n, convErr := safecast.Conv[int](tt.Count)
	if convErr != nil {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrLengthConversion, Type: t, Err: convErr}
	}
	stride := roundUp(elem.Size, elem.Align)
	return TypeLayout{Size: stride * n, Align: elem.Align}, nil
}

func (e *LayoutEngine) vectorLayout(t types.TypeID, tt types.Type, state *layoutState) (TypeLayout, *LayoutError) {
	elem, err := e.layoutOf(tt.Elem, state)
	if err != nil {
		return TypeLayout{Size: 0, Align: 1}, err
	}
	n, convErr := safecast.Conv[int](tt.Count)
	if convErr != nil {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrLengthConversion, Type: t, Err: convErr}
	}
	totalBits, convErr := safecast.Conv[uint32](elem.Size * n * 8)
	if convErr != nil {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrLengthConversion, Type: t, Err: convErr}
	}
	align := bitsToBytes(e.spec.vectorAlign(totalBits))
	if align <= 0 {
		align = 1
	}
	return TypeLayout{Size: roundUp(elem.Size*n, align), Align: align}, nil
}

func (e *LayoutEngine) structLayout(fields []types.TypeID, packed bool, state *layoutState) (TypeLayout, *LayoutError) {
	offsets := make([]int, len(fields))
	aligns := make([]int, len(fields))
	off := 0
	maxAlign := 1
	for i, f := range fields {
		fl, err := e.layoutOf(f, state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		align := fl.Align
		if packed {
			align = 1
		}
		off = roundUp(off, align)
		offsets[i] = off
		aligns[i] = align
		off += fl.Size
		maxAlign = max(maxAlign, align)
	}
	return TypeLayout{
		Size:         roundUp(off, maxAlign),
		Align:        maxAlign,
		FieldOffsets: offsets,
		FieldAligns:  aligns,
	}, nil
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	r := n % align
	if r == 0 {
		return n
	}
	return n + (align - r)
}
