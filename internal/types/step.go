package types

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidIndex reports a struct indexed by a non-constant or out-of-range index.
	ErrInvalidIndex = errors.New("invalid index")
	// ErrNotIndexable reports an indexing step on a scalar, void, function or opaque type.
	ErrNotIndexable = errors.New("type is not indexable")
)

// Index describes one operand of an indexed access. Only literal integer
// indices carry a meaningful Value.
type Index struct {
	Const bool
	Value int64
}

// ConstIndex is shorthand for a literal index.
func ConstIndex(v int64) Index {
	return Index{Const: true, Value: v}
}

// DynIndex is an index whose value is only known at run time.
func DynIndex() Index {
	return Index{}
}

// Step computes the type reached by one indexed-access step into cur.
// Struct steps require a literal in-range index; pointer, array and vector
// steps yield the pointee/element type regardless of the index value.
func (in *Interner) Step(cur TypeID, idx Index) (TypeID, error) {
	tt, ok := in.Lookup(cur)
	if !ok {
		return NoTypeID, fmt.Errorf("%w: type#%d", ErrNotIndexable, cur)
	}
	switch tt.Kind {
	case KindPointer, KindArray, KindVector:
		return tt.Elem, nil
	case KindStruct:
		if !idx.Const {
			return NoTypeID, fmt.Errorf("%w: struct %s indexed by a non-constant value", ErrInvalidIndex, in.Format(cur))
		}
		info, ok := in.StructInfo(cur)
		if !ok || !info.HasBody {
			return NoTypeID, fmt.Errorf("%w: struct %s has no body", ErrNotIndexable, in.Format(cur))
		}
		if idx.Value < 0 || idx.Value >= int64(len(info.Fields)) {
			return NoTypeID, fmt.Errorf("%w: field %d out of range for %s", ErrInvalidIndex, idx.Value, in.Format(cur))
		}
		return info.Fields[idx.Value], nil
	default:
		return NoTypeID, fmt.Errorf("%w: %s", ErrNotIndexable, in.Format(cur))
	}
}

// Resolve applies Step once per index, starting at base (the first index
// steps through base itself), and returns the final element type.
func (in *Interner) Resolve(base TypeID, indices []Index) (TypeID, error) {
	cur := base
	for i, idx := range indices {
		next, err := in.Step(cur, idx)
		if err != nil {
			return NoTypeID, fmt.Errorf("index %d: %w", i, err)
		}
		cur = next
	}
	return cur, nil
}

// FieldType returns the type reached by following literal indices through an
// aggregate, as extractvalue/insertvalue do.
func (in *Interner) FieldType(agg TypeID, path ...int64) (TypeID, error) {
	indices := make([]Index, len(path))
	for i, p := range path {
		indices[i] = ConstIndex(p)
	}
	return in.Resolve(agg, indices)
}
