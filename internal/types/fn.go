package types //nolint:revive

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// FnInfo stores metadata for function types.
type FnInfo struct {
	Params   []TypeID // Parameter types (in order)
	Result   TypeID   // Return type
	Variadic bool
}

// Func creates or finds a function type.
func (in *Interner) Func(result TypeID, variadic bool, params ...TypeID) TypeID {
	if in != nil {
		for id := TypeID(1); int(id) < len(in.types); id++ {
			tt := in.types[id]
			if tt.Kind != KindFunc {
				continue
			}
			if int(tt.Payload) >= len(in.fns) {
				continue
			}
			info := in.fns[tt.Payload]
			if info.Result == result && info.Variadic == variadic && slices.Equal(info.Params, params) {
				return id
			}
		}
	}
	slot := in.appendFnInfo(FnInfo{
		Params:   params,
		Result:   result,
		Variadic: variadic,
	})
	return in.internRaw(Type{Kind: KindFunc, Payload: slot})
}

// FnInfo retrieves function type metadata by TypeID.
func (in *Interner) FnInfo(id TypeID) (*FnInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindFunc {
		return nil, false
	}
	if int(tt.Payload) >= len(in.fns) {
		return nil, false
	}
	return &in.fns[tt.Payload], true
}

// ReturnsFuncPointer reports whether a function type returns a pointer to a
// function. Calls to such functions need the explicit signature.
func (in *Interner) ReturnsFuncPointer(fn TypeID) bool {
	info, ok := in.FnInfo(fn)
	if !ok {
		return false
	}
	elem, ok := in.Elem(info.Result)
	return ok && in.Is(info.Result, KindPointer) && in.Is(elem, KindFunc)
}

func (in *Interner) appendFnInfo(info FnInfo) uint32 {
	in.fns = append(in.fns, FnInfo{
		Params:   slices.Clone(info.Params),
		Result:   info.Result,
		Variadic: info.Variadic,
	})
	slot, err := safecast.Conv[uint32](len(in.fns) - 1)
	if err != nil {
		panic(fmt.Errorf("fn info overflow: %w", err))
	}
	return slot
}
