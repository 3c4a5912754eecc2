package types

import (
	"errors"
	"testing"
)

func TestResolveStructThenArray(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	st := in.Struct(false, b.I32, in.Array(b.I8, 4))
	ptr := in.Pointer(st)

	got, err := in.Resolve(ptr, []Index{ConstIndex(0), ConstIndex(1), ConstIndex(2)})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != b.I8 {
		t.Fatalf("resolved %s, want i8", in.Format(got))
	}
}

func TestStepDynamicIndexIntoArrayIsFine(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	arr := in.Array(b.Double, 8)
	got, err := in.Step(arr, DynIndex())
	if err != nil || got != b.Double {
		t.Fatalf("step = %v, %v", got, err)
	}
	vec := in.Vector(b.I16, 2)
	if got, err := in.Step(vec, DynIndex()); err != nil || got != b.I16 {
		t.Fatalf("vector step = %v, %v", got, err)
	}
}

func TestStepStructErrors(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	st := in.Struct(false, b.I32, b.I64)
	tests := []struct {
		name string
		cur  TypeID
		idx  Index
		want error
	}{
		{"dynamic struct index", st, DynIndex(), ErrInvalidIndex},
		{"out of range", st, ConstIndex(2), ErrInvalidIndex},
		{"negative", st, ConstIndex(-1), ErrInvalidIndex},
		{"scalar", b.I32, ConstIndex(0), ErrNotIndexable},
		{"void", b.Void, ConstIndex(0), ErrNotIndexable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := in.Step(tt.cur, tt.idx)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFieldType(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	inner := in.Struct(false, b.I8, b.Double)
	outer := in.Struct(false, b.I32, inner)
	got, err := in.FieldType(outer, 1, 1)
	if err != nil || got != b.Double {
		t.Fatalf("FieldType = %s, %v", in.Format(got), err)
	}
}
