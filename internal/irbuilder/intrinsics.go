package irbuilder

import (
	"irforge/internal/ir"
	"irforge/internal/types"
)

const (
	vaStartName = "llvm.va_start"
	vaEndName   = "llvm.va_end"
)

// intrinsic returns the declaration name: void (i8*), declaring it once.
func (mb *ModuleBuilder) intrinsic(name string) (*ir.Function, error) {
	in := mb.m.Types
	fnType := in.Func(in.Builtins().Void, false, in.Pointer(in.Builtins().I8))
	if f, ok := mb.m.FindFunc(name, fnType); ok {
		return f, nil
	}
	f, err := mb.DeclareFunction(name, fnType)
	if err != nil {
		return nil, err
	}
	f.Attrs.Fn = ir.AttrSet{ir.AttrNoUnwind}
	return f, nil
}

// VaStartDecl returns declare void @llvm.va_start(i8*).
func (mb *ModuleBuilder) VaStartDecl() (*ir.Function, error) {
	return mb.intrinsic(vaStartName)
}

// VaEndDecl returns declare void @llvm.va_end(i8*).
func (mb *ModuleBuilder) VaEndDecl() (*ir.Function, error) {
	return mb.intrinsic(vaEndName)
}

// VaListTag returns %struct.__va_list_tag = { i32, i32, i8*, i8* }.
func (mb *ModuleBuilder) VaListTag() (types.TypeID, error) {
	in := mb.m.Types
	if id, ok := in.LookupNamed("struct.__va_list_tag"); ok {
		return id, mb.NamedType(id)
	}
	i8p := in.Pointer(in.Builtins().I8)
	return mb.StructType("struct.__va_list_tag", false, in.Builtins().I32, in.Builtins().I32, i8p, i8p)
}

// IOFile returns the glibc %struct._IO_FILE layout along with
// %struct._IO_marker, which it references.
func (mb *ModuleBuilder) IOFile() (types.TypeID, error) {
	in := mb.m.Types
	if id, ok := in.LookupNamed("struct._IO_FILE"); ok {
		if info, _ := in.StructInfo(id); info != nil && info.HasBody {
			return id, nil
		}
	}
	b := in.Builtins()
	i8p := in.Pointer(b.I8)
	file, err := in.NamedStruct("struct._IO_FILE")
	if err != nil {
		return types.NoTypeID, err
	}
	marker, err := in.NamedStruct("struct._IO_marker")
	if err != nil {
		return types.NoTypeID, err
	}
	if err := in.SetBody(marker, false, in.Pointer(marker), in.Pointer(file), b.I32); err != nil {
		return types.NoTypeID, err
	}
	fields := []types.TypeID{b.I32}
	for range 11 {
		fields = append(fields, i8p)
	}
	fields = append(fields,
		in.Pointer(marker), in.Pointer(file),
		b.I32, b.I32, b.I64, b.I16, b.I8, in.Array(b.I8, 1),
		i8p, b.I64,
		i8p, i8p, i8p, i8p,
		b.I64, b.I32, in.Array(b.I8, 20),
	)
	if err := in.SetBody(file, false, fields...); err != nil {
		return types.NoTypeID, err
	}
	if err := mb.NamedType(file); err != nil {
		return types.NoTypeID, err
	}
	if err := mb.NamedType(marker); err != nil {
		return types.NoTypeID, err
	}
	mb.layout.Invalidate()
	return file, nil
}
