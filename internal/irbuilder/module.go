// Package irbuilder assembles ir modules: module-level declarations,
// per-function instruction emission and a literal-accepting facade.
package irbuilder

import (
	"fmt"

	"github.com/llir/llvm/ir/enum"

	"irforge/internal/ir"
	"irforge/internal/layout"
	"irforge/internal/types"
)

// ModuleBuilder owns the module namespace: functions, globals, aliases,
// named types and metadata.
type ModuleBuilder struct {
	m      *ir.Module
	layout *layout.LayoutEngine
}

// NewModuleBuilder creates a builder around a fresh module.
func NewModuleBuilder() *ModuleBuilder {
	return ForModule(ir.NewModule(types.NewInterner()))
}

// ForModule wraps an existing module.
func ForModule(m *ir.Module) *ModuleBuilder {
	return &ModuleBuilder{
		m:      m,
		layout: layout.New(m.Target, m.Types),
	}
}

func (mb *ModuleBuilder) Module() *ir.Module           { return mb.m }
func (mb *ModuleBuilder) Types() *types.Interner       { return mb.m.Types }
func (mb *ModuleBuilder) Layout() *layout.LayoutEngine { return mb.layout }
func (mb *ModuleBuilder) Metadata() *ir.Metadata       { return &mb.m.Metadata }

func validName(op, name string) error {
	if name == "" {
		return buildErr(KindInvalidName, op, "empty global name")
	}
	return nil
}

func (mb *ModuleBuilder) newFunction(op, name string, fnType types.TypeID, declared bool) (*ir.Function, error) {
	if err := validName(op, name); err != nil {
		return nil, err
	}
	if _, ok := mb.m.Types.FnInfo(fnType); !ok {
		return nil, buildErr(KindUnsupportedType, op, "%s is not a function type", mb.m.Types.Format(fnType))
	}
	f := &ir.Function{
		Name:     name,
		Type:     fnType,
		Linkage:  enum.LinkageExternal,
		Declared: declared,
	}
	f.ID = mb.m.Symbols.Register(ir.Symbol{
		Kind: ir.SymFunc,
		Type: mb.m.Types.Pointer(fnType),
		Name: name,
		Func: f,
	})
	mb.m.Funcs = append(mb.m.Funcs, f)
	return f, nil
}

// DefineFunction registers @name with a body of blocks pre-allocated blocks.
func (mb *ModuleBuilder) DefineFunction(name string, blocks int, fnType types.TypeID) (*ir.Function, error) {
	f, err := mb.newFunction("define", name, fnType, false)
	if err != nil {
		return nil, err
	}
	f.Blocks.EnsureBlockCount(max(blocks, 1))
	return f, nil
}

// DeclareFunction registers an external declaration @name.
func (mb *ModuleBuilder) DeclareFunction(name string, fnType types.TypeID) (*ir.Function, error) {
	return mb.newFunction("declare", name, fnType, true)
}

// GlobalOptions configure GlobalVariable.
type GlobalOptions struct {
	Constant   bool
	Linkage    enum.Linkage
	Visibility enum.Visibility
	Align      int // bytes; 0 = unspecified
}

// GlobalVariable registers @name. init may be NoValueID for an external
// declaration; otherwise its type must equal valueType.
func (mb *ModuleBuilder) GlobalVariable(name string, valueType types.TypeID, init ir.ValueID, opts GlobalOptions) (ir.ValueID, error) {
	if err := validName("global", name); err != nil {
		return ir.NoValueID, err
	}
	if init != ir.NoValueID {
		sym, ok := mb.m.Symbols.Lookup(init)
		if !ok {
			return ir.NoValueID, buildErr(KindUnknownValue, "global", "initializer %d", init)
		}
		if sym.Type != valueType {
			return ir.NoValueID, buildErr(KindOperandMismatch, "global", "initializer is %s, global is %s",
				mb.m.Types.Format(sym.Type), mb.m.Types.Format(valueType))
		}
	}
	if opts.Linkage == enum.LinkageNone {
		opts.Linkage = enum.LinkageExternal
	}
	if opts.Visibility == enum.VisibilityNone {
		opts.Visibility = enum.VisibilityDefault
	}
	g := &ir.Global{
		Name:       name,
		ValueType:  valueType,
		Init:       init,
		Constant:   opts.Constant,
		Linkage:    opts.Linkage,
		Visibility: opts.Visibility,
		Align:      layout.EncodeAlign(opts.Align),
	}
	g.ID = mb.m.Symbols.Register(ir.Symbol{
		Kind:   ir.SymGlobal,
		Type:   mb.m.Types.Pointer(valueType),
		Name:   name,
		Global: g,
	})
	mb.m.Globals = append(mb.m.Globals, g)
	return g.ID, nil
}

// GlobalConstant registers an internal constant @name = value. The
// symbol's position is fixed from here on.
func (mb *ModuleBuilder) GlobalConstant(name string, valueType types.TypeID, value ir.ValueID) (ir.ValueID, error) {
	return mb.GlobalVariable(name, valueType, value, GlobalOptions{
		Constant:   true,
		Linkage:    enum.LinkageInternal,
		Visibility: enum.VisibilityDefault,
	})
}

// GlobalString registers a NUL terminated string constant [len+1 x i8].
func (mb *ModuleBuilder) GlobalString(name, value string) (ir.ValueID, error) {
	arr := mb.m.Types.Array(mb.m.Types.Builtins().I8, uint64(len(value))+1)
	c := mb.String(arr, []byte(value))
	return mb.GlobalConstant(name, arr, c)
}

// Alias registers @name as an alias of another global value.
func (mb *ModuleBuilder) Alias(name string, aliasee ir.ValueID, linkage enum.Linkage) (ir.ValueID, error) {
	if err := validName("alias", name); err != nil {
		return ir.NoValueID, err
	}
	sym, ok := mb.m.Symbols.Lookup(aliasee)
	if !ok {
		return ir.NoValueID, buildErr(KindUnknownValue, "alias", "aliasee %d", aliasee)
	}
	if !mb.m.Types.Is(sym.Type, types.KindPointer) {
		return ir.NoValueID, buildErr(KindOperandMismatch, "alias", "aliasee %s is not a pointer", mb.m.Types.Format(sym.Type))
	}
	if linkage == enum.LinkageNone {
		linkage = enum.LinkageExternal
	}
	a := &ir.Alias{
		Name:       name,
		Type:       sym.Type,
		Aliasee:    aliasee,
		Linkage:    linkage,
		Visibility: enum.VisibilityDefault,
	}
	a.ID = mb.m.Symbols.Register(ir.Symbol{Kind: ir.SymAlias, Type: sym.Type, Name: name, Alias: a})
	mb.m.Aliases = append(mb.m.Aliases, a)
	return a.ID, nil
}

// NamedType lists a named struct or opaque type in the module's type table.
// Registering the same type twice is a no-op.
func (mb *ModuleBuilder) NamedType(id types.TypeID) error {
	if mb.m.Types.TypeName(id) == "" {
		return buildErr(KindUnsupportedType, "type", "%s is not a named type", mb.m.Types.Format(id))
	}
	if !mb.m.HasNamedType(id) {
		mb.m.NamedTypes = append(mb.m.NamedTypes, id)
		mb.layout.Invalidate()
	}
	return nil
}

// StructType creates (or finds) %name and sets its body.
func (mb *ModuleBuilder) StructType(name string, packed bool, fields ...types.TypeID) (types.TypeID, error) {
	id, err := mb.m.Types.NamedStruct(name)
	if err != nil {
		return types.NoTypeID, fmt.Errorf("struct %s: %w", name, err)
	}
	if err := mb.m.Types.SetBody(id, packed, fields...); err != nil {
		return types.NoTypeID, err
	}
	return id, mb.NamedType(id)
}

// SetFuncAttrs attaches function attributes.
func (mb *ModuleBuilder) SetFuncAttrs(f *ir.Function, attrs ir.FuncAttrs) {
	f.Attrs = attrs
}

// AttachMetadata adds a function-level attachment such as !dbg.
func (mb *ModuleBuilder) AttachMetadata(f *ir.Function, kind string, node ir.MDID) {
	f.MD = append(f.MD, ir.MDAttachment{Kind: kind, Node: node})
}
