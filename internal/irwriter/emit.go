package irwriter

import (
	"fmt"
	"strconv"
	"strings"

	llir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"

	"irforge/internal/ir"
	"irforge/internal/layout"
	"irforge/internal/types"
)

type Emitter struct {
	mod   *ir.Module
	types *types.Interner
	d     Dialect
	out   *lineWriter

	groups *attrGroups
	md     *mdTable
}

type funcEmitter struct {
	emitter *Emitter
	f       *ir.Function
	buf     strings.Builder
}

func newEmitter(m *ir.Module, d Dialect, out *lineWriter) *Emitter {
	e := &Emitter{
		mod:    m,
		types:  m.Types,
		d:      d,
		out:    out,
		groups: newAttrGroups(),
	}
	e.md = newMDTable(e)
	return e
}

func (e *Emitter) emitModule() {
	e.prepare()
	e.emitPreamble()
	e.emitNamedTypes()
	e.emitGlobals()
	e.emitFunctions()
	e.emitEpilogue()
}

// prepare numbers attribute groups and metadata nodes in the order a
// reader meets them, so that numbering does not depend on emission order.
func (e *Emitter) prepare() {
	if e.d.AttrGroups {
		for _, f := range e.mod.Funcs {
			e.groups.id(f.Attrs.Fn)
		}
	}
	if e.d.Metadata {
		e.md.numberModule()
	}
}

func (e *Emitter) emitPreamble() {
	e.out.line(fmt.Sprintf("target datalayout = %q", e.mod.Target.DataLayout))
}

func (e *Emitter) emitNamedTypes() {
	if len(e.mod.NamedTypes) > 0 {
		e.out.blank()
	}
	for _, id := range e.mod.NamedTypes {
		name := e.types.TypeName(id)
		if name == "" {
			continue
		}
		e.out.line(e.types.Format(id) + " = type " + e.types.FormatBody(id))
	}
}

func linkagePrefix(l enum.Linkage) string {
	if l == enum.LinkageNone || l == enum.LinkageExternal {
		return ""
	}
	return l.String() + " "
}

func visibilityPrefix(v enum.Visibility) string {
	if v == enum.VisibilityNone || v == enum.VisibilityDefault {
		return ""
	}
	return v.String() + " "
}

func alignSuffix(a uint8) string {
	if a == 0 {
		return ""
	}
	return ", align " + strconv.Itoa(layout.DecodeAlign(a))
}

func (e *Emitter) emitGlobals() {
	if len(e.mod.Globals)+len(e.mod.Aliases) > 0 {
		e.out.blank()
	}
	for _, g := range e.mod.Globals {
		e.out.line(e.global(g))
	}
	for _, a := range e.mod.Aliases {
		e.out.line(e.alias(a))
	}
}

func (e *Emitter) global(g *ir.Global) string {
	var sb strings.Builder
	sb.WriteString(globalName(g.Name))
	sb.WriteString(" = ")
	if g.Init == ir.NoValueID && (g.Linkage == enum.LinkageNone || g.Linkage == enum.LinkageExternal) {
		sb.WriteString("external ")
	} else {
		sb.WriteString(linkagePrefix(g.Linkage))
	}
	sb.WriteString(visibilityPrefix(g.Visibility))
	if g.Constant {
		sb.WriteString("constant ")
	} else {
		sb.WriteString("global ")
	}
	sb.WriteString(e.types.Format(g.ValueType))
	if g.Init != ir.NoValueID {
		sb.WriteByte(' ')
		sb.WriteString(e.value(g.Init))
	}
	sb.WriteString(alignSuffix(g.Align))
	return sb.String()
}

func (e *Emitter) alias(a *ir.Alias) string {
	name := globalName(a.Name)
	mods := linkagePrefix(a.Linkage) + visibilityPrefix(a.Visibility)
	if !e.d.AliasPointee {
		return name + " = alias " + mods + e.typed(a.Aliasee)
	}
	pointee, _ := e.types.Elem(a.Type)
	return name + " = " + mods + "alias " + e.types.Format(pointee) + ", " + e.typed(a.Aliasee)
}

func (e *Emitter) emitFunctions() {
	for _, f := range e.mod.Funcs {
		e.out.blank()
		fe := &funcEmitter{emitter: e, f: f}
		if f.IsDefinition() {
			fe.emitDefinition()
		} else {
			fe.emitDeclaration()
		}
	}
}

// fnAttrsComment is the "; Function Attrs:" line of dialects with
// attribute groups.
func (e *Emitter) fnAttrsComment(attrs ir.AttrSet) {
	if !e.d.AttrGroups {
		return
	}
	if known := attrs.Known(); len(known) > 0 {
		e.out.line("; Function Attrs: " + known.Join())
	}
}

func (e *Emitter) fnAttrsSuffix(attrs ir.AttrSet) string {
	if len(attrs) == 0 {
		return ""
	}
	if e.d.AttrGroups {
		return " #" + strconv.Itoa(e.groups.id(attrs))
	}
	return " " + attrs.Join()
}

// header renders everything of a define/declare line up to the closing
// parenthesis of the parameter list.
func (fe *funcEmitter) header(keyword string, withNames bool) {
	e := fe.emitter
	f := fe.f
	info, _ := e.types.FnInfo(f.Type)

	fe.buf.WriteString(keyword)
	fe.buf.WriteByte(' ')
	fe.buf.WriteString(linkagePrefix(f.Linkage))
	fe.buf.WriteString(visibilityPrefix(f.Visibility))
	if len(f.Attrs.Ret) > 0 {
		fe.buf.WriteString(f.Attrs.Ret.Join())
		fe.buf.WriteByte(' ')
	}
	result := e.types.Builtins().Void
	var params []types.TypeID
	variadic := false
	if info != nil {
		result, params, variadic = info.Result, info.Params, info.Variadic
	}
	fe.buf.WriteString(e.types.Format(result))
	fe.buf.WriteByte(' ')
	fe.buf.WriteString(globalName(f.Name))
	fe.buf.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			fe.buf.WriteString(", ")
		}
		fe.buf.WriteString(e.types.Format(p))
		if attrs := f.Attrs.Param(i); len(attrs) > 0 {
			fe.buf.WriteByte(' ')
			fe.buf.WriteString(attrs.Join())
		}
		if withNames && i < len(f.Params) {
			if sym, ok := e.mod.Symbol(f.Params[i]); ok && sym.Name != "" && !isNumeric(sym.Name) {
				fe.buf.WriteByte(' ')
				fe.buf.WriteString(localName(sym.Name))
			}
		}
	}
	if variadic {
		if len(params) > 0 {
			fe.buf.WriteString(", ")
		}
		fe.buf.WriteString("...")
	}
	fe.buf.WriteByte(')')
	fe.buf.WriteString(e.fnAttrsSuffix(f.Attrs.Fn))
}

func (fe *funcEmitter) emitDeclaration() {
	fe.emitter.fnAttrsComment(fe.f.Attrs.Fn)
	fe.header("declare", false)
	fe.emitter.out.line(fe.buf.String())
}

func (fe *funcEmitter) emitDefinition() {
	e := fe.emitter
	e.fnAttrsComment(fe.f.Attrs.Fn)
	fe.header("define", true)
	if e.d.Metadata {
		for _, a := range fe.f.MD {
			fe.buf.WriteString(" !" + a.Kind + " " + e.md.ref(a.Node))
		}
	}
	fe.buf.WriteString(" {")
	e.out.line(fe.buf.String())

	for i, b := range fe.f.Blocks.All() {
		if i > 0 {
			e.out.blank()
		}
		fe.emitBlock(ir.BlockIDOf(i), b)
	}
	e.out.line("}")
}

func (fe *funcEmitter) emitBlock(id ir.BlockID, b *ir.Block) {
	e := fe.emitter
	switch name := fe.blockName(id); {
	case id == 0 && (b.Name == "" || b.Name == "0"):
	case isNumeric(name):
		e.out.line("; <label>:" + name)
	default:
		e.out.line(strings.TrimPrefix(localName(name), "%") + ":")
	}
	for i := range b.Instrs {
		e.out.line("  " + fe.instr(&b.Instrs[i]))
	}
}

// blockName is the label of block id. Block 0 is implicitly %0; blocks
// the cursor never visited fall back to bbN.
func (fe *funcEmitter) blockName(id ir.BlockID) string {
	b := fe.f.Block(id)
	switch {
	case b == nil:
		return "<badref>"
	case b.Name != "":
		return b.Name
	case id == 0:
		return "0"
	default:
		return "bb" + strconv.Itoa(int(id))
	}
}

func (fe *funcEmitter) label(id ir.BlockID) string {
	return "label " + localName(fe.blockName(id))
}

func (e *Emitter) emitEpilogue() {
	if e.d.AttrGroups && e.groups.len() > 0 {
		e.out.blank()
		for i, attrs := range e.groups.list {
			e.out.line(fmt.Sprintf("attributes #%d = { %s }", i, attrs.Join()))
		}
	}
	if e.d.Metadata {
		e.md.emit()
	}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// localName spells a local identifier. Numeric names are implicit slots
// and stay unquoted.
func localName(name string) string {
	if isNumeric(name) {
		return "%" + name
	}
	return llir.LocalIdent{LocalName: name}.Ident()
}

// globalName spells @name, quoting numeric and non-identifier names.
func globalName(name string) string {
	return llir.GlobalIdent{GlobalName: name}.Ident()
}
