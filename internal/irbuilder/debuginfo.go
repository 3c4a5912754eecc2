package irbuilder

import (
	"irforge/internal/ir"
)

// MDString adds !"s".
func (mb *ModuleBuilder) MDString(s string) ir.MDID {
	return mb.m.Metadata.Add(ir.MDNode{Kind: ir.MDString, Str: s})
}

// MDValue wraps a value reference, printed as "<ty> <val>".
func (mb *ModuleBuilder) MDValue(v ir.ValueID) (ir.MDID, error) {
	if _, ok := mb.m.Symbols.Lookup(v); !ok {
		return ir.NoMDID, buildErr(KindUnknownValue, "metadata", "value %d", v)
	}
	return mb.m.Metadata.Add(ir.MDNode{Kind: ir.MDValue, Value: v}), nil
}

// MDTuple adds !{...}. NoMDID elements print as null.
func (mb *ModuleBuilder) MDTuple(elems ...ir.MDID) ir.MDID {
	return mb.m.Metadata.Add(ir.MDNode{Kind: ir.MDTuple, Elems: append([]ir.MDID(nil), elems...)})
}

// NamedMetadata appends refs to !name.
func (mb *ModuleBuilder) NamedMetadata(name string, refs ...ir.MDID) {
	mb.m.Metadata.AddNamed(name, refs...)
}

// MDPlaceholder records a node kind that has no textual form yet.
func (mb *ModuleBuilder) MDPlaceholder(kind string) ir.MDID {
	return mb.m.Metadata.Add(ir.MDNode{Kind: ir.MDPlaceholder, DIName: kind})
}

// Ref marks an optional reference as present.
func Ref(id ir.MDID) *ir.MDID {
	return &id
}

type diFields []ir.MDField

func (f *diFields) raw(key, v string)         { *f = append(*f, ir.RawField(key, v)) }
func (f *diFields) int(key string, v int64)   { *f = append(*f, ir.IntField(key, v)) }
func (f *diFields) bool(key string, v bool)   { *f = append(*f, ir.BoolField(key, v)) }
func (f *diFields) str(key, v string)         { *f = append(*f, ir.StrField(key, v)) }
func (f *diFields) ref(key string, v ir.MDID) { *f = append(*f, ir.RefField(key, v)) }

func (f *diFields) optRef(key string, v *ir.MDID) {
	if v != nil {
		f.ref(key, *v)
	}
}

func (f *diFields) optStr(key, v string) {
	if v != "" {
		f.str(key, v)
	}
}

func (f *diFields) optInt(key string, v int64) {
	if v != 0 {
		f.int(key, v)
	}
}

func (mb *ModuleBuilder) debug(name string, distinct bool, fields diFields) ir.MDID {
	return mb.m.Metadata.Add(ir.MDNode{Kind: ir.MDDebug, DIName: name, Distinct: distinct, Fields: fields})
}

type CompileUnit struct {
	Language           string // DW_LANG_*
	File               ir.MDID
	Producer           string
	Optimized          bool
	Flags              string
	RuntimeVersion     int64
	SplitDebugFilename string
	Enums              ir.MDID
	RetainedTypes      *ir.MDID
	Globals            *ir.MDID
	Imports            *ir.MDID
	Macros             *ir.MDID
	DWOID              int64
}

// DICompileUnit adds a distinct !DICompileUnit.
func (mb *ModuleBuilder) DICompileUnit(cu CompileUnit) ir.MDID {
	var f diFields
	f.raw("language", cu.Language)
	f.ref("file", cu.File)
	f.str("producer", cu.Producer)
	f.bool("isOptimized", cu.Optimized)
	f.optStr("flags", cu.Flags)
	f.int("runtimeVersion", cu.RuntimeVersion)
	f.optStr("splitDebugFilename", cu.SplitDebugFilename)
	f.ref("enums", cu.Enums)
	f.optRef("retainedTypes", cu.RetainedTypes)
	f.optRef("globals", cu.Globals)
	f.optRef("imports", cu.Imports)
	f.optRef("macros", cu.Macros)
	f.optInt("dwoId", cu.DWOID)
	return mb.debug("DICompileUnit", true, f)
}

// DIFile adds !DIFile(filename, directory).
func (mb *ModuleBuilder) DIFile(filename, directory string) ir.MDID {
	var f diFields
	f.str("filename", filename)
	f.str("directory", directory)
	return mb.debug("DIFile", false, f)
}

// DIBasicType adds a scalar type; encoding is a DW_ATE_* name.
func (mb *ModuleBuilder) DIBasicType(name string, size, align int64, encoding string) ir.MDID {
	var f diFields
	f.str("name", name)
	f.int("size", size)
	f.optInt("align", align)
	f.raw("encoding", encoding)
	return mb.debug("DIBasicType", false, f)
}

type CompositeType struct {
	Tag        string // DW_TAG_*
	BaseType   *ir.MDID
	Name       string
	File       ir.MDID
	Line       int64
	Size       int64
	Align      int64
	Identifier string
	Elements   ir.MDID
}

func (mb *ModuleBuilder) DICompositeType(ct CompositeType) ir.MDID {
	var f diFields
	f.raw("tag", ct.Tag)
	f.optRef("baseType", ct.BaseType)
	f.str("name", ct.Name)
	f.ref("file", ct.File)
	f.int("line", ct.Line)
	f.int("size", ct.Size)
	f.optInt("align", ct.Align)
	f.optStr("identifier", ct.Identifier)
	f.ref("elements", ct.Elements)
	return mb.debug("DICompositeType", false, f)
}

type DerivedType struct {
	Tag      string
	BaseType *ir.MDID
	Name     string
	Size     int64
	Align    int64
}

func (mb *ModuleBuilder) DIDerivedType(dt DerivedType) ir.MDID {
	var f diFields
	f.raw("tag", dt.Tag)
	f.optRef("baseType", dt.BaseType)
	f.optStr("name", dt.Name)
	f.int("size", dt.Size)
	f.optInt("align", dt.Align)
	return mb.debug("DIDerivedType", false, f)
}

func (mb *ModuleBuilder) DIEnumerator(name string, value int64) ir.MDID {
	var f diFields
	f.str("name", name)
	f.int("value", value)
	return mb.debug("DIEnumerator", false, f)
}

// DIExpression adds the empty expression !DIExpression().
func (mb *ModuleBuilder) DIExpression() ir.MDID {
	return mb.debug("DIExpression", false, nil)
}

func (mb *ModuleBuilder) DILexicalBlock(scope, file ir.MDID, line, column int64) ir.MDID {
	var f diFields
	f.ref("scope", scope)
	f.ref("file", file)
	f.int("line", line)
	f.int("column", column)
	return mb.debug("DILexicalBlock", true, f)
}

type LocalVariable struct {
	Name  string
	Arg   int64 // 1-based parameter position; 0 for locals
	Scope ir.MDID
	File  ir.MDID
	Line  int64
	Type  ir.MDID
}

func (mb *ModuleBuilder) DILocalVariable(lv LocalVariable) ir.MDID {
	var f diFields
	f.str("name", lv.Name)
	f.optInt("arg", lv.Arg)
	f.ref("scope", lv.Scope)
	f.ref("file", lv.File)
	f.int("line", lv.Line)
	f.ref("type", lv.Type)
	return mb.debug("DILocalVariable", false, f)
}

func (mb *ModuleBuilder) DINamespace(name string, scope, file ir.MDID, line int64) ir.MDID {
	var f diFields
	f.str("name", name)
	f.ref("scope", scope)
	f.ref("file", file)
	f.int("line", line)
	return mb.debug("DINamespace", false, f)
}

type Subprogram struct {
	Name           string
	LinkageName    string
	Scope          ir.MDID
	File           ir.MDID
	Line           int64
	Type           ir.MDID
	Local          bool
	Definition     bool
	ScopeLine      int64
	ContainingType *ir.MDID
	VirtualIndex   int64
	Optimized      bool
	Unit           ir.MDID
	TemplateParams *ir.MDID
	Declaration    *ir.MDID
	Variables      ir.MDID
}

// DISubprogram adds a distinct !DISubprogram.
func (mb *ModuleBuilder) DISubprogram(sp Subprogram) ir.MDID {
	var f diFields
	f.str("name", sp.Name)
	f.optStr("linkageName", sp.LinkageName)
	f.ref("scope", sp.Scope)
	f.ref("file", sp.File)
	f.int("line", sp.Line)
	f.ref("type", sp.Type)
	f.bool("isLocal", sp.Local)
	f.bool("isDefinition", sp.Definition)
	f.int("scopeLine", sp.ScopeLine)
	f.optRef("containingType", sp.ContainingType)
	f.optInt("virtualIndex", sp.VirtualIndex)
	f.bool("isOptimized", sp.Optimized)
	f.ref("unit", sp.Unit)
	f.optRef("templateParams", sp.TemplateParams)
	f.optRef("declaration", sp.Declaration)
	f.ref("variables", sp.Variables)
	return mb.debug("DISubprogram", true, f)
}

// DISubrange adds !DISubrange. A count of -1 denotes an unbounded range
// and omits the lower bound.
func (mb *ModuleBuilder) DISubrange(count, lowerBound int64) ir.MDID {
	var f diFields
	f.int("count", count)
	if count != -1 {
		f.int("lowerBound", lowerBound)
	}
	return mb.debug("DISubrange", false, f)
}

func (mb *ModuleBuilder) DISubroutineType(types ir.MDID) ir.MDID {
	var f diFields
	f.ref("types", types)
	return mb.debug("DISubroutineType", false, f)
}

func (mb *ModuleBuilder) DILocation(line, column int64, scope ir.MDID, inlinedAt *ir.MDID) ir.MDID {
	var f diFields
	f.int("line", line)
	f.int("column", column)
	f.ref("scope", scope)
	f.optRef("inlinedAt", inlinedAt)
	return mb.debug("DILocation", false, f)
}

type GlobalVariable struct {
	Name        string
	LinkageName string
	Scope       ir.MDID
	File        ir.MDID
	Line        int64
	Type        ir.MDID
	Local       bool
	Definition  bool
	Variable    ir.ValueID
}

// DIGlobalVariable describes a global; Variable references the IR global.
func (mb *ModuleBuilder) DIGlobalVariable(gv GlobalVariable) (ir.MDID, error) {
	val, err := mb.MDValue(gv.Variable)
	if err != nil {
		return ir.NoMDID, err
	}
	var f diFields
	f.str("name", gv.Name)
	f.str("linkageName", gv.LinkageName)
	f.ref("scope", gv.Scope)
	f.ref("file", gv.File)
	f.int("line", gv.Line)
	f.ref("type", gv.Type)
	f.bool("isLocal", gv.Local)
	f.bool("isDefinition", gv.Definition)
	f.ref("variable", val)
	return mb.debug("DIGlobalVariable", false, f), nil
}
