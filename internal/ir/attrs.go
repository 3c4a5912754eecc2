package ir

import (
	"strconv"
	"strings"
)

// Attribute is a function, return or parameter attribute. Known attributes
// are bare keywords (optionally with an integer argument); string attributes
// have a quoted key.
type Attribute struct {
	Key    string
	Value  string
	Quoted bool
}

// Common attributes.
var (
	AttrNoUnwind   = Attribute{Key: "nounwind"}
	AttrNoInline   = Attribute{Key: "noinline"}
	AttrUWTable    = Attribute{Key: "uwtable"}
	AttrReadNone   = Attribute{Key: "readnone"}
	AttrReadOnly   = Attribute{Key: "readonly"}
	AttrNoReturn   = Attribute{Key: "noreturn"}
	AttrNoCapture  = Attribute{Key: "nocapture"}
	AttrSignExt    = Attribute{Key: "signext"}
	AttrZeroExt    = Attribute{Key: "zeroext"}
	AttrNoAlias    = Attribute{Key: "noalias"}
	AttrOptimizeNo = Attribute{Key: "optnone"}
)

// StringAttr builds a "key"="value" attribute.
func StringAttr(key, value string) Attribute {
	return Attribute{Key: key, Value: value, Quoted: true}
}

// AlignAttr builds align N.
func AlignAttr(n int) Attribute {
	return Attribute{Key: "align", Value: strconv.Itoa(n)}
}

// IR renders the attribute the way it appears in textual IR.
func (a Attribute) IR() string {
	if a.Quoted {
		if a.Value == "" {
			return strconv.Quote(a.Key)
		}
		return strconv.Quote(a.Key) + "=" + strconv.Quote(a.Value)
	}
	if a.Value == "" {
		return a.Key
	}
	if a.Key == "align" {
		return a.Key + " " + a.Value
	}
	return a.Key + "(" + a.Value + ")"
}

// AttrSet is an ordered attribute list.
type AttrSet []Attribute

// Known returns only the keyword attributes.
func (s AttrSet) Known() AttrSet {
	var out AttrSet
	for _, a := range s {
		if !a.Quoted {
			out = append(out, a)
		}
	}
	return out
}

// Join renders the set separated by spaces.
func (s AttrSet) Join() string {
	parts := make([]string, len(s))
	for i, a := range s {
		parts[i] = a.IR()
	}
	return strings.Join(parts, " ")
}

// FuncAttrs groups the attributes attached to a function.
type FuncAttrs struct {
	Fn     AttrSet
	Ret    AttrSet
	Params []AttrSet
}

// Param returns the attributes of parameter i.
func (fa *FuncAttrs) Param(i int) AttrSet {
	if fa == nil || i < 0 || i >= len(fa.Params) {
		return nil
	}
	return fa.Params[i]
}
