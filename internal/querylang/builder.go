// Package querylang implements a small GraphQL query document builder and
// printer used to construct outgoing update queries: Field, Alias,
// InlineFragment, Literal, List, Query.
package querylang

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is anything that can appear as a GraphQL argument value.
type Value interface {
	writeTo(sb *strings.Builder)
}

// Literal wraps a Go value (string, float64, int, bool, nil) as a GraphQL
// literal argument value.
type Literal struct {
	v any
}

// Lit constructs a Literal value.
func Lit(v any) Literal { return Literal{v: v} }

func (l Literal) writeTo(sb *strings.Builder) {
	writeLiteral(sb, l.v)
}

func writeLiteral(sb *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		sb.WriteString("null")
	case string:
		sb.WriteString(strconv.Quote(x))
	case bool:
		sb.WriteString(strconv.FormatBool(x))
	case int:
		sb.WriteString(strconv.Itoa(x))
	case int64:
		sb.WriteString(strconv.FormatInt(x, 10))
	case float64:
		sb.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	case ListValue:
		x.writeTo(sb)
	case Value:
		x.writeTo(sb)
	default:
		// Fall back to a quoted Go-syntax representation rather than
		// silently emitting something invalid.
		sb.WriteString(strconv.Quote(fmt.Sprintf("%v", x)))
	}
}

// ListValue wraps a sequence of argument values as a GraphQL list literal.
type ListValue struct {
	items []Value
}

// List constructs a ListValue.
func List(items ...Value) ListValue { return ListValue{items: items} }

func (lv ListValue) writeTo(sb *strings.Builder) {
	sb.WriteByte('[')
	for i, item := range lv.items {
		if i > 0 {
			sb.WriteString(", ")
		}
		item.writeTo(sb)
	}
	sb.WriteByte(']')
}

// Arg is one name:value argument pair on a field or inline-fragment-free
// selection.
type Arg struct {
	Name  string
	Value Value
}

// A returns an Arg with a literal value, a common enough case to warrant a
// shorthand alongside the raw Arg{...} literal form.
func A(name string, v any) Arg {
	if val, ok := v.(Value); ok {
		return Arg{Name: name, Value: val}
	}
	return Arg{Name: name, Value: Lit(v)}
}

// Selection is a node in a selection-set tree: a field (with optional
// alias/args/children) or an inline fragment.
type Selection struct {
	alias            string
	name             string
	args             []Arg
	children         []Selection
	isInlineFragment bool
	onType           string
}

// Field constructs a field selection with the given name, arguments, and
// child selections.
func Field(name string, args []Arg, children ...Selection) Selection {
	return Selection{name: name, args: args, children: children}
}

// Alias attaches an alias to a field selection, for the planner's
// owndata_<i>/node_<i> aliasing.
func Alias(alias string, f Selection) Selection {
	f.alias = alias
	return f
}

// InlineFragment constructs a "... on Type { ... }" selection.
func InlineFragment(onType string, children ...Selection) Selection {
	return Selection{isInlineFragment: true, onType: onType, children: children}
}

// Param is a top-level query variable declaration (unused by this Mirror,
// which sends no GraphQL variables, but retained as part of the
// document-builder API).
type Param struct {
	Name string
	Type string
}

// Document is a complete GraphQL operation, ready to Print.
type Document struct {
	name       string
	params     []Param
	selections []Selection
}

// Query constructs a top-level query document.
func Query(name string, params []Param, selections ...Selection) Document {
	return Document{name: name, params: params, selections: selections}
}
