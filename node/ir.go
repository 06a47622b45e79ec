package node

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/coerce"
	"shape-mapper/internal/common"
)

// Node is one value-producing step of a mapping plan. Kind selects which of
// the fields are meaningful; the others stay zero. Nodes are built once by
// the planner and never modified afterwards.
type Node struct {
	Kind Kind
	Type reflect.Type // Type of the produced value

	Arg     *Node // Operand
	Elem    *Node // Element or entry value mapping, over an Item node
	KeyElem *Node // Entry key mapping, over an Item node

	Path   *analyze.QualifiedMember // Source and Existing
	Key    string                   // Lookup key or Subset and Indexed prefix
	Value  reflect.Value            // Constant
	Caster *Caster                  // Func
	Expr   *Expression              // Expression
	Conv   *coerce.Conversion       // Convert
	Pair   Signature                // Nested

	// Indexed keys are Key + fmt.Sprintf(Pattern, i); with a Separator the
	// elements are sub-dictionaries under Key + index + Separator.
	Pattern   string
	Separator string
}

// Source reads q from the mapped source.
func Source(q *analyze.QualifiedMember) *Node {
	return &Node{Kind: KindSource, Type: q.Type, Path: q}
}

// EntireSource is the mapped source value of type t.
func EntireSource(t reflect.Type) *Node {
	return &Node{Kind: KindEntireSource, Type: t}
}

// Item is the element or entry value of type t inside Elem and KeyElem.
func Item(t reflect.Type) *Node {
	return &Node{Kind: KindItem, Type: t}
}

// Constant produces v.
func Constant(v reflect.Value) *Node {
	return &Node{Kind: KindConstant, Type: v.Type(), Value: v}
}

// Func applies c to arg, or to the context when c is contextual and arg is nil.
func Func(c Caster, arg *Node) *Node {
	return &Node{Kind: KindFunc, Type: c.Dst, Caster: &c, Arg: arg}
}

// Expr evaluates e. The result is dynamic and typically wrapped in Convert.
func Expr(e *Expression) *Node {
	return &Node{Kind: KindExpression, Type: reflect.TypeFor[any](), Expr: e}
}

// Lookup reads the entry key of dictionary arg.
func Lookup(arg *Node, key string) *Node {
	return &Node{Kind: KindLookup, Type: valueType(arg.Type), Arg: arg, Key: key}
}

// Subset selects the entries of dictionary arg under prefix, prefix removed.
// It produces no value when no entry has the prefix.
func Subset(arg *Node, prefix string) *Node {
	return &Node{Kind: KindSubset, Type: arg.Type, Arg: arg, Key: prefix}
}

// Indexed collects the entries of dictionary arg addressed as key[0], key[1]...
// With a separator every element is the sub-dictionary under key[i] + separator.
func Indexed(arg *Node, key, pattern, separator string) *Node {
	t := reflect.SliceOf(valueType(arg.Type))
	if separator != "" {
		t = reflect.SliceOf(arg.Type)
	}

	return &Node{Kind: KindIndexed, Type: t, Arg: arg, Key: key, Pattern: pattern, Separator: separator}
}

// Convert applies conv to arg.
func Convert(arg *Node, conv *coerce.Conversion) *Node {
	if conv.IsIdentity() && arg.Type == conv.Dst {
		return arg
	}

	return &Node{Kind: KindConvert, Type: conv.Dst, Arg: arg, Conv: conv}
}

// Nested maps arg with the compiled mapper of pair into t, the pair target
// or a pointer to it.
func Nested(arg *Node, pair Signature, t reflect.Type) *Node {
	return &Node{Kind: KindNested, Type: t, Arg: arg, Pair: pair}
}

// Elements maps each element of enumerable arg with elem into a collection of type t.
func Elements(arg, elem *Node, t reflect.Type) *Node {
	return &Node{Kind: KindElements, Type: t, Arg: arg, Elem: elem}
}

// Entries maps each entry of arg into a dictionary of type t. Dictionary
// args map their keys with key; complex args use member names as keys.
func Entries(arg, key, elem *Node, t reflect.Type) *Node {
	return &Node{Kind: KindEntries, Type: t, Arg: arg, KeyElem: key, Elem: elem}
}

// Existing reads the current value of target member q.
func Existing(q *analyze.QualifiedMember) *Node {
	return &Node{Kind: KindExisting, Type: q.Type, Path: q}
}

// Default is the zero value of t.
func Default(t reflect.Type) *Node {
	return &Node{Kind: KindDefault, Type: t}
}

func valueType(t reflect.Type) reflect.Type {
	if t = common.Deref(t); t != nil && t.Kind() == reflect.Map {
		return t.Elem()
	}

	return reflect.TypeFor[any]()
}

// Fallible reports whether evaluating n may produce no value, in which case
// the next data source is tried.
func (n *Node) Fallible() bool {
	if n == nil {
		return false
	}

	switch n.Kind {
	case KindLookup, KindSubset, KindIndexed:
		return true
	case KindSource:
		return crossesNil(n.Path)
	case KindFunc:
		return n.Caster.HasBool || n.Arg.Fallible()
	case KindConvert:
		// An expression result that does not convert is an error, not a miss.
		if n.Arg.Kind == KindExpression {
			return false
		}

		return n.Conv.Fallible || n.Arg.Fallible()
	case KindNested, KindElements, KindEntries:
		return n.Arg.Fallible()
	default:
		return false
	}
}

// crossesNil reports whether a member before the last one may be nil.
func crossesNil(q *analyze.QualifiedMember) bool {
	members := q.Members()
	for _, m := range members[:max(len(members)-1, 0)] {
		switch m.Type.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map:
			return true
		}
	}

	return false
}

// Children returns the direct operands of n.
func (n *Node) Children() []*Node {
	var out []*Node

	for _, c := range []*Node{n.Arg, n.KeyElem, n.Elem} {
		if c != nil {
			out = append(out, c)
		}
	}

	return out
}

// Walk calls fn for n and every node below it, parents first.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}

	fn(n)

	for _, c := range n.Children() {
		c.Walk(fn)
	}
}

// Targets returns the names of target members read by expressions in n.
func (n *Node) Targets() []string {
	var out []string

	n.Walk(func(c *Node) {
		if c.Kind != KindExpression {
			return
		}

		for _, name := range c.Expr.Targets() {
			if !slices.Contains(out, name) {
				out = append(out, name)
			}
		}
	})

	return out
}

// SourcePaths returns the source member paths read by n.
func (n *Node) SourcePaths() []*analyze.QualifiedMember {
	var out []*analyze.QualifiedMember

	n.Walk(func(c *Node) {
		if c.Kind == KindSource {
			out = append(out, c.Path)
		}
	})

	return out
}

var dumper = spew.ConfigState{
	Indent:                  " ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// String describes n as a nested call, e.g. "Convert[safe number](Source(Quantity))".
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}

	var sb strings.Builder

	sb.WriteString(n.Kind.String())

	switch n.Kind {
	case KindSource, KindExisting:
		fmt.Fprintf(&sb, "(%s)", n.Path.Path())
	case KindEntireSource, KindItem, KindDefault:
		fmt.Fprintf(&sb, "(%s)", analyze.TypeString(n.Type))
	case KindConstant:
		fmt.Fprintf(&sb, "(%s)", dumper.Sprintf("%#v", n.Value.Interface()))
	case KindFunc:
		fmt.Fprintf(&sb, "[%s](%s)", n.Caster, argString(n.Arg, "ctx"))
	case KindExpression:
		fmt.Fprintf(&sb, "(%q)", n.Expr)
	case KindLookup, KindSubset:
		fmt.Fprintf(&sb, "[%q](%s)", n.Key, n.Arg)
	case KindIndexed:
		fmt.Fprintf(&sb, "[%q](%s)", n.Key+n.Pattern+n.Separator, n.Arg)
	case KindConvert:
		fmt.Fprintf(&sb, "[%s](%s)", n.Conv.Via, n.Arg)
	case KindNested:
		fmt.Fprintf(&sb, "[%s](%s)", n.Pair, n.Arg)
	case KindElements:
		fmt.Fprintf(&sb, "(%s, %s)", n.Arg, n.Elem)
	case KindEntries:
		fmt.Fprintf(&sb, "(%s, %s: %s)", n.Arg, argString(n.KeyElem, "name"), n.Elem)
	}

	return sb.String()
}

func argString(n *Node, empty string) string {
	if n == nil {
		return empty
	}

	return n.String()
}
