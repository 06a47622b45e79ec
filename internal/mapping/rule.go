package mapping

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/common"
	"shape-mapper/node"
)

// RuleKind tags the variant of a Rule.
type RuleKind int

const (
	RuleIgnore       RuleKind = iota + 1 // target member is never assigned
	RuleIgnoreSource                     // source member is never read
	RuleIgnoreFilter                     // target members matching a filter are never assigned
	RuleDataSource                       // value source for a target member, a filter or the whole target
	RuleFactory                          // function producing a target value from a source value
	RuleConverter                        // user conversion between two exact types
	RuleDerivedPair                      // runtime source type mapped to a derived target type
	RuleReversal                         // opt in or out of mirroring path data sources
)

// String returns a human-readable representation of the RuleKind.
func (k RuleKind) String() string {
	switch k {
	case RuleIgnore:
		return "ignore"
	case RuleIgnoreSource:
		return "ignore source"
	case RuleIgnoreFilter:
		return "ignore filter"
	case RuleDataSource:
		return "data source"
	case RuleFactory:
		return "factory"
	case RuleConverter:
		return "converter"
	case RuleDerivedPair:
		return "derived pair"
	case RuleReversal:
		return "reversal"
	default:
		return common.UnknownStr
	}
}

// MemberFilter selects target members by predicate.
type MemberFilter struct {
	Desc  string
	Match func(*analyze.Member) bool
}

// Where returns a filter described by desc.
func Where(desc string, fn func(*analyze.Member) bool) *MemberFilter {
	return &MemberFilter{Desc: desc, Match: fn}
}

// FieldsOnly selects struct fields, leaving properties and setters alone.
func FieldsOnly() *MemberFilter {
	return Where("fields", (*analyze.Member).IsField)
}

// MembersOfType selects members declared with type t.
func MembersOfType(t reflect.Type) *MemberFilter {
	return Where("members of type "+analyze.TypeString(t), func(m *analyze.Member) bool {
		return m.Type == t
	})
}

// And narrows f with another filter.
func (f *MemberFilter) And(other *MemberFilter) *MemberFilter {
	return Where(f.Desc+" and "+other.Desc, func(m *analyze.Member) bool {
		return f.Match(m) && other.Match(m)
	})
}

// ValueKind tells where a data source value comes from.
type ValueKind int

const (
	ValuePath         ValueKind = iota + 1 // source member path
	ValueConstant                          // fixed value
	ValueFunc                              // user function of the source value or the context
	ValueExpr                              // expression over the context
	ValueEntireSource                      // the source itself
)

// Value describes the value of a data source rule.
type Value struct {
	Kind ValueKind
	// Path is the source member read by ValuePath, and by ValueFunc when set.
	Path     string
	Constant reflect.Value
	Expr     string

	fn     any
	caster *node.Caster
	expr   *node.Expression
}

// FromPath reads a source member, e.g. "Customer.Name".
func FromPath(path string) Value {
	return Value{Kind: ValuePath, Path: path}
}

// FromConstant always yields v.
func FromConstant(v any) Value {
	return Value{Kind: ValueConstant, Constant: reflect.ValueOf(v)}
}

// FromFunc applies fn, a caster of the source value or of *node.Context.
func FromFunc(fn any) Value {
	return Value{Kind: ValueFunc, fn: fn}
}

// Through applies fn to the source member at path.
func Through(path string, fn any) Value {
	return Value{Kind: ValueFunc, Path: path, fn: fn}
}

// FromExpr evaluates an expression such as `Source.First + " " + Source.Last`.
func FromExpr(text string) Value {
	return Value{Kind: ValueExpr, Expr: text}
}

// FromSource uses the source value itself.
func FromSource() Value {
	return Value{Kind: ValueEntireSource}
}

// Caster returns the parsed function of a ValueFunc.
func (v Value) Caster() *node.Caster {
	return v.caster
}

// Expression returns the compiled expression of a ValueExpr.
func (v Value) Expression() *node.Expression {
	return v.expr
}

// String describes the value.
func (v Value) String() string {
	switch v.Kind {
	case ValuePath:
		return "from " + v.Path
	case ValueConstant:
		if !v.Constant.IsValid() {
			return "constant nil"
		}

		return "constant " + spew.Sprintf("%v", v.Constant.Interface())
	case ValueFunc:
		name := "func"
		if v.caster != nil {
			name += " " + v.caster.String()
		}

		if v.Path != "" {
			name += " of " + v.Path
		}

		return name
	case ValueExpr:
		return fmt.Sprintf("expr %q", v.Expr)
	case ValueEntireSource:
		return "entire source"
	default:
		return common.UnknownStr
	}
}

// Rule is one user-configured item. Build rules with the constructors below,
// refine them with If or IfExpr and register them with Registry.Register.
// A registered rule must not be modified.
type Rule struct {
	Kind  RuleKind
	Scope Scope
	// Member is the target member name for RuleIgnore and RuleDataSource
	// ("" targets the whole value), the source member path for RuleIgnoreSource.
	Member string
	Filter *MemberFilter
	Value  Value
	// Caster is the function of RuleFactory and RuleConverter.
	Caster *node.Caster
	// DerivedSource and DerivedTarget form a RuleDerivedPair.
	DerivedSource reflect.Type
	DerivedTarget reflect.Type
	// OptOut disables mirroring for a RuleReversal.
	OptOut bool

	Condition *node.Condition
	condExpr  string
	fn        any

	seq      int
	mirrored bool
}

// Ignore never assigns target member.
func Ignore(scope Scope, member string) *Rule {
	return &Rule{Kind: RuleIgnore, Scope: scope, Member: member}
}

// IgnoreSource never reads source member path.
func IgnoreSource(scope Scope, path string) *Rule {
	return &Rule{Kind: RuleIgnoreSource, Scope: scope, Member: path}
}

// IgnoreWhere never assigns target members matching filter.
func IgnoreWhere(scope Scope, filter *MemberFilter) *Rule {
	return &Rule{Kind: RuleIgnoreFilter, Scope: scope, Filter: filter}
}

// MapTo assigns target member from value.
func MapTo(scope Scope, member string, value Value) *Rule {
	return &Rule{Kind: RuleDataSource, Scope: scope, Member: member, Value: value}
}

// MapToWhere assigns every target member matching filter from value.
func MapToWhere(scope Scope, filter *MemberFilter, value Value) *Rule {
	return &Rule{Kind: RuleDataSource, Scope: scope, Filter: filter, Value: value}
}

// MapOnto obtains the whole target from value, e.g. a function building it.
// It is used when the target cannot be constructed otherwise.
func MapOnto(scope Scope, value Value) *Rule {
	return &Rule{Kind: RuleDataSource, Scope: scope, Value: value}
}

// Factory registers fn producing a target value from a source value within
// scope. A factory producing the scope target constructs it; a factory
// producing a simple type supplies members of that type.
func Factory(scope Scope, fn any) *Rule {
	return &Rule{Kind: RuleFactory, Scope: scope, fn: fn}
}

// Converter registers fn as a conversion tried before the built-in ones.
func Converter(fn any) *Rule {
	return &Rule{Kind: RuleConverter, fn: fn}
}

// Derived maps runtime sources of type src, declared as the scope source,
// to dst, which must derive from the scope target.
func Derived(scope Scope, src, dst reflect.Type) *Rule {
	return &Rule{
		Kind: RuleDerivedPair, Scope: scope,
		DerivedSource: common.Deref(src), DerivedTarget: common.Deref(dst),
	}
}

// Reverse mirrors every path-to-path data source of scope into the reversed scope.
func Reverse(scope Scope) *Rule {
	return &Rule{Kind: RuleReversal, Scope: scope}
}

// NoReverse opts scope out of mirroring.
func NoReverse(scope Scope) *Rule {
	return &Rule{Kind: RuleReversal, Scope: scope, OptOut: true}
}

// If guards the rule with fn.
func (r *Rule) If(fn func(*node.Context) bool) *Rule {
	r.Condition = node.NewCondition(fn)
	r.condExpr = ""

	return r
}

// IfExpr guards the rule with a boolean expression, compiled at registration.
func (r *Rule) IfExpr(text string) *Rule {
	r.Condition = nil
	r.condExpr = text

	return r
}

// IsConditional reports whether the rule carries a condition.
func (r *Rule) IsConditional() bool {
	return r.Condition != nil || r.condExpr != ""
}

// IsMirrored reports whether the rule was created by a reversal.
func (r *Rule) IsMirrored() bool {
	return r.mirrored
}

// Seq returns the registration order of the rule.
func (r *Rule) Seq() int {
	return r.seq
}

// AppliesTo reports whether the rule targets m, by filter or by name.
func (r *Rule) AppliesTo(m *analyze.Member) bool {
	if r.Filter != nil {
		return r.Filter.Match(m)
	}

	return r.Member == m.Name
}

// String describes the rule for diagnostics.
func (r *Rule) String() string {
	var sb strings.Builder

	switch r.Kind {
	case RuleIgnore:
		fmt.Fprintf(&sb, "ignore %s", r.Member)
	case RuleIgnoreSource:
		fmt.Fprintf(&sb, "ignore source %s", r.Member)
	case RuleIgnoreFilter:
		fmt.Fprintf(&sb, "ignore %s", r.Filter.Desc)
	case RuleDataSource:
		switch {
		case r.Filter != nil:
			fmt.Fprintf(&sb, "map %s %s", r.Filter.Desc, r.Value)
		case r.Member == "":
			fmt.Fprintf(&sb, "map target %s", r.Value)
		default:
			fmt.Fprintf(&sb, "map %s %s", r.Member, r.Value)
		}
	case RuleFactory, RuleConverter:
		name := "?"
		if r.Caster != nil {
			name = fmt.Sprintf("%s(%s) %s", r.Caster, analyze.TypeString(r.Caster.Src), analyze.TypeString(r.Caster.Dst))
		}

		fmt.Fprintf(&sb, "%s %s", r.Kind, name)
	case RuleDerivedPair:
		fmt.Fprintf(&sb, "derive %s -> %s", analyze.TypeString(r.DerivedSource), analyze.TypeString(r.DerivedTarget))
	case RuleReversal:
		if r.OptOut {
			sb.WriteString("no reverse")
		} else {
			sb.WriteString("reverse")
		}
	default:
		sb.WriteString(r.Kind.String())
	}

	if r.IsConditional() {
		fmt.Fprintf(&sb, " if %s", r.conditionText())
	}

	if r.Kind != RuleConverter {
		fmt.Fprintf(&sb, " in %s", r.Scope)
	}

	return sb.String()
}

func (r *Rule) conditionText() string {
	if r.Condition != nil {
		return r.Condition.String()
	}

	return r.condExpr
}
