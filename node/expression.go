package node

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"

	"shape-mapper/internal/common"
)

// Expression is an expr-lang program evaluated against Context.Env, e.g.
// `Source.FirstName + " " + Source.LastName` or `Source.Age >= 18`.
type Expression struct {
	text    string
	program *vm.Program
	targets []string
}

// CompileExpression type-checks text against the source and target types,
// when known, and compiles it. The compiled program itself is untyped so that
// it also runs for types derived from source and target.
func CompileExpression(text string, source, target reflect.Type, opts ...expr.Option) (*Expression, error) {
	tree, err := parser.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("expression %q: %w", text, err)
	}

	typed := append([]expr.Option{expr.Env(envPrototype(source, target))}, opts...)
	if _, err := expr.Compile(text, typed...); err != nil {
		return nil, fmt.Errorf("expression %q: %w", text, err)
	}

	program, err := expr.Compile(text, opts...)
	if err != nil {
		return nil, fmt.Errorf("expression %q: %w", text, err)
	}

	return &Expression{text: text, program: program, targets: targetMembers(tree.Node)}, nil
}

// envPrototype mirrors Context.Env as a struct value. Source and Target carry
// the given types; unknown and interface types, Parent and Key are any, so
// member access on them is checked only at runtime.
func envPrototype(source, target reflect.Type) any {
	anyType := reflect.TypeFor[any]()

	fields := []reflect.StructField{
		{Name: "Source", Type: protoType(source)},
		{Name: "Target", Type: protoType(target)},
		{Name: "Parent", Type: anyType},
		{Name: "Index", Type: reflect.TypeFor[int]()},
		{Name: "Key", Type: anyType},
		{Name: "Intent", Type: reflect.TypeFor[string]()},
	}

	return reflect.New(reflect.StructOf(fields)).Elem().Interface()
}

func protoType(t reflect.Type) reflect.Type {
	t = common.Deref(t)
	if t == nil || t.Kind() == reflect.Interface {
		return reflect.TypeFor[any]()
	}

	return reflect.PointerTo(t)
}

// Eval runs the expression in ctx.
func (e *Expression) Eval(ctx *Context) (any, error) {
	out, err := vm.Run(e.program, ctx.Env())
	if err != nil {
		return nil, fmt.Errorf("expression %q: %w", e.text, err)
	}

	return out, nil
}

// Targets returns the names of the Target members the expression reads.
func (e *Expression) Targets() []string {
	return slices.Clone(e.targets)
}

// String returns the expression text.
func (e *Expression) String() string {
	return e.text
}

type targetVisitor struct {
	names []string
}

func (v *targetVisitor) Visit(n *ast.Node) {
	member, ok := (*n).(*ast.MemberNode)
	if !ok {
		return
	}

	ident, ok := member.Node.(*ast.IdentifierNode)
	if !ok || ident.Value != "Target" {
		return
	}

	if prop, ok := member.Property.(*ast.StringNode); ok && !slices.Contains(v.names, prop.Value) {
		v.names = append(v.names, prop.Value)
	}
}

func targetMembers(root ast.Node) []string {
	v := &targetVisitor{}
	ast.Walk(&root, v)

	return v.names
}
