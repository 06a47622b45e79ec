package gen

import (
	"fmt"
	"reflect"

	"shape-mapper/internal/diagnostic"
	"shape-mapper/node"
)

// frame is the state one evaluation reads from.
type frame struct {
	ctx *node.Context
	// src is the mapped source, dst the target instance being populated
	// (invalid before construction).
	src, dst reflect.Value
	// item is the element or entry value inside Elements and Entries.
	item reflect.Value
	// member is the current value of the member being assigned.
	member reflect.Value
}

// evalFunc computes a value. ok is false when the value is not available,
// in which case the next data source is tried.
type evalFunc func(f *frame) (v reflect.Value, ok bool, err error)

// lowerer turns IR nodes into closures.
type lowerer struct {
	linker Linker
	links  map[node.Signature]*link
}

func newLowerer(linker Linker) *lowerer {
	return &lowerer{linker: linker, links: make(map[node.Signature]*link)}
}

// lowerValue lowers the root of a data source. A nested mapping at the root
// maps onto the existing member value when the intent starts from an
// existing target.
func (l *lowerer) lowerValue(n *node.Node) evalFunc {
	if n != nil && n.Kind == node.KindNested {
		return l.nested(n, true)
	}

	return l.lower(n)
}

func (l *lowerer) lower(n *node.Node) evalFunc {
	if n == nil {
		return func(*frame) (reflect.Value, bool, error) { return reflect.Value{}, false, nil }
	}

	switch n.Kind {
	case node.KindSource:
		return func(f *frame) (reflect.Value, bool, error) {
			v, ok := n.Path.Get(f.src)
			return v, ok, nil
		}
	case node.KindEntireSource:
		return func(f *frame) (reflect.Value, bool, error) { return f.src, f.src.IsValid(), nil }
	case node.KindItem:
		return func(f *frame) (reflect.Value, bool, error) { return f.item, f.item.IsValid(), nil }
	case node.KindConstant:
		return func(*frame) (reflect.Value, bool, error) { return n.Value, true, nil }
	case node.KindDefault:
		zero := reflect.Zero(n.Type)
		return func(*frame) (reflect.Value, bool, error) { return zero, true, nil }
	case node.KindExisting:
		return func(f *frame) (reflect.Value, bool, error) {
			v, ok := n.Path.Get(f.dst)
			return v, ok, nil
		}
	case node.KindFunc:
		return l.call(n)
	case node.KindExpression:
		return evaluate(n)
	case node.KindConvert:
		return l.convert(n)
	case node.KindLookup:
		return l.lookup(n)
	case node.KindSubset:
		return l.subset(n)
	case node.KindIndexed:
		return l.indexed(n)
	case node.KindNested:
		return l.nested(n, false)
	case node.KindElements:
		return l.elements(n)
	case node.KindEntries:
		return l.entries(n)
	default:
		return func(*frame) (reflect.Value, bool, error) {
			return reflect.Value{}, false, fmt.Errorf("cannot evaluate %s", n)
		}
	}
}

// call applies a user function to its argument, or to the context.
func (l *lowerer) call(n *node.Node) evalFunc {
	c := n.Caster

	if n.Arg == nil {
		return func(f *frame) (reflect.Value, bool, error) {
			return c.Call(f.ctx, reflect.Value{})
		}
	}

	arg := l.lower(n.Arg)

	return func(f *frame) (reflect.Value, bool, error) {
		v, ok, err := arg(f)
		if err != nil || !ok {
			return reflect.Value{}, false, err
		}

		out, ok, err := c.Call(f.ctx, v)
		if err != nil {
			return reflect.Value{}, false, fmt.Errorf("%s: %w", c, err)
		}

		return out, ok, nil
	}
}

// evaluate runs an expression. The result is held in an interface value.
func evaluate(n *node.Node) evalFunc {
	return func(f *frame) (reflect.Value, bool, error) {
		out, err := n.Expr.Eval(f.ctx)
		if err != nil {
			return reflect.Value{}, false, err
		}

		v := reflect.New(anyType).Elem()
		if out != nil {
			v.Set(reflect.ValueOf(out))
		}

		return v, true, nil
	}
}

// convert applies a coercion. Expression results that do not convert are
// errors; a nil expression result is the zero value.
func (l *lowerer) convert(n *node.Node) evalFunc {
	arg := l.lower(n.Arg)
	fromExpr := n.Arg.Kind == node.KindExpression

	return func(f *frame) (reflect.Value, bool, error) {
		v, ok, err := arg(f)
		if err != nil || !ok {
			return reflect.Value{}, false, err
		}

		if fromExpr && v.IsNil() {
			return reflect.Zero(n.Type), true, nil
		}

		out, ok := n.Conv.Convert(v)
		if !ok && fromExpr {
			return reflect.Value{}, false, &diagnostic.UnconvertibleTypeError{
				Path:       n.Arg.Expr.String(),
				SourceType: v.Elem().Type(),
				TargetType: n.Type,
			}
		}

		return out, ok, nil
	}
}
