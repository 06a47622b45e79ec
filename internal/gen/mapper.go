package gen

import (
	"fmt"
	"reflect"
	"sync"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/diagnostic"
	"shape-mapper/internal/plan"
	"shape-mapper/node"
)

// Linker resolves the mapper of a nested signature. Implementations
// normalize the signature and cache what they return.
type Linker interface {
	Link(sig node.Signature) (*Mapper, error)
}

// runFunc executes a plan. src and existing may be invalid.
type runFunc func(ctx *node.Context, src, existing reflect.Value) (reflect.Value, bool, error)

// Mapper is a compiled mapping plan. It is immutable and safe for
// concurrent use.
//
// Results come in instance form: a pointer for complex targets, an
// interface value for interface targets, the value itself otherwise.
type Mapper struct {
	plan *plan.MappingPlan
	run  runFunc
}

// Compile lowers p. Nested signatures are linked through linker on first
// use, so plans referencing themselves compile without recursion.
func Compile(p *plan.MappingPlan, linker Linker) (*Mapper, error) {
	l := newLowerer(linker)

	var (
		run runFunc
		err error
	)

	switch p.Kind {
	case node.DispatcherPrimitive:
		run = convertRoot(p)
	case node.DispatcherSlice, node.DispatcherMap:
		run = l.collection(p)
	case node.DispatcherDictionary:
		run, err = l.dictionary(p)
	case node.DispatcherStruct, node.DispatcherMaptime:
		run, err = l.complex(p)
	case node.DispatcherInterface:
		run = l.dispatch(p)
	default:
		err = fmt.Errorf("%w: %s", diagnostic.ErrIncompatibleRoot, p.Signature)
	}

	if err != nil {
		return nil, err
	}

	return &Mapper{plan: p, run: run}, nil
}

// Signature returns the mapped signature.
func (m *Mapper) Signature() node.Signature {
	return m.plan.Signature
}

// Plan returns the plan the mapper was compiled from.
func (m *Mapper) Plan() *plan.MappingPlan {
	return m.plan
}

// Invoke maps source, onto existing when the intent starts from an existing
// target. A nil ctx starts a top-level call with a fresh instance registry;
// otherwise the call is nested in ctx. The result is nil when the source
// is nil.
func (m *Mapper) Invoke(source, existing any, ctx *node.Context) (any, error) {
	if ctx == nil {
		ctx = node.NewContext(m.plan.Signature.Intent)
		ctx.Source, ctx.Target = source, existing
	} else {
		ctx = ctx.Child(source, existing)
	}

	out, ok, err := m.Call(ctx, reflect.ValueOf(source), reflect.ValueOf(existing))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.plan.Signature, err)
	}

	if !ok {
		return nil, nil
	}

	return asInterface(out), nil
}

// Call is Invoke over reflect values, in the context of this mapping.
func (m *Mapper) Call(ctx *node.Context, src, existing reflect.Value) (reflect.Value, bool, error) {
	return m.run(ctx, src, existing)
}

// link resolves a nested mapper once.
type link struct {
	sig    node.Signature
	linker Linker

	once   sync.Once
	mapper *Mapper
	err    error
}

func (l *link) get() (*Mapper, error) {
	l.once.Do(func() {
		if l.linker == nil {
			l.err = fmt.Errorf("no mapper for %s", l.sig)
			return
		}

		l.mapper, l.err = l.linker.Link(l.sig)
	})

	return l.mapper, l.err
}

// linkTo returns the shared link of sig.
func (l *lowerer) linkTo(sig node.Signature) *link {
	if lk, ok := l.links[sig]; ok {
		return lk
	}

	lk := &link{sig: sig, linker: l.linker}
	l.links[sig] = lk

	return lk
}

// nested maps the argument with the mapper of the pair. onto passes the
// current member value as the existing target.
func (l *lowerer) nested(n *node.Node, onto bool) evalFunc {
	arg := l.lower(n.Arg)
	lk := l.linkTo(n.Pair)

	return func(f *frame) (reflect.Value, bool, error) {
		v, ok, err := arg(f)
		if err != nil || !ok {
			return reflect.Value{}, false, err
		}

		if _, ok := unwrap(v); !ok || nilable(v) {
			return reflect.Zero(n.Type), true, nil
		}

		m, err := lk.get()
		if err != nil {
			return reflect.Value{}, false, err
		}

		var existing reflect.Value
		if onto && f.ctx.Intent.UsesExisting() && f.member.IsValid() {
			existing = f.member
			if existing.CanAddr() && existing.Kind() != reflect.Pointer {
				existing = existing.Addr()
			}
		}

		out, ok, err := m.Call(f.ctx.Child(asInterface(v), asInterface(existing)), v, existing)
		if err != nil || !ok {
			return reflect.Value{}, false, err
		}

		fitted, ok := Fit(out, n.Type)
		if !ok {
			return reflect.Value{}, false, &diagnostic.UnconvertibleTypeError{
				Path: n.Pair.String(), SourceType: out.Type(), TargetType: n.Type,
			}
		}

		return fitted, true, nil
	}
}

// convertRoot converts the whole source of a primitive pair.
func convertRoot(p *plan.MappingPlan) runFunc {
	sig := p.Signature
	wrapped := analyze.Classify(sig.Source) == analyze.TypeKindInterface

	return func(_ *node.Context, src, _ reflect.Value) (reflect.Value, bool, error) {
		in, ok := unwrap(src)
		if !ok {
			return reflect.Value{}, false, nil
		}

		if !wrapped {
			for in.Kind() == reflect.Pointer && in.Type() != sig.Source {
				if in, ok = unwrap(in.Elem()); !ok {
					return reflect.Value{}, false, nil
				}
			}
		}

		v, ok := Fit(in, sig.Source)
		if !ok {
			return reflect.Value{}, false, &diagnostic.UnconvertibleTypeError{
				Path: sig.String(), SourceType: in.Type(), TargetType: sig.Source,
			}
		}

		out, ok := p.Conversion.Convert(v)
		if !ok {
			return reflect.Value{}, false, &diagnostic.UnconvertibleTypeError{
				Path: sig.String(), SourceType: in.Type(), TargetType: sig.Target,
			}
		}

		return out, true, nil
	}
}

// collection runs the root node of enumerable and dictionary pairs.
func (l *lowerer) collection(p *plan.MappingPlan) runFunc {
	root := l.lower(p.Root)

	return func(ctx *node.Context, src, _ reflect.Value) (reflect.Value, bool, error) {
		src, ok := unwrap(src)
		if !ok {
			return reflect.Value{}, false, nil
		}

		return root(&frame{ctx: ctx, src: src})
	}
}
