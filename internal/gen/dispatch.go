package gen

import (
	"fmt"
	"reflect"
	"sync"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/common"
	"shape-mapper/internal/diagnostic"
	"shape-mapper/internal/plan"
	"shape-mapper/node"
)

// branch is a lowered derived-type branch.
type branch struct {
	source    reflect.Type
	condition *node.Condition
	link      *link
}

// dispatch maps by runtime type: the first branch whose source the runtime
// type derives from and whose condition holds wins, then structural
// detection when the plan allows it.
func (l *lowerer) dispatch(p *plan.MappingPlan) runFunc {
	sig := p.Signature

	branches := make([]branch, len(p.Branches))
	for i, b := range p.Branches {
		branches[i] = branch{
			source:    b.Source,
			condition: b.Condition,
			link:      l.linkTo(sig.With(b.Source, b.Target)),
		}
	}

	var structural sync.Map // reflect.Type -> *link

	detect := func(rt reflect.Type) (*link, error) {
		if lk, ok := structural.Load(rt); ok {
			return lk.(*link), nil
		}

		target := sig.Target
		if target.Kind() == reflect.Interface {
			if target = plan.MatchImplementation(rt, sig.Target, p.Implementations); target == nil {
				return nil, &diagnostic.ConstructionImpossibleError{
					Type:   sig.Target,
					Reason: fmt.Sprintf("no implementation for runtime type %s", analyze.TypeString(rt)),
				}
			}
		}

		lk, _ := structural.LoadOrStore(rt, &link{sig: sig.With(common.Deref(rt), common.Deref(target)), linker: l.linker})

		return lk.(*link), nil
	}

	return func(ctx *node.Context, src, existing reflect.Value) (reflect.Value, bool, error) {
		src, ok := unwrap(src)
		if !ok {
			return reflect.Value{}, false, nil
		}

		rt := src.Type()

		for _, b := range branches {
			if _, ok := analyze.DerivesFrom(rt, b.source); !ok {
				continue
			}

			hold, err := b.condition.Eval(ctx)
			if err != nil {
				return reflect.Value{}, false, err
			}

			if !hold {
				continue
			}

			v, ok := upcast(src, b.source)
			if !ok {
				continue
			}

			return finish(ctx, b.link, v, existing, sig.Target)
		}

		if !p.Structural {
			return reflect.Value{}, false, nil
		}

		lk, err := detect(rt)
		if err != nil {
			return reflect.Value{}, false, err
		}

		return finish(ctx, lk, src, existing, sig.Target)
	}
}

// finish runs the mapper of a branch and stores its result as the declared target.
func finish(ctx *node.Context, lk *link, src, existing reflect.Value, declared reflect.Type) (reflect.Value, bool, error) {
	m, err := lk.get()
	if err != nil {
		return reflect.Value{}, false, err
	}

	target := m.Signature().Target
	if target.Kind() != reflect.Interface {
		existing = instance(existing, target)
	}

	out, ok, err := m.Call(ctx, src, existing)
	if err != nil || !ok {
		return reflect.Value{}, false, err
	}

	if declared.Kind() != reflect.Interface {
		return out, true, nil
	}

	stored, ok := Fit(out, declared)
	if !ok {
		return reflect.Value{}, false, &diagnostic.UnconvertibleTypeError{
			Path: m.Signature().String(), SourceType: out.Type(), TargetType: declared,
		}
	}

	return stored, true, nil
}
