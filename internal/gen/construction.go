package gen

import (
	"fmt"
	"reflect"
	"strings"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/diagnostic"
	"shape-mapper/internal/plan"
	"shape-mapper/node"
)

// candidate is a lowered construction candidate. build returns the new
// instance and the members it already set, or ok false to decline.
type candidate struct {
	condition *node.Condition
	build     func(f *frame) (inst reflect.Value, supplied []string, ok bool, err error)
}

// lowerConstruction lowers the selected candidates of p in order.
func (l *lowerer) lowerConstruction(p *plan.MappingPlan) []candidate {
	if p.Construction == nil {
		return nil
	}

	target := p.Signature.Target
	out := make([]candidate, 0, len(p.Construction.Selected))

	for _, c := range p.Construction.Selected {
		cand := candidate{condition: c.Condition}

		switch c.Origin {
		case plan.CandidateConfigured:
			cand.build = l.configured(c, target)
		case plan.CandidateFactoryMethod, plan.CandidateConstructor:
			cand.build = l.registered(c)
		default:
			cand.build = func(*frame) (reflect.Value, []string, bool, error) {
				return reflect.New(target), nil, true, nil
			}
		}

		out = append(out, cand)
	}

	return out
}

// configured builds the instance from a configured value. A nil value
// declines.
func (l *lowerer) configured(c *plan.ConstructionCandidate, target reflect.Type) func(*frame) (reflect.Value, []string, bool, error) {
	value := l.lower(c.Value)

	return func(f *frame) (reflect.Value, []string, bool, error) {
		v, ok, err := value(f)
		if err != nil || !ok {
			return reflect.Value{}, nil, false, err
		}

		if target.Kind() == reflect.Interface {
			v, ok = Fit(v, target)
			if !ok || v.IsNil() {
				return reflect.Value{}, nil, false, nil
			}

			return v, nil, true, nil
		}

		inst := instance(v, target)

		return inst, nil, inst.IsValid(), nil
	}
}

// registered calls a registered function. Parameters without a value get
// their type default.
func (l *lowerer) registered(c *plan.ConstructionCandidate) func(*frame) (reflect.Value, []string, bool, error) {
	ctor := c.Ctor

	params := make([]*sourceSet, len(c.Params))
	for i := range c.Params {
		params[i] = l.lowerSet(&c.Params[i])
	}

	return func(f *frame) (reflect.Value, []string, bool, error) {
		args := make([]reflect.Value, len(params))

		for i, s := range params {
			pt := ctor.Params[i].Type

			v, ok, err := s.eval(f)
			if err != nil {
				return reflect.Value{}, nil, false, fmt.Errorf("%s(%s): %w", ctor, ctor.Params[i].Name, err)
			}

			if !ok {
				args[i] = reflect.Zero(pt)
				continue
			}

			if args[i], ok = Fit(v, pt); !ok {
				return reflect.Value{}, nil, false, fmt.Errorf("%s(%s): cannot pass %s as %s",
					ctor, ctor.Params[i].Name, v.Type(), analyze.TypeString(pt))
			}
		}

		inst, err := ctor.Call(args)
		if err != nil {
			return reflect.Value{}, nil, false, fmt.Errorf("%s: %w", ctor, err)
		}

		return inst, c.Supplies, true, nil
	}
}

// construct tries the candidates in order. Without a taker the target is
// the zero value; interface targets have none and yield no instance.
func construct(f *frame, candidates []candidate, target reflect.Type) (reflect.Value, []string, error) {
	for _, c := range candidates {
		hold, err := c.condition.Eval(f.ctx)
		if err != nil {
			return reflect.Value{}, nil, err
		}

		if !hold {
			continue
		}

		inst, supplied, ok, err := c.build(f)
		if err != nil {
			return reflect.Value{}, nil, err
		}

		if ok {
			return inst, supplied, nil
		}
	}

	if target.Kind() == reflect.Interface {
		return reflect.Value{}, nil, &diagnostic.ConstructionImpossibleError{
			Type: target, Reason: "every construction candidate declined",
		}
	}

	return reflect.New(target), nil, nil
}

// complex maps onto a complex target: look up the instance registry,
// construct or reuse the target, register it, then assign the members.
func (l *lowerer) complex(p *plan.MappingPlan) (runFunc, error) {
	assigners, err := l.lowerMembers(p)
	if err != nil {
		return nil, err
	}

	candidates := l.lowerConstruction(p)
	sig := p.Signature
	target := sig.Target
	iface := target.Kind() == reflect.Interface

	return func(ctx *node.Context, src, existing reflect.Value) (reflect.Value, bool, error) {
		src, ok := unwrap(src)
		if !ok {
			return reflect.Value{}, false, nil
		}

		if sig.RuntimeCheck {
			if inst, ok := ctx.Registry().Lookup(src, target); ok {
				return inst, true, nil
			}
		}

		f := &frame{ctx: ctx, src: src}

		var (
			inst     reflect.Value
			supplied []string
			err      error
		)

		if sig.Intent.UsesExisting() && !iface {
			inst = instance(existing, target)
		}

		if !inst.IsValid() {
			if inst, supplied, err = construct(f, candidates, target); err != nil {
				return reflect.Value{}, false, err
			}
		}

		if sig.RuntimeCheck {
			ctx.Registry().Register(src, target, inst)
		}

		ctx.Target = asInterface(inst)

		if iface {
			return inst, true, nil
		}

		f.dst = inst

		for _, a := range assigners {
			if suppliedBy(supplied, a.member.Name()) {
				continue
			}

			if err := a.assign(f); err != nil {
				return reflect.Value{}, false, err
			}
		}

		return inst, true, nil
	}, nil
}

func suppliedBy(supplied []string, name string) bool {
	for _, s := range supplied {
		if strings.EqualFold(s, name) {
			return true
		}
	}

	return false
}
