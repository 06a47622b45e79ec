package gen

import (
	"fmt"
	"reflect"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/plan"
	"shape-mapper/node"
)

// source is a lowered data source.
type source struct {
	condition *node.Condition
	value     evalFunc
	fallback  bool
}

// sourceSet is a lowered data source set.
type sourceSet struct {
	set     *plan.DataSourceSet
	sources []source
}

func (l *lowerer) lowerSet(s *plan.DataSourceSet) *sourceSet {
	out := &sourceSet{set: s, sources: make([]source, 0, len(s.Sources))}

	for i := range s.Sources {
		ds := &s.Sources[i]
		out.sources = append(out.sources, source{
			condition: ds.Condition,
			value:     l.lowerValue(ds.Value),
			fallback:  ds.Fallback,
		})
	}

	return out
}

// eval returns the value of the first source that yields one. ok is false
// when a fallback source is reached or every source declined.
func (s *sourceSet) eval(f *frame) (reflect.Value, bool, error) {
	for _, src := range s.sources {
		if src.fallback {
			return reflect.Value{}, false, nil
		}

		hold, err := src.condition.Eval(f.ctx)
		if err != nil {
			return reflect.Value{}, false, err
		}

		if !hold {
			continue
		}

		v, ok, err := src.value(f)
		if err != nil {
			return reflect.Value{}, false, err
		}

		if ok {
			return v, true, nil
		}
	}

	return reflect.Value{}, false, nil
}

// assigner populates one target member.
type assigner struct {
	*sourceSet
	member *analyze.QualifiedMember
}

// assign evaluates the set and stores the value. Nothing is stored when no
// source yields a value, or when the set only fills zero members and the
// member already holds a value.
func (a *assigner) assign(f *frame) error {
	q := a.member

	current, _ := q.Get(f.dst)
	if a.set.OnlyIfZero && current.IsValid() && !current.IsZero() {
		return nil
	}

	f.member = current
	defer func() { f.member = reflect.Value{} }()

	v, ok, err := a.eval(f)
	if err != nil {
		return fmt.Errorf("%s: %w", q.Path(), err)
	}

	if !ok {
		return nil
	}

	stored, ok := Fit(v, q.Type)
	if !ok {
		return fmt.Errorf("%s: cannot store %s as %s", q.Path(), v.Type(), analyze.TypeString(q.Type))
	}

	if !set(q, f.dst, stored) {
		return fmt.Errorf("%s: member is not writable", q.Path())
	}

	return nil
}

// set stores v in the member q of the instance dst.
func set(q *analyze.QualifiedMember, dst, v reflect.Value) bool {
	obj := dst
	if q.Parent != nil && !q.Parent.IsRoot() {
		parent, ok := q.Parent.Get(dst)
		if !ok {
			return false
		}

		obj = parent
	}

	return q.Member.Set(obj, v)
}

// lowerMembers lowers the member sets of p in assignment order. Ignored
// sets are left out.
func (l *lowerer) lowerMembers(p *plan.MappingPlan) ([]*assigner, error) {
	order, err := orderMembers(p.Members)
	if err != nil {
		return nil, err
	}

	out := make([]*assigner, 0, len(order))

	for _, i := range order {
		s := &p.Members[i]
		if s.Ignored || !s.HasValue() {
			continue
		}

		out = append(out, &assigner{sourceSet: l.lowerSet(s), member: s.Member})
	}

	return out, nil
}

// dictionary maps a complex source to a string-keyed dictionary, one entry
// per member set.
func (l *lowerer) dictionary(p *plan.MappingPlan) (runFunc, error) {
	order, err := orderMembers(p.Members)
	if err != nil {
		return nil, err
	}

	sets := make([]*sourceSet, 0, len(order))
	for _, i := range order {
		if !p.Members[i].Ignored {
			sets = append(sets, l.lowerSet(&p.Members[i]))
		}
	}

	t := p.Signature.Target
	kt, et := t.Key(), t.Elem()

	return func(ctx *node.Context, src, _ reflect.Value) (reflect.Value, bool, error) {
		src, ok := unwrap(src)
		if !ok {
			return reflect.Value{}, false, nil
		}

		out := reflect.MakeMapWithSize(t, len(sets))
		ctx.Target = out.Interface()
		f := &frame{ctx: ctx, src: src}

		for _, s := range sets {
			v, ok, err := s.eval(f)
			if err != nil {
				return reflect.Value{}, false, fmt.Errorf("%s: %w", s.set.Key, err)
			}

			if !ok {
				continue
			}

			stored, ok := Fit(v, et)
			if !ok {
				return reflect.Value{}, false, fmt.Errorf("%s: cannot store %s as %s", s.set.Key, v.Type(), et)
			}

			out.SetMapIndex(reflect.ValueOf(s.set.Key).Convert(kt), stored)
		}

		return out, true, nil
	}, nil
}
