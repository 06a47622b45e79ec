package mapping

import (
	"reflect"
	"slices"
	"strings"

	"shape-mapper/internal/coerce"
	"shape-mapper/internal/diagnostic"
)

// staging collects the rules of one Register call on a copy of the registry.
type staging struct {
	registry   *Registry
	rules      []*Rule
	seq        int
	converters []coerce.Converter
}

func (s *staging) add(rule *Rule) error {
	for _, existing := range slices.Clone(s.rules) {
		err := s.registry.conflict(existing, rule)
		if err == nil {
			continue
		}

		// explicit rules replace mirrored ones
		if existing.mirrored && !rule.mirrored {
			s.remove(existing)
			continue
		}

		return err
	}

	if err := s.checkCycles(rule); err != nil {
		return err
	}

	s.seq++
	rule.seq = s.seq
	s.rules = append(s.rules, rule)

	switch rule.Kind {
	case RuleConverter:
		s.converters = append(s.converters, converterOf(rule))

	case RuleReversal:
		if !rule.OptOut {
			for _, existing := range slices.Clone(s.rules) {
				if existing.Scope == rule.Scope {
					s.mirror(existing)
				}
			}
		}

	case RuleDataSource:
		if s.reversible(rule.Scope) {
			s.mirror(rule)
		}
	}

	return nil
}

func (s *staging) remove(rule *Rule) {
	s.rules = slices.DeleteFunc(s.rules, func(r *Rule) bool { return r == rule })
}

func (s *staging) reversible(scope Scope) bool {
	reversed := false

	for _, r := range s.rules {
		if r.Kind == RuleReversal && r.Scope == scope {
			reversed = !r.OptOut
		}
	}

	return reversed
}

// mirror adds the reversed form of a path-to-path data source. Mirrors never
// replace rules in the reversed scope, and nested paths are not unflattened.
func (s *staging) mirror(rule *Rule) {
	if rule.Kind != RuleDataSource || rule.mirrored || rule.IsConditional() ||
		rule.Filter != nil || rule.Member == "" || rule.Value.Kind != ValuePath ||
		strings.ContainsAny(rule.Value.Path, ".[]") {
		return
	}

	m := &Rule{
		Kind:     RuleDataSource,
		Scope:    rule.Scope.Reversed(),
		Member:   rule.Value.Path,
		Value:    FromPath(rule.Member),
		mirrored: true,
	}

	if s.registry.prepare(m) != nil {
		return
	}

	for _, existing := range s.rules {
		if s.registry.conflict(existing, m) != nil {
			return
		}
	}

	s.seq++
	m.seq = s.seq
	s.rules = append(s.rules, m)
}

// checkCycles rejects derived pairs looping back to their scope pair and
// reversal opted into in both directions.
func (s *staging) checkCycles(rule *Rule) error {
	switch rule.Kind {
	case RuleReversal:
		if rule.OptOut || !rule.Scope.IsConcrete() {
			return nil
		}

		back := rule.Scope.Reversed()
		if s.reversible(back) {
			return &diagnostic.CyclicConfigurationError{Cycle: []string{
				pairString(rule.Scope.Source, rule.Scope.Target),
				pairString(back.Source, back.Target),
				pairString(rule.Scope.Source, rule.Scope.Target),
			}}
		}

	case RuleDerivedPair:
		start := pairString(rule.Scope.Source, rule.Scope.Target)
		edges := make(map[string][]string)

		for _, r := range append(slices.Clone(s.rules), rule) {
			if r.Kind == RuleDerivedPair {
				from := pairString(r.Scope.Source, r.Scope.Target)
				edges[from] = append(edges[from], pairString(r.DerivedSource, r.DerivedTarget))
			}
		}

		if cycle := findCycle(start, edges); cycle != nil {
			return &diagnostic.CyclicConfigurationError{Cycle: cycle}
		}
	}

	return nil
}

func findCycle(start string, edges map[string][]string) []string {
	var (
		path []string
		walk func(cur string) bool
	)

	onPath := make(map[string]bool)

	walk = func(cur string) bool {
		path = append(path, cur)
		onPath[cur] = true

		for _, next := range edges[cur] {
			if next == start {
				path = append(path, next)
				return true
			}

			if !onPath[next] && walk(next) {
				return true
			}
		}

		path = path[:len(path)-1]
		delete(onPath, cur)

		return false
	}

	if walk(start) {
		return path
	}

	return nil
}

func converterOf(rule *Rule) coerce.Converter {
	c := *rule.Caster

	return coerce.Converter{
		Name:     c.String(),
		Src:      c.Src,
		Dst:      c.Dst,
		Fallible: c.Fallible(),
		Func: func(v reflect.Value) (reflect.Value, bool) {
			out, ok, err := c.Call(nil, v)
			if err != nil {
				return reflect.Value{}, false
			}

			return out, ok
		},
	}
}
