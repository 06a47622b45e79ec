package plan

import (
	"fmt"
	"reflect"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/common"
	"shape-mapper/internal/diagnostic"
	"shape-mapper/internal/mapping"
	"shape-mapper/internal/match"
	"shape-mapper/node"
)

// matchMember finds the source member of q by tag, name, flattening and,
// when enabled, fuzzy ranking. No match is returned when one of the
// configured sources of q already reads the member found.
func (r *Resolver) matchMember(pc *pairContext, q *analyze.QualifiedMember, configured []DataSource) match.MemberMatch {
	mm := pc.matcher.Match(pc.sig.Source, q.Member)
	if !mm.Found && r.opts.Fuzzy {
		mm = pc.matcher.Fuzzy(pc.sig.Source, q.Member, r.chain, r.opts.MinScore, r.opts.MinGap)
	}

	if mm.Found && readsMember(configured, mm.Source) {
		pc.plan.Diagnostics.AddInfo("match_skipped",
			fmt.Sprintf("%s is already read by a configured source", mm.Source.Path()),
			pc.pair, q.Path())

		return match.MemberMatch{}
	}

	return mm
}

func readsMember(sources []DataSource, q *analyze.QualifiedMember) bool {
	for i := range sources {
		if sm := sources[i].SourceMember; sm != nil && sm.Path() == q.Path() {
			return true
		}
	}

	return false
}

// factorySources is strategy 3: configured factories producing the simple
// type of q from the type of the matched source member, tried in order,
// then the matched value converted directly.
func (r *Resolver) factorySources(pc *pairContext, q *analyze.QualifiedMember, mm match.MemberMatch) []DataSource {
	if !mm.Found || q.Kind() != analyze.TypeKindSimple {
		return nil
	}

	var out []DataSource

	for _, rule := range pc.rules {
		if rule.Kind != mapping.RuleFactory || rule.Caster.Contextual ||
			common.Deref(rule.Caster.Dst) != common.Deref(q.Type) || !accepts(rule.Caster.Src, mm.Source.Type) {
			continue
		}

		value, ok := r.adapt(pc.sig, node.Func(*rule.Caster, node.Source(mm.Source)), q.Type)
		if !ok {
			continue
		}

		out = append(out, DataSource{
			Origin:       OriginFactory,
			Value:        value,
			Condition:    rule.Condition,
			SourceMember: mm.Source,
			Rule:         rule,
			Explanation:  fmt.Sprintf("factory %s of %s", rule.Caster, mm.Source.Path()),
		})

		if !out[len(out)-1].IsConditional() {
			return out
		}
	}

	if len(out) == 0 {
		return nil
	}

	if direct, ok := r.adapt(pc.sig, node.Source(mm.Source), q.Type); ok {
		out = append(out, DataSource{
			Origin:       OriginFactory,
			Value:        direct,
			SourceMember: mm.Source,
			Explanation:  "direct " + mm.Source.Path(),
		})
	}

	return out
}

// matchedSources is strategy 4: the matched source member adapted to q by
// coercion or by a nested mapping.
func (r *Resolver) matchedSources(pc *pairContext, q *analyze.QualifiedMember, mm match.MemberMatch) []DataSource {
	if !mm.Found {
		return nil
	}

	value, ok := r.adapt(pc.sig, node.Source(mm.Source), q.Type)
	if !ok {
		pc.plan.Diagnostics.AddWarning("unconvertible_member",
			(&diagnostic.UnconvertibleTypeError{Path: q.Path(), SourceType: mm.Source.Type, TargetType: q.Type}).Error(),
			pc.pair, q.Path())

		return nil
	}

	return []DataSource{{
		Origin:       OriginMatched,
		Value:        value,
		SourceMember: mm.Source,
		Reason:       mm.Reason,
		Explanation:  fmt.Sprintf("%s %s", mm.Reason, mm.Source.Path()),
	}}
}

// accepts reports whether a function taking param can be called with a src value.
func accepts(param, src reflect.Type) bool {
	switch {
	case src.AssignableTo(param):
		return true
	case src.Kind() == reflect.Pointer && src.Elem().AssignableTo(param):
		return true
	case param.Kind() == reflect.Pointer && src.AssignableTo(param.Elem()):
		return true
	default:
		return false
	}
}
