package plan

import (
	"cmp"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/common"
	"shape-mapper/internal/diagnostic"
	"shape-mapper/internal/mapping"
	"shape-mapper/node"
)

// selectConstruction ranks the construction candidates of the target and
// selects the ones tried at runtime.
//
// Ranking: configured candidates first, unconditional ones ahead of
// conditional ones; then registered functions by descending parameter count,
// factory methods ahead of constructors at equal count. The zero value is
// the candidate of types without registered functions.
func (r *Resolver) selectConstruction(pc *pairContext) (*Construction, error) {
	c := &Construction{}

	configured := r.configuredCandidates(pc)
	slices.SortStableFunc(configured, func(a, b *ConstructionCandidate) int {
		return cmpBool(a.IsConditional(), b.IsConditional())
	})

	registered := r.registeredCandidates(pc)
	slices.SortStableFunc(registered, func(a, b *ConstructionCandidate) int {
		if n := cmp.Compare(len(b.Params), len(a.Params)); n != 0 {
			return n
		}

		return cmp.Compare(b.Origin.priority(), a.Origin.priority())
	})

	c.Candidates = append(configured, registered...)

	if len(r.catalog.Constructors(pc.sig.Target)) == 0 && analyze.Classify(pc.sig.Target) == analyze.TypeKindComplex {
		c.Candidates = append(c.Candidates, &ConstructionCandidate{Origin: CandidateZeroValue})
	}

	for _, cand := range c.Candidates {
		if !cand.Usable() {
			pc.plan.Diagnostics.AddInfo("candidate_unusable",
				fmt.Sprintf("%s: %s", cand, missingParams(cand)), pc.pair, "")

			continue
		}

		c.Selected = append(c.Selected, cand)

		if !cand.IsConditional() {
			c.Committed = true
			break
		}
	}

	if c.Committed {
		return c, nil
	}

	c.Failure = fmt.Sprintf("no unconditional usable candidate among %d", len(c.Candidates))

	r.log.Debug("construction fallback",
		slog.String("pair", pc.pair),
		slog.Int("candidates", len(c.Candidates)),
		slog.Int("conditional", len(c.Selected)))

	if r.opts.StrictConstruction && !pc.sig.Intent.UsesExisting() {
		return nil, &diagnostic.ConstructionImpossibleError{Type: pc.sig.Target, Reason: c.Failure}
	}

	pc.plan.Diagnostics.AddWarning("construction_fallback",
		fmt.Sprintf("%s; falling back to the %s", c.Failure, fallbackInstance(pc.sig.Intent)), pc.pair, "")

	return c, nil
}

func fallbackInstance(intent node.Intent) string {
	if intent.UsesExisting() {
		return "existing instance"
	}

	return "zero value"
}

func cmpBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}

func missingParams(c *ConstructionCandidate) string {
	if c.Origin == CandidateConfigured {
		return "value is not available"
	}

	var missing []string

	for i := range c.Params {
		if !c.Params[i].HasValue() {
			missing = append(missing, c.Params[i].Name())
		}
	}

	return "no value for " + strings.Join(missing, ", ")
}

// configuredCandidates turns factories producing the target and whole-target
// data sources into candidates, in relevance order.
func (r *Resolver) configuredCandidates(pc *pairContext) []*ConstructionCandidate {
	var out []*ConstructionCandidate

	for _, rule := range pc.rules {
		var (
			value *node.Node
			err   error
		)

		switch {
		case rule.Kind == mapping.RuleFactory:
			if common.Deref(rule.Caster.Dst) != pc.sig.Target {
				continue
			}

			value, err = r.factoryValue(pc, rule)
		case rule.Kind == mapping.RuleDataSource && rule.Member == "" && rule.Filter == nil:
			value, _, err = r.configuredValue(pc, rule, nil)
		default:
			continue
		}

		if err != nil {
			pc.plan.Diagnostics.AddWarning("configured_construction_skipped", err.Error(), pc.pair, "")
			continue
		}

		out = append(out, &ConstructionCandidate{
			Origin:    CandidateConfigured,
			Rule:      rule,
			Value:     value,
			Condition: rule.Condition,
		})
	}

	return out
}

// factoryValue applies a configured factory to the whole source, or to the
// context when the factory takes one.
func (r *Resolver) factoryValue(pc *pairContext, rule *mapping.Rule) (*node.Node, error) {
	c := rule.Caster

	var arg *node.Node

	if !c.Contextual {
		if !accepts(c.Src, pc.sig.Source) {
			return nil, fmt.Errorf("%w: %s takes %s", mapping.ErrFactoryScope, c, analyze.TypeString(c.Src))
		}

		arg = node.EntireSource(pc.sig.Source)
	}

	value, ok := r.adapt(pc.sig, node.Func(*c, arg), instanceType(pc.sig.Target, c.Dst))
	if !ok {
		return nil, &diagnostic.UnconvertibleTypeError{Path: rule.String(), SourceType: c.Dst, TargetType: pc.sig.Target}
	}

	return value, nil
}

// registeredCandidates resolves the parameters of the registered functions
// producing the target. Functions taking the target type are skipped.
func (r *Resolver) registeredCandidates(pc *pairContext) []*ConstructionCandidate {
	t := pc.sig.Target
	info := r.analyzer.Analyze(t)

	var out []*ConstructionCandidate

	for _, ctor := range r.catalog.Constructors(t) {
		if slices.ContainsFunc(ctor.Params, func(p *analyze.Member) bool { return common.Deref(p.Type) == t }) {
			pc.plan.Diagnostics.AddInfo("candidate_cycle",
				fmt.Sprintf("%s takes %s", ctor, analyze.TypeString(t)), pc.pair, "")

			continue
		}

		cand := &ConstructionCandidate{Origin: CandidateConstructor, Ctor: ctor}
		if ctor.Kind == analyze.KindFactoryMethod {
			cand.Origin = CandidateFactoryMethod
		}

		for _, p := range ctor.Params {
			q := analyze.NewParameter(t, p)
			cand.Params = append(cand.Params, r.resolveSet(pc, q, r.configuredSources(pc, q)))

			if m := info.MemberFold(p.Name); m != nil {
				cand.Supplies = append(cand.Supplies, m.Name)
			}
		}

		out = append(out, cand)
	}

	return out
}

// instanceType is the type a construction value produces: the target, or a
// pointer to it when the value is a pointer.
func instanceType(target, produced reflect.Type) reflect.Type {
	if produced.Kind() == reflect.Pointer {
		return reflect.PointerTo(target)
	}

	return target
}
