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

// derivedBranches returns the configured derived pairs that apply to the
// plan, most derived source first, registration order breaking ties.
// Pairs whose target cannot stand for the declared target are dropped.
func (r *Resolver) derivedBranches(pc *pairContext) []Branch {
	type ranked struct {
		branch Branch
		depth  int
		seq    int
	}

	// A concrete source is always of its declared type at runtime.
	if analyze.Classify(pc.sig.Source) != analyze.TypeKindInterface &&
		analyze.Classify(pc.sig.Target) != analyze.TypeKindInterface {
		return nil
	}

	var list []ranked

	for _, rule := range pc.rules {
		if rule.Kind != mapping.RuleDerivedPair {
			continue
		}

		depth, ok := analyze.DerivesFrom(rule.DerivedSource, pc.sig.Source)
		if !ok {
			continue
		}

		if !Assignable(rule.DerivedTarget, pc.sig.Target) {
			r.dropBranch(pc, rule, fmt.Sprintf("%s cannot be stored as %s",
				analyze.TypeString(rule.DerivedTarget), analyze.TypeString(pc.sig.Target)))

			continue
		}

		if !r.constructible(pc.sig.With(rule.DerivedSource, rule.DerivedTarget)) {
			r.dropBranch(pc, rule, fmt.Sprintf("%s is not constructible and no rule maps the source onto it",
				analyze.TypeString(rule.DerivedTarget)))

			continue
		}

		list = append(list, ranked{
			branch: Branch{
				Source:    common.Deref(rule.DerivedSource),
				Target:    common.Deref(rule.DerivedTarget),
				Condition: rule.Condition,
				Rule:      rule,
			},
			depth: depth,
			seq:   rule.Seq(),
		})
	}

	slices.SortStableFunc(list, func(a, b ranked) int {
		if n := cmp.Compare(b.depth, a.depth); n != 0 {
			return n
		}

		return cmp.Compare(a.seq, b.seq)
	})

	out := make([]Branch, len(list))
	for i := range list {
		out[i] = list[i].branch
	}

	return out
}

func (r *Resolver) dropBranch(pc *pairContext, rule *mapping.Rule, reason string) {
	pc.plan.Diagnostics.AddInfo("derived_branch_dropped", fmt.Sprintf("%s: %s", rule, reason), pc.pair, "")

	r.log.Debug("dropped derived branch",
		slog.String("pair", pc.pair),
		slog.String("rule", rule.String()),
		slog.String("reason", reason))
}

// constructible reports whether the target of sig can be instantiated:
// concrete types always can, interfaces only through a configured
// whole-target data source or factory.
func (r *Resolver) constructible(sig node.Signature) bool {
	if analyze.Classify(sig.Target) != analyze.TypeKindInterface {
		return true
	}

	for _, rule := range r.registry.RelevantItemsFor(r.Normalize(sig)) {
		switch {
		case rule.Kind == mapping.RuleDataSource && rule.Member == "" && rule.Filter == nil:
			return true
		case rule.Kind == mapping.RuleFactory && common.Deref(rule.Caster.Dst) == common.Deref(sig.Target):
			return true
		}
	}

	return false
}

// planDispatch completes a derived-type dispatch: after the configured
// branches comes the branch of the declared source type, which ends the
// dispatch when unconditional, or runtime detection for interface sources.
func (r *Resolver) planDispatch(pc *pairContext, branches []Branch) error {
	p := pc.plan
	p.Branches = branches

	src, dst := pc.sig.Source, pc.sig.Target

	if analyze.Classify(src) == analyze.TypeKindInterface {
		p.Structural = true
		if analyze.Classify(dst) == analyze.TypeKindInterface {
			p.Implementations = r.catalog.Implementations(dst)
		}

		return nil
	}

	target := dst
	if analyze.Classify(dst) == analyze.TypeKindInterface {
		target = MatchImplementation(src, dst, r.catalog.Implementations(dst))
	}

	if target == nil {
		if len(branches) == 0 {
			return &diagnostic.ConstructionImpossibleError{
				Type:   dst,
				Reason: fmt.Sprintf("no registered implementation for %s", analyze.TypeString(src)),
			}
		}

		p.Diagnostics.AddWarning("no_declared_branch",
			fmt.Sprintf("no registered implementation of %s for %s", analyze.TypeString(dst), analyze.TypeString(src)),
			pc.pair, "")

		return nil
	}

	p.Branches = append(p.Branches, Branch{Source: src, Target: target, Declared: true})

	return nil
}

// MatchImplementation picks the type a runtime source of type src maps to
// when the declared target is the interface iface: the registered
// implementation whose name starts with the name of src, the longest such
// name winning, otherwise src itself when it implements iface.
func MatchImplementation(src, iface reflect.Type, impls []reflect.Type) reflect.Type {
	src = common.Deref(src)

	var best reflect.Type

	if src.Name() != "" {
		for _, impl := range impls {
			if strings.HasPrefix(impl.Name(), src.Name()) && (best == nil || len(impl.Name()) > len(best.Name())) {
				best = impl
			}
		}
	}

	if best == nil {
		if _, ok := analyze.DerivesFrom(src, iface); ok {
			best = src
		}
	}

	return best
}

// Assignable reports whether a value of t, or a pointer to it, can be
// stored in a variable of type declared.
func Assignable(t, declared reflect.Type) bool {
	t = common.Deref(t)

	return t.AssignableTo(declared) || reflect.PointerTo(t).AssignableTo(declared) ||
		t == common.Deref(declared)
}
