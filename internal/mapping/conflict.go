package mapping

import (
	"strings"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/diagnostic"
)

// Conflict reasons.
const (
	ReasonDuplicateSource = "duplicate data source"
	ReasonIgnoredSource   = "ignored member has a data source"
	ReasonIgnoredPath     = "data source reads an ignored source member"
	ReasonFilterOverlap   = "filter overlaps an explicit rule"
	ReasonDuplicatePair   = "duplicate derived pair"
	ReasonReversal        = "reverse and no reverse"
	ReasonDuplicateConv   = "duplicate converter"
	ReasonDuplicateFact   = "duplicate factory"
)

// conflict returns the conflict between a registered rule and an incoming
// one, or nil. The result does not depend on which of the two came first.
func (r *Registry) conflict(a, b *Rule) *diagnostic.ConflictError {
	if a.Kind > b.Kind {
		a, b = b, a
	}

	if a.Kind == RuleConverter && b.Kind == RuleConverter {
		if a.Caster.Src == b.Caster.Src && a.Caster.Dst == b.Caster.Dst {
			return newConflict(analyze.TypeString(a.Caster.Dst), ReasonDuplicateConv, a, b)
		}

		return nil
	}

	if a.Scope != b.Scope {
		return nil
	}

	checks := []func(a, b *Rule) *diagnostic.ConflictError{
		duplicateSource,
		ignoredSource,
		ignoredPath,
		r.filterOverlap,
		duplicatePair,
		reversal,
		duplicateFactory,
	}

	for _, check := range checks {
		if err := check(a, b); err != nil {
			return err
		}
	}

	return nil
}

func newConflict(member, reason string, a, b *Rule) *diagnostic.ConflictError {
	return &diagnostic.ConflictError{Member: member, Reason: reason, Existing: a.String(), Conflicting: b.String()}
}

// sameGuard reports whether both rules apply in exactly the same situations.
func sameGuard(a, b *Rule) bool {
	if !a.IsConditional() || !b.IsConditional() {
		return !a.IsConditional() && !b.IsConditional()
	}

	if a.Condition != nil && b.Condition != nil {
		return a.Condition.Equal(b.Condition)
	}

	return a.conditionText() == b.conditionText()
}

func isMemberSource(r *Rule) bool {
	return r.Kind == RuleDataSource && r.Filter == nil
}

func duplicateSource(a, b *Rule) *diagnostic.ConflictError {
	if !isMemberSource(a) || !isMemberSource(b) || a.Member != b.Member || !sameGuard(a, b) {
		return nil
	}

	member := a.Member
	if member == "" {
		member = "target"
	}

	return newConflict(member, ReasonDuplicateSource, a, b)
}

func ignoredSource(a, b *Rule) *diagnostic.ConflictError {
	if a.Kind != RuleIgnore || !isMemberSource(b) || a.Member != b.Member || b.Member == "" {
		return nil
	}

	return newConflict(a.Member, ReasonIgnoredSource, a, b)
}

func ignoredPath(a, b *Rule) *diagnostic.ConflictError {
	if a.Kind != RuleIgnoreSource || b.Kind != RuleDataSource || b.Value.Path == "" {
		return nil
	}

	if b.Value.Path != a.Member && !strings.HasPrefix(b.Value.Path, a.Member+".") {
		return nil
	}

	return newConflict(a.Member, ReasonIgnoredPath, a, b)
}

// filterOverlap needs a concrete target to evaluate the filter on.
func (r *Registry) filterOverlap(a, b *Rule) *diagnostic.ConflictError {
	if a.Scope.Target == nil {
		return nil
	}

	filtered := func(x *Rule) bool {
		return x.Kind == RuleIgnoreFilter || (x.Kind == RuleDataSource && x.Filter != nil)
	}

	explicit := func(x *Rule) bool {
		return (x.Kind == RuleIgnore || x.Kind == RuleDataSource) && x.Filter == nil && x.Member != ""
	}

	var filter, named *Rule

	switch {
	case filtered(a) && explicit(b):
		filter, named = a, b
	case filtered(b) && explicit(a):
		filter, named = b, a
	default:
		return nil
	}

	// a filtered data source with a guard only fills in; it never overlaps
	if filter.Kind == RuleDataSource && filter.IsConditional() {
		return nil
	}

	m := r.analyzer.Analyze(a.Scope.Target).Member(named.Member)
	if m == nil || !filter.Filter.Match(m) {
		return nil
	}

	return newConflict(named.Member, ReasonFilterOverlap, a, b)
}

func duplicatePair(a, b *Rule) *diagnostic.ConflictError {
	if a.Kind != RuleDerivedPair || b.Kind != RuleDerivedPair || a.DerivedSource != b.DerivedSource || !sameGuard(a, b) {
		return nil
	}

	return newConflict(analyze.TypeString(a.DerivedSource), ReasonDuplicatePair, a, b)
}

func reversal(a, b *Rule) *diagnostic.ConflictError {
	if a.Kind != RuleReversal || b.Kind != RuleReversal || a.OptOut == b.OptOut {
		return nil
	}

	return newConflict("reversal", ReasonReversal, a, b)
}

func duplicateFactory(a, b *Rule) *diagnostic.ConflictError {
	if a.Kind != RuleFactory || b.Kind != RuleFactory || !sameGuard(a, b) {
		return nil
	}

	if a.Caster.Src != b.Caster.Src || a.Caster.Dst != b.Caster.Dst {
		return nil
	}

	return newConflict(analyze.TypeString(a.Caster.Dst), ReasonDuplicateFact, a, b)
}
