package mapping

import (
	"cmp"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/coerce"
	"shape-mapper/internal/diagnostic"
	"shape-mapper/node"
)

var (
	ErrTargetPath   = errors.New("target member must be a direct member name")
	ErrElementPath  = errors.New("source path cannot step into collection elements")
	ErrNotDerived   = errors.New("type does not derive from the scope type")
	ErrMissingPart  = errors.New("rule is incomplete")
	ErrSourceParam  = errors.New("function parameter does not accept the scope source")
	ErrContextual   = errors.New("function cannot take a context here")
	ErrNotWritable  = errors.New("target member cannot be assigned")
	ErrFactoryScope = errors.New("factory source type does not match the scope source")
)

// Registry stores the rules of one mapper. Registration happens during setup,
// from one goroutine; queries are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	analyzer *analyze.Analyzer
	chain    *coerce.Chain
	rules    []*Rule
	seq      int
}

// NewRegistry creates an empty registry. Converter rules are prepended to chain.
func NewRegistry(analyzer *analyze.Analyzer, chain *coerce.Chain) *Registry {
	return &Registry{analyzer: analyzer, chain: chain}
}

// Analyzer returns the analyzer used to validate member paths.
func (r *Registry) Analyzer() *analyze.Analyzer {
	return r.analyzer
}

// Chain returns the coercion chain converters are registered with.
func (r *Registry) Chain() *coerce.Chain {
	return r.chain
}

// Rules returns every registered rule in registration order.
func (r *Registry) Rules() []*Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.rules)
}

// Len returns the number of registered rules, mirrored ones included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rules)
}

// Register validates and stores rules. Registration is atomic: if any rule
// is invalid or conflicts with a registered one, none of them is stored.
func (r *Registry) Register(rules ...*Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := &staging{registry: r, rules: slices.Clone(r.rules), seq: r.seq}

	for _, rule := range rules {
		if rule == nil {
			continue
		}

		if err := r.prepare(rule); err != nil {
			return err
		}

		if err := st.add(rule); err != nil {
			return err
		}
	}

	r.rules, r.seq = st.rules, st.seq

	if len(st.converters) > 0 {
		r.chain.Prepend(st.converters...)
	}

	return nil
}

// RelevantItemsFor returns the rules applying to sig, most specific scope
// first, then in registration order. A rule is dropped when a rule from a
// strictly more specific scope occupies the same slot (same member, same
// derived source, same factory pair).
func (r *Registry) RelevantItemsFor(sig node.Signature) []*Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*Rule

	for _, rule := range r.rules {
		if rule.Kind != RuleConverter && rule.Scope.Matches(sig) {
			matched = append(matched, rule)
		}
	}

	slices.SortStableFunc(matched, func(a, b *Rule) int {
		if c := cmp.Compare(b.Scope.Specificity(), a.Scope.Specificity()); c != 0 {
			return c
		}

		return cmp.Compare(a.seq, b.seq)
	})

	claimed := make(map[string]int)
	out := matched[:0]

	for _, rule := range matched {
		slot := rule.slot()
		if slot == "" {
			out = append(out, rule)
			continue
		}

		rank := rule.Scope.Specificity()
		if best, ok := claimed[slot]; ok && best > rank {
			continue
		}

		claimed[slot] = rank
		out = append(out, rule)
	}

	return out
}

// slot names what a rule occupies for shadowing, "" for rules that never shadow.
func (r *Rule) slot() string {
	switch r.Kind {
	case RuleIgnore:
		return "member:" + r.Member
	case RuleDataSource:
		switch {
		case r.Filter != nil:
			return ""
		case r.Member == "":
			return "target"
		default:
			return "member:" + r.Member
		}
	case RuleIgnoreSource:
		return "source:" + r.Member
	case RuleDerivedPair:
		return "derived:" + analyze.TypeString(r.DerivedSource)
	case RuleFactory:
		return "factory:" + analyze.TypeString(r.Caster.Src) + ">" + analyze.TypeString(r.Caster.Dst)
	case RuleReversal:
		return "reversal"
	default:
		return ""
	}
}

// prepare parses functions, compiles expressions and resolves member paths.
func (r *Registry) prepare(rule *Rule) error {
	rule.Scope = Pair(rule.Scope.Source, rule.Scope.Target).WithIntent(rule.Scope.Intent)
	scope := rule.Scope

	fail := func(t reflect.Type, member string, err error) error {
		return &diagnostic.ConfigurationError{Type: t, Member: member, Err: err}
	}

	if rule.condExpr != "" {
		cond, err := node.CompileCondition(rule.condExpr, scope.Source, scope.Target)
		if err != nil {
			return fail(scope.Target, rule.Member, err)
		}

		rule.Condition = cond
	}

	switch rule.Kind {
	case RuleIgnore:
		return r.checkTarget(scope, rule.Member, false)

	case RuleIgnoreSource:
		if rule.Member == "" {
			return fail(scope.Source, "", fmt.Errorf("%w: missing source member", ErrMissingPart))
		}

		if scope.Source != nil {
			if _, err := r.analyzer.Resolve(scope.Source, rule.Member, false); err != nil {
				return err
			}
		}

	case RuleIgnoreFilter:
		if rule.Filter == nil || rule.Filter.Match == nil {
			return fail(scope.Target, "", fmt.Errorf("%w: missing filter", ErrMissingPart))
		}

	case RuleDataSource:
		return r.prepareDataSource(rule)

	case RuleFactory, RuleConverter:
		if rule.Caster == nil {
			c, err := node.ParseCaster(rule.fn)
			if err != nil {
				return fail(scope.Target, "", err)
			}

			rule.Caster = &c
		}

		if rule.Kind == RuleConverter && rule.Caster.Contextual {
			return fail(rule.Caster.Dst, "", ErrContextual)
		}

		if rule.Kind == RuleFactory && !rule.Caster.Contextual && scope.Source != nil &&
			!accepts(rule.Caster.Src, scope.Source) && !r.isSimpleFactory(rule.Caster) {
			return fail(scope.Source, "", fmt.Errorf("%w: %s takes %s", ErrFactoryScope,
				rule.Caster, analyze.TypeString(rule.Caster.Src)))
		}

	case RuleDerivedPair:
		return r.prepareDerived(rule)

	case RuleReversal:

	default:
		return fail(nil, "", fmt.Errorf("%w: unknown rule kind %d", ErrMissingPart, rule.Kind))
	}

	return nil
}

// isSimpleFactory reports whether c produces a simple value from a simple value.
func (r *Registry) isSimpleFactory(c *node.Caster) bool {
	return analyze.Classify(c.Dst) == analyze.TypeKindSimple
}

// checkTarget requires member to name a direct member of the scope target.
// Data source targets must be assignable or constructor-supplied.
func (r *Registry) checkTarget(scope Scope, member string, assign bool) error {
	if member == "" {
		return &diagnostic.ConfigurationError{Type: scope.Target, Err: fmt.Errorf("%w: missing target member", ErrMissingPart)}
	}

	if strings.ContainsAny(member, ".[]") {
		return &diagnostic.ConfigurationError{Type: scope.Target, Member: member, Err: ErrTargetPath}
	}

	if scope.Target == nil {
		return nil
	}

	info := r.analyzer.Analyze(scope.Target)

	m := info.Member(member)
	if m == nil {
		return &diagnostic.ConfigurationError{
			Type: scope.Target, Member: member,
			Err: fmt.Errorf("%w: %s has no member %s", analyze.ErrNoMember, analyze.TypeString(scope.Target), member),
		}
	}

	if assign && !m.Writable() && !m.ConstructorOnly() {
		return &diagnostic.ConfigurationError{Type: scope.Target, Member: member, Err: fmt.Errorf("%w: %s is a %s", ErrNotWritable, member, m.Role)}
	}

	return nil
}

func (r *Registry) prepareDataSource(rule *Rule) error {
	scope := rule.Scope

	var target *analyze.Member

	if rule.Filter == nil && rule.Member != "" {
		if err := r.checkTarget(scope, rule.Member, true); err != nil {
			return err
		}

		if scope.Target != nil {
			target = r.analyzer.Analyze(scope.Target).Member(rule.Member)
		}
	}

	fail := func(err error) error {
		return &diagnostic.ConfigurationError{Type: scope.Target, Member: rule.Member, Err: err}
	}

	v := &rule.Value

	switch v.Kind {
	case ValuePath:
		if scope.Source == nil {
			if _, err := analyze.ParsePath(v.Path); err != nil {
				return fail(err)
			}

			return nil
		}

		q, err := r.analyzer.Resolve(scope.Source, v.Path, false)
		if err != nil {
			return err
		}

		if q.HasElementStep() {
			return &diagnostic.ConfigurationError{Type: scope.Source, Member: v.Path, Err: ErrElementPath}
		}

		if target != nil && !r.Convertible(q.Type, target.Type) {
			return &diagnostic.UnconvertibleTypeError{Path: rule.Member, SourceType: q.Type, TargetType: target.Type}
		}

	case ValueConstant:
		if target != nil && v.Constant.IsValid() && !r.Convertible(v.Constant.Type(), target.Type) {
			return &diagnostic.UnconvertibleTypeError{Path: rule.Member, SourceType: v.Constant.Type(), TargetType: target.Type}
		}

	case ValueFunc:
		if v.caster == nil {
			c, err := node.ParseCaster(v.fn)
			if err != nil {
				return fail(err)
			}

			v.caster = &c
		}

		arg := scope.Source

		if v.Path != "" {
			if v.caster.Contextual {
				return fail(fmt.Errorf("%w: %s reads %s", ErrContextual, v.caster, v.Path))
			}

			if scope.Source == nil {
				if _, err := analyze.ParsePath(v.Path); err != nil {
					return fail(err)
				}
			} else {
				q, err := r.analyzer.Resolve(scope.Source, v.Path, false)
				if err != nil {
					return err
				}

				if q.HasElementStep() {
					return &diagnostic.ConfigurationError{Type: scope.Source, Member: v.Path, Err: ErrElementPath}
				}

				arg = q.Type
			}
		}

		if !v.caster.Contextual && arg != nil && !accepts(v.caster.Src, arg) {
			return fail(fmt.Errorf("%w: %s takes %s", ErrSourceParam, v.caster, analyze.TypeString(v.caster.Src)))
		}

		if target != nil && !r.Convertible(v.caster.Dst, target.Type) {
			return &diagnostic.UnconvertibleTypeError{Path: rule.Member, SourceType: v.caster.Dst, TargetType: target.Type}
		}

	case ValueExpr:
		e, err := node.CompileExpression(v.Expr, scope.Source, scope.Target)
		if err != nil {
			return fail(err)
		}

		v.expr = e

	case ValueEntireSource:

	default:
		return fail(fmt.Errorf("%w: missing value", ErrMissingPart))
	}

	return nil
}

func (r *Registry) prepareDerived(rule *Rule) error {
	scope := rule.Scope

	if rule.DerivedSource == nil || rule.DerivedTarget == nil {
		return &diagnostic.ConfigurationError{Type: scope.Source, Err: fmt.Errorf("%w: derived pair needs both types", ErrMissingPart)}
	}

	if scope.Source != nil {
		if _, ok := analyze.DerivesFrom(rule.DerivedSource, scope.Source); !ok {
			return &diagnostic.ConfigurationError{Type: rule.DerivedSource, Err: fmt.Errorf("%w %s", ErrNotDerived, analyze.TypeString(scope.Source))}
		}
	}

	if scope.Target != nil {
		if _, ok := analyze.DerivesFrom(rule.DerivedTarget, scope.Target); !ok {
			return &diagnostic.ConfigurationError{Type: rule.DerivedTarget, Err: fmt.Errorf("%w %s", ErrNotDerived, analyze.TypeString(scope.Target))}
		}
	}

	if rule.DerivedSource == scope.Source && rule.DerivedTarget == scope.Target {
		return &diagnostic.CyclicConfigurationError{Cycle: []string{pairString(scope.Source, scope.Target), pairString(scope.Source, scope.Target)}}
	}

	return nil
}

// Convertible reports whether values of src can supply a member of type dst,
// by coercion or by structural mapping.
func (r *Registry) Convertible(src, dst reflect.Type) bool {
	if r.chain.CanConvert(src, dst) {
		return true
	}

	switch node.Dispatch(src, dst) {
	case node.DispatcherStruct, node.DispatcherMap, node.DispatcherMaptime,
		node.DispatcherDictionary, node.DispatcherInterface:
		return true
	case node.DispatcherSlice:
		return r.Convertible(elemOf(src), elemOf(dst))
	default:
		return false
	}
}

func elemOf(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t.Elem()
}

// accepts reports whether a function parameter of type param can take a source of type src.
func accepts(param, src reflect.Type) bool {
	switch {
	case src.AssignableTo(param):
		return true
	case param.Kind() == reflect.Pointer && src.AssignableTo(param.Elem()):
		return true
	case src.Kind() == reflect.Pointer && src.Elem().AssignableTo(param):
		return true
	default:
		return reflect.PointerTo(src).AssignableTo(param)
	}
}

func pairString(src, dst reflect.Type) string {
	return typeOrAny(src) + " -> " + typeOrAny(dst)
}
