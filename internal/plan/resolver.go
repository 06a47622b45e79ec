package plan

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/coerce"
	"shape-mapper/internal/common"
	"shape-mapper/internal/diagnostic"
	"shape-mapper/internal/mapping"
	"shape-mapper/internal/match"
	"shape-mapper/node"
	"shape-mapper/options"
)

// Resolver builds mapping plans from the registered rules, the constructor
// catalog and the coercion chain. Plans of distinct signatures are built
// independently: nested pairs are referenced by signature, never expanded.
// A Resolver is safe for concurrent use while the registry is not written.
type Resolver struct {
	registry *mapping.Registry
	analyzer *analyze.Analyzer
	chain    *coerce.Chain
	catalog  *analyze.Catalog
	opts     *options.Options
	log      *slog.Logger
}

// NewResolver creates a Resolver. A nil catalog or opts means empty and default.
func NewResolver(registry *mapping.Registry, catalog *analyze.Catalog, opts *options.Options) *Resolver {
	if catalog == nil {
		catalog = analyze.NewCatalog()
	}

	if opts == nil {
		opts = options.Default()
	}

	return &Resolver{
		registry: registry,
		analyzer: registry.Analyzer(),
		chain:    registry.Chain(),
		catalog:  catalog,
		opts:     opts,
		log:      opts.Logger,
	}
}

// Normalize strips pointers from the pair and sets RuntimeCheck when the
// source type can reach itself.
func (r *Resolver) Normalize(sig node.Signature) node.Signature {
	sig.Source, sig.Target = common.Deref(sig.Source), common.Deref(sig.Target)
	sig.RuntimeCheck = sig.Source != nil && r.analyzer.IsRecursive(sig.Source)

	return sig
}

// Resolve returns the data source sets of the target members of sig.
func (r *Resolver) Resolve(sig node.Signature) ([]DataSourceSet, error) {
	p, err := r.Plan(sig)
	if err != nil {
		return nil, err
	}

	return p.Members, nil
}

// Plan resolves sig into a MappingPlan. Root pairs without a coercion and
// without a structural mapping fail with diagnostic.ErrIncompatibleRoot.
func (r *Resolver) Plan(sig node.Signature) (*MappingPlan, error) {
	sig = r.Normalize(sig)
	if sig.Source == nil || sig.Target == nil {
		return nil, fmt.Errorf("%w: %s", diagnostic.ErrIncompatibleRoot, sig)
	}

	p := &MappingPlan{Signature: sig, Kind: node.Dispatch(sig.Source, sig.Target)}
	pc := r.newPairContext(p)

	var err error

	branches := r.derivedBranches(pc)

	switch {
	case len(branches) == 0 && p.Kind == node.DispatcherInterface &&
		analyze.Classify(sig.Source) != analyze.TypeKindInterface && r.constructible(sig):
		// An interface target built by a configured factory or whole-target source.
		p.Kind = node.DispatcherStruct
		err = r.planComplex(pc)
	case len(branches) > 0 || p.Kind == node.DispatcherInterface:
		p.Kind = node.DispatcherInterface
		err = r.planDispatch(pc, branches)
	default:
		switch p.Kind {
		case node.DispatcherPrimitive:
			err = r.planPrimitive(pc)
		case node.DispatcherSlice:
			err = r.planElements(pc)
		case node.DispatcherMap:
			err = r.planEntries(pc)
		case node.DispatcherDictionary:
			r.planDictionary(pc)
		case node.DispatcherStruct, node.DispatcherMaptime:
			err = r.planComplex(pc)
		default:
			err = fmt.Errorf("%w: %s", diagnostic.ErrIncompatibleRoot, sig)
		}
	}

	if err != nil {
		return nil, err
	}

	p.Nested = r.nestedSignatures(p)

	r.log.Debug("plan built",
		slog.String("signature", sig.String()),
		slog.String("kind", p.Kind.String()),
		slog.Int("members", len(p.Members)),
		slog.Int("diagnostics", p.Diagnostics.Len()))

	return p, nil
}

// pairContext holds the per-plan state shared by the strategies.
type pairContext struct {
	plan    *MappingPlan
	sig     node.Signature
	rules   []*mapping.Rule
	pair    string
	ignored []string // ignored source member paths
	matcher *match.Matcher
}

func (r *Resolver) newPairContext(p *MappingPlan) *pairContext {
	pc := &pairContext{
		plan:  p,
		sig:   p.Signature,
		rules: r.registry.RelevantItemsFor(p.Signature),
		pair:  fmt.Sprintf("%s->%s", analyze.TypeString(p.Signature.Source), analyze.TypeString(p.Signature.Target)),
	}

	for _, rule := range pc.rules {
		if rule.Kind == mapping.RuleIgnoreSource {
			pc.ignored = append(pc.ignored, rule.Member)
		}
	}

	pc.matcher = &match.Matcher{
		Analyzer:        r.analyzer,
		Skip:            pc.ignoredSource,
		MaxFlattenDepth: r.opts.MaxDepth,
	}

	return pc
}

// ignoredSource reports whether q or one of its ancestors is ignored.
func (pc *pairContext) ignoredSource(q *analyze.QualifiedMember) bool {
	path := q.Path()

	return slices.ContainsFunc(pc.ignored, func(ig string) bool {
		return path == ig || strings.HasPrefix(path, ig+".")
	})
}

// adapt turns n into a node producing dst. Pairs of the same base type and
// primitive pairs use the coercion chain; structural pairs map through the
// nested mapper of their base types. User converters win over both.
func (r *Resolver) adapt(sig node.Signature, n *node.Node, dst reflect.Type) (*node.Node, bool) {
	src := n.Type

	if conv, ok := r.chain.Custom(src, dst); ok {
		return node.Convert(n, conv), true
	}

	if src == dst || (src.AssignableTo(dst) && dst.Kind() != reflect.Pointer) {
		return n, true
	}

	if common.Deref(src) != common.Deref(dst) {
		switch node.Dispatch(src, dst) {
		case node.DispatcherPrimitive, node.DispatcherUnknown:
		default:
			nested := r.Normalize(sig.With(src, dst))
			return node.Nested(n, nested, dst), true
		}
	}

	if conv, ok := r.chain.Lookup(src, dst); ok {
		return node.Convert(n, conv), true
	}

	return nil, false
}

func (r *Resolver) planPrimitive(pc *pairContext) error {
	conv, ok := r.chain.Lookup(pc.sig.Source, pc.sig.Target)
	if !ok {
		return fmt.Errorf("%w: %w", diagnostic.ErrIncompatibleRoot, &diagnostic.UnconvertibleTypeError{
			Path: pc.pair, SourceType: pc.sig.Source, TargetType: pc.sig.Target,
		})
	}

	pc.plan.Conversion = conv

	return nil
}

// planElements maps enumerables element by element.
func (r *Resolver) planElements(pc *pairContext) error {
	src, dst := pc.sig.Source, pc.sig.Target

	elem, ok := r.adapt(pc.sig, node.Item(src.Elem()), dst.Elem())
	if !ok {
		return fmt.Errorf("%w: %w", diagnostic.ErrIncompatibleRoot, &diagnostic.UnconvertibleTypeError{
			Path: pc.pair + "[]", SourceType: src.Elem(), TargetType: dst.Elem(),
		})
	}

	pc.plan.Root = node.Elements(node.EntireSource(src), elem, dst)

	return nil
}

// planEntries maps dictionaries entry by entry.
func (r *Resolver) planEntries(pc *pairContext) error {
	src, dst := pc.sig.Source, pc.sig.Target

	key, ok := r.adapt(pc.sig, node.Item(src.Key()), dst.Key())
	if !ok {
		return fmt.Errorf("%w: %w", diagnostic.ErrIncompatibleRoot, &diagnostic.UnconvertibleTypeError{
			Path: pc.pair + " key", SourceType: src.Key(), TargetType: dst.Key(),
		})
	}

	elem, ok := r.adapt(pc.sig, node.Item(src.Elem()), dst.Elem())
	if !ok {
		return fmt.Errorf("%w: %w", diagnostic.ErrIncompatibleRoot, &diagnostic.UnconvertibleTypeError{
			Path: pc.pair + " value", SourceType: src.Elem(), TargetType: dst.Elem(),
		})
	}

	pc.plan.Root = node.Entries(node.EntireSource(src), key, elem, dst)

	return nil
}

// planDictionary maps every readable source member to an entry keyed by its
// name. Ignored source members and unconvertible values are left out.
func (r *Resolver) planDictionary(pc *pairContext) {
	valueType := pc.sig.Target.Elem()
	root := analyze.NewRoot(pc.sig.Source)

	for _, m := range r.analyzer.Analyze(pc.sig.Source).Readable() {
		q := root.Child(m)
		if pc.ignoredSource(q) {
			continue
		}

		value, ok := r.adapt(pc.sig, node.Source(q), valueType)
		if !ok {
			pc.plan.Diagnostics.AddWarning("unconvertible_member",
				(&diagnostic.UnconvertibleTypeError{Path: q.String(), SourceType: q.Type, TargetType: valueType}).Error(),
				pc.pair, m.Name)

			continue
		}

		pc.plan.Members = append(pc.plan.Members, DataSourceSet{
			Key: m.Name,
			Sources: []DataSource{{
				Origin:       OriginMatched,
				Value:        value,
				SourceMember: q,
				Reason:       match.ReasonExact,
				Explanation:  fmt.Sprintf("%s %s", match.ReasonExact, q.Path()),
			}},
		})
	}
}

// planComplex resolves the members and the construction of a complex target.
func (r *Resolver) planComplex(pc *pairContext) error {
	pc.plan.Members = r.resolveMembers(pc)

	construction, err := r.selectConstruction(pc)
	if err != nil {
		return err
	}

	pc.plan.Construction = construction

	for _, q := range pc.plan.UnmappedMembers() {
		pc.plan.Diagnostics.AddInfo("unmapped_member",
			fmt.Sprintf("no data source for %s, it keeps its %s", q.Path(), fallbackName(pc.sig.Intent)),
			pc.pair, q.Path())
	}

	return nil
}

func fallbackName(intent node.Intent) string {
	if intent.UsesExisting() {
		return "existing value"
	}

	return "default"
}

// nestedSignatures lists the distinct signatures referenced by Nested nodes
// and configured derived branches, in first-seen order.
func (r *Resolver) nestedSignatures(p *MappingPlan) []node.Signature {
	var out []node.Signature

	add := func(sig node.Signature) {
		if sig != p.Signature && !slices.Contains(out, sig) {
			out = append(out, sig)
		}
	}

	visit := func(n *node.Node) {
		n.Walk(func(n *node.Node) {
			if n.Kind == node.KindNested {
				add(n.Pair)
			}
		})
	}

	visitSets := func(sets []DataSourceSet) {
		for i := range sets {
			for _, ds := range sets[i].Sources {
				visit(ds.Value)
			}
		}
	}

	visit(p.Root)
	visitSets(p.Members)

	if p.Construction != nil {
		for _, c := range p.Construction.Selected {
			visit(c.Value)
			visitSets(c.Params)
		}
	}

	for _, b := range p.Branches {
		if analyze.Classify(b.Source) != analyze.TypeKindInterface {
			add(r.Normalize(p.Signature.With(b.Source, b.Target)))
		}
	}

	return out
}
