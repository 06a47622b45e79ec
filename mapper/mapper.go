// Package mapper is the entry point of shape-mapper: it owns the rule
// registry, the constructor catalog and the cache of compiled mappers.
//
// Typical use registers rules once, then maps concurrently:
//
//	m := mapper.New()
//	if err := m.Rules().Register(mapping.MapTo(scope, "FullName", mapping.FromExpr(`Source.First + " " + Source.Last`))); err != nil {
//		return err
//	}
//
//	dto, err := mapper.Map[OrderDto](m, order)
package mapper

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/coerce"
	"shape-mapper/internal/gen"
	"shape-mapper/internal/mapping"
	"shape-mapper/internal/plan"
	"shape-mapper/node"
	"shape-mapper/options"
)

// Mapper compiles and caches one executable mapper per signature.
// Rules and catalog entries must be registered before the first compile;
// after that a Mapper is safe for concurrent use.
type Mapper struct {
	opts     *options.Options
	log      *slog.Logger
	registry *mapping.Registry
	catalog  *analyze.Catalog
	resolver *plan.Resolver

	cache sync.Map // node.Signature -> *gen.Mapper
	group singleflight.Group
}

// New creates a Mapper with an empty registry and catalog.
func New(opts ...options.Option) *Mapper {
	o := options.Apply(opts...)

	registry := mapping.NewRegistry(analyze.NewAnalyzer(), coerce.NewChain(o.Categories))
	catalog := analyze.NewCatalog()

	return &Mapper{
		opts:     o,
		log:      o.Logger,
		registry: registry,
		catalog:  catalog,
		resolver: plan.NewResolver(registry, catalog, o),
	}
}

// Rules returns the rule registry.
func (m *Mapper) Rules() *mapping.Registry {
	return m.registry
}

// Catalog returns the catalog of constructors, interface implementations
// and named types.
func (m *Mapper) Catalog() *analyze.Catalog {
	return m.catalog
}

// Options returns the options the Mapper was created with.
func (m *Mapper) Options() *options.Options {
	return m.opts
}

// Load applies a YAML rule file to the registry. Type names in the file
// resolve against the catalog.
func (m *Mapper) Load(mf *mapping.MappingFile, transforms *mapping.TransformRegistry) error {
	return mapping.Apply(mf, m.registry, m.catalog, transforms)
}

// Resolve returns the data source sets of the target members of the pair.
func (m *Mapper) Resolve(src, dst reflect.Type, intent node.Intent) ([]plan.DataSourceSet, error) {
	return m.resolver.Resolve(m.signature(src, dst, intent))
}

// GetPlan returns the plan of the pair, the compiled one when available.
func (m *Mapper) GetPlan(src, dst reflect.Type, intent node.Intent) (*plan.MappingPlan, error) {
	sig := m.signature(src, dst, intent)

	if cached, ok := m.cache.Load(sig); ok {
		return cached.(*gen.Mapper).Plan(), nil
	}

	return m.resolver.Plan(sig)
}

// Compile returns the mapper of the pair, building it on first request.
// Concurrent requests for one signature share one build and one result.
func (m *Mapper) Compile(src, dst reflect.Type, intent node.Intent) (*gen.Mapper, error) {
	return m.Link(node.NewSignature(intent, src, dst))
}

// Link implements gen.Linker: nested pairs resolve through the same cache.
func (m *Mapper) Link(sig node.Signature) (*gen.Mapper, error) {
	sig = m.resolver.Normalize(sig)

	if cached, ok := m.cache.Load(sig); ok {
		return cached.(*gen.Mapper), nil
	}

	v, err, _ := m.group.Do(flightKey(sig), func() (any, error) {
		if cached, ok := m.cache.Load(sig); ok {
			return cached, nil
		}

		m.log.Debug("compiling mapper", slog.String("signature", sig.String()))

		p, err := m.resolver.Plan(sig)
		if err != nil {
			return nil, err
		}

		compiled, err := gen.Compile(p, m)
		if err != nil {
			return nil, err
		}

		m.log.Debug("compiled mapper",
			slog.String("signature", sig.String()),
			slog.String("kind", p.Kind.String()),
			slog.Int("members", len(p.Members)),
			slog.Int("nested", len(p.Nested)),
			slog.Int("diagnostics", p.Diagnostics.Len()))

		actual, _ := m.cache.LoadOrStore(sig, compiled)

		return actual, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*gen.Mapper), nil
}

// Precompile compiles the pair and every pair its plans reference, and
// returns the number of compiled signatures. Pairs selected by runtime
// type detection are compiled on first use.
func (m *Mapper) Precompile(src, dst reflect.Type, intent node.Intent) (int, error) {
	var dealer node.Dealer

	dealer.Needs(m.signature(src, dst, intent))

	for {
		sig, ok := dealer.NextNeeds()
		if !ok {
			break
		}

		compiled, err := m.Link(sig)
		if err != nil {
			return dealer.Len(), err
		}

		for _, nested := range compiled.Plan().Nested {
			dealer.Needs(m.resolver.Normalize(nested))
		}
	}

	return dealer.Len(), nil
}

// Len returns the number of cached mappers.
func (m *Mapper) Len() int {
	n := 0

	m.cache.Range(func(_, _ any) bool {
		n++
		return true
	})

	return n
}

func (m *Mapper) signature(src, dst reflect.Type, intent node.Intent) node.Signature {
	return m.resolver.Normalize(node.NewSignature(intent, src, dst))
}

// flightKey identifies sig by type identity; type names alone may collide
// across packages.
func flightKey(sig node.Signature) string {
	return fmt.Sprintf("%d:%p:%p", sig.Intent, sig.Source, sig.Target)
}
