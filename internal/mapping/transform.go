package mapping

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"go.uber.org/multierr"

	"shape-mapper/internal/analyze"
	"shape-mapper/node"
)

// TransformRegistry holds the named functions rule files refer to.
// It is safe for concurrent use.
type TransformRegistry struct {
	mu         sync.RWMutex
	transforms map[string]node.Caster
}

// NewTransformRegistry creates a new empty transform registry.
func NewTransformRegistry() *TransformRegistry {
	return &TransformRegistry{transforms: make(map[string]node.Caster)}
}

// Add registers fn, a caster function, under name.
func (r *TransformRegistry) Add(name string, fn any) error {
	c, err := node.ParseCaster(fn)
	if err != nil {
		return fmt.Errorf("transform %q: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transforms[name]; exists {
		return fmt.Errorf("transform %q: already registered", name)
	}

	r.transforms[name] = c

	return nil
}

// Get returns the transform registered under name.
func (r *TransformRegistry) Get(name string) (node.Caster, bool) {
	if r == nil {
		return node.Caster{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.transforms[name]

	return c, ok
}

// Has returns true if a transform with the given name exists.
func (r *TransformRegistry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns all transform names, sorted.
func (r *TransformRegistry) Names() []string {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.transforms))
	for name := range r.transforms {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Check compares declared transform types with the registered functions.
func (r *TransformRegistry) Check(defs []TransformDef, catalog *analyze.Catalog) error {
	var errs error

	for _, def := range defs {
		c, ok := r.Get(def.Name)
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("transform %q: not registered", def.Name))
			continue
		}

		if def.SourceType != "" && !c.Contextual {
			errs = multierr.Append(errs, checkDeclared(def.Name, "source", def.SourceType, c.Src, catalog))
		}

		if def.TargetType != "" {
			errs = multierr.Append(errs, checkDeclared(def.Name, "target", def.TargetType, c.Dst, catalog))
		}
	}

	return errs
}

func checkDeclared(name, side, declared string, actual reflect.Type, catalog *analyze.Catalog) error {
	t, ok := ResolveTypeID(declared, catalog)
	if !ok {
		return fmt.Errorf("transform %q: %s type %q not found", name, side, declared)
	}

	if t != actual {
		return fmt.Errorf("transform %q: %s type is %s, declared %s",
			name, side, analyze.TypeString(actual), declared)
	}

	return nil
}
