package analyze

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"shape-mapper/internal/common"
	"shape-mapper/internal/diagnostic"
)

var (
	ErrNotAFunction       = errors.New("constructor is not a function")
	ErrUnsupportedResults = errors.New("constructor must return a struct T or *T, optionally with an error")
	ErrParameterNames     = errors.New("parameter names do not match the constructor arity")
	ErrConstructorName    = errors.New("constructor name must start with New, Create or Get")
	ErrNotImplementation  = errors.New("type does not implement the interface")
)

// ConstructorKind tells how a registered function produces its type.
type ConstructorKind int

const (
	KindConstructor   ConstructorKind = iota // New<Type>
	KindFactoryMethod                        // Create<...> or Get<...>
)

// String returns a human-readable representation of the ConstructorKind.
func (k ConstructorKind) String() string {
	switch k {
	case KindConstructor:
		return "constructor"
	case KindFactoryMethod:
		return "factory method"
	default:
		return common.UnknownStr
	}
}

// Constructor is a registered function producing values of Type.
type Constructor struct {
	Name         string
	PackageAlias string
	Kind         ConstructorKind
	Func         reflect.Value
	Type         reflect.Type // Produced base type
	Pointer      bool         // Returns *Type
	HasErr       bool         // Returns (T, error)
	Params       []*Member    // RoleParameter members, in call order
}

// Call invokes the constructor and returns a pointer to the produced value.
func (c *Constructor) Call(args []reflect.Value) (reflect.Value, error) {
	out := c.Func.Call(args)

	if c.HasErr && !out[1].IsNil() {
		return reflect.Value{}, out[1].Interface().(error)
	}

	v := out[0]
	if c.Pointer {
		if v.IsNil() {
			return reflect.Value{}, fmt.Errorf("%s returned nil", c.Name)
		}

		return v, nil
	}

	ptr := reflect.New(c.Type)
	ptr.Elem().Set(v)

	return ptr, nil
}

// String returns the qualified function name.
func (c *Constructor) String() string {
	if c.PackageAlias == "" {
		return c.Name
	}

	return c.PackageAlias + "." + c.Name
}

// Catalog holds the constructors, factory methods, interface implementations
// and named types known to a mapper. It is safe for concurrent use.
type Catalog struct {
	mu    sync.RWMutex
	ctors map[reflect.Type][]*Constructor
	impls map[reflect.Type][]reflect.Type
	types map[string]reflect.Type
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		ctors: make(map[reflect.Type][]*Constructor),
		impls: make(map[reflect.Type][]reflect.Type),
		types: make(map[string]reflect.Type),
	}
}

// ParseConstructor inspects fn. params name its parameters in order;
// reflection cannot recover them. The function name decides the kind.
func ParseConstructor(fn any, params ...string) (*Constructor, error) {
	fnVal := reflect.ValueOf(fn)
	if fnVal.Kind() != reflect.Func || fnVal.IsNil() {
		return nil, ErrNotAFunction
	}

	fnType := fnVal.Type()
	if fnType.IsVariadic() || fnType.NumIn() != len(params) {
		return nil, fmt.Errorf("%w: %d parameters, %d names", ErrParameterNames, fnType.NumIn(), len(params))
	}

	ctor := &Constructor{Func: fnVal}

	switch fnType.NumOut() {
	case 1:
	case 2:
		if fnType.Out(1) != reflect.TypeFor[error]() {
			return nil, ErrUnsupportedResults
		}

		ctor.HasErr = true
	default:
		return nil, ErrUnsupportedResults
	}

	produced := fnType.Out(0)
	if produced.Kind() == reflect.Pointer {
		ctor.Pointer = true
		produced = produced.Elem()
	}

	if produced.Kind() != reflect.Struct {
		return nil, ErrUnsupportedResults
	}

	ctor.Type = produced

	pkgPath, name := common.FuncName(fnVal)
	ctor.Name = name
	ctor.PackageAlias = common.PkgAlias(pkgPath)

	switch {
	case strings.HasPrefix(name, "New"):
		ctor.Kind = KindConstructor
	case strings.HasPrefix(name, "Create"), strings.HasPrefix(name, "Get"):
		ctor.Kind = KindFactoryMethod
	default:
		return nil, fmt.Errorf("%w: %s", ErrConstructorName, name)
	}

	for i, p := range params {
		if !isValidIdent(p) {
			return nil, fmt.Errorf("%w: invalid name %q", ErrParameterNames, p)
		}

		ctor.Params = append(ctor.Params, &Member{
			Name:  p,
			Type:  fnType.In(i),
			Role:  RoleParameter,
			Owner: produced,
		})
	}

	return ctor, nil
}

// RegisterConstructor parses fn and registers it for the type it produces.
// The produced type is registered by name as well.
func (c *Catalog) RegisterConstructor(fn any, params ...string) error {
	ctor, err := ParseConstructor(fn, params...)
	if err != nil {
		return &diagnostic.ConfigurationError{Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.ctors[ctor.Type] = append(c.ctors[ctor.Type], ctor)
	c.registerTypeLocked(ctor.Type)

	return nil
}

// Constructors returns the constructors and factory methods producing t,
// in registration order.
func (c *Catalog) Constructors(t reflect.Type) []*Constructor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.ctors[common.Deref(t)])
}

// RegisterImplementations records concrete implementations of iface.
// Each implementation must implement iface directly or through its pointer.
func (c *Catalog) RegisterImplementations(iface reflect.Type, impls ...reflect.Type) error {
	iface = common.Deref(iface)
	if iface == nil || iface.Kind() != reflect.Interface {
		return &diagnostic.ConfigurationError{Type: iface, Err: fmt.Errorf("%w: not an interface", ErrNotImplementation)}
	}

	for _, impl := range impls {
		if _, ok := DerivesFrom(impl, iface); !ok {
			return &diagnostic.ConfigurationError{Type: impl, Err: fmt.Errorf("%w %v", ErrNotImplementation, iface)}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.registerTypeLocked(iface)

	for _, impl := range impls {
		impl = common.Deref(impl)
		if !slices.Contains(c.impls[iface], impl) {
			c.impls[iface] = append(c.impls[iface], impl)
		}

		c.registerTypeLocked(impl)
	}

	return nil
}

// Implementations returns the registered implementations of iface.
func (c *Catalog) Implementations(iface reflect.Type) []reflect.Type {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.impls[common.Deref(iface)])
}

// RegisterTypes records named types so rule files can refer to them
// by "Name" or "alias.Name".
func (c *Catalog) RegisterTypes(types ...reflect.Type) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range types {
		c.registerTypeLocked(t)
	}
}

func (c *Catalog) registerTypeLocked(t reflect.Type) {
	t = common.Deref(t)
	if t == nil || t.Name() == "" {
		return
	}

	c.types[t.Name()] = t
	c.types[TypeString(t)] = t
}

// Lookup returns the type registered under name.
func (c *Catalog) Lookup(name string) (reflect.Type, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.types[strings.TrimPrefix(name, "*")]

	return t, ok
}

// Types returns the registered named types sorted by qualified name.
func (c *Catalog) Types() []reflect.Type {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []reflect.Type

	for name, t := range c.types {
		if name == TypeString(t) {
			out = append(out, t)
		}
	}

	slices.SortFunc(out, func(a, b reflect.Type) int {
		return strings.Compare(TypeString(a), TypeString(b))
	})

	return out
}
