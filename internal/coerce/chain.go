package coerce

import (
	"reflect"
	"strings"
	"sync"

	"shape-mapper/primitive"
)

// Func converts a value. ok is false when the value has no representation in
// the target type; the caller then falls through to the next source or to the
// type default.
type Func func(src reflect.Value) (dst reflect.Value, ok bool)

// Converter is a user-registered conversion between two exact types.
type Converter struct {
	Name     string
	Src, Dst reflect.Type
	Fallible bool // Func may report !ok
	Func     Func
}

// Conversion is a resolved path from Src to Dst.
type Conversion struct {
	Src, Dst reflect.Type
	// Via names the steps taken, e.g. "deref > safe number".
	Via string
	// Fallible is set when Convert may report !ok for some input.
	Fallible bool

	fn Func
}

// Convert applies the conversion. The result is assignable to Dst.
func (c *Conversion) Convert(v reflect.Value) (reflect.Value, bool) {
	return c.fn(v)
}

// IsIdentity reports whether values are used as they are.
func (c *Conversion) IsIdentity() bool {
	return c.Via == viaIdentity
}

type entry struct {
	conv *Conversion
	ok   bool
}

// Chain is the ordered coercion chain: user converters first, then the
// built-in steps restricted to the allowed categories. Lookups are memoised;
// a Chain is safe for concurrent readers, Prepend must not race with them.
type Chain struct {
	mu      sync.RWMutex
	user    []Converter
	allowed primitive.CategoryEnum
	cache   sync.Map // [2]reflect.Type -> entry
}

// NewChain creates a chain limited to the allowed built-in categories.
func NewChain(allowed primitive.CategoryEnum, user ...Converter) *Chain {
	return &Chain{allowed: allowed, user: user}
}

// Prepend inserts user converters ahead of every other converter.
// Later calls take precedence over earlier ones.
func (c *Chain) Prepend(convs ...Converter) {
	c.mu.Lock()
	defer c.mu.Unlock()

	user := make([]Converter, 0, len(convs)+len(c.user))
	for i := len(convs) - 1; i >= 0; i-- {
		user = append(user, convs[i])
	}

	c.user = append(user, c.user...)
	c.cache.Clear()
}

// Converters returns the user converters in lookup order.
func (c *Chain) Converters() []Converter {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]Converter(nil), c.user...)
}

// Lookup returns the conversion from src to dst, or false when the chain has
// none. Enumerable and dictionary pairs have no value conversion, see Structural.
func (c *Chain) Lookup(src, dst reflect.Type) (*Conversion, bool) {
	if src == nil || dst == nil {
		return nil, false
	}

	key := [2]reflect.Type{src, dst}
	if e, ok := c.cache.Load(key); ok {
		return e.(entry).conv, e.(entry).ok
	}

	conv, ok := c.build(src, dst)
	actual, _ := c.cache.LoadOrStore(key, entry{conv, ok})

	return actual.(entry).conv, actual.(entry).ok
}

// CanConvert reports whether Lookup or Structural accepts the pair.
func (c *Chain) CanConvert(src, dst reflect.Type) bool {
	if _, ok := c.Lookup(src, dst); ok {
		return true
	}

	return Structural(src, dst)
}

// Convert looks up and applies the conversion for v.
func (c *Chain) Convert(v reflect.Value, dst reflect.Type) (reflect.Value, bool) {
	conv, ok := c.Lookup(v.Type(), dst)
	if !ok {
		return reflect.Value{}, false
	}

	return conv.Convert(v)
}

func (c *Chain) build(src, dst reflect.Type) (*Conversion, bool) {
	if conv, ok := c.lookupUser(src, dst); ok {
		return conv, true
	}

	if src == dst || (src.AssignableTo(dst) && dst.Kind() != reflect.Pointer) {
		return &Conversion{Src: src, Dst: dst, Via: viaIdentity, fn: identity}, true
	}

	switch {
	case src.Kind() == reflect.Pointer:
		inner, ok := c.Lookup(src.Elem(), dst)
		if !ok {
			return nil, false
		}

		return &Conversion{
			Src: src, Dst: dst,
			Via:      join("deref", inner.Via),
			Fallible: true,
			fn:       deref(inner),
		}, true

	case dst.Kind() == reflect.Pointer:
		inner, ok := c.Lookup(src, dst.Elem())
		if !ok {
			return nil, false
		}

		return &Conversion{
			Src: src, Dst: dst,
			Via:      join(inner.Via, "address"),
			Fallible: inner.Fallible,
			fn:       address(dst.Elem(), inner),
		}, true

	case src.Kind() == reflect.Interface:
		return &Conversion{
			Src: src, Dst: dst,
			Via:      "dynamic",
			Fallible: true,
			fn:       c.dynamic(dst),
		}, true
	}

	return builtin(c.allowed, src, dst)
}

// Custom returns the user converter from src to dst, if one is registered.
func (c *Chain) Custom(src, dst reflect.Type) (*Conversion, bool) {
	return c.lookupUser(src, dst)
}

func (c *Chain) lookupUser(src, dst reflect.Type) (*Conversion, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, u := range c.user {
		if u.Src == src && u.Dst == dst {
			return &Conversion{Src: src, Dst: dst, Via: u.Name, Fallible: u.Fallible, fn: u.Func}, true
		}
	}

	return nil, false
}

// dynamic converts from the runtime type of an interface value.
func (c *Chain) dynamic(dst reflect.Type) Func {
	return func(v reflect.Value) (reflect.Value, bool) {
		if v.IsNil() {
			return reflect.Value{}, false
		}

		inner := v.Elem()

		conv, ok := c.Lookup(inner.Type(), dst)
		if !ok {
			return reflect.Value{}, false
		}

		return conv.Convert(inner)
	}
}

const viaIdentity = "identity"

func identity(v reflect.Value) (reflect.Value, bool) {
	return v, true
}

func deref(inner *Conversion) Func {
	return func(v reflect.Value) (reflect.Value, bool) {
		if v.IsNil() {
			return reflect.Value{}, false
		}

		return inner.Convert(v.Elem())
	}
}

func address(base reflect.Type, inner *Conversion) Func {
	return func(v reflect.Value) (reflect.Value, bool) {
		out, ok := inner.Convert(v)
		if !ok {
			return reflect.Value{}, false
		}

		ptr := reflect.New(base)
		ptr.Elem().Set(out)

		return ptr, true
	}
}

func join(steps ...string) string {
	var parts []string

	for _, s := range steps {
		if s != "" && s != viaIdentity {
			parts = append(parts, s)
		}
	}

	if len(parts) == 0 {
		return viaIdentity
	}

	return strings.Join(parts, " > ")
}
