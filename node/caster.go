package node

import (
	"errors"
	"fmt"
	"reflect"

	"shape-mapper/internal/common"
)

var (
	ErrIsNotACaster         = errors.New("provided function is not a recognizable caster")
	ErrCasterIsNotAFunction = errors.New("provided caster is not a function")
	ErrDoublePointer        = errors.New("caster function does not support double pointers")
)

var (
	contextType = reflect.TypeFor[*Context]()
	errorType   = reflect.TypeFor[error]()
)

// Caster is a user function converting one value, used as a converter,
// a value source or a factory.
type Caster struct {
	Src, Dst     reflect.Type
	PackageAlias string
	Name         string
	HasBool      bool
	HasErr       bool
	// Contextual is set for func(*node.Context) T: the function reads
	// whatever it needs from the mapping context.
	Contextual bool

	fn reflect.Value
}

// ParseCaster inspects the provided function and returns a Caster struct if it is a valid caster function.
//
// Supports interfaces:
//   - func(src Type) (dst Type)
//   - func(src Type) (dst Type, bool)
//   - func(src Type) (dst Type, error)
//   - func(src Type) (dst Type, bool, error)
//
// where src may be *node.Context.
func ParseCaster(fn any) (Caster, error) {
	fnVal := reflect.ValueOf(fn)
	if fnVal.Kind() != reflect.Func || fnVal.IsNil() {
		return Caster{}, ErrCasterIsNotAFunction
	}

	fnType := fnVal.Type()
	if fnType.NumIn() != 1 || fnType.NumOut() == 0 || fnType.IsVariadic() {
		return Caster{}, ErrIsNotACaster
	}

	src := fnType.In(0)
	if src.Kind() == reflect.Pointer && src.Elem().Kind() == reflect.Pointer {
		return Caster{}, ErrDoublePointer
	}

	dst := fnType.Out(0)
	if dst.Kind() == reflect.Pointer && dst.Elem().Kind() == reflect.Pointer {
		return Caster{}, ErrDoublePointer
	}

	pkgPath, name := common.FuncName(fnVal)

	caster := Caster{
		Src:          src,
		Dst:          dst,
		Name:         name,
		PackageAlias: common.PkgAlias(pkgPath),
		Contextual:   src == contextType,
		fn:           fnVal,
	}

	switch fnType.NumOut() {
	default:
		return Caster{}, ErrIsNotACaster

	case 1:
		return caster, nil

	case 2:
		last := fnType.Out(1)

		switch {
		default:
			return Caster{}, ErrIsNotACaster
		case last.Kind() == reflect.Bool:
			caster.HasBool = true
		case isError(last):
			caster.HasErr = true
		}

		return caster, nil

	case 3:
		tbool, terr := fnType.Out(1), fnType.Out(2)
		if tbool.Kind() != reflect.Bool || !isError(terr) {
			return Caster{}, ErrIsNotACaster
		}

		caster.HasBool = true
		caster.HasErr = true

		return caster, nil
	}
}

// MustParseCaster is like ParseCaster but panics on error.
func MustParseCaster(fn any) Caster {
	c, err := ParseCaster(fn)
	if err != nil {
		panic(fmt.Sprintf("node: %v", err))
	}

	return c
}

// Fallible reports whether the caster can decline a value.
func (c Caster) Fallible() bool {
	return c.HasBool || c.HasErr
}

// Call applies the caster. A contextual caster receives ctx and ignores v.
// ok is false when the caster returned false; err is the caster error.
func (c Caster) Call(ctx *Context, v reflect.Value) (out reflect.Value, ok bool, err error) {
	var in reflect.Value

	switch {
	case c.Contextual:
		in = reflect.ValueOf(ctx)
	case !v.IsValid():
		in = reflect.Zero(c.Src)
	case v.Type().AssignableTo(c.Src):
		in = v
	case v.Kind() == reflect.Pointer && v.Type().Elem().AssignableTo(c.Src):
		in = reflect.Zero(c.Src)
		if !v.IsNil() {
			in = v.Elem()
		}
	case c.Src.Kind() == reflect.Pointer && v.Type().AssignableTo(c.Src.Elem()):
		in = reflect.New(c.Src.Elem())
		in.Elem().Set(v)
	case v.Kind() == c.Src.Kind() && v.Type().ConvertibleTo(c.Src):
		in = v.Convert(c.Src)
	default:
		in = v
	}

	results := c.fn.Call([]reflect.Value{in})

	ok = true
	if c.HasBool {
		ok = results[1].Bool()
	}

	if c.HasErr {
		if e := results[len(results)-1]; !e.IsNil() {
			return reflect.Value{}, false, e.Interface().(error)
		}
	}

	return results[0], ok, nil
}

// String returns the qualified function name.
func (c Caster) String() string {
	if c.PackageAlias == "" {
		return c.Name
	}

	return c.PackageAlias + "." + c.Name
}

func isError(t reflect.Type) bool {
	if t == nil {
		return false
	}

	return t.Implements(errorType)
}
