package gen

import (
	"reflect"
	"unsafe"

	"shape-mapper/internal/common"
)

var anyType = reflect.TypeFor[any]()

// Fit makes v storable in a variable of type t. Pointers are taken or
// followed, interface values unwrapped or wrapped. An invalid v yields the
// zero value of t. ok is false when v has no representation in t.
func Fit(v reflect.Value, t reflect.Type) (reflect.Value, bool) {
	if !v.IsValid() {
		return reflect.Zero(t), true
	}

	for {
		vt := v.Type()

		switch {
		case vt == t:
			return v, true
		case t.Kind() == reflect.Interface:
			return wrap(v, t)
		case vt.AssignableTo(t):
			return v, true
		}

		switch {
		case v.Kind() == reflect.Interface, v.Kind() == reflect.Pointer && common.Deref(vt) == common.Deref(t):
			if v.IsNil() {
				return reflect.Zero(t), true
			}

			v = v.Elem()

			continue
		case t.Kind() == reflect.Pointer && vt.AssignableTo(t.Elem()):
			ptr := reflect.New(t.Elem())
			ptr.Elem().Set(v)

			return ptr, true
		case v.Kind() == t.Kind() && vt.ConvertibleTo(t):
			return v.Convert(t), true
		}

		return reflect.Value{}, false
	}
}

// wrap stores v in an interface of type t, preferring the value over the
// pointer when both implement t.
func wrap(v reflect.Value, t reflect.Type) (reflect.Value, bool) {
	for v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Zero(t), true
		}

		v = v.Elem()
	}

	out := reflect.New(t).Elem()

	switch {
	case v.Kind() == reflect.Pointer && !v.IsNil() && v.Type().Elem().Implements(t):
		out.Set(v.Elem())
	case v.Type().Implements(t):
		out.Set(v)
	case reflect.PointerTo(v.Type()).Implements(t):
		ptr := reflect.New(v.Type())
		ptr.Elem().Set(v)
		out.Set(ptr)
	default:
		return reflect.Value{}, false
	}

	return out, true
}

// unwrap strips interface layers. ok is false for nil interfaces and nil pointers.
func unwrap(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false
		}

		v = v.Elem()
	}

	if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return reflect.Value{}, false
	}

	return v, true
}

// instance returns a pointer to v as a t, the form in which complex targets
// are populated. Non-addressable values are copied. The result is invalid
// when v is nil or not a t.
func instance(v reflect.Value, t reflect.Type) reflect.Value {
	v, ok := unwrap(v)
	if !ok {
		return reflect.Value{}
	}

	for v.Kind() == reflect.Pointer && v.Type().Elem() != t {
		if v.IsNil() {
			return reflect.Value{}
		}

		v = v.Elem()
	}

	switch {
	case v.Kind() == reflect.Pointer:
		return v
	case v.Type() != t:
		return reflect.Value{}
	case v.CanAddr():
		return v.Addr()
	}

	ptr := reflect.New(t)
	ptr.Elem().Set(v)

	return ptr
}

// upcast returns the part of v that is a t: v itself, or the struct it
// embeds. The result is a pointer so that identity is kept.
func upcast(v reflect.Value, t reflect.Type) (reflect.Value, bool) {
	t = common.Deref(t)

	v, ok := unwrap(v)
	if !ok {
		return reflect.Value{}, false
	}

	if t.Kind() == reflect.Interface {
		return v, true
	}

	ptr := instance(v, common.Deref(v.Type()))
	if !ptr.IsValid() {
		return reflect.Value{}, false
	}

	s := ptr.Elem()
	if s.Type() == t {
		return ptr, true
	}

	if s.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}

	f, found := s.Type().FieldByName(t.Name())
	if !found || !f.Anonymous || common.Deref(f.Type) != t {
		return reflect.Value{}, false
	}

	field, err := s.FieldByIndexErr(f.Index)
	if err != nil {
		return reflect.Value{}, false
	}

	// Embedded values of unexported types are read-only through reflect;
	// the re-derived pointer is not.
	if field.Kind() == reflect.Pointer {
		if field.IsNil() {
			return reflect.Value{}, false
		}

		return reflect.NewAt(t, unsafe.Pointer(field.Pointer())), true
	}

	return reflect.NewAt(t, unsafe.Pointer(field.UnsafeAddr())), true
}

// nilable reports whether v is a nil pointer, map, slice or interface.
func nilable(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

// asInterface returns v as an any for user code, nil for invalid values.
func asInterface(v reflect.Value) any {
	if !v.IsValid() || !v.CanInterface() {
		return nil
	}

	return v.Interface()
}
