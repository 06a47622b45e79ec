package analyze

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"shape-mapper/internal/common"
)

// MemberRole tells how a member is accessed.
type MemberRole int

const (
	RoleField     MemberRole = iota // struct field, promoted fields included
	RoleProperty                    // getter method paired with a SetX method
	RoleGetter                      // niladic method with one result, read-only
	RoleSetter                      // SetX method without a matching getter, write-only
	RoleParameter                   // constructor parameter
)

// String returns a human-readable representation of the MemberRole.
func (r MemberRole) String() string {
	switch r {
	case RoleField:
		return "field"
	case RoleProperty:
		return "property"
	case RoleGetter:
		return "getter"
	case RoleSetter:
		return "setter"
	case RoleParameter:
		return "parameter"
	default:
		return common.UnknownStr
	}
}

// Member describes one member of a complex type.
type Member struct {
	Name  string
	Type  reflect.Type      // Declared type, pointers kept
	Role  MemberRole        // How the member is accessed
	Tag   reflect.StructTag // Raw struct tag, fields only
	Index []int             // Field index sequence, fields only
	Owner reflect.Type      // Complex type declaring the member

	getter   string // method name, getters and properties
	setter   string // method name, setters and properties
	exported bool
}

// Readable reports whether the member can be used as a data source.
func (m *Member) Readable() bool {
	switch m.Role {
	case RoleField:
		return m.exported
	case RoleProperty, RoleGetter:
		return true
	default:
		return false
	}
}

// Writable reports whether the member can be assigned after construction.
func (m *Member) Writable() bool {
	switch m.Role {
	case RoleField:
		return m.exported
	case RoleProperty, RoleSetter:
		return true
	default:
		return false
	}
}

// IsField reports whether the member is a struct field.
func (m *Member) IsField() bool {
	return m.Role == RoleField
}

// ConstructorOnly reports whether the member can only be supplied through a
// constructor: unexported fields and constructor parameters.
func (m *Member) ConstructorOnly() bool {
	return m.Role == RoleParameter || (m.Role == RoleField && !m.exported)
}

// Kind classifies the member type.
func (m *Member) Kind() TypeKind {
	return Classify(m.Type)
}

// JSONName returns the JSON tag name if present, otherwise the member name.
func (m *Member) JSONName() string {
	if name := m.TagName("json"); name != "" {
		return name
	}

	return m.Name
}

// TagName returns the first part of the tag value for key, or "" if absent or "-".
func (m *Member) TagName(key string) string {
	tag := m.Tag.Get(key)
	if tag == "" || tag == "-" {
		return ""
	}

	name, _, _ := strings.Cut(tag, ",")

	return name
}

// Get reads the member of obj, a struct value or a pointer to one.
// ok is false when the member is not readable or a nil pointer lies on the way.
func (m *Member) Get(obj reflect.Value) (reflect.Value, bool) {
	if !m.Readable() {
		return reflect.Value{}, false
	}

	if m.Role != RoleField {
		method := methodOf(obj, m.getter)
		if !method.IsValid() {
			return reflect.Value{}, false
		}

		return method.Call(nil)[0], true
	}

	obj, ok := structOf(obj)
	if !ok {
		return reflect.Value{}, false
	}

	v, err := obj.FieldByIndexErr(m.Index)
	if err != nil {
		return reflect.Value{}, false
	}

	return v, true
}

// Set assigns v to the member of obj, an addressable struct value or a
// pointer to one. Nil embedded pointers on the way are allocated.
// v must be assignable to the member type.
func (m *Member) Set(obj reflect.Value, v reflect.Value) bool {
	obj, ok := structOf(obj)
	if !ok || !obj.CanAddr() || !m.Writable() {
		return false
	}

	if m.Role == RoleField {
		field, ok := fieldByIndexAlloc(obj, m.Index)
		if !ok || !field.CanSet() {
			return false
		}

		field.Set(v)

		return true
	}

	obj.Addr().MethodByName(m.setter).Call([]reflect.Value{v})

	return true
}

func structOf(obj reflect.Value) (reflect.Value, bool) {
	for obj.IsValid() && (obj.Kind() == reflect.Pointer || obj.Kind() == reflect.Interface) {
		if obj.IsNil() {
			return reflect.Value{}, false
		}

		obj = obj.Elem()
	}

	return obj, obj.IsValid() && obj.Kind() == reflect.Struct
}

func methodOf(obj reflect.Value, name string) reflect.Value {
	for obj.IsValid() && obj.Kind() == reflect.Interface {
		obj = obj.Elem()
	}

	switch {
	case !obj.IsValid():
		return reflect.Value{}
	case obj.Kind() == reflect.Pointer:
		if obj.IsNil() {
			return reflect.Value{}
		}

		return obj.MethodByName(name)
	case obj.CanAddr():
		return obj.Addr().MethodByName(name)
	}

	if method := obj.MethodByName(name); method.IsValid() {
		return method
	}

	// pointer receiver on a non-addressable value: read from a copy
	cp := reflect.New(obj.Type())
	cp.Elem().Set(obj)

	return cp.MethodByName(name)
}

func fieldByIndexAlloc(v reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !v.CanSet() {
					return reflect.Value{}, false
				}

				v.Set(reflect.New(v.Type().Elem()))
			}

			v = v.Elem()
		}

		v = v.Field(x)
	}

	return v, true
}

// methods that never describe data
var ignoredGetters = map[string]struct{}{
	"String":   {},
	"GoString": {},
	"Error":    {},
	"IsValid":  {},
	"IsZero":   {},
}

// collectMembers builds the member list of the struct type t.
func collectMembers(t reflect.Type) (members []*Member, embeds []reflect.Type) {
	byName := map[string]*Member{}

	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous {
			if base := common.Deref(f.Type); base.Kind() == reflect.Struct {
				if len(f.Index) == 1 {
					embeds = append(embeds, base)
				}

				continue
			}
		}

		if !f.IsExported() && len(f.Index) > 1 {
			continue
		}

		m := &Member{
			Name:     f.Name,
			Type:     f.Type,
			Role:     RoleField,
			Tag:      f.Tag,
			Index:    f.Index,
			Owner:    t,
			exported: f.IsExported(),
		}
		members = append(members, m)

		if m.exported {
			byName[m.Name] = m
		}
	}

	var setters []reflect.Method

	ptr := reflect.PointerTo(t)
	for i := range ptr.NumMethod() {
		method := ptr.Method(i)
		mt := method.Type // receiver is In(0)

		switch {
		case isSetter(method.Name, mt):
			setters = append(setters, method)
		case mt.NumIn() == 1 && mt.NumOut() == 1 && !isError(mt.Out(0)):
			if _, skip := ignoredGetters[method.Name]; skip {
				continue
			}

			if _, taken := byName[method.Name]; taken {
				continue
			}

			m := &Member{Name: method.Name, Type: mt.Out(0), Role: RoleGetter, Owner: t, getter: method.Name}
			members = append(members, m)
			byName[m.Name] = m
		}
	}

	for _, method := range setters {
		name := strings.TrimPrefix(method.Name, "Set")
		arg := method.Type.In(1)

		if m, ok := byName[name]; ok {
			if m.Role == RoleGetter && m.Type == arg {
				m.Role = RoleProperty
				m.setter = method.Name
			}

			continue
		}

		m := &Member{Name: name, Type: arg, Role: RoleSetter, Owner: t, setter: method.Name}
		members = append(members, m)
		byName[name] = m
	}

	// an unexported field exposed as a property is not constructor-only
	members = common.Filter(members, func(m *Member) bool {
		if m.Role != RoleField || m.exported {
			return true
		}

		_, exposed := byName[exportedName(m.Name)]

		return !exposed
	})

	return members, embeds
}

func isSetter(name string, mt reflect.Type) bool {
	rest, ok := strings.CutPrefix(name, "Set")
	if !ok || rest == "" {
		return false
	}

	r, _ := utf8.DecodeRuneInString(rest)

	return unicode.IsUpper(r) && mt.NumIn() == 2 && mt.NumOut() == 0
}

func isError(t reflect.Type) bool {
	return t == reflect.TypeFor[error]()
}

func exportedName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}

// interfaceMembers lists the niladic methods of an interface as getters.
func interfaceMembers(t reflect.Type) []*Member {
	var members []*Member

	for i := range t.NumMethod() {
		method := t.Method(i)
		mt := method.Type // no receiver for interface methods

		if mt.NumIn() != 0 || mt.NumOut() != 1 || isError(mt.Out(0)) {
			continue
		}

		if _, skip := ignoredGetters[method.Name]; skip {
			continue
		}

		members = append(members, &Member{Name: method.Name, Type: mt.Out(0), Role: RoleGetter, Owner: t, getter: method.Name})
	}

	return members
}
