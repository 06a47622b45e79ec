package gen

import (
	"fmt"
	"reflect"
	"strings"

	"shape-mapper/node"
)

// dictionary returns the map behind v, or false when v holds none.
func dictionary(v reflect.Value) (reflect.Value, bool) {
	v, ok := unwrap(v)
	for ok && v.Kind() == reflect.Pointer {
		v, ok = unwrap(v.Elem())
	}

	if !ok || v.Kind() != reflect.Map {
		return reflect.Value{}, false
	}

	return v, true
}

// entry reads key from m: the exact key first, then any key equal under
// case folding.
func entry(m reflect.Value, key string) (reflect.Value, bool) {
	kt := m.Type().Key()

	if v := m.MapIndex(reflect.ValueOf(key).Convert(kt)); v.IsValid() {
		return v, true
	}

	iter := m.MapRange()
	for iter.Next() {
		if strings.EqualFold(iter.Key().String(), key) {
			return iter.Value(), true
		}
	}

	return reflect.Value{}, false
}

// prefixed returns the entries of m whose key starts with prefix under case
// folding, prefix removed.
func prefixed(m reflect.Value, prefix string) reflect.Value {
	kt := m.Type().Key()
	out := reflect.MakeMap(m.Type())

	iter := m.MapRange()
	for iter.Next() {
		k := iter.Key().String()
		if len(k) > len(prefix) && strings.EqualFold(k[:len(prefix)], prefix) {
			out.SetMapIndex(reflect.ValueOf(k[len(prefix):]).Convert(kt), iter.Value())
		}
	}

	return out
}

func (l *lowerer) lookup(n *node.Node) evalFunc {
	arg := l.lower(n.Arg)

	return func(f *frame) (reflect.Value, bool, error) {
		v, ok, err := arg(f)
		if err != nil || !ok {
			return reflect.Value{}, false, err
		}

		m, ok := dictionary(v)
		if !ok {
			return reflect.Value{}, false, nil
		}

		out, ok := entry(m, n.Key)

		return out, ok, nil
	}
}

func (l *lowerer) subset(n *node.Node) evalFunc {
	arg := l.lower(n.Arg)

	return func(f *frame) (reflect.Value, bool, error) {
		v, ok, err := arg(f)
		if err != nil || !ok {
			return reflect.Value{}, false, err
		}

		m, ok := dictionary(v)
		if !ok {
			return reflect.Value{}, false, nil
		}

		out := prefixed(m, n.Key)

		return out, out.Len() > 0, nil
	}
}

// indexed collects Key+Pattern(0), Key+Pattern(1)... until an index is missing.
func (l *lowerer) indexed(n *node.Node) evalFunc {
	arg := l.lower(n.Arg)

	return func(f *frame) (reflect.Value, bool, error) {
		v, ok, err := arg(f)
		if err != nil || !ok {
			return reflect.Value{}, false, err
		}

		m, ok := dictionary(v)
		if !ok {
			return reflect.Value{}, false, nil
		}

		out := reflect.MakeSlice(n.Type, 0, 0)

		for i := 0; ; i++ {
			key := n.Key + fmt.Sprintf(n.Pattern, i)

			var elem reflect.Value

			if n.Separator == "" {
				if elem, ok = entry(m, key); !ok {
					break
				}
			} else if elem = prefixed(m, key+n.Separator); elem.Len() == 0 {
				break
			}

			out = reflect.Append(out, elem)
		}

		return out, out.Len() > 0, nil
	}
}

// elements maps an enumerable element by element. Elements without a value
// become zero values.
func (l *lowerer) elements(n *node.Node) evalFunc {
	arg := l.lower(n.Arg)
	elem := l.lower(n.Elem)
	et := n.Type.Elem()

	return func(f *frame) (reflect.Value, bool, error) {
		v, ok, err := arg(f)
		if err != nil || !ok {
			return reflect.Value{}, false, err
		}

		v, ok = unwrap(v)
		if !ok || nilable(v) {
			return reflect.Zero(n.Type), true, nil
		}

		size := v.Len()

		var out reflect.Value
		if n.Type.Kind() == reflect.Array {
			out = reflect.New(n.Type).Elem()
			size = min(size, n.Type.Len())
		} else {
			out = reflect.MakeSlice(n.Type, size, size)
		}

		for i := range size {
			item := v.Index(i)
			child := &frame{ctx: f.ctx.Element(i, asInterface(item)), src: f.src, dst: f.dst, item: item}

			mapped, ok, err := elem(child)
			if err != nil {
				return reflect.Value{}, false, fmt.Errorf("[%d]: %w", i, err)
			}

			if !ok {
				continue
			}

			stored, ok := Fit(mapped, et)
			if !ok {
				return reflect.Value{}, false, fmt.Errorf("[%d]: cannot store %s as %s", i, mapped.Type(), et)
			}

			out.Index(i).Set(stored)
		}

		return out, true, nil
	}
}

// entries maps a dictionary entry by entry. Entries whose key has no value
// are dropped, values without one become zero values.
func (l *lowerer) entries(n *node.Node) evalFunc {
	arg := l.lower(n.Arg)
	key := l.lower(n.KeyElem)
	elem := l.lower(n.Elem)
	kt, et := n.Type.Key(), n.Type.Elem()

	return func(f *frame) (reflect.Value, bool, error) {
		v, ok, err := arg(f)
		if err != nil || !ok {
			return reflect.Value{}, false, err
		}

		m, ok := dictionary(v)
		if !ok {
			return reflect.Zero(n.Type), true, nil
		}

		out := reflect.MakeMapWithSize(n.Type, m.Len())

		iter := m.MapRange()
		for iter.Next() {
			k, item := iter.Key(), iter.Value()

			mk, ok, err := key(&frame{ctx: f.ctx.Entry(asInterface(k), asInterface(k)), src: f.src, dst: f.dst, item: k})
			if err != nil {
				return reflect.Value{}, false, fmt.Errorf("[%v]: %w", k, err)
			}

			if !ok {
				continue
			}

			if mk, ok = Fit(mk, kt); !ok {
				return reflect.Value{}, false, fmt.Errorf("[%v]: cannot store key as %s", k, kt)
			}

			mv, ok, err := elem(&frame{ctx: f.ctx.Entry(asInterface(k), asInterface(item)), src: f.src, dst: f.dst, item: item})
			if err != nil {
				return reflect.Value{}, false, fmt.Errorf("[%v]: %w", k, err)
			}

			if !ok {
				mv = reflect.Zero(et)
			}

			if mv, ok = Fit(mv, et); !ok {
				return reflect.Value{}, false, fmt.Errorf("[%v]: cannot store value as %s", k, et)
			}

			out.SetMapIndex(mk, mv)
		}

		return out, true, nil
	}
}
