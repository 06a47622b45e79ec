package analyze

import (
	"reflect"

	"shape-mapper/internal/common"
)

// DerivesFrom reports whether t is base or derives from it, and how far.
//
// A struct derives from every struct it embeds, transitively; the depth is
// the number of embedding levels. A concrete type derives from an interface
// it implements (directly or through a pointer); the depth is one more than
// its embedding depth so that more specific implementations rank higher.
func DerivesFrom(t, base reflect.Type) (int, bool) {
	t, base = common.Deref(t), common.Deref(base)
	if t == nil || base == nil {
		return 0, false
	}

	if t == base {
		return 0, true
	}

	if base.Kind() == reflect.Interface {
		if t.Kind() == reflect.Interface {
			return 0, false
		}

		if t.Implements(base) || reflect.PointerTo(t).Implements(base) {
			return Depth(t) + 1, true
		}

		return 0, false
	}

	return embedDistance(t, base)
}

// Depth returns the length of the longest embedding chain below t.
func Depth(t reflect.Type) int {
	return depth(common.Deref(t), map[reflect.Type]bool{})
}

func depth(t reflect.Type, seen map[reflect.Type]bool) int {
	if t.Kind() != reflect.Struct || seen[t] {
		return 0
	}

	seen[t] = true
	defer delete(seen, t)

	best := 0

	for _, e := range embedded(t) {
		if d := depth(e, seen) + 1; d > best {
			best = d
		}
	}

	return best
}

// embedDistance finds the shortest embedding chain from t down to base.
func embedDistance(t, base reflect.Type) (int, bool) {
	level := []reflect.Type{t}
	seen := map[reflect.Type]bool{t: true}

	for dist := 1; len(level) > 0; dist++ {
		var next []reflect.Type

		for _, cur := range level {
			for _, e := range embedded(cur) {
				if e == base {
					return dist, true
				}

				if !seen[e] {
					seen[e] = true
					next = append(next, e)
				}
			}
		}

		level = next
	}

	return 0, false
}

func embedded(t reflect.Type) []reflect.Type {
	if t.Kind() != reflect.Struct {
		return nil
	}

	var out []reflect.Type

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}

		if e := common.Deref(f.Type); e.Kind() == reflect.Struct {
			out = append(out, e)
		}
	}

	return out
}
