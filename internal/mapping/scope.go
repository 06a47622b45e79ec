package mapping

import (
	"fmt"
	"reflect"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/common"
	"shape-mapper/node"
)

// Scope is the shape pair a rule applies to. A nil type and node.IntentAll
// are wildcards. Types are stored without pointers.
type Scope struct {
	Intent node.Intent
	Source reflect.Type
	Target reflect.Type
}

// Everywhere is the scope matching every pair under every intent.
var Everywhere = Scope{}

// Pair returns the scope of src -> dst under every intent.
func Pair(src, dst reflect.Type) Scope {
	return Scope{Source: common.Deref(src), Target: common.Deref(dst)}
}

// PairOf is Pair for type parameters.
func PairOf[S, T any]() Scope {
	return Pair(reflect.TypeFor[S](), reflect.TypeFor[T]())
}

// WithIntent narrows s to one intent.
func (s Scope) WithIntent(i node.Intent) Scope {
	s.Intent = i
	return s
}

// Specificity counts the non-wildcard components.
func (s Scope) Specificity() int {
	n := 0

	if s.Intent != node.IntentAll {
		n++
	}

	if s.Source != nil {
		n++
	}

	if s.Target != nil {
		n++
	}

	return n
}

// Matches reports whether the scope applies to sig. A scope type matches the
// same type and every type derived from it.
func (s Scope) Matches(sig node.Signature) bool {
	if !s.Intent.Matches(sig.Intent) {
		return false
	}

	if s.Source != nil {
		if _, ok := analyze.DerivesFrom(sig.Source, s.Source); !ok {
			return false
		}
	}

	if s.Target != nil {
		if _, ok := analyze.DerivesFrom(sig.Target, s.Target); !ok {
			return false
		}
	}

	return true
}

// Reversed swaps source and target.
func (s Scope) Reversed() Scope {
	return Scope{Intent: s.Intent, Source: s.Target, Target: s.Source}
}

// IsConcrete reports whether both types are known.
func (s Scope) IsConcrete() bool {
	return s.Source != nil && s.Target != nil
}

// String returns "intent: Source -> Target" with "*" for wildcards.
func (s Scope) String() string {
	return fmt.Sprintf("%s: %s -> %s", s.Intent, typeOrAny(s.Source), typeOrAny(s.Target))
}

func typeOrAny(t reflect.Type) string {
	if t == nil {
		return "*"
	}

	return analyze.TypeString(t)
}
