package match

import (
	"reflect"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/common"
)

// TypeCompatibility represents the level of compatibility between two types.
type TypeCompatibility int

const (
	// TypeIncompatible means the types cannot be converted.
	TypeIncompatible TypeCompatibility = iota
	// TypeNeedsTransform means conversion goes through coercion, pointer
	// handling or recursive mapping.
	TypeNeedsTransform
	// TypeConvertible means the types share an underlying kind.
	TypeConvertible
	// TypeAssignable means the source type can be directly assigned to the target.
	TypeAssignable
	// TypeIdentical means the types are exactly the same.
	TypeIdentical
)

const (
	VerdictIdentical      = "identical"
	VerdictAssignable     = "assignable"
	VerdictConvertible    = "convertible"
	VerdictNeedsTransform = "needs_transform"
	VerdictIncompatible   = "incompatible"
)

// String returns a human-readable name for the compatibility level.
func (c TypeCompatibility) String() string {
	switch c {
	case TypeIdentical:
		return VerdictIdentical
	case TypeAssignable:
		return VerdictAssignable
	case TypeConvertible:
		return VerdictConvertible
	case TypeNeedsTransform:
		return VerdictNeedsTransform
	case TypeIncompatible:
		return VerdictIncompatible
	default:
		return common.UnknownStr
	}
}

// Weight returns the share of a candidate score the verdict contributes, 0..1.
func (c TypeCompatibility) Weight() float64 {
	switch c {
	case TypeIdentical:
		return 1.0
	case TypeAssignable:
		return 0.9
	case TypeConvertible:
		return 0.7
	case TypeNeedsTransform:
		return 0.4
	default:
		return 0
	}
}

// Coercer reports whether a value conversion exists between two types.
// *coerce.Chain implements it.
type Coercer interface {
	CanConvert(src, dst reflect.Type) bool
}

// TypeCompatibilityResult contains detailed information about type compatibility.
type TypeCompatibilityResult struct {
	Compatibility TypeCompatibility
	Reason        string // Human-readable explanation
	SourceType    string
	TargetType    string
}

// ScoreTypeCompatibility determines the compatibility between a source and
// target type. c may be nil, then only structural rules apply.
func ScoreTypeCompatibility(source, target reflect.Type, c Coercer) TypeCompatibilityResult {
	result := TypeCompatibilityResult{
		SourceType: analyze.TypeString(source),
		TargetType: analyze.TypeString(target),
	}

	switch {
	case source == nil || target == nil:
		result.Compatibility, result.Reason = TypeIncompatible, "type information unavailable"
	case source == target:
		result.Compatibility, result.Reason = TypeIdentical, "types are identical"
	case source.AssignableTo(target):
		result.Compatibility, result.Reason = TypeAssignable, "source is assignable to target"
	case source.Kind() == target.Kind() && source.ConvertibleTo(target) && analyze.Classify(source) == analyze.TypeKindSimple:
		result.Compatibility, result.Reason = TypeConvertible, "types share an underlying kind"
	default:
		if reason, ok := needsTransform(source, target, c); ok {
			result.Compatibility, result.Reason = TypeNeedsTransform, reason
		} else {
			result.Compatibility, result.Reason = TypeIncompatible, "types are not compatible"
		}
	}

	return result
}

// needsTransform checks for pairs mapped through coercion, pointers or recursion.
func needsTransform(source, target reflect.Type, c Coercer) (string, bool) {
	if common.Deref(source) != source || common.Deref(target) != target {
		inner := ScoreTypeCompatibility(common.Deref(source), common.Deref(target), c)
		if inner.Compatibility >= TypeNeedsTransform {
			return "requires pointer handling", true
		}
	}

	sk, tk := analyze.Classify(source), analyze.Classify(target)

	switch {
	case sk == analyze.TypeKindEnumerable && tk == analyze.TypeKindEnumerable:
		elem := ScoreTypeCompatibility(common.Deref(source).Elem(), common.Deref(target).Elem(), c)
		if elem.Compatibility >= TypeNeedsTransform {
			return "elements are mapped one by one", true
		}

		return "", false
	case sk == analyze.TypeKindDictionary && tk == analyze.TypeKindDictionary:
		return "entries are mapped one by one", true
	case isComplex(sk) && isComplex(tk):
		return "members are mapped recursively", true
	case sk == analyze.TypeKindDictionary && tk == analyze.TypeKindComplex:
		return "members are read from dictionary keys", true
	case sk == analyze.TypeKindComplex && tk == analyze.TypeKindDictionary:
		return "members are written as dictionary entries", true
	}

	if c != nil && c.CanConvert(source, target) {
		return "requires a value conversion", true
	}

	return "", false
}

func isComplex(k analyze.TypeKind) bool {
	return k == analyze.TypeKindComplex || k == analyze.TypeKindInterface
}
