package node

import (
	"reflect"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/common"
)

// DispatcherEnum tells how a pair of types is mapped as a whole.
type DispatcherEnum int

const (
	DispatcherUnknown    DispatcherEnum = iota
	DispatcherPrimitive                 // simple to simple, by coercion
	DispatcherInterface                 // interface target or source, by runtime type
	DispatcherSlice                     // enumerable to enumerable, element-wise
	DispatcherMap                       // dictionary to dictionary, entry-wise
	DispatcherMaptime                   // string-keyed dictionary to complex, by keys
	DispatcherDictionary                // complex to string-keyed dictionary, by member names
	DispatcherStruct                    // complex to complex, member by member

	// DispatcherTotal is a constant that represents the total number of kinds defined
	DispatcherTotal = int(iota)
)

// String returns a human-readable representation of the DispatcherEnum.
func (d DispatcherEnum) String() string {
	switch d {
	case DispatcherPrimitive:
		return "primitive"
	case DispatcherInterface:
		return "interface"
	case DispatcherSlice:
		return "slice"
	case DispatcherMap:
		return "map"
	case DispatcherMaptime:
		return "maptime"
	case DispatcherDictionary:
		return "dictionary"
	case DispatcherStruct:
		return "struct"
	default:
		return common.UnknownStr
	}
}

// Dispatch classifies the pair src -> dst. Pointers are transparent.
func Dispatch(src, dst reflect.Type) DispatcherEnum {
	sk, dk := analyze.Classify(src), analyze.Classify(dst)

	switch {
	case sk == analyze.TypeKindUnknown || dk == analyze.TypeKindUnknown:
		return DispatcherUnknown
	case dk == analyze.TypeKindSimple:
		if sk == analyze.TypeKindSimple || sk == analyze.TypeKindInterface {
			return DispatcherPrimitive
		}

		return DispatcherUnknown
	case sk == analyze.TypeKindInterface || dk == analyze.TypeKindInterface:
		return DispatcherInterface
	case dk == analyze.TypeKindEnumerable:
		if sk == analyze.TypeKindEnumerable {
			return DispatcherSlice
		}
	case dk == analyze.TypeKindDictionary:
		switch sk {
		case analyze.TypeKindDictionary:
			return DispatcherMap
		case analyze.TypeKindComplex:
			if StringKeyed(dst) {
				return DispatcherDictionary
			}
		}
	case dk == analyze.TypeKindComplex:
		switch sk {
		case analyze.TypeKindComplex:
			return DispatcherStruct
		case analyze.TypeKindDictionary:
			if StringKeyed(src) {
				return DispatcherMaptime
			}
		}
	}

	return DispatcherUnknown
}

// StringKeyed reports whether t is a dictionary keyed by a string kind.
func StringKeyed(t reflect.Type) bool {
	t = common.Deref(t)

	return t != nil && t.Kind() == reflect.Map && t.Key().Kind() == reflect.String
}
