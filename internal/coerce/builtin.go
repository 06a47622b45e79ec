package coerce

import (
	"fmt"
	"reflect"
	"strings"

	"shape-mapper/internal/analyze"
	"shape-mapper/primitive"
)

// stage groups the built-in categories that produce one family of target kinds.
type stage struct {
	name       string
	applies    func(primitive.ConversionPair) bool
	categories []primitive.CategoryEnum
}

func toKind(kinds ...primitive.KindEnum) func(primitive.ConversionPair) bool {
	return func(p primitive.ConversionPair) bool {
		for _, k := range kinds {
			if p.To == k {
				return true
			}
		}

		return false
	}
}

// builtinStages lists the built-in converters in priority order.
var builtinStages = []stage{
	{
		name:    "string",
		applies: toKind(primitive.KindString),
		categories: []primitive.CategoryEnum{
			primitive.CategoryTextNumber,
			primitive.CategoryTextualBool,
			primitive.CategoryEnumString,
			primitive.CategoryDatetime,
			primitive.CategoryDuration,
			primitive.CategoryBase64,
			primitive.CategoryChar,
		},
	},
	{
		name:    "numeric",
		applies: func(p primitive.ConversionPair) bool { return p.To.IsNumber() },
		categories: []primitive.CategoryEnum{
			primitive.CategorySafeNumber,
			primitive.CategoryUnsafeNumber,
			primitive.CategoryTextNumber,
			primitive.CategoryEnumNumber,
			primitive.CategoryNumericBool,
			primitive.CategoryTimestamp,
			primitive.CategoryNanoseconds,
			primitive.CategorySeconds,
			primitive.CategoryChar,
		},
	},
	{
		name:    "bool",
		applies: toKind(primitive.KindBool),
		categories: []primitive.CategoryEnum{
			primitive.CategoryTextualBool,
			primitive.CategoryNumericBool,
		},
	},
	{
		name:    "enum",
		applies: toKind(primitive.KindPrimitiveEnum),
		categories: []primitive.CategoryEnum{
			primitive.CategoryEnumString,
			primitive.CategoryEnumNumber,
		},
	},
	{
		name:       "bytes",
		applies:    toKind(primitive.KindBytes),
		categories: []primitive.CategoryEnum{primitive.CategoryBase64},
	},
	{
		name:    "time",
		applies: toKind(primitive.KindTime, primitive.KindDuration),
		categories: []primitive.CategoryEnum{
			primitive.CategoryDatetime,
			primitive.CategoryTimestamp,
			primitive.CategoryDuration,
			primitive.CategoryNanoseconds,
			primitive.CategorySeconds,
		},
	},
}

var categoryNames = map[primitive.CategoryEnum]string{
	primitive.CategorySafeNumber:   "safe number",
	primitive.CategoryUnsafeNumber: "unsafe number",
	primitive.CategoryTextNumber:   "text number",
	primitive.CategoryNumericBool:  "numeric bool",
	primitive.CategoryTextualBool:  "textual bool",
	primitive.CategoryDatetime:     "datetime",
	primitive.CategoryTimestamp:    "timestamp",
	primitive.CategoryDuration:     "duration",
	primitive.CategoryNanoseconds:  "nanoseconds",
	primitive.CategorySeconds:      "seconds",
	primitive.CategoryEnumString:   "enum string",
	primitive.CategoryEnumNumber:   "enum number",
	primitive.CategoryBase64:       "base64",
	primitive.CategoryChar:         "char",
}

// builtin chains every allowed built-in converter accepting src to dst.
// A converter reporting !ok falls through to the next one.
func builtin(allowed primitive.CategoryEnum, src, dst reflect.Type) (*Conversion, bool) {
	pair := primitive.Pair(src, dst)

	var (
		funcs []Func
		names []string
	)

	fallible := false

	if pair.From != 0 && pair.To != 0 {
		for _, st := range builtinStages {
			if !st.applies(pair) {
				continue
			}

			for _, category := range st.categories {
				if allowed&category == 0 {
					continue
				}

				conv, ok := primitive.Lookup(category, src, dst)
				if !ok {
					continue
				}

				funcs = append(funcs, Func(conv))
				names = append(names, categoryNames[category])
				fallible = fallible || category != primitive.CategorySafeNumber
			}
		}
	}

	if dst.Kind() == reflect.String && implementsStringer(src) {
		funcs = append(funcs, stringer(dst))
		names = append(names, "stringer")
	}

	if len(funcs) == 0 {
		return nil, false
	}

	return &Conversion{
		Src: src, Dst: dst,
		Via:      strings.Join(names, " | "),
		Fallible: fallible,
		fn:       firstOf(funcs),
	}, true
}

func firstOf(funcs []Func) Func {
	if len(funcs) == 1 {
		return funcs[0]
	}

	return func(v reflect.Value) (reflect.Value, bool) {
		for _, fn := range funcs {
			if out, ok := fn(v); ok {
				return out, true
			}
		}

		return reflect.Value{}, false
	}
}

var stringerType = reflect.TypeFor[fmt.Stringer]()

func implementsStringer(t reflect.Type) bool {
	return t.Implements(stringerType) || reflect.PointerTo(t).Implements(stringerType)
}

func stringer(dst reflect.Type) Func {
	return func(v reflect.Value) (reflect.Value, bool) {
		if !v.Type().Implements(stringerType) {
			ptr := reflect.New(v.Type())
			ptr.Elem().Set(v)
			v = ptr
		}

		out := reflect.New(dst).Elem()
		out.SetString(v.Interface().(fmt.Stringer).String())

		return out, true
	}
}

// Structural reports whether src and dst are collections of the same family,
// mapped element by element (enumerables) or entry by entry (dictionaries)
// rather than converted as a whole.
func Structural(src, dst reflect.Type) bool {
	sk, dk := analyze.Classify(src), analyze.Classify(dst)

	return sk == dk && (sk == analyze.TypeKindEnumerable || sk == analyze.TypeKindDictionary)
}
