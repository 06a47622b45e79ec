package primitive

import (
	"encoding/base64"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"shape-mapper/utils"
)

// Converter converts a value into the destination type it was looked up for.
// ok is false when the value has no representation in the destination type;
// the caller then falls back to the next converter.
type Converter func(src reflect.Value) (dst reflect.Value, ok bool)

// enumScanLimit bounds the search for an integer enum value by its name.
const enumScanLimit = 1 << 10

// Lookup returns the converter of a single category for src to dst.
func Lookup(category CategoryEnum, src, dst reflect.Type) (Converter, bool) {
	pair := Pair(src, dst)
	if pair.From == 0 || pair.To == 0 {
		return nil, false
	}

	if _, ok := conversionPairs[category][pair]; !ok {
		return nil, false
	}

	switch category {
	case CategorySafeNumber, CategoryUnsafeNumber:
		return toNumber(dst), true
	case CategoryTextNumber:
		if pair.To == KindString {
			return formatNumber(dst, pair.From), true
		}
		return parseNumber(dst), true
	case CategoryNumericBool:
		if pair.To == KindBool {
			return numberToBool(dst), true
		}
		return boolToNumber(dst), true
	case CategoryTextualBool:
		if pair.To == KindBool {
			return parseBool(dst), true
		}
		return formatBool(dst), true
	case CategoryDatetime:
		if pair.To == KindTime {
			return parseTime(dst), true
		}
		return formatTime(dst), true
	case CategoryTimestamp:
		if pair.To == KindTime {
			return unixToTime(dst), true
		}
		return timeToUnix(dst), true
	case CategoryDuration:
		if pair.To == KindDuration {
			return parseDuration(dst), true
		}
		return formatDuration(dst), true
	case CategoryNanoseconds:
		return toNumber(dst), true
	case CategorySeconds:
		if pair.To == KindDuration {
			return secondsToDuration(dst), true
		}
		return durationToSeconds(dst), true
	case CategoryEnumString:
		switch {
		case pair.From == KindPrimitiveEnum && pair.To == KindPrimitiveEnum:
			return enumToEnum(dst), true
		case pair.To == KindPrimitiveEnum:
			return textToEnum(dst), true
		default:
			return enumToText(dst), true
		}
	case CategoryEnumNumber:
		if pair.To == KindPrimitiveEnum {
			return numberToEnum(dst), true
		}
		return enumToNumber(dst), true
	case CategoryBase64:
		if pair.To == KindString {
			return encodeBase64(dst), true
		}
		return decodeBase64(dst), true
	case CategoryChar:
		if pair.To == KindString {
			return runeToText(dst), true
		}
		return textToRune(dst), true
	}

	return nil, false
}

func toNumber(dst reflect.Type) Converter {
	return func(v reflect.Value) (reflect.Value, bool) {
		out := reflect.New(dst).Elem()

		switch {
		case v.CanInt():
			return out, setInt(out, v.Int())
		case v.CanUint():
			return out, setUint(out, v.Uint())
		case v.CanFloat():
			return out, setFloat(out, v.Float())
		}

		return out, false
	}
}

func setInt(out reflect.Value, i int64) bool {
	switch {
	case out.CanInt():
		if out.OverflowInt(i) {
			return false
		}
		out.SetInt(i)
	case out.CanUint():
		if i < 0 || out.OverflowUint(uint64(i)) {
			return false
		}
		out.SetUint(uint64(i))
	case out.CanFloat():
		out.SetFloat(float64(i))
	default:
		return false
	}

	return true
}

func setUint(out reflect.Value, u uint64) bool {
	switch {
	case out.CanInt():
		if u > math.MaxInt64 || out.OverflowInt(int64(u)) {
			return false
		}
		out.SetInt(int64(u))
	case out.CanUint():
		if out.OverflowUint(u) {
			return false
		}
		out.SetUint(u)
	case out.CanFloat():
		out.SetFloat(float64(u))
	default:
		return false
	}

	return true
}

func setFloat(out reflect.Value, f float64) bool {
	switch {
	case out.CanInt():
		// float64(math.MaxInt64) rounds up to 2^63, which is already out of range
		if !utils.IsWhole(f) || !utils.IsInRange(math.MinInt64, f, math.Nextafter(math.MaxInt64, 0)) {
			return false
		}
		return setInt(out, int64(f))
	case out.CanUint():
		if !utils.IsWhole(f) || !utils.IsInRange(0, f, math.Nextafter(math.MaxUint64, 0)) {
			return false
		}
		return setUint(out, uint64(f))
	case out.CanFloat():
		if out.OverflowFloat(f) {
			return false
		}
		out.SetFloat(f)
		return true
	default:
		return false
	}
}

func formatNumber(dst reflect.Type, from KindEnum) Converter {
	return func(v reflect.Value) (reflect.Value, bool) {
		out := reflect.New(dst).Elem()

		switch {
		case v.CanInt():
			out.SetString(strconv.FormatInt(v.Int(), 10))
		case v.CanUint():
			out.SetString(strconv.FormatUint(v.Uint(), 10))
		case v.CanFloat():
			out.SetString(strconv.FormatFloat(v.Float(), 'f', -1, from.Bits()))
		default:
			return out, false
		}

		return out, true
	}
}

func parseNumber(dst reflect.Type) Converter {
	return func(v reflect.Value) (reflect.Value, bool) {
		out := reflect.New(dst).Elem()
		s := strings.TrimSpace(v.String())

		switch {
		case out.CanInt():
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return out, setInt(out, i)
			}
		case out.CanUint():
			if u, err := strconv.ParseUint(s, 10, 64); err == nil {
				return out, setUint(out, u)
			}
		}

		// "12.0" is a valid integer text, "12.5" is rejected by the whole-number check
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return out, false
		}

		return out, setFloat(out, f)
	}
}

func numberToBool(dst reflect.Type) Converter {
	return func(v reflect.Value) (reflect.Value, bool) {
		out := reflect.New(dst).Elem()

		var n uint64
		switch {
		case v.CanInt() && v.Int() >= 0:
			n = uint64(v.Int())
		case v.CanUint():
			n = v.Uint()
		default:
			return out, false
		}

		if n > 1 {
			return out, false
		}

		out.SetBool(n == 1)

		return out, true
	}
}

func boolToNumber(dst reflect.Type) Converter {
	return func(v reflect.Value) (reflect.Value, bool) {
		out := reflect.New(dst).Elem()
		if v.Bool() {
			return out, setInt(out, 1)
		}

		return out, true
	}
}

func parseBool(dst reflect.Type) Converter {
	return func(v reflect.Value) (reflect.Value, bool) {
		out := reflect.New(dst).Elem()

		switch strings.ToLower(strings.TrimSpace(v.String())) {
		case "true", "yes", "on", "y", "t", "1":
			out.SetBool(true)
		case "false", "no", "off", "n", "f", "0":
			out.SetBool(false)
		default:
			return out, false
		}

		return out, true
	}
}

func formatBool(dst reflect.Type) Converter {
	return func(v reflect.Value) (reflect.Value, bool) {
		out := reflect.New(dst).Elem()
		out.SetString(strconv.FormatBool(v.Bool()))

		return out, true
	}
}

var timeLayouts = []string{time.RFC3339Nano, time.DateTime, time.DateOnly}

func parseTime(dst reflect.Type) Converter {
	return func(v reflect.Value) (reflect.Value, bool) {
		out := reflect.New(dst).Elem()
		s := strings.TrimSpace(v.String())

		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				out.Set(reflect.ValueOf(t))
				return out, true
			}
		}

		return out, false
	}
}

func formatTime(dst reflect.Type) Converter {
	return func(v reflect.Value) (reflect.Value, bool) {
		out := reflect.New(dst).Elem()
		out.SetString(v.Interface().(time.Time).Format(time.RFC3339Nano))

		return out, true
	}
}

func unixToTime(dst reflect.Type) Converter {
	return func(v reflect.Value) (reflect.Value, bool) {
		out := reflect.New(dst).Elem()

		var sec int64
		switch {
		case v.CanInt():
			sec = v.Int()
		case v.CanUint() && v.Uint() <= math.MaxInt64:
			sec = int64(v.Uint())
		default:
			return out, false
		}

		out.Set(reflect.ValueOf(time.Unix(sec, 0).UTC()))

		return out, true
	}
}

func timeToUnix(dst reflect.Type) Converter {
	return func(v reflect.Value) (reflect.Value, bool) {
		out := reflect.New(dst).Elem()
		return out, setInt(out, v.Interface().(time.Time).Unix())
	}
}

func parseDuration(dst reflect.Type) Converter {
	return func(v reflect.Value) (reflect.Value, bool) {
		out := reflect.New(dst).Elem()

		d, err := time.ParseDuration(strings.TrimSpace(v.String()))
		if err != nil {
			return out, false
		}

		out.SetInt(int64(d))

		return out, true
	}
}

func formatDuration(dst reflect.Type) Converter {
	return func(v reflect.Value) (reflect.Value, bool) {
		out := reflect.New(dst).Elem()
		out.SetString(time.Duration(v.Int()).String())

		return out, true
	}
}

func secondsToDuration(dst reflect.Type) Converter {
	return func(v reflect.Value) (reflect.Value, bool) {
		out := reflect.New(dst).Elem()

		ns := v.Float() * float64(time.Second)
		if math.IsNaN(ns) || !utils.IsInRange(math.MinInt64, ns, math.Nextafter(math.MaxInt64, 0)) {
			return out, false
		}

		out.SetInt(int64(ns))

		return out, true
	}
}

func durationToSeconds(dst reflect.Type) Converter {
	return func(v reflect.Value) (reflect.Value, bool) {
		out := reflect.New(dst).Elem()
		out.SetFloat(time.Duration(v.Int()).Seconds())

		return out, true
	}
}

func textToEnum(dst reflect.Type) Converter {
	return func(v reflect.Value) (reflect.Value, bool) {
		return enumFromText(dst, v.String())
	}
}

func enumToText(dst reflect.Type) Converter {
	return func(v reflect.Value) (reflect.Value, bool) {
		out := reflect.New(dst).Elem()
		out.SetString(EnumName(v))

		return out, true
	}
}

func enumToEnum(dst reflect.Type) Converter {
	byNumber := numberToEnum(dst)

	return func(v reflect.Value) (reflect.Value, bool) {
		if out, ok := enumFromText(dst, EnumName(v)); ok {
			return out, true
		}

		if v.Kind() == reflect.String {
			return reflect.New(dst).Elem(), false
		}

		return byNumber(v)
	}
}

func numberToEnum(dst reflect.Type) Converter {
	return func(v reflect.Value) (reflect.Value, bool) {
		out := reflect.New(dst).Elem()

		if out.Kind() == reflect.String {
			switch {
			case v.CanInt():
				out.SetString(strconv.FormatInt(v.Int(), 10))
			case v.CanUint():
				out.SetString(strconv.FormatUint(v.Uint(), 10))
			default:
				return out, false
			}

			return out, isValidEnum(out)
		}

		var ok bool
		switch {
		case v.CanInt():
			ok = setInt(out, v.Int())
		case v.CanUint():
			ok = setUint(out, v.Uint())
		}

		return out, ok && isValidEnum(out)
	}
}

func enumToNumber(dst reflect.Type) Converter {
	parse := parseNumber(dst)

	return func(v reflect.Value) (reflect.Value, bool) {
		out := reflect.New(dst).Elem()

		switch {
		case v.CanInt():
			return out, setInt(out, v.Int())
		case v.CanUint():
			return out, setUint(out, v.Uint())
		case v.Kind() == reflect.String:
			return parse(reflect.ValueOf(v.String()))
		}

		return out, false
	}
}

func encodeBase64(dst reflect.Type) Converter {
	return func(v reflect.Value) (reflect.Value, bool) {
		out := reflect.New(dst).Elem()
		out.SetString(base64.StdEncoding.EncodeToString(v.Bytes()))

		return out, true
	}
}

func decodeBase64(dst reflect.Type) Converter {
	return func(v reflect.Value) (reflect.Value, bool) {
		out := reflect.New(dst).Elem()

		b, err := base64.StdEncoding.DecodeString(v.String())
		if err != nil {
			return out, false
		}

		out.SetBytes(b)

		return out, true
	}
}

func textToRune(dst reflect.Type) Converter {
	return func(v reflect.Value) (reflect.Value, bool) {
		out := reflect.New(dst).Elem()

		s := v.String()
		if utf8.RuneCountInString(s) != 1 {
			return out, false
		}

		r, _ := utf8.DecodeRuneInString(s)
		out.SetInt(int64(r))

		return out, true
	}
}

func runeToText(dst reflect.Type) Converter {
	return func(v reflect.Value) (reflect.Value, bool) {
		out := reflect.New(dst).Elem()

		r := rune(v.Int())
		if !utf8.ValidRune(r) {
			return out, false
		}

		out.SetString(string(r))

		return out, true
	}
}

// EnumName returns the textual form of an enum value: its String method when
// present, otherwise the underlying string or number.
func EnumName(v reflect.Value) string {
	if s, ok := asInterface[interface{ String() string }](v); ok {
		return s.String()
	}

	switch {
	case v.Kind() == reflect.String:
		return v.String()
	case v.CanInt():
		return strconv.FormatInt(v.Int(), 10)
	case v.CanUint():
		return strconv.FormatUint(v.Uint(), 10)
	}

	return ""
}

// enumFromText parses text into an enum of type dst: string enums take the
// text as is, integer enums are looked up by name and then by number.
func enumFromText(dst reflect.Type, text string) (reflect.Value, bool) {
	out := reflect.New(dst).Elem()
	text = strings.TrimSpace(text)

	if out.Kind() == reflect.String {
		out.SetString(text)
		return out, isValidEnum(out)
	}

	if _, ok := asInterface[interface{ String() string }](out); ok {
		for n := range enumScanLimit {
			if !setInt(out, int64(n)) {
				break
			}

			if strings.EqualFold(EnumName(out), text) && isValidEnum(out) {
				return out, true
			}
		}
	}

	out = reflect.New(dst).Elem()
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return out, setInt(out, i) && isValidEnum(out)
	}

	return out, false
}

func isValidEnum(v reflect.Value) bool {
	if iv, ok := asInterface[interface{ IsValid() bool }](v); ok {
		return iv.IsValid()
	}

	return true
}

// asInterface returns v as I, trying the pointer receiver method set when v is addressable.
func asInterface[I any](v reflect.Value) (I, bool) {
	var zero I

	if !v.IsValid() {
		return zero, false
	}

	if v.CanInterface() {
		if i, ok := v.Interface().(I); ok {
			return i, true
		}
	}

	if v.CanAddr() && v.Addr().CanInterface() {
		if i, ok := v.Addr().Interface().(I); ok {
			return i, true
		}
	}

	return zero, false
}
