package primitive_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shape-mapper/primitive"
)

type Color int

const (
	ColorRed Color = iota
	ColorGreen
	ColorBlue
)

func (c Color) String() string {
	switch c {
	case ColorRed:
		return "Red"
	case ColorGreen:
		return "Green"
	case ColorBlue:
		return "Blue"
	default:
		return "Color(?)"
	}
}

func (c Color) IsValid() bool { return c >= ColorRed && c <= ColorBlue }

type Shade string

func (s Shade) IsValid() bool { return s == "Red" || s == "Green" || s == "Blue" }

func convert[D any](t *testing.T, category primitive.CategoryEnum, src any) (D, bool) {
	t.Helper()

	var zero D
	conv, ok := primitive.Lookup(category, reflect.TypeOf(src), reflect.TypeFor[D]())
	require.True(t, ok, "no %v converter for %T -> %T", category, src, zero)

	out, ok := conv(reflect.ValueOf(src))
	if !ok {
		return zero, false
	}

	return out.Interface().(D), true
}

func TestLookup_Numbers(t *testing.T) {
	v, ok := convert[int64](t, primitive.CategorySafeNumber, int8(-5))
	assert.True(t, ok)
	assert.Equal(t, int64(-5), v)

	_, ok = convert[int8](t, primitive.CategoryUnsafeNumber, 300)
	assert.False(t, ok, "out of range")

	_, ok = convert[uint](t, primitive.CategoryUnsafeNumber, -1)
	assert.False(t, ok, "negative to unsigned")

	_, ok = convert[int](t, primitive.CategoryUnsafeNumber, 2.5)
	assert.False(t, ok, "fractional to integer")

	i, ok := convert[int](t, primitive.CategoryUnsafeNumber, 42.0)
	assert.True(t, ok)
	assert.Equal(t, 42, i)

	_, ok = primitive.Lookup(primitive.CategorySafeNumber, reflect.TypeFor[int64](), reflect.TypeFor[int8]())
	assert.False(t, ok, "narrowing is not safe")
}

func TestLookup_Text(t *testing.T) {
	s, ok := convert[string](t, primitive.CategoryTextNumber, 3.25)
	assert.True(t, ok)
	assert.Equal(t, "3.25", s)

	n, ok := convert[int16](t, primitive.CategoryTextNumber, " 12 ")
	assert.True(t, ok)
	assert.Equal(t, int16(12), n)

	_, ok = convert[int16](t, primitive.CategoryTextNumber, "12.5")
	assert.False(t, ok)

	_, ok = convert[uint8](t, primitive.CategoryTextNumber, "256")
	assert.False(t, ok)
}

func TestLookup_Bool(t *testing.T) {
	for _, token := range []string{"yes", "ON", "true", "1"} {
		b, ok := convert[bool](t, primitive.CategoryTextualBool, token)
		assert.True(t, ok, token)
		assert.True(t, b, token)
	}

	_, ok := convert[bool](t, primitive.CategoryTextualBool, "maybe")
	assert.False(t, ok)

	_, ok = convert[bool](t, primitive.CategoryNumericBool, 2)
	assert.False(t, ok)

	n, ok := convert[int](t, primitive.CategoryNumericBool, true)
	assert.True(t, ok)
	assert.Equal(t, 1, n)
}

func TestLookup_Time(t *testing.T) {
	stamp := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	s, ok := convert[string](t, primitive.CategoryDatetime, stamp)
	assert.True(t, ok)
	assert.Equal(t, "2024-03-01T12:30:00Z", s)

	parsed, ok := convert[time.Time](t, primitive.CategoryDatetime, "2024-03-01")
	assert.True(t, ok)
	assert.Equal(t, 2024, parsed.Year())

	unix, ok := convert[int64](t, primitive.CategoryTimestamp, stamp)
	assert.True(t, ok)
	assert.Equal(t, stamp.Unix(), unix)

	d, ok := convert[time.Duration](t, primitive.CategoryDuration, "2h45m")
	assert.True(t, ok)
	assert.Equal(t, 2*time.Hour+45*time.Minute, d)

	secs, ok := convert[float64](t, primitive.CategorySeconds, 1500*time.Millisecond)
	assert.True(t, ok)
	assert.InDelta(t, 1.5, secs, 1e-9)
}

func TestLookup_Enums(t *testing.T) {
	c, ok := convert[Color](t, primitive.CategoryEnumString, "blue")
	assert.True(t, ok)
	assert.Equal(t, ColorBlue, c)

	c, ok = convert[Color](t, primitive.CategoryEnumString, "1")
	assert.True(t, ok)
	assert.Equal(t, ColorGreen, c)

	_, ok = convert[Color](t, primitive.CategoryEnumString, "Purple")
	assert.False(t, ok)

	s, ok := convert[string](t, primitive.CategoryEnumString, ColorGreen)
	assert.True(t, ok)
	assert.Equal(t, "Green", s)

	shade, ok := convert[Shade](t, primitive.CategoryEnumString, ColorRed)
	assert.True(t, ok)
	assert.Equal(t, Shade("Red"), shade)

	_, ok = convert[Color](t, primitive.CategoryEnumNumber, 7)
	assert.False(t, ok, "7 is not a valid Color")

	n, ok := convert[int](t, primitive.CategoryEnumNumber, ColorBlue)
	assert.True(t, ok)
	assert.Equal(t, 2, n)
}

func TestLookup_BytesAndRunes(t *testing.T) {
	s, ok := convert[string](t, primitive.CategoryBase64, []byte("hi"))
	assert.True(t, ok)
	assert.Equal(t, "aGk=", s)

	b, ok := convert[[]byte](t, primitive.CategoryBase64, "aGk=")
	assert.True(t, ok)
	assert.Equal(t, []byte("hi"), b)

	r, ok := convert[rune](t, primitive.CategoryChar, "é")
	assert.True(t, ok)
	assert.Equal(t, 'é', r)

	_, ok = convert[rune](t, primitive.CategoryChar, "ab")
	assert.False(t, ok)
}

func TestCategory_Covers(t *testing.T) {
	pair := primitive.Pair(reflect.TypeFor[string](), reflect.TypeFor[int]())
	assert.True(t, primitive.CategoryAll.Covers(pair))
	assert.True(t, primitive.CategoryTextNumber.Covers(pair))
	assert.False(t, primitive.CategorySafeNumber.Covers(pair))
	assert.False(t, primitive.CategoryNone.Covers(pair))

	var seen []primitive.CategoryEnum
	(primitive.CategoryTextNumber | primitive.CategoryDatetime).Each(func(c primitive.CategoryEnum) bool {
		seen = append(seen, c)
		return true
	})
	assert.Equal(t, []primitive.CategoryEnum{primitive.CategoryTextNumber, primitive.CategoryDatetime}, seen)

	assert.NotEmpty(t, primitive.AllowedPairs(primitive.CategoryBase64))
}
