package coerce_test

import (
	"fmt"
	"reflect"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shape-mapper/internal/coerce"
	"shape-mapper/primitive"
	"shape-mapper/store"
)

type Level int

const (
	LevelLow Level = iota + 1
	LevelHigh
)

func (l Level) String() string {
	switch l {
	case LevelLow:
		return "Low"
	case LevelHigh:
		return "High"
	default:
		return "Level(" + strconv.Itoa(int(l)) + ")"
	}
}

func (l Level) IsValid() bool { return l == LevelLow || l == LevelHigh }

type Point struct{ X, Y int }

func (p *Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

func convert[D any](t *testing.T, c *coerce.Chain, src any) (D, bool) {
	t.Helper()

	var zero D

	conv, ok := c.Lookup(reflect.TypeOf(src), reflect.TypeFor[D]())
	if !ok {
		return zero, false
	}

	out, ok := conv.Convert(reflect.ValueOf(src))
	if !ok {
		return zero, false
	}

	return out.Interface().(D), true
}

func TestChain_Builtin(t *testing.T) {
	c := coerce.NewChain(primitive.CategoryAll)

	s, ok := convert[string](t, c, 42)
	require.True(t, ok)
	assert.Equal(t, "42", s)

	n, ok := convert[int](t, c, "17")
	require.True(t, ok)
	assert.Equal(t, 17, n)

	i8, ok := convert[int8](t, c, 300)
	assert.False(t, ok, "out of range")
	assert.Zero(t, i8)

	_, ok = convert[int](t, c, 2.5)
	assert.False(t, ok, "not a whole number")

	b, ok := convert[bool](t, c, "yes")
	require.True(t, ok)
	assert.True(t, b)

	lvl, ok := convert[Level](t, c, "high")
	require.True(t, ok)
	assert.Equal(t, LevelHigh, lvl)

	lvl, ok = convert[Level](t, c, 1)
	require.True(t, ok)
	assert.Equal(t, LevelLow, lvl)

	_, ok = convert[Level](t, c, 9)
	assert.False(t, ok, "invalid enum number")

	status, ok := convert[store.OrderStatus](t, c, "PAID")
	require.True(t, ok)
	assert.Equal(t, store.StatusPaid, status)

	s, ok = convert[string](t, c, []byte("hi"))
	require.True(t, ok)
	assert.Equal(t, "aGk=", s)

	r, ok := convert[rune](t, c, "A")
	require.True(t, ok)
	assert.Equal(t, 'A', r)

	when, ok := convert[time.Time](t, c, "2024-05-01T10:00:00Z")
	require.True(t, ok)
	assert.Equal(t, 2024, when.Year())

	d, ok := convert[time.Duration](t, c, "1h30m")
	require.True(t, ok)
	assert.Equal(t, 90*time.Minute, d)

	s, ok = convert[string](t, c, Point{X: 1, Y: 2})
	require.True(t, ok)
	assert.Equal(t, "(1,2)", s)

	_, ok = c.Lookup(reflect.TypeFor[[]int](), reflect.TypeFor[bool]())
	assert.False(t, ok)
}

func TestChain_Pointers(t *testing.T) {
	c := coerce.NewChain(primitive.CategoryAll)

	n := 5

	out, ok := convert[int64](t, c, &n)
	require.True(t, ok)
	assert.Equal(t, int64(5), out)

	_, ok = convert[int64](t, c, (*int)(nil))
	assert.False(t, ok)

	ptr, ok := convert[*string](t, c, 7)
	require.True(t, ok)
	require.NotNil(t, ptr)
	assert.Equal(t, "7", *ptr)

	conv, ok := c.Lookup(reflect.TypeFor[*int](), reflect.TypeFor[*int64]())
	require.True(t, ok)
	assert.Equal(t, "deref > safe number > address", conv.Via)
	assert.True(t, conv.Fallible)
}

func TestChain_IdentityAndDynamic(t *testing.T) {
	c := coerce.NewChain(primitive.CategoryAll)

	conv, ok := c.Lookup(reflect.TypeFor[string](), reflect.TypeFor[string]())
	require.True(t, ok)
	assert.True(t, conv.IsIdentity())
	assert.False(t, conv.Fallible)

	conv, ok = c.Lookup(reflect.TypeFor[int](), reflect.TypeFor[any]())
	require.True(t, ok)
	assert.True(t, conv.IsIdentity())

	var boxed any = "12"

	conv, ok = c.Lookup(reflect.TypeFor[any](), reflect.TypeFor[int]())
	require.True(t, ok)
	assert.True(t, conv.Fallible)

	out, ok := conv.Convert(reflect.ValueOf(&boxed).Elem())
	require.True(t, ok)
	assert.Equal(t, 12, out.Interface())
}

func TestChain_Categories(t *testing.T) {
	c := coerce.NewChain(primitive.CategorySafeNumber)

	out, ok := convert[int64](t, c, int32(3))
	require.True(t, ok)
	assert.Equal(t, int64(3), out)

	conv, ok := c.Lookup(reflect.TypeFor[int32](), reflect.TypeFor[int64]())
	require.True(t, ok)
	assert.False(t, conv.Fallible)

	_, ok = c.Lookup(reflect.TypeFor[int64](), reflect.TypeFor[int32]())
	assert.False(t, ok, "narrowing is not allowed")

	_, ok = c.Lookup(reflect.TypeFor[int](), reflect.TypeFor[string]())
	assert.False(t, ok)
}

func TestChain_UserConvertersFirst(t *testing.T) {
	c := coerce.NewChain(primitive.CategoryAll)

	c.Prepend(coerce.Converter{
		Name: "cents",
		Src:  reflect.TypeFor[int](),
		Dst:  reflect.TypeFor[string](),
		Func: func(v reflect.Value) (reflect.Value, bool) {
			return reflect.ValueOf(fmt.Sprintf("%d.%02d", v.Int()/100, v.Int()%100)), true
		},
	})

	s, ok := convert[string](t, c, 1234)
	require.True(t, ok)
	assert.Equal(t, "12.34", s)

	c.Prepend(coerce.Converter{
		Name:     "never",
		Src:      reflect.TypeFor[int](),
		Dst:      reflect.TypeFor[string](),
		Fallible: true,
		Func:     func(reflect.Value) (reflect.Value, bool) { return reflect.Value{}, false },
	})

	conv, ok := c.Lookup(reflect.TypeFor[int](), reflect.TypeFor[string]())
	require.True(t, ok)
	assert.Equal(t, "never", conv.Via)
	require.Len(t, c.Converters(), 2)
	assert.Equal(t, "never", c.Converters()[0].Name)
}

func TestChain_CanConvert(t *testing.T) {
	c := coerce.NewChain(primitive.CategoryAll)

	assert.True(t, c.CanConvert(reflect.TypeFor[[]int](), reflect.TypeFor[[]string]()))
	assert.True(t, c.CanConvert(reflect.TypeFor[map[string]int](), reflect.TypeFor[map[string]any]()))
	assert.False(t, c.CanConvert(reflect.TypeFor[[]int](), reflect.TypeFor[map[string]int]()))
	assert.False(t, c.CanConvert(reflect.TypeFor[store.Order](), reflect.TypeFor[int]()))

	assert.True(t, coerce.Structural(reflect.TypeFor[[]store.OrderItem](), reflect.TypeFor[[3]int]()))
	assert.False(t, coerce.Structural(reflect.TypeFor[store.Order](), reflect.TypeFor[store.Order]()))
}

func TestChain_ConcurrentLookup(t *testing.T) {
	c := coerce.NewChain(primitive.CategoryAll)

	var wg sync.WaitGroup

	results := make([]*coerce.Conversion, 16)
	for i := range results {
		wg.Add(1)

		go func() {
			defer wg.Done()

			results[i], _ = c.Lookup(reflect.TypeFor[string](), reflect.TypeFor[float64]())
		}()
	}

	wg.Wait()

	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func ExampleChain_Convert() {
	c := coerce.NewChain(primitive.CategoryAll)

	for _, v := range []any{"42", 3.0, true, "nope"} {
		out, ok := c.Convert(reflect.ValueOf(v), reflect.TypeFor[int]())
		if !ok {
			fmt.Println(v, "->", "no value")
			continue
		}

		fmt.Println(v, "->", out.Interface())
	}

	// Output:
	// 42 -> 42
	// 3 -> 3
	// true -> 1
	// nope -> no value
}
