package node_test

import (
	"fmt"
	"reflect"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shape-mapper/node"
)

type moreThanError interface {
	error
	More()
}

func empty()                          { panic("not implemented") }
func wrong(int) (string, error, bool) { panic("not implemented") }

func full(int) (string, bool, error)          { panic("not implemented") }
func customError(int) (string, moreThanError) { panic("not implemented") }
func fromContext(*node.Context) int           { panic("not implemented") }

func ExampleCaster() {
	desc, err := node.ParseCaster(full)
	fmt.Println(err, desc.PackageAlias, desc.Name, desc.Src.Kind(), desc.Dst.Kind(), desc.HasBool, desc.HasErr)

	desc, err = node.ParseCaster(strconv.Itoa)
	fmt.Println(err, desc.PackageAlias, desc.Name, desc.Src.Kind(), desc.Dst.Kind(), desc.HasBool, desc.HasErr)

	desc, err = node.ParseCaster(strconv.Atoi)
	fmt.Println(err, desc.PackageAlias, desc.Name, desc.Src.Kind(), desc.Dst.Kind(), desc.HasBool, desc.HasErr)

	desc, err = node.ParseCaster(customError)
	fmt.Println(err, desc.PackageAlias, desc.Name, desc.Src.Kind(), desc.Dst.Kind(), desc.HasBool, desc.HasErr)

	desc, err = node.ParseCaster(fromContext)
	fmt.Println(err, desc.Name, desc.Contextual)

	_, err = node.ParseCaster(empty)
	fmt.Println(err)

	_, err = node.ParseCaster(wrong)
	fmt.Println(err)

	_, err = node.ParseCaster(42)
	fmt.Println(err)

	// Output:
	// <nil> node_test full int string true true
	// <nil> strconv Itoa int string false false
	// <nil> strconv Atoi string int false true
	// <nil> node_test customError int string false true
	// <nil> fromContext true
	// provided function is not a recognizable caster
	// provided function is not a recognizable caster
	// provided caster is not a function
}

func TestCasterCall(t *testing.T) {
	atoi := node.MustParseCaster(strconv.Atoi)

	out, ok, err := atoi.Call(nil, reflect.ValueOf("42"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, out.Interface())

	_, _, err = atoi.Call(nil, reflect.ValueOf("x"))
	assert.Error(t, err)

	positive := node.MustParseCaster(func(i int) (uint, bool) { return uint(i), i >= 0 })
	assert.True(t, positive.Fallible())

	_, ok, err = positive.Call(nil, reflect.ValueOf(-1))
	require.NoError(t, err)
	assert.False(t, ok)

	type celsius int

	out, ok, _ = positive.Call(nil, reflect.ValueOf(celsius(7)))
	assert.True(t, ok)
	assert.Equal(t, uint(7), out.Interface())

	index := node.MustParseCaster(func(ctx *node.Context) int { return ctx.Index })

	ctx := node.NewContext(node.IntentCreateNew).Element(3, "x")
	out, ok, err = index.Call(ctx, reflect.Value{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, out.Interface())
}

func TestMustParseCasterPanics(t *testing.T) {
	assert.Panics(t, func() { node.MustParseCaster(empty) })
}
