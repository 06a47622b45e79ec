package node_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/coerce"
	"shape-mapper/node"
	"shape-mapper/primitive"
)

type person struct {
	Name string
	Age  int
	Boss *person
}

type badge struct {
	Label string
	Adult bool
}

func TestParseIntent(t *testing.T) {
	tests := []struct {
		input    string
		expected node.Intent
		wantErr  bool
	}{
		{"", node.IntentAll, false},
		{"create", node.IntentCreateNew, false},
		{"Merge", node.IntentMerge, false},
		{" overwrite ", node.IntentOverwrite, false},
		{"replace", node.IntentAll, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := node.ParseIntent(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	assert.True(t, node.IntentAll.Matches(node.IntentMerge))
	assert.False(t, node.IntentCreateNew.Matches(node.IntentMerge))
	assert.True(t, node.IntentOverwrite.UsesExisting())
	assert.False(t, node.IntentCreateNew.UsesExisting())
}

func TestExpression(t *testing.T) {
	src, dst := reflect.TypeFor[person](), reflect.TypeFor[badge]()

	e, err := node.CompileExpression(`Source.Name + " (" + string(Source.Age) + ")"`, src, dst)
	require.NoError(t, err)

	ctx := node.NewContext(node.IntentCreateNew).Child(&person{Name: "Ada", Age: 36}, nil)
	out, err := e.Eval(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada (36)", out)

	_, err = node.CompileExpression(`Source.Missing`, src, dst)
	assert.Error(t, err, "unknown members are rejected when the source type is known")

	_, err = node.CompileExpression(`Source.Missing`, nil, nil)
	assert.NoError(t, err)

	_, err = node.CompileExpression(`Source.Name +`, src, dst)
	assert.Error(t, err)
}

func TestExpressionTargets(t *testing.T) {
	e, err := node.CompileExpression(`Target.Adult ? Target.Label : Source.Name`, reflect.TypeFor[person](), reflect.TypeFor[badge]())
	require.NoError(t, err)
	assert.Equal(t, []string{"Adult", "Label"}, e.Targets())
}

func TestCondition(t *testing.T) {
	adult, err := node.CompileCondition(`Source.Age >= 18`, reflect.TypeFor[person](), nil)
	require.NoError(t, err)

	root := node.NewContext(node.IntentCreateNew)

	ok, err := adult.Eval(root.Child(&person{Age: 40}, nil))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = adult.Eval(root.Child(person{Age: 3}, nil))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = node.CompileCondition(`Source.Name`, reflect.TypeFor[person](), nil)
	assert.Error(t, err, "non-boolean conditions are rejected")

	fn := node.NewCondition(func(ctx *node.Context) bool { return ctx.Index == 0 })
	ok, err = fn.Eval(root.Element(0, nil))
	require.NoError(t, err)
	assert.True(t, ok)

	var none *node.Condition

	ok, err = none.Eval(root)
	require.NoError(t, err)
	assert.True(t, ok)

	same, err := node.CompileCondition(`Source.Age >= 18`, nil, nil)
	require.NoError(t, err)
	assert.True(t, adult.Equal(same))
	assert.False(t, adult.Equal(fn))
	assert.True(t, none.Equal(nil))
	assert.Equal(t, "Source.Age >= 18", adult.String())
}

func TestExpressionOnLooselyTypedValues(t *testing.T) {
	root := node.NewContext(node.IntentCreateNew).Child(&person{Name: "Grace"}, nil)
	ctx := root.Child(&person{Name: "Ada", Age: 40}, &badge{Label: "eng"})

	adult, err := node.CompileCondition(`Source.Age > 18 && Parent.Name == "Grace"`, reflect.TypeFor[person](), nil)
	require.NoError(t, err)

	ok, err := adult.Eval(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	for _, src := range []reflect.Type{nil, reflect.TypeFor[any]()} {
		e, err := node.CompileExpression(`Source.Name + "<" + Target.Label + ">"`, src, reflect.TypeFor[badge]())
		require.NoError(t, err)

		out, err := e.Eval(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Ada<eng>", out)
	}

	_, err = node.CompileExpression(`Target.Missing`, nil, reflect.TypeFor[badge]())
	assert.Error(t, err, "a known target type is still checked")
}

func TestRegistry(t *testing.T) {
	r := node.NewRegistry()
	boss := &person{Name: "Grace"}
	target := reflect.ValueOf(&badge{})

	_, ok := r.Lookup(reflect.ValueOf(boss), reflect.TypeFor[badge]())
	assert.False(t, ok)

	r.Register(reflect.ValueOf(boss), reflect.TypeFor[badge](), target)

	got, ok := r.Lookup(reflect.ValueOf(boss), reflect.TypeFor[badge]())
	require.True(t, ok)
	assert.Equal(t, target.Pointer(), got.Pointer())

	_, ok = r.Lookup(reflect.ValueOf(boss), reflect.TypeFor[person]())
	assert.False(t, ok, "registrations are per target type")

	r.Register(reflect.ValueOf(*boss), reflect.TypeFor[badge](), target)
	assert.Equal(t, 1, r.Len(), "values without identity are not registered")
}

func TestNodeString(t *testing.T) {
	a := analyze.NewAnalyzer()
	chain := coerce.NewChain(primitive.CategoryAll)

	age, err := a.Resolve(reflect.TypeFor[person](), "Age", false)
	require.NoError(t, err)

	conv, ok := chain.Lookup(reflect.TypeFor[int](), reflect.TypeFor[string]())
	require.True(t, ok)

	n := node.Convert(node.Source(age), conv)
	assert.Equal(t, "Convert[text number](Source(Age))", n.String())
	assert.True(t, n.Fallible())

	c := node.Constant(reflect.ValueOf(123))
	assert.Equal(t, "Constant((int)123)", c.String())
	assert.False(t, c.Fallible())

	identity, _ := chain.Lookup(reflect.TypeFor[int](), reflect.TypeFor[int]())
	assert.Same(t, c, node.Convert(c, identity), "identity conversions are elided")

	bossName, err := a.Resolve(reflect.TypeFor[person](), "Boss.Name", false)
	require.NoError(t, err)
	assert.True(t, node.Source(bossName).Fallible(), "reading through a pointer may fail")

	dict := node.EntireSource(reflect.TypeFor[map[string]any]())
	lookup := node.Lookup(dict, "Name")
	assert.Equal(t, reflect.TypeFor[any](), lookup.Type)
	assert.True(t, lookup.Fallible())

	indexed := node.Indexed(dict, "Items", "[%d]", ".")
	assert.Equal(t, reflect.TypeFor[[]map[string]any](), indexed.Type)

	e, err := node.CompileExpression(`Target.Label`, nil, nil)
	require.NoError(t, err)

	dynamic, ok := chain.Lookup(reflect.TypeFor[any](), reflect.TypeFor[string]())
	require.True(t, ok)
	assert.False(t, node.Convert(node.Expr(e), dynamic).Fallible(), "expression results convert or fail")

	tree := node.Elements(node.Source(age), node.Expr(e), reflect.TypeFor[[]string]())
	assert.Equal(t, []string{"Label"}, tree.Targets())
	assert.Len(t, tree.SourcePaths(), 1)
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		src, dst reflect.Type
		expected node.DispatcherEnum
	}{
		{reflect.TypeFor[int](), reflect.TypeFor[string](), node.DispatcherPrimitive},
		{reflect.TypeFor[*person](), reflect.TypeFor[badge](), node.DispatcherStruct},
		{reflect.TypeFor[[]person](), reflect.TypeFor[[]badge](), node.DispatcherSlice},
		{reflect.TypeFor[map[int]person](), reflect.TypeFor[map[string]badge](), node.DispatcherMap},
		{reflect.TypeFor[map[string]any](), reflect.TypeFor[person](), node.DispatcherMaptime},
		{reflect.TypeFor[map[int]any](), reflect.TypeFor[person](), node.DispatcherUnknown},
		{reflect.TypeFor[person](), reflect.TypeFor[map[string]any](), node.DispatcherDictionary},
		{reflect.TypeFor[any](), reflect.TypeFor[person](), node.DispatcherInterface},
		{reflect.TypeFor[person](), reflect.TypeFor[int](), node.DispatcherUnknown},
		{reflect.TypeFor[chan int](), reflect.TypeFor[int](), node.DispatcherUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.src.String()+"_"+tt.dst.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, node.Dispatch(tt.src, tt.dst))
		})
	}
}
