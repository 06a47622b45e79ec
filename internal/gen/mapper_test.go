package gen

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shape-mapper/internal/diagnostic"
	"shape-mapper/internal/mapping"
	"shape-mapper/node"
	"shape-mapper/options"
)

var customerScope = mapping.PairOf[customer, customerDto]()

func sampleCustomer() *customer {
	return &customer{
		ID:      7,
		Name:    "Ann",
		Email:   "ann@example.com",
		Secret:  "s3",
		Address: &address{Street: "Main 1", City: "Oslo"},
		Tags:    []string{"vip"},
	}
}

func TestMapStruct(t *testing.T) {
	l := newLinker(t, nil, nil, options.WithoutFuzzyMatch())

	out := run[customer, *customerDto](t, l, sampleCustomer())

	assert.Equal(t, &customerDto{
		ID:          "7",
		Name:        "Ann",
		Email:       "ann@example.com",
		AddressCity: "Oslo",
		Address:     addressDto{Street: "Main 1", City: "Oslo"},
	}, out)

	src := sampleCustomer()
	src.Address = nil

	out = run[customer, *customerDto](t, l, src)
	assert.Empty(t, out.AddressCity, "a nil pointer on the path yields no value")
	assert.Equal(t, addressDto{}, out.Address)

	assert.Nil(t, run[customer, *customerDto](t, l, (*customer)(nil)))
}

func TestConfiguredSources(t *testing.T) {
	l := newLinker(t, nil, []*mapping.Rule{
		mapping.MapTo(customerScope, "Contact", mapping.FromExpr(`Target.Nickname + "@"`)),
		mapping.MapTo(customerScope, "Name", mapping.FromPath("Secret")).IfExpr(`Source.Secret != ""`),
		mapping.MapTo(customerScope, "Nickname", mapping.FromExpr(`Target.Name + "!"`)),
	}, options.WithoutFuzzyMatch())

	out := run[customer, customerDto](t, l, sampleCustomer())
	assert.Equal(t, "s3", out.Name)
	assert.Equal(t, "s3!", out.Nickname)
	assert.Equal(t, "s3!@", out.Contact, "members reading Target.X are assigned after X")

	src := sampleCustomer()
	src.Secret = ""

	out = run[customer, customerDto](t, l, src)
	assert.Equal(t, "Ann", out.Name, "a declined condition falls through to the match")
	assert.Equal(t, "Ann!", out.Nickname)
}

func TestConfiguredPathLeavesOtherMembersMatched(t *testing.T) {
	l := newLinker(t, nil, []*mapping.Rule{
		mapping.MapTo(customerScope, "Contact", mapping.FromPath("Email")),
	}, options.WithoutFuzzyMatch())

	out := run[customer, customerDto](t, l, sampleCustomer())
	assert.Equal(t, "ann@example.com", out.Contact)
	assert.Equal(t, "ann@example.com", out.Email, "reading Email for Contact does not block the Email match")
}

func TestExpressionResults(t *testing.T) {
	l := newLinker(t, nil, []*mapping.Rule{
		mapping.MapTo(customerScope, "Nickname", mapping.FromExpr(`Source.Tags`)),
		mapping.MapTo(customerScope, "Contact", mapping.FromExpr(`nil`)),
	}, options.WithoutFuzzyMatch())

	_, err := mapperOf[customer, customerDto](t, l, node.IntentCreateNew).Invoke(sampleCustomer(), nil, nil)

	var unconvertible *diagnostic.UnconvertibleTypeError
	require.ErrorAs(t, err, &unconvertible)
	assert.Contains(t, err.Error(), "Nickname")

	l = newLinker(t, nil, []*mapping.Rule{
		mapping.MapTo(customerScope, "Nickname", mapping.FromExpr(`Source.ID * 2`)),
		mapping.MapTo(customerScope, "Contact", mapping.FromExpr(`nil`)),
	}, options.WithoutFuzzyMatch())

	out := run[customer, customerDto](t, l, sampleCustomer())
	assert.Equal(t, "14", out.Nickname)
	assert.Empty(t, out.Contact)
}

func TestMergeAndOverwrite(t *testing.T) {
	l := newLinker(t, nil, nil, options.WithoutFuzzyMatch())

	existing := &customerDto{Name: "Keep", Contact: "kept", Address: addressDto{Street: "Old"}}

	out := runOnto[customer, *customerDto](t, l, node.IntentMerge, sampleCustomer(), existing)
	require.Same(t, existing, out)
	assert.Equal(t, "Keep", out.Name, "merge only fills zero members")
	assert.Equal(t, "ann@example.com", out.Email)
	assert.Equal(t, "7", out.ID)
	assert.Equal(t, "kept", out.Contact)
	assert.Equal(t, addressDto{Street: "Old"}, out.Address)

	existing = &customerDto{Name: "Replace", Contact: "kept", Address: addressDto{Street: "Old"}}

	out = runOnto[customer, *customerDto](t, l, node.IntentOverwrite, sampleCustomer(), existing)
	require.Same(t, existing, out)
	assert.Equal(t, "Ann", out.Name)
	assert.Equal(t, "kept", out.Contact, "unmapped members keep their value")
	assert.Equal(t, addressDto{Street: "Main 1", City: "Oslo"}, out.Address)

	out = runOnto[customer, *customerDto](t, l, node.IntentMerge, sampleCustomer(), nil)
	assert.Equal(t, "Ann", out.Name, "merging onto nothing constructs the target")
}

func TestMaptime(t *testing.T) {
	l := newLinker(t, nil, nil)

	out := run[map[string]any, profile](t, l, map[string]any{
		"name":          "Ann",
		"AGE":           42,
		"Address.City":  "Oslo",
		"Tags[0]":       "a",
		"Tags[1]":       "b",
		"Homes[0].City": "Bergen",
		"Homes[1].City": "Tromso",
		"Unrelated":     true,
	})

	assert.Equal(t, profile{
		Name:    "Ann",
		Age:     42,
		Address: addressDto{City: "Oslo"},
		Tags:    []string{"a", "b"},
		Homes:   []addressDto{{City: "Bergen"}, {City: "Tromso"}},
	}, out)

	out = run[map[string]any, profile](t, l, map[string]any{
		"Address": map[string]any{"Street": "Main 1"},
	})
	assert.Equal(t, addressDto{Street: "Main 1"}, out.Address, "an entry holding a dictionary maps by runtime type")
	assert.Nil(t, out.Tags)
}

func TestCollections(t *testing.T) {
	l := newLinker(t, nil, nil, options.WithoutFuzzyMatch())

	list := run[[]customer, []*customerDto](t, l, []customer{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}})
	require.Len(t, list, 2)
	assert.Equal(t, "1", list[0].ID)
	assert.Equal(t, "b", list[1].Name)

	assert.Nil(t, run[[]customer, []customerDto](t, l, []customer(nil)))

	byID := run[map[int]customer, map[string]customerDto](t, l, map[int]customer{3: {Name: "c"}})
	assert.Equal(t, "c", byID["3"].Name)

	dict := run[customer, map[string]any](t, l, sampleCustomer())
	assert.Len(t, dict, 6)
	assert.Equal(t, 7, dict["ID"])
	assert.Equal(t, []string{"vip"}, dict["Tags"])
}

func TestPrimitiveRoot(t *testing.T) {
	l := newLinker(t, nil, nil)

	assert.Equal(t, "42", run[int, string](t, l, 42))
	assert.Equal(t, 5, run[any, int](t, l, 5))

	n := 9
	assert.Equal(t, "9", run[int, string](t, l, &n))

	_, err := mapperOf[string, int](t, l, node.IntentCreateNew).Invoke("not a number", nil, nil)

	var unconvertible *diagnostic.UnconvertibleTypeError
	assert.ErrorAs(t, err, &unconvertible)
}

func TestSelfReferenceReusesInstances(t *testing.T) {
	l := newLinker(t, nil, nil)

	boss := &employee{Name: "boss"}
	boss.Manager = boss

	out := run[*employee, *employeeDto](t, l, boss)
	require.NotNil(t, out)
	assert.Same(t, out, out.Manager)

	staff := run[[]*employee, []*employeeDto](t, l, []*employee{
		{Name: "a", Manager: boss},
		{Name: "b", Manager: boss},
	})
	require.Len(t, staff, 2)
	assert.Same(t, staff[0].Manager, staff[1].Manager, "one call maps one source instance once")
	assert.Equal(t, "boss", staff[0].Manager.Name)
}

func TestInvokeContext(t *testing.T) {
	var seen *node.Context

	l := newLinker(t, nil, []*mapping.Rule{
		mapping.MapTo(customerScope, "Nickname", mapping.FromFunc(func(ctx *node.Context) string {
			seen = ctx
			return ctx.Parent.Source.(string)
		})),
	}, options.WithoutFuzzyMatch())

	parent := node.NewContext(node.IntentCreateNew)
	parent.Source = "outer"

	out, err := mapperOf[customer, customerDto](t, l, node.IntentCreateNew).Invoke(sampleCustomer(), nil, parent)
	require.NoError(t, err)

	assert.Equal(t, "outer", out.(*customerDto).Nickname)
	require.NotNil(t, seen)
	assert.IsType(t, &customerDto{}, seen.Target)
	assert.Same(t, parent.Registry(), seen.Registry())
	assert.Equal(t, reflect.TypeFor[customerDto](), mapperOf[customer, customerDto](t, l, node.IntentCreateNew).Signature().Target)
}
