package analyze

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shape-mapper/internal/diagnostic"
	"shape-mapper/store"
	"shape-mapper/warehouse"
)

type Audit struct{ CreatedBy string }

type Meta struct{ Version int }

type Account struct {
	ID      int
	Owner   string `json:"owner_name,omitempty" map:"holder"`
	balance int64
	Audit
	*Meta
}

func (a *Account) Balance() int64      { return a.balance }
func (a *Account) SetBalance(v int64)  { a.balance = v }
func (a Account) Label() string        { return a.Owner + "#" }
func (a *Account) SetNote(string)      {}
func (a Account) String() string       { return "account" }
func (a *Account) Close() (int, error) { return 0, nil }

type Token struct {
	value string
}

type Link struct {
	Name string
	Next *Link
}

type Money float64

func TestClassify(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want TypeKind
	}{
		{reflect.TypeFor[int](), TypeKindSimple},
		{reflect.TypeFor[*string](), TypeKindSimple},
		{reflect.TypeFor[store.OrderStatus](), TypeKindSimple},
		{reflect.TypeFor[time.Time](), TypeKindSimple},
		{reflect.TypeFor[[]byte](), TypeKindSimple},
		{reflect.TypeFor[Money](), TypeKindSimple},
		{reflect.TypeFor[store.Order](), TypeKindComplex},
		{reflect.TypeFor[[]store.OrderItem](), TypeKindEnumerable},
		{reflect.TypeFor[[3]int](), TypeKindEnumerable},
		{reflect.TypeFor[map[string]any](), TypeKindDictionary},
		{reflect.TypeFor[any](), TypeKindInterface},
		{reflect.TypeFor[chan int](), TypeKindUnknown},
		{nil, TypeKindUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.typ), "%v", tt.typ)
	}
}

func TestAnalyzer_Analyze(t *testing.T) {
	a := NewAnalyzer()

	order := a.Analyze(reflect.TypeFor[store.Order]())
	assert.Equal(t, TypeKindComplex, order.Kind)
	assert.Equal(t, TypeID{PkgPath: "shape-mapper/store", Name: "Order"}, order.ID)
	assert.Equal(t, "shape-mapper/store.Order", order.ID.String())
	assert.True(t, order.IsNamed())
	assert.False(t, order.Nullable)
	require.Len(t, order.Members, 6)
	assert.Same(t, order, a.Analyze(reflect.TypeFor[store.Order]()))

	ptr := a.Analyze(reflect.TypeFor[*store.Order]())
	assert.True(t, ptr.Nullable)
	assert.Equal(t, order.Type, ptr.Type)
	assert.Len(t, ptr.Members, 6)

	items := a.Analyze(reflect.TypeFor[[]store.OrderItem]())
	assert.Equal(t, TypeKindEnumerable, items.Kind)
	assert.Equal(t, reflect.TypeFor[store.OrderItem](), items.Elem.Type)
	assert.Equal(t, "[]store.OrderItem", items.ID.String())

	dict := a.Analyze(reflect.TypeFor[map[string]int]())
	assert.Equal(t, TypeKindDictionary, dict.Kind)
	assert.Equal(t, reflect.TypeFor[string](), dict.Key)
	assert.Equal(t, TypeKindSimple, dict.Elem.Kind)
}

func TestAnalyzer_Members(t *testing.T) {
	info := NewAnalyzer().Analyze(reflect.TypeFor[Account]())

	var names []string
	for _, m := range info.Members {
		names = append(names, m.Name)
	}

	assert.Equal(t, []string{"ID", "Owner", "CreatedBy", "Version", "Balance", "Label", "Note"}, names)
	assert.Equal(t, []reflect.Type{reflect.TypeFor[Audit](), reflect.TypeFor[Meta]()}, info.Embeds)

	assert.Equal(t, RoleField, info.Member("CreatedBy").Role)
	assert.Equal(t, RoleProperty, info.Member("Balance").Role)
	assert.Equal(t, RoleGetter, info.Member("Label").Role)
	assert.Equal(t, RoleSetter, info.Member("Note").Role)
	assert.Nil(t, info.Member("String"))
	assert.Nil(t, info.Member("Close"))
	assert.Nil(t, info.Member("balance"))

	assert.Same(t, info.Member("Owner"), info.MemberFold("owner"))
	assert.Nil(t, info.MemberFold("nobody"))

	assert.Len(t, info.Readable(), 6)
	assert.Len(t, info.Writable(), 6)

	owner := info.Member("Owner")
	assert.Equal(t, "owner_name", owner.JSONName())
	assert.Equal(t, "holder", owner.TagName("map"))
	assert.Equal(t, "ID", info.Member("ID").JSONName())
	assert.True(t, owner.IsField())
	assert.False(t, info.Member("Balance").IsField())
}

func TestAnalyzer_ConstructorOnly(t *testing.T) {
	info := NewAnalyzer().Analyze(reflect.TypeFor[Token]())
	require.Len(t, info.Members, 1)

	value := info.Members[0]
	assert.True(t, value.ConstructorOnly())
	assert.False(t, value.Readable())
	assert.False(t, value.Writable())
}

func TestMember_GetSet(t *testing.T) {
	info := NewAnalyzer().Analyze(reflect.TypeFor[Account]())
	acc := &Account{Owner: "ann"}
	obj := reflect.ValueOf(acc)

	_, ok := info.Member("Version").Get(obj)
	assert.False(t, ok, "nil embedded pointer")

	require.True(t, info.Member("Version").Set(obj, reflect.ValueOf(3)))
	require.NotNil(t, acc.Meta)
	assert.Equal(t, 3, acc.Version)

	require.True(t, info.Member("Balance").Set(obj, reflect.ValueOf(int64(250))))
	v, ok := info.Member("Balance").Get(obj)
	require.True(t, ok)
	assert.Equal(t, int64(250), v.Interface())

	v, ok = info.Member("Label").Get(reflect.ValueOf(Account{Owner: "bob"}))
	require.True(t, ok)
	assert.Equal(t, "bob#", v.Interface())

	assert.False(t, info.Member("Label").Set(obj, reflect.ValueOf("x")))
	assert.False(t, info.Member("ID").Set(reflect.ValueOf(Account{}), reflect.ValueOf(1)), "not addressable")

	_, ok = info.Member("Note").Get(obj)
	assert.False(t, ok)
}

func TestAnalyzer_IsRecursive(t *testing.T) {
	a := NewAnalyzer()

	assert.True(t, a.IsRecursive(reflect.TypeFor[Link]()))
	assert.True(t, a.IsRecursive(reflect.TypeFor[*Link]()))
	assert.True(t, a.IsRecursive(reflect.TypeFor[warehouse.Customer]()))
	assert.True(t, a.IsRecursive(reflect.TypeFor[store.Customer]()))
	assert.False(t, a.IsRecursive(reflect.TypeFor[warehouse.OrderItem]()))
	assert.False(t, a.IsRecursive(reflect.TypeFor[store.Order]()))
	assert.False(t, a.IsRecursive(reflect.TypeFor[int]()))
}

func TestAnalyzer_Resolve(t *testing.T) {
	a := NewAnalyzer()

	q, err := a.Resolve(reflect.TypeFor[store.Order](), "Items[].ProductID", false)
	require.NoError(t, err)
	assert.Equal(t, "Items[].ProductID", q.Path())
	assert.Equal(t, reflect.TypeFor[int64](), q.Type)
	assert.True(t, q.HasElementStep())
	assert.Equal(t, 3, q.Depth())
	assert.Equal(t, "store.Order.Items[].ProductID", q.String())

	q, err = a.Resolve(reflect.TypeFor[warehouse.Order](), "Customer.Email", false)
	require.NoError(t, err)
	assert.Equal(t, "CustomerEmail", q.Flat())
	assert.Equal(t, "Email", q.Name())
	assert.False(t, q.HasElementStep())
	require.Len(t, q.Members(), 2)
	assert.Equal(t, "Customer", q.Members()[0].Name)

	v, ok := q.Get(reflect.ValueOf(&warehouse.Order{Customer: warehouse.Customer{Email: "a@b.c"}}))
	require.True(t, ok)
	assert.Equal(t, "a@b.c", v.Interface())

	again, err := a.Resolve(reflect.TypeFor[*warehouse.Order](), "Customer.Email", false)
	require.NoError(t, err)
	assert.True(t, q.Equal(again))

	q, err = a.Resolve(reflect.TypeFor[Account](), "Note", true)
	require.NoError(t, err)
	assert.True(t, q.Writable())
	assert.False(t, q.Readable())
}

func TestAnalyzer_ResolveErrors(t *testing.T) {
	a := NewAnalyzer()
	account := reflect.TypeFor[Account]()

	tests := []struct {
		root   reflect.Type
		path   string
		write  bool
		target error
	}{
		{account, "Nope", false, ErrNoMember},
		{account, "Label", true, ErrNotAccessible},
		{account, "Note", false, ErrNotAccessible},
		{reflect.TypeFor[store.Order](), "ID.Value", false, ErrNoMember},
		{reflect.TypeFor[store.Order](), "ID[]", false, ErrNoMember},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := a.Resolve(tt.root, tt.path, tt.write)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)

			var cfgErr *diagnostic.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.path, cfgErr.Member)
		})
	}

	_, err := a.Resolve(account, "a..b", false)
	assert.Error(t, err)
}

func TestAnalyzer_ReadablePaths(t *testing.T) {
	paths := map[string]*QualifiedMember{}
	for _, q := range NewAnalyzer().ReadablePaths(reflect.TypeFor[warehouse.Order](), 2) {
		paths[q.Path()] = q
	}

	assert.Contains(t, paths, "ID")
	assert.Contains(t, paths, "Customer")
	assert.Contains(t, paths, "Customer.Email")
	assert.Contains(t, paths, "Customer.Referrer")
	assert.Contains(t, paths, "Items")
	assert.NotContains(t, paths, "Customer.Referrer.Email", "deeper than two levels")
}
