package analyze

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func NewAccount(id int, owner string) *Account { return &Account{ID: id, Owner: owner} }

func CreateToken(value string) (Token, error) {
	if value == "" {
		return Token{}, errors.New("empty token")
	}

	return Token{value: value}, nil
}

func GetLink() *Link { return nil }

func MakeAccount() Account { return Account{} }

func NewLinks() []*Link { return nil }

func TestParseConstructor(t *testing.T) {
	ctor, err := ParseConstructor(NewAccount, "id", "owner")
	require.NoError(t, err)
	assert.Equal(t, "NewAccount", ctor.Name)
	assert.Equal(t, "analyze", ctor.PackageAlias)
	assert.Equal(t, "analyze.NewAccount", ctor.String())
	assert.Equal(t, KindConstructor, ctor.Kind)
	assert.Equal(t, reflect.TypeFor[Account](), ctor.Type)
	assert.True(t, ctor.Pointer)
	assert.False(t, ctor.HasErr)
	require.Len(t, ctor.Params, 2)
	assert.Equal(t, "owner", ctor.Params[1].Name)
	assert.Equal(t, RoleParameter, ctor.Params[1].Role)
	assert.True(t, ctor.Params[1].ConstructorOnly())

	out, err := ctor.Call([]reflect.Value{reflect.ValueOf(7), reflect.ValueOf("ann")})
	require.NoError(t, err)
	assert.Equal(t, &Account{ID: 7, Owner: "ann"}, out.Interface())

	ctor, err = ParseConstructor(CreateToken, "value")
	require.NoError(t, err)
	assert.Equal(t, KindFactoryMethod, ctor.Kind)
	assert.True(t, ctor.HasErr)
	assert.False(t, ctor.Pointer)

	out, err = ctor.Call([]reflect.Value{reflect.ValueOf("abc")})
	require.NoError(t, err)
	assert.Equal(t, &Token{value: "abc"}, out.Interface())

	_, err = ctor.Call([]reflect.Value{reflect.ValueOf("")})
	assert.EqualError(t, err, "empty token")

	ctor, err = ParseConstructor(GetLink)
	require.NoError(t, err)
	_, err = ctor.Call(nil)
	assert.Error(t, err, "nil result")
}

func TestParseConstructor_Errors(t *testing.T) {
	_, err := ParseConstructor(42)
	assert.ErrorIs(t, err, ErrNotAFunction)

	_, err = ParseConstructor(NewAccount, "id")
	assert.ErrorIs(t, err, ErrParameterNames)

	_, err = ParseConstructor(NewAccount, "id", "1owner")
	assert.ErrorIs(t, err, ErrParameterNames)

	_, err = ParseConstructor(MakeAccount)
	assert.ErrorIs(t, err, ErrConstructorName)

	_, err = ParseConstructor(func() (int, bool) { return 0, false })
	assert.ErrorIs(t, err, ErrUnsupportedResults)
}

func TestCatalog(t *testing.T) {
	c := NewCatalog()

	require.NoError(t, c.RegisterConstructor(NewAccount, "id", "owner"))
	require.NoError(t, c.RegisterConstructor(CreateToken, "value"))
	require.NoError(t, c.RegisterImplementations(reflect.TypeFor[Shape](), reflect.TypeFor[Base](), reflect.TypeFor[*Leaf]()))
	c.RegisterTypes(reflect.TypeFor[Link](), reflect.TypeFor[[]int]())

	assert.Len(t, c.Constructors(reflect.TypeFor[*Account]()), 1)
	assert.Empty(t, c.Constructors(reflect.TypeFor[Link]()))
	assert.Equal(t, []reflect.Type{reflect.TypeFor[Base](), reflect.TypeFor[Leaf]()}, c.Implementations(reflect.TypeFor[Shape]()))

	typ, ok := c.Lookup("Account")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[Account](), typ)

	typ, ok = c.Lookup("*analyze.Link")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[Link](), typ)

	_, ok = c.Lookup("Missing")
	assert.False(t, ok)

	var names []string
	for _, typ := range c.Types() {
		names = append(names, TypeString(typ))
	}

	assert.Equal(t, []string{
		"analyze.Account", "analyze.Base", "analyze.Leaf", "analyze.Link", "analyze.Shape", "analyze.Token",
	}, names)

	err := c.RegisterImplementations(reflect.TypeFor[Shape](), reflect.TypeFor[Other]())
	assert.ErrorIs(t, err, ErrNotImplementation)

	err = c.RegisterImplementations(reflect.TypeFor[Base](), reflect.TypeFor[Mid]())
	assert.ErrorIs(t, err, ErrNotImplementation)

	assert.Error(t, c.RegisterConstructor(NewLinks))
}
