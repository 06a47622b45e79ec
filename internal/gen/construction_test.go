package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/mapping"
	"shape-mapper/node"
	"shape-mapper/options"
)

var walletScope = mapping.PairOf[account, wallet]()

func walletCatalog(t *testing.T) *analyze.Catalog {
	t.Helper()

	c := analyze.NewCatalog()
	require.NoError(t, c.RegisterConstructor(CreateWallet, "owner", "balance"))
	require.NoError(t, c.RegisterConstructor(NewWallet, "owner"))

	return c
}

func TestConstructorSuppliesMembers(t *testing.T) {
	l := newLinker(t, walletCatalog(t), nil, options.WithoutFuzzyMatch())

	out := run[account, wallet](t, l, account{Owner: "o", Balance: 5, Currency: "EUR"})
	assert.Equal(t, wallet{Owner: "o!", Balance: 5, Currency: "EUR"}, out, "supplied members are not reassigned")

	_, err := mapperOf[account, wallet](t, l, node.IntentCreateNew).
		Invoke(account{Owner: "o", Balance: -1}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative balance")
	assert.Contains(t, err.Error(), "CreateWallet")
}

func TestConfiguredConstruction(t *testing.T) {
	catalog := analyze.NewCatalog()
	require.NoError(t, catalog.RegisterConstructor(NewWallet, "owner"))

	l := newLinker(t, catalog, []*mapping.Rule{
		mapping.MapOnto(walletScope, mapping.FromFunc(func(a account) wallet {
			return wallet{Owner: a.Owner, Currency: "EUR"}
		})).IfExpr("Source.Balance > 0"),
		mapping.Ignore(walletScope, "Currency"),
	}, options.WithoutFuzzyMatch())

	out := run[account, wallet](t, l, account{Owner: "o", Balance: 3, Currency: "NOK"})
	assert.Equal(t, wallet{Owner: "o", Balance: 3, Currency: "EUR"}, out)

	out = run[account, wallet](t, l, account{Owner: "o", Currency: "NOK"})
	assert.Equal(t, wallet{Owner: "o", Currency: "USD"}, out, "a declined candidate falls through to the constructor")
}

func TestOntoExistingSkipsConstruction(t *testing.T) {
	l := newLinker(t, walletCatalog(t), nil, options.WithoutFuzzyMatch())

	existing := &wallet{Owner: "kept"}

	out := runOnto[account, *wallet](t, l, node.IntentOverwrite, account{Owner: "o", Balance: 5}, existing)
	require.Same(t, existing, out)
	assert.Equal(t, wallet{Owner: "o", Balance: 5}, *out, "an existing target is populated member by member")
}
