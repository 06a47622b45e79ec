package mapper

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shape-mapper/internal/demo"
	"shape-mapper/internal/mapping"
	"shape-mapper/node"
	"shape-mapper/store"
	"shape-mapper/warehouse"
)

func newDemoMapper(t *testing.T) *Mapper {
	t.Helper()

	m := New()
	require.NoError(t, demo.Register(m.Catalog()))

	transforms, err := demo.Transforms()
	require.NoError(t, err)

	mf, err := demo.Rules()
	require.NoError(t, err)
	require.NoError(t, transforms.Check(mf.Transforms, m.Catalog()))
	require.NoError(t, m.Load(mf, transforms))

	return m
}

func sampleOrder() *store.Order {
	street := "Main 1"

	return &store.Order{
		ID: 1001,
		Customer: &store.Customer{
			ID:       7,
			Email:    "ada@example.com",
			FullName: "Ada Lovelace",
			Address:  &street,
			IsActive: true,
		},
		Status: store.StatusPaid,
		Items: []store.OrderItem{
			{ProductID: 1, Name: "pen", Quantity: 3, UnitPrice: 150},
			{ProductID: 2, Name: "ink", Quantity: 1, UnitPrice: 900},
		},
		Payment:   store.CardPayment{Charge: store.Charge{Amount: 1350, Currency: "EUR"}, Last4: "4242"},
		Labels:    map[string]string{"gift": "yes"},
		OrderedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestOrderFromRuleFile(t *testing.T) {
	m := newDemoMapper(t)
	in := sampleOrder()

	out, err := Map[*warehouse.Order](m, in)
	require.NoError(t, err)

	assert.Equal(t, uint(1001), out.ID)
	assert.Equal(t, "ORD-1001", out.OrderNumber)
	assert.Equal(t, "paid", out.Status)
	assert.Equal(t, int64(1350), out.TotalAmount)
	assert.Equal(t, "EUR", out.Currency)
	assert.Equal(t, 2, out.Priority())
	assert.Equal(t, map[string]string{"gift": "yes"}, out.Labels)
	require.NotNil(t, out.PlacedAt)
	assert.True(t, in.OrderedAt.Equal(*out.PlacedAt))

	assert.Equal(t, uint(7), out.Customer.ID)
	assert.Equal(t, "Ada Lovelace", out.Customer.Name)
	assert.Equal(t, "Main 1", out.Customer.Address)
	assert.True(t, out.Customer.Active)
	assert.Equal(t, "C7", out.Customer.Code(), "customers are built by NewCustomer")

	assert.Equal(t, []warehouse.OrderItem{
		{ProductID: 1, Quantity: 3, UnitPrice: 150, TotalPrice: 450},
		{ProductID: 2, Quantity: 1, UnitPrice: 900, TotalPrice: 900},
	}, out.Items)

	assert.Equal(t, warehouse.CardPaymentRecord{
		Settlement: warehouse.Settlement{Amount: 1350, Currency: "EUR"},
		Last4:      "4242",
	}, out.Payment)
}

func TestOrderVariants(t *testing.T) {
	m := newDemoMapper(t)

	in := sampleOrder()
	in.Customer = nil
	in.Payment = store.TransferPayment{Charge: store.Charge{Amount: 5}, IBAN: "NO93"}

	out, err := Map[warehouse.Order](m, in)
	require.NoError(t, err)
	assert.Zero(t, out.Priority(), "the priority rule needs a customer")
	assert.Equal(t, warehouse.Customer{}, out.Customer)
	assert.Equal(t, warehouse.TransferPaymentRecord{Settlement: warehouse.Settlement{Amount: 5}, IBAN: "NO93"}, out.Payment)

	in.Payment = nil

	out, err = Map[warehouse.Order](m, in)
	require.NoError(t, err)
	assert.Nil(t, out.Payment)
}

func TestReferrerCycle(t *testing.T) {
	m := newDemoMapper(t)

	ada := &store.Customer{ID: 1, FullName: "Ada"}
	ada.Referrer = ada

	out, err := Map[*warehouse.Customer](m, ada)
	require.NoError(t, err)
	assert.Same(t, out, out.Referrer)
	assert.Equal(t, "C1", out.Referrer.Code())
}

func TestPrecompileDemoPairs(t *testing.T) {
	m := newDemoMapper(t)

	for _, pair := range demo.Pairs {
		_, err := m.Precompile(pair[0], pair[1], node.IntentCreateNew)
		require.NoError(t, err)
	}

	p, err := m.GetPlan(reflect.TypeFor[store.Order](), reflect.TypeFor[warehouse.Order](), node.IntentCreateNew)
	require.NoError(t, err)
	assert.Empty(t, p.UnmappedMembers())
}

func TestLoadReportsEveryBrokenMapping(t *testing.T) {
	m := newDemoMapper(t)

	mf, err := mapping.Parse([]byte(`
mappings:
  - source: store.Nope
    target: warehouse.Order
  - source: store.Order
    target: warehouse.Order
    fields:
      - target: Missing
        source: ID
`))
	require.NoError(t, err)

	err = m.Load(mf, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapping 1")
	assert.Contains(t, err.Error(), "mapping 2")
}
