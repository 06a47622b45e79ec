package analyze

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"shape-mapper/store"
	"shape-mapper/warehouse"
)

func TestTypePath(t *testing.T) {
	// Simple path
	p1 := NewTypePath("Order")
	assert.Equal(t, "Order", p1.String())

	// Field path
	p2 := p1.Field("Items")
	assert.Equal(t, "Order.Items", p2.String())

	// Slice path
	p3 := p2.Slice()
	assert.Equal(t, "Order.Items[]", p3.String())

	// Field in slice element
	p4 := p3.Field("ProductID")
	assert.Equal(t, "Order.Items[].ProductID", p4.String())
	assert.Equal(t, "OrderItemsProductID", p4.Flat())

	// Empty root
	assert.Equal(t, "Customer.Name", NewTypePath("").Field("Customer").Field("Name").String())
	assert.Equal(t, "[]", NewTypePath("").Slice().String())
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "store.Order", TypeString(reflect.TypeFor[store.Order]()))
	assert.Equal(t, "*store.Order", TypeString(reflect.TypeFor[*store.Order]()))
	assert.Equal(t, "[]store.OrderItem", TypeString(reflect.TypeFor[[]store.OrderItem]()))
	assert.Equal(t, "map[string]*warehouse.Customer", TypeString(reflect.TypeFor[map[string]*warehouse.Customer]()))
	assert.Equal(t, "store.OrderStatus", TypeString(reflect.TypeFor[store.OrderStatus]()))
	assert.Equal(t, "int64", TypeString(reflect.TypeFor[int64]()))
	assert.Equal(t, "<nil>", TypeString(nil))
}
