// Package demo wires the store and warehouse shapes into a catalog, a
// transform registry and a rule file. The CLI uses it when no rule file is
// given.
package demo

import (
	_ "embed"
	"reflect"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/mapping"
	"shape-mapper/store"
	"shape-mapper/warehouse"
)

//go:embed orders.yaml
var ordersYAML []byte

// Pairs lists the root pairs of the demo rule file.
var Pairs = [][2]reflect.Type{
	{reflect.TypeFor[store.Order](), reflect.TypeFor[warehouse.Order]()},
	{reflect.TypeFor[store.Customer](), reflect.TypeFor[warehouse.Customer]()},
}

// Register adds the demo shapes, constructors and implementations to c.
func Register(c *analyze.Catalog) error {
	c.RegisterTypes(
		reflect.TypeFor[store.Product](),
		reflect.TypeFor[store.Customer](),
		reflect.TypeFor[store.Order](),
		reflect.TypeFor[store.OrderItem](),
		reflect.TypeFor[store.OrderStatus](),
		reflect.TypeFor[store.Payment](),
		reflect.TypeFor[store.CardPayment](),
		reflect.TypeFor[store.TransferPayment](),
		reflect.TypeFor[warehouse.Customer](),
		reflect.TypeFor[warehouse.Order](),
		reflect.TypeFor[warehouse.OrderItem](),
	)

	return multierr.Combine(
		c.RegisterConstructor(warehouse.NewCustomer, "id", "email"),
		c.RegisterImplementations(reflect.TypeFor[warehouse.Payment](),
			reflect.TypeFor[warehouse.CardPaymentRecord](),
			reflect.TypeFor[warehouse.TransferPaymentRecord]()),
	)
}

// Transforms returns the functions the demo rule file refers to.
func Transforms() (*mapping.TransformRegistry, error) {
	r := mapping.NewTransformRegistry()

	err := multierr.Combine(
		r.Add("order_number", OrderNumber),
		r.Add("status_label", StatusLabel),
	)
	if err != nil {
		return nil, err
	}

	return r, nil
}

// Rules parses the embedded demo rule file.
func Rules() (*mapping.MappingFile, error) {
	return mapping.Parse(ordersYAML)
}

// OrderNumber is the public number of o.
func OrderNumber(o store.Order) string {
	return "ORD-" + strconv.FormatInt(o.ID, 10)
}

// StatusLabel spells s the way the warehouse does.
func StatusLabel(s store.OrderStatus) string {
	return strings.ToLower(string(s))
}
