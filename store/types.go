// Package store holds the shapes of the storefront: orders as customers
// place them. They are the source side of the demo catalog.
package store

import (
	"time"
)

// Product is an item available for sale. Prices are in cents.
type Product struct {
	ID          int64     `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	Inventory   int       `json:"inventory_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Customer places orders.
type Customer struct {
	ID       int64     `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	Address  *string   `json:"address"`
	IsActive bool      `json:"is_active"`
	Referrer *Customer `json:"referrer,omitempty"`
}

// Order is a purchase made by a customer.
type Order struct {
	ID        int64             `json:"id"`
	Customer  *Customer         `json:"customer"`
	Status    OrderStatus       `json:"status"`
	Items     []OrderItem       `json:"items"`
	Payment   Payment           `json:"payment"`
	Labels    map[string]string `json:"labels,omitempty"`
	OrderedAt time.Time         `json:"ordered_at"`
}

// TotalCents sums the line totals.
func (o Order) TotalCents() int64 {
	var total int64
	for _, it := range o.Items {
		total += it.TotalCents()
	}

	return total
}

// OrderItem is a product line of an order, priced at purchase time.
type OrderItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// TotalCents is UnitPrice times Quantity.
func (i OrderItem) TotalCents() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// IsValid reports whether s is a known status.
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusCancelled:
		return true
	default:
		return false
	}
}

// Payment settles an order.
type Payment interface {
	AmountCents() int64
}

// Charge is what every payment carries.
type Charge struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (c Charge) AmountCents() int64 { return c.Amount }

// CardPayment is paid by card.
type CardPayment struct {
	Charge
	Last4 string `json:"last4"`
}

// TransferPayment is paid by bank transfer.
type TransferPayment struct {
	Charge
	IBAN      string `json:"iban"`
	Reference string `json:"reference"`
}
