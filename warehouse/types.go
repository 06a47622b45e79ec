// Package warehouse holds the shapes of fulfilment: orders as the warehouse
// ships them. They are the target side of the demo catalog.
package warehouse

import (
	"strconv"
	"time"
)

// Customer is the recipient of a shipment.
type Customer struct {
	ID       uint      `json:"id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Address  string    `json:"address"`
	Active   bool      `json:"active"`
	Referrer *Customer `json:"referrer,omitempty"`

	code string
}

// NewCustomer returns a customer with a shipping code derived from its ID.
func NewCustomer(id uint, email string) *Customer {
	return &Customer{ID: id, Email: email, code: "C" + strconv.FormatUint(uint64(id), 10)}
}

// Code is the shipping code, set only through NewCustomer.
func (c *Customer) Code() string { return c.code }

// Order is a shipment to prepare.
type Order struct {
	ID          uint              `json:"id"`
	OrderNumber string            `json:"order_number"`
	Status      string            `json:"status"`
	TotalAmount int64             `json:"total_amount"`
	Currency    string            `json:"currency"`
	Customer    Customer          `json:"customer"`
	Items       []OrderItem       `json:"items"`
	Payment     Payment           `json:"payment"`
	Labels      map[string]string `json:"labels,omitempty"`
	PlacedAt    *time.Time        `json:"placed_at,omitempty"`

	priority int
}

// SetPriority ranks the order for picking, higher first.
func (o *Order) SetPriority(p int) { o.priority = p }

// Priority returns the picking rank.
func (o *Order) Priority() int { return o.priority }

// OrderItem is a line to pick.
type OrderItem struct {
	ProductID  uint  `json:"product_id"`
	Quantity   int   `json:"quantity"`
	UnitPrice  int64 `json:"unit_price"`
	TotalPrice int64 `json:"total_price"`
}

// Payment is the settlement record attached to a shipment.
type Payment interface {
	Method() string
}

// Settlement is what every payment record carries.
type Settlement struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CardPaymentRecord settles by card.
type CardPaymentRecord struct {
	Settlement
	Last4 string `json:"last4"`
}

func (CardPaymentRecord) Method() string { return "card" }

// TransferPaymentRecord settles by bank transfer.
type TransferPaymentRecord struct {
	Settlement
	IBAN string `json:"iban"`
}

func (TransferPaymentRecord) Method() string { return "transfer" }

