package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type Address struct {
	Line1      string `json:"line1"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// String renders the address in the single-line form the distance
// provider expects.
func (a Address) String() string {
	parts := []string{a.Line1, a.City, a.State, a.PostalCode, a.Country}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}

type OrderItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	// WeightKg is the per-unit weight. Zero means the product carries no
	// weight data; quote generation substitutes 1 kg.
	WeightKg decimal.Decimal `json:"weight_kg"`
}

type Order struct {
	ID              string        `json:"id"`
	CustomerID      string        `json:"customer_id"`
	WarehouseID     string        `json:"warehouse_id"`
	SalesRepID      string        `json:"sales_rep_id,omitempty"`
	Items           []OrderItem   `json:"items"`
	Status          OrderStatus   `json:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	ShippingAddress *Address      `json:"shipping_address,omitempty"`

	// Total = Subtotal + Tax + ShippingCost. Tax is a flat 10% of the
	// subtotal. ShippingCost is zero until a transport quote is accepted.
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	Total        decimal.Decimal `json:"total"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
