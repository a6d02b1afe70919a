package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "pending"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
	QuoteStatusExpired  QuoteStatus = "expired"
)

// Insurance covers the declared value of an order in transit. Orders
// whose declared value exceeds the inclusion threshold get coverage for
// free; below it coverage is offered at 0.1% of the declared value.
type Insurance struct {
	Included bool            `json:"included"`
	Coverage decimal.Decimal `json:"coverage"`
	Cost     decimal.Decimal `json:"cost"`
}

// TransportQuote is a priced, time-limited offer from a transport
// provider to move one order. At most one quote per order may be
// accepted; acceptance rejects its pending siblings in the same
// transaction.
type TransportQuote struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"order_id"`
	Provider      string          `json:"provider"`
	Method        string          `json:"method"`
	Cost          decimal.Decimal `json:"cost"`
	EstimatedDays int             `json:"estimated_days"`
	DistanceKm    float64         `json:"distance_km"`
	TotalWeightKg decimal.Decimal `json:"total_weight_kg"`
	DeclaredValue decimal.Decimal `json:"declared_value"`
	Insurance     Insurance       `json:"insurance"`
	ValidUntil    time.Time       `json:"valid_until"`
	Status        QuoteStatus     `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

type Warehouse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}
