package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderCreatedEvent struct {
	OrderID    string          `json:"order_id"`
	CustomerID string          `json:"customer_id"`
	SalesRepID string          `json:"sales_rep_id,omitempty"`
	Items      []OrderItem     `json:"items"`
	Total      decimal.Decimal `json:"total"`
	Timestamp  time.Time       `json:"timestamp"`
}

type QuoteAcceptedEvent struct {
	QuoteID    string          `json:"quote_id"`
	OrderID    string          `json:"order_id"`
	Provider   string          `json:"provider"`
	Cost       decimal.Decimal `json:"cost"`
	SalesRepID string          `json:"sales_rep_id,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

type FulfillmentUpdatedEvent struct {
	OrderID    string            `json:"order_id"`
	Status     FulfillmentStatus `json:"status"`
	Note       string            `json:"note,omitempty"`
	SalesRepID string            `json:"sales_rep_id,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}
