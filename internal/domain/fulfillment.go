package domain

import "time"

type FulfillmentStatus string

const (
	FulfillmentStatusPending    FulfillmentStatus = "pending"
	FulfillmentStatusProcessing FulfillmentStatus = "processing"
	FulfillmentStatusShipped    FulfillmentStatus = "shipped"
	FulfillmentStatusDelivered  FulfillmentStatus = "delivered"
	FulfillmentStatusCancelled  FulfillmentStatus = "cancelled"
)

type FulfillmentEvent struct {
	Status    FulfillmentStatus `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Note      string            `json:"note,omitempty"`
}

// Fulfillment is the shipping/delivery record for one order, one-to-one
// by order ID. History is append-only.
type Fulfillment struct {
	ID             string             `json:"id"`
	OrderID        string             `json:"order_id"`
	Status         FulfillmentStatus  `json:"status"`
	Carrier        string             `json:"carrier,omitempty"`
	TrackingNumber string             `json:"tracking_number,omitempty"`
	Notes          string             `json:"notes,omitempty"`
	History        []FulfillmentEvent `json:"history"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}
