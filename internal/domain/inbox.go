package domain

import "time"

type Message struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient_id"`
	Sender      string    `json:"sender"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

type NotificationKind string

const (
	NotificationOrderCreated       NotificationKind = "order_created"
	NotificationQuoteAccepted      NotificationKind = "quote_accepted"
	NotificationFulfillmentUpdated NotificationKind = "fulfillment_updated"
)

type Notification struct {
	ID          string           `json:"id"`
	RecipientID string           `json:"recipient_id"`
	Kind        NotificationKind `json:"kind"`
	// RefID points at the entity the notification is about (order ID,
	// quote ID, ...).
	RefID     string    `json:"ref_id"`
	Text      string    `json:"text"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
