package fulfillment

import (
	"testing"

	"github.com/equipdesk/backoffice/internal/domain"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to domain.FulfillmentStatus
		want     bool
	}{
		{domain.FulfillmentStatusPending, domain.FulfillmentStatusProcessing, true},
		{domain.FulfillmentStatusProcessing, domain.FulfillmentStatusShipped, true},
		{domain.FulfillmentStatusShipped, domain.FulfillmentStatusDelivered, true},
		{domain.FulfillmentStatusPending, domain.FulfillmentStatusCancelled, true},
		{domain.FulfillmentStatusProcessing, domain.FulfillmentStatusCancelled, true},
		{domain.FulfillmentStatusShipped, domain.FulfillmentStatusCancelled, true},

		{domain.FulfillmentStatusPending, domain.FulfillmentStatusShipped, false},
		{domain.FulfillmentStatusPending, domain.FulfillmentStatusDelivered, false},
		{domain.FulfillmentStatusShipped, domain.FulfillmentStatusProcessing, false},
		{domain.FulfillmentStatusDelivered, domain.FulfillmentStatusCancelled, false},
		{domain.FulfillmentStatusDelivered, domain.FulfillmentStatusShipped, false},
		{domain.FulfillmentStatusCancelled, domain.FulfillmentStatusProcessing, false},

		// same-status updates append a note without moving state
		{domain.FulfillmentStatusProcessing, domain.FulfillmentStatusProcessing, true},
		{domain.FulfillmentStatusDelivered, domain.FulfillmentStatusDelivered, true},

		// unknown statuses never transition
		{"archived", domain.FulfillmentStatusPending, false},
		{"archived", "archived", false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
