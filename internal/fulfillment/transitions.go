package fulfillment

import "github.com/equipdesk/backoffice/internal/domain"

// transitions is the allowed status graph: the normal path is
// pending → processing → shipped → delivered, and cancelled is
// reachable from any non-terminal state. Delivered and cancelled are
// terminal.
var transitions = map[domain.FulfillmentStatus][]domain.FulfillmentStatus{
	domain.FulfillmentStatusPending:    {domain.FulfillmentStatusProcessing, domain.FulfillmentStatusCancelled},
	domain.FulfillmentStatusProcessing: {domain.FulfillmentStatusShipped, domain.FulfillmentStatusCancelled},
	domain.FulfillmentStatusShipped:    {domain.FulfillmentStatusDelivered, domain.FulfillmentStatusCancelled},
	domain.FulfillmentStatusDelivered:  nil,
	domain.FulfillmentStatusCancelled:  nil,
}

// CanTransition reports whether moving from one status to the other is
// allowed. Same-status updates are permitted so a note can be appended
// without changing state.
func CanTransition(from, to domain.FulfillmentStatus) bool {
	if from == to {
		_, known := transitions[from]
		return known
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
