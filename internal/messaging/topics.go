package messaging

// Topics carrying back-office events. One producer per topic.
const (
	TopicOrderCreated       = "order.created"
	TopicQuoteAccepted      = "quote.accepted"
	TopicFulfillmentUpdated = "fulfillment.updated"
)
