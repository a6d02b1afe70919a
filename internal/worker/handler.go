package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/equipdesk/backoffice/internal/domain"
	"github.com/equipdesk/backoffice/internal/inbox"
	"github.com/equipdesk/backoffice/internal/settings"
)

// opsRecipient receives notifications for orders with no assigned sales rep.
const opsRecipient = "ops"

// Handler turns bus events into inbox notifications and messages.
type Handler struct {
	inbox    *inbox.Repository
	settings *settings.Repository
	logger   *slog.Logger
}

func NewHandler(inboxRepo *inbox.Repository, settingsRepo *settings.Repository, logger *slog.Logger) *Handler {
	return &Handler{inbox: inboxRepo, settings: settingsRepo, logger: logger}
}

func (h *Handler) HandleOrderCreated(ctx context.Context, payload []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.Error("discarding malformed order.created event", "error", err)
		return nil
	}

	cfg, err := h.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if !cfg.NotifyOnOrder {
		return nil
	}

	recipient := event.SalesRepID
	if recipient == "" {
		recipient = opsRecipient
	}

	notification := &domain.Notification{
		ID:          uuid.NewString(),
		RecipientID: recipient,
		Kind:        domain.NotificationOrderCreated,
		RefID:       event.OrderID,
		Text:        fmt.Sprintf("New order %s for customer %s, total %s %s", event.OrderID, event.CustomerID, event.Total.StringFixed(2), cfg.Currency),
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.inbox.CreateNotification(ctx, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	h.logger.Info("order notification delivered", "order_id", event.OrderID, "recipient", recipient)
	return nil
}

func (h *Handler) HandleQuoteAccepted(ctx context.Context, payload []byte) error {
	var event domain.QuoteAcceptedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.Error("discarding malformed quote.accepted event", "error", err)
		return nil
	}

	cfg, err := h.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if !cfg.NotifyOnAcceptance {
		return nil
	}

	recipient := event.SalesRepID
	if recipient == "" {
		recipient = opsRecipient
	}

	notification := &domain.Notification{
		ID:          uuid.NewString(),
		RecipientID: recipient,
		Kind:        domain.NotificationQuoteAccepted,
		RefID:       event.QuoteID,
		Text:        fmt.Sprintf("Transport quote accepted for order %s via %s, cost %s", event.OrderID, event.Provider, event.Cost.StringFixed(2)),
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.inbox.CreateNotification(ctx, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	// Sales reps also get a message so acceptance shows up in their inbox
	// even after the notification is dismissed.
	if event.SalesRepID != "" {
		message := &domain.Message{
			ID:          uuid.NewString(),
			RecipientID: event.SalesRepID,
			Sender:      "system",
			Subject:     fmt.Sprintf("Order %s is moving", event.OrderID),
			Body:        fmt.Sprintf("The customer accepted the %s transport quote (%s). The order is now processing.", event.Provider, event.Cost.StringFixed(2)),
			CreatedAt:   time.Now().UTC(),
		}
		if err := h.inbox.CreateMessage(ctx, message); err != nil {
			return fmt.Errorf("create message: %w", err)
		}
	}

	h.logger.Info("acceptance notification delivered", "quote_id", event.QuoteID, "order_id", event.OrderID, "recipient", recipient)
	return nil
}

func (h *Handler) HandleFulfillmentUpdated(ctx context.Context, payload []byte) error {
	var event domain.FulfillmentUpdatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.Error("discarding malformed fulfillment.updated event", "error", err)
		return nil
	}

	recipient := event.SalesRepID
	if recipient == "" {
		recipient = opsRecipient
	}

	text := fmt.Sprintf("Order %s fulfillment is now %s", event.OrderID, event.Status)
	if event.Note != "" {
		text += ": " + event.Note
	}
	notification := &domain.Notification{
		ID:          uuid.NewString(),
		RecipientID: recipient,
		Kind:        domain.NotificationFulfillmentUpdated,
		RefID:       event.OrderID,
		Text:        text,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.inbox.CreateNotification(ctx, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	h.logger.Info("fulfillment notification delivered", "order_id", event.OrderID, "status", event.Status, "recipient", recipient)
	return nil
}
