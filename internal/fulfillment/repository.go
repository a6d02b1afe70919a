package fulfillment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/equipdesk/backoffice/internal/database"
	"github.com/equipdesk/backoffice/internal/domain"
)

var (
	ErrFulfillmentNotFound = errors.New("fulfillment: not found")
	ErrInvalidTransition   = errors.New("fulfillment: invalid status transition")
)

// Repository stores fulfillments one-to-one with orders (unique
// order_id). The JSONB document carries carrier, tracking number, notes
// and the append-only history; status and timestamps are promoted
// columns.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type document struct {
	Carrier        string                    `json:"carrier,omitempty"`
	TrackingNumber string                    `json:"tracking_number,omitempty"`
	Notes          string                    `json:"notes,omitempty"`
	History        []domain.FulfillmentEvent `json:"history"`
}

func (r *Repository) GetByOrder(ctx context.Context, orderID string) (*domain.Fulfillment, error) {
	return scanFulfillment(r.db.QueryRowContext(ctx, `
		SELECT id, order_id, status, created_at, updated_at, data
		FROM fulfillments WHERE order_id = $1
	`, orderID))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFulfillment(row rowScanner) (*domain.Fulfillment, error) {
	f := &domain.Fulfillment{}
	var data []byte

	err := row.Scan(&f.ID, &f.OrderID, &f.Status, &f.CreatedAt, &f.UpdatedAt, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal fulfillment: %w", err)
	}
	f.Carrier = doc.Carrier
	f.TrackingNumber = doc.TrackingNumber
	f.Notes = doc.Notes
	f.History = doc.History

	return f, nil
}

// UpdateStatus moves the fulfillment to newStatus and appends a history
// entry. The current status is read under a row lock so concurrent
// updates serialize, and the transition table is enforced before
// anything is written.
func (r *Repository) UpdateStatus(ctx context.Context, orderID string, newStatus domain.FulfillmentStatus, note string) (*domain.Fulfillment, error) {
	now := time.Now().UTC()
	var updated *domain.Fulfillment

	err := database.WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		var current domain.FulfillmentStatus
		err := tx.QueryRowContext(ctx, `
			SELECT status FROM fulfillments WHERE order_id = $1 FOR UPDATE
		`, orderID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrFulfillmentNotFound
		}
		if err != nil {
			return fmt.Errorf("lock fulfillment: %w", err)
		}

		if !CanTransition(current, newStatus) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, newStatus)
		}

		event := domain.FulfillmentEvent{Status: newStatus, Timestamp: now, Note: note}
		eventJSON, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal history event: %w", err)
		}

		updated, err = scanFulfillment(tx.QueryRowContext(ctx, `
			UPDATE fulfillments
			SET status = $2,
			    updated_at = $3,
			    data = jsonb_set(data, '{history}',
			        coalesce(data->'history', '[]'::jsonb) || $4::jsonb)
			WHERE order_id = $1
			RETURNING id, order_id, status, created_at, updated_at, data
		`, orderID, newStatus, now, eventJSON))
		if err != nil {
			return fmt.Errorf("update fulfillment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// SetTracking records the carrier and tracking number without touching
// status or history.
func (r *Repository) SetTracking(ctx context.Context, orderID, carrier, trackingNumber string) (*domain.Fulfillment, error) {
	now := time.Now().UTC()

	updated, err := scanFulfillment(r.db.QueryRowContext(ctx, `
		UPDATE fulfillments
		SET updated_at = $2,
		    data = data || jsonb_build_object('carrier', $3::text, 'tracking_number', $4::text)
		WHERE order_id = $1
		RETURNING id, order_id, status, created_at, updated_at, data
	`, orderID, now, carrier, trackingNumber))
	if err != nil {
		return nil, fmt.Errorf("set tracking: %w", err)
	}
	if updated == nil {
		return nil, ErrFulfillmentNotFound
	}
	return updated, nil
}
