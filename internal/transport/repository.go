package transport

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/equipdesk/backoffice/internal/database"
	"github.com/equipdesk/backoffice/internal/domain"
)

// QuoteRepository persists transport quotes as JSONB documents with the
// columns the queries filter on (order_id, status, valid_until)
// promoted. Status lives in both the column and the document;
// every mutation updates the two in the same statement.
type QuoteRepository struct {
	db *sql.DB
}

func NewQuoteRepository(db *sql.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) Create(ctx context.Context, quote *domain.TransportQuote) error {
	if quote.ID == "" {
		quote.ID = uuid.New().String()
	}

	data, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("marshal quote: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO transport_quotes (id, order_id, status, valid_until, created_at, data)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, quote.ID, quote.OrderID, quote.Status, quote.ValidUntil, quote.CreatedAt, data)
	if err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}

	return nil
}

func (r *QuoteRepository) GetByID(ctx context.Context, id string) (*domain.TransportQuote, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT data FROM transport_quotes WHERE id = $1
	`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	quote := &domain.TransportQuote{}
	if err := json.Unmarshal(data, quote); err != nil {
		return nil, fmt.Errorf("unmarshal quote %s: %w", id, err)
	}
	return quote, nil
}

func (r *QuoteRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.TransportQuote, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT data FROM transport_quotes
		WHERE order_id = $1
		ORDER BY created_at DESC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	quotes := []domain.TransportQuote{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var quote domain.TransportQuote
		if err := json.Unmarshal(data, &quote); err != nil {
			return nil, fmt.Errorf("unmarshal quote: %w", err)
		}
		quotes = append(quotes, quote)
	}

	return quotes, rows.Err()
}

// Accept atomically accepts one quote and settles everything that hangs
// off it: pending siblings become rejected, the order moves to
// processing with the quote's cost folded into its total, and the
// order's fulfillment record is created or advanced with a history
// entry. The accepting UPDATE is conditional on the quote still being
// pending and unexpired, so two concurrent calls for the same order
// cannot both win.
//
// Accepting an already-accepted quote is an idempotent no-op: the
// stored quote is returned with alreadyAccepted=true and nothing is
// written.
func (r *QuoteRepository) Accept(ctx context.Context, quoteID, orderID string) (quote *domain.TransportQuote, alreadyAccepted bool, err error) {
	now := time.Now().UTC()

	err = database.WithSerializationRetry(ctx, r.db, func(tx *sql.Tx) error {
		quote = nil
		alreadyAccepted = false

		result, err := tx.ExecContext(ctx, `
			UPDATE transport_quotes
			SET status = 'accepted',
			    data = jsonb_set(data, '{status}', '"accepted"')
			WHERE id = $1 AND order_id = $2 AND status = 'pending' AND valid_until > $3
		`, quoteID, orderID, now)
		if err != nil {
			return fmt.Errorf("accept quote: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("accept quote rows affected: %w", err)
		}

		if affected == 0 {
			return r.classifyAcceptMiss(ctx, tx, quoteID, orderID, now, &quote, &alreadyAccepted)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE transport_quotes
			SET status = 'rejected',
			    data = jsonb_set(data, '{status}', '"rejected"')
			WHERE order_id = $1 AND id <> $2 AND status = 'pending'
		`, orderID, quoteID); err != nil {
			return fmt.Errorf("reject sibling quotes: %w", err)
		}

		var data []byte
		if err := tx.QueryRowContext(ctx, `
			SELECT data FROM transport_quotes WHERE id = $1
		`, quoteID).Scan(&data); err != nil {
			return fmt.Errorf("reload accepted quote: %w", err)
		}
		quote = &domain.TransportQuote{}
		if err := json.Unmarshal(data, quote); err != nil {
			return fmt.Errorf("unmarshal accepted quote: %w", err)
		}

		if err := r.moveOrderToProcessing(ctx, tx, orderID, quote.Cost, now); err != nil {
			return err
		}

		return r.upsertFulfillment(ctx, tx, orderID, now)
	})
	if err != nil {
		if isBusinessError(err) {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("%w: %w", ErrAcceptanceFailed, err)
	}

	return quote, alreadyAccepted, nil
}

// classifyAcceptMiss figures out why the conditional accept matched
// nothing and turns it into the right sentinel (or a no-op for the
// idempotent re-accept case).
func (r *QuoteRepository) classifyAcceptMiss(ctx context.Context, tx *sql.Tx, quoteID, orderID string, now time.Time, quote **domain.TransportQuote, alreadyAccepted *bool) error {
	var status domain.QuoteStatus
	var validUntil time.Time
	var data []byte

	err := tx.QueryRowContext(ctx, `
		SELECT status, valid_until, data FROM transport_quotes
		WHERE id = $1 AND order_id = $2
	`, quoteID, orderID).Scan(&status, &validUntil, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrQuoteNotFound
	}
	if err != nil {
		return fmt.Errorf("inspect quote: %w", err)
	}

	switch status {
	case domain.QuoteStatusAccepted:
		q := &domain.TransportQuote{}
		if err := json.Unmarshal(data, q); err != nil {
			return fmt.Errorf("unmarshal quote: %w", err)
		}
		*quote = q
		*alreadyAccepted = true
		return nil
	case domain.QuoteStatusExpired:
		return ErrQuoteExpired
	case domain.QuoteStatusPending:
		if !validUntil.After(now) {
			return ErrQuoteExpired
		}
		return ErrQuoteNotPending
	default:
		return ErrQuoteNotPending
	}
}

func (r *QuoteRepository) moveOrderToProcessing(ctx context.Context, tx *sql.Tx, orderID string, shippingCost decimal.Decimal, now time.Time) error {
	var data []byte
	err := tx.QueryRowContext(ctx, `
		SELECT data FROM orders WHERE id = $1 FOR UPDATE
	`, orderID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("lock order: %w", err)
	}

	var order domain.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return fmt.Errorf("unmarshal order %s: %w", orderID, err)
	}

	order.Status = domain.OrderStatusProcessing
	order.ShippingCost = shippingCost
	order.Total = order.Subtotal.Add(order.Tax).Add(shippingCost)
	order.UpdatedAt = now

	updated, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order %s: %w", orderID, err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = $2, data = $3 WHERE id = $1
	`, orderID, order.Status, updated); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	return nil
}

func (r *QuoteRepository) upsertFulfillment(ctx context.Context, tx *sql.Tx, orderID string, now time.Time) error {
	event := domain.FulfillmentEvent{
		Status:    domain.FulfillmentStatusProcessing,
		Timestamp: now,
		Note:      "Transport quote accepted",
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal fulfillment event: %w", err)
	}

	insertDoc, err := json.Marshal(map[string]any{"history": []domain.FulfillmentEvent{event}})
	if err != nil {
		return fmt.Errorf("marshal fulfillment doc: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO fulfillments (id, order_id, status, created_at, updated_at, data)
		VALUES ($1, $2, 'processing', $3, $3, $4)
		ON CONFLICT (order_id) DO UPDATE SET
			status = 'processing',
			updated_at = $3,
			data = jsonb_set(fulfillments.data, '{history}',
				coalesce(fulfillments.data->'history', '[]'::jsonb) || $5::jsonb)
	`, uuid.New().String(), orderID, now, insertDoc, eventJSON); err != nil {
		return fmt.Errorf("upsert fulfillment: %w", err)
	}

	return nil
}

// ExpireStale flips pending quotes past their validity deadline to
// expired. Returns the number of quotes expired.
func (r *QuoteRepository) ExpireStale(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE transport_quotes
		SET status = 'expired',
		    data = jsonb_set(data, '{status}', '"expired"')
		WHERE status = 'pending' AND valid_until <= NOW()
	`)
	if err != nil {
		return 0, fmt.Errorf("expire quotes: %w", err)
	}
	return result.RowsAffected()
}

func isBusinessError(err error) bool {
	return errors.Is(err, ErrQuoteNotFound) ||
		errors.Is(err, ErrQuoteExpired) ||
		errors.Is(err, ErrQuoteNotPending) ||
		errors.Is(err, ErrOrderNotFound)
}
