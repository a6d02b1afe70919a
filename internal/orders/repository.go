package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/equipdesk/backoffice/internal/database"
	"github.com/equipdesk/backoffice/internal/domain"
)

var ErrOrderNotFound = errors.New("orders: order not found")

// OrderRepository stores orders as JSONB documents. customer_id,
// sales_rep_id, status and created_at are promoted into columns for
// filtering; the document is the source of truth for everything else.
type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}

	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	fulfillmentDoc, err := json.Marshal(map[string]any{
		"history": []domain.FulfillmentEvent{{
			Status:    domain.FulfillmentStatusPending,
			Timestamp: order.CreatedAt,
			Note:      "Order created",
		}},
	})
	if err != nil {
		return fmt.Errorf("marshal fulfillment doc: %w", err)
	}

	return database.WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders (id, customer_id, sales_rep_id, status, created_at, data)
			VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
		`, order.ID, order.CustomerID, order.SalesRepID, order.Status, order.CreatedAt, data)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		// Every order carries its fulfillment record from birth.
		_, err = tx.ExecContext(ctx, `
			INSERT INTO fulfillments (id, order_id, status, created_at, updated_at, data)
			VALUES ($1, $2, $3, $4, $4, $5)
		`, uuid.New().String(), order.ID, domain.FulfillmentStatusPending, order.CreatedAt, fulfillmentDoc)
		if err != nil {
			return fmt.Errorf("insert fulfillment: %w", err)
		}

		return nil
	})
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT data FROM orders WHERE id = $1
	`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	order := &domain.Order{}
	if err := json.Unmarshal(data, order); err != nil {
		return nil, fmt.Errorf("unmarshal order %s: %w", id, err)
	}
	return order, nil
}

func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT data FROM orders ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orders := []domain.Order{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var order domain.Order
		if err := json.Unmarshal(data, &order); err != nil {
			return nil, fmt.Errorf("unmarshal order: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

// UpdateStatus sets the order status in the column and the document in
// one statement. Returns the updated order, or nil when no such order
// exists.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $2,
		    data = data || jsonb_build_object('status', $2::text, 'updated_at', to_jsonb($3::timestamptz))
		WHERE id = $1
	`, id, status, now)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

// UpdatePaymentStatus mirrors UpdateStatus for the payment field.
func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Order, error) {
	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET data = data || jsonb_build_object('payment_status', $2::text, 'updated_at', to_jsonb($3::timestamptz))
		WHERE id = $1
	`, id, status, now)
	if err != nil {
		return nil, fmt.Errorf("update payment status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

// Delete removes an order and, through the foreign keys, its transport
// quotes and fulfillment record in one transaction.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	return database.WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete order: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrOrderNotFound
		}
		return nil
	})
}
