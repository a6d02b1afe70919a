package customers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/equipdesk/backoffice/internal/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, customer *domain.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}

	data, err := json.Marshal(customer)
	if err != nil {
		return fmt.Errorf("marshal customer: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO customers (id, created_at, data) VALUES ($1, $2, $3)
	`, customer.ID, customer.CreatedAt, data)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT data FROM customers WHERE id = $1
	`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	customer := &domain.Customer{}
	if err := json.Unmarshal(data, customer); err != nil {
		return nil, fmt.Errorf("unmarshal customer %s: %w", id, err)
	}
	return customer, nil
}

func (r *Repository) List(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT data FROM customers ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	customers := []domain.Customer{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var customer domain.Customer
		if err := json.Unmarshal(data, &customer); err != nil {
			return nil, fmt.Errorf("unmarshal customer: %w", err)
		}
		customers = append(customers, customer)
	}

	return customers, rows.Err()
}

// Update replaces the document. Returns nil when no such customer
// exists.
func (r *Repository) Update(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	customer.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(customer)
	if err != nil {
		return nil, fmt.Errorf("marshal customer: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE customers SET data = $2 WHERE id = $1
	`, customer.ID, data)
	if err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, nil
	}
	return customer, nil
}

func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete customer: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
