package products

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

func (r *Repository) Create(ctx context.Context, product *domain.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}

	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO products (id, sku, created_at, data) VALUES ($1, $2, $3, $4)
	`, product.ID, product.SKU, product.CreatedAt, data)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT data FROM products WHERE id = $1
	`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	product := &domain.Product{}
	if err := json.Unmarshal(data, product); err != nil {
		return nil, fmt.Errorf("unmarshal product %s: %w", id, err)
	}
	return product, nil
}

func (r *Repository) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT data FROM products ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	products := []domain.Product{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var product domain.Product
		if err := json.Unmarshal(data, &product); err != nil {
			return nil, fmt.Errorf("unmarshal product: %w", err)
		}
		products = append(products, product)
	}

	return products, rows.Err()
}

func (r *Repository) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	product.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(product)
	if err != nil {
		return nil, fmt.Errorf("marshal product: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE products SET sku = $2, data = $3 WHERE id = $1
	`, product.ID, product.SKU, data)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, nil
	}
	return product, nil
}

func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
