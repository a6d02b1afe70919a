package warehouses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/equipdesk/backoffice/internal/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, warehouse *domain.Warehouse) error {
	if warehouse.ID == "" {
		warehouse.ID = uuid.New().String()
	}

	data, err := json.Marshal(warehouse)
	if err != nil {
		return fmt.Errorf("marshal warehouse: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO warehouses (id, data) VALUES ($1, $2)
	`, warehouse.ID, data)
	if err != nil {
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Warehouse, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT data FROM warehouses WHERE id = $1
	`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	warehouse := &domain.Warehouse{}
	if err := json.Unmarshal(data, warehouse); err != nil {
		return nil, fmt.Errorf("unmarshal warehouse %s: %w", id, err)
	}
	return warehouse, nil
}

func (r *Repository) List(ctx context.Context) ([]domain.Warehouse, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT data FROM warehouses ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	warehouses := []domain.Warehouse{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var warehouse domain.Warehouse
		if err := json.Unmarshal(data, &warehouse); err != nil {
			return nil, fmt.Errorf("unmarshal warehouse: %w", err)
		}
		warehouses = append(warehouses, warehouse)
	}

	return warehouses, rows.Err()
}
