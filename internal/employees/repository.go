package employees

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/equipdesk/backoffice/internal/domain"
)

var ErrEmployeeNotFound = errors.New("employees: employee not found")

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, employee *domain.Employee) error {
	if employee.ID == "" {
		employee.ID = uuid.New().String()
	}

	data, err := json.Marshal(employee)
	if err != nil {
		return fmt.Errorf("marshal employee: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO employees (id, created_at, data) VALUES ($1, $2, $3)
	`, employee.ID, employee.CreatedAt, data)
	if err != nil {
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT data FROM employees WHERE id = $1
	`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	employee := &domain.Employee{}
	if err := json.Unmarshal(data, employee); err != nil {
		return nil, fmt.Errorf("unmarshal employee %s: %w", id, err)
	}
	return employee, nil
}

func (r *Repository) List(ctx context.Context) ([]domain.Employee, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT data FROM employees ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	employees := []domain.Employee{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var employee domain.Employee
		if err := json.Unmarshal(data, &employee); err != nil {
			return nil, fmt.Errorf("unmarshal employee: %w", err)
		}
		employees = append(employees, employee)
	}

	return employees, rows.Err()
}

func (r *Repository) Update(ctx context.Context, employee *domain.Employee) (*domain.Employee, error) {
	employee.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(employee)
	if err != nil {
		return nil, fmt.Errorf("marshal employee: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE employees SET data = $2 WHERE id = $1
	`, employee.ID, data)
	if err != nil {
		return nil, fmt.Errorf("update employee: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, nil
	}
	return employee, nil
}

// Payroll computes the employee's pay statement for a period from the
// delivered orders credited to them.
func (r *Repository) Payroll(ctx context.Context, employeeID string, from, to time.Time) (*domain.PayrollStatement, error) {
	employee, err := r.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, ErrEmployeeNotFound
	}

	var salesTotal decimal.Decimal
	var orderCount int
	err = r.db.QueryRowContext(ctx, `
		SELECT coalesce(sum((data->>'total')::numeric), 0), count(*)
		FROM orders
		WHERE sales_rep_id = $1
		  AND status = 'delivered'
		  AND created_at >= $2 AND created_at < $3
	`, employeeID, from, to).Scan(&salesTotal, &orderCount)
	if err != nil {
		return nil, fmt.Errorf("sum delivered orders: %w", err)
	}

	statement := buildStatement(employee, salesTotal, orderCount)
	statement.PeriodStart = from
	statement.PeriodEnd = to
	return &statement, nil
}
