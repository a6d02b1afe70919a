package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	// CommissionRate is a percentage, e.g. 2.5 means 2.5% of the total of
	// each delivered order credited to this employee.
	CommissionRate decimal.Decimal `json:"commission_rate"`
	BaseSalary     decimal.Decimal `json:"base_salary"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// PayrollStatement is the computed pay for one employee over a period.
type PayrollStatement struct {
	EmployeeID  string          `json:"employee_id"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	OrderCount  int             `json:"order_count"`
	SalesTotal  decimal.Decimal `json:"sales_total"`
	Commission  decimal.Decimal `json:"commission"`
	BaseSalary  decimal.Decimal `json:"base_salary"`
	TotalPay    decimal.Decimal `json:"total_pay"`
}
