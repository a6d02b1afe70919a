package employees

import (
	"github.com/shopspring/decimal"

	"github.com/equipdesk/backoffice/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// buildStatement turns a period's delivered-sales figures into a pay
// statement: commission is rate% of the sales total, rounded to cents,
// on top of base salary.
func buildStatement(employee *domain.Employee, salesTotal decimal.Decimal, orderCount int) domain.PayrollStatement {
	commission := salesTotal.Mul(employee.CommissionRate).Div(hundred).Round(2)
	return domain.PayrollStatement{
		EmployeeID: employee.ID,
		OrderCount: orderCount,
		SalesTotal: salesTotal,
		Commission: commission,
		BaseSalary: employee.BaseSalary,
		TotalPay:   employee.BaseSalary.Add(commission),
	}
}
