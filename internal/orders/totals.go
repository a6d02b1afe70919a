package orders

import (
	"github.com/shopspring/decimal"

	"github.com/equipdesk/backoffice/internal/domain"
	"github.com/equipdesk/backoffice/internal/pricing"
)

// computeTotals fills in subtotal, tax and total for a new order.
// Shipping cost starts at zero and is folded in when a transport quote
// is accepted, keeping total = subtotal + tax + shippingCost at every
// point in the order's life.
func computeTotals(order *domain.Order) {
	subtotal := decimal.Zero
	for _, item := range order.Items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	order.Subtotal = subtotal
	order.Tax = pricing.Tax(subtotal)
	order.ShippingCost = decimal.Zero
	order.Total = subtotal.Add(order.Tax)
}
