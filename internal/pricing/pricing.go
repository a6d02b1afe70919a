// Package pricing holds the money formulas for transport costing, order
// tax and transit insurance. Everything here is a pure function over
// shopspring decimals; rounding is half-up to 2 decimal places.
package pricing

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

var ErrInvalidInput = errors.New("pricing: negative input")

var (
	baseRate  = decimal.NewFromInt(100)
	perKmRate = decimal.RequireFromString("0.5")
	perKgRate = decimal.RequireFromString("0.1")

	taxRate = decimal.RequireFromString("0.1")

	insuranceThreshold = decimal.NewFromInt(10000)
	insuranceRate      = decimal.RequireFromString("0.001")
)

// TransportCost returns baseRate + distance*perKmRate + weight*perKgRate
// rounded to cents. Negative inputs are rejected rather than producing a
// negative price.
func TransportCost(distanceKm, weightKg decimal.Decimal) (decimal.Decimal, error) {
	if distanceKm.IsNegative() || weightKg.IsNegative() {
		return decimal.Zero, ErrInvalidInput
	}
	cost := baseRate.
		Add(distanceKm.Mul(perKmRate)).
		Add(weightKg.Mul(perKgRate))
	return cost.Round(2), nil
}

// EstimateDays maps a distance to a delivery estimate in whole days.
// Boundaries fall into the larger bucket: exactly 100 km is 2 days,
// exactly 500 km is 3.
func EstimateDays(distanceKm float64) (int, error) {
	if distanceKm < 0 {
		return 0, ErrInvalidInput
	}
	switch {
	case distanceKm < 100:
		return 1, nil
	case distanceKm < 500:
		return 2, nil
	case distanceKm < 1000:
		return 3, nil
	default:
		return int(math.Ceil(distanceKm / 500)), nil
	}
}

// Tax is a flat 10% of the subtotal.
func Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(taxRate).Round(2)
}

// InsuranceFor decides transit insurance for a declared value. Above the
// threshold coverage is included at no cost; at or below it, coverage is
// offered at 0.1% of the declared value.
func InsuranceFor(declaredValue decimal.Decimal) (included bool, cost decimal.Decimal) {
	if declaredValue.GreaterThan(insuranceThreshold) {
		return true, decimal.Zero
	}
	return false, declaredValue.Mul(insuranceRate).Round(2)
}
