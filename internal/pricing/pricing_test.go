package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTransportCost(t *testing.T) {
	tests := []struct {
		name     string
		distance string
		weight   string
		want     string
	}{
		{"zero distance and weight", "0", "0", "100"},
		{"distance only", "200", "0", "200"},
		{"weight only", "0", "50", "105"},
		{"combined", "120", "35", "163.5"},
		{"fractional rounds half up", "0.01", "0.05", "100.01"},
		{"large order", "1200", "850", "785"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TransportCost(dec(tt.distance), dec(tt.weight))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(dec(tt.want)) {
				t.Errorf("TransportCost(%s, %s) = %s, want %s", tt.distance, tt.weight, got, tt.want)
			}
		})
	}

	t.Run("negative distance rejected", func(t *testing.T) {
		_, err := TransportCost(dec("-1"), dec("10"))
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("negative weight rejected", func(t *testing.T) {
		_, err := TransportCost(dec("10"), dec("-0.5"))
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestEstimateDays(t *testing.T) {
	tests := []struct {
		distance float64
		want     int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{499, 2},
		{500, 3},
		{999, 3},
		{1000, 2}, // ceil(1000/500)
		{1200, 3},
		{2501, 6},
	}

	for _, tt := range tests {
		got, err := EstimateDays(tt.distance)
		if err != nil {
			t.Fatalf("EstimateDays(%v): unexpected error: %v", tt.distance, err)
		}
		if got != tt.want {
			t.Errorf("EstimateDays(%v) = %d, want %d", tt.distance, got, tt.want)
		}
	}

	if _, err := EstimateDays(-10); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for negative distance, got %v", err)
	}
}

func TestTax(t *testing.T) {
	if got := Tax(dec("250")); !got.Equal(dec("25")) {
		t.Errorf("Tax(250) = %s, want 25", got)
	}
	if got := Tax(dec("19.99")); !got.Equal(dec("2")) {
		t.Errorf("Tax(19.99) = %s, want 2", got)
	}
	if !Tax(decimal.Zero).IsZero() {
		t.Error("Tax(0) should be zero")
	}
}

func TestInsuranceFor(t *testing.T) {
	t.Run("above threshold includes coverage for free", func(t *testing.T) {
		included, cost := InsuranceFor(dec("10000.01"))
		if !included {
			t.Error("expected insurance to be included")
		}
		if !cost.IsZero() {
			t.Errorf("expected zero cost, got %s", cost)
		}
	})

	t.Run("at threshold is not included", func(t *testing.T) {
		included, cost := InsuranceFor(dec("10000"))
		if included {
			t.Error("expected insurance not to be included at exactly 10000")
		}
		if !cost.Equal(dec("10")) {
			t.Errorf("expected cost 10, got %s", cost)
		}
	})

	t.Run("below threshold costs 0.1% of value", func(t *testing.T) {
		included, cost := InsuranceFor(dec("2500"))
		if included {
			t.Error("expected insurance not to be included")
		}
		if !cost.Equal(dec("2.5")) {
			t.Errorf("expected cost 2.5, got %s", cost)
		}
	})
}
