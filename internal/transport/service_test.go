package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/equipdesk/backoffice/internal/distance"
	"github.com/equipdesk/backoffice/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeOrderStore struct {
	orders map[string]*domain.Order
}

func (f *fakeOrderStore) GetByID(_ context.Context, id string) (*domain.Order, error) {
	return f.orders[id], nil
}

type fakeWarehouseStore struct {
	warehouses map[string]*domain.Warehouse
}

func (f *fakeWarehouseStore) GetByID(_ context.Context, id string) (*domain.Warehouse, error) {
	return f.warehouses[id], nil
}

type fakeQuoteStore struct {
	created []*domain.TransportQuote

	acceptQuote   *domain.TransportQuote
	acceptAlready bool
	acceptErr     error
	acceptCalls   int
}

func (f *fakeQuoteStore) Create(_ context.Context, quote *domain.TransportQuote) error {
	f.created = append(f.created, quote)
	return nil
}

func (f *fakeQuoteStore) GetByID(_ context.Context, id string) (*domain.TransportQuote, error) {
	for _, q := range f.created {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, nil
}

func (f *fakeQuoteStore) ListByOrder(_ context.Context, orderID string) ([]domain.TransportQuote, error) {
	var quotes []domain.TransportQuote
	for _, q := range f.created {
		if q.OrderID == orderID {
			quotes = append(quotes, *q)
		}
	}
	return quotes, nil
}

func (f *fakeQuoteStore) Accept(_ context.Context, _, _ string) (*domain.TransportQuote, bool, error) {
	f.acceptCalls++
	return f.acceptQuote, f.acceptAlready, f.acceptErr
}

func (f *fakeQuoteStore) ExpireStale(_ context.Context) (int64, error) {
	return 0, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(quotes *fakeQuoteStore, orders *fakeOrderStore, warehouses *fakeWarehouseStore, routes map[string]float64) *Service {
	return NewService(quotes, orders, warehouses, distance.NewStatic(routes), nil, testLogger())
}

func testOrder(mutate func(*domain.Order)) *domain.Order {
	order := &domain.Order{
		ID:          "order-1",
		CustomerID:  "cust-1",
		WarehouseID: "wh-1",
		Items: []domain.OrderItem{
			{ProductID: "p1", Quantity: 2, UnitPrice: dec("1500"), WeightKg: dec("12.5")},
			{ProductID: "p2", Quantity: 1, UnitPrice: dec("200")},
		},
		Status:          domain.OrderStatusPending,
		ShippingAddress: &domain.Address{Line1: "1 Harbour Way", City: "Dover", PostalCode: "CT16", Country: "UK"},
		Subtotal:        dec("3200"),
		Tax:             dec("320"),
		Total:           dec("3520"),
	}
	if mutate != nil {
		mutate(order)
	}
	return order
}

func testWarehouses() *fakeWarehouseStore {
	return &fakeWarehouseStore{warehouses: map[string]*domain.Warehouse{
		"wh-1": {ID: "wh-1", Name: "Main depot", Location: "Unit 4, Leeds, LS1, UK"},
	}}
}

func TestService_GenerateQuote(t *testing.T) {
	ctx := context.Background()
	route := map[string]float64{
		"Unit 4, Leeds, LS1, UK|1 Harbour Way, Dover, CT16, UK": 420,
	}

	t.Run("prices the quote from distance, weight and value", func(t *testing.T) {
		quotes := &fakeQuoteStore{}
		svc := newTestService(quotes,
			&fakeOrderStore{orders: map[string]*domain.Order{"order-1": testOrder(nil)}},
			testWarehouses(), route)

		quote, err := svc.GenerateQuote(ctx, "order-1", "EquipFreight", "road")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// weight: 2*12.5 + 1*1 (default) = 26 kg
		if !quote.TotalWeightKg.Equal(dec("26")) {
			t.Errorf("total weight = %s, want 26", quote.TotalWeightKg)
		}
		// cost: 100 + 420*0.5 + 26*0.1 = 312.60
		if !quote.Cost.Equal(dec("312.6")) {
			t.Errorf("cost = %s, want 312.6", quote.Cost)
		}
		if quote.EstimatedDays != 2 {
			t.Errorf("estimated days = %d, want 2", quote.EstimatedDays)
		}
		if quote.Status != domain.QuoteStatusPending {
			t.Errorf("status = %s, want pending", quote.Status)
		}
		if got := quote.ValidUntil.Sub(quote.CreatedAt); got != QuoteValidity {
			t.Errorf("validity window = %v, want %v", got, QuoteValidity)
		}
		if len(quotes.created) != 1 {
			t.Fatalf("expected 1 stored quote, got %d", len(quotes.created))
		}
	})

	t.Run("declared value at threshold pays for insurance", func(t *testing.T) {
		quotes := &fakeQuoteStore{}
		order := testOrder(func(o *domain.Order) {
			o.Items = []domain.OrderItem{{ProductID: "p1", Quantity: 1, UnitPrice: dec("10000"), WeightKg: dec("5")}}
		})
		svc := newTestService(quotes,
			&fakeOrderStore{orders: map[string]*domain.Order{"order-1": order}},
			testWarehouses(), route)

		quote, err := svc.GenerateQuote(ctx, "order-1", "EquipFreight", "road")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if quote.Insurance.Included {
			t.Error("insurance should not be included at exactly 10000")
		}
		if !quote.Insurance.Cost.Equal(dec("10")) {
			t.Errorf("insurance cost = %s, want 10", quote.Insurance.Cost)
		}
	})

	t.Run("declared value above threshold includes insurance free", func(t *testing.T) {
		quotes := &fakeQuoteStore{}
		order := testOrder(func(o *domain.Order) {
			o.Items = []domain.OrderItem{{ProductID: "p1", Quantity: 3, UnitPrice: dec("4000"), WeightKg: dec("5")}}
		})
		svc := newTestService(quotes,
			&fakeOrderStore{orders: map[string]*domain.Order{"order-1": order}},
			testWarehouses(), route)

		quote, err := svc.GenerateQuote(ctx, "order-1", "EquipFreight", "road")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !quote.Insurance.Included {
			t.Error("insurance should be included above 10000")
		}
		if !quote.Insurance.Cost.IsZero() {
			t.Errorf("insurance cost = %s, want 0", quote.Insurance.Cost)
		}
		if !quote.Insurance.Coverage.Equal(dec("12000")) {
			t.Errorf("coverage = %s, want 12000", quote.Insurance.Coverage)
		}
	})

	t.Run("missing shipping address creates no quote", func(t *testing.T) {
		quotes := &fakeQuoteStore{}
		order := testOrder(func(o *domain.Order) { o.ShippingAddress = nil })
		svc := newTestService(quotes,
			&fakeOrderStore{orders: map[string]*domain.Order{"order-1": order}},
			testWarehouses(), route)

		_, err := svc.GenerateQuote(ctx, "order-1", "EquipFreight", "road")
		if !errors.Is(err, ErrMissingShippingAddress) {
			t.Fatalf("expected ErrMissingShippingAddress, got %v", err)
		}
		if len(quotes.created) != 0 {
			t.Errorf("expected no stored quote, got %d", len(quotes.created))
		}
	})

	t.Run("unknown warehouse", func(t *testing.T) {
		order := testOrder(func(o *domain.Order) { o.WarehouseID = "wh-missing" })
		svc := newTestService(&fakeQuoteStore{},
			&fakeOrderStore{orders: map[string]*domain.Order{"order-1": order}},
			testWarehouses(), route)

		_, err := svc.GenerateQuote(ctx, "order-1", "EquipFreight", "road")
		if !errors.Is(err, ErrWarehouseNotFound) {
			t.Fatalf("expected ErrWarehouseNotFound, got %v", err)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		svc := newTestService(&fakeQuoteStore{},
			&fakeOrderStore{orders: map[string]*domain.Order{}},
			testWarehouses(), route)

		_, err := svc.GenerateQuote(ctx, "order-missing", "EquipFreight", "road")
		if !errors.Is(err, ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})
}

func TestService_AcceptQuote(t *testing.T) {
	ctx := context.Background()

	t.Run("passes business errors through", func(t *testing.T) {
		for _, sentinel := range []error{ErrQuoteNotFound, ErrQuoteExpired, ErrQuoteNotPending} {
			quotes := &fakeQuoteStore{acceptErr: sentinel}
			svc := newTestService(quotes, &fakeOrderStore{}, testWarehouses(), nil)

			_, err := svc.AcceptQuote(ctx, "order-1", "quote-1")
			if !errors.Is(err, sentinel) {
				t.Errorf("expected %v, got %v", sentinel, err)
			}
		}
	})

	t.Run("idempotent re-accept returns the stored quote", func(t *testing.T) {
		stored := &domain.TransportQuote{
			ID:      "quote-1",
			OrderID: "order-1",
			Status:  domain.QuoteStatusAccepted,
			Cost:    dec("312.6"),
		}
		quotes := &fakeQuoteStore{acceptQuote: stored, acceptAlready: true}
		svc := newTestService(quotes, &fakeOrderStore{}, testWarehouses(), nil)

		quote, err := svc.AcceptQuote(ctx, "order-1", "quote-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if quote != stored {
			t.Error("expected the stored quote back")
		}
		if quotes.acceptCalls != 1 {
			t.Errorf("expected 1 accept call, got %d", quotes.acceptCalls)
		}
	})
}

func TestQuoteValidityWindow(t *testing.T) {
	if QuoteValidity != 24*time.Hour {
		t.Errorf("quote validity = %v, want 24h", QuoteValidity)
	}
}
