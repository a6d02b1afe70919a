//go:build integration

package test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/equipdesk/backoffice/internal/distance"
	"github.com/equipdesk/backoffice/internal/domain"
	"github.com/equipdesk/backoffice/internal/fulfillment"
	"github.com/equipdesk/backoffice/internal/orders"
	"github.com/equipdesk/backoffice/internal/transport"
	"github.com/equipdesk/backoffice/internal/warehouses"
)

const (
	warehouseLocation = "Unit 4, Leeds, LS1, UK"
	deliveryAddress   = "1 Harbour Way, Dover, CT16, UK"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newQuoteService(db *sql.DB) *transport.Service {
	provider := distance.NewStatic(map[string]float64{
		warehouseLocation + "|" + deliveryAddress: 420,
	})
	return transport.NewService(
		transport.NewQuoteRepository(db),
		orders.NewOrderRepository(db),
		warehouses.NewRepository(db),
		provider,
		nil,
		quietLogger(),
	)
}

func seedOrder(ctx context.Context, t *testing.T, db *sql.DB, withAddress bool) *domain.Order {
	t.Helper()

	warehouseRepo := warehouses.NewRepository(db)
	warehouse := &domain.Warehouse{
		ID:       uuid.NewString(),
		Name:     "Leeds North",
		Location: warehouseLocation,
	}
	if err := warehouseRepo.Create(ctx, warehouse); err != nil {
		t.Fatalf("failed to create warehouse: %v", err)
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:          uuid.NewString(),
		CustomerID:  "cust-1",
		WarehouseID: warehouse.ID,
		SalesRepID:  "rep-1",
		Items: []domain.OrderItem{
			{ProductID: "prod-1", Quantity: 2, UnitPrice: decimal.RequireFromString("1200"), WeightKg: decimal.RequireFromString("10")},
			{ProductID: "prod-2", Quantity: 3, UnitPrice: decimal.RequireFromString("100"), WeightKg: decimal.RequireFromString("2")},
		},
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		Subtotal:      decimal.RequireFromString("2700"),
		Tax:           decimal.RequireFromString("270"),
		ShippingCost:  decimal.Zero,
		Total:         decimal.RequireFromString("2970"),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if withAddress {
		order.ShippingAddress = &domain.Address{
			Line1:      "1 Harbour Way",
			City:       "Dover",
			PostalCode: "CT16",
			Country:    "UK",
		}
	}

	if err := orders.NewOrderRepository(db).Create(ctx, order); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	return order
}

func TestQuoteAcceptanceFlow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db := OpenDB(t, pg.ConnStr)
	defer func() { _ = db.Close() }()

	order := seedOrder(ctx, t, db, true)
	service := newQuoteService(db)

	quoteA, err := service.GenerateQuote(ctx, order.ID, "roadrunner", "road")
	if err != nil {
		t.Fatalf("failed to generate quote: %v", err)
	}

	if !quoteA.Cost.Equal(decimal.RequireFromString("312.6")) {
		t.Errorf("expected cost 312.6, got %s", quoteA.Cost)
	}
	if quoteA.EstimatedDays != 2 {
		t.Errorf("expected 2 estimated days, got %d", quoteA.EstimatedDays)
	}
	if !quoteA.TotalWeightKg.Equal(decimal.RequireFromString("26")) {
		t.Errorf("expected total weight 26, got %s", quoteA.TotalWeightKg)
	}
	if quoteA.Status != domain.QuoteStatusPending {
		t.Errorf("expected pending quote, got %s", quoteA.Status)
	}
	if quoteA.Insurance.Included {
		t.Error("declared value below threshold should not include insurance")
	}
	if !quoteA.Insurance.Cost.Equal(decimal.RequireFromString("2.7")) {
		t.Errorf("expected insurance cost 2.7, got %s", quoteA.Insurance.Cost)
	}

	quoteB, err := service.GenerateQuote(ctx, order.ID, "seafreight", "sea")
	if err != nil {
		t.Fatalf("failed to generate second quote: %v", err)
	}

	accepted, err := service.AcceptQuote(ctx, order.ID, quoteA.ID)
	if err != nil {
		t.Fatalf("failed to accept quote: %v", err)
	}
	if accepted.Status != domain.QuoteStatusAccepted {
		t.Fatalf("expected accepted quote, got %s", accepted.Status)
	}

	t.Run("pending sibling is rejected", func(t *testing.T) {
		all, err := service.ListQuotes(ctx, order.ID)
		if err != nil {
			t.Fatalf("failed to list quotes: %v", err)
		}
		for _, q := range all {
			if q.ID == quoteB.ID && q.Status != domain.QuoteStatusRejected {
				t.Errorf("expected sibling quote rejected, got %s", q.Status)
			}
		}
	})

	t.Run("order moves to processing with shipping folded in", func(t *testing.T) {
		updated, err := orders.NewOrderRepository(db).GetByID(ctx, order.ID)
		if err != nil {
			t.Fatalf("failed to fetch order: %v", err)
		}
		if updated.Status != domain.OrderStatusProcessing {
			t.Errorf("expected processing order, got %s", updated.Status)
		}
		if !updated.ShippingCost.Equal(quoteA.Cost) {
			t.Errorf("expected shipping cost %s, got %s", quoteA.Cost, updated.ShippingCost)
		}
		wantTotal := updated.Subtotal.Add(updated.Tax).Add(updated.ShippingCost)
		if !updated.Total.Equal(wantTotal) {
			t.Errorf("expected total %s, got %s", wantTotal, updated.Total)
		}
	})

	t.Run("fulfillment records the acceptance", func(t *testing.T) {
		record, err := fulfillment.NewRepository(db).GetByOrder(ctx, order.ID)
		if err != nil {
			t.Fatalf("failed to fetch fulfillment: %v", err)
		}
		if record == nil {
			t.Fatal("expected fulfillment record")
		}
		if record.Status != domain.FulfillmentStatusProcessing {
			t.Errorf("expected processing fulfillment, got %s", record.Status)
		}
		found := false
		for _, event := range record.History {
			if event.Note == "Transport quote accepted" {
				found = true
			}
		}
		if !found {
			t.Error("expected acceptance entry in fulfillment history")
		}
	})

	t.Run("re-accepting is a no-op", func(t *testing.T) {
		again, err := service.AcceptQuote(ctx, order.ID, quoteA.ID)
		if err != nil {
			t.Fatalf("expected idempotent accept, got %v", err)
		}
		if again.Status != domain.QuoteStatusAccepted {
			t.Errorf("expected accepted quote, got %s", again.Status)
		}
	})

	t.Run("accepting the rejected sibling fails", func(t *testing.T) {
		if _, err := service.AcceptQuote(ctx, order.ID, quoteB.ID); !errors.Is(err, transport.ErrQuoteNotPending) {
			t.Errorf("expected ErrQuoteNotPending, got %v", err)
		}
	})
}

func TestConcurrentAcceptance(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db := OpenDB(t, pg.ConnStr)
	defer func() { _ = db.Close() }()

	order := seedOrder(ctx, t, db, true)
	service := newQuoteService(db)

	quoteA, err := service.GenerateQuote(ctx, order.ID, "roadrunner", "road")
	if err != nil {
		t.Fatalf("failed to generate quote: %v", err)
	}
	quoteB, err := service.GenerateQuote(ctx, order.ID, "seafreight", "sea")
	if err != nil {
		t.Fatalf("failed to generate quote: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, id := range []string{quoteA.ID, quoteB.ID} {
		wg.Add(1)
		go func(i int, quoteID string) {
			defer wg.Done()
			_, results[i] = service.AcceptQuote(ctx, order.ID, quoteID)
		}(i, id)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
		} else if !errors.Is(err, transport.ErrQuoteNotPending) {
			t.Errorf("unexpected acceptance error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one acceptance to win, got %d", wins)
	}

	var acceptedCount int
	err = db.QueryRowContext(ctx,
		`SELECT count(*) FROM transport_quotes WHERE order_id = $1 AND status = 'accepted'`,
		order.ID,
	).Scan(&acceptedCount)
	if err != nil {
		t.Fatalf("failed to count accepted quotes: %v", err)
	}
	if acceptedCount != 1 {
		t.Fatalf("expected exactly one accepted quote, got %d", acceptedCount)
	}
}

func TestExpiredQuoteCannotBeAccepted(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db := OpenDB(t, pg.ConnStr)
	defer func() { _ = db.Close() }()

	order := seedOrder(ctx, t, db, true)
	service := newQuoteService(db)

	quote, err := service.GenerateQuote(ctx, order.ID, "roadrunner", "road")
	if err != nil {
		t.Fatalf("failed to generate quote: %v", err)
	}

	_, err = db.ExecContext(ctx,
		`UPDATE transport_quotes SET valid_until = NOW() - INTERVAL '1 hour' WHERE id = $1`,
		quote.ID,
	)
	if err != nil {
		t.Fatalf("failed to backdate quote: %v", err)
	}

	if _, err := service.AcceptQuote(ctx, order.ID, quote.ID); !errors.Is(err, transport.ErrQuoteExpired) {
		t.Fatalf("expected ErrQuoteExpired, got %v", err)
	}

	updated, err := orders.NewOrderRepository(db).GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("failed to fetch order: %v", err)
	}
	if updated.Status != domain.OrderStatusPending {
		t.Errorf("expired acceptance must not move the order, got %s", updated.Status)
	}
}

func TestQuoteRequiresShippingAddress(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db := OpenDB(t, pg.ConnStr)
	defer func() { _ = db.Close() }()

	order := seedOrder(ctx, t, db, false)
	service := newQuoteService(db)

	if _, err := service.GenerateQuote(ctx, order.ID, "roadrunner", "road"); !errors.Is(err, transport.ErrMissingShippingAddress) {
		t.Fatalf("expected ErrMissingShippingAddress, got %v", err)
	}

	quotes, err := service.ListQuotes(ctx, order.ID)
	if err != nil {
		t.Fatalf("failed to list quotes: %v", err)
	}
	if len(quotes) != 0 {
		t.Fatalf("expected no quotes, got %d", len(quotes))
	}
}

func TestFulfillmentTransitions(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db := OpenDB(t, pg.ConnStr)
	defer func() { _ = db.Close() }()

	order := seedOrder(ctx, t, db, true)
	service := newQuoteService(db)

	quote, err := service.GenerateQuote(ctx, order.ID, "roadrunner", "road")
	if err != nil {
		t.Fatalf("failed to generate quote: %v", err)
	}
	if _, err := service.AcceptQuote(ctx, order.ID, quote.ID); err != nil {
		t.Fatalf("failed to accept quote: %v", err)
	}

	repo := fulfillment.NewRepository(db)

	shipped, err := repo.UpdateStatus(ctx, order.ID, domain.FulfillmentStatusShipped, "left the warehouse")
	if err != nil {
		t.Fatalf("failed to mark shipped: %v", err)
	}
	if shipped.Status != domain.FulfillmentStatusShipped {
		t.Errorf("expected shipped, got %s", shipped.Status)
	}

	if _, err := repo.UpdateStatus(ctx, order.ID, domain.FulfillmentStatusPending, ""); !errors.Is(err, fulfillment.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition going back to pending, got %v", err)
	}

	tracked, err := repo.SetTracking(ctx, order.ID, "DPD", "DPD-123456")
	if err != nil {
		t.Fatalf("failed to set tracking: %v", err)
	}
	if tracked.TrackingNumber != "DPD-123456" {
		t.Errorf("expected tracking number persisted, got %q", tracked.TrackingNumber)
	}

	delivered, err := repo.UpdateStatus(ctx, order.ID, domain.FulfillmentStatusDelivered, "signed for")
	if err != nil {
		t.Fatalf("failed to mark delivered: %v", err)
	}
	if len(delivered.History) < 3 {
		t.Errorf("expected history to accumulate, got %d entries", len(delivered.History))
	}
}
