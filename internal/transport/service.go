package transport

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/equipdesk/backoffice/internal/distance"
	"github.com/equipdesk/backoffice/internal/domain"
	"github.com/equipdesk/backoffice/internal/messaging"
	"github.com/equipdesk/backoffice/internal/pricing"
)

// QuoteValidity is how long a generated quote stays acceptable.
const QuoteValidity = 24 * time.Hour

// defaultWeightKg substitutes for items whose product carries no weight
// data.
var defaultWeightKg = decimal.NewFromInt(1)

type OrderStore interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
}

type WarehouseStore interface {
	GetByID(ctx context.Context, id string) (*domain.Warehouse, error)
}

type QuoteStore interface {
	Create(ctx context.Context, quote *domain.TransportQuote) error
	GetByID(ctx context.Context, id string) (*domain.TransportQuote, error)
	ListByOrder(ctx context.Context, orderID string) ([]domain.TransportQuote, error)
	Accept(ctx context.Context, quoteID, orderID string) (*domain.TransportQuote, bool, error)
	ExpireStale(ctx context.Context) (int64, error)
}

type Service struct {
	quotes     QuoteStore
	orders     OrderStore
	warehouses WarehouseStore
	distance   distance.Provider
	producer   *messaging.Producer
	logger     *slog.Logger
}

func NewService(quotes QuoteStore, orders OrderStore, warehouses WarehouseStore, provider distance.Provider, producer *messaging.Producer, logger *slog.Logger) *Service {
	return &Service{
		quotes:     quotes,
		orders:     orders,
		warehouses: warehouses,
		distance:   provider,
		producer:   producer,
		logger:     logger,
	}
}

// GenerateQuote prices transport for one order from its warehouse to
// its shipping address and stores the result as a pending quote valid
// for 24 hours. Nothing prevents generating several quotes for the same
// order, including from the same provider.
func (s *Service) GenerateQuote(ctx context.Context, orderID, provider, method string) (*domain.TransportQuote, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.ShippingAddress == nil {
		return nil, ErrMissingShippingAddress
	}

	warehouse, err := s.warehouses.GetByID(ctx, order.WarehouseID)
	if err != nil {
		return nil, fmt.Errorf("load warehouse: %w", err)
	}
	if warehouse == nil {
		return nil, ErrWarehouseNotFound
	}

	km, err := s.distance.DistanceKm(ctx, warehouse.Location, order.ShippingAddress.String())
	if err != nil {
		return nil, fmt.Errorf("resolve distance: %w", err)
	}

	totalWeight := decimal.Zero
	declaredValue := decimal.Zero
	for _, item := range order.Items {
		weight := item.WeightKg
		if weight.IsZero() {
			weight = defaultWeightKg
		}
		qty := decimal.NewFromInt(int64(item.Quantity))
		totalWeight = totalWeight.Add(weight.Mul(qty))
		declaredValue = declaredValue.Add(item.UnitPrice.Mul(qty))
	}

	cost, err := pricing.TransportCost(decimal.NewFromFloat(km), totalWeight)
	if err != nil {
		return nil, err
	}
	days, err := pricing.EstimateDays(km)
	if err != nil {
		return nil, err
	}
	included, insuranceCost := pricing.InsuranceFor(declaredValue)

	now := time.Now().UTC()
	quote := &domain.TransportQuote{
		ID:            uuid.New().String(),
		OrderID:       order.ID,
		Provider:      provider,
		Method:        method,
		Cost:          cost,
		EstimatedDays: days,
		DistanceKm:    km,
		TotalWeightKg: totalWeight,
		DeclaredValue: declaredValue,
		Insurance: domain.Insurance{
			Included: included,
			Coverage: declaredValue,
			Cost:     insuranceCost,
		},
		ValidUntil: now.Add(QuoteValidity),
		Status:     domain.QuoteStatusPending,
		CreatedAt:  now,
	}

	if err := s.quotes.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("store quote: %w", err)
	}

	s.logger.Info("transport quote generated",
		"quote_id", quote.ID, "order_id", order.ID,
		"provider", provider, "distance_km", km, "cost", cost.String())

	return quote, nil
}

// AcceptQuote runs the acceptance transaction and, when the quote
// actually changed state, publishes a quote.accepted event. The event
// is best-effort: a publish failure does not undo the acceptance.
func (s *Service) AcceptQuote(ctx context.Context, orderID, quoteID string) (*domain.TransportQuote, error) {
	quote, alreadyAccepted, err := s.quotes.Accept(ctx, quoteID, orderID)
	if err != nil {
		return nil, err
	}

	if alreadyAccepted {
		s.logger.Info("quote already accepted", "quote_id", quoteID, "order_id", orderID)
		return quote, nil
	}

	s.logger.Info("transport quote accepted", "quote_id", quoteID, "order_id", orderID)

	if s.producer != nil {
		event := domain.QuoteAcceptedEvent{
			QuoteID:   quote.ID,
			OrderID:   quote.OrderID,
			Provider:  quote.Provider,
			Cost:      quote.Cost,
			Timestamp: time.Now().UTC(),
		}
		if order, err := s.orders.GetByID(ctx, orderID); err == nil && order != nil {
			event.SalesRepID = order.SalesRepID
		}
		if err := s.producer.Publish(ctx, quote.OrderID, event); err != nil {
			s.logger.Error("failed to publish quote accepted event", "error", err, "quote_id", quote.ID)
		}
	}

	return quote, nil
}

func (s *Service) ListQuotes(ctx context.Context, orderID string) ([]domain.TransportQuote, error) {
	return s.quotes.ListByOrder(ctx, orderID)
}

// ExpireStale sweeps pending quotes past their deadline. cmd/backoffice
// runs this on a ticker.
func (s *Service) ExpireStale(ctx context.Context) error {
	expired, err := s.quotes.ExpireStale(ctx)
	if err != nil {
		return err
	}
	if expired > 0 {
		s.logger.Info("expired stale quotes", "count", expired)
	}
	return nil
}
