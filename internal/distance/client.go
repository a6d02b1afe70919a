package distance

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
)

// RoutingClient queries an external routing API for road distance. A
// circuit breaker shields quote generation from a flapping upstream:
// once the breaker opens, calls fail fast until the timeout elapses.
type RoutingClient struct {
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker
}

type routeResponse struct {
	DistanceKm float64 `json:"distance_km"`
}

func NewRoutingClient(baseURL string, timeout time.Duration) *RoutingClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(1)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "routing-api",
		MaxRequests: 2,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 3 && counts.TotalFailures*2 >= counts.Requests
		},
	})

	return &RoutingClient{client: client, breaker: breaker}
}

func (c *RoutingClient) DistanceKm(ctx context.Context, from, to string) (float64, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		var route routeResponse
		resp, err := c.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{"from": from, "to": to}).
			SetResult(&route).
			Get("/route")
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("routing api returned status %d", resp.StatusCode())
		}
		if route.DistanceKm < 0 {
			return nil, fmt.Errorf("routing api returned negative distance %v", route.DistanceKm)
		}
		return route.DistanceKm, nil
	})
	if err != nil {
		return 0, fmt.Errorf("resolve distance: %w", err)
	}
	return result.(float64), nil
}
