package distance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStatic_DistanceKm(t *testing.T) {
	static := NewStatic(map[string]float64{
		"Oslo, Norway|Bergen, Norway": 463,
	})

	t.Run("known route", func(t *testing.T) {
		km, err := static.DistanceKm(context.Background(), "Oslo, Norway", "Bergen, Norway")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if km != 463 {
			t.Errorf("expected 463, got %v", km)
		}
	})

	t.Run("known route reversed", func(t *testing.T) {
		km, err := static.DistanceKm(context.Background(), "Bergen, Norway", "Oslo, Norway")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if km != 463 {
			t.Errorf("expected 463, got %v", km)
		}
	})

	t.Run("fallback is deterministic", func(t *testing.T) {
		a, err := static.DistanceKm(context.Background(), "12 Dock Rd, Hull", "9 Pier Lane, Dover, Kent")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, err := static.DistanceKm(context.Background(), "12 Dock Rd, Hull", "9 Pier Lane, Dover, Kent")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a != b {
			t.Errorf("fallback not deterministic: %v vs %v", a, b)
		}
		if a < fallbackFloorKm {
			t.Errorf("fallback %v below floor %v", a, fallbackFloorKm)
		}
	})

	t.Run("same-length addresses hit the floor", func(t *testing.T) {
		km, err := static.DistanceKm(context.Background(), "aaaa", "bbbb")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if km != fallbackFloorKm {
			t.Errorf("expected floor %v, got %v", fallbackFloorKm, km)
		}
	})
}

func TestRoutingClient_DistanceKm(t *testing.T) {
	t.Run("returns distance from the API", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/route" {
				t.Errorf("expected /route, got %s", r.URL.Path)
			}
			if r.URL.Query().Get("from") != "Oslo" || r.URL.Query().Get("to") != "Bergen" {
				t.Errorf("unexpected query params: %s", r.URL.RawQuery)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"distance_km": 463.5}`))
		}))
		defer server.Close()

		client := NewRoutingClient(server.URL, 2*time.Second)
		km, err := client.DistanceKm(context.Background(), "Oslo", "Bergen")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if km != 463.5 {
			t.Errorf("expected 463.5, got %v", km)
		}
	})

	t.Run("server error surfaces", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewRoutingClient(server.URL, 2*time.Second)
		if _, err := client.DistanceKm(context.Background(), "a", "b"); err == nil {
			t.Fatal("expected error from failing upstream")
		}
	})

	t.Run("breaker opens after repeated failures", func(t *testing.T) {
		var hits int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewRoutingClient(server.URL, 2*time.Second)
		for i := 0; i < 6; i++ {
			_, _ = client.DistanceKm(context.Background(), "a", "b")
		}

		hitsBeforeOpen := hits
		if _, err := client.DistanceKm(context.Background(), "a", "b"); err == nil {
			t.Fatal("expected error while breaker is open")
		}
		if hits != hitsBeforeOpen {
			t.Errorf("breaker should fail fast without reaching upstream, got %d extra hits", hits-hitsBeforeOpen)
		}
	})
}
