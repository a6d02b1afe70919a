package orders

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleCreate_Validation(t *testing.T) {
	handler := NewHandler(nil, nil, testLogger())

	cases := []struct {
		name string
		body string
	}{
		{"malformed body", `{"customer_id": `},
		{"missing customer_id", `{"warehouse_id":"wh-1","items":[{"product_id":"p1","quantity":1,"unit_price":"10"}]}`},
		{"missing warehouse_id", `{"customer_id":"c1","items":[{"product_id":"p1","quantity":1,"unit_price":"10"}]}`},
		{"no items", `{"customer_id":"c1","warehouse_id":"wh-1","items":[]}`},
		{"zero quantity", `{"customer_id":"c1","warehouse_id":"wh-1","items":[{"product_id":"p1","quantity":0,"unit_price":"10"}]}`},
		{"negative price", `{"customer_id":"c1","warehouse_id":"wh-1","items":[{"product_id":"p1","quantity":1,"unit_price":"-10"}]}`},
		{"missing product_id", `{"customer_id":"c1","warehouse_id":"wh-1","items":[{"quantity":1,"unit_price":"10"}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			handler.HandleCreate(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	handler := NewHandler(nil, nil, testLogger())

	req := httptest.NewRequest(http.MethodPatch, "/orders/order-1/status", strings.NewReader(`{"status":"teleported"}`))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", "order-1")
	rec := httptest.NewRecorder()

	handler.HandleUpdateStatus(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
	}
}
