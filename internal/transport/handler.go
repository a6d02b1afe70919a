package transport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type generateQuoteRequest struct {
	Provider string `json:"provider"`
	Method   string `json:"method"`
}

func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("id")

	var req generateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Provider == "" {
		h.writeError(w, http.StatusBadRequest, "provider is required")
		return
	}
	if req.Method == "" {
		req.Method = "road"
	}

	quote, err := h.service.GenerateQuote(r.Context(), orderID, req.Provider, req.Method)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			h.writeError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, ErrMissingShippingAddress):
			h.writeError(w, http.StatusUnprocessableEntity, "order has no shipping address")
		case errors.Is(err, ErrWarehouseNotFound):
			h.writeError(w, http.StatusUnprocessableEntity, "warehouse not found")
		default:
			h.logger.Error("failed to generate quote", "error", err, "order_id", orderID)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, quote)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("id")

	quotes, err := h.service.ListQuotes(r.Context(), orderID)
	if err != nil {
		h.logger.Error("failed to list quotes", "error", err, "order_id", orderID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, quotes)
}

func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("id")
	quoteID := r.PathValue("quoteID")

	quote, err := h.service.AcceptQuote(r.Context(), orderID, quoteID)
	if err != nil {
		switch {
		case errors.Is(err, ErrQuoteNotFound), errors.Is(err, ErrOrderNotFound):
			h.writeError(w, http.StatusNotFound, "quote not found")
		case errors.Is(err, ErrQuoteExpired):
			h.writeError(w, http.StatusGone, "quote expired")
		case errors.Is(err, ErrQuoteNotPending):
			h.writeError(w, http.StatusConflict, "quote is not pending")
		default:
			h.logger.Error("failed to accept quote", "error", err, "order_id", orderID, "quote_id", quoteID)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, quote)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
