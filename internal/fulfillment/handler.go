package fulfillment

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/equipdesk/backoffice/internal/domain"
	"github.com/equipdesk/backoffice/internal/messaging"
)

type Handler struct {
	repo     *Repository
	producer *messaging.Producer
	logger   *slog.Logger
}

func NewHandler(repo *Repository, producer *messaging.Producer, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, producer: producer, logger: logger}
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("id")

	f, err := h.repo.GetByOrder(r.Context(), orderID)
	if err != nil {
		h.logger.Error("failed to get fulfillment", "error", err, "order_id", orderID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if f == nil {
		h.writeError(w, http.StatusNotFound, "fulfillment not found")
		return
	}

	h.writeJSON(w, http.StatusOK, f)
}

type updateStatusRequest struct {
	Status domain.FulfillmentStatus `json:"status"`
	Note   string                   `json:"note"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("id")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status == "" {
		h.writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	f, err := h.repo.UpdateStatus(r.Context(), orderID, req.Status, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, ErrFulfillmentNotFound):
			h.writeError(w, http.StatusNotFound, "fulfillment not found")
		case errors.Is(err, ErrInvalidTransition):
			h.writeError(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error("failed to update fulfillment status", "error", err, "order_id", orderID)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	if h.producer != nil {
		event := domain.FulfillmentUpdatedEvent{
			OrderID:   f.OrderID,
			Status:    f.Status,
			Note:      req.Note,
			Timestamp: time.Now().UTC(),
		}
		if err := h.producer.Publish(r.Context(), f.OrderID, event); err != nil {
			h.logger.Error("failed to publish fulfillment updated event", "error", err, "order_id", f.OrderID)
		}
	}

	h.logger.Info("fulfillment status updated", "order_id", f.OrderID, "status", f.Status)
	h.writeJSON(w, http.StatusOK, f)
}

type setTrackingRequest struct {
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"tracking_number"`
}

func (h *Handler) HandleSetTracking(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("id")

	var req setTrackingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	f, err := h.repo.SetTracking(r.Context(), orderID, req.Carrier, req.TrackingNumber)
	if err != nil {
		if errors.Is(err, ErrFulfillmentNotFound) {
			h.writeError(w, http.StatusNotFound, "fulfillment not found")
			return
		}
		h.logger.Error("failed to set tracking", "error", err, "order_id", orderID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, f)
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
