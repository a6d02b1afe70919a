package warehouses

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/equipdesk/backoffice/internal/domain"
)

type Handler struct {
	repo   *Repository
	logger *slog.Logger
}

func NewHandler(repo *Repository, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

type warehouseRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req warehouseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Location == "" {
		h.writeError(w, http.StatusBadRequest, "name and location are required")
		return
	}

	warehouse := &domain.Warehouse{Name: req.Name, Location: req.Location}
	if err := h.repo.Create(r.Context(), warehouse); err != nil {
		h.logger.Error("failed to create warehouse", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusCreated, warehouse)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	warehouse, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get warehouse", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if warehouse == nil {
		h.writeError(w, http.StatusNotFound, "warehouse not found")
		return
	}

	h.writeJSON(w, http.StatusOK, warehouse)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	warehouses, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list warehouses", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, warehouses)
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
