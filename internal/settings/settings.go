package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/equipdesk/backoffice/internal/domain"
)

// settingsKey is the single row the back-office configuration lives in.
const settingsKey = "default"

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func defaults() *domain.Settings {
	return &domain.Settings{
		CompanyName:        "Equipdesk",
		Currency:           "USD",
		NotifyOnOrder:      true,
		NotifyOnAcceptance: true,
	}
}

func (r *Repository) Get(ctx context.Context) (*domain.Settings, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT data FROM settings WHERE id = $1
	`, settingsKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return defaults(), nil
	}
	if err != nil {
		return nil, err
	}

	settings := &domain.Settings{}
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	return settings, nil
}

func (r *Repository) Put(ctx context.Context, settings *domain.Settings) error {
	settings.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings (id, data) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET data = $2
	`, settingsKey, data)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

type Handler struct {
	repo   *Repository
	logger *slog.Logger
}

func NewHandler(repo *Repository, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	settings, err := h.repo.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to get settings", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) HandlePut(w http.ResponseWriter, r *http.Request) {
	var settings domain.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if settings.CompanyName == "" || settings.Currency == "" {
		h.writeError(w, http.StatusBadRequest, "company_name and currency are required")
		return
	}

	if err := h.repo.Put(r.Context(), &settings); err != nil {
		h.logger.Error("failed to save settings", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("settings updated")
	h.writeJSON(w, http.StatusOK, settings)
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
