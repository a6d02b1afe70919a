package inbox

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/equipdesk/backoffice/internal/auth"
	"github.com/equipdesk/backoffice/internal/domain"
)

type Handler struct {
	repo   *Repository
	logger *slog.Logger
}

func NewHandler(repo *Repository, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

type sendMessageRequest struct {
	RecipientID string `json:"recipient_id"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
}

func (h *Handler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RecipientID == "" || req.Subject == "" {
		h.writeError(w, http.StatusBadRequest, "recipient_id and subject are required")
		return
	}

	sender := "system"
	if user := auth.UserFromContext(r.Context()); user != nil {
		sender = user.ID
	}

	message := &domain.Message{
		RecipientID: req.RecipientID,
		Sender:      sender,
		Subject:     req.Subject,
		Body:        req.Body,
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.repo.CreateMessage(r.Context(), message); err != nil {
		h.logger.Error("failed to send message", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusCreated, message)
}

func (h *Handler) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		h.writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	messages, err := h.repo.ListMessages(r.Context(), user.ID, unreadOnly)
	if err != nil {
		h.logger.Error("failed to list messages", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, messages)
}

func (h *Handler) HandleMarkMessageRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	marked, err := h.repo.MarkMessageRead(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to mark message read", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !marked {
		h.writeError(w, http.StatusNotFound, "message not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleListNotifications(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		h.writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	notifications, err := h.repo.ListNotifications(r.Context(), user.ID, unreadOnly)
	if err != nil {
		h.logger.Error("failed to list notifications", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, notifications)
}

func (h *Handler) HandleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	marked, err := h.repo.MarkNotificationRead(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to mark notification read", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !marked {
		h.writeError(w, http.StatusNotFound, "notification not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
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
