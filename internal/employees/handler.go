package employees

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/equipdesk/backoffice/internal/domain"
)

type Handler struct {
	repo   *Repository
	logger *slog.Logger
}

func NewHandler(repo *Repository, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

type employeeRequest struct {
	Name           string           `json:"name"`
	Email          string           `json:"email"`
	Role           string           `json:"role"`
	CommissionRate *decimal.Decimal `json:"commission_rate"`
	BaseSalary     *decimal.Decimal `json:"base_salary"`
	Active         *bool            `json:"active"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		h.writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	now := time.Now().UTC()
	employee := &domain.Employee{
		Name:      req.Name,
		Email:     req.Email,
		Role:      req.Role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.CommissionRate != nil {
		if req.CommissionRate.IsNegative() {
			h.writeError(w, http.StatusBadRequest, "commission_rate must not be negative")
			return
		}
		employee.CommissionRate = *req.CommissionRate
	}
	if req.BaseSalary != nil {
		employee.BaseSalary = *req.BaseSalary
	}
	if req.Active != nil {
		employee.Active = *req.Active
	}

	if err := h.repo.Create(r.Context(), employee); err != nil {
		h.logger.Error("failed to create employee", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("employee created", "employee_id", employee.ID)
	h.writeJSON(w, http.StatusCreated, employee)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	employee, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get employee", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if employee == nil {
		h.writeError(w, http.StatusNotFound, "employee not found")
		return
	}

	h.writeJSON(w, http.StatusOK, employee)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	employees, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list employees", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, employees)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get employee", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if existing == nil {
		h.writeError(w, http.StatusNotFound, "employee not found")
		return
	}

	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Email != "" {
		existing.Email = req.Email
	}
	if req.Role != "" {
		existing.Role = req.Role
	}
	if req.CommissionRate != nil {
		if req.CommissionRate.IsNegative() {
			h.writeError(w, http.StatusBadRequest, "commission_rate must not be negative")
			return
		}
		existing.CommissionRate = *req.CommissionRate
	}
	if req.BaseSalary != nil {
		existing.BaseSalary = *req.BaseSalary
	}
	if req.Active != nil {
		existing.Active = *req.Active
	}

	updated, err := h.repo.Update(r.Context(), existing)
	if err != nil {
		h.logger.Error("failed to update employee", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if updated == nil {
		h.writeError(w, http.StatusNotFound, "employee not found")
		return
	}

	h.writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) HandlePayroll(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	from, err := parseDateParam(r, "from")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD")
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD")
		return
	}
	if !from.Before(to) {
		h.writeError(w, http.StatusBadRequest, "from must be before to")
		return
	}

	statement, err := h.repo.Payroll(r.Context(), id, from, to)
	if err != nil {
		if errors.Is(err, ErrEmployeeNotFound) {
			h.writeError(w, http.StatusNotFound, "employee not found")
			return
		}
		h.logger.Error("failed to compute payroll", "error", err, "employee_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, statement)
}

func parseDateParam(r *http.Request, name string) (time.Time, error) {
	return time.Parse("2006-01-02", r.URL.Query().Get(name))
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
