package category

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/category"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/http/api"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/validation"
)

type Service interface {
	GetAll(ctx context.Context, t transaction.Type) []category.Category
	Create(ctx context.Context, draft category.Category) (*category.Category, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
}

type createCategoryRequest struct {
	Name string           `json:"name"`
	Type transaction.Type `json:"type"`
}

type categoryResponse struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Type    transaction.Type `json:"type"`
	Default bool             `json:"default"`
	UserID  string           `json:"user_id,omitempty"`
}

func toResponse(c category.Category) categoryResponse {
	return categoryResponse{
		ID:      c.ID,
		Name:    c.Name,
		Type:    c.Type,
		Default: c.Default,
		UserID:  c.UserID,
	}
}

// list returns the categories of one type, INCOME when none is given.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	t := transaction.TypeIncome

	if raw := r.URL.Query().Get("type"); raw != "" {
		t = transaction.Type(strings.ToUpper(raw))
		if !t.Valid() {
			api.Error(w, r, transaction.ErrInvalidType)
			return
		}
	}

	all := h.svc.GetAll(r.Context(), t)

	resp := make([]categoryResponse, len(all))
	for i, c := range all {
		resp[i] = toResponse(c)
	}

	api.JSON(w, http.StatusOK, resp)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, r, err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)

	fields := map[string]string{}
	if res := validation.CategoryName(req.Name); !res.Valid {
		fields["name"] = res.Message
	}

	if !req.Type.Valid() {
		fields["type"] = "Tipo inválido, usa INCOME o EXPENSE"
	}

	if err := api.Invalid(fields); err != nil {
		api.Error(w, r, err)
		return
	}

	c, err := h.svc.Create(r.Context(), category.Category{Name: req.Name, Type: req.Type})
	if err != nil {
		api.Error(w, r, err)
		return
	}

	api.JSON(w, http.StatusCreated, toResponse(*c))
}
