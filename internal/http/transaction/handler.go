package transaction

import (
	"context"
	"io"
	"iter"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/auth"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/http/api"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/identity"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/importer"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/validation"
)

const maxUploadSize = 10 << 20

type Service interface {
	Create(ctx context.Context, tx *transaction.Transaction) (string, error)
	Update(ctx context.Context, tx *transaction.Transaction) error
	SoftDelete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) *transaction.Transaction
	ListByBusiness(ctx context.Context, businessID string) iter.Seq[[]*transaction.Transaction]
	ListByUser(ctx context.Context, userID string) iter.Seq[[]*transaction.Transaction]
	ListByType(ctx context.Context, businessID string, t transaction.Type) iter.Seq[[]*transaction.Transaction]
	GetBalance(ctx context.Context, businessID string) (decimal.Decimal, error)
}

type Importer interface {
	Import(ctx context.Context, businessID string, r io.Reader) (*importer.Report, error)
}

type UserSource interface {
	CurrentUser(ctx context.Context) (*auth.User, error)
}

type Handler struct {
	svc      Service
	importer Importer
	users    UserSource
}

func NewHandler(svc Service, imp Importer, users UserSource) *Handler {
	return &Handler{svc: svc, importer: imp, users: users}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/balance", h.balance)
	r.Post("/import", h.importCSV)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createTransactionRequest struct {
	BusinessID  string           `json:"business_id"`
	Type        transaction.Type `json:"type"`
	Amount      decimal.Decimal  `json:"amount"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Date        time.Time        `json:"date"`
}

type updateTransactionRequest struct {
	Type        *transaction.Type `json:"type,omitempty"`
	Amount      *decimal.Decimal  `json:"amount,omitempty"`
	Description *string           `json:"description,omitempty"`
	Category    *string           `json:"category,omitempty"`
	Date        *time.Time        `json:"date,omitempty"`
}

type balanceResponse struct {
	BusinessID string          `json:"business_id"`
	Balance    decimal.Decimal `json:"balance"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, r, err)
		return
	}

	businessID, err := h.businessID(r.Context(), req.BusinessID)
	if err != nil {
		api.Error(w, r, err)
		return
	}

	tx := transaction.New()
	tx.BusinessID = businessID
	tx.Type = req.Type
	tx.Amount = req.Amount
	tx.Description = strings.TrimSpace(req.Description)
	tx.Category = strings.TrimSpace(req.Category)

	if !req.Date.IsZero() {
		tx.Date = req.Date
	}

	if err := validate(tx); err != nil {
		api.Error(w, r, err)
		return
	}

	if _, err := h.svc.Create(r.Context(), tx); err != nil {
		api.Error(w, r, err)
		return
	}

	api.JSON(w, http.StatusCreated, toResponse(tx))
}

// list filters by user_id when given, otherwise by business and
// optionally type.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if userID := q.Get("user_id"); userID != "" {
		api.JSON(w, http.StatusOK, toResponseList(transaction.First(h.svc.ListByUser(r.Context(), userID))))
		return
	}

	businessID, err := h.businessID(r.Context(), q.Get("business_id"))
	if err != nil {
		api.Error(w, r, err)
		return
	}

	seq := h.svc.ListByBusiness(r.Context(), businessID)

	if raw := q.Get("type"); raw != "" {
		t := transaction.Type(strings.ToUpper(raw))
		if !t.Valid() {
			api.Error(w, r, transaction.ErrInvalidType)
			return
		}

		seq = h.svc.ListByType(r.Context(), businessID, t)
	}

	api.JSON(w, http.StatusOK, toResponseList(transaction.First(seq)))
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	businessID, err := h.businessID(r.Context(), r.URL.Query().Get("business_id"))
	if err != nil {
		api.Error(w, r, err)
		return
	}

	balance, err := h.svc.GetBalance(r.Context(), businessID)
	if err != nil {
		api.Error(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, balanceResponse{BusinessID: businessID, Balance: balance})
}

// get returns soft deleted transactions too, with active set to false.
func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.Error(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateTransactionRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, r, err)
		return
	}

	tx, err := h.lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.Error(w, r, err)
		return
	}

	if req.Type != nil {
		tx.Type = *req.Type
	}

	if req.Amount != nil {
		tx.Amount = *req.Amount
	}

	if req.Description != nil {
		tx.Description = strings.TrimSpace(*req.Description)
	}

	if req.Category != nil {
		tx.Category = strings.TrimSpace(*req.Category)
	}

	if req.Date != nil {
		tx.Date = *req.Date
	}

	if err := validate(tx); err != nil {
		api.Error(w, r, err)
		return
	}

	if err := h.svc.Update(r.Context(), tx); err != nil {
		api.Error(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	tx, err := h.lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.Error(w, r, err)
		return
	}

	if err := h.svc.SoftDelete(r.Context(), tx.ID); err != nil {
		api.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		api.Error(w, r, api.Invalid(map[string]string{"file": "No se pudo leer el formulario"}))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		api.Error(w, r, api.Invalid(map[string]string{"file": "El archivo es requerido"}))
		return
	}
	defer file.Close()

	businessID, err := h.businessID(r.Context(), r.FormValue("business_id"))
	if err != nil {
		api.Error(w, r, err)
		return
	}

	report, err := h.importer.Import(r.Context(), businessID, file)
	if err != nil {
		api.Error(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, report)
}

// businessID resolves the business a request works on. Callers may only
// name their own business; an empty id means that business.
func (h *Handler) businessID(ctx context.Context, requested string) (string, error) {
	own, err := h.ownBusiness(ctx)
	if err != nil {
		return "", err
	}

	if requested = strings.TrimSpace(requested); requested != "" && requested != own {
		return "", transaction.ErrPermissionDenied
	}

	return own, nil
}

// ownBusiness is the current user's business, or the user's own ID when
// the profile names no business.
func (h *Handler) ownBusiness(ctx context.Context) (string, error) {
	user, err := h.users.CurrentUser(ctx)
	if err != nil {
		return "", err
	}

	if user == nil {
		return "", identity.ErrNoSession
	}

	if user.BusinessID != "" {
		return user.BusinessID, nil
	}

	return user.ID, nil
}

// lookup loads a transaction of the caller's business. Transactions of
// other businesses are reported as not found.
func (h *Handler) lookup(ctx context.Context, id string) (*transaction.Transaction, error) {
	own, err := h.ownBusiness(ctx)
	if err != nil {
		return nil, err
	}

	tx := h.svc.GetByID(ctx, id)
	if tx.ID == "" || tx.BusinessID != own {
		return nil, transaction.ErrNotFound
	}

	return tx, nil
}

func validate(tx *transaction.Transaction) error {
	fields := map[string]string{}

	if !tx.Type.Valid() {
		fields["type"] = "Tipo inválido, usa INCOME o EXPENSE"
	}

	checks := map[string]validation.Result{
		"amount":      validation.Amount(tx.Amount.String()),
		"description": validation.Description(tx.Description),
		"category":    validation.CategoryName(tx.Category),
	}

	for name, res := range checks {
		if !res.Valid {
			fields[name] = res.Message
		}
	}

	return api.Invalid(fields)
}
