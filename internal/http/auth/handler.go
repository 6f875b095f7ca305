package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/auth"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/http/api"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/identity"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/validation"
)

const defaultBusinessType = "General"

type Gateway interface {
	RegisterWithSession(ctx context.Context, email, password string, draft auth.Business) (*auth.User, *identity.Session, error)
	LoginWithSession(ctx context.Context, email, password string) (*auth.User, *identity.Session, error)
	ResetPassword(ctx context.Context, email string) (*auth.User, error)
	CurrentUser(ctx context.Context) (*auth.User, error)
}

// Tokens completes the flows started by mailed links.
type Tokens interface {
	ConfirmPasswordReset(ctx context.Context, token, password string) error
	VerifyEmail(ctx context.Context, token string) error
}

type Handler struct {
	gateway Gateway
	tokens  Tokens
}

func NewHandler(gateway Gateway, tokens Tokens) *Handler {
	return &Handler{gateway: gateway, tokens: tokens}
}

// Routes mounts the public endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/password-reset", h.resetPassword)
	r.Post("/password-reset/confirm", h.confirmReset)
	r.Post("/verify-email", h.verifyEmail)
}

// SessionRoutes mounts the endpoints that need an authenticated session.
func (h *Handler) SessionRoutes(r chi.Router) {
	r.Get("/me", h.me)
}

type businessRequest struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	TaxID   string `json:"tax_id"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type registerRequest struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Business businessRequest `json:"business"`
}

func (req *registerRequest) normalize() {
	req.Email = strings.TrimSpace(req.Email)
	req.Business.Name = strings.TrimSpace(req.Business.Name)
	req.Business.Type = strings.TrimSpace(req.Business.Type)
	req.Business.TaxID = strings.TrimSpace(req.Business.TaxID)
	req.Business.Address = strings.TrimSpace(req.Business.Address)
	req.Business.Phone = strings.TrimSpace(req.Business.Phone)

	if req.Business.Type == "" {
		req.Business.Type = defaultBusinessType
	}
}

func (req *registerRequest) validate() error {
	fields := map[string]string{}

	check(fields, "email", validation.Email(req.Email))
	check(fields, "password", validation.Password(req.Password))
	check(fields, "business.name", validation.BusinessName(req.Business.Name))
	check(fields, "business.phone", validation.Phone(req.Business.Phone))

	if req.Business.TaxID != "" {
		check(fields, "business.tax_id", validation.TaxID(req.Business.TaxID))
	}

	return api.Invalid(fields)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type confirmResetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, r, err)
		return
	}

	req.normalize()

	if err := req.validate(); err != nil {
		api.Error(w, r, err)
		return
	}

	user, sess, err := h.gateway.RegisterWithSession(r.Context(), req.Email, req.Password, auth.Business{
		Name:    req.Business.Name,
		Type:    req.Business.Type,
		TaxID:   req.Business.TaxID,
		Address: req.Business.Address,
		Phone:   req.Business.Phone,
	})
	if err != nil {
		api.Error(w, r, err)
		return
	}

	api.JSON(w, http.StatusCreated, toSessionResponse(user, sess))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, r, err)
		return
	}

	req.Email = strings.TrimSpace(req.Email)

	fields := map[string]string{}
	check(fields, "email", validation.Email(req.Email))

	if strings.TrimSpace(req.Password) == "" {
		fields["password"] = "La contraseña es requerida"
	}

	if err := api.Invalid(fields); err != nil {
		api.Error(w, r, err)
		return
	}

	user, sess, err := h.gateway.LoginWithSession(r.Context(), req.Email, req.Password)
	if err != nil {
		api.Error(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, toSessionResponse(user, sess))
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, r, err)
		return
	}

	req.Email = strings.TrimSpace(req.Email)

	fields := map[string]string{}
	check(fields, "email", validation.Email(req.Email))

	if err := api.Invalid(fields); err != nil {
		api.Error(w, r, err)
		return
	}

	if _, err := h.gateway.ResetPassword(r.Context(), req.Email); err != nil {
		api.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) confirmReset(w http.ResponseWriter, r *http.Request) {
	var req confirmResetRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, r, err)
		return
	}

	fields := map[string]string{}
	check(fields, "password", validation.Password(req.Password))

	if strings.TrimSpace(req.Token) == "" {
		fields["token"] = "El token es requerido"
	}

	if err := api.Invalid(fields); err != nil {
		api.Error(w, r, err)
		return
	}

	if err := h.tokens.ConfirmPasswordReset(r.Context(), req.Token, req.Password); err != nil {
		api.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, r, err)
		return
	}

	if strings.TrimSpace(req.Token) == "" {
		api.Error(w, r, api.Invalid(map[string]string{"token": "El token es requerido"}))
		return
	}

	if err := h.tokens.VerifyEmail(r.Context(), req.Token); err != nil {
		api.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, err := h.gateway.CurrentUser(r.Context())
	if err != nil {
		api.Error(w, r, err)
		return
	}

	if user == nil {
		api.Error(w, r, identity.ErrNoSession)
		return
	}

	api.JSON(w, http.StatusOK, toUserResponse(user))
}

func check(fields map[string]string, name string, r validation.Result) {
	if !r.Valid {
		fields[name] = r.Message
	}
}
