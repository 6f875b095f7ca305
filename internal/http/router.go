package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/http/api"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/http/auth"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/http/category"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/http/transaction"
)

type Options struct {
	Timeout     time.Duration
	CORSOrigins []string
}

func New(
	opts Options,
	verifier api.TokenVerifier,
	authV1 *auth.Handler,
	categoriesV1 *category.Handler,
	transactionsV1 *transaction.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				authV1.Routes(r)
			})

			r.Group(func(r chi.Router) {
				r.Use(api.Authenticate(verifier))
				authV1.SessionRoutes(r)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(api.Authenticate(verifier))

			r.Route("/categories", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				categoriesV1.Routes(r)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json", "multipart/form-data"))
				transactionsV1.Routes(r)
			})
		})
	})

	return router
}
