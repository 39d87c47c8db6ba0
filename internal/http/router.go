package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/moneynote/internal/auth"
	"github.com/MrJamesThe3rd/moneynote/internal/http/export"
	"github.com/MrJamesThe3rd/moneynote/internal/http/importfile"
	"github.com/MrJamesThe3rd/moneynote/internal/http/matching"
	"github.com/MrJamesThe3rd/moneynote/internal/http/overview"
	"github.com/MrJamesThe3rd/moneynote/internal/http/transaction"
)

type Handlers struct {
	Transactions *transaction.Handler
	Overview     *overview.Handler
	Import       *importfile.Handler
	Categories   *matching.Handler
	Export       *export.Handler
}

// New mounts every handler under /api/v1 behind bearer token auth.
func New(tokens *auth.Tokens, corsOrigins []string, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(tokens))

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Transactions.Routes(r)
		})

		r.Group(h.Overview.Routes)

		r.Route("/import", h.Import.Routes)

		r.Route("/categories", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Categories.Routes(r)
		})

		r.Route("/export", h.Export.Routes)
	})

	return router
}
