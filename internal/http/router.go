package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/barkeep/internal/http/category"
	"github.com/MrJamesThe3rd/barkeep/internal/http/export"
	"github.com/MrJamesThe3rd/barkeep/internal/http/finance"
	"github.com/MrJamesThe3rd/barkeep/internal/http/importcsv"
	"github.com/MrJamesThe3rd/barkeep/internal/http/matching"
	"github.com/MrJamesThe3rd/barkeep/internal/http/order"
	"github.com/MrJamesThe3rd/barkeep/internal/http/search"
)

type Handlers struct {
	Orders     *order.Handler
	Finance    *finance.Handler
	Categories *category.Handler
	Search     *search.Handler
	Import     *importcsv.Handler
	Matching   *matching.Handler
	Export     *export.Handler
}

type Options struct {
	AllowedOrigins []string
	// RateLimit and Session are applied to every /api/v1 route when set.
	RateLimit func(http.Handler) http.Handler
	Session   func(http.Handler) http.Handler
	// Cached wraps read routes whose responses may be served from the view cache.
	Cached func(http.Handler) http.Handler
}

func passthrough(next http.Handler) http.Handler { return next }

func orPassthrough(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return passthrough
	}

	return mw
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Cache"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	cached := orPassthrough(opts.Cached)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(orPassthrough(opts.RateLimit))
		r.Use(orPassthrough(opts.Session))

		r.Route("/orders", func(r chi.Router) {
			h.Orders.Routes(r, cached)
		})

		r.Route("/finance", func(r chi.Router) {
			h.Finance.Routes(r, cached)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Categories.Routes(r)
		})

		r.Route("/search", h.Search.Routes)

		r.Route("/import", h.Import.Routes)

		r.Route("/matching", func(r chi.Router) {
			h.Matching.Routes(r)
		})

		r.Route("/export", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Export.Routes(r)
		})
	})

	return router
}
