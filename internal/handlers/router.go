// Package handlers is the admin HTTP API: menu editing, the product catalog,
// catering quotes, external subscriber lists, newsletter send and preview,
// and health checks.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lemamita/mamita/internal/catering"
	"github.com/lemamita/mamita/internal/newsletter"
	"github.com/lemamita/mamita/internal/sendlock"
	"github.com/lemamita/mamita/internal/store"
	"github.com/lemamita/mamita/pkg/cache"
	"github.com/lemamita/mamita/pkg/health"
	"github.com/lemamita/mamita/pkg/storage"
)

// Deps holds everything the router wires.
type Deps struct {
	AdminToken string
	Docs       store.Documents
	Pipeline   Pipeline
	Locks      sendlock.Locker
	Previews   cache.Cache[newsletter.Result]
	PreviewTTL time.Duration
	// Images may be nil when no bucket is configured.
	Images storage.Storage
	Checks health.Checks
	Logger *slog.Logger
}

// NewRouter builds the HTTP handler.
func NewRouter(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(RequestID, Recover(log), AccessLog(log))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "route not found", RequestID: RequestIDFrom(r.Context())})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed", RequestID: RequestIDFrom(r.Context())})
	})

	r.Get("/health/live", health.Liveness())
	r.Get("/health/ready", health.Readiness(d.Checks, health.WithLogger(log)))

	r.Route("/admin", func(r chi.Router) {
		r.Use(AdminAuth(log, d.AdminToken))

		r.Route("/menus", NewMenus(d.Docs, d.Images, log).Routes)

		catalog := catering.NewCatalog(d.Docs)
		r.Route("/items", NewItems(catalog, log).Routes)
		r.Route("/quotes", NewQuotes(catering.NewQuotes(d.Docs, catalog), log).Routes)

		r.Route("/subscribers/{outlet}", func(r chi.Router) {
			r.Use(WithOutlet(log))
			NewSubscribers(d.Docs, log).Routes(r)
		})

		r.Route("/newsletters/{outlet}", func(r chi.Router) {
			r.Use(WithOutlet(log))
			NewNewsletters(d.Pipeline, d.Locks, d.Previews, d.PreviewTTL, log).Routes(r)
		})
	})
	return r
}
