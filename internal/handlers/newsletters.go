package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lemamita/mamita/internal/menu"
	"github.com/lemamita/mamita/internal/newsletter"
	"github.com/lemamita/mamita/internal/sendlock"
	"github.com/lemamita/mamita/pkg/cache"
)

// Pipeline is the part of newsletter.Service the API drives.
type Pipeline interface {
	Send(ctx context.Context, outlet menu.Outlet) (*newsletter.Result, error)
	Preview(ctx context.Context, outlet menu.Outlet) (*newsletter.Result, error)
}

// Newsletters serves the send and preview endpoints.
type Newsletters struct {
	pipeline   Pipeline
	locks      sendlock.Locker
	previews   cache.Cache[newsletter.Result]
	previewTTL time.Duration
	log        *slog.Logger
}

// NewNewsletters builds the newsletter handler. Previews are cached for ttl
// and sends are serialized per week and outlet through locks.
func NewNewsletters(p Pipeline, locks sendlock.Locker, previews cache.Cache[newsletter.Result], ttl time.Duration, log *slog.Logger) *Newsletters {
	return &Newsletters{pipeline: p, locks: locks, previews: previews, previewTTL: ttl, log: log}
}

// Routes mounts preview, send and the sent-history listing on r.
func (h *Newsletters) Routes(r chi.Router) {
	r.Post("/send", handle(h.log, h.send))
	r.Post("/preview", handle(h.log, h.refreshPreview))
	r.Get("/preview", handle(h.log, h.lastPreview))
}

// send refuses to start while another send of the same outlet is running.
func (h *Newsletters) send(w http.ResponseWriter, r *http.Request) error {
	outlet := outletFrom(r.Context())

	release, err := h.locks.Acquire(r.Context(), "newsletter:"+outlet.String())
	if err != nil {
		return err
	}
	defer release()

	res, err := h.pipeline.Send(r.Context(), outlet)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}

func (h *Newsletters) refreshPreview(w http.ResponseWriter, r *http.Request) error {
	outlet := outletFrom(r.Context())

	res, err := cache.Refresh(r.Context(), h.previews, outlet.String(), h.previewTTL,
		func(ctx context.Context) (newsletter.Result, error) {
			res, err := h.pipeline.Preview(ctx, outlet)
			if err != nil {
				return newsletter.Result{}, err
			}
			return *res, nil
		})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}

func (h *Newsletters) lastPreview(w http.ResponseWriter, r *http.Request) error {
	res, err := h.previews.Get(r.Context(), outletFrom(r.Context()).String())
	if errors.Is(err, cache.ErrNotFound) {
		return ErrNoPreview
	}
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}
