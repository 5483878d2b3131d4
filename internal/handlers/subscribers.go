package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/lemamita/mamita/internal/menu"
	"github.com/lemamita/mamita/internal/newsletter"
	"github.com/lemamita/mamita/internal/store"
)

// Subscribers manages the external address lists.
type Subscribers struct {
	docs   store.Documents
	loader *newsletter.Loader
	log    *slog.Logger
}

// NewSubscribers builds the subscriber handler over the document store.
func NewSubscribers(docs store.Documents, log *slog.Logger) *Subscribers {
	return &Subscribers{docs: docs, loader: newsletter.NewLoader(docs), log: log}
}

// Routes mounts the external subscriber endpoints and the merged recipient list on r.
func (h *Subscribers) Routes(r chi.Router) {
	r.Get("/", handle(h.log, h.list))
	r.Post("/", handle(h.log, h.add))
	r.Delete("/{email}", handle(h.log, h.remove))
}

type subscriberLists struct {
	Registered []string `json:"registered"`
	External   []string `json:"external"`
}

func (h *Subscribers) list(w http.ResponseWriter, r *http.Request) error {
	outlet := outletFrom(r.Context())
	registered, err := h.loader.Registered(r.Context(), outlet)
	if err != nil {
		return err
	}
	external, err := h.loader.External(r.Context(), outlet)
	if err != nil {
		return err
	}
	if registered == nil {
		registered = []string{}
	}
	writeJSON(w, http.StatusOK, subscriberLists{Registered: registered, External: external})
	return nil
}

type addSubscriberRequest struct {
	Email string `json:"email"`
}

func (h *Subscribers) add(w http.ResponseWriter, r *http.Request) error {
	outlet := outletFrom(r.Context())

	var req addSubscriberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	email := menu.NormalizeEmail(req.Email)
	if !menu.ValidEmail(email) {
		return fmt.Errorf("%w: %q", menu.ErrInvalidEmail, req.Email)
	}

	var ext menu.ExternalSubscribers
	err := h.docs.Update(r.Context(), menu.SettingsCollection, menu.ExternalSubscribersDocID, &ext, func(bool) error {
		list := ext.List(outlet)
		if slices.Contains(list, email) {
			return fmt.Errorf("%w: %s", menu.ErrDuplicate, email)
		}
		ext.Set(outlet, append(slices.Clone(list), email))
		return nil
	})
	if err != nil {
		return err
	}
	h.log.InfoContext(r.Context(), "external subscriber added")
	writeJSON(w, http.StatusCreated, subscriberLists{External: ext.List(outlet)})
	return nil
}

func (h *Subscribers) remove(w http.ResponseWriter, r *http.Request) error {
	outlet := outletFrom(r.Context())

	raw, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	email := menu.NormalizeEmail(raw)

	var ext menu.ExternalSubscribers
	err = h.docs.Update(r.Context(), menu.SettingsCollection, menu.ExternalSubscribersDocID, &ext, func(bool) error {
		list := ext.List(outlet)
		i := slices.Index(list, email)
		if i == -1 {
			return fmt.Errorf("%w: %s", ErrNotSubscribed, email)
		}
		ext.Set(outlet, slices.Delete(slices.Clone(list), i, i+1))
		return nil
	})
	if err != nil {
		return err
	}
	h.log.InfoContext(r.Context(), "external subscriber removed")
	writeJSON(w, http.StatusOK, subscriberLists{External: ext.List(outlet)})
	return nil
}
