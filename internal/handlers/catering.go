package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lemamita/mamita/internal/catering"
)

// Items manages the product catalog.
type Items struct {
	catalog *catering.Catalog
	log     *slog.Logger
}

// NewItems returns the catalog handler.
func NewItems(catalog *catering.Catalog, log *slog.Logger) *Items {
	return &Items{catalog: catalog, log: log}
}

// Routes mounts the catalog endpoints on r.
func (h *Items) Routes(r chi.Router) {
	r.Get("/", handle(h.log, h.list))
	r.Post("/", handle(h.log, h.create))
	r.Post("/import", handle(h.log, h.importItems))
	r.Get("/{id}", handle(h.log, h.get))
	r.Put("/{id}", handle(h.log, h.update))
	r.Delete("/{id}", handle(h.log, h.remove))
}

func (h *Items) list(w http.ResponseWriter, r *http.Request) error {
	items, err := h.catalog.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, items)
	return nil
}

func (h *Items) get(w http.ResponseWriter, r *http.Request) error {
	it, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, it)
	return nil
}

func (h *Items) create(w http.ResponseWriter, r *http.Request) error {
	var in catering.MenuItem
	if err := decodeJSON(w, r, &in); err != nil {
		return err
	}
	it, err := h.catalog.Create(r.Context(), in)
	if err != nil {
		return err
	}
	h.log.InfoContext(r.Context(), "menu item created", slog.String("id", it.ID), slog.String("reference", it.Reference))
	writeJSON(w, http.StatusCreated, it)
	return nil
}

func (h *Items) update(w http.ResponseWriter, r *http.Request) error {
	var in catering.MenuItem
	if err := decodeJSON(w, r, &in); err != nil {
		return err
	}
	it, err := h.catalog.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		return err
	}
	h.log.InfoContext(r.Context(), "menu item updated", slog.String("id", it.ID))
	writeJSON(w, http.StatusOK, it)
	return nil
}

func (h *Items) remove(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")
	if err := h.catalog.Delete(r.Context(), id); err != nil {
		return err
	}
	h.log.InfoContext(r.Context(), "menu item deleted", slog.String("id", id))
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// importItems upserts a JSON array of products by reference.
func (h *Items) importItems(w http.ResponseWriter, r *http.Request) error {
	var rows []catering.MenuItem
	if err := decodeJSON(w, r, &rows); err != nil {
		return err
	}
	res, err := h.catalog.Import(r.Context(), rows)
	if err != nil {
		return err
	}
	h.log.InfoContext(r.Context(), "menu items imported",
		slog.Int("added", res.Added), slog.Int("updated", res.Updated), slog.Int("skipped", res.Skipped))
	writeJSON(w, http.StatusOK, res)
	return nil
}

// Quotes manages catering quote requests.
type Quotes struct {
	quotes *catering.Quotes
	log    *slog.Logger
}

// NewQuotes returns the quote handler.
func NewQuotes(quotes *catering.Quotes, log *slog.Logger) *Quotes {
	return &Quotes{quotes: quotes, log: log}
}

// Routes mounts the quote endpoints on r.
func (h *Quotes) Routes(r chi.Router) {
	r.Get("/", handle(h.log, h.list))
	r.Post("/", handle(h.log, h.create))
	r.Get("/slots", handle(h.log, h.slots))
	r.Get("/{id}", handle(h.log, h.get))
	r.Post("/{id}/status", handle(h.log, h.status))
	r.Delete("/{id}", handle(h.log, h.remove))
}

type quoteList struct {
	Quotes []catering.Quote        `json:"quotes"`
	Counts map[catering.Status]int `json:"counts"`
}

// list filters by ?status=; without it archived quotes are hidden. Counts
// always cover every quote.
func (h *Quotes) list(w http.ResponseWriter, r *http.Request) error {
	var status catering.Status
	if s := r.URL.Query().Get("status"); s != "" {
		var err error
		if status, err = catering.ParseStatus(s); err != nil {
			return err
		}
	}
	all, err := h.quotes.List(r.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, quoteList{Quotes: catering.Filter(all, status), Counts: catering.CountByStatus(all)})
	return nil
}

func (h *Quotes) get(w http.ResponseWriter, r *http.Request) error {
	q, err := h.quotes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, q)
	return nil
}

func (h *Quotes) create(w http.ResponseWriter, r *http.Request) error {
	var req catering.Request
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	q, err := h.quotes.Create(r.Context(), req)
	if err != nil {
		return err
	}
	h.log.InfoContext(r.Context(), "quote created", slog.String("id", q.ID), slog.Float64("total", q.Total()))
	writeJSON(w, http.StatusCreated, q)
	return nil
}

type slotsResponse struct {
	Settings catering.Settings `json:"settings"`
	Slots    []string          `json:"slots"`
}

func (h *Quotes) slots(w http.ResponseWriter, r *http.Request) error {
	st, err := h.quotes.Settings(r.Context())
	if err != nil {
		return err
	}
	slots, err := st.TimeSlots()
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, slotsResponse{Settings: st, Slots: slots})
	return nil
}

type statusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (h *Quotes) status(w http.ResponseWriter, r *http.Request) error {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	next, err := catering.ParseStatus(req.Status)
	if err != nil {
		return err
	}
	q, err := h.quotes.Transition(r.Context(), chi.URLParam(r, "id"), next, req.Reason)
	if err != nil {
		return err
	}
	h.log.InfoContext(r.Context(), "quote status changed", slog.String("id", q.ID), slog.String("status", string(q.Status)))
	writeJSON(w, http.StatusOK, q)
	return nil
}

func (h *Quotes) remove(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")
	if err := h.quotes.Delete(r.Context(), id); err != nil {
		return err
	}
	h.log.InfoContext(r.Context(), "quote deleted", slog.String("id", id))
	w.WriteHeader(http.StatusNoContent)
	return nil
}
