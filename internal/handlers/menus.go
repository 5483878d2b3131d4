package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lemamita/mamita/internal/menu"
	"github.com/lemamita/mamita/internal/store"
	"github.com/lemamita/mamita/pkg/storage"
)

// Menus edits the homepage settings document.
type Menus struct {
	docs   store.Documents
	images storage.Storage
	log    *slog.Logger
}

// NewMenus returns the menu handler. A nil images storage disables uploads.
func NewMenus(docs store.Documents, images storage.Storage, log *slog.Logger) *Menus {
	return &Menus{docs: docs, images: images, log: log}
}

// Routes mounts the menu endpoints on r.
func (h *Menus) Routes(r chi.Router) {
	r.Get("/", handle(h.log, h.list))
	r.Route("/{outlet}", func(r chi.Router) {
		r.Use(WithOutlet(h.log))
		r.Get("/", handle(h.log, h.get))
		r.Put("/", handle(h.log, h.put))
		r.Post("/paste", handle(h.log, h.paste))
		r.Post("/image", handle(h.log, h.uploadImage))
	})
}

// load returns the stored menus with a default record for every outlet that
// was never saved.
func (h *Menus) load(ctx context.Context) (menu.HomepageText, error) {
	var home menu.HomepageText
	err := h.docs.Get(ctx, menu.SettingsCollection, menu.HomepageTextDocID, &home)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return home, err
	}
	for _, o := range menu.Outlets() {
		if _, ok := home.Find(o); !ok {
			home.Upsert(menu.DefaultMenu(o))
		}
	}
	return home, nil
}

func (h *Menus) save(ctx context.Context, rec menu.MenuRecord) error {
	var home menu.HomepageText
	return h.docs.Update(ctx, menu.SettingsCollection, menu.HomepageTextDocID, &home, func(bool) error {
		home.Upsert(rec)
		return nil
	})
}

func (h *Menus) record(ctx context.Context, o menu.Outlet) (menu.MenuRecord, error) {
	home, err := h.load(ctx)
	if err != nil {
		return menu.MenuRecord{}, err
	}
	rec, _ := home.Find(o)
	return *rec, nil
}

func (h *Menus) list(w http.ResponseWriter, r *http.Request) error {
	home, err := h.load(r.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, home)
	return nil
}

func (h *Menus) get(w http.ResponseWriter, r *http.Request) error {
	rec, err := h.record(r.Context(), outletFrom(r.Context()))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, rec)
	return nil
}

func (h *Menus) put(w http.ResponseWriter, r *http.Request) error {
	outlet := outletFrom(r.Context())

	var rec menu.MenuRecord
	if err := decodeJSON(w, r, &rec); err != nil {
		return err
	}
	switch rec.ID {
	case "":
		rec.ID = outlet
	case outlet:
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidMenu, rec.ID)
	}

	if err := h.save(r.Context(), rec); err != nil {
		return err
	}
	h.log.InfoContext(r.Context(), "menu saved")
	writeJSON(w, http.StatusOK, rec)
	return nil
}

type pasteRequest struct {
	Text string `json:"text"`
}

// paste parses free text into the outlet menu. It only persists the result
// with ?save=1.
func (h *Menus) paste(w http.ResponseWriter, r *http.Request) error {
	var req pasteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	base, err := h.record(r.Context(), outletFrom(r.Context()))
	if err != nil {
		return err
	}

	rec := menu.ParsePaste(base, req.Text)
	if r.URL.Query().Get("save") == "1" {
		if err := h.save(r.Context(), rec); err != nil {
			return err
		}
	}
	writeJSON(w, http.StatusOK, rec)
	return nil
}

// uploadImage stores the multipart "image" field and points the menu at it.
// The new object is removed again when the menu cannot be saved; the image it
// replaces is removed once the save succeeds.
func (h *Menus) uploadImage(w http.ResponseWriter, r *http.Request) error {
	if h.images == nil {
		return ErrUploadsDisabled
	}
	ctx := r.Context()
	outlet := outletFrom(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxImageSize+1<<20)
	file, header, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: %w", storage.ErrFileTooLarge, err)
		}
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	defer file.Close()

	rec, err := h.record(ctx, outlet)
	if err != nil {
		return err
	}
	previous := rec.Image

	info, err := storage.PutImage(ctx, h.images, file, header.Size, storage.WithPrefix("menus/"+outlet.String()))
	if err != nil {
		return err
	}

	rec.Image = info.URL
	if err := h.save(ctx, rec); err != nil {
		h.removeImage(ctx, info.Key)
		return err
	}
	h.log.InfoContext(ctx, "menu image uploaded", slog.String("key", info.Key), slog.Int64("size", info.Size))

	if key, ok := storage.KeyOf(h.images, previous); ok && key != info.Key {
		h.removeImage(ctx, key)
	}
	writeJSON(w, http.StatusOK, rec)
	return nil
}

// removeImage deletes an object that no menu references. Failures are
// logged only.
func (h *Menus) removeImage(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := h.images.Delete(ctx, key); err != nil {
		h.log.WarnContext(ctx, "menu image not removed", slog.String("key", key), slog.Any("error", err))
	}
}
