package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// HandlerFunc is an http handler that reports failures by returning them.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func handle(log *slog.Logger, fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}
		he := toHTTPError(err)
		if he.Code >= http.StatusInternalServerError {
			log.ErrorContext(r.Context(), "request failed", slog.Int("status", he.Code), slog.Any("error", err))
		} else {
			log.WarnContext(r.Context(), "request rejected", slog.Int("status", he.Code), slog.Any("error", err))
		}
		writeJSON(w, he.Code, errorBody{Error: he.Message, RequestID: RequestIDFrom(r.Context())})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads at most 1MB of JSON into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return fmt.Errorf("%w: empty body", ErrBadRequest)
		}
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}
