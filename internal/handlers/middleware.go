package handlers

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/lemamita/mamita/internal/menu"
	"github.com/lemamita/mamita/pkg/logger"
)

type (
	requestIDKey struct{}
	outletKey    struct{}
)

// RequestID reuses an upstream X-Request-ID or generates one, and attaches it
// to the response and to every log line of the request.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		ctx = logger.WithAttrs(ctx, slog.String("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFrom returns the id set by RequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// AccessLog logs one line per request.
func AccessLog(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.InfoContext(r.Context(), "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// Recover turns a panic into a logged 500.
func Recover(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.ErrorContext(r.Context(), "panic recovered",
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
				)
				writeJSON(w, http.StatusInternalServerError, errorBody{
					Error:     http.StatusText(http.StatusInternalServerError),
					RequestID: RequestIDFrom(r.Context()),
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// AdminAuth requires "Authorization: Bearer <token>".
func AdminAuth(log *slog.Logger, token string) func(http.Handler) http.Handler {
	want := []byte(token)
	return func(next http.Handler) http.Handler {
		return handle(log, func(w http.ResponseWriter, r *http.Request) error {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || len(want) == 0 || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), want) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
				return ErrUnauthorized
			}
			next.ServeHTTP(w, r)
			return nil
		})
	}
}

// WithOutlet validates the {outlet} URL parameter.
func WithOutlet(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return handle(log, func(w http.ResponseWriter, r *http.Request) error {
			o, err := menu.ParseOutlet(chi.URLParam(r, "outlet"))
			if err != nil {
				return fmt.Errorf("%w: %q", err, chi.URLParam(r, "outlet"))
			}
			ctx := context.WithValue(r.Context(), outletKey{}, o)
			ctx = logger.WithAttrs(ctx, slog.String("outlet", o.String()))
			next.ServeHTTP(w, r.WithContext(ctx))
			return nil
		})
	}
}

func outletFrom(ctx context.Context) menu.Outlet {
	o, _ := ctx.Value(outletKey{}).(menu.Outlet)
	return o
}
