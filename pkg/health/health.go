// Package health serves liveness and readiness endpoints.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc matches the Healthcheck closures of pkg/db and pkg/redis.
type CheckFunc func(ctx context.Context) error

// Checks maps a dependency name to its check.
type Checks map[string]CheckFunc

// Report is the JSON body of the readiness endpoint.
type Report struct {
	Status string           `json:"status"`
	Checks map[string]Check `json:"checks,omitempty"`
}

// Check is the outcome for one dependency.
type Check struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type config struct {
	log     *slog.Logger
	timeout time.Duration
}

// Option configures the handlers.
type Option func(*config)

// WithTimeout bounds the whole run. Default: 5s.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger logs failing checks to l.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// Run executes every check in parallel. A failing check never cancels the
// others.
func Run(ctx context.Context, checks Checks, opts ...Option) Report {
	cfg := config{log: slog.New(slog.DiscardHandler), timeout: 5 * time.Second}
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(checks) == 0 {
		return Report{Status: StatusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		g       errgroup.Group
		report  = Report{Status: StatusHealthy, Checks: make(map[string]Check, len(checks))}
		failure = func(name string, err error) {
			cfg.log.WarnContext(ctx, "health check failed", slog.String("check", name), slog.Any("error", err))
		}
	)
	for name, check := range checks {
		g.Go(func() error {
			c := Check{Status: StatusHealthy}
			if err := check(ctx); err != nil {
				failure(name, err)
				c = Check{Status: StatusUnhealthy, Error: err.Error()}
			}
			mu.Lock()
			defer mu.Unlock()
			report.Checks[name] = c
			if c.Status == StatusUnhealthy {
				report.Status = StatusUnhealthy
			}
			return nil
		})
	}
	_ = g.Wait()
	return report
}

// Liveness always answers 200.
func Liveness() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Report{Status: StatusHealthy})
	}
}

// Readiness answers 200 when every check passes and 503 otherwise.
func Readiness(checks Checks, opts ...Option) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := Run(r.Context(), checks, opts...)
		status := http.StatusOK
		if report.Status != StatusHealthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, report)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
