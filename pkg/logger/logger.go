// Package logger builds the process slog.Logger: JSON or text on a writer,
// request-scoped attributes pulled from the context, and optional Sentry
// forwarding of warnings and errors.
package logger

import (
	"io"
	"log/slog"
	"strings"
)

// Config is read from the environment.
type Config struct {
	Level             string `env:"LOG_LEVEL" envDefault:"info"`
	Format            string `env:"LOG_FORMAT" envDefault:"json"`
	SentryDSN         string `env:"SENTRY_DSN"`
	SentryEnvironment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
}

// New returns a logger writing to w. The returned flush func drains pending
// Sentry events and is a no-op without a DSN.
func New(cfg Config, w io.Writer, extractors ...ContextExtractor) (*slog.Logger, func()) {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}

	flush := func() {}
	if cfg.SentryDSN != "" {
		if sh, f, err := sentryHandler(cfg); err != nil {
			slog.New(h).Error("sentry disabled", slog.Any("error", err))
		} else {
			h = fanout{h, sh}
			flush = f
		}
	}
	return slog.New(Decorate(h, extractors...)), flush
}

// ParseLevel maps debug, info, warn and error. Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
