package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lemamita/mamita/internal/config"
	"github.com/lemamita/mamita/internal/llm"
	"github.com/lemamita/mamita/internal/newsletter"
	"github.com/lemamita/mamita/internal/store"
	"github.com/lemamita/mamita/pkg/db"
	"github.com/lemamita/mamita/pkg/logger"
	"github.com/lemamita/mamita/pkg/mailer/smtp"
)

// app holds what every command needs.
type app struct {
	cfg   config.Config
	log   *slog.Logger
	flush func()
	pool  *pgxpool.Pool
	docs  store.Documents
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, flush := logger.New(cfg.Log, os.Stdout)
	slog.SetDefault(log)

	pool, err := db.Open(ctx, cfg.DB)
	if err != nil {
		flush()
		return nil, err
	}
	return &app{cfg: cfg, log: log, flush: flush, pool: pool, docs: store.NewPostgres(pool)}, nil
}

func (a *app) close(ctx context.Context) {
	_ = db.Shutdown(a.pool)(ctx)
	a.flush()
}

// service wires the pipeline. The model client is built eagerly so a missing
// API key fails at startup.
func (a *app) service(ctx context.Context) (*newsletter.Service, error) {
	gen, err := llm.New(ctx, a.cfg.LLM)
	if err != nil {
		return nil, err
	}
	a.log.Info("newsletter pipeline ready",
		slog.String("llm", gen.Name()),
		slog.String("smtp", a.cfg.SMTP.String()),
	)
	return newsletter.NewService(
		a.cfg.SMTP,
		a.docs,
		newsletter.NewLLMFormatter(gen),
		smtp.New(a.cfg.SMTP),
		newsletter.WithLogger(a.log),
	), nil
}
