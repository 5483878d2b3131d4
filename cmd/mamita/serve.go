package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lemamita/mamita/internal/handlers"
	"github.com/lemamita/mamita/internal/newsletter"
	"github.com/lemamita/mamita/internal/sendlock"
	"github.com/lemamita/mamita/internal/server"
	"github.com/lemamita/mamita/internal/store"
	"github.com/lemamita/mamita/pkg/cache"
	"github.com/lemamita/mamita/pkg/db"
	"github.com/lemamita/mamita/pkg/health"
	"github.com/lemamita/mamita/pkg/redis"
	"github.com/lemamita/mamita/pkg/storage"
)

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the admin HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply migrations before serving")
	return cmd
}

func serve(ctx context.Context, migrate bool) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.flush()

	if err := a.cfg.HTTP.Validate(); err != nil {
		return err
	}
	if migrate {
		if err := db.Migrate(ctx, a.pool, store.Migrations(), a.cfg.DB.MigrationsTable, a.log); err != nil {
			return err
		}
	}

	svc, err := a.service(ctx)
	if err != nil {
		return err
	}

	checks := health.Checks{
		"postgres": db.Healthcheck(a.pool),
		"smtp":     func(context.Context) error { return newsletter.CheckConfig(a.cfg.SMTP) },
	}
	hooks := []server.Hook{db.Shutdown(a.pool)}

	var (
		locks    sendlock.Locker
		previews cache.Cache[newsletter.Result]
	)
	if a.cfg.Redis.Enabled() {
		client, err := redis.Open(ctx, a.cfg.Redis)
		if err != nil {
			return err
		}
		locks = sendlock.NewRedis(client, a.cfg.SendLockTTL)
		previews = cache.NewRedis[newsletter.Result](client, cache.WithPrefix("preview"), cache.WithDefaultTTL(a.cfg.PreviewTTL))
		checks["redis"] = redis.Healthcheck(client)
		hooks = append([]server.Hook{redis.Shutdown(client)}, hooks...)
	} else {
		a.log.Warn("REDIS_URL not set, send locks and previews are process-local")
		mem := cache.NewMemory[newsletter.Result](cache.WithDefaultTTL(a.cfg.PreviewTTL))
		locks = sendlock.NewMemory()
		previews = mem
		hooks = append(hooks, func(context.Context) error { return mem.Close() })
	}

	var images storage.Storage
	if a.cfg.Storage.Enabled() {
		s3, err := storage.New(a.cfg.Storage)
		if err != nil {
			return err
		}
		images = s3
	} else {
		a.log.Warn("S3_BUCKET not set, menu image uploads are disabled")
	}

	router := handlers.NewRouter(handlers.Deps{
		AdminToken: a.cfg.HTTP.AdminToken,
		Docs:       a.docs,
		Pipeline:   svc,
		Locks:      locks,
		Previews:   previews,
		PreviewTTL: a.cfg.PreviewTTL,
		Images:     images,
		Checks:     checks,
		Logger:     a.log,
	})

	a.log.Info("admin api configured", slog.Bool("redis", a.cfg.Redis.Enabled()), slog.Bool("uploads", images != nil))
	return server.Run(ctx, router, server.Config{
		Addr:            a.cfg.HTTP.Addr,
		ReadTimeout:     a.cfg.HTTP.ReadTimeout,
		WriteTimeout:    a.cfg.HTTP.WriteTimeout,
		ShutdownTimeout: a.cfg.HTTP.ShutdownTimeout,
		Logger:          a.log,
		Hooks:           hooks,
	})
}
