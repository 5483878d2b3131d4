package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate applies every pending goose migration found at the root of
// migrations. The *sql.DB shares the pool's connections and is left open.
func Migrate(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, table string, log *slog.Logger) error {
	if table == "" {
		table = "schema_migrations"
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{log})
	goose.SetTableName(table)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrMigrate, err)
	}

	if err := goose.UpContext(ctx, stdlib.OpenDBFromPool(pool), "."); err != nil {
		return errors.Join(ErrMigrate, err)
	}
	return nil
}

type gooseLogger struct {
	log *slog.Logger
}

func (g gooseLogger) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...))
}

// Fatalf only logs; goose also returns the error to the caller.
func (g gooseLogger) Fatalf(format string, args ...any) {
	g.log.Error(fmt.Sprintf(format, args...))
}
