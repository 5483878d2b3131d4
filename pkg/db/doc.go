// Package db opens the PostgreSQL pool backing the document store, applies
// goose migrations from an embedded filesystem and exposes a transaction
// helper and a health check.
//
//	pool, err := db.Open(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := db.Migrate(ctx, pool, store.Migrations, cfg.MigrationsTable, log); err != nil {
//		return err
//	}
//
// Errors are sentinel values joined with the underlying driver error, so
// callers match them with [errors.Is].
package db
