package main

import (
	"github.com/spf13/cobra"

	"github.com/lemamita/mamita/internal/store"
	"github.com/lemamita/mamita/pkg/db"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			return db.Migrate(ctx, a.pool, store.Migrations(), a.cfg.DB.MigrationsTable, a.log)
		},
	}
}
