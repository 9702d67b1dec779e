package main

import (
	"github.com/spf13/cobra"

	"github.com/spec-kit/history-importer/internal/persistence"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			pool, err := a.pg.Require()
			if err != nil {
				return err
			}
			return persistence.RunMigrations(ctx, pool, a.cfg.Postgres.MigrationsDir, a.logger)
		},
	}
}
