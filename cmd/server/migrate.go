package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/PA55ION/fyyur/internal/database"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or revert schema migrations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap("fyyur-migrate")
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			db, err := database.Open(dbOptions(cfg))
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := database.MigrateUp(cmd.Context(), db, cfg.DBDriver)
			if err != nil {
				log.Error("migrate up failed", zap.Error(err))
				return err
			}
			if len(applied) == 0 {
				log.Info("schema is up to date")
				return nil
			}
			log.Info("migrations applied", zap.Ints("versions", applied))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revert the latest applied migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap("fyyur-migrate")
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			db, err := database.Open(dbOptions(cfg))
			if err != nil {
				return err
			}
			defer db.Close()

			version, err := database.MigrateDown(cmd.Context(), db, cfg.DBDriver)
			if err != nil {
				log.Error("migrate down failed", zap.Error(err))
				return err
			}
			if version == 0 {
				log.Info("nothing to revert")
				return nil
			}
			log.Info("migration reverted", zap.Int("version", version))
			return nil
		},
	})
	return cmd
}
