package cmd

import (
	"database/sql"

	"github.com/spf13/cobra"
	"github.com/templui/downloadzone/internal/config"
	"github.com/templui/downloadzone/internal/db"
	"github.com/templui/downloadzone/internal/logger"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.AddCommand(
		migrateSubCmd("up", "Apply all pending migrations", db.RunMigrations),
		migrateSubCmd("down", "Roll back the most recent migration", db.MigrateDown),
		migrateSubCmd("status", "Show applied and pending migrations", db.MigrationStatus),
	)
	return cmd
}

func migrateSubCmd(use, short string, run func(*sql.DB, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)
			defer logger.Flush()

			database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
			if err != nil {
				return err
			}
			defer db.Close(database)

			return run(database.DB, cfg.DBDriver)
		},
	}
}
