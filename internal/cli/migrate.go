package cli

import (
	"LeagueSync/internal/database"

	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the SQL schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if err := database.EnsureDatabaseExists(cfg.Database.DSN); err != nil {
				return err
			}
			if err := database.RunMigrations(cfg.Database.DSN); err != nil {
				return err
			}
			logger.Info("migrations applied")
			return nil
		},
	}
}
