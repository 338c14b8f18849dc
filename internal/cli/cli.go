// Package cli is the leaguesync command tree.
package cli

import (
	"errors"
	"fmt"
	"os"

	"LeagueSync/internal/adapter"
	_ "LeagueSync/internal/adapter/leaguesite"
	"LeagueSync/internal/config"
	"LeagueSync/internal/database"
	"LeagueSync/internal/logging"
	"LeagueSync/internal/repository"
	"LeagueSync/internal/service"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	// ExitPartial means the sync ran to the end but recorded errors.
	ExitPartial = 2
)

// errSyncUnsuccessful is returned by sync commands whose result has success=false.
var errSyncUnsuccessful = errors.New("sync completed with errors")

type rootOptions struct {
	configPath string
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "leaguesync",
		Short: "Mirror a sports-league website into PostgreSQL",
		Long: `leaguesync scrapes league lists, standings, fixtures and player awards
from the upstream league site and keeps a normalized copy in PostgreSQL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config.yaml (default ./config/config.yaml)")

	cmd.AddCommand(
		newServeCmd(opts),
		newSyncCmd(opts),
		newMigrateCmd(opts),
	)
	return cmd
}

// Execute runs the CLI
func Execute() {
	err := NewRootCmd().Execute()
	switch {
	case err == nil:
		os.Exit(ExitSuccess)
	case errors.Is(err, errSyncUnsuccessful):
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitPartial)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}

// app holds the process-wide dependencies shared by serve and the sync commands.
type app struct {
	cfg    *config.Config
	logger *logrus.Logger
	db     *gorm.DB
	sync   *service.SyncService
	query  *service.QueryService
}

func loadConfig(opts *rootOptions) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	logger := logging.NewLogger(cfg.Log)
	logger.WithField("source", cfg.Scraper.Source).Info("config loaded")
	return cfg, logger, nil
}

func bootstrap(opts *rootOptions) (*app, error) {
	cfg, logger, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return nil, err
		}
		logger.Info("schema check complete")
	}

	source, err := adapter.NewLeagueSource(&cfg.Scraper, logger)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		db:     db,
		sync:   service.NewSyncService(source, repository.NewLeagueRepository(db), cfg.Sync, logger),
		query:  service.NewQueryService(repository.NewQueryRepository(db), logger),
	}, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
