package adapter

import (
	"fmt"

	"LeagueSync/internal/config"
	"LeagueSync/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// NewLeagueSource builds the source named by cfg.Source. The source package must be
// imported (usually blank) so its init has registered the factory.
func NewLeagueSource(cfg *config.ScraperConfig, logger *logrus.Logger) (interfaces.LeagueSource, error) {
	factory, ok := GetFactory(cfg.Source)
	if !ok {
		return nil, fmt.Errorf("source %q not registered (registered: %v)", cfg.Source, ListFactories())
	}
	source, err := factory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init source %s: %w", cfg.Source, err)
	}
	if source.Name() != cfg.Source {
		return nil, fmt.Errorf("source %q reports name %q", cfg.Source, source.Name())
	}
	logger.WithField("source", cfg.Source).Info("league source initialised")
	return source, nil
}
