// Package leaguesite reads the league pages of the upstream fixtures site.
package leaguesite

import (
	"context"
	"fmt"
	"strconv"

	"LeagueSync/internal/adapter"
	"LeagueSync/internal/config"
	"LeagueSync/internal/fetcher"
	"LeagueSync/internal/interfaces"
	"LeagueSync/internal/model"
	"LeagueSync/internal/parser"
	"LeagueSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// Name is the registry key of this source.
const Name = "leaguesite"

func init() {
	adapter.Register(Name, NewSource)
}

// Source fetches pages through one fetcher.Client and parses them.
type Source struct {
	cfg    *config.ScraperConfig
	client *fetcher.Client
	parser *parser.Parser
	logger *logrus.Logger
}

// NewSource is the registered SourceFactory.
func NewSource(cfg *config.ScraperConfig, logger *logrus.Logger) (interfaces.LeagueSource, error) {
	client, err := fetcher.NewClient(cfg, httpclient.NewHTTPClient(cfg, logger), logger)
	if err != nil {
		return nil, err
	}
	return &Source{
		cfg:    cfg,
		client: client,
		parser: parser.New(logger, cfg.RegionKeywords),
		logger: logger,
	}, nil
}

func (s *Source) Name() string { return Name }

func (s *Source) FetchLeagueList(ctx context.Context) (*model.ScrapedLeagueList, error) {
	var params map[string]string
	if s.cfg.VenueID > 0 {
		params = map[string]string{"VenueId": strconv.FormatInt(s.cfg.VenueID, 10)}
	}
	html, err := s.client.FetchWithParams(ctx, s.cfg.Paths.LeagueList, params)
	if err != nil {
		return nil, fmt.Errorf("fetch league list: %w", err)
	}
	return s.parser.ParseLeagueList(html)
}

func (s *Source) FetchStandings(ctx context.Context, ref model.DivisionRef) ([]model.ScrapedStanding, error) {
	html, err := s.client.FetchWithParams(ctx, s.cfg.Paths.Standings, s.divisionParams(ref))
	if err != nil {
		return nil, fmt.Errorf("fetch standings: %w", err)
	}
	return s.parser.ParseStandings(html)
}

func (s *Source) FetchFixtures(ctx context.Context, ref model.DivisionRef) ([]model.ScrapedFixture, error) {
	html, err := s.client.FetchWithParams(ctx, s.cfg.Paths.Fixtures, s.divisionParams(ref))
	if err != nil {
		return nil, fmt.Errorf("fetch fixtures: %w", err)
	}
	return s.parser.ParseFixtures(html)
}

func (s *Source) FetchStatistics(ctx context.Context, ref model.DivisionRef) ([]model.ScrapedAward, error) {
	html, err := s.client.FetchWithParams(ctx, s.cfg.Paths.Statistics, s.divisionParams(ref))
	if err != nil {
		return nil, fmt.Errorf("fetch statistics: %w", err)
	}
	return s.parser.ParseStatistics(html)
}

func (s *Source) FetchTeamProfile(ctx context.Context, teamExternalID int64) (*model.ScrapedTeamProfile, error) {
	html, err := s.client.FetchWithParams(ctx, s.cfg.Paths.Team, map[string]string{
		"TeamId": strconv.FormatInt(teamExternalID, 10),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch team %d: %w", teamExternalID, err)
	}
	return s.parser.ParseTeamProfile(html, teamExternalID)
}

// divisionParams addresses a division page. A ref without a venue falls back to the
// configured one.
func (s *Source) divisionParams(ref model.DivisionRef) map[string]string {
	venue := ref.VenueID
	if venue == 0 {
		venue = s.cfg.VenueID
	}
	return map[string]string{
		"VenueId":    strconv.FormatInt(venue, 10),
		"LeagueId":   strconv.FormatInt(ref.LeagueID, 10),
		"SeasonId":   strconv.FormatInt(ref.SeasonID, 10),
		"DivisionId": strconv.FormatInt(ref.DivisionID, 10),
	}
}
