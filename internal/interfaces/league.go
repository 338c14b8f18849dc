package interfaces

import (
	"context"
	"errors"
	"time"

	"LeagueSync/internal/config"
	"LeagueSync/internal/model"

	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned by store lookups that match nothing.
var ErrNotFound = errors.New("record not found")

// LeagueSource fetches and parses the upstream league pages.
type LeagueSource interface {
	Name() string
	FetchLeagueList(ctx context.Context) (*model.ScrapedLeagueList, error)
	FetchStandings(ctx context.Context, ref model.DivisionRef) ([]model.ScrapedStanding, error)
	FetchFixtures(ctx context.Context, ref model.DivisionRef) ([]model.ScrapedFixture, error)
	FetchStatistics(ctx context.Context, ref model.DivisionRef) ([]model.ScrapedAward, error)
	FetchTeamProfile(ctx context.Context, teamExternalID int64) (*model.ScrapedTeamProfile, error)
}

// SourceFactory builds a LeagueSource from scraper config.
type SourceFactory func(cfg *config.ScraperConfig, logger *logrus.Logger) (LeagueSource, error)

// SeasonInput is the natural key and fields of a season upsert.
type SeasonInput struct {
	ExternalID int64
	Name       string
	IsCurrent  bool
}

// DivisionInput is the natural key and fields of a division upsert.
type DivisionInput struct {
	ExternalID int64
	LeagueID   uint64
	SeasonID   uint64
	Name       string
	Tier       int
}

// TeamInput identifies a team by external id when known, else by name.
type TeamInput struct {
	ExternalID *int64
	Name       string
}

// PlayerInput identifies a player by external id when known, else by name within a team.
type PlayerInput struct {
	ExternalID *int64
	Name       string
	TeamID     uint64
}

// LeagueStore persists league records. Upserts are keyed on natural keys and return the
// stored row, whose internal id never changes once assigned.
type LeagueStore interface {
	UpsertRegion(ctx context.Context, name string) (*model.Region, error)
	FindRegionBySlug(ctx context.Context, slug string) (*model.Region, error)

	// UpsertSeason keeps at most one current season: marking one current clears the rest.
	UpsertSeason(ctx context.Context, in SeasonInput) (*model.Season, error)
	FindSeasonByExternalID(ctx context.Context, externalID int64) (*model.Season, error)

	UpsertLeague(ctx context.Context, externalID int64, name string, regionID uint64, venueID int64) (*model.League, error)
	FindLeagueByExternalID(ctx context.Context, externalID int64) (*model.League, error)

	UpsertDivision(ctx context.Context, in DivisionInput) (*model.Division, error)
	FindDivisionByExternalID(ctx context.Context, leagueExternalID, seasonExternalID, divisionExternalID int64) (*model.Division, error)
	FindDivisionByID(ctx context.Context, id uint64) (*model.Division, error)
	UpdateLastScraped(ctx context.Context, divisionID uint64, at time.Time) error

	UpsertTeam(ctx context.Context, in TeamInput) (*model.Team, error)
	LinkTeamToDivision(ctx context.Context, divisionID, teamID uint64) error

	DeleteStandingsByDivision(ctx context.Context, divisionID uint64) error
	UpsertStanding(ctx context.Context, standing *model.Standing) (*model.Standing, error)

	UpsertFixture(ctx context.Context, fixture *model.Fixture) (*model.Fixture, error)
	// FindFixtureByTeamsAndDate matches the pair in either orientation.
	FindFixtureByTeamsAndDate(ctx context.Context, teamA, teamB uint64, date time.Time) (*model.Fixture, error)
	UpdateFixtureScore(ctx context.Context, id uint64, homeScore, awayScore *int, isForfeit bool) error

	UpsertPlayer(ctx context.Context, in PlayerInput) (*model.Player, error)
	UpsertPlayerAward(ctx context.Context, award *model.PlayerAward) (*model.PlayerAward, error)

	// RunInTransaction runs fn against a store bound to one transaction; an error rolls it back.
	RunInTransaction(ctx context.Context, fn func(tx LeagueStore) error) error

	SaveSyncRun(ctx context.Context, run *model.SyncRun) error
}
