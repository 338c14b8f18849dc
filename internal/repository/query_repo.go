package repository

import (
	"context"

	"LeagueSync/internal/model"

	"gorm.io/gorm"
)

// LeagueFilter narrows the league listing.
type LeagueFilter struct {
	RegionSlug string
	// SeasonExternalID keeps leagues with at least one division in that season.
	SeasonExternalID int64
}

// FixtureFilter narrows the fixture listing of a division.
type FixtureFilter struct {
	Status string // scheduled / completed
	TeamID uint64 // either side
}

// LeagueView is a league row with its region name.
type LeagueView struct {
	ID               uint64 `json:"id"`
	ExternalLeagueID int64  `json:"external_league_id"`
	Name             string `json:"name"`
	RegionName       string `json:"region"`
	VenueID          int64  `json:"venue_id"`
}

// StandingView is a standings row with the team name resolved.
type StandingView struct {
	model.Standing
	TeamName string
}

// FixtureView is a fixture with both team names resolved.
type FixtureView struct {
	model.Fixture
	HomeTeamName string
	AwayTeamName string
}

// QueryRepository serves the read side of the HTTP API.
type QueryRepository interface {
	ListRegions(ctx context.Context) ([]*model.Region, error)
	ListLeagues(ctx context.Context, filter LeagueFilter, page, pageSize int) ([]*LeagueView, int64, error)
	ListDivisions(ctx context.Context, leagueID uint64) ([]*model.Division, error)
	GetDivision(ctx context.Context, id uint64) (*model.Division, error)
	ListStandings(ctx context.Context, divisionID uint64) ([]*StandingView, error)
	ListFixtures(ctx context.Context, divisionID uint64, filter FixtureFilter, page, pageSize int) ([]*FixtureView, int64, error)
	ListSyncRuns(ctx context.Context, limit int) ([]*model.SyncRun, error)
}

type queryRepository struct {
	db *gorm.DB
}

func NewQueryRepository(db *gorm.DB) QueryRepository {
	return &queryRepository{db: db}
}

func normalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func (r *queryRepository) ListRegions(ctx context.Context) ([]*model.Region, error) {
	var regions []*model.Region
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&regions).Error; err != nil {
		return nil, err
	}
	return regions, nil
}

func (r *queryRepository) ListLeagues(ctx context.Context, filter LeagueFilter, page, pageSize int) ([]*LeagueView, int64, error) {
	page, pageSize = normalizePage(page, pageSize)

	db := r.db.WithContext(ctx).Model(&model.League{}).
		Joins("JOIN regions ON regions.id = leagues.region_id")
	if filter.RegionSlug != "" {
		db = db.Where("regions.slug = ?", filter.RegionSlug)
	}
	if filter.SeasonExternalID != 0 {
		db = db.Where("EXISTS (SELECT 1 FROM divisions JOIN seasons ON seasons.id = divisions.season_id "+
			"WHERE divisions.league_id = leagues.id AND seasons.external_season_id = ?)", filter.SeasonExternalID)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var leagues []*LeagueView
	if err := db.
		Select("leagues.id, leagues.external_league_id, leagues.name, regions.name AS region_name, leagues.venue_id").
		Order("regions.name ASC, leagues.name ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Scan(&leagues).Error; err != nil {
		return nil, 0, err
	}
	return leagues, total, nil
}

func (r *queryRepository) ListDivisions(ctx context.Context, leagueID uint64) ([]*model.Division, error) {
	var divisions []*model.Division
	if err := r.db.WithContext(ctx).
		Where("league_id = ?", leagueID).
		Order("season_id DESC, tier ASC, name ASC").
		Find(&divisions).Error; err != nil {
		return nil, err
	}
	return divisions, nil
}

func (r *queryRepository) GetDivision(ctx context.Context, id uint64) (*model.Division, error) {
	var division model.Division
	if err := r.db.WithContext(ctx).First(&division, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &division, nil
}

func (r *queryRepository) ListStandings(ctx context.Context, divisionID uint64) ([]*StandingView, error) {
	var rows []*StandingView
	if err := r.db.WithContext(ctx).Model(&model.Standing{}).
		Select("standings.*, teams.name AS team_name").
		Joins("JOIN teams ON teams.id = standings.team_id").
		Where("standings.division_id = ?", divisionID).
		Order("standings.position ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *queryRepository) ListFixtures(ctx context.Context, divisionID uint64, filter FixtureFilter, page, pageSize int) ([]*FixtureView, int64, error) {
	page, pageSize = normalizePage(page, pageSize)

	db := r.db.WithContext(ctx).Model(&model.Fixture{}).Where("fixtures.division_id = ?", divisionID)
	if filter.Status != "" {
		db = db.Where("fixtures.status = ?", filter.Status)
	}
	if filter.TeamID != 0 {
		db = db.Where("fixtures.home_team_id = ? OR fixtures.away_team_id = ?", filter.TeamID, filter.TeamID)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*FixtureView
	if err := db.
		Select("fixtures.*, home.name AS home_team_name, away.name AS away_team_name").
		Joins("JOIN teams home ON home.id = fixtures.home_team_id").
		Joins("JOIN teams away ON away.id = fixtures.away_team_id").
		Order("fixtures.match_date ASC, fixtures.match_time ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *queryRepository) ListSyncRuns(ctx context.Context, limit int) ([]*model.SyncRun, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	var runs []*model.SyncRun
	if err := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
