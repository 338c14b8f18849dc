package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"LeagueSync/internal/interfaces"
	"LeagueSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type leagueRepository struct {
	db *gorm.DB
}

// NewLeagueRepository returns the gorm implementation of LeagueStore.
func NewLeagueRepository(db *gorm.DB) interfaces.LeagueStore {
	return &leagueRepository{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return interfaces.ErrNotFound
	}
	return err
}

func (r *leagueRepository) RunInTransaction(ctx context.Context, fn func(tx interfaces.LeagueStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&leagueRepository{db: tx})
	})
}

// ---------- regions / seasons / leagues ----------

// UpsertRegion keys on the slug, so labels that differ only in punctuation or case share
// one region, which keeps the name it was first stored with.
func (r *leagueRepository) UpsertRegion(ctx context.Context, name string) (*model.Region, error) {
	region := &model.Region{Name: name, Slug: model.Slugify(name)}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
	}).Create(region).Error; err != nil {
		return nil, fmt.Errorf("upsert region %q: %w", name, err)
	}
	var stored model.Region
	if err := r.db.WithContext(ctx).Where("slug = ?", region.Slug).First(&stored).Error; err != nil {
		return nil, notFound(err)
	}
	return &stored, nil
}

func (r *leagueRepository) FindRegionBySlug(ctx context.Context, slug string) (*model.Region, error) {
	var region model.Region
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&region).Error; err != nil {
		return nil, notFound(err)
	}
	return &region, nil
}

func (r *leagueRepository) UpsertSeason(ctx context.Context, in interfaces.SeasonInput) (*model.Season, error) {
	var stored model.Season
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		season := &model.Season{ExternalSeasonID: in.ExternalID, Name: in.Name, IsCurrent: in.IsCurrent}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_season_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "is_current", "updated_at"}),
		}).Create(season).Error; err != nil {
			return err
		}
		if err := tx.Where("external_season_id = ?", in.ExternalID).First(&stored).Error; err != nil {
			return err
		}
		if !in.IsCurrent {
			return nil
		}
		return tx.Model(&model.Season{}).
			Where("id <> ? AND is_current = ?", stored.ID, true).
			Update("is_current", false).Error
	})
	if err != nil {
		return nil, fmt.Errorf("upsert season %d: %w", in.ExternalID, err)
	}
	return &stored, nil
}

func (r *leagueRepository) FindSeasonByExternalID(ctx context.Context, externalID int64) (*model.Season, error) {
	var season model.Season
	if err := r.db.WithContext(ctx).Where("external_season_id = ?", externalID).First(&season).Error; err != nil {
		return nil, notFound(err)
	}
	return &season, nil
}

func (r *leagueRepository) UpsertLeague(ctx context.Context, externalID int64, name string, regionID uint64, venueID int64) (*model.League, error) {
	league := &model.League{ExternalLeagueID: externalID, Name: name, RegionID: regionID, VenueID: venueID}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_league_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "region_id", "venue_id", "updated_at"}),
	}).Create(league).Error; err != nil {
		return nil, fmt.Errorf("upsert league %d: %w", externalID, err)
	}
	return r.FindLeagueByExternalID(ctx, externalID)
}

func (r *leagueRepository) FindLeagueByExternalID(ctx context.Context, externalID int64) (*model.League, error) {
	var league model.League
	if err := r.db.WithContext(ctx).Where("external_league_id = ?", externalID).First(&league).Error; err != nil {
		return nil, notFound(err)
	}
	return &league, nil
}

// ---------- divisions ----------

func (r *leagueRepository) UpsertDivision(ctx context.Context, in interfaces.DivisionInput) (*model.Division, error) {
	division := &model.Division{
		ExternalDivisionID: in.ExternalID,
		LeagueID:           in.LeagueID,
		SeasonID:           in.SeasonID,
		Name:               in.Name,
		Tier:               in.Tier,
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_division_id"}, {Name: "league_id"}, {Name: "season_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "tier", "updated_at"}),
	}).Create(division).Error; err != nil {
		return nil, fmt.Errorf("upsert division %d: %w", in.ExternalID, err)
	}
	var stored model.Division
	if err := r.db.WithContext(ctx).
		Where("external_division_id = ? AND league_id = ? AND season_id = ?", in.ExternalID, in.LeagueID, in.SeasonID).
		First(&stored).Error; err != nil {
		return nil, notFound(err)
	}
	return &stored, nil
}

func (r *leagueRepository) FindDivisionByExternalID(ctx context.Context, leagueExternalID, seasonExternalID, divisionExternalID int64) (*model.Division, error) {
	var division model.Division
	err := r.db.WithContext(ctx).
		Joins("JOIN leagues ON leagues.id = divisions.league_id").
		Joins("JOIN seasons ON seasons.id = divisions.season_id").
		Where("leagues.external_league_id = ? AND seasons.external_season_id = ? AND divisions.external_division_id = ?",
			leagueExternalID, seasonExternalID, divisionExternalID).
		First(&division).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &division, nil
}

func (r *leagueRepository) FindDivisionByID(ctx context.Context, id uint64) (*model.Division, error) {
	var division model.Division
	if err := r.db.WithContext(ctx).First(&division, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &division, nil
}

func (r *leagueRepository) UpdateLastScraped(ctx context.Context, divisionID uint64, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Division{}).
		Where("id = ?", divisionID).
		Update("last_scraped_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

// ---------- teams ----------

// UpsertTeam keys on the external id. A team without one resolves by name to any stored
// team, preferring one that has an external id, and is created only when none matches.
func (r *leagueRepository) UpsertTeam(ctx context.Context, in interfaces.TeamInput) (*model.Team, error) {
	db := r.db.WithContext(ctx)
	if in.ExternalID != nil {
		team := &model.Team{ExternalTeamID: in.ExternalID, Name: in.Name}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_team_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
		}).Create(team).Error; err != nil {
			return nil, fmt.Errorf("upsert team %d: %w", *in.ExternalID, err)
		}
		var stored model.Team
		if err := db.Where("external_team_id = ?", *in.ExternalID).First(&stored).Error; err != nil {
			return nil, notFound(err)
		}
		return &stored, nil
	}

	var stored model.Team
	err := db.Where("name = ?", in.Name).Order("external_team_id IS NULL, id").First(&stored).Error
	if err == nil {
		return &stored, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	stored = model.Team{Name: in.Name}
	if err := db.Create(&stored).Error; err != nil {
		return nil, fmt.Errorf("create team %q: %w", in.Name, err)
	}
	return &stored, nil
}

func (r *leagueRepository) LinkTeamToDivision(ctx context.Context, divisionID, teamID uint64) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.DivisionTeam{DivisionID: divisionID, TeamID: teamID}).Error
}

// ---------- standings ----------

func (r *leagueRepository) DeleteStandingsByDivision(ctx context.Context, divisionID uint64) error {
	return r.db.WithContext(ctx).Where("division_id = ?", divisionID).Delete(&model.Standing{}).Error
}

func (r *leagueRepository) UpsertStanding(ctx context.Context, standing *model.Standing) (*model.Standing, error) {
	standing.UpdatedAt = time.Now()
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "team_id"}, {Name: "division_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"position", "played", "wins", "losses", "draws", "forfeits_for", "forfeits_against",
			"points_for", "points_against", "point_difference", "bonus_points", "total_points", "updated_at",
		}),
	}).Create(standing).Error; err != nil {
		return nil, fmt.Errorf("upsert standing team=%d division=%d: %w", standing.TeamID, standing.DivisionID, err)
	}
	var stored model.Standing
	if err := r.db.WithContext(ctx).
		Where("team_id = ? AND division_id = ?", standing.TeamID, standing.DivisionID).
		First(&stored).Error; err != nil {
		return nil, notFound(err)
	}
	return &stored, nil
}

// ---------- fixtures ----------

// UpsertFixture keys on (division, home, away, date). A verified fixture replaces an
// unverified one stored for the same pair the other way round.
func (r *leagueRepository) UpsertFixture(ctx context.Context, fixture *model.Fixture) (*model.Fixture, error) {
	var stored model.Fixture
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if fixture.VenueVerified {
			if err := tx.Where("division_id = ? AND home_team_id = ? AND away_team_id = ? AND match_date = ? AND venue_verified = ?",
				fixture.DivisionID, fixture.AwayTeamID, fixture.HomeTeamID, fixture.MatchDate, false).
				Delete(&model.Fixture{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "division_id"}, {Name: "home_team_id"}, {Name: "away_team_id"}, {Name: "match_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"external_fixture_id", "match_time", "pitch", "round_number", "home_score", "away_score",
				"status", "is_forfeit", "venue_verified", "updated_at",
			}),
		}).Create(fixture).Error; err != nil {
			return err
		}
		return tx.Where("division_id = ? AND home_team_id = ? AND away_team_id = ? AND match_date = ?",
			fixture.DivisionID, fixture.HomeTeamID, fixture.AwayTeamID, fixture.MatchDate).
			First(&stored).Error
	})
	if err != nil {
		return nil, fmt.Errorf("upsert fixture division=%d %d v %d: %w", fixture.DivisionID, fixture.HomeTeamID, fixture.AwayTeamID, err)
	}
	return &stored, nil
}

func (r *leagueRepository) FindFixtureByTeamsAndDate(ctx context.Context, teamA, teamB uint64, date time.Time) (*model.Fixture, error) {
	var fixture model.Fixture
	err := r.db.WithContext(ctx).
		Where("match_date = ?", date).
		Where("(home_team_id = ? AND away_team_id = ?) OR (home_team_id = ? AND away_team_id = ?)", teamA, teamB, teamB, teamA).
		Order("venue_verified DESC, id").
		First(&fixture).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &fixture, nil
}

func (r *leagueRepository) UpdateFixtureScore(ctx context.Context, id uint64, homeScore, awayScore *int, isForfeit bool) error {
	res := r.db.WithContext(ctx).Model(&model.Fixture{}).Where("id = ?", id).Updates(map[string]interface{}{
		"home_score": homeScore,
		"away_score": awayScore,
		"is_forfeit": isForfeit,
		"status":     model.DeriveFixtureStatus(homeScore, awayScore),
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

// ---------- players / awards ----------

func (r *leagueRepository) UpsertPlayer(ctx context.Context, in interfaces.PlayerInput) (*model.Player, error) {
	db := r.db.WithContext(ctx)
	if in.ExternalID != nil {
		player := &model.Player{ExternalPlayerID: in.ExternalID, Name: in.Name, TeamID: in.TeamID}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_player_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "team_id", "updated_at"}),
		}).Create(player).Error; err != nil {
			return nil, fmt.Errorf("upsert player %d: %w", *in.ExternalID, err)
		}
		var stored model.Player
		if err := db.Where("external_player_id = ?", *in.ExternalID).First(&stored).Error; err != nil {
			return nil, notFound(err)
		}
		return &stored, nil
	}

	var stored model.Player
	err := db.Where("external_player_id IS NULL AND name = ? AND team_id = ?", in.Name, in.TeamID).First(&stored).Error
	if err == nil {
		return &stored, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	stored = model.Player{Name: in.Name, TeamID: in.TeamID}
	if err := db.Create(&stored).Error; err != nil {
		return nil, fmt.Errorf("create player %q: %w", in.Name, err)
	}
	return &stored, nil
}

func (r *leagueRepository) UpsertPlayerAward(ctx context.Context, award *model.PlayerAward) (*model.PlayerAward, error) {
	award.UpdatedAt = time.Now()
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "player_id"}, {Name: "division_id"}, {Name: "award_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"team_id", "fixture_id", "award_count", "updated_at"}),
	}).Create(award).Error; err != nil {
		return nil, fmt.Errorf("upsert award player=%d division=%d: %w", award.PlayerID, award.DivisionID, err)
	}
	var stored model.PlayerAward
	if err := r.db.WithContext(ctx).
		Where("player_id = ? AND division_id = ? AND award_type = ?", award.PlayerID, award.DivisionID, award.AwardType).
		First(&stored).Error; err != nil {
		return nil, notFound(err)
	}
	return &stored, nil
}

// ---------- sync runs ----------

func (r *leagueRepository) SaveSyncRun(ctx context.Context, run *model.SyncRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}
