package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"LeagueSync/internal/config"
	"LeagueSync/internal/interfaces"
	"LeagueSync/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// ErrDivisionNotFound is returned by SyncSingleDivision when the division is not stored.
var ErrDivisionNotFound = errors.New("division not found")

// Run kinds recorded in sync_runs.
const (
	RunKindFull     = "full"
	RunKindDivision = "division"
)

// SyncCounts counts records written during a run.
type SyncCounts struct {
	Regions   int `json:"regions"`
	Seasons   int `json:"seasons"`
	Leagues   int `json:"leagues"`
	Divisions int `json:"divisions"`
	Teams     int `json:"teams"`
	Standings int `json:"standings"`
	Fixtures  int `json:"fixtures"`
	Players   int `json:"players"`
	Awards    int `json:"awards"`
}

func (c *SyncCounts) add(o SyncCounts) {
	c.Regions += o.Regions
	c.Seasons += o.Seasons
	c.Leagues += o.Leagues
	c.Divisions += o.Divisions
	c.Teams += o.Teams
	c.Standings += o.Standings
	c.Fixtures += o.Fixtures
	c.Players += o.Players
	c.Awards += o.Awards
}

// SyncResult is the outcome of a run. Success is true iff Errors is empty.
type SyncResult struct {
	RunID      string        `json:"run_id"`
	Kind       string        `json:"kind"`
	Success    bool          `json:"success"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"-"`
	DurationMs int64         `json:"duration_ms"`
	Counts     SyncCounts    `json:"counts"`
	Errors     []string      `json:"errors"`
}

// SyncService drives fetch, parse and persist across the league hierarchy.
type SyncService struct {
	source interfaces.LeagueSource
	store  interfaces.LeagueStore
	cfg    config.SyncConfig
	logger *logrus.Logger
	now    func() time.Time
}

func NewSyncService(source interfaces.LeagueSource, store interfaces.LeagueStore, cfg config.SyncConfig, logger *logrus.Logger) *SyncService {
	return &SyncService{
		source: source,
		store:  store,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// RunFullSync discovers every league, season and division on the league list and syncs
// each division once, in list order. It never fails: stage failures are recorded in the
// result and the run moves on.
func (s *SyncService) RunFullSync(ctx context.Context) *SyncResult {
	result := s.newResult(RunKindFull)
	log := s.logger.WithField("run_id", result.RunID)
	log.Info("full sync started")
	defer s.finish(ctx, result)

	list, err := s.source.FetchLeagueList(ctx)
	if err != nil {
		s.recordError(result, log, fmt.Errorf("league list: %w", err))
		return result
	}
	if len(list.Items) == 0 {
		log.Warn("league list yielded no divisions")
	}

	for _, name := range list.Regions {
		if _, err := s.store.UpsertRegion(ctx, name); err != nil {
			s.recordError(result, log, fmt.Errorf("region %q: %w", name, err))
			continue
		}
		result.Counts.Regions++
	}

	current := s.currentSeasonID(list)
	if current == 0 {
		log.Warn("no current season could be determined")
	}
	for _, id := range seasonOrder(list) {
		in := interfaces.SeasonInput{ExternalID: id, Name: list.Seasons[id], IsCurrent: id == current}
		if _, err := s.store.UpsertSeason(ctx, in); err != nil {
			s.recordError(result, log, fmt.Errorf("season %d: %w", id, err))
			continue
		}
		result.Counts.Seasons++
	}

	leagues := make(map[int64]bool)
	seen := make(map[model.DivisionRef]bool)
	for i, item := range list.Items {
		if err := ctx.Err(); err != nil {
			s.recordError(result, log, fmt.Errorf("run interrupted before item %d: %w", i+1, err))
			break
		}

		division, err := s.upsertItem(ctx, item, current)
		if err != nil {
			s.recordError(result, log, fmt.Errorf("item %d (division %s): %w", i+1, refLabel(item.Ref()), err))
			continue
		}
		if !leagues[item.LeagueExternalID] {
			leagues[item.LeagueExternalID] = true
			result.Counts.Leagues++
		}

		key := item.Ref()
		key.VenueID = 0
		if seen[key] {
			log.WithField("division", refLabel(key)).Debug("division already synced in this run")
			continue
		}
		seen[key] = true
		result.Counts.Divisions++

		for _, err := range s.syncDivisionData(ctx, division, item.Ref(), &result.Counts) {
			s.recordError(result, log, err)
		}
	}

	return result
}

// upsertItem stores the league, season and division of one list item.
func (s *SyncService) upsertItem(ctx context.Context, item model.ScrapedLeagueListItem, current int64) (*model.Division, error) {
	region, err := s.store.FindRegionBySlug(ctx, model.Slugify(item.RegionName))
	if err != nil {
		return nil, fmt.Errorf("region %q: %w", item.RegionName, err)
	}

	league, err := s.store.UpsertLeague(ctx, item.LeagueExternalID, item.LeagueName, region.ID, item.VenueID)
	if err != nil {
		return nil, fmt.Errorf("league: %w", err)
	}

	season, err := s.store.FindSeasonByExternalID(ctx, item.SeasonExternalID)
	if errors.Is(err, interfaces.ErrNotFound) {
		season, err = s.store.UpsertSeason(ctx, interfaces.SeasonInput{
			ExternalID: item.SeasonExternalID,
			Name:       item.SeasonName,
			IsCurrent:  item.SeasonExternalID == current,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("season: %w", err)
	}

	division, err := s.store.UpsertDivision(ctx, interfaces.DivisionInput{
		ExternalID: item.DivisionExternalID,
		LeagueID:   league.ID,
		SeasonID:   season.ID,
		Name:       item.DivisionName,
		Tier:       item.Tier,
	})
	if err != nil {
		return nil, fmt.Errorf("division: %w", err)
	}
	return division, nil
}

// SyncSingleDivision resyncs one stored division. Unlike a full sync it fails: with
// ErrDivisionNotFound when the division is unknown, or with the joined stage errors.
func (s *SyncService) SyncSingleDivision(ctx context.Context, leagueID, seasonID, divisionID int64) (*SyncResult, error) {
	ref := model.DivisionRef{LeagueID: leagueID, SeasonID: seasonID, DivisionID: divisionID}
	division, err := s.store.FindDivisionByExternalID(ctx, leagueID, seasonID, divisionID)
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrDivisionNotFound, refLabel(ref))
	}
	if err != nil {
		return nil, fmt.Errorf("resolve division %s: %w", refLabel(ref), err)
	}
	if league, err := s.store.FindLeagueByExternalID(ctx, leagueID); err == nil {
		ref.VenueID = league.VenueID
	}

	result := s.newResult(RunKindDivision)
	result.Counts.Divisions = 1
	log := s.logger.WithFields(logrus.Fields{"run_id": result.RunID, "division": refLabel(ref)})
	log.Info("division sync started")

	errs := s.syncDivisionData(ctx, division, ref, &result.Counts)
	for _, err := range errs {
		s.recordError(result, log, err)
	}
	s.finish(ctx, result)
	return result, errors.Join(errs...)
}

// syncDivisionData runs the standings, fixtures and (optionally) statistics stages of one
// division. Each stage commits or rolls back on its own; a failed stage does not stop
// the next one.
func (s *SyncService) syncDivisionData(ctx context.Context, division *model.Division, ref model.DivisionRef, counts *SyncCounts) []error {
	var errs []error
	label := refLabel(ref)

	if err := s.syncStandings(ctx, division, ref, counts); err != nil {
		errs = append(errs, fmt.Errorf("division %s standings: %w", label, err))
	}
	if err := s.syncFixtures(ctx, division, ref, counts); err != nil {
		errs = append(errs, fmt.Errorf("division %s fixtures: %w", label, err))
	}
	if s.cfg.IncludeStatistics {
		if err := s.syncStatistics(ctx, division, ref, counts); err != nil {
			errs = append(errs, fmt.Errorf("division %s statistics: %w", label, err))
		}
	}

	if err := s.store.UpdateLastScraped(ctx, division.ID, s.now()); err != nil {
		s.logger.WithError(err).WithField("division_id", division.ID).Warn("failed to stamp last scraped time")
	}
	return errs
}

func (s *SyncService) syncStandings(ctx context.Context, division *model.Division, ref model.DivisionRef, counts *SyncCounts) error {
	rows, err := s.source.FetchStandings(ctx, ref)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		s.logger.WithField("division", refLabel(ref)).Warn("standings page yielded no rows, keeping stored standings")
		return nil
	}

	var local SyncCounts
	err = s.store.RunInTransaction(ctx, func(tx interfaces.LeagueStore) error {
		if err := tx.DeleteStandingsByDivision(ctx, division.ID); err != nil {
			return err
		}
		for _, row := range rows {
			ext := row.TeamExternalID
			team, err := s.upsertDivisionTeam(ctx, tx, division.ID, interfaces.TeamInput{ExternalID: &ext, Name: row.TeamName})
			if err != nil {
				return err
			}
			local.Teams++
			if _, err := tx.UpsertStanding(ctx, &model.Standing{
				TeamID:          team.ID,
				DivisionID:      division.ID,
				Position:        row.Position,
				Played:          row.Played,
				Wins:            row.Wins,
				Losses:          row.Losses,
				Draws:           row.Draws,
				ForfeitsFor:     row.ForfeitsFor,
				ForfeitsAgainst: row.ForfeitsAgainst,
				PointsFor:       row.PointsFor,
				PointsAgainst:   row.PointsAgainst,
				PointDifference: row.PointDifference,
				BonusPoints:     row.BonusPoints,
				TotalPoints:     row.TotalPoints,
			}); err != nil {
				return fmt.Errorf("team %d: %w", row.TeamExternalID, err)
			}
			local.Standings++
		}
		return nil
	})
	if err != nil {
		return err
	}
	counts.add(local)
	return nil
}

func (s *SyncService) syncFixtures(ctx context.Context, division *model.Division, ref model.DivisionRef, counts *SyncCounts) error {
	rows, err := s.source.FetchFixtures(ctx, ref)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		s.logger.WithField("division", refLabel(ref)).Info("no fixtures listed")
		return nil
	}

	var local SyncCounts
	err = s.store.RunInTransaction(ctx, func(tx interfaces.LeagueStore) error {
		for _, row := range rows {
			date, err := parseDate(row.Date)
			if err != nil {
				return err
			}
			homeExt, awayExt := row.HomeTeamExternalID, row.AwayTeamExternalID
			home, err := s.upsertDivisionTeam(ctx, tx, division.ID, interfaces.TeamInput{ExternalID: &homeExt, Name: row.HomeTeamName})
			if err != nil {
				return err
			}
			away, err := s.upsertDivisionTeam(ctx, tx, division.ID, interfaces.TeamInput{ExternalID: &awayExt, Name: row.AwayTeamName})
			if err != nil {
				return err
			}
			local.Teams += 2

			if _, err := tx.UpsertFixture(ctx, &model.Fixture{
				ExternalFixtureID: row.ExternalFixtureID,
				DivisionID:        division.ID,
				HomeTeamID:        home.ID,
				AwayTeamID:        away.ID,
				MatchDate:         date,
				MatchTime:         optional(row.Time),
				Pitch:             optional(row.Pitch),
				RoundNumber:       row.RoundNumber,
				HomeScore:         row.HomeScore,
				AwayScore:         row.AwayScore,
				IsForfeit:         row.IsForfeit,
				VenueVerified:     true,
			}); err != nil {
				return fmt.Errorf("fixture %s %d v %d: %w", row.Date, homeExt, awayExt, err)
			}
			local.Fixtures++
		}
		return nil
	})
	if err != nil {
		return err
	}
	counts.add(local)
	return nil
}

func (s *SyncService) syncStatistics(ctx context.Context, division *model.Division, ref model.DivisionRef, counts *SyncCounts) error {
	awards, err := s.source.FetchStatistics(ctx, ref)
	if err != nil {
		return err
	}
	if len(awards) == 0 {
		return nil
	}

	var local SyncCounts
	err = s.store.RunInTransaction(ctx, func(tx interfaces.LeagueStore) error {
		for _, a := range awards {
			team, err := s.upsertDivisionTeam(ctx, tx, division.ID, interfaces.TeamInput{ExternalID: a.TeamExternalID, Name: a.TeamName})
			if err != nil {
				return err
			}
			local.Teams++
			player, err := tx.UpsertPlayer(ctx, interfaces.PlayerInput{ExternalID: a.PlayerExternalID, Name: a.PlayerName, TeamID: team.ID})
			if err != nil {
				return fmt.Errorf("player %q: %w", a.PlayerName, err)
			}
			local.Players++
			if _, err := tx.UpsertPlayerAward(ctx, &model.PlayerAward{
				PlayerID:   player.ID,
				TeamID:     team.ID,
				DivisionID: division.ID,
				AwardType:  a.AwardType,
				AwardCount: a.AwardCount,
			}); err != nil {
				return fmt.Errorf("award %q for %q: %w", a.AwardType, a.PlayerName, err)
			}
			local.Awards++
		}
		return nil
	})
	if err != nil {
		return err
	}
	counts.add(local)
	return nil
}

func (s *SyncService) upsertDivisionTeam(ctx context.Context, tx interfaces.LeagueStore, divisionID uint64, in interfaces.TeamInput) (*model.Team, error) {
	team, err := tx.UpsertTeam(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("team %q: %w", in.Name, err)
	}
	if err := tx.LinkTeamToDivision(ctx, divisionID, team.ID); err != nil {
		return nil, fmt.Errorf("link team %q: %w", in.Name, err)
	}
	return team, nil
}

func (s *SyncService) newResult(kind string) *SyncResult {
	return &SyncResult{
		RunID:     uuid.NewString(),
		Kind:      kind,
		StartedAt: s.now(),
		Errors:    []string{},
	}
}

func (s *SyncService) recordError(result *SyncResult, log *logrus.Entry, err error) {
	result.Errors = append(result.Errors, err.Error())
	log.WithError(err).Warn("sync stage failed")
}

// finish stamps the duration and stores the run. Storing the run is best-effort.
func (s *SyncService) finish(ctx context.Context, result *SyncResult) {
	result.Duration = s.now().Sub(result.StartedAt)
	result.DurationMs = result.Duration.Milliseconds()
	result.Success = len(result.Errors) == 0

	s.logger.WithFields(logrus.Fields{
		"run_id":   result.RunID,
		"kind":     result.Kind,
		"success":  result.Success,
		"errors":   len(result.Errors),
		"duration": result.Duration.String(),
	}).Info("sync finished")

	counts, _ := json.Marshal(result.Counts)
	errs, _ := json.Marshal(result.Errors)
	run := &model.SyncRun{
		RunUUID:    result.RunID,
		Kind:       result.Kind,
		Success:    result.Success,
		StartedAt:  result.StartedAt,
		FinishedAt: result.StartedAt.Add(result.Duration),
		DurationMs: result.DurationMs,
		Counts:     datatypes.JSON(counts),
		Errors:     datatypes.JSON(errs),
	}
	if err := s.store.SaveSyncRun(context.WithoutCancel(ctx), run); err != nil {
		s.logger.WithError(err).WithField("run_id", result.RunID).Warn("failed to store sync run")
	}
}

func refLabel(ref model.DivisionRef) string {
	return fmt.Sprintf("%d/%d/%d", ref.LeagueID, ref.SeasonID, ref.DivisionID)
}

func parseDate(iso string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad fixture date %q: %w", iso, err)
	}
	return t, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
