package service

import (
	"context"
	"encoding/json"
	"errors"

	"LeagueSync/internal/interfaces"
	"LeagueSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// QueryService shapes stored league data for the read API.
type QueryService struct {
	repo   repository.QueryRepository
	logger *logrus.Logger
}

func NewQueryService(repo repository.QueryRepository, logger *logrus.Logger) *QueryService {
	return &QueryService{repo: repo, logger: logger}
}

// LeagueListResult is one page of leagues.
type LeagueListResult struct {
	Page     int                      `json:"page"`
	PageSize int                      `json:"page_size"`
	Total    int64                    `json:"total"`
	Items    []*repository.LeagueView `json:"items"`
}

// StandingRow is one row of a division table.
type StandingRow struct {
	Position        int    `json:"position"`
	TeamID          uint64 `json:"team_id"`
	TeamName        string `json:"team_name"`
	Played          int    `json:"played"`
	Wins            int    `json:"wins"`
	Losses          int    `json:"losses"`
	Draws           int    `json:"draws"`
	ForfeitsFor     int    `json:"forfeits_for"`
	ForfeitsAgainst int    `json:"forfeits_against"`
	PointsFor       int    `json:"points_for"`
	PointsAgainst   int    `json:"points_against"`
	PointDifference int    `json:"point_difference"`
	BonusPoints     int    `json:"bonus_points"`
	TotalPoints     int    `json:"total_points"`
}

// FixtureRow is a fixture with team names and an ISO date.
type FixtureRow struct {
	ID            uint64  `json:"id"`
	Date          string  `json:"date"`
	Time          *string `json:"time,omitempty"`
	Pitch         *string `json:"pitch,omitempty"`
	Round         *int    `json:"round,omitempty"`
	HomeTeamID    uint64  `json:"home_team_id"`
	HomeTeamName  string  `json:"home_team_name"`
	AwayTeamID    uint64  `json:"away_team_id"`
	AwayTeamName  string  `json:"away_team_name"`
	HomeScore     *int    `json:"home_score"`
	AwayScore     *int    `json:"away_score"`
	Status        string  `json:"status"`
	IsForfeit     bool    `json:"is_forfeit"`
	VenueVerified bool    `json:"venue_verified"`
}

// FixtureListResult is one page of a division's fixtures.
type FixtureListResult struct {
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
	Total    int64        `json:"total"`
	Items    []FixtureRow `json:"items"`
}

// SyncRunSummary is a stored run as returned by the API.
type SyncRunSummary struct {
	RunID      string          `json:"run_id"`
	Kind       string          `json:"kind"`
	Success    bool            `json:"success"`
	StartedAt  int64           `json:"started_at"` // unix millis
	DurationMs int64           `json:"duration_ms"`
	Counts     json.RawMessage `json:"counts,omitempty"`
	Errors     json.RawMessage `json:"errors,omitempty"`
}

func (s *QueryService) ListLeagues(ctx context.Context, filter repository.LeagueFilter, page, pageSize int) (*LeagueListResult, error) {
	leagues, total, err := s.repo.ListLeagues(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}
	if leagues == nil {
		leagues = []*repository.LeagueView{}
	}
	return &LeagueListResult{Page: page, PageSize: pageSize, Total: total, Items: leagues}, nil
}

// ListStandings returns the table of a division; ErrDivisionNotFound when it is unknown.
func (s *QueryService) ListStandings(ctx context.Context, divisionID uint64) ([]StandingRow, error) {
	if _, err := s.repo.GetDivision(ctx, divisionID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrDivisionNotFound
		}
		return nil, err
	}
	rows, err := s.repo.ListStandings(ctx, divisionID)
	if err != nil {
		return nil, err
	}
	out := make([]StandingRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, StandingRow{
			Position:        r.Position,
			TeamID:          r.TeamID,
			TeamName:        r.TeamName,
			Played:          r.Played,
			Wins:            r.Wins,
			Losses:          r.Losses,
			Draws:           r.Draws,
			ForfeitsFor:     r.ForfeitsFor,
			ForfeitsAgainst: r.ForfeitsAgainst,
			PointsFor:       r.PointsFor,
			PointsAgainst:   r.PointsAgainst,
			PointDifference: r.PointDifference,
			BonusPoints:     r.BonusPoints,
			TotalPoints:     r.TotalPoints,
		})
	}
	return out, nil
}

func (s *QueryService) ListFixtures(ctx context.Context, divisionID uint64, filter repository.FixtureFilter, page, pageSize int) (*FixtureListResult, error) {
	if _, err := s.repo.GetDivision(ctx, divisionID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrDivisionNotFound
		}
		return nil, err
	}
	rows, total, err := s.repo.ListFixtures(ctx, divisionID, filter, page, pageSize)
	if err != nil {
		return nil, err
	}
	items := make([]FixtureRow, 0, len(rows))
	for _, r := range rows {
		items = append(items, FixtureRow{
			ID:            r.ID,
			Date:          r.MatchDate.Format("2006-01-02"),
			Time:          r.MatchTime,
			Pitch:         r.Pitch,
			Round:         r.RoundNumber,
			HomeTeamID:    r.HomeTeamID,
			HomeTeamName:  r.HomeTeamName,
			AwayTeamID:    r.AwayTeamID,
			AwayTeamName:  r.AwayTeamName,
			HomeScore:     r.HomeScore,
			AwayScore:     r.AwayScore,
			Status:        string(r.Status),
			IsForfeit:     r.IsForfeit,
			VenueVerified: r.VenueVerified,
		})
	}
	return &FixtureListResult{Page: page, PageSize: pageSize, Total: total, Items: items}, nil
}

func (s *QueryService) ListSyncRuns(ctx context.Context, limit int) ([]SyncRunSummary, error) {
	runs, err := s.repo.ListSyncRuns(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]SyncRunSummary, 0, len(runs))
	for _, r := range runs {
		out = append(out, SyncRunSummary{
			RunID:      r.RunUUID,
			Kind:       r.Kind,
			Success:    r.Success,
			StartedAt:  r.StartedAt.UnixMilli(),
			DurationMs: r.DurationMs,
			Counts:     json.RawMessage(r.Counts),
			Errors:     json.RawMessage(r.Errors),
		})
	}
	return out, nil
}
