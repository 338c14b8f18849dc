package service

import (
	"context"
	"errors"
	"fmt"

	"LeagueSync/internal/interfaces"
	"LeagueSync/internal/model"

	"github.com/sirupsen/logrus"
)

// TeamProfileResult summarizes a team-profile sync.
type TeamProfileResult struct {
	TeamID          uint64 `json:"team_id"`
	TeamName        string `json:"team_name"`
	LinkedDivisions int    `json:"linked_divisions"`
	// Matched fixtures already existed and had their score written in stored orientation.
	Matched int `json:"matched"`
	// Unverified fixtures were created with the subject team assumed to be at home.
	Unverified int `json:"unverified"`
	// Unmatched fixtures had no stored counterpart and no known division; they were skipped.
	Unmatched int `json:"unmatched"`
}

// SyncTeamProfile reads a team's own page and merges it into stored data in one
// transaction. The page never says who was at home, so fixtures are first matched against
// stored ones in either orientation; only those left over are created, marked unverified.
func (s *SyncService) SyncTeamProfile(ctx context.Context, teamExternalID int64) (*TeamProfileResult, error) {
	profile, err := s.source.FetchTeamProfile(ctx, teamExternalID)
	if err != nil {
		return nil, fmt.Errorf("team %d: %w", teamExternalID, err)
	}

	result := &TeamProfileResult{TeamName: profile.TeamName}
	log := s.logger.WithField("team_id", teamExternalID)

	err = s.store.RunInTransaction(ctx, func(tx interfaces.LeagueStore) error {
		*result = TeamProfileResult{TeamName: profile.TeamName}

		ext := profile.TeamExternalID
		team, err := tx.UpsertTeam(ctx, interfaces.TeamInput{ExternalID: &ext, Name: profile.TeamName})
		if err != nil {
			return fmt.Errorf("upsert team: %w", err)
		}
		result.TeamID = team.ID

		for _, link := range profile.SeasonLinks {
			division, err := tx.FindDivisionByExternalID(ctx, link.LeagueExternalID, link.SeasonExternalID, link.DivisionExternalID)
			if errors.Is(err, interfaces.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if err := tx.LinkTeamToDivision(ctx, division.ID, team.ID); err != nil {
				return err
			}
			result.LinkedDivisions++
		}

		fixtures := append(append([]model.ScrapedTeamFixture(nil), profile.Historical...), profile.Upcoming...)
		for _, f := range fixtures {
			if err := s.mergeTeamFixture(ctx, tx, team, f, result, log); err != nil {
				return fmt.Errorf("fixture %s v %d: %w", f.Date, f.OpponentExternalID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"matched":    result.Matched,
		"unverified": result.Unverified,
		"unmatched":  result.Unmatched,
	}).Info("team profile synced")
	return result, nil
}

func (s *SyncService) mergeTeamFixture(ctx context.Context, tx interfaces.LeagueStore, team *model.Team, f model.ScrapedTeamFixture, result *TeamProfileResult, log *logrus.Entry) error {
	date, err := parseDate(f.Date)
	if err != nil {
		return err
	}
	oppExt := f.OpponentExternalID
	opponent, err := tx.UpsertTeam(ctx, interfaces.TeamInput{ExternalID: &oppExt, Name: f.OpponentName})
	if err != nil {
		return err
	}

	existing, err := tx.FindFixtureByTeamsAndDate(ctx, team.ID, opponent.ID, date)
	switch {
	case err == nil:
		result.Matched++
		if f.SubjectScore == nil || f.OpponentScore == nil {
			return nil
		}
		home, away := f.SubjectScore, f.OpponentScore
		if existing.HomeTeamID != team.ID {
			home, away = away, home
		}
		return tx.UpdateFixtureScore(ctx, existing.ID, home, away, f.IsForfeit)
	case !errors.Is(err, interfaces.ErrNotFound):
		return err
	}

	if f.Division == nil {
		result.Unmatched++
		log.WithFields(logrus.Fields{"date": f.Date, "opponent_id": oppExt}).Debug("team fixture without division skipped")
		return nil
	}
	division, err := tx.FindDivisionByExternalID(ctx, f.Division.LeagueID, f.Division.SeasonID, f.Division.DivisionID)
	if errors.Is(err, interfaces.ErrNotFound) {
		result.Unmatched++
		log.WithFields(logrus.Fields{"date": f.Date, "division": refLabel(*f.Division)}).Debug("team fixture in unknown division skipped")
		return nil
	}
	if err != nil {
		return err
	}

	for _, id := range []uint64{team.ID, opponent.ID} {
		if err := tx.LinkTeamToDivision(ctx, division.ID, id); err != nil {
			return err
		}
	}
	if _, err := tx.UpsertFixture(ctx, &model.Fixture{
		DivisionID:    division.ID,
		HomeTeamID:    team.ID,
		AwayTeamID:    opponent.ID,
		MatchDate:     date,
		MatchTime:     optional(f.Time),
		HomeScore:     f.SubjectScore,
		AwayScore:     f.OpponentScore,
		IsForfeit:     f.IsForfeit,
		VenueVerified: false,
	}); err != nil {
		return err
	}
	result.Unverified++
	return nil
}
