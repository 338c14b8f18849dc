package mockadapter

import (
	"context"

	"LeagueSync/internal/model"

	"github.com/stretchr/testify/mock"
)

type Source struct {
	mock.Mock
}

func (s *Source) Name() string {
	return "mock"
}

func (s *Source) FetchLeagueList(ctx context.Context) (*model.ScrapedLeagueList, error) {
	args := s.Called(ctx)

	var l *model.ScrapedLeagueList
	if args.Get(0) != nil {
		l = args.Get(0).(*model.ScrapedLeagueList)
	}
	return l, args.Error(1)
}

func (s *Source) FetchStandings(ctx context.Context, ref model.DivisionRef) ([]model.ScrapedStanding, error) {
	args := s.Called(ctx, ref)

	var r []model.ScrapedStanding
	if args.Get(0) != nil {
		r = args.Get(0).([]model.ScrapedStanding)
	}
	return r, args.Error(1)
}

func (s *Source) FetchFixtures(ctx context.Context, ref model.DivisionRef) ([]model.ScrapedFixture, error) {
	args := s.Called(ctx, ref)

	var r []model.ScrapedFixture
	if args.Get(0) != nil {
		r = args.Get(0).([]model.ScrapedFixture)
	}
	return r, args.Error(1)
}

func (s *Source) FetchStatistics(ctx context.Context, ref model.DivisionRef) ([]model.ScrapedAward, error) {
	args := s.Called(ctx, ref)

	var r []model.ScrapedAward
	if args.Get(0) != nil {
		r = args.Get(0).([]model.ScrapedAward)
	}
	return r, args.Error(1)
}

func (s *Source) FetchTeamProfile(ctx context.Context, teamExternalID int64) (*model.ScrapedTeamProfile, error) {
	args := s.Called(ctx, teamExternalID)

	var p *model.ScrapedTeamProfile
	if args.Get(0) != nil {
		p = args.Get(0).(*model.ScrapedTeamProfile)
	}
	return p, args.Error(1)
}
