package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"LeagueSync/internal/config"
	"LeagueSync/internal/database"
	"LeagueSync/internal/interfaces"
	"LeagueSync/internal/model"
	"LeagueSync/internal/testutils"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// testDB is shared by every test; nil when integration tests are disabled.
var testDB *gorm.DB

func TestMain(m *testing.M) {
	if !testutils.IntegrationEnabled() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	container, err := testutils.NewDBContainer(ctx)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	code, err := func() (int, error) {
		dsn, err := container.ConnectionString(ctx)
		if err != nil {
			return 0, err
		}
		if err := database.RunMigrations(dsn); err != nil {
			return 0, err
		}
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		testDB, err = database.Open(config.DatabaseConfig{DSN: dsn, MaxOpenConns: 5, MaxIdleConns: 2, LogLevel: "silent"}, logger)
		if err != nil {
			return 0, err
		}
		return m.Run(), nil
	}()
	if shutdownErr := container.Shutdown(); shutdownErr != nil {
		fmt.Println(shutdownErr)
	}
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	os.Exit(code)
}

// freshStore empties every table and returns a store over the shared database.
func freshStore(t *testing.T) interfaces.LeagueStore {
	t.Helper()
	if testDB == nil {
		t.Skipf("set %s=1 to run database tests", testutils.IntegrationEnv)
	}
	require.NoError(t, testDB.Exec(`TRUNCATE regions, seasons, leagues, divisions, teams, division_teams,
		standings, fixtures, players, player_awards, sync_runs RESTART IDENTITY`).Error)
	return NewLeagueRepository(testDB)
}

func ext(v int64) *int64 { return &v }
func intp(v int) *int    { return &v }

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// seedDivision stores region, season, league and division 10/20/1.
func seedDivision(t *testing.T, store interfaces.LeagueStore) *model.Division {
	t.Helper()
	ctx := context.Background()
	region, err := store.UpsertRegion(ctx, "London")
	require.NoError(t, err)
	season, err := store.UpsertSeason(ctx, interfaces.SeasonInput{ExternalID: 20, Name: "2025/26", IsCurrent: true})
	require.NoError(t, err)
	league, err := store.UpsertLeague(ctx, 10, "London Monday League", region.ID, 7)
	require.NoError(t, err)
	division, err := store.UpsertDivision(ctx, interfaces.DivisionInput{ExternalID: 1, LeagueID: league.ID, SeasonID: season.ID, Name: "Division 1", Tier: 1})
	require.NoError(t, err)
	return division
}

func TestUpsert_preservesIdentity(t *testing.T) {
	store := freshStore(t)
	ctx := context.Background()
	division := seedDivision(t, store)

	region, err := store.FindRegionBySlug(ctx, "london")
	require.NoError(t, err)
	league, err := store.UpsertLeague(ctx, 10, "London Monday Night League", region.ID, 7)
	require.NoError(t, err)
	again, err := store.UpsertDivision(ctx, interfaces.DivisionInput{ExternalID: 1, LeagueID: league.ID, SeasonID: division.SeasonID, Name: "Division One", Tier: 1})
	require.NoError(t, err)

	assert.Equal(t, division.ID, again.ID)
	assert.Equal(t, "Division One", again.Name)
	assert.Equal(t, "London Monday Night League", league.Name)

	found, err := store.FindDivisionByExternalID(ctx, 10, 20, 1)
	require.NoError(t, err)
	assert.Equal(t, division.ID, found.ID)

	_, err = store.FindDivisionByExternalID(ctx, 10, 20, 2)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestUpsertRegion_sameSlug(t *testing.T) {
	store := freshStore(t)
	ctx := context.Background()

	first, err := store.UpsertRegion(ctx, "North East")
	require.NoError(t, err)
	second, err := store.UpsertRegion(ctx, "North-East")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "North East", second.Name)

	found, err := store.FindRegionBySlug(ctx, "north-east")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

func TestUpsertSeason_singleCurrent(t *testing.T) {
	store := freshStore(t)
	ctx := context.Background()

	_, err := store.UpsertSeason(ctx, interfaces.SeasonInput{ExternalID: 31, Name: "Summer 2025", IsCurrent: true})
	require.NoError(t, err)
	_, err = store.UpsertSeason(ctx, interfaces.SeasonInput{ExternalID: 32, Name: "2025/26", IsCurrent: true})
	require.NoError(t, err)

	old, err := store.FindSeasonByExternalID(ctx, 31)
	require.NoError(t, err)
	assert.False(t, old.IsCurrent)
	cur, err := store.FindSeasonByExternalID(ctx, 32)
	require.NoError(t, err)
	assert.True(t, cur.IsCurrent)
}

func TestUpsertTeam(t *testing.T) {
	store := freshStore(t)
	ctx := context.Background()

	keyed, err := store.UpsertTeam(ctx, interfaces.TeamInput{ExternalID: ext(11), Name: "Aces"})
	require.NoError(t, err)
	renamed, err := store.UpsertTeam(ctx, interfaces.TeamInput{ExternalID: ext(11), Name: "Aces Netball"})
	require.NoError(t, err)
	assert.Equal(t, keyed.ID, renamed.ID)
	assert.Equal(t, "Aces Netball", renamed.Name)

	byName, err := store.UpsertTeam(ctx, interfaces.TeamInput{Name: "Aces Netball"})
	require.NoError(t, err)
	assert.Equal(t, keyed.ID, byName.ID)

	unknown, err := store.UpsertTeam(ctx, interfaces.TeamInput{Name: "Walk-ins"})
	require.NoError(t, err)
	assert.NotEqual(t, keyed.ID, unknown.ID)
	assert.Nil(t, unknown.ExternalTeamID)
}

func TestRunInTransaction_rollsBackStandings(t *testing.T) {
	store := freshStore(t)
	ctx := context.Background()
	division := seedDivision(t, store)

	aces, err := store.UpsertTeam(ctx, interfaces.TeamInput{ExternalID: ext(11), Name: "Aces"})
	require.NoError(t, err)
	_, err = store.UpsertStanding(ctx, &model.Standing{TeamID: aces.ID, DivisionID: division.ID, Position: 1, TotalPoints: 9})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.RunInTransaction(ctx, func(tx interfaces.LeagueStore) error {
		if err := tx.DeleteStandingsByDivision(ctx, division.ID); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	rows, err := NewQueryRepository(testDB).ListStandings(ctx, division.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Aces", rows[0].TeamName)
	assert.Equal(t, 9, rows[0].TotalPoints)
}

func TestFixtures(t *testing.T) {
	store := freshStore(t)
	ctx := context.Background()
	division := seedDivision(t, store)

	aces, err := store.UpsertTeam(ctx, interfaces.TeamInput{ExternalID: ext(11), Name: "Aces"})
	require.NoError(t, err)
	comets, err := store.UpsertTeam(ctx, interfaces.TeamInput{ExternalID: ext(13), Name: "Comets"})
	require.NoError(t, err)

	// a team page guessed Aces at home
	guessed, err := store.UpsertFixture(ctx, &model.Fixture{
		DivisionID: division.ID, HomeTeamID: aces.ID, AwayTeamID: comets.ID,
		MatchDate: date("2026-02-09"), VenueVerified: false,
	})
	require.NoError(t, err)
	assert.Equal(t, model.FixtureScheduled, guessed.Status)

	found, err := store.FindFixtureByTeamsAndDate(ctx, comets.ID, aces.ID, date("2026-02-09"))
	require.NoError(t, err)
	assert.Equal(t, guessed.ID, found.ID)

	// the division page says Comets were at home
	verified, err := store.UpsertFixture(ctx, &model.Fixture{
		DivisionID: division.ID, HomeTeamID: comets.ID, AwayTeamID: aces.ID,
		MatchDate: date("2026-02-09"), VenueVerified: true,
		HomeScore: intp(10), AwayScore: intp(7),
	})
	require.NoError(t, err)
	assert.Equal(t, model.FixtureCompleted, verified.Status)

	found, err = store.FindFixtureByTeamsAndDate(ctx, aces.ID, comets.ID, date("2026-02-09"))
	require.NoError(t, err)
	assert.Equal(t, verified.ID, found.ID)

	var count int64
	require.NoError(t, testDB.Model(&model.Fixture{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, store.UpdateFixtureScore(ctx, verified.ID, nil, nil, false))
	found, err = store.FindFixtureByTeamsAndDate(ctx, aces.ID, comets.ID, date("2026-02-09"))
	require.NoError(t, err)
	assert.Equal(t, model.FixtureScheduled, found.Status)

	assert.ErrorIs(t, store.UpdateFixtureScore(ctx, 999, intp(1), intp(0), false), interfaces.ErrNotFound)
	assert.ErrorIs(t, store.UpdateLastScraped(ctx, 999, time.Now()), interfaces.ErrNotFound)
}

func TestPlayersAndAwards(t *testing.T) {
	store := freshStore(t)
	ctx := context.Background()
	division := seedDivision(t, store)
	aces, err := store.UpsertTeam(ctx, interfaces.TeamInput{ExternalID: ext(11), Name: "Aces"})
	require.NoError(t, err)

	sam, err := store.UpsertPlayer(ctx, interfaces.PlayerInput{ExternalID: ext(501), Name: "Sam Smith", TeamID: aces.ID})
	require.NoError(t, err)
	jo, err := store.UpsertPlayer(ctx, interfaces.PlayerInput{Name: "Jo Bloggs", TeamID: aces.ID})
	require.NoError(t, err)
	joAgain, err := store.UpsertPlayer(ctx, interfaces.PlayerInput{Name: "Jo Bloggs", TeamID: aces.ID})
	require.NoError(t, err)
	assert.Equal(t, jo.ID, joAgain.ID)
	assert.NotEqual(t, sam.ID, jo.ID)

	award := func(count int) *model.PlayerAward {
		return &model.PlayerAward{PlayerID: sam.ID, TeamID: aces.ID, DivisionID: division.ID, AwardType: "Player of the Match", AwardCount: count}
	}
	first, err := store.UpsertPlayerAward(ctx, award(1))
	require.NoError(t, err)
	second, err := store.UpsertPlayerAward(ctx, award(3))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, second.AwardCount)
}

func TestQueryRepository(t *testing.T) {
	store := freshStore(t)
	ctx := context.Background()
	division := seedDivision(t, store)
	queries := NewQueryRepository(testDB)

	other, err := store.UpsertRegion(ctx, "Other")
	require.NoError(t, err)
	_, err = store.UpsertLeague(ctx, 11, "Leeds Monday League", other.ID, 7)
	require.NoError(t, err)

	leagues, total, err := queries.ListLeagues(ctx, LeagueFilter{RegionSlug: "london"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, leagues, 1)
	assert.Equal(t, "London", leagues[0].RegionName)

	// only the London league has a division in season 20
	_, total, err = queries.ListLeagues(ctx, LeagueFilter{SeasonExternalID: 20}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	aces, err := store.UpsertTeam(ctx, interfaces.TeamInput{ExternalID: ext(11), Name: "Aces"})
	require.NoError(t, err)
	blazers, err := store.UpsertTeam(ctx, interfaces.TeamInput{ExternalID: ext(12), Name: "Blazers"})
	require.NoError(t, err)
	for _, f := range []model.Fixture{
		{DivisionID: division.ID, HomeTeamID: aces.ID, AwayTeamID: blazers.ID, MatchDate: date("2026-01-12"), HomeScore: intp(12), AwayScore: intp(8), VenueVerified: true},
		{DivisionID: division.ID, HomeTeamID: blazers.ID, AwayTeamID: aces.ID, MatchDate: date("2026-01-26"), VenueVerified: true},
	} {
		f := f
		_, err := store.UpsertFixture(ctx, &f)
		require.NoError(t, err)
	}

	rows, total, err := queries.ListFixtures(ctx, division.ID, FixtureFilter{Status: "completed"}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Aces", rows[0].HomeTeamName)
	assert.Equal(t, "Blazers", rows[0].AwayTeamName)

	_, total, err = queries.ListFixtures(ctx, division.ID, FixtureFilter{TeamID: blazers.ID}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, err = queries.GetDivision(ctx, 999)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	started := time.Now().Add(-time.Minute).UTC().Truncate(time.Millisecond)
	for i, kind := range []string{"full", "division"} {
		require.NoError(t, store.SaveSyncRun(ctx, &model.SyncRun{
			RunUUID:    fmt.Sprintf("run-%d", i),
			Kind:       kind,
			Success:    true,
			StartedAt:  started.Add(time.Duration(i) * time.Second),
			FinishedAt: started.Add(time.Duration(i)*time.Second + 500*time.Millisecond),
			DurationMs: 500,
			Counts:     datatypes.JSON(`{"divisions":1}`),
			Errors:     datatypes.JSON(`[]`),
		}))
	}
	runs, err := queries.ListSyncRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-1", runs[0].RunUUID)
}
