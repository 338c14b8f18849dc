package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"LeagueSync/internal/adapter/mockadapter"
	"LeagueSync/internal/config"
	"LeagueSync/internal/interfaces"
	"LeagueSync/internal/model"
	"LeagueSync/internal/repository"
	"LeagueSync/internal/service"
	"LeagueSync/internal/testutils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type queryRepoMock struct {
	mock.Mock
}

func (m *queryRepoMock) ListRegions(ctx context.Context) ([]*model.Region, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).([]*model.Region)
	return r, args.Error(1)
}

func (m *queryRepoMock) ListLeagues(ctx context.Context, filter repository.LeagueFilter, page, pageSize int) ([]*repository.LeagueView, int64, error) {
	args := m.Called(ctx, filter, page, pageSize)
	r, _ := args.Get(0).([]*repository.LeagueView)
	return r, args.Get(1).(int64), args.Error(2)
}

func (m *queryRepoMock) ListDivisions(ctx context.Context, leagueID uint64) ([]*model.Division, error) {
	args := m.Called(ctx, leagueID)
	r, _ := args.Get(0).([]*model.Division)
	return r, args.Error(1)
}

func (m *queryRepoMock) GetDivision(ctx context.Context, id uint64) (*model.Division, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*model.Division)
	return r, args.Error(1)
}

func (m *queryRepoMock) ListStandings(ctx context.Context, divisionID uint64) ([]*repository.StandingView, error) {
	args := m.Called(ctx, divisionID)
	r, _ := args.Get(0).([]*repository.StandingView)
	return r, args.Error(1)
}

func (m *queryRepoMock) ListFixtures(ctx context.Context, divisionID uint64, filter repository.FixtureFilter, page, pageSize int) ([]*repository.FixtureView, int64, error) {
	args := m.Called(ctx, divisionID, filter, page, pageSize)
	r, _ := args.Get(0).([]*repository.FixtureView)
	return r, args.Get(1).(int64), args.Error(2)
}

func (m *queryRepoMock) ListSyncRuns(ctx context.Context, limit int) ([]*model.SyncRun, error) {
	args := m.Called(ctx, limit)
	r, _ := args.Get(0).([]*model.SyncRun)
	return r, args.Error(1)
}

type testServer struct {
	router *gin.Engine
	source *mockadapter.Source
	store  *testutils.MemStore
	repo   *queryRepoMock
	guard  *service.RunGuard
}

func newTestServer() *testServer {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ts := &testServer{
		router: gin.New(),
		source: &mockadapter.Source{},
		store:  testutils.NewMemStore(),
		repo:   &queryRepoMock{},
		guard:  &service.RunGuard{},
	}
	syncService := service.NewSyncService(ts.source, ts.store, config.SyncConfig{}, logger)
	RegisterRoutes(ts.router,
		NewSyncHandler(syncService, ts.guard, logger),
		NewLeagueHandler(service.NewQueryService(ts.repo, logger), logger),
	)
	return ts
}

func (ts *testServer) do(method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestFullSyncHandler(t *testing.T) {
	ts := newTestServer()
	ts.source.On("FetchLeagueList", mock.Anything).Return(nil, errors.New("fetch league list: timeout"))

	w := ts.do(http.MethodPost, "/sync/full")

	// an unsuccessful run is still a 200 with the failure summary
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "full", body["kind"])
	assert.Len(t, body["errors"], 1)
	assert.False(t, ts.guard.Running())
}

func TestSyncHandlers_conflictWhileRunning(t *testing.T) {
	ts := newTestServer()
	require.True(t, ts.guard.TryAcquire())
	defer ts.guard.Release()

	for _, target := range []string{
		"/sync/full",
		"/sync/division?league=1&season=2&division=3",
		"/sync/team/11",
	} {
		w := ts.do(http.MethodPost, target)
		assert.Equal(t, http.StatusConflict, w.Code, target)
	}
	ts.source.AssertNotCalled(t, "FetchLeagueList", mock.Anything)
}

func TestDivisionSyncHandler(t *testing.T) {
	ts := newTestServer()

	w := ts.do(http.MethodPost, "/sync/division?league=1&season=x&division=3")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/sync/division?league=1&season=2&division=3")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decode(t, w)["error"], "division not found")

	// store division 1/2/3, then make its standings page fail
	item := model.ScrapedLeagueListItem{
		RegionName: "London", LeagueExternalID: 1, LeagueName: "London League",
		SeasonExternalID: 2, SeasonName: "2025/26", DivisionExternalID: 3, DivisionName: "Division 1",
	}
	ts.source.On("FetchLeagueList", mock.Anything).Return(&model.ScrapedLeagueList{
		Items:   []model.ScrapedLeagueListItem{item},
		Regions: []string{"London"},
		Seasons: map[int64]string{2: "2025/26"},
	}, nil)
	ts.source.On("FetchStandings", mock.Anything, item.Ref()).Return([]model.ScrapedStanding{}, nil).Once()
	ts.source.On("FetchStandings", mock.Anything, item.Ref()).Return(nil, errors.New("upstream returned 500"))
	ts.source.On("FetchFixtures", mock.Anything, item.Ref()).Return(nil, nil)
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/sync/full").Code)

	w = ts.do(http.MethodPost, "/sync/division?league=1&season=2&division=3")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Contains(t, body["error"], "upstream returned 500")
	require.IsType(t, map[string]interface{}{}, body["result"])
	assert.Equal(t, false, body["result"].(map[string]interface{})["success"])
}

func TestTeamSyncHandler(t *testing.T) {
	ts := newTestServer()

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/sync/team/abc").Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/sync/team/0").Code)

	ts.source.On("FetchTeamProfile", mock.Anything, int64(404)).Return(nil, errors.New("fetch team 404: status 404"))
	assert.Equal(t, http.StatusInternalServerError, ts.do(http.MethodPost, "/sync/team/404").Code)

	ts.source.On("FetchTeamProfile", mock.Anything, int64(11)).Return(&model.ScrapedTeamProfile{TeamExternalID: 11, TeamName: "Aces"}, nil)
	w := ts.do(http.MethodPost, "/sync/team/11")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Aces", decode(t, w)["team_name"])
	assert.False(t, ts.guard.Running())
}

func TestListLeagues(t *testing.T) {
	ts := newTestServer()
	ts.repo.On("ListLeagues", mock.Anything, repository.LeagueFilter{RegionSlug: "london", SeasonExternalID: 32}, 2, 5).
		Return([]*repository.LeagueView{{ID: 1, ExternalLeagueID: 101, Name: "London Thursday League", RegionName: "London"}}, int64(6), nil)

	w := ts.do(http.MethodGet, "/api/leagues?region=london&season=32&page=2&page_size=5")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(6), body["total"])
	items := body["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "London Thursday League", items[0].(map[string]interface{})["name"])

	ts.repo.On("ListLeagues", mock.Anything, repository.LeagueFilter{}, 1, 20).Return(nil, int64(0), errors.New("db down"))
	assert.Equal(t, http.StatusInternalServerError, ts.do(http.MethodGet, "/api/leagues").Code)
}

func TestListStandings(t *testing.T) {
	ts := newTestServer()
	ts.repo.On("GetDivision", mock.Anything, uint64(9)).Return(nil, interfaces.ErrNotFound)
	ts.repo.On("GetDivision", mock.Anything, uint64(4)).Return(&model.Division{ID: 4}, nil)
	ts.repo.On("ListStandings", mock.Anything, uint64(4)).Return([]*repository.StandingView{
		{Standing: model.Standing{TeamID: 11, Position: 1, TotalPoints: 12}, TeamName: "Aces"},
	}, nil)

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/divisions/abc/standings").Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/divisions/9/standings").Code)

	w := ts.do(http.MethodGet, "/api/divisions/4/standings")
	require.Equal(t, http.StatusOK, w.Code)
	rows := decode(t, w)["standings"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, "Aces", rows[0].(map[string]interface{})["team_name"])
	assert.Equal(t, float64(12), rows[0].(map[string]interface{})["total_points"])
}

func TestListFixtures(t *testing.T) {
	ts := newTestServer()
	home, away := 12, 8
	ts.repo.On("GetDivision", mock.Anything, uint64(4)).Return(&model.Division{ID: 4}, nil)
	ts.repo.On("ListFixtures", mock.Anything, uint64(4), repository.FixtureFilter{Status: "completed", TeamID: 11}, 1, 20).
		Return([]*repository.FixtureView{{
			Fixture: model.Fixture{
				ID: 3, DivisionID: 4, HomeTeamID: 11, AwayTeamID: 12,
				MatchDate: time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC),
				HomeScore: &home, AwayScore: &away,
				Status: model.FixtureCompleted, VenueVerified: true,
			},
			HomeTeamName: "Aces",
			AwayTeamName: "Blazers",
		}}, int64(1), nil)

	w := ts.do(http.MethodGet, "/api/divisions/4/fixtures?status=completed&team=11")
	require.Equal(t, http.StatusOK, w.Code)
	items := decode(t, w)["items"].([]interface{})
	require.Len(t, items, 1)
	row := items[0].(map[string]interface{})
	assert.Equal(t, "2026-01-12", row["date"])
	assert.Equal(t, "Blazers", row["away_team_name"])
	assert.Equal(t, "completed", row["status"])
}

func TestListSyncRuns(t *testing.T) {
	ts := newTestServer()
	started := time.Date(2026, 1, 12, 6, 0, 0, 0, time.UTC)
	ts.repo.On("ListSyncRuns", mock.Anything, 5).Return([]*model.SyncRun{{
		RunUUID:    "run-1",
		Kind:       "full",
		Success:    true,
		StartedAt:  started,
		DurationMs: 1500,
		Counts:     datatypes.JSON(`{"divisions":3}`),
		Errors:     datatypes.JSON(`[]`),
	}}, nil)

	w := ts.do(http.MethodGet, "/api/sync/runs?limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	runs := decode(t, w)["runs"].([]interface{})
	require.Len(t, runs, 1)
	run := runs[0].(map[string]interface{})
	assert.Equal(t, "run-1", run["run_id"])
	assert.Equal(t, float64(started.UnixMilli()), run["started_at"])
	assert.Equal(t, map[string]interface{}{"divisions": float64(3)}, run["counts"])
}
