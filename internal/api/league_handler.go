package api

import (
	"errors"
	"net/http"
	"strconv"

	"LeagueSync/internal/repository"
	"LeagueSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LeagueHandler serves the stored league data.
type LeagueHandler struct {
	queryService *service.QueryService
	logger       *logrus.Logger
}

func NewLeagueHandler(queryService *service.QueryService, logger *logrus.Logger) *LeagueHandler {
	return &LeagueHandler{
		queryService: queryService,
		logger:       logger,
	}
}

// ListLeagues
// GET /api/leagues?region=london&season=32&page=1&page_size=20
func (h *LeagueHandler) ListLeagues(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	season, _ := strconv.ParseInt(c.Query("season"), 10, 64)

	filter := repository.LeagueFilter{
		RegionSlug:       c.Query("region"),
		SeasonExternalID: season,
	}

	result, err := h.queryService.ListLeagues(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		h.logger.WithError(err).Error("ListLeagues failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListStandings
// GET /api/divisions/:id/standings
func (h *LeagueHandler) ListStandings(c *gin.Context) {
	divisionID, ok := h.divisionID(c)
	if !ok {
		return
	}
	rows, err := h.queryService.ListStandings(c.Request.Context(), divisionID)
	if err != nil {
		h.fail(c, "ListStandings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"division_id": divisionID, "standings": rows})
}

// ListFixtures
// GET /api/divisions/:id/fixtures?status=completed&team=12&page=1&page_size=50
func (h *LeagueHandler) ListFixtures(c *gin.Context) {
	divisionID, ok := h.divisionID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	team, _ := strconv.ParseUint(c.Query("team"), 10, 64)

	filter := repository.FixtureFilter{Status: c.Query("status"), TeamID: team}
	result, err := h.queryService.ListFixtures(c.Request.Context(), divisionID, filter, page, pageSize)
	if err != nil {
		h.fail(c, "ListFixtures", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListSyncRuns
// GET /api/sync/runs?limit=20
func (h *LeagueHandler) ListSyncRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := h.queryService.ListSyncRuns(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, "ListSyncRuns", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (h *LeagueHandler) divisionID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "division id must be a positive integer"})
		return 0, false
	}
	return id, true
}

func (h *LeagueHandler) fail(c *gin.Context, op string, err error) {
	if errors.Is(err, service.ErrDivisionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	h.logger.WithError(err).Error(op + " failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
