package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"LeagueSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type SyncHandler struct {
	syncService *service.SyncService
	guard       *service.RunGuard
	logger      *logrus.Logger
}

func NewSyncHandler(syncService *service.SyncService, guard *service.RunGuard, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		guard:       guard,
		logger:      logger,
	}
}

// FullSyncHandler runs a full sync and returns its result, also when it was unsuccessful.
// @Router /sync/full [post]
func (h *SyncHandler) FullSyncHandler(c *gin.Context) {
	if !h.guard.TryAcquire() {
		c.JSON(http.StatusConflict, gin.H{"error": "a sync is already in progress"})
		return
	}
	defer h.guard.Release()

	result := h.syncService.RunFullSync(context.WithoutCancel(c.Request.Context()))
	c.JSON(http.StatusOK, result)
}

// DivisionSyncHandler resyncs one division by upstream ids.
// @Param league query int true "LeagueId"
// @Param season query int true "SeasonId"
// @Param division query int true "DivisionId"
// @Router /sync/division [post]
func (h *SyncHandler) DivisionSyncHandler(c *gin.Context) {
	league, errL := strconv.ParseInt(c.Query("league"), 10, 64)
	season, errS := strconv.ParseInt(c.Query("season"), 10, 64)
	division, errD := strconv.ParseInt(c.Query("division"), 10, 64)
	if errL != nil || errS != nil || errD != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "league, season and division must be numeric ids"})
		return
	}

	if !h.guard.TryAcquire() {
		c.JSON(http.StatusConflict, gin.H{"error": "a sync is already in progress"})
		return
	}
	defer h.guard.Release()

	result, err := h.syncService.SyncSingleDivision(context.WithoutCancel(c.Request.Context()), league, season, division)
	switch {
	case errors.Is(err, service.ErrDivisionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		h.logger.WithError(err).WithFields(logrus.Fields{
			"league":   league,
			"season":   season,
			"division": division,
		}).Error("division sync failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "result": result})
	default:
		c.JSON(http.StatusOK, result)
	}
}

// TeamSyncHandler merges one team's profile page.
// @Param team_id path int true "TeamId"
// @Router /sync/team/{team_id} [post]
func (h *SyncHandler) TeamSyncHandler(c *gin.Context) {
	teamID, err := strconv.ParseInt(c.Param("team_id"), 10, 64)
	if err != nil || teamID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "team_id must be a positive id"})
		return
	}

	if !h.guard.TryAcquire() {
		c.JSON(http.StatusConflict, gin.H{"error": "a sync is already in progress"})
		return
	}
	defer h.guard.Release()

	result, err := h.syncService.SyncTeamProfile(context.WithoutCancel(c.Request.Context()), teamID)
	if err != nil {
		h.logger.WithError(err).WithField("team_id", teamID).Error("team sync failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
