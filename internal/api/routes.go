package api

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the sync triggers and the read endpoints on r.
func RegisterRoutes(r gin.IRouter, syncHandler *SyncHandler, leagueHandler *LeagueHandler) {
	r.POST("/sync/full", syncHandler.FullSyncHandler)
	r.POST("/sync/division", syncHandler.DivisionSyncHandler)
	r.POST("/sync/team/:team_id", syncHandler.TeamSyncHandler)

	if leagueHandler == nil {
		return
	}
	r.GET("/api/leagues", leagueHandler.ListLeagues)
	r.GET("/api/divisions/:id/standings", leagueHandler.ListStandings)
	r.GET("/api/divisions/:id/fixtures", leagueHandler.ListFixtures)
	r.GET("/api/sync/runs", leagueHandler.ListSyncRuns)
}
