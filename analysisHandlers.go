package main

import (
	"net/http"
	"strconv"

	"github.com/agencyhub/marketing_backend/middlewares"
	"github.com/agencyhub/marketing_backend/models"
	"github.com/agencyhub/marketing_backend/models/reports"
	"github.com/agencyhub/marketing_backend/utils"
	"github.com/gin-gonic/gin"
)

func dashboardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := reports.GetAgencyAnalysis(c.Request.Context(), middlewares.AgencyId(c))
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

// agencyAnalysisHandler lets admins read any agency; everyone else only their own.
func agencyAnalysisHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middlewares.ParamInt(c, "agency_id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		isAdmin, _ := utils.GetIsAdminFromContext(ctx)
		if !isAdmin && id != middlewares.AgencyId(c) {
			middlewares.RespondError(c, utils.ErrorUnauthorized)
			return
		}
		if isAdmin {
			ctx = utils.SystemContext(ctx, id)
		}
		summary, err := reports.GetAgencyAnalysis(ctx, id)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

func saveSnapshotHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		snapshot, err := reports.SaveAnalysisSnapshot(c.Request.Context(), middlewares.AgencyId(c))
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, snapshot)
	}
}

func listSnapshotsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		snapshots, err := models.ListDataAnalyses(c.Request.Context(), middlewares.AgencyId(c), c.Query("type"), limit)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, snapshots)
	}
}

func visualizeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := reports.GetVisualization(c.Request.Context(), middlewares.AgencyId(c))
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}
