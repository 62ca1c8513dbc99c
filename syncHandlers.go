package main

import (
	"net/http"

	"github.com/agencyhub/marketing_backend/config"
	"github.com/agencyhub/marketing_backend/middlewares"
	"github.com/agencyhub/marketing_backend/models"
	"github.com/agencyhub/marketing_backend/models/reports"
	"github.com/agencyhub/marketing_backend/utils"
	"github.com/agencyhub/marketing_backend/workflow"
	"github.com/gin-gonic/gin"
)

// startSyncHandler runs every source inline, or queues the run on pubsub when async sync is on.
func startSyncHandler(syncers func() []workflow.SourceSyncer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		agencyId := middlewares.AgencyId(c)
		if config.AsyncSyncEnabled() {
			run, err := workflow.PublishSyncRequest(ctx, agencyId, syncers())
			if err != nil {
				middlewares.RespondError(c, err)
				return
			}
			c.JSON(http.StatusAccepted, run)
			return
		}
		run, err := workflow.RunAgencySync(ctx, agencyId, models.SyncTriggeredManual, syncers())
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, run)
	}
}

func listSyncRunsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, ok := queryInt(c, "limit")
		if !ok {
			return
		}
		runs, err := models.ListSyncRuns(c.Request.Context(), middlewares.AgencyId(c), limit)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, runs)
	}
}

func getSyncRunHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middlewares.ParamInt(c, "id")
		if !ok {
			return
		}
		run, err := models.GetSyncRun(c.Request.Context(), middlewares.AgencyId(c), id)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, run)
	}
}

func listSyncErrorsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middlewares.ParamInt(c, "id")
		if !ok {
			return
		}
		errs, err := models.ListSyncErrors(c.Request.Context(), middlewares.AgencyId(c), id)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, errs)
	}
}

func adminOverviewHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		overview, err := reports.GetAdminOverview(c.Request.Context())
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, overview)
	}
}

func adminConnectionCustomersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middlewares.ParamInt(c, "id")
		if !ok {
			return
		}
		conn, err := models.GetAccountingConnectionById(c.Request.Context(), id)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		ctx := utils.SystemContext(c.Request.Context(), conn.AgencyId)
		customers, err := models.ListCustomers(ctx, conn.AgencyId, conn.ID)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, customers)
	}
}
