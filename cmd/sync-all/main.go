// sync-all runs one full source sync for every active agency, one agency at a time.
// Intended for a scheduled job; exits non-zero when any agency could not be synced.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/agencyhub/marketing_backend/config"
	"github.com/agencyhub/marketing_backend/mailsync"
	"github.com/agencyhub/marketing_backend/models"
	"github.com/agencyhub/marketing_backend/utils"
	"github.com/agencyhub/marketing_backend/workflow"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := config.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	agencies, err := models.ListAgencies(utils.SystemContext(ctx, 0))
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "agencies"}).Error("failed to list agencies: " + err.Error())
		os.Exit(1)
	}

	syncers := workflow.AgencySyncers(mailsync.NewService())
	failed := 0
	for _, agency := range agencies {
		if ctx.Err() != nil {
			break
		}
		if agency.IsActive != nil && !*agency.IsActive {
			continue
		}
		run, err := workflow.RunAgencySync(ctx, agency.ID, models.SyncTriggeredSystem, syncers)
		if err != nil {
			failed++
			logger.WithFields(logrus.Fields{"agency_id": agency.ID}).Error("sync failed: " + err.Error())
			continue
		}
		logger.WithFields(logrus.Fields{
			"agency_id": agency.ID,
			"run_id":    run.ID,
			"status":    run.Status,
		}).Info("sync finished")
	}
	if failed > 0 || ctx.Err() != nil {
		os.Exit(1)
	}
}
