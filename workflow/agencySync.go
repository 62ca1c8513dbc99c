package workflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/agencyhub/marketing_backend/config"
	"github.com/agencyhub/marketing_backend/models"
	"github.com/agencyhub/marketing_backend/utils"
	"github.com/sirupsen/logrus"
)

const agencySyncLock = "AgencySync"

// SourceSyncer pulls one external source of an agency into local storage.
type SourceSyncer interface {
	Name() string
	Sync(ctx context.Context, agencyId int) (int, error)
}

type sourceFailure struct {
	source string
	err    error
}

func sourceNames(syncers []SourceSyncer) []string {
	names := make([]string, 0, len(syncers))
	for _, s := range syncers {
		names = append(names, s.Name())
	}
	return names
}

// runSources calls every syncer in order. A failing source never stops the others.
func runSources(ctx context.Context, agencyId int, syncers []SourceSyncer) (map[string]int, []sourceFailure) {
	stats := make(map[string]int, len(syncers))
	var failures []sourceFailure
	for _, s := range syncers {
		if err := ctx.Err(); err != nil {
			failures = append(failures, sourceFailure{source: s.Name(), err: err})
			continue
		}
		n, err := s.Sync(ctx, agencyId)
		stats[s.Name()] += n
		if err != nil {
			failures = append(failures, sourceFailure{source: s.Name(), err: err})
		}
	}
	return stats, failures
}

// runStatus is success without failures, failed when failures left nothing synced, partial otherwise.
func runStatus(stats map[string]int, failures []sourceFailure) string {
	if len(failures) == 0 {
		return models.SyncRunStatusSuccess
	}
	for _, n := range stats {
		if n > 0 {
			return models.SyncRunStatusPartial
		}
	}
	return models.SyncRunStatusFailed
}

// RunAgencySync creates a run and executes it inline.
func RunAgencySync(ctx context.Context, agencyId int, triggeredBy string, syncers []SourceSyncer) (*models.SyncRun, error) {
	ctx = utils.SystemContext(ctx, agencyId)
	run, err := models.CreateSyncRun(ctx, agencyId, triggeredBy, sourceNames(syncers))
	if err != nil {
		return nil, err
	}
	if err := executeRun(ctx, run, syncers); err != nil {
		return run, err
	}
	return run, nil
}

// ProcessQueuedRun executes a queued run once; finished runs are left alone.
func ProcessQueuedRun(ctx context.Context, agencyId int, runId int, syncers []SourceSyncer) (*models.SyncRun, error) {
	ctx = utils.SystemContext(ctx, agencyId)
	run, err := models.GetSyncRun(ctx, agencyId, runId)
	if err != nil {
		return nil, err
	}
	if run.IsFinished() {
		return run, nil
	}
	if err := models.StartSyncRun(ctx, run); err != nil {
		return run, err
	}
	return run, executeRun(ctx, run, syncers)
}

func executeRun(ctx context.Context, run *models.SyncRun, syncers []SourceSyncer) error {
	logger := config.GetLogger()
	if config.GetRedisLock() != nil {
		lock, err := utils.ObtainLock(ctx, agencySyncLock, strconv.Itoa(run.AgencyId), 15*time.Minute, 0, "workflow", "RunAgencySync")
		if err != nil {
			_ = models.FinishSyncRun(ctx, run, models.SyncRunStatusFailed, map[string]int{})
			return err
		}
		defer lock.Release(context.WithoutCancel(ctx))
	}

	stats, failures := runSources(ctx, run.AgencyId, syncers)
	for _, f := range failures {
		err := f.err
		var ae *models.AdapterError
		if !errors.As(err, &ae) {
			err = models.NewAdapterError(f.source, "sync", err, false)
		}
		if _, dbErr := models.AddSyncError(ctx, run, err); dbErr != nil {
			config.LogError(logger, "workflow", "RunAgencySync", "add sync error", run.ID, dbErr)
		}
	}
	status := runStatus(stats, failures)
	if err := models.FinishSyncRun(ctx, run, status, stats); err != nil {
		return fmt.Errorf("finish sync run %d: %w", run.ID, err)
	}
	if err := models.InvalidateAgencyReports(run.AgencyId); err != nil {
		config.LogError(logger, "workflow", "RunAgencySync", "invalidate report cache", run.AgencyId, err)
	}
	logger.WithFields(logrus.Fields{
		"agency_id": run.AgencyId,
		"run_id":    run.ID,
		"status":    status,
		"records":   run.RecordsSynced,
		"errors":    run.ErrorCount,
	}).Info("agency sync finished")
	return nil
}
