package models

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/agencyhub/marketing_backend/config"
)

const (
	SyncRunStatusQueued  = "queued"
	SyncRunStatusRunning = "running"
	SyncRunStatusSuccess = "success"
	SyncRunStatusFailed  = "failed"
	SyncRunStatusPartial = "partial"
)

const (
	SyncTriggeredManual = "manual"
	SyncTriggeredPubSub = "pubsub"
	SyncTriggeredSystem = "system"
)

type SyncRun struct {
	ID            int        `gorm:"primary_key" json:"id"`
	AgencyId      int        `gorm:"index;not null" json:"agency_id"`
	Status        string     `gorm:"size:20;not null" json:"status"`
	TriggeredBy   string     `gorm:"size:20" json:"triggered_by"`
	SourcesJSON   []byte     `gorm:"type:json" json:"-"`
	StatsJSON     []byte     `gorm:"type:json" json:"-"`
	RecordsSynced int        `json:"records_synced"`
	ErrorCount    int        `json:"error_count"`
	StartedAt     *time.Time `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at"`
	DurationMs    int64      `json:"duration_ms"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Sources []string       `gorm:"-" json:"sources"`
	Stats   map[string]int `gorm:"-" json:"stats"`
	Errors  []*SyncError   `gorm:"foreignKey:SyncRunId" json:"errors,omitempty"`
}

type SyncError struct {
	ID        int       `gorm:"primary_key" json:"id"`
	SyncRunId int       `gorm:"index;not null" json:"sync_run_id"`
	AgencyId  int       `gorm:"index;not null" json:"agency_id"`
	Source    string    `gorm:"size:50" json:"source"`
	Op        string    `gorm:"size:64" json:"op"`
	Message   string    `gorm:"type:text" json:"message"`
	Retryable bool      `gorm:"default:false" json:"retryable"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *SyncRun) decode() {
	if len(r.SourcesJSON) > 0 {
		_ = json.Unmarshal(r.SourcesJSON, &r.Sources)
	}
	if len(r.StatsJSON) > 0 {
		_ = json.Unmarshal(r.StatsJSON, &r.Stats)
	}
}

func CreateSyncRun(ctx context.Context, agencyId int, triggeredBy string, sources []string) (*SyncRun, error) {
	return createSyncRun(ctx, agencyId, triggeredBy, sources, SyncRunStatusRunning)
}

// QueueSyncRun records a run that a Pub/Sub worker picks up later.
func QueueSyncRun(ctx context.Context, agencyId int, triggeredBy string, sources []string) (*SyncRun, error) {
	return createSyncRun(ctx, agencyId, triggeredBy, sources, SyncRunStatusQueued)
}

func createSyncRun(ctx context.Context, agencyId int, triggeredBy string, sources []string, status string) (*SyncRun, error) {
	if agencyId <= 0 {
		return nil, invalidInput("agency id is required")
	}
	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return nil, err
	}
	run := SyncRun{
		AgencyId:    agencyId,
		Status:      status,
		TriggeredBy: triggeredBy,
		SourcesJSON: sourcesJSON,
		Sources:     sources,
	}
	if status == SyncRunStatusRunning {
		now := time.Now().UTC()
		run.StartedAt = &now
	}
	if err := config.GetDB().WithContext(ctx).Create(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// StartSyncRun moves a queued run to running.
func StartSyncRun(ctx context.Context, run *SyncRun) error {
	now := time.Now().UTC()
	if err := config.GetDB().WithContext(ctx).Model(&SyncRun{}).
		Where("id = ? AND agency_id = ?", run.ID, run.AgencyId).
		Updates(map[string]interface{}{"status": SyncRunStatusRunning, "started_at": now}).Error; err != nil {
		return err
	}
	run.Status = SyncRunStatusRunning
	run.StartedAt = &now
	return nil
}

// IsFinished reports whether the run reached a terminal status.
func (r *SyncRun) IsFinished() bool {
	return r.Status == SyncRunStatusSuccess || r.Status == SyncRunStatusFailed || r.Status == SyncRunStatusPartial
}

// AddSyncError records one failed source of a run.
func AddSyncError(ctx context.Context, run *SyncRun, err error) (*SyncError, error) {
	row := SyncError{
		SyncRunId: run.ID,
		AgencyId:  run.AgencyId,
		Message:   err.Error(),
	}
	var ae *AdapterError
	if errors.As(err, &ae) {
		row.Source = ae.Source
		row.Op = ae.Op
		row.Retryable = ae.Retryable
		if ae.Err != nil {
			row.Message = ae.Err.Error()
		}
	}
	if dbErr := config.GetDB().WithContext(ctx).Create(&row).Error; dbErr != nil {
		return nil, dbErr
	}
	run.Errors = append(run.Errors, &row)
	return &row, nil
}

// FinishSyncRun sets status, counters and duration.
func FinishSyncRun(ctx context.Context, run *SyncRun, status string, stats map[string]int) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	records := 0
	for _, n := range stats {
		records += n
	}
	finished := time.Now().UTC()
	var duration int64
	if run.StartedAt != nil {
		duration = finished.Sub(*run.StartedAt).Milliseconds()
	}
	updates := map[string]interface{}{
		"status":         status,
		"stats_json":     statsJSON,
		"records_synced": records,
		"error_count":    len(run.Errors),
		"finished_at":    finished,
		"duration_ms":    duration,
	}
	if err := config.GetDB().WithContext(ctx).Model(&SyncRun{}).
		Where("id = ? AND agency_id = ?", run.ID, run.AgencyId).Updates(updates).Error; err != nil {
		return err
	}
	run.Status = status
	run.StatsJSON = statsJSON
	run.Stats = stats
	run.RecordsSynced = records
	run.ErrorCount = len(run.Errors)
	run.FinishedAt = &finished
	run.DurationMs = duration
	return nil
}

func GetSyncRun(ctx context.Context, agencyId int, id int) (*SyncRun, error) {
	result, err := fetchOwned[SyncRun](ctx, agencyId, id, "sync run", "Errors")
	if err != nil {
		return nil, err
	}
	result.decode()
	return result, nil
}

func ListSyncRuns(ctx context.Context, agencyId int, limit int) ([]*SyncRun, error) {
	if limit <= 0 {
		limit = config.SearchLimit
	}
	var results []*SyncRun
	if err := config.GetDB().WithContext(ctx).Where("agency_id = ?", agencyId).
		Order("id DESC").Limit(limit).Find(&results).Error; err != nil {
		return nil, err
	}
	for _, r := range results {
		r.decode()
	}
	return results, nil
}

func ListSyncErrors(ctx context.Context, agencyId int, runId int) ([]*SyncError, error) {
	var results []*SyncError
	if err := config.GetDB().WithContext(ctx).Where("agency_id = ? AND sync_run_id = ?", agencyId, runId).
		Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
