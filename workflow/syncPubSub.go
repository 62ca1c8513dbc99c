package workflow

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/agencyhub/marketing_backend/config"
	"github.com/agencyhub/marketing_backend/models"
	"github.com/gin-gonic/gin"
)

type SyncRequest struct {
	AgencyId int `json:"agency_id"`
	RunId    int `json:"run_id"`
}

type pubSubPushEnvelope struct {
	Message struct {
		Data      []byte `json:"data"`
		MessageId string `json:"messageId"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

func syncTopic() string {
	if v := strings.TrimSpace(os.Getenv("SYNC_TOPIC")); v != "" {
		return v
	}
	return "agency-sync"
}

// PublishSyncRequest queues a run and hands it to the Pub/Sub worker.
func PublishSyncRequest(ctx context.Context, agencyId int, syncers []SourceSyncer) (*models.SyncRun, error) {
	run, err := models.QueueSyncRun(ctx, agencyId, models.SyncTriggeredPubSub, sourceNames(syncers))
	if err != nil {
		return nil, err
	}
	if _, err := config.PublishJSON(ctx, syncTopic(), SyncRequest{AgencyId: agencyId, RunId: run.ID}); err != nil {
		_ = models.FinishSyncRun(ctx, run, models.SyncRunStatusFailed, map[string]int{})
		return nil, err
	}
	return run, nil
}

func decodeSyncRequest(body []byte) (SyncRequest, bool) {
	var envelope pubSubPushEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return SyncRequest{}, false
	}
	var req SyncRequest
	if err := json.Unmarshal(envelope.Message.Data, &req); err != nil {
		return SyncRequest{}, false
	}
	if req.AgencyId <= 0 || req.RunId <= 0 {
		return SyncRequest{}, false
	}
	return req, true
}

// SyncPushHandler always answers 204 so Pub/Sub does not redeliver; failures are kept on the run.
func SyncPushHandler(syncers func() []SourceSyncer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !config.EnvBoolDefault("ENABLE_SYNC_PUSH_ENDPOINT", true) {
			c.Status(204)
			return
		}
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(204)
			return
		}
		req, ok := decodeSyncRequest(body)
		if !ok {
			c.Status(204)
			return
		}
		if _, err := ProcessQueuedRun(c.Request.Context(), req.AgencyId, req.RunId, syncers()); err != nil {
			config.LogError(config.GetLogger(), "workflow", "SyncPushHandler", "process run", req, err)
		}
		c.Status(204)
	}
}
