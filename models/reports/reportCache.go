package reports

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agencyhub/marketing_backend/config"
	"github.com/agencyhub/marketing_backend/models"
	"github.com/agencyhub/marketing_backend/utils"
	"github.com/sirupsen/logrus"
)

func reportCacheEnabled() bool {
	return config.EnvBoolDefault("ENABLE_REPORT_CACHE", false)
}

func reportCacheTTL() time.Duration {
	// Env: REPORT_CACHE_TTL_SECONDS (default 120s)
	ttl := 120
	if v := strings.TrimSpace(os.Getenv("REPORT_CACHE_TTL_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = n
		}
	}
	return time.Duration(ttl) * time.Second
}

func reportSlowMs() int64 {
	// Env: REPORT_SLOW_MS (default 500ms)
	ms := int64(500)
	if v := strings.TrimSpace(os.Getenv("REPORT_SLOW_MS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			ms = n
		}
	}
	return ms
}

func logSlowReport(ctx context.Context, name string, agencyId int, started time.Time) {
	d := time.Since(started)
	if d.Milliseconds() < reportSlowMs() {
		return
	}
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	config.GetLogger().WithFields(logrus.Fields{
		"report":         name,
		"ms":             d.Milliseconds(),
		"agency_id":      agencyId,
		"correlation_id": cid,
	}).Warn("slow_report")
}

func reportCacheKey(name string, agencyId int, parts ...any) string {
	key := fmt.Sprintf("%s:%d", name, agencyId)
	for _, p := range parts {
		key += fmt.Sprintf(":%v", p)
	}
	return key
}

func cacheGet[T any](key string, dest *T) (bool, error) {
	return config.GetRedisObject(key, dest)
}

// cacheVersion must be read before the report is built so that cacheSet can detect
// an invalidation that happened while it was running.
func cacheVersion(agencyId int) (string, error) {
	return models.ReportCacheVersion(agencyId)
}

// cacheSet stores obj and registers key for invalidation on the next write to the agency.
// Nothing is stored when the agency was invalidated since version was read.
func cacheSet(agencyId int, version string, key string, obj any, ttl time.Duration) error {
	_, err := models.StoreReportCache(agencyId, version, key, obj, ttl)
	return err
}

// cached wraps a report builder with the optional redis cache.
func cached[T any](ctx context.Context, name string, agencyId int, key string, build func() (*T, error)) (*T, error) {
	started := time.Now()
	defer logSlowReport(ctx, name, agencyId, started)

	useCache := reportCacheEnabled()
	var version string
	if useCache {
		var hit T
		if ok, err := cacheGet(key, &hit); err == nil && ok {
			return &hit, nil
		}
		var err error
		if version, err = cacheVersion(agencyId); err != nil {
			useCache = false
		}
	}
	result, err := build()
	if err != nil {
		return nil, err
	}
	if useCache {
		if err := cacheSet(agencyId, version, key, result, reportCacheTTL()); err != nil {
			config.LogError(config.GetLogger(), "reports", name, "cache set", key, err)
		}
	}
	return result, nil
}
