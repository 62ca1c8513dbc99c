package models

import (
	"fmt"
	"time"

	"github.com/agencyhub/marketing_backend/config"
)

/*
caches:
	ReportKeys:$agencyId -> set of cached report keys for the agency
	ReportVersion:$agencyId -> counter bumped on every invalidation
*/

func reportKeysSet(agencyId int) string {
	return fmt.Sprintf("ReportKeys:%d", agencyId)
}

func reportVersionKey(agencyId int) string {
	return fmt.Sprintf("ReportVersion:%d", agencyId)
}

// ReportCacheVersion is read before a report is built and handed back to StoreReportCache.
func ReportCacheVersion(agencyId int) (string, error) {
	v, _, err := config.GetRedisValue(reportVersionKey(agencyId))
	return v, err
}

// StoreReportCache caches obj under key unless the agency's reports were invalidated
// after version was read. The key is registered for the next invalidation in the same transaction.
func StoreReportCache(agencyId int, version string, key string, obj any, ttl time.Duration) (bool, error) {
	return config.SetRedisObjectIfUnchanged(reportVersionKey(agencyId), version, key, obj, ttl, reportKeysSet(agencyId))
}

// InvalidateAgencyReports drops every cached report of the agency.
func InvalidateAgencyReports(agencyId int) error {
	return invalidateAgencyReports(agencyId)
}

func invalidateAgencyReports(agencyId int) error {
	if agencyId <= 0 {
		return nil
	}
	if _, err := config.IncrRedisKey(reportVersionKey(agencyId)); err != nil {
		return err
	}
	keys, err := config.GetRedisSetMembers(reportKeysSet(agencyId))
	if err != nil {
		return err
	}
	keys = append(keys, reportKeysSet(agencyId))
	return config.RemoveRedisKey(keys...)
}

// afterWrite drops cached reports after a committed write. Failures are only logged.
func afterWrite(agencyId int, funcName string) {
	if err := invalidateAgencyReports(agencyId); err != nil {
		config.LogError(config.GetLogger(), "models", funcName, "invalidate report cache", agencyId, err)
	}
}
