package reports

import (
	"context"
	"time"

	"github.com/agencyhub/marketing_backend/config"
	"github.com/agencyhub/marketing_backend/models"
)

// DBAnalysisSource reads agency records through the models package.
type DBAnalysisSource struct{}

func (DBAnalysisSource) AgencyExists(ctx context.Context, agencyId int) (bool, error) {
	return models.AgencyExists(ctx, agencyId)
}

func (DBAnalysisSource) AccountingCustomers(ctx context.Context, agencyId int) ([]*models.Customer, error) {
	return models.ListCustomers(ctx, agencyId, 0)
}

func (DBAnalysisSource) ManualEntries(ctx context.Context, agencyId int) ([]*models.ManualEntry, error) {
	return models.ListManualEntries(ctx, agencyId)
}

func (DBAnalysisSource) BankTransactions(ctx context.Context, agencyId int) ([]*models.BankTransaction, error) {
	return models.SearchBankTransactions(ctx, agencyId, models.BankTransactionFilter{})
}

func (DBAnalysisSource) AdCampaigns(ctx context.Context, agencyId int) ([]*models.GoogleAdsCampaign, error) {
	return models.ListCampaigns(ctx, agencyId, 0)
}

func (DBAnalysisSource) CountMailSince(ctx context.Context, agencyId int, since time.Time) (int64, error) {
	return models.CountEmailsSince(ctx, agencyId, since)
}

// GetAgencyAnalysis runs the aggregation against the database, served from cache when enabled.
// Results with failed sources are never cached.
func GetAgencyAnalysis(ctx context.Context, agencyId int) (*AnalysisSummary, error) {
	key := reportCacheKey("AgencyAnalysis", agencyId)
	useCache := reportCacheEnabled()
	var version string
	if useCache {
		var hit AnalysisSummary
		if ok, err := cacheGet(key, &hit); err == nil && ok {
			return &hit, nil
		}
		var err error
		if version, err = cacheVersion(agencyId); err != nil {
			useCache = false
		}
	}

	started := time.Now()
	summary, err := NewAnalyzer(DBAnalysisSource{}).Analyze(ctx, agencyId)
	logSlowReport(ctx, "AgencyAnalysis", agencyId, started)
	if err != nil {
		return nil, err
	}
	if useCache && len(summary.Failures) == 0 {
		if err := cacheSet(agencyId, version, key, summary, reportCacheTTL()); err != nil {
			config.LogError(config.GetLogger(), "reports", "GetAgencyAnalysis", "cache set", key, err)
		}
	}
	return summary, nil
}

// SaveAnalysisSnapshot stores the current aggregation as a DataAnalysis row.
func SaveAnalysisSnapshot(ctx context.Context, agencyId int) (*models.DataAnalysis, error) {
	summary, err := NewAnalyzer(DBAnalysisSource{}).Analyze(ctx, agencyId)
	if err != nil {
		return nil, err
	}
	return models.SaveDataAnalysis(ctx, agencyId, models.DataAnalysisTypeSummary, summary)
}
