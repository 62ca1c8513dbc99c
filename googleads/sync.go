package googleads

import (
	"context"
	"fmt"
	"io"

	"github.com/agencyhub/marketing_backend/apiclient"
	"github.com/agencyhub/marketing_backend/models"
	"github.com/agencyhub/marketing_backend/models/reports"
)

// Link checks that the refresh token can read the customer before storing the account.
func Link(ctx context.Context, agencyId int, input *LinkInput) (*models.GoogleAdsAccount, error) {
	client, err := NewClient(ctx, input.CustomerId, input.RefreshToken)
	if err != nil {
		return nil, err
	}
	customer, err := client.Customer(ctx)
	if err != nil {
		return nil, apiclient.Wrap(sourceName, "validate customer", err)
	}
	return models.LinkGoogleAdsAccount(ctx, agencyId, input.CustomerId, customer.DescriptiveName, input.RefreshToken)
}

func Unlink(ctx context.Context, agencyId int, id int) (*models.GoogleAdsAccount, error) {
	return models.UnlinkGoogleAdsAccount(ctx, agencyId, id)
}

// SyncAccount replaces the stored campaign figures with the last 30 days.
func SyncAccount(ctx context.Context, account *models.GoogleAdsAccount) (int, error) {
	client, err := NewClient(ctx, account.CustomerId, account.RefreshToken)
	if err != nil {
		return 0, apiclient.Wrap(sourceName, "config", err)
	}
	campaigns, err := client.Campaigns(ctx)
	if err != nil {
		return 0, apiclient.Wrap(sourceName, "campaigns", err)
	}
	return models.UpsertCampaigns(ctx, account, campaigns)
}

func SyncOne(ctx context.Context, agencyId int, id int) (int, error) {
	account, err := models.GetGoogleAdsAccount(ctx, agencyId, id)
	if err != nil {
		return 0, err
	}
	return SyncAccount(ctx, account)
}

func LivePerformance(ctx context.Context, agencyId int, id int) (*Performance, error) {
	account, err := models.GetGoogleAdsAccount(ctx, agencyId, id)
	if err != nil {
		return nil, err
	}
	client, err := NewClient(ctx, account.CustomerId, account.RefreshToken)
	if err != nil {
		return nil, err
	}
	perf, err := client.Performance(ctx)
	if err != nil {
		return nil, apiclient.Wrap(sourceName, "performance", err)
	}
	return perf, nil
}

// ExportCampaigns writes stored campaigns of one account, or all accounts when id is 0, as CSV.
func ExportCampaigns(ctx context.Context, w io.Writer, agencyId int, id int) error {
	if id > 0 {
		if _, err := models.GetGoogleAdsAccount(ctx, agencyId, id); err != nil {
			return err
		}
	}
	campaigns, err := models.ListCampaigns(ctx, agencyId, id)
	if err != nil {
		return err
	}
	return reports.WriteCampaignsCSV(w, campaigns)
}

type Syncer struct{}

func NewSyncer() *Syncer { return &Syncer{} }

func (s *Syncer) Name() string { return sourceName }

func (s *Syncer) Sync(ctx context.Context, agencyId int) (int, error) {
	accounts, err := models.ListGoogleAdsAccounts(ctx, agencyId)
	if err != nil {
		return 0, err
	}
	total := 0
	var errs []error
	for _, account := range accounts {
		n, err := SyncAccount(ctx, account)
		total += n
		if err != nil {
			errs = append(errs, fmt.Errorf("account %s: %w", account.CustomerId, err))
		}
	}
	return total, apiclient.JoinSyncErrors(sourceName, errs)
}
