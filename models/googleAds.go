package models

import (
	"context"
	"strings"
	"time"

	"github.com/agencyhub/marketing_backend/config"
	"github.com/agencyhub/marketing_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

// CampaignStatusEnabled is the provider's value for a running campaign.
const CampaignStatusEnabled = "ENABLED"

type GoogleAdsAccount struct {
	ID              int        `gorm:"primary_key" json:"id"`
	AgencyId        int        `gorm:"index;not null" json:"agency_id"`
	CustomerId      string     `gorm:"size:20;not null;unique" json:"customer_id"`
	DescriptiveName string     `gorm:"size:255" json:"descriptive_name"`
	RefreshToken    string     `gorm:"type:text" json:"-"`
	LastSyncAt      *time.Time `json:"last_sync_at"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type GoogleAdsCampaign struct {
	ID          int             `gorm:"primary_key" json:"id"`
	AgencyId    int             `gorm:"index;not null" json:"agency_id"`
	AccountId   int             `gorm:"not null;uniqueIndex:idx_ads_campaign,priority:1" json:"account_id"`
	CampaignId  string          `gorm:"size:32;not null;uniqueIndex:idx_ads_campaign,priority:2" json:"campaign_id"`
	Name        string          `gorm:"size:255" json:"name"`
	Status      string          `gorm:"size:20" json:"status"`
	Budget      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"budget"`
	Impressions int64           `gorm:"default:0" json:"impressions"`
	Clicks      int64           `gorm:"default:0" json:"clicks"`
	Cost        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type CampaignInput struct {
	CampaignId  string
	Name        string
	Status      string
	Budget      decimal.Decimal
	Impressions int64
	Clicks      int64
	Cost        decimal.Decimal
}

// NormalizeCustomerId strips the dashes of "123-456-7890".
func NormalizeCustomerId(id string) string {
	return strings.ReplaceAll(strings.TrimSpace(id), "-", "")
}

func LinkGoogleAdsAccount(ctx context.Context, agencyId int, customerId string, name string, refreshToken string) (*GoogleAdsAccount, error) {
	if agencyId <= 0 {
		return nil, utils.ErrorAgencyRequired
	}
	customerId = NormalizeCustomerId(customerId)
	if customerId == "" {
		return nil, invalidInput("customer id is required")
	}
	account := GoogleAdsAccount{
		AgencyId:        agencyId,
		CustomerId:      customerId,
		DescriptiveName: name,
		RefreshToken:    refreshToken,
	}
	if err := config.GetDB().WithContext(ctx).Create(&account).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return nil, &AlreadyExistsError{Resource: "google ads account", Key: customerId}
		}
		return nil, err
	}
	return &account, nil
}

func ListGoogleAdsAccounts(ctx context.Context, agencyId int) ([]*GoogleAdsAccount, error) {
	var results []*GoogleAdsAccount
	if err := config.GetDB().WithContext(ctx).Where("agency_id = ?", agencyId).Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func GetGoogleAdsAccount(ctx context.Context, agencyId int, id int) (*GoogleAdsAccount, error) {
	return fetchOwned[GoogleAdsAccount](ctx, agencyId, id, "google ads account")
}

func UnlinkGoogleAdsAccount(ctx context.Context, agencyId int, id int) (*GoogleAdsAccount, error) {
	account, err := GetGoogleAdsAccount(ctx, agencyId, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Where("account_id = ? AND agency_id = ?", account.ID, agencyId).Delete(&GoogleAdsCampaign{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Where("agency_id = ?", agencyId).Delete(&GoogleAdsAccount{}, account.ID).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	afterWrite(agencyId, "UnlinkGoogleAdsAccount")
	return account, nil
}

// UpsertCampaigns overwrites name, status, budget and metrics of known campaigns.
func UpsertCampaigns(ctx context.Context, account *GoogleAdsAccount, inputs []CampaignInput) (int, error) {
	rows := make([]GoogleAdsCampaign, 0, len(inputs))
	for _, in := range inputs {
		if in.CampaignId == "" {
			continue
		}
		rows = append(rows, GoogleAdsCampaign{
			AgencyId:    account.AgencyId,
			AccountId:   account.ID,
			CampaignId:  in.CampaignId,
			Name:        truncate(in.Name, 255),
			Status:      in.Status,
			Budget:      in.Budget,
			Impressions: in.Impressions,
			Clicks:      in.Clicks,
			Cost:        in.Cost,
		})
	}
	now := time.Now().UTC()
	db := config.GetDB()
	tx := db.Begin()
	if len(rows) > 0 {
		if err := tx.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_id"}, {Name: "campaign_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "status", "budget", "impressions", "clicks", "cost", "updated_at"}),
		}).CreateInBatches(&rows, 200).Error; err != nil {
			tx.Rollback()
			return 0, err
		}
	}
	if err := tx.WithContext(ctx).Model(&GoogleAdsAccount{}).Where("id = ? AND agency_id = ?", account.ID, account.AgencyId).
		Update("last_sync_at", now).Error; err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := tx.Commit().Error; err != nil {
		return 0, err
	}
	account.LastSyncAt = &now
	afterWrite(account.AgencyId, "UpsertCampaigns")
	return len(rows), nil
}

// ListCampaigns returns campaigns of one account, or of every account when accountId is 0.
func ListCampaigns(ctx context.Context, agencyId int, accountId int) ([]*GoogleAdsCampaign, error) {
	dbCtx := config.GetDB().WithContext(ctx).Where("agency_id = ?", agencyId)
	if accountId > 0 {
		dbCtx = dbCtx.Where("account_id = ?", accountId)
	}
	var results []*GoogleAdsCampaign
	if err := dbCtx.Order("account_id, campaign_id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
