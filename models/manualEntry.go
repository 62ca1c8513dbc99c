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

// ManualEntry is keyed by (agency, identifier); resubmitting the identifier adds to TotalAmount.
type ManualEntry struct {
	ID          int             `gorm:"primary_key" json:"id"`
	AgencyId    int             `gorm:"not null;uniqueIndex:idx_manual_identifier,priority:1" json:"agency_id"`
	Identifier  string          `gorm:"size:128;not null;uniqueIndex:idx_manual_identifier,priority:2" json:"identifier"`
	Source      string          `gorm:"size:100" json:"source"`
	Name        string          `gorm:"size:255" json:"name"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	AddedOn     time.Time       `json:"added_on"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewManualEntry struct {
	Identifier string `json:"identifier" binding:"required"`
	Source     string `json:"source"`
	Name       string `json:"name"`
	Amount     string `json:"amount" binding:"required"`
}

func (input *NewManualEntry) validate() (decimal.Decimal, error) {
	if strings.TrimSpace(input.Identifier) == "" {
		return decimal.Zero, invalidInput("identifier is required")
	}
	return utils.ParseAmount(input.Amount)
}

func SubmitManualEntry(ctx context.Context, agencyId int, input *NewManualEntry) (*ManualEntry, error) {
	if agencyId <= 0 {
		return nil, utils.ErrorAgencyRequired
	}
	amount, err := input.validate()
	if err != nil {
		return nil, err
	}
	identifier := strings.TrimSpace(input.Identifier)
	now := time.Now().UTC()

	db := config.GetDB()
	tx := db.Begin()

	var entry ManualEntry
	result := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("agency_id = ? AND identifier = ?", agencyId, identifier).
		Limit(1).Find(&entry)
	if result.Error != nil {
		tx.Rollback()
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		entry = ManualEntry{
			AgencyId:    agencyId,
			Identifier:  identifier,
			Source:      input.Source,
			Name:        input.Name,
			TotalAmount: amount,
			AddedOn:     now,
		}
		if err := tx.WithContext(ctx).Create(&entry).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	} else {
		if err := tx.WithContext(ctx).Exec("UPDATE manual_entries SET total_amount = total_amount + ?, added_on = ?, updated_at = ? WHERE id = ?",
			amount, now, now, entry.ID).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		entry.TotalAmount = entry.TotalAmount.Add(amount)
		entry.AddedOn = now
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	afterWrite(agencyId, "SubmitManualEntry")
	return &entry, nil
}

func ListManualEntries(ctx context.Context, agencyId int) ([]*ManualEntry, error) {
	var results []*ManualEntry
	if err := config.GetDB().WithContext(ctx).Where("agency_id = ?", agencyId).
		Order("added_on DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func GetManualEntry(ctx context.Context, agencyId int, id int) (*ManualEntry, error) {
	return fetchOwned[ManualEntry](ctx, agencyId, id, "manual entry")
}

func DeleteManualEntry(ctx context.Context, agencyId int, id int) (*ManualEntry, error) {
	entry, err := GetManualEntry(ctx, agencyId, id)
	if err != nil {
		return nil, err
	}
	if err := config.GetDB().WithContext(ctx).Where("agency_id = ?", agencyId).Delete(&ManualEntry{}, id).Error; err != nil {
		return nil, err
	}
	afterWrite(agencyId, "DeleteManualEntry")
	return entry, nil
}
