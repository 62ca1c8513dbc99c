package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/agencyhub/marketing_backend/config"
	"github.com/agencyhub/marketing_backend/utils"
)

const DataAnalysisTypeSummary = "summary"

// DataAnalysis is a stored snapshot of an aggregation result.
type DataAnalysis struct {
	ID           int             `gorm:"primary_key" json:"id"`
	AgencyId     int             `gorm:"index;not null" json:"agency_id"`
	AnalysisType string          `gorm:"size:50;not null" json:"analysis_type"`
	Result       json.RawMessage `gorm:"type:json" json:"result"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func SaveDataAnalysis(ctx context.Context, agencyId int, analysisType string, result any) (*DataAnalysis, error) {
	if agencyId <= 0 {
		return nil, utils.ErrorAgencyRequired
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	row := DataAnalysis{
		AgencyId:     agencyId,
		AnalysisType: analysisType,
		Result:       raw,
	}
	if err := config.GetDB().WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func ListDataAnalyses(ctx context.Context, agencyId int, analysisType string, limit int) ([]*DataAnalysis, error) {
	dbCtx := config.GetDB().WithContext(ctx).Where("agency_id = ?", agencyId)
	if analysisType != "" {
		dbCtx = dbCtx.Where("analysis_type = ?", analysisType)
	}
	if limit <= 0 {
		limit = config.SearchLimit
	}
	var results []*DataAnalysis
	if err := dbCtx.Order("id DESC").Limit(limit).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
