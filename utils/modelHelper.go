package utils

import (
	"context"
	"errors"

	"github.com/agencyhub/marketing_backend/config"
	"gorm.io/gorm"
)

// FetchModel loads one row owned by agencyId
// (returns ErrorRecordNotFound when the id is absent or belongs to another agency).
func FetchModel[T any](ctx context.Context, agencyId int, id int, associations ...string) (*T, error) {
	if agencyId <= 0 {
		return nil, ErrorAgencyRequired
	}
	dbCtx := config.GetDB().WithContext(ctx).Where("agency_id = ?", agencyId)
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	if err := dbCtx.First(&result, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

// FetchAllModels lists every row owned by agencyId ordered by id.
func FetchAllModels[T any](ctx context.Context, agencyId int, associations ...string) ([]*T, error) {
	if agencyId <= 0 {
		return nil, ErrorAgencyRequired
	}
	dbCtx := config.GetDB().WithContext(ctx).Where("agency_id = ?", agencyId)
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var results []*T
	if err := dbCtx.Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
