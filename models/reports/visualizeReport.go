package reports

import (
	"context"
	"time"

	"github.com/agencyhub/marketing_backend/config"
	"github.com/agencyhub/marketing_backend/models"
	"github.com/shopspring/decimal"
)

type AccountingConnectionTotal struct {
	ConnectionId  int             `json:"connection_id"`
	Source        string          `json:"source"`
	Name          string          `json:"name"`
	TotalGross    decimal.Decimal `json:"total_gross"`
	TotalNet      decimal.Decimal `json:"total_net"`
	CustomerCount int64           `json:"customer_count"`
}

type ManualEntryPoint struct {
	Identifier string          `json:"identifier"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	AddedOn    time.Time       `json:"added_on"`
}

type BankConnectionTotal struct {
	ConnectionId  int             `json:"connection_id"`
	Provider      string          `json:"provider"`
	Name          string          `json:"name"`
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
}

type Visualization struct {
	Accounting []*AccountingConnectionTotal `json:"accounting"`
	Manual     []*ManualEntryPoint          `json:"manual"`
	Bank       []*BankConnectionTotal       `json:"bank"`
}

// GetVisualization returns chart series per accounting connection, manual entry and bank connection.
func GetVisualization(ctx context.Context, agencyId int) (*Visualization, error) {
	key := reportCacheKey("Visualization", agencyId)
	return cached(ctx, "Visualization", agencyId, key, func() (*Visualization, error) {
		db := config.GetDB()
		result := Visualization{
			Accounting: []*AccountingConnectionTotal{},
			Manual:     []*ManualEntryPoint{},
			Bank:       []*BankConnectionTotal{},
		}

		if err := db.WithContext(ctx).Table("accounting_connections ac").
			Select("ac.id AS connection_id, ac.source, ac.name, COALESCE(SUM(c.total_gross), 0) AS total_gross, COALESCE(SUM(c.total_net), 0) AS total_net, COUNT(c.id) AS customer_count").
			Joins("LEFT JOIN customers c ON c.connection_id = ac.id").
			Where("ac.agency_id = ?", agencyId).
			Group("ac.id, ac.source, ac.name").
			Order("ac.id").
			Scan(&result.Accounting).Error; err != nil {
			return nil, err
		}

		entries, err := models.ListManualEntries(ctx, agencyId)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			result.Manual = append(result.Manual, &ManualEntryPoint{
				Identifier: e.Identifier,
				Name:       e.Name,
				Amount:     e.TotalAmount,
				AddedOn:    e.AddedOn,
			})
		}

		sql := `
SELECT
    bc.id AS connection_id,
    bc.provider,
    bc.name,
    COALESCE(SUM(CASE WHEN bt.amount > 0 THEN bt.amount ELSE 0 END), 0) AS total_income,
    COALESCE(ABS(SUM(CASE WHEN bt.amount < 0 THEN bt.amount ELSE 0 END)), 0) AS total_expenses
FROM
    bank_connections bc
    LEFT JOIN bank_transactions bt ON bt.connection_id = bc.id
WHERE
    bc.agency_id = ?
GROUP BY
    bc.id, bc.provider, bc.name
ORDER BY
    bc.id`
		if err := db.WithContext(ctx).Raw(sql, agencyId).Scan(&result.Bank).Error; err != nil {
			return nil, err
		}
		return &result, nil
	})
}
