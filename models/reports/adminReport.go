package reports

import (
	"context"
	"time"

	"github.com/agencyhub/marketing_backend/config"
	"github.com/agencyhub/marketing_backend/utils"
)

type AgencyOverview struct {
	AgencyId              int       `json:"agency_id"`
	Email                 string    `json:"email"`
	Name                  string    `json:"name"`
	AccountingConnections int64     `json:"accounting_connections"`
	Customers             int64     `json:"customers"`
	ManualEntries         int64     `json:"manual_entries"`
	BankConnections       int64     `json:"bank_connections"`
	AdsAccounts           int64     `json:"ads_accounts"`
	Mailboxes             int64     `json:"mailboxes"`
	CreatedAt             time.Time `json:"created_at"`
}

// GetAdminOverview lists every agency with connection counts. Callers must be admins.
func GetAdminOverview(ctx context.Context) ([]*AgencyOverview, error) {
	if isAdmin, ok := utils.GetIsAdminFromContext(ctx); !ok || !isAdmin {
		return nil, utils.ErrorUnauthorized
	}
	sql := `
SELECT
    a.id AS agency_id,
    a.email,
    a.name,
    (SELECT COUNT(*) FROM accounting_connections ac WHERE ac.agency_id = a.id) AS accounting_connections,
    (SELECT COUNT(*) FROM customers c WHERE c.agency_id = a.id) AS customers,
    (SELECT COUNT(*) FROM manual_entries me WHERE me.agency_id = a.id) AS manual_entries,
    (SELECT COUNT(*) FROM bank_connections bc WHERE bc.agency_id = a.id) AS bank_connections,
    (SELECT COUNT(*) FROM google_ads_accounts ga WHERE ga.agency_id = a.id) AS ads_accounts,
    (SELECT COUNT(*) FROM mail_users mu WHERE mu.agency_id = a.id) AS mailboxes,
    a.created_at
FROM
    agencies a
ORDER BY
    a.id`
	var results []*AgencyOverview
	if err := config.GetDB().WithContext(ctx).Raw(sql).Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
