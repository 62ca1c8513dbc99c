package reports

import (
	"context"
	"time"

	"github.com/agencyhub/marketing_backend/models"
)

type BankSummary struct {
	ConnectionId int                      `json:"connection_id,omitempty"`
	From         *time.Time               `json:"from,omitempty"`
	To           *time.Time               `json:"to,omitempty"`
	Summary      BankAnalysis             `json:"summary"`
	Accounts     []*models.AccountBalance `json:"accounts"`
}

// GetBankSummary aggregates bank transactions of the agency, optionally narrowed to one connection and a date span.
func GetBankSummary(ctx context.Context, agencyId int, connectionId int, from *time.Time, to *time.Time) (*BankSummary, error) {
	if connectionId > 0 {
		if _, err := models.GetBankConnection(ctx, agencyId, connectionId); err != nil {
			return nil, err
		}
	}
	key := reportCacheKey("BankSummary", agencyId, connectionId, dateKey(from), dateKey(to))
	return cached(ctx, "BankSummary", agencyId, key, func() (*BankSummary, error) {
		txs, err := models.SearchBankTransactions(ctx, agencyId, models.BankTransactionFilter{
			ConnectionId: connectionId,
			From:         from,
			To:           to,
		})
		if err != nil {
			return nil, err
		}
		balances, err := models.AccountBalances(ctx, agencyId)
		if err != nil {
			return nil, err
		}
		accounts := make([]*models.AccountBalance, 0, len(balances))
		for _, b := range balances {
			if connectionId == 0 || b.ConnectionId == connectionId {
				accounts = append(accounts, b)
			}
		}
		return &BankSummary{
			ConnectionId: connectionId,
			From:         from,
			To:           to,
			Summary:      analyzeBank(txs),
			Accounts:     accounts,
		}, nil
	})
}

func dateKey(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format("20060102")
}
