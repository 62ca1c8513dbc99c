package plaid

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agencyhub/marketing_backend/apiclient"
	"github.com/agencyhub/marketing_backend/config"
	"github.com/agencyhub/marketing_backend/models"
)

// transactionInputs flips Plaid's outflow-positive sign to income-positive.
func transactionInputs(txs []Transaction) []models.BankTransactionInput {
	inputs := make([]models.BankTransactionInput, 0, len(txs))
	for _, t := range txs {
		currency := strings.ToUpper(t.IsoCurrencyCode)
		if currency == "" {
			currency = "EUR"
		}
		inputs = append(inputs, models.BankTransactionInput{
			TransactionId: t.TransactionId,
			Amount:        t.Amount.Neg(),
			Currency:      currency,
			Purpose:       t.Name,
			Counterparty:  t.MerchantName,
			BookingDate:   apiclient.ParseDate(t.Date),
		})
	}
	return inputs
}

func NewLinkToken(ctx context.Context, agencyId int) (*LinkToken, error) {
	client, err := NewClient()
	if err != nil {
		return nil, err
	}
	token, err := client.CreateLinkToken(ctx, agencyId)
	if err != nil {
		return nil, apiclient.Wrap(sourceName, "link token", err)
	}
	return token, nil
}

// Connect exchanges the public token and stores the item as a bank connection.
func Connect(ctx context.Context, agencyId int, input *ConnectInput) (*models.BankConnection, error) {
	client, err := NewClient()
	if err != nil {
		return nil, err
	}
	accessToken, itemId, err := client.ExchangePublicToken(ctx, input.PublicToken)
	if err != nil {
		return nil, apiclient.Wrap(sourceName, "exchange public token", err)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = "Plaid Bank"
	}
	return models.CreateBankConnection(ctx, agencyId, &models.NewBankConnection{
		Provider:    models.BankProviderPlaid,
		ExternalId:  itemId,
		Name:        name,
		Email:       input.Email,
		Phone:       input.Phone,
		BankName:    "Plaid Bank",
		AccessToken: accessToken,
		Status:      models.BankConnectionStatusConnected,
	})
}

func getConnection(ctx context.Context, agencyId int, id int) (*models.BankConnection, error) {
	conn, err := models.GetBankConnection(ctx, agencyId, id)
	if err != nil {
		return nil, err
	}
	if conn.Provider != models.BankProviderPlaid {
		return nil, &models.NotFoundError{Resource: "plaid connection", Id: id}
	}
	return conn, nil
}

func LiveBalances(ctx context.Context, agencyId int, id int) ([]Account, error) {
	conn, err := getConnection(ctx, agencyId, id)
	if err != nil {
		return nil, err
	}
	client, err := NewClient()
	if err != nil {
		return nil, err
	}
	accounts, err := client.Balances(ctx, conn.AccessToken)
	if err != nil {
		return nil, apiclient.Wrap(sourceName, "balances", err)
	}
	return accounts, nil
}

// Disconnect removes the item at Plaid (best effort) and the local connection.
func Disconnect(ctx context.Context, agencyId int, id int) (*models.BankConnection, error) {
	conn, err := getConnection(ctx, agencyId, id)
	if err != nil {
		return nil, err
	}
	if client, err := NewClient(); err == nil {
		if err := client.RemoveItem(ctx, conn.AccessToken); err != nil {
			config.LogError(config.GetLogger(), "plaid", "Disconnect", "remove item", conn.ID, err)
		}
	}
	return models.DeleteBankConnection(ctx, agencyId, id)
}

type Syncer struct {
	Days int
	Now  func() time.Time
}

func NewSyncer() *Syncer {
	return &Syncer{Days: 30, Now: time.Now}
}

func (s *Syncer) Name() string { return sourceName }

func (s *Syncer) Sync(ctx context.Context, agencyId int) (int, error) {
	provider := models.BankProviderPlaid
	conns, err := models.ListBankConnections(ctx, agencyId, &provider)
	if err != nil {
		return 0, err
	}
	if len(conns) == 0 {
		return 0, nil
	}
	client, err := NewClient()
	if err != nil {
		return 0, apiclient.Wrap(sourceName, "config", err)
	}
	from, to := apiclient.DateWindow(s.Now(), s.Days)
	total := 0
	var errs []error
	for _, conn := range conns {
		txs, err := client.Transactions(ctx, conn.AccessToken, from, to)
		if err != nil {
			errs = append(errs, fmt.Errorf("connection %d: %w", conn.ID, apiclient.Wrap(sourceName, "transactions", err)))
			continue
		}
		n, err := models.UpsertBankTransactions(ctx, conn, transactionInputs(txs))
		total += n
		if err != nil {
			errs = append(errs, fmt.Errorf("connection %d: %w", conn.ID, err))
		}
	}
	return total, apiclient.JoinSyncErrors(sourceName, errs)
}
