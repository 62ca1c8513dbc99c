package finapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agencyhub/marketing_backend/apiclient"
	"github.com/agencyhub/marketing_backend/config"
	"github.com/agencyhub/marketing_backend/models"
)

func transactionInputs(txs []Transaction) []models.BankTransactionInput {
	inputs := make([]models.BankTransactionInput, 0, len(txs))
	for _, t := range txs {
		date := apiclient.ParseDate(t.BankBookingDate)
		if date == nil {
			date = apiclient.ParseDate(t.ValueDate)
		}
		currency := strings.ToUpper(strings.TrimSpace(t.Currency))
		if currency == "" {
			currency = "EUR"
		}
		inputs = append(inputs, models.BankTransactionInput{
			TransactionId: strconv.FormatInt(t.Id, 10),
			Amount:        t.Amount,
			Currency:      currency,
			Purpose:       t.Purpose,
			Counterparty:  t.CounterpartName,
			BookingDate:   date,
		})
	}
	return inputs
}

// Connect imports the bank login at finAPI and stores the resulting connection.
func Connect(ctx context.Context, agencyId int, input *ConnectInput) (*models.BankConnection, error) {
	client, err := NewClient(ctx)
	if err != nil {
		return nil, err
	}
	imported, err := client.ImportConnection(ctx, input.BankId, input.Username, input.Password)
	if err != nil {
		return nil, apiclient.Wrap(sourceName, "import connection", err)
	}
	externalId := strconv.FormatInt(imported.Id, 10)

	bankName := imported.BankName
	if bankName == "" {
		bankName = imported.Bank.Name
	}
	if bankName == "" {
		if bank, err := client.Bank(ctx, input.BankId); err == nil {
			bankName = bank.Name
		} else {
			config.LogError(config.GetLogger(), "finapi", "Connect", "bank details", input.BankId, err)
		}
	}
	iban := ""
	if accounts, err := client.Accounts(ctx, externalId); err == nil && len(accounts) > 0 {
		iban = accounts[0].Iban
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = imported.Name
	}
	return models.CreateBankConnection(ctx, agencyId, &models.NewBankConnection{
		Provider:   models.BankProviderFinAPI,
		ExternalId: externalId,
		Name:       name,
		Email:      input.Email,
		Phone:      input.Phone,
		Iban:       iban,
		BankName:   bankName,
		Status:     models.BankConnectionStatusConnected,
	})
}

func getConnection(ctx context.Context, agencyId int, id int) (*models.BankConnection, error) {
	conn, err := models.GetBankConnection(ctx, agencyId, id)
	if err != nil {
		return nil, err
	}
	if conn.Provider != models.BankProviderFinAPI {
		return nil, &models.NotFoundError{Resource: "finapi connection", Id: id}
	}
	return conn, nil
}

// Disconnect deletes the connection at finAPI first, then locally with its transactions.
func Disconnect(ctx context.Context, agencyId int, id int) (*models.BankConnection, error) {
	conn, err := getConnection(ctx, agencyId, id)
	if err != nil {
		return nil, err
	}
	client, err := NewClient(ctx)
	if err != nil {
		return nil, err
	}
	if err := client.DeleteConnection(ctx, conn.ExternalId); err != nil && apiclient.StatusCode(err) != 404 {
		return nil, apiclient.Wrap(sourceName, "delete connection", err)
	}
	return models.DeleteBankConnection(ctx, agencyId, id)
}

type Syncer struct {
	Days     int
	MaxPages int
	Now      func() time.Time
}

func NewSyncer() *Syncer {
	return &Syncer{Days: config.BankSyncDays(), MaxPages: 20, Now: time.Now}
}

func (s *Syncer) Name() string { return sourceName }

func (s *Syncer) Sync(ctx context.Context, agencyId int) (int, error) {
	provider := models.BankProviderFinAPI
	conns, err := models.ListBankConnections(ctx, agencyId, &provider)
	if err != nil {
		return 0, err
	}
	if len(conns) == 0 {
		return 0, nil
	}
	client, err := NewClient(ctx)
	if err != nil {
		return 0, apiclient.Wrap(sourceName, "auth", err)
	}
	total := 0
	var errs []error
	for _, conn := range conns {
		n, err := s.SyncConnection(ctx, client, conn)
		total += n
		if err != nil {
			errs = append(errs, fmt.Errorf("connection %d: %w", conn.ID, err))
		}
	}
	return total, apiclient.JoinSyncErrors(sourceName, errs)
}

// SyncConnection upserts the connection's transactions of the last Days days.
func (s *Syncer) SyncConnection(ctx context.Context, client *Client, conn *models.BankConnection) (int, error) {
	accounts, err := client.Accounts(ctx, conn.ExternalId)
	if err != nil {
		_ = models.SetBankConnectionStatus(ctx, conn, models.BankConnectionStatusError)
		return 0, apiclient.Wrap(sourceName, "accounts", err)
	}
	ids := make([]int64, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.Id)
	}
	from, to := apiclient.DateWindow(s.Now(), s.Days)
	txs, err := client.Transactions(ctx, ids, from, to, s.MaxPages)
	if err != nil {
		return 0, apiclient.Wrap(sourceName, "transactions", err)
	}
	return models.UpsertBankTransactions(ctx, conn, transactionInputs(txs))
}

// SyncOne runs SyncConnection for a single stored connection.
func SyncOne(ctx context.Context, agencyId int, id int) (int, error) {
	conn, err := getConnection(ctx, agencyId, id)
	if err != nil {
		return 0, err
	}
	client, err := NewClient(ctx)
	if err != nil {
		return 0, err
	}
	return NewSyncer().SyncConnection(ctx, client, conn)
}
