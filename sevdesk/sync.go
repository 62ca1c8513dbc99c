package sevdesk

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agencyhub/marketing_backend/apiclient"
	"github.com/agencyhub/marketing_backend/models"
)

func invoiceInput(inv *Invoice, customerName string) (models.InvoiceInput, error) {
	contactId := inv.Contact.Id.String()
	if contactId == "" {
		return models.InvoiceInput{}, fmt.Errorf("sevdesk invoice %s has no contact", inv.Id)
	}
	name := strings.TrimSpace(customerName)
	if name == "" {
		name = inv.Contact.DisplayName()
	}
	return models.InvoiceInput{
		InvoiceId:   inv.Id.String(),
		ContactId:   contactId,
		ContactName: name,
		Gross:       inv.SumGross,
		Net:         inv.SumNet,
	}, nil
}

func summarize(inv *Invoice) *InvoiceSummary {
	return &InvoiceSummary{
		InvoiceId:    inv.Id.String(),
		CustomerId:   inv.Contact.Id.String(),
		CustomerName: inv.Contact.DisplayName(),
		Gross:        inv.SumGross,
		Net:          inv.SumNet,
		Status:       inv.Status.String(),
	}
}

func Connect(ctx context.Context, agencyId int, apiKey string) (*models.AccountingConnection, error) {
	client, err := NewClient(apiKey)
	if err != nil {
		return nil, err
	}
	orgId, name, err := client.Organization(ctx)
	if err != nil {
		return nil, apiclient.Wrap(sourceName, "check account", err)
	}
	return models.CreateAccountingConnection(ctx, agencyId, &models.NewAccountingConnection{
		Source: models.AccountingSourceSevdesk,
		ApiKey: apiKey,
		OrgId:  orgId,
		Name:   name,
	})
}

func getConnection(ctx context.Context, agencyId int, id int) (*models.AccountingConnection, error) {
	conn, err := models.GetAccountingConnection(ctx, agencyId, id)
	if err != nil {
		return nil, err
	}
	if conn.Source != models.AccountingSourceSevdesk {
		return nil, &models.NotFoundError{Resource: "sevdesk connection", Id: id}
	}
	return conn, nil
}

func Disconnect(ctx context.Context, agencyId int, id int) (*models.AccountingConnection, error) {
	if _, err := getConnection(ctx, agencyId, id); err != nil {
		return nil, err
	}
	return models.DeleteAccountingConnection(ctx, agencyId, id)
}

func fetchInvoice(ctx context.Context, conn *models.AccountingConnection, invoiceId string) (*Invoice, error) {
	client, err := NewClient(conn.ApiKey)
	if err != nil {
		return nil, err
	}
	inv, err := client.Invoice(ctx, invoiceId)
	if err != nil {
		if apiclient.StatusCode(err) == 404 {
			return nil, &models.NotFoundError{Resource: "sevdesk invoice", Id: invoiceId}
		}
		return nil, apiclient.Wrap(sourceName, "invoice", err)
	}
	return inv, nil
}

func LookupInvoice(ctx context.Context, agencyId int, connectionId int, invoiceId string) (*InvoiceSummary, error) {
	conn, err := getConnection(ctx, agencyId, connectionId)
	if err != nil {
		return nil, err
	}
	inv, err := fetchInvoice(ctx, conn, invoiceId)
	if err != nil {
		return nil, err
	}
	return summarize(inv), nil
}

// ApplyInvoiceById fetches one invoice and adds its sums to the contact's customer.
func ApplyInvoiceById(ctx context.Context, agencyId int, connectionId int, input *ApplyInvoiceInput) (*models.Customer, bool, error) {
	conn, err := getConnection(ctx, agencyId, connectionId)
	if err != nil {
		return nil, false, err
	}
	inv, err := fetchInvoice(ctx, conn, input.InvoiceId)
	if err != nil {
		return nil, false, err
	}
	in, err := invoiceInput(inv, input.CustomerName)
	if err != nil {
		return nil, false, &models.InputError{Message: err.Error()}
	}
	return models.ApplyInvoice(ctx, conn, in)
}

// Syncer applies every non-draft invoice of each sevdesk connection once.
type Syncer struct {
	PageSize int
	MaxPages int
}

func NewSyncer() *Syncer {
	return &Syncer{PageSize: 100, MaxPages: 10}
}

func (s *Syncer) Name() string { return sourceName }

func (s *Syncer) Sync(ctx context.Context, agencyId int) (int, error) {
	source := models.AccountingSourceSevdesk
	conns, err := models.ListAccountingConnections(ctx, agencyId, &source)
	if err != nil {
		return 0, err
	}
	total := 0
	var errs []error
	for _, conn := range conns {
		n, err := s.syncConnection(ctx, conn)
		total += n
		if err != nil {
			errs = append(errs, fmt.Errorf("connection %d: %w", conn.ID, err))
		}
	}
	return total, apiclient.JoinSyncErrors(sourceName, errs)
}

func (s *Syncer) syncConnection(ctx context.Context, conn *models.AccountingConnection) (int, error) {
	client, err := NewClient(conn.ApiKey)
	if err != nil {
		return 0, err
	}
	invoices, err := client.Invoices(ctx, s.PageSize, s.MaxPages)
	if err != nil {
		return 0, apiclient.Wrap(sourceName, "invoices", err)
	}
	applied := 0
	for i := range invoices {
		if invoices[i].Status.String() == statusDraft {
			continue
		}
		in, err := invoiceInput(&invoices[i], "")
		if err != nil {
			continue
		}
		_, ok, err := models.ApplyInvoice(ctx, conn, in)
		if err != nil {
			if errors.Is(err, models.ErrorNegativeInvoice) {
				continue
			}
			return applied, err
		}
		if ok {
			applied++
		}
	}
	return applied, nil
}
