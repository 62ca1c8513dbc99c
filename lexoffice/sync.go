package lexoffice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/agencyhub/marketing_backend/apiclient"
	"github.com/agencyhub/marketing_backend/config"
	"github.com/agencyhub/marketing_backend/models"
	"github.com/agencyhub/marketing_backend/utils"
	"github.com/sirupsen/logrus"
)

var errNoContact = errors.New("invoice has no contact")

func webhookURL() string {
	return strings.TrimSpace(os.Getenv("LEXOFFICE_WEBHOOK_URL"))
}

func invoiceInput(inv *Invoice) (models.InvoiceInput, error) {
	if inv == nil || strings.TrimSpace(inv.Address.ContactId) == "" {
		return models.InvoiceInput{}, errNoContact
	}
	return models.InvoiceInput{
		InvoiceId:   inv.Id,
		ContactId:   inv.Address.ContactId,
		ContactName: inv.Address.Name,
		Gross:       inv.TotalPrice.TotalGrossAmount,
		Net:         inv.TotalPrice.TotalNetAmount,
	}, nil
}

// Connect validates the key against /v1/profile, stores the connection and
// subscribes to invoice.created when LEXOFFICE_WEBHOOK_URL is configured.
func Connect(ctx context.Context, agencyId int, apiKey string) (*models.AccountingConnection, error) {
	client, err := NewClient(apiKey)
	if err != nil {
		return nil, err
	}
	profile, err := client.Profile(ctx)
	if err != nil {
		return nil, apiclient.Wrap(sourceName, "profile", err)
	}
	conn, err := models.CreateAccountingConnection(ctx, agencyId, &models.NewAccountingConnection{
		Source: models.AccountingSourceLexoffice,
		ApiKey: apiKey,
		OrgId:  profile.OrganizationId,
		Name:   profile.CompanyName,
	})
	if err != nil {
		return nil, err
	}

	callback := webhookURL()
	if callback == "" {
		return conn, nil
	}
	eventId, err := client.Subscribe(ctx, callback)
	if err != nil {
		// the connection stays usable through manual sync
		config.LogError(config.GetLogger(), "lexoffice", "Connect", "subscribe invoice.created", conn.ID, err)
		return conn, nil
	}
	if err := models.SetAccountingConnectionEvent(ctx, conn, eventId); err != nil {
		return nil, err
	}
	return conn, nil
}

// Disconnect removes the webhook subscription and deletes the connection with its customers.
func Disconnect(ctx context.Context, agencyId int, id int) (*models.AccountingConnection, error) {
	conn, err := models.GetAccountingConnection(ctx, agencyId, id)
	if err != nil {
		return nil, err
	}
	if conn.Source != models.AccountingSourceLexoffice {
		return nil, &models.NotFoundError{Resource: "lexoffice connection", Id: id}
	}
	if conn.EventId != "" {
		if client, err := NewClient(conn.ApiKey); err == nil {
			if err := client.Unsubscribe(ctx, conn.EventId); err != nil && apiclient.StatusCode(err) != 404 {
				config.LogError(config.GetLogger(), "lexoffice", "Disconnect", "unsubscribe", conn.ID, err)
			}
		}
	}
	return models.DeleteAccountingConnection(ctx, agencyId, id)
}

func getConnection(ctx context.Context, agencyId int, id int) (*models.AccountingConnection, error) {
	conn, err := models.GetAccountingConnection(ctx, agencyId, id)
	if err != nil {
		return nil, err
	}
	if conn.Source != models.AccountingSourceLexoffice {
		return nil, &models.NotFoundError{Resource: "lexoffice connection", Id: id}
	}
	return conn, nil
}

func LookupContact(ctx context.Context, agencyId int, connectionId int, contactId string) (*Contact, error) {
	conn, err := getConnection(ctx, agencyId, connectionId)
	if err != nil {
		return nil, err
	}
	client, err := NewClient(conn.ApiKey)
	if err != nil {
		return nil, err
	}
	contact, err := client.Contact(ctx, contactId)
	if err != nil {
		if apiclient.StatusCode(err) == 404 {
			return nil, &models.NotFoundError{Resource: "lexoffice contact", Id: contactId}
		}
		return nil, apiclient.Wrap(sourceName, "contact", err)
	}
	return contact, nil
}

// AddCustomerFromContact tracks a lexoffice contact; an empty name is filled from the contact.
func AddCustomerFromContact(ctx context.Context, agencyId int, connectionId int, input *AddCustomerInput) (*models.Customer, error) {
	conn, err := getConnection(ctx, agencyId, connectionId)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		contact, err := LookupContact(ctx, agencyId, connectionId, input.ContactId)
		if err != nil {
			return nil, err
		}
		name = contact.DisplayName()
	}
	return models.AddCustomer(ctx, conn, input.ContactId, name)
}

// HandleEvent applies the invoice behind an invoice.created event.
// Unknown organizations and other event types are ignored.
func HandleEvent(ctx context.Context, event *WebhookEvent) (bool, error) {
	if event == nil || event.EventType != EventInvoiceCreated || event.ResourceId == "" {
		return false, nil
	}
	sysCtx := utils.SystemContext(ctx, 0)
	conn, err := models.FindAccountingConnectionByOrgId(sysCtx, models.AccountingSourceLexoffice, event.OrganizationId)
	if err != nil {
		if models.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	client, err := NewClient(conn.ApiKey)
	if err != nil {
		return false, err
	}
	inv, err := client.Invoice(ctx, event.ResourceId)
	if err != nil {
		return false, apiclient.Wrap(sourceName, "invoice", err)
	}
	input, err := invoiceInput(inv)
	if err != nil {
		return false, nil
	}
	return applyInvoice(utils.SystemContext(ctx, conn.AgencyId), conn, input)
}

// applyInvoice books the invoice on its customer. Negative totals are skipped since
// they stay invalid however often lexoffice redelivers them.
func applyInvoice(ctx context.Context, conn *models.AccountingConnection, input models.InvoiceInput) (bool, error) {
	_, applied, err := models.ApplyInvoice(ctx, conn, input)
	if errors.Is(err, models.ErrorNegativeInvoice) {
		config.GetLogger().WithFields(logrus.Fields{
			"connection_id": conn.ID,
			"invoice_id":    input.InvoiceId,
			"gross":         input.Gross.String(),
		}).Warn("lexoffice_negative_invoice_skipped")
		return false, nil
	}
	return applied, err
}

// Syncer replays booked invoices of every lexoffice connection. Applying is
// idempotent per invoice id, so invoices already seen through the webhook are skipped.
type Syncer struct {
	MaxPages int
}

// NewSyncer pages through up to 10000 invoices per connection.
func NewSyncer() *Syncer {
	return &Syncer{MaxPages: 40}
}

func (s *Syncer) Name() string { return sourceName }

func (s *Syncer) Sync(ctx context.Context, agencyId int) (int, error) {
	source := models.AccountingSourceLexoffice
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
	ids, complete, err := client.InvoiceIds(ctx, s.MaxPages)
	if err != nil {
		return 0, apiclient.Wrap(sourceName, "voucherlist", err)
	}
	if !complete {
		config.GetLogger().WithFields(logrus.Fields{
			"connection_id": conn.ID,
			"agency_id":     conn.AgencyId,
			"max_pages":     s.MaxPages,
			"invoices":      len(ids),
		}).Warn("lexoffice_voucherlist_truncated")
	}
	applied := 0
	for _, id := range ids {
		inv, err := client.Invoice(ctx, id)
		if err != nil {
			return applied, apiclient.Wrap(sourceName, "invoice", err)
		}
		input, err := invoiceInput(inv)
		if errors.Is(err, errNoContact) {
			continue
		}
		ok, err := applyInvoice(ctx, conn, input)
		if err != nil {
			return applied, err
		}
		if ok {
			applied++
		}
	}
	return applied, nil
}
