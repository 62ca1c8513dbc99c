package models

import (
	"context"
	"strings"
	"time"

	"github.com/agencyhub/marketing_backend/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

type AccountingSource string

const (
	AccountingSourceLexoffice AccountingSource = "lexoffice"
	AccountingSourceSevdesk   AccountingSource = "sevdesk"
)

func (s AccountingSource) IsValid() bool {
	return s == AccountingSourceLexoffice || s == AccountingSourceSevdesk
}

type AccountingConnection struct {
	ID        int              `gorm:"primary_key" json:"id"`
	AgencyId  int              `gorm:"index;not null" json:"agency_id"`
	Source    AccountingSource `gorm:"type:enum('lexoffice','sevdesk');not null;uniqueIndex:idx_accounting_org,priority:1" json:"source"`
	ApiKey    string           `gorm:"type:text;not null" json:"-"`
	OrgId     string           `gorm:"size:128;not null;uniqueIndex:idx_accounting_org,priority:2" json:"org_id"`
	Name      string           `gorm:"size:255" json:"name"`
	EventId   string           `gorm:"size:128" json:"event_id"`
	Customers []*Customer      `gorm:"foreignKey:ConnectionId" json:"customers,omitempty"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// Customer carries running totals that only ever grow.
type Customer struct {
	ID           int             `gorm:"primary_key" json:"id"`
	AgencyId     int             `gorm:"index;not null" json:"agency_id"`
	ConnectionId int             `gorm:"not null;uniqueIndex:idx_customer_external,priority:1" json:"connection_id"`
	ExternalId   string          `gorm:"size:128;not null;uniqueIndex:idx_customer_external,priority:2" json:"external_id"`
	Name         string          `gorm:"size:255" json:"name"`
	TotalGross   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_gross"`
	TotalNet     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_net"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// AccountingInvoice records every applied invoice so a replayed webhook is a no-op.
type AccountingInvoice struct {
	ID           int             `gorm:"primary_key" json:"id"`
	AgencyId     int             `gorm:"index;not null" json:"agency_id"`
	ConnectionId int             `gorm:"not null;uniqueIndex:idx_accounting_invoice,priority:1" json:"connection_id"`
	InvoiceId    string          `gorm:"size:128;not null;uniqueIndex:idx_accounting_invoice,priority:2" json:"invoice_id"`
	CustomerId   int             `gorm:"index" json:"customer_id"`
	Gross        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"gross"`
	Net          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"net"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewAccountingConnection struct {
	Source  AccountingSource `json:"source"`
	ApiKey  string           `json:"api_key" binding:"required"`
	OrgId   string           `json:"org_id"`
	Name    string           `json:"name"`
	EventId string           `json:"event_id"`
}

type InvoiceInput struct {
	InvoiceId   string
	ContactId   string
	ContactName string
	Gross       decimal.Decimal
	Net         decimal.Decimal
}

var ErrorNegativeInvoice = invalidInput("invoice totals must not be negative")

func CreateAccountingConnection(ctx context.Context, agencyId int, input *NewAccountingConnection) (*AccountingConnection, error) {
	if agencyId <= 0 {
		return nil, invalidInput("agency id is required")
	}
	if !input.Source.IsValid() {
		return nil, invalidInput("unsupported accounting source")
	}
	if strings.TrimSpace(input.OrgId) == "" {
		return nil, invalidInput("organization id is required")
	}
	db := config.GetDB()

	var count int64
	if err := db.WithContext(ctx).Model(&AccountingConnection{}).
		Where("source = ? AND org_id = ?", input.Source, input.OrgId).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &AlreadyExistsError{Resource: string(input.Source) + " organization", Key: input.OrgId}
	}

	conn := AccountingConnection{
		AgencyId: agencyId,
		Source:   input.Source,
		ApiKey:   strings.TrimSpace(input.ApiKey),
		OrgId:    input.OrgId,
		Name:     input.Name,
		EventId:  input.EventId,
	}
	if err := db.WithContext(ctx).Create(&conn).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return nil, &AlreadyExistsError{Resource: string(input.Source) + " organization", Key: input.OrgId}
		}
		return nil, err
	}
	return &conn, nil
}

func SetAccountingConnectionEvent(ctx context.Context, conn *AccountingConnection, eventId string) error {
	if err := config.GetDB().WithContext(ctx).Model(&AccountingConnection{}).
		Where("id = ? AND agency_id = ?", conn.ID, conn.AgencyId).Update("event_id", eventId).Error; err != nil {
		return err
	}
	conn.EventId = eventId
	return nil
}

func ListAccountingConnections(ctx context.Context, agencyId int, source *AccountingSource) ([]*AccountingConnection, error) {
	dbCtx := config.GetDB().WithContext(ctx).Where("agency_id = ?", agencyId)
	if source != nil {
		dbCtx = dbCtx.Where("source = ?", *source)
	}
	var results []*AccountingConnection
	if err := dbCtx.Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func GetAccountingConnection(ctx context.Context, agencyId int, id int) (*AccountingConnection, error) {
	return fetchOwned[AccountingConnection](ctx, agencyId, id, "accounting connection")
}

// GetAccountingConnectionById is not tenant scoped; only admin handlers call it.
func GetAccountingConnectionById(ctx context.Context, id int) (*AccountingConnection, error) {
	var result AccountingConnection
	if err := config.GetDB().WithContext(ctx).First(&result, id).Error; err != nil {
		return nil, notFoundOr(err, "accounting connection", id)
	}
	return &result, nil
}

// FindAccountingConnectionByOrgId resolves the owner of an incoming webhook; it is not tenant scoped.
func FindAccountingConnectionByOrgId(ctx context.Context, source AccountingSource, orgId string) (*AccountingConnection, error) {
	var result AccountingConnection
	if err := config.GetDB().WithContext(ctx).
		Where("source = ? AND org_id = ?", source, orgId).First(&result).Error; err != nil {
		return nil, notFoundOr(err, string(source)+" organization", orgId)
	}
	return &result, nil
}

// DeleteAccountingConnection removes invoices and customers before the connection itself.
func DeleteAccountingConnection(ctx context.Context, agencyId int, id int) (*AccountingConnection, error) {
	conn, err := GetAccountingConnection(ctx, agencyId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Where("connection_id = ? AND agency_id = ?", conn.ID, agencyId).Delete(&AccountingInvoice{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Where("connection_id = ? AND agency_id = ?", conn.ID, agencyId).Delete(&Customer{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Where("agency_id = ?", agencyId).Delete(&AccountingConnection{}, conn.ID).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	afterWrite(agencyId, "DeleteAccountingConnection")
	return conn, nil
}

func AddCustomer(ctx context.Context, conn *AccountingConnection, externalId string, name string) (*Customer, error) {
	if strings.TrimSpace(externalId) == "" {
		return nil, invalidInput("customer id is required")
	}
	customer := Customer{
		AgencyId:     conn.AgencyId,
		ConnectionId: conn.ID,
		ExternalId:   externalId,
		Name:         name,
	}
	if err := config.GetDB().WithContext(ctx).Create(&customer).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return nil, &AlreadyExistsError{Resource: "customer", Key: externalId}
		}
		return nil, err
	}
	afterWrite(conn.AgencyId, "AddCustomer")
	return &customer, nil
}

// ListCustomers returns the customers of one connection, or of every connection when connectionId is 0.
func ListCustomers(ctx context.Context, agencyId int, connectionId int) ([]*Customer, error) {
	dbCtx := config.GetDB().WithContext(ctx).Where("agency_id = ?", agencyId)
	if connectionId > 0 {
		dbCtx = dbCtx.Where("connection_id = ?", connectionId)
	}
	var results []*Customer
	if err := dbCtx.Order("connection_id, id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ApplyInvoice adds an invoice's totals to its customer exactly once per invoice id.
// The customer row is created on first sight. applied is false for a replay.
func ApplyInvoice(ctx context.Context, conn *AccountingConnection, input InvoiceInput) (customer *Customer, applied bool, err error) {
	if input.Gross.IsNegative() || input.Net.IsNegative() {
		return nil, false, ErrorNegativeInvoice
	}
	if input.InvoiceId == "" || input.ContactId == "" {
		return nil, false, invalidInput("invoice id and contact id are required")
	}

	db := config.GetDB()
	tx := db.Begin()

	ledger := AccountingInvoice{
		AgencyId:     conn.AgencyId,
		ConnectionId: conn.ID,
		InvoiceId:    input.InvoiceId,
		Gross:        input.Gross,
		Net:          input.Net,
	}
	if err := tx.WithContext(ctx).Create(&ledger).Error; err != nil {
		tx.Rollback()
		if isDuplicateKeyErr(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	c := Customer{
		AgencyId:     conn.AgencyId,
		ConnectionId: conn.ID,
		ExternalId:   input.ContactId,
		Name:         input.ContactName,
	}
	if err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("connection_id = ? AND external_id = ?", conn.ID, input.ContactId).
		FirstOrCreate(&c).Error; err != nil {
		tx.Rollback()
		return nil, false, err
	}

	if err := tx.WithContext(ctx).Exec("UPDATE customers SET total_gross = total_gross + ?, total_net = total_net + ?, updated_at = ? WHERE id = ?",
		input.Gross, input.Net, time.Now().UTC(), c.ID).Error; err != nil {
		tx.Rollback()
		return nil, false, err
	}
	if err := tx.WithContext(ctx).Model(&AccountingInvoice{}).Where("id = ?", ledger.ID).Update("customer_id", c.ID).Error; err != nil {
		tx.Rollback()
		return nil, false, err
	}
	if err := tx.WithContext(ctx).First(&c, c.ID).Error; err != nil {
		tx.Rollback()
		return nil, false, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, false, err
	}

	afterWrite(conn.AgencyId, "ApplyInvoice")
	return &c, true, nil
}
