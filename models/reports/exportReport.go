package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/agencyhub/marketing_backend/models"
	"github.com/xuri/excelize/v2"
)

const (
	SheetCustomers        = "Customers"
	SheetManualEntries    = "Manual Entries"
	SheetBankTransactions = "Bank Transactions"
	SheetCampaigns        = "Campaigns"
)

var CampaignsCSVHeader = []string{"Campaign ID", "Name", "Status", "Budget", "Impressions", "Clicks", "Cost"}

type AgencyExport struct {
	Agency                *models.Agency                 `json:"agency"`
	ExportedAt            time.Time                      `json:"exported_at"`
	AccountingConnections []*models.AccountingConnection `json:"accounting_connections"`
	Customers             []*models.Customer             `json:"customers"`
	ManualEntries         []*models.ManualEntry          `json:"manual_entries"`
	BankConnections       []*models.BankConnection       `json:"bank_connections"`
	BankTransactions      []*models.BankTransaction      `json:"bank_transactions"`
	GoogleAdsAccounts     []*models.GoogleAdsAccount     `json:"google_ads_accounts"`
	Campaigns             []*models.GoogleAdsCampaign    `json:"campaigns"`
	MailUsers             []*models.MailUser             `json:"mail_users"`
}

// ExportAgencyData collects every stored record of the agency. Secrets are excluded by their json tags.
func ExportAgencyData(ctx context.Context, agencyId int) (*AgencyExport, error) {
	agency, err := models.GetAgency(ctx, agencyId)
	if err != nil {
		return nil, err
	}
	export := AgencyExport{Agency: agency, ExportedAt: time.Now().UTC()}

	if export.AccountingConnections, err = models.ListAccountingConnections(ctx, agencyId, nil); err != nil {
		return nil, err
	}
	if export.Customers, err = models.ListCustomers(ctx, agencyId, 0); err != nil {
		return nil, err
	}
	if export.ManualEntries, err = models.ListManualEntries(ctx, agencyId); err != nil {
		return nil, err
	}
	if export.BankConnections, err = models.ListBankConnections(ctx, agencyId, nil); err != nil {
		return nil, err
	}
	if export.BankTransactions, err = models.SearchBankTransactions(ctx, agencyId, models.BankTransactionFilter{}); err != nil {
		return nil, err
	}
	if export.GoogleAdsAccounts, err = models.ListGoogleAdsAccounts(ctx, agencyId); err != nil {
		return nil, err
	}
	if export.Campaigns, err = models.ListCampaigns(ctx, agencyId, 0); err != nil {
		return nil, err
	}
	if export.MailUsers, err = models.ListMailUsers(ctx, agencyId); err != nil {
		return nil, err
	}
	return &export, nil
}

// WriteAgencyWorkbook renders the export as an xlsx workbook with one sheet per source.
func WriteAgencyWorkbook(w io.Writer, export *AgencyExport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetCustomers); err != nil {
		return err
	}
	for _, name := range []string{SheetManualEntries, SheetBankTransactions, SheetCampaigns} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	customers := [][]interface{}{{"Connection ID", "Customer ID", "Name", "Total Gross", "Total Net"}}
	for _, c := range export.Customers {
		customers = append(customers, []interface{}{c.ConnectionId, c.ExternalId, c.Name, c.TotalGross.InexactFloat64(), c.TotalNet.InexactFloat64()})
	}
	manual := [][]interface{}{{"Identifier", "Source", "Name", "Total Amount", "Added On"}}
	for _, e := range export.ManualEntries {
		manual = append(manual, []interface{}{e.Identifier, e.Source, e.Name, e.TotalAmount.InexactFloat64(), e.AddedOn.Format("2006-01-02")})
	}
	bank := [][]interface{}{{"Connection ID", "Transaction ID", "Booking Date", "Amount", "Purpose", "Counterparty"}}
	for _, t := range export.BankTransactions {
		date := ""
		if t.BookingDate != nil {
			date = t.BookingDate.Format("2006-01-02")
		}
		bank = append(bank, []interface{}{t.ConnectionId, t.TransactionId, date, t.Amount.InexactFloat64(), t.Purpose, t.Counterparty})
	}
	campaigns := [][]interface{}{toInterfaces(CampaignsCSVHeader)}
	for _, c := range export.Campaigns {
		campaigns = append(campaigns, []interface{}{c.CampaignId, c.Name, c.Status, c.Budget.InexactFloat64(), c.Impressions, c.Clicks, c.Cost.InexactFloat64()})
	}

	for sheet, rows := range map[string][][]interface{}{
		SheetCustomers:        customers,
		SheetManualEntries:    manual,
		SheetBankTransactions: bank,
		SheetCampaigns:        campaigns,
	} {
		if err := writeRows(f, sheet, rows); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// WriteCampaignsCSV writes campaigns with the CampaignsCSVHeader columns.
func WriteCampaignsCSV(w io.Writer, campaigns []*models.GoogleAdsCampaign) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CampaignsCSVHeader); err != nil {
		return err
	}
	for _, c := range campaigns {
		if err := cw.Write([]string{
			c.CampaignId,
			c.Name,
			c.Status,
			c.Budget.StringFixed(2),
			strconv.FormatInt(c.Impressions, 10),
			strconv.FormatInt(c.Clicks, 10),
			c.Cost.StringFixed(2),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
