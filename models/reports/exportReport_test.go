package reports

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/agencyhub/marketing_backend/models"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func TestWriteCampaignsCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCampaignsCSV(&buf, []*models.GoogleAdsCampaign{
		{CampaignId: "123", Name: "Spring, Sale", Status: "ENABLED", Budget: decimal.RequireFromString("12.5"), Impressions: 1000, Clicks: 25, Cost: decimal.RequireFromString("3.456")},
	})
	if err != nil {
		t.Fatalf("WriteCampaignsCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(rows))
	}
	if got := rows[0]; len(got) != 7 || got[0] != "Campaign ID" || got[6] != "Cost" {
		t.Fatalf("unexpected header %v", got)
	}
	want := []string{"123", "Spring, Sale", "ENABLED", "12.50", "1000", "25", "3.46"}
	for i := range want {
		if rows[1][i] != want[i] {
			t.Fatalf("column %d: expected %q, got %q", i, want[i], rows[1][i])
		}
	}
}

func TestWriteAgencyWorkbook(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	export := &AgencyExport{
		Agency:        &models.Agency{ID: 1, Email: "a@b.de"},
		Customers:     []*models.Customer{{ConnectionId: 1, ExternalId: "c-1", Name: "ACME", TotalGross: decimal.NewFromInt(100), TotalNet: decimal.NewFromInt(80)}},
		ManualEntries: []*models.ManualEntry{{Identifier: "m-1", TotalAmount: decimal.NewFromInt(50), AddedOn: day}},
		BankTransactions: []*models.BankTransaction{
			{ConnectionId: 2, TransactionId: "t-1", Amount: decimal.NewFromInt(-40), Purpose: "Rent", BookingDate: &day},
		},
	}
	var buf bytes.Buffer
	if err := WriteAgencyWorkbook(&buf, export); err != nil {
		t.Fatalf("WriteAgencyWorkbook: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 4 || sheets[0] != SheetCustomers {
		t.Fatalf("unexpected sheets %v", sheets)
	}
	name, err := f.GetCellValue(SheetCustomers, "C2")
	if err != nil || name != "ACME" {
		t.Fatalf("expected ACME in C2, got %q (%v)", name, err)
	}
	purpose, err := f.GetCellValue(SheetBankTransactions, "E2")
	if err != nil || purpose != "Rent" {
		t.Fatalf("expected Rent in E2, got %q (%v)", purpose, err)
	}
	header, err := f.GetCellValue(SheetCampaigns, "A1")
	if err != nil || header != "Campaign ID" {
		t.Fatalf("expected campaign header, got %q (%v)", header, err)
	}
}
