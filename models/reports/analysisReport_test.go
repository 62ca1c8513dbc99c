package reports

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/agencyhub/marketing_backend/models"
	"github.com/shopspring/decimal"
)

type fakeSource struct {
	exists    bool
	customers []*models.Customer
	manual    []*models.ManualEntry
	bank      []*models.BankTransaction
	campaigns []*models.GoogleAdsCampaign
	mails     []time.Time

	bankErr  error
	panicAds bool
}

func (f *fakeSource) AgencyExists(ctx context.Context, agencyId int) (bool, error) {
	return f.exists, nil
}

func (f *fakeSource) AccountingCustomers(ctx context.Context, agencyId int) ([]*models.Customer, error) {
	return f.customers, nil
}

func (f *fakeSource) ManualEntries(ctx context.Context, agencyId int) ([]*models.ManualEntry, error) {
	return f.manual, nil
}

func (f *fakeSource) BankTransactions(ctx context.Context, agencyId int) ([]*models.BankTransaction, error) {
	if f.bankErr != nil {
		return nil, f.bankErr
	}
	return f.bank, nil
}

func (f *fakeSource) AdCampaigns(ctx context.Context, agencyId int) ([]*models.GoogleAdsCampaign, error) {
	if f.panicAds {
		panic("boom")
	}
	return f.campaigns, nil
}

func (f *fakeSource) CountMailSince(ctx context.Context, agencyId int, since time.Time) (int64, error) {
	var n int64
	for _, d := range f.mails {
		if !d.Before(since) {
			n++
		}
	}
	return n, nil
}

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestAnalyzer(src AnalysisSource) *Analyzer {
	a := NewAnalyzer(src)
	a.Now = func() time.Time { return fixedNow }
	a.MailWindowDays = 7
	a.Tracer = nil
	return a
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func mustEqual(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("%s: expected %s, got %s", name, want, got.String())
	}
}

func TestAnalyze_UnknownAgency(t *testing.T) {
	_, err := newTestAnalyzer(&fakeSource{exists: false}).Analyze(context.Background(), 42)
	var nf *models.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestAnalyze_NoSourcesIsAllZero(t *testing.T) {
	s, err := newTestAnalyzer(&fakeSource{exists: true}).Analyze(context.Background(), 1)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	for name, v := range map[string]decimal.Decimal{
		"total_gross":           s.Accounting.TotalGross,
		"average_gross":         s.Accounting.AverageGrossPerCustomer,
		"manual_total":          s.Manual.TotalAmount,
		"average_per_entry":     s.Manual.AveragePerEntry,
		"bank_total":            s.Bank.TotalAmount,
		"average_transaction":   s.Bank.AverageTransactionAmount,
		"total_budget":          s.Ads.TotalBudget,
		"total_revenue":         s.Comparison.TotalRevenue,
		"accounting_percentage": s.Comparison.AccountingPercentage,
		"manual_percentage":     s.Comparison.ManualPercentage,
		"bank_percentage":       s.Comparison.BankPercentage,
	} {
		if !v.IsZero() {
			t.Fatalf("%s: expected 0, got %s", name, v)
		}
	}
	if s.Mail.RecentEmails != 0 || s.Ads.ActiveCampaigns != 0 {
		t.Fatalf("expected zero counts, got %+v %+v", s.Mail, s.Ads)
	}
	if len(s.Failures) != 0 {
		t.Fatalf("expected no failures, got %+v", s.Failures)
	}
}

func TestAnalyze_AccountingAndManualPercentages(t *testing.T) {
	src := &fakeSource{
		exists:    true,
		customers: []*models.Customer{{TotalGross: dec(100), TotalNet: dec(80)}},
		manual:    []*models.ManualEntry{{Identifier: "x", TotalAmount: dec(50)}},
	}
	s, err := newTestAnalyzer(src).Analyze(context.Background(), 1)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	mustEqual(t, "total_gross", s.Accounting.TotalGross, "100")
	mustEqual(t, "total_net", s.Accounting.TotalNet, "80")
	mustEqual(t, "manual", s.Manual.TotalAmount, "50")
	mustEqual(t, "total_revenue", s.Comparison.TotalRevenue, "150")
	mustEqual(t, "accounting_percentage", s.Comparison.AccountingPercentage, "66.67")
	mustEqual(t, "manual_percentage", s.Comparison.ManualPercentage, "33.33")
	mustEqual(t, "bank_percentage", s.Comparison.BankPercentage, "0")
	mustEqual(t, "average_gross", s.Accounting.AverageGrossPerCustomer, "100")
}

func TestAnalyze_BankIncomeExpensesNet(t *testing.T) {
	src := &fakeSource{
		exists: true,
		bank: []*models.BankTransaction{
			{Amount: dec(100), Purpose: "Invoice"},
			{Amount: dec(-40), Purpose: "Rent"},
		},
	}
	s, err := newTestAnalyzer(src).Analyze(context.Background(), 1)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	mustEqual(t, "income", s.Bank.TotalIncome, "100")
	mustEqual(t, "expenses", s.Bank.TotalExpenses, "40")
	mustEqual(t, "net", s.Bank.NetIncome, "60")
	mustEqual(t, "total", s.Bank.TotalAmount, "60")
	mustEqual(t, "average_transaction", s.Bank.AverageTransactionAmount, "30")
	if len(s.Bank.CategoryBreakdown) != 2 || s.Bank.CategoryBreakdown[0].Category != "Invoice" {
		t.Fatalf("unexpected breakdown %+v", s.Bank.CategoryBreakdown)
	}
	mustEqual(t, "rent", s.Bank.CategoryBreakdown[1].Amount, "-40")
}

func TestAnalyze_TotalRevenueIsSumOfSources(t *testing.T) {
	src := &fakeSource{
		exists:    true,
		customers: []*models.Customer{{TotalGross: decimal.RequireFromString("10.25")}, {TotalGross: decimal.RequireFromString("0.75")}},
		manual:    []*models.ManualEntry{{TotalAmount: dec(7)}},
		bank:      []*models.BankTransaction{{Amount: dec(5)}, {Amount: dec(-2)}},
	}
	s, err := newTestAnalyzer(src).Analyze(context.Background(), 1)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	sum := s.Accounting.TotalGross.Add(s.Manual.TotalAmount).Add(s.Bank.TotalAmount)
	if !s.Comparison.TotalRevenue.Equal(sum) {
		t.Fatalf("total_revenue %s != sum %s", s.Comparison.TotalRevenue, sum)
	}
	mustEqual(t, "total_inflow", s.Comparison.TotalInflow, "23")
}

func TestAnalyze_IsDeterministic(t *testing.T) {
	src := &fakeSource{
		exists:    true,
		customers: []*models.Customer{{TotalGross: dec(3), TotalNet: dec(2)}},
		bank: []*models.BankTransaction{
			{Amount: dec(1), Purpose: "b"}, {Amount: dec(2), Purpose: "a"}, {Amount: dec(3), Purpose: "c"},
		},
		campaigns: []*models.GoogleAdsCampaign{{Budget: dec(9), Status: "ENABLED"}},
		mails:     []time.Time{fixedNow.Add(-time.Hour)},
	}
	a := newTestAnalyzer(src)
	first, err := a.Analyze(context.Background(), 1)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	second, err := a.Analyze(context.Background(), 1)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	b1, _ := json.Marshal(first)
	b2, _ := json.Marshal(second)
	if string(b1) != string(b2) {
		t.Fatalf("expected identical output\n%s\n%s", b1, b2)
	}
}

func TestAnalyze_AdsAndMailWindow(t *testing.T) {
	src := &fakeSource{
		exists: true,
		campaigns: []*models.GoogleAdsCampaign{
			{Budget: dec(10), Status: "ENABLED"},
			{Budget: dec(5), Status: "PAUSED"},
			{Budget: dec(1), Status: "REMOVED"},
		},
		mails: []time.Time{
			fixedNow.Add(-24 * time.Hour),
			fixedNow.Add(-6 * 24 * time.Hour),
			fixedNow.Add(-8 * 24 * time.Hour),
		},
	}
	s, err := newTestAnalyzer(src).Analyze(context.Background(), 1)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	mustEqual(t, "budget", s.Ads.TotalBudget, "16")
	if s.Ads.CampaignCount != 3 || s.Ads.ActiveCampaigns != 1 {
		t.Fatalf("unexpected ads %+v", s.Ads)
	}
	if s.Mail.RecentEmails != 2 || s.Mail.WindowDays != 7 {
		t.Fatalf("unexpected mail %+v", s.Mail)
	}
}

func TestAnalyze_FailingSourceIsZeroedAndReported(t *testing.T) {
	src := &fakeSource{
		exists:    true,
		customers: []*models.Customer{{TotalGross: dec(100)}},
		bankErr:   errors.New("db timeout"),
		panicAds:  true,
	}
	s, err := newTestAnalyzer(src).Analyze(context.Background(), 1)
	if err != nil {
		t.Fatalf("Analyze must not fail on a source error: %v", err)
	}
	if len(s.Failures) != 2 || s.Failures[0].Source != SourceBank || s.Failures[1].Source != SourceAds {
		t.Fatalf("unexpected failures %+v", s.Failures)
	}
	if !s.Bank.TotalAmount.IsZero() || s.Bank.CategoryBreakdown == nil {
		t.Fatalf("failed bank source should be zero with an empty breakdown, got %+v", s.Bank)
	}
	mustEqual(t, "accounting_percentage", s.Comparison.AccountingPercentage, "100")
}

func TestPercentageGuardsZero(t *testing.T) {
	if !percentage(dec(5), decimal.Zero).IsZero() {
		t.Fatalf("expected 0 for zero total")
	}
	mustEqual(t, "third", percentage(dec(1), dec(3)), "33.33")
}
