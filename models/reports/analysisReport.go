package reports

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agencyhub/marketing_backend/config"
	"github.com/agencyhub/marketing_backend/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	SourceAccounting = "accounting"
	SourceManual     = "manual"
	SourceBank       = "bank"
	SourceAds        = "ads"
	SourceMail       = "mail"
)

const uncategorized = "Uncategorized"

var hundred = decimal.NewFromInt(100)

// AnalysisSource reads the stored records of one agency.
type AnalysisSource interface {
	AgencyExists(ctx context.Context, agencyId int) (bool, error)
	AccountingCustomers(ctx context.Context, agencyId int) ([]*models.Customer, error)
	ManualEntries(ctx context.Context, agencyId int) ([]*models.ManualEntry, error)
	BankTransactions(ctx context.Context, agencyId int) ([]*models.BankTransaction, error)
	AdCampaigns(ctx context.Context, agencyId int) ([]*models.GoogleAdsCampaign, error)
	CountMailSince(ctx context.Context, agencyId int, since time.Time) (int64, error)
}

type AccountingAnalysis struct {
	TotalGross              decimal.Decimal `json:"total_gross"`
	TotalNet                decimal.Decimal `json:"total_net"`
	CustomerCount           int             `json:"customer_count"`
	AverageGrossPerCustomer decimal.Decimal `json:"average_gross_per_customer"`
}

type ManualAnalysis struct {
	TotalAmount     decimal.Decimal `json:"total_amount"`
	EntryCount      int             `json:"entry_count"`
	AveragePerEntry decimal.Decimal `json:"average_per_entry"`
}

type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type BankAnalysis struct {
	TotalAmount              decimal.Decimal  `json:"total_amount"`
	TotalIncome              decimal.Decimal  `json:"total_income"`
	TotalExpenses            decimal.Decimal  `json:"total_expenses"`
	NetIncome                decimal.Decimal  `json:"net_income"`
	TransactionCount         int              `json:"transaction_count"`
	AverageTransactionAmount decimal.Decimal  `json:"average_transaction_amount"`
	CategoryBreakdown        []CategoryAmount `json:"category_breakdown"`
}

type AdsAnalysis struct {
	TotalBudget     decimal.Decimal `json:"total_budget"`
	CampaignCount   int             `json:"campaign_count"`
	ActiveCampaigns int             `json:"active_campaigns"`
}

type MailAnalysis struct {
	RecentEmails int64 `json:"recent_emails"`
	WindowDays   int   `json:"window_days"`
}

// ComparisonAnalysis relates each revenue source to TotalRevenue.
// TotalInflow counts only positive bank movements and is reported alongside.
type ComparisonAnalysis struct {
	TotalRevenue         decimal.Decimal `json:"total_revenue"`
	TotalInflow          decimal.Decimal `json:"total_inflow"`
	AccountingPercentage decimal.Decimal `json:"accounting_percentage"`
	ManualPercentage     decimal.Decimal `json:"manual_percentage"`
	BankPercentage       decimal.Decimal `json:"bank_percentage"`
}

type SourceFailure struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

type AnalysisSummary struct {
	AgencyId   int                `json:"agency_id"`
	Accounting AccountingAnalysis `json:"accounting"`
	Manual     ManualAnalysis     `json:"manual"`
	Bank       BankAnalysis       `json:"bank"`
	Ads        AdsAnalysis        `json:"ads"`
	Mail       MailAnalysis       `json:"mail"`
	Comparison ComparisonAnalysis `json:"comparison"`
	Failures   []SourceFailure    `json:"failures"`
}

type Analyzer struct {
	Source         AnalysisSource
	MailWindowDays int
	Now            func() time.Time
	Logger         *logrus.Logger
	Tracer         trace.Tracer
}

func NewAnalyzer(source AnalysisSource) *Analyzer {
	return &Analyzer{
		Source:         source,
		MailWindowDays: config.MailWindowDays(),
		Now:            time.Now,
		Logger:         config.GetLogger(),
		Tracer:         otel.Tracer("reports"),
	}
}

// Analyze aggregates every source of the agency. A failing source is zeroed and listed in Failures.
func (a *Analyzer) Analyze(ctx context.Context, agencyId int) (*AnalysisSummary, error) {
	if a.Tracer != nil {
		var span trace.Span
		ctx, span = a.Tracer.Start(ctx, "reports.Analyze", trace.WithAttributes(attribute.Int("agency_id", agencyId)))
		defer span.End()
	}

	exists, err := a.Source.AgencyExists(ctx, agencyId)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &models.NotFoundError{Resource: "agency", Id: agencyId}
	}

	summary := &AnalysisSummary{AgencyId: agencyId, Failures: []SourceFailure{}}

	summary.Accounting = collect(a, summary, agencyId, SourceAccounting, func() (AccountingAnalysis, error) {
		customers, err := a.Source.AccountingCustomers(ctx, agencyId)
		if err != nil {
			return AccountingAnalysis{}, err
		}
		return analyzeAccounting(customers), nil
	})
	summary.Manual = collect(a, summary, agencyId, SourceManual, func() (ManualAnalysis, error) {
		entries, err := a.Source.ManualEntries(ctx, agencyId)
		if err != nil {
			return ManualAnalysis{}, err
		}
		return analyzeManual(entries), nil
	})
	summary.Bank = collect(a, summary, agencyId, SourceBank, func() (BankAnalysis, error) {
		txs, err := a.Source.BankTransactions(ctx, agencyId)
		if err != nil {
			return BankAnalysis{}, err
		}
		return analyzeBank(txs), nil
	})
	if summary.Bank.CategoryBreakdown == nil {
		summary.Bank.CategoryBreakdown = []CategoryAmount{}
	}
	summary.Ads = collect(a, summary, agencyId, SourceAds, func() (AdsAnalysis, error) {
		campaigns, err := a.Source.AdCampaigns(ctx, agencyId)
		if err != nil {
			return AdsAnalysis{}, err
		}
		return analyzeAds(campaigns), nil
	})
	summary.Mail = collect(a, summary, agencyId, SourceMail, func() (MailAnalysis, error) {
		since := a.now().Add(-time.Duration(a.windowDays()) * 24 * time.Hour)
		n, err := a.Source.CountMailSince(ctx, agencyId, since)
		if err != nil {
			return MailAnalysis{}, err
		}
		return MailAnalysis{RecentEmails: n}, nil
	})
	summary.Mail.WindowDays = a.windowDays()

	summary.Comparison = compare(summary.Accounting, summary.Manual, summary.Bank)
	return summary, nil
}

func (a *Analyzer) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *Analyzer) windowDays() int {
	if a.MailWindowDays > 0 {
		return a.MailWindowDays
	}
	return 7
}

func (a *Analyzer) fail(summary *AnalysisSummary, agencyId int, source string, err error) {
	logger := a.Logger
	if logger == nil {
		logger = config.GetLogger()
	}
	config.LogError(logger, "reports", "Analyze", "source "+source+" failed", agencyId, err)
	summary.Failures = append(summary.Failures, SourceFailure{Source: source, Message: err.Error()})
}

// collect runs fn and turns an error or panic into a zero section plus a failure entry.
func collect[T any](a *Analyzer, summary *AnalysisSummary, agencyId int, source string, fn func() (T, error)) (result T) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			a.fail(summary, agencyId, source, fmt.Errorf("panic: %v", r))
		}
	}()
	v, err := fn()
	if err != nil {
		a.fail(summary, agencyId, source, err)
		var zero T
		return zero
	}
	return v
}

func analyzeAccounting(customers []*models.Customer) AccountingAnalysis {
	var res AccountingAnalysis
	for _, c := range customers {
		if c == nil {
			continue
		}
		res.TotalGross = res.TotalGross.Add(c.TotalGross)
		res.TotalNet = res.TotalNet.Add(c.TotalNet)
		res.CustomerCount++
	}
	res.AverageGrossPerCustomer = safeDiv(res.TotalGross, decimal.NewFromInt(int64(res.CustomerCount))).Round(2)
	return res
}

func analyzeManual(entries []*models.ManualEntry) ManualAnalysis {
	var res ManualAnalysis
	for _, e := range entries {
		if e == nil {
			continue
		}
		res.TotalAmount = res.TotalAmount.Add(e.TotalAmount)
		res.EntryCount++
	}
	res.AveragePerEntry = safeDiv(res.TotalAmount, decimal.NewFromInt(int64(res.EntryCount))).Round(2)
	return res
}

func analyzeBank(txs []*models.BankTransaction) BankAnalysis {
	res := BankAnalysis{CategoryBreakdown: []CategoryAmount{}}
	byCategory := map[string]decimal.Decimal{}
	signedExpenses := decimal.Zero
	for _, tx := range txs {
		if tx == nil {
			continue
		}
		res.TotalAmount = res.TotalAmount.Add(tx.Amount)
		if tx.Amount.IsPositive() {
			res.TotalIncome = res.TotalIncome.Add(tx.Amount)
		} else if tx.Amount.IsNegative() {
			signedExpenses = signedExpenses.Add(tx.Amount)
		}
		res.TransactionCount++

		category := strings.TrimSpace(tx.Purpose)
		if category == "" {
			category = uncategorized
		}
		byCategory[category] = byCategory[category].Add(tx.Amount)
	}
	res.TotalExpenses = signedExpenses.Abs()
	res.NetIncome = res.TotalIncome.Add(signedExpenses)
	res.AverageTransactionAmount = safeDiv(res.TotalAmount, decimal.NewFromInt(int64(res.TransactionCount))).Round(2)

	for category, amount := range byCategory {
		res.CategoryBreakdown = append(res.CategoryBreakdown, CategoryAmount{Category: category, Amount: amount})
	}
	sort.Slice(res.CategoryBreakdown, func(i, j int) bool {
		return res.CategoryBreakdown[i].Category < res.CategoryBreakdown[j].Category
	})
	return res
}

func analyzeAds(campaigns []*models.GoogleAdsCampaign) AdsAnalysis {
	var res AdsAnalysis
	for _, c := range campaigns {
		if c == nil {
			continue
		}
		res.TotalBudget = res.TotalBudget.Add(c.Budget)
		res.CampaignCount++
		if strings.EqualFold(c.Status, models.CampaignStatusEnabled) {
			res.ActiveCampaigns++
		}
	}
	return res
}

func compare(acc AccountingAnalysis, manual ManualAnalysis, bank BankAnalysis) ComparisonAnalysis {
	total := acc.TotalGross.Add(manual.TotalAmount).Add(bank.TotalAmount)
	return ComparisonAnalysis{
		TotalRevenue:         total,
		TotalInflow:          acc.TotalGross.Add(manual.TotalAmount).Add(bank.TotalIncome),
		AccountingPercentage: percentage(acc.TotalGross, total),
		ManualPercentage:     percentage(manual.TotalAmount, total),
		BankPercentage:       percentage(bank.TotalAmount, total),
	}
}

// percentage is part/total*100 rounded to 2 places, 0 when total is 0.
func percentage(part, total decimal.Decimal) decimal.Decimal {
	return safeDiv(part.Mul(hundred), total).Round(2)
}

func safeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}
