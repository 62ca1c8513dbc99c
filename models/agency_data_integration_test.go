package models_test

import (
	"errors"
	"testing"
	"time"

	"github.com/agencyhub/marketing_backend/config"
	"github.com/agencyhub/marketing_backend/models"
	"github.com/shopspring/decimal"
)

func TestManualEntryAccumulatesByIdentifier(t *testing.T) {
	ctx, agency := setupIntegration(t)

	if _, err := models.SubmitManualEntry(ctx, agency.ID, &models.NewManualEntry{Identifier: "INV-7", Source: "fair", Amount: "20"}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	entry, err := models.SubmitManualEntry(ctx, agency.ID, &models.NewManualEntry{Identifier: "INV-7", Source: "fair", Amount: "30,00"})
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if !entry.TotalAmount.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected accumulated 50, got %s", entry.TotalAmount)
	}

	entries, err := models.ListManualEntries(ctx, agency.ID)
	if err != nil {
		t.Fatalf("ListManualEntries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected a single row, got %d", len(entries))
	}
	if !entries[0].TotalAmount.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected stored 50, got %s", entries[0].TotalAmount)
	}

	if _, err := models.SubmitManualEntry(ctx, agency.ID, &models.NewManualEntry{Identifier: "INV-8", Amount: "abc"}); err == nil {
		t.Fatalf("expected invalid amount to be rejected")
	}
}

func TestApplyInvoiceIsIdempotentAndMonotonic(t *testing.T) {
	ctx, agency := setupIntegration(t)

	conn, err := models.CreateAccountingConnection(ctx, agency.ID, &models.NewAccountingConnection{
		Source: models.AccountingSourceLexoffice,
		ApiKey: "key",
		OrgId:  "org-1",
		Name:   "Org",
	})
	if err != nil {
		t.Fatalf("CreateAccountingConnection: %v", err)
	}
	if _, err := models.CreateAccountingConnection(ctx, agency.ID, &models.NewAccountingConnection{
		Source: models.AccountingSourceLexoffice, ApiKey: "key", OrgId: "org-1",
	}); !models.IsAlreadyExists(err) {
		t.Fatalf("expected AlreadyExistsError for duplicate org, got %v", err)
	}

	in := models.InvoiceInput{InvoiceId: "inv-1", ContactId: "c-1", ContactName: "ACME", Gross: decimal.NewFromInt(100), Net: decimal.NewFromInt(80)}
	customer, applied, err := models.ApplyInvoice(ctx, conn, in)
	if err != nil || !applied {
		t.Fatalf("ApplyInvoice: applied=%v err=%v", applied, err)
	}
	if !customer.TotalGross.Equal(decimal.NewFromInt(100)) || !customer.TotalNet.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("unexpected totals %s/%s", customer.TotalGross, customer.TotalNet)
	}

	if _, applied, err := models.ApplyInvoice(ctx, conn, in); err != nil || applied {
		t.Fatalf("replay must be a no-op: applied=%v err=%v", applied, err)
	}

	in2 := models.InvoiceInput{InvoiceId: "inv-2", ContactId: "c-1", Gross: decimal.NewFromInt(10), Net: decimal.NewFromInt(8)}
	customer, _, err = models.ApplyInvoice(ctx, conn, in2)
	if err != nil {
		t.Fatalf("ApplyInvoice second: %v", err)
	}
	if !customer.TotalGross.Equal(decimal.NewFromInt(110)) {
		t.Fatalf("expected 110, got %s", customer.TotalGross)
	}

	neg := models.InvoiceInput{InvoiceId: "inv-3", ContactId: "c-1", Gross: decimal.NewFromInt(-5)}
	if _, _, err := models.ApplyInvoice(ctx, conn, neg); !errors.Is(err, models.ErrorNegativeInvoice) {
		t.Fatalf("expected ErrorNegativeInvoice, got %v", err)
	}

	if _, err := models.DeleteAccountingConnection(ctx, agency.ID, conn.ID); err != nil {
		t.Fatalf("DeleteAccountingConnection: %v", err)
	}
	customers, err := models.ListCustomers(ctx, agency.ID, 0)
	if err != nil {
		t.Fatalf("ListCustomers: %v", err)
	}
	if len(customers) != 0 {
		t.Fatalf("expected cascade delete of customers, got %d", len(customers))
	}
}

func TestUpsertBankTransactionsOverwrites(t *testing.T) {
	ctx, agency := setupIntegration(t)

	conn, err := models.CreateBankConnection(ctx, agency.ID, &models.NewBankConnection{
		Provider: models.BankProviderPlaid,
		Name:     "Checking",
		Phone:    "+49 30 123456",
	})
	if err != nil {
		t.Fatalf("CreateBankConnection: %v", err)
	}
	if conn.Phone != "+4930123456" {
		t.Fatalf("expected E.164 phone, got %q", conn.Phone)
	}

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	n, err := models.UpsertBankTransactions(ctx, conn, []models.BankTransactionInput{
		{TransactionId: "t1", Amount: decimal.NewFromInt(100), Purpose: "Invoice", BookingDate: &day},
		{TransactionId: "t2", Amount: decimal.NewFromInt(-40), Purpose: "Rent", BookingDate: &day},
	})
	if err != nil || n != 2 {
		t.Fatalf("UpsertBankTransactions: n=%d err=%v", n, err)
	}
	if _, err := models.UpsertBankTransactions(ctx, conn, []models.BankTransactionInput{
		{TransactionId: "t2", Amount: decimal.NewFromInt(-45), Purpose: "Rent March", BookingDate: &day},
	}); err != nil {
		t.Fatalf("UpsertBankTransactions overwrite: %v", err)
	}

	txs, err := models.ListBankTransactions(ctx, agency.ID, conn.ID)
	if err != nil {
		t.Fatalf("ListBankTransactions: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 rows after overwrite, got %d", len(txs))
	}
	found, err := models.SearchBankTransactions(ctx, agency.ID, models.BankTransactionFilter{Query: "March"})
	if err != nil || len(found) != 1 || !found[0].Amount.Equal(decimal.NewFromInt(-45)) {
		t.Fatalf("expected overwritten row from search, got %v (err %v)", found, err)
	}

	balances, err := models.AccountBalances(ctx, agency.ID)
	if err != nil {
		t.Fatalf("AccountBalances: %v", err)
	}
	if len(balances) != 1 || !balances[0].Balance.Equal(decimal.NewFromInt(55)) {
		t.Fatalf("expected balance 55, got %+v", balances)
	}

	if _, err := models.DeleteBankConnection(ctx, agency.ID, conn.ID); err != nil {
		t.Fatalf("DeleteBankConnection: %v", err)
	}
	var count int64
	config.GetDB().Model(&models.BankTransaction{}).Where("connection_id = ?", conn.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected cascade delete of transactions, got %d", count)
	}
}

func TestInsertEmailIfAbsentDedupes(t *testing.T) {
	ctx, agency := setupIntegration(t)

	user, err := models.CreateMailUser(ctx, agency.ID, &models.NewMailUser{Email: "team@gmail.com", Password: "app-password"})
	if err != nil {
		t.Fatalf("CreateMailUser: %v", err)
	}
	if user.Provider != config.ProviderGmail || user.Folder != "INBOX" {
		t.Fatalf("unexpected mailbox %+v", user)
	}
	if _, err := models.CreateMailUser(ctx, agency.ID, &models.NewMailUser{Email: "x@unknown.example", Password: "p"}); err == nil {
		t.Fatalf("expected unsupported domain to be rejected")
	}

	in := models.EmailInput{Subject: "Hello", Sender: "a@b.de", Recipient: "team@gmail.com", Date: time.Now().Add(-time.Hour)}
	inserted, err := models.InsertEmailIfAbsent(ctx, user, in)
	if err != nil || !inserted {
		t.Fatalf("first insert: inserted=%v err=%v", inserted, err)
	}
	inserted, err = models.InsertEmailIfAbsent(ctx, user, in)
	if err != nil || inserted {
		t.Fatalf("duplicate insert: inserted=%v err=%v", inserted, err)
	}
	n, err := models.CountEmailsSince(ctx, agency.ID, time.Now().Add(-24*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("CountEmailsSince: n=%d err=%v", n, err)
	}
}

func TestLoginAndGetAgency(t *testing.T) {
	ctx, agency := setupIntegration(t)

	info, err := models.Login(ctx, agency.Email, "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if info.AgencyId != agency.ID || info.Token == "" || info.Jwt == "" {
		t.Fatalf("unexpected login info %+v", info)
	}
	if _, err := models.Login(ctx, agency.Email, "wrong-password"); err == nil {
		t.Fatalf("expected invalid password to fail")
	}
	if _, err := models.GetAgency(ctx, agency.ID+1000); !models.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if _, err := models.CreateAgency(ctx, &models.NewAgency{Email: agency.Email, Password: "password123"}); !models.IsAlreadyExists(err) {
		t.Fatalf("expected AlreadyExistsError, got %v", err)
	}
}
