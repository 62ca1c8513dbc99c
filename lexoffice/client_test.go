package lexoffice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agencyhub/marketing_backend/models"
	"github.com/shopspring/decimal"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"organizationId":"org-1","companyName":"Acme GmbH"}`))
	})
	mux.HandleFunc("/v1/event-subscriptions", func(w http.ResponseWriter, r *http.Request) {
		var in eventSubscription
		json.NewDecoder(r.Body).Decode(&in)
		if in.EventType != EventInvoiceCreated || in.CallbackUrl != "https://hooks.example/lex" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"id":"sub-9"}`))
	})
	mux.HandleFunc("/v1/contacts/c-1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"c-1","person":{"firstName":"Ada","lastName":"Lovelace"}}`))
	})
	mux.HandleFunc("/v1/invoices/inv-1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"inv-1","organizationId":"org-1","address":{"contactId":"c-1","name":"Ada"},
			"totalPrice":{"currency":"EUR","totalNetAmount":100.5,"totalGrossAmount":119.6}}`))
	})
	mux.HandleFunc("/v1/voucherlist", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("voucherType") != "invoice" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch r.URL.Query().Get("page") {
		case "0":
			w.Write([]byte(`{"content":[{"id":"inv-1"},{"id":"inv-2"}],"last":false,"totalPages":2,"number":0}`))
		default:
			w.Write([]byte(`{"content":[{"id":"inv-3"}],"last":true,"totalPages":2,"number":1}`))
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	t.Setenv("LEXOFFICE_BASE_URL", srv.URL)
	return srv
}

func TestProfileAndSubscribe(t *testing.T) {
	newTestServer(t)
	client, err := NewClient("key-1")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	profile, err := client.Profile(context.Background())
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile.OrganizationId != "org-1" || profile.CompanyName != "Acme GmbH" {
		t.Fatalf("unexpected profile %+v", profile)
	}
	id, err := client.Subscribe(context.Background(), "https://hooks.example/lex")
	if err != nil || id != "sub-9" {
		t.Fatalf("Subscribe: %q %v", id, err)
	}
}

func TestWrongKeyIsRejected(t *testing.T) {
	newTestServer(t)
	client, _ := NewClient("other")
	if _, err := client.Profile(context.Background()); err == nil {
		t.Fatalf("expected an error for an invalid key")
	}
	if _, err := NewClient("  "); err == nil {
		t.Fatalf("empty key must be rejected")
	}
}

func TestInvoiceMapsToInput(t *testing.T) {
	newTestServer(t)
	client, _ := NewClient("key-1")
	inv, err := client.Invoice(context.Background(), "inv-1")
	if err != nil {
		t.Fatalf("Invoice: %v", err)
	}
	input, err := invoiceInput(inv)
	if err != nil {
		t.Fatalf("invoiceInput: %v", err)
	}
	if input.ContactId != "c-1" || input.Gross.String() != "119.6" || input.Net.String() != "100.5" {
		t.Fatalf("unexpected input %+v", input)
	}

	inv.Address.ContactId = ""
	if _, err := invoiceInput(inv); err != errNoContact {
		t.Fatalf("expected errNoContact, got %v", err)
	}
}

func TestContactDisplayName(t *testing.T) {
	newTestServer(t)
	client, _ := NewClient("key-1")
	contact, err := client.Contact(context.Background(), " c-1 ")
	if err != nil {
		t.Fatalf("Contact: %v", err)
	}
	if contact.DisplayName() != "Ada Lovelace" {
		t.Fatalf("unexpected name %q", contact.DisplayName())
	}
}

func TestInvoiceIdsFollowsPages(t *testing.T) {
	newTestServer(t)
	client, _ := NewClient("key-1")
	ids, complete, err := client.InvoiceIds(context.Background(), 5)
	if err != nil {
		t.Fatalf("InvoiceIds: %v", err)
	}
	if len(ids) != 3 || ids[2] != "inv-3" || !complete {
		t.Fatalf("unexpected ids %v (complete=%v)", ids, complete)
	}
	ids, complete, _ = client.InvoiceIds(context.Background(), 1)
	if len(ids) != 2 {
		t.Fatalf("maxPages should cap paging, got %v", ids)
	}
	if complete {
		t.Fatalf("a capped listing must be reported as incomplete")
	}
}

func TestNegativeInvoiceIsSkipped(t *testing.T) {
	conn := &models.AccountingConnection{ID: 3, AgencyId: 1, Source: models.AccountingSourceLexoffice}
	in := models.InvoiceInput{InvoiceId: "inv-9", ContactId: "c-1", Gross: decimal.NewFromInt(-20), Net: decimal.NewFromInt(-16)}
	applied, err := applyInvoice(context.Background(), conn, in)
	if err != nil || applied {
		t.Fatalf("expected a silent skip, got applied=%v err=%v", applied, err)
	}
}

func TestHandleEventIgnoresOtherTypes(t *testing.T) {
	applied, err := HandleEvent(context.Background(), &WebhookEvent{EventType: "contact.changed", ResourceId: "x"})
	if err != nil || applied {
		t.Fatalf("expected ignored event, got %v %v", applied, err)
	}
}
