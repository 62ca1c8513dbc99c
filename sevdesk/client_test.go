package sevdesk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/CheckAccount", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "tok" || r.URL.Query().Get("embed") != "sevClient" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"objects":[{"sevClient":{"id":"4711","name":"Muster GmbH"}}]}`))
	})
	mux.HandleFunc("/Invoice/12", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"objects":[{"id":"12","status":"200","sumNet":"100.00","sumGross":"119.00",
			"contact":{"id":"55","surename":"Max","familyname":"Muster"}}]}`))
	})
	mux.HandleFunc("/Invoice/13", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"objects":[]}`))
	})
	mux.HandleFunc("/Invoice", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("offset") {
		case "0":
			w.Write([]byte(`{"objects":[{"id":"1","status":"100"},{"id":"2","status":"1000"}]}`))
		default:
			w.Write([]byte(`{"objects":[{"id":"3","status":"200"}]}`))
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	t.Setenv("SEVDESK_BASE_URL", srv.URL)
}

func TestOrganization(t *testing.T) {
	newTestServer(t)
	client, err := NewClient(" tok ")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	id, name, err := client.Organization(context.Background())
	if err != nil {
		t.Fatalf("Organization: %v", err)
	}
	if id != "4711" || name != "Muster GmbH" {
		t.Fatalf("unexpected org %s %s", id, name)
	}
}

func TestInvoiceToInput(t *testing.T) {
	newTestServer(t)
	client, _ := NewClient("tok")
	inv, err := client.Invoice(context.Background(), "12")
	if err != nil {
		t.Fatalf("Invoice: %v", err)
	}
	in, err := invoiceInput(inv, "")
	if err != nil {
		t.Fatalf("invoiceInput: %v", err)
	}
	if in.InvoiceId != "12" || in.ContactId != "55" || in.ContactName != "Max Muster" {
		t.Fatalf("unexpected input %+v", in)
	}
	if in.Gross.String() != "119" || in.Net.String() != "100" {
		t.Fatalf("unexpected sums %s %s", in.Gross, in.Net)
	}
	in, _ = invoiceInput(inv, "Override")
	if in.ContactName != "Override" {
		t.Fatalf("explicit customer name should win")
	}
}

func TestMissingInvoiceIs404(t *testing.T) {
	newTestServer(t)
	client, _ := NewClient("tok")
	_, err := client.Invoice(context.Background(), "13")
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestInvoicesPaging(t *testing.T) {
	newTestServer(t)
	client, _ := NewClient("tok")
	invoices, err := client.Invoices(context.Background(), 2, 5)
	if err != nil {
		t.Fatalf("Invoices: %v", err)
	}
	if len(invoices) != 3 {
		t.Fatalf("expected 3 invoices, got %d", len(invoices))
	}
	if invoices[0].Status.String() != statusDraft {
		t.Fatalf("first invoice should be a draft")
	}
}
