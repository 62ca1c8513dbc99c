package finapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("grant_type") != "client_credentials" || r.PostForm.Get("client_id") != "cid" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-1","token_type":"bearer","expires_in":3600}`))
	})
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer at-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			h(w, r)
		}
	}
	mux.HandleFunc("/api/v1/bankConnections/import", authed(func(w http.ResponseWriter, r *http.Request) {
		var in importRequest
		json.NewDecoder(r.Body).Decode(&in)
		if in.Interface != "XS2A" || in.BankId != 280001 || len(in.LoginCredentials) != 2 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"id":77,"name":"Main","bank":{"id":280001,"name":"Testbank"},"accountIds":[1]}`))
	}))
	mux.HandleFunc("/api/v1/accounts", authed(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"accounts":[{"id":1,"iban":"DE02120300000000202051","balance":10.5}]}`))
	}))
	mux.HandleFunc("/api/v1/transactions", authed(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("order") != "date,desc" || q.Get("perPage") != "100" || q.Get("accountIds") != "1,2" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if q.Get("page") == "1" {
			items := make([]string, 0, 100)
			for i := 0; i < 100; i++ {
				items = append(items, fmt.Sprintf(`{"id":%d,"amount":-1.5,"bankBookingDate":"2024-01-02"}`, i+1))
			}
			fmt.Fprintf(w, `{"transactions":[%s],"paging":{"page":1,"perPage":100,"pageCount":2}}`, strings.Join(items, ","))
			return
		}
		w.Write([]byte(`{"transactions":[{"id":500,"amount":250,"purpose":"Fee","counterpartName":"ACME","bankBookingDate":"2024-01-01"}],"paging":{"page":2,"perPage":100,"pageCount":2}}`))
	}))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	t.Setenv("FINAPI_BASE_URL", srv.URL)
	t.Setenv("FINAPI_CLIENT_ID", "cid")
	t.Setenv("FINAPI_CLIENT_SECRET", "secret")
}

func TestClientCredentialsAndImport(t *testing.T) {
	newTestServer(t)
	ctx := context.Background()
	client, err := NewClient(ctx)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	conn, err := client.ImportConnection(ctx, 280001, "user", "pw")
	if err != nil {
		t.Fatalf("ImportConnection: %v", err)
	}
	if conn.Id != 77 || conn.Bank.Name != "Testbank" {
		t.Fatalf("unexpected connection %+v", conn)
	}
	accounts, err := client.Accounts(ctx, "77")
	if err != nil || len(accounts) != 1 || accounts[0].Iban == "" {
		t.Fatalf("Accounts: %v %v", accounts, err)
	}
}

func TestTransactionsPaging(t *testing.T) {
	newTestServer(t)
	ctx := context.Background()
	client, _ := NewClient(ctx)
	txs, err := client.Transactions(ctx, []int64{1, 2}, "2024-01-01", "2024-01-31", 10)
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(txs) != 101 {
		t.Fatalf("expected 101 transactions, got %d", len(txs))
	}
	inputs := transactionInputs(txs[100:])
	in := inputs[0]
	if in.TransactionId != "500" || in.Amount.String() != "250" || in.Counterparty != "ACME" || in.Currency != "EUR" {
		t.Fatalf("unexpected input %+v", in)
	}
	if in.BookingDate == nil || in.BookingDate.Day() != 1 {
		t.Fatalf("booking date not parsed")
	}
}

func TestMissingCredentials(t *testing.T) {
	t.Setenv("FINAPI_CLIENT_ID", "")
	if _, err := NewClient(context.Background()); err == nil {
		t.Fatalf("expected error without credentials")
	}
}
