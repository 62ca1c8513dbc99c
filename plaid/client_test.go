package plaid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, total int) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/item/public_token/exchange", func(w http.ResponseWriter, r *http.Request) {
		var in exchangeRequest
		json.NewDecoder(r.Body).Decode(&in)
		if in.ClientId != "cid" || in.Secret != "sec" || in.PublicToken != "public-sandbox-1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"access_token":"access-sandbox-1","item_id":"item-1"}`))
	})
	mux.HandleFunc("/link/token/create", func(w http.ResponseWriter, r *http.Request) {
		var in linkTokenRequest
		json.NewDecoder(r.Body).Decode(&in)
		if in.ClientId != "cid" || in.User.ClientUserId == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fmt.Fprintf(w, `{"link_token":"link-sandbox-%s","expiration":"2024-02-01T10:00:00Z"}`, in.User.ClientUserId)
	})
	mux.HandleFunc("/transactions/get", func(w http.ResponseWriter, r *http.Request) {
		var in transactionsRequest
		json.NewDecoder(r.Body).Decode(&in)
		if in.Options.Count != 500 || in.AccessToken != "access-sandbox-1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		n := total - in.Options.Offset
		if n > 2 {
			n = 2
		}
		fmt.Fprint(w, `{"total_transactions":`, total, `,"transactions":[`)
		for i := 0; i < n; i++ {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"transaction_id":"t%d","amount":12.5,"name":"Coffee","date":"2024-02-0%d"}`, in.Options.Offset+i, i+1)
		}
		fmt.Fprint(w, `]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	t.Setenv("PLAID_BASE_URL", srv.URL)
	t.Setenv("PLAID_CLIENT_ID", "cid")
	t.Setenv("PLAID_SECRET", "sec")
}

func TestExchangePublicToken(t *testing.T) {
	newTestServer(t, 0)
	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	access, item, err := client.ExchangePublicToken(context.Background(), "public-sandbox-1")
	if err != nil {
		t.Fatalf("ExchangePublicToken: %v", err)
	}
	if access != "access-sandbox-1" || item != "item-1" {
		t.Fatalf("unexpected tokens %s %s", access, item)
	}
}

func TestTransactionsPagesByOffset(t *testing.T) {
	newTestServer(t, 5)
	client, _ := NewClient()
	txs, err := client.Transactions(context.Background(), "access-sandbox-1", "2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(txs) != 5 {
		t.Fatalf("expected 5 transactions, got %d", len(txs))
	}
	inputs := transactionInputs(txs)
	if inputs[0].Amount.String() != "-12.5" {
		t.Fatalf("outflow should become negative, got %s", inputs[0].Amount)
	}
	if inputs[4].TransactionId != "t4" || inputs[0].BookingDate == nil {
		t.Fatalf("unexpected inputs %+v", inputs)
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	t.Setenv("PLAID_CLIENT_ID", "")
	t.Setenv("PLAID_SECRET", "")
	if _, err := NewClient(); err == nil {
		t.Fatalf("expected error")
	}
}
