package deutschebank

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
)

func setupOAuthEnv(t *testing.T, srvURL string) {
	t.Helper()
	t.Setenv("DB_API_CLIENT_ID", "client")
	t.Setenv("DB_API_CLIENT_SECRET", "secret")
	t.Setenv("DB_API_REDIRECT_URL", "https://app.example/deutsche/callback")
	t.Setenv("DEUTSCHE_AUTH_URL", srvURL+"/gw/oidc/authorize")
	t.Setenv("DEUTSCHE_TOKEN_URL", srvURL+"/gw/oidc/token")
	t.Setenv("DEUTSCHE_BASE_URL", srvURL+"/gw/dbapi")
}

func TestAuthCodeURLUsesS256(t *testing.T) {
	setupOAuthEnv(t, "https://bank.example")
	cfg, err := oauthConfig()
	if err != nil {
		t.Fatalf("oauthConfig: %v", err)
	}
	raw := authCodeURL(cfg, "state-1", "verifier-verifier-verifier-verifier-verifier")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	q := u.Query()
	if u.Path != "/gw/oidc/authorize" || q.Get("state") != "state-1" || q.Get("response_type") != "code" {
		t.Fatalf("unexpected authorize url %s", raw)
	}
	if q.Get("code_challenge_method") != "S256" || q.Get("code_challenge") == "" {
		t.Fatalf("missing PKCE challenge in %s", raw)
	}
	if q.Get("client_id") != "client" || q.Get("redirect_uri") != "https://app.example/deutsche/callback" {
		t.Fatalf("missing client params in %s", raw)
	}
}

func TestRefreshTokenUsesBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := "Basic " + base64.StdEncoding.EncodeToString([]byte("client:secret"))
		r.ParseForm()
		if r.Header.Get("Authorization") != want || r.PostForm.Get("grant_type") != "refresh_token" || r.PostForm.Get("refresh_token") != "rt-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-2","refresh_token":"rt-2","token_type":"Bearer","expires_in":600}`))
	}))
	defer srv.Close()
	setupOAuthEnv(t, srv.URL)

	cfg, _ := oauthConfig()
	cfg.Endpoint.TokenURL = srv.URL
	token, err := refreshToken(context.Background(), cfg, "rt-1")
	if err != nil {
		t.Fatalf("refreshToken: %v", err)
	}
	if token.AccessToken != "at-2" || token.RefreshToken != "rt-2" {
		t.Fatalf("unexpected token %+v", token)
	}
	if _, err := refreshToken(context.Background(), cfg, ""); err == nil {
		t.Fatalf("empty refresh token must fail")
	}
}

func TestTransactionsBadRequestMeansInvalidDates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gw/dbapi/banking/transactions/v2" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		q := r.URL.Query()
		if q.Get("bookingDateFrom") == "bad" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if q.Get("iban") != "DE10010000000000005771" || q.Get("limit") != "15" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		w.Write([]byte(`{"totalItems":1,"transactions":[{"originIban":"DE10010000000000005771","amount":-20.5,
			"paymentReference":"Rent","counterPartyName":"Landlord","bookingDate":"2024-05-01","currencyCode":"EUR"}]}`))
	}))
	defer srv.Close()
	setupOAuthEnv(t, srv.URL)

	client := NewClient("at-1")
	txs, err := client.Transactions(context.Background(), "DE10010000000000005771", "", "", 15)
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(txs) != 1 || !txs[0].Amount.Equal(decimal.RequireFromString("-20.5")) {
		t.Fatalf("unexpected transactions %+v", txs)
	}
	_, err = client.Transactions(context.Background(), "DE10010000000000005771", "bad", "", 15)
	if !errors.Is(err, ErrorInvalidDates) {
		t.Fatalf("expected ErrorInvalidDates, got %v", err)
	}
}

func TestTransactionIdFallsBackToDigest(t *testing.T) {
	tx := Transaction{OriginIban: "DE1", BookingDate: "2024-05-01", Amount: decimal.NewFromInt(5), PaymentReference: "x"}
	a := transactionId(tx)
	b := transactionId(tx)
	if a == "" || a != b || len(a) != 40 {
		t.Fatalf("digest should be stable, got %q %q", a, b)
	}
	tx.PaymentReference = "y"
	if transactionId(tx) == a {
		t.Fatalf("different bookings must not collide")
	}
	tx.Id = "bank-id"
	if transactionId(tx) != "bank-id" {
		t.Fatalf("bank id should win")
	}
	inputs := transactionInputs([]Transaction{tx})
	if inputs[0].Purpose != "y" || inputs[0].Currency != "EUR" || inputs[0].BookingDate == nil {
		t.Fatalf("unexpected input %+v", inputs[0])
	}
}
