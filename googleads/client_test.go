package googleads

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("refresh_token") != "rt-1" || r.PostForm.Get("client_id") != "cid" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/customers/1234567890/googleAds:search", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-1" || r.Header.Get("developer-token") != "dev" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var in searchRequest
		json.NewDecoder(r.Body).Decode(&in)
		switch {
		case in.Query == customerQuery:
			w.Write([]byte(`{"results":[{"customer":{"id":"1234567890","descriptiveName":"Shop"}}]}`))
		case in.Query == campaignQuery && in.PageToken == "":
			w.Write([]byte(`{"results":[
				{"campaign":{"id":"11","name":"Brand","status":"ENABLED"},"campaignBudget":{"amountMicros":"5000000"},
				 "metrics":{"impressions":"100","clicks":"10","costMicros":"1500000"}},
				{"campaign":{"id":"22","name":"Search","status":"PAUSED"},"campaignBudget":{"amountMicros":"2500000"},
				 "metrics":{"impressions":"50","clicks":"0","costMicros":"0"}}],"nextPageToken":"p2"}`))
		case in.Query == campaignQuery && in.PageToken == "p2":
			w.Write([]byte(`{"results":[
				{"campaign":{"id":"11","name":"Brand","status":"ENABLED"},"campaignBudget":{"amountMicros":"5000000"},
				 "metrics":{"impressions":"20","clicks":"2","costMicros":"250000"}}]}`))
		case in.Query == performanceQuery:
			w.Write([]byte(`{"results":[{"metrics":{"impressions":"200","clicks":"5","costMicros":"3000000","conversions":1.5}}]}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	t.Setenv("GOOGLEADS_BASE_URL", srv.URL)
	t.Setenv("GOOGLEADS_TOKEN_URL", srv.URL+"/token")
	t.Setenv("GOOGLE_ADS_CLIENT_ID", "cid")
	t.Setenv("GOOGLE_ADS_CLIENT_SECRET", "sec")
	t.Setenv("GOOGLE_ADS_DEVELOPER_TOKEN", "dev")
	t.Setenv("GOOGLE_ADS_LOGIN_CUSTOMER_ID", "")
}

func TestCustomerValidatesAccess(t *testing.T) {
	newTestServer(t)
	client, err := NewClient(context.Background(), "123-456-7890", "rt-1")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	customer, err := client.Customer(context.Background())
	if err != nil {
		t.Fatalf("Customer: %v", err)
	}
	if customer.Id != "1234567890" || customer.DescriptiveName != "Shop" {
		t.Fatalf("unexpected customer %+v", customer)
	}

	bad, _ := NewClient(context.Background(), "1234567890", "other")
	if _, err := bad.Customer(context.Background()); err == nil {
		t.Fatalf("expected error for a rejected refresh token")
	}
}

func TestCampaignsMergesPagesAndConvertsMicros(t *testing.T) {
	newTestServer(t)
	client, _ := NewClient(context.Background(), "1234567890", "rt-1")
	campaigns, err := client.Campaigns(context.Background())
	if err != nil {
		t.Fatalf("Campaigns: %v", err)
	}
	if len(campaigns) != 2 {
		t.Fatalf("expected 2 campaigns, got %d", len(campaigns))
	}
	brand := campaigns[0]
	if brand.CampaignId != "11" || brand.Impressions != 120 || brand.Clicks != 12 {
		t.Fatalf("unexpected brand campaign %+v", brand)
	}
	if brand.Budget.String() != "5" || brand.Cost.String() != "1.75" {
		t.Fatalf("unexpected money values budget=%s cost=%s", brand.Budget, brand.Cost)
	}
	if campaigns[1].Status != "PAUSED" || campaigns[1].Budget.String() != "2.5" {
		t.Fatalf("unexpected second campaign %+v", campaigns[1])
	}
}

func TestPerformance(t *testing.T) {
	newTestServer(t)
	client, _ := NewClient(context.Background(), "1234567890", "rt-1")
	perf, err := client.Performance(context.Background())
	if err != nil {
		t.Fatalf("Performance: %v", err)
	}
	if perf.Impressions != 200 || perf.Clicks != 5 || perf.Cost.String() != "3" {
		t.Fatalf("unexpected performance %+v", perf)
	}
	if perf.Ctr.String() != "2.5" || perf.Conversions.String() != "1.5" {
		t.Fatalf("unexpected ctr/conversions %s %s", perf.Ctr, perf.Conversions)
	}
}

func TestNewClientRequiresConfig(t *testing.T) {
	t.Setenv("GOOGLE_ADS_CLIENT_ID", "")
	if _, err := NewClient(context.Background(), "1", "rt"); err == nil {
		t.Fatalf("expected missing credentials error")
	}
}
