package workflow

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/agencyhub/marketing_backend/models"
)

type fakeSyncer struct {
	name  string
	n     int
	err   error
	calls int
}

func (f *fakeSyncer) Name() string { return f.name }

func (f *fakeSyncer) Sync(ctx context.Context, agencyId int) (int, error) {
	f.calls++
	return f.n, f.err
}

func TestRunSourcesContinuesAfterFailure(t *testing.T) {
	lex := &fakeSyncer{name: "lexoffice", err: errors.New("boom")}
	bank := &fakeSyncer{name: "finapi", n: 4}
	stats, failures := runSources(context.Background(), 1, []SourceSyncer{lex, bank})
	if lex.calls != 1 || bank.calls != 1 {
		t.Fatalf("every source must run once, got %d %d", lex.calls, bank.calls)
	}
	if stats["finapi"] != 4 || stats["lexoffice"] != 0 {
		t.Fatalf("unexpected stats %v", stats)
	}
	if len(failures) != 1 || failures[0].source != "lexoffice" {
		t.Fatalf("unexpected failures %+v", failures)
	}
}

func TestRunSourcesStopsCallingAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &fakeSyncer{name: "plaid", n: 1}
	_, failures := runSources(ctx, 1, []SourceSyncer{s})
	if s.calls != 0 || len(failures) != 1 {
		t.Fatalf("cancelled run must not call sources, calls=%d failures=%d", s.calls, len(failures))
	}
}

func TestRunStatus(t *testing.T) {
	fail := []sourceFailure{{source: "mail", err: errors.New("x")}}
	tests := []struct {
		name     string
		stats    map[string]int
		failures []sourceFailure
		want     string
	}{
		{"no sources", map[string]int{}, nil, models.SyncRunStatusSuccess},
		{"all good", map[string]int{"plaid": 3}, nil, models.SyncRunStatusSuccess},
		{"some synced", map[string]int{"plaid": 3, "mail": 0}, fail, models.SyncRunStatusPartial},
		{"nothing synced", map[string]int{"mail": 0}, fail, models.SyncRunStatusFailed},
	}
	for _, tt := range tests {
		if got := runStatus(tt.stats, tt.failures); got != tt.want {
			t.Fatalf("%s: got %s want %s", tt.name, got, tt.want)
		}
	}
}

func TestDecodeSyncRequest(t *testing.T) {
	data := base64.StdEncoding.EncodeToString([]byte(`{"agency_id":7,"run_id":12}`))
	req, ok := decodeSyncRequest([]byte(`{"message":{"data":"` + data + `","messageId":"1"},"subscription":"s"}`))
	if !ok || req.AgencyId != 7 || req.RunId != 12 {
		t.Fatalf("unexpected request %+v ok=%v", req, ok)
	}
	empty := base64.StdEncoding.EncodeToString([]byte(`{"agency_id":7}`))
	if _, ok := decodeSyncRequest([]byte(`{"message":{"data":"` + empty + `"}}`)); ok {
		t.Fatalf("request without run id must be rejected")
	}
	if _, ok := decodeSyncRequest([]byte(`not json`)); ok {
		t.Fatalf("garbage must be rejected")
	}
}
