package apiclient

import (
	"errors"
	"testing"

	"github.com/agencyhub/marketing_backend/models"
)

func TestWrap(t *testing.T) {
	if Wrap("plaid", "get", nil) != nil {
		t.Fatalf("nil must stay nil")
	}
	err := Wrap("plaid", "get", &StatusError{Provider: "plaid", StatusCode: 502})
	var ae *models.AdapterError
	if !errors.As(err, &ae) || ae.Source != "plaid" || !ae.Retryable {
		t.Fatalf("unexpected wrap result %#v", err)
	}
	again := Wrap("other", "x", err)
	if again != err {
		t.Fatalf("adapter errors must not be wrapped twice")
	}
}

func TestJoinSyncErrors(t *testing.T) {
	if JoinSyncErrors("finapi", nil) != nil {
		t.Fatalf("no errors must yield nil")
	}
	err := JoinSyncErrors("finapi", []error{
		errors.New("connection 1: bad credentials"),
		Wrap("finapi", "transactions", &StatusError{StatusCode: 503}),
	})
	var ae *models.AdapterError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AdapterError, got %v", err)
	}
	if ae.Op != "sync" || !ae.Retryable {
		t.Fatalf("unexpected %+v", ae)
	}
	if StatusCode(err) != 503 {
		t.Fatalf("joined errors should still expose the status")
	}
}
