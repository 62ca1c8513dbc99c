package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/agencyhub/marketing_backend/config"
)

func TestGetJSONSendsHeadersAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer k1" {
			t.Errorf("missing bearer header, got %q", r.Header.Get("Authorization"))
		}
		if r.URL.Path != "/v1/profile" || r.URL.Query().Get("embed") != "x" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		w.Write([]byte(`{"organizationId":"org-1"}`))
	}))
	defer srv.Close()

	c := New(config.ProviderConfig{Name: "test", BaseURL: srv.URL + "/"}, WithBearer(" k1 "))
	var out struct {
		OrganizationId string `json:"organizationId"`
	}
	if err := c.GetJSON(context.Background(), "/v1/profile", url.Values{"embed": {"x"}}, &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if out.OrganizationId != "org-1" {
		t.Fatalf("expected org-1, got %q", out.OrganizationId)
	}
}

func TestNon2xxBecomesStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(" slow down "))
	}))
	defer srv.Close()

	c := New(config.ProviderConfig{Name: "test", BaseURL: srv.URL})
	err := c.Delete(context.Background(), "/x")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.StatusCode != 429 || se.Body != "slow down" {
		t.Fatalf("unexpected status error %+v", se)
	}
	if !Retryable(err) {
		t.Fatalf("429 should be retryable")
	}
	if StatusCode(err) != 429 {
		t.Fatalf("StatusCode mismatch")
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) {
		t.Fatalf("nil is not retryable")
	}
	if Retryable(&StatusError{StatusCode: 404}) {
		t.Fatalf("404 is not retryable")
	}
	if !Retryable(&StatusError{StatusCode: 503}) {
		t.Fatalf("503 is retryable")
	}
	if Retryable(errors.New("bad payload")) {
		t.Fatalf("plain errors are not retryable")
	}
}

func TestPostFormEncodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/x-www-form-urlencoded" {
			t.Errorf("content type %q", r.Header.Get("Content-Type"))
		}
		r.ParseForm()
		if r.PostForm.Get("grant_type") != "client_credentials" {
			t.Errorf("form not sent")
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(config.ProviderConfig{Name: "test", BaseURL: srv.URL})
	if err := c.PostForm(context.Background(), "/oauth/token", url.Values{"grant_type": {"client_credentials"}}, nil); err != nil {
		t.Fatalf("PostForm: %v", err)
	}
}
