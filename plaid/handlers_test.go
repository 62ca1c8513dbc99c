package plaid

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agencyhub/marketing_backend/utils"
	"github.com/gin-gonic/gin"
)

func serveLinkToken(agencyId int) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/plaid/link-token", LinkTokenHandler())
	req := httptest.NewRequest(http.MethodPost, "/plaid/link-token", nil)
	req = req.WithContext(utils.SetAgencyIdInContext(req.Context(), agencyId))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLinkTokenHandler(t *testing.T) {
	newTestServer(t, 0)
	w := serveLinkToken(42)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var token LinkToken
	if err := json.Unmarshal(w.Body.Bytes(), &token); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if token.LinkToken != "link-sandbox-42" || token.Expiration == "" {
		t.Fatalf("unexpected token %+v", token)
	}
}

func TestLinkTokenHandlerUpstreamFailure(t *testing.T) {
	newTestServer(t, 0)
	t.Setenv("PLAID_CLIENT_ID", "other")
	w := serveLinkToken(42)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
}
