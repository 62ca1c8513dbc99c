package deutschebank

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/agencyhub/marketing_backend/apiclient"
	"github.com/agencyhub/marketing_backend/config"
	"golang.org/x/oauth2"
)

// oauthConfig authenticates the client with HTTP Basic at the token endpoint.
func oauthConfig() (*oauth2.Config, error) {
	clientId := strings.TrimSpace(os.Getenv("DB_API_CLIENT_ID"))
	secret := strings.TrimSpace(os.Getenv("DB_API_CLIENT_SECRET"))
	redirect := strings.TrimSpace(os.Getenv("DB_API_REDIRECT_URL"))
	if clientId == "" || secret == "" || redirect == "" {
		return nil, errors.New("DB_API_CLIENT_ID/DB_API_CLIENT_SECRET/DB_API_REDIRECT_URL not set")
	}
	p, _ := config.Provider(config.ProviderDeutscheBank)
	return &oauth2.Config{
		ClientID:     clientId,
		ClientSecret: secret,
		RedirectURL:  redirect,
		Endpoint: oauth2.Endpoint{
			AuthURL:   p.AuthURL,
			TokenURL:  p.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}, nil
}

// authCodeURL builds the authorize redirect with an S256 challenge for verifier.
func authCodeURL(cfg *oauth2.Config, state string, verifier string) string {
	return cfg.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

type Client struct {
	api *apiclient.Client
}

func NewClient(accessToken string) *Client {
	p, _ := config.Provider(config.ProviderDeutscheBank)
	return &Client{api: apiclient.New(p, apiclient.WithBearer(accessToken))}
}

// Transactions lists booked transactions of iban. Dates are YYYY-MM-DD and optional.
func (c *Client) Transactions(ctx context.Context, iban string, from string, to string, limit int) ([]Transaction, error) {
	params := url.Values{}
	params.Set("iban", iban)
	params.Set("limit", strconv.Itoa(limit))
	if from != "" {
		params.Set("bookingDateFrom", from)
	}
	if to != "" {
		params.Set("bookingDateTo", to)
	}
	var out transactionsResponse
	if err := c.api.GetJSON(ctx, "/banking/transactions/v2", params, &out); err != nil {
		if apiclient.StatusCode(err) == http.StatusBadRequest {
			return nil, ErrorInvalidDates
		}
		return nil, err
	}
	return out.Transactions, nil
}

func (c *Client) CashAccounts(ctx context.Context) ([]CashAccount, error) {
	var out cashAccountsResponse
	if err := c.api.GetJSON(ctx, "/banking/cashAccounts/v2", nil, &out); err != nil {
		return nil, err
	}
	return out.Accounts, nil
}
