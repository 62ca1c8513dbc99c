package plaid

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/agencyhub/marketing_backend/apiclient"
	"github.com/agencyhub/marketing_backend/config"
)

const pageSize = 500

// Client sends client id and secret in every request body.
type Client struct {
	api   *apiclient.Client
	creds credentials
}

func NewClient() (*Client, error) {
	creds := credentials{
		ClientId: strings.TrimSpace(os.Getenv("PLAID_CLIENT_ID")),
		Secret:   strings.TrimSpace(os.Getenv("PLAID_SECRET")),
	}
	if creds.ClientId == "" || creds.Secret == "" {
		return nil, errors.New("PLAID_CLIENT_ID/PLAID_SECRET not set")
	}
	p, _ := config.Provider(config.ProviderPlaid)
	return &Client{api: apiclient.New(p), creds: creds}, nil
}

func (c *Client) CreateLinkToken(ctx context.Context, agencyId int) (*LinkToken, error) {
	req := linkTokenRequest{
		credentials:  c.creds,
		ClientName:   "Agency Hub",
		Language:     "de",
		CountryCodes: []string{"DE"},
		Products:     []string{"transactions"},
	}
	req.User.ClientUserId = strconv.Itoa(agencyId)
	var out LinkToken
	if err := c.api.PostJSON(ctx, "/link/token/create", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExchangePublicToken trades a Link public token for a long-lived access token and item id.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (string, string, error) {
	var out exchangeResponse
	if err := c.api.PostJSON(ctx, "/item/public_token/exchange", exchangeRequest{credentials: c.creds, PublicToken: publicToken}, &out); err != nil {
		return "", "", err
	}
	if out.AccessToken == "" {
		return "", "", errors.New("plaid returned no access token")
	}
	return out.AccessToken, out.ItemId, nil
}

// Transactions pages with count=500 until total_transactions is reached.
func (c *Client) Transactions(ctx context.Context, accessToken string, start string, end string) ([]Transaction, error) {
	var all []Transaction
	for {
		req := transactionsRequest{credentials: c.creds, AccessToken: accessToken, StartDate: start, EndDate: end}
		req.Options.Count = pageSize
		req.Options.Offset = len(all)

		var out transactionsResponse
		if err := c.api.PostJSON(ctx, "/transactions/get", req, &out); err != nil {
			return all, err
		}
		all = append(all, out.Transactions...)
		if len(out.Transactions) == 0 || len(all) >= out.TotalTransactions {
			return all, nil
		}
	}
}

func (c *Client) Balances(ctx context.Context, accessToken string) ([]Account, error) {
	var out accountsResponse
	if err := c.api.PostJSON(ctx, "/accounts/balance/get", accessRequest{credentials: c.creds, AccessToken: accessToken}, &out); err != nil {
		return nil, err
	}
	return out.Accounts, nil
}

func (c *Client) RemoveItem(ctx context.Context, accessToken string) error {
	return c.api.PostJSON(ctx, "/item/remove", accessRequest{credentials: c.creds, AccessToken: accessToken}, nil)
}
