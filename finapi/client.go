package finapi

import (
	"context"
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agencyhub/marketing_backend/apiclient"
	"github.com/agencyhub/marketing_backend/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const perPage = 100

type Client struct {
	api *apiclient.Client
}

// NewClient authenticates with the client-credentials grant against <base>/oauth/token.
func NewClient(ctx context.Context) (*Client, error) {
	clientId := strings.TrimSpace(os.Getenv("FINAPI_CLIENT_ID"))
	secret := strings.TrimSpace(os.Getenv("FINAPI_CLIENT_SECRET"))
	if clientId == "" || secret == "" {
		return nil, errors.New("FINAPI_CLIENT_ID/FINAPI_CLIENT_SECRET not set")
	}
	p, _ := config.Provider(config.ProviderFinAPI)
	tokenURL := p.TokenURL
	if os.Getenv("FINAPI_TOKEN_URL") == "" {
		tokenURL = p.BaseURL + "/oauth/token"
	}
	cc := clientcredentials.Config{
		ClientID:     clientId,
		ClientSecret: secret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	hc := cc.Client(ctx)
	hc.Timeout = 30 * time.Second
	return &Client{api: apiclient.New(p, apiclient.WithHTTPClient(hc))}, nil
}

// ImportConnection imports a bank connection over the XS2A interface.
func (c *Client) ImportConnection(ctx context.Context, bankId int64, username string, password string) (*Connection, error) {
	body := importRequest{
		BankId:    bankId,
		Interface: "XS2A",
		LoginCredentials: []loginCredential{
			{Label: "username", Value: username},
			{Label: "password", Value: password},
		},
	}
	var out Connection
	if err := c.api.PostJSON(ctx, "/api/v1/bankConnections/import", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Bank(ctx context.Context, bankId int64) (*Bank, error) {
	var out Bank
	if err := c.api.GetJSON(ctx, "/api/v1/banks/"+strconv.FormatInt(bankId, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Accounts(ctx context.Context, connectionId string) ([]Account, error) {
	var out accountList
	if err := c.api.GetJSON(ctx, "/api/v1/accounts", url.Values{"bankConnectionIds": {connectionId}}, &out); err != nil {
		return nil, err
	}
	return out.Accounts, nil
}

// Transactions pages through accountIds' transactions between from and to (YYYY-MM-DD), newest first.
func (c *Client) Transactions(ctx context.Context, accountIds []int64, from string, to string, maxPages int) ([]Transaction, error) {
	if len(accountIds) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(accountIds))
	for _, id := range accountIds {
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	var all []Transaction
	for page := 1; page <= maxPages; page++ {
		params := url.Values{}
		params.Set("accountIds", strings.Join(ids, ","))
		params.Set("fromDate", from)
		params.Set("toDate", to)
		params.Set("page", strconv.Itoa(page))
		params.Set("perPage", strconv.Itoa(perPage))
		params.Set("order", "date,desc")

		var out transactionPage
		if err := c.api.GetJSON(ctx, "/api/v1/transactions", params, &out); err != nil {
			return all, err
		}
		all = append(all, out.Transactions...)
		if len(out.Transactions) < perPage || page >= out.Paging.PageCount {
			break
		}
	}
	return all, nil
}

func (c *Client) DeleteConnection(ctx context.Context, connectionId string) error {
	return c.api.Delete(ctx, "/api/v1/bankConnections/"+url.PathEscape(connectionId))
}
