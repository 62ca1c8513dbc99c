package sevdesk

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/agencyhub/marketing_backend/apiclient"
	"github.com/agencyhub/marketing_backend/config"
)

// Client authenticates with the raw API token in the Authorization header.
type Client struct {
	api *apiclient.Client
}

func NewClient(apiKey string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("sevdesk api key is empty")
	}
	p, _ := config.Provider(config.ProviderSevdesk)
	return &Client{api: apiclient.New(p, apiclient.WithHeader("Authorization", apiKey))}, nil
}

// Organization returns the sevClient id and name behind the key.
func (c *Client) Organization(ctx context.Context) (string, string, error) {
	var out checkAccountResponse
	if err := c.api.GetJSON(ctx, "/CheckAccount", url.Values{"embed": {"sevClient"}}, &out); err != nil {
		return "", "", err
	}
	if len(out.Objects) == 0 || out.Objects[0].SevClient.Id.String() == "" {
		return "", "", errors.New("sevdesk account has no client")
	}
	client := out.Objects[0].SevClient
	return client.Id.String(), client.Name, nil
}

func (c *Client) Invoice(ctx context.Context, invoiceId string) (*Invoice, error) {
	var out invoiceList
	path := "/Invoice/" + url.PathEscape(strings.TrimSpace(invoiceId))
	if err := c.api.GetJSON(ctx, path, url.Values{"embed": {"contact"}}, &out); err != nil {
		return nil, err
	}
	if len(out.Objects) == 0 {
		return nil, &apiclient.StatusError{Provider: sourceName, StatusCode: 404, Body: "invoice not found"}
	}
	return &out.Objects[0], nil
}

// Invoices pages through the invoice list, limit rows at a time, up to maxPages pages.
func (c *Client) Invoices(ctx context.Context, limit int, maxPages int) ([]Invoice, error) {
	var all []Invoice
	for page := 0; page < maxPages; page++ {
		params := url.Values{}
		params.Set("embed", "contact")
		params.Set("limit", strconv.Itoa(limit))
		params.Set("offset", strconv.Itoa(page*limit))

		var out invoiceList
		if err := c.api.GetJSON(ctx, "/Invoice", params, &out); err != nil {
			return all, err
		}
		all = append(all, out.Objects...)
		if len(out.Objects) < limit {
			break
		}
	}
	return all, nil
}
