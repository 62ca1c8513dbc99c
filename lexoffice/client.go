package lexoffice

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/agencyhub/marketing_backend/apiclient"
	"github.com/agencyhub/marketing_backend/config"
)

const voucherPageSize = 250

type Client struct {
	api *apiclient.Client
}

func NewClient(apiKey string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("lexoffice api key is empty")
	}
	p, _ := config.Provider(config.ProviderLexoffice)
	return &Client{api: apiclient.New(p, apiclient.WithBearer(apiKey))}, nil
}

func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var out Profile
	if err := c.api.GetJSON(ctx, "/v1/profile", nil, &out); err != nil {
		return nil, err
	}
	if out.OrganizationId == "" {
		return nil, errors.New("lexoffice profile has no organization id")
	}
	return &out, nil
}

// Subscribe registers callbackURL for invoice.created and returns the subscription id.
func (c *Client) Subscribe(ctx context.Context, callbackURL string) (string, error) {
	var out eventSubscription
	in := eventSubscription{EventType: EventInvoiceCreated, CallbackUrl: callbackURL}
	if err := c.api.PostJSON(ctx, "/v1/event-subscriptions", in, &out); err != nil {
		return "", err
	}
	return out.Id, nil
}

func (c *Client) Unsubscribe(ctx context.Context, subscriptionId string) error {
	return c.api.Delete(ctx, "/v1/event-subscriptions/"+url.PathEscape(subscriptionId))
}

func (c *Client) Contact(ctx context.Context, contactId string) (*Contact, error) {
	var out Contact
	if err := c.api.GetJSON(ctx, "/v1/contacts/"+url.PathEscape(strings.TrimSpace(contactId)), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Invoice(ctx context.Context, invoiceId string) (*Invoice, error) {
	var out Invoice
	if err := c.api.GetJSON(ctx, "/v1/invoices/"+url.PathEscape(strings.TrimSpace(invoiceId)), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InvoiceIds lists booked invoices (drafts and voided ones excluded), newest pages first.
// complete is false when maxPages ran out before lexoffice reported the last page.
func (c *Client) InvoiceIds(ctx context.Context, maxPages int) (ids []string, complete bool, err error) {
	for page := 0; page < maxPages; page++ {
		params := url.Values{}
		params.Set("voucherType", "invoice")
		params.Set("voucherStatus", "open,paid,paidoff")
		params.Set("page", strconv.Itoa(page))
		params.Set("size", strconv.Itoa(voucherPageSize))

		var out voucherPage
		if err := c.api.GetJSON(ctx, "/v1/voucherlist", params, &out); err != nil {
			return ids, false, err
		}
		for _, v := range out.Content {
			ids = append(ids, v.Id)
		}
		if out.Last || len(out.Content) == 0 || page+1 >= out.TotalPages {
			return ids, true, nil
		}
	}
	return ids, false, nil
}
