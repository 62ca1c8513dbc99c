package googleads

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/agencyhub/marketing_backend/apiclient"
	"github.com/agencyhub/marketing_backend/config"
	"github.com/agencyhub/marketing_backend/models"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
)

const maxPages = 20

// Client runs GAQL searches for one customer with a refresh-token backed oauth2 transport.
type Client struct {
	api        *apiclient.Client
	customerId string
}

func oauthConfig() (*oauth2.Config, error) {
	clientId := strings.TrimSpace(os.Getenv("GOOGLE_ADS_CLIENT_ID"))
	secret := strings.TrimSpace(os.Getenv("GOOGLE_ADS_CLIENT_SECRET"))
	if clientId == "" || secret == "" {
		return nil, errors.New("GOOGLE_ADS_CLIENT_ID/GOOGLE_ADS_CLIENT_SECRET not set")
	}
	p, _ := config.Provider(config.ProviderGoogleAds)
	return &oauth2.Config{
		ClientID:     clientId,
		ClientSecret: secret,
		Endpoint:     oauth2.Endpoint{TokenURL: p.TokenURL, AuthStyle: oauth2.AuthStyleInParams},
	}, nil
}

func NewClient(ctx context.Context, customerId string, refreshToken string) (*Client, error) {
	cfg, err := oauthConfig()
	if err != nil {
		return nil, err
	}
	developerToken := strings.TrimSpace(os.Getenv("GOOGLE_ADS_DEVELOPER_TOKEN"))
	if developerToken == "" {
		return nil, errors.New("GOOGLE_ADS_DEVELOPER_TOKEN not set")
	}
	if strings.TrimSpace(refreshToken) == "" {
		return nil, &models.InputError{Message: "refresh token is required"}
	}
	opts := []apiclient.Option{
		apiclient.WithHTTPClient(cfg.Client(ctx, &oauth2.Token{RefreshToken: refreshToken})),
		apiclient.WithHeader("developer-token", developerToken),
	}
	if login := models.NormalizeCustomerId(os.Getenv("GOOGLE_ADS_LOGIN_CUSTOMER_ID")); login != "" {
		opts = append(opts, apiclient.WithHeader("login-customer-id", login))
	}
	p, _ := config.Provider(config.ProviderGoogleAds)
	return &Client{api: apiclient.New(p, opts...), customerId: models.NormalizeCustomerId(customerId)}, nil
}

func (c *Client) search(ctx context.Context, query string) ([]searchRow, error) {
	var rows []searchRow
	req := searchRequest{Query: query}
	for page := 0; page < maxPages; page++ {
		var out searchResponse
		if err := c.api.PostJSON(ctx, "/customers/"+c.customerId+"/googleAds:search", req, &out); err != nil {
			return rows, err
		}
		rows = append(rows, out.Results...)
		if out.NextPageToken == "" {
			break
		}
		req.PageToken = out.NextPageToken
	}
	return rows, nil
}

func (c *Client) Customer(ctx context.Context) (*Customer, error) {
	rows, err := c.search(ctx, customerQuery)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("customer not accessible")
	}
	return &Customer{Id: rows[0].Customer.Id.String(), DescriptiveName: rows[0].Customer.DescriptiveName}, nil
}

func (c *Client) Campaigns(ctx context.Context) ([]models.CampaignInput, error) {
	rows, err := c.search(ctx, campaignQuery)
	if err != nil {
		return nil, err
	}
	return campaignInputs(rows), nil
}

func (c *Client) Performance(ctx context.Context) (*Performance, error) {
	rows, err := c.search(ctx, performanceQuery)
	if err != nil {
		return nil, err
	}
	return aggregatePerformance(c.customerId, rows), nil
}

func toInt(n json.Number) int64 {
	v, err := n.Int64()
	if err != nil {
		return 0
	}
	return v
}

func toDecimal(n json.Number) decimal.Decimal {
	if n == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

func fromMicros(n json.Number) decimal.Decimal {
	return toDecimal(n).Div(decimal.NewFromInt(microsUnit))
}

// campaignInputs merges rows of the same campaign; segmented queries return one row per day.
func campaignInputs(rows []searchRow) []models.CampaignInput {
	index := map[string]int{}
	var inputs []models.CampaignInput
	for _, r := range rows {
		id := r.Campaign.Id.String()
		if id == "" {
			continue
		}
		i, ok := index[id]
		if !ok {
			index[id] = len(inputs)
			inputs = append(inputs, models.CampaignInput{
				CampaignId: id,
				Name:       r.Campaign.Name,
				Status:     r.Campaign.Status,
				Budget:     fromMicros(r.CampaignBudget.AmountMicros),
				Cost:       decimal.Zero,
			})
			i = len(inputs) - 1
		}
		inputs[i].Impressions += toInt(r.Metrics.Impressions)
		inputs[i].Clicks += toInt(r.Metrics.Clicks)
		inputs[i].Cost = inputs[i].Cost.Add(fromMicros(r.Metrics.CostMicros))
	}
	return inputs
}

func aggregatePerformance(customerId string, rows []searchRow) *Performance {
	p := &Performance{CustomerId: customerId, Cost: decimal.Zero, Conversions: decimal.Zero, Ctr: decimal.Zero}
	for _, r := range rows {
		p.Impressions += toInt(r.Metrics.Impressions)
		p.Clicks += toInt(r.Metrics.Clicks)
		p.Cost = p.Cost.Add(fromMicros(r.Metrics.CostMicros))
		p.Conversions = p.Conversions.Add(toDecimal(r.Metrics.Conversions))
	}
	if p.Impressions > 0 {
		p.Ctr = decimal.NewFromInt(p.Clicks).Div(decimal.NewFromInt(p.Impressions)).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return p
}
