package googleads

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

const (
	sourceName = "googleads"
	microsUnit = 1000000
)

const (
	customerQuery    = "SELECT customer.id, customer.descriptive_name FROM customer LIMIT 1"
	campaignQuery    = "SELECT campaign.id, campaign.name, campaign.status, campaign_budget.amount_micros, metrics.impressions, metrics.clicks, metrics.cost_micros FROM campaign WHERE segments.date DURING LAST_30_DAYS"
	performanceQuery = "SELECT customer.id, metrics.impressions, metrics.clicks, metrics.cost_micros, metrics.conversions FROM customer WHERE segments.date DURING LAST_30_DAYS"
)

type searchRequest struct {
	Query     string `json:"query"`
	PageToken string `json:"pageToken,omitempty"`
}

// The API encodes int64 fields as JSON strings.
type searchRow struct {
	Customer struct {
		Id              json.Number `json:"id"`
		DescriptiveName string      `json:"descriptiveName"`
	} `json:"customer"`
	Campaign struct {
		Id     json.Number `json:"id"`
		Name   string      `json:"name"`
		Status string      `json:"status"`
	} `json:"campaign"`
	CampaignBudget struct {
		AmountMicros json.Number `json:"amountMicros"`
	} `json:"campaignBudget"`
	Metrics struct {
		Impressions json.Number `json:"impressions"`
		Clicks      json.Number `json:"clicks"`
		CostMicros  json.Number `json:"costMicros"`
		Conversions json.Number `json:"conversions"`
	} `json:"metrics"`
}

type searchResponse struct {
	Results       []searchRow `json:"results"`
	NextPageToken string      `json:"nextPageToken"`
}

type Customer struct {
	Id              string `json:"id"`
	DescriptiveName string `json:"descriptive_name"`
}

type Performance struct {
	CustomerId  string          `json:"customer_id"`
	Impressions int64           `json:"impressions"`
	Clicks      int64           `json:"clicks"`
	Cost        decimal.Decimal `json:"cost"`
	Conversions decimal.Decimal `json:"conversions"`
	Ctr         decimal.Decimal `json:"ctr"`
}

type LinkInput struct {
	CustomerId   string `json:"customer_id" binding:"required"`
	RefreshToken string `json:"refresh_token" binding:"required"`
}
