package sevdesk

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	sourceName = "sevdesk"

	// invoice status codes; drafts are never applied
	statusDraft = "100"
)

type checkAccountResponse struct {
	Objects []struct {
		SevClient struct {
			Id   json.Number `json:"id"`
			Name string      `json:"name"`
		} `json:"sevClient"`
	} `json:"objects"`
}

type Contact struct {
	Id         json.Number `json:"id"`
	Name       string      `json:"name"`
	Surename   string      `json:"surename"`
	Familyname string      `json:"familyname"`
}

func (c Contact) DisplayName() string {
	if n := strings.TrimSpace(c.Name); n != "" {
		return n
	}
	return strings.TrimSpace(c.Surename + " " + c.Familyname)
}

type Invoice struct {
	Id            json.Number     `json:"id"`
	InvoiceNumber string          `json:"invoiceNumber"`
	Status        json.Number     `json:"status"`
	SumNet        decimal.Decimal `json:"sumNet"`
	SumGross      decimal.Decimal `json:"sumGross"`
	Contact       Contact         `json:"contact"`
}

type invoiceList struct {
	Objects []Invoice `json:"objects"`
}

type ConnectInput struct {
	ApiKey string `json:"api_key" binding:"required"`
}

type ApplyInvoiceInput struct {
	InvoiceId    string `json:"invoice_id" binding:"required"`
	CustomerName string `json:"customer_name"`
}

type InvoiceSummary struct {
	InvoiceId    string          `json:"invoice_id"`
	CustomerId   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Gross        decimal.Decimal `json:"gross"`
	Net          decimal.Decimal `json:"net"`
	Status       string          `json:"status"`
}
