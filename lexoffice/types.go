package lexoffice

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	EventInvoiceCreated = "invoice.created"
	sourceName          = "lexoffice"
)

type Profile struct {
	OrganizationId string `json:"organizationId"`
	CompanyName    string `json:"companyName"`
}

type eventSubscription struct {
	Id          string `json:"id,omitempty"`
	EventType   string `json:"eventType"`
	CallbackUrl string `json:"callbackUrl"`
}

type Contact struct {
	Id      string `json:"id"`
	Company *struct {
		Name string `json:"name"`
	} `json:"company,omitempty"`
	Person *struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	} `json:"person,omitempty"`
}

// DisplayName prefers the company name and falls back to the person.
func (c *Contact) DisplayName() string {
	if c == nil {
		return ""
	}
	if c.Company != nil && strings.TrimSpace(c.Company.Name) != "" {
		return strings.TrimSpace(c.Company.Name)
	}
	if c.Person != nil {
		return strings.TrimSpace(c.Person.FirstName + " " + c.Person.LastName)
	}
	return ""
}

type Invoice struct {
	Id             string `json:"id"`
	OrganizationId string `json:"organizationId"`
	VoucherNumber  string `json:"voucherNumber"`
	VoucherStatus  string `json:"voucherStatus"`
	Address        struct {
		ContactId string `json:"contactId"`
		Name      string `json:"name"`
	} `json:"address"`
	TotalPrice struct {
		Currency         string          `json:"currency"`
		TotalNetAmount   decimal.Decimal `json:"totalNetAmount"`
		TotalGrossAmount decimal.Decimal `json:"totalGrossAmount"`
	} `json:"totalPrice"`
}

// WebhookEvent is the body lexoffice posts to the subscription callback.
type WebhookEvent struct {
	OrganizationId string `json:"organizationId"`
	EventType      string `json:"eventType"`
	ResourceId     string `json:"resourceId"`
	EventDate      string `json:"eventDate"`
}

type voucherPage struct {
	Content []struct {
		Id            string `json:"id"`
		VoucherType   string `json:"voucherType"`
		VoucherStatus string `json:"voucherStatus"`
		ContactId     string `json:"contactId"`
	} `json:"content"`
	Last       bool `json:"last"`
	TotalPages int  `json:"totalPages"`
	Number     int  `json:"number"`
}

type ConnectInput struct {
	ApiKey string `json:"api_key" binding:"required"`
}

type AddCustomerInput struct {
	ContactId string `json:"contact_id" binding:"required"`
	Name      string `json:"name"`
}
