package plaid

import "github.com/shopspring/decimal"

const sourceName = "plaid"

type credentials struct {
	ClientId string `json:"client_id"`
	Secret   string `json:"secret"`
}

type exchangeRequest struct {
	credentials
	PublicToken string `json:"public_token"`
}

type exchangeResponse struct {
	AccessToken string `json:"access_token"`
	ItemId      string `json:"item_id"`
}

type linkTokenRequest struct {
	credentials
	ClientName   string   `json:"client_name"`
	Language     string   `json:"language"`
	CountryCodes []string `json:"country_codes"`
	Products     []string `json:"products"`
	User         struct {
		ClientUserId string `json:"client_user_id"`
	} `json:"user"`
}

type LinkToken struct {
	LinkToken  string `json:"link_token"`
	Expiration string `json:"expiration"`
}

type accessRequest struct {
	credentials
	AccessToken string `json:"access_token"`
}

type transactionsRequest struct {
	credentials
	AccessToken string `json:"access_token"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Options     struct {
		Count  int `json:"count"`
		Offset int `json:"offset"`
	} `json:"options"`
}

// Transaction amounts follow Plaid's convention: positive means money left the account.
type Transaction struct {
	TransactionId   string          `json:"transaction_id"`
	AccountId       string          `json:"account_id"`
	Amount          decimal.Decimal `json:"amount"`
	IsoCurrencyCode string          `json:"iso_currency_code"`
	Name            string          `json:"name"`
	MerchantName    string          `json:"merchant_name"`
	Date            string          `json:"date"`
}

type transactionsResponse struct {
	Transactions      []Transaction `json:"transactions"`
	TotalTransactions int           `json:"total_transactions"`
}

type Account struct {
	AccountId string `json:"account_id"`
	Name      string `json:"name"`
	Mask      string `json:"mask"`
	Balances  struct {
		Available       *decimal.Decimal `json:"available"`
		Current         *decimal.Decimal `json:"current"`
		IsoCurrencyCode string           `json:"iso_currency_code"`
	} `json:"balances"`
}

type accountsResponse struct {
	Accounts []Account `json:"accounts"`
}

type ConnectInput struct {
	PublicToken string `json:"public_token" binding:"required"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}
