package deutschebank

import (
	"github.com/agencyhub/marketing_backend/models"
	"github.com/shopspring/decimal"
)

const (
	sourceName   = "deutsche"
	stateKeyBase = "DeutscheOAuth:"
	refreshLock  = "BankTokenRefresh"
)

// ErrorInvalidDates is the bank's 400 answer to an unusable booking date range.
var ErrorInvalidDates = &models.InputError{Message: "unable to fetch transactions, enter valid dates"}

type authState struct {
	AgencyId int    `json:"agency_id"`
	Verifier string `json:"verifier"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type Transaction struct {
	Id                string          `json:"id"`
	OriginIban        string          `json:"originIban"`
	Amount            decimal.Decimal `json:"amount"`
	CurrencyCode      string          `json:"currencyCode"`
	CounterPartyName  string          `json:"counterPartyName"`
	CounterPartyIban  string          `json:"counterPartyIban"`
	PaymentReference  string          `json:"paymentReference"`
	BookingDate       string          `json:"bookingDate"`
	ValueDate         string          `json:"valueDate"`
	TransactionCode   string          `json:"transactionCode"`
	ExternalBankTxnId string          `json:"externalBankTransactionId"`
}

type transactionsResponse struct {
	TotalItems   int           `json:"totalItems"`
	Transactions []Transaction `json:"transactions"`
}

type CashAccount struct {
	Iban           string          `json:"iban"`
	AccountType    string          `json:"accountType"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	CurrencyCode   string          `json:"currencyCode"`
	ProductDesc    string          `json:"productDescription"`
}

type cashAccountsResponse struct {
	Accounts []CashAccount `json:"accounts"`
}

type AuthorizeInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type TransactionQuery struct {
	From  string `form:"from"`
	To    string `form:"to"`
	Limit int    `form:"limit"`
}
