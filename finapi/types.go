package finapi

import "github.com/shopspring/decimal"

const sourceName = "finapi"

type loginCredential struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type importRequest struct {
	BankId           int64             `json:"bankId"`
	Interface        string            `json:"interface"`
	LoginCredentials []loginCredential `json:"loginCredentials"`
}

type Connection struct {
	Id         int64   `json:"id"`
	Name       string  `json:"name"`
	BankName   string  `json:"bankName"`
	AccountIds []int64 `json:"accountIds"`
	Bank       struct {
		Id   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"bank"`
}

type Bank struct {
	Id       int64  `json:"id"`
	Name     string `json:"name"`
	Bic      string `json:"bic"`
	Blz      string `json:"blz"`
	Location string `json:"location"`
}

type Account struct {
	Id          int64           `json:"id"`
	AccountName string          `json:"accountName"`
	Iban        string          `json:"iban"`
	Balance     decimal.Decimal `json:"balance"`
}

type accountList struct {
	Accounts []Account `json:"accounts"`
}

type Transaction struct {
	Id              int64           `json:"id"`
	AccountId       int64           `json:"accountId"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Purpose         string          `json:"purpose"`
	CounterpartName string          `json:"counterpartName"`
	BankBookingDate string          `json:"bankBookingDate"`
	ValueDate       string          `json:"valueDate"`
}

type transactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Paging       struct {
		Page       int `json:"page"`
		PerPage    int `json:"perPage"`
		PageCount  int `json:"pageCount"`
		TotalCount int `json:"totalCount"`
	} `json:"paging"`
}

type ConnectInput struct {
	BankId   int64  `json:"bank_id" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}
