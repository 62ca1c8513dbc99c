package models

import (
	"context"
	"strings"
	"time"

	"github.com/agencyhub/marketing_backend/config"
	"github.com/agencyhub/marketing_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

type BankProvider string

const (
	BankProviderFinAPI   BankProvider = "finapi"
	BankProviderPlaid    BankProvider = "plaid"
	BankProviderDeutsche BankProvider = "deutsche"
)

func (p BankProvider) IsValid() bool {
	switch p {
	case BankProviderFinAPI, BankProviderPlaid, BankProviderDeutsche:
		return true
	}
	return false
}

const (
	BankConnectionStatusPending   = "pending"
	BankConnectionStatusConnected = "connected"
	BankConnectionStatusError     = "error"
)

type BankConnection struct {
	ID           int          `gorm:"primary_key" json:"id"`
	AgencyId     int          `gorm:"index;not null" json:"agency_id"`
	Provider     BankProvider `gorm:"type:enum('finapi','plaid','deutsche');not null" json:"provider"`
	ExternalId   string       `gorm:"size:128" json:"external_id"`
	Name         string       `gorm:"size:255" json:"name"`
	Email        string       `gorm:"size:100" json:"email"`
	Phone        string       `gorm:"size:20" json:"phone"`
	Iban         string       `gorm:"size:34" json:"iban"`
	BankName     string       `gorm:"size:255" json:"bank_name"`
	AccessToken  string       `gorm:"type:text" json:"-"`
	RefreshToken string       `gorm:"type:text" json:"-"`
	TokenExpiry  *time.Time   `json:"token_expiry"`
	Status       string       `gorm:"size:20;not null;default:'pending'" json:"status"`
	LastSyncAt   *time.Time   `json:"last_sync_at"`
	CreatedAt    time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

// BankTransaction amounts are signed: positive is income, negative is expense.
type BankTransaction struct {
	ID            int             `gorm:"primary_key" json:"id"`
	AgencyId      int             `gorm:"index;not null" json:"agency_id"`
	ConnectionId  int             `gorm:"not null;uniqueIndex:idx_bank_transaction,priority:1" json:"connection_id"`
	TransactionId string          `gorm:"size:128;not null;uniqueIndex:idx_bank_transaction,priority:2" json:"transaction_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Currency      string          `gorm:"size:3" json:"currency"`
	Purpose       string          `gorm:"size:255" json:"purpose"`
	Counterparty  string          `gorm:"size:255" json:"counterparty"`
	BookingDate   *time.Time      `gorm:"index" json:"booking_date"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBankConnection struct {
	Provider     BankProvider `json:"provider"`
	ExternalId   string       `json:"external_id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone"`
	Iban         string       `json:"iban"`
	BankName     string       `json:"bank_name"`
	AccessToken  string       `json:"-"`
	RefreshToken string       `json:"-"`
	TokenExpiry  *time.Time   `json:"-"`
	Status       string       `json:"-"`
}

type BankTransactionInput struct {
	TransactionId string
	Amount        decimal.Decimal
	Currency      string
	Purpose       string
	Counterparty  string
	BookingDate   *time.Time
}

type BankTransactionFilter struct {
	Query        string
	ConnectionId int
	From         *time.Time
	To           *time.Time
	MinAmount    *decimal.Decimal
	MaxAmount    *decimal.Decimal
	Limit        int
}

type AccountBalance struct {
	ConnectionId     int             `json:"connection_id"`
	Provider         BankProvider    `json:"provider"`
	Name             string          `json:"name"`
	Iban             string          `json:"iban"`
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int64           `json:"transaction_count"`
}

func (input *NewBankConnection) validate() error {
	if !input.Provider.IsValid() {
		return invalidInput("unsupported bank provider")
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return invalidInput("invalid email address")
	}
	if input.Phone != "" {
		phone, err := utils.ValidatePhoneNumber(input.Phone, "")
		if err != nil {
			return invalidInput("invalid phone number: " + err.Error())
		}
		input.Phone = phone
	}
	return nil
}

func CreateBankConnection(ctx context.Context, agencyId int, input *NewBankConnection) (*BankConnection, error) {
	if agencyId <= 0 {
		return nil, utils.ErrorAgencyRequired
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = BankConnectionStatusPending
	}
	conn := BankConnection{
		AgencyId:     agencyId,
		Provider:     input.Provider,
		ExternalId:   input.ExternalId,
		Name:         input.Name,
		Email:        strings.ToLower(input.Email),
		Phone:        input.Phone,
		Iban:         strings.ReplaceAll(strings.ToUpper(input.Iban), " ", ""),
		BankName:     input.BankName,
		AccessToken:  input.AccessToken,
		RefreshToken: input.RefreshToken,
		TokenExpiry:  input.TokenExpiry,
		Status:       status,
	}
	if err := config.GetDB().WithContext(ctx).Create(&conn).Error; err != nil {
		return nil, err
	}
	return &conn, nil
}

func ListBankConnections(ctx context.Context, agencyId int, provider *BankProvider) ([]*BankConnection, error) {
	dbCtx := config.GetDB().WithContext(ctx).Where("agency_id = ?", agencyId)
	if provider != nil {
		dbCtx = dbCtx.Where("provider = ?", *provider)
	}
	var results []*BankConnection
	if err := dbCtx.Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func GetBankConnection(ctx context.Context, agencyId int, id int) (*BankConnection, error) {
	return fetchOwned[BankConnection](ctx, agencyId, id, "bank connection")
}

func UpdateBankConnectionTokens(ctx context.Context, conn *BankConnection, accessToken string, refreshToken string, expiry *time.Time) error {
	updates := map[string]interface{}{
		"access_token": accessToken,
		"token_expiry": expiry,
		"status":       BankConnectionStatusConnected,
	}
	if refreshToken != "" {
		updates["refresh_token"] = refreshToken
	}
	if err := config.GetDB().WithContext(ctx).Model(&BankConnection{}).
		Where("id = ? AND agency_id = ?", conn.ID, conn.AgencyId).Updates(updates).Error; err != nil {
		return err
	}
	conn.AccessToken = accessToken
	if refreshToken != "" {
		conn.RefreshToken = refreshToken
	}
	conn.TokenExpiry = expiry
	conn.Status = BankConnectionStatusConnected
	return nil
}

func UpdateBankConnectionDetails(ctx context.Context, conn *BankConnection, iban string, bankName string) error {
	if err := config.GetDB().WithContext(ctx).Model(&BankConnection{}).
		Where("id = ? AND agency_id = ?", conn.ID, conn.AgencyId).
		Updates(map[string]interface{}{"iban": iban, "bank_name": bankName}).Error; err != nil {
		return err
	}
	conn.Iban = iban
	conn.BankName = bankName
	return nil
}

func SetBankConnectionStatus(ctx context.Context, conn *BankConnection, status string) error {
	conn.Status = status
	return config.GetDB().WithContext(ctx).Model(&BankConnection{}).
		Where("id = ? AND agency_id = ?", conn.ID, conn.AgencyId).Update("status", status).Error
}

// DeleteBankConnection removes the connection's transactions before the connection.
func DeleteBankConnection(ctx context.Context, agencyId int, id int) (*BankConnection, error) {
	conn, err := GetBankConnection(ctx, agencyId, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Where("connection_id = ? AND agency_id = ?", conn.ID, agencyId).Delete(&BankTransaction{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Where("agency_id = ?", agencyId).Delete(&BankConnection{}, conn.ID).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	afterWrite(agencyId, "DeleteBankConnection")
	return conn, nil
}

// UpsertBankTransactions inserts new transactions and overwrites existing ones by transaction id.
func UpsertBankTransactions(ctx context.Context, conn *BankConnection, inputs []BankTransactionInput) (int, error) {
	if len(inputs) == 0 {
		return 0, nil
	}
	rows := make([]BankTransaction, 0, len(inputs))
	seen := make(map[string]int, len(inputs))
	for _, in := range inputs {
		if in.TransactionId == "" {
			continue
		}
		row := BankTransaction{
			AgencyId:      conn.AgencyId,
			ConnectionId:  conn.ID,
			TransactionId: in.TransactionId,
			Amount:        in.Amount,
			Currency:      in.Currency,
			Purpose:       truncate(in.Purpose, 255),
			Counterparty:  truncate(in.Counterparty, 255),
			BookingDate:   in.BookingDate,
		}
		// last occurrence wins within one batch
		if i, ok := seen[in.TransactionId]; ok {
			rows[i] = row
			continue
		}
		seen[in.TransactionId] = len(rows)
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "connection_id"}, {Name: "transaction_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "currency", "purpose", "counterparty", "booking_date", "updated_at"}),
	}).CreateInBatches(&rows, 200).Error; err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := tx.WithContext(ctx).Model(&BankConnection{}).Where("id = ? AND agency_id = ?", conn.ID, conn.AgencyId).
		Updates(map[string]interface{}{"last_sync_at": now, "status": BankConnectionStatusConnected}).Error; err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := tx.Commit().Error; err != nil {
		return 0, err
	}
	conn.LastSyncAt = &now
	afterWrite(conn.AgencyId, "UpsertBankTransactions")
	return len(rows), nil
}

func ListBankTransactions(ctx context.Context, agencyId int, connectionId int) ([]*BankTransaction, error) {
	return SearchBankTransactions(ctx, agencyId, BankTransactionFilter{ConnectionId: connectionId})
}

func SearchBankTransactions(ctx context.Context, agencyId int, filter BankTransactionFilter) ([]*BankTransaction, error) {
	dbCtx := config.GetDB().WithContext(ctx).Where("agency_id = ?", agencyId)
	if filter.ConnectionId > 0 {
		dbCtx = dbCtx.Where("connection_id = ?", filter.ConnectionId)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + q + "%"
		dbCtx = dbCtx.Where("purpose LIKE ? OR counterparty LIKE ?", like, like)
	}
	if filter.From != nil {
		dbCtx = dbCtx.Where("booking_date >= ?", *filter.From)
	}
	if filter.To != nil {
		dbCtx = dbCtx.Where("booking_date <= ?", *filter.To)
	}
	if filter.MinAmount != nil {
		dbCtx = dbCtx.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		dbCtx = dbCtx.Where("amount <= ?", *filter.MaxAmount)
	}
	if filter.Limit > 0 {
		dbCtx = dbCtx.Limit(filter.Limit)
	}
	var results []*BankTransaction
	if err := dbCtx.Order("booking_date DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func AccountBalances(ctx context.Context, agencyId int) ([]*AccountBalance, error) {
	var results []*AccountBalance
	err := config.GetDB().WithContext(ctx).Table("bank_connections bc").
		Select("bc.id AS connection_id, bc.provider, bc.name, bc.iban, COALESCE(SUM(bt.amount), 0) AS balance, COUNT(bt.id) AS transaction_count").
		Joins("LEFT JOIN bank_transactions bt ON bt.connection_id = bc.id").
		Where("bc.agency_id = ?", agencyId).
		Group("bc.id, bc.provider, bc.name, bc.iban").
		Order("bc.id").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
