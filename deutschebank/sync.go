package deutschebank

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agencyhub/marketing_backend/apiclient"
	"github.com/agencyhub/marketing_backend/config"
	"github.com/agencyhub/marketing_backend/models"
	"github.com/agencyhub/marketing_backend/utils"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	stateTTL     = 10 * time.Minute
	defaultLimit = 15
	syncLimit    = 200
)

// transactionId uses the bank's id, or a digest of the booking when the bank sends none.
func transactionId(t Transaction) string {
	if t.Id != "" {
		return t.Id
	}
	if t.ExternalBankTxnId != "" {
		return t.ExternalBankTxnId
	}
	sum := sha1.Sum([]byte(strings.Join([]string{
		t.OriginIban, t.BookingDate, t.ValueDate, t.Amount.String(), t.PaymentReference, t.CounterPartyName, t.CounterPartyIban,
	}, "|")))
	return hex.EncodeToString(sum[:])
}

func transactionInputs(txs []Transaction) []models.BankTransactionInput {
	inputs := make([]models.BankTransactionInput, 0, len(txs))
	for _, t := range txs {
		date := apiclient.ParseDate(t.BookingDate)
		if date == nil {
			date = apiclient.ParseDate(t.ValueDate)
		}
		currency := strings.ToUpper(t.CurrencyCode)
		if currency == "" {
			currency = "EUR"
		}
		inputs = append(inputs, models.BankTransactionInput{
			TransactionId: transactionId(t),
			Amount:        t.Amount,
			Currency:      currency,
			Purpose:       t.PaymentReference,
			Counterparty:  t.CounterPartyName,
			BookingDate:   date,
		})
	}
	return inputs
}

// Authorize starts the PKCE flow and returns the bank's login URL. The verifier
// stays server side in redis under the one-time state.
func Authorize(ctx context.Context, agencyId int, input *AuthorizeInput) (string, error) {
	cfg, err := oauthConfig()
	if err != nil {
		return "", err
	}
	if config.GetRedisDB() == nil {
		return "", errors.New("service not ready (redis not initialized)")
	}
	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	st := authState{AgencyId: agencyId, Verifier: verifier}
	if input != nil {
		st.Name, st.Email, st.Phone = input.Name, input.Email, input.Phone
	}
	if err := config.SetRedisObject(stateKeyBase+state, st, stateTTL); err != nil {
		return "", err
	}
	return authCodeURL(cfg, state, verifier), nil
}

// Callback consumes the state, exchanges the code and stores the connection.
func Callback(ctx context.Context, state string, code string) (*models.BankConnection, error) {
	if state == "" || code == "" {
		return nil, &models.InputError{Message: "code and state are required"}
	}
	raw, ok, err := config.TakeRedisValue(stateKeyBase + state)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &models.InputError{Message: "unknown or expired state"}
	}
	var st authState
	if err := utils.UnmarshalFromJSON([]byte(raw), &st); err != nil {
		return nil, err
	}
	cfg, err := oauthConfig()
	if err != nil {
		return nil, err
	}
	token, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(st.Verifier))
	if err != nil {
		return nil, apiclient.Wrap(sourceName, "exchange code", err)
	}

	ctx = utils.SetAgencyIdInContext(ctx, st.AgencyId)
	var expiry *time.Time
	if !token.Expiry.IsZero() {
		e := token.Expiry.UTC()
		expiry = &e
	}
	conn, err := models.CreateBankConnection(ctx, st.AgencyId, &models.NewBankConnection{
		Provider:     models.BankProviderDeutsche,
		Name:         st.Name,
		Email:        st.Email,
		Phone:        st.Phone,
		BankName:     "Deutsche Bank",
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenExpiry:  expiry,
		Status:       models.BankConnectionStatusConnected,
	})
	if err != nil {
		return nil, err
	}
	if accounts, err := NewClient(token.AccessToken).CashAccounts(ctx); err == nil && len(accounts) > 0 {
		if err := models.UpdateBankConnectionDetails(ctx, conn, accounts[0].Iban, conn.BankName); err != nil {
			return nil, err
		}
	} else if err != nil {
		config.LogError(config.GetLogger(), "deutschebank", "Callback", "cash accounts", conn.ID, err)
	}
	return conn, nil
}

// refresh rotates the connection's tokens under a redis lock. A token already
// rotated by a concurrent caller is reused instead of refreshed twice.
func refresh(ctx context.Context, conn *models.BankConnection) error {
	lock, err := utils.ObtainLock(ctx, refreshLock, strconv.Itoa(conn.ID), 30*time.Second, 10*time.Second, "deutschebank", "refresh")
	if err != nil {
		return err
	}
	defer lock.Release(ctx)

	fresh, err := models.GetBankConnection(ctx, conn.AgencyId, conn.ID)
	if err != nil {
		return err
	}
	if fresh.AccessToken != conn.AccessToken {
		conn.AccessToken, conn.RefreshToken, conn.TokenExpiry = fresh.AccessToken, fresh.RefreshToken, fresh.TokenExpiry
		return nil
	}
	cfg, err := oauthConfig()
	if err != nil {
		return err
	}
	token, err := refreshToken(ctx, cfg, fresh.RefreshToken)
	if err != nil {
		_ = models.SetBankConnectionStatus(ctx, conn, models.BankConnectionStatusError)
		return apiclient.Wrap(sourceName, "refresh token", err)
	}
	var expiry *time.Time
	if !token.Expiry.IsZero() {
		e := token.Expiry.UTC()
		expiry = &e
	}
	return models.UpdateBankConnectionTokens(ctx, conn, token.AccessToken, token.RefreshToken, expiry)
}

func refreshToken(ctx context.Context, cfg *oauth2.Config, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, errors.New("connection has no refresh token")
	}
	return cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
}

// fetch calls the bank with the stored token and retries once after a refresh on 401.
func fetch(ctx context.Context, conn *models.BankConnection, from string, to string, limit int) ([]Transaction, error) {
	txs, err := NewClient(conn.AccessToken).Transactions(ctx, conn.Iban, from, to, limit)
	if apiclient.StatusCode(err) != http.StatusUnauthorized {
		return txs, err
	}
	if err := refresh(ctx, conn); err != nil {
		return nil, err
	}
	return NewClient(conn.AccessToken).Transactions(ctx, conn.Iban, from, to, limit)
}

func getConnection(ctx context.Context, agencyId int, id int) (*models.BankConnection, error) {
	conn, err := models.GetBankConnection(ctx, agencyId, id)
	if err != nil {
		return nil, err
	}
	if conn.Provider != models.BankProviderDeutsche {
		return nil, &models.NotFoundError{Resource: "deutsche bank connection", Id: id}
	}
	return conn, nil
}

// Transactions reads transactions live from the bank without storing them.
func Transactions(ctx context.Context, agencyId int, id int, q TransactionQuery) ([]Transaction, error) {
	conn, err := getConnection(ctx, agencyId, id)
	if err != nil {
		return nil, err
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	txs, err := fetch(ctx, conn, q.From, q.To, q.Limit)
	if err != nil {
		if errors.Is(err, ErrorInvalidDates) {
			return nil, err
		}
		return nil, apiclient.Wrap(sourceName, "transactions", err)
	}
	return txs, nil
}

func Disconnect(ctx context.Context, agencyId int, id int) (*models.BankConnection, error) {
	if _, err := getConnection(ctx, agencyId, id); err != nil {
		return nil, err
	}
	return models.DeleteBankConnection(ctx, agencyId, id)
}

type Syncer struct {
	Days int
	Now  func() time.Time
}

func NewSyncer() *Syncer {
	return &Syncer{Days: config.BankSyncDays(), Now: time.Now}
}

func (s *Syncer) Name() string { return sourceName }

func (s *Syncer) Sync(ctx context.Context, agencyId int) (int, error) {
	provider := models.BankProviderDeutsche
	conns, err := models.ListBankConnections(ctx, agencyId, &provider)
	if err != nil {
		return 0, err
	}
	from, to := apiclient.DateWindow(s.Now(), s.Days)
	total := 0
	var errs []error
	for _, conn := range conns {
		if conn.Iban == "" {
			continue
		}
		txs, err := fetch(ctx, conn, from, to, syncLimit)
		if err != nil {
			errs = append(errs, fmt.Errorf("connection %d: %w", conn.ID, apiclient.Wrap(sourceName, "transactions", err)))
			continue
		}
		n, err := models.UpsertBankTransactions(ctx, conn, transactionInputs(txs))
		total += n
		if err != nil {
			errs = append(errs, fmt.Errorf("connection %d: %w", conn.ID, err))
		}
	}
	return total, apiclient.JoinSyncErrors(sourceName, errs)
}
