package main

import (
	"net/http"
	"strconv"

	"github.com/agencyhub/marketing_backend/deutschebank"
	"github.com/agencyhub/marketing_backend/finapi"
	"github.com/agencyhub/marketing_backend/middlewares"
	"github.com/agencyhub/marketing_backend/models"
	"github.com/agencyhub/marketing_backend/models/reports"
	"github.com/agencyhub/marketing_backend/plaid"
	"github.com/agencyhub/marketing_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func submitManualEntryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.NewManualEntry
		if err := c.ShouldBindJSON(&req); err != nil {
			middlewares.RespondError(c, err)
			return
		}
		entry, err := models.SubmitManualEntry(c.Request.Context(), middlewares.AgencyId(c), &req)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, entry)
	}
}

func listManualEntriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := models.ListManualEntries(c.Request.Context(), middlewares.AgencyId(c))
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

func deleteManualEntryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middlewares.ParamInt(c, "id")
		if !ok {
			return
		}
		entry, err := models.DeleteManualEntry(c.Request.Context(), middlewares.AgencyId(c), id)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, entry)
	}
}

func listAccountingConnectionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var source *models.AccountingSource
		if v := c.Query("source"); v != "" {
			s := models.AccountingSource(v)
			source = &s
		}
		conns, err := models.ListAccountingConnections(c.Request.Context(), middlewares.AgencyId(c), source)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, conns)
	}
}

func listCustomersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		connectionId, ok := queryInt(c, "connection")
		if !ok {
			return
		}
		customers, err := models.ListCustomers(c.Request.Context(), middlewares.AgencyId(c), connectionId)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, customers)
	}
}

func listBankConnectionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var provider *models.BankProvider
		if v := c.Query("provider"); v != "" {
			p := models.BankProvider(v)
			provider = &p
		}
		conns, err := models.ListBankConnections(c.Request.Context(), middlewares.AgencyId(c), provider)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, conns)
	}
}

// deleteBankConnectionHandler routes to the provider so upstream consents are revoked too.
func deleteBankConnectionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middlewares.ParamInt(c, "id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		agencyId := middlewares.AgencyId(c)
		conn, err := models.GetBankConnection(ctx, agencyId, id)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		switch conn.Provider {
		case models.BankProviderFinAPI:
			conn, err = finapi.Disconnect(ctx, agencyId, id)
		case models.BankProviderPlaid:
			conn, err = plaid.Disconnect(ctx, agencyId, id)
		case models.BankProviderDeutsche:
			conn, err = deutschebank.Disconnect(ctx, agencyId, id)
		default:
			conn, err = models.DeleteBankConnection(ctx, agencyId, id)
		}
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, conn)
	}
}

func bankSummaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		connectionId, ok := queryInt(c, "connection")
		if !ok {
			return
		}
		from, to, err := utils.ParseDateRange(c.Query("from"), c.Query("to"))
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		summary, err := reports.GetBankSummary(c.Request.Context(), middlewares.AgencyId(c), connectionId, from, to)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

func searchBankTransactionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		connectionId, ok := queryInt(c, "connection")
		if !ok {
			return
		}
		limit, ok := queryInt(c, "limit")
		if !ok {
			return
		}
		from, to, err := utils.ParseDateRange(c.Query("from"), c.Query("to"))
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		filter := models.BankTransactionFilter{
			Query:        c.Query("q"),
			ConnectionId: connectionId,
			From:         from,
			To:           to,
			Limit:        limit,
		}
		if filter.MinAmount, err = queryDecimal(c, "min"); err != nil {
			middlewares.RespondError(c, err)
			return
		}
		if filter.MaxAmount, err = queryDecimal(c, "max"); err != nil {
			middlewares.RespondError(c, err)
			return
		}
		txs, err := models.SearchBankTransactions(c.Request.Context(), middlewares.AgencyId(c), filter)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, txs)
	}
}

func bankBalancesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		balances, err := models.AccountBalances(c.Request.Context(), middlewares.AgencyId(c))
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, balances)
	}
}

// queryInt reads an optional non-negative integer query parameter; 0 when absent.
func queryInt(c *gin.Context, name string) (int, bool) {
	v := c.Query(name)
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return n, true
}

func queryDecimal(c *gin.Context, name string) (*decimal.Decimal, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil
	}
	d, err := utils.ParseAmount(v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
