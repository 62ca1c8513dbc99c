package main

import (
	"github.com/agencyhub/marketing_backend/deutschebank"
	"github.com/agencyhub/marketing_backend/finapi"
	"github.com/agencyhub/marketing_backend/googleads"
	"github.com/agencyhub/marketing_backend/lexoffice"
	"github.com/agencyhub/marketing_backend/mailsync"
	"github.com/agencyhub/marketing_backend/middlewares"
	"github.com/agencyhub/marketing_backend/plaid"
	"github.com/agencyhub/marketing_backend/sevdesk"
	"github.com/agencyhub/marketing_backend/workflow"
	"github.com/gin-gonic/gin"
)

func registerRoutes(r *gin.Engine, mail *mailsync.Service) {
	syncers := func() []workflow.SourceSyncer { return workflow.AgencySyncers(mail) }

	r.POST("/auth/register", registerHandler())
	r.POST("/auth/login", loginHandler())
	r.POST("/webhooks/lexoffice", lexoffice.WebhookHandler())
	r.POST("/pubsub/sync", workflow.SyncPushHandler(syncers))
	r.GET("/deutsche/callback", deutschebank.CallbackHandler())

	api := r.Group("/", middlewares.RequireAgency())
	api.POST("/auth/logout", logoutHandler())

	api.GET("/dashboard", dashboardHandler())
	api.GET("/analysis/:agency_id", agencyAnalysisHandler())
	api.POST("/analysis/snapshots", saveSnapshotHandler())
	api.GET("/analysis/snapshots", listSnapshotsHandler())
	api.GET("/visualize", visualizeHandler())

	api.GET("/export", exportJSONHandler())
	api.GET("/export.xlsx", exportWorkbookHandler())
	api.POST("/export/gcs", exportToStorageHandler())

	api.POST("/manual-entries", submitManualEntryHandler())
	api.GET("/manual-entries", listManualEntriesHandler())
	api.DELETE("/manual-entries/:id", deleteManualEntryHandler())

	api.GET("/accounting/connections", listAccountingConnectionsHandler())
	api.GET("/accounting/customers", listCustomersHandler())

	lex := api.Group("/lexoffice")
	lex.POST("/connections", lexoffice.ConnectHandler())
	lex.GET("/connections", lexoffice.ListConnectionsHandler())
	lex.DELETE("/connections/:id", lexoffice.DisconnectHandler())
	lex.GET("/connections/:id/contacts/:contactId", lexoffice.ContactHandler())
	lex.POST("/connections/:id/customers", lexoffice.AddCustomerHandler())

	sev := api.Group("/sevdesk")
	sev.POST("/connections", sevdesk.ConnectHandler())
	sev.GET("/connections", sevdesk.ListConnectionsHandler())
	sev.DELETE("/connections/:id", sevdesk.DisconnectHandler())
	sev.GET("/connections/:id/invoices/:invoiceId", sevdesk.InvoiceHandler())
	sev.POST("/connections/:id/invoices", sevdesk.ApplyInvoiceHandler())

	fin := api.Group("/finapi")
	fin.POST("/connections", finapi.ConnectHandler())
	fin.GET("/connections", finapi.ListConnectionsHandler())
	fin.POST("/connections/:id/sync", finapi.SyncConnectionHandler())
	fin.DELETE("/connections/:id", finapi.DisconnectHandler())

	pl := api.Group("/plaid")
	pl.POST("/link-token", plaid.LinkTokenHandler())
	pl.POST("/connections", plaid.ConnectHandler())
	pl.GET("/connections/:id/balances", plaid.BalancesHandler())
	pl.DELETE("/connections/:id", plaid.DisconnectHandler())

	db := api.Group("/deutsche")
	db.POST("/authorize", deutschebank.AuthorizeHandler())
	db.GET("/connections/:id/transactions", deutschebank.TransactionsHandler())
	db.DELETE("/connections/:id", deutschebank.DisconnectHandler())

	bank := api.Group("/bank")
	bank.GET("/connections", listBankConnectionsHandler())
	bank.DELETE("/connections/:id", deleteBankConnectionHandler())
	bank.GET("/summary", bankSummaryHandler())
	bank.GET("/transactions", searchBankTransactionsHandler())
	bank.GET("/balances", bankBalancesHandler())

	ads := api.Group("/google-ads")
	ads.POST("/accounts", googleads.LinkHandler())
	ads.GET("/accounts", googleads.ListAccountsHandler())
	ads.DELETE("/accounts/:id", googleads.UnlinkHandler())
	ads.GET("/accounts/:id/campaigns", googleads.CampaignsHandler())
	ads.POST("/accounts/:id/sync", googleads.SyncHandler())
	ads.GET("/accounts/:id/performance", googleads.PerformanceHandler())
	ads.GET("/campaigns.csv", googleads.ExportHandler())

	mb := api.Group("/mail")
	mb.POST("/mailboxes", mailsync.ConnectHandler(mail))
	mb.GET("/mailboxes", mailsync.ListHandler())
	mb.DELETE("/mailboxes/:id", mailsync.DisconnectHandler())
	mb.GET("/mailboxes/:id/emails", mailsync.EmailsHandler())
	mb.POST("/mailboxes/:id/sync", mailsync.SyncHandler(mail))

	api.POST("/sync", startSyncHandler(syncers))
	api.GET("/sync/runs", listSyncRunsHandler())
	api.GET("/sync/runs/:id", getSyncRunHandler())
	api.GET("/sync/runs/:id/errors", listSyncErrorsHandler())

	admin := api.Group("/admin", middlewares.RequireAdmin())
	admin.GET("/agencies", adminOverviewHandler())
	admin.GET("/connections/:id/customers", adminConnectionCustomersHandler())
}
