package lexoffice

import (
	"net/http"

	"github.com/agencyhub/marketing_backend/config"
	"github.com/agencyhub/marketing_backend/middlewares"
	"github.com/agencyhub/marketing_backend/models"
	"github.com/gin-gonic/gin"
)

func ConnectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ConnectInput
		if err := c.ShouldBindJSON(&req); err != nil {
			middlewares.RespondError(c, err)
			return
		}
		conn, err := Connect(c.Request.Context(), middlewares.AgencyId(c), req.ApiKey)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, conn)
	}
}

func ListConnectionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		source := models.AccountingSourceLexoffice
		conns, err := models.ListAccountingConnections(c.Request.Context(), middlewares.AgencyId(c), &source)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, conns)
	}
}

func DisconnectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middlewares.ParamInt(c, "id")
		if !ok {
			return
		}
		conn, err := Disconnect(c.Request.Context(), middlewares.AgencyId(c), id)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, conn)
	}
}

func ContactHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middlewares.ParamInt(c, "id")
		if !ok {
			return
		}
		contact, err := LookupContact(c.Request.Context(), middlewares.AgencyId(c), id, c.Param("contactId"))
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": contact.Id, "name": contact.DisplayName()})
	}
}

func AddCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middlewares.ParamInt(c, "id")
		if !ok {
			return
		}
		var req AddCustomerInput
		if err := c.ShouldBindJSON(&req); err != nil {
			middlewares.RespondError(c, err)
			return
		}
		customer, err := AddCustomerFromContact(c.Request.Context(), middlewares.AgencyId(c), id, &req)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, customer)
	}
}

// WebhookHandler receives invoice events. Failures answer 502 so lexoffice redelivers;
// replays are harmless because invoices apply once. Invoices that can never apply
// (no contact, negative totals) answer 200 with applied=false.
func WebhookHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var event WebhookEvent
		if err := c.ShouldBindJSON(&event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event"})
			return
		}
		applied, err := HandleEvent(c.Request.Context(), &event)
		if err != nil {
			config.LogError(config.GetLogger(), "lexoffice", "WebhookHandler", "apply invoice", event, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"applied": applied})
	}
}
