package sevdesk

import (
	"net/http"

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
		source := models.AccountingSourceSevdesk
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

func InvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middlewares.ParamInt(c, "id")
		if !ok {
			return
		}
		summary, err := LookupInvoice(c.Request.Context(), middlewares.AgencyId(c), id, c.Param("invoiceId"))
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

func ApplyInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middlewares.ParamInt(c, "id")
		if !ok {
			return
		}
		var req ApplyInvoiceInput
		if err := c.ShouldBindJSON(&req); err != nil {
			middlewares.RespondError(c, err)
			return
		}
		customer, applied, err := ApplyInvoiceById(c.Request.Context(), middlewares.AgencyId(c), id, &req)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"customer": customer, "applied": applied})
	}
}
