package finapi

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
		conn, err := Connect(c.Request.Context(), middlewares.AgencyId(c), &req)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, conn)
	}
}

func ListConnectionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := models.BankProviderFinAPI
		conns, err := models.ListBankConnections(c.Request.Context(), middlewares.AgencyId(c), &provider)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, conns)
	}
}

func SyncConnectionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middlewares.ParamInt(c, "id")
		if !ok {
			return
		}
		n, err := SyncOne(c.Request.Context(), middlewares.AgencyId(c), id)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"synced": n})
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
