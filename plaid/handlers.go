package plaid

import (
	"net/http"

	"github.com/agencyhub/marketing_backend/middlewares"
	"github.com/gin-gonic/gin"
)

func LinkTokenHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := NewLinkToken(c.Request.Context(), middlewares.AgencyId(c))
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, token)
	}
}

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

func BalancesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middlewares.ParamInt(c, "id")
		if !ok {
			return
		}
		accounts, err := LiveBalances(c.Request.Context(), middlewares.AgencyId(c), id)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, accounts)
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
