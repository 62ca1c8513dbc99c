package deutschebank

import (
	"net/http"

	"github.com/agencyhub/marketing_backend/config"
	"github.com/agencyhub/marketing_backend/middlewares"
	"github.com/gin-gonic/gin"
)

// AuthorizeHandler answers with the bank login URL; the frontend redirects the browser there.
func AuthorizeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AuthorizeInput
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				middlewares.RespondError(c, err)
				return
			}
		}
		authURL, err := Authorize(c.Request.Context(), middlewares.AgencyId(c), &req)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"authorize_url": authURL})
	}
}

// CallbackHandler is public: the bank redirects the browser here with code and state.
func CallbackHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if e := c.Query("error"); e != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "login error with deutsche bank: " + e})
			return
		}
		conn, err := Callback(c.Request.Context(), c.Query("state"), c.Query("code"))
		if err != nil {
			config.LogError(config.GetLogger(), "deutschebank", "CallbackHandler", "callback", nil, err)
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, conn)
	}
}

func TransactionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middlewares.ParamInt(c, "id")
		if !ok {
			return
		}
		var q TransactionQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			middlewares.RespondError(c, err)
			return
		}
		txs, err := Transactions(c.Request.Context(), middlewares.AgencyId(c), id, q)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, txs)
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
