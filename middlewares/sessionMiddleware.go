package middlewares

import (
	"net/http"

	"github.com/agencyhub/marketing_backend/config"
	"github.com/agencyhub/marketing_backend/models"
	"github.com/agencyhub/marketing_backend/utils"
	"github.com/gin-gonic/gin"
)

// SessionMiddleware resolves the "token" header to the logged-in agency.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Request.Header.Get("token")
		if token == "" {
			c.Next()
			return
		}
		username, exists, err := config.GetRedisValue("Token:" + token)
		if err != nil || !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), token)
		ctx = utils.SetUsernameInContext(ctx, username)

		agency, err := models.GetAgencyByEmail(utils.SetSkipTenantScopeInContext(ctx, true), username)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		ctx = utils.SetAgencyIdInContext(ctx, agency.ID)
		ctx = utils.SetIsAdminInContext(ctx, config.IsAdminEmail(agency.Email))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
