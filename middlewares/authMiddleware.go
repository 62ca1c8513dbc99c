package middlewares

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/agencyhub/marketing_backend/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware accepts "Authorization: Bearer <jwt>" for API clients.
// A session resolved earlier wins over the bearer token.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")
		if auth == "" {
			c.Next()
			return
		}
		if _, ok := utils.GetAgencyIdFromContext(c.Request.Context()); ok {
			c.Next()
			return
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(auth, bearer) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		auth = strings.TrimSpace(auth[len(bearer):])

		validate, err := utils.JwtValidate(auth)
		if err != nil || !validate.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		customClaim, _ := validate.Claims.(*utils.JwtCustomClaim)
		if customClaim == nil || customClaim.AgencyId <= 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := utils.SetAgencyIdInContext(c.Request.Context(), customClaim.AgencyId)
		ctx = utils.SetUsernameInContext(ctx, customClaim.Email)
		ctx = utils.SetIsAdminInContext(ctx, customClaim.IsAdmin)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAgency rejects requests that carry neither a session nor a bearer token.
func RequireAgency() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := utils.GetAgencyIdFromContext(c.Request.Context()); !ok || id <= 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isAdmin, _ := utils.GetIsAdminFromContext(c.Request.Context()); !isAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": utils.ErrorUnauthorized.Error()})
			c.Abort()
			return
		}
		c.Next()
	}
}

// AgencyId is the agency of the authenticated caller; RequireAgency guarantees it is set.
func AgencyId(c *gin.Context) int {
	id, _ := utils.GetAgencyIdFromContext(c.Request.Context())
	return id
}

// ParamInt parses a positive integer path parameter, answering 400 when it is malformed.
func ParamInt(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
