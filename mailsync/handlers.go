package mailsync

import (
	"net/http"
	"strconv"

	"github.com/agencyhub/marketing_backend/middlewares"
	"github.com/agencyhub/marketing_backend/models"
	"github.com/gin-gonic/gin"
)

func ConnectHandler(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.NewMailUser
		if err := c.ShouldBindJSON(&req); err != nil {
			middlewares.RespondError(c, err)
			return
		}
		user, err := s.Connect(c.Request.Context(), middlewares.AgencyId(c), &req)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

func ListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := models.ListMailUsers(c.Request.Context(), middlewares.AgencyId(c))
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

func EmailsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middlewares.ParamInt(c, "id")
		if !ok {
			return
		}
		limit, _ := strconv.Atoi(c.Query("limit"))
		agencyId := middlewares.AgencyId(c)
		if _, err := models.GetMailUser(c.Request.Context(), agencyId, id); err != nil {
			middlewares.RespondError(c, err)
			return
		}
		emails, err := models.ListEmails(c.Request.Context(), agencyId, id, limit)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, emails)
	}
}

func SyncHandler(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middlewares.ParamInt(c, "id")
		if !ok {
			return
		}
		n, err := s.SyncOne(c.Request.Context(), middlewares.AgencyId(c), id)
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
		user, err := models.DeleteMailUser(c.Request.Context(), middlewares.AgencyId(c), id)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
