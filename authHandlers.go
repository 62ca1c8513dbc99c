package main

import (
	"net/http"

	"github.com/agencyhub/marketing_backend/middlewares"
	"github.com/agencyhub/marketing_backend/models"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func registerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.NewAgency
		if err := c.ShouldBindJSON(&req); err != nil {
			middlewares.RespondError(c, err)
			return
		}
		agency, err := models.CreateAgency(c.Request.Context(), &req)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, agency)
	}
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			middlewares.RespondError(c, err)
			return
		}
		info, err := models.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

func logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := models.Logout(c.Request.Context())
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"logged_out": ok})
	}
}
