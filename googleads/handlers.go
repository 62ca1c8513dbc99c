package googleads

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/agencyhub/marketing_backend/middlewares"
	"github.com/agencyhub/marketing_backend/models"
	"github.com/gin-gonic/gin"
)

func LinkHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LinkInput
		if err := c.ShouldBindJSON(&req); err != nil {
			middlewares.RespondError(c, err)
			return
		}
		account, err := Link(c.Request.Context(), middlewares.AgencyId(c), &req)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, account)
	}
}

func ListAccountsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		accounts, err := models.ListGoogleAdsAccounts(c.Request.Context(), middlewares.AgencyId(c))
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, accounts)
	}
}

func CampaignsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middlewares.ParamInt(c, "id")
		if !ok {
			return
		}
		agencyId := middlewares.AgencyId(c)
		if _, err := models.GetGoogleAdsAccount(c.Request.Context(), agencyId, id); err != nil {
			middlewares.RespondError(c, err)
			return
		}
		campaigns, err := models.ListCampaigns(c.Request.Context(), agencyId, id)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, campaigns)
	}
}

func SyncHandler() gin.HandlerFunc {
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

func PerformanceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middlewares.ParamInt(c, "id")
		if !ok {
			return
		}
		perf, err := LivePerformance(c.Request.Context(), middlewares.AgencyId(c), id)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, perf)
	}
}

// ExportHandler serves campaigns as CSV; ?account=<id> limits the export to one account.
func ExportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := 0
		if v := c.Query("account"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account"})
				return
			}
			id = n
		}
		var buf bytes.Buffer
		if err := ExportCampaigns(c.Request.Context(), &buf, middlewares.AgencyId(c), id); err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="campaigns.csv"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	}
}

func UnlinkHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middlewares.ParamInt(c, "id")
		if !ok {
			return
		}
		account, err := Unlink(c.Request.Context(), middlewares.AgencyId(c), id)
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, account)
	}
}
