package main

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/agencyhub/marketing_backend/middlewares"
	"github.com/agencyhub/marketing_backend/models/reports"
	"github.com/agencyhub/marketing_backend/utils"
	"github.com/gin-gonic/gin"
)

const (
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportLinkExpiry = 15 * time.Minute
)

func exportJSONHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		export, err := reports.ExportAgencyData(c.Request.Context(), middlewares.AgencyId(c))
		if err != nil {
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, export)
	}
}

func renderWorkbook(c *gin.Context) ([]byte, bool) {
	export, err := reports.ExportAgencyData(c.Request.Context(), middlewares.AgencyId(c))
	if err != nil {
		middlewares.RespondError(c, err)
		return nil, false
	}
	var buf bytes.Buffer
	if err := reports.WriteAgencyWorkbook(&buf, export); err != nil {
		middlewares.RespondError(c, err)
		return nil, false
	}
	return buf.Bytes(), true
}

func workbookName(agencyId int) string {
	return fmt.Sprintf("agency-%d-%s.xlsx", agencyId, time.Now().UTC().Format("20060102-150405"))
}

func exportWorkbookHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		data, ok := renderWorkbook(c)
		if !ok {
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+workbookName(middlewares.AgencyId(c))+`"`)
		c.Data(http.StatusOK, xlsxContentType, data)
	}
}

// exportToStorageHandler uploads the workbook to the export bucket and returns a signed link.
func exportToStorageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		data, ok := renderWorkbook(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		objectName := utils.ExportObjectName(middlewares.AgencyId(c), workbookName(middlewares.AgencyId(c)))
		if err := utils.UploadExport(ctx, objectName, xlsxContentType, data); err != nil {
			middlewares.RespondError(c, err)
			return
		}
		link, err := utils.SignDownload(ctx, objectName, exportLinkExpiry)
		if err != nil {
			_ = utils.DeleteExport(ctx, objectName)
			middlewares.RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, link)
	}
}
