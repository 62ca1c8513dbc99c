package middlewares

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/agencyhub/marketing_backend/config"
	"github.com/agencyhub/marketing_backend/models"
	"github.com/agencyhub/marketing_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ErrorStatus maps domain errors to HTTP status codes.
func ErrorStatus(err error) int {
	var (
		notFound    *models.NotFoundError
		exists      *models.AlreadyExistsError
		adapterErr  *models.AdapterError
		inputErr    *models.InputError
		validateErr validator.ValidationErrors
		syntaxErr   *json.SyntaxError
		typeErr     *json.UnmarshalTypeError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validateErr), errors.As(err, &inputErr):
		return http.StatusBadRequest
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.Is(err, io.EOF):
		return http.StatusBadRequest
	case errors.Is(err, utils.ErrorInvalidAmount), errors.Is(err, utils.ErrorInvalidDate), errors.Is(err, utils.ErrorInvalidDateSpan):
		return http.StatusBadRequest
	case errors.Is(err, utils.ErrorAgencyRequired), errors.Is(err, models.ErrorInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, utils.ErrorUnauthorized), errors.Is(err, models.ErrorAgencyDisabled):
		return http.StatusForbidden
	case errors.As(err, &notFound), errors.Is(err, utils.ErrorRecordNotFound):
		return http.StatusNotFound
	case errors.As(err, &exists), errors.Is(err, utils.ErrorLockNotObtained):
		return http.StatusConflict
	case errors.As(err, &adapterErr):
		return http.StatusBadGateway
	case errors.Is(err, utils.ErrorExportStorageDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes {"error": ...} with the mapped status and records the error on the gin context.
func RespondError(c *gin.Context, err error) {
	status := ErrorStatus(err)
	var validateErr validator.ValidationErrors
	if errors.As(err, &validateErr) {
		c.JSON(status, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		config.LogError(config.GetLogger(), "middlewares", "RespondError", c.FullPath(), nil, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
