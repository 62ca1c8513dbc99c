package middlewares

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/agencyhub/marketing_backend/models"
	"github.com/agencyhub/marketing_backend/utils"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", &models.NotFoundError{Resource: "agency", Id: 7}, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", &models.NotFoundError{Resource: "agency", Id: 7}), http.StatusNotFound},
		{"exists", &models.AlreadyExistsError{Resource: "agency", Key: "a@b.de"}, http.StatusConflict},
		{"adapter", models.NewAdapterError("lexoffice", "fetch invoice", errors.New("boom"), true), http.StatusBadGateway},
		{"input", &models.InputError{Message: "identifier is required"}, http.StatusBadRequest},
		{"amount", utils.ErrorInvalidAmount, http.StatusBadRequest},
		{"date", fmt.Errorf("%w: from %q", utils.ErrorInvalidDate, "x"), http.StatusBadRequest},
		{"empty body", io.EOF, http.StatusBadRequest},
		{"forbidden", utils.ErrorUnauthorized, http.StatusForbidden},
		{"bad login", models.ErrorInvalidCredentials, http.StatusUnauthorized},
		{"disabled", models.ErrorAgencyDisabled, http.StatusForbidden},
		{"busy", utils.ErrorLockNotObtained, http.StatusConflict},
		{"storage", utils.ErrorExportStorageDisabled, http.StatusServiceUnavailable},
		{"other", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := ErrorStatus(tc.err); got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}
