package models_test

import (
	"context"
	"testing"

	"github.com/agencyhub/marketing_backend/models"
	"github.com/agencyhub/marketing_backend/models/modeltest"
)

func setupIntegration(t *testing.T) (context.Context, *models.Agency) {
	t.Helper()
	return modeltest.Setup(t)
}
