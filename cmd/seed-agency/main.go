// seed-agency creates an agency login, or resets its password when the email already exists.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//	  go run ./cmd/seed-agency -email ops@agency.de -password 'secret123' -name 'Agency'
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/agencyhub/marketing_backend/config"
	"github.com/agencyhub/marketing_backend/models"
	"github.com/agencyhub/marketing_backend/utils"
)

func main() {
	email := flag.String("email", "", "agency login email")
	password := flag.String("password", "", "password, at least 8 characters")
	name := flag.String("name", "", "display name")
	flag.Parse()

	if *email == "" || len(*password) < 8 {
		fmt.Fprintln(os.Stderr, "-email and -password (min 8 chars) are required")
		os.Exit(2)
	}

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	ctx := utils.SystemContext(context.Background(), 0)

	_, err := models.GetAgencyByEmail(ctx, *email)
	var notFound *models.NotFoundError
	switch {
	case errors.As(err, &notFound):
		agency, err := models.CreateAgency(ctx, &models.NewAgency{Name: *name, Email: *email, Password: *password})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create agency: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created agency: id=%d email=%q\n", agency.ID, agency.Email)
	case err != nil:
		fmt.Fprintf(os.Stderr, "failed to lookup agency: %v\n", err)
		os.Exit(1)
	default:
		agency, err := models.ResetAgencyPassword(ctx, *email, *password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to reset password: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated agency password: id=%d email=%q\n", agency.ID, agency.Email)
	}
}
