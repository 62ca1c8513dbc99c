package models

import (
	"log"

	"github.com/agencyhub/marketing_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Agency{},
		&AccountingConnection{}, &Customer{}, &AccountingInvoice{},
		&ManualEntry{},
		&BankConnection{}, &BankTransaction{},
		&GoogleAdsAccount{}, &GoogleAdsCampaign{},
		&MailUser{}, &Email{},
		&SyncRun{}, &SyncError{},
		&DataAnalysis{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
