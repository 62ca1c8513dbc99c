package workflow

import (
	"github.com/agencyhub/marketing_backend/deutschebank"
	"github.com/agencyhub/marketing_backend/finapi"
	"github.com/agencyhub/marketing_backend/googleads"
	"github.com/agencyhub/marketing_backend/lexoffice"
	"github.com/agencyhub/marketing_backend/mailsync"
	"github.com/agencyhub/marketing_backend/plaid"
	"github.com/agencyhub/marketing_backend/sevdesk"
)

// AgencySyncers lists every source in the order a sync run visits them.
func AgencySyncers(mail *mailsync.Service) []SourceSyncer {
	return []SourceSyncer{
		lexoffice.NewSyncer(),
		sevdesk.NewSyncer(),
		finapi.NewSyncer(),
		plaid.NewSyncer(),
		deutschebank.NewSyncer(),
		googleads.NewSyncer(),
		mail,
	}
}
