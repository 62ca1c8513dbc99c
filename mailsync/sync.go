package mailsync

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agencyhub/marketing_backend/apiclient"
	"github.com/agencyhub/marketing_backend/config"
	"github.com/agencyhub/marketing_backend/models"
	"github.com/agencyhub/marketing_backend/utils"
)

type Service struct {
	Dial Dialer
	Max  int
	Now  func() time.Time
}

func NewService() *Service {
	return &Service{Dial: DialTLS, Max: config.MailSyncMax(), Now: time.Now}
}

func (s *Service) open(user *models.MailUser) (Mailbox, error) {
	provider, ok := config.MailProviderForDomain(user.Domain)
	if !ok {
		return nil, &models.InputError{Message: "unsupported mail provider for domain " + user.Domain}
	}
	mb, err := s.Dial(provider.IMAPHost, provider.IMAPPort)
	if err != nil {
		return nil, apiclient.Wrap(sourceName, "dial", err)
	}
	if err := mb.Login(user.Email, user.Password); err != nil {
		mb.Logout()
		return nil, &models.InputError{Message: "invalid email or password"}
	}
	return mb, nil
}

// Connect verifies the credentials against the provider before storing the mailbox.
func (s *Service) Connect(ctx context.Context, agencyId int, input *models.NewMailUser) (*models.MailUser, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	domain := utils.EmailDomain(email)
	mb, err := s.open(&models.MailUser{Email: email, Password: input.Password, Domain: domain})
	if err != nil {
		return nil, err
	}
	mb.Logout()
	return models.CreateMailUser(ctx, agencyId, input)
}

// SyncMailbox stores the newest messages of one mailbox and returns how many were new.
func (s *Service) SyncMailbox(ctx context.Context, user *models.MailUser) (int, error) {
	mb, err := s.open(user)
	if err != nil {
		return 0, err
	}
	defer mb.Logout()

	now := s.Now()
	inserted := 0
	err = fetchLatest(mb, user.Folder, s.Max, func(r io.Reader) error {
		in, err := parseMessage(r, now)
		if err != nil {
			config.LogError(config.GetLogger(), "mailsync", "SyncMailbox", "parse message", user.ID, err)
			return nil
		}
		ok, err := models.InsertEmailIfAbsent(ctx, user, in)
		if err != nil {
			return err
		}
		if ok {
			inserted++
		}
		return nil
	})
	if err != nil {
		return inserted, apiclient.Wrap(sourceName, "fetch", err)
	}
	return inserted, models.MarkMailUserSynced(ctx, user, now.UTC())
}

func (s *Service) SyncOne(ctx context.Context, agencyId int, id int) (int, error) {
	user, err := models.GetMailUser(ctx, agencyId, id)
	if err != nil {
		return 0, err
	}
	return s.SyncMailbox(ctx, user)
}

func (s *Service) Name() string { return sourceName }

// Sync implements the per-agency source sync over every stored mailbox.
func (s *Service) Sync(ctx context.Context, agencyId int) (int, error) {
	users, err := models.ListMailUsers(ctx, agencyId)
	if err != nil {
		return 0, err
	}
	total := 0
	var errs []error
	for _, user := range users {
		n, err := s.SyncMailbox(ctx, user)
		total += n
		if err != nil {
			errs = append(errs, fmt.Errorf("mailbox %s: %w", user.Email, err))
		}
	}
	return total, apiclient.JoinSyncErrors(sourceName, errs)
}
