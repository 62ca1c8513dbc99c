package models

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"github.com/agencyhub/marketing_backend/config"
	"github.com/agencyhub/marketing_backend/utils"
	"gorm.io/gorm/clause"
)

type MailUser struct {
	ID         int        `gorm:"primary_key" json:"id"`
	AgencyId   int        `gorm:"not null;uniqueIndex:idx_mail_user,priority:1" json:"agency_id"`
	Email      string     `gorm:"size:100;not null;uniqueIndex:idx_mail_user,priority:2" json:"email"`
	Password   string     `gorm:"type:text;not null" json:"-"`
	Provider   string     `gorm:"size:20;not null" json:"provider"`
	Domain     string     `gorm:"size:100;not null" json:"domain"`
	Folder     string     `gorm:"size:100;not null;default:'INBOX'" json:"folder"`
	LastSyncAt *time.Time `json:"last_sync_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Email rows are never updated after insert.
type Email struct {
	ID          int       `gorm:"primary_key" json:"id"`
	AgencyId    int       `gorm:"index;not null" json:"agency_id"`
	MailUserId  int       `gorm:"not null;uniqueIndex:idx_email_dedupe,priority:1" json:"mail_user_id"`
	SubjectHash string    `gorm:"size:40;not null;uniqueIndex:idx_email_dedupe,priority:2" json:"-"`
	Sender      string    `gorm:"size:255;uniqueIndex:idx_email_dedupe,priority:3" json:"sender"`
	Recipient   string    `gorm:"size:255;uniqueIndex:idx_email_dedupe,priority:4" json:"recipient"`
	Date        time.Time `gorm:"index;uniqueIndex:idx_email_dedupe,priority:5" json:"date"`
	Subject     string    `gorm:"type:text" json:"subject"`
	Content     string    `gorm:"type:mediumtext" json:"content"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewMailUser struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Folder   string `json:"folder"`
}

type EmailInput struct {
	Subject   string
	Sender    string
	Recipient string
	Date      time.Time
	Content   string
}

func subjectHash(subject string) string {
	sum := sha1.Sum([]byte(subject))
	return hex.EncodeToString(sum[:])
}

func CreateMailUser(ctx context.Context, agencyId int, input *NewMailUser) (*MailUser, error) {
	if agencyId <= 0 {
		return nil, utils.ErrorAgencyRequired
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !utils.IsValidEmail(email) {
		return nil, invalidInput("invalid email address")
	}
	domain := utils.EmailDomain(email)
	provider, ok := config.MailProviderForDomain(domain)
	if !ok {
		return nil, invalidInput("unsupported mail provider for domain " + domain)
	}
	folder := strings.TrimSpace(input.Folder)
	if folder == "" {
		folder = provider.Folder
	}
	user := MailUser{
		AgencyId: agencyId,
		Email:    email,
		Password: input.Password,
		Provider: provider.Name,
		Domain:   domain,
		Folder:   folder,
	}
	if err := config.GetDB().WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return nil, &AlreadyExistsError{Resource: "mailbox", Key: email}
		}
		return nil, err
	}
	return &user, nil
}

func ListMailUsers(ctx context.Context, agencyId int) ([]*MailUser, error) {
	return utils.FetchAllModels[MailUser](ctx, agencyId)
}

func GetMailUser(ctx context.Context, agencyId int, id int) (*MailUser, error) {
	return fetchOwned[MailUser](ctx, agencyId, id, "mailbox")
}

func DeleteMailUser(ctx context.Context, agencyId int, id int) (*MailUser, error) {
	user, err := GetMailUser(ctx, agencyId, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Where("mail_user_id = ? AND agency_id = ?", user.ID, agencyId).Delete(&Email{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Where("agency_id = ?", agencyId).Delete(&MailUser{}, user.ID).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	afterWrite(agencyId, "DeleteMailUser")
	return user, nil
}

// InsertEmailIfAbsent stores the email unless the same (subject, sender, recipient, date) exists for the mailbox.
func InsertEmailIfAbsent(ctx context.Context, user *MailUser, input EmailInput) (bool, error) {
	row := Email{
		AgencyId:    user.AgencyId,
		MailUserId:  user.ID,
		SubjectHash: subjectHash(input.Subject),
		Sender:      truncate(input.Sender, 255),
		Recipient:   truncate(input.Recipient, 255),
		Date:        input.Date.UTC().Truncate(time.Second),
		Subject:     input.Subject,
		Content:     input.Content,
	}
	result := config.GetDB().WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func MarkMailUserSynced(ctx context.Context, user *MailUser, at time.Time) error {
	user.LastSyncAt = &at
	if err := config.GetDB().WithContext(ctx).Model(&MailUser{}).
		Where("id = ? AND agency_id = ?", user.ID, user.AgencyId).Update("last_sync_at", at).Error; err != nil {
		return err
	}
	afterWrite(user.AgencyId, "MarkMailUserSynced")
	return nil
}

func ListEmails(ctx context.Context, agencyId int, mailUserId int, limit int) ([]*Email, error) {
	dbCtx := config.GetDB().WithContext(ctx).Where("agency_id = ?", agencyId)
	if mailUserId > 0 {
		dbCtx = dbCtx.Where("mail_user_id = ?", mailUserId)
	}
	if limit <= 0 {
		limit = config.SearchLimit
	}
	var results []*Email
	if err := dbCtx.Order("date DESC, id DESC").Limit(limit).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func CountEmailsSince(ctx context.Context, agencyId int, since time.Time) (int64, error) {
	var n int64
	err := config.GetDB().WithContext(ctx).Model(&Email{}).
		Where("agency_id = ? AND date >= ?", agencyId, since).Count(&n).Error
	return n, err
}
