package models

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/agencyhub/marketing_backend/config"
	"github.com/agencyhub/marketing_backend/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Agency struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100" json:"name"`
	Email     string    `gorm:"size:100;not null;unique" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAgency struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginInfo struct {
	Token    string `json:"token"`
	Jwt      string `json:"jwt"`
	AgencyId int    `json:"agency_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	IsAdmin  bool   `json:"is_admin"`
}

/*
caches:
	Agency:$email
	Token:$token -> email
	Tokens:$email
*/

func (a Agency) RemoveInstanceRedis() error {
	return config.RemoveRedisKey("Agency:" + a.Email)
}

func CreateAgency(ctx context.Context, input *NewAgency) (*Agency, error) {
	db := config.GetDB()

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !utils.IsValidEmail(email) {
		return nil, invalidInput("invalid email address")
	}

	var count int64
	if err := db.WithContext(ctx).Model(&Agency{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &AlreadyExistsError{Resource: "agency", Key: email}
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	agency := Agency{
		Name:     html.EscapeString(strings.TrimSpace(input.Name)),
		Email:    email,
		Password: string(hashedPassword),
		IsActive: utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&agency).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return nil, &AlreadyExistsError{Resource: "agency", Key: email}
		}
		return nil, err
	}
	return &agency, nil
}

func GetAgency(ctx context.Context, id int) (*Agency, error) {
	db := config.GetDB()
	var result Agency
	if err := db.WithContext(ctx).First(&result, id).Error; err != nil {
		return nil, notFoundOr(err, "agency", id)
	}
	return &result, nil
}

// AgencyExists is a cheap existence check used by the aggregator.
func AgencyExists(ctx context.Context, id int) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	var count int64
	if err := config.GetDB().WithContext(ctx).Model(&Agency{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func GetAgencyByEmail(ctx context.Context, email string) (*Agency, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var result Agency
	exists, err := config.GetRedisObject("Agency:"+email, &result)
	if err != nil {
		return nil, err
	}
	if exists {
		return &result, nil
	}
	if err := config.GetDB().WithContext(ctx).Where("email = ?", email).First(&result).Error; err != nil {
		return nil, notFoundOr(err, "agency", email)
	}
	if err := config.SetRedisObject("Agency:"+email, &result, utils.GetCacheLifespan()); err != nil {
		return nil, err
	}
	return &result, nil
}

func ListAgencies(ctx context.Context) ([]*Agency, error) {
	var results []*Agency
	if err := config.GetDB().WithContext(ctx).Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

var (
	ErrorInvalidCredentials = errors.New("invalid email or password")
	ErrorAgencyDisabled     = errors.New("agency is disabled")
)

func Login(ctx context.Context, email string, password string) (*LoginInfo, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var agency Agency
	if err := config.GetDB().WithContext(ctx).Where("email = ?", email).Take(&agency).Error; err != nil {
		return nil, ErrorInvalidCredentials
	}
	if err := utils.ComparePassword(agency.Password, password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrorInvalidCredentials
		}
		return nil, err
	}
	if agency.IsActive != nil && !*agency.IsActive {
		return nil, ErrorAgencyDisabled
	}

	isAdmin := config.IsAdminEmail(agency.Email)
	jwtToken, err := utils.JwtGenerate(agency.ID, agency.Email, isAdmin)
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	if err := config.AddRedisSet("Tokens:"+agency.Email, token); err != nil {
		return nil, err
	}
	if err := config.SetRedisValue("Token:"+token, agency.Email, utils.TokenLifespan()); err != nil {
		return nil, err
	}

	return &LoginInfo{
		Token:    token,
		Jwt:      jwtToken,
		AgencyId: agency.ID,
		Email:    agency.Email,
		Name:     agency.Name,
		IsAdmin:  isAdmin,
	}, nil
}

// destroy current session
func Logout(ctx context.Context) (bool, error) {
	token, ok := utils.GetTokenFromContext(ctx)
	if !ok || token == "" {
		return false, invalidInput("logout needs a session token")
	}
	if err := config.RemoveRedisKey("Token:" + token); err != nil {
		return false, err
	}
	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok || username == "" {
		return false, errors.New("agency not found")
	}
	if err := config.RemoveRedisSetMember("Tokens:"+username, token); err != nil {
		return false, err
	}
	return true, nil
}

// ResetAgencyPassword replaces the password and drops every open session.
func ResetAgencyPassword(ctx context.Context, email string, password string) (*Agency, error) {
	agency, err := GetAgencyByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	if err := config.GetDB().WithContext(ctx).Model(&Agency{}).Where("id = ?", agency.ID).
		Update("password", string(hashedPassword)).Error; err != nil {
		return nil, err
	}
	if err := agency.DestroyAllSessions(); err != nil {
		return nil, err
	}
	if err := agency.RemoveInstanceRedis(); err != nil {
		return nil, err
	}
	return agency, nil
}

func (a *Agency) DestroyAllSessions() error {
	tokens, err := config.GetRedisSetMembers("Tokens:" + a.Email)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, "Token:"+t)
	}
	keys = append(keys, "Tokens:"+a.Email)
	return config.RemoveRedisKey(keys...)
}
