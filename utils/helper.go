package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ttacon/libphonenumber"
)

var CountryCode = "DE"

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// EmailDomain returns the lower-cased part after '@', or "" for malformed input.
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(email[at+1:]))
}

// ValidatePhoneNumber parses phoneNumber for countryCode and returns it in E.164.
func ValidatePhoneNumber(phoneNumber, countryCode string) (string, error) {
	if countryCode == "" {
		countryCode = CountryCode
	}
	p, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil {
		return "", err
	}
	if !libphonenumber.IsValidNumber(p) {
		return "", fmt.Errorf("phone number is not valid")
	}
	return libphonenumber.Format(p, libphonenumber.E164), nil
}

func ProcessValidationErrors(err error) map[string]string {
	errorResponse := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errorResponse["request"] = err.Error()
		return errorResponse
	}
	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}
	return errorResponse
}

func NewTrue() *bool {
	b := true
	return &b
}

// ParseDateRange parses optional YYYY-MM-DD bounds; the upper bound is inclusive of the whole day.
func ParseDateRange(from, to string) (*time.Time, *time.Time, error) {
	var fromDate, toDate *time.Time
	if s := strings.TrimSpace(from); s != "" {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: from %q", ErrorInvalidDate, s)
		}
		fromDate = &d
	}
	if s := strings.TrimSpace(to); s != "" {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: to %q", ErrorInvalidDate, s)
		}
		end := d.Add(24*time.Hour - time.Nanosecond)
		toDate = &end
	}
	if fromDate != nil && toDate != nil && fromDate.After(*toDate) {
		return nil, nil, ErrorInvalidDateSpan
	}
	return fromDate, toDate, nil
}
