package utils

import "errors"

var (
	ErrorRecordNotFound  = errors.New("record not found")
	ErrorAgencyRequired  = errors.New("agency id is required")
	ErrorUnauthorized    = errors.New("unauthorized")
	ErrorInvalidAmount   = errors.New("invalid amount")
	ErrorInvalidDate     = errors.New("invalid date, want YYYY-MM-DD")
	ErrorInvalidDateSpan = errors.New("from date must not be after to date")
)
