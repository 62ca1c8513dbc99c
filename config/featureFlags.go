package config

import (
	"os"
	"strings"
)

// EnvBoolDefault parses common truthy/falsy spellings; anything else yields def.
func EnvBoolDefault(key string, def bool) bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch val {
	case "true", "1", "yes", "y", "on":
		return true
	case "false", "0", "no", "n", "off":
		return false
	default:
		return def
	}
}

// MailWindowDays is the trailing window for counting recent emails.
//
// Set via env:
// - MAIL_WINDOW_DAYS=7
func MailWindowDays() int {
	if n := intFromEnv("MAIL_WINDOW_DAYS", 7); n > 0 {
		return n
	}
	return 7
}

// BankSyncDays is how far back bank providers are queried on each sync.
//
// Set via env:
// - BANK_SYNC_DAYS=30
func BankSyncDays() int {
	if n := intFromEnv("BANK_SYNC_DAYS", 30); n > 0 {
		return n
	}
	return 30
}

// MailSyncMax caps how many of the newest messages one mailbox sync fetches.
func MailSyncMax() int {
	if n := intFromEnv("MAIL_SYNC_MAX", 200); n > 0 {
		return n
	}
	return 200
}

// AsyncSyncEnabled routes POST /sync through Pub/Sub instead of running inline.
func AsyncSyncEnabled() bool {
	return EnvBoolDefault("ENABLE_ASYNC_SYNC", false)
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS (comma-separated, case-insensitive).
func IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, part := range strings.Split(os.Getenv("ADMIN_EMAILS"), ",") {
		if strings.ToLower(strings.TrimSpace(part)) == email {
			return true
		}
	}
	return false
}
