package apiclient

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate reads the booking dates providers send; unknown formats yield nil.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// DateWindow returns [now-days, now] formatted as YYYY-MM-DD.
func DateWindow(now time.Time, days int) (string, string) {
	return now.AddDate(0, 0, -days).Format("2006-01-02"), now.Format("2006-01-02")
}
