package apiclient

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := map[string]string{
		"2024-03-01":                "2024-03-01",
		"2024-03-01 10:11:12.000":   "2024-03-01",
		"2024-03-01T23:30:00+02:00": "2024-03-01",
	}
	for in, want := range cases {
		got := ParseDate(in)
		if got == nil || got.Format("2006-01-02") != want {
			t.Fatalf("ParseDate(%q) = %v, want %s", in, got, want)
		}
	}
	if ParseDate("") != nil || ParseDate("01.03.2024") != nil {
		t.Fatalf("unsupported input should be nil")
	}
}

func TestDateWindow(t *testing.T) {
	from, to := DateWindow(time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC), 30)
	if from != "2024-03-01" || to != "2024-03-31" {
		t.Fatalf("unexpected window %s..%s", from, to)
	}
}
