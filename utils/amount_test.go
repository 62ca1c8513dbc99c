package utils

import (
	"errors"
	"testing"
)

func TestParseAmount_AcceptsFormattedStrings(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"20", "20"},
		{"20.5", "20.5"},
		{"20,50", "20.5"},
		{"1.234,50", "1234.5"},
		{"1,234.50", "1234.5"},
		{"€ 1.234,50", "1234.5"},
		{"EUR -20", "-20"},
		{"1.234.567", "1234567"},
		{"1,234,567", "1234567"},
		{" +30 ", "30"},
	}
	for _, tc := range cases {
		d, err := ParseAmount(tc.in)
		if err != nil {
			t.Fatalf("ParseAmount(%q) error: %v", tc.in, err)
		}
		if d.String() != tc.expected {
			t.Fatalf("ParseAmount(%q) expected %s, got %s", tc.in, tc.expected, d.String())
		}
	}
}

func TestParseAmount_RejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "EUR", "abc", "12a", "-"} {
		if _, err := ParseAmount(in); err == nil {
			t.Fatalf("ParseAmount(%q) expected error", in)
		}
	}
}

func TestEmailDomain(t *testing.T) {
	cases := map[string]string{
		"a@gmail.com":     "gmail.com",
		"x.y@T-Online.de": "t-online.de",
		"no-at-sign":      "",
		"trailing@":       "",
	}
	for in, want := range cases {
		if got := EmailDomain(in); got != want {
			t.Fatalf("EmailDomain(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseDateRange(t *testing.T) {
	from, to, err := ParseDateRange("2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("ParseDateRange: %v", err)
	}
	if from == nil || to == nil {
		t.Fatalf("expected both bounds")
	}
	if to.Day() != 31 || to.Hour() != 23 {
		t.Fatalf("upper bound should cover the whole day, got %s", to)
	}
	if _, _, err := ParseDateRange("2024-02-01", "2024-01-01"); err != ErrorInvalidDateSpan {
		t.Fatalf("expected ErrorInvalidDateSpan, got %v", err)
	}
	if _, _, err := ParseDateRange("01.02.2024", ""); !errors.Is(err, ErrorInvalidDate) {
		t.Fatalf("expected ErrorInvalidDate, got %v", err)
	}
	if f, tt, err := ParseDateRange("", ""); err != nil || f != nil || tt != nil {
		t.Fatalf("empty bounds should be nil, got %v %v %v", f, tt, err)
	}
}
