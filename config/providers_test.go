package config

import "testing"

func TestMailProviderForDomain(t *testing.T) {
	cases := []struct {
		domain string
		host   string
		ok     bool
	}{
		{"gmail.com", "imap.gmail.com", true},
		{"GMAIL.com ", "imap.gmail.com", true},
		{"outlook.com", "imap-mail.outlook.com", true},
		{"hotmail.com", "imap-mail.outlook.com", true},
		{"t-online.de", "secureimap.t-online.de", true},
		{"example.org", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		p, ok := MailProviderForDomain(tc.domain)
		if ok != tc.ok {
			t.Fatalf("MailProviderForDomain(%q) ok=%v, want %v", tc.domain, ok, tc.ok)
		}
		if p.IMAPHost != tc.host {
			t.Fatalf("MailProviderForDomain(%q) host=%q, want %q", tc.domain, p.IMAPHost, tc.host)
		}
		if ok && p.Folder != "INBOX" {
			t.Fatalf("MailProviderForDomain(%q) folder=%q, want INBOX", tc.domain, p.Folder)
		}
	}
}

func TestProviderEnvOverride(t *testing.T) {
	t.Setenv("LEXOFFICE_BASE_URL", "http://127.0.0.1:9999/")
	p, ok := Provider("lexoffice")
	if !ok {
		t.Fatalf("lexoffice provider missing")
	}
	if p.BaseURL != "http://127.0.0.1:9999" {
		t.Fatalf("expected overridden base url without trailing slash, got %q", p.BaseURL)
	}
	if p.Name != ProviderLexoffice || p.Kind != ProviderKindAccounting {
		t.Fatalf("unexpected provider record: %+v", p)
	}
}

func TestProviderUnknown(t *testing.T) {
	if _, ok := Provider("quickbooks"); ok {
		t.Fatalf("expected unknown provider to be rejected")
	}
}

func TestProviderNamesStable(t *testing.T) {
	got := ProviderNames(ProviderKindBank)
	want := []string{ProviderDeutscheBank, ProviderFinAPI, ProviderPlaid}
	if len(got) != len(want) {
		t.Fatalf("ProviderNames(bank) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ProviderNames(bank) = %v, want %v", got, want)
		}
	}
}

func TestIsAdminEmail(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", "ops@agency.test, Boss@Agency.test")
	if !IsAdminEmail("boss@agency.test") {
		t.Fatalf("expected case-insensitive admin match")
	}
	if IsAdminEmail("someone@agency.test") {
		t.Fatalf("unexpected admin match")
	}
	if IsAdminEmail("") {
		t.Fatalf("empty email must not be admin")
	}
}
