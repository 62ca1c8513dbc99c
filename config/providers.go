package config

import (
	"os"
	"sort"
	"strings"
)

type ProviderKind string

const (
	ProviderKindAccounting ProviderKind = "accounting"
	ProviderKindBank       ProviderKind = "bank"
	ProviderKindAds        ProviderKind = "ads"
	ProviderKindMail       ProviderKind = "mail"
)

type AuthScheme string

const (
	AuthBearerAPIKey      AuthScheme = "bearer_api_key"
	AuthHeaderAPIKey      AuthScheme = "header_api_key"
	AuthClientCredentials AuthScheme = "oauth_client_credentials"
	AuthClientSecretBody  AuthScheme = "client_secret_body"
	AuthAuthorizationPKCE AuthScheme = "oauth_pkce"
	AuthRefreshToken      AuthScheme = "oauth_refresh_token"
	AuthIMAPLogin         AuthScheme = "imap_login"
)

const (
	ProviderLexoffice    = "lexoffice"
	ProviderSevdesk      = "sevdesk"
	ProviderFinAPI       = "finapi"
	ProviderPlaid        = "plaid"
	ProviderDeutscheBank = "deutsche"
	ProviderGoogleAds    = "googleads"
	ProviderGmail        = "gmail"
	ProviderOutlook      = "outlook"
	ProviderTOnline      = "tonline"
)

// ProviderConfig describes how to reach one external provider.
type ProviderConfig struct {
	Name            string       `json:"name"`
	Kind            ProviderKind `json:"kind"`
	AuthScheme      AuthScheme   `json:"auth_scheme"`
	BaseURL         string       `json:"base_url,omitempty"`
	AuthURL         string       `json:"auth_url,omitempty"`
	TokenURL        string       `json:"token_url,omitempty"`
	IMAPHost        string       `json:"imap_host,omitempty"`
	IMAPPort        int          `json:"imap_port,omitempty"`
	Folder          string       `json:"folder,omitempty"`
	Domains         []string     `json:"domains,omitempty"`
	RateLimitPerMin int          `json:"rate_limit_per_min,omitempty"`
}

var providers = map[string]ProviderConfig{
	ProviderLexoffice: {
		Kind:            ProviderKindAccounting,
		AuthScheme:      AuthBearerAPIKey,
		BaseURL:         "https://api.lexoffice.io",
		RateLimitPerMin: 120,
	},
	ProviderSevdesk: {
		Kind:            ProviderKindAccounting,
		AuthScheme:      AuthHeaderAPIKey,
		BaseURL:         "https://my.sevdesk.de/api/v1",
		RateLimitPerMin: 60,
	},
	ProviderFinAPI: {
		Kind:       ProviderKindBank,
		AuthScheme: AuthClientCredentials,
		BaseURL:    "https://sandbox.finapi.io",
		TokenURL:   "https://sandbox.finapi.io/oauth/token",
	},
	ProviderPlaid: {
		Kind:       ProviderKindBank,
		AuthScheme: AuthClientSecretBody,
		BaseURL:    "https://sandbox.plaid.com",
	},
	ProviderDeutscheBank: {
		Kind:       ProviderKindBank,
		AuthScheme: AuthAuthorizationPKCE,
		BaseURL:    "https://simulator-api.db.com:443/gw/dbapi",
		AuthURL:    "https://simulator-api.db.com/gw/oidc/authorize",
		TokenURL:   "https://simulator-api.db.com/gw/oidc/token",
	},
	ProviderGoogleAds: {
		Kind:       ProviderKindAds,
		AuthScheme: AuthRefreshToken,
		BaseURL:    "https://googleads.googleapis.com/v17",
		TokenURL:   "https://oauth2.googleapis.com/token",
	},
	ProviderGmail: {
		Kind:       ProviderKindMail,
		AuthScheme: AuthIMAPLogin,
		IMAPHost:   "imap.gmail.com",
		IMAPPort:   993,
		Folder:     "INBOX",
		Domains:    []string{"gmail.com", "googlemail.com"},
	},
	ProviderOutlook: {
		Kind:       ProviderKindMail,
		AuthScheme: AuthIMAPLogin,
		IMAPHost:   "imap-mail.outlook.com",
		IMAPPort:   993,
		Folder:     "INBOX",
		Domains:    []string{"outlook.com", "hotmail.com", "live.com"},
	},
	ProviderTOnline: {
		Kind:       ProviderKindMail,
		AuthScheme: AuthIMAPLogin,
		IMAPHost:   "secureimap.t-online.de",
		IMAPPort:   993,
		Folder:     "INBOX",
		Domains:    []string{"t-online.de"},
	},
}

// Provider returns the configuration for name with env overrides applied:
// <NAME>_BASE_URL, <NAME>_AUTH_URL, <NAME>_TOKEN_URL, <NAME>_IMAP_HOST.
func Provider(name string) (ProviderConfig, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	p, ok := providers[name]
	if !ok {
		return ProviderConfig{}, false
	}
	p.Name = name
	prefix := strings.ToUpper(name) + "_"
	if v := strings.TrimSpace(os.Getenv(prefix + "BASE_URL")); v != "" {
		p.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(prefix + "AUTH_URL")); v != "" {
		p.AuthURL = v
	}
	if v := strings.TrimSpace(os.Getenv(prefix + "TOKEN_URL")); v != "" {
		p.TokenURL = v
	}
	if v := strings.TrimSpace(os.Getenv(prefix + "IMAP_HOST")); v != "" {
		p.IMAPHost = v
	}
	p.BaseURL = strings.TrimRight(p.BaseURL, "/")
	p.Domains = append([]string(nil), p.Domains...)
	return p, true
}

// MailProviderForDomain resolves the mail provider serving an address domain.
func MailProviderForDomain(domain string) (ProviderConfig, bool) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return ProviderConfig{}, false
	}
	for _, name := range ProviderNames(ProviderKindMail) {
		p, _ := Provider(name)
		for _, d := range p.Domains {
			if d == domain {
				return p, true
			}
		}
	}
	return ProviderConfig{}, false
}

// ProviderNames lists provider names of a kind in stable order.
func ProviderNames(kind ProviderKind) []string {
	var names []string
	for name, p := range providers {
		if p.Kind == kind {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
