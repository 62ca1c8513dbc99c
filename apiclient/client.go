package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/agencyhub/marketing_backend/config"
)

// StatusError is a non-2xx answer from a provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s api error %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Client talks JSON to one provider base URL. Requests share a per-provider rate limit.
type Client struct {
	provider string
	baseURL  string
	http     *http.Client
	headers  http.Header
	limiter  <-chan time.Time
}

type Option func(*Client)

// WithHTTPClient replaces the default client, e.g. with an oauth2 transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

func WithBearer(token string) Option {
	return WithHeader("Authorization", "Bearer "+strings.TrimSpace(token))
}

var (
	limitersMu sync.Mutex
	limiters   = map[string]<-chan time.Time{}
)

func limiterFor(provider string, perMin int) <-chan time.Time {
	if perMin <= 0 {
		return nil
	}
	limitersMu.Lock()
	defer limitersMu.Unlock()
	if l, ok := limiters[provider]; ok {
		return l
	}
	l := time.Tick(time.Minute / time.Duration(perMin))
	limiters[provider] = l
	return l
}

func New(p config.ProviderConfig, opts ...Option) *Client {
	c := &Client{
		provider: p.Name,
		baseURL:  strings.TrimRight(p.BaseURL, "/"),
		http:     &http.Client{Timeout: 30 * time.Second},
		headers:  http.Header{},
		limiter:  limiterFor(p.Name, p.RateLimitPerMin),
	}
	c.headers.Set("Accept", "application/json")
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Provider() string { return c.provider }

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) GetJSON(ctx context.Context, path string, params url.Values, dest any) error {
	return c.Do(ctx, http.MethodGet, path, params, nil, "", dest)
}

func (c *Client) PostJSON(ctx context.Context, path string, body any, dest any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return c.Do(ctx, http.MethodPost, path, nil, bytes.NewReader(data), "application/json", dest)
}

func (c *Client) PostForm(ctx context.Context, path string, form url.Values, dest any) error {
	return c.Do(ctx, http.MethodPost, path, nil, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", dest)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, "", nil)
}

// Do sends one request and decodes a 2xx body into dest when dest is not nil.
func (c *Client) Do(ctx context.Context, method string, path string, params url.Values, body io.Reader, contentType string, dest any) error {
	if c.limiter != nil {
		select {
		case <-c.limiter:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint = endpoint + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Provider: c.provider, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	if dest == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, dest); err != nil {
		return fmt.Errorf("%s decode response: %w", c.provider, err)
	}
	return nil
}

// StatusCode returns the provider status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// Retryable reports transient failures: rate limits, 5xx answers and network errors.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if code := StatusCode(err); code != 0 {
		return code == http.StatusTooManyRequests || code >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
