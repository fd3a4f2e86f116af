// Package zoho talks to the Zoho OAuth, WorkDrive and Projects REST APIs.
package zoho

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/vietddude/nexus/internal/resilience/classify"
)

const (
	UserAgent = "NexusAgent/0.1"

	DefaultAccountsBase = "https://accounts.zoho.com"
	DefaultAPIDomain    = "https://www.zohoapis.com"
)

// ErrAuth is returned when the token endpoint rejects a request or no token is cached.
var ErrAuth = errors.New("zoho auth failed")

// Config holds the OAuth client credentials.
type Config struct {
	ClientID          string        `yaml:"client_id"`
	ClientSecret      string        `yaml:"client_secret"`
	RefreshToken      string        `yaml:"refresh_token"`
	RedirectURI       string        `yaml:"redirect_uri"`
	Scopes            string        `yaml:"scopes"`
	AccountsBase      string        `yaml:"accounts_base"`
	APIDomainFallback string        `yaml:"api_domain_fallback"`
	Timeout           time.Duration `yaml:"timeout"`
}

// Tokens is a short-lived access token as returned by the token endpoint.
type Tokens struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int
	APIDomain   string
}

// Client caches tokens and performs authenticated requests.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger

	mu     sync.RWMutex
	tokens *Tokens
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the client logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a Zoho client. Empty bases fall back to the public Zoho domains.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.AccountsBase == "" {
		cfg.AccountsBase = DefaultAccountsBase
	}
	if cfg.APIDomainFallback == "" {
		cfg.APIDomainFallback = DefaultAPIDomain
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	cfg.AccountsBase = strings.TrimRight(cfg.AccountsBase, "/")
	cfg.APIDomainFallback = strings.TrimRight(cfg.APIDomainFallback, "/")

	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    *int   `json:"expires_in"`
	APIDomain    string `json:"api_domain"`
	Error        string `json:"error"`
}

func (r tokenResponse) tokens(fallback string) Tokens {
	t := Tokens{
		AccessToken: r.AccessToken,
		TokenType:   r.TokenType,
		ExpiresIn:   3600,
		APIDomain:   strings.TrimRight(r.APIDomain, "/"),
	}
	if t.TokenType == "" {
		t.TokenType = "Bearer"
	}
	if r.ExpiresIn != nil {
		t.ExpiresIn = *r.ExpiresIn
	}
	if t.APIDomain == "" {
		t.APIDomain = fallback
	}
	return t
}

// RefreshAccessToken trades the configured refresh token for a new access token
// and caches it for subsequent calls.
func (c *Client) RefreshAccessToken(ctx context.Context) (Tokens, error) {
	const op = "refresh token"

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {c.cfg.RefreshToken},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
	}

	c.log.Info("Refreshing Zoho access token", "url", c.tokenURL())
	resp, err := c.postToken(ctx, op, form)
	if err != nil {
		return Tokens{}, err
	}

	tokens := resp.tokens(c.cfg.APIDomainFallback)
	c.mu.Lock()
	c.tokens = &tokens
	c.mu.Unlock()

	c.log.Info("Access token refreshed", "expires_in", tokens.ExpiresIn)
	return tokens, nil
}

func (c *Client) tokenURL() string {
	return c.cfg.AccountsBase + "/oauth/v2/token"
}

// postToken posts form to the token endpoint. Failures wrap ErrAuth.
func (c *Client) postToken(ctx context.Context, op string, form url.Values) (tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return tokenResponse{}, classify.Permanent(op, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return tokenResponse{}, classify.Transient(op, fmt.Errorf("%w: %w", ErrAuth, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return tokenResponse{}, classify.Transient(op, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
		return tokenResponse{}, tagStatus(op, resp.StatusCode, fmt.Errorf("%w: %w", ErrAuth, httpErr))
	}

	var payload tokenResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return tokenResponse{}, classify.Operational(op, fmt.Errorf("parse response: %w", err))
	}
	// Zoho reports bad grants with a 200 and an error field.
	if payload.Error != "" {
		return tokenResponse{}, classify.Permanent(op, fmt.Errorf("%w: %s", ErrAuth, payload.Error))
	}
	return payload, nil
}

// AuthHeader builds the headers for API calls from the cached token.
func (c *Client) AuthHeader() (http.Header, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return nil, classify.Permanent("auth header",
			fmt.Errorf("%w: no tokens present, refresh the access token first", ErrAuth))
	}
	h := make(http.Header)
	h.Set("Authorization", c.tokens.TokenType+" "+c.tokens.AccessToken)
	h.Set("User-Agent", UserAgent)
	return h, nil
}

// APIBase returns the api domain of the cached token, or the configured fallback.
func (c *Client) APIBase() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return c.cfg.APIDomainFallback
	}
	return c.tokens.APIDomain
}

// do performs an authenticated JSON request against the API base and decodes
// the response into out.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	header, err := c.AuthHeader()
	if err != nil {
		return err
	}

	endpoint := c.APIBase() + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return classify.Permanent(op, fmt.Errorf("marshal request: %w", err))
		}
		body = strings.NewReader(string(data))
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return classify.Permanent(op, fmt.Errorf("create request: %w", err))
	}
	req.Header = header
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classify.Transient(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return classify.Transient(op, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return tagStatus(op, resp.StatusCode, &HTTPError{StatusCode: resp.StatusCode, Body: string(data)})
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return classify.Operational(op, fmt.Errorf("parse response: %w", err))
	}
	return nil
}
