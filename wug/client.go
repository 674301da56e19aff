// Package wug is a client library for the WhatsUp Gold REST API. It covers
// authentication, device and device-group CRUD, attributes, monitors,
// maintenance windows and the per-metric report endpoints. Responses are
// decoded into small typed structs; anything the server owns the schema for
// (report rows, caller-supplied property maps) passes through untouched.
package wug

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-retry"
)

const (
	apiBasePath = "/api/v1"

	// expirySkew is subtracted from the token lifetime so a token is
	// refreshed before it lapses mid-request.
	expirySkew = 30 * time.Second
)

// Config holds connection settings for a WhatsUp Gold server.
type Config struct {
	// ServerURL is the base URL of the server, e.g. "https://wug.example.com:9644".
	ServerURL string `validate:"required,url"`
	Username  string `validate:"required"`
	Password  string `validate:"required"`

	// Timeout bounds a single HTTP exchange. Zero means 30s.
	Timeout time.Duration

	// MaxRetries bounds retries of transient failures on idempotent
	// requests. Zero disables retrying.
	MaxRetries int `validate:"min=0,max=10"`

	// InsecureSkipVerify disables TLS certificate verification. Self-signed
	// certificates are the norm on freshly installed servers.
	InsecureSkipVerify bool
}

var validate = validator.New()

// Client is a session against one WhatsUp Gold server. It is safe for
// concurrent use; the token triple is guarded by a mutex.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	maxRetries int

	mu    sync.Mutex
	token Token

	// refreshMu serializes token refreshes so concurrent callers cannot
	// spend the same single-use refresh token twice.
	refreshMu sync.Mutex

	// now is stubbed in tests.
	now func() time.Time
}

// New builds a Client from cfg. The connection is not opened until Connect.
func New(cfg Config) (*Client, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.ServerURL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		maxRetries: cfg.MaxRetries,
		now:        time.Now,
	}, nil
}

// Connect obtains an access token with the password grant.
func (c *Client) Connect(ctx context.Context) error {
	return c.requestToken(ctx, url.Values{
		"grant_type": {"password"},
		"username":   {c.username},
		"password":   {c.password},
	})
}

// Refresh exchanges the stored refresh token for a new access token. It is
// called automatically when the access token nears expiry.
func (c *Client) Refresh(ctx context.Context) error {
	c.mu.Lock()
	refresh := c.token.RefreshToken
	c.mu.Unlock()

	if refresh == "" {
		return ErrNotConnected
	}
	err := c.requestToken(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refresh},
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %v", ErrSessionExpired, err)
		}
		return err
	}
	return nil
}

// Token returns a copy of the current token triple.
func (c *Client) Token() Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) requestToken(ctx context.Context, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+apiBasePath+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var te tokenError
		if json.Unmarshal(body, &te) == nil && te.Err != "" {
			return &APIError{StatusCode: resp.StatusCode, Code: te.Err, Message: te.Description}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var tr struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tr); err != nil {
		return fmt.Errorf("decode token response: %w", err)
	}

	c.mu.Lock()
	c.token = Token{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    tr.TokenType,
		ExpiresAt:    c.now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}
	c.mu.Unlock()
	return nil
}

// ensureToken enforces the session invariant: a token must be present and
// unexpired before any resource call goes out.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	tok := c.token
	c.mu.Unlock()

	if tok.AccessToken == "" {
		return "", ErrNotConnected
	}
	if !c.expiring(tok) {
		return tok.AccessToken, nil
	}

	// One refresh at a time; losers of the race reuse the winner's token.
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	c.mu.Lock()
	tok = c.token
	c.mu.Unlock()
	if c.expiring(tok) {
		if err := c.Refresh(ctx); err != nil {
			return "", err
		}
		c.mu.Lock()
		tok = c.token
		c.mu.Unlock()
	}
	return tok.AccessToken, nil
}

func (c *Client) expiring(tok Token) bool {
	return c.now().After(tok.ExpiresAt.Add(-expirySkew))
}

// Do issues one authenticated API request. path is relative to /api/v1.
// body, when non-nil, is JSON-encoded; the "data" field of the response
// envelope is decoded into out when out is non-nil. The returned Paging is
// non-nil only when the response carried a paging block.
//
// Idempotent methods (everything except POST and PATCH) are retried on
// transport errors and 429/502/503/504 responses, up to Config.MaxRetries.
// The token is re-checked before every attempt, so a token that lapses
// during backoff is refreshed rather than sent stale.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) (*Paging, error) {
	return c.do(ctx, method, path, query, body, out, idempotent(method))
}

// do is Do with an explicit retry decision. Resource methods whose PUT
// creates server state (attribute creation) pass retryable=false: replaying
// a create after a lost response would commit it twice.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, retryable bool) (*Paging, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	u := c.baseURL + apiBasePath + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	attempt := func(ctx context.Context) (*Paging, error) {
		accessToken, err := c.ensureToken(ctx)
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+accessToken)
		return c.roundTrip(req, out)
	}

	if c.maxRetries == 0 || !retryable {
		return attempt(ctx)
	}

	var paging *Paging
	backoff := retry.WithMaxRetries(uint64(c.maxRetries),
		retry.WithJitter(100*time.Millisecond, retry.NewExponential(250*time.Millisecond)))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		p, err := attempt(ctx)
		if err != nil {
			var apiErr *APIError
			switch {
			case errors.As(err, &apiErr):
				if apiErr.Transient() {
					return retry.RetryableError(err)
				}
				return err
			case errors.Is(err, ErrNotConnected), errors.Is(err, ErrSessionExpired):
				return err
			default:
				// Transport-level failure.
				return retry.RetryableError(err)
			}
		}
		paging = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paging, nil
}

func (c *Client) roundTrip(req *http.Request, out any) (*Paging, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env errorEnvelope
		if json.Unmarshal(body, &env) == nil && env.Error != nil {
			env.Error.StatusCode = resp.StatusCode
			return nil, env.Error
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	if out == nil || len(body) == 0 {
		return nil, nil
	}

	var env struct {
		Paging *Paging         `json:"paging"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode response envelope: %w", err)
	}
	if env.Data == nil {
		return env.Paging, nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return nil, fmt.Errorf("decode response data: %w", err)
	}
	return env.Paging, nil
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}
