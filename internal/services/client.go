package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/desertthunder/tempo/internal/shared"
	"golang.org/x/time/rate"
)

// Client implements [StatsService] against one configured base address.
//
// There is no retry or backoff: failures propagate directly to the caller.
// Outgoing calls are throttled by a token-bucket limiter as a courtesy to the
// rate-limited backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Client bound to baseURL.
//
// A missing base address is a configuration fault and fails immediately.
// rps <= 0 disables throttling; a nil http client falls back to
// [http.DefaultClient].
func NewClient(baseURL string, httpClient *http.Client, rps float64) (*Client, error) {
	if baseURL == "" {
		return nil, shared.ErrMissingBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	return &Client{baseURL: baseURL, httpClient: httpClient, limiter: limiter}, nil
}

// get performs an authenticated GET against the proxy and decodes the JSON response.
//
// The token travels as the "token" query parameter on every call: the backend
// authenticates by a query-level credential, not an Authorization header.
func (c *Client) get(ctx context.Context, path, token string, query url.Values, result any) error {
	if token == "" {
		return shared.ErrNotAuthenticated
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter interrupted: %w", err)
		}
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: status %d", shared.ErrTokenRejected, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
		}
	}

	return nil
}

// Me retrieves the current user's profile.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var user User
	if err := c.get(ctx, "/me", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// TopItems retrieves the user's top artists and/or tracks.
func (c *Client) TopItems(ctx context.Context, token string, params TopItemsParams) (*TopItems, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var items TopItems
	if err := c.get(ctx, "/me/top", token, params.Values(), &items); err != nil {
		return nil, err
	}
	return &items, nil
}

// RawResponse represents an unparsed proxy response.
type RawResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Raw performs a GET against an arbitrary proxy path and returns the raw response.
//
// Used by the debug api command; non-2xx statuses are returned, not errors.
func (c *Client) Raw(ctx context.Context, path, token string) (*RawResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter interrupted: %w", err)
		}
	}

	fullURL := c.baseURL + path
	if token != "" {
		sep := "?"
		if u, err := url.Parse(fullURL); err == nil && u.RawQuery != "" {
			sep = "&"
		}
		fullURL += sep + "token=" + url.QueryEscape(token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	raw := &RawResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		raw.IsJSON = true
		raw.JSONData = jsonData
	}

	return raw, nil
}

// BaseURL returns the configured proxy address.
func (c *Client) BaseURL() string {
	return c.baseURL
}
