// Package remote searches the public skills.sh registry.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// DefaultURL is the skills.sh search endpoint.
	DefaultURL = "https://skills.sh/api/search"

	// DefaultLimit is the number of results requested when none is given.
	DefaultLimit = 10

	// DefaultTimeout bounds a whole request when no HTTP client is supplied.
	DefaultTimeout = 10 * time.Second

	maxBodyBytes = 4 << 20
)

// Skill is a skill published on the remote registry.
type Skill struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Source      string `json:"source"`
	Installs    int    `json:"installs"`
	Description string `json:"description,omitempty"`
}

// StatusError is returned when the registry answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote search failed with status %d (%s)", e.StatusCode, e.Status)
}

// Temporary reports whether retrying the request later may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusBadGateway ||
		e.StatusCode == http.StatusServiceUnavailable ||
		e.StatusCode == http.StatusGatewayTimeout
}

// Client queries the registry. The zero value is not usable; use NewClient.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different search endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.BaseURL = u
		}
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.HTTPClient = hc
		}
	}
}

// WithTimeout sets the overall request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.HTTPClient = &http.Client{Timeout: d}
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.UserAgent = ua
	}
}

// NewClient returns a client for DefaultURL with a DefaultTimeout HTTP client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		BaseURL:    DefaultURL,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		UserAgent:  "skill-search",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Skills []Skill `json:"skills"`
}

// Search returns up to limit registry skills matching query. A limit <= 0
// means DefaultLimit. The request is made once; there is no retry.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Skill, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid remote url %q: %w", c.BaseURL, err)
	}
	params := u.Query()
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode), URL: u.String()}
	}

	var body searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding remote search response: %w", err)
	}
	if body.Skills == nil {
		return []Skill{}, nil
	}
	return body.Skills, nil
}
