package jira

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"golang.org/x/time/rate"
)

const (
	DefaultSearchPath    = "/rest/api/3/search/jql"
	LegacySearchPath     = "/rest/api/3/search"
	DefaultEpicNameField = "customfield_10011"
	DefaultTimeout       = 30 * time.Second
	DefaultRateLimit     = 10.0
	DefaultRateBurst     = 5
	defaultUserAgent     = "go-worklog/1.0"
)

// AuthMode is the credential mode a client was built with.
type AuthMode string

const (
	AuthNone   AuthMode = "none"
	AuthBasic  AuthMode = "basic"
	AuthBearer AuthMode = "bearer"
)

// Options configures a Client. When BearerToken is set it takes precedence
// and Email/APIToken are ignored.
type Options struct {
	Email       string
	APIToken    string
	BearerToken string

	// TokenScheme is the Authorization scheme used with BearerToken:
	// "Bearer" (default) or "JWT".
	TokenScheme string

	SearchPath    string
	EpicNameField string

	// Timeout bounds each request. Zero means DefaultTimeout; negative
	// disables the timeout.
	Timeout time.Duration

	RateLimit float64
	RateBurst int

	UserAgent  string
	HTTPClient *http.Client
	Logger     *pterm.Logger
}

type Client struct {
	baseURL       string
	authMode      AuthMode
	authHeader    string
	searchPath    string
	epicNameField string
	userAgent     string
	http          *http.Client
	limiter       *rate.Limiter
	logger        *pterm.Logger
}

func NewClient(baseURL string, opts Options) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, validationError(fmt.Sprintf("invalid base URL %q: %v", baseURL, err))
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, validationError(fmt.Sprintf("invalid base URL %q: must be http(s)://host", baseURL))
	}

	c := &Client{
		baseURL:       baseURL,
		searchPath:    opts.SearchPath,
		epicNameField: opts.EpicNameField,
		userAgent:     opts.UserAgent,
		logger:        opts.Logger,
	}
	if c.searchPath == "" {
		c.searchPath = DefaultSearchPath
	}
	if !strings.HasPrefix(c.searchPath, "/") {
		c.searchPath = "/" + c.searchPath
	}
	if c.epicNameField == "" {
		c.epicNameField = DefaultEpicNameField
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}

	switch {
	case opts.BearerToken != "":
		scheme := opts.TokenScheme
		if scheme == "" {
			scheme = "Bearer"
		}
		c.authMode = AuthBearer
		c.authHeader = scheme + " " + opts.BearerToken
	case opts.Email != "" && opts.APIToken != "":
		c.authMode = AuthBasic
		c.authHeader = "Basic " + base64.StdEncoding.EncodeToString([]byte(opts.Email+":"+opts.APIToken))
	default:
		c.authMode = AuthNone
	}

	timeout := opts.Timeout
	switch {
	case timeout == 0:
		timeout = DefaultTimeout
	case timeout < 0:
		timeout = 0
	}
	if opts.HTTPClient != nil {
		hc := *opts.HTTPClient
		hc.Timeout = timeout
		c.http = &hc
	} else {
		c.http = &http.Client{Timeout: timeout}
	}

	limit, burst := opts.RateLimit, opts.RateBurst
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	if burst <= 0 {
		burst = DefaultRateBurst
	}
	c.limiter = rate.NewLimiter(rate.Limit(limit), burst)

	return c, nil
}

func (c *Client) BaseURL() string        { return c.baseURL }
func (c *Client) AuthMode() AuthMode     { return c.authMode }
func (c *Client) SearchPath() string     { return c.searchPath }
func (c *Client) EpicNameField() string  { return c.epicNameField }
func (c *Client) Timeout() time.Duration { return c.http.Timeout }

// do sends one request and decodes a 2xx JSON body into out when out is
// non-nil. Non-2xx responses become *Error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authHeader != "" {
		req.Header.Set("Authorization", c.authHeader)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return networkError(fmt.Errorf("rate limiter: %w", err))
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.debug("jira request failed", "method", method, "path", path, "error", err)
		return networkError(fmt.Errorf("jira request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(fmt.Errorf("read response: %w", err))
	}
	c.debug("jira request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorFromResponse(resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &Error{
			Code:       CodeAPI,
			Message:    fmt.Sprintf("decode %s %s response: %v", method, path, err),
			HTTPStatus: resp.StatusCode,
			Cause:      err,
		}
	}
	return nil
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Debug(msg, c.logger.Args(args...))
}

// CurrentUser validates the credentials and returns the caller's profile.
func (c *Client) CurrentUser(ctx context.Context) (*UserProfile, error) {
	var me myselfResponse
	if err := c.do(ctx, http.MethodGet, "/rest/api/3/myself", nil, nil, &me); err != nil {
		return nil, err
	}
	return &UserProfile{
		AccountID:    me.AccountID,
		DisplayName:  me.DisplayName,
		EmailAddress: me.EmailAddress,
		TimeZone:     me.TimeZone,
		Active:       me.Active,
	}, nil
}

func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	var pr projectSearchResponse
	if err := c.do(ctx, http.MethodGet, "/rest/api/3/project/search", nil, nil, &pr); err != nil {
		return nil, err
	}
	projects := make([]Project, 0, len(pr.Values))
	for _, p := range pr.Values {
		projects = append(projects, Project{ID: p.ID, Key: p.Key, Name: p.Name})
	}
	return projects, nil
}
