package xtream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/muurk/polfunbox/internal/logging"
	"github.com/muurk/polfunbox/internal/version"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the per-request HTTP timeout
	DefaultTimeout = 20 * time.Second

	// DefaultMaxRetries is the number of retries after the first attempt
	DefaultMaxRetries = 2

	// DefaultRetryDelay is the delay before the first retry
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultMaxRetryDelay caps exponential backoff
	DefaultMaxRetryDelay = 5 * time.Second

	// DefaultRateLimit is the sustained request rate towards one panel
	DefaultRateLimit = rate.Limit(5)

	// DefaultBurst lets the parallel home-screen fetches through at once
	DefaultBurst = 5

	// DefaultMaxResponseSize bounds one panel response. Full VOD lists of
	// large panels run to tens of megabytes.
	DefaultMaxResponseSize = 64 << 20
)

// Credentials identify an account on a panel.
type Credentials struct {
	ServerURL string
	Username  string
	Password  string
}

// Valid reports whether all three fields are set.
func (c Credentials) Valid() bool {
	return c.ServerURL != "" && c.Username != "" && c.Password != ""
}

// Client talks to an Xtream-Codes player_api.php endpoint.
type Client struct {
	// BaseURL is the panel root, without a trailing slash
	BaseURL string

	Username string
	Password string

	HTTPClient *http.Client

	// MaxRetries is the number of retries for retryable errors
	MaxRetries int

	// RetryDelay is the initial delay between attempts, doubled each time
	RetryDelay time.Duration

	// MaxRetryDelay caps the backoff
	MaxRetryDelay time.Duration

	// MaxResponseSize is the largest response body accepted, in bytes
	MaxResponseSize int64

	limiter *rate.Limiter
	now     func() time.Time
}

// NewClient validates creds and returns a client with default settings.
func NewClient(creds Credentials) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(creds.ServerURL), "/")
	if base == "" || creds.Username == "" || creds.Password == "" {
		return nil, NewValidationError("Wypełnij wszystkie pola")
	}
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, NewValidationError("Nieprawidłowy adres serwera")
	}

	return &Client{
		BaseURL:         base,
		Username:        creds.Username,
		Password:        creds.Password,
		HTTPClient:      &http.Client{Timeout: DefaultTimeout},
		MaxRetries:      DefaultMaxRetries,
		RetryDelay:      DefaultRetryDelay,
		MaxRetryDelay:   DefaultMaxRetryDelay,
		MaxResponseSize: DefaultMaxResponseSize,
		limiter:         rate.NewLimiter(DefaultRateLimit, DefaultBurst),
		now:             time.Now,
	}, nil
}

// Credentials returns the account the client was built for.
func (c *Client) Credentials() Credentials {
	return Credentials{ServerURL: c.BaseURL, Username: c.Username, Password: c.Password}
}

// SetRateLimit replaces the request limiter. A zero limit disables it.
func (c *Client) SetRateLimit(limit rate.Limit, burst int) {
	if limit == 0 {
		c.limiter = nil
		return
	}
	c.limiter = rate.NewLimiter(limit, burst)
}

// SetRetry configures retry behaviour.
func (c *Client) SetRetry(maxRetries int, retryDelay time.Duration) {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
}

// Authenticate fetches the account and checks it may be used: auth must be
// set, the status must be Active and exp_date must not be in the past.
func (c *Client) Authenticate(ctx context.Context) (*AccountInfo, error) {
	var info AccountInfo
	if err := c.call(ctx, "", nil, &info); err != nil {
		return nil, err
	}
	if err := c.checkAccount(info.UserInfo); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) checkAccount(ui *UserInfo) error {
	if ui == nil {
		return NewAuthError("Nieprawidłowe dane logowania")
	}
	if a := strings.ToLower(ui.Auth.String()); a != "1" && a != "true" {
		return NewAuthError("Nieprawidłowe dane logowania")
	}
	if ui.Status != "" && !strings.EqualFold(ui.Status, "active") {
		if strings.EqualFold(ui.Status, "expired") {
			return NewExpiredError("Konto wygasło")
		}
		return NewAuthError(fmt.Sprintf("Konto nieaktywne (%s)", ui.Status))
	}
	if exp := ui.ExpDate.Int(); exp > 0 && exp < c.now().Unix() {
		return NewExpiredError("Konto wygasło")
	}
	return nil
}

// LiveCategories lists live categories.
func (c *Client) LiveCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	err := c.call(ctx, "get_live_categories", nil, &out)
	return out, err
}

// LiveStreams lists live channels, all of them when categoryID is empty.
func (c *Client) LiveStreams(ctx context.Context, categoryID string) ([]LiveStream, error) {
	var out []LiveStream
	err := c.call(ctx, "get_live_streams", categoryParam(categoryID), &out)
	return out, err
}

// VodCategories lists movie categories.
func (c *Client) VodCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	err := c.call(ctx, "get_vod_categories", nil, &out)
	return out, err
}

// VodStreams lists movies, all of them when categoryID is empty.
func (c *Client) VodStreams(ctx context.Context, categoryID string) ([]VodStream, error) {
	var out []VodStream
	err := c.call(ctx, "get_vod_streams", categoryParam(categoryID), &out)
	return out, err
}

// VodInfo fetches movie details.
func (c *Client) VodInfo(ctx context.Context, vodID string) (*VodInfo, error) {
	var out VodInfo
	if err := c.call(ctx, "get_vod_info", url.Values{"vod_id": {vodID}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SeriesCategories lists series categories.
func (c *Client) SeriesCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	err := c.call(ctx, "get_series_categories", nil, &out)
	return out, err
}

// Series lists series, all of them when categoryID is empty.
func (c *Client) Series(ctx context.Context, categoryID string) ([]Series, error) {
	var out []Series
	err := c.call(ctx, "get_series", categoryParam(categoryID), &out)
	return out, err
}

// SeriesInfo fetches a series with its seasons and episodes.
func (c *Client) SeriesInfo(ctx context.Context, seriesID string) (*SeriesInfo, error) {
	var out SeriesInfo
	if err := c.call(ctx, "get_series_info", url.Values{"series_id": {seriesID}}, &out); err != nil {
		return nil, err
	}
	out.SeriesID = FlexString(seriesID)
	return &out, nil
}

// ShortEPG fetches the upcoming schedule of a live channel.
func (c *Client) ShortEPG(ctx context.Context, streamID string) ([]EPGListing, error) {
	var out shortEPG
	if err := c.call(ctx, "get_short_epg", url.Values{"stream_id": {streamID}}, &out); err != nil {
		return nil, err
	}
	return out.Listings, nil
}

func categoryParam(categoryID string) url.Values {
	if categoryID == "" {
		return nil
	}
	return url.Values{"category_id": {categoryID}}
}

// call performs one player_api.php action with retries and exponential
// backoff. Only retryable errors are retried.
func (c *Client) call(ctx context.Context, action string, params url.Values, dest any) error {
	var lastErr error
	delay := c.RetryDelay

	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return withAction(NewNetworkError("request cancelled", ctx.Err()), action)
			case <-time.After(delay):
			}
			delay *= 2
			if delay > c.MaxRetryDelay {
				delay = c.MaxRetryDelay
			}
		}

		err := c.attempt(ctx, action, params, dest, attempt)
		if err == nil {
			return nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return err
		}
		logging.Debug("Retrying panel request",
			zap.String("action", action),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}

	return lastErr
}

func (c *Client) attempt(ctx context.Context, action string, params url.Values, dest any, attempt int) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return withAction(NewNetworkError("request cancelled", err), action)
		}
	}

	apiURL := c.apiURL(action, params)
	logging.LogAPICall(action, apiURL, attempt)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return withAction(NewNetworkError("failed to create request", err), action)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return withAction(NewNetworkError("request failed", err), action)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return withAction(NewAuthError("Nieprawidłowe dane logowania"), action)
	case resp.StatusCode != http.StatusOK:
		return withAction(NewHTTPError(resp.StatusCode, fmt.Sprintf("unexpected status code: %d", resp.StatusCode)), action)
	}

	limit := c.MaxResponseSize
	if limit <= 0 {
		limit = DefaultMaxResponseSize
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return withAction(NewNetworkError("failed to read response body", err), action)
	}
	if int64(len(body)) > limit {
		return withAction(NewParseError(fmt.Sprintf("response exceeds %d bytes", limit), nil), action)
	}

	// Empty lists come back as an empty body or null on some panels.
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil
	}

	if err := json.Unmarshal(body, dest); err != nil {
		logging.LogRawBytes("Unparseable panel response", truncate(body, 256))
		return withAction(NewParseError("failed to parse JSON response", err), action)
	}
	return nil
}

func (c *Client) apiURL(action string, params url.Values) string {
	q := url.Values{}
	q.Set("username", c.Username)
	q.Set("password", c.Password)
	if action != "" {
		q.Set("action", action)
	}
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	return c.BaseURL + "/player_api.php?" + q.Encode()
}

func withAction(e *APIError, action string) *APIError {
	e.Action = action
	return e
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
