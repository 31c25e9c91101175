package pairing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/muurk/polfunbox/internal/logging"
	"github.com/muurk/polfunbox/internal/version"
	"github.com/muurk/polfunbox/internal/xtream"
	"go.uber.org/zap"
)

const (
	DefaultConfigURL   = "http://api.polfun.de/api/config.php"
	DefaultDeviceURL   = "http://api.polfun.de/api/device.php"
	DefaultRegisterURL = "http://api.polfun.de/api/register.php"

	// DefaultTimeout matches the request timeout of the TV client
	DefaultTimeout = 15 * time.Second

	// DefaultPollInterval is how often WaitForDevice asks device.php
	DefaultPollInterval = 5 * time.Second

	maxResponseSize = 1 << 20
)

// Endpoints are the pairing URLs announced by config.php.
type Endpoints struct {
	DeviceURL   string
	RegisterURL string
}

// DefaultEndpoints is used when config.php cannot be reached.
func DefaultEndpoints() Endpoints {
	return Endpoints{DeviceURL: DefaultDeviceURL, RegisterURL: DefaultRegisterURL}
}

// RejectedError is a well-formed "no" from the pairing service. Message is
// meant for the user.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return "pairing rejected: " + e.Message
}

// Client talks to the pairing service.
type Client struct {
	ConfigURL  string
	HTTPClient *http.Client
	Endpoints  Endpoints
}

// NewClient returns a client using the default endpoints until
// FetchConfig replaces them.
func NewClient() *Client {
	return &Client{
		ConfigURL:  DefaultConfigURL,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		Endpoints:  DefaultEndpoints(),
	}
}

type configResponse struct {
	DeviceAPIURL      string `json:"device_api_url"`
	ManualRegisterURL string `json:"manual_register_url"`
}

// FetchConfig loads the endpoint URLs from config.php. HTTPS URLs are
// downgraded to HTTP because the TV stack cannot verify the service
// certificate. On failure the defaults stay in place and the error is
// returned for logging only.
func (c *Client) FetchConfig(ctx context.Context) (Endpoints, error) {
	var cfg configResponse
	if err := c.do(ctx, http.MethodGet, c.ConfigURL, nil, &cfg); err != nil {
		c.Endpoints = DefaultEndpoints()
		logging.Warn("Pairing config unavailable, using defaults", zap.Error(err))
		return c.Endpoints, err
	}

	ep := DefaultEndpoints()
	if cfg.DeviceAPIURL != "" {
		ep.DeviceURL = downgrade(cfg.DeviceAPIURL)
	}
	if cfg.ManualRegisterURL != "" {
		ep.RegisterURL = downgrade(cfg.ManualRegisterURL)
	}
	c.Endpoints = ep
	logging.Debug("Pairing config loaded",
		zap.String("device_url", ep.DeviceURL),
		zap.String("register_url", ep.RegisterURL))
	return ep, nil
}

func downgrade(u string) string {
	return strings.Replace(u, "https://", "http://", 1)
}

type deviceResponse struct {
	Success   xtream.FlexString `json:"success"`
	ServerURL string            `json:"server_url"`
	Username  string            `json:"username"`
	Password  string            `json:"password"`
	Message   string            `json:"message"`
}

// CheckDevice asks device.php whether code has been assigned an account.
func (c *Client) CheckDevice(ctx context.Context, code string) (xtream.Credentials, error) {
	var resp deviceResponse
	form := url.Values{"device_code": {code}}
	if err := c.do(ctx, http.MethodPost, c.Endpoints.DeviceURL, form, &resp); err != nil {
		return xtream.Credentials{}, err
	}

	if !truthy(resp.Success) {
		msg := resp.Message
		if msg == "" {
			msg = "Kod nie zarejestrowany"
		}
		return xtream.Credentials{}, &RejectedError{Message: msg}
	}

	creds := xtream.Credentials{ServerURL: resp.ServerURL, Username: resp.Username, Password: resp.Password}
	if !creds.Valid() {
		return xtream.Credentials{}, &RejectedError{Message: "Niepełne dane"}
	}
	return creds, nil
}

// Register submits an account for manual activation against code. It
// returns the confirmation text.
func (c *Client) Register(ctx context.Context, code string, creds xtream.Credentials) (string, error) {
	if !creds.Valid() {
		return "", &RejectedError{Message: "Wypełnij wszystkie pola"}
	}

	var resp deviceResponse
	form := url.Values{
		"device_code": {code},
		"server_url":  {creds.ServerURL},
		"username":    {creds.Username},
		"password":    {creds.Password},
	}
	if err := c.do(ctx, http.MethodPost, c.Endpoints.RegisterURL, form, &resp); err != nil {
		return "", err
	}
	if !truthy(resp.Success) {
		msg := resp.Message
		if msg == "" {
			msg = "Błąd rejestracji"
		}
		return "", &RejectedError{Message: msg}
	}
	return "Rejestracja wysłana! Oczekuj aktywacji.", nil
}

// WaitForDevice polls CheckDevice every interval until an account is
// assigned, a non-rejection error occurs or ctx ends.
func (c *Client) WaitForDevice(ctx context.Context, code string, interval time.Duration) (xtream.Credentials, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		creds, err := c.CheckDevice(ctx, code)
		if err == nil {
			return creds, nil
		}
		var rejected *RejectedError
		if !errors.As(err, &rejected) {
			return xtream.Credentials{}, err
		}
		logging.Debug("Device not registered yet", zap.String("code", code))

		select {
		case <-ctx.Done():
			return xtream.Credentials{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func truthy(f xtream.FlexString) bool {
	s := strings.ToLower(f.String())
	return s == "1" || s == "true"
}

func (c *Client) do(ctx context.Context, method, rawURL string, form url.Values, dest any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return xtream.NewNetworkError("failed to create request", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return xtream.NewNetworkError("request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return xtream.NewHTTPError(resp.StatusCode, fmt.Sprintf("unexpected status code: %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return xtream.NewNetworkError("failed to read response body", err)
	}
	if len(data) > maxResponseSize {
		return xtream.NewParseError(fmt.Sprintf("response exceeds %d bytes", maxResponseSize), nil)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		logging.LogRawBytes("Unparseable pairing response", data)
		return xtream.NewParseError("Invalid JSON", err)
	}
	return nil
}
