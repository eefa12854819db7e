package seedr

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
)

// ErrAuthorizationPending reports that the user has not yet approved the
// device. The caller may check again later; the client never waits.
var ErrAuthorizationPending = errors.New("authorization pending")

// APIError is an error payload returned by the Seedr API. Its text is
// surfaced to the end user verbatim.
type APIError struct {
	Kind        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Description)
	}
	return e.Kind
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API host, mainly for tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Client talks to the Seedr API. Methods taking a token perform
// authenticated resource calls; the device-flow methods are unauthenticated.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the production API unless overridden.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second, // Bounds every provider call; no internal retries
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DeviceCode is the provider's response to a device-code request.
type DeviceCode struct {
	DeviceCode string `json:"device_code"`
	UserCode   string `json:"user_code"`
	ExpiresIn  int    `json:"expires_in"`
	Interval   int    `json:"interval"`
}

// Token is the credential issued once the user approves the device.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// RequestDeviceCode starts a device-authorization handshake and returns the
// code pair the user needs for the verification page.
func (c *Client) RequestDeviceCode(ctx context.Context) (*DeviceCode, error) {
	query := url.Values{"client_id": {ClientID}}

	var code DeviceCode
	if err := c.get(ctx, deviceCodePath, query, &code); err != nil {
		return nil, err
	}
	if code.DeviceCode == "" || code.UserCode == "" {
		return nil, fmt.Errorf("device code response missing codes")
	}
	return &code, nil
}

// Authorize performs one authorize-check for a device code. It returns
// ErrAuthorizationPending while the user has not approved, the token once
// they have, and the provider's error otherwise. One HTTP call, no waiting.
func (c *Client) Authorize(ctx context.Context, deviceCode string) (*Token, error) {
	query := url.Values{
		"client_id":   {ClientID},
		"device_code": {deviceCode},
	}

	var token Token
	if err := c.get(ctx, authorizePath, query, &token); err != nil {
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("authorize response missing access token")
	}
	return &token, nil
}

// errEnvelope is the error shape shared by every Seedr endpoint.
type errEnvelope struct {
	Err     string `json:"error"`
	ErrDesc string `json:"error_description"`
}

func (e *errEnvelope) asError() error {
	switch e.Err {
	case "":
		return nil
	case "authorization_pending":
		return ErrAuthorizationPending
	default:
		return &APIError{Kind: e.Err, Description: e.ErrDesc}
	}
}

// get performs a single GET round trip and decodes the response into out
// after checking for an error payload.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	return c.do(req, out)
}

// postForm performs a single form-encoded POST round trip.
func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling seedr: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("reading seedr response: %w", err)
	}

	// Seedr reports failures in the payload, not reliably in the status
	// code, so the error envelope is checked first on every response.
	var envelope errEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("seedr returned status %d", resp.StatusCode)
		}
		return fmt.Errorf("decoding seedr response: %w", err)
	}
	if err := envelope.asError(); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding seedr response: %w", err)
	}
	return nil
}
