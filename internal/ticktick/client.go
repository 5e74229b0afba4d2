package ticktick

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Default endpoints for the TickTick Open API.
const (
	DefaultBaseURL  = "https://api.ticktick.com/open/v1"
	DefaultTokenURL = "https://ticktick.com/oauth/token"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultRetryInterval  = 1 * time.Second

	// maxAttempts bounds the transport-level retry budget for
	// retryable status codes, matching the API's guidance.
	maxAttempts = 3

	// Connection pool sizing for the shared transport.
	maxIdleConns        = 20
	maxIdleConnsPerHost = 20
)

// retryableStatus lists the status codes the transport retries with
// exponential backoff. Other client errors are terminal; 401 goes
// through the credential refresh path instead.
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Credentials holds the OAuth2 material for one user session.
// AccessToken and RefreshToken are replaced in place after a refresh;
// ClientID and ClientSecret stay fixed for the process lifetime.
type Credentials struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
}

// Client is a session-scoped TickTick API client. Each credential
// context owns its own Client; instances are never shared across
// sessions because the refresh path mutates the credentials.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	tokenURL      string
	retryInterval time.Duration
	logger        *slog.Logger

	mu    sync.Mutex // guards creds across the refresh path
	creds Credentials
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithTokenURL overrides the OAuth token endpoint.
func WithTokenURL(u string) Option {
	return func(c *Client) { c.tokenURL = u }
}

// WithRetryInterval overrides the initial backoff interval. Tests use
// this to avoid real delays.
func WithRetryInterval(d time.Duration) Option {
	return func(c *Client) { c.retryInterval = d }
}

// WithLogger sets the structured logger for transport events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a client for the given credentials. An access
// token is required; the refresh token and client secret are only
// needed once the access token expires.
func NewClient(creds Credentials, opts ...Option) (*Client, error) {
	if creds.AccessToken == "" {
		return nil, newError(KindAuthentication, "access token is not set; authenticate with TickTick first")
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: defaultRequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        maxIdleConns,
				MaxIdleConnsPerHost: maxIdleConnsPerHost,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:       DefaultBaseURL,
		tokenURL:      DefaultTokenURL,
		retryInterval: defaultRetryInterval,
		logger:        slog.Default(),
		creds:         creds,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Credentials returns a snapshot of the current credentials.
func (c *Client) Credentials() Credentials {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creds
}

// Do executes one API request and returns the raw response payload.
// Expected failures never escape as anything but *Error values:
// retryable server responses are retried with exponential backoff, a
// rejected access token triggers exactly one refresh-and-retry cycle,
// and terminal statuses map onto the error taxonomy. A 204 or empty
// body is normalized to an empty payload with a nil error.
func (c *Client) Do(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, newError(KindUnknown, "encoding request body: %v", err)
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInterval
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.Reset()

	// The refresh budget is one per logical call, not per attempt.
	refreshed := false

	for attempt := 1; ; attempt++ {
		raw, apiErr := c.attempt(ctx, method, endpoint, payload, &refreshed)
		if apiErr == nil {
			return raw, nil
		}

		if !retryableStatus[apiErr.StatusCode] || attempt >= maxAttempts {
			return nil, apiErr
		}

		delay := bo.NextBackOff()
		if apiErr.Kind == KindRateLimit && apiErr.RetryAfter > 0 {
			// The server told us how long to wait; trust it over
			// our own schedule.
			delay = time.Duration(apiErr.RetryAfter) * time.Second
		}
		c.logger.Debug("retrying request",
			"method", method, "endpoint", endpoint,
			"status", apiErr.StatusCode, "attempt", attempt, "delay", delay)

		retriesTotal.WithLabelValues(strconv.Itoa(apiErr.StatusCode)).Inc()

		select {
		case <-ctx.Done():
			return nil, ctxError(ctx.Err())
		case <-time.After(delay):
		}
	}
}

// attempt performs a single request cycle, including the one-shot
// credential refresh on 401. All failures come back as *Error.
func (c *Client) attempt(ctx context.Context, method, endpoint string, payload []byte, refreshed *bool) (json.RawMessage, *Error) {
	start := time.Now()
	status, raw, header, err := c.roundTrip(ctx, method, endpoint, payload)
	if err != nil {
		requestsTotal.WithLabelValues(method, "error").Inc()
		return nil, err
	}

	if status == http.StatusUnauthorized && !*refreshed {
		*refreshed = true
		// The rejected attempt counts whether or not the refresh works.
		requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
		if refreshErr := c.refreshAccessToken(ctx); refreshErr != nil {
			c.logger.Warn("access token refresh failed", "error", refreshErr.Message)
			// Surface the original 401, not the refresh failure.
			return nil, statusError(status, header, raw)
		}
		c.logger.Info("access token refreshed, retrying request", "endpoint", endpoint)
		status, raw, header, err = c.roundTrip(ctx, method, endpoint, payload)
		if err != nil {
			requestsTotal.WithLabelValues(method, "error").Inc()
			return nil, err
		}
	}

	requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())

	if status >= 200 && status < 300 {
		if status == http.StatusNoContent || len(raw) == 0 {
			return nil, nil
		}
		return raw, nil
	}
	return nil, statusError(status, header, raw)
}

// roundTrip sends one HTTP request. Connection-level failures map onto
// the network and timeout kinds.
func (c *Client) roundTrip(ctx context.Context, method, endpoint string, payload []byte) (int, []byte, http.Header, *Error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bodyReader)
	if err != nil {
		return 0, nil, nil, newError(KindUnknown, "building request: %v", err)
	}

	c.mu.Lock()
	token := c.creds.AccessToken
	c.mu.Unlock()

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, nil, transportError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, transportError(ctx, err)
	}
	return resp.StatusCode, raw, resp.Header, nil
}

// refreshAccessToken exchanges the refresh token for a new access
// token using HTTP Basic auth with the client credentials. On success
// the in-memory credentials are replaced; nothing is persisted.
func (c *Client) refreshAccessToken(ctx context.Context) *Error {
	c.mu.Lock()
	creds := c.creds
	c.mu.Unlock()

	if creds.RefreshToken == "" {
		refreshTotal.WithLabelValues("failure").Inc()
		return newError(KindAuthentication, "no refresh token available")
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		refreshTotal.WithLabelValues("failure").Inc()
		return newError(KindAuthentication, "client ID or client secret missing")
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {creds.RefreshToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		refreshTotal.WithLabelValues("failure").Inc()
		return newError(KindUnknown, "building token request: %v", err)
	}
	req.SetBasicAuth(creds.ClientID, creds.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		refreshTotal.WithLabelValues("failure").Inc()
		return transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		refreshTotal.WithLabelValues("failure").Inc()
		return newError(KindAuthentication, "token endpoint returned status %d", resp.StatusCode)
	}

	var tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		refreshTotal.WithLabelValues("failure").Inc()
		return newError(KindAuthentication, "decoding token response: %v", err)
	}
	if tokens.AccessToken == "" {
		refreshTotal.WithLabelValues("failure").Inc()
		return newError(KindAuthentication, "token response contained no access token")
	}

	c.mu.Lock()
	c.creds.AccessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		c.creds.RefreshToken = tokens.RefreshToken
	}
	c.mu.Unlock()

	refreshTotal.WithLabelValues("success").Inc()
	return nil
}

// statusError maps a terminal HTTP status onto the error taxonomy.
func statusError(status int, header http.Header, body []byte) *Error {
	e := &Error{
		Kind:       kindForStatus(status),
		StatusCode: status,
	}
	switch e.Kind {
	case KindAuthentication:
		e.Message = "authentication failed: token expired or invalid"
	case KindPermission:
		e.Message = "permission denied: no access to this resource"
	case KindNotFound:
		e.Message = "resource not found: it may have been deleted"
	case KindRateLimit:
		e.Message = "rate limit exceeded"
		if header != nil {
			if after, err := strconv.Atoi(header.Get("Retry-After")); err == nil && after > 0 {
				e.RetryAfter = after
			}
		}
	case KindServer:
		e.Message = fmt.Sprintf("server error (%d), try again later", status)
	default:
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(status)
		}
		e.Message = msg
	}
	return e
}

// transportError classifies a connection-level failure.
func transportError(ctx context.Context, err error) *Error {
	if ctx.Err() != nil {
		return ctxError(ctx.Err())
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newError(KindTimeout, "request timed out: %v", err)
	}
	return newError(KindNetwork, "network connection failed: %v", err)
}

// ctxError maps a context error onto the taxonomy.
func ctxError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(KindTimeout, "request timed out: %v", err)
	}
	return newError(KindNetwork, "request canceled: %v", err)
}

// unmarshalPayload decodes a response payload into out. The normalized
// empty payload leaves out at its zero value.
func unmarshalPayload(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return newError(KindUnknown, "unexpected response format: %v", err)
	}
	return nil
}
