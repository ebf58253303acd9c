package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

var errMissingPayload = errors.New("missing response payload")

// Client wraps JSON calls to the ESP web services.
//
// Read-only lookups go through a retrying transport. Spray submissions are
// sent exactly once on a plain client.
type Client struct {
	baseURL      string
	username     string
	password     string
	submitClient *http.Client
	lookupClient *http.Client
	log          zerolog.Logger

	lookups singleflight.Group
	cache   *topologyCache
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger routes client diagnostics to the given logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.submitClient.Timeout = timeout
			c.lookupClient.Timeout = timeout
		}
	}
}

// WithLookupRetries sets how many times read-only lookups are retried.
func WithLookupRetries(max int) Option {
	return func(c *Client) {
		c.lookupClient = newLookupClient(max, c.lookupClient.Timeout, c)
	}
}

// NewClient creates a new ESP client.
func NewClient(baseURL, username, password string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		username:     username,
		password:     password,
		submitClient: &http.Client{Timeout: 30 * time.Second},
		log:          zerolog.Nop(),
		cache:        &topologyCache{},
	}
	c.lookupClient = newLookupClient(3, 30*time.Second, c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newLookupClient(retryMax int, timeout time.Duration, c *Client) *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = retryMax
	rc.RetryWaitMin = 250 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = retryLogger{client: c}
	std := rc.StandardClient()
	std.Timeout = timeout
	return std
}

// BaseURL returns the ESP root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// retryLogger adapts retryablehttp's leveled logger onto zerolog.
type retryLogger struct {
	client *Client
}

func (l retryLogger) Error(msg string, keysAndValues ...any) {
	l.client.log.Error().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Info(msg string, keysAndValues ...any) {}

func (l retryLogger) Debug(msg string, keysAndValues ...any) {
	l.client.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Warn(msg string, keysAndValues ...any) {
	l.client.log.Warn().Fields(keysAndValues).Msg(msg)
}

// call posts {method: req} to /{service}/{method}.json and decodes the
// payload found under responseKey into out.
func (c *Client) call(ctx context.Context, hc *http.Client, service, method, responseKey string, req, out any) error {
	data, err := json.Marshal(map[string]any{method: req})
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	path := fmt.Sprintf("/%s/%s.json", service, method)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.username != "" {
		httpReq.SetBasicAuth(c.username, c.password)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := hc.Do(httpReq)
	if err != nil {
		c.log.Error().Err(err).Str("path", path).Msg("esp request failed")
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("esp call")

	if espErr := extractESPError(body, responseKey); espErr != nil {
		espErr.Status = resp.StatusCode
		return espErr
	}
	if resp.StatusCode >= 400 {
		return &ESPError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	payload, ok := envelope[responseKey]
	if !ok {
		return fmt.Errorf("decode response: %w: %q", errMissingPayload, responseKey)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
