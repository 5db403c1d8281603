package legiscan

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

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL     = "https://api.legiscan.com/"
	defaultTimeout     = 30 * time.Second
	defaultConcurrency = 4
	initialBackoff     = 2 * time.Second
)

// Options configures a Client. Zero values fall back to the defaults above.
type Options struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxRetries  uint64
	RateLimit   float64 // requests per second, 0 means unlimited
	Concurrency int
	HTTPClient  *http.Client
	Logger      *zerolog.Logger
}

// Client handles communication with the LegiScan API
type Client struct {
	baseURL     string
	apiKey      string
	client      *http.Client
	limiter     *rate.Limiter
	maxRetries  uint64
	concurrency int
	logger      zerolog.Logger
}

// NewClient creates a new LegiScan API client
func NewClient(opts Options) *Client {
	c := &Client{
		baseURL:     opts.BaseURL,
		apiKey:      opts.APIKey,
		client:      opts.HTTPClient,
		maxRetries:  opts.MaxRetries,
		concurrency: opts.Concurrency,
		logger:      log.Logger,
	}

	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.client = &http.Client{Timeout: timeout}
	}
	if c.concurrency < 1 {
		c.concurrency = defaultConcurrency
	}
	if opts.Logger != nil {
		c.logger = *opts.Logger
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	c.limiter = rate.NewLimiter(limit, 1)

	return c
}

// TransportError covers network failures, non-2xx responses, bodies that are
// not JSON, and API-level ERROR envelopes.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error

	retryable bool
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("legiscan %s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("legiscan %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// statusEnvelope is the part of every response we inspect before the payload
type statusEnvelope struct {
	Status string `json:"status"`
	Alert  struct {
		Message string `json:"message"`
	} `json:"alert"`
}

// Request issues one signed GET for op with the given parameters and returns the raw JSON body
func (c *Client) Request(ctx context.Context, op string, params map[string]string) (json.RawMessage, error) {
	reqURL, err := c.buildURL(op, params)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	var body []byte
	attempt := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(&TransportError{Op: op, Err: err})
		}

		b, err := c.fetch(ctx, op, reqURL)
		if err != nil {
			if err.retryable {
				return err
			}
			return backoff.Permanent(err)
		}
		body = b
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = initialBackoff
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, c.maxRetries), ctx)

	notify := func(err error, wait time.Duration) {
		c.logger.Warn().Err(err).Str("op", op).Dur("wait", wait).Msg("retrying LegiScan request")
	}

	if err := backoff.RetryNotify(attempt, policy, notify); err != nil {
		requestsTotal.WithLabelValues(op, "error").Inc()
		var terr *TransportError
		if !errors.As(err, &terr) {
			err = &TransportError{Op: op, Err: err}
		}
		return nil, err
	}

	requestsTotal.WithLabelValues(op, "ok").Inc()
	return body, nil
}

func (c *Client) buildURL(op string, params map[string]string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	q := u.Query()
	q.Set("key", c.apiKey)
	q.Set("op", op)
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// fetch performs a single HTTP GET and validates the response envelope
func (c *Client) fetch(ctx context.Context, op, reqURL string) ([]byte, *TransportError) {
	c.logger.Debug().Str("op", op).Str("url", redactKey(reqURL)).Msg("LegiScan request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err, retryable: ctx.Err() == nil}
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("failed to read body: %w", err), retryable: true}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status code"),
			retryable:  resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
		}
	}

	var env statusEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("invalid JSON response: %w", err)}
	}
	if strings.EqualFold(env.Status, "ERROR") {
		msg := env.Alert.Message
		if msg == "" {
			msg = "unknown error"
		}
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("API error: %s", msg)}
	}

	return body, nil
}

// redactKey hides the API key before a URL reaches the logs
func redactKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
	}
	u.RawQuery = q.Encode()
	return u.String()
}
