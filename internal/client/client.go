// Package client talks to the product service over HTTP.
package client

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
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/abgdnv/invdash/internal/config"
	"github.com/abgdnv/invdash/internal/dashboard"
	"github.com/abgdnv/invdash/internal/platform/web"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	_ dashboard.Fetcher    = (*Client)(nil)
	_ dashboard.ProductAPI = (*Client)(nil)
)

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 4 << 20

// Client calls the product service. Every call is bounded by the configured
// timeout and goes through a circuit breaker.
type Client struct {
	baseURL *url.URL
	timeout time.Duration
	http    *http.Client
	creds   *Credentials
	breaker *gobreaker.CircuitBreaker[*response]
	logger  *slog.Logger
}

type response struct {
	status int
	body   []byte
}

type Option func(*Client)

// WithCredentials replaces the process-wide credential holder.
func WithCredentials(creds *Credentials) Option {
	return func(c *Client) { c.creds = creds }
}

// WithTransport sets the transport under the tracing, request id and logging layers.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.http.Transport = rt }
}

func New(api config.APIConfig, cb config.CircuitBreakerConfig, logger *slog.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(api.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", api.BaseURL, err)
	}
	logger = logger.With("component", "api_client")
	c := &Client{
		baseURL: base,
		timeout: api.Timeout,
		http:    &http.Client{Transport: http.DefaultTransport},
		creds:   credentials,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.Transport = otelhttp.NewTransport(web.RequestIDTransport(web.LoggingTransport(logger, c.http.Transport)))
	c.breaker = newCircuitBreaker(cb, logger)
	return c, nil
}

func newCircuitBreaker(cfg config.CircuitBreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[*response] {
	st := gobreaker.Settings{
		Name:        "product-api",
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures ||
				(total > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent))
		},
		// Only transport failures and 5xx responses count against the service.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			if errors.Is(err, context.Canceled) {
				return true
			}
			var se *dashboard.ServerError
			if errors.As(err, &se) {
				return se.StatusCode < http.StatusInternalServerError
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return gobreaker.NewCircuitBreaker[*response](st)
}

// List fetches all products as raw records.
func (c *Client) List(ctx context.Context) ([]dashboard.RawRecord, error) {
	var raws []dashboard.RawRecord
	if err := c.do(ctx, "list", http.MethodGet, c.endpoint("products"), nil, &raws); err != nil {
		return nil, err
	}
	if raws == nil {
		raws = []dashboard.RawRecord{}
	}
	c.logger.DebugContext(ctx, "Fetched products", "count", len(raws))
	return raws, nil
}

// Create posts a new product and returns the record the service stored.
func (c *Client) Create(ctx context.Context, in dashboard.ProductInput) (dashboard.RawRecord, error) {
	var rec dashboard.RawRecord
	c.logger.DebugContext(ctx, "Creating product", "payload", in)
	if err := c.do(ctx, "create", http.MethodPost, c.endpoint("products"), in, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update replaces the product with the given id.
func (c *Client) Update(ctx context.Context, id int64, in dashboard.ProductInput) (dashboard.RawRecord, error) {
	var rec dashboard.RawRecord
	c.logger.DebugContext(ctx, "Updating product", "product_id", id, "payload", in)
	if err := c.do(ctx, "update", http.MethodPut, c.endpoint("products", strconv.FormatInt(id, 10)), in, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, "delete", http.MethodDelete, c.endpoint("products", strconv.FormatInt(id, 10)), nil, nil)
}

// Health probes the service with the current credentials. Any 2xx means they are accepted.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, "health", http.MethodGet, c.endpoint("health"), nil, nil)
}

func (c *Client) endpoint(elem ...string) string {
	return c.baseURL.JoinPath(elem...).String()
}

func (c *Client) do(ctx context.Context, op, method, target string, payload, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user, pass, ok := c.creds.Get(); ok {
		req.SetBasicAuth(user, pass)
	}

	resp, err := c.breaker.Execute(func() (*response, error) {
		return c.roundTrip(op, req)
	})
	if err != nil {
		var se *dashboard.ServerError
		if errors.As(err, &se) {
			return se
		}
		return &dashboard.NetworkError{Op: op, Err: err}
	}

	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(resp.body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return &dashboard.NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// roundTrip sends req and reads the whole body. Non-2xx answers become *dashboard.ServerError.
func (c *Client) roundTrip(op string, req *http.Request) (*response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &dashboard.ServerError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}
	return &response{status: resp.StatusCode, body: body}, nil
}

// errorMessage extracts the service's {"error": ..., "validation_errors": {...}} body.
func errorMessage(body []byte) string {
	var er web.ErrorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return ""
	}
	if len(er.ValidationErrors) == 0 {
		return er.Error
	}
	fields := make([]string, 0, len(er.ValidationErrors))
	for f := range er.ValidationErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+" "+er.ValidationErrors[f])
	}
	return er.Error + ": " + strings.Join(parts, ", ")
}
