// Package httpx provides the outbound HTTP client exposed by the connectivity facades.
package httpx

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/marcodd23/go-todo-service/pkg/configmgr"
	"github.com/marcodd23/go-todo-service/pkg/errorx"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/propagation"
)

const (
	defaultTimeout   = 10 * time.Second
	maxErrorBodySize = 4 << 10
)

// Propagator - W3C trace context and baggage, used on outbound calls and by inbound tracing middleware.
func Propagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
}

// Client - JSON oriented HTTP client. Safe for concurrent use.
// The span context of the request's ctx is propagated in the request headers.
type Client struct {
	http       *http.Client
	baseURL    string
	userAgent  string
	propagator propagation.TextMapPropagator
}

// NewClient - Client constructor. A nil config yields a client with default timeout and no base URL.
func NewClient(cfg *configmgr.HttpClientConfig) *Client {
	timeout := defaultTimeout
	var baseURL, userAgent string

	if cfg != nil {
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
		baseURL = strings.TrimSuffix(cfg.BaseUrl, "/")
		userAgent = cfg.UserAgent
	}

	return &Client{
		http:       &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		userAgent:  userAgent,
		propagator: Propagator(),
	}
}

// BaseURL - returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do - sends the request, adding the configured User-Agent and the trace context of req.Context().
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.propagator.Inject(req.Context(), propagation.HeaderCarrier(req.Header))

	return c.http.Do(req)
}

// GetJSON - GET path and decode the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// PostJSON - POST in as JSON to path and decode the JSON response into out (out may be nil).
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, in, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		body = bytes.NewReader(payload)
	}

	url := c.resolve(path)
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return errors.Wrapf(err, "building %s %s", method, url)
	}

	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	if err != nil {
		return errors.Wrapf(err, "calling %s %s", method, url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return errorx.NewHttpError(resp.StatusCode, method, url, string(raw))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decoding response of %s %s", method, url)
	}

	return nil
}

func (c *Client) resolve(path string) string {
	if c.baseURL == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	return c.baseURL + "/" + strings.TrimPrefix(path, "/")
}
