// Package api is the HTTP client for the slotlist backend. Call methods map
// one-to-one to backend endpoints and hand back the response unmodified;
// callers that need a typed payload pass the response through Decode.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/slotlist/slotlist/frontend/go-client/pkg/logger"
	"github.com/slotlist/slotlist/frontend/go-client/pkg/metrics"
	"github.com/slotlist/slotlist/frontend/go-client/pkg/uid"
)

const (
	DefaultAuthScheme = "JWT"
	DefaultLimit      = 10

	RequestIDHeader = "X-Request-ID"
)

var log = logger.Named("api")

// Response is the raw backend answer.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Page selects a window of a list endpoint. The zero value means the
// default limit at offset 0.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) values() url.Values {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}
	v := url.Values{}
	v.Set("limit", strconv.Itoa(limit))
	v.Set("offset", strconv.Itoa(offset))
	return v
}

// Client is safe for concurrent use. The authorization header installed by
// SetAuthorization applies to every subsequent call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	scheme     string
	userAgent  string

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets a client-wide timeout; zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

func WithAuthScheme(scheme string) Option {
	return func(c *Client) {
		if s := strings.TrimSpace(scheme); s != "" {
			c.scheme = s
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		scheme:     DefaultAuthScheme,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// SetAuthorization installs "Authorization: <scheme> <token>" on all
// subsequent requests.
func (c *Client) SetAuthorization(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) ClearAuthorization() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// Authorization returns the header value currently installed, or "".
func (c *Client) Authorization() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" {
		return ""
	}
	return c.scheme + " " + c.token
}

// do sends one request. op names the call for metrics and logs. A nil body
// sends no payload.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any) (*Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	reqID := uid.New()
	req.Header.Set(RequestIDHeader, reqID)
	if auth := c.Authorization(); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.APIRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequests.WithLabelValues(op, "error").Inc()
		log.Debugf("%s %s id=%s failed: %v", method, path, reqID, err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.APIRequests.WithLabelValues(op, "error").Inc()
		return nil, fmt.Errorf("%s: read body: %w", op, err)
	}
	metrics.APIRequests.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Inc()
	log.Debugf("%s %s id=%s status=%d bytes=%d", method, path, reqID, resp.StatusCode, len(data))

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func seg(s string) string { return url.PathEscape(s) }
