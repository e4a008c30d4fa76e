package api

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
	"strings"
	"time"

	"github.com/google/uuid"
)

// ResourceStore defines the calls clubdesk makes against one resource
// collection. It is implemented by *Client and can be faked in tests.
type ResourceStore interface {
	List(ctx context.Context) ([]Resource, error)
	Get(ctx context.Context, id string) (Resource, error)
	Create(ctx context.Context, in Input) (Resource, error)
	Update(ctx context.Context, id string, in Input) (Resource, error)
}

// Ensure Client implements ResourceStore at compile time.
var _ ResourceStore = (*Client)(nil)

// Client talks to the club-management HTTP API for a single resource.
type Client struct {
	baseURL   *url.URL
	resource  string
	http      *http.Client
	userAgent string
	requestID func() string
	logger    *slog.Logger
}

const (
	defaultBaseURL   = "127.0.0.1:8080"
	defaultUserAgent = "clubdesk/0.1"
	requestTimeout   = 10 * time.Second
)

// Option customises a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient builds a Client for /api/<resource> on the given base address.
func NewClient(baseURL, resource string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	resource = strings.Trim(strings.TrimSpace(resource), "/")
	if resource == "" {
		return nil, fmt.Errorf("resource name is empty")
	}
	c := &Client{
		baseURL:   base,
		resource:  resource,
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: defaultUserAgent,
		requestID: func() string { return uuid.NewString() },
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "api", "resource", resource)
	return c, nil
}

// Resource returns the collection name this client addresses.
func (c *Client) Resource() string {
	if c == nil {
		return ""
	}
	return c.resource
}

// List retrieves every record in the collection.
func (c *Client) List(ctx context.Context) ([]Resource, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, c.collectionPath(), nil, &raw); err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var items []Resource
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return items, nil
	}
	var payload ListResponse
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return payload.Items, nil
}

// Get reads a single record by id.
func (c *Client) Get(ctx context.Context, id string) (Resource, error) {
	if c == nil {
		return Resource{}, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(id) == "" {
		return Resource{}, fmt.Errorf("id required")
	}
	var payload Resource
	if err := c.do(ctx, http.MethodGet, c.itemPath(id), nil, &payload); err != nil {
		return Resource{}, err
	}
	return payload, nil
}

// Create posts a new record.
func (c *Client) Create(ctx context.Context, in Input) (Resource, error) {
	if c == nil {
		return Resource{}, fmt.Errorf("client is nil")
	}
	var payload Resource
	if err := c.do(ctx, http.MethodPost, c.collectionPath(), in, &payload); err != nil {
		return Resource{}, err
	}
	return payload, nil
}

// Update replaces the mutable fields of an existing record.
func (c *Client) Update(ctx context.Context, id string, in Input) (Resource, error) {
	if c == nil {
		return Resource{}, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(id) == "" {
		return Resource{}, fmt.Errorf("id required")
	}
	var payload Resource
	if err := c.do(ctx, http.MethodPut, c.itemPath(id), in, &payload); err != nil {
		return Resource{}, err
	}
	return payload, nil
}

func (c *Client) collectionPath() string {
	return "/api/" + c.resource
}

func (c *Client) itemPath(id string) string {
	return c.collectionPath() + "/" + strings.TrimSpace(id)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := c.requestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("request complete",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(started),
	)

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, path, resp.Body)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
