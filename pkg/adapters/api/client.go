// Package api is the HTTP client of the storefront backend. It implements every
// collaborator service the built-in actions call.
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

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	gocache "github.com/patrickmn/go-cache"
)

// Endpoint paths, relative to the base URL.
const (
	pathStreams  = "api/oqim"
	pathComments = "api/comments"
	pathDonate   = "api/donate"
	pathOrders   = "api/orders"
	pathPayments = "api/payments"
	pathProfile  = "profile"
)

const (
	keyStreams = "streams"
	keyProfile = "profile"
)

// StatusError is returned for non-2xx answers.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Code)
	}
	return fmt.Sprintf("api: status %d: %s", e.Code, e.Message)
}

// ServerMessage returns the message field of the error body.
func (e *StatusError) ServerMessage() string { return e.Message }

// Client talks to the storefront backend. Safe for concurrent use.
type Client struct {
	base   *url.URL
	token  string
	http   *http.Client
	cache  *gocache.Cache
	logger *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithCacheTTL sets how long read responses are memoised. Zero disables memoisation.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl <= 0 {
			c.cache = nil
			return
		}
		c.cache = gocache.New(ttl, 2*ttl)
	}
}

// WithLogger configures a logger for the Client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("parse base url %q: scheme and host are required", baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	c := &Client{
		base:   base,
		http:   &http.Client{Timeout: 30 * time.Second},
		cache:  gocache.New(30*time.Second, time.Minute),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var (
	_ ports.StreamService   = (*Client)(nil)
	_ ports.CommentService  = (*Client)(nil)
	_ ports.DonationService = (*Client)(nil)
	_ ports.OrderService    = (*Client)(nil)
	_ ports.PaymentService  = (*Client)(nil)
	_ ports.ProfileService  = (*Client)(nil)
)

// Services exposes the client as every collaborator service.
func (c *Client) Services() ports.Services {
	return ports.Services{
		Streams:   c,
		Comments:  c,
		Donations: c,
		Orders:    c,
		Payments:  c,
		Profile:   c,
	}
}

// ListStreams implements ports.StreamService.
func (c *Client) ListStreams(ctx context.Context) ([]domain.Stream, error) {
	if cached, ok := c.cached(keyStreams); ok {
		return cloneStreams(cached.([]domain.Stream)), nil
	}

	var streams []domain.Stream
	if err := c.do(ctx, http.MethodGet, pathStreams, nil, &streams); err != nil {
		return nil, err
	}
	c.remember(keyStreams, cloneStreams(streams))
	return streams, nil
}

// CreateStream implements ports.StreamService.
func (c *Client) CreateStream(ctx context.Context, productID string, req domain.CreateStreamRequest) (domain.Stream, error) {
	var stream domain.Stream
	if err := c.do(ctx, http.MethodPost, join(pathStreams, productID), req, &stream); err != nil {
		return domain.Stream{}, err
	}
	c.forget(keyStreams)
	return stream, nil
}

// DeleteStream implements ports.StreamService.
func (c *Client) DeleteStream(ctx context.Context, streamID string) (domain.DeleteStreamResult, error) {
	var res domain.DeleteStreamResult
	if err := c.do(ctx, http.MethodDelete, join(pathStreams, streamID), nil, &res); err != nil {
		return domain.DeleteStreamResult{}, err
	}
	c.forget(keyStreams)
	return res, nil
}

// CreateComment implements ports.CommentService.
func (c *Client) CreateComment(ctx context.Context, productID string, payload domain.CommentPayload) error {
	return c.do(ctx, http.MethodPost, join(pathComments, productID), payload, nil)
}

// Donate implements ports.DonationService.
func (c *Client) Donate(ctx context.Context, req domain.DonateRequest) (domain.DonateResult, error) {
	var res domain.DonateResult
	if err := c.do(ctx, http.MethodPost, pathDonate, req, &res); err != nil {
		return domain.DonateResult{}, err
	}
	c.forget(keyProfile)
	return res, nil
}

// CreateOrder implements ports.OrderService.
func (c *Client) CreateOrder(ctx context.Context, productID string, req domain.OrderRequest) error {
	return c.do(ctx, http.MethodPost, join(pathOrders, productID), req, nil)
}

// CreatePayment implements ports.PaymentService.
func (c *Client) CreatePayment(ctx context.Context, req domain.PaymentRequest) error {
	return c.do(ctx, http.MethodPost, pathPayments, req, nil)
}

// Profile implements ports.ProfileService.
func (c *Client) Profile(ctx context.Context) (domain.User, error) {
	if cached, ok := c.cached(keyProfile); ok {
		return cached.(domain.User), nil
	}

	var user domain.User
	if err := c.do(ctx, http.MethodGet, pathProfile, nil, &user); err != nil {
		return domain.User{}, err
	}
	c.remember(keyProfile, user)
	return user, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	target := c.base.ResolveReference(ref)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("API call", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := strings.TrimSpace(string(data))
	if json.Unmarshal(data, &payload) == nil {
		msg = payload.Message
		if msg == "" {
			msg = payload.Error
		}
	}
	return &StatusError{Code: resp.StatusCode, Message: msg}
}

func join(base, id string) string {
	return base + "/" + url.PathEscape(id)
}

func (c *Client) cached(key string) (any, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

func (c *Client) remember(key string, v any) {
	if c.cache != nil {
		c.cache.SetDefault(key, v)
	}
}

func (c *Client) forget(key string) {
	if c.cache != nil {
		c.cache.Delete(key)
	}
}

func cloneStreams(in []domain.Stream) []domain.Stream {
	if in == nil {
		return nil
	}
	out := make([]domain.Stream, len(in))
	copy(out, in)
	return out
}
