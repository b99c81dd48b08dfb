package gitlab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gnomegl/labslurp/internal/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const apiPrefix = "/api/v4"

// Authentication modes for the access token.
const (
	AuthPrivateToken = "private"
	AuthOAuth        = "oauth"
)

type Options struct {
	BaseURL  string
	Token    string
	AuthMode string
	Timeout  time.Duration
	Limits   Limits
	Logger   *zap.Logger
	// HTTPClient replaces the default transport chain; auth is still applied
	// on top of its transport.
	HTTPClient *http.Client
}

// RateLimit is the last rate-limit state reported by the server.
type RateLimit struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Client talks to the GitLab v4 REST API. Calls are sequential; the mutex
// only guards the rate-limit snapshot.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	limits  Limits
	logger  *zap.Logger

	mu   sync.Mutex
	rate RateLimit
	seen bool
}

func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse gitlab url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("parse gitlab url: missing scheme or host in %q", opts.BaseURL)
	}
	base.Path = strings.TrimSuffix(base.Path, apiPrefix) + apiPrefix

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := &http.Client{Timeout: opts.Timeout}
	if opts.HTTPClient != nil {
		copied := *opts.HTTPClient
		httpClient = &copied
	}
	httpClient.Transport = authTransport(opts.Token, opts.AuthMode, httpClient.Transport)

	return &Client{
		http:    httpClient,
		baseURL: base,
		limits:  opts.Limits.withDefaults(),
		logger:  logger,
	}, nil
}

func authTransport(token, mode string, base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if token == "" {
		return base
	}
	if mode == AuthOAuth {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		return &oauth2.Transport{Source: ts, Base: base}
	}
	return &privateTokenTransport{token: token, base: base}
}

type privateTokenTransport struct {
	token string
	base  http.RoundTripper
}

func (t *privateTokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("PRIVATE-TOKEN", t.token)
	return t.base.RoundTrip(r)
}

// Limits returns the effective paging limits.
func (c *Client) Limits() Limits {
	return c.limits
}

// BaseURL is the instance root without the API prefix.
func (c *Client) BaseURL() string {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, apiPrefix)
	return strings.TrimRight(u.String(), "/")
}

// APIError is a non-200 answer from the server.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL.String() + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	ctx, span := otel.Tracer("labslurp/internal/gitlab").Start(ctx, "gitlab.client.do",
		trace.WithAttributes(
			attribute.String("http.method", http.MethodGet),
			attribute.String("http.path", path),
		))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "labslurp/"+utils.GetVersion())

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.recordRateLimit(resp.Header)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Method:     http.MethodGet,
			Path:       path,
			Message:    errorMessage(body),
		}
		span.SetStatus(codes.Error, apiErr.Error())
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("decode %s: %w", path, err)
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// paginate walks a collection page by page until an empty page or maxPages.
// Hitting the cap is not an error. On failure the pages already visited stay
// visited and the error is returned.
func paginate[T any](ctx context.Context, c *Client, path string, query url.Values, perPage, maxPages int, visit func([]T)) error {
	if perPage <= 0 {
		perPage = c.limits.PerPage
	}
	for page := 1; page <= maxPages; page++ {
		q := url.Values{}
		for k, v := range query {
			q[k] = append([]string(nil), v...)
		}
		q.Set("per_page", strconv.Itoa(perPage))
		q.Set("page", strconv.Itoa(page))

		var batch []T
		if err := c.getJSON(ctx, path, q, &batch); err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		visit(batch)
	}
	c.logger.Debug("page cap reached", zap.String("path", path), zap.Int("max_pages", maxPages))
	return nil
}

func errorMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"message", "error", "error_description"} {
			if v, ok := payload[key]; ok {
				if s, ok := v.(string); ok {
					return s
				}
				if raw, err := json.Marshal(v); err == nil {
					return string(raw)
				}
			}
		}
	}
	return strings.TrimSpace(string(body))
}

func (c *Client) recordRateLimit(h http.Header) {
	remaining := h.Get("RateLimit-Remaining")
	if remaining == "" {
		return
	}
	rate := RateLimit{Remaining: atoi(remaining), Limit: atoi(h.Get("RateLimit-Limit"))}
	if reset, err := strconv.ParseInt(h.Get("RateLimit-Reset"), 10, 64); err == nil {
		rate.ResetAt = time.Unix(reset, 0)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.rate = rate
	c.seen = true
}

// RateLimit returns the last observed rate-limit state; ok is false when the
// server never sent rate-limit headers.
func (c *Client) RateLimit() (RateLimit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate, c.seen
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
