package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lordwhitefire/new-portfolio/internal/observability"
)

const defaultTimeout = 10 * time.Second

// ErrMalformedEnvelope is returned when the endpoint answers without a result field.
var ErrMalformedEnvelope = errors.New("cms: response has no result field")

// QueryError describes a failed query against the endpoint.
type QueryError struct {
	ContentType string
	Status      int
	Err         error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("cms: query %s: status %d: %v", e.ContentType, e.Status, e.Err)
	}
	return fmt.Sprintf("cms: query %s: %v", e.ContentType, e.Err)
}

// Unwrap exposes the underlying error.
func (e *QueryError) Unwrap() error { return e.Err }

// Fetcher runs a query and decodes its result into out. A null result leaves out untouched.
type Fetcher interface {
	Fetch(ctx context.Context, q Query, out any) error
}

// FetcherFunc adapts ordinary functions to Fetcher.
type FetcherFunc func(ctx context.Context, q Query, out any) error

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, q Query, out any) error {
	return f(ctx, q, out)
}

// Endpoint addresses a project's dataset on the hosted query API.
type Endpoint struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	APIHost    string
}

// URL returns https://{project}.{host}/v{version}/data/query/{dataset}.
func (e Endpoint) URL() string {
	host := strings.TrimSpace(e.APIHost)
	if host == "" {
		host = "api.sanity.io"
	}
	version := strings.TrimPrefix(strings.TrimSpace(e.APIVersion), "v")
	return fmt.Sprintf("https://%s.%s/v%s/data/query/%s", e.ProjectID, host, version, e.Dataset)
}

// Client issues GROQ queries against the hosted query endpoint.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client (tests, custom transports).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithToken sends a bearer token, required for private datasets.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithBaseURL overrides the full query URL, bypassing Endpoint formatting.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		if base = strings.TrimSpace(base); base != "" {
			c.endpoint = strings.TrimRight(base, "/")
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// NewClient constructs a Client for the endpoint.
func NewClient(endpoint Endpoint, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: endpoint.URL(),
		http:     &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch implements Fetcher with a single GET round trip. No retries are attempted.
func (c *Client) Fetch(ctx context.Context, q Query, out any) (err error) {
	ctx, span := observability.StartSpan(ctx, "cms.query", attribute.String("cms.content_type", q.ContentType))
	defer func() { observability.EndSpan(span, err) }()

	start := time.Now()
	logger := observability.FromContext(ctx)
	defer func() {
		logger.Debug("cms query",
			zap.String("content_type", q.ContentType),
			zap.Duration("latency", time.Since(start)),
			zap.Bool("ok", err == nil),
		)
	}()

	reqURL, err := c.queryURL(q)
	if err != nil {
		return &QueryError{ContentType: q.ContentType, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &QueryError{ContentType: q.ContentType, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &QueryError{ContentType: q.ContentType, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return &QueryError{ContentType: q.ContentType, Status: resp.StatusCode, Err: errors.New(drainError(resp.Body))}
	}

	if err := DecodeResult(resp.Body, out); err != nil {
		return &QueryError{ContentType: q.ContentType, Status: resp.StatusCode, Err: err}
	}
	return nil
}

func (c *Client) queryURL(q Query) (string, error) {
	values := url.Values{}
	values.Set("query", q.GROQ)
	keys := make([]string, 0, len(q.Params))
	for k := range q.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		raw, err := json.Marshal(q.Params[k])
		if err != nil {
			return "", fmt.Errorf("encode param %s: %w", k, err)
		}
		values.Set("$"+k, string(raw))
	}
	return c.endpoint + "?" + values.Encode(), nil
}

// DecodeResult reads a {"result": ...} envelope and decodes the result into out.
func DecodeResult(r io.Reader, out any) error {
	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(r).Decode(&envelope); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if envelope.Result == nil {
		return ErrMalformedEnvelope
	}
	if bytes.Equal(bytes.TrimSpace(envelope.Result), []byte("null")) || out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

// Binding pairs a query with the destination of its result.
type Binding struct {
	Query Query
	Out   any
}

// Bind is shorthand for Binding{Query: q, Out: out}.
func Bind(q Query, out any) Binding {
	return Binding{Query: q, Out: out}
}

// FetchAll issues every query concurrently and waits for all of them. The first failure
// cancels the remaining requests and is returned; destinations must then be ignored.
func FetchAll(ctx context.Context, f Fetcher, bindings ...Binding) error {
	if f == nil {
		return errors.New("cms: fetcher not configured")
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, b := range bindings {
		g.Go(func() error {
			return f.Fetch(gctx, b.Query, b.Out)
		})
	}
	return g.Wait()
}

func drainError(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}
