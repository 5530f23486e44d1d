// Package backend is the authenticated client for the GFE backend API.
//
// Every call reads the browsing context's bearer token afresh at the start of
// each attempt, retries transient failures with exponential backoff, and
// never retries authorization failures.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gfe/internal/backend/tracer"
	"gfe/internal/tenant/models"
)

// maxResponseBytes caps how much of a backend response is buffered.
const maxResponseBytes = 4 << 20

// Doer sends one HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Waiter suspends the calling goroutine between attempts.
type Waiter interface {
	Wait(ctx context.Context, d time.Duration) error
}

// TokenStore is the slice of the session the client needs.
type TokenStore interface {
	GetToken(ctx context.Context) (string, bool, error)
	ClearToken(ctx context.Context) error
}

// TimerWaiter waits on a real timer and gives up when ctx is done.
type TimerWaiter struct{}

func (TimerWaiter) Wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Client performs backend calls for one serving host and one browsing context.
type Client struct {
	base    models.APIBase
	tokens  TokenStore
	doer    Doer
	waiter  Waiter
	tracer  tracer.Tracer
	metrics *Metrics
	logger  *slog.Logger
}

type Option func(*Client)

func WithDoer(d Doer) Option {
	return func(c *Client) { c.doer = d }
}

func WithWaiter(w Waiter) Option {
	return func(c *Client) { c.waiter = w }
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client. Retries below one are treated as one.
func New(base models.APIBase, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		base:   base,
		tokens: tokens,
		doer:   http.DefaultClient,
		waiter: TimerWaiter{},
		tracer: tracer.NewNoop(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.base.Retries < 1 {
		c.base.Retries = 1
	}
	return c
}

// RequestOptions describe one call. Header entries cannot override the
// static headers or Authorization.
type RequestOptions struct {
	Method string
	Body   any
	Header http.Header
}

// Backoff is the wait after failed attempt n (1-indexed): 2^n seconds.
func Backoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}

// Request performs a call against path, which is appended to the base URL.
func (c *Client) Request(ctx context.Context, path string, opts RequestOptions) (*Body, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var payload []byte
	if opts.Body != nil {
		var err error
		if payload, err = json.Marshal(opts.Body); err != nil {
			return nil, fmt.Errorf("encode request body for %s: %w", path, err)
		}
	}

	start := time.Now()
	ctx, span := c.tracer.Start(ctx, tracer.SpanBackendCall,
		tracer.String(tracer.AttrMethod, method),
		tracer.String(tracer.AttrPath, path),
		tracer.Int(tracer.AttrRetries, c.base.Retries),
		tracer.String(tracer.AttrTenantDomain, c.base.Headers().Get(models.HeaderDomain)),
	)

	body, err := c.run(ctx, span, method, path, payload, opts.Header)
	span.End(err)
	c.metrics.observeCall(err, time.Since(start).Seconds())
	return body, err
}

// run is the attempt loop. State is the attempt counter and the last error;
// every attempt finishes before the next begins.
func (c *Client) run(ctx context.Context, span tracer.Span, method, path string, payload []byte, extra http.Header) (*Body, error) {
	var lastErr error
	for attempt := 1; attempt <= c.base.Retries; attempt++ {
		body, err := c.attempt(ctx, attempt, method, path, payload, extra)
		c.metrics.observeAttempt(err)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return nil, err
		}
		c.logger.WarnContext(ctx, "backend attempt failed",
			"attempt", attempt,
			"retries", c.base.Retries,
			"method", method,
			"path", path,
			"error", err,
		)
		if attempt == c.base.Retries {
			break
		}

		wait := Backoff(attempt)
		span.AddEvent(tracer.EventBackoff,
			tracer.Int(tracer.AttrAttempt, attempt),
			tracer.Duration(tracer.AttrBackoff, wait),
		)
		if err := c.waiter.Wait(ctx, wait); err != nil {
			return nil, fmt.Errorf("backoff after attempt %d interrupted: %w (last error: %v)", attempt, err, lastErr)
		}
		c.metrics.observeBackoff(wait.Seconds())
	}
	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, attempt int, method, path string, payload []byte, extra http.Header) (_ *Body, err error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanBackendAttempt, tracer.Int(tracer.AttrAttempt, attempt))
	defer func() {
		if kind, ok := KindOf(err); ok {
			span.SetAttributes(tracer.String(tracer.AttrErrorKind, string(kind)))
		}
		span.End(err)
	}()

	token, hasToken, err := c.tokens.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("read session token: %w", err)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.base.Timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, c.base.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", path, err)
	}
	for k, vs := range extra {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for k, vs := range c.base.Headers() {
		req.Header[k] = vs
	}
	req.Header.Del("Authorization")
	if hasToken {
		req.Header.Set("Authorization", "Bearer "+token)
		span.SetAttributes(tracer.String(tracer.AttrTokenFingerprint, tracer.TokenFingerprint(token)))
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransportFailure, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body
	span.SetAttributes(tracer.Int(tracer.AttrStatus, resp.StatusCode))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		drain(resp.Body)
		if clearErr := c.tokens.ClearToken(ctx); clearErr != nil {
			c.logger.ErrorContext(ctx, "failed to clear rejected token", "error", clearErr)
		} else {
			c.metrics.observeTokenCleared()
			span.AddEvent(tracer.EventTokenCleared)
		}
		return nil, &Error{Kind: KindAuthenticationRequired, Status: resp.StatusCode, StatusText: statusText(resp)}
	case resp.StatusCode == http.StatusForbidden:
		drain(resp.Body)
		return nil, &Error{Kind: KindAccessForbidden, Status: resp.StatusCode, StatusText: statusText(resp)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		drain(resp.Body)
		return nil, &Error{Kind: KindRequestFailed, Status: resp.StatusCode, StatusText: statusText(resp)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &Error{Kind: KindTransportFailure, Err: fmt.Errorf("read response: %w", err)}
	}
	return newBody(resp.Header.Get("Content-Type"), data)
}

func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, maxResponseBytes))
}

// statusText prefers the reason phrase the server sent.
func statusText(resp *http.Response) string {
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
