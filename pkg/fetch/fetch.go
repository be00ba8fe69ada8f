// Package fetch wraps outbound HTTP calls with bounded retries, linear
// backoff, and a per-attempt timeout. Failures are classified and surfaced
// through a single terminal error once the attempt budget is exhausted; the
// caller is always told, never silently appeased.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/goliatone/go-gameportal/pkg/notify"
)

// Client executes resilient HTTP calls. The zero configuration uses
// http.DefaultClient semantics, DefaultPolicy, slog.Default() diagnostics,
// and no user-facing notifications.
type Client struct {
	http     *http.Client
	policy   Policy
	logger   *slog.Logger
	notifier notify.Notifier
	offline  func() bool

	// sleep is the inter-attempt wait; swapped during tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option customises a Client during construction.
type Option func(*Client)

// WithHTTPClient injects the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithPolicy sets the default policy applied when a request does not carry
// its own.
func WithPolicy(p Policy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

// WithLogger routes diagnostic detail for terminal failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNotifier receives the single user-facing notification emitted when a
// call exhausts its attempts.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Client) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithOfflineProbe overrides the local-connectivity check used to classify
// terminal transport failures.
func WithOfflineProbe(probe func() bool) Option {
	return func(c *Client) {
		if probe != nil {
			c.offline = probe
		}
	}
}

// New constructs a Client applying any provided options.
func New(options ...Option) *Client {
	c := &Client{
		http:     &http.Client{},
		policy:   DefaultPolicy,
		logger:   slog.Default(),
		notifier: notify.Discard,
		offline:  Offline,
		sleep:    sleepContext,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Request describes one logical resilient call. Policy, when non-nil,
// overrides the client default for this call only.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
	Policy *Policy
}

// GetJSON fetches url and decodes the JSON payload into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	return c.DoJSON(ctx, Request{Method: http.MethodGet, URL: url}, out)
}

// DoJSON performs the request and decodes the JSON body of a successful
// response into out. A malformed body on a successful status counts as a
// failed attempt and is retried under the same budget. Passing a nil out
// discards the body.
func (c *Client) DoJSON(ctx context.Context, req Request, out any) error {
	return c.execute(ctx, req, func(resp *http.Response) error {
		defer func() {
			_ = resp.Body.Close()
		}()
		if out == nil {
			_, err := io.Copy(io.Discard, resp.Body)
			return err
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &decodeError{err: err}
		}
		return nil
	})
}

// Do performs the request and returns the successful response with its body
// intact for streaming. Closing the body releases the per-attempt deadline,
// so callers must close it even on partial reads.
func (c *Client) Do(ctx context.Context, req Request) (*http.Response, error) {
	var out *http.Response
	err := c.execute(ctx, req, func(resp *http.Response) error {
		out = resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// execute runs the retry loop. accept consumes a transport-successful
// response; returning an error counts the attempt as failed.
func (c *Client) execute(ctx context.Context, req Request, accept func(*http.Response) error) error {
	if req.URL == "" {
		return errors.New("fetch: url is required")
	}

	policy := c.policy
	if req.Policy != nil {
		policy = *req.Policy
	}
	policy = policy.normalized()

	var last error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		err := c.attempt(ctx, req, policy.PerAttemptTimeout, accept)
		if err == nil {
			return nil
		}
		last = err

		if attempt == policy.MaxAttempts {
			break
		}
		delay := time.Duration(attempt) * policy.BaseDelay
		if err := c.sleep(ctx, delay); err != nil {
			last = err
			return c.fail(ctx, req, attempt, last)
		}
	}
	return c.fail(ctx, req, policy.MaxAttempts, last)
}

func (c *Client) attempt(ctx context.Context, req Request, timeout time.Duration, accept func(*http.Response) error) error {
	attemptCtx := ctx
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, method, req.URL, body)
	if err != nil {
		cancel()
		return err
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		cancel()
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		cancel()
		return &statusError{code: resp.StatusCode, status: resp.Status}
	}

	// Keep the attempt deadline alive until the body is drained.
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return accept(resp)
}

// fail classifies the terminal failure, notifies the user once, records the
// diagnostic detail, and propagates a typed error.
func (c *Client) fail(ctx context.Context, req Request, attempts int, cause error) error {
	kind := c.classify(cause)

	ferr := &Error{
		Kind:     kind,
		Attempts: attempts,
		URL:      req.URL,
		Err:      cause,
	}
	var se *statusError
	if errors.As(cause, &se) {
		ferr.StatusCode = se.code
		ferr.Status = se.status
	}

	c.notifier.Notify(ctx, notify.LevelError, userMessage(kind))
	c.logger.ErrorContext(ctx, "fetch failed",
		"url", req.URL,
		"kind", string(kind),
		"attempts", attempts,
		"error", cause,
	)
	return ferr
}

func (c *Client) classify(err error) Kind {
	var (
		se *statusError
		de *decodeError
	)
	switch {
	case isTimeout(err):
		return KindTimeout
	case errors.As(err, &se):
		return KindHTTPStatus
	case errors.As(err, &de):
		return KindDecode
	case c.offline != nil && c.offline():
		return KindOffline
	default:
		return KindConnection
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
