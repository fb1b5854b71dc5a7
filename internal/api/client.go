package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"odonto-console/internal/metrics"
)

// TokenSource yields the bearer token for the session carried by ctx. An
// empty token means the call goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// publicPaths never carry a bearer token.
var publicPaths = []string{"/auth/login", "/auth/register"}

type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger

	mu        sync.RWMutex
	tokens    TokenSource
	onExpired []func(ctx context.Context)
}

func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "api").Logger(),
	}
}

func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	c.tokens = ts
	c.mu.Unlock()
}

// OnSessionExpired registers a hook run after any 401 response.
func (c *Client) OnSessionExpired(fn func(ctx context.Context)) {
	c.mu.Lock()
	c.onExpired = append(c.onExpired, fn)
	c.mu.Unlock()
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, query, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Do sends one JSON request and decodes the response into out when out is non-nil.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := c.send(ctx, method, path, query, body, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// Download is a file returned by the backend as a binary blob.
type Download struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Download fetches a binary response such as a CSV export.
func (c *Client) Download(ctx context.Context, path string, query url.Values) (*Download, error) {
	resp, err := c.send(ctx, http.MethodGet, path, query, nil, "*/*")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, ErrUnreachable)
	}
	d := &Download{ContentType: resp.Header.Get("Content-Type"), Body: data}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			d.Filename = params["filename"]
		}
	}
	return d, nil
}

// Ping reports whether the backend answers HTTP. Any status below 500 counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/login", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ping: %w", ErrUnreachable)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return &Error{Status: resp.StatusCode}
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any, accept string) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.authorize(ctx, req, path); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(method, "unreachable").Inc()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("backend unreachable")
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrUnreachable)
	}
	metrics.BackendRequestsTotal.WithLabelValues(method, outcome(resp.StatusCode)).Inc()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &Error{Status: resp.StatusCode, Message: errorMessage(raw)}

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Info().Str("path", path).Msg("backend rejected token, expiring session")
		c.expire(ctx)
	} else if resp.StatusCode >= 500 {
		c.logger.Error().Int("status", resp.StatusCode).Str("method", method).Str("path", path).Msg("backend error")
	}
	return nil, apiErr
}

func (c *Client) authorize(ctx context.Context, req *http.Request, path string) error {
	for _, p := range publicPaths {
		if strings.HasPrefix(path, p) {
			return nil
		}
	}
	c.mu.RLock()
	ts := c.tokens
	c.mu.RUnlock()
	if ts == nil {
		return nil
	}
	token, err := ts.Token(ctx)
	if err != nil {
		// a session cleared mid-request behaves like a rejected token
		return fmt.Errorf("read session token (%v): %w", err, ErrSessionExpired)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}

func (c *Client) expire(ctx context.Context) {
	c.mu.RLock()
	hooks := append([]func(context.Context){}, c.onExpired...)
	c.mu.RUnlock()
	for _, fn := range hooks {
		fn(ctx)
	}
}

func outcome(status int) string {
	switch {
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status == http.StatusUnauthorized:
		return "401"
	case status < 500:
		return "4xx"
	}
	return "5xx"
}
