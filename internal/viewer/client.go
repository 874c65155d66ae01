package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/park285/cheese-board/internal/fen"
	"github.com/park285/cheese-board/internal/game"
	"github.com/valyala/fasthttp"
)

var ErrNotFound = errors.New("viewer: session not found")

// Client reads boards from a running viewer.
type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type ClientOption func(*Client)

// WithTimeout bounds each request attempt. Non-positive values keep the default.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.defaultTimeout = d
		}
	}
}

func WithRetry(max int) ClientOption {
	return func(c *Client) { c.retryMax = max }
}

// WithDial replaces the TCP dialer, e.g. with an in-memory listener.
func WithDial(dial func(addr string) (net.Conn, error)) ClientOption {
	return func(c *Client) { c.http.Dial = dial }
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Snapshot(ctx context.Context, session string) (*game.Snapshot, error) {
	body, err := c.get(ctx, "/games/"+url.PathEscape(session))
	if err != nil {
		return nil, err
	}
	var snap game.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &snap, nil
}

func (c *Client) BoardText(ctx context.Context, session string) (string, error) {
	body, err := c.get(ctx, "/games/"+url.PathEscape(session)+"/board.txt")
	return string(body), err
}

func (c *Client) BoardPNG(ctx context.Context, session string, flip bool) ([]byte, error) {
	path := "/games/" + url.PathEscape(session) + "/board.png"
	if flip {
		path += "?flip=1"
	}
	return c.get(ctx, path)
}

// Render asks the viewer to draw an arbitrary notation.
func (c *Client) Render(ctx context.Context, notation string) (string, error) {
	body, err := c.get(ctx, "/render?fen="+url.QueryEscape(notation))
	return string(body), err
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()
	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(c.baseURL + path)

	attempts := c.retryMax
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx)); err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
		} else {
			status := resp.StatusCode()
			body := append([]byte(nil), resp.Body()...)
			switch {
			case status >= 200 && status < 300:
				return body, nil
			case status == fasthttp.StatusNotFound:
				return nil, ErrNotFound
			case status == fasthttp.StatusUnprocessableEntity:
				return nil, fmt.Errorf("%w: %s", fen.ErrMalformedNotation, truncate(string(body), 512))
			}
			lastErr = fmt.Errorf("viewer error: status=%d body=%s", status, truncate(string(body), 512))
			if !shouldRetryStatus(status) {
				return nil, lastErr
			}
		}
		if attempt == attempts {
			break
		}
		if err := sleepWithContext(ctx, backoffDuration(attempt)); err != nil {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
