package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"
)

const (
	// DefaultUserAgent is a desktop Chrome fingerprint sent with the full
	// browser header set.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	// DefaultFallbackUserAgent is the only header sent on the simplified retry.
	DefaultFallbackUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	defaultTimeout      = 15 * time.Second
	defaultMaxBodyBytes = 5 << 20

	// StatusBotDefense is the non-standard status some sites (LinkedIn) use
	// to reject automated clients.
	StatusBotDefense = 999
)

// ErrBotDefense is returned for a 999 response. It is never retried.
var ErrBotDefense = errors.New("bot protection rejected request")

// StatusError reports a terminal non-200 response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string { return fmt.Sprintf("unexpected status: %d", e.StatusCode) }

// Result is a successfully fetched, decoded and UTF-8 converted body.
type Result struct {
	Body        []byte
	ContentType string
	// Attempts is the number of requests issued, 1 or 2.
	Attempts int
}

// Client wraps http.Client with a browser-like fingerprint, one simplified
// retry for 403/429, timeouts and a per-instance concurrency gate.
type Client struct {
	HTTPClient *http.Client
	// UserAgent is sent with the full header set. Empty means DefaultUserAgent.
	UserAgent string
	// FallbackUserAgent is sent alone on the 403/429 retry.
	FallbackUserAgent string
	// PerRequestTimeout bounds each request. Zero means 15s.
	PerRequestTimeout time.Duration
	// RedirectMaxHops caps redirect following to avoid loops. Zero means default (5).
	RedirectMaxHops int
	// MaxConcurrent limits concurrent in-flight requests per client instance.
	// Zero means unlimited.
	MaxConcurrent int
	// MaxBodyBytes bounds the decoded body. Zero means 5 MiB.
	MaxBodyBytes int64

	limiter     chan struct{}
	limiterOnce sync.Once
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{Timeout: c.timeout(), CheckRedirect: c.checkRedirectFunc()}
}

func (c *Client) timeout() time.Duration {
	if c.PerRequestTimeout > 0 {
		return c.PerRequestTimeout
	}
	return defaultTimeout
}

// Get fetches rawURL. A 403 or 429 triggers exactly one retry with only a
// generic User-Agent; 999 fails immediately with ErrBotDefense; any other
// non-200 status yields *StatusError.
func (c *Client) Get(ctx context.Context, rawURL string) (Result, error) {
	logger := zerolog.Ctx(ctx)
	if strings.Contains(strings.ToLower(rawURL), "linkedin.com") {
		logger.Warn().Str("url", rawURL).Msg("linkedin url; bot protection usually rejects these")
	}

	res, status, err := c.tryOnce(ctx, rawURL, c.browserHeaders())
	attempts := 1
	if err == nil && (status == http.StatusForbidden || status == http.StatusTooManyRequests) {
		logger.Debug().Str("url", rawURL).Int("status", status).Msg("retrying with simplified headers")
		res, status, err = c.tryOnce(ctx, rawURL, c.simpleHeaders())
		attempts++
	}
	if err != nil {
		return Result{}, err
	}
	switch {
	case status == StatusBotDefense:
		return Result{}, fmt.Errorf("%w (status %d)", ErrBotDefense, status)
	case status != http.StatusOK:
		return Result{}, &StatusError{StatusCode: status}
	}
	res.Attempts = attempts
	return res, nil
}

// tryOnce issues one GET. A non-200 status is reported via the status return
// with a nil error so the caller can apply the retry policy.
func (c *Client) tryOnce(ctx context.Context, rawURL string, header http.Header) (Result, int, error) {
	// Concurrency gate per client instance
	c.acquire()
	defer c.release()

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Result{}, 0, fmt.Errorf("new request: %w", err)
	}
	// Reject non-HTTP(S) schemes early
	if !isHTTPScheme(req.URL) {
		return Result{}, 0, fmt.Errorf("unsupported URL scheme: %q", req.URL.Scheme)
	}
	req.Header = header

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return Result{}, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return Result{}, resp.StatusCode, nil
	}

	contentType := resp.Header.Get("Content-Type")
	if !isAllowedContentType(contentType) {
		return Result{}, resp.StatusCode, fmt.Errorf("unsupported content type: %s", contentType)
	}
	body, err := c.readBody(resp, contentType)
	if err != nil {
		return Result{}, resp.StatusCode, err
	}
	return Result{Body: body, ContentType: contentType}, resp.StatusCode, nil
}

func (c *Client) readBody(resp *http.Response, contentType string) ([]byte, error) {
	var r io.Reader = resp.Body
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "", "identity":
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip body: %w", err)
		}
		defer zr.Close()
		r = zr
	case "deflate":
		zr, err := zlib.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("deflate body: %w", err)
		}
		defer zr.Close()
		r = zr
	default:
		return nil, fmt.Errorf("unsupported content encoding: %s", resp.Header.Get("Content-Encoding"))
	}
	limit := c.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	r = io.LimitReader(r, limit)
	utf8Reader, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, fmt.Errorf("charset: %w", err)
	}
	b, err := io.ReadAll(utf8Reader)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return b, nil
}

func (c *Client) browserHeaders() http.Header {
	ua := c.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	h := http.Header{}
	h.Set("User-Agent", ua)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	// br is not advertised: only gzip and deflate are decoded in readBody.
	h.Set("Accept-Encoding", "gzip, deflate")
	h.Set("DNT", "1")
	h.Set("Connection", "keep-alive")
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "none")
	h.Set("Sec-Fetch-User", "?1")
	h.Set("Cache-Control", "max-age=0")
	return h
}

func (c *Client) simpleHeaders() http.Header {
	ua := c.FallbackUserAgent
	if ua == "" {
		ua = DefaultFallbackUserAgent
	}
	h := http.Header{}
	h.Set("User-Agent", ua)
	return h
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		// Only allow http/https during redirects
		if !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// isAllowedContentType accepts HTML, XHTML, other text types and a missing
// header; binary types such as PDFs and images are rejected.
func isAllowedContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return ct == "" ||
		strings.HasPrefix(ct, "text/") ||
		strings.HasPrefix(ct, "application/xhtml+xml") ||
		strings.HasPrefix(ct, "application/xml")
}

func (c *Client) acquire() {
	if c.MaxConcurrent <= 0 {
		return
	}
	c.limiterOnce.Do(func() {
		c.limiter = make(chan struct{}, c.MaxConcurrent)
	})
	c.limiter <- struct{}{}
}

func (c *Client) release() {
	if c.MaxConcurrent <= 0 || c.limiter == nil {
		return
	}
	select {
	case <-c.limiter:
	default:
	}
}
