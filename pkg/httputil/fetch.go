package httputil

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	rerrors "github.com/matzehuels/roadreveal/pkg/errors"
	"github.com/matzehuels/roadreveal/pkg/observability"
)

const (
	// DefaultMaxBytes caps a downloaded image body.
	DefaultMaxBytes = 32 << 20

	// DefaultTimeout bounds a single request attempt.
	DefaultTimeout = 30 * time.Second

	userAgent = "roadreveal (+https://github.com/matzehuels/roadreveal)"
)

// Fetcher downloads images over HTTP.
type Fetcher struct {
	client   *http.Client
	cache    *Cache
	logger   *log.Logger
	attempts int
	delay    time.Duration
	maxBytes int64
}

// FetchOption configures a [Fetcher].
type FetchOption func(*Fetcher)

// WithClient sets the HTTP client.
func WithClient(c *http.Client) FetchOption {
	return func(f *Fetcher) { f.client = c }
}

// WithCache enables the download cache.
func WithCache(c *Cache) FetchOption {
	return func(f *Fetcher) { f.cache = c }
}

// WithLogger sets the logger used for retry and cache messages.
func WithLogger(l *log.Logger) FetchOption {
	return func(f *Fetcher) { f.logger = l }
}

// WithRetry sets the number of attempts and the initial backoff delay.
func WithRetry(attempts int, delay time.Duration) FetchOption {
	return func(f *Fetcher) { f.attempts, f.delay = attempts, delay }
}

// WithMaxBytes caps the accepted body size.
func WithMaxBytes(n int64) FetchOption {
	return func(f *Fetcher) { f.maxBytes = n }
}

// NewFetcher creates a Fetcher with 3 attempts, a 1 second initial delay
// and a 32 MiB body limit.
func NewFetcher(opts ...FetchOption) *Fetcher {
	f := &Fetcher{
		client:   &http.Client{Timeout: DefaultTimeout},
		logger:   log.New(io.Discard),
		attempts: 3,
		delay:    time.Second,
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// IsURL reports whether src looks like an http(s) URL.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Fetch downloads rawURL and returns its body. A fresh cache entry is
// returned without a request.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := rerrors.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	if f.cache != nil {
		d, ok, err := f.cache.Get(rawURL)
		switch {
		case ok:
			f.logger.Debug("download cache hit", "url", rawURL)
			return d.Body, nil
		case errors.Is(err, ErrExpired):
			f.logger.Debug("download cache expired", "url", rawURL)
		case err != nil:
			f.logger.Debug("download cache read failed", "url", rawURL, "error", err)
		}
	}

	var body []byte
	var contentType string
	err := Retry(ctx, f.attempts, f.delay, func() error {
		var err error
		body, contentType, err = f.get(ctx, rawURL)
		if err != nil && isRetryable(err) {
			f.logger.Debug("retrying download", "url", rawURL, "error", err)
		}
		return err
	})
	if err != nil {
		return nil, classify(err, rawURL)
	}

	if f.cache != nil {
		if err := f.cache.Set(Download{URL: rawURL, ContentType: contentType, Body: body}); err != nil {
			f.logger.Debug("download cache write failed", "url", rawURL, "error", err)
		}
	}
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", err
	}
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, http.MethodGet, u.Host, u.Path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "image/*")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, u.Host, u.Path, err)
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", &RetryableError{Err: err}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, http.MethodGet, u.Host, u.Path, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		serr := &StatusError{URL: rawURL, Code: resp.StatusCode}
		if retryableStatus(resp.StatusCode) {
			return nil, "", &RetryableError{Err: serr}
		}
		return nil, "", serr
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "image/") && !strings.HasPrefix(ct, "application/octet-stream") {
		return nil, "", rerrors.New(rerrors.ErrCodeInvalidImage, "%s: unexpected content type %q", rawURL, ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, "", &RetryableError{Err: err}
	}
	if int64(len(body)) > f.maxBytes {
		return nil, "", rerrors.New(rerrors.ErrCodeInvalidImage, "%s: image larger than %d bytes", rawURL, f.maxBytes)
	}
	return body, ct, nil
}

// classify maps a final fetch error to a coded error.
func classify(err error, rawURL string) error {
	var coded *rerrors.Error
	if errors.As(err, &coded) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return rerrors.Wrap(rerrors.ErrCodeTimeout, err, "fetch %s", rawURL)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var serr *StatusError
	if errors.As(err, &serr) && serr.Code == http.StatusNotFound {
		return rerrors.Wrap(rerrors.ErrCodeFileNotFound, err, "fetch %s", rawURL)
	}
	return rerrors.Wrap(rerrors.ErrCodeNetwork, err, "fetch %s", rawURL)
}
