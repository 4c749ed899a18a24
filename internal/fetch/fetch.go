// Package fetch retrieves RDS pricing feed documents over HTTP.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const (
	// DefaultTimeout bounds a single feed request, retries included.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "rds-pricing-catalog/1.0"
	defaultRetryWait = 500 * time.Millisecond
)

// FetchError is returned for transport failures and non-2xx responses.
// StatusCode is zero when no response was received.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// HTTPFetcher fetches feeds with a shared resty client.
type HTTPFetcher struct {
	client *resty.Client
	logger zerolog.Logger
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) { f.client.SetTimeout(d) }
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) { f.client.SetHeader("User-Agent", ua) }
}

// WithRetries retries transport errors and 5xx responses n times, waiting
// wait between attempts.
func WithRetries(n int, wait time.Duration) Option {
	return func(f *HTTPFetcher) {
		f.client.SetRetryCount(n).SetRetryWaitTime(wait).SetRetryMaxWaitTime(wait)
	}
}

// WithLogger sets the logger used for request debugging.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *HTTPFetcher) { f.logger = logger }
}

// NewHTTPFetcher returns a fetcher with DefaultTimeout, DefaultUserAgent and
// no retries.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	client := resty.New()
	client.SetTimeout(DefaultTimeout)
	client.SetHeader("User-Agent", DefaultUserAgent)
	client.SetRetryWaitTime(defaultRetryWait)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		return err != nil || (res != nil && res.StatusCode() >= http.StatusInternalServerError)
	})

	f := &HTTPFetcher{client: client, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the JSON document served at url. A JSONP callback wrapper,
// if present, is removed.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()
	res, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if res.IsError() || res.StatusCode() < http.StatusOK || res.StatusCode() >= http.StatusMultipleChoices {
		return nil, &FetchError{URL: url, StatusCode: res.StatusCode(), Err: fmt.Errorf("unexpected status %s", res.Status())}
	}

	f.logger.Debug().
		Str("url", url).
		Int("status", res.StatusCode()).
		Int("bytes", len(res.Body())).
		Dur("elapsed", time.Since(start)).
		Msg("fetched feed")

	return UnwrapJSONP(res.Body()), nil
}

// UnwrapJSONP strips a "callback(...)" or "callback(...);" wrapper and any
// leading comment lines. Documents that already start with '{' are returned
// unchanged.
func UnwrapJSONP(body []byte) []byte {
	trimmed := bytes.TrimSpace(body)
	for bytes.HasPrefix(trimmed, []byte("/*")) {
		end := bytes.Index(trimmed, []byte("*/"))
		if end < 0 {
			return body
		}
		trimmed = bytes.TrimSpace(trimmed[end+2:])
	}
	if len(trimmed) == 0 || trimmed[0] == '{' || trimmed[0] == '[' {
		return trimmed
	}

	open := bytes.IndexByte(trimmed, '(')
	if open < 0 {
		return body
	}
	inner := bytes.TrimSuffix(trimmed, []byte(";"))
	inner = bytes.TrimSpace(inner)
	if !bytes.HasSuffix(inner, []byte(")")) {
		return body
	}
	return bytes.TrimSpace(inner[open+1 : len(inner)-1])
}
