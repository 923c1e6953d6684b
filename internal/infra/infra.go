// Package infra provides the shared fetch plumbing used by the rate
// and news collectors: a polite HTTP client and a token-bucket rate
// limiter that keeps scraping of lender pages and feeds well under
// their tolerance.
package infra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultUserAgent is sent on every request. Lender rate pages tend to
// serve stripped-down markup to unknown agents, so we present as a
// current browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/139.0.0.0 Safari/537.36"

// HTTPClient is shared by every fetcher, including the feed parser.
var HTTPClient = &http.Client{Timeout: 30 * time.Second}

// baseHeaders make requests look like an ordinary browser session from
// Japan. Callers can override any of them per request.
var baseHeaders = map[string]string{
	"User-Agent":      DefaultUserAgent,
	"Accept":          "application/json, text/html, application/rss+xml, */*",
	"Accept-Language": "ja,en-US;q=0.8,en;q=0.6",
}

const (
	// maxFetchBytes bounds a page download. Lender listing pages are a
	// few hundred KB at most; anything bigger is not a rate table.
	maxFetchBytes = 2 << 20
	// errSnippetBytes is how much of an error response body is kept for
	// the error message.
	errSnippetBytes = 512
)

// FetchError reports a non-2xx response.
type FetchError struct {
	URL     string
	Code    int
	Snippet string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: status %d: %s", e.URL, e.Code, e.Snippet)
}

// Fetch GETs the URL with browser-like headers and returns the body.
func Fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	for k, v := range baseHeaders {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := HTTPClient.Do(req)
	if err != nil {
		// The url.Error already names the URL.
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errSnippetBytes))
		return nil, &FetchError{
			URL:     url,
			Code:    resp.StatusCode,
			Snippet: strings.TrimSpace(string(snippet)),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if len(data) > maxFetchBytes {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", url, maxFetchBytes)
	}
	return data, nil
}

// RateLimiter is a token bucket: a burst of up to burst requests, then
// one token back per interval elapsed. Sources sharing a host share
// one limiter so a cold-cache refresh never hammers a single site.
type RateLimiter struct {
	mu     sync.Mutex
	tokens int
	burst  int
	every  time.Duration
	last   time.Time
}

// NewRateLimiter creates a limiter allowing burst requests up front and
// one more per every elapsed.
func NewRateLimiter(burst int, every time.Duration) *RateLimiter {
	return &RateLimiter{tokens: burst, burst: burst, every: every, last: time.Now()}
}

// Wait blocks until a token is available or the context is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for !rl.take() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
			// Poll again; the refill interval is coarse enough that
			// this is fine.
		}
	}
	return nil
}

// take credits tokens accrued since the last refill, then claims one if
// the bucket is non-empty.
func (rl *RateLimiter) take() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if periods := int(time.Since(rl.last) / rl.every); periods > 0 {
		rl.tokens = min(rl.burst, rl.tokens+periods)
		rl.last = rl.last.Add(time.Duration(periods) * rl.every)
	}
	if rl.tokens == 0 {
		return false
	}
	rl.tokens--
	return true
}
