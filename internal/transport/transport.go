// Package transport provides an http.RoundTripper that waits out GitHub rate limits.
package transport

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// RateLimitedTransport retries requests rejected by a rate limit once the limit resets. Waits longer than the
// configured maximum are not attempted and the rejected response is returned instead
type RateLimitedTransport struct {
	base    http.RoundTripper
	maxWait time.Duration
	logger  zerolog.Logger
	now     func() time.Time
}

func WithRateLimiting(base http.RoundTripper, maxWait time.Duration, logger zerolog.Logger) *RateLimitedTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &RateLimitedTransport{base: base, maxWait: maxWait, logger: logger, now: time.Now}
}

func (t *RateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Preserve the original request body for retries
	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		err = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to close request body: %w", err)
		}
	}

	for {
		if bodyBytes != nil {
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}

		resp, err := t.base.RoundTrip(req)
		if err != nil {
			return resp, err
		}

		waitDuration, limited := t.rateLimitWait(resp)
		if !limited || waitDuration <= 0 || waitDuration > t.maxWait {
			return resp, nil
		}

		err = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to close response body: %w", err)
		}

		t.logger.Warn().
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Dur("wait", waitDuration).
			Msg("Rate limited, waiting")
		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(waitDuration):
		}
	}
}

// rateLimitWait returns how long to wait before retrying a rate limited response. GitHub signals secondary rate
// limits with 429 or 403 and a retry-after header, and an exhausted primary limit with 403 and
// x-ratelimit-remaining of zero
func (t *RateLimitedTransport) rateLimitWait(resp *http.Response) (time.Duration, bool) {
	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusForbidden {
		return 0, false
	}

	if retryAfter := resp.Header.Get("retry-after"); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil {
			return time.Duration(seconds) * time.Second, true
		} else if retryTime, err := http.ParseTime(retryAfter); err == nil {
			return retryTime.Sub(t.now()), true
		}
	}

	if resp.Header.Get("x-ratelimit-remaining") == "0" {
		if reset, err := strconv.ParseInt(resp.Header.Get("x-ratelimit-reset"), 10, 64); err == nil {
			return time.Unix(reset, 0).Sub(t.now()), true
		}
	}
	return 0, false
}
