package http

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/dvdoc/internal/constants"
	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
	"github.com/hashicorp/go-retryablehttp"
)

// RetryPolicy decides which responses are retried and how long to wait
// before the next attempt.
type RetryPolicy struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// Rand returns a value in [0,1) used for jitter. Defaults to
	// math/rand/v2.Float64.
	Rand func() float64
	// Now is used to resolve HTTP-date Retry-After values.
	Now func() time.Time
}

// DefaultRetryPolicy returns 3 retries starting at 1s, doubling, capped at
// 30s.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxRetries:   constants.DefaultRetryMax,
		InitialDelay: constants.DefaultRetryWaitMin,
		MaxDelay:     constants.DefaultRetryWaitMax,
		Multiplier:   constants.ExponentialBackoffBase,
	}
}

// ShouldRetry implements retryablehttp.CheckRetry. Network errors and the
// transient statuses are retried; a done context never is.
func (p *RetryPolicy) ShouldRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}

	return dataverse.IsRetryableStatus(resp.StatusCode), nil
}

// Delay returns the wait before retry number attempt (0 for the first
// retry). A Retry-After header on resp wins over the computed backoff.
func (p *RetryPolicy) Delay(attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		if wait, ok := ParseRetryAfter(resp.Header.Get(constants.HeaderRetryAfter), p.now()); ok {
			return wait
		}
	}

	return p.backoff(attempt)
}

// backoff computes initial * multiplier^attempt with ±20% jitter, capped at
// MaxDelay.
func (p *RetryPolicy) backoff(attempt int) time.Duration {
	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = constants.ExponentialBackoffBase
	}

	base := float64(p.InitialDelay) * math.Pow(multiplier, float64(attempt))
	jitter := 1 + constants.BackoffJitterFraction*(2*p.random()-1)
	wait := time.Duration(base * jitter)

	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = constants.DefaultRetryWaitMax
	}

	if wait > maxDelay || wait < 0 {
		return maxDelay
	}

	return wait
}

func (p *RetryPolicy) random() float64 {
	if p.Rand != nil {
		return p.Rand()
	}

	return rand.Float64() //nolint:gosec // jitter does not need a CSPRNG
}

func (p *RetryPolicy) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}

	return time.Now()
}

// ParseRetryAfter reads a Retry-After value in delta-seconds or HTTP-date
// form. Dates in the past yield zero.
func ParseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		if seconds < 0 {
			return 0, false
		}

		return time.Duration(seconds) * time.Second, true
	}

	at, err := http.ParseTime(value)
	if err != nil {
		return 0, false
	}

	wait := at.Sub(now)
	if wait < 0 {
		wait = 0
	}

	return wait, true
}

// exhausted implements retryablehttp.ErrorHandler. Cancellation passes
// through untouched; anything else becomes a TransportError carrying the last
// status and, when the body has one, the API error.
func exhausted(resp *http.Response, err error, attempts int) (*http.Response, error) {
	if err != nil && dataverse.IsCanceled(err) {
		drain(resp)

		return nil, err
	}

	transportErr := &dataverse.TransportError{Attempts: attempts, Err: err}

	if resp != nil {
		transportErr.LastStatus = resp.StatusCode

		if resp.Request != nil && resp.Request.URL != nil {
			transportErr.RequestURI = resp.Request.URL.String()
		}

		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if err == nil {
			transportErr.Err = parseAPIError(resp.StatusCode, body, transportErr.RequestURI)
		}
	}

	return nil, transportErr
}

func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
