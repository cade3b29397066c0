// Package httpclient builds the outbound HTTP clients used for third-party
// lookups. Every client is traced with otelhttp; idempotent requests may be
// retried with exponential backoff when configured. A Retry-After header on a
// retryable response takes precedence over the backoff schedule.
package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Config controls a single upstream client.
type Config struct {
	// Timeout bounds a whole exchange, retries included. Zero disables it.
	Timeout time.Duration

	// MaxRetries is how many times a failed idempotent request is retried.
	// Zero means each call results in exactly one request.
	MaxRetries uint64

	// InitialInterval is the first backoff wait.
	InitialInterval time.Duration

	// MaxInterval caps each backoff wait.
	MaxInterval time.Duration
}

// New returns an *http.Client configured from cfg.
func New(cfg Config) *http.Client {
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.MaxIdleConnsPerHost = 16

	var rt http.RoundTripper = otelhttp.NewTransport(base)
	if cfg.MaxRetries > 0 {
		rt = &retryTransport{next: rt, cfg: cfg}
	}

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: rt,
	}
}

// retryTransport retries GET and HEAD requests on transport errors and on
// 429/502/503/504 responses.
type retryTransport struct {
	next http.RoundTripper
	cfg  Config
}

func (t *retryTransport) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	if t.cfg.InitialInterval > 0 {
		b.InitialInterval = t.cfg.InitialInterval
	}
	if t.cfg.MaxInterval > 0 {
		b.MaxInterval = t.cfg.MaxInterval
	}
	// The client timeout and request context bound the total time.
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// RoundTrip implements http.RoundTripper.
func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !idempotent(req) {
		return t.next.RoundTrip(req)
	}

	ctx := req.Context()
	b := t.newBackOff()

	for attempt := uint64(0); ; attempt++ {
		resp, err := t.next.RoundTrip(req)
		if attempt >= t.cfg.MaxRetries || !retryable(ctx, resp, err) {
			return resp, err
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			return resp, err
		}
		if resp != nil {
			if after, ok := RetryAfter(resp.Header, time.Now()); ok && after > wait {
				wait = after
			}
		}
		// Give the caller the refusal instead of sleeping past its deadline.
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < wait {
			return resp, err
		}
		if resp != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func idempotent(req *http.Request) bool {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return false
	}
	return req.Body == nil || req.Body == http.NoBody
}

func retryable(ctx context.Context, resp *http.Response, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// RetryAfter parses the Retry-After header in either of its forms: delay
// seconds or an HTTP date. It reports false when the header is absent or
// malformed. A date in the past yields a zero wait.
func RetryAfter(h http.Header, now time.Time) (time.Duration, bool) {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0, false
	}

	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}

	at, err := http.ParseTime(v)
	if err != nil {
		return 0, false
	}
	if d := at.Sub(now); d > 0 {
		return d, true
	}
	return 0, true
}
