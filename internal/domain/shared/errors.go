package shared

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUpstreamUnavailable indicates a third-party call could not be
	// completed: transport failure or an unexpected non-2xx response.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrUpstreamTimeout indicates the caller's deadline expired while
	// waiting on a third-party call.
	ErrUpstreamTimeout = errors.New("upstream timeout")
)

// UpstreamError records which upstream failed and with what status. It
// unwraps to one of the sentinel errors above so callers can use errors.Is.
// The upstream response body is never included.
type UpstreamError struct {
	Upstream   Upstream
	StatusCode int
	Kind       error
	Err        error
}

// NewUpstreamError classifies err for upstream u. Deadline expiry maps to
// ErrUpstreamTimeout, everything else to ErrUpstreamUnavailable.
func NewUpstreamError(u Upstream, statusCode int, err error) *UpstreamError {
	kind := ErrUpstreamUnavailable
	if errors.Is(err, context.DeadlineExceeded) {
		kind = ErrUpstreamTimeout
	}
	return &UpstreamError{Upstream: u, StatusCode: statusCode, Kind: kind, Err: err}
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s: status %d", e.Upstream, e.Kind, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Upstream, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Upstream, e.Kind)
}

// Unwrap exposes both the classification sentinel and the underlying cause.
func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
