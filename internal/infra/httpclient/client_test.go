package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flakyServer(t *testing.T, failures int32, failStatus int) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		if n <= failures {
			w.WriteHeader(failStatus)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)

	return srv, &hits
}

func fastRetries(n uint64) Config {
	return Config{
		Timeout:         5 * time.Second,
		MaxRetries:      n,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}
}

func TestClientRetriesTransientStatus(t *testing.T) {
	srv, hits := flakyServer(t, 2, http.StatusServiceUnavailable)

	resp, err := New(fastRetries(2)).Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), hits.Load())
}

func TestClientGivesUpAfterMaxRetries(t *testing.T) {
	srv, hits := flakyServer(t, 10, http.StatusTooManyRequests)

	resp, err := New(fastRetries(2)).Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, int32(3), hits.Load())
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	srv, hits := flakyServer(t, 10, http.StatusNotFound)

	resp, err := New(fastRetries(3)).Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClientDoesNotRetryNonIdempotent(t *testing.T) {
	srv, hits := flakyServer(t, 10, http.StatusServiceUnavailable)

	resp, err := New(fastRetries(3)).Post(srv.URL, "text/plain", strings.NewReader("x"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClientWithoutRetriesSendsOneRequest(t *testing.T) {
	srv, hits := flakyServer(t, 10, http.StatusServiceUnavailable)

	resp, err := New(Config{}).Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, int32(1), hits.Load())
}

func TestClientStopsOnContextCancel(t *testing.T) {
	srv, _ := flakyServer(t, 10, http.StatusServiceUnavailable)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	cfg := fastRetries(1000)
	cfg.InitialInterval = 50 * time.Millisecond
	cfg.MaxInterval = 50 * time.Millisecond

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	_, err = New(cfg).Do(req)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClientHonorsRetryAfter(t *testing.T) {
	var (
		mu       sync.Mutex
		arrivals []time.Time
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		arrivals = append(arrivals, time.Now())
		n := len(arrivals)
		mu.Unlock()

		if n == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)

	resp, err := New(fastRetries(2)).Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, arrivals, 2)
	assert.GreaterOrEqual(t, arrivals[1].Sub(arrivals[0]), time.Second)
}

func TestClientReturnsRefusalWhenRetryAfterExceedsDeadline(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	start := time.Now()
	resp, err := New(fastRetries(2)).Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, int32(1), hits.Load())
	assert.Less(t, time.Since(start), time.Second)
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		header string
		want   time.Duration
		wantOK bool
	}{
		{name: "absent"},
		{name: "seconds", header: "3", want: 3 * time.Second, wantOK: true},
		{name: "zero seconds", header: "0", want: 0, wantOK: true},
		{name: "negative", header: "-1"},
		{name: "http date", header: now.Add(90 * time.Second).Format(http.TimeFormat), want: 90 * time.Second, wantOK: true},
		{name: "date in the past", header: now.Add(-time.Minute).Format(http.TimeFormat), want: 0, wantOK: true},
		{name: "garbage", header: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Retry-After", tt.header)
			}

			got, ok := RetryAfter(h, now)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
