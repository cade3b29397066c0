package mid

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ahrav/breachcheck/pkg/web"
)

// RequestMetrics records per-request counters and latencies.
type RequestMetrics interface {
	IncRequestsTotal(ctx context.Context, method, path string, status int)
	ObserveRequestDuration(ctx context.Context, method, path string, duration time.Duration)
}

// Metrics updates program counters. The route pattern, not the raw path, is
// used as the path attribute so breach names do not explode cardinality.
func Metrics(metrics RequestMetrics) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			start := time.Now()

			resp := next(ctx, r)

			status := statusOf(resp)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			metrics.IncRequestsTotal(ctx, r.Method, route, status)
			metrics.ObserveRequestDuration(ctx, r.Method, route, time.Since(start))

			return resp
		}

		return h
	}

	return m
}

// statusOf predicts the status code web.Respond will write for resp.
func statusOf(resp web.Encoder) int {
	switch v := resp.(type) {
	case nil:
		return http.StatusNoContent
	case interface{ HTTPStatus() int }:
		return v.HTTPStatus()
	case error:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}
