package api

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const namespace = "breachcheck_api"

// APIMetrics defines metrics operations needed by the breach check API.
type APIMetrics interface {
	// HTTP metrics
	IncRequestsTotal(ctx context.Context, method, path string, status int)
	ObserveRequestDuration(ctx context.Context, method, path string, duration time.Duration)

	// Lookup metrics
	IncPasswordChecks(ctx context.Context, riskLevel string)
	IncEmailChecks(ctx context.Context, exposed bool)
	IncUpstreamErrors(ctx context.Context, operation, reason string)
}

type apiMetrics struct {
	requestsTotal   metric.Int64Counter
	requestDuration metric.Float64Histogram

	passwordChecks metric.Int64Counter
	emailChecks    metric.Int64Counter
	upstreamErrors metric.Int64Counter
}

// NewAPIMetrics registers the API instruments on mp.
func NewAPIMetrics(mp metric.MeterProvider) (*apiMetrics, error) {
	meter := mp.Meter(namespace, metric.WithInstrumentationVersion("v0.1.0"))

	m := new(apiMetrics)
	var err error

	if m.requestsTotal, err = meter.Int64Counter(
		"requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.requestDuration, err = meter.Float64Histogram(
		"request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
	); err != nil {
		return nil, err
	}

	if m.passwordChecks, err = meter.Int64Counter(
		"password_checks_total",
		metric.WithDescription("Total number of password exposure checks by risk level"),
	); err != nil {
		return nil, err
	}

	if m.emailChecks, err = meter.Int64Counter(
		"email_checks_total",
		metric.WithDescription("Total number of email breach lookups"),
	); err != nil {
		return nil, err
	}

	if m.upstreamErrors, err = meter.Int64Counter(
		"upstream_errors_total",
		metric.WithDescription("Total number of failed upstream lookups"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *apiMetrics) IncRequestsTotal(ctx context.Context, method, path string, status int) {
	m.requestsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status", status),
	))
}

func (m *apiMetrics) ObserveRequestDuration(ctx context.Context, method, path string, duration time.Duration) {
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
	))
}

func (m *apiMetrics) IncPasswordChecks(ctx context.Context, riskLevel string) {
	m.passwordChecks.Add(ctx, 1, metric.WithAttributes(attribute.String("risk_level", riskLevel)))
}

func (m *apiMetrics) IncEmailChecks(ctx context.Context, exposed bool) {
	m.emailChecks.Add(ctx, 1, metric.WithAttributes(attribute.Bool("exposed", exposed)))
}

func (m *apiMetrics) IncUpstreamErrors(ctx context.Context, operation, reason string) {
	m.upstreamErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("reason", reason),
	))
}
