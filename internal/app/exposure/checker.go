// Package exposure runs the k-anonymity password exposure check against a
// range querier.
package exposure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/breachcheck/internal/domain/exposure"
	"github.com/ahrav/breachcheck/internal/domain/shared"
	"github.com/ahrav/breachcheck/pkg/common/logger"
	"github.com/ahrav/breachcheck/pkg/common/otel"
)

// DefaultTimeout bounds a single check when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Config configures a PasswordExposureChecker.
type Config struct {
	// Timeout is applied on top of any deadline already on the caller's
	// context. Zero means DefaultTimeout.
	Timeout time.Duration
}

// PasswordExposureChecker reports how often a secret has appeared in breach
// corpora. Only the 5-character digest prefix is handed to the querier; the
// secret, its full digest and its suffix stay in process.
//
// The checker holds no mutable state and is safe for concurrent use.
type PasswordExposureChecker struct {
	querier exposure.RangeQuerier
	timeout time.Duration

	logger *logger.Logger
	tracer trace.Tracer
}

// NewPasswordExposureChecker creates a checker backed by querier.
func NewPasswordExposureChecker(
	cfg Config,
	querier exposure.RangeQuerier,
	log *logger.Logger,
	tracer trace.Tracer,
) *PasswordExposureChecker {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &PasswordExposureChecker{
		querier: querier,
		timeout: timeout,
		logger:  log.With("component", "password_exposure_checker"),
		tracer:  tracer,
	}
}

// Check hashes secret, queries the range for its prefix and classifies the
// frequency of the matching suffix. Exactly one range query is issued.
//
// It fails with shared.ErrUpstreamTimeout when the deadline expires before
// the range query completes, and with shared.ErrUpstreamUnavailable for any
// other query failure.
func (c *PasswordExposureChecker) Check(ctx context.Context, secret string) (exposure.Verdict, error) {
	digest := exposure.NewDigest(secret)
	prefix := digest.Prefix()

	ctx, span := otel.AddSpan(ctx, c.tracer, "password_exposure_checker.check",
		attribute.String("prefix", prefix))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	set, err := c.querier.QueryRange(ctx, prefix)
	if err != nil {
		err = classify(ctx, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "range query failed")
		return exposure.Verdict{}, fmt.Errorf("password exposure check: %w", err)
	}

	count, _ := set.Lookup(digest.Suffix())
	verdict := exposure.NewVerdict(count)

	c.logger.Debug(ctx, "password exposure check complete",
		"prefix", prefix,
		"candidates", len(set),
		"risk_level", verdict.RiskLevel,
	)

	span.SetAttributes(
		attribute.Int("candidate_count", len(set)),
		attribute.String("risk_level", verdict.RiskLevel.String()),
	)
	span.SetStatus(codes.Ok, "check complete")

	return verdict, nil
}

// classify makes sure every failure surfaces as one of the upstream
// sentinels, preferring timeout when the check's own deadline has passed.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, shared.ErrUpstreamTimeout) {
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return shared.NewUpstreamError(shared.UpstreamPasswordRange, 0, errors.Join(context.DeadlineExceeded, err))
	}
	if errors.Is(err, shared.ErrUpstreamUnavailable) {
		return err
	}
	return shared.NewUpstreamError(shared.UpstreamPasswordRange, 0, err)
}
