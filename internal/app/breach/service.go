// Package breach coordinates account and breach lookups against the breach
// directory and the local breach catalog.
package breach

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/breachcheck/internal/domain/breach"
	"github.com/ahrav/breachcheck/pkg/common/logger"
	"github.com/ahrav/breachcheck/pkg/common/otel"
)

// DefaultCatalogTTL is how long a cached breach record is served before it is
// refetched from the directory.
const DefaultCatalogTTL = 24 * time.Hour

// Config configures the breach Service.
type Config struct {
	CatalogTTL time.Duration
}

// Service looks up breached accounts and breach details. Every breach record
// seen by either lookup is written to the catalog so detail requests can be
// answered locally.
type Service struct {
	directory breach.Directory
	catalog   breach.CatalogStore
	ttl       time.Duration
	now       func() time.Time

	logger *logger.Logger
	tracer trace.Tracer
}

// NewService creates a new breach Service.
func NewService(
	cfg Config,
	directory breach.Directory,
	catalog breach.CatalogStore,
	log *logger.Logger,
	tracer trace.Tracer,
) *Service {
	ttl := cfg.CatalogTTL
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}

	return &Service{
		directory: directory,
		catalog:   catalog,
		ttl:       ttl,
		now:       time.Now,
		logger:    log.With("component", "breach_service"),
		tracer:    tracer,
	}
}

// CheckEmail returns the breaches email appears in. An account unknown to the
// directory is a normal, unexposed result.
func (s *Service) CheckEmail(ctx context.Context, email string) (breach.EmailResult, error) {
	ctx, span := s.tracer.Start(ctx, "breach_service.check_email")
	defer span.End()

	breaches, err := s.directory.BreachedAccount(ctx, strings.TrimSpace(email))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "account lookup failed")
		return breach.EmailResult{}, fmt.Errorf("checking email: %w", err)
	}

	s.remember(ctx, breaches...)

	result := breach.NewEmailResult(breaches)
	span.SetAttributes(attribute.Int("breach_count", result.BreachCount))
	span.SetStatus(codes.Ok, "account lookup complete")

	return result, nil
}

// GetBreachDetails returns a single breach by name. A catalog entry younger
// than the TTL is served without contacting the directory. Unknown names fail
// with breach.ErrNotFound.
func (s *Service) GetBreachDetails(ctx context.Context, name string) (breach.Breach, error) {
	ctx, span := otel.AddSpan(ctx, s.tracer, "breach_service.get_breach_details",
		attribute.String("breach_name", name))
	defer span.End()

	entry, err := s.catalog.Get(ctx, name)
	switch {
	case err == nil && entry.Fresh(s.now(), s.ttl):
		span.SetAttributes(attribute.Bool("catalog_hit", true))
		span.SetStatus(codes.Ok, "served from catalog")
		return entry.Breach, nil
	case err != nil && !errors.Is(err, breach.ErrNotFound):
		s.logger.Warn(ctx, "breach catalog read failed", "breach_name", name, "error", err)
	}
	span.SetAttributes(attribute.Bool("catalog_hit", false))

	b, err := s.directory.Breach(ctx, name)
	if err != nil {
		if !errors.Is(err, breach.ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "breach lookup failed")
		}
		return breach.Breach{}, fmt.Errorf("getting breach details: %w", err)
	}

	s.remember(ctx, b)
	span.SetStatus(codes.Ok, "breach fetched")

	return b, nil
}

// remember upserts breaches into the catalog. Failures are logged and never
// fail the lookup that produced the records.
func (s *Service) remember(ctx context.Context, breaches ...breach.Breach) {
	if len(breaches) == 0 {
		return
	}

	now := s.now()
	entries := make([]breach.CatalogEntry, 0, len(breaches))
	for _, b := range breaches {
		if b.Name == "" {
			continue
		}
		entries = append(entries, breach.CatalogEntry{Breach: b, FetchedAt: now})
	}

	if err := s.catalog.Upsert(ctx, entries...); err != nil {
		s.logger.Warn(ctx, "failed to update breach catalog", "count", len(entries), "error", err)
	}
}
