// Package advisory answers security questions and generates password
// suggestions through a language-model backend.
package advisory

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/breachcheck/internal/domain/advisory"
	"github.com/ahrav/breachcheck/pkg/common/logger"
	"github.com/ahrav/breachcheck/pkg/common/otel"
)

// Redactor scrubs sensitive material from free text before it is sent to the
// language model.
type Redactor interface {
	Redact(ctx context.Context, text string) string
}

// Config configures the advisory Service.
type Config struct {
	// APIKey is only inspected to decide whether the feature is enabled. The
	// completer owns the credential.
	APIKey string
}

// Enabled reports whether the configured key can reach a real backend. An
// empty key or the shipped placeholder disables the feature.
func (c Config) Enabled() bool {
	return c.APIKey != "" && c.APIKey != advisory.PlaceholderAPIKey
}

// Service relays advisory requests to the completer. When the backend is not
// configured every operation returns a fixed informational message instead
// of an error.
type Service struct {
	enabled   bool
	completer advisory.Completer
	redactor  Redactor

	logger *logger.Logger
	tracer trace.Tracer
}

// NewService creates a new advisory Service. The enabled flag is resolved
// once here and never re-evaluated.
func NewService(
	cfg Config,
	completer advisory.Completer,
	redactor Redactor,
	log *logger.Logger,
	tracer trace.Tracer,
) *Service {
	log = log.With("component", "advisory_service")

	enabled := cfg.Enabled() && completer != nil
	if !enabled {
		log.Warn(context.Background(), "advisory API key not provided, AI features will be disabled")
	}

	return &Service{
		enabled:   enabled,
		completer: completer,
		redactor:  redactor,
		logger:    log,
		tracer:    tracer,
	}
}

// Enabled reports whether requests reach the language model.
func (s *Service) Enabled() bool { return s.enabled }

// Ask answers a free-form question, framed by what is known about the user.
// The message is redacted before it leaves the process.
func (s *Service) Ask(ctx context.Context, message string, c advisory.Context) (string, error) {
	ctx, span := s.tracer.Start(ctx, "advisory_service.ask")
	defer span.End()

	if s.redactor != nil {
		message = s.redactor.Redact(ctx, message)
	}

	return s.complete(ctx, span, advisory.ChatRequest(message, c), advisory.DisabledMessage)
}

// Recommend returns security recommendations tailored to c.
func (s *Service) Recommend(ctx context.Context, c advisory.Context) (string, error) {
	ctx, span := otel.AddSpan(ctx, s.tracer, "advisory_service.recommend",
		attribute.Int("breach_count", len(c.Breaches)))
	defer span.End()

	return s.complete(ctx, span, advisory.RecommendationRequest(c), advisory.DisabledMessage)
}

// GeneratePasswords returns password suggestions meeting r, one per entry.
func (s *Service) GeneratePasswords(ctx context.Context, r advisory.Requirements) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "advisory_service.generate_passwords")
	defer span.End()

	answer, err := s.complete(ctx, span, advisory.PasswordRequest(r), advisory.DisabledPasswordMessage)
	if err != nil {
		return nil, err
	}
	if answer == advisory.DisabledPasswordMessage {
		return []string{answer}, nil
	}

	passwords := advisory.ParsePasswords(answer)
	span.SetAttributes(attribute.Int("suggestion_count", len(passwords)))
	return passwords, nil
}

func (s *Service) complete(ctx context.Context, span trace.Span, req advisory.CompletionRequest, disabled string) (string, error) {
	if !s.enabled {
		span.SetAttributes(attribute.Bool("enabled", false))
		return disabled, nil
	}

	answer, err := s.completer.Complete(ctx, req)
	if errors.Is(err, advisory.ErrFeatureDisabled) {
		span.SetAttributes(attribute.Bool("enabled", false))
		return disabled, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		s.logger.Error(ctx, "advisory completion failed", "error", err)
		return "", fmt.Errorf("advisory completion: %w", err)
	}

	span.SetStatus(codes.Ok, "completion received")
	return answer, nil
}
