// Package redaction scrubs secrets and email addresses from free text before
// it is forwarded to a third party.
package redaction

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
	regexp "github.com/wasilibs/go-re2"
	"github.com/zricethezav/gitleaks/v8/config"
	"github.com/zricethezav/gitleaks/v8/detect"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/breachcheck/pkg/common/logger"
)

const (
	// SecretMask replaces every detected secret.
	SecretMask = "[REDACTED]"

	// EmailMask replaces every email address.
	EmailMask = "[EMAIL]"
)

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// Redactor masks secrets found by the gitleaks default ruleset and any email
// address. It is safe for concurrent use.
type Redactor struct {
	detector *detect.Detector

	logger *logger.Logger
	tracer trace.Tracer
}

// NewRedactor builds a redactor from the embedded gitleaks configuration.
func NewRedactor(log *logger.Logger, tracer trace.Tracer) (*Redactor, error) {
	detector, err := newDetector()
	if err != nil {
		return nil, err
	}

	return &Redactor{
		detector: detector,
		logger:   log.With("component", "redactor"),
		tracer:   tracer,
	}, nil
}

// newDetector initializes the gitleaks detector using the embedded default
// configuration.
func newDetector() (*detect.Detector, error) {
	v := viper.New()
	v.SetConfigType("toml")
	if err := v.ReadConfig(bytes.NewBufferString(config.DefaultConfig)); err != nil {
		return nil, fmt.Errorf("failed to read embedded config: %w", err)
	}

	var vc config.ViperConfig
	if err := v.Unmarshal(&vc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal embedded config: %w", err)
	}

	cfg, err := vc.Translate()
	if err != nil {
		return nil, fmt.Errorf("failed to translate ViperConfig to Config: %w", err)
	}

	return detect.NewDetector(cfg), nil
}

// Redact returns text with detected secrets replaced by SecretMask and email
// addresses replaced by EmailMask.
func (r *Redactor) Redact(ctx context.Context, text string) string {
	_, span := r.tracer.Start(ctx, "redactor.redact")
	defer span.End()

	if text == "" {
		return text
	}

	findings := r.detector.DetectString(text)

	// Longest first so a secret that contains another is masked whole.
	secrets := make([]string, 0, len(findings))
	for _, f := range findings {
		if f.Secret != "" {
			secrets = append(secrets, f.Secret)
		}
	}
	sort.Slice(secrets, func(i, j int) bool { return len(secrets[i]) > len(secrets[j]) })

	for _, s := range secrets {
		text = strings.ReplaceAll(text, s, SecretMask)
	}

	emails := len(emailPattern.FindAllStringIndex(text, -1))
	text = emailPattern.ReplaceAllString(text, EmailMask)

	span.SetAttributes(
		attribute.Int("secrets_redacted", len(secrets)),
		attribute.Int("emails_redacted", emails),
	)
	if len(secrets) > 0 {
		r.logger.Debug(ctx, "redacted secrets from advisory message", "count", len(secrets))
	}

	return text
}
