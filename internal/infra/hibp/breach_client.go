// Package hibp contains the clients for the Have I Been Pwned breach
// directory and the Pwned Passwords range API.
package hibp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/breachcheck/internal/domain/breach"
	"github.com/ahrav/breachcheck/internal/domain/shared"
	"github.com/ahrav/breachcheck/internal/infra/httpclient"
	"github.com/ahrav/breachcheck/pkg/common"
	"github.com/ahrav/breachcheck/pkg/common/logger"
)

var _ breach.Directory = (*BreachClient)(nil)

// BreachConfig configures the breach directory client.
type BreachConfig struct {
	BaseURL   string
	APIKey    string
	UserAgent string

	// RateLimit is the allowed requests per second for the API key.
	RateLimit float64
	Burst     int
}

// BreachClient queries the account-breach directory. Requests are
// authenticated with the hibp-api-key header and rate limited to the key's
// quota.
type BreachClient struct {
	baseURL   string
	apiKey    string
	userAgent string

	httpClient  *http.Client
	rateLimiter *common.RateLimiter
	rps         float64
	burst       int
	baseLimit   float64

	logger *logger.Logger
	tracer trace.Tracer
}

// NewBreachClient creates a new directory client.
func NewBreachClient(cfg BreachConfig, httpClient *http.Client, log *logger.Logger, tracer trace.Tracer) *BreachClient {
	limiter := common.NewRateLimiter(cfg.RateLimit, cfg.Burst)
	return &BreachClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		userAgent:   cfg.UserAgent,
		httpClient:  httpClient,
		rateLimiter: limiter,
		rps:         cfg.RateLimit,
		burst:       cfg.Burst,
		baseLimit:   limiter.Limit(),
		logger:      log.With("component", "hibp_breach_client"),
		tracer:      tracer,
	}
}

// BreachedAccount returns the full breach records for account. A 404 from the
// directory means the account is not in any breach and yields an empty slice.
func (c *BreachClient) BreachedAccount(ctx context.Context, account string) ([]breach.Breach, error) {
	ctx, span := c.tracer.Start(ctx, "hibp_breach_client.breached_account")
	defer span.End()

	endpoint := fmt.Sprintf("%s/breachedaccount/%s?truncateResponse=false", c.baseURL, url.PathEscape(account))

	body, status, err := c.get(ctx, endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "breached account request failed")
		return nil, err
	}

	if status == http.StatusNotFound {
		span.SetAttributes(attribute.Int("breach_count", 0))
		span.SetStatus(codes.Ok, "account not found")
		return []breach.Breach{}, nil
	}

	var raw []apiBreach
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &raw); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to decode response")
			return nil, shared.NewUpstreamError(shared.UpstreamBreachDirectory, 0, fmt.Errorf("decoding breaches: %w", err))
		}
	}

	breaches := make([]breach.Breach, 0, len(raw))
	for _, b := range raw {
		breaches = append(breaches, b.toDomain())
	}

	span.SetAttributes(attribute.Int("breach_count", len(breaches)))
	span.SetStatus(codes.Ok, "account lookup complete")
	return breaches, nil
}

// Breach returns a single breach by name, or breach.ErrNotFound.
func (c *BreachClient) Breach(ctx context.Context, name string) (breach.Breach, error) {
	ctx, span := c.tracer.Start(ctx, "hibp_breach_client.breach",
		trace.WithAttributes(attribute.String("breach_name", name)))
	defer span.End()

	endpoint := fmt.Sprintf("%s/breach/%s", c.baseURL, url.PathEscape(name))

	body, status, err := c.get(ctx, endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "breach request failed")
		return breach.Breach{}, err
	}

	trimmed := bytes.TrimSpace(body)
	if status == http.StatusNotFound || len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		span.SetStatus(codes.Ok, "breach not found")
		return breach.Breach{}, fmt.Errorf("%w: %s", breach.ErrNotFound, name)
	}

	var raw apiBreach
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode response")
		return breach.Breach{}, shared.NewUpstreamError(shared.UpstreamBreachDirectory, 0, fmt.Errorf("decoding breach: %w", err))
	}
	if raw.Name == "" {
		return breach.Breach{}, fmt.Errorf("%w: %s", breach.ErrNotFound, name)
	}

	span.SetStatus(codes.Ok, "breach fetched")
	return raw.toDomain(), nil
}

// get performs an authenticated GET. It returns the body for 2xx and 404
// responses; any other status is an upstream error.
func (c *BreachClient) get(ctx context.Context, endpoint string) ([]byte, int, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, 0, shared.NewUpstreamError(shared.UpstreamBreachDirectory, 0, fmt.Errorf("rate limiter wait failed: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("hibp-api-key", c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, shared.NewUpstreamError(shared.UpstreamBreachDirectory, 0, withoutURL(err))
	}
	defer resp.Body.Close()

	c.updateRateLimits(ctx, resp)

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.logger.Warn(ctx, "breach directory returned unexpected status", "status", resp.StatusCode)
		return nil, resp.StatusCode, shared.NewUpstreamError(shared.UpstreamBreachDirectory, resp.StatusCode, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, shared.NewUpstreamError(shared.UpstreamBreachDirectory, 0, fmt.Errorf("reading response: %w", err))
	}

	return body, resp.StatusCode, nil
}

// updateRateLimits slows the limiter to one request per Retry-After window
// when the directory refuses a request, and restores the configured quota on
// the next accepted one.
func (c *BreachClient) updateRateLimits(ctx context.Context, resp *http.Response) {
	if resp.StatusCode != http.StatusTooManyRequests {
		if resp.StatusCode < 500 && c.throttled() {
			c.rateLimiter.UpdateLimits(c.rps, c.burst)
			c.logger.Info(ctx, "breach directory rate limit restored", "rps", c.rps)
		}
		return
	}

	wait, ok := httpclient.RetryAfter(resp.Header, time.Now())
	if !ok || wait <= 0 {
		return
	}

	rps := 1 / wait.Seconds()
	if c.rps > 0 && c.rps < rps {
		rps = c.rps
	}
	c.rateLimiter.UpdateLimits(rps, 1)
	c.logger.Warn(ctx, "breach directory rate limited", "retry_after", wait, "rps", rps)
}

func (c *BreachClient) throttled() bool {
	return c.rateLimiter.Limit() != c.baseLimit
}

// withoutURL drops the request URL from a transport error. The
// breached-account path carries the queried email address.
func withoutURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s request: %w", uerr.Op, uerr.Err)
	}
	return err
}
