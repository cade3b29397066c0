package hibp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/breachcheck/internal/domain/exposure"
	"github.com/ahrav/breachcheck/internal/domain/shared"
)

var _ exposure.RangeQuerier = (*RangeClient)(nil)

// RangeConfig configures the password range client.
type RangeConfig struct {
	BaseURL   string
	UserAgent string

	// AddPadding asks the API to pad responses with zero-count entries so
	// response sizes do not reveal the prefix.
	AddPadding bool
}

// RangeClient queries the public password frequency range API. Only the
// 5-character hash prefix is ever sent.
type RangeClient struct {
	baseURL    string
	userAgent  string
	addPadding bool

	httpClient *http.Client
	tracer     trace.Tracer
}

// NewRangeClient creates a new range client.
func NewRangeClient(cfg RangeConfig, httpClient *http.Client, tracer trace.Tracer) *RangeClient {
	return &RangeClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		addPadding: cfg.AddPadding,
		httpClient: httpClient,
		tracer:     tracer,
	}
}

// QueryRange fetches every suffix that shares prefix. A 404 is treated as an
// empty candidate set.
func (c *RangeClient) QueryRange(ctx context.Context, prefix string) (exposure.CandidateSet, error) {
	ctx, span := c.tracer.Start(ctx, "hibp_range_client.query_range",
		trace.WithAttributes(attribute.String("prefix", prefix)))
	defer span.End()

	if !exposure.IsValidPrefix(prefix) {
		err := fmt.Errorf("invalid range prefix length %d", len(prefix))
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid prefix")
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/range/"+prefix, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.addPadding {
		req.Header.Set("Add-Padding", "true")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "range request failed")
		return nil, shared.NewUpstreamError(shared.UpstreamPasswordRange, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		span.SetStatus(codes.Ok, "empty range")
		return exposure.CandidateSet{}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		span.SetStatus(codes.Error, "unexpected status")
		return nil, shared.NewUpstreamError(shared.UpstreamPasswordRange, resp.StatusCode, nil)
	}

	set, err := exposure.ParseCandidates(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read range")
		return nil, shared.NewUpstreamError(shared.UpstreamPasswordRange, 0, err)
	}

	span.SetAttributes(attribute.Int("candidate_count", len(set)))
	span.SetStatus(codes.Ok, "range fetched")
	return set, nil
}
