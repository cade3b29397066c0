// Package openai adapts the go-openai chat completions client to the
// advisory backend port.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/breachcheck/internal/domain/advisory"
	"github.com/ahrav/breachcheck/internal/domain/shared"
	"github.com/ahrav/breachcheck/pkg/common/logger"
)

var _ advisory.Completer = (*Client)(nil)

// DefaultModel is the chat model used when Config.Model is empty.
const DefaultModel = goopenai.GPT4

// Config configures the chat completions client.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Client calls POST {base}/chat/completions with bearer authentication.
type Client struct {
	apiKey string
	model  string

	client *goopenai.Client

	logger *logger.Logger
	tracer trace.Tracer
}

// NewClient creates a new chat completions client. httpClient carries the
// timeout and tracing transport shared with the other upstream clients.
func NewClient(cfg Config, httpClient *http.Client, log *logger.Logger, tracer trace.Tracer) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = httpClient

	return &Client{
		apiKey: cfg.APIKey,
		model:  model,
		client: goopenai.NewClientWithConfig(clientCfg),
		logger: log.With("component", "openai_client"),
		tracer: tracer,
	}
}

// Complete sends req and returns the content of the first choice. A missing
// API key yields advisory.ErrFeatureDisabled without any network call.
func (c *Client) Complete(ctx context.Context, req advisory.CompletionRequest) (string, error) {
	ctx, span := c.tracer.Start(ctx, "openai_client.complete",
		trace.WithAttributes(
			attribute.String("model", c.model),
			attribute.Int("max_tokens", req.MaxTokens),
		))
	defer span.End()

	if c.apiKey == "" || c.apiKey == advisory.PlaceholderAPIKey {
		span.SetStatus(codes.Ok, "advisory disabled")
		return "", advisory.ErrFeatureDisabled
	}

	chatReq := goopenai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    make([]goopenai.ChatCompletionMessage, 0, len(req.Messages)),
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	}
	for _, m := range req.Messages {
		chatReq.Messages = append(chatReq.Messages, goopenai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "chat completion failed")
		return "", c.upstreamError(ctx, err)
	}

	if len(resp.Choices) == 0 {
		span.SetStatus(codes.Error, "no choices")
		return "", shared.NewUpstreamError(shared.UpstreamAdvisory, 0, errors.New("chat response has no choices"))
	}

	span.SetAttributes(attribute.Int("total_tokens", resp.Usage.TotalTokens))
	span.SetStatus(codes.Ok, "completion received")
	return resp.Choices[0].Message.Content, nil
}

// upstreamError classifies a go-openai failure. API and request errors keep
// only their status code; their messages can echo the request or the key.
func (c *Client) upstreamError(ctx context.Context, err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		c.logger.Warn(ctx, "chat completion rejected", "status", apiErr.HTTPStatusCode, "type", apiErr.Type)
		return shared.NewUpstreamError(shared.UpstreamAdvisory, apiErr.HTTPStatusCode, nil)
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		c.logger.Warn(ctx, "chat completion returned unexpected status", "status", reqErr.HTTPStatusCode)
		return shared.NewUpstreamError(shared.UpstreamAdvisory, reqErr.HTTPStatusCode, nil)
	}

	return shared.NewUpstreamError(shared.UpstreamAdvisory, 0, fmt.Errorf("chat completion: %w", err))
}
