package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ahrav/breachcheck/internal/domain/advisory"
	"github.com/ahrav/breachcheck/internal/domain/shared"
	"github.com/ahrav/breachcheck/pkg/common/logger"
)

func newTestClient(t *testing.T, apiKey string, h http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return NewClient(Config{BaseURL: srv.URL + "/v1", APIKey: apiKey}, srv.Client(),
		logger.Noop(), noop.NewTracerProvider().Tracer("test"))
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

func TestComplete(t *testing.T) {
	var got wireRequest
	var gotPath, gotAuth string
	client := newTestClient(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotAuth = r.URL.Path, r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Enable 2FA."}},{"message":{"role":"assistant","content":"ignored"}}]}`))
	})

	answer, err := client.Complete(context.Background(), advisory.CompletionRequest{
		Messages: []advisory.Message{
			{Role: advisory.RoleSystem, Content: "be helpful"},
			{Role: advisory.RoleUser, Content: "what now?"},
		},
		MaxTokens:   500,
		Temperature: 0.7,
	})
	require.NoError(t, err)

	assert.Equal(t, "Enable 2FA.", answer)
	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, wireRequest{
		Model: DefaultModel,
		Messages: []wireMessage{
			{Role: "system", Content: "be helpful"},
			{Role: "user", Content: "what now?"},
		},
		MaxTokens:   500,
		Temperature: 0.7,
	}, got)
}

func TestCompleteDisabled(t *testing.T) {
	for _, key := range []string{"", advisory.PlaceholderAPIKey} {
		called := false
		client := newTestClient(t, key, func(w http.ResponseWriter, r *http.Request) { called = true })

		_, err := client.Complete(context.Background(), advisory.CompletionRequest{})
		assert.ErrorIs(t, err, advisory.ErrFeatureDisabled)
		assert.False(t, called)
	}
}

func TestCompleteFailures(t *testing.T) {
	tests := []struct {
		name string
		h    http.HandlerFunc
	}{
		{
			name: "unauthorized body is not echoed",
			h: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided: sk-test"}}`))
			},
		},
		{
			name: "server error without json body",
			h: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte(`<html>bad gateway</html>`))
			},
		},
		{
			name: "no choices",
			h: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"choices":[]}`))
			},
		},
		{
			name: "malformed body",
			h: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, "sk-test", tt.h)

			_, err := client.Complete(context.Background(), advisory.CompletionRequest{})
			require.Error(t, err)
			assert.ErrorIs(t, err, shared.ErrUpstreamUnavailable)
			assert.NotContains(t, err.Error(), "Incorrect API key")
		})
	}
}
