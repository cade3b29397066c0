package advisory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ahrav/breachcheck/internal/domain/advisory"
	"github.com/ahrav/breachcheck/internal/domain/breach"
	"github.com/ahrav/breachcheck/internal/domain/shared"
	"github.com/ahrav/breachcheck/pkg/common/logger"
)

type mockCompleter struct{ mock.Mock }

func (m *mockCompleter) Complete(ctx context.Context, req advisory.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type fakeRedactor struct{}

func (fakeRedactor) Redact(_ context.Context, text string) string {
	return strings.ReplaceAll(text, "hunter2", "[REDACTED]")
}

func newTestService(apiKey string, c advisory.Completer) *Service {
	log := logger.New(io.Discard, logger.LevelDebug, "test", nil)
	return NewService(Config{APIKey: apiKey}, c, fakeRedactor{}, log, noop.NewTracerProvider().Tracer("test"))
}

func TestConfigEnabled(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{key: "", want: false},
		{key: advisory.PlaceholderAPIKey, want: false},
		{key: "sk-real", want: true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Config{APIKey: tt.key}.Enabled(), "key %q", tt.key)
	}
}

func TestDisabledReturnsFixedMessages(t *testing.T) {
	for _, key := range []string{"", advisory.PlaceholderAPIKey} {
		c := new(mockCompleter)
		svc := newTestService(key, c)
		assert.False(t, svc.Enabled())

		answer, err := svc.Ask(context.Background(), "am I safe?", advisory.Context{})
		require.NoError(t, err)
		assert.Equal(t, advisory.DisabledMessage, answer)

		recs, err := svc.Recommend(context.Background(), advisory.Context{PasswordExposed: true})
		require.NoError(t, err)
		assert.Equal(t, advisory.DisabledMessage, recs)

		passwords, err := svc.GeneratePasswords(context.Background(), advisory.Requirements{})
		require.NoError(t, err)
		assert.Equal(t, []string{advisory.DisabledPasswordMessage}, passwords)

		c.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	}
}

func TestAsk(t *testing.T) {
	c := new(mockCompleter)
	c.On("Complete", mock.Anything, mock.MatchedBy(func(req advisory.CompletionRequest) bool {
		if len(req.Messages) != 2 || req.MaxTokens != 500 || req.Temperature != 0.7 {
			return false
		}
		system, user := req.Messages[0].Content, req.Messages[1].Content
		return strings.Contains(system, "example.com") &&
			!strings.Contains(system, "alice@") &&
			strings.Contains(system, "Adobe") &&
			user == "my password was [REDACTED], what now?"
	})).Return("Change it everywhere.", nil).Once()

	svc := newTestService("sk-real", c)
	answer, err := svc.Ask(context.Background(), "my password was hunter2, what now?", advisory.Context{
		Email:    "alice@example.com",
		Breaches: []breach.Breach{{Name: "Adobe", Description: "2013 breach"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Change it everywhere.", answer)
	c.AssertExpectations(t)
}

func TestRecommend(t *testing.T) {
	c := new(mockCompleter)
	c.On("Complete", mock.Anything, mock.MatchedBy(func(req advisory.CompletionRequest) bool {
		return req.MaxTokens == 800 && req.Temperature == 0.5 &&
			strings.Contains(req.Messages[1].Content, "changed immediately")
	})).Return("1. Rotate passwords.", nil).Once()

	recs, err := newTestService("sk-real", c).Recommend(context.Background(), advisory.Context{PasswordExposed: true})
	require.NoError(t, err)
	assert.Equal(t, "1. Rotate passwords.", recs)
	c.AssertExpectations(t)
}

func TestGeneratePasswords(t *testing.T) {
	c := new(mockCompleter)
	c.On("Complete", mock.Anything, mock.MatchedBy(func(req advisory.CompletionRequest) bool {
		return req.MaxTokens == 200 && req.Temperature == 0.8 &&
			strings.Contains(req.Messages[1].Content, "Length: 24 characters")
	})).Return("  Xy7!kq\n\nP@ss-w0rd-9  \r\nZ9$aa\n", nil).Once()

	passwords, err := newTestService("sk-real", c).GeneratePasswords(context.Background(), advisory.Requirements{Length: 24})
	require.NoError(t, err)
	assert.Equal(t, []string{"Xy7!kq", "P@ss-w0rd-9", "Z9$aa"}, passwords)
}

func TestCompletionErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    string
		wantErr error
	}{
		{
			name: "backend reports disabled",
			err:  advisory.ErrFeatureDisabled,
			want: advisory.DisabledMessage,
		},
		{
			name:    "backend unavailable propagates",
			err:     shared.NewUpstreamError(shared.UpstreamAdvisory, 502, nil),
			wantErr: shared.ErrUpstreamUnavailable,
		},
		{
			name:    "unexpected error propagates",
			err:     errors.New("boom"),
			wantErr: errors.New("boom"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := new(mockCompleter)
			c.On("Complete", mock.Anything, mock.Anything).Return("", tt.err).Once()

			answer, err := newTestService("sk-real", c).Ask(context.Background(), "hi", advisory.Context{})
			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, shared.ErrUpstreamUnavailable) {
					assert.ErrorIs(t, err, shared.ErrUpstreamUnavailable)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, answer)
		})
	}
}
