package breach

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ahrav/breachcheck/internal/api/mid"
	"github.com/ahrav/breachcheck/internal/domain/breach"
	"github.com/ahrav/breachcheck/internal/domain/exposure"
	"github.com/ahrav/breachcheck/internal/domain/shared"
	"github.com/ahrav/breachcheck/pkg/common/logger"
	"github.com/ahrav/breachcheck/pkg/web"
)

type mockChecker struct{ mock.Mock }

func (m *mockChecker) Check(ctx context.Context, secret string) (exposure.Verdict, error) {
	args := m.Called(ctx, secret)
	return args.Get(0).(exposure.Verdict), args.Error(1)
}

type mockLookup struct{ mock.Mock }

func (m *mockLookup) CheckEmail(ctx context.Context, email string) (breach.EmailResult, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(breach.EmailResult), args.Error(1)
}

func (m *mockLookup) GetBreachDetails(ctx context.Context, name string) (breach.Breach, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(breach.Breach), args.Error(1)
}

type mockMetrics struct{ mock.Mock }

func (m *mockMetrics) IncPasswordChecks(ctx context.Context, riskLevel string) {
	m.Called(ctx, riskLevel)
}

func (m *mockMetrics) IncEmailChecks(ctx context.Context, exposed bool) {
	m.Called(ctx, exposed)
}

func (m *mockMetrics) IncUpstreamErrors(ctx context.Context, operation, reason string) {
	m.Called(ctx, operation, reason)
}

func newApp(cfg Config) *web.App {
	log := logger.Noop()
	app := web.NewApp(func(context.Context, string, ...any) {}, noop.NewTracerProvider().Tracer("test"),
		mid.Errors(log),
		mid.Panics(),
	)
	cfg.Log = log
	Routes(app, cfg)
	return app
}

func do(app http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

var adobe = breach.Breach{
	Name:        "Adobe",
	Title:       "Adobe",
	Domain:      "adobe.com",
	BreachDate:  "2013-10-04",
	PwnCount:    152445165,
	DataClasses: []string{"Email addresses", "Password hints", "Passwords", "Usernames"},
	IsVerified:  true,
}

func TestCheckEmail(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(*mockLookup, *mockMetrics)
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}{
		{
			name: "exposed account",
			body: `{"email":"user@example.com"}`,
			setup: func(l *mockLookup, m *mockMetrics) {
				l.On("CheckEmail", mock.Anything, "user@example.com").
					Return(breach.NewEmailResult([]breach.Breach{adobe}), nil)
				m.On("IncEmailChecks", mock.Anything, true).Return()
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, true, body["success"])
				assert.Equal(t, "user@example.com", body["email"])
				assert.Equal(t, true, body["isExposed"])
				assert.Equal(t, float64(1), body["breachCount"])

				breaches := body["breaches"].([]any)
				require.Len(t, breaches, 1)
				first := breaches[0].(map[string]any)
				assert.Equal(t, "Adobe", first["name"])
				assert.Equal(t, "2013-10-04", first["breachDate"])
				assert.Equal(t, float64(152445165), first["pwnCount"])
			},
		},
		{
			name: "account not in directory",
			body: `{"email":"clean@example.com"}`,
			setup: func(l *mockLookup, m *mockMetrics) {
				l.On("CheckEmail", mock.Anything, "clean@example.com").
					Return(breach.NewEmailResult(nil), nil)
				m.On("IncEmailChecks", mock.Anything, false).Return()
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, false, body["isExposed"])
				assert.Equal(t, float64(0), body["breachCount"])
				assert.Equal(t, []any{}, body["breaches"])
			},
		},
		{
			name:       "invalid email",
			body:       `{"email":"not-an-email"}`,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Validation error", body["error"])
				assert.Equal(t, "Please provide a valid email address", body["message"])
			},
		},
		{
			name:       "missing body",
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Email address is required", body["message"])
				assert.Equal(t, map[string]any{"email": "Email address is required"}, body["fields"])
			},
		},
		{
			name:       "malformed json",
			body:       `{"email":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "upstream failure hides details",
			body: `{"email":"user@example.com"}`,
			setup: func(l *mockLookup, m *mockMetrics) {
				l.On("CheckEmail", mock.Anything, "user@example.com").
					Return(breach.EmailResult{}, shared.NewUpstreamError(shared.UpstreamBreachDirectory, 401, errors.New("invalid api key")))
				m.On("IncUpstreamErrors", mock.Anything, "check_email", "unavailable").Return()
			},
			wantStatus: http.StatusInternalServerError,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Failed to check email", body["error"])
				assert.Equal(t, "An unexpected error occurred", body["message"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := new(mockLookup)
			metrics := new(mockMetrics)
			if tt.setup != nil {
				tt.setup(lookup, metrics)
			}

			app := newApp(Config{Lookup: lookup, Checker: new(mockChecker), Metrics: metrics})
			rec := do(app, http.MethodPost, "/api/breach/check-email", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotContains(t, rec.Body.String(), "invalid api key")
			if tt.check != nil {
				tt.check(t, decodeBody(t, rec))
			}
			lookup.AssertExpectations(t)
			metrics.AssertExpectations(t)
		})
	}
}

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(*mockChecker, *mockMetrics)
		wantStatus int
		want       map[string]any
	}{
		{
			name: "exposed password",
			body: `{"password":"password"}`,
			setup: func(c *mockChecker, m *mockMetrics) {
				c.On("Check", mock.Anything, "password").Return(exposure.NewVerdict(10434004), nil)
				m.On("IncPasswordChecks", mock.Anything, "critical").Return()
			},
			wantStatus: http.StatusOK,
			want: map[string]any{
				"success":       true,
				"isExposed":     true,
				"exposureCount": float64(10434004),
				"riskLevel":     "critical",
			},
		},
		{
			name: "safe password",
			body: `{"password":"kq9!Zr2#vLp8@Wm4"}`,
			setup: func(c *mockChecker, m *mockMetrics) {
				c.On("Check", mock.Anything, "kq9!Zr2#vLp8@Wm4").Return(exposure.NewVerdict(0), nil)
				m.On("IncPasswordChecks", mock.Anything, "safe").Return()
			},
			wantStatus: http.StatusOK,
			want: map[string]any{
				"success":       true,
				"isExposed":     false,
				"exposureCount": float64(0),
				"riskLevel":     "safe",
			},
		},
		{
			name:       "missing password",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			want: map[string]any{
				"error":   "Validation error",
				"message": "Password is required",
				"fields":  map[string]any{"password": "Password is required"},
			},
		},
		{
			name:       "empty password",
			body:       `{"password":""}`,
			wantStatus: http.StatusBadRequest,
			want: map[string]any{
				"error":   "Validation error",
				"message": "Password is required",
				"fields":  map[string]any{"password": "Password is required"},
			},
		},
		{
			name:       "password too long",
			body:       `{"password":"` + strings.Repeat("a", 101) + `"}`,
			wantStatus: http.StatusBadRequest,
			want: map[string]any{
				"error":   "Validation error",
				"message": "Password is too long",
				"fields":  map[string]any{"password": "Password is too long"},
			},
		},
		{
			name: "upstream timeout",
			body: `{"password":"hunter2"}`,
			setup: func(c *mockChecker, m *mockMetrics) {
				c.On("Check", mock.Anything, "hunter2").
					Return(exposure.Verdict{}, shared.NewUpstreamError(shared.UpstreamPasswordRange, 0, context.DeadlineExceeded))
				m.On("IncUpstreamErrors", mock.Anything, "check_password", "timeout").Return()
			},
			wantStatus: http.StatusInternalServerError,
			want: map[string]any{
				"error":   "Failed to check password",
				"message": "An unexpected error occurred",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := new(mockChecker)
			metrics := new(mockMetrics)
			if tt.setup != nil {
				tt.setup(checker, metrics)
			}

			app := newApp(Config{Lookup: new(mockLookup), Checker: checker, Metrics: metrics})
			rec := do(app, http.MethodPost, "/api/breach/check-password", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.want != nil {
				assert.Equal(t, tt.want, decodeBody(t, rec))
			}
			assert.NotContains(t, rec.Body.String(), "hunter2")
			checker.AssertExpectations(t)
			metrics.AssertExpectations(t)
		})
	}
}

func TestBreachDetails(t *testing.T) {
	tests := []struct {
		name       string
		breachName string
		setup      func(*mockLookup)
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}{
		{
			name:       "known breach",
			breachName: "Adobe",
			setup: func(l *mockLookup) {
				l.On("GetBreachDetails", mock.Anything, "Adobe").Return(adobe, nil)
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, true, body["success"])
				b := body["breach"].(map[string]any)
				assert.Equal(t, "Adobe", b["name"])
				assert.Equal(t, "adobe.com", b["domain"])
				assert.Len(t, b["dataClasses"], 4)
			},
		},
		{
			name:       "unknown breach is a 404",
			breachName: "NoSuchBreach",
			setup: func(l *mockLookup) {
				l.On("GetBreachDetails", mock.Anything, "NoSuchBreach").Return(breach.Breach{}, breach.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Breach not found", body["error"])
			},
		},
		{
			name:       "upstream failure",
			breachName: "Adobe",
			setup: func(l *mockLookup) {
				l.On("GetBreachDetails", mock.Anything, "Adobe").
					Return(breach.Breach{}, shared.NewUpstreamError(shared.UpstreamBreachDirectory, 503, nil))
			},
			wantStatus: http.StatusInternalServerError,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Failed to get breach details", body["error"])
				assert.Equal(t, "An unexpected error occurred", body["message"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := new(mockLookup)
			tt.setup(lookup)

			// Metrics are optional.
			app := newApp(Config{Lookup: lookup, Checker: new(mockChecker)})
			rec := do(app, http.MethodGet, "/api/breach/breach/"+tt.breachName, "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			tt.check(t, decodeBody(t, rec))
			lookup.AssertExpectations(t)
		})
	}
}
