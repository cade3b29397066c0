package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesServiceAndTraceID(t *testing.T) {
	var buf bytes.Buffer
	traceID := func(context.Context) string { return "abc123" }

	log := NewWithMetadata(&buf, LevelInfo, "breachcheck", traceID, Events{}, map[string]string{"app": "api", "pod": ""})
	log.With("component", "test").Info(context.Background(), "hello", "k", "v")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))

	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "breachcheck", rec["service"])
	assert.Equal(t, "api", rec["app"])
	assert.Equal(t, "test", rec["component"])
	assert.Equal(t, "abc123", rec["trace_id"])
	assert.Equal(t, "v", rec["k"])
	assert.NotContains(t, rec, "pod")
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelWarn, "breachcheck", nil)

	log.Debug(context.Background(), "debug")
	log.Info(context.Background(), "info")
	assert.Zero(t, buf.Len())

	log.Warn(context.Background(), "warn")
	assert.NotZero(t, buf.Len())
}

func TestLoggerErrorEvent(t *testing.T) {
	var buf bytes.Buffer
	var got Record

	events := Events{Error: func(_ context.Context, r Record) { got = r }}
	log := NewWithMetadata(&buf, LevelDebug, "breachcheck", nil, events, nil)

	log.Error(context.Background(), "boom", "status", 500)

	assert.Equal(t, "boom", got.Message)
	assert.Equal(t, LevelError, got.Level)
	assert.EqualValues(t, 500, got.Attributes["status"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("ERROR"))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}
