package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("warn", "json", &buf)
	logger.Info("hidden")
	logger.Warn("shown", slog.String("component", "test"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "test", rec["component"])
}

func TestNewTextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := New("debug", "text", &buf).With(slog.String("component", "server"))
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	logger.DebugContext(ctx, "handled")

	assert.Contains(t, buf.String(), "request_id=req-42")
	assert.Contains(t, buf.String(), "component=server")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}
