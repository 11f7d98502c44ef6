package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesStructuredEntries(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("order-service", "debug", &buf)

	log.Error("order_creation_failed", "Failed to create order", "req-1", errors.New("boom"), map[string]any{
		"order_id": 7,
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "Failed to create order", entry["msg"])
	assert.Equal(t, "order-service", entry["service"])
	assert.Equal(t, "order_creation_failed", entry["action"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "boom", entry["error"].(map[string]any)["msg"])
	assert.Equal(t, float64(7), entry["details"].(map[string]any)["order_id"])
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("svc", "warn", &buf)

	log.Info("ignored", "not written", "", nil)
	assert.Zero(t, buf.Len())

	log.Warn("kept", "written", "", nil)
	assert.NotZero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", RequestID(ctx))
	assert.Empty(t, RequestID(context.Background()))
	assert.NotEqual(t, GenerateRequestID(), GenerateRequestID())
}
