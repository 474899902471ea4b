package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The adapter must satisfy the full interface, Fatal included.
var _ Logger = (*zerologAdapter)(nil)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestZerologAdapterInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologAdapterTo(&buf, zerolog.InfoLevel, false)

	logger.Info(context.Background(), "server started", map[string]any{"port": "3000"})

	line := logLine(t, &buf)
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "server started", line["message"])
	assert.Equal(t, "3000", line["port"])
}

func TestZerologAdapterError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologAdapterTo(&buf, zerolog.InfoLevel, false)

	logger.Error(context.Background(), "request failed", errors.New("boom"), map[string]any{"path": "/api/quotes"})

	line := logLine(t, &buf)
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "/api/quotes", line["path"])
}

func TestZerologAdapterLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologAdapterTo(&buf, zerolog.WarnLevel, false)

	logger.Debug(context.Background(), "noise")
	logger.Info(context.Background(), "more noise")
	assert.Zero(t, buf.Len())

	logger.Warn(context.Background(), "kept")
	assert.NotZero(t, buf.Len())
}

func TestZerologAdapterWith(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologAdapterTo(&buf, zerolog.InfoLevel, false).
		With(map[string]any{"component": "store"})

	logger.Info(context.Background(), "record consumed")

	line := logLine(t, &buf)
	assert.Equal(t, "store", line["component"])
}
