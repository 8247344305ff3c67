package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerWritesToFile(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	logFile := filepath.Join(t.TempDir(), "bench.log")
	InitLogger(false, logFile)

	slog.Info("run complete", "label", "baseline", "completed", 10)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "run complete", entry["msg"])
	assert.Equal(t, "baseline", entry["label"])
	assert.Equal(t, 10.0, entry["completed"])
}

func TestInitLoggerDebugLevel(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	logFile := filepath.Join(t.TempDir(), "debug.log")
	InitLogger(true, logFile)
	slog.Debug("poll tick")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "poll tick")
}

func TestInitLoggerInfoSuppressesDebug(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	logFile := filepath.Join(t.TempDir(), "info.log")
	InitLogger(false, logFile)
	slog.Debug("hidden")
	slog.Info("visible")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "visible")
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewJSONHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
	}}

	logger := slog.New(h)
	logger.Info("both sides")

	assert.Contains(t, a.String(), "both sides")
	assert.Contains(t, b.String(), "both sides")
}

func TestMultiHandlerRespectsLevels(t *testing.T) {
	var verbose, quiet bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewJSONHandler(&verbose, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&quiet, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}}

	assert.True(t, h.Enabled(context.Background(), slog.LevelDebug))

	logger := slog.New(h)
	logger.Debug("detail")

	assert.Contains(t, verbose.String(), "detail")
	assert.Empty(t, strings.TrimSpace(quiet.String()))
}
