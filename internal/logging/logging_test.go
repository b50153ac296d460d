package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLogLevel(tt.in), tt.in)
	}
}

func TestCLIHandler(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCLIHandler(&buf, slog.LevelInfo, false))

	log.Debug("hidden")
	log.With("run", "r1").WithGroup("score").Info("scored", "records", 3)

	assert.Equal(t, "[score] scored: run=r1 records=3\n", buf.String())
}

func TestCLIHandlerColor(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCLIHandler(&buf, slog.LevelInfo, true))

	log.Error("boom")
	assert.Equal(t, colorRed+"boom"+colorReset+"\n", buf.String())
}

func TestSetupWithoutDir(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := setup(&buf, false, "info", "", time.Now())
	require.NoError(t, err)
	require.NoError(t, closer.Close())

	log.Info("hello")
	assert.Equal(t, "hello\n", buf.String())
}

func TestSetupWritesRunLogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	started := time.Date(2024, 3, 16, 10, 15, 0, 0, time.UTC)

	var buf bytes.Buffer
	log, closer, err := setup(&buf, false, "debug", dir, started)
	require.NoError(t, err)

	log.Debug("stage done", "stage", "normalize")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, "prediction_pipeline_20240316_101500.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "level=DEBUG")
	assert.Contains(t, string(data), `msg="stage done" stage=normalize`)
	assert.True(t, strings.HasPrefix(buf.String(), "stage done"))
}
