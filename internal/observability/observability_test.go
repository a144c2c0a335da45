package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "info", "json")

	logger.Debug("hidden")
	logger.Info("visible", "path", "out.csv")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "visible", entry["msg"])
	assert.Equal(t, "out.csv", entry["path"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "debug", "TEXT")

	logger.Debug("feed fetched", "bytes", 42)

	assert.Contains(t, buf.String(), "msg=\"feed fetched\"")
	assert.Contains(t, buf.String(), "bytes=42")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetricsForTesting()
	m.RowsWritten.Add(3)
	m.Runs.WithLabelValues("success").Inc()

	assert.InDelta(t, 3.0, testutil.ToFloat64(m.RowsWritten), 0.0001)

	path := filepath.Join(t.TempDir(), "active_fire_etl.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "active_fire_etl_rows_written_total 3")
	assert.Contains(t, string(data), `active_fire_etl_runs_total{outcome="success"} 1`)
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()
	a.RowsWritten.Inc()
	assert.InDelta(t, 0.0, testutil.ToFloat64(b.RowsWritten), 0.0001)
}
