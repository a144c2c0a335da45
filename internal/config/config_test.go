package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultFeedURL, cfg.FeedURL)
	assert.Equal(t, "modis_csv_data/viirs_active_fires.csv", cfg.OutputPath)
	assert.Equal(t, 60*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "active-fire-etl/1.0", cfg.UserAgent)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Zero(t, cfg.RunInterval)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.MetricsTextfile)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "active-fire-detections", cfg.KafkaTopic)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("FEED_URL", "http://localhost:9000/feed.kml")
	t.Setenv("OUTPUT_PATH", "/tmp/out/fires.csv")
	t.Setenv("FETCH_TIMEOUT", "15s")
	t.Setenv("USER_AGENT", "test-agent")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("RUN_INTERVAL", "3h")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("METRICS_TEXTFILE", "/var/lib/node_exporter/fires.prom")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "fires")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/feed.kml", cfg.FeedURL)
	assert.Equal(t, "/tmp/out/fires.csv", cfg.OutputPath)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "test-agent", cfg.UserAgent)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 3*time.Hour, cfg.RunInterval)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/var/lib/node_exporter/fires.prom", cfg.MetricsTextfile)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "fires", cfg.KafkaTopic)
	assert.True(t, cfg.KafkaEnabled)
}

func TestLoad_InvalidFetchTimeout(t *testing.T) {
	for _, v := range []string{"soon", "0s", "-5s"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("FETCH_TIMEOUT", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "FETCH_TIMEOUT")
		})
	}
}

func TestLoad_InvalidRunInterval(t *testing.T) {
	for _, v := range []string{"hourly", "-1m"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("RUN_INTERVAL", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "RUN_INTERVAL")
		})
	}
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}
