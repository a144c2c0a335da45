package config

import (
	"errors"
	"fmt"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultFeedURL is the FIRMS NOAA-21 VIIRS 48-hour feed for Europe.
const DefaultFeedURL = "https://firms.modaps.eosdis.nasa.gov/data/active_fire/noaa-21-viirs-c2/kml/J2_VIIRS_C2_Europe_animated_48h.kml"

// Config holds all service settings, populated from environment variables.
type Config struct {
	FeedURL      string
	OutputPath   string
	FetchTimeout time.Duration
	UserAgent    string

	LogLevel  string
	LogFormat string

	// RunInterval of zero means convert once and exit.
	RunInterval     time.Duration
	HTTPAddr        string
	ShutdownTimeout time.Duration
	MetricsTextfile string

	// Kafka publishing is enabled whenever brokers are configured.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	fetchTimeout, err := parsePositiveDuration("FETCH_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}

	runInterval, err := time.ParseDuration(sharedcfg.EnvOrDefault("RUN_INTERVAL", "0s"))
	if err != nil || runInterval < 0 {
		return nil, errors.New("invalid RUN_INTERVAL")
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	var brokers []string
	if raw := sharedcfg.EnvOrDefault("KAFKA_BROKERS", ""); raw != "" {
		brokers = sharedcfg.ParseBrokers(raw)
	}

	cfg := &Config{
		FeedURL:      sharedcfg.EnvOrDefault("FEED_URL", DefaultFeedURL),
		OutputPath:   sharedcfg.EnvOrDefault("OUTPUT_PATH", "modis_csv_data/viirs_active_fires.csv"),
		FetchTimeout: fetchTimeout,
		UserAgent:    sharedcfg.EnvOrDefault("USER_AGENT", "active-fire-etl/1.0"),

		LogLevel:  sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),

		RunInterval:     runInterval,
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		ShutdownTimeout: shutdownTimeout,
		MetricsTextfile: sharedcfg.EnvOrDefault("METRICS_TEXTFILE", ""),

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "active-fire-detections"),
		KafkaEnabled: len(brokers) > 0,
	}

	if cfg.FeedURL == "" {
		return nil, errors.New("FEED_URL is required")
	}
	if cfg.OutputPath == "" {
		return nil, errors.New("OUTPUT_PATH is required")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_BROKERS is set but KAFKA_TOPIC is empty")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
