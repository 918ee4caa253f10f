package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/IsakLindberger/Weather-Predict-Model/internal/stages"
)

// Config holds all pipeline settings, populated from environment variables.
type Config struct {
	DataDir   string
	StationID string

	HTTPAddr  string
	LogLevel  string
	LogFormat string

	ShutdownTimeout time.Duration

	// Kafka run-event publishing. Disabled unless KAFKA_ENABLED=true.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// Stage parameters.
	Params stages.Params
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	params, err := loadParams()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:   envOrDefault("DATA_DIR", "data"),
		StationID: envOrDefault("STATION_ID", "STATION_001"),

		HTTPAddr:  envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "json"),

		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "pipeline-run-events"),

		Params: params,
	}

	if cfg.DataDir == "" {
		return nil, errors.New("DATA_DIR is required")
	}
	if cfg.StationID == "" {
		return nil, errors.New("STATION_ID is required")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is not set")
		}
	}

	return cfg, nil
}

func loadParams() (stages.Params, error) {
	p := stages.DefaultParams()

	var err error
	if p.ForestTrees, err = parseInt("FOREST_TREES", p.ForestTrees); err != nil {
		return p, err
	}
	if p.ForestMaxDepth, err = parseInt("FOREST_MAX_DEPTH", p.ForestMaxDepth); err != nil {
		return p, err
	}
	if p.Seed, err = parseInt64("FOREST_SEED", p.Seed); err != nil {
		return p, err
	}
	if p.ValidationShare, err = parseFloat("VALIDATION_SHARE", p.ValidationShare); err != nil {
		return p, err
	}
	if p.FailurePercentile, err = parseFloat("FAILURE_PERCENTILE", p.FailurePercentile); err != nil {
		return p, err
	}
	if p.SurvivalErrorThreshold, err = parseFloat("SURVIVAL_ERROR_THRESHOLD", p.SurvivalErrorThreshold); err != nil {
		return p, err
	}

	if p.ForestTrees <= 0 {
		return p, errors.New("FOREST_TREES must be positive")
	}
	if p.ForestMaxDepth <= 0 {
		return p, errors.New("FOREST_MAX_DEPTH must be positive")
	}
	if p.ValidationShare <= 0 || p.ValidationShare >= 1 {
		return p, errors.New("VALIDATION_SHARE must be in (0, 1)")
	}
	if p.FailurePercentile <= 0 || p.FailurePercentile >= 100 {
		return p, errors.New("FAILURE_PERCENTILE must be in (0, 100)")
	}
	if p.SurvivalErrorThreshold <= 0 {
		return p, errors.New("SURVIVAL_ERROR_THRESHOLD must be positive")
	}

	return p, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}

func parseInt64(key string, def int64) (int64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return f, nil
}
