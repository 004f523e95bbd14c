package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Measurement retention for the in-memory store. ~3 years of hourly
	// samples by default, enough for the longest backtest the UI offers.
	StoreMaxEntries int

	// Event extraction defaults. The Kp threshold (0-9 scale) is distinct
	// from the probability storm threshold (0-100) used by backtesting.
	KpThreshold      float64
	MinGapHours      float64
	MinDurationHours float64

	// NOAA SWPC feed configuration.
	SWPCEnabled      bool
	SWPCBaseURL      string
	SWPCTimeout      time.Duration
	SWPCCacheTTL     time.Duration
	SWPCPollInterval time.Duration
	SWPCRequestsPerS int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	flushInterval, err := parseDuration("BATCH_FLUSH_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	swpcTimeout, err := parseDuration("SWPC_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	swpcCacheTTL, err := parseDuration("SWPC_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	swpcPoll, err := parseDuration("SWPC_POLL_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}

	batchSize, err := parsePositiveInt("BATCH_SIZE", 50)
	if err != nil {
		return nil, err
	}
	storeMax, err := parsePositiveInt("STORE_MAX_ENTRIES", 26280)
	if err != nil {
		return nil, err
	}
	swpcRPS, err := parsePositiveInt("SWPC_REQUESTS_PER_SEC", 2)
	if err != nil {
		return nil, err
	}

	kpThreshold, err := parseFloat("KP_THRESHOLD", 5.0)
	if err != nil {
		return nil, err
	}
	minGap, err := parseFloat("MIN_GAP_HOURS", 3.0)
	if err != nil {
		return nil, err
	}
	minDuration, err := parseFloat("MIN_DURATION_HOURS", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   envOrDefault("KAFKA_SOURCE_TOPIC", "raw-measurements"),
		KafkaSinkTopic:     envOrDefault("KAFKA_SINK_TOPIC", "storm-events"),
		KafkaGroupID:       envOrDefault("KAFKA_GROUP_ID", "storm-eval"),
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
		StoreMaxEntries:    storeMax,
		KpThreshold:        kpThreshold,
		MinGapHours:        minGap,
		MinDurationHours:   minDuration,

		SWPCEnabled:      os.Getenv("SWPC_ENABLED") == "true",
		SWPCBaseURL:      envOrDefault("SWPC_BASE_URL", "https://services.swpc.noaa.gov"),
		SWPCTimeout:      swpcTimeout,
		SWPCCacheTTL:     swpcCacheTTL,
		SWPCPollInterval: swpcPoll,
		SWPCRequestsPerS: swpcRPS,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.KpThreshold < 0 || cfg.KpThreshold > 9 {
		return nil, fmt.Errorf("KP_THRESHOLD %g outside [0, 9]", cfg.KpThreshold)
	}
	if cfg.MinGapHours < 0 {
		return nil, fmt.Errorf("MIN_GAP_HOURS %g is negative", cfg.MinGapHours)
	}
	if cfg.MinDurationHours < 0 {
		return nil, fmt.Errorf("MIN_DURATION_HOURS %g is negative", cfg.MinDurationHours)
	}
	if cfg.SWPCEnabled && cfg.SWPCBaseURL == "" {
		return nil, errors.New("SWPC_ENABLED is true but SWPC_BASE_URL is empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: want a positive duration", key, s)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: want a positive integer", key, s)
	}
	return n, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: want a number", key, s)
	}
	return f, nil
}
