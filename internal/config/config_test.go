package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "raw-measurements", cfg.KafkaSourceTopic)
	assert.Equal(t, "storm-events", cfg.KafkaSinkTopic)
	assert.Equal(t, "storm-eval", cfg.KafkaGroupID)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)
	assert.Equal(t, 26280, cfg.StoreMaxEntries)
	assert.Equal(t, 5.0, cfg.KpThreshold)
	assert.Equal(t, 3.0, cfg.MinGapHours)
	assert.Equal(t, 0.0, cfg.MinDurationHours)
	assert.False(t, cfg.SWPCEnabled)
	assert.Equal(t, "https://services.swpc.noaa.gov", cfg.SWPCBaseURL)
	assert.Equal(t, 10*time.Second, cfg.SWPCTimeout)
	assert.Equal(t, 5*time.Minute, cfg.SWPCCacheTTL)
	assert.Equal(t, time.Minute, cfg.SWPCPollInterval)
	assert.Equal(t, 2, cfg.SWPCRequestsPerS)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SOURCE_TOPIC", "custom-source")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")
	t.Setenv("STORE_MAX_ENTRIES", "1000")
	t.Setenv("KP_THRESHOLD", "6")
	t.Setenv("MIN_GAP_HOURS", "6")
	t.Setenv("MIN_DURATION_HOURS", "2")
	t.Setenv("SWPC_ENABLED", "true")
	t.Setenv("SWPC_BASE_URL", "http://localhost:8123")
	t.Setenv("SWPC_TIMEOUT", "5s")
	t.Setenv("SWPC_CACHE_TTL", "1m")
	t.Setenv("SWPC_POLL_INTERVAL", "2m")
	t.Setenv("SWPC_REQUESTS_PER_SEC", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-source", cfg.KafkaSourceTopic)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, time.Second, cfg.BatchFlushInterval)
	assert.Equal(t, 1000, cfg.StoreMaxEntries)
	assert.Equal(t, 6.0, cfg.KpThreshold)
	assert.Equal(t, 6.0, cfg.MinGapHours)
	assert.Equal(t, 2.0, cfg.MinDurationHours)
	assert.True(t, cfg.SWPCEnabled)
	assert.Equal(t, "http://localhost:8123", cfg.SWPCBaseURL)
	assert.Equal(t, 5*time.Second, cfg.SWPCTimeout)
	assert.Equal(t, time.Minute, cfg.SWPCCacheTTL)
	assert.Equal(t, 2*time.Minute, cfg.SWPCPollInterval)
	assert.Equal(t, 1, cfg.SWPCRequestsPerS)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("BATCH_SIZE", "-5")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_KpThresholdOutOfRange(t *testing.T) {
	t.Setenv("KP_THRESHOLD", "12")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KP_THRESHOLD")
}

func TestLoad_NegativeMinGap(t *testing.T) {
	t.Setenv("MIN_GAP_HOURS", "-1")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MIN_GAP_HOURS")
}

func TestLoad_EmptyBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " , ")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_InvalidFloat(t *testing.T) {
	t.Setenv("KP_THRESHOLD", "five")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KP_THRESHOLD")
}
