package config

import (
	"testing"
	"time"

	"github.com/couchcryptid/quake-sample-builder/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = "testdata/catalog.csv"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CATALOG_PATH", testCatalog)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, testCatalog, cfg.CatalogPath)
	assert.Equal(t, DefaultCatalogTimeLayout, cfg.CatalogTimeLayout)
	assert.Equal(t, domain.DefaultParams(), cfg.Params())
	assert.Equal(t, 0.0, cfg.TargetMinMagnitude)
	assert.Equal(t, 0, cfg.TargetSampleSize)
	assert.Equal(t, uint64(1), cfg.TargetSeed)
	assert.False(t, cfg.RemoveAftershocks)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, SinkJSONL, cfg.Sink)
	assert.Equal(t, "-", cfg.OutputPath)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "quake-samples", cfg.KafkaSinkTopic)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 5, cfg.LoadMaxAttempts)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("CATALOG_PATH", testCatalog)
	t.Setenv("CATALOG_TIME_LAYOUT", time.RFC3339)
	t.Setenv("SAMPLE_RADIUS_KM", "25.5")
	t.Setenv("SAMPLE_PAST_YEARS", "10")
	t.Setenv("SAMPLE_NUM_EARTHQUAKES", "16")
	t.Setenv("BIG_EQ_MIN_MAGNITUDE", "6")
	t.Setenv("TARGET_MIN_MAGNITUDE", "4.5")
	t.Setenv("TARGET_SAMPLE_SIZE", "200")
	t.Setenv("TARGET_SEED", "42")
	t.Setenv("REMOVE_AFTERSHOCKS", "true")
	t.Setenv("WORKERS", "8")
	t.Setenv("SINK", "kafka")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-samples")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("LOAD_MAX_ATTEMPTS", "2")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.RFC3339, cfg.CatalogTimeLayout)
	assert.Equal(t, domain.Params{RadiusKm: 25.5, PastYears: 10, NumEarthquakes: 16, BigEqMinMagnitude: 6}, cfg.Params())
	assert.Equal(t, 4.5, cfg.TargetMinMagnitude)
	assert.Equal(t, 200, cfg.TargetSampleSize)
	assert.Equal(t, uint64(42), cfg.TargetSeed)
	assert.True(t, cfg.RemoveAftershocks)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, SinkKafka, cfg.Sink)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-samples", cfg.KafkaSinkTopic)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 2, cfg.LoadMaxAttempts)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_MissingCatalogPath(t *testing.T) {
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CATALOG_PATH")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"SAMPLE_RADIUS_KM", "ten", "SAMPLE_RADIUS_KM"},
		{"SAMPLE_RADIUS_KM", "-1", "radius_km"},
		{"SAMPLE_PAST_YEARS", "0", "past_years"},
		{"SAMPLE_NUM_EARTHQUAKES", "0", "num_earthquakes"},
		{"SAMPLE_NUM_EARTHQUAKES", "3.5", "SAMPLE_NUM_EARTHQUAKES"},
		{"BIG_EQ_MIN_MAGNITUDE", "big", "BIG_EQ_MIN_MAGNITUDE"},
		{"TARGET_SAMPLE_SIZE", "-5", "TARGET_SAMPLE_SIZE"},
		{"REMOVE_AFTERSHOCKS", "maybe", "REMOVE_AFTERSHOCKS"},
		{"WORKERS", "0", "WORKERS"},
		{"LOAD_MAX_ATTEMPTS", "0", "LOAD_MAX_ATTEMPTS"},
		{"SINK", "parquet", "SINK"},
		{"SHUTDOWN_TIMEOUT", "not-a-duration", "SHUTDOWN_TIMEOUT"},
		{"BATCH_SIZE", "0", "BATCH_SIZE"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv("CATALOG_PATH", testCatalog)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
