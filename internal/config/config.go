package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/quake-sample-builder/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Sink names accepted by SINK.
const (
	SinkJSONL = "jsonl"
	SinkKafka = "kafka"
)

// DefaultCatalogTimeLayout matches the day-first timestamps of the source catalogs.
const DefaultCatalogTimeLayout = "02/01/2006 15:04:05"

// Config holds all service settings, populated from environment variables.
type Config struct {
	CatalogPath       string
	CatalogTimeLayout string

	// Sampling parameters.
	RadiusKm          float64
	PastYears         float64
	NumEarthquakes    int
	BigEqMinMagnitude float64

	// Target selection.
	TargetMinMagnitude float64
	TargetSampleSize   int
	TargetSeed         uint64
	RemoveAftershocks  bool
	Workers            int

	Sink            string
	OutputPath      string
	KafkaBrokers    []string
	KafkaSinkTopic  string
	BatchSize       int
	LoadMaxAttempts int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		CatalogPath:       os.Getenv("CATALOG_PATH"),
		CatalogTimeLayout: sharedcfg.EnvOrDefault("CATALOG_TIME_LAYOUT", DefaultCatalogTimeLayout),
		Sink:              sharedcfg.EnvOrDefault("SINK", SinkJSONL),
		OutputPath:        sharedcfg.EnvOrDefault("OUTPUT_PATH", "-"),
		KafkaBrokers:      sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic:    sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "quake-samples"),
		BatchSize:         batchSize,
		HTTPAddr:          sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:          sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:   shutdownTimeout,
	}

	var errs []error
	cfg.RadiusKm = parseFloat("SAMPLE_RADIUS_KM", domain.DefaultRadiusKm, &errs)
	cfg.PastYears = parseFloat("SAMPLE_PAST_YEARS", domain.DefaultPastYears, &errs)
	cfg.NumEarthquakes = parseInt("SAMPLE_NUM_EARTHQUAKES", domain.DefaultNumEarthquakes, &errs)
	cfg.BigEqMinMagnitude = parseFloat("BIG_EQ_MIN_MAGNITUDE", domain.DefaultBigEqMinMagnitude, &errs)
	cfg.TargetMinMagnitude = parseFloat("TARGET_MIN_MAGNITUDE", 0, &errs)
	cfg.TargetSampleSize = parseInt("TARGET_SAMPLE_SIZE", 0, &errs)
	cfg.TargetSeed = uint64(parseInt("TARGET_SEED", 1, &errs))
	cfg.Workers = parseInt("WORKERS", 4, &errs)
	cfg.LoadMaxAttempts = parseInt("LOAD_MAX_ATTEMPTS", 5, &errs)
	cfg.RemoveAftershocks = parseBool("REMOVE_AFTERSHOCKS", false, &errs)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if cfg.CatalogPath == "" {
		return nil, errors.New("CATALOG_PATH is required")
	}
	if err := cfg.Params().Validate(); err != nil {
		return nil, fmt.Errorf("invalid sampling parameters: %w", err)
	}
	if cfg.TargetSampleSize < 0 {
		return nil, errors.New("TARGET_SAMPLE_SIZE must be >= 0")
	}
	if cfg.Workers < 1 {
		return nil, errors.New("WORKERS must be >= 1")
	}
	if cfg.LoadMaxAttempts < 1 {
		return nil, errors.New("LOAD_MAX_ATTEMPTS must be >= 1")
	}
	switch cfg.Sink {
	case SinkJSONL:
	case SinkKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required")
		}
	default:
		return nil, fmt.Errorf("invalid SINK %q: want %q or %q", cfg.Sink, SinkJSONL, SinkKafka)
	}

	return cfg, nil
}

// Params returns the sampling parameters.
func (c *Config) Params() domain.Params {
	return domain.Params{
		RadiusKm:          c.RadiusKm,
		PastYears:         c.PastYears,
		NumEarthquakes:    c.NumEarthquakes,
		BigEqMinMagnitude: c.BigEqMinMagnitude,
	}
}

func parseFloat(key string, def float64, errs *[]error) float64 {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return v
}

func parseInt(key string, def int, errs *[]error) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return v
}

func parseBool(key string, def bool, errs *[]error) bool {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return v
}
