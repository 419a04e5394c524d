//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/quake-sample-builder/internal/adapter/kafka"
	"github.com/couchcryptid/quake-sample-builder/internal/config"
	"github.com/couchcryptid/quake-sample-builder/internal/domain"
	"github.com/couchcryptid/quake-sample-builder/internal/observability"
	"github.com/couchcryptid/quake-sample-builder/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testSinkTopic = "test-quake-samples"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("quake-samples-test"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// sequence returns events one hour apart at one location.
func sequence(mags ...float64) *domain.Catalog {
	base := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	events := make([]domain.Event, len(mags))
	for i, m := range mags {
		events[i] = domain.Event{
			ID:         fmt.Sprintf("eq%d", i),
			Geo:        domain.Geo{Lat: 35.0, Lon: 139.0},
			Magnitude:  m,
			DepthKm:    10,
			OccurredAt: base.Add(time.Duration(i) * time.Hour),
		}
	}
	return domain.NewCatalog(events)
}

// TestPipelineToKafka runs the full pipeline against a real broker and reads
// the produced samples back from the sink topic.
func TestPipelineToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	params := domain.Params{RadiusKm: 10, PastYears: 1, NumEarthquakes: 2, BigEqMinMagnitude: 5.5}
	p := pipeline.New(pipeline.NewTransformer(params), writer, discardLogger(),
		observability.NewMetricsForTesting(), pipeline.Options{
			Params:          params,
			Workers:         2,
			BatchSize:       2,
			LoadMaxAttempts: 5,
		})

	report, err := p.Run(ctx, sequence(3.0, 3.5, 4.0, 6.1, 3.2))
	require.NoError(t, err)
	require.Equal(t, 3, report.Loaded)
	require.NoError(t, p.CheckReadiness(ctx))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testSinkTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	var keys []string
	labels := map[string]string{}
	for range 3 {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from sink topic")

		var sample domain.Sample
		require.NoError(t, json.Unmarshal(msg.Value, &sample))
		assert.Equal(t, string(msg.Key), sample.TargetID)
		assert.Len(t, sample.Features, 2)

		for _, h := range msg.Headers {
			if h.Key == "label" {
				labels[sample.TargetID] = string(h.Value)
			}
		}
		keys = append(keys, sample.TargetID)
	}

	assert.Equal(t, []string{"eq2", "eq3", "eq4"}, keys)
	assert.Equal(t, map[string]string{"eq2": "0", "eq3": "1", "eq4": "0"}, labels)
}
