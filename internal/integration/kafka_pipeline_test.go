//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	kafkaadapter "github.com/ionoscope/storm-eval-service/internal/adapter/kafka"
	"github.com/ionoscope/storm-eval-service/internal/config"
	"github.com/ionoscope/storm-eval-service/internal/domain"
	"github.com/ionoscope/storm-eval-service/internal/observability"
	"github.com/ionoscope/storm-eval-service/internal/pipeline"
	"github.com/ionoscope/storm-eval-service/internal/store"
)

const (
	testSourceTopic = "test-raw-measurements"
	testSinkTopic   = "test-storm-events"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka launches a single-node Kafka and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("storm-eval-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

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

	controllerConn, err := kafkago.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	require.NoError(t, err)
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func measurementPayload(t *testing.T, ts time.Time, kp float64) []byte {
	t.Helper()
	payload, err := json.Marshal(domain.Measurement{
		Timestamp: ts,
		KpIndex:   kp,
		TECMean:   10 + kp,
	})
	require.NoError(t, err)
	return payload
}

// TestPipelineEndToEnd produces a measurement series containing one closed
// storm to the source topic, runs the full pipeline against a real broker,
// and verifies the extracted event lands on the sink topic with offsets
// committed.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("test-pipeline-%d", time.Now().UnixNano()),
		BatchSize:          50,
		BatchFlushInterval: 2 * time.Second,
	}

	// A storm at hours 1-3 followed by four quiet hours, so the event is
	// closed well past the default 3h merge gap.
	base := time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)
	kps := []float64{2, 6.5, 8.3, 7, 2, 2, 2, 2}

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })

	msgs := make([]kafkago.Message, len(kps))
	for i, kp := range kps {
		ts := base.Add(time.Duration(i) * time.Hour)
		msgs[i] = kafkago.Message{
			Key:   []byte(ts.Format(time.RFC3339)),
			Value: measurementPayload(t, ts, kp),
		}
	}
	require.NoError(t, producer.WriteMessages(ctx, msgs...))

	reader := kafkaadapter.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafkaadapter.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	sink := store.New(0)
	p := pipeline.New(reader, sink, writer, domain.DefaultExtractionConfig(),
		discardLogger(), observability.NewMetricsForTesting(), cfg.BatchSize)

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	done := make(chan error, 1)
	go func() { done <- p.Run(runCtx) }()

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, cancelRead := context.WithTimeout(ctx, 60*time.Second)
	defer cancelRead()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	var event domain.StormEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))

	assert.Equal(t, "storm_20240510_0100", event.ID)
	assert.Equal(t, string(msg.Key), event.ID)
	assert.Equal(t, 8.3, event.PeakKp)
	assert.Equal(t, "G4", event.GScale)
	assert.Equal(t, base.Add(time.Hour), event.StartTime)
	assert.Equal(t, base.Add(3*time.Hour), event.EndTime)
	assert.Equal(t, 2.0, event.DurationHours)
	assert.Equal(t, 3, event.SampleCount)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "G4", headers["g_scale"])
	_, err = time.Parse(time.RFC3339, headers["extracted_at"])
	assert.NoError(t, err, "extracted_at should be valid RFC3339")

	assert.Equal(t, len(kps), sink.Len())
	assert.NoError(t, p.CheckReadiness(ctx))

	stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("pipeline did not stop after cancellation")
	}
}
