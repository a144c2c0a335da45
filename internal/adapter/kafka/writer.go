package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/active-fire-etl/internal/config"
	"github.com/couchcryptid/active-fire-etl/internal/domain"
	"github.com/couchcryptid/active-fire-etl/internal/observability"
)

// Writer publishes detections to a Kafka topic.
// It implements pipeline.Loader.
type Writer struct {
	writer  *kafkago.Writer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, metrics: metrics, logger: logger}
}

// Load serializes and publishes all detections of a run in a single
// WriteMessages call.
func (w *Writer) Load(ctx context.Context, detections []domain.Detection) error {
	if len(detections) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(detections))
	for i := range detections {
		msg, err := serializeToMessage(detections[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish detections: %w", err)
	}
	w.metrics.RowsPublished.Add(float64(len(msgs)))
	w.logger.Debug("detections published", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Detection into a Kafka message keyed by
// position and acquisition time, so repeated runs hash to the same partition.
func serializeToMessage(d domain.Detection) (kafkago.Message, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize detection: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(d.Key()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "satellite", Value: []byte(d.Satellite)},
			{Key: "processed_at", Value: []byte(d.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
