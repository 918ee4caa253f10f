package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IsakLindberger/Weather-Predict-Model/internal/config"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes run metadata records to a Kafka topic so downstream
// consumers can react to stage completions and contract violations.
// It implements pipeline.RunPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured run-event topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishRun serializes and publishes one run metadata record. Messages are
// keyed by stage so per-stage ordering survives partitioning.
func (w *Writer) PublishRun(ctx context.Context, md domain.RunMetadata) error {
	msg, err := serializeToMessage(md)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a run metadata record into a Kafka message.
func serializeToMessage(md domain.RunMetadata) (kafkago.Message, error) {
	data, err := json.Marshal(md)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize run metadata: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(md.Stage),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(md.RunID)},
			{Key: "status", Value: []byte(md.Status)},
			{Key: "recorded_at", Value: []byte(md.RecordedAt.Format(time.RFC3339))},
		},
	}, nil
}
