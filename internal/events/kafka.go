package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kirinyoku/dakshina/internal/domain"
	"github.com/segmentio/kafka-go"
)

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// KafkaSink writes events keyed by booking id so one booking's events stay
// ordered within a partition.
type KafkaSink struct {
	w MessageWriter
}

func NewKafkaSink(w MessageWriter) *KafkaSink {
	return &KafkaSink{w: w}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Send(ctx context.Context, ev domain.Event) error {
	const op = "events.KafkaSink.Send"

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	err = s.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.BookingID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// Consumer reads booking events from Kafka and turns them into
// notifications.
type Consumer struct {
	r        MessageReader
	notifier *Notifier
	log      *slog.Logger
}

func NewConsumer(r MessageReader, notifier *Notifier, log *slog.Logger) *Consumer {
	return &Consumer{r: r, notifier: notifier, log: log}
}

// Run blocks until ctx is cancelled or the reader fails.
func (c *Consumer) Run(ctx context.Context) error {
	const op = "events.Consumer.Run"

	for {
		m, err := c.r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("%s:%w", op, err)
		}

		var ev domain.Event
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			c.log.Warn("bad booking event", slog.String("key", string(m.Key)), slog.Any("err", err))
			continue
		}

		if err := c.notifier.Send(ctx, ev); err != nil {
			c.log.Warn("notification failed",
				slog.String("code", domain.ErrExternalFailure.Code),
				slog.String("event", string(ev.Type)),
				slog.Any("err", err),
			)
		}
	}
}
