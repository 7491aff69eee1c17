package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer messageWriter
	topics []string
	log    logrus.FieldLogger
}

// NewProducer writes every event to each of topics.
func NewProducer(brokers []string, log logrus.FieldLogger, topics ...string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{writer: writer, topics: topics, log: log}
}

func (p *Producer) Publish(ctx context.Context, event BookingEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	key := []byte(strconv.FormatInt(event.BookingID, 10))
	msgs := make([]kafka.Message, 0, len(p.topics))
	for _, topic := range p.topics {
		msgs = append(msgs, kafka.Message{Topic: topic, Key: key, Value: data, Time: event.OccurredAt})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	p.log.WithFields(logrus.Fields{"event_id": event.ID, "type": event.Type, "booking_id": event.BookingID}).Debug("event published")
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
