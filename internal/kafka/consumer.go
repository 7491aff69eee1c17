package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ErrPermanent marks handler failures that redelivering the event cannot fix.
var ErrPermanent = errors.New("permanent failure")

func Permanent(err error) error {
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

const (
	defaultMaxAttempts = 5
	defaultRetryDelay  = 2 * time.Second
)

type Consumer struct {
	reader      messageReader
	log         logrus.FieldLogger
	maxAttempts int
	retryDelay  time.Duration
}

func NewConsumer(brokers []string, groupID, topic string, log logrus.FieldLogger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log:         log,
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume decodes booking events and hands them to handler until ctx is done.
// Malformed messages are logged and committed. Handler failures are retried
// with a growing delay; permanent failures and events still failing after
// maxAttempts are logged and committed so they cannot block the partition.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, BookingEvent) error) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		var event BookingEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.log.WithError(err).WithField("offset", msg.Offset).Warn("skipping malformed event")
		} else if err := c.handle(ctx, handler, event, msg.Offset); err != nil {
			// Canceled mid-retry: leave the event uncommitted for redelivery.
			return nil
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return err
		}
	}
}

// handle only returns an error when ctx ends while waiting to retry.
func (c *Consumer) handle(ctx context.Context, handler func(context.Context, BookingEvent) error, event BookingEvent, offset int64) error {
	entry := c.log.WithFields(logrus.Fields{"event_id": event.ID, "type": event.Type, "offset": offset})

	for attempt := 1; ; attempt++ {
		err := handler(ctx, event)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrPermanent) {
			entry.WithError(err).Error("dropping event after permanent failure")
			return nil
		}
		if attempt >= c.maxAttempts {
			entry.WithError(err).WithField("attempts", attempt).Error("dropping event after retries")
			return nil
		}

		entry.WithError(err).WithField("attempt", attempt).Warn("event handling failed, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryDelay * time.Duration(attempt)):
		}
	}
}
