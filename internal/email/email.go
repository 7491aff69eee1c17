package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/airtech/config"
	"github.com/Domenick1991/airtech/internal/kafka"
	"github.com/Domenick1991/airtech/internal/metrics"
	"github.com/sirupsen/logrus"
)

type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender builds the sender selected by cfg.Provider.
func NewSender(cfg config.EmailConfig, log logrus.FieldLogger) Sender {
	if cfg.Provider == "postmark" {
		return NewPostmarkSender(cfg.PostmarkURL, cfg.PostmarkToken, cfg.From, time.Duration(cfg.TimeoutSeconds)*time.Second)
	}
	return NewLogSender(log)
}

type LogSender struct {
	log logrus.FieldLogger
}

func NewLogSender(log logrus.FieldLogger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.log.WithFields(logrus.Fields{"to": msg.To, "subject": msg.Subject}).Info("email")
	return nil
}

// Notifier turns booking events into e-mails.
type Notifier struct {
	sender        Sender
	allowedDomain string
	log           logrus.FieldLogger
}

// NewNotifier skips recipients outside allowedDomain when it is set.
func NewNotifier(sender Sender, allowedDomain string, log logrus.FieldLogger) *Notifier {
	return &Notifier{sender: sender, allowedDomain: strings.ToLower(strings.TrimPrefix(allowedDomain, "@")), log: log}
}

func (n *Notifier) Handle(ctx context.Context, event kafka.BookingEvent) error {
	entry := n.log.WithFields(logrus.Fields{"event_id": event.ID, "type": event.Type, "booking_id": event.BookingID})

	if event.Email == "" || !n.allowed(event.Email) {
		entry.Debug("recipient skipped")
		metrics.NotificationsSent.WithLabelValues(event.Type, "skipped").Inc()
		return nil
	}

	msg, ok, err := Render(event)
	if err != nil {
		return kafka.Permanent(fmt.Errorf("render %s: %w", event.Type, err))
	}
	if !ok {
		entry.Debug("no template for event")
		return nil
	}

	if err := n.sender.Send(ctx, msg); err != nil {
		metrics.NotificationsSent.WithLabelValues(event.Type, "failed").Inc()
		return fmt.Errorf("send %s: %w", event.Type, err)
	}

	metrics.NotificationsSent.WithLabelValues(event.Type, "sent").Inc()
	entry.Info("notification sent")
	return nil
}

func (n *Notifier) allowed(address string) bool {
	if n.allowedDomain == "" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(address), "@"+n.allowedDomain)
}
