// Package worker runs the periodic jobs of cmd/worker.
package worker

import (
	"context"
	"time"

	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/Domenick1991/airtech/internal/kafka"
	"github.com/Domenick1991/airtech/internal/metrics"
	"github.com/sirupsen/logrus"
)

type DueBookings interface {
	DueForReminder(ctx context.Context, now time.Time) ([]domain.Booking, error)
}

// Marker records queued reminders so that overlapping scans and restarts do
// not remind twice.
type Marker interface {
	MarkReminded(ctx context.Context, bookingID int64, travelDate string, ttl time.Duration) (bool, error)
	UnmarkReminded(ctx context.Context, bookingID int64, travelDate string) error
}

type Publisher interface {
	Publish(ctx context.Context, event kafka.BookingEvent) error
}

type ReminderScheduler struct {
	bookings  DueBookings
	marker    Marker
	publisher Publisher
	interval  time.Duration
	dedup     time.Duration
	now       func() time.Time
	log       logrus.FieldLogger
}

func NewReminderScheduler(bookings DueBookings, marker Marker, publisher Publisher, interval, dedup time.Duration, log logrus.FieldLogger) *ReminderScheduler {
	return &ReminderScheduler{
		bookings:  bookings,
		marker:    marker,
		publisher: publisher,
		interval:  interval,
		dedup:     dedup,
		now:       time.Now,
		log:       log,
	}
}

// Run scans once immediately and then on every tick until ctx is done.
func (s *ReminderScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if n, err := s.Scan(ctx); err != nil {
			s.log.WithError(err).Error("reminder scan failed")
		} else if n > 0 {
			s.log.WithField("queued", n).Info("travel reminders queued")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Scan publishes a travel_reminder for every booking travelling tomorrow that
// has not been reminded yet. It returns the number of reminders published.
func (s *ReminderScheduler) Scan(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.bookings.DueForReminder(ctx, now)
	if err != nil {
		return 0, err
	}

	queued := 0
	for i := range due {
		b := &due[i]
		entry := s.log.WithField("booking_id", b.ID)
		if b.TravelDate == nil {
			continue
		}

		day := b.TravelDate.Format(domain.DateLayout)
		fresh, err := s.marker.MarkReminded(ctx, b.ID, day, s.dedup)
		if err != nil {
			entry.WithError(err).Warn("failed to mark reminder")
			continue
		}
		if !fresh {
			continue
		}

		if err := s.publisher.Publish(ctx, kafka.NewBookingEvent(kafka.EventTravelReminder, b, now)); err != nil {
			entry.WithError(err).Warn("failed to publish reminder")
			if err := s.marker.UnmarkReminded(ctx, b.ID, day); err != nil {
				entry.WithError(err).Error("failed to release reminder mark")
			}
			continue
		}
		metrics.RemindersQueued.Inc()
		queued++
	}
	return queued, nil
}
