package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Domenick1991/airtech/config"
	"github.com/Domenick1991/airtech/internal/cache"
	"github.com/Domenick1991/airtech/internal/email"
	"github.com/Domenick1991/airtech/internal/kafka"
	"github.com/Domenick1991/airtech/internal/logger"
	"github.com/Domenick1991/airtech/internal/repository"
	"github.com/Domenick1991/airtech/internal/service/booking"
	"github.com/Domenick1991/airtech/internal/worker"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.CacheTTL())
	defer redisCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers, log, cfg.Kafka.NotificationsTopic)
	defer producer.Close()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, log)
	defer consumer.Close()

	bookingService := booking.NewBookingService(
		repository.NewBookingRepository(pool),
		repository.NewFlightRepository(pool),
		repository.NewSeatRepository(pool),
		repository.NewLocationRepository(pool),
		repository.NewUserRepository(pool),
		repository.NewTxManager(pool),
		log,
	)
	notifier := email.NewNotifier(email.NewSender(cfg.Email, log), cfg.Email.AllowedDomain, log)
	reminders := worker.NewReminderScheduler(
		bookingService,
		redisCache,
		producer,
		time.Duration(cfg.Worker.ReminderIntervalMinutes)*time.Minute,
		time.Duration(cfg.Worker.ReminderDedupHours)*time.Hour,
		log,
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := consumer.Consume(ctx, notifier.Handle); err != nil {
			log.WithError(err).Error("notification consumer stopped")
			stop()
		}
	}()
	go func() {
		defer wg.Done()
		if err := reminders.Run(ctx); err != nil {
			log.WithError(err).Error("reminder scheduler stopped")
		}
	}()

	log.Info("worker started")
	wg.Wait()
	log.Info("worker stopped")
}
