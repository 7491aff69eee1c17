package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airtech/api"
	"github.com/Domenick1991/airtech/config"
	"github.com/Domenick1991/airtech/internal/bootstrap"
	"github.com/Domenick1991/airtech/internal/cache"
	"github.com/Domenick1991/airtech/internal/kafka"
	"github.com/Domenick1991/airtech/internal/logger"
	"github.com/Domenick1991/airtech/internal/repository"
	"github.com/Domenick1991/airtech/internal/service/auth"
	"github.com/Domenick1991/airtech/internal/service/booking"
	"github.com/Domenick1991/airtech/internal/service/flights"
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

	if cfg.Database.Migrate {
		if err := repository.Migrate(ctx, pool); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.CacheTTL())
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		log.WithError(err).Warn("redis unavailable, listings will not be cached")
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, log, cfg.Kafka.BookingEventsTopic, cfg.Kafka.NotificationsTopic)
	defer producer.Close()

	tx := repository.NewTxManager(pool)
	userRepo := repository.NewUserRepository(pool)
	locationRepo := repository.NewLocationRepository(pool)
	flightRepo := repository.NewFlightRepository(pool)
	seatRepo := repository.NewSeatRepository(pool)

	authService := auth.NewAuthService(userRepo, repository.NewTokenRepository(pool), tx, cfg.Auth.TokenTTL(), log,
		auth.WithBcryptCost(cfg.Auth.BcryptCost))
	locationService := flights.NewLocationService(locationRepo, redisCache, log)
	flightService := flights.NewFlightService(flightRepo, seatRepo, locationService, tx, redisCache, log)
	seatService := flights.NewSeatService(seatRepo, flightRepo, tx, log)
	bookingService := booking.NewBookingService(
		repository.NewBookingRepository(pool),
		flightRepo,
		seatRepo,
		locationRepo,
		userRepo,
		tx,
		log,
		booking.WithProducer(producer),
	)

	router := api.NewRouter(cfg.HTTP, log, authService, api.Handlers{
		Auth:      api.NewAuthHandler(authService),
		Locations: api.NewLocationHandler(locationService),
		Flights:   api.NewFlightHandler(flightService),
		Seats:     api.NewSeatHandler(seatService),
		Bookings:  api.NewBookingHandler(bookingService),
	})

	if err := bootstrap.Run(ctx, cfg, router, pool, log); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
