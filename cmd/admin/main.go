// Command admin creates staff accounts, e.g.
//
//	admin -email ops@airtech.io -superuser
//
// The password is read from ADMIN_PASSWORD.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/Domenick1991/airtech/config"
	"github.com/Domenick1991/airtech/internal/logger"
	"github.com/Domenick1991/airtech/internal/repository"
	"github.com/Domenick1991/airtech/internal/service/auth"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

func main() {
	cfgPath := flag.String("config", envOr("CONFIG_PATH", "config.yaml"), "path to the config file")
	email := flag.String("email", "", "email of the staff account")
	firstName := flag.String("first-name", "", "first name")
	lastName := flag.String("last-name", "", "last name")
	superuser := flag.Bool("superuser", false, "grant superuser rights")
	flag.Parse()

	password := os.Getenv("ADMIN_PASSWORD")
	if *email == "" || password == "" {
		flag.Usage()
		logrus.Fatal("-email and ADMIN_PASSWORD are required")
	}

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	log := logger.New(cfg.Log)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	service := auth.NewAuthService(
		repository.NewUserRepository(pool),
		repository.NewTokenRepository(pool),
		repository.NewTxManager(pool),
		cfg.Auth.TokenTTL(),
		log,
		auth.WithBcryptCost(cfg.Auth.BcryptCost),
	)
	user, err := service.CreateUser(ctx, auth.SignUpInput{
		Email:     *email,
		FirstName: *firstName,
		LastName:  *lastName,
		Password:  password,
	}, true, *superuser)
	if err != nil {
		log.Fatalf("create user: %v", err)
	}
	log.WithFields(logrus.Fields{"user_id": user.ID, "email": user.Email, "superuser": user.IsSuperuser}).Info("staff account created")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
