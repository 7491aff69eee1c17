package logger

import (
	"io"
	"os"

	"github.com/Domenick1991/airtech/config"
	"github.com/sirupsen/logrus"
)

// New builds the process logger from the log section of the config.
func New(cfg config.LogConfig) *logrus.Logger {
	return NewWithOutput(cfg, os.Stdout)
}

func NewWithOutput(cfg config.LogConfig, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}
