package logging

import (
	"github.com/sirupsen/logrus"

	"github.com/Aashutosh-Basnet/livelizzyapp/internal/config"
)

// Fields represents structured logging fields
type Fields = logrus.Fields

// New creates a configured logger instance
func New(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

// NewWithService creates a logger that tags every entry with a service field
func NewWithService(cfg config.LogConfig, serviceName string) *logrus.Entry {
	return New(cfg).WithField("service", serviceName)
}
