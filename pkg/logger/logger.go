// Package logger builds the process-wide logrus logger.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing JSON in production and text elsewhere.
// An unparseable level falls back to info.
func New(env, level string) *logrus.Logger {
	return NewWithOutput(os.Stdout, env, level)
}

func NewWithOutput(out io.Writer, env, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	if env == "production" || env == "prod" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// Discard is a logger for tests.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
