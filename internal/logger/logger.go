// Package logger builds the process-wide logrus logger.
// Every package receives the logger (or an *logrus.Entry derived from it) from main
// instead of reaching for a global, so tests can swap in a silent one.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to stdout at the given level ("debug", "info", ...).
// format "json" gives one JSON object per line for log shippers; anything else
// gives human-readable text. An unknown level falls back to info with a warning.
func New(level, format string) *logrus.Logger {
	return NewWithOutput(os.Stdout, level, format)
}

// NewWithOutput is New with a custom destination.
func NewWithOutput(out io.Writer, level, format string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	if strings.ToLower(format) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("invalid_level", level).Warn("unknown LOG_LEVEL, using info")
		return log
	}
	log.SetLevel(parsed)
	return log
}
