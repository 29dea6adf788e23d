// Package logger builds the per-run logrus logger. There is no package-level
// logger: one *Logger is created at start-up and handed to every component
// that logs.
package logger

import (
	"io"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"zzz-cli/internal/config"
)

// Heading is attached to every entry as the "app" field.
const Heading = "zzz-cli"

// Logger is a logrus entry carrying the heading and run id fields.
type Logger struct {
	*log.Entry
	runID string
}

// New creates a logger writing to out with the level and format from cfg.
func New(cfg config.LoggerConfig, out io.Writer) *Logger {
	base := log.New()
	base.SetOutput(out)
	base.SetLevel(ParseLevel(cfg.Level))

	if cfg.Format == "json" {
		base.SetFormatter(&log.JSONFormatter{})
	} else {
		base.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	runID := uuid.New().String()
	return &Logger{
		Entry: base.WithFields(log.Fields{
			"app":    Heading,
			"run_id": runID,
		}),
		runID: runID,
	}
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *Logger {
	return New(config.LoggerConfig{Level: "silent"}, io.Discard)
}

// ParseLevel maps npm-style level names onto logrus levels. Unknown names
// fall back to info.
func ParseLevel(name string) log.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "silly":
		return log.TraceLevel
	case "verbose":
		return log.DebugLevel
	case "info", "timing", "http", "notice":
		return log.InfoLevel
	case "silent":
		return log.PanicLevel
	}

	level, err := log.ParseLevel(name)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// RunID identifies this invocation in logs and outbound requests.
func (l *Logger) RunID() string {
	return l.runID
}

// WithPrefix tags entries with a short subject, e.g. "version" or "env".
func (l *Logger) WithPrefix(prefix string) *log.Entry {
	return l.WithField("prefix", prefix)
}

// Success logs at info level marked with status=success.
func (l *Logger) Success(prefix string, args ...interface{}) {
	l.WithFields(log.Fields{
		"prefix": prefix,
		"status": "success",
	}).Info(args...)
}

// SetLevel changes the level of the underlying logger.
func (l *Logger) SetLevel(name string) {
	l.Logger.SetLevel(ParseLevel(name))
}
