// Package logging provides the process-wide logger used outside the
// analysis core.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var (
	Log Logger
)

type Level string

const (
	DEBUG   Level = "debug"
	INFO    Level = "info"
	WARNING Level = "warning"
	ERROR   Level = "error"
)

type Logger interface {
	WriteDebugf(msg string, args ...interface{})
	WriteInfof(msg string, args ...interface{})
	WriteWarnf(msg string, args ...interface{})
	WriteErrorf(msg string, args ...interface{})
	WithField(key string, value interface{}) Logger
}

type LogrusLogger struct {
	entry *logrus.Entry
}

func (l *LogrusLogger) WriteDebugf(msg string, args ...interface{}) {
	l.entry.Debugf(msg, args...)
}

func (l *LogrusLogger) WriteInfof(msg string, args ...interface{}) {
	l.entry.Infof(msg, args...)
}

func (l *LogrusLogger) WriteWarnf(msg string, args ...interface{}) {
	l.entry.Warnf(msg, args...)
}

func (l *LogrusLogger) WriteErrorf(msg string, args ...interface{}) {
	l.entry.Errorf(msg, args...)
}

func (l *LogrusLogger) WithField(key string, value interface{}) Logger {
	return &LogrusLogger{entry: l.entry.WithField(key, value)}
}

func toLogrusLevel(level Level) logrus.Level {
	switch level {
	case DEBUG:
		return logrus.DebugLevel
	case WARNING:
		return logrus.WarnLevel
	case ERROR:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// NewLogrusLogger logs text lines to out. Logs go to stderr when out is nil
// so they never mix with a report written to stdout.
func NewLogrusLogger(level Level, out io.Writer) *LogrusLogger {
	if out == nil {
		out = os.Stderr
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetOutput(out)
	logger.SetLevel(toLogrusLevel(level))

	return &LogrusLogger{entry: logrus.NewEntry(logger)}
}

func init() {
	SetLogger(NewLogrusLogger(INFO, nil))
}

func SetLogger(l Logger) {
	Log = l
}
