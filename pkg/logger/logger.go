// Package logger defines the logging interface used across the SDK, with
// implementations backed by log/slog and by zerolog.
package logger

import "log/slog"

// Logger accepts a message and slog-style alternating key/value arguments.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

// SlogLogger adapts a slog.Handler to the Logger interface.
type SlogLogger struct {
	logger *slog.Logger
}

// New returns a Logger backed by the given slog handler.
func New(h slog.Handler) *SlogLogger {
	return &SlogLogger{logger: slog.New(h)}
}

func (l *SlogLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

func (l *SlogLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l *SlogLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l *SlogLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}
