package logger

import "github.com/rs/zerolog"

// ZerologLogger adapts a zerolog.Logger to the Logger interface.
type ZerologLogger struct {
	logger zerolog.Logger
}

// FromZerolog returns a Logger backed by the given zerolog logger.
func FromZerolog(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: l}
}

func (l *ZerologLogger) Error(msg string, args ...any) {
	l.logger.Error().Fields(args).Msg(msg)
}

func (l *ZerologLogger) Warn(msg string, args ...any) {
	l.logger.Warn().Fields(args).Msg(msg)
}

func (l *ZerologLogger) Info(msg string, args ...any) {
	l.logger.Info().Fields(args).Msg(msg)
}

func (l *ZerologLogger) Debug(msg string, args ...any) {
	l.logger.Debug().Fields(args).Msg(msg)
}
