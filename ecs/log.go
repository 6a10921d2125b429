package ecs

import "log/slog"

// Logger is the structured logger used by a World.
// Key/value pairs follow the log/slog convention.
type Logger interface {
	Debug(msg string, keyValues ...any)
	Info(msg string, keyValues ...any)
	Warn(msg string, keyValues ...any)
	Error(msg string, keyValues ...any)
}

type slogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger adapts a *slog.Logger to Logger.
func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogLogger{logger: logger}
}

func (l *slogLogger) Debug(msg string, keyValues ...any) { l.logger.Debug(msg, keyValues...) }
func (l *slogLogger) Info(msg string, keyValues ...any)  { l.logger.Info(msg, keyValues...) }
func (l *slogLogger) Warn(msg string, keyValues ...any)  { l.logger.Warn(msg, keyValues...) }
func (l *slogLogger) Error(msg string, keyValues ...any) { l.logger.Error(msg, keyValues...) }

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
