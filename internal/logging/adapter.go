package logging

import (
	"fmt"
	"log/slog"
	"strings"
)

// Logger is the leveled logging interface used by components that should not
// depend on slog directly.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter adapts a *slog.Logger to Logger. It also satisfies the printf
// style logger interface of the resty HTTP client, so client diagnostics end
// up in the structured log.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter wraps logger. A nil logger means slog.Default().
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// DefaultLogger returns an adapter around slog.Default().
func DefaultLogger() *SlogAdapter {
	return NewSlogAdapter(nil)
}

// Logger returns the wrapped slog logger.
func (a *SlogAdapter) Logger() *slog.Logger {
	return a.logger
}

func (a *SlogAdapter) Debug(msg string, args ...any) { a.logger.Debug(msg, args...) }
func (a *SlogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *SlogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *SlogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }

// Errorf logs a formatted message at error level.
func (a *SlogAdapter) Errorf(format string, v ...any) {
	a.logger.Error(printf(format, v...), slog.String("component", "http-client"))
}

// Warnf logs a formatted message at warn level.
func (a *SlogAdapter) Warnf(format string, v ...any) {
	a.logger.Warn(printf(format, v...), slog.String("component", "http-client"))
}

// Debugf logs a formatted message at debug level.
func (a *SlogAdapter) Debugf(format string, v ...any) {
	a.logger.Debug(printf(format, v...), slog.String("component", "http-client"))
}

func printf(format string, v ...any) string {
	return strings.TrimRight(fmt.Sprintf(format, v...), "\n")
}
